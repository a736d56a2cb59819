// Command logaspect runs a demo service whose calls are logged through the
// invocation aspect.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is the YAML configuration file; empty uses defaults and the
	// environment only.
	configPath string
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "logaspect",
	Short: "Invocation logging demo",
	Long: `logaspect wraps a small greeting service with executing/executed
log records, parameter and result scopes, spans and metrics.

Configuration comes from --config (YAML) and LOGASPECT_* environment
variables, e.g. LOGASPECT_ASPECT_EXECUTION_LEVEL=info.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(invokeCmd)
}
