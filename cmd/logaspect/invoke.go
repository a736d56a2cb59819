package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/logaspect/aspect"
	"github.com/jonwraymond/logaspect/config"
)

var (
	invokeLanguage string
	invokeAsync    bool
)

var invokeCmd = &cobra.Command{
	Use:   "invoke NAME",
	Short: "Greet NAME once through the aspect",
	Long: `Run one Greet call through the aspect and print the result as JSON.
Log records go to stderr.

Examples:
  logaspect invoke Ada
  logaspect invoke --language fr --async Ada`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoke,
}

func init() {
	invokeCmd.Flags().StringVar(&invokeLanguage, "language", "en", "greeting language (en, fr, de, es)")
	invokeCmd.Flags().BoolVar(&invokeAsync, "async", false, "run the call on a separate goroutine")
}

func runInvoke(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, obs, err := cfg.NewAspect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = obs.Shutdown(context.Background()) }()

	greeting, err := greet(ctx, a, GreetRequest{Name: args[0], Language: invokeLanguage}, invokeAsync)
	if err != nil {
		return fmt.Errorf("invoke: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(greeting)
}

// greet runs Greeter.Greet through a, optionally as a future.
func greet(ctx context.Context, a *aspect.Aspect, req GreetRequest, async bool) (Greeting, error) {
	g := &Greeter{}
	if async {
		return aspect.Async1(ctx, a, g.Greet, req).Wait(ctx)
	}
	return aspect.Invoke1(ctx, a, g.Greet, req)
}
