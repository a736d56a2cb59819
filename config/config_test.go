package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/logaspect/aspect"
	"github.com/jonwraymond/logaspect/observe"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, observe.LevelDebug, cfg.Aspect.ExecutionLevel)
	assert.Equal(t, aspect.DefaultScopeTemplate, cfg.Aspect.ScopeTemplate)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
observe:
  service_name: orders
  logging:
    level: trace
    format: console
aspect:
  execution_level: info
  state_items_level: debug
  executing_template: "-> {ClassName}.{MethodName}"
server:
  addr: ":9090"
  shutdown_timeout: 3s
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "orders", cfg.Observe.ServiceName)
	assert.Equal(t, "trace", cfg.Observe.Logging.Level)
	assert.Equal(t, "console", cfg.Observe.Logging.Format)
	assert.True(t, cfg.Observe.Logging.Enabled, "unset keys keep defaults")
	assert.Equal(t, observe.LevelInfo, cfg.Aspect.ExecutionLevel)
	assert.Equal(t, observe.LevelDebug, cfg.Aspect.StateItemsLevel)
	assert.Equal(t, "-> {ClassName}.{MethodName}", cfg.Aspect.ExecutingTemplate)
	assert.Equal(t, aspect.DefaultExecutedTemplate, cfg.Aspect.ExecutedTemplate)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "aspect:\n  execution_level: info\n")
	t.Setenv("LOGASPECT_ASPECT_EXECUTION_LEVEL", "warn")
	t.Setenv("LOGASPECT_OBSERVE_SERVICE_NAME", "billing")
	t.Setenv("LOGASPECT_OBSERVE_LOGGING_LEVEL", "error")
	t.Setenv("LOGASPECT_SERVER_ADDR", "127.0.0.1:7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, observe.LevelWarn, cfg.Aspect.ExecutionLevel)
	assert.Equal(t, "billing", cfg.Observe.ServiceName)
	assert.Equal(t, "error", cfg.Observe.Logging.Level)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("too large", func(t *testing.T) {
		path := writeConfig(t, "# "+strings.Repeat("x", maxConfigFileSize))
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrConfigTooLarge)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "aspect: [unterminated"))
		assert.Error(t, err)
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := Load(writeConfig(t, "aspect:\n  execution_level: loud\n"))
		assert.Error(t, err)
	})

	t.Run("empty template", func(t *testing.T) {
		_, err := Load(writeConfig(t, "aspect:\n  scope_template: \"\"\n"))
		assert.ErrorIs(t, err, aspect.ErrEmptyTemplate)
	})

	t.Run("invalid observe", func(t *testing.T) {
		_, err := Load(writeConfig(t, "observe:\n  logging:\n    format: xml\n"))
		assert.ErrorIs(t, err, observe.ErrInvalidLogFormat)
	})

	t.Run("empty addr", func(t *testing.T) {
		t.Setenv("LOGASPECT_SERVER_ADDR", "")
		_, err := Load("")
		assert.ErrorIs(t, err, ErrInvalidServerAddr)
	})
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"LOGASPECT_ASPECT_EXECUTION_LEVEL":   "aspect.execution_level",
		"LOGASPECT_SERVER_SHUTDOWN_TIMEOUT":  "server.shutdown_timeout",
		"LOGASPECT_OBSERVE_TRACING_EXPORTER": "observe.tracing.exporter",
		"LOGASPECT_OBSERVE_METRICS_ENABLED":  "observe.metrics.enabled",
		"LOGASPECT_OBSERVE_LOGGING_OTEL":     "observe.logging.otel",
		"LOGASPECT_OBSERVE_VERSION":          "observe.version",
		"LOGASPECT_DEBUG":                    "debug",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestConfig_NewAspect(t *testing.T) {
	cfg := Default()
	cfg.Observe.Logging.Enabled = false

	a, obs, err := cfg.NewAspect(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })

	assert.Equal(t, cfg.Aspect, a.Options())
}
