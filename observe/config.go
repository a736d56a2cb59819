package observe

import (
	"fmt"
	"slices"
)

// Config holds all configuration for the Observer.
type Config struct {
	ServiceName string        `koanf:"service_name"`
	Version     string        `koanf:"version"`
	Tracing     TracingConfig `koanf:"tracing"`
	Metrics     MetricsConfig `koanf:"metrics"`
	Logging     LoggingConfig `koanf:"logging"`
}

// TracingConfig configures invocation spans.
type TracingConfig struct {
	Enabled   bool    `koanf:"enabled"`
	Exporter  string  `koanf:"exporter"`   // otlp|jaeger|stdout|none
	SamplePct float64 `koanf:"sample_pct"` // 0.0-1.0
}

// MetricsConfig configures invocation counters and histograms.
type MetricsConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Exporter string `koanf:"exporter"` // otlp|prometheus|stdout|none
}

// LoggingConfig configures the executing/executed records.
type LoggingConfig struct {
	Enabled bool   `koanf:"enabled"`
	Level   string `koanf:"level"`  // trace|debug|info|warn|error|none
	Format  string `koanf:"format"` // json|console
	// OTEL additionally sends records to the global OpenTelemetry
	// LoggerProvider.
	OTEL bool `koanf:"otel"`
}

// Accepted values for the string settings. The empty string selects the
// default.
var (
	TracingExporters = []string{"", "otlp", "jaeger", "stdout", "none"}
	MetricsExporters = []string{"", "otlp", "prometheus", "stdout", "none"}
	LogLevels        = []string{"", "trace", "debug", "info", "warn", "error", "none"}
	LogFormats       = []string{"", "json", "console"}
)

// Validate checks the enabled sections only; a disabled section may hold
// anything.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}

	var checks []check
	if t := c.Tracing; t.Enabled {
		checks = append(checks,
			oneOf(ErrInvalidTracingExporter, t.Exporter, TracingExporters),
			func() error {
				if t.SamplePct < 0 || t.SamplePct > 1 {
					return fmt.Errorf("%w: got %f", ErrInvalidSamplePct, t.SamplePct)
				}
				return nil
			},
		)
	}
	if m := c.Metrics; m.Enabled {
		checks = append(checks, oneOf(ErrInvalidMetricsExporter, m.Exporter, MetricsExporters))
	}
	if l := c.Logging; l.Enabled {
		checks = append(checks,
			oneOf(ErrInvalidLogLevel, l.Level, LogLevels),
			oneOf(ErrInvalidLogFormat, l.Format, LogFormats),
		)
	}

	for _, fn := range checks {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

type check func() error

func oneOf(sentinel error, value string, allowed []string) check {
	return func() error {
		if !slices.Contains(allowed, value) {
			return fmt.Errorf("%w: %q", sentinel, value)
		}
		return nil
	}
}
