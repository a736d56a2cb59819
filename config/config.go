// Package config loads the logaspect configuration from a YAML file and the
// environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/logaspect/aspect"
	"github.com/jonwraymond/logaspect/observe"
)

// ErrInvalidServerAddr indicates an empty server listen address.
var ErrInvalidServerAddr = errors.New("config: server addr is empty")

// Config is the complete configuration.
type Config struct {
	Observe observe.Config `koanf:"observe"`
	Aspect  aspect.Options `koanf:"aspect"`
	Server  ServerConfig   `koanf:"server"`
}

// ServerConfig configures the demo HTTP server.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Default returns the configuration used for keys no source sets.
func Default() Config {
	return Config{
		Observe: observe.Config{
			ServiceName: "logaspect",
			Tracing:     observe.TracingConfig{Exporter: "none", SamplePct: 1.0},
			Metrics:     observe.MetricsConfig{Exporter: "none"},
			Logging: observe.LoggingConfig{
				Enabled: true,
				Level:   "debug",
				Format:  "json",
			},
		},
		Aspect: aspect.DefaultOptions(),
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.Observe.Validate(); err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	if err := c.Aspect.Validate(); err != nil {
		return fmt.Errorf("aspect: %w", err)
	}
	if c.Server.Addr == "" {
		return ErrInvalidServerAddr
	}
	return nil
}

// NewAspect creates the observer described by c.Observe and an Aspect on top
// of it. The caller owns the observer and must shut it down.
func (c *Config) NewAspect(ctx context.Context) (*aspect.Aspect, observe.Observer, error) {
	obs, err := observe.NewObserver(ctx, c.Observe)
	if err != nil {
		return nil, nil, fmt.Errorf("config: create observer: %w", err)
	}
	a, err := aspect.FromObserver(obs, c.Aspect)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, nil, fmt.Errorf("config: create aspect: %w", err)
	}
	return a, obs, nil
}
