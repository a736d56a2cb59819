package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/logaspect/aspect"
	"github.com/jonwraymond/logaspect/config"
	"github.com/jonwraymond/logaspect/filter"
	"github.com/jonwraymond/logaspect/health"
	"github.com/jonwraymond/logaspect/observe"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the greeting API",
	Long: `Serve the greeting API over HTTP.

Routes:
  POST /api/v1/greet   typed handler logged through the aspect
  GET  /api/v1/hello   plain handler logged by the route middleware
  GET  /healthz /readyz /health /health/:name
  GET  /metrics        when observe.metrics.exporter is prometheus`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, obs, err := cfg.NewAspect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	e, err := newServer(cfg, a)
	if err != nil {
		return err
	}

	logger := a.Logger()
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server listening", observe.Field{Key: "addr", Value: cfg.Server.Addr})
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("serve: shutdown: %w", err)
	}
	return nil
}

// newServer builds the echo instance with every route mounted.
func newServer(cfg *config.Config, a *aspect.Aspect) (*echo.Echo, error) {
	f, err := filter.New(a, cfg.Observe.ServiceName)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	agg := health.NewAggregator()
	agg.Register(health.NewAspectProbe(a))
	agg.Register(health.NewLoggerCheck(a.Logger(), a.Options().ExecutionLevel))
	health.Register(e, agg)

	if cfg.Observe.Metrics.Enabled && cfg.Observe.Metrics.Exporter == "prometheus" {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	greeter := &Greeter{}
	v1 := e.Group("/api/v1", f.Middleware())
	v1.POST("/greet", filter.Handle(f, greeter.Greet))
	v1.GET("/hello", func(c echo.Context) error {
		return c.String(http.StatusOK, "hello")
	})
	return e, nil
}
