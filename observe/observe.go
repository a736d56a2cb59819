package observe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jonwraymond/logaspect/observe/exporters"
)

// Observer hands out the telemetry primitives an aspect writes to. Disabled
// pipelines yield noop primitives, so callers never check for nil.
//
// Shutdown flushes every enabled pipeline, honors ctx and joins the errors of
// all pipelines.
type Observer interface {
	Tracer() trace.Tracer
	Meter() metric.Meter
	Logger() Logger
	Shutdown(ctx context.Context) error
}

type observer struct {
	tracer trace.Tracer
	meter  metric.Meter
	logger Logger

	// flushers run in order on Shutdown
	flushers []func(context.Context) error
}

// NewObserver builds the pipelines enabled in cfg. Logs go to stderr.
func NewObserver(ctx context.Context, cfg Config) (Observer, error) {
	return newObserver(ctx, cfg, os.Stderr)
}

func newObserver(ctx context.Context, cfg Config, logOut io.Writer) (*observer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	obs := &observer{
		tracer: tracenoop.NewTracerProvider().Tracer("noop"),
		meter:  metricnoop.NewMeterProvider().Meter("noop"),
		logger: NoopLogger(),
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("observe: resource: %w", err)
	}

	if cfg.Tracing.Enabled {
		if err := obs.startTracing(ctx, cfg, res); err != nil {
			return nil, err
		}
	}
	if cfg.Metrics.Enabled {
		if err := obs.startMetrics(ctx, cfg, res); err != nil {
			_ = obs.Shutdown(ctx)
			return nil, err
		}
	}
	if cfg.Logging.Enabled {
		z := newZap(cfg, logOut)
		obs.logger = NewZapLogger(z)
		obs.flushers = append(obs.flushers, func(context.Context) error {
			// stderr and stdout reject fsync on most platforms
			if err := z.Sync(); err != nil && !isSyncUnsupported(err) {
				return fmt.Errorf("logger sync: %w", err)
			}
			return nil
		})
	}

	return obs, nil
}

// startTracing installs a batching tracer provider sampled at SamplePct.
func (o *observer) startTracing(ctx context.Context, cfg Config, res *resource.Resource) error {
	exp, err := exporters.NewTracingExporter(ctx, cfg.Tracing.Exporter)
	if err != nil {
		return fmt.Errorf("observe: tracing: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.Tracing.SamplePct)),
		sdktrace.WithBatcher(exp),
	)
	otel.SetTracerProvider(tp)

	o.tracer = tp.Tracer(cfg.ServiceName)
	o.flushers = append(o.flushers, func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("tracer shutdown: %w", err)
		}
		return nil
	})
	return nil
}

func sampler(pct float64) sdktrace.Sampler {
	switch {
	case pct >= 1:
		return sdktrace.AlwaysSample()
	case pct <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(pct)
	}
}

// startMetrics installs a meter provider reading through the configured
// exporter.
func (o *observer) startMetrics(ctx context.Context, cfg Config, res *resource.Resource) error {
	reader, err := exporters.NewMetricsReader(ctx, cfg.Metrics.Exporter)
	if err != nil {
		return fmt.Errorf("observe: metrics: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)

	o.meter = mp.Meter(cfg.ServiceName)
	o.flushers = append(o.flushers, func(ctx context.Context) error {
		if err := mp.Shutdown(ctx); err != nil {
			return fmt.Errorf("meter shutdown: %w", err)
		}
		return nil
	})
	return nil
}

// newZap builds an encoder core on w, teed into the OpenTelemetry log
// pipeline when Logging.OTEL is set. Both cores share one level.
func newZap(cfg Config, w io.Writer) *zap.Logger {
	level := zap.NewAtomicLevelAt(ParseLogLevel(cfg.Logging.Level).Zap())
	core := zapcore.NewCore(newEncoder(cfg.Logging.Format), zapcore.AddSync(w), level)

	if cfg.Logging.OTEL {
		bridge := otelzap.NewCore(cfg.ServiceName,
			otelzap.WithLoggerProvider(global.GetLoggerProvider()),
			otelzap.WithVersion(cfg.Version),
		)
		core = zapcore.NewTee(core, leveledCore{Core: bridge, level: level})
	}

	return zap.New(core).Named(cfg.ServiceName)
}

// leveledCore gates a core that has no level of its own.
type leveledCore struct {
	zapcore.Core
	level zapcore.LevelEnabler
}

func (c leveledCore) Enabled(l zapcore.Level) bool {
	return c.level.Enabled(l) && c.Core.Enabled(l)
}

func (c leveledCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.level.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

func (c leveledCore) With(fields []zapcore.Field) zapcore.Core {
	return leveledCore{Core: c.Core.With(fields), level: c.level}
}

func (o *observer) Tracer() trace.Tracer { return o.tracer }
func (o *observer) Meter() metric.Meter  { return o.meter }
func (o *observer) Logger() Logger       { return o.logger }

func (o *observer) Shutdown(ctx context.Context) error {
	var errs []error
	for _, flush := range o.flushers {
		if err := flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func isSyncUnsupported(err error) bool {
	var pathErr *os.PathError
	return errors.As(err, &pathErr)
}
