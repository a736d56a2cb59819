// Package exporters builds OpenTelemetry span exporters and metric readers
// from the exporter names used in configuration.
package exporters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	ErrUnknownExporter = errors.New("exporters: unknown exporter")

	// ErrEndpointNotConfigured is returned for a network exporter whose
	// endpoint variable is unset.
	ErrEndpointNotConfigured = errors.New("exporters: endpoint not configured")
)

// Stdout receives the output of the "stdout" exporters.
var Stdout io.Writer = os.Stdout

type (
	spanFactory   func(context.Context) (sdktrace.SpanExporter, error)
	readerFactory func(context.Context) (sdkmetric.Reader, error)
)

// "" and "none" keep the pipeline wired but drop everything it produces.
var spanExporters = map[string]spanFactory{
	"":     discardSpans,
	"none": discardSpans,
	"stdout": func(context.Context) (sdktrace.SpanExporter, error) {
		return stdouttrace.New(stdouttrace.WithWriter(Stdout))
	},
	"otlp": func(ctx context.Context) (sdktrace.SpanExporter, error) {
		if _, err := endpoint("OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"); err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx)
	},
	// Jaeger ingests OTLP, so only the endpoint differs.
	"jaeger": func(ctx context.Context) (sdktrace.SpanExporter, error) {
		url, err := endpoint("OTEL_EXPORTER_JAEGER_ENDPOINT")
		if err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(url))
	},
}

var metricReaders = map[string]readerFactory{
	"":     discardMetrics,
	"none": discardMetrics,
	"stdout": func(context.Context) (sdkmetric.Reader, error) {
		return periodic(stdoutmetric.New(stdoutmetric.WithWriter(Stdout)))
	},
	"otlp": func(ctx context.Context) (sdkmetric.Reader, error) {
		if _, err := endpoint("OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"); err != nil {
			return nil, err
		}
		return periodic(otlpmetricgrpc.New(ctx))
	},
	// The Prometheus reader registers with the default registerer and is
	// scraped through promhttp.
	"prometheus": func(context.Context) (sdkmetric.Reader, error) {
		return prometheus.New()
	},
}

// NewTracingExporter returns the span exporter registered as name: stdout,
// otlp, jaeger or none.
func NewTracingExporter(ctx context.Context, name string) (sdktrace.SpanExporter, error) {
	build, ok := spanExporters[name]
	if !ok {
		return nil, fmt.Errorf("%w: tracing %q", ErrUnknownExporter, name)
	}
	return build(ctx)
}

// NewMetricsReader returns the metric reader registered as name: stdout,
// otlp, prometheus or none.
func NewMetricsReader(ctx context.Context, name string) (sdkmetric.Reader, error) {
	build, ok := metricReaders[name]
	if !ok {
		return nil, fmt.Errorf("%w: metrics %q", ErrUnknownExporter, name)
	}
	reader, err := build(ctx)
	if err != nil {
		return nil, fmt.Errorf("exporters: metrics %q: %w", name, err)
	}
	return reader, nil
}

func discardSpans(context.Context) (sdktrace.SpanExporter, error) {
	return stdouttrace.New(stdouttrace.WithWriter(io.Discard))
}

func discardMetrics(context.Context) (sdkmetric.Reader, error) {
	return periodic(stdoutmetric.New(stdoutmetric.WithWriter(io.Discard)))
}

func periodic(exp sdkmetric.Exporter, err error) (sdkmetric.Reader, error) {
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(exp), nil
}

// endpoint returns the first non-empty variable among keys.
func endpoint(keys ...string) (string, error) {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: set one of %v", ErrEndpointNotConfigured, keys)
}
