package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names.
const (
	MetricInvocations = "method.invocations.total"
	MetricFailures    = "method.invocations.errors"
	MetricDuration    = "method.invocations.duration_ms"
)

// Metrics counts wrapped invocations and their durations per method
// identity. Implementations are safe for concurrent use and never panic.
type Metrics interface {
	RecordInvocation(ctx context.Context, meta MethodMeta, duration time.Duration, err error)
}

type invocationMetrics struct {
	calls    metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram

	// attribute sets are built once per identity
	sets sync.Map // MethodMeta -> attribute.Set
}

// NewMetrics registers the invocation instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &invocationMetrics{}
	var err error

	if m.calls, err = meter.Int64Counter(MetricInvocations,
		metric.WithDescription("Wrapped method invocations"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}
	if m.failures, err = meter.Int64Counter(MetricFailures,
		metric.WithDescription("Wrapped method invocations that returned an error or panicked"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}
	if m.duration, err = meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Wall time of wrapped method invocations"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *invocationMetrics) RecordInvocation(ctx context.Context, meta MethodMeta, duration time.Duration, err error) {
	opt := metric.WithAttributeSet(m.attributes(meta))

	m.calls.Add(ctx, 1, opt)
	if err != nil {
		m.failures.Add(ctx, 1, opt)
	}
	m.duration.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func (m *invocationMetrics) attributes(meta MethodMeta) attribute.Set {
	if s, ok := m.sets.Load(meta); ok {
		return s.(attribute.Set)
	}
	s, _ := m.sets.LoadOrStore(meta, attribute.NewSet(meta.Attributes()...))
	return s.(attribute.Set)
}

// NoopMetrics returns a Metrics that records nothing.
func NoopMetrics() Metrics { return noopMetrics{} }

type noopMetrics struct{}

func (noopMetrics) RecordInvocation(context.Context, MethodMeta, time.Duration, error) {}
