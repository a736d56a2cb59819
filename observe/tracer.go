package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// attrFailed is set on every span; EndSpan flips it when the call failed.
const attrFailed = attribute.Key("method.error")

// Tracer opens one internal span per wrapped invocation. It is safe for
// concurrent use and EndSpan never panics.
type Tracer interface {
	StartSpan(ctx context.Context, meta MethodMeta) (context.Context, trace.Span)

	// EndSpan marks the span failed when err is non-nil, then ends it.
	EndSpan(span trace.Span, err error)
}

type otelTracer struct {
	tracer trace.Tracer
}

// NewTracer wraps t. A nil t yields NoopTracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		return NoopTracer()
	}
	return otelTracer{tracer: t}
}

func (t otelTracer) StartSpan(ctx context.Context, meta MethodMeta) (context.Context, trace.Span) {
	attrs := append(meta.Attributes(), attrFailed.Bool(false))
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

func (otelTracer) EndSpan(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetAttributes(attrFailed.Bool(true))
	span.SetStatus(codes.Error, err.Error())
}

// NoopTracer returns a Tracer whose spans are never recorded.
func NoopTracer() Tracer {
	return otelTracer{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
}
