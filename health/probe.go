package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/logaspect/aspect"
	"github.com/jonwraymond/logaspect/observe"
)

// probeMeta names the probe invocation in records, spans and metrics.
var probeMeta = observe.MethodMeta{
	Assembly: "github.com/jonwraymond/logaspect/health",
	Class:    "Probe",
	Method:   "Ping",
}

type aspectProbe struct {
	a *aspect.Aspect
}

// NewAspectProbe returns a Checker that runs a no-op call through a. The
// probe passes when the invocation completes and every scope it opened is
// released.
func NewAspectProbe(a *aspect.Aspect) Checker {
	return aspectProbe{a: a}
}

func (aspectProbe) Name() string { return "aspect" }

func (p aspectProbe) Check(ctx context.Context) Result {
	depth := observe.ScopeDepth(ctx)
	var inner int
	_, err := p.a.InvokeMeta(ctx, probeMeta, nil, func(ctx context.Context) (any, error) {
		inner = observe.ScopeDepth(ctx)
		return nil, ctx.Err()
	})
	if err != nil {
		return Unhealthy("probe invocation failed", fmt.Errorf("%w: %w", ErrProbeFailed, err))
	}
	if inner != depth+1 {
		return Degraded("probe ran without a method scope").WithDetails(map[string]any{"scope_depth": inner})
	}
	return Healthy("probe invocation completed").WithDetails(map[string]any{
		"execution_level": p.a.Options().ExecutionLevel.String(),
	})
}

type loggerCheck struct {
	logger observe.Logger
	level  observe.LogLevel
}

// NewLoggerCheck returns a Checker that reports degraded when logger drops
// records at level.
func NewLoggerCheck(logger observe.Logger, level observe.LogLevel) Checker {
	return loggerCheck{logger: logger, level: level}
}

func (loggerCheck) Name() string { return "logger" }

func (c loggerCheck) Check(ctx context.Context) Result {
	if !c.logger.Enabled(ctx, c.level) {
		r := Degraded("logger disabled at " + c.level.String())
		r.Err = ErrLoggerDisabled
		return r
	}
	return Healthy("logger enabled at " + c.level.String())
}
