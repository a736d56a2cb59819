package aspect

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/logaspect/loggable"
	"github.com/jonwraymond/logaspect/msgtemplate"
	"github.com/jonwraymond/logaspect/observe"
)

// ScopeKey is the field holding the rendered scope template in the method
// scope.
const ScopeKey = "scope"

// Call is the wrapped invocation. It receives the context carrying the method
// scope and span.
type Call func(ctx context.Context) (any, error)

// Aspect logs invocations of wrapped calls.
//
// Contract:
//   - Concurrency: safe for concurrent use; an Aspect holds no per-call state.
//   - Errors: errors and panics from the wrapped call propagate unchanged.
//   - Cleanup: every scope opened for a call is closed exactly once on every
//     exit path, in reverse acquisition order.
type Aspect struct {
	logger observe.Logger
	opts   Options

	executing msgtemplate.Template
	executed  msgtemplate.Template
	scope     msgtemplate.Template

	tracer   observe.Tracer
	metrics  observe.Metrics
	parser   loggable.Parser
	resolver *msgtemplate.Resolver
}

// New creates an Aspect writing to logger. Spans and metrics are disabled
// unless supplied through options.
func New(logger observe.Logger, opts Options, options ...Option) (*Aspect, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	a := &Aspect{
		logger:    logger,
		opts:      opts,
		executing: msgtemplate.Intern(opts.ExecutingTemplate),
		executed:  msgtemplate.Intern(opts.ExecutedTemplate),
		scope:     msgtemplate.Intern(opts.ScopeTemplate),
		tracer:    observe.NoopTracer(),
		metrics:   observe.NoopMetrics(),
		parser:    loggable.Default,
		resolver:  msgtemplate.Default(),
	}
	for _, o := range options {
		o(a)
	}
	return a, nil
}

// FromObserver creates an Aspect using the observer's logger, tracer and
// meter.
func FromObserver(obs observe.Observer, opts Options, options ...Option) (*Aspect, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := observe.NewMetrics(obs.Meter())
	if err != nil {
		return nil, fmt.Errorf("aspect: create metrics: %w", err)
	}

	base := []Option{
		WithTracer(observe.NewTracer(obs.Tracer())),
		WithMetrics(metrics),
	}
	return New(obs.Logger(), opts, append(base, options...)...)
}

// Logger returns the logger the Aspect writes to.
func (a *Aspect) Logger() observe.Logger {
	return a.logger
}

// Options returns the Aspect's options.
func (a *Aspect) Options() Options {
	return a.opts
}

// Invoke runs call as an invocation of method, a function or method value
// whose identity names the records. params are the values passed to method;
// each is logged as parameter state.
func (a *Aspect) Invoke(ctx context.Context, method any, params []any, call Call) (any, error) {
	meta, err := Identify(method)
	if err != nil {
		return nil, err
	}
	return a.InvokeMeta(ctx, meta, params, call)
}

// InvokeMeta is Invoke with an explicit method identity.
func (a *Aspect) InvokeMeta(ctx context.Context, meta observe.MethodMeta, params []any, call Call) (result any, err error) {
	if call == nil {
		return nil, ErrNilMethod
	}

	if err := a.logExecuting(ctx, meta, params); err != nil {
		return nil, err
	}

	callCtx, scope := a.beginMethodScope(ctx, meta)
	callCtx, span := a.tracer.StartSpan(callCtx, meta)
	start := time.Now()
	returned := false
	defer func() {
		callErr := err
		if !returned {
			callErr = ErrPanicked
		}
		a.tracer.EndSpan(span, callErr)
		a.metrics.RecordInvocation(ctx, meta, time.Since(start), callErr)
		scope.Close()
	}()

	result, err = call(callCtx)
	returned = true
	if err != nil {
		return result, err
	}

	a.logExecuted(callCtx, meta, result)
	return result, nil
}

// logExecuting writes the executing record inside one scope per loggable
// parameter. Parameters are scoped last to first and the scopes are closed
// before it returns.
func (a *Aspect) logExecuting(ctx context.Context, meta observe.MethodMeta, params []any) error {
	if !a.logger.Enabled(ctx, a.opts.ExecutionLevel) {
		return nil
	}

	var scopes []observe.Scope
	defer func() {
		for i := len(scopes) - 1; i >= 0; i-- {
			scopes[i].Close()
		}
	}()

	logCtx := ctx
	if a.logger.Enabled(ctx, a.opts.StateItemsLevel) {
		scopes = make([]observe.Scope, 0, len(params))
		for i := len(params) - 1; i >= 0; i-- {
			fields, err := a.stateFields(params[i])
			if err != nil {
				return fmt.Errorf("aspect: parameter %d of %s: %w", i+1, meta.ID(), err)
			}
			if len(fields) == 0 {
				continue
			}
			var s observe.Scope
			logCtx, s = a.logger.BeginScope(logCtx, fields...)
			scopes = append(scopes, s)
		}
	}

	a.log(logCtx, a.executing, meta)
	return nil
}

// logExecuted writes the executed record inside the result scope. A result
// whose type has a malformed plan is reported and left unscoped; the call has
// already completed.
func (a *Aspect) logExecuted(ctx context.Context, meta observe.MethodMeta, result any) {
	if !a.logger.Enabled(ctx, a.opts.ExecutionLevel) {
		return
	}

	logCtx := ctx
	if result != nil && a.logger.Enabled(ctx, a.opts.StateItemsLevel) {
		fields, err := a.stateFields(result)
		switch {
		case err != nil:
			a.logger.Warn(ctx, "result state extraction failed",
				observe.Field{Key: "method", Value: meta.ID()},
				observe.Field{Key: "error", Value: err.Error()},
			)
		case len(fields) > 0:
			var s observe.Scope
			logCtx, s = a.logger.BeginScope(ctx, fields...)
			defer s.Close()
		}
	}

	a.log(logCtx, a.executed, meta)
}

// beginMethodScope opens the scope covering the wrapped call. Its fields are
// the scope template's holes bound to the ordered names plus the rendered
// template under ScopeKey.
func (a *Aspect) beginMethodScope(ctx context.Context, meta observe.MethodMeta) (context.Context, observe.Scope) {
	names := a.resolver.OrderNames(a.scope, meta.Assembly, meta.Class, meta.Method)
	holes := msgtemplate.Names(a.scope.Value)

	fields := make([]observe.Field, 0, len(names)+1)
	for i, hole := range holes {
		if i >= len(names) {
			break
		}
		if hasField(fields, hole) {
			continue
		}
		fields = append(fields, observe.Field{Key: hole, Value: names[i]})
	}
	fields = append(fields, observe.Field{
		Key:   ScopeKey,
		Value: msgtemplate.Format(a.scope.Value, names[0], names[1], names[2]),
	})

	return a.logger.BeginScope(ctx, fields...)
}

func hasField(fields []observe.Field, key string) bool {
	for _, f := range fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

// log writes t at the execution level with the identity names in template
// order.
func (a *Aspect) log(ctx context.Context, t msgtemplate.Template, meta observe.MethodMeta) {
	names := a.resolver.OrderNames(t, meta.Assembly, meta.Class, meta.Method)
	a.logger.Log(ctx, a.opts.ExecutionLevel, t.Value, names[0], names[1], names[2])
}

// stateFields extracts loggable state as scope fields. Absent state yields
// nothing.
func (a *Aspect) stateFields(state any) ([]observe.Field, error) {
	if state == nil {
		return nil, nil
	}
	items, err := a.parser.Parse(state)
	if err != nil || len(items) == 0 {
		return nil, err
	}

	fields := make([]observe.Field, len(items))
	for i, it := range items {
		fields[i] = observe.Field{Key: it.Key, Value: it.Value}
	}
	return fields, nil
}
