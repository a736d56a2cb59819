package observe

import (
	"context"
	"sync/atomic"
)

// Scope is an acquired logging scope.
//
// Contract:
//   - Lifetime: Close must be called exactly once, in reverse acquisition
//     order; defer it right after BeginScope.
//   - Idempotence: a second Close is a no-op.
type Scope interface {
	Close()
}

type scopeCtxKey struct{}

// scopeFrame is one scope in the chain carried by a context.
type scopeFrame struct {
	parent *scopeFrame
	fields []Field
	closed atomic.Bool
	onEnd  func()
}

func (f *scopeFrame) Close() {
	if f.closed.CompareAndSwap(false, true) && f.onEnd != nil {
		f.onEnd()
	}
}

// WithScope returns a context carrying fields as a new innermost scope. onEnd,
// if non-nil, runs on the first Close. Logger implementations use it to back
// BeginScope.
func WithScope(ctx context.Context, onEnd func(), fields ...Field) (context.Context, Scope) {
	parent, _ := ctx.Value(scopeCtxKey{}).(*scopeFrame)
	frame := &scopeFrame{parent: parent, fields: fields, onEnd: onEnd}
	return context.WithValue(ctx, scopeCtxKey{}, frame), frame
}

// ScopeFields returns the fields of every open scope carried by ctx, outermost
// first. Fields of closed scopes are dropped even if a stale context still
// references them.
func ScopeFields(ctx context.Context) []Field {
	frame, _ := ctx.Value(scopeCtxKey{}).(*scopeFrame)
	if frame == nil {
		return nil
	}

	var frames []*scopeFrame
	n := 0
	for f := frame; f != nil; f = f.parent {
		if f.closed.Load() {
			continue
		}
		frames = append(frames, f)
		n += len(f.fields)
	}

	fields := make([]Field, 0, n)
	for i := len(frames) - 1; i >= 0; i-- {
		fields = append(fields, frames[i].fields...)
	}
	return fields
}

// ScopeDepth returns the number of open scopes carried by ctx.
func ScopeDepth(ctx context.Context) int {
	frame, _ := ctx.Value(scopeCtxKey{}).(*scopeFrame)
	depth := 0
	for f := frame; f != nil; f = f.parent {
		if !f.closed.Load() {
			depth++
		}
	}
	return depth
}

// noopScope is returned by loggers that do not track scopes.
type noopScope struct{}

func (noopScope) Close() {}
