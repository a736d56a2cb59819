package aspect

import (
	"context"
	"fmt"
)

// Future is the pending outcome of an asynchronous invocation.
type Future[R any] struct {
	done     chan struct{}
	val      R
	err      error
	panicked any
}

// spawn runs fn in a new goroutine. A panic in fn is captured and re-raised
// by Wait.
func spawn[R any](fn func() (R, error)) *Future[R] {
	f := &Future[R]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if p := recover(); p != nil {
				f.panicked = p
			}
		}()
		f.val, f.err = fn()
	}()
	return f
}

// Done is closed when the invocation has finished.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the invocation finishes or ctx is done. It re-panics with
// the original value if the wrapped call panicked.
func (f *Future[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		var zero R
		return zero, fmt.Errorf("aspect: wait: %w", ctx.Err())
	}
	if f.panicked != nil {
		panic(f.panicked)
	}
	return f.val, f.err
}

// InvokeAsync runs Invoke in a new goroutine. ctx, with its scopes and span,
// is carried into the goroutine.
func (a *Aspect) InvokeAsync(ctx context.Context, method any, params []any, call Call) *Future[any] {
	return spawn(func() (any, error) {
		return a.Invoke(ctx, method, params, call)
	})
}

// Async runs Invoke0 in a new goroutine.
func Async[R any](ctx context.Context, a *Aspect, fn func(context.Context) (R, error)) *Future[R] {
	return spawn(func() (R, error) {
		return Invoke0(ctx, a, fn)
	})
}

// Async1 runs Invoke1 in a new goroutine.
func Async1[P1, R any](ctx context.Context, a *Aspect, fn func(context.Context, P1) (R, error), p1 P1) *Future[R] {
	return spawn(func() (R, error) {
		return Invoke1(ctx, a, fn, p1)
	})
}

// Async2 runs Invoke2 in a new goroutine.
func Async2[P1, P2, R any](ctx context.Context, a *Aspect, fn func(context.Context, P1, P2) (R, error), p1 P1, p2 P2) *Future[R] {
	return spawn(func() (R, error) {
		return Invoke2(ctx, a, fn, p1, p2)
	})
}

// Async3 runs Invoke3 in a new goroutine.
func Async3[P1, P2, P3, R any](ctx context.Context, a *Aspect, fn func(context.Context, P1, P2, P3) (R, error), p1 P1, p2 P2, p3 P3) *Future[R] {
	return spawn(func() (R, error) {
		return Invoke3(ctx, a, fn, p1, p2, p3)
	})
}

// Async4 runs Invoke4 in a new goroutine.
func Async4[P1, P2, P3, P4, R any](ctx context.Context, a *Aspect, fn func(context.Context, P1, P2, P3, P4) (R, error), p1 P1, p2 P2, p3 P3, p4 P4) *Future[R] {
	return spawn(func() (R, error) {
		return Invoke4(ctx, a, fn, p1, p2, p3, p4)
	})
}

// Async5 runs Invoke5 in a new goroutine.
func Async5[P1, P2, P3, P4, P5, R any](ctx context.Context, a *Aspect, fn func(context.Context, P1, P2, P3, P4, P5) (R, error), p1 P1, p2 P2, p3 P3, p4 P4, p5 P5) *Future[R] {
	return spawn(func() (R, error) {
		return Invoke5(ctx, a, fn, p1, p2, p3, p4, p5)
	})
}
