package aspect

import "context"

// Typed helpers wrap functions taking a context and zero to five parameters.
// CallN wraps functions returning only an error; InvokeN wraps functions
// returning a result and an error. The function value names the records.

// typedResult converts an untyped invocation result back to R.
func typedResult[R any](v any, err error) (R, error) {
	r, _ := v.(R)
	return r, err
}

// Call0 invokes fn through a.
func Call0(ctx context.Context, a *Aspect, fn func(context.Context) error) error {
	_, err := a.Invoke(ctx, fn, nil, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}

// Call1 invokes fn through a.
func Call1[P1 any](ctx context.Context, a *Aspect, fn func(context.Context, P1) error, p1 P1) error {
	_, err := a.Invoke(ctx, fn, []any{p1}, func(ctx context.Context) (any, error) {
		return nil, fn(ctx, p1)
	})
	return err
}

// Call2 invokes fn through a.
func Call2[P1, P2 any](ctx context.Context, a *Aspect, fn func(context.Context, P1, P2) error, p1 P1, p2 P2) error {
	_, err := a.Invoke(ctx, fn, []any{p1, p2}, func(ctx context.Context) (any, error) {
		return nil, fn(ctx, p1, p2)
	})
	return err
}

// Call3 invokes fn through a.
func Call3[P1, P2, P3 any](ctx context.Context, a *Aspect, fn func(context.Context, P1, P2, P3) error, p1 P1, p2 P2, p3 P3) error {
	_, err := a.Invoke(ctx, fn, []any{p1, p2, p3}, func(ctx context.Context) (any, error) {
		return nil, fn(ctx, p1, p2, p3)
	})
	return err
}

// Call4 invokes fn through a.
func Call4[P1, P2, P3, P4 any](ctx context.Context, a *Aspect, fn func(context.Context, P1, P2, P3, P4) error, p1 P1, p2 P2, p3 P3, p4 P4) error {
	_, err := a.Invoke(ctx, fn, []any{p1, p2, p3, p4}, func(ctx context.Context) (any, error) {
		return nil, fn(ctx, p1, p2, p3, p4)
	})
	return err
}

// Call5 invokes fn through a.
func Call5[P1, P2, P3, P4, P5 any](ctx context.Context, a *Aspect, fn func(context.Context, P1, P2, P3, P4, P5) error, p1 P1, p2 P2, p3 P3, p4 P4, p5 P5) error {
	_, err := a.Invoke(ctx, fn, []any{p1, p2, p3, p4, p5}, func(ctx context.Context) (any, error) {
		return nil, fn(ctx, p1, p2, p3, p4, p5)
	})
	return err
}

// Invoke0 invokes fn through a and returns its result.
func Invoke0[R any](ctx context.Context, a *Aspect, fn func(context.Context) (R, error)) (R, error) {
	return typedResult[R](a.Invoke(ctx, fn, nil, func(ctx context.Context) (any, error) {
		return fn(ctx)
	}))
}

// Invoke1 invokes fn through a and returns its result.
func Invoke1[P1, R any](ctx context.Context, a *Aspect, fn func(context.Context, P1) (R, error), p1 P1) (R, error) {
	return typedResult[R](a.Invoke(ctx, fn, []any{p1}, func(ctx context.Context) (any, error) {
		return fn(ctx, p1)
	}))
}

// Invoke2 invokes fn through a and returns its result.
func Invoke2[P1, P2, R any](ctx context.Context, a *Aspect, fn func(context.Context, P1, P2) (R, error), p1 P1, p2 P2) (R, error) {
	return typedResult[R](a.Invoke(ctx, fn, []any{p1, p2}, func(ctx context.Context) (any, error) {
		return fn(ctx, p1, p2)
	}))
}

// Invoke3 invokes fn through a and returns its result.
func Invoke3[P1, P2, P3, R any](ctx context.Context, a *Aspect, fn func(context.Context, P1, P2, P3) (R, error), p1 P1, p2 P2, p3 P3) (R, error) {
	return typedResult[R](a.Invoke(ctx, fn, []any{p1, p2, p3}, func(ctx context.Context) (any, error) {
		return fn(ctx, p1, p2, p3)
	}))
}

// Invoke4 invokes fn through a and returns its result.
func Invoke4[P1, P2, P3, P4, R any](ctx context.Context, a *Aspect, fn func(context.Context, P1, P2, P3, P4) (R, error), p1 P1, p2 P2, p3 P3, p4 P4) (R, error) {
	return typedResult[R](a.Invoke(ctx, fn, []any{p1, p2, p3, p4}, func(ctx context.Context) (any, error) {
		return fn(ctx, p1, p2, p3, p4)
	}))
}

// Invoke5 invokes fn through a and returns its result.
func Invoke5[P1, P2, P3, P4, P5, R any](ctx context.Context, a *Aspect, fn func(context.Context, P1, P2, P3, P4, P5) (R, error), p1 P1, p2 P2, p3 P3, p4 P4, p5 P5) (R, error) {
	return typedResult[R](a.Invoke(ctx, fn, []any{p1, p2, p3, p4, p5}, func(ctx context.Context) (any, error) {
		return fn(ctx, p1, p2, p3, p4, p5)
	}))
}
