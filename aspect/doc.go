// Package aspect wraps function and method calls with executing/executed log
// records and structured scopes built from their parameters and results.
//
// A call through an Aspect:
//
//  1. logs the executing record inside one scope per loggable parameter,
//     acquired in reverse parameter order and released right after;
//  2. opens the method scope (always, whatever the level) and a span;
//  3. runs the wrapped call with the method scope's context;
//  4. on success, logs the executed record inside the result scope;
//  5. closes the method scope, ends the span and records metrics.
//
// Errors and panics from the wrapped call propagate unchanged. Cleanup runs
// on every exit path and the executed record is skipped.
//
// Typed helpers cover zero to five parameters:
//
//	err := aspect.Call2(ctx, a, repo.Save, order, opts)
//	total, err := aspect.Invoke1(ctx, a, cart.Checkout, req)
//	fut := aspect.Async1(ctx, a, cart.Checkout, req)
//	total, err = fut.Wait(ctx)
package aspect
