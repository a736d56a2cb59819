package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a CheckAll run when the Aggregator has no timeout.
const DefaultTimeout = 5 * time.Second

// Aggregator runs a set of checkers and folds their results into one status.
type Aggregator struct {
	timeout time.Duration

	mu       sync.RWMutex
	checkers []Checker
}

// NewAggregator creates an Aggregator. A non-positive timeout selects
// DefaultTimeout.
func NewAggregator(timeout ...time.Duration) *Aggregator {
	agg := &Aggregator{timeout: DefaultTimeout}
	if len(timeout) > 0 && timeout[0] > 0 {
		agg.timeout = timeout[0]
	}
	return agg
}

// Register adds c, replacing any checker with the same name in place.
func (a *Aggregator) Register(c Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, existing := range a.checkers {
		if existing.Name() == c.Name() {
			a.checkers[i] = c
			return
		}
	}
	a.checkers = append(a.checkers, c)
}

// Names returns checker names in registration order.
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.checkers))
	for i, c := range a.checkers {
		names[i] = c.Name()
	}
	return names
}

// Check runs the checker registered under name.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	var found Checker
	for _, c := range a.checkers {
		if c.Name() == name {
			found = c
			break
		}
	}
	a.mu.RUnlock()

	if found == nil {
		return Result{}, ErrCheckerNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return run(ctx, found), nil
}

// CheckAll runs every checker in parallel and returns results in
// registration order.
func (a *Aggregator) CheckAll(ctx context.Context) []Result {
	a.mu.RLock()
	checkers := append([]Checker(nil), a.checkers...)
	a.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	results := make([]Result, len(checkers))
	var g errgroup.Group
	for i, c := range checkers {
		g.Go(func() error {
			results[i] = run(ctx, c)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Overall folds results: any unhealthy result makes the whole unhealthy, any
// degraded one makes it degraded.
func Overall(results []Result) Status {
	status := StatusHealthy
	for _, r := range results {
		status = status.Worse(r.Status)
	}
	return status
}

// run executes c, converting a missed deadline into an unhealthy result.
func run(ctx context.Context, c Checker) Result {
	start := time.Now()
	done := make(chan Result, 1)
	go func() {
		done <- c.Check(ctx)
	}()

	var r Result
	select {
	case r = <-done:
	case <-ctx.Done():
		r = Unhealthy("check timed out", ErrCheckTimeout)
	}
	r.Name = c.Name()
	r.Duration = time.Since(start)
	return r
}
