package health

import (
	"context"
	"time"
)

// Status ranks component health; a larger value is worse.
type Status int

const (
	StatusHealthy Status = iota
	StatusDegraded
	StatusUnhealthy
)

var statusNames = [...]string{"healthy", "degraded", "unhealthy"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// Worse returns the worse of s and other.
func (s Status) Worse(other Status) Status {
	return max(s, other)
}

// Result is what one check reports. Name, Duration and a timeout Err are
// filled in by the Aggregator.
type Result struct {
	Name     string
	Status   Status
	Message  string
	Details  map[string]any
	Duration time.Duration
	Err      error
}

func Healthy(message string) Result { return Result{Status: StatusHealthy, Message: message} }

func Degraded(message string) Result { return Result{Status: StatusDegraded, Message: message} }

func Unhealthy(message string, err error) Result {
	return Result{Status: StatusUnhealthy, Message: message, Err: err}
}

// WithDetails attaches details, replacing any already set.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// A Checker probes one dependency of the service. Check may run concurrently
// with itself and should give up once ctx is done.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckFunc names fn as a Checker.
func CheckFunc(name string, fn func(context.Context) Result) Checker {
	return checkFunc{name, fn}
}

type checkFunc struct {
	name string
	fn   func(context.Context) Result
}

func (c checkFunc) Name() string                     { return c.name }
func (c checkFunc) Check(ctx context.Context) Result { return c.fn(ctx) }
