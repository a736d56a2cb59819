package health

import (
	"context"
	"errors"
	"testing"

	"github.com/jonwraymond/logaspect/aspect"
	"github.com/jonwraymond/logaspect/observe"
	"github.com/jonwraymond/logaspect/observe/observetest"
)

func TestAspectProbe_Healthy(t *testing.T) {
	rec := observetest.New(observe.LevelDebug)
	a, err := aspect.New(rec, aspect.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	r := NewAspectProbe(a).Check(context.Background())
	if r.Status != StatusHealthy {
		t.Fatalf("Check() = %+v, want healthy", r)
	}
	if got := rec.Messages(); len(got) != 2 || got[0] != "Executing method Ping on class Probe in assembly github.com/jonwraymond/logaspect/health." {
		t.Errorf("Messages() = %v", got)
	}
	rec.AssertBalanced(t)
}

func TestAspectProbe_CanceledContext(t *testing.T) {
	a, err := aspect.New(observe.NoopLogger(), aspect.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewAspectProbe(a).Check(ctx)
	if r.Status != StatusUnhealthy || !errors.Is(r.Err, ErrProbeFailed) || !errors.Is(r.Err, context.Canceled) {
		t.Errorf("Check() = %+v, want probe failure", r)
	}
}

func TestLoggerCheck(t *testing.T) {
	rec := observetest.New(observe.LevelWarn)

	if r := NewLoggerCheck(rec, observe.LevelError).Check(context.Background()); r.Status != StatusHealthy {
		t.Errorf("error level: %+v, want healthy", r)
	}
	r := NewLoggerCheck(rec, observe.LevelInfo).Check(context.Background())
	if r.Status != StatusDegraded || !errors.Is(r.Err, ErrLoggerDisabled) {
		t.Errorf("info level: %+v, want degraded", r)
	}
}
