// Package observetest provides a recording observe.Logger for tests.
package observetest

import (
	"context"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonwraymond/logaspect/observe"
)

// ScopeRecord is one scope opened through a Recorder.
type ScopeRecord struct {
	Fields []observe.Field
	Closed bool
}

// Recorder is an observe.Logger that keeps every entry in memory and keeps a
// ledger of scope acquisitions and releases.
type Recorder struct {
	observe.Logger
	observed *observer.ObservedLogs

	mu     sync.Mutex
	scopes []ScopeRecord
	closes []int // scope indexes in release order
}

// New creates a Recorder enabled at level and above.
func New(level observe.LogLevel) *Recorder {
	core, observed := observer.New(level.Zap())
	return &Recorder{
		Logger:   observe.NewZapLogger(zap.New(core)),
		observed: observed,
	}
}

// BeginScope records the scope and opens it on the underlying logger.
func (r *Recorder) BeginScope(ctx context.Context, fields ...observe.Field) (context.Context, observe.Scope) {
	r.mu.Lock()
	idx := len(r.scopes)
	r.scopes = append(r.scopes, ScopeRecord{Fields: fields})
	r.mu.Unlock()

	return observe.WithScope(ctx, func() {
		r.mu.Lock()
		r.scopes[idx].Closed = true
		r.closes = append(r.closes, idx)
		r.mu.Unlock()
	}, fields...)
}

// All returns all logged entries.
func (r *Recorder) All() []observer.LoggedEntry {
	return r.observed.All()
}

// Messages returns the rendered message of every entry, in order.
func (r *Recorder) Messages() []string {
	entries := r.observed.All()
	msgs := make([]string, len(entries))
	for i, e := range entries {
		msgs[i] = e.Message
	}
	return msgs
}

// FilterMessage returns entries whose message contains msg.
func (r *Recorder) FilterMessage(msg string) *observer.ObservedLogs {
	return r.observed.FilterMessageSnippet(msg)
}

// Scopes returns a copy of the scope ledger in acquisition order.
func (r *Recorder) Scopes() []ScopeRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ScopeRecord, len(r.scopes))
	copy(out, r.scopes)
	return out
}

// ReleaseOrder returns acquisition indexes in the order scopes were closed.
func (r *Recorder) ReleaseOrder() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.closes...)
}

// Acquired returns the number of scopes opened.
func (r *Recorder) Acquired() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scopes)
}

// Released returns the number of scopes closed.
func (r *Recorder) Released() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.closes)
}

// Reset clears entries and the scope ledger.
func (r *Recorder) Reset() {
	r.observed.TakeAll()
	r.mu.Lock()
	r.scopes = nil
	r.closes = nil
	r.mu.Unlock()
}

// AssertLogged verifies an entry at level containing msg was logged.
func (r *Recorder) AssertLogged(tb testing.TB, level observe.LogLevel, msgContains string) {
	tb.Helper()
	for _, e := range r.observed.All() {
		if e.Level == level.Zap() && strings.Contains(e.Message, msgContains) {
			return
		}
	}
	tb.Errorf("expected log at %v containing %q, logs: %v", level, msgContains, r.Messages())
}

// AssertBalanced verifies every acquired scope was released.
func (r *Recorder) AssertBalanced(tb testing.TB) {
	tb.Helper()
	if a, rel := r.Acquired(), r.Released(); a != rel {
		tb.Errorf("scopes unbalanced: %d acquired, %d released", a, rel)
	}
}

var _ observe.Logger = (*Recorder)(nil)
