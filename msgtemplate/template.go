package msgtemplate

import (
	"sync"
	"sync/atomic"
)

// Template is an interned message template.
//
// Equal IDs always refer to the same Value for the life of the process. The
// zero ID is never assigned; a Template built by hand is interned on first use.
type Template struct {
	ID    int
	Value string
}

var (
	registry sync.Map // string -> Template
	nextID   atomic.Int64
)

// Intern returns the Template for value, assigning a new ID the first time
// value is seen.
func Intern(value string) Template {
	if t, ok := registry.Load(value); ok {
		return t.(Template)
	}
	t := Template{ID: int(nextID.Add(1)), Value: value}
	actual, _ := registry.LoadOrStore(value, t)
	return actual.(Template)
}

// String returns the template text.
func (t Template) String() string {
	return t.Value
}
