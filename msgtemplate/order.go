package msgtemplate

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Placeholder tokens recognized in templates. Matching is case-insensitive.
const (
	AssemblyName = "{AssemblyName}"
	ClassName    = "{ClassName}"
	MethodName   = "{MethodName}"
)

// NotFound is the offset recorded for a placeholder absent from a template.
// It compares greater than every real offset, so absent placeholders sort last.
const NotFound = math.MaxInt

// Order holds the first-occurrence byte offsets of the assembly, class and
// method placeholders, in that order.
type Order [3]int

// ParseOrder scans template for the three placeholders.
func ParseOrder(template string) Order {
	return Order{
		indexFold(template, AssemblyName),
		indexFold(template, ClassName),
		indexFold(template, MethodName),
	}
}

// indexFold returns the byte offset of the first case-insensitive match of
// token in s, or NotFound.
func indexFold(s, token string) int {
	for i := 0; i+len(token) <= len(s); i++ {
		if s[i] == '{' && strings.EqualFold(s[i:i+len(token)], token) {
			return i
		}
	}
	return NotFound
}

// Arrange returns assembly, class and method rearranged into template order.
//
// The comparison cascade is fixed: assembly leads only when strictly before
// both others, class leads only when strictly before both others, otherwise
// method leads. Ties, including two absent placeholders, fall through to the
// next rule.
func (o Order) Arrange(assembly, class, method string) [3]string {
	a, c, m := o[0], o[1], o[2]

	switch {
	case a < c && a < m:
		if c < m {
			return [3]string{assembly, class, method}
		}
		return [3]string{assembly, method, class}
	case c < a && c < m:
		if a < m {
			return [3]string{class, assembly, method}
		}
		return [3]string{class, method, assembly}
	default:
		if a < c {
			return [3]string{method, assembly, class}
		}
		return [3]string{method, class, assembly}
	}
}

// Resolver caches placeholder orders per template.
//
// Contract:
//   - Concurrency: safe for concurrent use; the zero value is ready to use.
//   - Caching: each template is scanned at most once per Resolver under normal
//     operation and the result is kept for the life of the Resolver.
type Resolver struct {
	orders sync.Map // int -> Order
	flight singleflight.Group
}

// Order returns the cached Order for t.
func (r *Resolver) Order(t Template) Order {
	if t.ID == 0 {
		t = Intern(t.Value)
	}
	if o, ok := r.orders.Load(t.ID); ok {
		return o.(Order)
	}

	o, _, _ := r.flight.Do(strconv.Itoa(t.ID), func() (any, error) {
		o, _ := r.orders.LoadOrStore(t.ID, ParseOrder(t.Value))
		return o, nil
	})
	return o.(Order)
}

// OrderNames returns assembly, class and method in the order their
// placeholders appear in t.
func (r *Resolver) OrderNames(t Template, assembly, class, method string) [3]string {
	return r.Order(t).Arrange(assembly, class, method)
}

var defaultResolver Resolver

// Default returns the process-wide Resolver.
func Default() *Resolver {
	return &defaultResolver
}

// OrderNames orders the names for template using the process-wide Resolver.
func OrderNames(template, assembly, class, method string) [3]string {
	return defaultResolver.OrderNames(Intern(template), assembly, class, method)
}
