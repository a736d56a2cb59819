package loggable

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// TagName is the struct tag key read for field directives.
const TagName = "log"

// Directive controls how a single field is extracted.
type Directive int

const (
	// Normal emits the field value when it is present.
	Normal Directive = iota
	// Omit never emits the field and never reads it.
	Omit
	// Replace always emits a fixed value instead of the field value.
	Replace
)

func (d Directive) String() string {
	switch d {
	case Omit:
		return "omit"
	case Replace:
		return "replace"
	default:
		return "normal"
	}
}

// Entry is one extractable field of a Plan.
type Entry struct {
	Key       string    // "{TypeName}_{FieldName}"
	Field     string    // Go field name
	Directive Directive // extraction directive
	Value     any       // replacement value when Directive is Replace

	index []int
}

// Plan is the cached extraction layout of a struct type.
//
// Contract:
//   - Immutability: a Plan is never modified after it is published.
//   - Ordering: Entries follow field declaration order; promoted fields of
//     embedded structs follow their embedding field.
type Plan struct {
	Type    reflect.Type
	Entries []Entry
}

// Empty reports whether the plan extracts nothing.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Entries) == 0
}

// Apply extracts items from v, which must be a struct value of p.Type.
func (p *Plan) Apply(v reflect.Value) []Item {
	if p.Empty() {
		return nil
	}

	items := make([]Item, 0, len(p.Entries))
	for i := range p.Entries {
		e := &p.Entries[i]
		switch e.Directive {
		case Omit:
			continue
		case Replace:
			items = append(items, Item{Key: e.Key, Value: e.Value})
		default:
			fv, err := v.FieldByIndexErr(e.index)
			if err != nil || isAbsent(fv) {
				// nil embedded pointer on the path, or a nil value
				continue
			}
			items = append(items, Item{Key: e.Key, Value: fv.Interface()})
		}
	}

	if len(items) == 0 {
		return nil
	}
	return items
}

// isAbsent reports whether a field value counts as nil.
func isAbsent(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return v.IsNil()
	case reflect.Invalid:
		return true
	default:
		return false
	}
}

var (
	markerType = reflect.TypeOf(Marker{})
	emptyPlan  = &Plan{}

	plans      sync.Map // reflect.Type -> *planResult
	planFlight singleflight.Group
)

type planResult struct {
	plan *Plan
	err  error
}

// PlanFor returns the cached extraction plan for t, building it on first use.
// Pointer types resolve to their element type. Types that are not structs, or
// that are neither marked nor registered, resolve to an empty plan.
//
// A construction error is cached with the type and returned on every call.
func PlanFor(t reflect.Type) (*Plan, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return emptyPlan, nil
	}

	if r, ok := plans.Load(t); ok {
		res := r.(*planResult)
		return res.plan, res.err
	}

	// Concurrent first encounters share one build; a build racing with
	// Register loses to the registered plan via LoadOrStore.
	r, _, _ := planFlight.Do(typeKey(t), func() (any, error) {
		if r, ok := plans.Load(t); ok {
			return r, nil
		}
		plan, err := buildPlan(t, hasMarker(t), nil)
		r, _ := plans.LoadOrStore(t, &planResult{plan: plan, err: err})
		return r, nil
	})
	res := r.(*planResult)
	return res.plan, res.err
}

// typeKey returns a process-unique key for a type descriptor.
func typeKey(t reflect.Type) string {
	return fmt.Sprintf("%p", t)
}

// hasMarker reports whether t embeds Marker directly.
func hasMarker(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == markerType {
			return true
		}
	}
	return false
}

// fieldRule is the merged set of directives declared for one field.
type fieldRule struct {
	omit       bool
	replace    bool
	replaceVal any
}

// buildPlan enumerates the visible exported fields of t. Overrides from
// registration are merged with struct tags; replace wins over omit.
func buildPlan(t reflect.Type, marked bool, overrides map[string]fieldRule) (*Plan, error) {
	if !marked {
		return emptyPlan, nil
	}

	typeName := t.Name()
	fields := reflect.VisibleFields(t)
	entries := make([]Entry, 0, len(fields))

	for _, f := range fields {
		if !f.IsExported() || !reachable(t, f.Index) {
			continue
		}
		if f.Anonymous && (f.Type == markerType || indirect(f.Type).Kind() == reflect.Struct) {
			// promoted fields of the embedded struct are listed separately
			continue
		}

		rule, err := parseTag(f.Tag.Get(TagName))
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", typeName, f.Name, err)
		}
		if o, ok := overrides[f.Name]; ok {
			rule.omit = rule.omit || o.omit
			if o.replace {
				rule.replace = true
				rule.replaceVal = o.replaceVal
			}
		}

		e := Entry{
			Key:   typeName + "_" + f.Name,
			Field: f.Name,
			index: f.Index,
		}
		switch {
		case rule.replace:
			e.Directive = Replace
			e.Value = rule.replaceVal
		case rule.omit:
			e.Directive = Omit
		}
		entries = append(entries, e)
	}

	return &Plan{Type: t, Entries: entries}, nil
}

// reachable reports whether every embedded field on the path to index is
// exported, so the final value can be read through reflection.
func reachable(t reflect.Type, index []int) bool {
	for i := 1; i < len(index); i++ {
		if !t.FieldByIndex(index[:i]).IsExported() {
			return false
		}
	}
	return true
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// parseTag parses a log struct tag.
//
//	""                 normal
//	"-" | "omit"       omit
//	"replace"          replace with nil
//	"replace=VALUE"    replace with the string VALUE (may contain commas)
//
// Directives are comma separated; everything after "replace=" is the value.
func parseTag(tag string) (fieldRule, error) {
	var rule fieldRule
	for tag = strings.TrimLeft(tag, " "); tag != ""; tag = strings.TrimLeft(tag, " ") {
		part := tag
		if strings.HasPrefix(part, "replace=") {
			rule.replace = true
			rule.replaceVal = strings.TrimPrefix(part, "replace=")
			break
		}
		if i := strings.IndexByte(tag, ','); i >= 0 {
			part, tag = tag[:i], tag[i+1:]
		} else {
			tag = ""
		}

		switch strings.TrimSpace(part) {
		case "-", "omit":
			rule.omit = true
		case "replace":
			rule.replace = true
			rule.replaceVal = nil
		case "":
		default:
			return fieldRule{}, fmt.Errorf("%w: %q", ErrInvalidTag, part)
		}
	}
	return rule, nil
}
