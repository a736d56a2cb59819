package loggable

import "reflect"

// Marker opts a struct type into extraction when embedded:
//
//	type Order struct {
//		loggable.Marker
//		ID string
//	}
//
// Only a direct embedding counts; a type that embeds a marked type is not
// itself marked.
type Marker struct{}

// Item is one extracted key/value pair.
type Item struct {
	Key   string
	Value any
}

// Parser extracts loggable items from a state value.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Ordering: items are returned in a stable order for a given type.
//   - Errors: only plan construction may fail; a nil state is never an error.
type Parser interface {
	Parse(state any) ([]Item, error)
}

// DefaultParser is the Parser backed by the process-wide plan cache.
type DefaultParser struct{}

// Parse implements Parser.
func (DefaultParser) Parse(state any) ([]Item, error) {
	return Parse(state)
}

// Default is the shared DefaultParser.
var Default Parser = DefaultParser{}

// Parse extracts the loggable items of state.
//
// A nil state, a nil pointer, a non-struct value or an unmarked type yields
// no items and no error. Fields whose value is nil are skipped unless the
// field carries a replace directive, in which case the replacement is always
// emitted.
func Parse(state any) ([]Item, error) {
	if state == nil {
		return nil, nil
	}

	v := reflect.ValueOf(state)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil
	}

	plan, err := PlanFor(v.Type())
	if err != nil {
		return nil, err
	}
	return plan.Apply(v), nil
}
