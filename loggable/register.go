package loggable

import (
	"fmt"
	"reflect"
)

// Option declares a field directive at registration time.
type Option func(overrides map[string]fieldRule)

// OmitField omits the named field.
func OmitField(field string) Option {
	return func(o map[string]fieldRule) {
		r := o[field]
		r.omit = true
		o[field] = r
	}
}

// ReplaceField replaces the named field with value. Unlike the struct tag
// form, value may be of any type, including nil.
func ReplaceField(field string, value any) Option {
	return func(o map[string]fieldRule) {
		r := o[field]
		r.replace = true
		r.replaceVal = value
		o[field] = r
	}
}

// Register marks T as loggable without embedding Marker and publishes its
// plan. Options are merged with the struct tags of T; when a field ends up
// with both omit and replace, replace wins.
//
// Register replaces any plan already cached for T, so it belongs in program
// initialization, before T is first logged.
func Register[T any](opts ...Option) error {
	t := indirect(reflect.TypeFor[T]())
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s", ErrNotStruct, t)
	}

	overrides := make(map[string]fieldRule, len(opts))
	for _, opt := range opts {
		opt(overrides)
	}
	for name := range overrides {
		if f, ok := t.FieldByName(name); !ok || !f.IsExported() {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, t.Name(), name)
		}
	}

	plan, err := buildPlan(t, true, overrides)
	if err != nil {
		return err
	}
	plans.Store(t, &planResult{plan: plan})
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister[T any](opts ...Option) {
	if err := Register[T](opts...); err != nil {
		panic(err)
	}
}
