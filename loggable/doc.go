// Package loggable turns arbitrary values into ordered key/value items for
// structured log scopes.
//
// A struct type opts in by embedding Marker, or by being registered with
// Register. Exported fields are surfaced as "{TypeName}_{FieldName}" keys in
// declaration order. Individual fields can be suppressed or masked with the
// log struct tag:
//
//	type Login struct {
//		loggable.Marker
//		User     string
//		Password string `log:"omit"`
//		Token    string `log:"replace=***"`
//	}
//
// The field layout of each type is inspected once and cached for the life of
// the process; every later Parse reuses the cached Plan.
package loggable
