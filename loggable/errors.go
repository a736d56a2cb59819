package loggable

import "errors"

// Plan construction errors.
var (
	// ErrInvalidTag indicates a log struct tag with an unknown directive.
	ErrInvalidTag = errors.New("loggable: invalid log tag")

	// ErrNotStruct indicates Register was called with a non-struct type.
	ErrNotStruct = errors.New("loggable: type is not a struct")

	// ErrUnknownField indicates a registration option names a field the type
	// does not have.
	ErrUnknownField = errors.New("loggable: unknown field")
)
