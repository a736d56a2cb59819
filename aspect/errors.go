package aspect

import "errors"

var (
	// ErrNilLogger indicates New was given a nil logger.
	ErrNilLogger = errors.New("aspect: logger is nil")

	// ErrNilObserver indicates FromObserver was given a nil observer.
	ErrNilObserver = errors.New("aspect: observer is nil")

	// ErrEmptyTemplate indicates an empty message template in Options.
	ErrEmptyTemplate = errors.New("aspect: template is empty")

	// ErrInvalidLevel indicates a log level outside trace..none in Options.
	ErrInvalidLevel = errors.New("aspect: invalid log level")

	// ErrNilMethod indicates a nil method value or a nil call.
	ErrNilMethod = errors.New("aspect: method is nil")

	// ErrNotFunc indicates a method value that is not a function.
	ErrNotFunc = errors.New("aspect: method is not a function")

	// ErrPanicked is recorded on spans and metrics when the wrapped call
	// panics. The panic itself keeps propagating.
	ErrPanicked = errors.New("aspect: wrapped call panicked")
)
