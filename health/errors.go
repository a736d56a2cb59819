package health

import "errors"

var (
	// ErrCheckTimeout indicates a check did not finish before the deadline.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates no checker is registered under a name.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrProbeFailed indicates the aspect probe invocation returned an error.
	ErrProbeFailed = errors.New("health: aspect probe failed")

	// ErrLoggerDisabled indicates the logger drops records at the level a
	// server needs.
	ErrLoggerDisabled = errors.New("health: logger disabled at required level")
)
