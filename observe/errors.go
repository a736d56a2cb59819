package observe

import "errors"

// Errors returned by Config.Validate. Each is wrapped with the offending
// value.
var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: sample percentage outside [0, 1]")
	ErrInvalidTracingExporter = errors.New("observe: unknown tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: unknown metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: unknown log level")
	ErrInvalidLogFormat       = errors.New("observe: unknown log format")
)

// ErrMissingMethodName is returned by MethodMeta.Validate for an identity
// without a method name.
var ErrMissingMethodName = errors.New("observe: method name is required")
