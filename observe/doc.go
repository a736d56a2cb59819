// Package observe provides the telemetry collaborators used by the logging
// aspect: a leveled structured Logger with context-carried scopes, an
// OpenTelemetry tracer and invocation metrics keyed by method identity.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond logger and exporter setup. The aspect and filter packages consume it.
package observe
