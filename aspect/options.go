package aspect

import (
	"fmt"

	"github.com/jonwraymond/logaspect/loggable"
	"github.com/jonwraymond/logaspect/msgtemplate"
	"github.com/jonwraymond/logaspect/observe"
)

// Default message templates.
const (
	DefaultExecutingTemplate = "Executing method {MethodName} on class {ClassName} in assembly {AssemblyName}."
	DefaultExecutedTemplate  = "Executed method {MethodName} on class {ClassName} in assembly {AssemblyName}."
	DefaultScopeTemplate     = "{ClassName}.{MethodName} ({AssemblyName})"
)

// Options configures the records an Aspect writes.
type Options struct {
	// ExecutionLevel gates the executing and executed records.
	ExecutionLevel observe.LogLevel `koanf:"execution_level"`
	// StateItemsLevel gates parameter and result scopes.
	StateItemsLevel observe.LogLevel `koanf:"state_items_level"`

	ExecutingTemplate string `koanf:"executing_template"`
	ExecutedTemplate  string `koanf:"executed_template"`
	ScopeTemplate     string `koanf:"scope_template"`
}

// DefaultOptions returns debug execution records, trace state scopes and the
// default templates.
func DefaultOptions() Options {
	return Options{
		ExecutionLevel:    observe.LevelDebug,
		StateItemsLevel:   observe.LevelTrace,
		ExecutingTemplate: DefaultExecutingTemplate,
		ExecutedTemplate:  DefaultExecutedTemplate,
		ScopeTemplate:     DefaultScopeTemplate,
	}
}

// Validate rejects empty templates and unknown levels.
func (o Options) Validate() error {
	templates := []struct{ name, value string }{
		{"executing", o.ExecutingTemplate},
		{"executed", o.ExecutedTemplate},
		{"scope", o.ScopeTemplate},
	}
	for _, t := range templates {
		if t.value == "" {
			return fmt.Errorf("%w: %s", ErrEmptyTemplate, t.name)
		}
	}

	for _, l := range []observe.LogLevel{o.ExecutionLevel, o.StateItemsLevel} {
		if !validLevel(l) {
			return fmt.Errorf("%w: %d", ErrInvalidLevel, int8(l))
		}
	}
	return nil
}

func validLevel(l observe.LogLevel) bool {
	return (l >= observe.LevelTrace && l <= observe.LevelError) || l == observe.LevelNone
}

// Option customizes an Aspect's collaborators.
type Option func(*Aspect)

// WithTracer starts a span per invocation on t.
func WithTracer(t observe.Tracer) Option {
	return func(a *Aspect) {
		if t != nil {
			a.tracer = t
		}
	}
}

// WithMetrics records invocation metrics on m.
func WithMetrics(m observe.Metrics) Option {
	return func(a *Aspect) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithParser replaces the loggable state parser.
func WithParser(p loggable.Parser) Option {
	return func(a *Aspect) {
		if p != nil {
			a.parser = p
		}
	}
}

// WithResolver replaces the process-wide template order cache.
func WithResolver(r *msgtemplate.Resolver) Option {
	return func(a *Aspect) {
		if r != nil {
			a.resolver = r
		}
	}
}
