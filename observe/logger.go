package observe

import (
	"context"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jonwraymond/logaspect/msgtemplate"
)

// TemplateKey is the field carrying the unrendered message template of
// records written through Log.
const TemplateKey = "msg_template"

// Logger writes leveled structured records. It is safe for concurrent use
// and never panics.
//
// BeginScope returns a derived context; records written with that context or
// its descendants carry the scope fields until the scope is closed.
type Logger interface {
	Enabled(ctx context.Context, level LogLevel) bool

	// Log renders template with args positionally. Each hole also becomes a
	// field named after it.
	Log(ctx context.Context, level LogLevel, template string, args ...any)

	BeginScope(ctx context.Context, fields ...Field) (context.Context, Scope)

	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
}

// Field is one key/value pair of a record or scope.
type Field struct {
	Key   string
	Value any
}

// NoopLogger returns a Logger that writes nothing and tracks no scopes.
func NoopLogger() Logger { return noopLogger{} }

type noopLogger struct{}

func (noopLogger) Enabled(context.Context, LogLevel) bool        { return false }
func (noopLogger) Log(context.Context, LogLevel, string, ...any) {}
func (noopLogger) BeginScope(ctx context.Context, _ ...Field) (context.Context, Scope) {
	return ctx, noopScope{}
}
func (noopLogger) Info(context.Context, string, ...Field)  {}
func (noopLogger) Warn(context.Context, string, ...Field)  {}
func (noopLogger) Error(context.Context, string, ...Field) {}
func (noopLogger) Debug(context.Context, string, ...Field) {}

// zapLogger is the zap-backed Logger implementation.
type zapLogger struct {
	zap *zap.Logger
}

// NewLogger creates a JSON logger writing to stderr at the given level.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a JSON logger with a custom writer.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	core := zapcore.NewCore(
		newEncoder("json"),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(ParseLogLevel(level).Zap()),
	)
	return NewZapLogger(zap.New(core))
}

// NewZapLogger adapts an existing zap logger. Its core decides which levels
// are enabled.
func NewZapLogger(z *zap.Logger) Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &zapLogger{zap: z}
}

// newEncoder creates a JSON or console encoder.
func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	encoderCfg.EncodeLevel = encodeLevel

	if format == "console" {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}

// encodeLevel writes lowercase level names, including trace.
func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == LevelTrace.Zap() {
		enc.AppendString("trace")
		return
	}
	zapcore.LowercaseLevelEncoder(l, enc)
}

func (l *zapLogger) Enabled(_ context.Context, level LogLevel) bool {
	if level == LevelNone {
		return false
	}
	return l.zap.Core().Enabled(level.Zap())
}

// Log renders template positionally and attaches one field per hole, named
// after the hole, plus the raw template under TemplateKey. A hole field
// replaces a scope field with the same name.
func (l *zapLogger) Log(ctx context.Context, level LogLevel, template string, args ...any) {
	if !l.Enabled(ctx, level) {
		return
	}

	names := msgtemplate.Names(template)
	fields := l.contextFields(ctx, len(names)+1)
	for i, name := range names {
		if i >= len(args) {
			break
		}
		if seenBefore(names[:i], name) {
			continue
		}
		fields = setField(fields, zapField(Field{Key: name, Value: args[i]}))
	}
	fields = append(fields, zap.String(TemplateKey, template))

	l.zap.Log(level.Zap(), msgtemplate.Format(template, args...), fields...)
}

// setField replaces the field with f's key, or appends f. Inner values win
// over the scopes they shadow.
func setField(fields []zap.Field, f zap.Field) []zap.Field {
	for i := range fields {
		if fields[i].Key == f.Key {
			fields[i] = f
			return fields
		}
	}
	return append(fields, f)
}

func seenBefore(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func (l *zapLogger) BeginScope(ctx context.Context, fields ...Field) (context.Context, Scope) {
	return WithScope(ctx, nil, fields...)
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelDebug, msg, fields)
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelInfo, msg, fields)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelWarn, msg, fields)
}

func (l *zapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelError, msg, fields)
}

func (l *zapLogger) write(ctx context.Context, level LogLevel, msg string, fields []Field) {
	if !l.Enabled(ctx, level) {
		return
	}

	all := l.contextFields(ctx, len(fields))
	for _, f := range fields {
		all = setField(all, zapField(f))
	}
	l.zap.Log(level.Zap(), msg, all...)
}

// contextFields collects trace correlation and open scope fields from ctx.
// extra reserves capacity for the caller's own fields.
func (l *zapLogger) contextFields(ctx context.Context, extra int) []zap.Field {
	scoped := ScopeFields(ctx)
	fields := make([]zap.Field, 0, len(scoped)+extra+2)

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	for _, f := range scoped {
		fields = setField(fields, zapField(f))
	}
	return fields
}

// Sync flushes buffered entries.
func (l *zapLogger) Sync() error {
	return l.zap.Sync()
}

// zapField converts a Field, redacting sensitive keys.
func zapField(f Field) zap.Field {
	if isRedactedField(f.Key) {
		return zap.String(f.Key, "[REDACTED]")
	}
	return zap.Any(f.Key, f.Value)
}

// RedactedFields names keys whose values are written as "[REDACTED]". A key
// matches an entry equal to it, or ending in "_" plus the entry, so extracted
// keys such as "Login_password" are caught. Case is ignored.
var RedactedFields = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"apiKey",
	"credential",
}

func isRedactedField(key string) bool {
	for _, r := range RedactedFields {
		if strings.EqualFold(key, r) {
			return true
		}
		n := len(key) - len(r)
		if n > 0 && key[n-1] == '_' && strings.EqualFold(key[n:], r) {
			return true
		}
	}
	return false
}

// Ensure zapLogger implements Logger
var _ Logger = (*zapLogger)(nil)
