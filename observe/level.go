package observe

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// LogLevel represents a logging level. Values line up with zapcore levels;
// LevelTrace sits below debug.
type LogLevel int8

const (
	LevelTrace LogLevel = LogLevel(zapcore.DebugLevel) - 1
	LevelDebug LogLevel = LogLevel(zapcore.DebugLevel)
	LevelInfo  LogLevel = LogLevel(zapcore.InfoLevel)
	LevelWarn  LogLevel = LogLevel(zapcore.WarnLevel)
	LevelError LogLevel = LogLevel(zapcore.ErrorLevel)

	// LevelNone is never enabled.
	LevelNone LogLevel = LogLevel(zapcore.InvalidLevel)
)

// ParseLogLevel parses a string log level. Unknown values map to info.
func ParseLogLevel(s string) LogLevel {
	l, err := parseLevel(s)
	if err != nil {
		return LevelInfo
	}
	return l
}

func parseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "none", "off":
		return LevelNone, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelNone:
		return "none"
	default:
		return fmt.Sprintf("level(%d)", int8(l))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so levels decode from
// configuration files and environment variables.
func (l *LogLevel) UnmarshalText(text []byte) error {
	parsed, err := parseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Zap returns the zapcore level for l.
func (l LogLevel) Zap() zapcore.Level {
	return zapcore.Level(l)
}
