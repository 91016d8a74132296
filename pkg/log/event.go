package log

import (
	"fmt"
	"time"
)

// Level classifies the severity of an event.
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error")
// to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Event is a single structured log record.
type Event struct {
	// Timestamp when the event occurred.
	Timestamp time.Time

	// Level is the severity.
	Level Level

	// Component identifies the emitting subsystem ("daemon",
	// "transport", a provider name).
	Component string

	// Message is the human-readable event text.
	Message string

	// Err carries the triggering error, if any.
	Err error

	// Fields holds additional structured context.
	Fields map[string]any
}

// Debugf logs a formatted debug event to l.
func Debugf(l Logger, component, format string, args ...any) {
	emit(l, LevelDebug, component, nil, format, args...)
}

// Infof logs a formatted info event to l.
func Infof(l Logger, component, format string, args ...any) {
	emit(l, LevelInfo, component, nil, format, args...)
}

// Warnf logs a formatted warning event to l.
func Warnf(l Logger, component, format string, args ...any) {
	emit(l, LevelWarn, component, nil, format, args...)
}

// Errorf logs a formatted error event with its cause to l.
func Errorf(l Logger, component string, err error, format string, args ...any) {
	emit(l, LevelError, component, err, format, args...)
}

func emit(l Logger, level Level, component string, err error, format string, args ...any) {
	if l == nil {
		return
	}
	l.Log(Event{
		Timestamp: time.Now(),
		Level:     level,
		Component: component,
		Message:   fmt.Sprintf(format, args...),
		Err:       err,
	})
}
