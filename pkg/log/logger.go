// Package log defines the logging surface used by the sysstats daemon.
//
// Components emit structured Events through the Logger interface;
// applications choose where they go: an slog.Logger, a plain file or
// nowhere. Logging must never disrupt the daemon, so implementations
// swallow their own I/O errors.
package log

// Logger is the interface components use to emit log events.
// Pass nil or NoopLogger to disable logging.
type Logger interface {
	// Log records an event. Implementations must be safe for
	// concurrent use and should return quickly.
	Log(event Event)
}

// NoopLogger discards all events. Use when logging is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}

// OrNoop returns l, or a NoopLogger if l is nil, so call sites never
// have to nil-check.
func OrNoop(l Logger) Logger {
	if l == nil {
		return NoopLogger{}
	}
	return l
}
