package log

import (
	"fmt"
	"os"
	"sync"
)

// FileLogger appends events as text lines to a file. It is safe for
// concurrent use and drops events below its minimum level.
type FileLogger struct {
	mu       sync.Mutex
	file     *os.File
	minLevel Level
	closed   bool
}

// NewFileLogger opens (or creates, 0644) the file at path for
// appending. Events below minLevel are discarded.
func NewFileLogger(path string, minLevel Level) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{file: f, minLevel: minLevel}, nil
}

// Log appends the event as one line. Write errors are swallowed:
// logging must not disrupt the daemon.
func (l *FileLogger) Log(event Event) {
	if event.Level < l.minLevel {
		return
	}

	line := fmt.Sprintf("[%s] %s %s: %s",
		event.Timestamp.Format("2006-01-02 15:04:05"),
		event.Level, event.Component, event.Message)
	if event.Err != nil {
		line += fmt.Sprintf(" error=%q", event.Err.Error())
	}
	for k, v := range event.Fields {
		line += fmt.Sprintf(" %s=%v", k, v)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	_, _ = l.file.WriteString(line + "\n")
}

// Close closes the log file. Safe to call multiple times; subsequent
// Log calls are silently ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
