//go:build !windows

// Package process guards against concurrent daemon instances with a
// flock'd PID file.
package process

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// LockFile is an exclusive lock on a PID file. The lock is held by the
// open file descriptor, so it disappears automatically if the process
// dies.
type LockFile struct {
	path string
	fd   int
}

// defaultPath is a variable so tests can point it elsewhere.
var defaultPath = func() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "sysstatsd.pid")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "run", "sysstatsd.pid")
	}
	return fmt.Sprintf("/tmp/sysstatsd-%d.pid", os.Getuid())
}

// Acquire takes the daemon lock, creating the PID file if needed. It
// fails without blocking when another instance holds the lock. An empty
// path selects the default location.
func Acquire(path string) (*LockFile, error) {
	if path == "" {
		path = defaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create PID directory: %w", err)
	}

	fd, err := syscall.Open(path, syscall.O_RDWR|syscall.O_CREAT, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open PID file: %w", err)
	}

	if err := syscall.Flock(fd, syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("another instance is already running (PID file %s locked)", path)
	}

	if err := syscall.Ftruncate(fd, 0); err != nil {
		release(fd)
		return nil, fmt.Errorf("failed to truncate PID file: %w", err)
	}
	pid := fmt.Sprintf("%d\n", os.Getpid())
	if _, err := syscall.Write(fd, []byte(pid)); err != nil {
		release(fd)
		return nil, fmt.Errorf("failed to write PID: %w", err)
	}

	return &LockFile{path: path, fd: fd}, nil
}

// Release drops the lock and removes the PID file. Safe to call more
// than once.
func (lf *LockFile) Release() {
	if lf.fd <= 0 {
		return
	}
	release(lf.fd)
	os.Remove(lf.path)
	lf.fd = 0
}

// Path returns the PID file location.
func (lf *LockFile) Path() string {
	return lf.path
}

func release(fd int) {
	syscall.Flock(fd, syscall.LOCK_UN)
	syscall.Close(fd)
}
