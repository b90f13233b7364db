// Package report owns the per-session log file. The file records, per
// image, the path, the classification and where the file was moved, plus any
// per-image error, so a user can review what an irreversible run actually
// did. The file is truncated at every run start: it documents the latest
// session, not an append-only history (the sqlite journal keeps history).
package report

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Logger writes flat "timestamp - LEVEL - message" lines to the session log
// file. Safe for concurrent use. A nil *Logger is valid and discards all
// writes, which lets callers disable the file log without branching.
type Logger struct {
	mu sync.Mutex
	f  *os.File
}

// Create opens (and truncates) the session log at path.
func Create(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open session log: %w", err)
	}
	return &Logger{f: f}, nil
}

// Infof writes an INFO line.
func (l *Logger) Infof(format string, args ...any) {
	l.write("INFO", format, args...)
}

// Errorf writes an ERROR line.
func (l *Logger) Errorf(format string, args ...any) {
	l.write("ERROR", format, args...)
}

func (l *Logger) write(level, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(l.f, "%s - %s - %s\n", ts, level, fmt.Sprintf(format, args...))
}

// Close flushes and closes the log file. Safe to call on a nil Logger and
// safe to call more than once.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
