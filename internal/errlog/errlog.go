// Package errlog provides the durable per-request failure log shared
// across all targets of a run.
package errlog

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Log is a thread-safe append-only sink for probe failures. A single
// lock covers the whole format-write-sync sequence so lines from
// concurrent workers never interleave.
type Log struct {
	mu        sync.Mutex
	file      *os.File
	path      string
	closeOnce sync.Once
	closeErr  error
}

// Open creates the error log file at path, truncating any previous one.
func Open(path string) (*Log, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating error log %s: %w", path, err)
	}
	return &Log{file: f, path: path}, nil
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Append records one probe failure and flushes it to disk.
func (l *Log) Append(targetURL, path, message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("[%s] - %s - %s - %s\n",
		time.Now().Format("06-01-02 15:04:05"), targetURL, path, message)
	if _, err := l.file.WriteString(line); err != nil {
		return err
	}
	return l.file.Sync()
}

// Close closes the underlying file. Safe to call more than once; the
// file is closed exactly once.
func (l *Log) Close() error {
	l.closeOnce.Do(func() {
		l.closeErr = l.file.Close()
	})
	return l.closeErr
}
