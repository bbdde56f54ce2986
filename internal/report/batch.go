package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BatchSession groups the reports of a multi-target run under one
// directory, created once at startup and reused for every target.
type BatchSession struct {
	ID   string // run identifier, embedded in report metadata
	Name string // directory name, BATCH-<timestamp>
	Dir  string
}

// NewBatchSession creates the batch directory under reportsDir and
// writes TARGETS.txt listing the targets of this invocation.
func NewBatchSession(reportsDir string, targets []string) (*BatchSession, error) {
	name := "BATCH-" + time.Now().Format("06-01-02_15-04-05")
	dir := filepath.Join(reportsDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating batch folder %s: %w", dir, err)
	}

	s := &BatchSession{
		ID:   uuid.NewString(),
		Name: name,
		Dir:  dir,
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# session %s\n", s.ID)
	for _, t := range targets {
		b.WriteString(t)
		b.WriteByte('\n')
	}
	targetsFile := filepath.Join(dir, "TARGETS.txt")
	if err := os.WriteFile(targetsFile, []byte(b.String()), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", targetsFile, err)
	}
	return s, nil
}

// UniqueOutputFile returns path, or path_2, path_3... if files with
// the earlier names already exist.
func UniqueOutputFile(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", path, i)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
