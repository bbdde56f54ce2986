// Package report persists discovered paths to one or more durable
// sinks.
package report

import (
	"sync"

	"github.com/maxvaer/dirscout/internal/scanner"
)

// Entry is one recorded discovery.
type Entry struct {
	Path          string // full path relative to the target base path
	Status        int
	ContentLength int
	Redirect      string
}

// Sink is a durable output destination for discovered results.
// AddPath buffers an entry; Save rewrites the whole output so the file
// on disk always reflects every entry added so far.
type Sink interface {
	AddPath(path string, status int, resp *scanner.Response)
	Save() error
	Close() error
}

// Coordinator fans discoveries out to the attached sinks. Add-and-save
// runs under one lock, so after AddAndSave returns the entry is on
// disk for every sink — a crash loses at most the write in flight.
type Coordinator struct {
	mu    sync.Mutex
	sinks []Sink
}

// NewCoordinator returns a Coordinator with no sinks attached.
func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Attach adds a sink. Multiple sinks of different formats may be
// attached to the same coordinator.
func (c *Coordinator) Attach(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, s)
}

// AddAndSave records one discovery in every sink and flushes each to
// disk before returning.
func (c *Coordinator) AddAndSave(path string, status int, resp *scanner.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for _, s := range c.sinks {
		s.AddPath(path, status, resp)
		if err := s.Save(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Save flushes every sink.
func (c *Coordinator) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for _, s := range c.sinks {
		if err := s.Save(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close flushes and closes every sink.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for _, s := range c.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
