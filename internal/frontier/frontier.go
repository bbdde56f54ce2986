// Package frontier holds the breadth-first work queue of directory
// prefixes discovered during a recursive scan.
package frontier

import (
	"strings"
	"sync"
)

// Frontier is a FIFO queue of directory prefixes pending a scan pass.
// Every entry is relative to the target base path and either empty or
// ending in "/". A done-set keeps each prefix from being enqueued more
// than once per target, and a depth bound caps how deep recursion may
// descend. All methods are safe for concurrent use; Push performs its
// check-then-insert as a single atomic operation so two workers racing
// on the same directory cannot both enqueue it.
type Frontier struct {
	mu       sync.Mutex
	queue    []string
	done     map[string]struct{}
	excluded map[string]struct{} // subdirectory names never scanned
	maxDepth int
	enabled  bool
}

// New creates a Frontier. maxDepth is the maximum number of "/"
// characters an entry may contain. excludedSubdirs lists directory
// names that are rejected outright. enabled=false makes every Push a
// no-op (recursion disabled).
func New(maxDepth int, excludedSubdirs []string, enabled bool) *Frontier {
	f := &Frontier{
		done:     make(map[string]struct{}),
		excluded: make(map[string]struct{}, len(excludedSubdirs)),
		maxDepth: maxDepth,
		enabled:  enabled,
	}
	for _, name := range excludedSubdirs {
		f.excluded[strings.Trim(name, "/")] = struct{}{}
	}
	return f
}

// Seed enqueues the starting directories without consulting the
// recursion switch, so a non-recursive scan still probes its initial
// entries. Seeded entries are recorded in the done-set.
func (f *Frontier) Seed(entries []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range entries {
		if _, ok := f.done[e]; ok {
			continue
		}
		f.done[e] = struct{}{}
		f.queue = append(f.queue, e)
	}
}

// Push enqueues a directory prefix. It returns false without mutating
// anything when recursion is disabled, the entry names an excluded
// subdirectory, the entry was already pushed, or its depth exceeds the
// bound. Depth is the count of "/" in the entry itself, so it holds
// regardless of whether the entry came from direct detection or
// redirect resolution.
func (f *Frontier) Push(entry string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.enabled {
		return false
	}
	if _, ok := f.excluded[lastSegment(entry)]; ok {
		return false
	}
	if _, ok := f.done[entry]; ok {
		return false
	}
	if strings.Count(entry, "/") > f.maxDepth {
		return false
	}

	f.done[entry] = struct{}{}
	f.queue = append(f.queue, entry)
	return true
}

// Pop dequeues the oldest entry. ok is false when the queue is empty.
func (f *Frontier) Pop() (entry string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return "", false
	}
	entry = f.queue[0]
	f.queue = f.queue[1:]
	return entry, true
}

// Empty reports whether no entries are pending.
func (f *Frontier) Empty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) == 0
}

// lastSegment returns the final path segment of a directory prefix,
// e.g. "a/b/" -> "b".
func lastSegment(entry string) string {
	trimmed := strings.TrimSuffix(entry, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
