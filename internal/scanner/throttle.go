package scanner

import (
	"sync"
	"time"
)

// Throttler paces workers between probes. With adaptive mode enabled
// it backs off exponentially on 429/503 answers or repeated connection
// errors and recovers toward the base delay once responses are healthy
// again.
type Throttler struct {
	mu           sync.Mutex
	baseDelay    time.Duration
	currentDelay time.Duration
	maxDelay     time.Duration
	consecutive  int
	adaptive     bool
}

// NewThrottler creates a throttler with the given fixed base delay.
func NewThrottler(baseDelay time.Duration, adaptive bool) *Throttler {
	return &Throttler{
		baseDelay:    baseDelay,
		currentDelay: baseDelay,
		maxDelay:     30 * time.Second,
		adaptive:     adaptive,
	}
}

// Delay returns the pause a worker should observe before its next probe.
func (t *Throttler) Delay() time.Duration {
	if !t.adaptive {
		return t.baseDelay
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentDelay
}

// RecordStatus feeds a response status back into the throttle loop.
func (t *Throttler) RecordStatus(status int) {
	if !t.adaptive {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if status == 429 || status == 503 {
		t.consecutive++
		t.backOffLocked()
		return
	}
	if t.consecutive > 0 {
		t.consecutive = 0
		recovered := t.currentDelay / 2
		if recovered < t.baseDelay {
			recovered = t.baseDelay
		}
		t.currentDelay = recovered
	}
}

// RecordError counts a connection failure as a possible rate-limit
// signal; three in a row trigger a back-off.
func (t *Throttler) RecordError() {
	if !t.adaptive {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.consecutive++
	if t.consecutive >= 3 {
		t.backOffLocked()
	}
}

func (t *Throttler) backOffLocked() {
	next := t.currentDelay * 2
	if next < 500*time.Millisecond {
		next = 500 * time.Millisecond
	}
	if next > t.maxDelay {
		next = t.maxDelay
	}
	t.currentDelay = next
}
