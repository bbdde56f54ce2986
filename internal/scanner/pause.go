package scanner

import "sync"

// Pauser is a cooperative gate for worker goroutines. While paused,
// Wait() blocks; otherwise it costs a mutex round-trip. Workers call
// Wait() before each probe, so pausing quiesces the pool after
// in-flight requests drain rather than killing them mid-I/O.
type Pauser struct {
	mu     sync.Mutex
	cond   *sync.Cond
	paused bool
}

// NewPauser returns a Pauser in the running state.
func NewPauser() *Pauser {
	p := &Pauser{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Wait blocks the caller while the gate is paused.
func (p *Pauser) Wait() {
	p.mu.Lock()
	for p.paused {
		p.cond.Wait()
	}
	p.mu.Unlock()
}

// Pause closes the gate. Idempotent.
func (p *Pauser) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

// Resume opens the gate and wakes all blocked workers. Idempotent.
func (p *Pauser) Resume() {
	p.mu.Lock()
	p.paused = false
	p.cond.Broadcast()
	p.mu.Unlock()
}

// IsPaused reports whether the gate is closed.
func (p *Pauser) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}
