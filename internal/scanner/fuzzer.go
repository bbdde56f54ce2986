package scanner

import (
	"net/http"
	"sync"
	"time"

	"github.com/maxvaer/dirscout/internal/wordlist"
)

// ResultCallback is invoked with a probe outcome. Callbacks run on
// arbitrary worker goroutines, in registration order.
type ResultCallback func(*Result)

// ErrorCallback is invoked when an individual probe fails at the
// transport level, with a human-readable message.
type ErrorCallback func(*Result, string)

// A run is abandoned as hopeless once this many probes fail in a row
// with no successful response in between.
const maxConsecutiveErrors = 25

// Fuzzer dispatches one dictionary pass against the requester's current
// base path across a pool of workers. The same Fuzzer is restarted for
// every frontier directory; the controller repoints the underlying
// Requester between runs.
type Fuzzer struct {
	requester *Requester
	dict      *wordlist.Dictionary
	threads   int
	throttler *Throttler
	pauser    *Pauser

	matchCallbacks    []ResultCallback
	notFoundCallbacks []ResultCallback
	errorCallbacks    []ErrorCallback

	mu          sync.Mutex
	stop        chan struct{}
	done        chan struct{}
	stopped     bool
	fatal       error
	consecutive int
}

// NewFuzzer creates a Fuzzer. The callback lists are invoked in the
// order given.
func NewFuzzer(
	req *Requester,
	dict *wordlist.Dictionary,
	threads int,
	throttler *Throttler,
	match, notFound []ResultCallback,
	onError []ErrorCallback,
) *Fuzzer {
	if threads < 1 {
		threads = 1
	}
	return &Fuzzer{
		requester:         req,
		dict:              dict,
		threads:           threads,
		throttler:         throttler,
		pauser:            NewPauser(),
		matchCallbacks:    match,
		notFoundCallbacks: notFound,
		errorCallbacks:    onError,
	}
}

// Requester exposes the underlying transport so the controller can
// repoint its base path between runs.
func (f *Fuzzer) Requester() *Requester { return f.requester }

// Start begins a new dictionary pass. Any state from a previous run is
// discarded. Start returns immediately; use Wait to observe completion.
func (f *Fuzzer) Start() {
	f.mu.Lock()
	f.stop = make(chan struct{})
	f.done = make(chan struct{})
	f.stopped = false
	f.fatal = nil
	f.consecutive = 0
	stop, done := f.stop, f.done
	f.mu.Unlock()

	f.pauser.Resume()

	entries := make(chan string, f.threads)
	go func() {
		defer close(entries)
		for _, entry := range f.dict.Entries() {
			select {
			case entries <- entry:
			case <-stop:
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < f.threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.worker(entries, stop)
		}()
	}

	go func() {
		wg.Wait()
		close(done)
	}()
}

func (f *Fuzzer) worker(entries <-chan string, stop <-chan struct{}) {
	for entry := range entries {
		f.pauser.Wait()
		select {
		case <-stop:
			return
		default:
		}

		if delay := f.throttler.Delay(); delay > 0 {
			select {
			case <-time.After(delay):
			case <-stop:
				return
			}
		}

		resp, err := f.requester.Request(entry)
		if err != nil {
			f.throttler.RecordError()
			f.recordFailure(err)
			res := &Result{Path: entry}
			for _, cb := range f.errorCallbacks {
				cb(res, err.Error())
			}
			continue
		}

		f.recordSuccess()
		f.throttler.RecordStatus(resp.Status)

		res := &Result{Path: entry, Status: resp.Status, Response: resp}
		if resp.Status == http.StatusNotFound {
			for _, cb := range f.notFoundCallbacks {
				cb(res)
			}
			continue
		}
		for _, cb := range f.matchCallbacks {
			cb(res)
		}
	}
}

// Wait blocks up to timeout for the current run to drain. Returns true
// once every worker has exited.
func (f *Fuzzer) Wait(timeout time.Duration) bool {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()
	if done == nil {
		return true
	}
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Pause requests that workers quiesce after their in-flight probes
// complete.
func (f *Fuzzer) Pause() { f.pauser.Pause() }

// Play resumes a paused run.
func (f *Fuzzer) Play() { f.pauser.Resume() }

// Stop abandons the remaining entries of the current run. Workers
// drain cooperatively; paused workers are released so they can observe
// the stop.
func (f *Fuzzer) Stop() {
	f.mu.Lock()
	if f.stop != nil && !f.stopped {
		f.stopped = true
		close(f.stop)
	}
	f.mu.Unlock()
	f.pauser.Resume()
}

// Err returns the fatal transport error that aborted the current run,
// or nil. Set only when the target stopped answering entirely.
func (f *Fuzzer) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fatal
}

func (f *Fuzzer) recordFailure(err error) {
	f.mu.Lock()
	f.consecutive++
	hopeless := f.consecutive >= maxConsecutiveErrors && f.fatal == nil
	if hopeless {
		f.fatal = err
		if f.stop != nil && !f.stopped {
			f.stopped = true
			close(f.stop)
		}
	}
	f.mu.Unlock()
	if hopeless {
		f.pauser.Resume()
	}
}

func (f *Fuzzer) recordSuccess() {
	f.mu.Lock()
	f.consecutive = 0
	f.mu.Unlock()
}
