// Package interrupt mediates operator CTRL+C handling against a
// running worker pool: pause the pool, prompt for a command, and
// translate the answer into an action for the scan loop.
package interrupt

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/maxvaer/dirscout/internal/output"
)

// State of the interrupt machine. Transitions only happen on the
// single control goroutine that observes the interrupt.
type State int32

const (
	Running State = iota
	PausedAwaitingCommand
	Stopping
)

// Action is the operator's decision after an interrupt.
type Action int

const (
	// ActionContinue resumes the paused run.
	ActionContinue Action = iota
	// ActionNext abandons the current directory and moves to the next
	// frontier entry. Frontier and done-set are preserved.
	ActionNext
	// ActionSkipTarget abandons the current target; its partial
	// reports are still flushed.
	ActionSkipTarget
	// ActionExit unwinds the whole run.
	ActionExit
)

// Pool is the worker-pool surface the controller is allowed to drive.
type Pool interface {
	Pause()
	Play()
	Stop()
}

// Controller owns the pause prompt. Reading operator input is a
// blocking call issued only from the control goroutine, never from a
// worker.
type Controller struct {
	printer     *output.Printer
	interactive bool
	signals     <-chan os.Signal

	state atomic.Int32

	startOnce sync.Once
	lines     chan string
	input     io.Reader
}

// New creates a Controller reading commands from input. interactive
// false (stdin is not a terminal) turns every interrupt into an
// immediate exit. signals delivers further interrupt signals; one
// received while the prompt is open is an implicit exit.
func New(printer *output.Printer, input io.Reader, interactive bool, signals <-chan os.Signal) *Controller {
	return &Controller{
		printer:     printer,
		interactive: interactive,
		signals:     signals,
		lines:       make(chan string),
		input:       input,
	}
}

// State returns the current machine state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Handle is invoked by the scan loop when an interrupt arrives while a
// fuzzer run is active. It pauses the pool, prompts until a recognized
// command is entered, applies the command to the pool, and returns the
// resulting action.
func (c *Controller) Handle(pool Pool, frontierNonEmpty, moreTargets bool) Action {
	if !c.interactive {
		c.state.Store(int32(Stopping))
		pool.Stop()
		return ActionExit
	}

	c.state.Store(int32(PausedAwaitingCommand))
	c.printer.Warning("CTRL+C detected: pausing threads, please wait...")
	pool.Pause()
	c.startReader()

	for {
		msg := "[e]xit / [c]ontinue"
		if frontierNonEmpty {
			msg += " / [n]ext"
		}
		if moreTargets {
			msg += " / [s]kip target"
		}
		c.printer.Prompt(msg + ": ")

		var line string
		select {
		case l, ok := <-c.lines:
			if !ok {
				// Input closed: treat like exit.
				line = "e"
			} else {
				line = l
			}
		case <-c.signals:
			line = "e"
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "e", "exit":
			c.state.Store(int32(Stopping))
			pool.Stop()
			return ActionExit
		case "c", "continue":
			c.state.Store(int32(Running))
			pool.Play()
			return ActionContinue
		case "n", "next":
			if !frontierNonEmpty {
				continue
			}
			c.state.Store(int32(Running))
			pool.Stop()
			return ActionNext
		case "s", "skip", "skip target":
			if !moreTargets {
				continue
			}
			c.state.Store(int32(Running))
			pool.Stop()
			return ActionSkipTarget
		default:
			continue
		}
	}
}

// startReader spawns the single goroutine that feeds operator input
// lines to the prompt loop.
func (c *Controller) startReader() {
	c.startOnce.Do(func() {
		go func() {
			defer close(c.lines)
			sc := bufio.NewScanner(c.input)
			for sc.Scan() {
				c.lines <- sc.Text()
			}
		}()
	})
}
