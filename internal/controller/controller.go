// Package controller drives the recursive discovery scan: it owns the
// frontier, runs one fuzzer pass per frontier directory, expands
// discovered directories, and coordinates reporting and interrupts.
package controller

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/maxvaer/dirscout/internal/config"
	"github.com/maxvaer/dirscout/internal/errlog"
	"github.com/maxvaer/dirscout/internal/filter"
	"github.com/maxvaer/dirscout/internal/interrupt"
	"github.com/maxvaer/dirscout/internal/netutil"
	"github.com/maxvaer/dirscout/internal/output"
	"github.com/maxvaer/dirscout/internal/report"
	"github.com/maxvaer/dirscout/internal/scanner"
	"github.com/maxvaer/dirscout/internal/wordlist"
)

// ErrAborted unwinds the whole run after an operator exit.
var ErrAborted = errors.New("canceled by the user")

// errSkipTarget abandons the current target only.
var errSkipTarget = errors.New("target skipped")

// pollInterval bounds how long the control loop waits between checks
// for fuzzer completion and pending interrupts.
const pollInterval = 300 * time.Millisecond

// Controller orchestrates a full run across one or more targets.
type Controller struct {
	opts    *config.Options
	printer *output.Printer
	dict    *wordlist.Dictionary

	targets     []string
	blacklists  map[int][]string
	errorLog    *errlog.Log
	batch       *report.BatchSession
	runID       string
	savePath    string
	reportsPath string

	sigCh       chan os.Signal
	interrupter *interrupt.Controller
}

// New validates the configuration and prepares the run: resolves
// targets, creates the save-path layout, opens the error log, loads
// the per-status blacklists and the dictionary. Any failure here is a
// setup failure the caller should treat as fatal.
func New(opts *config.Options, printer *output.Printer) (*Controller, error) {
	method := strings.ToLower(opts.HTTPMethod)
	if method != "get" && method != "head" && method != "post" {
		return nil, fmt.Errorf("invalid HTTP method %q: must be GET, HEAD or POST", opts.HTTPMethod)
	}

	targets, err := resolveTargets(opts)
	if err != nil {
		return nil, err
	}

	dict, err := wordlist.Load(opts.WordlistPath, opts.Extensions, opts.Lowercase, opts.ForceExtensions)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		opts:    opts,
		printer: printer,
		dict:    dict,
		targets: targets,
		runID:   uuid.NewString(),
		sigCh:   make(chan os.Signal, 1),
	}

	if err := c.setupSavePath(); err != nil {
		return nil, err
	}

	logName := fmt.Sprintf("errors-%s.log", time.Now().Format("06-01-02_15-04-05"))
	c.errorLog, err = errlog.Open(filepath.Join(c.savePath, "logs", logName))
	if err != nil {
		return nil, err
	}
	printer.Line("Error log: %s", c.errorLog.Path())

	blacklistDir := opts.BlacklistDir
	if blacklistDir == "" {
		blacklistDir = "db"
	}
	c.blacklists, err = filter.LoadBlacklists(blacklistDir)
	if err != nil {
		return nil, err
	}

	if opts.AutoSave && len(targets) > 1 {
		c.batch, err = report.NewBatchSession(c.reportsPath, targets)
		if err != nil {
			return nil, err
		}
		printer.Line("Batch reports: %s", c.batch.Dir)
	}

	printer.Config(opts.Extensions, opts.Threads, dict.Len(), opts.HTTPMethod,
		opts.Recursive, opts.MaxDepth)

	return c, nil
}

// Run scans every target in sequence. Per-target failures (unreachable
// target, mid-scan transport loss, operator skip) only abandon that
// target; an operator exit unwinds everything. The error log is closed
// exactly once on the way out.
func (c *Controller) Run() error {
	defer c.errorLog.Close()

	signal.Notify(c.sigCh, os.Interrupt)
	defer signal.Stop(c.sigCh)

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	c.interrupter = interrupt.New(c.printer, bufio.NewReader(os.Stdin), interactive, c.sigCh)

	for i, url := range c.targets {
		moreTargets := i < len(c.targets)-1

		err := c.scanTarget(url, moreTargets)
		switch {
		case err == nil, errors.Is(err, errSkipTarget):
			continue
		case errors.Is(err, ErrAborted):
			c.printer.Error("Canceled by the user")
			return ErrAborted
		default:
			return err
		}
	}

	c.printer.Warning("Task completed")
	return nil
}

// scanTarget runs the frontier loop for one target. All per-target
// mutable state lives in the session and is dropped when this returns.
func (c *Controller) scanTarget(url string, moreTargets bool) error {
	// An interrupt delivered during setup, before any fuzzing starts,
	// aborts the whole run.
	select {
	case <-c.sigCh:
		return ErrAborted
	default:
	}

	c.printer.Target(url)

	req, err := scanner.NewRequester(url, c.opts)
	if err != nil {
		c.printer.Error("%v", err)
		return errSkipTarget
	}

	// Connectivity probe before burning dictionary entries.
	if _, err := req.Request(""); err != nil {
		c.printer.Error("Target unreachable: %v", err)
		return errSkipTarget
	}

	sess, err := c.newSession(url, req)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.reports.Close(); err != nil {
			c.printer.Error("closing reports: %v", err)
		}
	}()

	return c.processDirectories(sess, moreTargets)
}

// processDirectories pops frontier entries breadth-first, running one
// fuzzer pass per directory.
func (c *Controller) processDirectories(sess *session, moreTargets bool) error {
	for {
		dir, ok := sess.frontier.Pop()
		if !ok {
			return nil
		}

		sess.beginDirectory(dir)
		c.printer.Starting(sess.requester.BasePath())

		sess.fuzzer.Start()
		if err := c.pollUntilDone(sess, moreTargets); err != nil {
			return err
		}
	}
}

// pollUntilDone is the sole suspension point of the control loop while
// a fuzzer run is active, and the only place interrupts are observed.
func (c *Controller) pollUntilDone(sess *session, moreTargets bool) error {
	for {
		select {
		case <-c.sigCh:
			action := c.interrupter.Handle(sess.fuzzer, !sess.frontier.Empty(), moreTargets)
			switch action {
			case interrupt.ActionContinue:
				// Back to polling.
			case interrupt.ActionNext:
				c.drain(sess)
				return nil
			case interrupt.ActionSkipTarget:
				c.drain(sess)
				return errSkipTarget
			case interrupt.ActionExit:
				c.drain(sess)
				return ErrAborted
			}
		default:
		}

		if sess.fuzzer.Wait(pollInterval) {
			if err := sess.fuzzer.Err(); err != nil {
				c.printer.Error("Fatal error during scan: %v", err)
				return errSkipTarget
			}
			return nil
		}
	}
}

// drain blocks until the stopped fuzzer's workers have all exited, so
// no callback can fire after the control loop moves on.
func (c *Controller) drain(sess *session) {
	for !sess.fuzzer.Wait(pollInterval) {
	}
}

// setupSavePath creates the logs/ and reports/ layout under the
// configured save path (default ~/.dirscout).
func (c *Controller) setupSavePath() error {
	savePath := c.opts.SavePath
	if savePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		savePath = filepath.Join(home, ".dirscout")
	}

	for _, sub := range []string{"logs", "reports"} {
		dir := filepath.Join(savePath, sub)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	c.savePath = savePath
	c.reportsPath = filepath.Join(savePath, "reports")
	return nil
}

// resolveTargets builds the target list from -u, -l and --cidr.
func resolveTargets(opts *config.Options) ([]string, error) {
	var targets []string

	if opts.URL != "" {
		targets = append(targets, normalizeURL(opts.URL))
	}

	if opts.URLsFile != "" {
		f, err := os.Open(opts.URLsFile)
		if err != nil {
			return nil, fmt.Errorf("opening URLs file: %w", err)
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			targets = append(targets, normalizeURL(line))
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading URLs file: %w", err)
		}
	}

	if opts.CIDRTargets != "" {
		scheme := "http"
		if strings.HasPrefix(opts.URL, "https://") {
			scheme = "https"
		}
		urls, err := netutil.ExpandCIDR(opts.CIDRTargets, opts.Ports, scheme)
		if err != nil {
			return nil, fmt.Errorf("expanding CIDR: %w", err)
		}
		targets = append(targets, urls...)
	}

	if len(targets) == 0 {
		return nil, errors.New("no targets specified (-u, -l, or --cidr)")
	}
	return targets, nil
}

func normalizeURL(raw string) string {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "http://" + raw
	}
	return raw
}
