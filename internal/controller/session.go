package controller

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maxvaer/dirscout/internal/filter"
	"github.com/maxvaer/dirscout/internal/frontier"
	"github.com/maxvaer/dirscout/internal/redirect"
	"github.com/maxvaer/dirscout/internal/report"
	"github.com/maxvaer/dirscout/internal/scanner"
)

// session holds all per-target mutable state: frontier, done-set,
// filter pipeline, report coordinator and progress counters. A fresh
// session is built for every target and dropped when its scan ends, so
// nothing leaks between targets.
type session struct {
	url       string
	basePath  string
	requester *scanner.Requester
	fuzzer    *scanner.Fuzzer
	frontier  *frontier.Frontier
	pipeline  *filter.Pipeline
	reports   *report.Coordinator

	controller *Controller

	mu         sync.RWMutex
	currentDir string

	index      atomic.Int64
	errorCount atomic.Int64
}

// newSession builds the per-target state and wires the fuzzer callback
// lists.
func (c *Controller) newSession(url string, req *scanner.Requester) (*session, error) {
	opts := c.opts

	pipeline, err := filter.NewPipeline(filter.Config{
		ExcludeStatus:  opts.ExcludeStatus,
		Blacklists:     c.blacklists,
		SuppressEmpty:  opts.SuppressEmpty,
		ExcludeTexts:   opts.ExcludeTexts,
		ExcludeRegexps: opts.ExcludeRegexps,
	})
	if err != nil {
		return nil, fmt.Errorf("building filter pipeline: %w", err)
	}

	sess := &session{
		url:        url,
		basePath:   req.BasePath(),
		requester:  req,
		pipeline:   pipeline,
		controller: c,
	}

	sess.frontier = frontier.New(opts.MaxDepth, opts.ExcludeSubdirs, opts.Recursive)
	if len(opts.ScanSubdirs) > 0 {
		seeds := make([]string, len(opts.ScanSubdirs))
		for i, sub := range opts.ScanSubdirs {
			sub = strings.Trim(sub, "/")
			seeds[i] = sub + "/"
		}
		sess.frontier.Seed(seeds)
	} else {
		sess.frontier.Seed([]string{""})
	}

	sess.reports, err = c.setupReports(req, sess.basePath)
	if err != nil {
		return nil, err
	}

	throttler := scanner.NewThrottler(opts.Delay, opts.AdaptiveDelay)
	sess.fuzzer = scanner.NewFuzzer(
		req, c.dict, opts.Threads, throttler,
		[]scanner.ResultCallback{sess.matchCallback},
		[]scanner.ResultCallback{sess.notFoundCallback},
		[]scanner.ErrorCallback{sess.errorCallback, sess.appendErrorLog},
	)

	return sess, nil
}

// beginDirectory repoints the target state at the next frontier entry.
// Called only between fuzzer runs, so workers never observe a change
// mid-pass.
func (s *session) beginDirectory(dir string) {
	s.mu.Lock()
	s.currentDir = dir
	s.mu.Unlock()

	s.index.Store(0)
	s.requester.SetBasePath(s.basePath + dir)
	s.controller.printer.SetBasePath(s.basePath + dir)
}

func (s *session) currentDirectory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentDir
}

// matchCallback handles a conclusive, non-404 probe. Runs on arbitrary
// worker goroutines.
func (s *session) matchCallback(res *scanner.Result) {
	s.index.Add(1)

	if suppressed, _ := s.pipeline.Suppresses(res); suppressed {
		return
	}

	dir := s.currentDirectory()
	s.controller.printer.StatusReport(res.Path, res)

	if res.Response.Redirect != "" {
		if sub, ok := redirect.ResolveSubdirectory(s.url, dir, res.Response.Redirect); ok {
			s.frontier.Push(dir + sub)
		}
	} else if strings.HasSuffix(res.Path, "/") {
		s.frontier.Push(dir + res.Path)
	}

	if err := s.reports.AddAndSave(dir+res.Path, res.Status, res.Response); err != nil {
		s.controller.printer.Error("writing report: %v", err)
	}
}

func (s *session) notFoundCallback(res *scanner.Result) {
	index := s.index.Add(1)
	s.controller.printer.Progress(res.Path, int(index), s.controller.dict.Len(), s.errorCount.Load())
}

func (s *session) errorCallback(res *scanner.Result, _ string) {
	errors := s.errorCount.Add(1)
	index := s.index.Add(1)
	s.controller.printer.Progress(res.Path, int(index), s.controller.dict.Len(), errors)
}

func (s *session) appendErrorLog(res *scanner.Result, message string) {
	if err := s.controller.errorLog.Append(s.url, res.Path, message); err != nil {
		s.controller.printer.Error("writing error log: %v", err)
	}
}

// setupReports attaches the configured sinks for one target.
func (c *Controller) setupReports(req *scanner.Requester, basePath string) (*report.Coordinator, error) {
	coord := report.NewCoordinator()
	session := c.runID
	if c.batch != nil {
		session = c.batch.ID
	}

	if c.opts.AutoSave {
		var dir, name string
		if c.batch != nil {
			dir = c.batch.Dir
			name = req.Host()
		} else {
			dir = filepath.Join(c.reportsPath, req.Host())
			name = time.Now().Format("06-01-02_15-04-05")
			if trimmed := strings.Trim(basePath, "/"); trimmed != "" {
				name = strings.ReplaceAll(trimmed, "/", ".") + "_" + name
			}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating reports folder %s: %w", dir, err)
		}
		outputFile := report.UniqueOutputFile(filepath.Join(dir, name))

		sink, err := c.newSink(c.opts.AutoSaveFormat, req, basePath, outputFile, session)
		if err != nil {
			return nil, err
		}
		coord.Attach(sink)
	}

	type extra struct {
		format string
		file   string
	}
	for _, e := range []extra{
		{"simple", c.opts.SimpleOutputFile},
		{"plain", c.opts.PlainOutputFile},
		{"json", c.opts.JSONOutputFile},
	} {
		if e.file == "" {
			continue
		}
		sink, err := c.newSink(e.format, req, basePath, e.file, session)
		if err != nil {
			return nil, err
		}
		coord.Attach(sink)
	}

	return coord, nil
}

func (c *Controller) newSink(format string, req *scanner.Requester, basePath, outputFile, session string) (report.Sink, error) {
	switch format {
	case "simple":
		return report.NewSimpleSink(req.Host(), req.Port(), req.Protocol(), basePath, outputFile)
	case "json":
		return report.NewJSONSink(req.Host(), req.Port(), req.Protocol(), basePath, outputFile, session)
	default:
		return report.NewPlainSink(req.Host(), req.Port(), req.Protocol(), basePath, outputFile)
	}
}
