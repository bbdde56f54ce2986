// Package output owns the live console stream: discovered paths,
// progress, warnings and the interrupt prompt. One mutex serializes
// all writes so lines from worker goroutines never interleave.
package output

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/maxvaer/dirscout/internal/scanner"
)

var (
	green  = color.New(color.FgGreen)
	cyan   = color.New(color.FgCyan)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	dim    = color.New(color.Faint)
)

// Printer writes operator-facing output to stderr/stdout. BasePath is
// updated by the controller as the scan descends into subdirectories
// so reported paths show their full location.
type Printer struct {
	mu       sync.Mutex
	quiet    bool
	basePath string
	inline   bool // last write was a \r progress line
}

// NewPrinter creates a Printer. quiet suppresses progress and
// decoration, leaving only discovered paths and errors.
func NewPrinter(quiet bool) *Printer {
	return &Printer{quiet: quiet}
}

// SetBasePath updates the prefix shown before reported paths.
func (p *Printer) SetBasePath(base string) {
	p.mu.Lock()
	p.basePath = base
	p.mu.Unlock()
}

// Line prints a plain line.
func (p *Printer) Line(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearInline()
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Warning prints a highlighted notice line.
func (p *Printer) Warning(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearInline()
	yellow.Fprintf(os.Stderr, "[!] "+format+"\n", args...)
}

// Error prints an error line.
func (p *Printer) Error(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearInline()
	red.Fprintf(os.Stderr, "[!] "+format+"\n", args...)
}

// Target announces the target about to be scanned.
func (p *Printer) Target(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearInline()
	fmt.Fprintf(os.Stderr, "\n")
	cyan.Fprintf(os.Stderr, "[*] Target: %s\n\n", url)
}

// Config prints the effective scan configuration.
func (p *Printer) Config(extensions []string, threads, dictLen int, method string, recursive bool, maxDepth int) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	dim.Fprintf(os.Stderr, "Extensions: %s | Threads: %d | Wordlist size: %d | Method: %s | Recursive: %v (max depth %d)\n",
		strings.Join(extensions, ","), threads, dictLen, strings.ToUpper(method), recursive, maxDepth)
}

// Starting announces a new fuzzer pass over a frontier directory.
func (p *Printer) Starting(directory string) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearInline()
	yellow.Fprintf(os.Stderr, "[%s] Starting: %s\n", time.Now().Format("15:04:05"), directory)
}

// StatusReport prints one discovered path to stdout, colored by status.
func (p *Printer) StatusReport(path string, res *scanner.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearInline()

	size := 0
	redirect := ""
	if res.Response != nil {
		size = len(res.Response.Body)
		if res.Response.Redirect != "" {
			redirect = "  ->  " + res.Response.Redirect
		}
	}

	line := fmt.Sprintf("[%s] %3d - %6dB - %s%s",
		time.Now().Format("15:04:05"), res.Status, size, p.basePath+path, redirect)
	statusColor(res.Status).Fprintln(os.Stdout, line)
}

// Progress rewrites the in-place progress line: last probed path,
// index out of the dictionary size, and the error count so far.
func (p *Printer) Progress(lastPath string, index, total int, errors int64) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	line := fmt.Sprintf("%d/%d", index, total)
	if total > 0 {
		line = fmt.Sprintf("%.2f%% - %s", float64(index)/float64(total)*100, line)
	}
	if errors > 0 {
		line += fmt.Sprintf(" - errors: %d", errors)
	}
	line += " - " + lastPath
	fmt.Fprintf(os.Stderr, "\r\033[K%s", line)
	p.inline = true
}

// Prompt prints the interrupt menu without a trailing newline.
func (p *Printer) Prompt(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearInline()
	cyan.Fprintf(os.Stderr, "%s", msg)
}

func (p *Printer) clearInline() {
	if p.inline {
		fmt.Fprint(os.Stderr, "\r\033[K")
		p.inline = false
	}
}

func statusColor(status int) *color.Color {
	switch {
	case status >= 200 && status < 300:
		return green
	case status >= 300 && status < 400:
		return cyan
	case status >= 400 && status < 500:
		return yellow
	case status >= 500:
		return red
	default:
		return color.New(color.Reset)
	}
}
