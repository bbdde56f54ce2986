package report

import (
	"fmt"
	"strings"

	"github.com/maxvaer/dirscout/internal/scanner"
)

// PlainSink writes status, size and URL columns, one line per
// discovery.
type PlainSink struct {
	target  targetInfo
	file    *sinkFile
	entries []Entry
}

// NewPlainSink creates a plain-text sink writing to outputFile.
func NewPlainSink(host, port, protocol, basePath, outputFile string) (*PlainSink, error) {
	f, err := createSinkFile(outputFile)
	if err != nil {
		return nil, err
	}
	return &PlainSink{
		target: targetInfo{host: host, port: port, protocol: protocol, basePath: basePath},
		file:   f,
	}, nil
}

func (p *PlainSink) AddPath(path string, status int, resp *scanner.Response) {
	e := Entry{Path: path, Status: status}
	if resp != nil {
		e.ContentLength = len(resp.Body)
		e.Redirect = resp.Redirect
	}
	p.entries = append(p.entries, e)
}

func (p *PlainSink) Save() error {
	var b strings.Builder
	for _, e := range p.entries {
		fmt.Fprintf(&b, "%3d  %8dB  %s", e.Status, e.ContentLength, p.target.pathURL(e.Path))
		if e.Redirect != "" {
			fmt.Fprintf(&b, "  -> %s", e.Redirect)
		}
		b.WriteByte('\n')
	}
	return p.file.rewrite([]byte(b.String()))
}

func (p *PlainSink) Close() error { return p.file.close() }
