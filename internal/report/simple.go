package report

import (
	"strings"

	"github.com/maxvaer/dirscout/internal/scanner"
)

// SimpleSink writes one full URL per line.
type SimpleSink struct {
	target  targetInfo
	file    *sinkFile
	entries []Entry
}

// NewSimpleSink creates a simple-format sink writing to outputFile.
func NewSimpleSink(host, port, protocol, basePath, outputFile string) (*SimpleSink, error) {
	f, err := createSinkFile(outputFile)
	if err != nil {
		return nil, err
	}
	return &SimpleSink{
		target: targetInfo{host: host, port: port, protocol: protocol, basePath: basePath},
		file:   f,
	}, nil
}

func (s *SimpleSink) AddPath(path string, status int, resp *scanner.Response) {
	s.entries = append(s.entries, Entry{Path: path, Status: status})
}

func (s *SimpleSink) Save() error {
	var b strings.Builder
	for _, e := range s.entries {
		b.WriteString(s.target.pathURL(e.Path))
		b.WriteByte('\n')
	}
	return s.file.rewrite([]byte(b.String()))
}

func (s *SimpleSink) Close() error { return s.file.close() }
