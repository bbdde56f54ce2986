package report

import (
	"fmt"
	"net"
	"os"
	"strings"
)

// targetInfo identifies the scanned base URL a sink reports on.
type targetInfo struct {
	host     string
	port     string
	protocol string
	basePath string
}

func (t targetInfo) baseURL() string {
	return t.protocol + "://" + net.JoinHostPort(t.host, t.port) + t.basePath
}

func (t targetInfo) pathURL(path string) string {
	return t.baseURL() + strings.TrimLeft(path, "/")
}

// sinkFile keeps the output file open for the lifetime of the sink and
// rewrites it in full on every Save. Rewriting keeps the on-disk state
// consistent with everything added so far, which is what makes the
// flush-after-every-hit policy crash-safe.
type sinkFile struct {
	file *os.File
}

func createSinkFile(path string) (*sinkFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating report %s: %w", path, err)
	}
	return &sinkFile{file: f}, nil
}

func (s *sinkFile) rewrite(data []byte) error {
	if _, err := s.file.Seek(0, 0); err != nil {
		return err
	}
	if err := s.file.Truncate(0); err != nil {
		return err
	}
	if _, err := s.file.Write(data); err != nil {
		return err
	}
	return s.file.Sync()
}

func (s *sinkFile) close() error {
	return s.file.Close()
}
