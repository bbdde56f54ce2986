// Package wordlist loads the dictionary of candidate path segments.
package wordlist

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed default.txt
var embeddedWordlist string

// Dictionary is an immutable, de-duplicated list of candidate path
// segments. It is shared across all targets of a run.
type Dictionary struct {
	entries []string
}

// Load builds a Dictionary from the wordlist at path, or from the
// embedded default when path is empty. Lines containing %EXT% are
// expanded once per extension; with forceExtensions every plain entry
// additionally gets each extension appended. Blank lines and #
// comments are skipped, entries are de-duplicated preserving order.
func Load(path string, extensions []string, lowercase, forceExtensions bool) (*Dictionary, error) {
	var raw string
	if path == "" {
		raw = embeddedWordlist
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading wordlist %s: %w", path, err)
		}
		raw = string(data)
	}

	lines := strings.Split(raw, "\n")
	seen := make(map[string]struct{}, len(lines))
	var entries []string

	add := func(entry string) {
		if lowercase {
			entry = strings.ToLower(entry)
		}
		if entry == "" {
			return
		}
		if _, ok := seen[entry]; !ok {
			seen[entry] = struct{}{}
			entries = append(entries, entry)
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.Contains(line, "%EXT%"):
			for _, ext := range extensions {
				ext = strings.TrimPrefix(ext, ".")
				add(strings.ReplaceAll(line, "%EXT%", ext))
			}
		case forceExtensions && len(extensions) > 0:
			add(line)
			if !strings.HasSuffix(line, "/") {
				for _, ext := range extensions {
					ext = strings.TrimPrefix(ext, ".")
					add(line + "." + ext)
				}
			}
		default:
			add(line)
		}
	}

	return &Dictionary{entries: entries}, nil
}

// Len returns the number of entries, used for progress display.
func (d *Dictionary) Len() int { return len(d.entries) }

// Entries returns the candidate segments in load order. Callers must
// not mutate the returned slice.
func (d *Dictionary) Entries() []string { return d.entries }
