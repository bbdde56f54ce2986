package filter

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maxvaer/dirscout/internal/scanner"
)

// Statuses with a per-status blacklist file. These are the "soft"
// error codes that generic frameworks answer for every nonexistent
// path; the blacklist filters those well-known paths without
// blanket-excluding the code.
var blacklistStatuses = []int{400, 403, 500}

// LoadBlacklists reads <status>_blacklist.txt files from dir for each
// supported status. Missing or unreadable files are skipped; comment
// and blank lines are ignored.
func LoadBlacklists(dir string) (map[int][]string, error) {
	blacklists := make(map[int][]string)
	for _, status := range blacklistStatuses {
		name := filepath.Join(dir, fmt.Sprintf("%d_blacklist.txt", status))
		f, err := os.Open(name)
		if err != nil {
			continue
		}

		var paths []string
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			paths = append(paths, line)
		}
		err = sc.Err()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading blacklist %s: %w", name, err)
		}
		blacklists[status] = paths
	}
	return blacklists, nil
}

// blacklistFilter suppresses exact candidate paths known to produce
// false-positive responses for a specific status code.
type blacklistFilter struct {
	byStatus map[int]map[string]struct{}
}

func newBlacklistFilter(blacklists map[int][]string) blacklistFilter {
	f := blacklistFilter{byStatus: make(map[int]map[string]struct{}, len(blacklists))}
	for status, paths := range blacklists {
		set := make(map[string]struct{}, len(paths))
		for _, p := range paths {
			set[p] = struct{}{}
		}
		f.byStatus[status] = set
	}
	return f
}

func (blacklistFilter) Name() string { return "blacklist" }

func (f blacklistFilter) ShouldFilter(result *scanner.Result) bool {
	set, ok := f.byStatus[result.Status]
	if !ok {
		return false
	}
	_, ok = set[result.Path]
	return ok
}
