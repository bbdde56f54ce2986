package filter

import (
	"regexp"
	"strings"

	"github.com/maxvaer/dirscout/internal/scanner"
)

// emptyBodyFilter suppresses responses with a zero-length body.
type emptyBodyFilter struct{}

func (emptyBodyFilter) Name() string { return "empty-body" }

func (emptyBodyFilter) ShouldFilter(result *scanner.Result) bool {
	return len(result.Response.Body) == 0
}

// textFilter suppresses responses whose body contains any excluded
// substring.
type textFilter struct {
	needles []string
}

func (textFilter) Name() string { return "body-text" }

func (f textFilter) ShouldFilter(result *scanner.Result) bool {
	body := string(result.Response.Body)
	for _, needle := range f.needles {
		if strings.Contains(body, needle) {
			return true
		}
	}
	return false
}

// regexpFilter suppresses responses whose body matches any excluded
// pattern.
type regexpFilter struct {
	patterns []*regexp.Regexp
}

func (regexpFilter) Name() string { return "body-regexp" }

func (f regexpFilter) ShouldFilter(result *scanner.Result) bool {
	for _, re := range f.patterns {
		if re.Match(result.Response.Body) {
			return true
		}
	}
	return false
}
