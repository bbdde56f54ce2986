// Package filter decides which discovered paths are reported and which
// are suppressed as noise.
package filter

import (
	"regexp"

	"github.com/maxvaer/dirscout/internal/scanner"
)

// Filter hides results matching one suppression rule.
type Filter interface {
	Name() string
	ShouldFilter(result *scanner.Result) bool
}

// Config holds the per-target suppression rules. Immutable once the
// pipeline is built.
type Config struct {
	ExcludeStatus  []int
	Blacklists     map[int][]string // status -> exact candidate paths
	SuppressEmpty  bool
	ExcludeTexts   []string
	ExcludeRegexps []string
}

// Pipeline applies suppression filters in a fixed order, cheapest
// first: status checks and blacklist lookups run before anything that
// scans the response body. Classification is pure; no filter mutates
// shared state, so calls may race freely from worker goroutines.
type Pipeline struct {
	filters []Filter
}

// NewPipeline builds the ordered pipeline from cfg. Invalid exclusion
// regexps are rejected here rather than at classification time.
func NewPipeline(cfg Config) (*Pipeline, error) {
	var regexps []*regexp.Regexp
	for _, pattern := range cfg.ExcludeRegexps {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		regexps = append(regexps, re)
	}

	p := &Pipeline{}
	p.filters = append(p.filters, noResponseFilter{})
	if len(cfg.ExcludeStatus) > 0 {
		p.filters = append(p.filters, newStatusFilter(cfg.ExcludeStatus))
	}
	if len(cfg.Blacklists) > 0 {
		p.filters = append(p.filters, newBlacklistFilter(cfg.Blacklists))
	}
	if cfg.SuppressEmpty {
		p.filters = append(p.filters, emptyBodyFilter{})
	}
	if len(cfg.ExcludeTexts) > 0 {
		p.filters = append(p.filters, textFilter{needles: cfg.ExcludeTexts})
	}
	if len(regexps) > 0 {
		p.filters = append(p.filters, regexpFilter{patterns: regexps})
	}
	return p, nil
}

// Suppresses runs the pipeline against a result. It returns true and
// the name of the deciding filter when the result should be dropped;
// otherwise the result is reported.
func (p *Pipeline) Suppresses(result *scanner.Result) (bool, string) {
	for _, f := range p.filters {
		if f.ShouldFilter(result) {
			return true, f.Name()
		}
	}
	return false, ""
}

// noResponseFilter drops probes that never got a conclusive response.
type noResponseFilter struct{}

func (noResponseFilter) Name() string { return "no-response" }

func (noResponseFilter) ShouldFilter(result *scanner.Result) bool {
	return result.Status == 0 || result.Response == nil
}
