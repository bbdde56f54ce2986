package filter

import "github.com/maxvaer/dirscout/internal/scanner"

// statusFilter suppresses results whose status is operator-excluded.
type statusFilter struct {
	exclude map[int]struct{}
}

func newStatusFilter(exclude []int) statusFilter {
	f := statusFilter{exclude: make(map[int]struct{}, len(exclude))}
	for _, code := range exclude {
		f.exclude[code] = struct{}{}
	}
	return f
}

func (statusFilter) Name() string { return "status" }

func (f statusFilter) ShouldFilter(result *scanner.Result) bool {
	_, ok := f.exclude[result.Status]
	return ok
}
