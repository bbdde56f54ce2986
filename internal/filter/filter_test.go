package filter

import (
	"sync"
	"testing"

	"github.com/maxvaer/dirscout/internal/scanner"
)

func result(path string, status int, body string) *scanner.Result {
	return &scanner.Result{
		Path:     path,
		Status:   status,
		Response: &scanner.Response{Status: status, Body: []byte(body)},
	}
}

func mustPipeline(t *testing.T, cfg Config) *Pipeline {
	t.Helper()
	p, err := NewPipeline(cfg)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func TestSuppressesNoResponse(t *testing.T) {
	p := mustPipeline(t, Config{})

	suppressed, reason := p.Suppresses(&scanner.Result{Path: "admin"})
	if !suppressed {
		t.Fatal("result without response not suppressed")
	}
	if reason != "no-response" {
		t.Fatalf("reason = %q, want no-response", reason)
	}

	if suppressed, _ := p.Suppresses(result("admin", 200, "ok")); suppressed {
		t.Fatal("plain 200 suppressed by empty config")
	}
}

func TestSuppressesExcludedStatus(t *testing.T) {
	p := mustPipeline(t, Config{ExcludeStatus: []int{404, 500}})

	if suppressed, _ := p.Suppresses(result("a", 500, "x")); !suppressed {
		t.Fatal("excluded status passed")
	}
	if suppressed, _ := p.Suppresses(result("a", 200, "x")); suppressed {
		t.Fatal("non-excluded status suppressed")
	}
}

func TestBlacklistPrecedence(t *testing.T) {
	// A blacklisted path is suppressed even though 403 is not in the
	// excluded-status set; an excluded status is suppressed even for
	// paths absent from the blacklist.
	p := mustPipeline(t, Config{
		ExcludeStatus: []int{500},
		Blacklists:    map[int][]string{403: {"cgi-bin/"}},
	})

	if suppressed, reason := p.Suppresses(result("cgi-bin/", 403, "x")); !suppressed || reason != "blacklist" {
		t.Fatalf("blacklisted 403 path: suppressed=%v reason=%q", suppressed, reason)
	}
	if suppressed, _ := p.Suppresses(result("cgi-bin/", 500, "x")); !suppressed {
		t.Fatal("excluded status 500 passed despite blacklist miss")
	}
	if suppressed, _ := p.Suppresses(result("other", 403, "x")); suppressed {
		t.Fatal("non-blacklisted 403 path suppressed")
	}
	// Blacklists match exact paths only.
	if suppressed, _ := p.Suppresses(result("cgi-bin/extra", 403, "x")); suppressed {
		t.Fatal("blacklist matched a non-exact path")
	}
}

func TestSuppressesEmptyBody(t *testing.T) {
	p := mustPipeline(t, Config{SuppressEmpty: true})

	if suppressed, _ := p.Suppresses(result("a", 200, "")); !suppressed {
		t.Fatal("empty body passed with suppress-empty set")
	}
	if suppressed, _ := p.Suppresses(result("a", 200, "x")); suppressed {
		t.Fatal("non-empty body suppressed")
	}
}

func TestSuppressesBodyText(t *testing.T) {
	p := mustPipeline(t, Config{ExcludeTexts: []string{"Not Found", "Error"}})

	if suppressed, reason := p.Suppresses(result("a", 200, "Custom Not Found page")); !suppressed || reason != "body-text" {
		t.Fatalf("suppressed=%v reason=%q", suppressed, reason)
	}
	if suppressed, _ := p.Suppresses(result("a", 200, "welcome")); suppressed {
		t.Fatal("clean body suppressed")
	}
}

func TestSuppressesBodyRegexp(t *testing.T) {
	p := mustPipeline(t, Config{ExcludeRegexps: []string{`(?i)error \d+`}})

	if suppressed, _ := p.Suppresses(result("a", 200, "Error 1234 occurred")); !suppressed {
		t.Fatal("regexp match passed")
	}
	if suppressed, _ := p.Suppresses(result("a", 200, "all good")); suppressed {
		t.Fatal("non-matching body suppressed")
	}
}

func TestNewPipelineInvalidRegexp(t *testing.T) {
	if _, err := NewPipeline(Config{ExcludeRegexps: []string{"("}}); err == nil {
		t.Fatal("invalid regexp accepted")
	}
}

func TestCheapChecksDecideFirst(t *testing.T) {
	// A result failing both the status check and a body check reports
	// the status filter: cheap integer checks run before body scans.
	p := mustPipeline(t, Config{
		ExcludeStatus: []int{404},
		ExcludeTexts:  []string{"nope"},
	})
	suppressed, reason := p.Suppresses(result("a", 404, "nope"))
	if !suppressed || reason != "status" {
		t.Fatalf("suppressed=%v reason=%q, want status", suppressed, reason)
	}
}

func TestClassificationIsPure(t *testing.T) {
	p := mustPipeline(t, Config{
		ExcludeStatus: []int{404},
		SuppressEmpty: true,
		ExcludeTexts:  []string{"maintenance"},
	})

	inputs := []*scanner.Result{
		result("a", 200, "ok"),
		result("b", 404, "x"),
		result("c", 200, ""),
		result("d", 200, "site under maintenance"),
	}
	want := make([]bool, len(inputs))
	for i, in := range inputs {
		want[i], _ = p.Suppresses(in)
	}

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for iter := 0; iter < 100; iter++ {
				for i, in := range inputs {
					got, _ := p.Suppresses(in)
					if got != want[i] {
						t.Errorf("classification of %q changed: got %v want %v", in.Path, got, want[i])
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}
