package scanner

import (
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/maxvaer/dirscout/internal/config"
	"github.com/maxvaer/dirscout/internal/wordlist"
)

func testOptions() *config.Options {
	return &config.Options{
		HTTPMethod: "GET",
		Threads:    4,
		Timeout:    5 * time.Second,
	}
}

func testDictionary(t *testing.T, entries []string) *wordlist.Dictionary {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "wl")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		f.WriteString(e + "\n")
	}
	f.Close()
	dict, err := wordlist.Load(f.Name(), nil, false, false)
	if err != nil {
		t.Fatal(err)
	}
	return dict
}

func waitDrained(t *testing.T, f *Fuzzer) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !f.Wait(100 * time.Millisecond) {
		if time.Now().After(deadline) {
			t.Fatal("fuzzer did not drain")
		}
	}
}

func TestFuzzerCallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin":
			w.Write([]byte("admin page"))
		case "/old":
			w.Header().Set("Location", "/old/")
			w.WriteHeader(http.StatusMovedPermanently)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	req, err := NewRequester(srv.URL, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	matches := make(map[string]int)
	notFound := make(map[string]struct{})

	fuzzer := NewFuzzer(req, testDictionary(t, []string{"admin", "old", "missing"}), 4, NewThrottler(0, false),
		[]ResultCallback{func(res *Result) {
			mu.Lock()
			matches[res.Path] = res.Status
			mu.Unlock()
		}},
		[]ResultCallback{func(res *Result) {
			mu.Lock()
			notFound[res.Path] = struct{}{}
			mu.Unlock()
		}},
		nil,
	)

	fuzzer.Start()
	waitDrained(t, fuzzer)

	mu.Lock()
	defer mu.Unlock()
	if matches["admin"] != 200 {
		t.Errorf("admin status = %d, want 200", matches["admin"])
	}
	if matches["old"] != 301 {
		t.Errorf("old status = %d, want 301", matches["old"])
	}
	if _, ok := notFound["missing"]; !ok {
		t.Error("missing not reported as not-found")
	}
	if err := fuzzer.Err(); err != nil {
		t.Errorf("unexpected fatal error: %v", err)
	}
}

func TestFuzzerCallbackOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	req, err := NewRequester(srv.URL, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var order []string
	first := func(res *Result) {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
	}
	second := func(res *Result) {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
	}

	fuzzer := NewFuzzer(req, testDictionary(t, []string{"a"}), 1, NewThrottler(0, false),
		[]ResultCallback{first, second}, nil, nil)
	fuzzer.Start()
	waitDrained(t, fuzzer)

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("callback order = %v", order)
	}
}

func TestFuzzerStopAbandonsRemaining(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	req, err := NewRequester(srv.URL, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	entries := make([]string, 50)
	for i := range entries {
		entries[i] = string(rune('a'+i%26)) + string(rune('0'+i/26))
	}

	var mu sync.Mutex
	seen := 0

	fuzzer := NewFuzzer(req, testDictionary(t, entries), 2, NewThrottler(0, false),
		[]ResultCallback{func(res *Result) {
			mu.Lock()
			seen++
			mu.Unlock()
		}}, nil, nil)

	fuzzer.Start()
	fuzzer.Stop()
	close(release)
	waitDrained(t, fuzzer)

	mu.Lock()
	defer mu.Unlock()
	if seen >= len(entries) {
		t.Fatalf("stop did not abandon remaining entries: %d of %d completed", seen, len(entries))
	}
}

func TestFuzzerPauseQuiescesWorkers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	req, err := NewRequester(srv.URL, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	entries := make([]string, 40)
	for i := range entries {
		entries[i] = string(rune('a'+i%26)) + string(rune('0'+i/26))
	}

	fuzzer := NewFuzzer(req, testDictionary(t, entries), 2, NewThrottler(0, false), nil, nil, nil)
	fuzzer.Pause()
	fuzzer.Start()

	// Start resumes the gate for a fresh run; pause it again and make
	// sure the run does not finish while paused.
	fuzzer.Pause()
	if fuzzer.Wait(200 * time.Millisecond) {
		t.Skip("run drained before pause took effect")
	}

	fuzzer.Play()
	waitDrained(t, fuzzer)
}

func TestFuzzerFatalAfterConsecutiveErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // every probe now fails at the transport level

	req, err := NewRequester(srv.URL, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	entries := make([]string, maxConsecutiveErrors+10)
	for i := range entries {
		entries[i] = string(rune('a'+i%26)) + string(rune('0'+i/26)) + string(rune('0'+i%10))
	}

	var mu sync.Mutex
	errCount := 0

	fuzzer := NewFuzzer(req, testDictionary(t, entries), 2, NewThrottler(0, false),
		nil, nil,
		[]ErrorCallback{func(res *Result, msg string) {
			mu.Lock()
			errCount++
			mu.Unlock()
			if msg == "" {
				t.Error("empty error message")
			}
		}})

	fuzzer.Start()
	waitDrained(t, fuzzer)

	if fuzzer.Err() == nil {
		t.Fatal("expected fatal error after consecutive transport failures")
	}
	mu.Lock()
	defer mu.Unlock()
	if errCount == 0 {
		t.Fatal("error callbacks never invoked")
	}
}
