package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maxvaer/dirscout/internal/scanner"
)

func response(body, redirect string) *scanner.Response {
	return &scanner.Response{Status: 200, Body: []byte(body), Redirect: redirect}
}

func TestSimpleSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	sink, err := NewSimpleSink("h", "80", "http", "/", path)
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	sink.AddPath("admin", 200, response("x", ""))
	sink.AddPath("backup/old.bak", 200, response("y", ""))
	if err := sink.Save(); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	want := "http://h:80/admin\nhttp://h:80/backup/old.bak\n"
	if string(data) != want {
		t.Fatalf("file = %q, want %q", data, want)
	}
}

func TestPlainSinkIncludesStatusAndRedirect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	sink, err := NewPlainSink("h", "8080", "https", "/app/", path)
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	sink.AddPath("admin", 301, &scanner.Response{Status: 301, Body: []byte("moved"), Redirect: "/app/admin/"})
	if err := sink.Save(); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	line := string(data)
	for _, want := range []string{"301", "https://h:8080/app/admin", "-> /app/admin/"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestJSONSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	sink, err := NewJSONSink("h", "80", "http", "/", path, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	sink.AddPath("admin", 200, response("hello", ""))
	if err := sink.Save(); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var doc struct {
		Session string `json:"session"`
		Target  string `json:"target"`
		Paths   []struct {
			Path   string `json:"path"`
			Status int    `json:"status"`
			Size   int    `json:"size"`
		} `json:"paths"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.Session != "run-1" || doc.Target != "http://h:80/" {
		t.Errorf("doc = %+v", doc)
	}
	if len(doc.Paths) != 1 || doc.Paths[0].Path != "admin" || doc.Paths[0].Status != 200 || doc.Paths[0].Size != 5 {
		t.Errorf("paths = %+v", doc.Paths)
	}
}

func TestCoordinatorFlushesOnEveryAdd(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a")
	p2 := filepath.Join(dir, "b.json")

	s1, err := NewSimpleSink("h", "80", "http", "/", p1)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := NewJSONSink("h", "80", "http", "/", p2, "")
	if err != nil {
		t.Fatal(err)
	}

	coord := NewCoordinator()
	coord.Attach(s1)
	coord.Attach(s2)

	if err := coord.AddAndSave("admin", 200, response("x", "")); err != nil {
		t.Fatal(err)
	}

	// Before Close, both files already reflect the entry on disk.
	data, _ := os.ReadFile(p1)
	if !strings.Contains(string(data), "/admin") {
		t.Fatalf("simple report not flushed: %q", data)
	}
	data, _ = os.ReadFile(p2)
	if !strings.Contains(string(data), `"admin"`) {
		t.Fatalf("json report not flushed: %q", data)
	}

	if err := coord.AddAndSave("backup/", 200, response("y", "")); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(p1)
	if got := strings.Count(string(data), "\n"); got != 2 {
		t.Fatalf("simple report lines = %d, want 2", got)
	}

	if err := coord.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestUniqueOutputFile(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "report")

	if got := UniqueOutputFile(base); got != base {
		t.Fatalf("got %q, want %q", got, base)
	}
	os.WriteFile(base, nil, 0o644)
	if got := UniqueOutputFile(base); got != base+"_2" {
		t.Fatalf("got %q, want %q", got, base+"_2")
	}
	os.WriteFile(base+"_2", nil, 0o644)
	if got := UniqueOutputFile(base); got != base+"_3" {
		t.Fatalf("got %q, want %q", got, base+"_3")
	}
}

func TestNewBatchSession(t *testing.T) {
	dir := t.TempDir()
	targets := []string{"http://a", "http://b"}

	s, err := NewBatchSession(dir, targets)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(s.Name, "BATCH-") {
		t.Errorf("name = %q", s.Name)
	}
	if s.ID == "" {
		t.Error("empty session ID")
	}

	data, err := os.ReadFile(filepath.Join(s.Dir, "TARGETS.txt"))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "# session "+s.ID) {
		t.Errorf("TARGETS.txt missing session header: %q", content)
	}
	for _, target := range targets {
		if !strings.Contains(content, target) {
			t.Errorf("TARGETS.txt missing %q", target)
		}
	}
}
