package scanner

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequesterBasics(t *testing.T) {
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	opts := testOptions()
	opts.Headers = map[string]string{"X-Scan": "1"}
	req, err := NewRequester(srv.URL, opts)
	if err != nil {
		t.Fatal(err)
	}

	if req.Protocol() != "http" {
		t.Errorf("protocol = %q", req.Protocol())
	}
	if req.BasePath() != "/" {
		t.Errorf("base path = %q, want /", req.BasePath())
	}

	resp, err := req.Request("admin")
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if gotPath != "/admin" {
		t.Errorf("server saw path %q, want /admin", gotPath)
	}
	if gotUA == "" {
		t.Error("no User-Agent sent")
	}
	if resp.Status != 200 || string(resp.Body) != "hello" {
		t.Errorf("resp = %d %q", resp.Status, resp.Body)
	}
}

func TestRequesterBasePathMutation(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer srv.Close()

	req, err := NewRequester(srv.URL, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	req.SetBasePath("/backup/")
	if _, err := req.Request("old.bak"); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/backup/old.bak" {
		t.Errorf("server saw %q, want /backup/old.bak", gotPath)
	}

	// Missing trailing slash is normalized.
	req.SetBasePath("/deep/dir")
	if req.BasePath() != "/deep/dir/" {
		t.Errorf("base path = %q, want /deep/dir/", req.BasePath())
	}
}

func TestRequesterDoesNotFollowRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/admin" {
			w.Header().Set("Location", "/admin/")
			w.WriteHeader(http.StatusMovedPermanently)
			return
		}
		w.Write([]byte("index"))
	}))
	defer srv.Close()

	req, err := NewRequester(srv.URL, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	resp, err := req.Request("admin")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != 301 {
		t.Fatalf("status = %d, want 301", resp.Status)
	}
	if resp.Redirect != "/admin/" {
		t.Fatalf("redirect = %q, want /admin/", resp.Redirect)
	}
}

func TestRequesterTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	req, err := NewRequester(srv.URL, testOptions())
	if err != nil {
		t.Fatal(err)
	}

	_, err = req.Request("admin")
	if err == nil {
		t.Fatal("expected transport error")
	}
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error type %T, want *TransportError", err)
	}
}
