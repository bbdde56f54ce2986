package scanner

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/maxvaer/dirscout/internal/config"
)

// TransportError wraps a connection-level failure (timeout, reset,
// refused connection). Individual probe failures carry one of these so
// callers can distinguish transport trouble from HTTP answers.
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %q failed: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Requester issues HTTP probes against a single target. BasePath is
// mutable: the discovery controller repoints it at each frontier
// directory before starting a fuzzer pass.
type Requester struct {
	client    *http.Client
	method    string
	host      string
	port      string
	protocol  string
	headers   map[string]string
	userAgent string

	mu       sync.RWMutex
	basePath string
}

// NewRequester creates a Requester for the given target URL.
func NewRequester(rawURL string, opts *config.Options) (*Requester, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if base.Scheme == "" {
		base.Scheme = "http"
	}

	port := base.Port()
	if port == "" {
		if base.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	basePath := base.Path
	if basePath == "" {
		basePath = "/"
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		DialContext: (&net.Dialer{
			Timeout: opts.Timeout,
		}).DialContext,
		MaxIdleConns:        opts.Threads,
		MaxIdleConnsPerHost: opts.Threads,
	}

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", opts.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
		// Redirects are never followed: a Location header is a signal
		// the controller interprets, not a hop to chase.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "dirscout/" + defaultUserAgentVersion
	}

	headers := make(map[string]string, len(opts.Headers)+1)
	for k, v := range opts.Headers {
		headers[k] = v
	}
	if opts.Cookie != "" {
		headers["Cookie"] = opts.Cookie
	}

	method := strings.ToUpper(opts.HTTPMethod)
	if method == "" {
		method = http.MethodGet
	}

	return &Requester{
		client:    client,
		method:    method,
		host:      base.Hostname(),
		port:      port,
		protocol:  base.Scheme,
		headers:   headers,
		userAgent: ua,
		basePath:  basePath,
	}, nil
}

const defaultUserAgentVersion = "0.4"

// Host returns the target hostname.
func (r *Requester) Host() string { return r.host }

// Port returns the target port.
func (r *Requester) Port() string { return r.port }

// Protocol returns the URL scheme.
func (r *Requester) Protocol() string { return r.protocol }

// BasePath returns the current base path. Always ends in "/".
func (r *Requester) BasePath() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.basePath
}

// SetBasePath repoints the requester at another directory. Called by
// the controller between fuzzer passes, never during one.
func (r *Requester) SetBasePath(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	r.basePath = path
}

// SetHeader adds a header sent with every probe.
func (r *Requester) SetHeader(key, value string) {
	r.headers[key] = value
}

// Request probes a single path relative to the base path. HTTP answers
// of any status are returned as a Response; connection-level failures
// come back as a *TransportError.
func (r *Requester) Request(path string) (*Response, error) {
	target := r.protocol + "://" + net.JoinHostPort(r.host, r.port) +
		r.BasePath() + strings.TrimLeft(path, "/")

	req, err := http.NewRequest(r.method, target, nil)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	req.Header.Set("User-Agent", r.userAgent)
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}

	parsed := &Response{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    body,
	}
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		parsed.Redirect = resp.Header.Get("Location")
	}
	return parsed, nil
}
