// Package redirect infers scannable subdirectories from 3xx Location
// headers. A probe of "admin" answering 301 -> "admin/" is the
// conventional signal that a directory exists.
package redirect

import (
	"net/url"
	"strings"
)

// ResolveSubdirectory resolves target against the current scan
// position and reports whether it denotes a subdirectory worth
// recursing into. baseURL is the target root, currentDirectory the
// prefix being scanned ("" or ending in "/"), target the raw Location
// header value.
//
// The resolved URL is accepted only when it stays inside the current
// directory subtree, is not the current directory itself, and ends in
// "/". This keeps redirect loops and cross-host redirects from
// inflating the frontier. On acceptance the returned entry is the
// resolved path relative to currentDirectory.
func ResolveSubdirectory(baseURL, currentDirectory, target string) (string, bool) {
	base := strings.TrimRight(baseURL, "/") + "/" + currentDirectory

	baseRef, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	targetRef, err := url.Parse(target)
	if err != nil {
		return "", false
	}

	resolved := baseRef.ResolveReference(targetRef).String()

	if !strings.HasPrefix(resolved, base) {
		return "", false
	}
	if resolved == base {
		return "", false
	}
	if !strings.HasSuffix(resolved, "/") {
		return "", false
	}

	return resolved[len(base):], true
}
