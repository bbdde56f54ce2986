package scanner

import "net/http"

// Response holds the parsed HTTP response for one probe.
type Response struct {
	Status   int
	Headers  http.Header
	Body     []byte
	Redirect string // Location header value for 3xx responses, else ""
}

// Result is the outcome of probing a single candidate path. Status 0
// means no conclusive response was obtained. Results are transient:
// they are classified and either reported, recursed into, or dropped.
type Result struct {
	Path     string // candidate path, relative to the requester base path
	Status   int
	Response *Response
}
