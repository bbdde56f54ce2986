package report

import (
	"encoding/json"

	"github.com/maxvaer/dirscout/internal/scanner"
)

type jsonEntry struct {
	Path     string `json:"path"`
	Status   int    `json:"status"`
	Size     int    `json:"size"`
	Redirect string `json:"redirect,omitempty"`
}

type jsonDocument struct {
	Session string      `json:"session,omitempty"`
	Target  string      `json:"target"`
	Paths   []jsonEntry `json:"paths"`
}

// JSONSink writes a single JSON document per target. session is the
// run identifier shared by every report of one invocation; empty omits
// the field.
type JSONSink struct {
	target  targetInfo
	session string
	file    *sinkFile
	entries []jsonEntry
}

// NewJSONSink creates a JSON sink writing to outputFile.
func NewJSONSink(host, port, protocol, basePath, outputFile, session string) (*JSONSink, error) {
	f, err := createSinkFile(outputFile)
	if err != nil {
		return nil, err
	}
	return &JSONSink{
		target:  targetInfo{host: host, port: port, protocol: protocol, basePath: basePath},
		session: session,
		file:    f,
	}, nil
}

func (j *JSONSink) AddPath(path string, status int, resp *scanner.Response) {
	e := jsonEntry{Path: path, Status: status}
	if resp != nil {
		e.Size = len(resp.Body)
		e.Redirect = resp.Redirect
	}
	j.entries = append(j.entries, e)
}

func (j *JSONSink) Save() error {
	doc := jsonDocument{
		Session: j.session,
		Target:  j.target.baseURL(),
		Paths:   j.entries,
	}
	if doc.Paths == nil {
		doc.Paths = []jsonEntry{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return j.file.rewrite(append(data, '\n'))
}

func (j *JSONSink) Close() error { return j.file.close() }
