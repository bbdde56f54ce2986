package config

import "time"

// Options holds all configuration for a dirscout run.
type Options struct {
	// Targets
	URL         string
	URLsFile    string
	CIDRTargets string
	Ports       string

	// Wordlist
	WordlistPath    string // empty = use embedded
	Extensions      []string
	ForceExtensions bool
	Lowercase       bool

	// HTTP
	HTTPMethod      string
	Threads         int
	Timeout         time.Duration
	Delay           time.Duration
	AdaptiveDelay   bool
	Headers         map[string]string
	Cookie          string
	UserAgent       string
	Proxy           string
	FollowRedirects bool

	// Recursion
	Recursive      bool
	MaxDepth       int // maximum '/' count allowed in a frontier entry
	ScanSubdirs    []string
	ExcludeSubdirs []string

	// Filtering
	ExcludeStatus  []int
	ExcludeTexts   []string
	ExcludeRegexps []string
	SuppressEmpty  bool
	BlacklistDir   string // directory holding <status>_blacklist.txt files

	// Reports
	AutoSave         bool
	AutoSaveFormat   string // "simple", "plain", "json"
	SavePath         string // root for logs/ and reports/ (default ~/.dirscout)
	SimpleOutputFile string
	PlainOutputFile  string
	JSONOutputFile   string

	// Console
	Quiet   bool
	NoColor bool
}
