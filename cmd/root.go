// Package cmd wires the command-line interface.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/maxvaer/dirscout/internal/banner"
	"github.com/maxvaer/dirscout/internal/config"
	"github.com/maxvaer/dirscout/internal/controller"
	"github.com/maxvaer/dirscout/internal/output"
)

const version = "0.4.0"

var opts config.Options

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"TARGET", []string{"url", "urls-file", "cidr", "ports", "wordlist", "extensions", "force-extensions", "lowercase"}},
	{"RECURSION", []string{"recursive", "max-depth", "scan-subdirs", "exclude-subdirs"}},
	{"FILTERS", []string{"exclude-status", "exclude-text", "exclude-regexp", "suppress-empty", "blacklists"}},
	{"HTTP", []string{"http-method", "threads", "timeout", "delay", "adaptive-delay", "header", "cookie", "user-agent", "proxy"}},
	{"REPORTS", []string{"auto-save", "auto-save-format", "save-path", "simple-report", "plain-report", "json-report"}},
	{"OUTPUT", []string{"quiet", "no-color"}},
}

var rootCmd = &cobra.Command{
	Use:     "dirscout -u <url> [flags]",
	Short:   "Recursive web path discovery",
	Version: version,
	Long: `dirscout brute-forces web server paths from a wordlist and recursively
descends into every directory it discovers, with live pause/resume
control and durable multi-format reports.`,
	Example: `  dirscout -u https://example.com
  dirscout -u https://example.com -e php,html -t 50 --recursive
  dirscout -u https://example.com -x 403,500 --json-report results.json
  dirscout -l urls.txt --auto-save
  dirscout --cidr 192.168.1.0/24 --ports 80,8080 --auto-save`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if opts.URL == "" && opts.URLsFile == "" && opts.CIDRTargets == "" {
			_ = cmd.Help()
			fmt.Fprintln(os.Stderr)
			return errors.New("target required: use -u, -l, or --cidr")
		}
		switch strings.ToLower(opts.HTTPMethod) {
		case "get", "head", "post":
		default:
			return fmt.Errorf("invalid HTTP method %q: must be GET, HEAD or POST", opts.HTTPMethod)
		}
		headers, _ := cmd.Flags().GetStringSlice("header")
		if len(headers) > 0 {
			opts.Headers = make(map[string]string, len(headers))
			for _, h := range headers {
				parts := strings.SplitN(h, ":", 2)
				if len(parts) != 2 {
					return fmt.Errorf("invalid header format %q, expected 'Key: Value'", h)
				}
				opts.Headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
			}
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if opts.NoColor {
			color.NoColor = true
		}
		if !opts.Quiet {
			banner.Print(version)
		}
		printer := output.NewPrinter(opts.Quiet)
		ctrl, err := controller.New(&opts, printer)
		if err != nil {
			return err
		}
		return ctrl.Run()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()

	// Target
	f.StringVarP(&opts.URL, "url", "u", "", "Target URL")
	f.StringVarP(&opts.URLsFile, "urls-file", "l", "", "File with one URL per line")
	f.StringVar(&opts.CIDRTargets, "cidr", "", "CIDR range to scan (e.g. 192.168.1.0/24)")
	f.StringVar(&opts.Ports, "ports", "", "Ports for CIDR targets (comma-separated)")
	f.StringVarP(&opts.WordlistPath, "wordlist", "w", "", "Custom wordlist path (default: built-in)")
	f.StringSliceVarP(&opts.Extensions, "extensions", "e", nil, "Extensions substituted for %EXT% (e.g. php,html)")
	f.BoolVarP(&opts.ForceExtensions, "force-extensions", "f", false, "Append extensions to every wordlist entry")
	f.BoolVar(&opts.Lowercase, "lowercase", false, "Lowercase all wordlist entries")

	// Recursion
	f.BoolVarP(&opts.Recursive, "recursive", "r", false, "Recurse into discovered directories")
	f.IntVarP(&opts.MaxDepth, "max-depth", "R", 3, "Maximum recursion depth")
	f.StringSliceVar(&opts.ScanSubdirs, "scan-subdirs", nil, "Subdirectories to seed the scan with")
	f.StringSliceVar(&opts.ExcludeSubdirs, "exclude-subdirs", nil, "Subdirectory names never recursed into")

	// Filters
	f.VarP(&intSliceValue{target: &opts.ExcludeStatus}, "exclude-status", "x", "Hide these status codes (comma-separated)")
	f.StringSliceVar(&opts.ExcludeTexts, "exclude-text", nil, "Hide responses containing this text")
	f.StringSliceVar(&opts.ExcludeRegexps, "exclude-regexp", nil, "Hide responses matching this regexp")
	f.BoolVar(&opts.SuppressEmpty, "suppress-empty", false, "Hide responses with an empty body")
	f.StringVar(&opts.BlacklistDir, "blacklists", "", "Directory with <status>_blacklist.txt files (default: db)")

	// HTTP
	f.StringVarP(&opts.HTTPMethod, "http-method", "m", "GET", "HTTP method: GET, HEAD or POST")
	f.IntVarP(&opts.Threads, "threads", "t", 25, "Number of concurrent threads")
	f.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "HTTP request timeout")
	f.DurationVar(&opts.Delay, "delay", 0, "Delay between requests per thread")
	f.BoolVar(&opts.AdaptiveDelay, "adaptive-delay", false, "Auto back-off on 429/503 and repeated errors")
	f.StringSliceVarP(new([]string), "header", "H", nil, "Custom headers (Key: Value)")
	f.StringVar(&opts.Cookie, "cookie", "", "Cookie header value")
	f.StringVar(&opts.UserAgent, "user-agent", "", "Custom User-Agent string")
	f.StringVar(&opts.Proxy, "proxy", "", "HTTP proxy URL")

	// Reports
	f.BoolVar(&opts.AutoSave, "auto-save", false, "Save reports under the save path automatically")
	f.StringVar(&opts.AutoSaveFormat, "auto-save-format", "plain", "Auto-save format: simple, plain, json")
	f.StringVar(&opts.SavePath, "save-path", "", "Root for logs/ and reports/ (default: ~/.dirscout)")
	f.StringVar(&opts.SimpleOutputFile, "simple-report", "", "Also write a simple-format report here")
	f.StringVar(&opts.PlainOutputFile, "plain-report", "", "Also write a plain-text report here")
	f.StringVar(&opts.JSONOutputFile, "json-report", "", "Also write a JSON report here")

	// Output
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "Minimal output")
	f.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")

	// Categorized help.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		w := os.Stderr
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range helpGroups {
			fmt.Fprintf(w, "\n%s:\n", g.title)
			for _, name := range g.flags {
				if fl := cmd.Flags().Lookup(name); fl != nil {
					fmt.Fprintln(w, formatFlag(fl))
				}
			}
		}
		fmt.Fprintln(w)
	})
}

// Execute runs the root command. Operator aborts exit 0; setup and
// runtime failures exit 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, controller.ErrAborted) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// intSliceValue implements pflag.Value for comma-separated int slices.
type intSliceValue struct {
	target *[]int
}

func (v *intSliceValue) String() string {
	if v.target == nil || len(*v.target) == 0 {
		return ""
	}
	parts := make([]string, len(*v.target))
	for i, val := range *v.target {
		parts[i] = strconv.Itoa(val)
	}
	return strings.Join(parts, ",")
}

func (v *intSliceValue) Set(s string) error {
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid status code %q: %w", p, err)
		}
		*v.target = append(*v.target, n)
	}
	return nil
}

func (v *intSliceValue) Type() string { return "ints" }

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	if typ := f.Value.Type(); typ != "bool" {
		left += " " + typ
	}

	const col = 36
	for len(left) < col {
		left += " "
	}

	right := f.Usage
	if def := f.DefValue; def != "" && def != "false" && def != "0" && def != "0s" && def != "[]" {
		right += fmt.Sprintf(" (default %s)", def)
	}

	return "   " + left + right
}
