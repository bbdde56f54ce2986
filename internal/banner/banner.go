// Package banner prints the startup header.
package banner

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

// Print writes the program banner to stderr.
func Print(version string) {
	fig := figure.NewFigure("dirscout", "small", true)
	for _, line := range fig.Slicify() {
		color.New(color.FgCyan).Fprintln(os.Stderr, line)
	}
	color.New(color.Faint).Fprintf(os.Stderr, "  recursive web path discovery  v%s\n", version)
	fmt.Fprintln(os.Stderr)
}
