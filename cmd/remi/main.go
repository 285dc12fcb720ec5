// remi - a conversational data assistant
//
// Loads a CSV file into SQLite or MySQL and lets a language model answer
// questions about it, generate SQL, or draw charts.
package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/remibot/remi-go/internal/cli"
)

// Version information (set via ldflags at build time)
var (
	version   = "dev"     //nolint:unused // Set via ldflags
	buildTime = "unknown" //nolint:unused // Set via ldflags
)

func main() {
	if err := cli.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		_, _ = errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
