// Package main is the entry point for keychord.
package main

import (
	"os"

	"github.com/dshills/keychord/internal/cli/cmd"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(cmd.Execute(cmd.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}))
}
