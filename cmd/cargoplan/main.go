// Package main is the entry point for the cargoplan CLI. All commands live
// in internal/cli.
package main

import (
	"github.com/piwi3910/cargoplan/internal/cli"
)

// Set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
