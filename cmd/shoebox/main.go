// Package main provides the entry point for the shoebox CLI tool.
package main

import (
	"github.com/shoeboxhq/shoebox/cmd/shoebox/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	cmd.Execute(version, commit, date, builtBy)
}
