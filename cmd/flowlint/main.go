// Package main implements the flowlint CLI.
// It loads compiled circuit program documents and reports flow-sensitive
// lints for their templates.
package main

import (
	"os"

	"github.com/l3aro/go-flowlint/cmd/flowlint/commands"
)

var (
	version   = "dev"
	buildTime = ""
)

func main() {
	commands.RootCmd.Flags().BoolP("version", "v", false, "Print version information")
	commands.RootCmd.SetVersionTemplate(`flowlint version {{.Version}}
`)
	commands.RootCmd.Version = version
	if buildTime != "" {
		commands.RootCmd.Version = version + " (built " + buildTime + ")"
	}

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
