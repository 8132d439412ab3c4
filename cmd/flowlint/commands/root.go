// Package commands provides the CLI commands for the flowlint tool.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-flowlint/internal/config"
	"github.com/l3aro/go-flowlint/internal/log"
)

var (
	configPath string
	verbose    bool
	logJSON    bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "flowlint",
	Short: "flowlint - Flow-sensitive linting for circuit programs",
	Long: `flowlint builds control flow graphs for the templates of a compiled circuit
program and reports signals that are left unassigned or assigned more than once
on some path, constraints recorded twice, anonymous components, constant
signals, and loops that may never terminate.

Commands:
  check       Run every analysis over documents or directories
  lint        Run the syntax-level linters only
  cfg         Show the control flow graph of a template
  loops       List canonical for-loops and their per-path verdicts
  init        Create a configuration file interactively
  doctor      Check the configuration and the report cache

Use "flowlint [command] --help" for more information about a command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

// loadConfig loads the file named by --config, or the layered global and
// project configuration otherwise. The returned path is the file in effect,
// empty when only defaults apply.
func loadConfig() (*config.Config, string, error) {
	var cfg *config.Config
	var err error
	path := configPath
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
		path = effectiveConfigPath()
	}
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	if verbose {
		cfg.Verbose = true
	}
	if logJSON {
		cfg.LogJSON = true
	}
	return cfg, path, nil
}

// effectiveConfigPath returns the config file with the highest priority
// that exists.
func effectiveConfigPath() string {
	if project := config.ProjectConfigFilePath(); fileExists(project) {
		return project
	}
	if global := config.GlobalConfigFilePath(); global != "" && fileExists(global) {
		return global
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// newLogger writes diagnostics to w. Warnings and errors are always shown,
// debug output only when verbose.
func newLogger(cfg *config.Config, w io.Writer) log.Logger {
	level := log.WarnLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	return log.New(log.LoggerConfig{
		Level:      level,
		JSONOutput: cfg.LogJSON,
		Stderr:     w,
	})
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: project, then global)")
	RootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log debug output to stderr")
	RootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log as JSON lines")
}
