package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-flowlint/internal/config"
	"github.com/l3aro/go-flowlint/internal/scanner"
	"github.com/l3aro/go-flowlint/pkg/analysis"
	"github.com/l3aro/go-flowlint/pkg/cache"
	"github.com/l3aro/go-flowlint/pkg/lint"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// errLintErrors is returned when an analysis reported an error-level lint.
var errLintErrors = errors.New("errors reported")

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <path>...",
	Short: "Run every analysis over program documents",
	Long: `Runs the flow-sensitive checks and the syntax-level linters over program
documents (.json, .yaml, .yml, .msgpack). Directories are scanned recursively,
honouring .flowlintignore files.

Exits with a non-zero status when any error-level lint is reported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("format") {
			format, _ := cmd.Flags().GetString("format")
			cfg.Format = config.OutputFormat(format)
		}
		if cmd.Flags().Changed("min-level") {
			cfg.MinLevel, _ = cmd.Flags().GetString("min-level")
		}
		if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
			cfg.UseCache = false
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return runCheck(cmd, cfg, args)
	},
}

// documentTarget is a document to analyse. Scanned documents that fail to
// load are skipped with a warning; named ones are an error.
type documentTarget struct {
	path    string
	scanned bool
}

// checkResult is the JSON form of one analysed document.
type checkResult struct {
	File   string           `json:"file"`
	Report *analysis.Report `json:"report"`
}

func runCheck(cmd *cobra.Command, cfg *config.Config, args []string) error {
	logger := newLogger(cfg, cmd.ErrOrStderr())
	minLevel, err := lint.ParseLevel(cfg.MinLevel)
	if err != nil {
		return err
	}

	targets, err := collectTargets(args)
	if err != nil {
		return err
	}

	opts := analysis.OptionsFromConfig(cfg)
	opts.Logger = logger
	if cfg.UseCache {
		opts.ReportCache = cache.New[analysis.Report](cache.Options{MaxSize: cfg.CacheSize})
		if err := opts.ReportCache.LoadFromFile(cfg.CacheFile()); err != nil {
			logger.Warn("ignoring unreadable report cache", "path", cfg.CacheFile(), "error", err)
			opts.ReportCache.Clear()
		}
	}
	analyzer := analysis.New(opts)

	out := cmd.OutOrStdout()
	var results []checkResult
	var all []lint.Lint
	failed := false
	for _, t := range targets {
		p, err := program.LoadFile(t.path)
		if err != nil {
			if t.scanned {
				logger.Warn("skipping document", "path", t.path, "error", err)
				continue
			}
			return err
		}
		report, err := analyzer.Run(p)
		if err != nil {
			return fmt.Errorf("analysing %s: %w", t.path, err)
		}
		logger.Debug("analysed document", "path", t.path, "templates", len(report.Templates),
			"paths", report.Paths, "lints", len(report.Lints), "cached", report.Cached)
		failed = failed || report.HasErrors()

		shown := *report
		shown.Lints = lint.Filter(report.Lints, minLevel)
		all = append(all, shown.Lints...)
		if cfg.Format == config.FormatJSON {
			results = append(results, checkResult{File: t.path, Report: &shown})
			continue
		}
		printLints(out, p, t.path, shown.Lints)
	}

	if opts.ReportCache != nil {
		if err := opts.ReportCache.PersistToFile(cfg.CacheFile()); err != nil {
			logger.Warn("could not save report cache", "path", cfg.CacheFile(), "error", err)
		}
	}

	if cfg.Format == config.FormatJSON {
		if results == nil {
			results = []checkResult{}
		}
		if err := printJSON(out, results); err != nil {
			return err
		}
	} else {
		printSummary(out, all)
	}

	if failed {
		return errLintErrors
	}
	return nil
}

// collectTargets expands directories into the documents below them.
func collectTargets(args []string) ([]documentTarget, error) {
	var targets []documentTarget
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			targets = append(targets, documentTarget{path: arg})
			continue
		}
		files, err := scanner.Scan(arg)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", arg, err)
		}
		for _, f := range files {
			targets = append(targets, documentTarget{path: f.FullPath, scanned: true})
		}
	}
	return targets, nil
}

func init() {
	checkCmd.Flags().StringP("format", "f", "text", "Output format (text or json)")
	checkCmd.Flags().String("min-level", "note", "Lowest lint level to show (note, warning or error)")
	checkCmd.Flags().Bool("no-cache", false, "Do not read or write the report cache")
	RootCmd.AddCommand(checkCmd)
}
