package commands

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-flowlint/internal/config"
	"github.com/l3aro/go-flowlint/internal/healthcheck"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize flowlint configuration interactively",
	Long: `Guides you through setting up flowlint configuration step by step.
Creates a config file selecting the linters, the flow checks and the
lowest lint level to report.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

// Option values of the linter and check multi-selects.
const (
	optAnonymousComponent = "anonymous_component"
	optConstantSignal     = "constant_signal"
	optLoops              = "loops"
	optAssignment         = "assignment"
	optConstraints        = "constraints"
	optVariables          = "variables"
)

func runInit() error {
	cfg := config.DefaultConfig()

	// === SECTION 1: Linters and checks ===
	linters := []string{optAnonymousComponent, optConstantSignal, optLoops}
	checks := []string{optAssignment, optConstraints}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Linters - Run over the syntax of every template").
				Options(
					huh.NewOption("Anonymous components", optAnonymousComponent).Selected(true),
					huh.NewOption("Constant signals", optConstantSignal).Selected(true),
					huh.NewOption("Loop termination", optLoops).Selected(true),
				).
				Value(&linters),
			huh.NewMultiSelect[string]().
				Title("Flow checks - Run over every path of every template").
				Options(
					huh.NewOption("Signal assignment", optAssignment).Selected(true),
					huh.NewOption("Repeated constraints", optConstraints).Selected(true),
					huh.NewOption("Variable assignment", optVariables),
				).
				Value(&checks),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	selected := func(values []string, v string) bool {
		for _, s := range values {
			if s == v {
				return true
			}
		}
		return false
	}
	cfg.Linters.AnonymousComponent = selected(linters, optAnonymousComponent)
	cfg.Linters.ConstantSignal = selected(linters, optConstantSignal)
	cfg.Linters.Loops = selected(linters, optLoops)
	cfg.Checks.Assignment = selected(checks, optAssignment)
	cfg.Checks.Constraints = selected(checks, optConstraints)
	cfg.Checks.Variables = selected(checks, optVariables)

	// === SECTION 2: Output ===
	minLevel := cfg.MinLevel
	format := string(cfg.Format)
	useCache := cfg.UseCache
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Lowest lint level to report").
				Options(
					huh.NewOption("Note", "note"),
					huh.NewOption("Warning", "warning"),
					huh.NewOption("Error", "error"),
				).
				Value(&minLevel),
			huh.NewSelect[string]().
				Title("Output format").
				Options(
					huh.NewOption("Text", string(config.FormatText)),
					huh.NewOption("JSON", string(config.FormatJSON)),
				).
				Value(&format),
			huh.NewConfirm().
				Title("Cache reports between runs?").
				Description(fmt.Sprintf("Reports are kept in %s", cfg.CacheDir)).
				Value(&useCache),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	cfg.MinLevel = minLevel
	cfg.Format = config.OutputFormat(format)
	cfg.UseCache = useCache

	// === SECTION 3: Config Location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Project (./.flowlint/config.yaml)", "project"),
					huh.NewOption("Global (~/.flowlint/config.yaml)", "global"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	configPath := config.ProjectConfigFilePath()
	if saveLocationChoice == "global" {
		configPath = config.GlobalConfigFilePath()
		if configPath == "" {
			return fmt.Errorf("getting home directory failed")
		}
	}

	// Check if config already exists
	if fileExists(configPath) {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Show config preview
	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	fmt.Printf("Linters: anonymous_component=%t constant_signal=%t loops=%t\n",
		cfg.Linters.AnonymousComponent, cfg.Linters.ConstantSignal, cfg.Linters.Loops)
	fmt.Printf("Checks: assignment=%t constraints=%t variables=%t\n",
		cfg.Checks.Assignment, cfg.Checks.Constraints, cfg.Checks.Variables)
	fmt.Printf("Min Level: %s\n", cfg.MinLevel)
	fmt.Printf("Format: %s\n", cfg.Format)
	fmt.Printf("Report Cache: %t\n", cfg.UseCache)
	fmt.Println("================================")

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)

	// === SECTION 4: Health Check ===
	fmt.Println("\n=== Running Health Check ===")

	loadedCfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading saved config: %w", err)
	}

	result, err := healthcheck.Check(loadedCfg, configPath)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	fmt.Printf("\nConfig Scope: %s\n", result.EffectiveScope)
	absPath, _ := filepath.Abs(configPath)
	fmt.Printf("Config Path: %s\n", absPath)
	for _, c := range result.Checks() {
		printCheckStatus(c)
	}

	fmt.Println("\n=== Initialization Complete ===")
	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}
