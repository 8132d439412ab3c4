package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-flowlint/internal/healthcheck"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on configuration and the report cache",
	Long: `Checks the configuration in effect and verifies that the report cache
directory is writable and its contents can be read back.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		result, err := healthcheck.Check(cfg, path)
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
		} else {
			displayDoctorResult(result)
		}

		if result.Failed() {
			return fmt.Errorf("health check failed: one or more checks reported an error")
		}
		return nil
	},
}

func displayDoctorResult(result *healthcheck.HealthCheckResult) {
	if result.EffectivePath == "" {
		fmt.Print("Using config: defaults (no config file found)\n\n")
	} else {
		fmt.Printf("Using config: %s (%s)\n\n", result.EffectivePath, result.EffectiveScope)
	}
	for _, c := range result.Checks() {
		printCheckStatus(c)
	}
}

func printCheckStatus(c healthcheck.CheckStatus) {
	fmt.Printf("%s:\n", c.Name)
	fmt.Printf("  Status: %s %s\n", formatStatusIcon(c.Status), c.Status)
	if c.Detail != "" {
		fmt.Printf("  Detail: %s\n", c.Detail)
	}
	if c.Error != "" {
		fmt.Printf("  Error: %s\n", c.Error)
	}
}

func formatStatusIcon(status string) string {
	switch status {
	case healthcheck.StatusReady:
		return "✓"
	case healthcheck.StatusMissing, healthcheck.StatusDisabled:
		return "-"
	case healthcheck.StatusError:
		return "✗"
	default:
		return "?"
	}
}

func init() {
	doctorCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(doctorCmd)
}
