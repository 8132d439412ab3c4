package commands

import (
	"github.com/spf13/cobra"

	"github.com/l3aro/go-flowlint/pkg/analysis"
	"github.com/l3aro/go-flowlint/pkg/lint"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// lintCmd represents the lint command
var lintCmd = &cobra.Command{
	Use:   "lint <file>",
	Short: "Run the syntax-level linters on a document",
	Long: `Runs the anonymous component, constant signal and loop termination linters
without building the per-template flow analyses.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		p, err := program.LoadFile(args[0])
		if err != nil {
			return err
		}

		opts := analysis.OptionsFromConfig(cfg)
		opts.Logger = newLogger(cfg, cmd.ErrOrStderr())
		lints := analysis.New(opts).Lint(p)

		out := cmd.OutOrStdout()
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			if lints == nil {
				lints = []lint.Lint{}
			}
			return printJSON(out, lints)
		}
		printLints(out, p, args[0], lints)
		printSummary(out, lints)
		return nil
	},
}

func init() {
	lintCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(lintCmd)
}
