package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-flowlint/pkg/lint"
	"github.com/l3aro/go-flowlint/pkg/program"
	"github.com/l3aro/go-flowlint/pkg/termination"
)

// loopsCmd represents the loops command
var loopsCmd = &cobra.Command{
	Use:   "loops <file>",
	Short: "List canonical for-loops and how their counter moves",
	Long: `Finds every canonical for-loop of a program document and shows, for each
path through its body, the net change of the loop counter.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := program.LoadFile(args[0])
		if err != nil {
			return err
		}

		linter := termination.NewLoopLinter()
		lint.New(p, linter).Lint()

		var loops []loopInfo
		for _, f := range linter.Loops() {
			loops = append(loops, describeLoop(p, args[0], f))
		}

		out := cmd.OutOrStdout()
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			if loops == nil {
				loops = []loopInfo{}
			}
			return printJSON(out, loops)
		}
		printLoops(out, loops)
		return nil
	},
}

// pathInfo is the verdict for one path through a loop body.
type pathInfo struct {
	Nodes        []int64 `json:"nodes"`
	Delta        string  `json:"delta"`
	Monotonicity string  `json:"monotonicity"`
}

// loopInfo describes one recognised loop.
type loopInfo struct {
	Position string      `json:"position"`
	Loop     string      `json:"loop"`
	Paths    []pathInfo  `json:"paths"`
	Lints    []lint.Lint `json:"lints"`
}

func describeLoop(p *program.Program, document string, f termination.Found) loopInfo {
	info := loopInfo{
		Position: position(p, document, lint.LocationOf(f.Loop.Loop.Meta)),
		Loop:     f.Loop.String(p),
		Lints:    f.Lints,
	}
	for _, v := range termination.Evaluate(p, f.Loop) {
		info.Paths = append(info.Paths, pathInfo{
			Nodes:        v.Path,
			Delta:        v.Delta.String(),
			Monotonicity: string(v.Monotonicity),
		})
	}
	if info.Lints == nil {
		info.Lints = []lint.Lint{}
	}
	return info
}

func printLoops(w io.Writer, loops []loopInfo) {
	if len(loops) == 0 {
		fmt.Fprintln(w, "No canonical for-loops found.")
		return
	}
	for i, l := range loops {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s: %s\n", l.Position, l.Loop)
		for _, path := range l.Paths {
			fmt.Fprintf(w, "  path %v: %s (%s)\n", path.Nodes, path.Delta, path.Monotonicity)
		}
		for _, ll := range l.Lints {
			fmt.Fprintf(w, "  %s[%s]: %s\n", ll.Level, ll.Code, ll.Message)
		}
	}
}

func init() {
	loopsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	RootCmd.AddCommand(loopsCmd)
}
