package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-flowlint/pkg/cfg"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// cfgCmd represents the cfg command
var cfgCmd = &cobra.Command{
	Use:   "cfg <file> <template>",
	Short: "Show the control flow graph of a template",
	Long: `Builds the Control Flow Graph (CFG) of one template of a program document.
Prints the nodes and edges, or the graph as JSON or Graphviz DOT.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]
		templateName := args[1]

		p, err := program.LoadFile(filePath)
		if err != nil {
			return err
		}

		g, err := cfg.Build(p, templateName)
		if err != nil {
			if names := p.TemplateNames(); len(names) > 0 {
				return fmt.Errorf("%w in %s\nTemplates: %s", err, filePath, strings.Join(names, ", "))
			}
			return fmt.Errorf("%w in %s", err, filePath)
		}

		out := cmd.OutOrStdout()
		if dotOutput, _ := cmd.Flags().GetBool("dot"); dotOutput {
			data, err := g.DOT()
			if err != nil {
				return fmt.Errorf("rendering DOT: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(out, g.Info())
		}

		printCFGInfo(out, g.Info())
		return nil
	},
}

// printCFGInfo prints CFG information in human-readable format.
func printCFGInfo(w io.Writer, info *cfg.Info) {
	fmt.Fprintf(w, "=== CFG for template: %s ===\n", info.Template)
	fmt.Fprintf(w, "Cyclomatic Complexity: %d\n", info.CyclomaticComplexity)
	fmt.Fprintf(w, "Entry Node: %d\n", info.EntryID)
	fmt.Fprintf(w, "Exit Nodes: %v\n", info.ExitIDs)
	fmt.Fprintf(w, "End Nodes: %v\n", info.EndIDs)
	fmt.Fprintf(w, "\nNodes (%d):\n", len(info.Nodes))
	for _, n := range info.Nodes {
		fmt.Fprintf(w, "  %d %s (%s, elem %d, %d-%d)\n", n.ID, n.Kind, n.Role, n.ElemID, n.Start, n.End)
		if n.Label != "" {
			fmt.Fprintf(w, "    %s\n", n.Label)
		}
	}

	fmt.Fprintf(w, "\nEdges (%d, %d back):\n", len(info.Edges), info.BackEdges)
	for _, e := range info.Edges {
		fmt.Fprintf(w, "  %d --%s--> %d\n", e.SourceID, e.EdgeType, e.TargetID)
	}
}

func init() {
	cfgCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	cfgCmd.Flags().Bool("dot", false, "Output as Graphviz DOT")
	RootCmd.AddCommand(cfgCmd)
}
