package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/l3aro/go-flowlint/pkg/lint"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// position renders loc as path:line:col when its file is known, falling back
// to the raw span otherwise.
func position(p *program.Program, fallback string, loc lint.Location) string {
	f, ok := p.File(loc.FileID)
	if !ok {
		return fmt.Sprintf("%s:%s", fallback, loc)
	}
	path := f.Path
	if path == "" {
		path = fallback
	}
	if loc.Start < 0 || loc.Start > len(f.Content) {
		return fmt.Sprintf("%s:%s", path, loc)
	}
	before := f.Content[:loc.Start]
	line := strings.Count(before, "\n") + 1
	col := loc.Start - strings.LastIndex(before, "\n")
	return fmt.Sprintf("%s:%d:%d", path, line, col)
}

// printLints writes lints in the compiler style used by every text output.
func printLints(w io.Writer, p *program.Program, document string, lints []lint.Lint) {
	for _, l := range lints {
		fmt.Fprintf(w, "%s: %s[%s]: %s\n", position(p, document, l.Location), l.Level, l.Code, l.Message)
		if l.Template != "" {
			fmt.Fprintf(w, "  in template %s\n", l.Template)
		}
		if l.Detail != "" {
			fmt.Fprintf(w, "  = %s\n", l.Detail)
		}
	}
}

// printSummary writes the lint totals per level.
func printSummary(w io.Writer, lints []lint.Lint) {
	counts := lint.Counts(lints)
	fmt.Fprintf(w, "%d error(s), %d warning(s), %d note(s)\n",
		counts[lint.LevelError], counts[lint.LevelWarning], counts[lint.LevelNote])
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
