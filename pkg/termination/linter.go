package termination

import (
	"github.com/l3aro/go-flowlint/pkg/ast"
	"github.com/l3aro/go-flowlint/pkg/lint"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// Found is a recognised loop together with the lints it produced.
type Found struct {
	Loop  *ForLoop
	Lints []lint.Lint
}

// LoopLinter is a lint.Visitor that analyses every canonical for-loop once.
type LoopLinter struct {
	lint.Base
	checked map[int]bool
	found   []Found
}

// NewLoopLinter creates a LoopLinter.
func NewLoopLinter() *LoopLinter {
	return &LoopLinter{checked: make(map[int]bool)}
}

// VisitBlock looks for loops among adjacent statements of b.
func (l *LoopLinter) VisitBlock(p *program.Program, b *ast.Block) {
	for i := 0; i+1 < len(b.Stmts); i++ {
		f, ok := RecognizeForLoop(b.Stmts[i : i+2])
		if !ok || l.checked[f.Loop.Meta.ElemID] {
			continue
		}
		l.checked[f.Loop.Meta.ElemID] = true
		l.found = append(l.found, Found{Loop: f, Lints: Analyze(p, f)})
	}
}

// Collect returns the lints of every loop in visiting order.
func (l *LoopLinter) Collect(*program.Program) []lint.Lint {
	var lints []lint.Lint
	for _, f := range l.found {
		lints = append(lints, f.Lints...)
	}
	return lints
}

// Loops returns the recognised loops in visiting order.
func (l *LoopLinter) Loops() []Found {
	return l.found
}
