package lint

import (
	"fmt"

	"github.com/l3aro/go-flowlint/pkg/ast"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// ConstantFolder marks the declarations of a template whose value is known
// at compile time by setting ast.Declaration.IsConstant.
type ConstantFolder interface {
	Fold(t *program.Template)
}

// ConstantSignalLinter flags intermediate and output signals that only ever
// hold a compile-time constant and could be plain variables.
type ConstantSignalLinter struct {
	folder   ConstantFolder
	signals  map[string]bool
	rhe      map[string]ast.Expression
	constant []*ast.Declaration
}

// NewConstantSignalLinter creates a ConstantSignalLinter. When folder is nil
// the IsConstant annotations already present in the program are used.
func NewConstantSignalLinter(folder ConstantFolder) *ConstantSignalLinter {
	return &ConstantSignalLinter{
		folder:  folder,
		signals: make(map[string]bool),
		rhe:     make(map[string]ast.Expression),
	}
}

func (c *ConstantSignalLinter) Init(p *program.Program) {
	if c.folder == nil {
		return
	}
	for _, t := range p.Templates() {
		c.folder.Fold(t)
	}
}

func (c *ConstantSignalLinter) VisitDeclaration(_ *program.Program, d *ast.Declaration) {
	if !d.XType.IsSignal() || d.XType.IsInput() {
		return
	}
	c.signals[d.Name] = true
	if d.IsConstant {
		c.constant = append(c.constant, d)
	}
}

func (c *ConstantSignalLinter) VisitSubstitution(_ *program.Program, s *ast.Substitution) {
	if c.signals[s.Var] {
		c.rhe[s.Var] = s.Rhe
	}
}

func (c *ConstantSignalLinter) VisitBlock(*program.Program, *ast.Block) {}

func (c *ConstantSignalLinter) Collect(p *program.Program) []Lint {
	var lints []Lint
	for _, d := range c.constant {
		rhe, ok := c.rhe[d.Name]
		if !ok {
			continue
		}
		detail := fmt.Sprintf("You should define `%s` as a variable instead: `var %s = %s`",
			d.Name, d.Name, p.SourceText(*rhe.GetMeta()))
		lints = append(lints, Lint{
			Code:     CodeConstantSignal,
			Message:  fmt.Sprintf("Constant signal: `%s`", d.Name),
			Location: LocationOf(d.Meta),
			Detail:   detail,
			Level:    LevelNote,
		})
	}
	return lints
}
