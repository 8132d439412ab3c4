package lint

import (
	"fmt"
	"strings"

	"github.com/l3aro/go-flowlint/pkg/ast"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// componentUse tracks the wiring of one component instance. inputs maps an
// input signal of the instantiated template to the source text assigned to
// it; outputs maps an output signal to the variable it was read into.
type componentUse struct {
	name     string
	template string
	meta     ast.Meta
	inputs   map[string]string
	outputs  map[string]string
}

// AnonComponentLinter suggests replacing a named component whose inputs and
// outputs are wired one by one with an anonymous component expression.
type AnonComponentLinter struct {
	uses   []*componentUse
	byName map[string]*componentUse
}

// NewAnonComponentLinter creates an AnonComponentLinter.
func NewAnonComponentLinter() *AnonComponentLinter {
	return &AnonComponentLinter{byName: make(map[string]*componentUse)}
}

func (a *AnonComponentLinter) Init(*program.Program) {}

func (a *AnonComponentLinter) VisitDeclaration(_ *program.Program, d *ast.Declaration) {
	if !d.XType.IsComponent() || d.Meta.ComponentInference == nil {
		return
	}
	use := &componentUse{
		name:     d.Name,
		template: *d.Meta.ComponentInference,
		meta:     d.Meta,
		inputs:   make(map[string]string),
		outputs:  make(map[string]string),
	}
	a.uses = append(a.uses, use)
	a.byName[d.Name] = use
}

func (a *AnonComponentLinter) VisitSubstitution(p *program.Program, s *ast.Substitution) {
	// c.in <== e
	if use, ok := a.byName[s.Var]; ok {
		for _, acc := range s.Access {
			if field, ok := acc.(ast.ComponentAccess); ok {
				use.inputs[field.Name] = p.SourceText(*s.Rhe.GetMeta())
			}
		}
	}
	// x <== c.out
	if v, ok := s.Rhe.(*ast.Variable); ok {
		if use, ok := a.byName[v.Name]; ok {
			for _, acc := range v.Access {
				if field, ok := acc.(ast.ComponentAccess); ok {
					use.outputs[field.Name] = s.Var
				}
			}
		}
	}
}

func (a *AnonComponentLinter) VisitBlock(*program.Program, *ast.Block) {}

func (a *AnonComponentLinter) Collect(p *program.Program) []Lint {
	var lints []Lint
	for _, use := range a.uses {
		t, ok := p.Template(use.template)
		if !ok {
			continue
		}
		detail := fmt.Sprintf("You can use (%s) <== %s()(%s);",
			joinWired(t.Outputs, use.outputs), t.Name, joinWired(t.Inputs, use.inputs))
		lints = append(lints, Lint{
			Code:     CodeAnonymousComponent,
			Message:  fmt.Sprintf("Anonymous component: `%s`", use.name),
			Location: LocationOf(use.meta),
			Detail:   detail,
			Level:    LevelNote,
		})
	}
	return lints
}

// joinWired lists the wiring of each signal in declaration order, with `_`
// for signals that were never wired.
func joinWired(signals []string, wired map[string]string) string {
	parts := make([]string, len(signals))
	for i, s := range signals {
		if w, ok := wired[s]; ok {
			parts[i] = w
		} else {
			parts[i] = "_"
		}
	}
	return strings.Join(parts, ", ")
}
