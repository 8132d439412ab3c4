// Package pathcheck checks, path by path, that signals and variables are
// assigned exactly once, and tracks constraint assignments across a session.
package pathcheck

import (
	"fmt"

	"github.com/l3aro/go-flowlint/pkg/ast"
	"github.com/l3aro/go-flowlint/pkg/cfg"
	"github.com/l3aro/go-flowlint/pkg/lint"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// Kind is the way a path violates single assignment.
type Kind string

const (
	KindUnassigned       Kind = "unassigned"
	KindMultiplyAssigned Kind = "multiply_assigned"
)

// PathLint is an assignment violation found on some path.
type PathLint struct {
	Kind     Kind
	Name     string
	XType    ast.VariableType
	Template string
	// Location is where the violation is reported: the queried location for
	// unassigned symbols, the declaration for multiply assigned ones.
	Location ast.Meta
	// Query is the location the check was run for.
	Query   ast.Meta
	Message string
}

// Lint converts l into a lint. Assignment violations are compile errors.
func (l *PathLint) Lint() lint.Lint {
	code := lint.CodeUnassignedSignal
	if l.Kind == KindMultiplyAssigned {
		code = lint.CodeMultipleAssignment
	}
	return lint.Lint{
		Code:     code,
		Message:  l.Message,
		Location: lint.LocationOf(l.Location),
		Level:    lint.LevelError,
		Template: l.Template,
	}
}

type state int

const (
	unassigned state = iota
	assigned
	multiplyAssigned
)

type binding struct {
	decl  *ast.Declaration
	state state
}

// runPath replays the declarations and substitutions along p.
// A declaration (re)starts its symbol as unassigned.
func runPath(g *cfg.Graph, p cfg.Path) map[string]*binding {
	bindings := make(map[string]*binding)
	for _, stmt := range g.Statements(p) {
		switch s := stmt.(type) {
		case *ast.Declaration:
			bindings[s.Name] = &binding{decl: s, state: unassigned}
		case *ast.Substitution:
			b, ok := bindings[s.Var]
			if !ok {
				cfg.Invariantf("runPath", "assignment to undeclared %q at %s in %q", s.Var, s.Meta, g.Name)
			}
			if b.state < multiplyAssigned {
				b.state++
			}
		}
	}
	return bindings
}

// CheckAllPathsAssign checks that every path from the template entry to the
// statement enclosing target assigns symbol exactly once. It returns the
// violation found on the first offending path, or nil.
func CheckAllPathsAssign(p *program.Program, template string, target ast.Meta, symbol string) (*PathLint, error) {
	g, err := cfg.Build(p, template)
	if err != nil {
		return nil, err
	}
	return checkPaths(g, g.NodeEnclosing(target), symbol, target), nil
}

// CheckNodeAssign is CheckAllPathsAssign for a node of an existing graph.
func CheckNodeAssign(g *cfg.Graph, node int64, symbol string) *PathLint {
	return checkPaths(g, node, symbol, g.Node(node).Meta())
}

func checkPaths(g *cfg.Graph, node int64, symbol string, query ast.Meta) *PathLint {
	for _, path := range cfg.AllSimplePaths(g, g.Entry(), node) {
		b, ok := runPath(g, path)[symbol]
		if !ok || b.state == assigned {
			// Paths that never declare the symbol say nothing about it.
			continue
		}
		if l := violation(g.Name, b, symbol, query); l != nil {
			return l
		}
	}
	return nil
}

func violation(template string, b *binding, symbol string, query ast.Meta) *PathLint {
	t := b.decl.XType
	var noun string
	switch {
	case t.IsInput():
		return nil
	case t.IsSignal():
		noun = "Signal"
	case t.IsVar():
		noun = "Var"
	default:
		return nil
	}

	l := &PathLint{Name: symbol, XType: t, Template: template, Query: query}
	if b.state == unassigned {
		l.Kind = KindUnassigned
		l.Location = query
		l.Message = fmt.Sprintf("%s `%s` is not initialized on all execution paths and would be given a zero value where no assignment has been made to it. Consider assigning a value to it explicitly.", noun, symbol)
	} else {
		l.Kind = KindMultiplyAssigned
		l.Location = b.decl.Meta
		l.Message = fmt.Sprintf("%s `%s` was already assigned a value and multiple assignments are not allowed.", noun, symbol)
	}
	return l
}

// IsSingleAssignmentOnAllPaths reports whether every path from the template
// entry to the substitution identified by subst, inclusive, assigns its
// target exactly once. The substitution is found by identity token.
func IsSingleAssignmentOnAllPaths(p *program.Program, template string, subst ast.Meta) (bool, error) {
	g, err := cfg.Build(p, template)
	if err != nil {
		return false, err
	}
	return SingleAssignment(g, g.NodeByElemID(subst.ElemID)), nil
}

// SingleAssignment is IsSingleAssignmentOnAllPaths for a node of an existing
// graph. Nodes that are not substitutions trivially pass.
func SingleAssignment(g *cfg.Graph, node int64) bool {
	s, ok := g.Node(node).Stmt.(*ast.Substitution)
	if !ok {
		return true
	}
	for _, path := range cfg.AllSimplePaths(g, g.Entry(), node) {
		if len(g.SubstitutionsTo(path, s.Var)) != 1 {
			return false
		}
	}
	return true
}
