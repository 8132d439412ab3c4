package lint

import (
	"github.com/l3aro/go-flowlint/pkg/ast"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// Visitor is an AST linter. Init runs once before traversal and may annotate
// the program; the Visit methods see every relevant statement exactly once;
// Collect runs once after traversal and returns the findings.
type Visitor interface {
	Init(p *program.Program)
	VisitDeclaration(p *program.Program, d *ast.Declaration)
	VisitSubstitution(p *program.Program, s *ast.Substitution)
	VisitBlock(p *program.Program, b *ast.Block)
	Collect(p *program.Program) []Lint
}

// StaticLinter runs a set of registered visitors over every template of a
// program.
type StaticLinter struct {
	program *program.Program
	linters []Visitor
}

// New creates a StaticLinter with the given linters.
func New(p *program.Program, linters ...Visitor) *StaticLinter {
	return &StaticLinter{program: p, linters: linters}
}

// Register appends a linter. Lints are returned in registration order.
func (s *StaticLinter) Register(v Visitor) {
	s.linters = append(s.linters, v)
}

// Lint runs all linters and returns their lints concatenated in registration
// order.
func (s *StaticLinter) Lint() []Lint {
	for _, l := range s.linters {
		l.Init(s.program)
	}
	for _, t := range s.program.Templates() {
		s.walk(t.Body)
	}
	var lints []Lint
	for _, l := range s.linters {
		lints = append(lints, l.Collect(s.program)...)
	}
	return lints
}

func (s *StaticLinter) walk(stmt ast.Statement) {
	switch st := stmt.(type) {
	case *ast.IfThenElse:
		s.walk(st.IfCase)
		if st.ElseCase != nil {
			s.walk(st.ElseCase)
		}
	case *ast.While:
		s.walk(st.Stmt)
	case *ast.Block:
		for _, l := range s.linters {
			l.VisitBlock(s.program, st)
		}
		for _, child := range st.Stmts {
			s.walk(child)
		}
	case *ast.InitializationBlock:
		for _, child := range st.Initializations {
			s.walk(child)
		}
	case *ast.Declaration:
		for _, l := range s.linters {
			l.VisitDeclaration(s.program, st)
		}
	case *ast.Substitution:
		for _, l := range s.linters {
			l.VisitSubstitution(s.program, st)
		}
	}
}

// Base provides no-op Visitor methods for embedding.
type Base struct{}

func (Base) Init(*program.Program)                                 {}
func (Base) VisitDeclaration(*program.Program, *ast.Declaration)   {}
func (Base) VisitSubstitution(*program.Program, *ast.Substitution) {}
func (Base) VisitBlock(*program.Program, *ast.Block)               {}
func (Base) Collect(*program.Program) []Lint                       { return nil }
