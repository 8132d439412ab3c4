package astbuild

import (
	"strings"

	"github.com/l3aro/go-flowlint/pkg/ast"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// Printer renders statements into a single source file and stamps every node
// with the span it was printed at and a fresh identity token.
type Printer struct {
	fileID int
	buf    strings.Builder
	nextID int
}

// NewPrinter returns a printer for the file with the given id.
func NewPrinter(fileID int) *Printer {
	return &Printer{fileID: fileID, nextID: 1}
}

// Source returns the text printed so far.
func (p *Printer) Source() string {
	return p.buf.String()
}

// Template prints `template name(params) body`.
func (p *Printer) Template(name string, params []string, body *ast.Block) {
	p.buf.WriteString("template ")
	p.buf.WriteString(name)
	p.buf.WriteString("(")
	p.buf.WriteString(strings.Join(params, ", "))
	p.buf.WriteString(") ")
	p.Stmt(body)
	p.buf.WriteString("\n\n")
}

func (p *Printer) stamp(m *ast.Meta, start int) {
	m.Start = start
	m.End = p.buf.Len()
	m.FileID = p.fileID
	m.ElemID = p.nextID
	p.nextID++
}

// Stmt prints s and its children.
func (p *Printer) Stmt(s ast.Statement) {
	start := p.buf.Len()
	switch s := s.(type) {
	case *ast.Declaration:
		p.buf.WriteString(declPrefix(s.XType))
		p.buf.WriteString(" ")
		p.buf.WriteString(s.Name)
		for _, d := range s.Dimensions {
			p.buf.WriteString("[")
			p.Expr(d)
			p.buf.WriteString("]")
		}
	case *ast.Substitution:
		p.buf.WriteString(s.Var)
		p.access(s.Access)
		p.buf.WriteString(" " + string(s.Op) + " ")
		p.Expr(s.Rhe)
	case *ast.Block:
		p.buf.WriteString("{\n")
		for _, child := range s.Stmts {
			p.buf.WriteString("    ")
			p.Stmt(child)
			if needsSemicolon(child) {
				p.buf.WriteString(";")
			}
			p.buf.WriteString("\n")
		}
		p.buf.WriteString("}")
	case *ast.InitializationBlock:
		for i, child := range s.Initializations {
			if i > 0 {
				p.buf.WriteString("; ")
			}
			p.Stmt(child)
		}
	case *ast.IfThenElse:
		p.buf.WriteString("if (")
		p.Expr(s.Cond)
		p.buf.WriteString(") ")
		p.Stmt(s.IfCase)
		if s.ElseCase != nil {
			p.buf.WriteString(" else ")
			p.Stmt(s.ElseCase)
		}
	case *ast.While:
		p.buf.WriteString("while (")
		p.Expr(s.Cond)
		p.buf.WriteString(") ")
		p.Stmt(s.Stmt)
	case *ast.CallStmt:
		p.Expr(s.Call)
	case *ast.LogCall:
		p.buf.WriteString("log(")
		p.exprList(s.Args)
		p.buf.WriteString(")")
	case *ast.Assert:
		p.buf.WriteString("assert(")
		p.Expr(s.Arg)
		p.buf.WriteString(")")
	case *ast.Return:
		p.buf.WriteString("return ")
		p.Expr(s.Value)
	case *ast.ConstraintEquality:
		p.Expr(s.Lhe)
		p.buf.WriteString(" === ")
		p.Expr(s.Rhe)
	case *ast.MultSubstitution:
		p.Expr(s.Lhe)
		p.buf.WriteString(" " + string(s.Op) + " ")
		p.Expr(s.Rhe)
	case *ast.UnderscoreSubstitution:
		p.buf.WriteString("_ " + string(s.Op) + " ")
		p.Expr(s.Rhe)
	}
	p.stamp(s.GetMeta(), start)
}

// Expr prints e and its children.
func (p *Printer) Expr(e ast.Expression) {
	start := p.buf.Len()
	switch e := e.(type) {
	case *ast.Number:
		p.buf.WriteString(e.Value.String())
	case *ast.Variable:
		p.buf.WriteString(e.Name)
		p.access(e.Access)
	case *ast.InfixOp:
		p.operand(e.Lhe)
		p.buf.WriteString(" " + string(e.Op) + " ")
		p.operand(e.Rhe)
	case *ast.PrefixOp:
		p.buf.WriteString(string(e.Op))
		p.operand(e.Rhe)
	case *ast.Call:
		p.buf.WriteString(e.ID)
		p.buf.WriteString("(")
		p.exprList(e.Args)
		p.buf.WriteString(")")
	case *ast.ArrayInLine:
		p.buf.WriteString("[")
		p.exprList(e.Values)
		p.buf.WriteString("]")
	case *ast.InlineSwitch:
		p.operand(e.Cond)
		p.buf.WriteString(" ? ")
		p.operand(e.IfTrue)
		p.buf.WriteString(" : ")
		p.operand(e.IfFalse)
	}
	p.stamp(e.GetMeta(), start)
}

func (p *Printer) operand(e ast.Expression) {
	switch e.(type) {
	case *ast.InfixOp, *ast.InlineSwitch:
		p.buf.WriteString("(")
		p.Expr(e)
		p.buf.WriteString(")")
	default:
		p.Expr(e)
	}
}

func (p *Printer) exprList(es []ast.Expression) {
	for i, e := range es {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		p.Expr(e)
	}
}

func (p *Printer) access(acc []ast.Access) {
	for _, a := range acc {
		switch a := a.(type) {
		case ast.ComponentAccess:
			p.buf.WriteString("." + a.Name)
		case ast.ArrayAccess:
			p.buf.WriteString("[")
			p.Expr(a.Index)
			p.buf.WriteString("]")
		}
	}
}

func declPrefix(t ast.VariableType) string {
	switch t.Kind {
	case ast.KindSignal:
		switch t.Signal {
		case ast.SignalInput:
			return "signal input"
		case ast.SignalOutput:
			return "signal output"
		}
		return "signal"
	case ast.KindAnonymousComponent:
		return "component"
	default:
		return string(t.Kind)
	}
}

func needsSemicolon(s ast.Statement) bool {
	switch s.(type) {
	case *ast.Block, *ast.IfThenElse, *ast.While:
		return false
	}
	return true
}

// TemplateSpec describes one template of a program built in code.
type TemplateSpec struct {
	Name   string
	Params []string
	Body   *ast.Block
}

// T is shorthand for a parameterless TemplateSpec.
func T(name string, body *ast.Block) TemplateSpec {
	return TemplateSpec{Name: name, Body: body}
}

// NewProgram prints the templates into a single file "main.circom" and returns
// the resulting program. Input and output lists are derived from the bodies.
func NewProgram(templates ...TemplateSpec) *program.Program {
	p := NewPrinter(0)
	for _, t := range templates {
		p.Template(t.Name, t.Params, t.Body)
	}
	prog := program.New()
	prog.AddFile(program.File{ID: 0, Path: "main.circom", Content: p.Source()})
	for _, t := range templates {
		prog.AddTemplate(&program.Template{Name: t.Name, Params: t.Params, Body: t.Body})
	}
	return prog
}
