// Package constfold decides which declarations of a template only ever hold
// values known at compile time.
package constfold

import (
	"github.com/l3aro/go-flowlint/pkg/ast"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// Folder sets ast.Declaration.IsConstant on the declarations of a template.
//
// Template parameters and number literals are constant. A variable is
// constant when every value assigned to it is built from constants; this is
// computed as a greatest fixed point so counters such as `i = i + 1` stay
// constant. An intermediate or output signal is constant when it is assigned
// at least once, never through an access path, and only from constants.
// Input signals, components and buses are never constant.
type Folder struct{}

// New returns a Folder.
func New() *Folder { return &Folder{} }

type symbol struct {
	decls  []*ast.Declaration
	values []ast.Expression

	// partial is set when the symbol is assigned through an access path.
	partial bool
}

// Fold annotates t in place. Folding is idempotent.
func (f *Folder) Fold(t *program.Template) {
	symbols := make(map[string]*symbol)
	get := func(name string) *symbol {
		s, ok := symbols[name]
		if !ok {
			s = &symbol{}
			symbols[name] = s
		}
		return s
	}
	ast.Walk(t.Body, func(stmt ast.Statement) bool {
		switch s := stmt.(type) {
		case *ast.Declaration:
			sym := get(s.Name)
			sym.decls = append(sym.decls, s)
		case *ast.Substitution:
			sym := get(s.Var)
			if len(s.Access) > 0 {
				sym.partial = true
			}
			sym.values = append(sym.values, s.Rhe)
		}
		return true
	})

	params := make(map[string]bool, len(t.Params))
	for _, p := range t.Params {
		params[p] = true
	}

	// Start from every variable being constant and drop the ones assigned a
	// non-constant value until nothing changes.
	constVars := make(map[string]bool)
	for name, sym := range symbols {
		if isVar(sym) {
			constVars[name] = true
		}
	}
	isConst := func(e ast.Expression) bool {
		return constant(e, func(name string) bool {
			return params[name] || constVars[name]
		})
	}
	for changed := true; changed; {
		changed = false
		for name := range constVars {
			for _, v := range symbols[name].values {
				if !isConst(v) {
					delete(constVars, name)
					changed = true
					break
				}
			}
		}
	}

	for name, sym := range symbols {
		folded := false
		switch {
		case isVar(sym):
			folded = constVars[name]
		case isFoldableSignal(sym):
			folded = !sym.partial && len(sym.values) > 0
			for _, v := range sym.values {
				folded = folded && isConst(v)
			}
		}
		for _, d := range sym.decls {
			d.IsConstant = folded
		}
	}
}

func isVar(sym *symbol) bool {
	return len(sym.decls) > 0 && sym.decls[0].XType.IsVar()
}

func isFoldableSignal(sym *symbol) bool {
	if len(sym.decls) == 0 {
		return false
	}
	t := sym.decls[0].XType
	return t.IsSignal() && !t.IsInput()
}

// constant reports whether e only depends on literals and on names for which
// known returns true.
func constant(e ast.Expression, known func(string) bool) bool {
	switch e := e.(type) {
	case *ast.Number:
		return true
	case *ast.Variable:
		if !known(e.Name) {
			return false
		}
		for _, acc := range e.Access {
			switch a := acc.(type) {
			case ast.ComponentAccess:
				return false
			case ast.ArrayAccess:
				if !constant(a.Index, known) {
					return false
				}
			}
		}
		return true
	case *ast.InfixOp:
		return constant(e.Lhe, known) && constant(e.Rhe, known)
	case *ast.PrefixOp:
		return constant(e.Rhe, known)
	case *ast.InlineSwitch:
		return constant(e.Cond, known) && constant(e.IfTrue, known) && constant(e.IfFalse, known)
	case *ast.ArrayInLine:
		for _, v := range e.Values {
			if !constant(v, known) {
				return false
			}
		}
		return true
	}
	// Calls and anything unknown.
	return false
}
