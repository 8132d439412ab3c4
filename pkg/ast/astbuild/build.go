// Package astbuild constructs template bodies in code and prints them back to
// source text, filling in spans and identity tokens as it goes.
// It stands in for the parser when fixtures are written by hand.
package astbuild

import (
	"math/big"

	"github.com/l3aro/go-flowlint/pkg/ast"
)

func Num(v int64) *ast.Number {
	return &ast.Number{Value: big.NewInt(v)}
}

// BigNum returns a literal from its decimal representation.
func BigNum(s string) *ast.Number {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("astbuild: invalid number " + s)
	}
	return &ast.Number{Value: v}
}

func Ref(name string, access ...ast.Access) *ast.Variable {
	return &ast.Variable{Name: name, Access: access}
}

func Field(name string) ast.Access {
	return ast.ComponentAccess{Name: name}
}

func Index(e ast.Expression) ast.Access {
	return ast.ArrayAccess{Index: e}
}

func Infix(l ast.Expression, op ast.InfixOpcode, r ast.Expression) *ast.InfixOp {
	return &ast.InfixOp{Lhe: l, Op: op, Rhe: r}
}

func Add(l, r ast.Expression) *ast.InfixOp { return Infix(l, ast.OpAdd, r) }
func Sub(l, r ast.Expression) *ast.InfixOp { return Infix(l, ast.OpSub, r) }
func Mul(l, r ast.Expression) *ast.InfixOp { return Infix(l, ast.OpMul, r) }
func Lt(l, r ast.Expression) *ast.InfixOp  { return Infix(l, ast.OpLesser, r) }

func Neg(e ast.Expression) *ast.PrefixOp {
	return &ast.PrefixOp{Op: ast.OpNeg, Rhe: e}
}

func Call(id string, args ...ast.Expression) *ast.Call {
	return &ast.Call{ID: id, Args: args}
}

func Decl(t ast.VariableType, name string, dims ...ast.Expression) *ast.Declaration {
	return &ast.Declaration{XType: t, Name: name, Dimensions: dims}
}

func Input(name string, dims ...ast.Expression) *ast.Declaration {
	return Decl(ast.Signal(ast.SignalInput), name, dims...)
}

func Output(name string, dims ...ast.Expression) *ast.Declaration {
	return Decl(ast.Signal(ast.SignalOutput), name, dims...)
}

func Intermediate(name string, dims ...ast.Expression) *ast.Declaration {
	return Decl(ast.Signal(ast.SignalIntermediate), name, dims...)
}

func VarDecl(name string, dims ...ast.Expression) *ast.Declaration {
	return Decl(ast.Var(), name, dims...)
}

// ComponentDecl declares a component instantiating template.
func ComponentDecl(name, template string) *ast.Declaration {
	d := Decl(ast.Component(), name)
	d.Meta.ComponentInference = &template
	return d
}

func Subst(name string, op ast.AssignOp, rhe ast.Expression, access ...ast.Access) *ast.Substitution {
	return &ast.Substitution{Var: name, Access: access, Op: op, Rhe: rhe}
}

// Assign is `name = rhe`.
func Assign(name string, rhe ast.Expression, access ...ast.Access) *ast.Substitution {
	return Subst(name, ast.AssignVar, rhe, access...)
}

// Constrain is `name <== rhe`.
func Constrain(name string, rhe ast.Expression, access ...ast.Access) *ast.Substitution {
	return Subst(name, ast.AssignConstraintSignal, rhe, access...)
}

func Block(stmts ...ast.Statement) *ast.Block {
	return &ast.Block{Stmts: stmts}
}

func Init(t ast.VariableType, stmts ...ast.Statement) *ast.InitializationBlock {
	return &ast.InitializationBlock{XType: t, Initializations: stmts}
}

// VarInit is the expansion of `var name = v`.
func VarInit(name string, v ast.Expression) *ast.InitializationBlock {
	return Init(ast.Var(), VarDecl(name), Assign(name, v))
}

func If(cond ast.Expression, then ast.Statement, els ast.Statement) *ast.IfThenElse {
	return &ast.IfThenElse{Cond: cond, IfCase: then, ElseCase: els}
}

func While(cond ast.Expression, body ast.Statement) *ast.While {
	return &ast.While{Cond: cond, Stmt: body}
}

// For is the expansion of `for (var counter = init; counter < bound; ...) body`.
func For(counter string, init, bound int64, body *ast.Block) *ast.Block {
	return Block(
		VarInit(counter, Num(init)),
		While(Lt(Ref(counter), Num(bound)), body),
	)
}

func Assert(e ast.Expression) *ast.Assert {
	return &ast.Assert{Arg: e}
}

func Log(args ...ast.Expression) *ast.LogCall {
	return &ast.LogCall{Args: args}
}

func Return(e ast.Expression) *ast.Return {
	return &ast.Return{Value: e}
}

func Equal(l, r ast.Expression) *ast.ConstraintEquality {
	return &ast.ConstraintEquality{Lhe: l, Rhe: r}
}
