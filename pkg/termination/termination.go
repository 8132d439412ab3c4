// Package termination recognises canonical for-loops and checks that their
// counter makes progress towards the bound without wrapping around in field
// arithmetic.
package termination

import (
	"fmt"
	"math/big"

	"github.com/l3aro/go-flowlint/pkg/ast"
	"github.com/l3aro/go-flowlint/pkg/cfg"
	"github.com/l3aro/go-flowlint/pkg/lint"
	"github.com/l3aro/go-flowlint/pkg/program"
)

const overflowMessage = "Loop may overflow: refer to Circom's docs on modular field arithmetic: https://docs.circom.io/circom-language/basic-operators/#field-elements"

// ForLoop is a loop of the form
//
//	var counter = init; while (counter < bound) { ... }
type ForLoop struct {
	Counter string
	Init    *big.Int
	Bound   *big.Int
	Cond    ast.Expression
	Loop    *ast.While
	Body    *ast.Block
}

// String renders the loop header using the source text of the condition.
func (f *ForLoop) String(p *program.Program) string {
	return fmt.Sprintf("counter: %s init: %s cond: %s bound: %s",
		f.Counter, f.Init, p.SourceText(*f.Cond.GetMeta()), f.Bound)
}

// RecognizeForLoop matches an initialization block followed by a while loop.
// The initialization must be exactly a declaration and an assignment of a
// literal to the declared name, the condition exactly `counter < literal`
// and the body a non-empty block.
func RecognizeForLoop(stmts []ast.Statement) (*ForLoop, bool) {
	if len(stmts) != 2 {
		return nil, false
	}
	initBlock, ok := stmts[0].(*ast.InitializationBlock)
	if !ok || len(initBlock.Initializations) != 2 {
		return nil, false
	}
	decl, ok := initBlock.Initializations[0].(*ast.Declaration)
	if !ok {
		return nil, false
	}
	initSubst, ok := initBlock.Initializations[1].(*ast.Substitution)
	if !ok || initSubst.Var != decl.Name || len(initSubst.Access) > 0 {
		return nil, false
	}
	init, ok := ast.AsNumber(initSubst.Rhe)
	if !ok {
		return nil, false
	}

	loop, ok := stmts[1].(*ast.While)
	if !ok {
		return nil, false
	}
	cond, ok := loop.Cond.(*ast.InfixOp)
	if !ok || cond.Op != ast.OpLesser || !ast.IsVariableNamed(cond.Lhe, decl.Name) {
		return nil, false
	}
	bound, ok := ast.AsNumber(cond.Rhe)
	if !ok {
		return nil, false
	}
	body, ok := loop.Stmt.(*ast.Block)
	if !ok || len(body.Stmts) == 0 {
		return nil, false
	}

	return &ForLoop{
		Counter: decl.Name,
		Init:    init,
		Bound:   bound,
		Cond:    loop.Cond,
		Loop:    loop,
		Body:    body,
	}, true
}

// Monotonicity classifies the net change of the counter along a path.
type Monotonicity string

const (
	Increasing Monotonicity = "increasing" // Moves towards the bound
	Decreasing Monotonicity = "decreasing" // Wraps around below zero
	Constant   Monotonicity = "constant"   // Never reaches the bound
)

// Classify classifies a net change.
func Classify(delta *big.Int) Monotonicity {
	switch delta.Sign() {
	case 1:
		return Increasing
	case -1:
		return Decreasing
	}
	return Constant
}

// PathVerdict is the outcome for one path through the loop body.
type PathVerdict struct {
	Path  cfg.Path
	Delta *big.Int
	// Steps are the assignments to the counter along the path, recognised or not.
	Steps        []*ast.Substitution
	Monotonicity Monotonicity
}

// Step returns the change applied by s to counter: +n for `counter + n`,
// -n for `counter - n`. Any other shape is not recognised.
func Step(counter string, s *ast.Substitution) (*big.Int, bool) {
	op, ok := s.Rhe.(*ast.InfixOp)
	if !ok || !ast.IsVariableNamed(op.Lhe, counter) {
		return nil, false
	}
	n, ok := ast.AsNumber(op.Rhe)
	if !ok {
		return nil, false
	}
	switch op.Op {
	case ast.OpAdd:
		return new(big.Int).Set(n), true
	case ast.OpSub:
		return new(big.Int).Neg(n), true
	}
	return nil, false
}

// Evaluate sums the recognised counter steps along every simple path from
// the first to the last node of the loop body. Unrecognised steps add
// nothing.
func Evaluate(p *program.Program, f *ForLoop) []PathVerdict {
	g := cfg.BuildStatement(p, f.Body)
	var verdicts []PathVerdict
	for _, path := range cfg.AllSimplePaths(g, g.Entry(), g.Last()) {
		v := PathVerdict{Path: path, Delta: new(big.Int), Steps: g.SubstitutionsTo(path, f.Counter)}
		for _, s := range v.Steps {
			if d, ok := Step(f.Counter, s); ok {
				v.Delta.Add(v.Delta, d)
			}
		}
		v.Monotonicity = Classify(v.Delta)
		verdicts = append(verdicts, v)
	}
	return verdicts
}

// Analyze reports every path of the loop body whose counter does not
// increase. The lints are warnings while at least one path is safe, and
// errors when none is.
func Analyze(p *program.Program, f *ForLoop) []lint.Lint {
	verdicts := Evaluate(p, f)
	var lints []lint.Lint
	for _, v := range verdicts {
		var code lint.Code
		var msg string
		switch v.Monotonicity {
		case Increasing:
			continue
		case Decreasing:
			code, msg = lint.CodeLoopMayOverflow, overflowMessage
		default:
			code, msg = lint.CodeLoopNoProgress, "Loop does not progress"
		}
		at := *f.Cond.GetMeta()
		if len(v.Steps) > 0 {
			at = v.Steps[0].Meta
		}
		lints = append(lints, lint.Lint{
			Code:     code,
			Message:  msg,
			Location: lint.LocationOf(at),
			Detail:   fmt.Sprintf("`%s` changes by %s per iteration on this path", f.Counter, v.Delta),
			Level:    lint.LevelWarning,
		})
	}
	if len(verdicts) > 0 && len(lints) == len(verdicts) {
		for i := range lints {
			lints[i].Level = lint.LevelError
		}
	}
	return lints
}
