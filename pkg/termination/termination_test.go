package termination

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-flowlint/pkg/ast"
	b "github.com/l3aro/go-flowlint/pkg/ast/astbuild"
	"github.com/l3aro/go-flowlint/pkg/lint"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// loopProgram places `for (var i = 0; i < 10; ...) body` in a template and
// returns the program and the recognised loop.
func loopProgram(t *testing.T, body *ast.Block) (*program.Program, *ForLoop) {
	t.Helper()
	pair := b.For("i", 0, 10, body)
	p := b.NewProgram(b.T("Main", b.Block(b.Input("c"), pair)))
	f, ok := RecognizeForLoop(pair.Stmts)
	require.True(t, ok)
	return p, f
}

func TestRecognizeForLoop(t *testing.T) {
	p, f := loopProgram(t, b.Block(b.Assign("i", b.Add(b.Ref("i"), b.Num(1)))))

	assert.Equal(t, "i", f.Counter)
	assert.Equal(t, big.NewInt(0), f.Init)
	assert.Equal(t, big.NewInt(10), f.Bound)
	assert.Equal(t, "counter: i init: 0 cond: i < 10 bound: 10", f.String(p))
}

func TestRecognizeForLoop_Rejects(t *testing.T) {
	step := func() *ast.Block { return b.Block(b.Assign("i", b.Add(b.Ref("i"), b.Num(1)))) }
	loop := func(cond ast.Expression, body ast.Statement) *ast.While { return b.While(cond, body) }
	lt := func() ast.Expression { return b.Lt(b.Ref("i"), b.Num(10)) }

	tests := []struct {
		name  string
		stmts []ast.Statement
	}{
		{"single statement", []ast.Statement{b.VarInit("i", b.Num(0))}},
		{"three statements", []ast.Statement{b.VarInit("i", b.Num(0)), loop(lt(), step()), b.Log()}},
		{"init not a block", []ast.Statement{b.VarDecl("i"), loop(lt(), step())}},
		{"init with extra statement", []ast.Statement{
			b.Init(ast.Var(), b.VarDecl("i"), b.Assign("i", b.Num(0)), b.Assign("i", b.Num(1))),
			loop(lt(), step()),
		}},
		{"init order", []ast.Statement{
			b.Init(ast.Var(), b.Assign("i", b.Num(0)), b.VarDecl("i")),
			loop(lt(), step()),
		}},
		{"init assigns another name", []ast.Statement{
			b.Init(ast.Var(), b.VarDecl("i"), b.Assign("j", b.Num(0))),
			loop(lt(), step()),
		}},
		{"init not a literal", []ast.Statement{b.VarInit("i", b.Ref("n")), loop(lt(), step())}},
		{"second not a loop", []ast.Statement{b.VarInit("i", b.Num(0)), step()}},
		{"less or equal", []ast.Statement{
			b.VarInit("i", b.Num(0)),
			loop(b.Infix(b.Ref("i"), ast.OpLeq, b.Num(10)), step()),
		}},
		{"counter on the right", []ast.Statement{
			b.VarInit("i", b.Num(0)),
			loop(b.Infix(b.Num(10), ast.OpGreater, b.Ref("i")), step()),
		}},
		{"other variable in condition", []ast.Statement{
			b.VarInit("i", b.Num(0)),
			loop(b.Lt(b.Ref("j"), b.Num(10)), step()),
		}},
		{"bound not a literal", []ast.Statement{
			b.VarInit("i", b.Num(0)),
			loop(b.Lt(b.Ref("i"), b.Ref("n")), step()),
		}},
		{"body not a block", []ast.Statement{
			b.VarInit("i", b.Num(0)),
			loop(lt(), b.Assign("i", b.Add(b.Ref("i"), b.Num(1)))),
		}},
		{"empty body", []ast.Statement{b.VarInit("i", b.Num(0)), loop(lt(), b.Block())}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := RecognizeForLoop(tt.stmts)
			assert.False(t, ok)
			assert.Nil(t, f)
		})
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		name string
		rhe  ast.Expression
		want int64
		ok   bool
	}{
		{"add", b.Add(b.Ref("i"), b.Num(3)), 3, true},
		{"sub", b.Sub(b.Ref("i"), b.Num(2)), -2, true},
		{"literal first", b.Add(b.Num(1), b.Ref("i")), 0, false},
		{"mul", b.Mul(b.Ref("i"), b.Num(2)), 0, false},
		{"non-literal step", b.Add(b.Ref("i"), b.Ref("k")), 0, false},
		{"other counter", b.Add(b.Ref("j"), b.Num(1)), 0, false},
		{"literal", b.Num(4), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Step("i", b.Assign("i", tt.rhe))
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, big.NewInt(tt.want), d)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, Increasing, Classify(big.NewInt(2)))
	assert.Equal(t, Decreasing, Classify(big.NewInt(-1)))
	assert.Equal(t, Constant, Classify(new(big.Int)))
}

func TestAnalyze_Increment(t *testing.T) {
	p, f := loopProgram(t, b.Block(b.Assign("i", b.Add(b.Ref("i"), b.Num(1)))))
	assert.Empty(t, Analyze(p, f))
}

func TestAnalyze_Decrement(t *testing.T) {
	step := b.Assign("i", b.Sub(b.Ref("i"), b.Num(1)))
	p, f := loopProgram(t, b.Block(step))

	lints := Analyze(p, f)
	require.Len(t, lints, 1)
	assert.Equal(t, lint.CodeLoopMayOverflow, lints[0].Code)
	assert.Equal(t, overflowMessage, lints[0].Message)
	assert.Equal(t, lint.LocationOf(step.Meta), lints[0].Location)
	assert.Equal(t, "`i` changes by -1 per iteration on this path", lints[0].Detail)
	// The only path is unsafe.
	assert.Equal(t, lint.LevelError, lints[0].Level)
}

func TestAnalyze_NoProgress(t *testing.T) {
	t.Run("zero step", func(t *testing.T) {
		p, f := loopProgram(t, b.Block(b.Assign("i", b.Add(b.Ref("i"), b.Num(0)))))
		lints := Analyze(p, f)
		require.Len(t, lints, 1)
		assert.Equal(t, lint.CodeLoopNoProgress, lints[0].Code)
		assert.Equal(t, "Loop does not progress", lints[0].Message)
	})

	t.Run("no step", func(t *testing.T) {
		p, f := loopProgram(t, b.Block(b.Log(b.Ref("i"))))
		lints := Analyze(p, f)
		require.Len(t, lints, 1)
		assert.Equal(t, lint.CodeLoopNoProgress, lints[0].Code)
		assert.Equal(t, lint.LocationOf(*f.Cond.GetMeta()), lints[0].Location)
	})

	t.Run("unrecognised step", func(t *testing.T) {
		step := b.Assign("i", b.Mul(b.Ref("i"), b.Num(2)))
		p, f := loopProgram(t, b.Block(step))
		lints := Analyze(p, f)
		require.Len(t, lints, 1)
		assert.Equal(t, lint.CodeLoopNoProgress, lints[0].Code)
		assert.Equal(t, lint.LocationOf(step.Meta), lints[0].Location)
	})

	t.Run("steps cancel out", func(t *testing.T) {
		p, f := loopProgram(t, b.Block(
			b.Assign("i", b.Add(b.Ref("i"), b.Num(2))),
			b.Assign("i", b.Sub(b.Ref("i"), b.Num(2))),
		))
		lints := Analyze(p, f)
		require.Len(t, lints, 1)
		assert.Equal(t, lint.CodeLoopNoProgress, lints[0].Code)
	})
}

func TestAnalyze_OneSafePath(t *testing.T) {
	dec := b.Assign("i", b.Sub(b.Ref("i"), b.Num(2)))
	p, f := loopProgram(t, b.Block(
		b.Log(b.Ref("i")),
		b.If(b.Lt(b.Ref("c"), b.Num(1)), b.Block(dec), nil),
		b.Assign("i", b.Add(b.Ref("i"), b.Num(1))),
	))

	verdicts := Evaluate(p, f)
	require.Len(t, verdicts, 2)
	assert.Equal(t, Decreasing, verdicts[0].Monotonicity)
	assert.Equal(t, big.NewInt(-1), verdicts[0].Delta)
	assert.Equal(t, Increasing, verdicts[1].Monotonicity)

	lints := Analyze(p, f)
	require.Len(t, lints, 1)
	assert.Equal(t, lint.CodeLoopMayOverflow, lints[0].Code)
	assert.Equal(t, lint.LevelWarning, lints[0].Level)
	assert.Equal(t, lint.LocationOf(dec.Meta), lints[0].Location)
}

func TestAnalyze_AllPathsUnsafe(t *testing.T) {
	p, f := loopProgram(t, b.Block(
		b.Log(b.Ref("i")),
		b.If(b.Lt(b.Ref("c"), b.Num(1)),
			b.Block(b.Assign("i", b.Sub(b.Ref("i"), b.Num(1)))),
			b.Block(b.Assign("i", b.Add(b.Ref("i"), b.Num(0)))),
		),
		b.Log(b.Ref("i")),
	))

	lints := Analyze(p, f)
	require.Len(t, lints, 2)
	assert.Equal(t, lint.CodeLoopMayOverflow, lints[0].Code)
	assert.Equal(t, lint.CodeLoopNoProgress, lints[1].Code)
	for _, l := range lints {
		assert.Equal(t, lint.LevelError, l.Level)
	}
}

func TestAnalyze_BigLiterals(t *testing.T) {
	huge := "21888242871839275222246405745257275088548364400416034343698204186575808495617"
	p, f := loopProgram(t, b.Block(
		b.Assign("i", b.Add(b.Ref("i"), b.BigNum(huge))),
		b.Assign("i", b.Sub(b.Ref("i"), b.BigNum(huge))),
		b.Assign("i", b.Add(b.Ref("i"), b.Num(1))),
	))

	verdicts := Evaluate(p, f)
	require.Len(t, verdicts, 1)
	assert.Equal(t, big.NewInt(1), verdicts[0].Delta)
	assert.Empty(t, Analyze(p, f))
}

func TestLoopLinter(t *testing.T) {
	dec := b.Assign("i", b.Sub(b.Ref("i"), b.Num(1)))
	p := b.NewProgram(
		b.T("Safe", b.Block(
			b.Output("o"),
			b.For("i", 0, 4, b.Block(b.Assign("i", b.Add(b.Ref("i"), b.Num(1))))),
		)),
		b.T("Unsafe", b.Block(
			b.Output("o"),
			// Initialization and loop directly in the template body.
			b.VarInit("i", b.Num(0)),
			b.While(b.Lt(b.Ref("i"), b.Num(4)), b.Block(dec)),
		)),
	)

	ll := NewLoopLinter()
	lints := lint.New(p, ll).Lint()

	require.Len(t, lints, 1)
	assert.Equal(t, lint.CodeLoopMayOverflow, lints[0].Code)
	assert.Equal(t, lint.LocationOf(dec.Meta), lints[0].Location)
	require.Len(t, ll.Loops(), 2)
	assert.Empty(t, ll.Loops()[0].Lints)
}

func TestLoopLinter_AnalysesEachLoopOnce(t *testing.T) {
	loop := b.For("i", 0, 4, b.Block(b.Assign("i", b.Add(b.Ref("i"), b.Num(0)))))
	p := b.NewProgram(b.T("Main", b.Block(loop)))

	ll := NewLoopLinter()
	// Visiting the same block twice must not duplicate findings.
	ll.VisitBlock(p, loop)
	ll.VisitBlock(p, loop)

	assert.Len(t, ll.Collect(p), 1)
	assert.Len(t, ll.Loops(), 1)
}
