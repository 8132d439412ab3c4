package lint

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-flowlint/pkg/ast"
	b "github.com/l3aro/go-flowlint/pkg/ast/astbuild"
	"github.com/l3aro/go-flowlint/pkg/constfold"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// recorder logs every callback it receives.
type recorder struct {
	name   string
	calls  *[]string
	result []Lint
}

func (r *recorder) log(format string, args ...interface{}) {
	*r.calls = append(*r.calls, r.name+":"+fmt.Sprintf(format, args...))
}

func (r *recorder) Init(*program.Program) { r.log("init") }

func (r *recorder) VisitDeclaration(_ *program.Program, d *ast.Declaration) {
	r.log("decl %s", d.Name)
}

func (r *recorder) VisitSubstitution(_ *program.Program, s *ast.Substitution) {
	r.log("subst %s", s.Var)
}

func (r *recorder) VisitBlock(_ *program.Program, blk *ast.Block) {
	r.log("block %d", len(blk.Stmts))
}

func (r *recorder) Collect(*program.Program) []Lint {
	r.log("collect")
	return r.result
}

func TestStaticLinter_Traversal(t *testing.T) {
	p := b.NewProgram(
		b.T("First", b.Block(
			b.Intermediate("x"),
			b.If(b.Lt(b.Ref("x"), b.Num(1)),
				b.Block(b.Constrain("x", b.Num(1))),
				b.Assign("y", b.Num(2)),
			),
			b.While(b.Lt(b.Ref("x"), b.Num(3)), b.Block(b.VarInit("z", b.Num(0)))),
			b.Log(b.Ref("x")),
			b.Assert(b.Ref("x")),
			b.Equal(b.Ref("x"), b.Num(1)),
			b.Return(b.Ref("x")),
		)),
		b.T("Second", b.Block(b.Output("o"))),
	)

	var calls []string
	first := &recorder{name: "a", calls: &calls, result: []Lint{{Code: "A"}}}
	second := &recorder{name: "b", calls: &calls, result: []Lint{{Code: "B1"}, {Code: "B2"}}}
	lints := New(p, first, second).Lint()

	assert.Equal(t, []Code{"A", "B1", "B2"}, []Code{lints[0].Code, lints[1].Code, lints[2].Code})
	assert.Equal(t, []string{
		"a:init", "b:init",
		"a:block 7", "b:block 7",
		"a:decl x", "b:decl x",
		"a:block 1", "b:block 1",
		"a:subst x", "b:subst x",
		"a:subst y", "b:subst y",
		"a:block 1", "b:block 1",
		"a:decl z", "b:decl z",
		"a:subst z", "b:subst z",
		"a:block 1", "b:block 1",
		"a:decl o", "b:decl o",
		"a:collect", "b:collect",
	}, calls)
}

func TestStaticLinter_Register(t *testing.T) {
	p := b.NewProgram(b.T("Main", b.Block()))
	var calls []string
	s := New(p)
	s.Register(&recorder{name: "r", calls: &calls})
	assert.Empty(t, s.Lint())
	assert.Equal(t, []string{"r:init", "r:block 0", "r:collect"}, calls)
}

func anonProgram() (*program.Program, *ast.Declaration) {
	a := b.ComponentDecl("a", "A")
	p := b.NewProgram(
		b.T("A", b.Block(
			b.Input("in1"),
			b.Input("in2"),
			b.Output("out1"),
			b.Output("out2"),
			b.Constrain("out1", b.Add(b.Ref("in1"), b.Ref("in2"))),
			b.Constrain("out2", b.Mul(b.Ref("in1"), b.Ref("in2"))),
		)),
		b.T("Main", b.Block(
			b.Input("in", b.Num(2)),
			b.Output("salida"),
			a,
			b.Constrain("a", b.Ref("in", b.Index(b.Num(0))), b.Field("in1")),
			b.Constrain("a", b.Ref("in", b.Index(b.Num(1))), b.Field("in2")),
			b.Constrain("salida", b.Ref("a", b.Field("out2"))),
		)),
	)
	return p, a
}

func TestAnonComponentLinter(t *testing.T) {
	p, decl := anonProgram()

	lints := New(p, NewAnonComponentLinter()).Lint()

	require.Len(t, lints, 1)
	assert.Equal(t, Lint{
		Code:     CodeAnonymousComponent,
		Message:  "Anonymous component: `a`",
		Location: LocationOf(decl.Meta),
		Detail:   "You can use (_, salida) <== A()(in[0], in[1]);",
		Level:    LevelNote,
	}, lints[0])
}

func TestAnonComponentLinter_Skips(t *testing.T) {
	unresolved := b.Decl(ast.Component(), "u")
	p := b.NewProgram(b.T("Main", b.Block(
		unresolved,
		b.ComponentDecl("m", "Missing"),
		b.Constrain("u", b.Num(1), b.Field("in")),
	)))

	assert.Empty(t, New(p, NewAnonComponentLinter()).Lint())
}

func TestAnonComponentLinter_ExpressionInput(t *testing.T) {
	p := b.NewProgram(
		b.T("Sq", b.Block(b.Input("x"), b.Output("y"), b.Constrain("y", b.Mul(b.Ref("x"), b.Ref("x"))))),
		b.T("Main", b.Block(
			b.Input("a"),
			b.ComponentDecl("s", "Sq"),
			b.Constrain("s", b.Add(b.Ref("a"), b.Num(1)), b.Field("x")),
		)),
	)

	lints := New(p, NewAnonComponentLinter()).Lint()
	require.Len(t, lints, 1)
	assert.Equal(t, "You can use (_) <== Sq()(a + 1);", lints[0].Detail)
}

func TestConstantSignalLinter(t *testing.T) {
	aux := b.Intermediate("aux")
	p := b.NewProgram(b.T("Main", b.Block(
		b.Input("in"),
		b.Output("out"),
		aux,
		b.Constrain("aux", b.Num(42)),
		b.Constrain("out", b.Mul(b.Ref("in"), b.Ref("aux"))),
	)))

	lints := New(p, NewConstantSignalLinter(constfold.New())).Lint()

	require.Len(t, lints, 1)
	assert.Equal(t, Lint{
		Code:     CodeConstantSignal,
		Message:  "Constant signal: `aux`",
		Location: LocationOf(aux.Meta),
		Detail:   "You should define `aux` as a variable instead: `var aux = 42`",
		Level:    LevelNote,
	}, lints[0])
}

func TestConstantSignalLinter_UsesExistingAnnotations(t *testing.T) {
	x := b.Intermediate("x")
	never := b.Intermediate("never")
	p := b.NewProgram(b.T("Main", b.Block(
		x, never,
		b.Constrain("x", b.Add(b.Num(1), b.Num(2))),
	)))
	x.IsConstant = true
	never.IsConstant = true

	lints := New(p, NewConstantSignalLinter(nil)).Lint()

	require.Len(t, lints, 1)
	assert.Equal(t, "You should define `x` as a variable instead: `var x = 1 + 2`", lints[0].Detail)
}

func TestBothLinters(t *testing.T) {
	p, _ := anonProgram()
	lints := New(p, NewAnonComponentLinter(), NewConstantSignalLinter(constfold.New())).Lint()

	require.Len(t, lints, 1)
	assert.Equal(t, CodeAnonymousComponent, lints[0].Code)
}

func TestHelpers(t *testing.T) {
	lints := []Lint{
		{Code: CodeLoopMayOverflow, Level: LevelWarning, Location: Location{FileID: 0, Start: 30, End: 40}},
		{Code: CodeConstantSignal, Level: LevelNote, Location: Location{FileID: 0, Start: 10, End: 20}},
		{Code: CodeUnassignedSignal, Level: LevelError, Location: Location{FileID: 1, Start: 0, End: 5}},
		{Code: CodeAnonymousComponent, Level: LevelNote, Location: Location{FileID: 0, Start: 10, End: 20}},
	}

	Sort(lints)
	assert.Equal(t, []Code{
		CodeAnonymousComponent, CodeConstantSignal, CodeLoopMayOverflow, CodeUnassignedSignal,
	}, []Code{lints[0].Code, lints[1].Code, lints[2].Code, lints[3].Code})

	assert.Len(t, Filter(lints, LevelNote), 4)
	assert.Len(t, Filter(lints, LevelWarning), 2)
	assert.Len(t, Filter(lints, LevelError), 1)

	assert.Equal(t, map[Level]int{LevelNote: 2, LevelWarning: 1, LevelError: 1}, Counts(lints))

	lvl, err := ParseLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, LevelWarning, lvl)
	_, err = ParseLevel("fatal")
	assert.Error(t, err)
}

func TestLintString(t *testing.T) {
	l := Lint{
		Code:     CodeLoopNoProgress,
		Message:  "Loop does not progress",
		Location: Location{FileID: 0, Start: 4, End: 9},
		Level:    LevelWarning,
	}
	assert.Equal(t, "warning[LoopNoProgress] 0:4-9: Loop does not progress", l.String())

	l.Detail = "i = i + 0"
	assert.Equal(t, "warning[LoopNoProgress] 0:4-9: Loop does not progress\n  = i = i + 0", l.String())
}
