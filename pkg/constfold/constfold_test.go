package constfold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l3aro/go-flowlint/pkg/ast"
	b "github.com/l3aro/go-flowlint/pkg/ast/astbuild"
)

func TestFold(t *testing.T) {
	in := b.Input("in")
	aux := b.Intermediate("aux")
	out := b.Output("out")
	k := b.VarDecl("k")
	i := b.VarDecl("i")
	fromParam := b.Intermediate("p")
	partial := b.Intermediate("arr", b.Num(2))
	unassigned := b.Intermediate("never")
	mixed := b.VarDecl("m")

	p := b.NewProgram(b.TemplateSpec{Name: "Main", Params: []string{"n"}, Body: b.Block(
		in, aux, out, k, i, fromParam, partial, unassigned, mixed,
		b.Constrain("aux", b.Num(42)),
		b.Constrain("out", b.Mul(b.Ref("in"), b.Ref("aux"))),
		b.Assign("k", b.Add(b.Ref("n"), b.Num(1))),
		b.Assign("i", b.Num(0)),
		b.While(b.Lt(b.Ref("i"), b.Ref("n")), b.Block(
			b.Assign("i", b.Add(b.Ref("i"), b.Num(1))),
		)),
		b.Constrain("p", b.Mul(b.Ref("k"), b.Ref("i"))),
		b.Constrain("arr", b.Num(1), b.Index(b.Num(0))),
		b.Assign("m", b.Num(3)),
		b.Assign("m", b.Ref("out")),
	)})
	tmpl, ok := p.Template("Main")
	require.True(t, ok)

	New().Fold(tmpl)

	tests := []struct {
		decl *ast.Declaration
		want bool
	}{
		{in, false},
		{aux, true},
		{out, false},
		{k, true},
		{i, true},
		{fromParam, true},
		{partial, false},
		{unassigned, false},
		{mixed, false},
	}
	for _, tt := range tests {
		t.Run(tt.decl.Name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.decl.IsConstant)
		})
	}
}

func TestFold_CallIsNotConstant(t *testing.T) {
	x := b.Intermediate("x")
	p := b.NewProgram(b.T("Main", b.Block(
		x,
		b.Constrain("x", b.Call("f", b.Num(1))),
	)))
	tmpl, _ := p.Template("Main")

	x.IsConstant = true
	New().Fold(tmpl)
	assert.False(t, x.IsConstant)
}

func TestFold_Idempotent(t *testing.T) {
	x := b.Intermediate("x")
	p := b.NewProgram(b.T("Main", b.Block(x, b.Constrain("x", b.Neg(b.Num(1))))))
	tmpl, _ := p.Template("Main")

	f := New()
	f.Fold(tmpl)
	f.Fold(tmpl)
	assert.True(t, x.IsConstant)
}
