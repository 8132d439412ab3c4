package cfg

import (
	"gonum.org/v1/gonum/graph/topo"

	"github.com/l3aro/go-flowlint/pkg/ast"
)

// Path is a node-distinct sequence of node ids.
type Path []int64

// AllSimplePaths returns every simple path from start to end, in depth-first
// order over successors sorted by id. A path never continues past end.
// When start == end the result is the trivial path [start].
//
// The number of paths is exponential in the number of independent branches;
// no depth bound is applied.
func AllSimplePaths(g *Graph, start, end int64) []Path {
	if g.Node(start) == nil || g.Node(end) == nil {
		return nil
	}
	if start == end {
		return []Path{{start}}
	}

	var paths []Path
	onPath := make([]bool, g.NodeCount())
	stack := Path{start}
	onPath[start] = true

	var dfs func(n int64)
	dfs = func(n int64) {
		for _, s := range g.Successors(n) {
			if s == end {
				p := make(Path, len(stack)+1)
				copy(p, stack)
				p[len(stack)] = end
				paths = append(paths, p)
				continue
			}
			if onPath[s] {
				continue
			}
			onPath[s] = true
			stack = append(stack, s)
			dfs(s)
			stack = stack[:len(stack)-1]
			onPath[s] = false
		}
	}
	dfs(start)
	return paths
}

// PathExists reports whether to is reachable from from. A node always
// reaches itself.
func PathExists(g *Graph, from, to int64) bool {
	a, b := g.Node(from), g.Node(to)
	if a == nil || b == nil {
		return false
	}
	if from == to {
		return true
	}
	return topo.PathExistsIn(g.g, a, b)
}

// OnCycle reports whether id can reach itself through at least one edge,
// i.e. whether it lies inside a loop.
func OnCycle(g *Graph, id int64) bool {
	for _, s := range g.Successors(id) {
		if PathExists(g, s, id) {
			return true
		}
	}
	return false
}

// Statements returns the statements along p.
func (g *Graph) Statements(p Path) []ast.Statement {
	out := make([]ast.Statement, len(p))
	for i, id := range p {
		out[i] = g.nodes[id].Stmt
	}
	return out
}

// SubstitutionsTo returns the substitutions along p whose target is name.
func (g *Graph) SubstitutionsTo(p Path, name string) []*ast.Substitution {
	var out []*ast.Substitution
	for _, id := range p {
		if s, ok := g.nodes[id].Stmt.(*ast.Substitution); ok && s.Var == name {
			out = append(out, s)
		}
	}
	return out
}
