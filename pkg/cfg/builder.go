package cfg

import (
	"fmt"

	"github.com/l3aro/go-flowlint/pkg/ast"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// Build builds the CFG of the named template.
func Build(p *program.Program, templateName string) (*Graph, error) {
	t, ok := p.Template(templateName)
	if !ok {
		return nil, fmt.Errorf("template %q not found", templateName)
	}
	g := newGraph(p, templateName)
	g.ends = g.lower(t.Body, nil, EdgeTypeUnconditional)
	g.seal()
	return g, nil
}

// BuildStatement builds the CFG of a single statement, for instance a loop body.
func BuildStatement(p *program.Program, stmt ast.Statement) *Graph {
	g := newGraph(p, "")
	g.ends = g.lower(stmt, nil, EdgeTypeUnconditional)
	g.seal()
	return g
}

// lower adds stmt to the graph with preds as its current predecessors and
// returns the predecessors of whatever follows stmt. kind labels the edges
// leaving preds.
func (g *Graph) lower(stmt ast.Statement, preds []int64, kind EdgeType) []int64 {
	switch s := stmt.(type) {
	case nil:
		return preds
	case *ast.Block:
		return g.lowerSeq(s.Stmts, preds, kind)
	case *ast.InitializationBlock:
		return g.lowerSeq(s.Initializations, preds, kind)
	case *ast.IfThenElse:
		cond := g.addNode(s, RoleBranch)
		g.link(preds, cond, kind)
		thenExits := g.lower(s.IfCase, []int64{cond}, EdgeTypeTrue)
		var join []int64
		if s.ElseCase != nil {
			join = g.lower(s.ElseCase, []int64{cond}, EdgeTypeFalse)
		} else {
			// Falling through skips the condition node entirely.
			join = append(join, preds...)
		}
		return union(join, thenExits)
	case *ast.While:
		head := g.addNode(s, RoleLoopHead)
		g.link(preds, head, kind)
		bodyExits := g.lower(s.Stmt, []int64{head}, EdgeTypeTrue)
		exit := g.addNode(s, RoleLoopExit)
		g.link(bodyExits, exit, EdgeTypeUnconditional)
		g.addEdge(exit, head, EdgeTypeBackEdge)
		g.addEdge(head, exit, EdgeTypeFalse)
		return []int64{exit}
	default:
		// Declarations, substitutions and the statements that do not affect
		// control flow.
		id := g.addNode(s, RoleStatement)
		g.link(preds, id, kind)
		return []int64{id}
	}
}

func (g *Graph) lowerSeq(stmts []ast.Statement, preds []int64, kind EdgeType) []int64 {
	for _, s := range stmts {
		before := g.NodeCount()
		next := g.lower(s, preds, kind)
		if g.NodeCount() > before {
			kind = EdgeTypeUnconditional
		}
		preds = next
	}
	return preds
}

func (g *Graph) link(preds []int64, to int64, kind EdgeType) {
	for _, p := range preds {
		g.addEdge(p, to, kind)
	}
}

func union(a, b []int64) []int64 {
	seen := make(map[int64]bool, len(a)+len(b))
	out := make([]int64, 0, len(a)+len(b))
	for _, list := range [][]int64{a, b} {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
