package cfg

import "github.com/l3aro/go-flowlint/pkg/ast"

// FindByElemID returns the first node whose statement carries the identity
// token elemID.
func (g *Graph) FindByElemID(elemID int) (int64, bool) {
	for _, n := range g.nodes {
		if n.Stmt.GetMeta().ElemID == elemID {
			return n.id, true
		}
	}
	return -1, false
}

// NodeByElemID is FindByElemID for callers that hold an identity token taken
// from the same template. A miss means the graph and the AST disagree.
func (g *Graph) NodeByElemID(elemID int) int64 {
	id, ok := g.FindByElemID(elemID)
	if !ok {
		Invariantf("NodeByElemID", "no node for element %d in %q", elemID, g.Name)
	}
	return id
}

// FindEnclosing returns the node whose statement span encloses m.
// The location may belong to an expression nested in a statement, so the
// innermost enclosing node wins; the loop head wins over its loop exit.
func (g *Graph) FindEnclosing(m ast.Meta) (int64, bool) {
	best := int64(-1)
	bestLen := 0
	for _, n := range g.nodes {
		nm := n.Stmt.GetMeta()
		if !nm.Contains(m) {
			continue
		}
		if best < 0 || nm.Len() < bestLen {
			best, bestLen = n.id, nm.Len()
		}
	}
	return best, best >= 0
}

// NodeEnclosing is FindEnclosing for locations known to lie in the template.
func (g *Graph) NodeEnclosing(m ast.Meta) int64 {
	id, ok := g.FindEnclosing(m)
	if !ok {
		Invariantf("NodeEnclosing", "no node encloses %s in %q", m, g.Name)
	}
	return id
}
