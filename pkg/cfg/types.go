// Package cfg builds statement-level Control Flow Graphs (CFGs) of circuit
// templates and enumerates the simple paths through them.
package cfg

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/l3aro/go-flowlint/pkg/ast"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// Role describes why a node exists in the graph.
type Role string

const (
	RoleStatement Role = "statement" // Declaration, substitution or other leaf
	RoleBranch    Role = "branch"    // Condition of an if/else
	RoleLoopHead  Role = "loop_head" // While statement, entering the loop
	RoleLoopExit  Role = "loop_exit" // Same while statement, leaving the loop
)

// EdgeType represents the type of a CFG edge.
type EdgeType string

const (
	EdgeTypeUnconditional EdgeType = "unconditional" // Sequential flow
	EdgeTypeTrue          EdgeType = "true"          // Into the then-branch or loop body
	EdgeTypeFalse         EdgeType = "false"         // Into the else-branch, or loop head to loop exit
	EdgeTypeBackEdge      EdgeType = "back_edge"     // Loop exit back to loop head
)

// Node is a CFG vertex wrapping one statement occurrence.
// A while statement is wrapped twice, once as loop head and once as loop exit.
type Node struct {
	id   int64
	Stmt ast.Statement
	Role Role
}

// ID implements graph.Node. IDs are dense, starting at 0 for the entry.
func (n *Node) ID() int64 { return n.id }

// Meta returns the span and identity of the wrapped statement.
func (n *Node) Meta() ast.Meta { return *n.Stmt.GetMeta() }

// Graph is the control flow graph of a template body or of a single statement.
// It is immutable once built and safe to share between analyses.
type Graph struct {
	// Name is the template name, empty for statement graphs.
	Name string

	program *program.Program
	g       *simple.DirectedGraph
	nodes   []*Node
	kinds   map[[2]int64]EdgeType
	succ    [][]int64
	ends    []int64
}

func newGraph(p *program.Program, name string) *Graph {
	return &Graph{
		Name:    name,
		program: p,
		g:       simple.NewDirectedGraph(),
		kinds:   make(map[[2]int64]EdgeType),
	}
}

func (g *Graph) addNode(stmt ast.Statement, role Role) int64 {
	n := &Node{id: int64(len(g.nodes)), Stmt: stmt, Role: role}
	g.nodes = append(g.nodes, n)
	g.g.AddNode(n)
	return n.id
}

func (g *Graph) addEdge(from, to int64, kind EdgeType) {
	g.g.SetEdge(g.g.NewEdge(g.nodes[from], g.nodes[to]))
	g.kinds[[2]int64{from, to}] = kind
}

// seal computes the ordered successor lists once construction is done.
func (g *Graph) seal() {
	g.succ = make([][]int64, len(g.nodes))
	for _, n := range g.nodes {
		targets := graph.NodesOf(g.g.From(n.id))
		ids := make([]int64, len(targets))
		for i, t := range targets {
			ids[i] = t.ID()
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		g.succ[n.id] = ids
	}
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id int64) *Node {
	if id < 0 || id >= int64(len(g.nodes)) {
		return nil
	}
	return g.nodes[id]
}

// Nodes returns all nodes ordered by id.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Entry returns the entry node id. The graph must not be empty.
func (g *Graph) Entry() int64 { return 0 }

// Last returns the id of the most recently created node, -1 for an empty graph.
func (g *Graph) Last() int64 { return int64(len(g.nodes)) - 1 }

// Successors returns the successors of id in ascending id order.
func (g *Graph) Successors(id int64) []int64 {
	if id < 0 || id >= int64(len(g.succ)) {
		return nil
	}
	return g.succ[id]
}

// HasEdge reports whether the edge from -> to exists.
func (g *Graph) HasEdge(from, to int64) bool {
	_, ok := g.kinds[[2]int64{from, to}]
	return ok
}

// EdgeType returns the type of the edge from -> to.
func (g *Graph) EdgeType(from, to int64) (EdgeType, bool) {
	k, ok := g.kinds[[2]int64{from, to}]
	return k, ok
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.kinds) }

// Edges returns every edge as a (from, to) pair ordered by source then target.
func (g *Graph) Edges() [][2]int64 {
	var out [][2]int64
	for _, n := range g.nodes {
		for _, s := range g.succ[n.id] {
			out = append(out, [2]int64{n.id, s})
		}
	}
	return out
}

// Exits returns the nodes without successors.
func (g *Graph) Exits() []int64 {
	var out []int64
	for _, n := range g.nodes {
		if len(g.succ[n.id]) == 0 {
			out = append(out, n.id)
		}
	}
	return out
}

// Ends returns the nodes control leaves the lowered statement from, in the
// order the builder produced them. Unlike Exits it includes nodes that fall
// through a trailing conditional and so still have successors.
func (g *Graph) Ends() []int64 { return g.ends }

// Program returns the program the graph was built from.
func (g *Graph) Program() *program.Program { return g.program }

// InvariantError reports a state the analyses assume cannot happen for a
// program that passed type checking. It is raised with panic.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("cfg invariant violated in %s: %s", e.Op, e.Detail)
}

// Invariantf panics with an *InvariantError.
func Invariantf(op, format string, args ...interface{}) {
	panic(&InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)})
}
