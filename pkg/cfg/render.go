package cfg

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/l3aro/go-flowlint/pkg/ast"
)

// NodeInfo is the serializable form of a node.
type NodeInfo struct {
	ID     int64  `json:"id"`      // Node id, 0 is the entry
	Role   Role   `json:"role"`    // Why the node exists
	Kind   string `json:"kind"`    // Statement kind
	ElemID int    `json:"elem_id"` // Identity token of the statement
	Start  int    `json:"start"`   // Span start offset
	End    int    `json:"end"`     // Span end offset
	Label  string `json:"label"`   // Source text label
}

// EdgeInfo is the serializable form of an edge.
type EdgeInfo struct {
	SourceID int64    `json:"source_id"`
	TargetID int64    `json:"target_id"`
	EdgeType EdgeType `json:"edge_type"`
}

// Info is a serializable summary of a Graph.
type Info struct {
	Template             string     `json:"template"`
	Nodes                []NodeInfo `json:"nodes"`
	Edges                []EdgeInfo `json:"edges"`
	EntryID              int64      `json:"entry_id"`
	ExitIDs              []int64    `json:"exit_ids"`
	EndIDs               []int64    `json:"end_ids"`
	BackEdges            int        `json:"back_edges"`
	CyclomaticComplexity int        `json:"cyclomatic_complexity"` // E - N + 2
}

// Info summarises the graph.
func (g *Graph) Info() *Info {
	info := &Info{Template: g.Name, EntryID: 0, ExitIDs: g.Exits(), EndIDs: g.Ends()}
	for _, n := range g.nodes {
		m := n.Meta()
		info.Nodes = append(info.Nodes, NodeInfo{
			ID:     n.id,
			Role:   n.Role,
			Kind:   StatementKind(n.Stmt),
			ElemID: m.ElemID,
			Start:  m.Start,
			End:    m.End,
			Label:  g.Label(n.id),
		})
	}
	for _, e := range g.Edges() {
		kind := g.kinds[e]
		if kind == EdgeTypeBackEdge {
			info.BackEdges++
		}
		info.Edges = append(info.Edges, EdgeInfo{SourceID: e[0], TargetID: e[1], EdgeType: kind})
	}
	if len(g.nodes) > 0 {
		info.CyclomaticComplexity = len(info.Edges) - len(info.Nodes) + 2
	}
	return info
}

// Label renders a node the way it appears in the source: conditions for
// branches and loops, the statement text otherwise.
func (g *Graph) Label(id int64) string {
	n := g.Node(id)
	if n == nil {
		return ""
	}
	text := func(m ast.Meta) string {
		if g.program == nil {
			return ""
		}
		return oneLine(g.program.SourceText(m))
	}
	switch s := n.Stmt.(type) {
	case *ast.IfThenElse:
		return fmt.Sprintf("If (%s)", text(*s.Cond.GetMeta()))
	case *ast.While:
		if n.Role == RoleLoopExit {
			return fmt.Sprintf("EndWhile (%s)", text(*s.Cond.GetMeta()))
		}
		return fmt.Sprintf("While (%s)", text(*s.Cond.GetMeta()))
	}
	if t := text(n.Meta()); t != "" {
		return t
	}
	return StatementKind(n.Stmt)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StatementKind names the kind of a statement.
func StatementKind(s ast.Statement) string {
	switch s.(type) {
	case *ast.Declaration:
		return "declaration"
	case *ast.Substitution:
		return "substitution"
	case *ast.Block:
		return "block"
	case *ast.InitializationBlock:
		return "initialization_block"
	case *ast.IfThenElse:
		return "if_then_else"
	case *ast.While:
		return "while"
	case *ast.CallStmt:
		return "call"
	case *ast.LogCall:
		return "log"
	case *ast.Assert:
		return "assert"
	case *ast.Return:
		return "return"
	case *ast.ConstraintEquality:
		return "constraint_equality"
	case *ast.MultSubstitution:
		return "mult_substitution"
	case *ast.UnderscoreSubstitution:
		return "underscore_substitution"
	}
	return "unknown"
}

type dotNode struct {
	id    int64
	label string
}

func (n dotNode) ID() int64 { return n.id }

func (n dotNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: strconv.Quote(n.label)}}
}

type dotEdge struct {
	from, to graph.Node
	kind     EdgeType
}

func (e dotEdge) From() graph.Node         { return e.from }
func (e dotEdge) To() graph.Node           { return e.to }
func (e dotEdge) ReversedEdge() graph.Edge { return dotEdge{from: e.to, to: e.from, kind: e.kind} }

func (e dotEdge) Attributes() []encoding.Attribute {
	switch e.kind {
	case EdgeTypeBackEdge:
		return []encoding.Attribute{{Key: "style", Value: "dashed"}}
	case EdgeTypeTrue, EdgeTypeFalse:
		return []encoding.Attribute{{Key: "label", Value: string(e.kind)}}
	}
	return nil
}

// DOT renders the graph in Graphviz format.
func (g *Graph) DOT() ([]byte, error) {
	out := simple.NewDirectedGraph()
	nodes := make([]dotNode, len(g.nodes))
	for i, n := range g.nodes {
		nodes[i] = dotNode{id: n.id, label: g.Label(n.id)}
		out.AddNode(nodes[i])
	}
	for _, e := range g.Edges() {
		out.SetEdge(dotEdge{from: nodes[e[0]], to: nodes[e[1]], kind: g.kinds[e]})
	}
	name := g.Name
	if name == "" {
		name = "statement"
	}
	data, err := dot.Marshal(out, name, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling DOT: %w", err)
	}
	return data, nil
}
