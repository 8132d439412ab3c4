package pathcheck

import (
	"fmt"

	"github.com/l3aro/go-flowlint/pkg/ast"
	"github.com/l3aro/go-flowlint/pkg/cfg"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// Tracker remembers where each signal has been constrained during an analysis
// session and reports a second constraint that can execute after, or before,
// an earlier one.
//
// A Tracker is not safe for concurrent use.
type Tracker struct {
	graphs    *cfg.Memo
	qualified bool
	history   map[string][]ast.Meta
	origin    map[int]string
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithQualifiedKeys controls whether history is kept per template (the
// default) or per bare symbol name. With bare names, same-named signals of
// different templates share one history; a location recorded in another
// template has no node in the current graph and is not compared.
func WithQualifiedKeys(qualified bool) Option {
	return func(t *Tracker) { t.qualified = qualified }
}

// WithMemo shares an existing graph memo.
func WithMemo(m *cfg.Memo) Option {
	return func(t *Tracker) { t.graphs = m }
}

// NewTracker creates a Tracker for p.
func NewTracker(p *program.Program, opts ...Option) *Tracker {
	t := &Tracker{
		qualified: true,
		history:   make(map[string][]ast.Meta),
		origin:    make(map[int]string),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.graphs == nil {
		t.graphs = cfg.NewMemo(p, 0)
	}
	return t
}

func (t *Tracker) key(template, symbol string) string {
	if t.qualified {
		return template + "." + symbol
	}
	return symbol
}

// RecordConstraint records that symbol is constrained at m in template. It
// returns a lint when an earlier constraint of the same symbol lies on a path
// to or from m, or is the same statement revisited by a loop; the location
// is then not recorded.
func (t *Tracker) RecordConstraint(template string, m ast.Meta, symbol string) (*PathLint, error) {
	g, err := t.graphs.Graph(template)
	if err != nil {
		return nil, err
	}
	key := t.key(template, symbol)
	cur := g.NodeByElemID(m.ElemID)
	for _, prev := range t.history[key] {
		if !t.qualified && t.origin[prev.ElemID] != template {
			continue
		}
		start := g.NodeByElemID(prev.ElemID)
		if start == cur || cfg.PathExists(g, start, cur) || cfg.PathExists(g, cur, start) {
			return &PathLint{
				Kind:     KindMultiplyAssigned,
				Name:     symbol,
				XType:    ast.Signal(ast.SignalOutput),
				Template: template,
				Location: m,
				Query:    m,
				Message:  fmt.Sprintf("Signal `%s` is assigned to multiple times", symbol),
			}, nil
		}
	}
	t.history[key] = append(t.history[key], m)
	t.origin[m.ElemID] = template
	return nil, nil
}

// Locations returns the recorded locations of symbol in template.
func (t *Tracker) Locations(template, symbol string) []ast.Meta {
	return t.history[t.key(template, symbol)]
}

// Reset forgets all recorded locations. Memoised graphs are kept.
func (t *Tracker) Reset() {
	t.history = make(map[string][]ast.Meta)
	t.origin = make(map[int]string)
}
