package cfg

import (
	"github.com/l3aro/go-flowlint/pkg/cache"
	"github.com/l3aro/go-flowlint/pkg/program"
)

// Memo builds template graphs on first use and keeps them for later queries.
// Graphs are immutable, so sharing them between analyses is safe.
type Memo struct {
	program *program.Program
	graphs  *cache.LRU[*Graph]
}

// NewMemo returns a Memo over p holding at most maxSize graphs; 0 means
// unlimited.
func NewMemo(p *program.Program, maxSize int) *Memo {
	return &Memo{program: p, graphs: cache.New[*Graph](cache.Options{MaxSize: maxSize})}
}

// Program returns the program graphs are built from.
func (m *Memo) Program() *program.Program { return m.program }

// Graph returns the graph of the named template.
func (m *Memo) Graph(template string) (*Graph, error) {
	return m.graphs.GetOrCompute(template, func() (*Graph, error) {
		return Build(m.program, template)
	})
}

// Stats reports how often graphs were reused.
func (m *Memo) Stats() cache.Stats { return m.graphs.Stats() }
