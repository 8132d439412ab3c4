// Package program holds a type-checked circuit program: its source files and
// its templates, in declaration order.
package program

import (
	"github.com/l3aro/go-flowlint/pkg/ast"
)

// File is one source file of the program.
type File struct {
	ID      int    `json:"id"`      // File id referenced by ast.Meta.FileID
	Path    string `json:"path"`    // Path as given to the compiler
	Content string `json:"content"` // Full source text
}

// Template is a circuit template. Inputs and Outputs list the declared input
// and output signals in declaration order.
type Template struct {
	Name    string
	Params  []string
	Inputs  []string
	Outputs []string
	Body    ast.Statement
}

// Program is the archive of a compiled program.
type Program struct {
	MainFile int
	// Digest identifies the document the program was loaded from; empty for
	// programs built in memory.
	Digest string

	files     map[int]File
	templates []*Template
	byName    map[string]*Template
}

// New returns an empty program.
func New() *Program {
	return &Program{
		files:  make(map[int]File),
		byName: make(map[string]*Template),
	}
}

// AddFile registers a source file, replacing any file with the same id.
func (p *Program) AddFile(f File) {
	p.files[f.ID] = f
}

// File returns the file with the given id.
func (p *Program) File(id int) (File, bool) {
	f, ok := p.files[id]
	return f, ok
}

// AddTemplate registers t. When t carries neither inputs nor outputs they are
// derived from the declarations in its body.
func (p *Program) AddTemplate(t *Template) {
	if t.Inputs == nil && t.Outputs == nil {
		t.Inputs, t.Outputs = DeclaredIO(t.Body)
	}
	if _, exists := p.byName[t.Name]; !exists {
		p.templates = append(p.templates, t)
	} else {
		for i, old := range p.templates {
			if old.Name == t.Name {
				p.templates[i] = t
			}
		}
	}
	p.byName[t.Name] = t
}

// Template looks a template up by name.
func (p *Program) Template(name string) (*Template, bool) {
	t, ok := p.byName[name]
	return t, ok
}

// Templates returns all templates in the order they were added.
func (p *Program) Templates() []*Template {
	return p.templates
}

// TemplateNames returns the template names in the order they were added.
func (p *Program) TemplateNames() []string {
	names := make([]string, len(p.templates))
	for i, t := range p.templates {
		names[i] = t.Name
	}
	return names
}

// SourceText returns the literal source text covered by m, or "" when the
// span does not lie inside a known file.
func (p *Program) SourceText(m ast.Meta) string {
	f, ok := p.files[m.FileID]
	if !ok || m.Start < 0 || m.End > len(f.Content) || m.Start > m.End {
		return ""
	}
	return f.Content[m.Start:m.End]
}

// DeclaredIO collects input and output signal names declared in body.
func DeclaredIO(body ast.Statement) (inputs, outputs []string) {
	inputs, outputs = []string{}, []string{}
	ast.Walk(body, func(s ast.Statement) bool {
		d, ok := s.(*ast.Declaration)
		if !ok || !d.XType.IsSignal() {
			return true
		}
		switch d.XType.Signal {
		case ast.SignalInput:
			inputs = append(inputs, d.Name)
		case ast.SignalOutput:
			outputs = append(outputs, d.Name)
		}
		return true
	})
	return inputs, outputs
}
