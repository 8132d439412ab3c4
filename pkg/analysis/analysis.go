// Package analysis runs every flow-sensitive check and AST linter over a
// program and gathers the findings into one report.
package analysis

import (
	"fmt"

	"github.com/l3aro/go-flowlint/internal/config"
	"github.com/l3aro/go-flowlint/internal/log"
	"github.com/l3aro/go-flowlint/pkg/ast"
	"github.com/l3aro/go-flowlint/pkg/cache"
	"github.com/l3aro/go-flowlint/pkg/cfg"
	"github.com/l3aro/go-flowlint/pkg/constfold"
	"github.com/l3aro/go-flowlint/pkg/lint"
	"github.com/l3aro/go-flowlint/pkg/pathcheck"
	"github.com/l3aro/go-flowlint/pkg/program"
	"github.com/l3aro/go-flowlint/pkg/termination"
)

// Options selects the analyses to run.
type Options struct {
	AnonymousComponent bool
	ConstantSignal     bool
	Loops              bool

	Assignment            bool
	Constraints           bool
	QualifyConstraintKeys bool
	// Variables extends the assignment check to local variables.
	Variables bool

	// GraphCacheSize bounds the memoised template graphs; 0 means unlimited.
	GraphCacheSize int
	// Folder marks constant declarations for the constant signal linter.
	// Defaults to constfold.
	Folder lint.ConstantFolder
	// ReportCache, when set, returns earlier reports for programs with the
	// same digest.
	ReportCache *cache.LRU[Report]
	Logger      log.Logger
}

// DefaultOptions enables every analysis except the variable check.
func DefaultOptions() Options {
	return Options{
		AnonymousComponent:    true,
		ConstantSignal:        true,
		Loops:                 true,
		Assignment:            true,
		Constraints:           true,
		QualifyConstraintKeys: true,
	}
}

// OptionsFromConfig maps the configuration file onto Options.
func OptionsFromConfig(c *config.Config) Options {
	return Options{
		AnonymousComponent:    c.Linters.AnonymousComponent,
		ConstantSignal:        c.Linters.ConstantSignal,
		Loops:                 c.Linters.Loops,
		Assignment:            c.Checks.Assignment,
		Constraints:           c.Checks.Constraints,
		QualifyConstraintKeys: c.Checks.QualifyConstraintKeys,
		Variables:             c.Checks.Variables,
	}
}

// key identifies the settings that change the findings.
func (o Options) key() string {
	return fmt.Sprintf("anon=%t const=%t loops=%t assign=%t constraints=%t qualified=%t vars=%t",
		o.AnonymousComponent, o.ConstantSignal, o.Loops,
		o.Assignment, o.Constraints, o.QualifyConstraintKeys, o.Variables)
}

// TemplateSummary describes the graph of one template.
type TemplateSummary struct {
	Name  string `json:"name" msgpack:"name"`
	Nodes int    `json:"nodes" msgpack:"nodes"`
	Edges int    `json:"edges" msgpack:"edges"`
	Paths int    `json:"paths" msgpack:"paths"`
}

// Report is the outcome of one run.
type Report struct {
	Digest    string            `json:"digest,omitempty" msgpack:"digest,omitempty"`
	Lints     []lint.Lint       `json:"lints" msgpack:"lints"`
	Templates []TemplateSummary `json:"templates" msgpack:"templates"`
	// Paths is the number of entry to end paths over all templates.
	Paths int `json:"paths" msgpack:"paths"`
	// Loops is the number of canonical for-loops analysed.
	Loops  int  `json:"loops" msgpack:"loops"`
	Cached bool `json:"cached" msgpack:"-"`
}

// HasErrors reports whether any lint is an error.
func (r *Report) HasErrors() bool {
	for _, l := range r.Lints {
		if l.Level == lint.LevelError {
			return true
		}
	}
	return false
}

// Analyzer runs the configured analyses.
type Analyzer struct {
	opts Options
	log  log.Logger
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	if opts.Folder == nil {
		opts.Folder = constfold.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop{}
	}
	return &Analyzer{opts: opts, log: logger}
}

// Run analyses p. Lints are sorted by location.
//
// Internal invariant violations, such as an assignment to an undeclared
// name, panic with *cfg.InvariantError.
func (a *Analyzer) Run(p *program.Program) (*Report, error) {
	cacheKey := ""
	if a.opts.ReportCache != nil && p.Digest != "" {
		cacheKey = p.Digest + "|" + a.opts.key()
		if r, ok := a.opts.ReportCache.Get(cacheKey); ok {
			a.log.Debug("report cache hit", "digest", p.Digest)
			r.Cached = true
			return &r, nil
		}
	}

	report := &Report{Digest: p.Digest}
	report.Lints = append(report.Lints, a.static(p, report)...)

	memo := cfg.NewMemo(p, a.opts.GraphCacheSize)
	var tracker *pathcheck.Tracker
	if a.opts.Constraints {
		tracker = pathcheck.NewTracker(p,
			pathcheck.WithQualifiedKeys(a.opts.QualifyConstraintKeys),
			pathcheck.WithMemo(memo))
	}

	var found pathLints
	for _, name := range p.TemplateNames() {
		g, err := memo.Graph(name)
		if err != nil {
			return nil, fmt.Errorf("building graph of %s: %w", name, err)
		}
		summary := TemplateSummary{Name: name, Nodes: g.NodeCount(), Edges: g.EdgeCount()}
		for _, end := range g.Ends() {
			summary.Paths += len(cfg.AllSimplePaths(g, g.Entry(), end))
		}
		report.Templates = append(report.Templates, summary)
		report.Paths += summary.Paths

		if a.opts.Assignment {
			a.checkAssignments(g, &found)
		}
		if tracker != nil {
			if err := a.trackConstraints(g, tracker, &found); err != nil {
				return nil, err
			}
		}
		a.log.Debug("analysed template", "template", name, "nodes", summary.Nodes, "paths", summary.Paths)
	}

	report.Lints = append(report.Lints, found.lints()...)
	lint.Sort(report.Lints)
	if cacheKey != "" {
		a.opts.ReportCache.Set(cacheKey, *report)
	}
	return report, nil
}

// Lint runs the AST linters only.
func (a *Analyzer) Lint(p *program.Program) []lint.Lint {
	lints := a.static(p, &Report{})
	lint.Sort(lints)
	return lints
}

func (a *Analyzer) static(p *program.Program, report *Report) []lint.Lint {
	sl := lint.New(p)
	if a.opts.AnonymousComponent {
		sl.Register(lint.NewAnonComponentLinter())
	}
	if a.opts.ConstantSignal {
		sl.Register(lint.NewConstantSignalLinter(a.opts.Folder))
	}
	var loops *termination.LoopLinter
	if a.opts.Loops {
		loops = termination.NewLoopLinter()
		sl.Register(loops)
	}
	lints := sl.Lint()
	if loops != nil {
		report.Loops = len(loops.Loops())
	}
	return lints
}

// checked reports whether d is subject to the assignment check: scalar
// non-input signals, and scalar variables when enabled.
func (a *Analyzer) checked(d *ast.Declaration) bool {
	if len(d.Dimensions) > 0 || d.XType.IsInput() {
		return false
	}
	return d.XType.IsSignal() || (a.opts.Variables && d.XType.IsVar())
}

// checkAssignments reports substitutions that are not the only assignment on
// some path, then symbols left unassigned or reassigned at the end of the
// template.
func (a *Analyzer) checkAssignments(g *cfg.Graph, found *pathLints) {
	decls := make(map[string]*ast.Declaration)
	var order []string
	for _, n := range g.Nodes() {
		if d, ok := n.Stmt.(*ast.Declaration); ok && a.checked(d) {
			if _, dup := decls[d.Name]; !dup {
				order = append(order, d.Name)
			}
			decls[d.Name] = d
		}
	}

	for _, n := range g.Nodes() {
		s, ok := n.Stmt.(*ast.Substitution)
		if !ok || len(s.Access) > 0 || decls[s.Var] == nil {
			continue
		}
		if !pathcheck.SingleAssignment(g, n.ID()) {
			found.atSubstitution(reassigned(g.Name, decls[s.Var], s))
		}
	}

	for _, end := range g.Ends() {
		for _, name := range order {
			found.atEnd(pathcheck.CheckNodeAssign(g, end, name))
		}
	}
}

func reassigned(template string, d *ast.Declaration, s *ast.Substitution) *pathcheck.PathLint {
	noun := "Signal"
	if d.XType.IsVar() {
		noun = "Var"
	}
	return &pathcheck.PathLint{
		Kind:     pathcheck.KindMultiplyAssigned,
		Name:     s.Var,
		XType:    d.XType,
		Template: template,
		Location: s.Meta,
		Query:    s.Meta,
		Message:  fmt.Sprintf("%s `%s` was already assigned a value and multiple assignments are not allowed.", noun, s.Var),
	}
}

// trackConstraints records every scalar `<==` of the template. Statements
// inside a loop are recorded twice to stand for a second iteration.
func (a *Analyzer) trackConstraints(g *cfg.Graph, tracker *pathcheck.Tracker, found *pathLints) error {
	for _, n := range g.Nodes() {
		s, ok := n.Stmt.(*ast.Substitution)
		if !ok || s.Op != ast.AssignConstraintSignal || len(s.Access) > 0 {
			continue
		}
		times := 1
		if cfg.OnCycle(g, n.ID()) {
			times = 2
		}
		for i := 0; i < times; i++ {
			l, err := tracker.RecordConstraint(g.Name, s.Meta, s.Var)
			if err != nil {
				return fmt.Errorf("tracking constraints of %s: %w", g.Name, err)
			}
			found.atSubstitution(l)
		}
	}
	return nil
}

// pathLints collects assignment violations of a run. Violations located at a
// substitution are kept once per statement. Violations found at a template
// end are kept once per symbol, and a multiple assignment found there is
// dropped when a substitution of the same symbol was already reported.
type pathLints struct {
	subst []*pathcheck.PathLint
	ends  []*pathcheck.PathLint
}

func (f *pathLints) atSubstitution(l *pathcheck.PathLint) {
	if l != nil {
		f.subst = append(f.subst, l)
	}
}

func (f *pathLints) atEnd(l *pathcheck.PathLint) {
	if l != nil {
		f.ends = append(f.ends, l)
	}
}

func (f *pathLints) lints() []lint.Lint {
	var out []lint.Lint
	seen := make(map[string]bool)
	reported := make(map[string]bool)
	for _, l := range f.subst {
		k := fmt.Sprintf("%s.%s/%s@%d", l.Template, l.Name, l.Kind, l.Location.ElemID)
		if seen[k] {
			continue
		}
		seen[k] = true
		reported[fmt.Sprintf("%s.%s/%s", l.Template, l.Name, l.Kind)] = true
		out = append(out, l.Lint())
	}
	for _, l := range f.ends {
		k := fmt.Sprintf("%s.%s/%s", l.Template, l.Name, l.Kind)
		if seen[k] || reported[k] {
			continue
		}
		seen[k] = true
		out = append(out, l.Lint())
	}
	return out
}
