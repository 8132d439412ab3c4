package program

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/l3aro/go-flowlint/pkg/ast"
)

// Statement and expression kinds used in documents.
const (
	KindDeclaration            = "declaration"
	KindSubstitution           = "substitution"
	KindBlock                  = "block"
	KindInitializationBlock    = "initialization_block"
	KindIfThenElse             = "if_then_else"
	KindWhile                  = "while"
	KindCall                   = "call"
	KindLog                    = "log"
	KindAssert                 = "assert"
	KindReturn                 = "return"
	KindConstraintEquality     = "constraint_equality"
	KindMultSubstitution       = "mult_substitution"
	KindUnderscoreSubstitution = "underscore_substitution"

	KindNumber       = "number"
	KindVariable     = "variable"
	KindInfix        = "infix"
	KindPrefix       = "prefix"
	KindArrayInLine  = "array"
	KindInlineSwitch = "switch"
)

// converter turns documents into AST nodes, handing out identity tokens to
// nodes that do not carry one. Tokens given in the document must be unique.
type converter struct {
	nextID int
	seen   map[int]ast.Meta
}

// Program converts the document into a Program.
func (d *Document) Program() (*Program, error) {
	c := &converter{nextID: d.maxElemID() + 1, seen: make(map[int]ast.Meta)}
	p := New()
	p.MainFile = d.MainFile
	for _, f := range d.Files {
		p.AddFile(File{ID: f.ID, Path: f.Path, Content: f.Content})
	}
	for _, td := range d.Templates {
		if td.Body == nil {
			return nil, fmt.Errorf("template %s: missing body", td.Name)
		}
		body, err := c.stmt(td.Body)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", td.Name, err)
		}
		p.AddTemplate(&Template{
			Name:    td.Name,
			Params:  td.Params,
			Inputs:  td.Inputs,
			Outputs: td.Outputs,
			Body:    body,
		})
	}
	return p, nil
}

func (c *converter) meta(s SpanDoc) (ast.Meta, error) {
	m := ast.Meta{ElemID: s.ElemID, Start: s.Start, End: s.End, FileID: s.FileID}
	if m.ElemID == 0 {
		m.ElemID = c.nextID
		c.nextID++
	} else if prev, ok := c.seen[m.ElemID]; ok {
		return m, fmt.Errorf("duplicate elem_id %d at %s (first used at %s)", m.ElemID, m, prev)
	}
	c.seen[m.ElemID] = m
	if s.Of != "" {
		of := s.Of
		m.ComponentInference = &of
	}
	return m, nil
}

func (c *converter) stmts(docs []*StmtDoc) ([]ast.Statement, error) {
	out := make([]ast.Statement, 0, len(docs))
	for _, d := range docs {
		s, err := c.stmt(d)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (c *converter) stmt(d *StmtDoc) (ast.Statement, error) {
	if d == nil {
		return nil, fmt.Errorf("missing statement")
	}
	m, err := c.meta(d.SpanDoc)
	if err != nil {
		return nil, err
	}
	switch d.Kind {
	case KindDeclaration:
		t, err := varType(d.Type)
		if err != nil {
			return nil, fmt.Errorf("declaration %s at %s: %w", d.Name, m, err)
		}
		dims, err := c.exprs(d.Dimensions)
		if err != nil {
			return nil, err
		}
		return &ast.Declaration{Meta: m, XType: t, Name: d.Name, Dimensions: dims}, nil
	case KindSubstitution:
		acc, err := c.access(d.Access)
		if err != nil {
			return nil, err
		}
		rhe, err := c.expr(d.Rhe)
		if err != nil {
			return nil, fmt.Errorf("substitution to %s at %s: %w", d.Name, m, err)
		}
		return &ast.Substitution{Meta: m, Var: d.Name, Access: acc, Op: ast.AssignOp(d.Op), Rhe: rhe}, nil
	case KindBlock:
		stmts, err := c.stmts(d.Stmts)
		if err != nil {
			return nil, err
		}
		return &ast.Block{Meta: m, Stmts: stmts}, nil
	case KindInitializationBlock:
		stmts, err := c.stmts(d.Stmts)
		if err != nil {
			return nil, err
		}
		var t ast.VariableType
		if d.Type != nil {
			if t, err = varType(d.Type); err != nil {
				return nil, err
			}
		}
		return &ast.InitializationBlock{Meta: m, XType: t, Initializations: stmts}, nil
	case KindIfThenElse:
		cond, err := c.expr(d.Cond)
		if err != nil {
			return nil, fmt.Errorf("if at %s: %w", m, err)
		}
		then, err := c.stmt(d.Then)
		if err != nil {
			return nil, fmt.Errorf("if at %s: %w", m, err)
		}
		s := &ast.IfThenElse{Meta: m, Cond: cond, IfCase: then}
		if d.Else != nil {
			if s.ElseCase, err = c.stmt(d.Else); err != nil {
				return nil, err
			}
		}
		return s, nil
	case KindWhile:
		cond, err := c.expr(d.Cond)
		if err != nil {
			return nil, fmt.Errorf("while at %s: %w", m, err)
		}
		body, err := c.stmt(d.Body)
		if err != nil {
			return nil, fmt.Errorf("while at %s: %w", m, err)
		}
		return &ast.While{Meta: m, Cond: cond, Stmt: body}, nil
	case KindCall:
		args, err := c.exprs(d.Args)
		if err != nil {
			return nil, err
		}
		return &ast.CallStmt{Meta: m, Call: &ast.Call{Meta: m, ID: d.Name, Args: args}}, nil
	case KindLog:
		args, err := c.exprs(d.Args)
		if err != nil {
			return nil, err
		}
		return &ast.LogCall{Meta: m, Args: args}, nil
	case KindAssert:
		arg, err := c.expr(d.Rhe)
		if err != nil {
			return nil, fmt.Errorf("assert at %s: %w", m, err)
		}
		return &ast.Assert{Meta: m, Arg: arg}, nil
	case KindReturn:
		v, err := c.expr(d.Rhe)
		if err != nil {
			return nil, fmt.Errorf("return at %s: %w", m, err)
		}
		return &ast.Return{Meta: m, Value: v}, nil
	case KindConstraintEquality, KindMultSubstitution:
		lhe, err := c.expr(d.Lhe)
		if err != nil {
			return nil, fmt.Errorf("%s at %s: %w", d.Kind, m, err)
		}
		rhe, err := c.expr(d.Rhe)
		if err != nil {
			return nil, fmt.Errorf("%s at %s: %w", d.Kind, m, err)
		}
		if d.Kind == KindConstraintEquality {
			return &ast.ConstraintEquality{Meta: m, Lhe: lhe, Rhe: rhe}, nil
		}
		return &ast.MultSubstitution{Meta: m, Lhe: lhe, Op: ast.AssignOp(d.Op), Rhe: rhe}, nil
	case KindUnderscoreSubstitution:
		rhe, err := c.expr(d.Rhe)
		if err != nil {
			return nil, fmt.Errorf("underscore substitution at %s: %w", m, err)
		}
		return &ast.UnderscoreSubstitution{Meta: m, Op: ast.AssignOp(d.Op), Rhe: rhe}, nil
	}
	return nil, fmt.Errorf("unknown statement kind %q at %s", d.Kind, m)
}

func (c *converter) exprs(docs []*ExprDoc) ([]ast.Expression, error) {
	out := make([]ast.Expression, 0, len(docs))
	for _, d := range docs {
		e, err := c.expr(d)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *converter) expr(d *ExprDoc) (ast.Expression, error) {
	if d == nil {
		return nil, fmt.Errorf("missing expression")
	}
	m, err := c.meta(d.SpanDoc)
	if err != nil {
		return nil, err
	}
	switch d.Kind {
	case KindNumber:
		v, ok := new(big.Int).SetString(d.Value, 10)
		if !ok {
			return nil, fmt.Errorf("invalid number %q at %s", d.Value, m)
		}
		return &ast.Number{Meta: m, Value: v}, nil
	case KindVariable:
		acc, err := c.access(d.Access)
		if err != nil {
			return nil, err
		}
		return &ast.Variable{Meta: m, Name: d.Name, Access: acc}, nil
	case KindInfix:
		lhe, err := c.expr(d.Lhe)
		if err != nil {
			return nil, err
		}
		rhe, err := c.expr(d.Rhe)
		if err != nil {
			return nil, err
		}
		return &ast.InfixOp{Meta: m, Lhe: lhe, Op: ast.InfixOpcode(d.Op), Rhe: rhe}, nil
	case KindPrefix:
		rhe, err := c.expr(d.Rhe)
		if err != nil {
			return nil, err
		}
		return &ast.PrefixOp{Meta: m, Op: ast.PrefixOpcode(d.Op), Rhe: rhe}, nil
	case KindCall:
		args, err := c.exprs(d.Args)
		if err != nil {
			return nil, err
		}
		return &ast.Call{Meta: m, ID: d.Name, Args: args}, nil
	case KindArrayInLine:
		vals, err := c.exprs(d.Args)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayInLine{Meta: m, Values: vals}, nil
	case KindInlineSwitch:
		cond, err := c.expr(d.Cond)
		if err != nil {
			return nil, err
		}
		t, err := c.expr(d.True)
		if err != nil {
			return nil, err
		}
		f, err := c.expr(d.False)
		if err != nil {
			return nil, err
		}
		return &ast.InlineSwitch{Meta: m, Cond: cond, IfTrue: t, IfFalse: f}, nil
	}
	return nil, fmt.Errorf("unknown expression kind %q at %s", d.Kind, m)
}

func (c *converter) access(docs []AccessDoc) ([]ast.Access, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]ast.Access, 0, len(docs))
	for _, a := range docs {
		if a.Field != "" {
			out = append(out, ast.ComponentAccess{Name: a.Field})
			continue
		}
		idx, err := c.expr(a.Index)
		if err != nil {
			return nil, fmt.Errorf("array access: %w", err)
		}
		out = append(out, ast.ArrayAccess{Index: idx})
	}
	return out, nil
}

func varType(d *TypeDoc) (ast.VariableType, error) {
	if d == nil {
		return ast.VariableType{}, fmt.Errorf("missing type")
	}
	t := ast.VariableType{Kind: ast.VariableKind(d.Kind), Signal: ast.SignalType(d.Signal)}
	switch t.Kind {
	case ast.KindVar, ast.KindComponent, ast.KindAnonymousComponent, ast.KindBus:
		return t, nil
	case ast.KindSignal:
		switch t.Signal {
		case ast.SignalInput, ast.SignalOutput, ast.SignalIntermediate:
			return t, nil
		case "":
			t.Signal = ast.SignalIntermediate
			return t, nil
		}
		return t, fmt.Errorf("unknown signal type %q", d.Signal)
	}
	return t, fmt.Errorf("unknown variable kind %q", d.Kind)
}

func (d *Document) maxElemID() int {
	highest := 0
	var visitExpr func(*ExprDoc)
	visitAccess := func(acc []AccessDoc) {
		for _, a := range acc {
			visitExpr(a.Index)
		}
	}
	visitExpr = func(e *ExprDoc) {
		if e == nil {
			return
		}
		if e.ElemID > highest {
			highest = e.ElemID
		}
		visitAccess(e.Access)
		for _, x := range []*ExprDoc{e.Lhe, e.Rhe, e.Cond, e.True, e.False} {
			visitExpr(x)
		}
		for _, x := range e.Args {
			visitExpr(x)
		}
	}
	var visitStmt func(*StmtDoc)
	visitStmt = func(s *StmtDoc) {
		if s == nil {
			return
		}
		if s.ElemID > highest {
			highest = s.ElemID
		}
		visitAccess(s.Access)
		for _, x := range []*ExprDoc{s.Lhe, s.Rhe, s.Cond} {
			visitExpr(x)
		}
		for _, x := range s.Dimensions {
			visitExpr(x)
		}
		for _, x := range s.Args {
			visitExpr(x)
		}
		for _, x := range s.Stmts {
			visitStmt(x)
		}
		for _, x := range []*StmtDoc{s.Then, s.Else, s.Body} {
			visitStmt(x)
		}
	}
	for _, t := range d.Templates {
		visitStmt(t.Body)
	}
	return highest
}

// NewDocument converts p into its serialized form.
func NewDocument(p *Program) *Document {
	doc := &Document{Version: DocumentVersion, MainFile: p.MainFile}
	ids := make([]int, 0, len(p.files))
	for id := range p.files {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		f := p.files[id]
		doc.Files = append(doc.Files, FileDoc{ID: f.ID, Path: f.Path, Content: f.Content})
	}
	for _, t := range p.templates {
		doc.Templates = append(doc.Templates, TemplateDoc{
			Name:    t.Name,
			Params:  t.Params,
			Inputs:  t.Inputs,
			Outputs: t.Outputs,
			Body:    stmtDoc(t.Body),
		})
	}
	return doc
}

func spanDoc(m *ast.Meta) SpanDoc {
	s := SpanDoc{ElemID: m.ElemID, Start: m.Start, End: m.End, FileID: m.FileID}
	if m.ComponentInference != nil {
		s.Of = *m.ComponentInference
	}
	return s
}

func typeDoc(t ast.VariableType) *TypeDoc {
	return &TypeDoc{Kind: string(t.Kind), Signal: string(t.Signal)}
}

func accessDocs(acc []ast.Access) []AccessDoc {
	var out []AccessDoc
	for _, a := range acc {
		switch a := a.(type) {
		case ast.ComponentAccess:
			out = append(out, AccessDoc{Field: a.Name})
		case ast.ArrayAccess:
			out = append(out, AccessDoc{Index: exprDoc(a.Index)})
		}
	}
	return out
}

func stmtDocs(stmts []ast.Statement) []*StmtDoc {
	out := make([]*StmtDoc, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, stmtDoc(s))
	}
	return out
}

func stmtDoc(s ast.Statement) *StmtDoc {
	if s == nil {
		return nil
	}
	d := &StmtDoc{SpanDoc: spanDoc(s.GetMeta())}
	switch s := s.(type) {
	case *ast.Declaration:
		d.Kind, d.Name, d.Type, d.Dimensions = KindDeclaration, s.Name, typeDoc(s.XType), exprDocs(s.Dimensions)
	case *ast.Substitution:
		d.Kind, d.Name, d.Access, d.Op, d.Rhe = KindSubstitution, s.Var, accessDocs(s.Access), string(s.Op), exprDoc(s.Rhe)
	case *ast.Block:
		d.Kind, d.Stmts = KindBlock, stmtDocs(s.Stmts)
	case *ast.InitializationBlock:
		d.Kind, d.Type, d.Stmts = KindInitializationBlock, typeDoc(s.XType), stmtDocs(s.Initializations)
	case *ast.IfThenElse:
		d.Kind, d.Cond, d.Then, d.Else = KindIfThenElse, exprDoc(s.Cond), stmtDoc(s.IfCase), stmtDoc(s.ElseCase)
	case *ast.While:
		d.Kind, d.Cond, d.Body = KindWhile, exprDoc(s.Cond), stmtDoc(s.Stmt)
	case *ast.CallStmt:
		d.Kind, d.Name, d.Args = KindCall, s.Call.ID, exprDocs(s.Call.Args)
	case *ast.LogCall:
		d.Kind, d.Args = KindLog, exprDocs(s.Args)
	case *ast.Assert:
		d.Kind, d.Rhe = KindAssert, exprDoc(s.Arg)
	case *ast.Return:
		d.Kind, d.Rhe = KindReturn, exprDoc(s.Value)
	case *ast.ConstraintEquality:
		d.Kind, d.Lhe, d.Rhe = KindConstraintEquality, exprDoc(s.Lhe), exprDoc(s.Rhe)
	case *ast.MultSubstitution:
		d.Kind, d.Lhe, d.Op, d.Rhe = KindMultSubstitution, exprDoc(s.Lhe), string(s.Op), exprDoc(s.Rhe)
	case *ast.UnderscoreSubstitution:
		d.Kind, d.Op, d.Rhe = KindUnderscoreSubstitution, string(s.Op), exprDoc(s.Rhe)
	}
	return d
}

func exprDocs(es []ast.Expression) []*ExprDoc {
	var out []*ExprDoc
	for _, e := range es {
		out = append(out, exprDoc(e))
	}
	return out
}

func exprDoc(e ast.Expression) *ExprDoc {
	if e == nil {
		return nil
	}
	d := &ExprDoc{SpanDoc: spanDoc(e.GetMeta())}
	switch e := e.(type) {
	case *ast.Number:
		d.Kind, d.Value = KindNumber, e.Value.String()
	case *ast.Variable:
		d.Kind, d.Name, d.Access = KindVariable, e.Name, accessDocs(e.Access)
	case *ast.InfixOp:
		d.Kind, d.Lhe, d.Op, d.Rhe = KindInfix, exprDoc(e.Lhe), string(e.Op), exprDoc(e.Rhe)
	case *ast.PrefixOp:
		d.Kind, d.Op, d.Rhe = KindPrefix, string(e.Op), exprDoc(e.Rhe)
	case *ast.Call:
		d.Kind, d.Name, d.Args = KindCall, e.ID, exprDocs(e.Args)
	case *ast.ArrayInLine:
		d.Kind, d.Args = KindArrayInLine, exprDocs(e.Values)
	case *ast.InlineSwitch:
		d.Kind, d.Cond, d.True, d.False = KindInlineSwitch, exprDoc(e.Cond), exprDoc(e.IfTrue), exprDoc(e.IfFalse)
	}
	return d
}
