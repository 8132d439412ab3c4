package ast

// Statement is any statement node of a template body.
type Statement interface {
	GetMeta() *Meta
	stmtNode()
}

type (
	// Declaration introduces a name. IsConstant is filled in by constant folding.
	Declaration struct {
		Meta       Meta
		XType      VariableType
		Name       string
		Dimensions []Expression
		IsConstant bool
	}

	// Substitution assigns Rhe to Var (optionally through an access path).
	Substitution struct {
		Meta   Meta
		Var    string
		Access []Access
		Op     AssignOp
		Rhe    Expression
	}

	Block struct {
		Meta  Meta
		Stmts []Statement
	}

	// InitializationBlock groups the declarations and initial assignments that
	// a single source declaration such as `var i = 0` expands to.
	InitializationBlock struct {
		Meta            Meta
		XType           VariableType
		Initializations []Statement
	}

	IfThenElse struct {
		Meta     Meta
		Cond     Expression
		IfCase   Statement
		ElseCase Statement // nil when absent
	}

	While struct {
		Meta Meta
		Cond Expression
		Stmt Statement
	}

	// CallStmt is a call evaluated for its side effects.
	CallStmt struct {
		Meta Meta
		Call *Call
	}

	LogCall struct {
		Meta Meta
		Args []Expression
	}

	Assert struct {
		Meta Meta
		Arg  Expression
	}

	Return struct {
		Meta  Meta
		Value Expression
	}

	// ConstraintEquality is `lhe === rhe`.
	ConstraintEquality struct {
		Meta Meta
		Lhe  Expression
		Rhe  Expression
	}

	// MultSubstitution assigns a tuple, `(a, b) <== C()(x)`.
	MultSubstitution struct {
		Meta Meta
		Lhe  Expression
		Op   AssignOp
		Rhe  Expression
	}

	// UnderscoreSubstitution discards a value, `_ <== e`.
	UnderscoreSubstitution struct {
		Meta Meta
		Op   AssignOp
		Rhe  Expression
	}
)

func (s *Declaration) GetMeta() *Meta            { return &s.Meta }
func (s *Substitution) GetMeta() *Meta           { return &s.Meta }
func (s *Block) GetMeta() *Meta                  { return &s.Meta }
func (s *InitializationBlock) GetMeta() *Meta    { return &s.Meta }
func (s *IfThenElse) GetMeta() *Meta             { return &s.Meta }
func (s *While) GetMeta() *Meta                  { return &s.Meta }
func (s *CallStmt) GetMeta() *Meta               { return &s.Meta }
func (s *LogCall) GetMeta() *Meta                { return &s.Meta }
func (s *Assert) GetMeta() *Meta                 { return &s.Meta }
func (s *Return) GetMeta() *Meta                 { return &s.Meta }
func (s *ConstraintEquality) GetMeta() *Meta     { return &s.Meta }
func (s *MultSubstitution) GetMeta() *Meta       { return &s.Meta }
func (s *UnderscoreSubstitution) GetMeta() *Meta { return &s.Meta }

func (*Declaration) stmtNode()            {}
func (*Substitution) stmtNode()           {}
func (*Block) stmtNode()                  {}
func (*InitializationBlock) stmtNode()    {}
func (*IfThenElse) stmtNode()             {}
func (*While) stmtNode()                  {}
func (*CallStmt) stmtNode()               {}
func (*LogCall) stmtNode()                {}
func (*Assert) stmtNode()                 {}
func (*Return) stmtNode()                 {}
func (*ConstraintEquality) stmtNode()     {}
func (*MultSubstitution) stmtNode()       {}
func (*UnderscoreSubstitution) stmtNode() {}

// Walk visits stmt and its nested statements in pre-order.
// Returning false from fn skips the children of the visited statement.
func Walk(stmt Statement, fn func(Statement) bool) {
	if stmt == nil || !fn(stmt) {
		return
	}
	switch s := stmt.(type) {
	case *Block:
		for _, child := range s.Stmts {
			Walk(child, fn)
		}
	case *InitializationBlock:
		for _, child := range s.Initializations {
			Walk(child, fn)
		}
	case *IfThenElse:
		Walk(s.IfCase, fn)
		if s.ElseCase != nil {
			Walk(s.ElseCase, fn)
		}
	case *While:
		Walk(s.Stmt, fn)
	}
}
