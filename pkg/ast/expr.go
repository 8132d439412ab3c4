package ast

import "math/big"

// Expression is any expression node.
type Expression interface {
	GetMeta() *Meta
	exprNode()
}

type (
	// Number is a literal field element.
	Number struct {
		Meta  Meta
		Value *big.Int
	}

	Variable struct {
		Meta   Meta
		Name   string
		Access []Access
	}

	InfixOp struct {
		Meta Meta
		Lhe  Expression
		Op   InfixOpcode
		Rhe  Expression
	}

	PrefixOp struct {
		Meta Meta
		Op   PrefixOpcode
		Rhe  Expression
	}

	// Call is a function call or a component instantiation.
	Call struct {
		Meta Meta
		ID   string
		Args []Expression
	}

	ArrayInLine struct {
		Meta   Meta
		Values []Expression
	}

	InlineSwitch struct {
		Meta    Meta
		Cond    Expression
		IfTrue  Expression
		IfFalse Expression
	}
)

func (e *Number) GetMeta() *Meta       { return &e.Meta }
func (e *Variable) GetMeta() *Meta     { return &e.Meta }
func (e *InfixOp) GetMeta() *Meta      { return &e.Meta }
func (e *PrefixOp) GetMeta() *Meta     { return &e.Meta }
func (e *Call) GetMeta() *Meta         { return &e.Meta }
func (e *ArrayInLine) GetMeta() *Meta  { return &e.Meta }
func (e *InlineSwitch) GetMeta() *Meta { return &e.Meta }

func (*Number) exprNode()       {}
func (*Variable) exprNode()     {}
func (*InfixOp) exprNode()      {}
func (*PrefixOp) exprNode()     {}
func (*Call) exprNode()         {}
func (*ArrayInLine) exprNode()  {}
func (*InlineSwitch) exprNode() {}

// IsVariableNamed reports whether e is a plain reference to name, without access path.
func IsVariableNamed(e Expression, name string) bool {
	v, ok := e.(*Variable)
	return ok && v.Name == name && len(v.Access) == 0
}

// AsNumber returns the literal value of e when e is a number literal.
func AsNumber(e Expression) (*big.Int, bool) {
	n, ok := e.(*Number)
	if !ok || n.Value == nil {
		return nil, false
	}
	return n.Value, true
}
