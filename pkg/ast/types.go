// Package ast defines the statement and expression trees of a circuit template
// as handed over by the parser and type checker.
// The analyses in this module only read these trees.
package ast

import "fmt"

// Meta carries the source span and identity of a syntax element.
type Meta struct {
	ElemID             int     `json:"elem_id"`                       // Unique identity token
	Start              int     `json:"start"`                         // Byte offset of the first character
	End                int     `json:"end"`                           // Byte offset one past the last character
	FileID             int     `json:"file_id"`                       // Source file the span belongs to
	ComponentInference *string `json:"component_inference,omitempty"` // Template a component declaration instantiates
}

// Contains reports whether m's span fully encloses other.
func (m Meta) Contains(other Meta) bool {
	return m.FileID == other.FileID && m.Start <= other.Start && m.End >= other.End
}

// Len returns the length of the span.
func (m Meta) Len() int {
	return m.End - m.Start
}

func (m Meta) String() string {
	return fmt.Sprintf("%d:%d-%d", m.FileID, m.Start, m.End)
}

// VariableKind distinguishes the storage classes a declaration can introduce.
type VariableKind string

const (
	KindVar                VariableKind = "var"
	KindSignal             VariableKind = "signal"
	KindComponent          VariableKind = "component"
	KindAnonymousComponent VariableKind = "anonymous_component"
	KindBus                VariableKind = "bus"
)

// SignalType is the direction of a signal.
type SignalType string

const (
	SignalInput        SignalType = "input"
	SignalIntermediate SignalType = "intermediate"
	SignalOutput       SignalType = "output"
)

// VariableType is the declared type of a name.
type VariableType struct {
	Kind   VariableKind `json:"kind"`
	Signal SignalType   `json:"signal,omitempty"`
}

// Var returns the type of a local variable.
func Var() VariableType { return VariableType{Kind: KindVar} }

// Signal returns the type of a signal with the given direction.
func Signal(t SignalType) VariableType { return VariableType{Kind: KindSignal, Signal: t} }

// Component returns the type of a component instance.
func Component() VariableType { return VariableType{Kind: KindComponent} }

func (t VariableType) IsSignal() bool { return t.Kind == KindSignal }
func (t VariableType) IsInput() bool  { return t.Kind == KindSignal && t.Signal == SignalInput }
func (t VariableType) IsVar() bool    { return t.Kind == KindVar }

// IsComponent reports whether the type is a named component instance.
func (t VariableType) IsComponent() bool { return t.Kind == KindComponent }

func (t VariableType) String() string {
	if t.Kind == KindSignal {
		return string(t.Signal) + " signal"
	}
	return string(t.Kind)
}

// AssignOp is the operator of a substitution.
type AssignOp string

const (
	AssignVar              AssignOp = "="
	AssignSignal           AssignOp = "<--"
	AssignConstraintSignal AssignOp = "<=="
)

// InfixOpcode is a binary expression operator.
type InfixOpcode string

const (
	OpMul     InfixOpcode = "*"
	OpDiv     InfixOpcode = "/"
	OpAdd     InfixOpcode = "+"
	OpSub     InfixOpcode = "-"
	OpPow     InfixOpcode = "**"
	OpIntDiv  InfixOpcode = "\\"
	OpMod     InfixOpcode = "%"
	OpShiftL  InfixOpcode = "<<"
	OpShiftR  InfixOpcode = ">>"
	OpLesser  InfixOpcode = "<"
	OpGreater InfixOpcode = ">"
	OpLeq     InfixOpcode = "<="
	OpGeq     InfixOpcode = ">="
	OpEq      InfixOpcode = "=="
	OpNotEq   InfixOpcode = "!="
	OpBoolAnd InfixOpcode = "&&"
	OpBoolOr  InfixOpcode = "||"
	OpBitAnd  InfixOpcode = "&"
	OpBitOr   InfixOpcode = "|"
	OpBitXor  InfixOpcode = "^"
)

// PrefixOpcode is a unary expression operator.
type PrefixOpcode string

const (
	OpNeg        PrefixOpcode = "-"
	OpBoolNot    PrefixOpcode = "!"
	OpComplement PrefixOpcode = "~"
)

// Access is one step of an access path: `.field` or `[index]`.
type Access interface {
	isAccess()
}

// ComponentAccess selects a field of a sub-component.
type ComponentAccess struct {
	Name string
}

// ArrayAccess indexes into an array.
type ArrayAccess struct {
	Index Expression
}

func (ComponentAccess) isAccess() {}
func (ArrayAccess) isAccess()     {}
