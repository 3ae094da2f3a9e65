// Package ast defines the quill expression tree types.
package ast

import (
	"github.com/segmentio/fasthash/fnv1a"
)

// Expr is the interface implemented by all expression nodes.
// Trees are immutable once built; rewrites allocate new nodes and may
// share untouched subtrees with their input.
type Expr interface {
	Kind() string
	exprNode() // sealed marker
}

// Symbol is an interned identifier, compared by content. The fnv1a
// content hash is computed once at construction so equality checks can
// reject mismatches without a string compare.
type Symbol struct {
	Name string
	hash uint64
}

// Sym creates a Symbol for name.
func Sym(name string) *Symbol {
	return &Symbol{Name: name, hash: fnv1a.HashString64(name)}
}

func (n *Symbol) Kind() string { return "Symbol" }
func (n *Symbol) exprNode()    {}

// Hash returns the symbol's precomputed content hash.
func (n *Symbol) Hash() uint64 { return n.hash }

// Literal is an atomic value embedded in a tree. Val holds nil (the
// missing marker), bool, float64, string, an ordered []any of such
// values, or an opaque runtime value substituted by an unquote rewrite.
type Literal struct {
	Val any
}

// Lit creates a Literal holding v.
func Lit(v any) *Literal { return &Literal{Val: v} }

func (n *Literal) Kind() string { return "Literal" }
func (n *Literal) exprNode()    {}

// Arg is a single call argument: an optional name plus an expression.
// Argument order is caller-textual order and is preserved through every
// rewrite.
type Arg struct {
	Name  string // "" for positional arguments
	Value Expr
}

// Pos creates a positional argument.
func Pos(e Expr) Arg { return Arg{Value: e} }

// Named creates a named argument.
func Named(name string, e Expr) Arg { return Arg{Name: name, Value: e} }

// CallNode is a call of a head symbol with ordered arguments.
type CallNode struct {
	Head *Symbol
	Args []Arg
}

// Call creates a CallNode for head with the given arguments.
func Call(head string, args ...Arg) *CallNode {
	return &CallNode{Head: Sym(head), Args: args}
}

func (n *CallNode) Kind() string { return "CallNode" }
func (n *CallNode) exprNode()    {}

// AssignNode binds a value under a target. The target is a Symbol for
// the ordinary binding form, or a NameSubMarker when the binding's name
// is computed at rewrite time.
type AssignNode struct {
	Target Expr
	Value  Expr
}

// Assign creates an AssignNode.
func Assign(target, value Expr) *AssignNode {
	return &AssignNode{Target: target, Value: value}
}

func (n *AssignNode) Kind() string { return "AssignNode" }
func (n *AssignNode) exprNode()    {}

// UnquoteMarker requests that its operand be evaluated at rewrite time
// and the result substituted in place. Valid only inside a quoting
// construction.
type UnquoteMarker struct {
	Operand Expr
}

// Unquote creates an UnquoteMarker.
func Unquote(operand Expr) *UnquoteMarker { return &UnquoteMarker{Operand: operand} }

func (n *UnquoteMarker) Kind() string { return "UnquoteMarker" }
func (n *UnquoteMarker) exprNode()    {}

// SpliceMarker is like UnquoteMarker but its operand must evaluate to
// an ordered sequence, which expands into sibling arguments at the
// marker's position.
type SpliceMarker struct {
	Operand Expr
}

// Splice creates a SpliceMarker.
func Splice(operand Expr) *SpliceMarker { return &SpliceMarker{Operand: operand} }

func (n *SpliceMarker) Kind() string { return "SpliceMarker" }
func (n *SpliceMarker) exprNode()    {}

// NameSubMarker marks an assignment target (or argument name) whose
// name is computed at rewrite time from the marker's operand.
type NameSubMarker struct {
	Operand Expr
}

// NameSub creates a NameSubMarker.
func NameSub(operand Expr) *NameSubMarker { return &NameSubMarker{Operand: operand} }

func (n *NameSubMarker) Kind() string { return "NameSubMarker" }
func (n *NameSubMarker) exprNode()    {}
