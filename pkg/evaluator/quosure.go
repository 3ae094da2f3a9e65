package evaluator

import (
	"github.com/quillang/quill/pkg/ast"
)

// Quosure is a captured, unevaluated reference: an expression paired
// with the environment in which the caller supplied it. The environment
// is shared, not owned; many quosures may reference the same one.
type Quosure struct {
	Expr ast.Expr
	Env  *Env
}

func (*Quosure) value() {}

// NewQuosure creates a quosure pairing expr with env.
func NewQuosure(expr ast.Expr, env *Env) *Quosure {
	return &Quosure{Expr: expr, Env: env}
}

// EqualQuosure reports whether two quosures carry equal expressions and
// the same environment.
func (q *Quosure) EqualQuosure(other *Quosure) bool {
	if q == nil || other == nil {
		return q == other
	}
	return q.Env == other.Env && ast.Equal(q.Expr, other.Expr)
}

// EqualValue lets an expression tree embedding this quosure in a
// Literal compare structurally (ast.LiteralComparable).
func (q *Quosure) EqualValue(other any) bool {
	o, ok := other.(*Quosure)
	return ok && q.EqualQuosure(o)
}
