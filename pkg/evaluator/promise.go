package evaluator

import (
	"sync"

	"github.com/tevino/abool/v2"

	"github.com/quillang/quill/pkg/ast"
	"github.com/quillang/quill/pkg/diagnostics"
)

// Promise is a deferred, memoized argument binding created at a call
// boundary. It wraps the caller's raw expression and a reference to the
// caller's environment; forcing evaluates the expression exactly once
// and memoizes the result. Capture reads the (expr, env) pair without
// forcing.
type Promise struct {
	expr   ast.Expr
	env    *Env
	forced *abool.AtomicBool
	mu     sync.Mutex
	val    Value
	err    error
}

// NewPromise creates an unforced promise over expr in env.
func NewPromise(expr ast.Expr, env *Env) *Promise {
	return &Promise{expr: expr, env: env, forced: abool.New()}
}

// Expr returns the promise's raw expression.
func (p *Promise) Expr() ast.Expr { return p.expr }

// Env returns the environment the expression was supplied in.
func (p *Promise) Env() *Env { return p.env }

// Forced reports whether the promise has been forced.
func (p *Promise) Forced() bool { return p.forced.IsSet() }

// Force evaluates the promise's expression in its environment,
// memoizing the result. Later calls return the memoized value without
// re-evaluating.
func (p *Promise) Force(ev *Evaluator) (Value, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.forced.SetToIf(false, true) {
		p.val, p.err = ev.Eval(p.expr, p.env)
	}
	return p.val, p.err
}

// Capture returns a quosure over the promise's unforced (expr, env)
// pair. If the supplied expression already carries a quosure value it
// is returned unchanged, so repeated propagation through capturing
// calls is idempotent. Capturing a forced promise is an error: under
// ordinary call semantics the original syntax is no longer trustworthy
// once the argument has been evaluated.
func (p *Promise) Capture() (*Quosure, error) {
	if lit, ok := p.expr.(*ast.Literal); ok {
		if q, ok := lit.Val.(*Quosure); ok {
			return q, nil
		}
	}
	if p.forced.IsSet() {
		return nil, &RuntimeError{
			Code:    diagnostics.EStaleCapture,
			Message: "cannot capture a parameter that has already been forced",
			Hint:    "capture before reading the parameter's value",
		}
	}
	return NewQuosure(p.expr, p.env), nil
}
