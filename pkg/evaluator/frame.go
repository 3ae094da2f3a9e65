package evaluator

import (
	"fmt"

	"github.com/quillang/quill/pkg/ast"
	"github.com/quillang/quill/pkg/diagnostics"
)

// Frame models a call frame for a capturing function: an ordered set of
// parameter promises over the caller's environment. Hosts that accept
// deferred arguments build a frame, then capture or force individual
// parameters.
type Frame struct {
	env      *Env
	order    []string
	promises map[string]*Promise
}

// NewFrame creates an empty frame whose arguments were supplied in env.
func NewFrame(env *Env) *Frame {
	return &Frame{env: env, promises: make(map[string]*Promise)}
}

// Bind adds a parameter bound to the caller-supplied expression.
func (f *Frame) Bind(param string, expr ast.Expr) *Frame {
	if _, ok := f.promises[param]; !ok {
		f.order = append(f.order, param)
	}
	f.promises[param] = NewPromise(expr, f.env)
	return f
}

// Promise returns the promise bound to param.
func (f *Frame) Promise(param string) (*Promise, error) {
	p, ok := f.promises[param]
	if !ok {
		return nil, &RuntimeError{
			Code:    diagnostics.EOpArgs,
			Message: fmt.Sprintf("no parameter %q in frame", param),
		}
	}
	return p, nil
}

// Env returns the caller environment the frame was built over.
func (f *Frame) Env() *Env { return f.env }

// Params returns the frame's parameter names in binding order.
func (f *Frame) Params() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}
