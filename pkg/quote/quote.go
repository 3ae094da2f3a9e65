// Package quote implements quasiquotation: quote construction, quote
// capture, and the unquote/splice/name-substitution rewrite.
package quote

import (
	"github.com/quillang/quill/pkg/ast"
	"github.com/quillang/quill/pkg/evaluator"
)

// Construct builds a quosure from syntax written at the current call
// site, bound to env. Unquote, splice, and name-substitution markers in
// the syntax are resolved against env at construction time.
func Construct(ev *evaluator.Evaluator, syntax ast.Expr, env *evaluator.Env) (*evaluator.Quosure, error) {
	rewritten, err := Rewrite(ev, syntax, env)
	if err != nil {
		return nil, err
	}
	return evaluator.NewQuosure(rewritten, env), nil
}

// Capture returns a quosure over the named parameter's unforced
// promise: the caller-supplied expression and the caller's environment.
// Capturing an already-quosure-valued parameter returns that quosure
// unchanged; capturing a forced parameter fails with E_STALE_CAPTURE.
func Capture(frame *evaluator.Frame, param string) (*evaluator.Quosure, error) {
	p, err := frame.Promise(param)
	if err != nil {
		return nil, err
	}
	return p.Capture()
}
