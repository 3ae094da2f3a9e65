package evaluator

import (
	"fmt"

	"github.com/quillang/quill/pkg/ast"
	"github.com/quillang/quill/pkg/diagnostics"
)

// RuntimeError represents an evaluation or rewrite failure. All engine
// failures are synchronous and abort the in-flight call; there are no
// partial results.
type RuntimeError struct {
	Code    string
	Message string
	Hint    string
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// Diag converts the error to a diagnostics.Diagnostic.
func (e *RuntimeError) Diag() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, 0, 0, e.Hint)
}

// Options configures an Evaluator.
type Options struct {
	// Ops maps head symbols to host-declared operations.
	Ops map[string]*OpDef
}

// Evaluator walks expression trees against environments, dispatching
// calls to host-declared operations.
type Evaluator struct {
	ops map[string]*OpDef
}

// New creates an evaluator with the given options.
func New(opts Options) *Evaluator {
	ops := opts.Ops
	if ops == nil {
		ops = make(map[string]*OpDef)
	}
	return &Evaluator{ops: ops}
}

// Op returns the operation registered under name, if any.
func (ev *Evaluator) Op(name string) (*OpDef, bool) {
	op, ok := ev.ops[name]
	return op, ok
}

// Eval evaluates an expression against an environment.
func (ev *Evaluator) Eval(expr ast.Expr, env *Env) (Value, error) {
	switch n := expr.(type) {
	case *ast.Symbol:
		if val, ok := env.Get(n.Name); ok {
			return val, nil
		}
		return nil, &RuntimeError{
			Code:    diagnostics.EUnbound,
			Message: fmt.Sprintf("symbol %q is not bound", n.Name),
		}

	case *ast.Literal:
		// A literal holding an embedded quosure evaluates in the
		// quosure's own environment, so rewritten trees can stay
		// heterogeneous in which environment governs which subtree.
		if q, ok := n.Val.(*Quosure); ok {
			return ev.EvalQuosure(q, nil)
		}
		return FromGo(n.Val), nil

	case *ast.CallNode:
		return ev.evalCall(n, env)

	case *ast.AssignNode:
		return ev.evalAssign(n, env)

	case *ast.UnquoteMarker, *ast.SpliceMarker, *ast.NameSubMarker:
		return nil, &RuntimeError{
			Code:    diagnostics.EInvalidUnquote,
			Message: fmt.Sprintf("%s reached the evaluator", expr.Kind()),
			Hint:    "unquote, splice, and name-substitution markers must be resolved by a rewrite before evaluation",
		}
	}
	return nil, &RuntimeError{
		Code:    diagnostics.EType,
		Message: fmt.Sprintf("cannot evaluate %T", expr),
	}
}

// EvalQuosure evaluates a quosure's expression against its captured
// environment, or against override when non-nil.
func (ev *Evaluator) EvalQuosure(q *Quosure, override *Env) (Value, error) {
	env := q.Env
	if override != nil {
		env = override
	}
	return ev.Eval(q.Expr, env)
}

func (ev *Evaluator) evalAssign(n *ast.AssignNode, env *Env) (Value, error) {
	sym, ok := n.Target.(*ast.Symbol)
	if !ok {
		if _, isUnq := n.Target.(*ast.UnquoteMarker); isUnq {
			return nil, &RuntimeError{
				Code:    diagnostics.EAmbiguousTarget,
				Message: "cannot unquote an ordinary binding name",
				Hint:    "use the name-substitution form to compute a binding's name",
			}
		}
		return nil, &RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("assignment target must be a symbol, got %s", n.Target.Kind()),
		}
	}
	val, err := ev.Eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	env.Set(sym.Name, val)
	return val, nil
}

func (ev *Evaluator) evalCall(n *ast.CallNode, env *Env) (Value, error) {
	op, ok := ev.ops[n.Head.Name]
	if !ok {
		return nil, &RuntimeError{
			Code:    diagnostics.EUnknownOp,
			Message: fmt.Sprintf("unknown operation %q", n.Head.Name),
		}
	}
	call, err := ev.bindCall(op, n, env)
	if err != nil {
		return nil, err
	}
	return op.Execute(call)
}

// bindCall matches caller arguments to declared parameters and applies
// each parameter's policy: evaluating parameters are forced, quoting
// parameters are captured. Arguments are processed strictly in caller
// order.
func (ev *Evaluator) bindCall(op *OpDef, n *ast.CallNode, env *Env) (*OpCall, error) {
	var variadic *Param
	fixed := make([]Param, 0, len(op.Params))
	for i := range op.Params {
		p := op.Params[i]
		if p.Variadic {
			variadic = &p
			continue
		}
		fixed = append(fixed, p)
	}

	type slot struct {
		param Param
		args  []Bound
	}
	slots := make(map[string]*slot, len(op.Params))
	for _, p := range op.Params {
		slots[p.Name] = &slot{param: p}
	}

	nextFixed := 0
	for _, arg := range n.Args {
		var target *slot
		if arg.Name != "" {
			if s, ok := slots[arg.Name]; ok && !s.param.Variadic && len(s.args) == 0 {
				target = s
			}
		} else {
			// Positional arguments fill the first fixed parameter a
			// named argument has not already claimed.
			for nextFixed < len(fixed) && len(slots[fixed[nextFixed].Name].args) > 0 {
				nextFixed++
			}
			if nextFixed < len(fixed) {
				target = slots[fixed[nextFixed].Name]
				nextFixed++
			}
		}
		if target == nil {
			if variadic == nil {
				return nil, &RuntimeError{
					Code:    diagnostics.EOpArgs,
					Message: fmt.Sprintf("operation %q does not accept argument %q", op.Name, arg.Name),
				}
			}
			target = slots[variadic.Name]
		}

		b := Bound{Name: arg.Name, Promise: NewPromise(arg.Value, env)}
		switch target.param.Policy {
		case Quoting:
			q, err := b.Promise.Capture()
			if err != nil {
				return nil, err
			}
			b.Quosure = q
		default:
			v, err := b.Promise.Force(ev)
			if err != nil {
				return nil, err
			}
			b.Value = v
		}
		target.args = append(target.args, b)
	}

	for _, p := range fixed {
		if len(slots[p.Name].args) == 0 {
			return nil, &RuntimeError{
				Code:    diagnostics.EOpArgs,
				Message: fmt.Sprintf("operation %q is missing argument %q", op.Name, p.Name),
			}
		}
	}

	bound := make(map[string][]Bound, len(slots))
	for name, s := range slots {
		bound[name] = s.args
	}
	return &OpCall{Op: op, Env: env, ev: ev, bound: bound}, nil
}
