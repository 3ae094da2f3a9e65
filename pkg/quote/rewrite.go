package quote

import (
	"fmt"

	"github.com/quillang/quill/pkg/ast"
	"github.com/quillang/quill/pkg/diagnostics"
	"github.com/quillang/quill/pkg/evaluator"
)

// Rewrite resolves unquote, splice, and name-substitution markers in a
// template, evaluating marker operands against env. The rewrite is a
// pure structural pass: only marker operands are evaluated, each
// exactly once, in left-to-right textual order. Subtrees without
// markers are shared with the input.
func Rewrite(ev *evaluator.Evaluator, template ast.Expr, env *evaluator.Env) (ast.Expr, error) {
	switch n := template.(type) {
	case *ast.CallNode:
		return rewriteCall(ev, n, env)
	case *ast.AssignNode:
		return rewriteAssign(ev, n, env)
	case *ast.UnquoteMarker:
		return nil, invalidContext("unquote")
	case *ast.SpliceMarker:
		return nil, invalidContext("splice")
	case *ast.NameSubMarker:
		return nil, invalidContext("name substitution")
	default:
		return template, nil
	}
}

func invalidContext(what string) error {
	return &evaluator.RuntimeError{
		Code:    diagnostics.EInvalidUnquote,
		Message: fmt.Sprintf("%s marker outside a quoting construction", what),
		Hint:    "markers are only valid while building a call or assignment",
	}
}

// rewriteOperand handles a single expression position inside a quoting
// construction: a direct unquote resolves in place, calls and
// assignments recurse, everything else passes through untouched.
func rewriteOperand(ev *evaluator.Evaluator, e ast.Expr, env *evaluator.Env) (ast.Expr, error) {
	switch n := e.(type) {
	case *ast.UnquoteMarker:
		return resolveUnquote(ev, n, env)
	case *ast.SpliceMarker:
		return nil, &evaluator.RuntimeError{
			Code:    diagnostics.EInvalidUnquote,
			Message: "splice marker outside an argument list",
			Hint:    "splice expands sibling arguments and has no meaning in a single-expression position",
		}
	case *ast.NameSubMarker:
		return nil, &evaluator.RuntimeError{
			Code:    diagnostics.EInvalidUnquote,
			Message: "name-substitution marker outside a binding target",
		}
	case *ast.CallNode:
		return rewriteCall(ev, n, env)
	case *ast.AssignNode:
		return rewriteAssign(ev, n, env)
	default:
		return e, nil
	}
}

// resolveUnquote evaluates the marker operand immediately. A quosure
// result splices its inner expression in place; any other value is
// substituted as a literal.
func resolveUnquote(ev *evaluator.Evaluator, m *ast.UnquoteMarker, env *evaluator.Env) (ast.Expr, error) {
	val, err := ev.Eval(m.Operand, env)
	if err != nil {
		return nil, err
	}
	return exprForValue(val), nil
}

func exprForValue(val evaluator.Value) ast.Expr {
	if q, ok := val.(*evaluator.Quosure); ok {
		return q.Expr
	}
	return ast.Lit(val)
}

func rewriteCall(ev *evaluator.Evaluator, n *ast.CallNode, env *evaluator.Env) (ast.Expr, error) {
	args := make([]ast.Arg, 0, len(n.Args))
	for _, arg := range n.Args {
		switch v := arg.Value.(type) {
		case *ast.SpliceMarker:
			expanded, err := resolveSplice(ev, v, env)
			if err != nil {
				return nil, err
			}
			args = append(args, expanded...)

		case *ast.AssignNode:
			// A name-substitution assignment in argument position
			// becomes a named argument with a computed name.
			if isComputedName(v.Target) {
				named, err := rewriteNamedArg(ev, v, env)
				if err != nil {
					return nil, err
				}
				args = append(args, named)
				continue
			}
			rewritten, err := rewriteAssign(ev, v, env)
			if err != nil {
				return nil, err
			}
			args = append(args, ast.Arg{Name: arg.Name, Value: rewritten})

		default:
			rewritten, err := rewriteOperand(ev, arg.Value, env)
			if err != nil {
				return nil, err
			}
			args = append(args, ast.Arg{Name: arg.Name, Value: rewritten})
		}
	}
	return &ast.CallNode{Head: n.Head, Args: args}, nil
}

func isComputedName(target ast.Expr) bool {
	switch target.(type) {
	case *ast.NameSubMarker, *ast.UnquoteMarker:
		return true
	}
	return false
}

func rewriteNamedArg(ev *evaluator.Evaluator, n *ast.AssignNode, env *evaluator.Env) (ast.Arg, error) {
	marker, ok := n.Target.(*ast.NameSubMarker)
	if !ok {
		return ast.Arg{}, ambiguousTarget()
	}
	name, err := resolveName(ev, marker, env)
	if err != nil {
		return ast.Arg{}, err
	}
	value, err := rewriteOperand(ev, n.Value, env)
	if err != nil {
		return ast.Arg{}, err
	}
	return ast.Named(name, value), nil
}

func rewriteAssign(ev *evaluator.Evaluator, n *ast.AssignNode, env *evaluator.Env) (ast.Expr, error) {
	var target ast.Expr
	switch t := n.Target.(type) {
	case *ast.Symbol:
		target = t
	case *ast.NameSubMarker:
		name, err := resolveName(ev, t, env)
		if err != nil {
			return nil, err
		}
		target = ast.Sym(name)
	case *ast.UnquoteMarker:
		return nil, ambiguousTarget()
	default:
		return nil, &evaluator.RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("binding target must be a symbol, got %s", n.Target.Kind()),
		}
	}
	value, err := rewriteOperand(ev, n.Value, env)
	if err != nil {
		return nil, err
	}
	return ast.Assign(target, value), nil
}

func ambiguousTarget() error {
	return &evaluator.RuntimeError{
		Code:    diagnostics.EAmbiguousTarget,
		Message: "cannot unquote an ordinary binding name",
		Hint:    "ordinary bindings fix their name syntactically; use the name-substitution form for a computed name",
	}
}

// resolveName resolves the operand of a name-substitution marker to a
// binding name: a symbol operand names itself, an unquote operand is
// evaluated and must yield a string or a quosure over a symbol.
func resolveName(ev *evaluator.Evaluator, m *ast.NameSubMarker, env *evaluator.Env) (string, error) {
	switch op := m.Operand.(type) {
	case *ast.Symbol:
		return op.Name, nil
	case *ast.UnquoteMarker:
		val, err := ev.Eval(op.Operand, env)
		if err != nil {
			return "", err
		}
		return nameFromValue(val)
	default:
		val, err := ev.Eval(op, env)
		if err != nil {
			return "", err
		}
		return nameFromValue(val)
	}
}

func nameFromValue(val evaluator.Value) (string, error) {
	switch v := val.(type) {
	case evaluator.String:
		return v.Value, nil
	case *evaluator.Quosure:
		if sym, ok := v.Expr.(*ast.Symbol); ok {
			return sym.Name, nil
		}
	}
	return "", &evaluator.RuntimeError{
		Code:    diagnostics.EType,
		Message: "computed binding name must resolve to a symbol or string",
	}
}

// resolveSplice evaluates the marker operand, which must be an ordered
// sequence, and expands it into zero or more sibling arguments,
// preserving element order and names.
func resolveSplice(ev *evaluator.Evaluator, m *ast.SpliceMarker, env *evaluator.Env) ([]ast.Arg, error) {
	val, err := ev.Eval(m.Operand, env)
	if err != nil {
		return nil, err
	}
	list, ok := val.(evaluator.List)
	if !ok {
		return nil, &evaluator.RuntimeError{
			Code:    diagnostics.ESpliceType,
			Message: fmt.Sprintf("splice operand must be an ordered sequence, got %T", val),
		}
	}
	args := make([]ast.Arg, 0, len(list.Elements))
	for _, elem := range list.Elements {
		args = append(args, ast.Arg{Name: elem.Name, Value: exprForValue(elem.Value)})
	}
	return args, nil
}
