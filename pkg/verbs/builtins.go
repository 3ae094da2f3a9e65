package verbs

import (
	"fmt"
	"strconv"

	"github.com/nukata/goarith"

	"github.com/quillang/quill/pkg/diagnostics"
	"github.com/quillang/quill/pkg/evaluator"
)

func registerBuiltins(r *Registry) {
	for _, name := range []string{"+", "-", "*", "/"} {
		name := name
		r.Register(evaluator.OpDef{
			Name: name,
			Params: []evaluator.Param{
				{Name: "x", Policy: evaluator.Evaluating},
				{Name: "y", Policy: evaluator.Evaluating},
			},
			Execute: func(call *evaluator.OpCall) (evaluator.Value, error) {
				return arith(call, name)
			},
		})
	}

	for _, name := range []string{"<", "<=", ">", ">="} {
		name := name
		r.Register(evaluator.OpDef{
			Name: name,
			Params: []evaluator.Param{
				{Name: "x", Policy: evaluator.Evaluating},
				{Name: "y", Policy: evaluator.Evaluating},
			},
			Execute: func(call *evaluator.OpCall) (evaluator.Value, error) {
				return compare(call, name)
			},
		})
	}

	r.Register(evaluator.OpDef{
		Name: "==",
		Params: []evaluator.Param{
			{Name: "x", Policy: evaluator.Evaluating},
			{Name: "y", Policy: evaluator.Evaluating},
		},
		Execute: func(call *evaluator.OpCall) (evaluator.Value, error) {
			x, _ := call.Arg("x")
			y, _ := call.Arg("y")
			return evaluator.NewBool(evaluator.EqualValues(x.Value, y.Value)), nil
		},
	})

	r.Register(evaluator.OpDef{
		Name: "c",
		Params: []evaluator.Param{
			{Name: "values", Policy: evaluator.Evaluating, Variadic: true},
		},
		Execute: func(call *evaluator.OpCall) (evaluator.Value, error) {
			bs := call.All("values")
			elems := make([]evaluator.Element, len(bs))
			for i, b := range bs {
				elems[i] = evaluator.Element{Name: b.Name, Value: b.Value}
			}
			return evaluator.NewList(elems), nil
		},
	})

	for _, agg := range []string{"sum", "mean", "min", "max", "n"} {
		agg := agg
		r.Register(evaluator.OpDef{
			Name: agg,
			Params: []evaluator.Param{
				{Name: "xs", Policy: evaluator.Evaluating},
			},
			Execute: func(call *evaluator.OpCall) (evaluator.Value, error) {
				xs, _ := call.Arg("xs")
				return aggregate(agg, xs.Value)
			},
		})
	}

	// quo captures its argument as a quosure, the in-language spelling
	// of quote construction.
	r.Register(evaluator.OpDef{
		Name: "quo",
		Params: []evaluator.Param{
			{Name: "expr", Policy: evaluator.Quoting},
		},
		Execute: func(call *evaluator.OpCall) (evaluator.Value, error) {
			b, _ := call.Arg("expr")
			return b.Quosure, nil
		},
	})

	// eval_tidy forces a quosure, optionally against a table's columns.
	// data is declared variadic so it can be omitted.
	r.Register(evaluator.OpDef{
		Name: "eval_tidy",
		Params: []evaluator.Param{
			{Name: "quo", Policy: evaluator.Evaluating},
			{Name: "data", Policy: evaluator.Evaluating, Variadic: true},
		},
		Execute: evalTidy,
	})
}

func evalTidy(call *evaluator.OpCall) (evaluator.Value, error) {
	b, _ := call.Arg("quo")
	q, ok := b.Value.(*evaluator.Quosure)
	if !ok {
		return nil, &evaluator.RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("eval_tidy expects a quosure, got %T", b.Value),
		}
	}
	env := q.Env
	if d, ok := call.Arg("data"); ok {
		t, isTable := AsTable(d.Value)
		if !isTable {
			return nil, &evaluator.RuntimeError{
				Code:    diagnostics.EType,
				Message: "eval_tidy data must be a table",
			}
		}
		env = q.Env.MaskedChild(ColMask{Table: t})
	}
	return call.Evaluator().EvalQuosure(q, env)
}

func asNumber(v evaluator.Value) (goarith.Number, error) {
	n, ok := v.(evaluator.Number)
	if !ok {
		return nil, &evaluator.RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("expected a number, got %T", v),
		}
	}
	return goarith.AsNumber(n.Value), nil
}

func numberValue(n goarith.Number) evaluator.Value {
	switch x := n.(type) {
	case goarith.Float64:
		return evaluator.NewNumber(float64(x))
	case goarith.Int64:
		return evaluator.NewNumber(float64(x))
	case goarith.Int32:
		return evaluator.NewNumber(float64(x))
	default:
		f, _ := strconv.ParseFloat(n.String(), 64)
		return evaluator.NewNumber(f)
	}
}

func arith(call *evaluator.OpCall, op string) (evaluator.Value, error) {
	xb, _ := call.Arg("x")
	yb, _ := call.Arg("y")
	x, err := asNumber(xb.Value)
	if err != nil {
		return nil, err
	}
	y, err := asNumber(yb.Value)
	if err != nil {
		return nil, err
	}
	switch op {
	case "+":
		return numberValue(x.Add(y)), nil
	case "-":
		return numberValue(x.Sub(y)), nil
	case "*":
		return numberValue(x.Mul(y)), nil
	default:
		return numberValue(x.RQuo(y)), nil
	}
}

func compare(call *evaluator.OpCall, op string) (evaluator.Value, error) {
	xb, _ := call.Arg("x")
	yb, _ := call.Arg("y")
	x, err := asNumber(xb.Value)
	if err != nil {
		return nil, err
	}
	y, err := asNumber(yb.Value)
	if err != nil {
		return nil, err
	}
	c := x.Cmp(y)
	var out bool
	switch op {
	case "<":
		out = c < 0
	case "<=":
		out = c <= 0
	case ">":
		out = c > 0
	default:
		out = c >= 0
	}
	return evaluator.NewBool(out), nil
}

// aggregate reduces an ordered sequence (or a lone number) to a single
// value. A missing element makes the whole aggregate missing.
func aggregate(op string, v evaluator.Value) (evaluator.Value, error) {
	var items []evaluator.Value
	switch x := v.(type) {
	case evaluator.List:
		items = x.Items()
	case evaluator.Number:
		items = []evaluator.Value{x}
	default:
		return nil, &evaluator.RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("%s expects an ordered sequence, got %T", op, v),
		}
	}

	if op == "n" {
		return evaluator.NewNumber(float64(len(items))), nil
	}

	var acc goarith.Number
	for _, item := range items {
		if _, missing := item.(evaluator.NA); missing {
			return evaluator.NewNA(), nil
		}
		n, err := asNumber(item)
		if err != nil {
			return nil, err
		}
		switch {
		case acc == nil:
			acc = n
		case op == "sum" || op == "mean":
			acc = acc.Add(n)
		case op == "min":
			if n.Cmp(acc) < 0 {
				acc = n
			}
		case op == "max":
			if n.Cmp(acc) > 0 {
				acc = n
			}
		}
	}
	if acc == nil {
		if op == "sum" {
			return evaluator.NewNumber(0), nil
		}
		return evaluator.NewNA(), nil
	}
	if op == "mean" {
		acc = acc.RQuo(goarith.AsNumber(len(items)))
	}
	return numberValue(acc), nil
}
