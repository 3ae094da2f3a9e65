package verbs

import (
	"fmt"

	"github.com/quillang/quill/pkg/ast"
	"github.com/quillang/quill/pkg/diagnostics"
	"github.com/quillang/quill/pkg/evaluator"
)

func registerVerbs(r *Registry) {
	r.Register(evaluator.OpDef{
		Name: "table",
		Params: []evaluator.Param{
			{Name: "columns", Policy: evaluator.Evaluating, Variadic: true},
		},
		Execute: opTable,
	})
	r.Register(evaluator.OpDef{
		Name: "group_by",
		Params: []evaluator.Param{
			{Name: "data", Policy: evaluator.Evaluating},
			{Name: "keys", Policy: evaluator.Quoting, Variadic: true},
		},
		Execute: opGroupBy,
	})
	r.Register(evaluator.OpDef{
		Name: "select",
		Params: []evaluator.Param{
			{Name: "data", Policy: evaluator.Evaluating},
			{Name: "columns", Policy: evaluator.Quoting, Variadic: true},
		},
		Execute: opSelect,
	})
	r.Register(evaluator.OpDef{
		Name: "filter",
		Params: []evaluator.Param{
			{Name: "data", Policy: evaluator.Evaluating},
			{Name: "cond", Policy: evaluator.Quoting},
		},
		Execute: opFilter,
	})
	r.Register(evaluator.OpDef{
		Name: "mutate",
		Params: []evaluator.Param{
			{Name: "data", Policy: evaluator.Evaluating},
			{Name: "exprs", Policy: evaluator.Quoting, Variadic: true},
		},
		Execute: opMutate,
	})
	r.Register(evaluator.OpDef{
		Name: "summarise",
		Params: []evaluator.Param{
			{Name: "data", Policy: evaluator.Evaluating},
			{Name: "exprs", Policy: evaluator.Quoting, Variadic: true},
		},
		Execute: opSummarise,
	})
}

func tableArg(call *evaluator.OpCall) (*Table, error) {
	b, ok := call.Arg("data")
	if !ok {
		return nil, &evaluator.RuntimeError{
			Code:    diagnostics.EOpArgs,
			Message: fmt.Sprintf("%s requires a table", call.Op.Name),
		}
	}
	t, isTable := AsTable(b.Value)
	if !isTable {
		return nil, &evaluator.RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("%s expects a table, got %T", call.Op.Name, b.Value),
		}
	}
	return t, nil
}

// columnName extracts a column reference from a captured key
// expression: a bare symbol, a string literal, or an unquoted quosure
// over either.
func columnName(q *evaluator.Quosure) (string, error) {
	switch e := q.Expr.(type) {
	case *ast.Symbol:
		return e.Name, nil
	case *ast.Literal:
		switch v := e.Val.(type) {
		case string:
			return v, nil
		case evaluator.String:
			return v.Value, nil
		case *evaluator.Quosure:
			return columnName(v)
		}
	}
	return "", &evaluator.RuntimeError{
		Code:    diagnostics.EType,
		Message: "column reference must be a symbol or string",
	}
}

func opTable(call *evaluator.OpCall) (evaluator.Value, error) {
	t := NewTable()
	for _, b := range call.All("columns") {
		if b.Name == "" {
			return nil, &evaluator.RuntimeError{
				Code:    diagnostics.EOpArgs,
				Message: "table columns must be named",
			}
		}
		list, ok := b.Value.(evaluator.List)
		if !ok {
			return nil, &evaluator.RuntimeError{
				Code:    diagnostics.EType,
				Message: fmt.Sprintf("column %q must be an ordered sequence", b.Name),
			}
		}
		if err := t.AddColumn(b.Name, list.Items()); err != nil {
			return nil, &evaluator.RuntimeError{Code: diagnostics.EOpArgs, Message: err.Error()}
		}
	}
	return t.Value(), nil
}

func opGroupBy(call *evaluator.OpCall) (evaluator.Value, error) {
	t, err := tableArg(call)
	if err != nil {
		return nil, err
	}
	out := t.subset(allRows(t))
	out.groups = nil
	for _, b := range call.All("keys") {
		name, err := columnName(b.Quosure)
		if err != nil {
			return nil, err
		}
		if _, ok := t.Column(name); !ok {
			return nil, unknownColumn(name)
		}
		out.groups = append(out.groups, name)
	}
	return out.Value(), nil
}

func opSelect(call *evaluator.OpCall) (evaluator.Value, error) {
	t, err := tableArg(call)
	if err != nil {
		return nil, err
	}
	out := t.shallow()
	out.nrows = t.nrows
	for _, b := range call.All("columns") {
		name, err := columnName(b.Quosure)
		if err != nil {
			return nil, err
		}
		col, ok := t.Column(name)
		if !ok {
			return nil, unknownColumn(name)
		}
		if err := out.AddColumn(name, col); err != nil {
			return nil, &evaluator.RuntimeError{Code: diagnostics.EOpArgs, Message: err.Error()}
		}
	}
	return out.Value(), nil
}

func opFilter(call *evaluator.OpCall) (evaluator.Value, error) {
	t, err := tableArg(call)
	if err != nil {
		return nil, err
	}
	b, _ := call.Arg("cond")
	q := b.Quosure
	var keep []int
	for row := 0; row < t.NRows(); row++ {
		env := q.Env.MaskedChild(RowMask{Table: t, Row: row})
		val, err := call.Evaluator().EvalQuosure(q, env)
		if err != nil {
			return nil, err
		}
		if evaluator.Truthiness(val) {
			keep = append(keep, row)
		}
	}
	return t.subset(keep).Value(), nil
}

func opMutate(call *evaluator.OpCall) (evaluator.Value, error) {
	t, err := tableArg(call)
	if err != nil {
		return nil, err
	}
	out := t.subset(allRows(t))
	for _, b := range call.All("exprs") {
		if b.Name == "" {
			return nil, &evaluator.RuntimeError{
				Code:    diagnostics.EOpArgs,
				Message: "mutate expressions must be named",
			}
		}
		q := b.Quosure
		col := make([]evaluator.Value, out.NRows())
		for row := 0; row < out.NRows(); row++ {
			env := q.Env.MaskedChild(RowMask{Table: out, Row: row})
			val, err := call.Evaluator().EvalQuosure(q, env)
			if err != nil {
				return nil, err
			}
			col[row] = val
		}
		// Recoding an existing column replaces it in place.
		if _, exists := out.Column(b.Name); exists {
			out.cols[b.Name] = col
			continue
		}
		if err := out.AddColumn(b.Name, col); err != nil {
			return nil, &evaluator.RuntimeError{Code: diagnostics.EOpArgs, Message: err.Error()}
		}
	}
	return out.Value(), nil
}

func opSummarise(call *evaluator.OpCall) (evaluator.Value, error) {
	t, err := tableArg(call)
	if err != nil {
		return nil, err
	}
	exprs := call.All("exprs")
	for _, b := range exprs {
		if b.Name == "" {
			return nil, &evaluator.RuntimeError{
				Code:    diagnostics.EOpArgs,
				Message: "summarise expressions must be named",
			}
		}
	}

	partitions := t.groupRows()
	out := NewTable()

	keyCols := make(map[string][]evaluator.Value, len(t.groups))
	aggCols := make(map[string][]evaluator.Value, len(exprs))
	for _, rows := range partitions {
		sub := t.subset(rows)
		for _, g := range t.groups {
			col, _ := sub.Column(g)
			keyCols[g] = append(keyCols[g], col[0])
		}
		for _, b := range exprs {
			q := b.Quosure
			env := q.Env.MaskedChild(ColMask{Table: sub})
			val, err := call.Evaluator().EvalQuosure(q, env)
			if err != nil {
				return nil, err
			}
			aggCols[b.Name] = append(aggCols[b.Name], val)
		}
	}
	for _, g := range t.groups {
		if err := out.AddColumn(g, keyCols[g]); err != nil {
			return nil, &evaluator.RuntimeError{Code: diagnostics.EOpArgs, Message: err.Error()}
		}
	}
	for _, b := range exprs {
		if err := out.AddColumn(b.Name, aggCols[b.Name]); err != nil {
			return nil, &evaluator.RuntimeError{Code: diagnostics.EOpArgs, Message: err.Error()}
		}
	}
	return out.Value(), nil
}

func allRows(t *Table) []int {
	rows := make([]int, t.NRows())
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func unknownColumn(name string) error {
	return &evaluator.RuntimeError{
		Code:    diagnostics.EUnbound,
		Message: fmt.Sprintf("unknown column %q", name),
	}
}
