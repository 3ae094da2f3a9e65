package verbs

import (
	"github.com/quillang/quill/pkg/evaluator"
)

// RowMask resolves a table's column names to the value in a single row.
// It implements evaluator.Mask, so masked lookups see the row's fields
// before any environment binding.
type RowMask struct {
	Table *Table
	Row   int
}

// Resolve implements evaluator.Mask.
func (m RowMask) Resolve(name string) (evaluator.Value, bool) {
	col, ok := m.Table.Column(name)
	if !ok {
		return nil, false
	}
	return col[m.Row], true
}

// ColMask resolves a table's column names to the whole column as an
// ordered sequence, for aggregation expressions.
type ColMask struct {
	Table *Table
}

// Resolve implements evaluator.Mask.
func (m ColMask) Resolve(name string) (evaluator.Value, bool) {
	col, ok := m.Table.Column(name)
	if !ok {
		return nil, false
	}
	elems := make([]evaluator.Element, len(col))
	for i, v := range col {
		elems[i] = evaluator.Element{Value: v}
	}
	return evaluator.NewList(elems), true
}
