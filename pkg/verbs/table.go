// Package verbs provides quoting-aware table operations consuming the
// quill engine: an ordered in-memory table, data masks over its fields,
// and the registered verb and builtin operations.
package verbs

import (
	"fmt"

	"github.com/quillang/quill/pkg/evaluator"
)

// HandleKind is the handle kind under which tables travel through the
// engine.
const HandleKind = "table"

// Table is an ordered, column-major in-memory table.
type Table struct {
	names  []string
	cols   map[string][]evaluator.Value
	nrows  int
	groups []string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{cols: make(map[string][]evaluator.Value)}
}

// AddColumn appends a column. Every column must have the same length.
func (t *Table) AddColumn(name string, values []evaluator.Value) error {
	if _, ok := t.cols[name]; ok {
		return fmt.Errorf("duplicate column %q", name)
	}
	if len(t.names) > 0 && len(values) != t.nrows {
		return fmt.Errorf("column %q has %d rows, table has %d", name, len(values), t.nrows)
	}
	t.names = append(t.names, name)
	t.cols[name] = values
	t.nrows = len(values)
	return nil
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// NRows returns the number of rows.
func (t *Table) NRows() int { return t.nrows }

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]evaluator.Value, bool) {
	vs, ok := t.cols[name]
	return vs, ok
}

// Groups returns the active grouping keys.
func (t *Table) Groups() []string {
	out := make([]string, len(t.groups))
	copy(out, t.groups)
	return out
}

// Value wraps the table as an opaque engine value.
func (t *Table) Value() evaluator.Value {
	return evaluator.NewHandle(HandleKind, t)
}

// AsTable unwraps a table handle.
func AsTable(v evaluator.Value) (*Table, bool) {
	h, ok := v.(*evaluator.Handle)
	if !ok || h.HandleKind != HandleKind {
		return nil, false
	}
	t, ok := h.Data.(*Table)
	return t, ok
}

// shallow returns a new table with the same grouping and no columns.
func (t *Table) shallow() *Table {
	out := NewTable()
	out.groups = t.Groups()
	return out
}

// subset returns a table with only the given rows, all columns, and the
// same grouping.
func (t *Table) subset(rows []int) *Table {
	out := t.shallow()
	for _, name := range t.names {
		col := t.cols[name]
		vals := make([]evaluator.Value, len(rows))
		for i, r := range rows {
			vals[i] = col[r]
		}
		// AddColumn cannot fail here: names are unique and lengths match.
		_ = out.AddColumn(name, vals)
	}
	return out
}

// groupRows partitions row indices by the table's grouping keys,
// preserving first-appearance order of each group.
func (t *Table) groupRows() [][]int {
	if len(t.groups) == 0 {
		all := make([]int, t.nrows)
		for i := range all {
			all[i] = i
		}
		return [][]int{all}
	}
	keyOf := func(row int) string {
		key := ""
		for _, g := range t.groups {
			key += fmt.Sprintf("%#v\x00", t.cols[g][row])
		}
		return key
	}
	var order []string
	byKey := make(map[string][]int)
	for row := 0; row < t.nrows; row++ {
		k := keyOf(row)
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], row)
	}
	out := make([][]int, len(order))
	for i, k := range order {
		out[i] = byKey[k]
	}
	return out
}
