package verbs

import (
	"fmt"
	"strings"

	"github.com/quillang/quill/pkg/printer"
)

// FormatTable renders a table as aligned columns for display.
func FormatTable(t *Table) string {
	names := t.Names()
	if len(names) == 0 {
		return "<table: empty>"
	}
	widths := make([]int, len(names))
	cells := make([][]string, t.NRows())
	for i, name := range names {
		widths[i] = len(name)
	}
	for row := 0; row < t.NRows(); row++ {
		cells[row] = make([]string, len(names))
		for i, name := range names {
			col, _ := t.Column(name)
			s := printer.FormatValue(col[row])
			cells[row][i] = s
			if len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<table: %d x %d>", t.NRows(), len(names))
	if g := t.Groups(); len(g) > 0 {
		fmt.Fprintf(&b, " groups: %s", strings.Join(g, ", "))
	}
	b.WriteByte('\n')
	for i, name := range names {
		if i > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%-*s", widths[i], name)
	}
	for _, row := range cells {
		b.WriteByte('\n')
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[i], cell)
		}
	}
	return b.String()
}
