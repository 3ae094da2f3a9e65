// Package printer deparses expression trees and formats captured
// values for display.
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quillang/quill/pkg/ast"
	"github.com/quillang/quill/pkg/evaluator"
)

// Deparse renders an expression tree back to reader syntax.
func Deparse(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Symbol:
		return n.Name
	case *ast.Literal:
		return deparseVal(n.Val)
	case *ast.CallNode:
		var b strings.Builder
		b.WriteByte('(')
		b.WriteString(n.Head.Name)
		for _, arg := range n.Args {
			b.WriteByte(' ')
			if arg.Name != "" {
				b.WriteByte(':')
				b.WriteString(arg.Name)
				b.WriteByte(' ')
			}
			b.WriteString(Deparse(arg.Value))
		}
		b.WriteByte(')')
		return b.String()
	case *ast.AssignNode:
		op := "="
		switch n.Target.(type) {
		case *ast.NameSubMarker, *ast.UnquoteMarker:
			op = ":="
		}
		return fmt.Sprintf("(%s %s %s)", op, Deparse(n.Target), Deparse(n.Value))
	case *ast.UnquoteMarker:
		return "!!" + Deparse(n.Operand)
	case *ast.SpliceMarker:
		return "!!!" + Deparse(n.Operand)
	case *ast.NameSubMarker:
		return "(namesub " + Deparse(n.Operand) + ")"
	}
	return fmt.Sprintf("<%T>", e)
}

func deparseVal(v any) string {
	switch x := v.(type) {
	case nil:
		return "na"
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case int:
		return strconv.Itoa(x)
	case string:
		return strconv.Quote(x)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = deparseVal(item)
		}
		return "(c " + strings.Join(parts, " ") + ")"
	case evaluator.Value:
		return FormatValue(x)
	}
	return fmt.Sprintf("<%T>", v)
}

// FormatValue renders a runtime value for display.
func FormatValue(v evaluator.Value) string {
	switch x := v.(type) {
	case evaluator.NA:
		return "na"
	case evaluator.Bool:
		return strconv.FormatBool(x.Value)
	case evaluator.Number:
		return formatNumber(x.Value)
	case evaluator.String:
		return strconv.Quote(x.Value)
	case evaluator.List:
		parts := make([]string, 0, len(x.Elements))
		for _, e := range x.Elements {
			if e.Name != "" {
				parts = append(parts, ":"+e.Name+" "+FormatValue(e.Value))
			} else {
				parts = append(parts, FormatValue(e.Value))
			}
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *evaluator.Quosure:
		// Inline form: a caret marks the captured expression.
		return "^" + Deparse(x.Expr)
	case *evaluator.Handle:
		return "<" + x.HandleKind + ">"
	}
	return fmt.Sprintf("<%T>", v)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// DisplayQuosure renders a quosure in the two-part convention: the
// captured expression and a tag for its environment.
func DisplayQuosure(q *evaluator.Quosure) string {
	var b strings.Builder
	b.WriteString("<quosure>\n")
	b.WriteString("expr: ")
	b.WriteString(Deparse(q.Expr))
	b.WriteString("\nenv:  ")
	b.WriteString(q.Env.Label())
	return b.String()
}
