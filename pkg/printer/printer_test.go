package printer_test

import (
	"strings"
	"testing"

	"github.com/quillang/quill/pkg/ast"
	"github.com/quillang/quill/pkg/evaluator"
	"github.com/quillang/quill/pkg/printer"
)

func TestDeparse(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expr
		want string
	}{
		{"symbol", ast.Sym("hwy"), "hwy"},
		{"number", ast.Lit(2.0), "2"},
		{"fraction", ast.Lit(31.2), "31.2"},
		{"string", ast.Lit("audi"), `"audi"`},
		{"bool", ast.Lit(true), "true"},
		{"missing", ast.Lit(nil), "na"},
		{
			"call",
			ast.Call("mean", ast.Pos(ast.Sym("hwy"))),
			"(mean hwy)",
		},
		{
			"named args",
			ast.Call("summarise", ast.Pos(ast.Sym("data")), ast.Named("m", ast.Call("mean", ast.Pos(ast.Sym("hwy"))))),
			"(summarise data :m (mean hwy))",
		},
		{
			"ordinary assignment",
			ast.Assign(ast.Sym("x"), ast.Lit(1.0)),
			"(= x 1)",
		},
		{
			"name substitution assignment",
			ast.Assign(ast.NameSub(ast.Unquote(ast.Sym("name"))), ast.Sym("v")),
			"(:= (namesub !!name) v)",
		},
		{
			"unquote",
			ast.Call("f", ast.Pos(ast.Unquote(ast.Sym("x")))),
			"(f !!x)",
		},
		{
			"splice",
			ast.Call("f", ast.Pos(ast.Splice(ast.Sym("keys")))),
			"(f !!!keys)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := printer.Deparse(tt.expr); got != tt.want {
				t.Errorf("Deparse = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	list := evaluator.NewList([]evaluator.Element{
		{Value: evaluator.NewNumber(1)},
		{Name: "hi", Value: evaluator.NewNumber(9)},
	})
	if got := printer.FormatValue(list); got != "(1 :hi 9)" {
		t.Errorf("list format = %q", got)
	}
	if got := printer.FormatValue(evaluator.NewHandle("table", nil)); got != "<table>" {
		t.Errorf("handle format = %q", got)
	}
}

func TestDisplayQuosureTwoPart(t *testing.T) {
	env := evaluator.NewGlobalEnv()
	q := evaluator.NewQuosure(ast.Call("mean", ast.Pos(ast.Sym("hwy"))), env)

	out := printer.DisplayQuosure(q)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("display = %q", out)
	}
	if lines[0] != "<quosure>" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "expr: (mean hwy)" {
		t.Errorf("expr line = %q", lines[1])
	}
	if lines[2] != "env:  global" {
		t.Errorf("env line = %q", lines[2])
	}
}

func TestDisplayQuosureChildEnvTag(t *testing.T) {
	env := evaluator.NewGlobalEnv().Child()
	q := evaluator.NewQuosure(ast.Sym("x"), env)
	out := printer.DisplayQuosure(q)
	if !strings.Contains(out, "env:  0x") {
		t.Errorf("child env should display an address tag: %q", out)
	}
}

func TestFormatEmbeddedQuosure(t *testing.T) {
	env := evaluator.NewGlobalEnv()
	q := evaluator.NewQuosure(ast.Call("mean", ast.Pos(ast.Sym("hwy"))), env)
	expr := ast.Call("summarise", ast.Pos(ast.Lit(q)))
	if got := printer.Deparse(expr); got != "(summarise ^(mean hwy))" {
		t.Errorf("Deparse = %q", got)
	}
}
