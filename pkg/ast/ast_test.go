package ast_test

import (
	"testing"

	"github.com/quillang/quill/pkg/ast"
)

func TestSymbolContentEquality(t *testing.T) {
	a := ast.Sym("manufacturer")
	b := ast.Sym("manufacturer")
	if a == b {
		t.Fatal("distinct nodes expected")
	}
	if !ast.Equal(a, b) {
		t.Error("symbols with the same name must compare equal")
	}
	if a.Hash() != b.Hash() {
		t.Error("equal symbols must share a content hash")
	}
	if ast.Equal(a, ast.Sym("model")) {
		t.Error("different names must not compare equal")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a    ast.Expr
		b    ast.Expr
		want bool
	}{
		{"literal numbers", ast.Lit(2.0), ast.Lit(2.0), true},
		{"literal mismatch", ast.Lit(2.0), ast.Lit(3.0), false},
		{"literal kinds", ast.Lit("2"), ast.Lit(2.0), false},
		{"missing markers", ast.Lit(nil), ast.Lit(nil), true},
		{
			"calls",
			ast.Call("mean", ast.Pos(ast.Sym("hwy"))),
			ast.Call("mean", ast.Pos(ast.Sym("hwy"))),
			true,
		},
		{
			"argument names matter",
			ast.Call("f", ast.Named("x", ast.Lit(1.0))),
			ast.Call("f", ast.Pos(ast.Lit(1.0))),
			false,
		},
		{
			"argument order matters",
			ast.Call("f", ast.Pos(ast.Lit(1.0)), ast.Pos(ast.Lit(2.0))),
			ast.Call("f", ast.Pos(ast.Lit(2.0)), ast.Pos(ast.Lit(1.0))),
			false,
		},
		{
			"assignments",
			ast.Assign(ast.Sym("x"), ast.Lit(1.0)),
			ast.Assign(ast.Sym("x"), ast.Lit(1.0)),
			true,
		},
		{
			"markers",
			ast.Unquote(ast.Sym("x")),
			ast.Unquote(ast.Sym("x")),
			true,
		},
		{
			"marker kinds differ",
			ast.Unquote(ast.Sym("x")),
			ast.Splice(ast.Sym("x")),
			false,
		},
		{
			"sequences",
			ast.Lit([]any{"a", "b"}),
			ast.Lit([]any{"a", "b"}),
			true,
		},
		{
			"sequence length",
			ast.Lit([]any{"a", "b"}),
			ast.Lit([]any{"a"}),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ast.Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCallPreservesArgumentOrder(t *testing.T) {
	call := ast.Call("summarise",
		ast.Pos(ast.Sym("data")),
		ast.Named("mean_hwy", ast.Call("mean", ast.Pos(ast.Sym("hwy")))),
		ast.Named("n", ast.Call("n", ast.Pos(ast.Sym("hwy")))),
	)
	names := []string{"", "mean_hwy", "n"}
	for i, arg := range call.Args {
		if arg.Name != names[i] {
			t.Errorf("arg %d name = %q, want %q", i, arg.Name, names[i])
		}
	}
}
