// Package reader implements the s-expression reader used by the REPL
// and the conformance harness. It is a convenience surface: trees are
// ordinarily built programmatically through the ast package.
package reader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quillang/quill/pkg/ast"
	"github.com/quillang/quill/pkg/diagnostics"
)

type tokenType int

const (
	tokLParen tokenType = iota
	tokRParen
	tokUnquote // !!
	tokSplice  // !!!
	tokKeyword // :name
	tokNumber
	tokString
	tokSymbol
)

type token struct {
	typ  tokenType
	text string
	line int
	col  int
}

type reader struct {
	tokens []token
	index  int
	diags  []diagnostics.Diagnostic
}

// Read parses a single form from src. On failure the expression is nil
// and the diagnostics describe what went wrong.
func Read(src string) (ast.Expr, []diagnostics.Diagnostic) {
	tokens, diags := tokenize(src)
	if len(diags) > 0 {
		return nil, diags
	}
	r := &reader{tokens: tokens}
	if _, ok := r.peek(); !ok {
		r.errorf(diagnostics.EParse, 0, 0, "empty input")
		return nil, r.diags
	}
	expr := r.readForm()
	if expr == nil {
		return nil, r.diags
	}
	if t, ok := r.peek(); ok {
		r.errorf(diagnostics.EParse, t.line, t.col, "unexpected %q after expression", t.text)
		return nil, r.diags
	}
	return expr, nil
}

// ReadAll parses every form in src, in order.
func ReadAll(src string) ([]ast.Expr, []diagnostics.Diagnostic) {
	tokens, diags := tokenize(src)
	if len(diags) > 0 {
		return nil, diags
	}
	r := &reader{tokens: tokens}
	var out []ast.Expr
	for {
		if _, ok := r.peek(); !ok {
			return out, nil
		}
		expr := r.readForm()
		if expr == nil {
			return nil, r.diags
		}
		out = append(out, expr)
	}
}

// IsIncomplete reports whether the diagnostics indicate input that ran
// out mid-form, so a REPL can prompt for a continuation line.
func IsIncomplete(diags []diagnostics.Diagnostic) bool {
	for _, d := range diags {
		if d.Code == diagnostics.EParse && strings.Contains(d.Message, "unexpected end of input") {
			return true
		}
	}
	return false
}

func (r *reader) errorf(code string, line, col int, format string, args ...any) {
	r.diags = append(r.diags, diagnostics.MakeDiag(code, fmt.Sprintf(format, args...), line, col, ""))
}

func (r *reader) peek() (token, bool) {
	if r.index >= len(r.tokens) {
		return token{}, false
	}
	return r.tokens[r.index], true
}

func (r *reader) next() (token, bool) {
	t, ok := r.peek()
	if ok {
		r.index++
	}
	return t, ok
}

func (r *reader) readForm() ast.Expr {
	t, ok := r.next()
	if !ok {
		r.errorf(diagnostics.EParse, 0, 0, "unexpected end of input")
		return nil
	}
	switch t.typ {
	case tokLParen:
		return r.readList(t)
	case tokRParen:
		r.errorf(diagnostics.EParse, t.line, t.col, "unexpected %q", ")")
		return nil
	case tokUnquote:
		operand := r.readForm()
		if operand == nil {
			return nil
		}
		return ast.Unquote(operand)
	case tokSplice:
		operand := r.readForm()
		if operand == nil {
			return nil
		}
		return ast.Splice(operand)
	case tokKeyword:
		r.errorf(diagnostics.EParse, t.line, t.col, "argument name %q outside a call", t.text)
		return nil
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			r.errorf(diagnostics.ELex, t.line, t.col, "bad number %q", t.text)
			return nil
		}
		return ast.Lit(f)
	case tokString:
		return ast.Lit(t.text)
	default:
		switch t.text {
		case "true":
			return ast.Lit(true)
		case "false":
			return ast.Lit(false)
		case "na":
			return ast.Lit(nil)
		}
		return ast.Sym(t.text)
	}
}

func (r *reader) readList(open token) ast.Expr {
	head, ok := r.next()
	if !ok {
		r.errorf(diagnostics.EParse, open.line, open.col, "unexpected end of input in list")
		return nil
	}
	if head.typ != tokSymbol {
		r.errorf(diagnostics.EParse, head.line, head.col, "call head must be a symbol, got %q", head.text)
		return nil
	}

	switch head.text {
	case "=":
		return r.readAssign(open, false)
	case ":=":
		return r.readAssign(open, true)
	case "namesub":
		operand := r.readForm()
		if operand == nil {
			return nil
		}
		if !r.expectClose(open) {
			return nil
		}
		return ast.NameSub(operand)
	}

	var args []ast.Arg
	for {
		t, ok := r.peek()
		if !ok {
			r.errorf(diagnostics.EParse, open.line, open.col, "unexpected end of input in list")
			return nil
		}
		if t.typ == tokRParen {
			r.index++
			return &ast.CallNode{Head: ast.Sym(head.text), Args: args}
		}
		name := ""
		if t.typ == tokKeyword {
			r.index++
			name = t.text
		}
		value := r.readForm()
		if value == nil {
			return nil
		}
		args = append(args, ast.Arg{Name: name, Value: value})
	}
}

// readAssign parses (= target value) and (:= target value). The second
// form wraps its target in a name-substitution marker unless the source
// already wrote one.
func (r *reader) readAssign(open token, nameSub bool) ast.Expr {
	target := r.readForm()
	if target == nil {
		return nil
	}
	value := r.readForm()
	if value == nil {
		return nil
	}
	if !r.expectClose(open) {
		return nil
	}
	if nameSub {
		if _, ok := target.(*ast.NameSubMarker); !ok {
			target = ast.NameSub(target)
		}
	}
	return ast.Assign(target, value)
}

func (r *reader) expectClose(open token) bool {
	t, ok := r.next()
	if !ok {
		r.errorf(diagnostics.EParse, open.line, open.col, "unexpected end of input in list")
		return false
	}
	if t.typ != tokRParen {
		r.errorf(diagnostics.EParse, t.line, t.col, "expected %q, got %q", ")", t.text)
		return false
	}
	return true
}
