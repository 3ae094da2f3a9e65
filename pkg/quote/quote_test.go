package quote_test

import (
	"errors"
	"testing"

	"github.com/quillang/quill/pkg/ast"
	"github.com/quillang/quill/pkg/diagnostics"
	"github.com/quillang/quill/pkg/evaluator"
	"github.com/quillang/quill/pkg/quote"
)

type mapMask map[string]evaluator.Value

func (m mapMask) Resolve(name string) (evaluator.Value, bool) {
	v, ok := m[name]
	return v, ok
}

// newEvaluator returns an evaluator with an add operation and a tick
// operation recording evaluation order.
func newEvaluator(t *testing.T, order *[]string) *evaluator.Evaluator {
	t.Helper()
	ops := map[string]*evaluator.OpDef{
		"add": {
			Name: "add",
			Params: []evaluator.Param{
				{Name: "x", Policy: evaluator.Evaluating},
				{Name: "y", Policy: evaluator.Evaluating},
			},
			Execute: func(call *evaluator.OpCall) (evaluator.Value, error) {
				x, _ := call.Arg("x")
				y, _ := call.Arg("y")
				return evaluator.NewNumber(x.Value.(evaluator.Number).Value + y.Value.(evaluator.Number).Value), nil
			},
		},
		"tick": {
			Name: "tick",
			Params: []evaluator.Param{
				{Name: "tag", Policy: evaluator.Evaluating},
			},
			Execute: func(call *evaluator.OpCall) (evaluator.Value, error) {
				tag, _ := call.Arg("tag")
				if order != nil {
					*order = append(*order, tag.Value.(evaluator.String).Value)
				}
				return tag.Value, nil
			},
		},
	}
	return evaluator.New(evaluator.Options{Ops: ops})
}

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	var rt *evaluator.RuntimeError
	if !errors.As(err, &rt) {
		t.Fatalf("expected RuntimeError, got %T: %v", err, err)
	}
	if rt.Code != code {
		t.Errorf("error code = %s, want %s", rt.Code, code)
	}
}

func mustRewrite(t *testing.T, ev *evaluator.Evaluator, e ast.Expr, env *evaluator.Env) ast.Expr {
	t.Helper()
	out, err := quote.Rewrite(ev, e, env)
	if err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}
	return out
}

func TestConstructRoundTrip(t *testing.T) {
	ev := newEvaluator(t, nil)
	env := evaluator.NewGlobalEnv()
	env.Set("x", evaluator.NewNumber(2))

	exprs := []ast.Expr{
		ast.Lit(42.0),
		ast.Sym("x"),
		ast.Call("add", ast.Pos(ast.Sym("x")), ast.Pos(ast.Lit(3.0))),
		ast.Call("add",
			ast.Pos(ast.Call("add", ast.Pos(ast.Lit(1.0)), ast.Pos(ast.Lit(2.0)))),
			ast.Pos(ast.Sym("x"))),
	}
	for _, e := range exprs {
		q, err := quote.Construct(ev, e, env)
		if err != nil {
			t.Fatalf("construct %v: %v", e, err)
		}
		direct, err := ev.Eval(e, env)
		if err != nil {
			t.Fatalf("direct eval: %v", err)
		}
		viaQuosure, err := ev.EvalQuosure(q, nil)
		if err != nil {
			t.Fatalf("quosure eval: %v", err)
		}
		if !evaluator.EqualValues(direct, viaQuosure) {
			t.Errorf("round trip mismatch: %v vs %v", direct, viaQuosure)
		}
	}
}

func TestConstructBindsConstructionEnv(t *testing.T) {
	ev := newEvaluator(t, nil)
	env := evaluator.NewGlobalEnv()
	q, err := quote.Construct(ev, ast.Sym("x"), env)
	if err != nil {
		t.Fatal(err)
	}
	if q.Env != env {
		t.Error("construct must bind the construction-site environment")
	}
}

func TestCaptureIdempotence(t *testing.T) {
	callerEnv := evaluator.NewGlobalEnv()
	frame := evaluator.NewFrame(callerEnv).Bind("p", ast.Sym("manufacturer"))

	first, err := quote.Capture(frame, "p")
	if err != nil {
		t.Fatal(err)
	}
	second, err := quote.Capture(frame, "p")
	if err != nil {
		t.Fatal(err)
	}
	if !first.EqualQuosure(second) {
		t.Error("repeated capture must return an equal quosure")
	}

	// Propagate through an intermediate capturing call: the quosure
	// must come back unchanged, not rebound to the intermediate frame.
	intermediateEnv := evaluator.NewEnv(callerEnv)
	inner := evaluator.NewFrame(intermediateEnv).Bind("p", ast.Lit(first))
	propagated, err := quote.Capture(inner, "p")
	if err != nil {
		t.Fatal(err)
	}
	if propagated != first {
		t.Error("capture of a quosure-valued parameter must be identity")
	}
	if propagated.Env != callerEnv {
		t.Error("propagated quosure rebound to intermediate environment")
	}
}

func TestUnquotePlainValue(t *testing.T) {
	ev := newEvaluator(t, nil)
	env := evaluator.NewGlobalEnv()
	env.Set("v", evaluator.NewNumber(5))

	got := mustRewrite(t, ev, ast.Call("mean", ast.Pos(ast.Unquote(ast.Sym("v")))), env)
	want := ast.Call("mean", ast.Pos(ast.Lit(evaluator.NewNumber(5))))
	if !ast.Equal(got, want) {
		t.Errorf("rewrite = %v, want %v", got, want)
	}
}

func TestUnquoteQuosureSplicesExpression(t *testing.T) {
	ev := newEvaluator(t, nil)
	env := evaluator.NewGlobalEnv()
	q := evaluator.NewQuosure(ast.Call("mean", ast.Pos(ast.Sym("hwy"))), env)
	env.Set("q", q)

	got := mustRewrite(t, ev, ast.Call("summarise", ast.Pos(ast.Unquote(ast.Sym("q")))), env)
	want := ast.Call("summarise", ast.Pos(ast.Call("mean", ast.Pos(ast.Sym("hwy")))))
	if !ast.Equal(got, want) {
		t.Errorf("rewrite = %v, want %v", got, want)
	}
}

func TestUnquoteOutsideQuotingContext(t *testing.T) {
	ev := newEvaluator(t, nil)
	env := evaluator.NewGlobalEnv()
	for _, e := range []ast.Expr{
		ast.Unquote(ast.Lit(1.0)),
		ast.Splice(ast.Lit(1.0)),
		ast.NameSub(ast.Lit("x")),
	} {
		_, err := quote.Rewrite(ev, e, env)
		expectCode(t, err, diagnostics.EInvalidUnquote)
	}
}

func TestSpliceOutsideArgumentList(t *testing.T) {
	ev := newEvaluator(t, nil)
	env := evaluator.NewGlobalEnv()
	env.Set("xs", evaluator.FromGo([]any{1.0, 2.0}))

	_, err := quote.Rewrite(ev,
		ast.Assign(ast.Sym("x"), ast.Splice(ast.Sym("xs"))), env)
	expectCode(t, err, diagnostics.EInvalidUnquote)
}

func TestSpliceExpansion(t *testing.T) {
	ev := newEvaluator(t, nil)
	env := evaluator.NewGlobalEnv()
	env.Set("keys", evaluator.FromGo([]any{"a", "b", "c"}))

	got := mustRewrite(t, ev, ast.Call("f", ast.Pos(ast.Splice(ast.Sym("keys")))), env)
	want := ast.Call("f",
		ast.Pos(ast.Lit(evaluator.NewString("a"))),
		ast.Pos(ast.Lit(evaluator.NewString("b"))),
		ast.Pos(ast.Lit(evaluator.NewString("c"))),
	)
	if !ast.Equal(got, want) {
		t.Errorf("rewrite = %v, want %v", got, want)
	}
}

func TestSpliceEmpty(t *testing.T) {
	ev := newEvaluator(t, nil)
	env := evaluator.NewGlobalEnv()
	env.Set("keys", evaluator.NewList(nil))

	got := mustRewrite(t, ev, ast.Call("f", ast.Pos(ast.Splice(ast.Sym("keys")))), env)
	call, ok := got.(*ast.CallNode)
	if !ok || len(call.Args) != 0 {
		t.Errorf("empty splice must degenerate to zero arguments, got %v", got)
	}
}

func TestSplicePreservesNamesAndSiblings(t *testing.T) {
	ev := newEvaluator(t, nil)
	env := evaluator.NewGlobalEnv()
	env.Set("pairs", evaluator.NewList([]evaluator.Element{
		{Name: "lo", Value: evaluator.NewNumber(1)},
		{Name: "hi", Value: evaluator.NewNumber(9)},
	}))

	got := mustRewrite(t, ev, ast.Call("f",
		ast.Pos(ast.Lit("first")),
		ast.Pos(ast.Splice(ast.Sym("pairs"))),
		ast.Pos(ast.Lit("last")),
	), env)
	want := ast.Call("f",
		ast.Pos(ast.Lit("first")),
		ast.Named("lo", ast.Lit(evaluator.NewNumber(1))),
		ast.Named("hi", ast.Lit(evaluator.NewNumber(9))),
		ast.Pos(ast.Lit("last")),
	)
	if !ast.Equal(got, want) {
		t.Errorf("rewrite = %v, want %v", got, want)
	}
}

func TestSpliceTypeError(t *testing.T) {
	ev := newEvaluator(t, nil)
	env := evaluator.NewGlobalEnv()
	_, err := quote.Rewrite(ev,
		ast.Call("f", ast.Pos(ast.Splice(ast.Lit(7.0)))), env)
	expectCode(t, err, diagnostics.ESpliceType)
}

func TestNameSubstitutionAssignment(t *testing.T) {
	ev := newEvaluator(t, nil)
	env := evaluator.NewGlobalEnv()

	got := mustRewrite(t, ev,
		ast.Assign(ast.NameSub(ast.Unquote(ast.Lit("total"))), ast.Lit(1.0)), env)
	want := ast.Assign(ast.Sym("total"), ast.Lit(1.0))
	if !ast.Equal(got, want) {
		t.Errorf("rewrite = %v, want %v", got, want)
	}
}

func TestNameSubstitutionFromQuosure(t *testing.T) {
	ev := newEvaluator(t, nil)
	env := evaluator.NewGlobalEnv()
	env.Set("name", evaluator.NewQuosure(ast.Sym("mean_hwy"), env))

	got := mustRewrite(t, ev,
		ast.Assign(ast.NameSub(ast.Unquote(ast.Sym("name"))), ast.Lit(1.0)), env)
	want := ast.Assign(ast.Sym("mean_hwy"), ast.Lit(1.0))
	if !ast.Equal(got, want) {
		t.Errorf("rewrite = %v, want %v", got, want)
	}
}

func TestAmbiguousTargetWithoutNameSub(t *testing.T) {
	ev := newEvaluator(t, nil)
	env := evaluator.NewGlobalEnv()

	_, err := quote.Rewrite(ev,
		ast.Assign(ast.Unquote(ast.Lit("total")), ast.Lit(1.0)), env)
	expectCode(t, err, diagnostics.EAmbiguousTarget)

	// Same in argument position.
	_, err = quote.Rewrite(ev,
		ast.Call("f", ast.Pos(ast.Assign(ast.Unquote(ast.Lit("total")), ast.Lit(1.0)))), env)
	expectCode(t, err, diagnostics.EAmbiguousTarget)
}

func TestNameSubArgumentBecomesNamed(t *testing.T) {
	ev := newEvaluator(t, nil)
	env := evaluator.NewGlobalEnv()
	env.Set("agg", evaluator.NewQuosure(ast.Call("mean", ast.Pos(ast.Sym("hwy"))), env))

	got := mustRewrite(t, ev, ast.Call("summarise",
		ast.Pos(ast.Sym("data")),
		ast.Pos(ast.Assign(
			ast.NameSub(ast.Unquote(ast.Lit("mean_hwy"))),
			ast.Unquote(ast.Sym("agg")),
		)),
	), env)
	want := ast.Call("summarise",
		ast.Pos(ast.Sym("data")),
		ast.Named("mean_hwy", ast.Call("mean", ast.Pos(ast.Sym("hwy")))),
	)
	if !ast.Equal(got, want) {
		t.Errorf("rewrite = %v, want %v", got, want)
	}
}

func TestRewriteOrderAndSingleEvaluation(t *testing.T) {
	var order []string
	ev := newEvaluator(t, &order)
	env := evaluator.NewGlobalEnv()

	_ = mustRewrite(t, ev, ast.Call("f",
		ast.Pos(ast.Unquote(ast.Call("tick", ast.Pos(ast.Lit("a"))))),
		ast.Pos(ast.Unquote(ast.Call("tick", ast.Pos(ast.Lit("b"))))),
		ast.Pos(ast.Unquote(ast.Call("tick", ast.Pos(ast.Lit("c"))))),
	), env)
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("unquote operands ran %v, want [a b c] exactly once each", order)
	}
}

func TestRewriteSharesUntouchedSubtrees(t *testing.T) {
	ev := newEvaluator(t, nil)
	env := evaluator.NewGlobalEnv()

	inner := ast.Call("mean", ast.Pos(ast.Sym("hwy")))
	got := mustRewrite(t, ev, ast.Call("f", ast.Pos(inner)), env)
	call := got.(*ast.CallNode)
	if call.Args[0].Value != ast.Expr(inner) {
		t.Error("marker-free subtree should be shared, not copied")
	}
}

func TestMaskResolutionScenario(t *testing.T) {
	ev := newEvaluator(t, nil)
	callerEnv := evaluator.NewGlobalEnv()

	// manufacturer is unbound in the caller's environment; capture
	// must succeed without performing lookup.
	frame := evaluator.NewFrame(callerEnv).Bind("p", ast.Sym("manufacturer"))
	q, err := quote.Capture(frame, "p")
	if err != nil {
		t.Fatal(err)
	}

	masked := q.Env.MaskedChild(mapMask{"manufacturer": evaluator.NewString("audi")})
	val, err := ev.EvalQuosure(q, masked)
	if err != nil {
		t.Fatal(err)
	}
	if val.(evaluator.String).Value != "audi" {
		t.Errorf("masked eval = %v", val)
	}

	_, err = ev.EvalQuosure(q, nil)
	expectCode(t, err, diagnostics.EUnbound)
}

func TestGroupedAggregationTemplate(t *testing.T) {
	ev := newEvaluator(t, nil)
	rootEnv := evaluator.NewGlobalEnv()
	env := evaluator.NewGlobalEnv()
	env.Set("keys", evaluator.FromGo([]any{"manufacturer", "model"}))
	env.Set("name", evaluator.NewString("mean_hwy"))
	env.Set("agg", evaluator.NewQuosure(ast.Call("mean", ast.Pos(ast.Sym("hwy"))), rootEnv))

	got := mustRewrite(t, ev, ast.Call("summarise",
		ast.Pos(ast.Call("group_by",
			ast.Pos(ast.Sym("data")),
			ast.Pos(ast.Splice(ast.Sym("keys"))),
		)),
		ast.Pos(ast.Assign(
			ast.NameSub(ast.Unquote(ast.Sym("name"))),
			ast.Unquote(ast.Sym("agg")),
		)),
	), env)

	want := ast.Call("summarise",
		ast.Pos(ast.Call("group_by",
			ast.Pos(ast.Sym("data")),
			ast.Pos(ast.Lit(evaluator.NewString("manufacturer"))),
			ast.Pos(ast.Lit(evaluator.NewString("model"))),
		)),
		ast.Named("mean_hwy", ast.Call("mean", ast.Pos(ast.Sym("hwy")))),
	)
	if !ast.Equal(got, want) {
		t.Errorf("rewrite = %v, want %v", got, want)
	}
}
