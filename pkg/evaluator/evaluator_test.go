package evaluator

import (
	"context"
	"testing"

	"github.com/halvorsen/jmespath/pkg/parser"
	"github.com/halvorsen/jmespath/pkg/types"
)

func eval(t *testing.T, query string, data types.Value) types.Value {
	t.Helper()
	expr, err := parser.Parse(query)
	if err != nil {
		t.Fatalf("Parse(%q): %v", query, err)
	}
	got, err := New().Eval(context.Background(), expr, data)
	if err != nil {
		t.Fatalf("Eval(%q): %v", query, err)
	}
	return got
}

func evalErr(t *testing.T, query string, data types.Value) *types.Error {
	t.Helper()
	expr, err := parser.Parse(query)
	if err != nil {
		t.Fatalf("Parse(%q): %v", query, err)
	}
	_, err = New().Eval(context.Background(), expr, data)
	if err == nil {
		t.Fatalf("Eval(%q): expected error, got none", query)
	}
	terr, ok := err.(*types.Error)
	if !ok {
		t.Fatalf("Eval(%q): expected *types.Error, got %T", query, err)
	}
	return terr
}

func obj(pairs ...any) types.Value {
	b := types.NewObjectBuilder()
	for i := 0; i < len(pairs); i += 2 {
		b.Set(pairs[i].(string), pairs[i+1].(types.Value))
	}
	return b.Build()
}

func arr(vs ...types.Value) types.Value { return types.NewArray(vs) }
func str(s string) types.Value          { return types.NewString(s) }
func num(n float64) types.Value         { return types.NewNumber(n) }

func TestEvalField(t *testing.T) {
	data := obj("foo", str("bar"))
	got := eval(t, "foo", data)
	if got.String() != "bar" {
		t.Fatalf("got %v", got)
	}
}

func TestEvalFieldOnNonObjectIsNull(t *testing.T) {
	got := eval(t, "foo", num(1))
	if !got.IsNull() {
		t.Fatalf("got %v", got)
	}
}

func TestEvalIndexNegative(t *testing.T) {
	data := arr(num(1), num(2), num(3))
	got := eval(t, "[-1]", data)
	if got.Number() != 3 {
		t.Fatalf("got %v", got)
	}
}

func TestEvalIndexOutOfRangeIsNull(t *testing.T) {
	data := arr(num(1))
	got := eval(t, "[5]", data)
	if !got.IsNull() {
		t.Fatalf("got %v", got)
	}
}

func TestEvalArrayProjection(t *testing.T) {
	data := obj("people", arr(
		obj("name", str("a")),
		obj("name", str("b")),
	))
	got := eval(t, "people[*].name", data)
	if got.Kind() != types.KindArray || len(got.Array()) != 2 {
		t.Fatalf("got %v", got)
	}
	if got.Array()[0].String() != "a" || got.Array()[1].String() != "b" {
		t.Fatalf("got %v", got)
	}
}

func TestEvalArrayProjectionDropsNulls(t *testing.T) {
	data := arr(obj("a", num(1)), obj("b", num(2)))
	got := eval(t, "[*].a", data)
	if len(got.Array()) != 1 || got.Array()[0].Number() != 1 {
		t.Fatalf("got %v", got)
	}
}

func TestEvalFlattenThenProjection(t *testing.T) {
	data := arr(arr(num(1), num(2)), arr(num(3)))
	got := eval(t, "[]", data)
	if len(got.Array()) != 3 {
		t.Fatalf("got %v", got)
	}
}

func TestEvalFilterProjection(t *testing.T) {
	data := arr(obj("age", num(10)), obj("age", num(30)))
	got := eval(t, "[?age > `20`].age", data)
	if len(got.Array()) != 1 || got.Array()[0].Number() != 30 {
		t.Fatalf("got %v", got)
	}
}

func TestEvalSliceFullCopy(t *testing.T) {
	data := arr(num(1), num(2), num(3))
	got := eval(t, "[::]", data)
	if len(got.Array()) != 3 {
		t.Fatalf("got %v", got)
	}
}

func TestEvalSliceReverse(t *testing.T) {
	data := arr(num(1), num(2), num(3))
	got := eval(t, "[::-1]", data)
	want := []float64{3, 2, 1}
	for i, v := range got.Array() {
		if v.Number() != want[i] {
			t.Fatalf("got %v", got)
		}
	}
}

func TestEvalPipeBreaksProjection(t *testing.T) {
	data := arr(obj("a", num(1)), obj("a", num(2)))
	got := eval(t, "[*].a | [0]", data)
	if got.Number() != 1 {
		t.Fatalf("got %v", got)
	}
}

func TestEvalMultiSelectList(t *testing.T) {
	data := obj("a", num(1), "b", num(2))
	got := eval(t, "[a, b]", data)
	if len(got.Array()) != 2 || got.Array()[0].Number() != 1 || got.Array()[1].Number() != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestEvalMultiSelectListOnNullIsNull(t *testing.T) {
	got := eval(t, "missing.[a, b]", obj())
	if !got.IsNull() {
		t.Fatalf("got %v", got)
	}
}

func TestEvalMultiSelectHash(t *testing.T) {
	data := obj("a", num(1), "b", num(2))
	got := eval(t, "{x: a, y: b}", data)
	x, _ := got.ObjectGet("x")
	y, _ := got.ObjectGet("y")
	if x.Number() != 1 || y.Number() != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestEvalComparators(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"`1` == `1`", true},
		{"`1` != `2`", true},
		{"`1` < `2`", true},
		{"`2` <= `2`", true},
		{"`3` > `2`", true},
		{"`2` >= `3`", false},
		{"'a' < 'b'", true},
	}
	for _, tc := range tests {
		got := eval(t, tc.query, types.Null)
		if got.Bool() != tc.want {
			t.Errorf("%s: got %v want %v", tc.query, got, tc.want)
		}
	}
}

func TestEvalComparatorMixedKindYieldsNull(t *testing.T) {
	got := eval(t, "`1` < 'a'", types.Null)
	if !got.IsNull() {
		t.Fatalf("got %v", got)
	}
}

func TestEvalAndOrPassthrough(t *testing.T) {
	data := obj("a", types.NewBool(false), "b", str("hi"))
	got := eval(t, "a && b", data)
	if got.Kind() != types.KindBool || got.Bool() {
		t.Fatalf("&& should short-circuit on falsy lhs, got %v", got)
	}
	got = eval(t, "a || b", data)
	if got.String() != "hi" {
		t.Fatalf("|| should pass through truthy rhs, got %v", got)
	}
}

func TestEvalNot(t *testing.T) {
	got := eval(t, "!`false`", types.Null)
	if !got.Bool() {
		t.Fatalf("got %v", got)
	}
}

func TestEvalTruthiness(t *testing.T) {
	falsy := []string{"''", "`null`", "`false`", "`[]`", "`{}`"}
	for _, lit := range falsy {
		got := eval(t, "!"+lit, types.Null)
		if !got.Bool() {
			t.Errorf("%s should be falsy", lit)
		}
	}
}

func TestEvalUnknownFunction(t *testing.T) {
	terr := evalErr(t, "nope(`1`)", types.Null)
	if terr.Code != types.UnknownFunctionError {
		t.Fatalf("got %v", terr.Code)
	}
}

func TestEvalFunctionArity(t *testing.T) {
	terr := evalErr(t, "abs(`1`, `2`)", types.Null)
	if terr.Code != types.InvalidArityError {
		t.Fatalf("got %v", terr.Code)
	}
}

func TestEvalFunctionType(t *testing.T) {
	terr := evalErr(t, "abs('x')", types.Null)
	if terr.Code != types.InvalidTypeError {
		t.Fatalf("got %v", terr.Code)
	}
}

func TestEvalMaxDepth(t *testing.T) {
	expr, err := parser.Parse("a.b.c")
	if err != nil {
		t.Fatal(err)
	}
	ev := New(WithMaxDepth(1))
	_, err = ev.Eval(context.Background(), expr, obj())
	if err == nil {
		t.Fatal("expected depth error")
	}
}

func TestEvalNilExpression(t *testing.T) {
	ev := New()
	_, err := ev.Eval(context.Background(), nil, types.Null)
	if err == nil {
		t.Fatal("expected error for nil expression")
	}
}
