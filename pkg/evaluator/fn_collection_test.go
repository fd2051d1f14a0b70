package evaluator

import (
	"context"
	"testing"

	"github.com/halvorsen/jmespath/pkg/parser"
	"github.com/halvorsen/jmespath/pkg/types"
)

func TestFnAvgSumEmptyAndPopulated(t *testing.T) {
	if got := eval(t, "avg(`[]`)", types.Null); !got.IsNull() {
		t.Fatalf("avg of empty should be null, got %v", got)
	}
	if got := eval(t, "sum(`[]`)", types.Null); got.Number() != 0 {
		t.Fatalf("sum of empty should be 0, got %v", got)
	}
	if got := eval(t, "avg(`[1,2,3]`)", types.Null); got.Number() != 2 {
		t.Fatalf("got %v", got)
	}
	if got := eval(t, "sum(`[1,2,3]`)", types.Null); got.Number() != 6 {
		t.Fatalf("got %v", got)
	}
}

func TestFnContains(t *testing.T) {
	if !eval(t, `contains('hello world', 'world')`, types.Null).Bool() {
		t.Fatal("expected string contains true")
	}
	if !eval(t, "contains(`[1,2,3]`, `2`)", types.Null).Bool() {
		t.Fatal("expected array contains true")
	}
	if eval(t, "contains(`[1,2,3]`, `4`)", types.Null).Bool() {
		t.Fatal("expected array contains false")
	}
}

func TestFnStartsEndsWith(t *testing.T) {
	if !eval(t, "starts_with('hello', 'he')", types.Null).Bool() {
		t.Fatal("expected true")
	}
	if !eval(t, "ends_with('hello', 'lo')", types.Null).Bool() {
		t.Fatal("expected true")
	}
}

func TestFnJoin(t *testing.T) {
	got := eval(t, `join(',', ['a','b','c'])`, obj())
	if got.String() != "a,b,c" {
		t.Fatalf("got %v", got)
	}
}

func TestFnKeysValues(t *testing.T) {
	data := obj("a", num(1), "b", num(2))
	keys := eval(t, "keys(@)", data)
	if len(keys.Array()) != 2 || keys.Array()[0].String() != "a" {
		t.Fatalf("got %v", keys)
	}
	values := eval(t, "values(@)", data)
	if len(values.Array()) != 2 || values.Array()[0].Number() != 1 {
		t.Fatalf("got %v", values)
	}
}

func TestFnMapAppliesExpressionRef(t *testing.T) {
	data := arr(obj("a", num(1)), obj("a", num(2)))
	got := eval(t, "map(&a, @)", data)
	if len(got.Array()) != 2 || got.Array()[0].Number() != 1 || got.Array()[1].Number() != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestFnMaxMin(t *testing.T) {
	if got := eval(t, "max(`[3,1,2]`)", types.Null); got.Number() != 3 {
		t.Fatalf("got %v", got)
	}
	if got := eval(t, "min(`[3,1,2]`)", types.Null); got.Number() != 1 {
		t.Fatalf("got %v", got)
	}
	if got := eval(t, "max(`[]`)", types.Null); !got.IsNull() {
		t.Fatalf("expected null, got %v", got)
	}
}

func TestFnMaxMinMixedKindIsTypeError(t *testing.T) {
	terr := evalErr(t, "max(`[1, \"a\"]`)", types.Null)
	if terr.Code != types.InvalidTypeError {
		t.Fatalf("got %v", terr.Code)
	}
}

func TestFnMaxByMinBy(t *testing.T) {
	data := arr(obj("age", num(10)), obj("age", num(30)), obj("age", num(20)))
	got := eval(t, "max_by(@, &age)", data)
	age, _ := got.ObjectGet("age")
	if age.Number() != 30 {
		t.Fatalf("got %v", got)
	}
	got = eval(t, "min_by(@, &age)", data)
	age, _ = got.ObjectGet("age")
	if age.Number() != 10 {
		t.Fatalf("got %v", got)
	}
}

func TestFnMerge(t *testing.T) {
	got := eval(t, "merge({a: `1`, b: `2`}, {b: `3`, c: `4`})", obj())
	a, _ := got.ObjectGet("a")
	b, _ := got.ObjectGet("b")
	c, _ := got.ObjectGet("c")
	if a.Number() != 1 || b.Number() != 3 || c.Number() != 4 {
		t.Fatalf("got %v", got)
	}
}

func TestFnReverse(t *testing.T) {
	if got := eval(t, "reverse('abc')", types.Null); got.String() != "cba" {
		t.Fatalf("got %v", got)
	}
	got := eval(t, "reverse(`[1,2,3]`)", types.Null)
	if got.Array()[0].Number() != 3 {
		t.Fatalf("got %v", got)
	}
}

func TestFnSort(t *testing.T) {
	got := eval(t, "sort(`[3,1,2]`)", types.Null)
	want := []float64{1, 2, 3}
	for i, v := range got.Array() {
		if v.Number() != want[i] {
			t.Fatalf("got %v", got)
		}
	}
}

func TestFnSortByStable(t *testing.T) {
	data := arr(obj("age", num(30), "name", str("a")), obj("age", num(10), "name", str("b")), obj("age", num(20), "name", str("c")))
	got := eval(t, "sort_by(@, &age)[*].name", data)
	want := []string{"b", "c", "a"}
	for i, v := range got.Array() {
		if v.String() != want[i] {
			t.Fatalf("got %v", got)
		}
	}
}

func TestFnLengthTypeAndNotNull(t *testing.T) {
	if got := eval(t, "length('hello')", types.Null); got.Number() != 5 {
		t.Fatalf("got %v", got)
	}
	if got := eval(t, "length(`[1,2]`)", types.Null); got.Number() != 2 {
		t.Fatalf("got %v", got)
	}
	if got := eval(t, "type(`1`)", types.Null); got.String() != "number" {
		t.Fatalf("got %v", got)
	}
	if got := eval(t, "not_null(`null`, `null`, `3`)", types.Null); got.Number() != 3 {
		t.Fatalf("got %v", got)
	}
}

func TestFnToArrayToStringToNumber(t *testing.T) {
	if got := eval(t, "to_array(`1`)", types.Null); len(got.Array()) != 1 {
		t.Fatalf("got %v", got)
	}
	if got := eval(t, "to_string(`[1,2]`)", types.Null); got.String() != "[1,2]" {
		t.Fatalf("got %v", got)
	}
	if got := eval(t, "to_number('42')", types.Null); got.Number() != 42 {
		t.Fatalf("got %v", got)
	}
	if got := eval(t, "to_number('nope')", types.Null); !got.IsNull() {
		t.Fatalf("got %v", got)
	}
}

func TestComplianceStyleScenario(t *testing.T) {
	data := obj("people", arr(
		obj("name", str("a"), "age", num(30)),
		obj("name", str("b"), "age", num(10)),
	))
	expr, err := parser.Parse("people[?age > `20`].name")
	if err != nil {
		t.Fatal(err)
	}
	got, err := New().Eval(context.Background(), expr, data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Array()) != 1 || got.Array()[0].String() != "a" {
		t.Fatalf("got %v", got)
	}
}
