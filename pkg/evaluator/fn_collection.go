package evaluator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/halvorsen/jmespath/pkg/types"
)

func fnAvg(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	arr := args[0].Array()
	if len(arr) == 0 {
		return types.Null, nil
	}
	var total float64
	for _, v := range arr {
		total += v.Number()
	}
	return types.NewNumber(total / float64(len(arr))), nil
}

func fnSum(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	var total float64
	for _, v := range args[0].Array() {
		total += v.Number()
	}
	return types.NewNumber(total), nil
}

func fnContains(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	subject, search := args[0], args[1]
	switch subject.Kind() {
	case types.KindString:
		if search.Kind() != types.KindString {
			return types.NewBool(false), nil
		}
		return types.NewBool(strings.Contains(subject.String(), search.String())), nil
	case types.KindArray:
		for _, elem := range subject.Array() {
			if types.Equal(elem, search) {
				return types.NewBool(true), nil
			}
		}
		return types.NewBool(false), nil
	default:
		return types.NewBool(false), nil
	}
}

func fnEndsWith(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return types.NewBool(strings.HasSuffix(args[0].String(), args[1].String())), nil
}

func fnStartsWith(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	return types.NewBool(strings.HasPrefix(args[0].String(), args[1].String())), nil
}

func fnJoin(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	sep := args[0].String()
	parts := make([]string, len(args[1].Array()))
	for i, v := range args[1].Array() {
		parts[i] = v.String()
	}
	return types.NewString(strings.Join(parts, sep)), nil
}

func fnKeys(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	keys := args[0].ObjectKeys()
	out := make([]types.Value, len(keys))
	for i, k := range keys {
		out[i] = types.NewString(k)
	}
	return types.NewArray(out), nil
}

func fnValues(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	keys := args[0].ObjectKeys()
	out := make([]types.Value, len(keys))
	for i, k := range keys {
		out[i], _ = args[0].ObjectGet(k)
	}
	return types.NewArray(out), nil
}

func fnMap(ctx context.Context, e *Evaluator, ec *EvalContext, args []types.Value) (types.Value, error) {
	ref := args[0].ExpressionRef()
	arr := args[1].Array()
	out := make([]types.Value, len(arr))
	for i, elem := range arr {
		v, err := e.evalExpressionRef(ctx, ref, ec, elem)
		if err != nil {
			return types.Null, err
		}
		out[i] = v
	}
	return types.NewArray(out), nil
}

// homogeneousSortKind checks every element of arr has the same sortable
// Kind (Number or String) and returns it. An empty array has no kind.
func homogeneousSortKind(fnName string, arr []types.Value) (types.Kind, bool, error) {
	if len(arr) == 0 {
		return 0, false, nil
	}
	kind, ok := types.SortableKind(arr[0])
	if !ok {
		return 0, false, types.NewError(types.InvalidTypeError, fmt.Sprintf("%s(): array elements must be all numbers or all strings", fnName))
	}
	for _, v := range arr[1:] {
		k, ok := types.SortableKind(v)
		if !ok || k != kind {
			return 0, false, types.NewError(types.InvalidTypeError, fmt.Sprintf("%s(): array elements must be all numbers or all strings", fnName))
		}
	}
	return kind, true, nil
}

func fnMax(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	arr := args[0].Array()
	if _, ok, err := homogeneousSortKind("max", arr); err != nil {
		return types.Null, err
	} else if !ok {
		return types.Null, nil
	}
	best := arr[0]
	for _, v := range arr[1:] {
		if types.Less(best, v) {
			best = v
		}
	}
	return best, nil
}

func fnMin(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	arr := args[0].Array()
	if _, ok, err := homogeneousSortKind("min", arr); err != nil {
		return types.Null, err
	} else if !ok {
		return types.Null, nil
	}
	best := arr[0]
	for _, v := range arr[1:] {
		if types.Less(v, best) {
			best = v
		}
	}
	return best, nil
}

// keyedElements pairs each array element with its projected sort key,
// verifying every key is present and shares one sortable Kind.
func keyedElements(ctx context.Context, e *Evaluator, ec *EvalContext, fnName string, arr []types.Value, ref *types.ASTNode) ([]types.Value, []types.Value, error) {
	keys := make([]types.Value, len(arr))
	for i, elem := range arr {
		k, err := e.evalExpressionRef(ctx, ref, ec, elem)
		if err != nil {
			return nil, nil, err
		}
		keys[i] = k
	}
	if _, ok, err := homogeneousSortKind(fnName, keys); err != nil {
		return nil, nil, err
	} else if !ok {
		return nil, nil, nil
	}
	return arr, keys, nil
}

func fnMaxBy(ctx context.Context, e *Evaluator, ec *EvalContext, args []types.Value) (types.Value, error) {
	arr := args[0].Array()
	elems, keys, err := keyedElements(ctx, e, ec, "max_by", arr, args[1].ExpressionRef())
	if err != nil {
		return types.Null, err
	}
	if len(elems) == 0 {
		return types.Null, nil
	}
	best, bestKey := elems[0], keys[0]
	for i := 1; i < len(elems); i++ {
		if types.Less(bestKey, keys[i]) {
			best, bestKey = elems[i], keys[i]
		}
	}
	return best, nil
}

func fnMinBy(ctx context.Context, e *Evaluator, ec *EvalContext, args []types.Value) (types.Value, error) {
	arr := args[0].Array()
	elems, keys, err := keyedElements(ctx, e, ec, "min_by", arr, args[1].ExpressionRef())
	if err != nil {
		return types.Null, err
	}
	if len(elems) == 0 {
		return types.Null, nil
	}
	best, bestKey := elems[0], keys[0]
	for i := 1; i < len(elems); i++ {
		if types.Less(keys[i], bestKey) {
			best, bestKey = elems[i], keys[i]
		}
	}
	return best, nil
}

// fnMerge shallow-merges its (object) arguments left to right; a key
// present in more than one argument takes its value from the rightmost.
func fnMerge(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	b := types.NewObjectBuilder()
	for i, arg := range args {
		if arg.Kind() != types.KindObject {
			return types.Null, types.NewError(types.InvalidTypeError, fmt.Sprintf("merge(): argument %d: expected object, got %s", i+1, arg.Kind()))
		}
		for _, k := range arg.ObjectKeys() {
			v, _ := arg.ObjectGet(k)
			b.Set(k, v)
		}
	}
	return b.Build(), nil
}

func fnReverse(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	v := args[0]
	if v.Kind() == types.KindString {
		runes := []rune(v.String())
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return types.NewString(string(runes)), nil
	}
	arr := v.Array()
	out := make([]types.Value, len(arr))
	for i, elem := range arr {
		out[len(arr)-1-i] = elem
	}
	return types.NewArray(out), nil
}

func fnSort(_ context.Context, _ *Evaluator, _ *EvalContext, args []types.Value) (types.Value, error) {
	arr := args[0].Array()
	if _, ok, err := homogeneousSortKind("sort", arr); err != nil {
		return types.Null, err
	} else if !ok {
		return types.NewArray(nil), nil
	}
	out := append([]types.Value(nil), arr...)
	sort.SliceStable(out, func(i, j int) bool { return types.Less(out[i], out[j]) })
	return types.NewArray(out), nil
}

func fnSortBy(ctx context.Context, e *Evaluator, ec *EvalContext, args []types.Value) (types.Value, error) {
	arr := args[0].Array()
	elems, keys, err := keyedElements(ctx, e, ec, "sort_by", arr, args[1].ExpressionRef())
	if err != nil {
		return types.Null, err
	}
	if len(elems) == 0 {
		return types.NewArray(nil), nil
	}
	idx := make([]int, len(elems))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return types.Less(keys[idx[i]], keys[idx[j]]) })
	out := make([]types.Value, len(elems))
	for i, orig := range idx {
		out[i] = elems[orig]
	}
	return types.NewArray(out), nil
}
