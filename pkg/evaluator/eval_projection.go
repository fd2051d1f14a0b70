package evaluator

import (
	"context"

	"github.com/halvorsen/jmespath/pkg/types"
)

// evalFlatten flattens one level of nesting out of an array: each element
// that is itself an array contributes its elements directly rather than
// itself. A non-array source yields null, matching every other path
// operation's behavior on a type mismatch.
func (e *Evaluator) evalFlatten(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (types.Value, error) {
	src, err := e.evalNode(ctx, node.LHS, ec, depth+1)
	if err != nil {
		return types.Null, err
	}
	if src.Kind() != types.KindArray {
		return types.Null, nil
	}
	var out []types.Value
	for _, elem := range src.Array() {
		if elem.Kind() == types.KindArray {
			out = append(out, elem.Array()...)
		} else {
			out = append(out, elem)
		}
	}
	return types.NewArray(out), nil
}

// evalArrayProjection maps RHS over every element of LHS, dropping any
// element whose projected result is null. A non-array source short-
// circuits the whole projection to null.
func (e *Evaluator) evalArrayProjection(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (types.Value, error) {
	src, err := e.evalNode(ctx, node.LHS, ec, depth+1)
	if err != nil {
		return types.Null, err
	}
	if src.Kind() != types.KindArray {
		return types.Null, nil
	}
	var out []types.Value
	for _, elem := range src.Array() {
		v, err := e.evalNode(ctx, node.RHS, ec.WithCurrent(elem), depth+1)
		if err != nil {
			return types.Null, err
		}
		if v.IsNull() {
			continue
		}
		out = append(out, v)
	}
	return types.NewArray(out), nil
}

// evalObjectProjection maps RHS over every value of LHS (an object),
// dropping any element whose projected result is null. A non-object
// source short-circuits to null.
func (e *Evaluator) evalObjectProjection(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (types.Value, error) {
	src, err := e.evalNode(ctx, node.LHS, ec, depth+1)
	if err != nil {
		return types.Null, err
	}
	if src.Kind() != types.KindObject {
		return types.Null, nil
	}
	var out []types.Value
	for _, key := range src.ObjectKeys() {
		elem, _ := src.ObjectGet(key)
		v, err := e.evalNode(ctx, node.RHS, ec.WithCurrent(elem), depth+1)
		if err != nil {
			return types.Null, err
		}
		if v.IsNull() {
			continue
		}
		out = append(out, v)
	}
	return types.NewArray(out), nil
}

// evalSliceProjection slices LHS (an array) per node.Slice, then maps RHS
// over the sliced elements exactly like an array projection.
func (e *Evaluator) evalSliceProjection(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (types.Value, error) {
	src, err := e.evalNode(ctx, node.LHS, ec, depth+1)
	if err != nil {
		return types.Null, err
	}
	if src.Kind() != types.KindArray {
		return types.Null, nil
	}
	arr := src.Array()
	indices, err := computeSliceIndices(len(arr), node.Slice)
	if err != nil {
		return types.Null, err
	}
	var out []types.Value
	for _, i := range indices {
		v, err := e.evalNode(ctx, node.RHS, ec.WithCurrent(arr[i]), depth+1)
		if err != nil {
			return types.Null, err
		}
		if v.IsNull() {
			continue
		}
		out = append(out, v)
	}
	return types.NewArray(out), nil
}

// evalFilterProjection keeps only the elements of LHS for which Predicate
// is truthy, then maps RHS over the survivors.
func (e *Evaluator) evalFilterProjection(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (types.Value, error) {
	src, err := e.evalNode(ctx, node.LHS, ec, depth+1)
	if err != nil {
		return types.Null, err
	}
	if src.Kind() != types.KindArray {
		return types.Null, nil
	}
	var out []types.Value
	for _, elem := range src.Array() {
		elemCtx := ec.WithCurrent(elem)
		keep, err := e.evalNode(ctx, node.Predicate, elemCtx, depth+1)
		if err != nil {
			return types.Null, err
		}
		if !keep.Truthy() {
			continue
		}
		v, err := e.evalNode(ctx, node.RHS, elemCtx, depth+1)
		if err != nil {
			return types.Null, err
		}
		if v.IsNull() {
			continue
		}
		out = append(out, v)
	}
	return types.NewArray(out), nil
}

// computeSliceIndices expands a [start:stop:step] specifier over an array
// of the given length into the concrete, in-range indices to visit, in
// order. Follows the same start/stop-default-by-step-sign and negative-
// index-wraparound rules as Python slicing, which the JMESPath slice
// grammar is explicitly modeled on.
func computeSliceIndices(length int, sp types.SliceParams) ([]int, error) {
	step := 1
	if sp.Step != nil {
		step = int(*sp.Step)
	}
	if step == 0 {
		return nil, types.NewError(types.InvalidValueError, "slice step cannot be 0")
	}

	var start, stop int
	if sp.Start != nil {
		start = adjustSliceIndex(length, int(*sp.Start), step)
	} else if step < 0 {
		start = length - 1
	} else {
		start = 0
	}

	if sp.Stop != nil {
		stop = adjustSliceIndex(length, int(*sp.Stop), step)
	} else if step < 0 {
		stop = -1
	} else {
		stop = length
	}

	var indices []int
	if step > 0 {
		for i := start; i < stop; i += step {
			if i >= 0 && i < length {
				indices = append(indices, i)
			}
		}
	} else {
		for i := start; i > stop; i += step {
			if i >= 0 && i < length {
				indices = append(indices, i)
			}
		}
	}
	return indices, nil
}

// adjustSliceIndex resolves a negative index by wrapping from the end and
// clamps an out-of-range index to the nearest in-bounds (or just-out-of-
// bounds, for the exclusive stop) sentinel, direction-aware via step.
func adjustSliceIndex(length, n, step int) int {
	if n < 0 {
		n += length
		if n < 0 {
			if step < 0 {
				return -1
			}
			return 0
		}
		return n
	}
	if n >= length {
		if step < 0 {
			return length - 1
		}
		return length
	}
	return n
}
