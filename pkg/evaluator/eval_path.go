package evaluator

import (
	"context"

	"github.com/halvorsen/jmespath/pkg/types"
)

func (e *Evaluator) evalIdentityOrCurrent(node *types.ASTNode, ec *EvalContext) (types.Value, error) {
	if node.Type == types.NodeCurrent {
		return ec.Root(), nil
	}
	return ec.Current(), nil
}

// evalField looks up a field by name on the current value. Looking up a
// field on anything but an object yields null, never an error.
func (e *Evaluator) evalField(node *types.ASTNode, ec *EvalContext) (types.Value, error) {
	v := ec.Current()
	if v.Kind() != types.KindObject {
		return types.Null, nil
	}
	val, ok := v.ObjectGet(node.FieldName)
	if !ok {
		return types.Null, nil
	}
	return val, nil
}

// evalIndex applies an integer index (possibly negative) to an array.
// Indexing anything but an array, or out of range, yields null.
func (e *Evaluator) evalIndex(node *types.ASTNode, ec *EvalContext) (types.Value, error) {
	v := ec.Current()
	if v.Kind() != types.KindArray {
		return types.Null, nil
	}
	arr := v.Array()
	idx := node.IndexValue
	if idx < 0 {
		idx += len(arr)
	}
	if idx < 0 || idx >= len(arr) {
		return types.Null, nil
	}
	return arr[idx], nil
}

// evalSubexpression chains LHS into RHS: evaluate LHS; a null result
// short-circuits to null, otherwise RHS is evaluated with the result as the
// new current value.
func (e *Evaluator) evalSubexpression(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (types.Value, error) {
	lhs, err := e.evalNode(ctx, node.LHS, ec, depth+1)
	if err != nil {
		return types.Null, err
	}
	if lhs.IsNull() {
		return types.Null, nil
	}
	return e.evalNode(ctx, node.RHS, ec.WithCurrent(lhs), depth+1)
}

// evalMultiSelectList builds an array out of independently evaluated
// sub-expressions, all evaluated against the same current value. Applying
// a multi-select-list to null yields null rather than an array of nulls.
func (e *Evaluator) evalMultiSelectList(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (types.Value, error) {
	if ec.Current().IsNull() {
		return types.Null, nil
	}
	items := make([]types.Value, len(node.Elements))
	for i, elem := range node.Elements {
		v, err := e.evalNode(ctx, elem, ec, depth+1)
		if err != nil {
			return types.Null, err
		}
		items[i] = v
	}
	return types.NewArray(items), nil
}

// evalMultiSelectHash builds an object out of independently evaluated
// sub-expressions keyed by literal names, all evaluated against the same
// current value. Applying a multi-select-hash to null yields null.
func (e *Evaluator) evalMultiSelectHash(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (types.Value, error) {
	if ec.Current().IsNull() {
		return types.Null, nil
	}
	b := types.NewObjectBuilder()
	for _, pair := range node.HashPairs {
		v, err := e.evalNode(ctx, pair.Value, ec, depth+1)
		if err != nil {
			return types.Null, err
		}
		b.Set(pair.Key, v)
	}
	return b.Build(), nil
}
