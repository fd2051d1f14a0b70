package evaluator

import (
	"context"

	"github.com/halvorsen/jmespath/pkg/types"
)

// evalNot negates the truthiness of its operand and always yields a real
// boolean, unlike && and || which pass one of their operands through.
func (e *Evaluator) evalNot(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (types.Value, error) {
	v, err := e.evalNode(ctx, node.LHS, ec, depth+1)
	if err != nil {
		return types.Null, err
	}
	return types.NewBool(!v.Truthy()), nil
}

// evalAnd implements short-circuit &&. JMESPath's && (like JavaScript's,
// unlike most C-family languages) returns whichever operand decided the
// result, not a boolean.
func (e *Evaluator) evalAnd(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (types.Value, error) {
	lhs, err := e.evalNode(ctx, node.LHS, ec, depth+1)
	if err != nil {
		return types.Null, err
	}
	if !lhs.Truthy() {
		return lhs, nil
	}
	return e.evalNode(ctx, node.RHS, ec, depth+1)
}

// evalOr implements short-circuit ||, also operand-passthrough rather
// than boolean-valued.
func (e *Evaluator) evalOr(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (types.Value, error) {
	lhs, err := e.evalNode(ctx, node.LHS, ec, depth+1)
	if err != nil {
		return types.Null, err
	}
	if lhs.Truthy() {
		return lhs, nil
	}
	return e.evalNode(ctx, node.RHS, ec, depth+1)
}

// evalComparator evaluates one of ==, !=, <, <=, >, >=. Equality is deep
// structural comparison across any Kind; ordering is strict — it is only
// defined between two numbers or two strings, and yields null (not an
// error) for any other combination.
func (e *Evaluator) evalComparator(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (types.Value, error) {
	lhs, err := e.evalNode(ctx, node.LHS, ec, depth+1)
	if err != nil {
		return types.Null, err
	}
	rhs, err := e.evalNode(ctx, node.RHS, ec, depth+1)
	if err != nil {
		return types.Null, err
	}

	switch node.Comparator {
	case "==":
		return types.NewBool(types.Equal(lhs, rhs)), nil
	case "!=":
		return types.NewBool(!types.Equal(lhs, rhs)), nil
	}

	lk, lok := types.SortableKind(lhs)
	rk, rok := types.SortableKind(rhs)
	if !lok || !rok || lk != rk {
		return types.Null, nil
	}

	switch node.Comparator {
	case "<":
		return types.NewBool(types.Less(lhs, rhs)), nil
	case "<=":
		return types.NewBool(types.Less(lhs, rhs) || types.Equal(lhs, rhs)), nil
	case ">":
		return types.NewBool(types.Less(rhs, lhs)), nil
	case ">=":
		return types.NewBool(types.Less(rhs, lhs) || types.Equal(lhs, rhs)), nil
	default:
		return types.Null, types.NewError(types.InvalidVisitError, "unknown comparator "+node.Comparator)
	}
}

// evalPipe evaluates LHS, then RHS with that result as the new current
// value. Unlike a sub-expression's RHS, a pipe's RHS always starts a fresh
// projection scope — enforced structurally by the parser (pipe has the
// lowest binding power, so no projection ever absorbs past it).
func (e *Evaluator) evalPipe(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (types.Value, error) {
	lhs, err := e.evalNode(ctx, node.LHS, ec, depth+1)
	if err != nil {
		return types.Null, err
	}
	return e.evalNode(ctx, node.RHS, ec.WithCurrent(lhs), depth+1)
}
