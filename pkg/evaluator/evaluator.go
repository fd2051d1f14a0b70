// Package evaluator implements the JMESPath interpreter: a tree-walking
// visitor over a parsed AST that produces a types.Value.
//
// The evaluator is deliberately strict — every error it can raise
// (unknown function, arity mismatch, type mismatch, comparator misuse) is
// returned as-is. Turning suppressible errors into null is the runtime
// façade's job (pkg/runtime), not the interpreter's, so the interpreter
// stays usable on its own with unambiguous semantics.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/halvorsen/jmespath/pkg/types"
)

// Evaluator walks a parsed AST against a data value.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
}

// EvalOptions configures an Evaluator.
type EvalOptions struct {
	// MaxDepth limits AST recursion depth, guarding against pathological
	// or maliciously deep expressions. Zero disables the check.
	MaxDepth int
	// Timeout bounds total evaluation wall-clock time. Zero disables it.
	Timeout time.Duration
	// Logger receives structured evaluation diagnostics.
	Logger *slog.Logger
}

// EvalOption configures an Evaluator at construction time.
type EvalOption func(*EvalOptions)

// WithMaxDepth sets the maximum AST recursion depth.
func WithMaxDepth(depth int) EvalOption {
	return func(o *EvalOptions) { o.MaxDepth = depth }
}

// WithTimeout sets the per-evaluation wall-clock timeout.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(o *EvalOptions) { o.Timeout = timeout }
}

// WithLogger sets the evaluator's structured logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(o *EvalOptions) { o.Logger = logger }
}

// New creates an Evaluator with the given options applied over sane
// defaults: a 250-level recursion cap and a 10-second timeout.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		MaxDepth: 250,
		Timeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Evaluator{opts: options, logger: options.Logger}
}

// Eval evaluates expr's AST against data and returns the resulting Value.
func (e *Evaluator) Eval(ctx context.Context, expr *types.Expression, data types.Value) (types.Value, error) {
	if expr == nil || expr.AST() == nil {
		return types.Null, fmt.Errorf("evaluator: nil expression")
	}
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}
	ec := NewContext(data)
	result, err := e.evalNode(ctx, expr.AST(), ec, 0)
	if err != nil {
		e.logger.DebugContext(ctx, "evaluation failed", "expression", expr.Source(), "error", err)
		return types.Null, err
	}
	return result, nil
}

// evalNode is the interpreter's single dispatch point. depth tracks AST
// recursion so runaway expressions are rejected rather than exhausting the
// goroutine stack.
func (e *Evaluator) evalNode(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (types.Value, error) {
	if err := ctx.Err(); err != nil {
		return types.Null, err
	}
	if e.opts.MaxDepth > 0 && depth > e.opts.MaxDepth {
		return types.Null, types.NewError(types.InvalidVisitError, "maximum expression depth exceeded")
	}
	if node == nil {
		return types.Null, types.NewError(types.InvalidVisitError, "nil AST node")
	}

	switch node.Type {
	case types.NodeIdentity, types.NodeCurrent:
		return e.evalIdentityOrCurrent(node, ec)
	case types.NodeLiteral:
		return node.Literal, nil
	case types.NodeField:
		return e.evalField(node, ec)
	case types.NodeIndex:
		return e.evalIndex(node, ec)
	case types.NodeSubexpression:
		return e.evalSubexpression(ctx, node, ec, depth)
	case types.NodeMultiSelectList:
		return e.evalMultiSelectList(ctx, node, ec, depth)
	case types.NodeMultiSelectHash:
		return e.evalMultiSelectHash(ctx, node, ec, depth)
	case types.NodeExpressionRef:
		return types.NewExpressionRef(node.LHS), nil
	case types.NodeNot:
		return e.evalNot(ctx, node, ec, depth)
	case types.NodeAnd:
		return e.evalAnd(ctx, node, ec, depth)
	case types.NodeOr:
		return e.evalOr(ctx, node, ec, depth)
	case types.NodeComparator:
		return e.evalComparator(ctx, node, ec, depth)
	case types.NodePipe:
		return e.evalPipe(ctx, node, ec, depth)
	case types.NodeFlatten:
		return e.evalFlatten(ctx, node, ec, depth)
	case types.NodeArrayProjection:
		return e.evalArrayProjection(ctx, node, ec, depth)
	case types.NodeObjectProjection:
		return e.evalObjectProjection(ctx, node, ec, depth)
	case types.NodeSliceProjection:
		return e.evalSliceProjection(ctx, node, ec, depth)
	case types.NodeFilterProjection:
		return e.evalFilterProjection(ctx, node, ec, depth)
	case types.NodeFunction:
		return e.evalFunction(ctx, node, ec, depth)
	default:
		return types.Null, types.NewError(types.InvalidVisitError, fmt.Sprintf("unhandled node type %q", node.Type))
	}
}

// evalExpressionRef evaluates an expression-reference node's wrapped AST
// against a fresh current value, the way map/sort_by/max_by/min_by apply
// their &expr argument to each element. Function bodies don't carry the
// caller's recursion depth, so this restarts the depth count; a
// pathological &expr is still bounded on its own terms.
func (e *Evaluator) evalExpressionRef(ctx context.Context, ref *types.ASTNode, ec *EvalContext, elem types.Value) (types.Value, error) {
	return e.evalNode(ctx, ref, ec.WithCurrent(elem), 0)
}
