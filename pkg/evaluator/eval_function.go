package evaluator

import (
	"context"
	"fmt"

	"github.com/halvorsen/jmespath/pkg/types"
)

// evalFunction evaluates a function call's arguments and dispatches to
// its FunctionDef. An expression-ref argument (&expr) evaluates, via the
// NodeExpressionRef case in evalNode, to an ExpressionRef Value rather
// than being applied — the function implementation decides when and
// against what current value to apply it.
func (e *Evaluator) evalFunction(ctx context.Context, node *types.ASTNode, ec *EvalContext, depth int) (types.Value, error) {
	fn, ok := GetFunction(node.FuncName)
	if !ok {
		return types.Null, types.NewError(types.UnknownFunctionError, fmt.Sprintf("unknown function %s()", node.FuncName))
	}

	args := make([]types.Value, len(node.Arguments))
	for i, argNode := range node.Arguments {
		v, err := e.evalNode(ctx, argNode, ec, depth+1)
		if err != nil {
			return types.Null, err
		}
		args[i] = v
	}

	return fn.Call(ctx, e, ec, args)
}
