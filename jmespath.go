// Package jmespath implements JMESPath (https://jmespath.org), a query
// language for JSON-like data. Parse or compile an expression once, then
// evaluate it against any number of documents:
//
//	expr, err := jmespath.Compile("reservations[].instances[?state.name=='running'].id")
//	if err != nil {
//		// handle syntax error
//	}
//	result, err := expr.Search(data)
//
// For one-off use, Search parses and evaluates in a single call.
package jmespath

import (
	"context"
	"fmt"

	"github.com/halvorsen/jmespath/pkg/parser"
	"github.com/halvorsen/jmespath/pkg/runtime"
	"github.com/halvorsen/jmespath/pkg/types"
)

// Version is the package's semantic version.
const Version = "1.0.0"

// defaultRuntime backs the package-level Search function with a small
// parse cache so repeated package-level calls with the same expression
// string don't re-parse every time.
var defaultRuntime = runtime.New(runtime.WithParseCacheSize(256))

// CompiledExpression is a parsed JMESPath expression ready for repeated
// evaluation against different documents.
type CompiledExpression struct {
	expr *types.Expression
}

// Compile parses expr and returns a reusable CompiledExpression.
func Compile(expr string) (*CompiledExpression, error) {
	ast, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &CompiledExpression{expr: ast}, nil
}

// MustCompile is like Compile but panics on error. Intended for
// expressions known at compile time, e.g. package-level variables.
func MustCompile(expr string) *CompiledExpression {
	c, err := Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("jmespath: MustCompile(%q): %v", expr, err))
	}
	return c
}

// Search evaluates the compiled expression against data.
func (c *CompiledExpression) Search(data types.Value) (types.Value, error) {
	return c.SearchContext(context.Background(), data)
}

// SearchContext is Search with an explicit context, honored for
// cancellation and the evaluator's deadline.
func (c *CompiledExpression) SearchContext(ctx context.Context, data types.Value) (types.Value, error) {
	return defaultRuntime.Eval(ctx, c.expr, data)
}

// Search parses expr and evaluates it against data in one call. For
// repeated use of the same expression, prefer Compile.
func Search(expr string, data types.Value) (types.Value, error) {
	return defaultRuntime.Search(context.Background(), expr, data)
}
