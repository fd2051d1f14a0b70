// Package parser turns a JMESPath expression string into an abstract
// syntax tree. It is organized the way a hand-written recursive-descent
// scanner/parser pair usually is: tokens.go and lexer.go produce a token
// stream, parser_impl.go runs a precedence-climbing (Pratt) parse over
// that stream, and parser.go exposes the package's entry points.
package parser

import "github.com/halvorsen/jmespath/pkg/types"

// Parse compiles source into an Expression. A malformed expression yields
// a *types.Error with Code == types.SyntaxError, pinned to the column
// where parsing failed.
func Parse(source string) (*types.Expression, error) {
	p := newParser(source)
	ast, err := p.parse()
	if err != nil {
		return nil, err
	}
	return types.NewExpression(ast, source), nil
}

// MustParse is like Parse but panics on error. Intended for building
// package-level expression tables from trusted, literal expression strings.
func MustParse(source string) *types.Expression {
	expr, err := Parse(source)
	if err != nil {
		panic(err)
	}
	return expr
}
