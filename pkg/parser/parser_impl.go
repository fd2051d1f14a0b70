package parser

import (
	"fmt"

	"github.com/halvorsen/jmespath/pkg/types"
)

// bindingPowers mirrors the JMESPath grammar's precedence table. Pipe binds
// loosest; function-call parens and array/object indexing bind tightest.
var bindingPowers = map[TokenType]int{
	TokenEOF:              0,
	TokenError:            0,
	TokenIdentifier:       0,
	TokenQuotedIdentifier: 0,
	TokenNumber:           0,
	TokenLiteral:          0,
	TokenRawString:        0,
	TokenRBracket:         0,
	TokenRParen:           0,
	TokenRBrace:           0,
	TokenComma:            0,
	TokenColon:            0,
	TokenAt:               0,
	TokenDollar:           0,

	TokenPipe: 1,
	TokenOr:   2,
	TokenAnd:  3,

	TokenEq: 5,
	TokenNe: 5,
	TokenLt: 5,
	TokenLe: 5,
	TokenGt: 5,
	TokenGe: 5,

	TokenFlatten: 9,

	TokenStar:   20,
	TokenFilter: 21,

	TokenDot: 40,
	TokenNot: 45,

	TokenLBrace:   50,
	TokenLBracket: 55,
	TokenLParen:   60,
}

// projectionStopPower is the binding-power floor below which a projection
// stops absorbing the tokens that follow it. This is what makes `|` (and,
// to a lesser extent, comparators and `||`) terminate a projection's RHS
// while `.`, `[`, `[?` and `[*]` keep extending it.
const projectionStopPower = 10

// parser is a Pratt (precedence-climbing) parser over a token stream
// produced by Lexer. It holds a single token of lookahead.
type parser struct {
	lx     *Lexer
	peeked *Token
	err    *types.Error
}

func newParser(source string) *parser {
	return &parser{lx: NewLexer(source)}
}

// parse consumes the entire input and returns the root AST node.
func (p *parser) parse() (*types.ASTNode, error) {
	node, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if p.err != nil {
		return nil, p.err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, p.syntaxErrorAt(fmt.Sprintf("unexpected trailing token %q", tok.Value), tok)
	}
	return node, nil
}

func (p *parser) next() Token {
	var t Token
	if p.peeked != nil {
		t = *p.peeked
		p.peeked = nil
	} else {
		t = p.lx.Next()
	}
	if t.Type == TokenError && p.err == nil {
		if lerr := p.lx.Error(); lerr != nil {
			p.err = lerr
		} else {
			p.err = types.NewSyntaxError(t.Value, t.Position)
		}
	}
	return t
}

func (p *parser) peek() Token {
	if p.peeked == nil {
		t := p.next()
		p.peeked = &t
	}
	return *p.peeked
}

func (p *parser) bindingPower(t Token) int {
	return bindingPowers[t.Type]
}

func (p *parser) syntaxErrorAt(message string, t Token) *types.Error {
	return types.NewSyntaxError(message, t.Position)
}

func (p *parser) expect(tt TokenType) (Token, error) {
	tok := p.next()
	if tok.Type != tt {
		return tok, p.syntaxErrorAt(fmt.Sprintf("expected %s, found %s", tt, tok.Type), tok)
	}
	return tok, nil
}

func identityNode(pos int) *types.ASTNode {
	return types.NewASTNode(types.NodeIdentity, pos)
}

// parseExpression is the Pratt engine's core loop: parse a prefix (nud),
// then keep absorbing infix/postfix continuations (led) whose binding
// power exceeds rbp.
func (p *parser) parseExpression(rbp int) (*types.ASTNode, error) {
	if p.err != nil {
		return nil, p.err
	}
	tok := p.next()
	left, err := p.nud(tok)
	if err != nil {
		return nil, err
	}
	for p.bindingPower(p.peek()) > rbp {
		tok = p.next()
		left, err = p.led(tok, left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// nud ("null denotation") parses tok as the start of an expression.
func (p *parser) nud(tok Token) (*types.ASTNode, error) {
	switch tok.Type {
	case TokenIdentifier:
		if p.peek().Type == TokenLParen {
			return p.parseFunctionCall(tok.Value, tok.Position)
		}
		n := types.NewASTNode(types.NodeField, tok.Position)
		n.FieldName = tok.Value
		return n, nil

	case TokenQuotedIdentifier:
		if p.peek().Type == TokenLParen {
			return nil, p.syntaxErrorAt("quoted identifiers cannot be used as a function name", tok)
		}
		n := types.NewASTNode(types.NodeField, tok.Position)
		n.FieldName = tok.Value
		return n, nil

	case TokenAt:
		return identityNode(tok.Position), nil

	case TokenDollar:
		return types.NewASTNode(types.NodeCurrent, tok.Position), nil

	case TokenStar:
		rhs, err := p.projectionRHS()
		if err != nil {
			return nil, err
		}
		n := types.NewASTNode(types.NodeObjectProjection, tok.Position)
		n.LHS, n.RHS = identityNode(tok.Position), rhs
		return n, nil

	case TokenNot:
		operand, err := p.parseExpression(bindingPowers[TokenNot])
		if err != nil {
			return nil, err
		}
		n := types.NewASTNode(types.NodeNot, tok.Position)
		n.LHS = operand
		return n, nil

	case TokenLParen:
		inner, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return inner, nil

	case TokenLBracket:
		return p.parseBracketSpecifier(identityNode(tok.Position), true)

	case TokenLBrace:
		return p.parseMultiSelectHash(tok.Position)

	case TokenFilter:
		return p.parseFilterProjection(identityNode(tok.Position))

	case TokenFlatten:
		return p.parseFlattenProjection(identityNode(tok.Position))

	case TokenLiteral:
		val, err := decodeLiteral(tok.Value)
		if err != nil {
			return nil, p.syntaxErrorAt(err.Error(), tok)
		}
		n := types.NewASTNode(types.NodeLiteral, tok.Position)
		n.Literal = val
		return n, nil

	case TokenRawString:
		n := types.NewASTNode(types.NodeLiteral, tok.Position)
		n.Literal = types.NewString(tok.Value)
		return n, nil

	case TokenEOF:
		return nil, p.syntaxErrorAt("unexpected end of expression", tok)

	default:
		return nil, p.syntaxErrorAt(fmt.Sprintf("unexpected token %s", tok.Type), tok)
	}
}

// led ("left denotation") parses tok as a continuation of left.
func (p *parser) led(tok Token, left *types.ASTNode) (*types.ASTNode, error) {
	switch tok.Type {
	case TokenDot:
		return p.parseDotRHS(left)

	case TokenPipe:
		rhs, err := p.parseExpression(bindingPowers[TokenPipe])
		if err != nil {
			return nil, err
		}
		n := types.NewASTNode(types.NodePipe, tok.Position)
		n.LHS, n.RHS = left, rhs
		return n, nil

	case TokenOr:
		rhs, err := p.parseExpression(bindingPowers[TokenOr])
		if err != nil {
			return nil, err
		}
		n := types.NewASTNode(types.NodeOr, tok.Position)
		n.LHS, n.RHS = left, rhs
		return n, nil

	case TokenAnd:
		rhs, err := p.parseExpression(bindingPowers[TokenAnd])
		if err != nil {
			return nil, err
		}
		n := types.NewASTNode(types.NodeAnd, tok.Position)
		n.LHS, n.RHS = left, rhs
		return n, nil

	case TokenEq, TokenNe, TokenLt, TokenLe, TokenGt, TokenGe:
		rhs, err := p.parseExpression(bindingPowers[tok.Type])
		if err != nil {
			return nil, err
		}
		n := types.NewASTNode(types.NodeComparator, tok.Position)
		n.LHS, n.RHS, n.Comparator = left, rhs, tok.Value
		return n, nil

	case TokenLBracket:
		return p.parseBracketSpecifier(left, false)

	case TokenFilter:
		return p.parseFilterProjection(left)

	case TokenFlatten:
		return p.parseFlattenProjection(left)

	default:
		return nil, p.syntaxErrorAt(fmt.Sprintf("unexpected token %s after expression", tok.Type), tok)
	}
}

// parseDotRHS parses whatever follows a '.', attaching left as the source
// of the resulting node. Used both for ordinary sub-expressions
// (`left.field`) and, via projectionRHS, for the per-element continuation
// of a projection (where left is an identity node).
func (p *parser) parseDotRHS(left *types.ASTNode) (*types.ASTNode, error) {
	switch p.peek().Type {
	case TokenStar:
		tok := p.next()
		rhs, err := p.projectionRHS()
		if err != nil {
			return nil, err
		}
		n := types.NewASTNode(types.NodeObjectProjection, tok.Position)
		n.LHS, n.RHS = left, rhs
		return n, nil

	case TokenLBracket:
		tok := p.next()
		list, err := p.parseMultiSelectList(tok.Position)
		if err != nil {
			return nil, err
		}
		n := types.NewASTNode(types.NodeSubexpression, left.Position)
		n.LHS, n.RHS = left, list
		return n, nil

	case TokenLBrace:
		tok := p.next()
		hash, err := p.parseMultiSelectHash(tok.Position)
		if err != nil {
			return nil, err
		}
		n := types.NewASTNode(types.NodeSubexpression, left.Position)
		n.LHS, n.RHS = left, hash
		return n, nil

	case TokenIdentifier, TokenQuotedIdentifier:
		tok := p.next()
		atom, err := p.nud(tok)
		if err != nil {
			return nil, err
		}
		n := types.NewASTNode(types.NodeSubexpression, left.Position)
		n.LHS, n.RHS = left, atom
		return n, nil

	default:
		tok := p.peek()
		return nil, p.syntaxErrorAt(fmt.Sprintf("expected identifier, '*', '[' or '{' after '.', found %s", tok.Type), tok)
	}
}

// projectionRHS parses the per-element expression that follows a
// projection-starting construct ('*', '[?...]', '[]', '[*]'), stopping at
// the first token whose binding power falls below projectionStopPower.
func (p *parser) projectionRHS() (*types.ASTNode, error) {
	next := p.peek()
	switch {
	case p.bindingPower(next) < projectionStopPower:
		return identityNode(next.Position), nil
	case next.Type == TokenDot:
		p.next()
		if t := p.peek().Type; t == TokenIdentifier || t == TokenQuotedIdentifier {
			return p.parseExpression(projectionStopPower)
		}
		left, err := p.parseDotRHS(identityNode(next.Position))
		if err != nil {
			return nil, err
		}
		for p.bindingPower(p.peek()) > projectionStopPower {
			if left, err = p.led(p.next(), left); err != nil {
				return nil, err
			}
		}
		return left, nil
	case next.Type == TokenLBracket, next.Type == TokenFilter:
		return p.parseExpression(projectionStopPower)
	default:
		return nil, p.syntaxErrorAt(fmt.Sprintf("projection must be followed by '.' or '[', found %s", next.Type), next)
	}
}

// parseBracketSpecifier parses the contents of a '[' already consumed as
// tok, dispatching to index/slice, '[*]' array projection, or (when
// allowMultiSelect) a bare multi-select-list.
func (p *parser) parseBracketSpecifier(left *types.ASTNode, allowMultiSelect bool) (*types.ASTNode, error) {
	switch p.peek().Type {
	case TokenNumber, TokenColon:
		return p.parseIndexOrSlice(left)
	case TokenStar:
		tok := p.next()
		if _, err := p.expect(TokenRBracket); err != nil {
			return nil, err
		}
		rhs, err := p.projectionRHS()
		if err != nil {
			return nil, err
		}
		n := types.NewASTNode(types.NodeArrayProjection, tok.Position)
		n.LHS, n.RHS = left, rhs
		return n, nil
	default:
		if !allowMultiSelect {
			tok := p.peek()
			return nil, p.syntaxErrorAt(fmt.Sprintf("expected number, ':' or '*' inside '[', found %s", tok.Type), tok)
		}
		return p.parseMultiSelectList(left.Position)
	}
}

// parseIndexOrSlice parses the body of '[' up to and including the closing
// ']', having already established that it begins with a number or ':'. A
// lone index ("[2]") yields a Subexpression applying an Index node to
// left; one or more colons yield a SliceProjection, since JMESPath slices
// always project.
func (p *parser) parseIndexOrSlice(left *types.ASTNode) (*types.ASTNode, error) {
	var fields [3]*float64
	fieldIdx := 0
	sawColon := false

	if p.peek().Type == TokenNumber {
		n, err := p.consumeNumber()
		if err != nil {
			return nil, err
		}
		v := float64(n)
		fields[0] = &v
	}
	for p.peek().Type == TokenColon {
		p.next()
		sawColon = true
		fieldIdx++
		if fieldIdx > 2 {
			tok := p.peek()
			return nil, p.syntaxErrorAt("too many ':' in slice expression", tok)
		}
		if p.peek().Type == TokenNumber {
			n, err := p.consumeNumber()
			if err != nil {
				return nil, err
			}
			v := float64(n)
			fields[fieldIdx] = &v
		}
	}
	closeTok, err := p.expect(TokenRBracket)
	if err != nil {
		return nil, err
	}

	if !sawColon {
		if fields[0] == nil {
			return nil, p.syntaxErrorAt("empty index expression", closeTok)
		}
		idx := types.NewASTNode(types.NodeIndex, left.Position)
		idx.IndexValue = int(*fields[0])
		n := types.NewASTNode(types.NodeSubexpression, left.Position)
		n.LHS, n.RHS = left, idx
		return n, nil
	}

	rhs, err := p.projectionRHS()
	if err != nil {
		return nil, err
	}
	n := types.NewASTNode(types.NodeSliceProjection, left.Position)
	n.LHS = left
	n.RHS = rhs
	n.Slice = types.SliceParams{Start: fields[0], Stop: fields[1], Step: fields[2]}
	return n, nil
}

func (p *parser) consumeNumber() (int, error) {
	tok, err := p.expect(TokenNumber)
	if err != nil {
		return 0, err
	}
	n, perr := parseNumberToken(tok.Value)
	if perr != nil {
		return 0, p.syntaxErrorAt(perr.Error(), tok)
	}
	return n, nil
}

// parseFilterProjection parses "[?predicate]" already positioned right
// after the '[?' token, attaching left as the projection's source.
func (p *parser) parseFilterProjection(left *types.ASTNode) (*types.ASTNode, error) {
	pred, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRBracket); err != nil {
		return nil, err
	}
	rhs, err := p.projectionRHS()
	if err != nil {
		return nil, err
	}
	n := types.NewASTNode(types.NodeFilterProjection, left.Position)
	n.LHS, n.Predicate, n.RHS = left, pred, rhs
	return n, nil
}

// parseFlattenProjection parses "[]" already consumed, wrapping left in a
// Flatten node and turning the result into an array projection.
func (p *parser) parseFlattenProjection(left *types.ASTNode) (*types.ASTNode, error) {
	flat := types.NewASTNode(types.NodeFlatten, left.Position)
	flat.LHS = left
	rhs, err := p.projectionRHS()
	if err != nil {
		return nil, err
	}
	n := types.NewASTNode(types.NodeArrayProjection, left.Position)
	n.LHS, n.RHS = flat, rhs
	return n, nil
}

// parseMultiSelectList parses "[expr, expr, ...]" with the opening '['
// already consumed.
func (p *parser) parseMultiSelectList(pos int) (*types.ASTNode, error) {
	n := types.NewASTNode(types.NodeMultiSelectList, pos)
	for {
		elem, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		n.Elements = append(n.Elements, elem)
		if p.peek().Type == TokenComma {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(TokenRBracket); err != nil {
		return nil, err
	}
	return n, nil
}

// parseMultiSelectHash parses "{key: expr, key: expr, ...}" with the
// opening '{' already consumed.
func (p *parser) parseMultiSelectHash(pos int) (*types.ASTNode, error) {
	n := types.NewASTNode(types.NodeMultiSelectHash, pos)
	for {
		keyTok := p.next()
		var key string
		switch keyTok.Type {
		case TokenIdentifier, TokenQuotedIdentifier:
			key = keyTok.Value
		default:
			return nil, p.syntaxErrorAt(fmt.Sprintf("expected a key name, found %s", keyTok.Type), keyTok)
		}
		if _, err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		val, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		n.HashPairs = append(n.HashPairs, types.HashPair{Key: key, Value: val})
		if p.peek().Type == TokenComma {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(TokenRBrace); err != nil {
		return nil, err
	}
	return n, nil
}

// parseFunctionCall parses "(args...)" already positioned right after the
// function name identifier.
func (p *parser) parseFunctionCall(name string, pos int) (*types.ASTNode, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	n := types.NewASTNode(types.NodeFunction, pos)
	n.FuncName = name

	if p.peek().Type == TokenRParen {
		p.next()
		return n, nil
	}

	for {
		var arg *types.ASTNode
		if p.peek().Type == TokenAmp {
			ampTok := p.next()
			operand, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			arg = types.NewASTNode(types.NodeExpressionRef, ampTok.Position)
			arg.LHS = operand
		} else {
			var err error
			arg, err = p.parseExpression(0)
			if err != nil {
				return nil, err
			}
		}
		n.Arguments = append(n.Arguments, arg)
		if p.peek().Type == TokenComma {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return n, nil
}
