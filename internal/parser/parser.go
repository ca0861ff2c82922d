// Package parser builds an ast.Query from a token stream.
//
// The parser is recursive descent with one token of lookahead. It stops at
// the first unexpected token and reports what it found and what it
// expected; there is no error recovery.
//
// Precedence, loosest first:
//
//	OR ,      union (comma only between expressions, never inside refinements)
//	AND       intersection
//	MINUS     difference, left-associative
//	!         complement
//	:         refinement
//	.         attribute values
//	<< < >> > <! >!  ^  {{ }}  [m..n]
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/termql/internal/ast"
	"github.com/roach88/termql/internal/lexer"
)

// Error is a syntax error at the first unexpected token.
type Error struct {
	Pos      lexer.Position
	Found    string
	Expected []string
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parse error at %s (offset %d): unexpected %s", e.Pos, e.Pos.Offset, e.Found)
	switch len(e.Expected) {
	case 0:
	case 1:
		fmt.Fprintf(&b, ", expected %s", e.Expected[0])
	default:
		fmt.Fprintf(&b, ", expected one of %s", strings.Join(e.Expected, " "))
	}
	return b.String()
}

// ParseString tokenizes and parses src. Lexical errors are returned as
// *lexer.Error, syntax errors as *Error.
func ParseString(src string) (*ast.Query, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	q, err := Parse(tokens)
	if err != nil {
		return nil, err
	}
	q.Source = src
	return q, nil
}

// Parse parses a token stream produced by lexer.Tokenize. A stream that does
// not end in EOF is treated as if it did.
func Parse(tokens []lexer.Token) (*ast.Query, error) {
	p := &parser{tokens: tokens}
	if p.peek().Kind == lexer.EOF {
		return &ast.Query{}, nil
	}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.EOF, "AND", "OR", ",", "MINUS", "end of input"); err != nil {
		return nil, err
	}
	return &ast.Query{Root: root}, nil
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

func (p *parser) peek() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	var end lexer.Position
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		end = lexer.Position{Offset: last.End, Line: last.Pos.Line, Column: last.Pos.Column + (last.End - last.Pos.Offset)}
	} else {
		end = lexer.Position{Line: 1, Column: 1}
	}
	return lexer.Token{Kind: lexer.EOF, Pos: end, End: end.Offset}
}

func (p *parser) at(kinds ...lexer.Kind) bool {
	k := p.peek().Kind
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func (p *parser) next() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) fail(expected ...string) error {
	tok := p.peek()
	return &Error{Pos: tok.Pos, Found: tok.Describe(), Expected: expected}
}

// expect consumes a token of the given kind. The expected list defaults to
// the kind's spelling.
func (p *parser) expect(kind lexer.Kind, expected ...string) (lexer.Token, error) {
	if !p.at(kind) {
		if len(expected) == 0 {
			expected = []string{kind.String()}
		}
		return lexer.Token{}, p.fail(expected...)
	}
	return p.next(), nil
}

// parseOr parses OrExpr := AndExpr (("OR" | ",") AndExpr)*.
func (p *parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.KwOr, lexer.Comma) {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BoolExpr{Op: ast.Or, Left: left, Right: right, Pos: left.Position()}
	}
	return left, nil
}

// parseAnd parses AndExpr := MinusExpr ("AND" MinusExpr)*.
func (p *parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseMinus()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.KwAnd) {
		p.next()
		right, err := p.parseMinus()
		if err != nil {
			return nil, err
		}
		left = &ast.BoolExpr{Op: ast.And, Left: left, Right: right, Pos: left.Position()}
	}
	return left, nil
}

// parseMinus parses MinusExpr := UnaryExpr ("MINUS" UnaryExpr)*.
func (p *parser) parseMinus() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.KwMinus) {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BoolExpr{Op: ast.Minus, Left: left, Right: right, Pos: left.Position()}
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.at(lexer.Bang) {
		tok := p.next()
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &ast.Negation{Expr: operand, Pos: tok.Pos}, nil
	}
	return p.parsePrimary()
}

// parsePrimary parses PrimaryExpr := DottedExpr [":" Refinement].
func (p *parser) parsePrimary() (ast.Expr, error) {
	expr, err := p.parseDotted()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.Colon) {
		return expr, nil
	}
	p.next()
	ref, err := p.parseRefinement()
	if err != nil {
		return nil, err
	}
	return &ast.Refined{Expr: expr, Refinement: ref, Pos: expr.Position()}, nil
}

// parseDotted parses DottedExpr := SubExpr ("." SubExpr)*.
func (p *parser) parseDotted() (ast.Expr, error) {
	expr, err := p.parseSub()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Dot) {
		p.next()
		attr, err := p.parseSub()
		if err != nil {
			return nil, err
		}
		expr = &ast.Dotted{Expr: expr, Attribute: attr, Pos: expr.Position()}
	}
	return expr, nil
}

var hierarchyOps = map[lexer.Kind]ast.HierarchyOp{
	lexer.DblLt:  ast.SelfOrDescendant,
	lexer.Lt:     ast.Descendant,
	lexer.DblGt:  ast.SelfOrAncestor,
	lexer.Gt:     ast.Ancestor,
	lexer.LtBang: ast.Child,
	lexer.GtBang: ast.Parent,
}

var focusExpected = []string{"concept id", "*", "^", "(", "<<", "<", ">>", ">", "<!", ">!"}

// parseSub parses SubExpr := HierarchyOp? FocusExpr FilterGroup? Cardinality?.
func (p *parser) parseSub() (ast.Expr, error) {
	start := p.peek()
	op, isHierarchy := hierarchyOps[start.Kind]
	if isHierarchy {
		p.next()
	}

	focus, err := p.parseFocus(isHierarchy)
	if err != nil {
		return nil, err
	}
	expr := focus
	if isHierarchy {
		expr = &ast.Hierarchy{Op: op, Operand: focus, Pos: start.Pos}
	}

	var group *ast.FilterGroup
	if p.at(lexer.LDoubleBrace) {
		if group, err = p.parseFilterGroup(); err != nil {
			return nil, err
		}
	}
	var card *ast.Cardinality
	if p.at(lexer.LBracket) {
		if card, err = p.parseCardinality(); err != nil {
			return nil, err
		}
	}
	if group == nil && card == nil {
		return expr, nil
	}
	return &ast.Filtered{Expr: expr, Group: group, Cardinality: card, Pos: start.Pos}, nil
}

// parseFocus parses FocusExpr := ConceptRef | "*" | "^" Focus | "(" OrExpr ")".
func (p *parser) parseFocus(afterOp bool) (ast.Expr, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Integer:
		return p.parseConceptRef()
	case lexer.Star:
		p.next()
		return &ast.Wildcard{Pos: tok.Pos}, nil
	case lexer.Caret:
		p.next()
		var refset ast.Expr
		var err error
		switch p.peek().Kind {
		case lexer.Integer:
			refset, err = p.parseConceptRef()
		case lexer.Star:
			refset = &ast.Wildcard{Pos: p.next().Pos}
		case lexer.LParen:
			refset, err = p.parseNested()
		default:
			return nil, p.fail("concept id", "*", "(")
		}
		if err != nil {
			return nil, err
		}
		return &ast.MemberOf{RefSet: refset, Pos: tok.Pos}, nil
	case lexer.LParen:
		return p.parseNested()
	}
	if afterOp {
		return nil, p.fail("concept id", "*", "^", "(")
	}
	return nil, p.fail(focusExpected...)
}

func (p *parser) parseNested() (ast.Expr, error) {
	open := p.next()
	inner, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, ")", "AND", "OR", ",", "MINUS"); err != nil {
		return nil, err
	}
	return &ast.Grouping{Expr: inner, Pos: open.Pos}, nil
}

// parseConceptRef parses ConceptRef := IntLit [TermString].
func (p *parser) parseConceptRef() (*ast.ConceptRef, error) {
	tok, err := p.expect(lexer.Integer, "concept id")
	if err != nil {
		return nil, err
	}
	ref := &ast.ConceptRef{ID: tok.Lexeme, Pos: tok.Pos}
	if p.at(lexer.TermString) {
		ref.Term = strings.TrimSpace(p.next().Text())
	}
	return ref, nil
}

// parseCardinality parses Cardinality := "[" IntLit ".." (IntLit | "*") "]".
func (p *parser) parseCardinality() (*ast.Cardinality, error) {
	open, err := p.expect(lexer.LBracket)
	if err != nil {
		return nil, err
	}
	card := &ast.Cardinality{Pos: open.Pos}
	if card.Min, err = p.parseInt(); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.DotDot); err != nil {
		return nil, err
	}
	if p.at(lexer.Star) {
		p.next()
		card.Unbounded = true
	} else if card.Max, err = p.parseInt(); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBracket); err != nil {
		return nil, err
	}
	return card, nil
}

func (p *parser) parseInt() (int, error) {
	tok, err := p.expect(lexer.Integer, "integer")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok.Lexeme)
	if err != nil {
		return 0, &Error{Pos: tok.Pos, Found: tok.Describe(), Expected: []string{"integer in range"}}
	}
	return n, nil
}
