package parser

import (
	"strconv"
	"strings"

	"github.com/roach88/termql/internal/ast"
	"github.com/roach88/termql/internal/lexer"
)

// parseRefinement parses Refinement := RefAnd ("OR" RefAnd)*.
func (p *parser) parseRefinement() (ast.Refinement, error) {
	left, err := p.parseRefAnd()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.KwOr) {
		p.next()
		right, err := p.parseRefAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.RefinementBool{Op: ast.Or, Left: left, Right: right, Pos: left.Position()}
	}
	return left, nil
}

// parseRefAnd parses RefAnd := RefSub (("AND" | ",") RefSub)*. Inside a
// refinement a comma conjoins attributes.
func (p *parser) parseRefAnd() (ast.Refinement, error) {
	left, err := p.parseRefSub()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.KwAnd, lexer.Comma) {
		p.next()
		right, err := p.parseRefSub()
		if err != nil {
			return nil, err
		}
		left = &ast.RefinementBool{Op: ast.And, Left: left, Right: right, Pos: left.Position()}
	}
	return left, nil
}

func (p *parser) parseRefSub() (ast.Refinement, error) {
	start := p.peek()
	if start.Kind == lexer.LParen {
		p.next()
		inner, err := p.parseRefinement()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, ")", "AND", "OR", ","); err != nil {
			return nil, err
		}
		return &ast.NestedRefinement{Refinement: inner, Pos: start.Pos}, nil
	}

	var card *ast.Cardinality
	if start.Kind == lexer.LBracket {
		var err error
		if card, err = p.parseCardinality(); err != nil {
			return nil, err
		}
	}

	if p.at(lexer.LBrace) {
		p.next()
		inner, err := p.parseRefinement()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBrace, "}", "AND", "OR", ","); err != nil {
			return nil, err
		}
		return &ast.AttributeGroup{Cardinality: card, Refinement: inner, Pos: start.Pos}, nil
	}

	return p.parseAttributeConstraint(card, start.Pos)
}

var compareOps = map[lexer.Kind]ast.CompareOp{
	lexer.Equal:    ast.Eq,
	lexer.NotEqual: ast.NotEq,
	lexer.Lt:       ast.Lt,
	lexer.Lte:      ast.Lte,
	lexer.Gt:       ast.Gt,
	lexer.Gte:      ast.Gte,
}

// parseAttributeConstraint parses ["R"] SubExpr Comparison.
func (p *parser) parseAttributeConstraint(card *ast.Cardinality, pos ast.Pos) (ast.Refinement, error) {
	var attr ast.Expr
	if p.at(lexer.Reversed) {
		tok := p.next()
		inner, err := p.parseSub()
		if err != nil {
			return nil, err
		}
		attr = &ast.Reversed{Expr: inner, Pos: tok.Pos}
	} else {
		if !p.at(lexer.Integer, lexer.Star, lexer.Caret, lexer.DblLt, lexer.Lt, lexer.DblGt, lexer.Gt, lexer.LtBang, lexer.GtBang) {
			return nil, p.fail("attribute", "R", "[", "{", "(")
		}
		var err error
		if attr, err = p.parseSub(); err != nil {
			return nil, err
		}
	}

	opTok := p.peek()
	op, ok := compareOps[opTok.Kind]
	if !ok {
		return nil, p.fail("=", "!=", "<", "<=", ">", ">=")
	}
	p.next()

	value, err := p.parseComparisonValue(op)
	if err != nil {
		return nil, err
	}
	return &ast.AttributeConstraint{Cardinality: card, Attribute: attr, Op: op, Value: value, Pos: pos}, nil
}

// parseComparisonValue parses the right-hand side of a comparison. Ordering
// operators only accept numbers.
func (p *parser) parseComparisonValue(op ast.CompareOp) (ast.Value, error) {
	tok := p.peek()
	if tok.Kind == lexer.Hash {
		return p.parseNumber()
	}
	if op != ast.Eq && op != ast.NotEq {
		return nil, p.fail("#")
	}
	if tok.Kind == lexer.String {
		p.next()
		return &ast.StringValue{Value: tok.Text(), Pos: tok.Pos}, nil
	}
	if !p.at(lexer.Integer, lexer.Star, lexer.Caret, lexer.LParen, lexer.DblLt, lexer.Lt, lexer.DblGt, lexer.Gt, lexer.LtBang, lexer.GtBang) {
		return nil, p.fail(append([]string{"string", "#"}, focusExpected...)...)
	}
	expr, err := p.parseSub()
	if err != nil {
		return nil, err
	}
	return &ast.ExprValue{Expr: expr, Pos: tok.Pos}, nil
}

// parseNumber parses "#" ["+" | "-"] IntLit ["." IntLit].
func (p *parser) parseNumber() (ast.Value, error) {
	hash := p.next()
	var text strings.Builder
	if p.at(lexer.Dash) {
		p.next()
		text.WriteByte('-')
	} else if p.at(lexer.Plus) {
		p.next()
	}
	whole, err := p.expect(lexer.Integer, "number")
	if err != nil {
		return nil, err
	}
	text.WriteString(whole.Lexeme)

	if !p.at(lexer.Dot) {
		n, err := strconv.ParseInt(text.String(), 10, 64)
		if err != nil {
			return nil, &Error{Pos: whole.Pos, Found: whole.Describe(), Expected: []string{"integer in range"}}
		}
		return &ast.IntegerValue{Value: n, Pos: hash.Pos}, nil
	}
	p.next()
	frac, err := p.expect(lexer.Integer, "digits")
	if err != nil {
		return nil, err
	}
	text.WriteString("." + frac.Lexeme)
	return &ast.DecimalValue{Text: text.String(), Pos: hash.Pos}, nil
}
