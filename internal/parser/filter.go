package parser

import (
	"github.com/roach88/termql/internal/ast"
	"github.com/roach88/termql/internal/lexer"
)

var filterKeyExpected = []string{
	"term", "active", "moduleId", "typeId", "languageCode", "languageRefSetId",
	"acceptableIn", "preferredIn", "caseSignificanceId",
}

var filterStartExpected = append([]string{"(", "concept", "description"}, filterKeyExpected...)

// parseFilterGroup parses "{{" [FilterOr] "}}". An empty group yields a nil
// Root, which the validator rejects.
func (p *parser) parseFilterGroup() (*ast.FilterGroup, error) {
	open, err := p.expect(lexer.LDoubleBrace)
	if err != nil {
		return nil, err
	}
	group := &ast.FilterGroup{Pos: open.Pos}
	if p.at(lexer.RDoubleBrace) {
		p.next()
		return group, nil
	}
	if group.Root, err = p.parseFilterOr(); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RDoubleBrace, "}}", "AND", "OR", "MINUS"); err != nil {
		return nil, err
	}
	return group, nil
}

func (p *parser) parseFilterOr() (ast.FilterExpr, error) {
	left, err := p.parseFilterAnd()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.KwOr) {
		p.next()
		right, err := p.parseFilterAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.FilterBool{Op: ast.Or, Left: left, Right: right, Pos: left.Position()}
	}
	return left, nil
}

func (p *parser) parseFilterAnd() (ast.FilterExpr, error) {
	left, err := p.parseFilterMinus()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.KwAnd) {
		p.next()
		right, err := p.parseFilterMinus()
		if err != nil {
			return nil, err
		}
		left = &ast.FilterBool{Op: ast.And, Left: left, Right: right, Pos: left.Position()}
	}
	return left, nil
}

func (p *parser) parseFilterMinus() (ast.FilterExpr, error) {
	left, err := p.parseFilterPrimary()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.KwMinus) {
		p.next()
		right, err := p.parseFilterPrimary()
		if err != nil {
			return nil, err
		}
		left = &ast.FilterBool{Op: ast.Minus, Left: left, Right: right, Pos: left.Position()}
	}
	return left, nil
}

func (p *parser) parseFilterPrimary() (ast.FilterExpr, error) {
	if !p.at(lexer.LParen) {
		return p.parseFilterClause()
	}
	open := p.next()
	inner, err := p.parseFilterOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, ")", "AND", "OR", "MINUS"); err != nil {
		return nil, err
	}
	return &ast.FilterGrouping{Expr: inner, Pos: open.Pos}, nil
}

// parseFilterClause parses one key/value clause with an optional
// "concept." or "description." domain prefix.
func (p *parser) parseFilterClause() (ast.FilterExpr, error) {
	start := p.peek()
	domain := ast.DomainAny
	switch start.Kind {
	case lexer.KwConcept, lexer.KwDescription:
		p.next()
		if _, err := p.expect(lexer.Dot, "."); err != nil {
			return nil, err
		}
		domain = ast.DomainConcept
		if start.Kind == lexer.KwDescription {
			domain = ast.DomainDescription
		}
	}

	key := p.peek()
	switch key.Kind {
	case lexer.KwTerm:
		return p.parseTermClause(domain, start.Pos)
	case lexer.KwActive:
		p.next()
		if _, err := p.expect(lexer.Equal, "="); err != nil {
			return nil, err
		}
		switch p.peek().Kind {
		case lexer.KwTrue:
			p.next()
			return &ast.ActiveFilter{Domain: domain, Active: true, Pos: start.Pos}, nil
		case lexer.KwFalse:
			p.next()
			return &ast.ActiveFilter{Domain: domain, Active: false, Pos: start.Pos}, nil
		}
		return nil, p.fail("true", "false")
	case lexer.KwLanguageCode:
		p.next()
		if _, err := p.expect(lexer.Equal, "="); err != nil {
			return nil, err
		}
		tok, err := p.expect(lexer.String, "string")
		if err != nil {
			return nil, err
		}
		return &ast.LanguageCodeFilter{Domain: domain, Code: tok.Text(), Pos: start.Pos}, nil
	case lexer.KwModuleID, lexer.KwTypeID, lexer.KwLanguageRefSetID,
		lexer.KwAcceptableIn, lexer.KwPreferredIn, lexer.KwCaseSignificanceID:
		p.next()
		if _, err := p.expect(lexer.Equal, "="); err != nil {
			return nil, err
		}
		ref, err := p.parseConceptRef()
		if err != nil {
			return nil, err
		}
		return refClause(key.Kind, domain, ref, start.Pos), nil
	}

	if domain != ast.DomainAny {
		return nil, p.fail(filterKeyExpected...)
	}
	return nil, p.fail(filterStartExpected...)
}

func refClause(kind lexer.Kind, domain ast.Domain, ref *ast.ConceptRef, pos ast.Pos) ast.FilterExpr {
	switch kind {
	case lexer.KwModuleID:
		return &ast.ModuleFilter{Domain: domain, Module: ref, Pos: pos}
	case lexer.KwTypeID:
		return &ast.TypeFilter{Domain: domain, Type: ref, Pos: pos}
	case lexer.KwLanguageRefSetID:
		return &ast.LanguageRefSetFilter{Domain: domain, RefSet: ref, Pos: pos}
	case lexer.KwAcceptableIn:
		return &ast.AcceptableInFilter{Domain: domain, RefSet: ref, Pos: pos}
	case lexer.KwPreferredIn:
		return &ast.PreferredInFilter{Domain: domain, RefSet: ref, Pos: pos}
	default:
		return &ast.CaseSignificanceFilter{Domain: domain, CaseSignificance: ref, Pos: pos}
	}
}

// parseTermClause parses "term" ("match" | "exact" | "regex" | "=") StringLit.
// Match mode compares case-insensitively; exact and regex are case-sensitive.
func (p *parser) parseTermClause(domain ast.Domain, pos ast.Pos) (ast.FilterExpr, error) {
	p.next()
	var mode ast.TermMode
	switch p.peek().Kind {
	case lexer.KwMatch, lexer.Equal:
		mode = ast.Match
	case lexer.KwExact:
		mode = ast.Exact
	case lexer.KwRegex:
		mode = ast.Regex
	default:
		return nil, p.fail("match", "exact", "regex", "=")
	}
	p.next()
	tok, err := p.expect(lexer.String, "string")
	if err != nil {
		return nil, err
	}
	return &ast.TermFilter{
		Domain:        domain,
		Mode:          mode,
		Value:         tok.Text(),
		CaseSensitive: mode != ast.Match,
		Pos:           pos,
	}, nil
}
