package compiler

import (
	"fmt"

	"github.com/roach88/termql/internal/ast"
	"github.com/roach88/termql/internal/queryir"
)

var termModes = map[ast.TermMode]queryir.MatchMode{
	ast.Match: queryir.MatchWords,
	ast.Exact: queryir.MatchExact,
	ast.Regex: queryir.MatchRegex,
}

// compileFilter lowers a filter clause tree. The same leaves serve both
// domains; the caller decides whether to wrap them in Described.
func compileFilter(f ast.FilterExpr) queryir.Predicate {
	switch n := f.(type) {
	case *ast.TermFilter:
		mode, ok := termModes[n.Mode]
		if !ok {
			panic(fmt.Sprintf("compiler: unsupported term mode %s", n.Mode))
		}
		return &queryir.TermMatches{Mode: mode, Value: n.Value, CaseSensitive: n.CaseSensitive}
	case *ast.ActiveFilter:
		return &queryir.IsActive{Active: n.Active}
	case *ast.ModuleFilter:
		return &queryir.HasModule{Module: n.Module.ID}
	case *ast.TypeFilter:
		return &queryir.HasType{Type: n.Type.ID}
	case *ast.LanguageCodeFilter:
		return &queryir.HasLanguageCode{Code: n.Code}
	case *ast.LanguageRefSetFilter:
		return &queryir.InLanguageRefSet{RefSet: n.RefSet.ID}
	case *ast.AcceptableInFilter:
		return &queryir.IsAcceptableIn{RefSet: n.RefSet.ID}
	case *ast.PreferredInFilter:
		return &queryir.IsPreferredIn{RefSet: n.RefSet.ID}
	case *ast.CaseSignificanceFilter:
		return &queryir.HasCaseSignificance{CaseSignificance: n.CaseSignificance.ID}
	case *ast.FilterGrouping:
		return compileFilter(n.Expr)
	case *ast.FilterBool:
		switch n.Op {
		case ast.And:
			return &queryir.Intersection{Predicates: flattenFilter(n, ast.And)}
		case ast.Or:
			return &queryir.Union{Predicates: flattenFilter(n, ast.Or)}
		case ast.Minus:
			return &queryir.Difference{Left: compileFilter(n.Left), Right: compileFilter(n.Right)}
		}
		panic(fmt.Sprintf("compiler: unsupported filter operator %s", n.Op))
	default:
		panic(fmt.Sprintf("compiler: unsupported filter clause %T", f))
	}
}

func flattenFilter(f ast.FilterExpr, op ast.BoolOp) []queryir.Predicate {
	for {
		g, ok := f.(*ast.FilterGrouping)
		if !ok {
			break
		}
		f = g.Expr
	}
	if b, ok := f.(*ast.FilterBool); ok && b.Op == op {
		return append(flattenFilter(b.Left, op), flattenFilter(b.Right, op)...)
	}
	return []queryir.Predicate{compileFilter(f)}
}
