// Package compiler lowers a validated query AST into a queryir.Predicate.
//
// Compile is a pure tree transform: it performs no I/O and holds no state,
// so the same AST always yields a structurally equal Predicate. Build runs
// the whole front end (lex, parse, validate, compile) for a query string.
package compiler

import (
	"fmt"

	"github.com/roach88/termql/internal/ast"
	"github.com/roach88/termql/internal/queryir"
)

// Compile lowers a validated query. The empty query compiles to MatchNone.
//
// Compile panics on a node it does not recognize, or on a node the
// validator rejects (such as R outside attribute position). Callers with
// untrusted input use Build, which validates first.
func Compile(q *ast.Query) queryir.Predicate {
	if q == nil || q.Root == nil {
		return &queryir.MatchNone{}
	}
	return compileExpr(q.Root)
}

func compileExpr(e ast.Expr) queryir.Predicate {
	switch n := e.(type) {
	case *ast.ConceptRef:
		return &queryir.ConceptIs{ID: n.ID}
	case *ast.Wildcard:
		return &queryir.MatchAll{}
	case *ast.Hierarchy:
		return compileHierarchy(n)
	case *ast.MemberOf:
		return &queryir.Member{RefSet: compileExpr(n.RefSet)}
	case *ast.Filtered:
		return compileFiltered(n)
	case *ast.BoolExpr:
		return compileBool(n)
	case *ast.Grouping:
		return compileExpr(n.Expr)
	case *ast.Negation:
		return &queryir.Complement{Predicate: compileExpr(n.Expr)}
	case *ast.Refined:
		return &queryir.Intersection{Predicates: []queryir.Predicate{
			compileExpr(n.Expr),
			compileRefinement(n.Refinement),
		}}
	case *ast.Dotted:
		return &queryir.AttributeValues{
			Focus: compileExpr(n.Expr),
			Type:  compileExpr(n.Attribute),
		}
	case *ast.Reversed:
		panic(fmt.Sprintf("compiler: reversed expression at %s outside attribute position", n.Pos))
	default:
		panic(fmt.Sprintf("compiler: unsupported expression %T", e))
	}
}

func compileHierarchy(n *ast.Hierarchy) queryir.Predicate {
	c := &queryir.Closure{Focus: compileExpr(n.Operand)}
	switch n.Op {
	case ast.SelfOrDescendant:
		c.Direction, c.IncludeSelf = queryir.Descendants, true
	case ast.Descendant:
		c.Direction = queryir.Descendants
	case ast.Child:
		c.Direction, c.DirectOnly = queryir.Descendants, true
	case ast.SelfOrAncestor:
		c.Direction, c.IncludeSelf = queryir.Ancestors, true
	case ast.Ancestor:
		c.Direction = queryir.Ancestors
	case ast.Parent:
		c.Direction, c.DirectOnly = queryir.Ancestors, true
	default:
		panic(fmt.Sprintf("compiler: unsupported hierarchy operator %s", n.Op))
	}
	return c
}

// compileBool flattens chains of the same associative operator, so
// "a AND b AND c" becomes one Intersection of three. MINUS is never
// flattened or simplified.
func compileBool(n *ast.BoolExpr) queryir.Predicate {
	switch n.Op {
	case ast.And:
		return &queryir.Intersection{Predicates: flatten(n, ast.And)}
	case ast.Or:
		return &queryir.Union{Predicates: flatten(n, ast.Or)}
	case ast.Minus:
		return &queryir.Difference{Left: compileExpr(n.Left), Right: compileExpr(n.Right)}
	default:
		panic(fmt.Sprintf("compiler: unsupported boolean operator %s", n.Op))
	}
}

func flatten(e ast.Expr, op ast.BoolOp) []queryir.Predicate {
	for {
		g, ok := e.(*ast.Grouping)
		if !ok {
			break
		}
		e = g.Expr
	}
	if b, ok := e.(*ast.BoolExpr); ok && b.Op == op {
		return append(flatten(b.Left, op), flatten(b.Right, op)...)
	}
	return []queryir.Predicate{compileExpr(e)}
}

// compileFiltered intersects the focus with its filter group. A
// cardinality counts matches of the group: descriptions for a description
// filter, and the single concept-level match otherwise. Without a group the
// focus itself is the group and matches each of its concepts once.
func compileFiltered(n *ast.Filtered) queryir.Predicate {
	focus := compileExpr(n.Expr)
	count := compileCount(n.Cardinality)

	var filter queryir.Predicate
	switch {
	case n.Group == nil || n.Group.Root == nil:
		if count == nil {
			return focus
		}
		filter = &queryir.Counted{Predicate: &queryir.MatchAll{}, Count: count}
	case ast.GroupDomain(n.Group) == ast.DomainDescription:
		filter = &queryir.Described{Filter: compileFilter(n.Group.Root), Count: count}
	case count != nil:
		filter = &queryir.Counted{Predicate: compileFilter(n.Group.Root), Count: count}
	default:
		filter = compileFilter(n.Group.Root)
	}
	return &queryir.Intersection{Predicates: []queryir.Predicate{focus, filter}}
}

func compileCount(c *ast.Cardinality) *queryir.Count {
	if c == nil {
		return nil
	}
	return &queryir.Count{Min: c.Min, Max: c.Max, Unbounded: c.Unbounded}
}
