package compiler

import (
	"fmt"
	"strconv"

	"github.com/roach88/termql/internal/ast"
	"github.com/roach88/termql/internal/queryir"
)

func compileRefinement(r ast.Refinement) queryir.Predicate {
	switch n := r.(type) {
	case *ast.AttributeConstraint:
		return compileAttribute(n)
	case *ast.AttributeGroup:
		return &queryir.Grouped{
			Refinement: compileRefinement(n.Refinement),
			Count:      compileCount(n.Cardinality),
		}
	case *ast.NestedRefinement:
		return compileRefinement(n.Refinement)
	case *ast.RefinementBool:
		switch n.Op {
		case ast.And:
			return &queryir.Intersection{Predicates: flattenRefinement(n, ast.And)}
		case ast.Or:
			return &queryir.Union{Predicates: flattenRefinement(n, ast.Or)}
		}
		panic(fmt.Sprintf("compiler: unsupported refinement operator %s", n.Op))
	default:
		panic(fmt.Sprintf("compiler: unsupported refinement %T", r))
	}
}

func flattenRefinement(r ast.Refinement, op ast.BoolOp) []queryir.Predicate {
	if b, ok := r.(*ast.RefinementBool); ok && b.Op == op {
		return append(flattenRefinement(b.Left, op), flattenRefinement(b.Right, op)...)
	}
	return []queryir.Predicate{compileRefinement(r)}
}

// compileAttribute lowers one "attribute op value" constraint. A leading R
// on the attribute marks the relationship as reversed.
func compileAttribute(n *ast.AttributeConstraint) queryir.Predicate {
	attr := &queryir.Attribute{Count: compileCount(n.Cardinality)}
	typ := n.Attribute
	if rev, ok := typ.(*ast.Reversed); ok {
		attr.Reversed = true
		typ = rev.Expr
	}
	attr.Type = compileExpr(typ)

	switch v := n.Value.(type) {
	case *ast.ExprValue:
		attr.Value = compileExpr(v.Expr)
		attr.Negated = n.Op == ast.NotEq
	case *ast.StringValue:
		attr.Concrete = &queryir.ConcreteValue{Op: n.Op.String(), Kind: queryir.ConcreteString, Value: v.Value}
	case *ast.IntegerValue:
		attr.Concrete = &queryir.ConcreteValue{Op: n.Op.String(), Kind: queryir.ConcreteInteger, Value: strconv.FormatInt(v.Value, 10)}
	case *ast.DecimalValue:
		attr.Concrete = &queryir.ConcreteValue{Op: n.Op.String(), Kind: queryir.ConcreteDecimal, Value: v.Text}
	default:
		panic(fmt.Sprintf("compiler: unsupported attribute value %T", n.Value))
	}
	return attr
}
