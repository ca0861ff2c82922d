package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders a query as a position-free S-expression.
//
// Two queries are structurally identical when their dumps are equal. The
// empty query dumps to "()".
//
//	<< 123 {{ term match "x" }}  =>  (filtered (<< 123) {{ (term match "x") }})
func Dump(q *Query) string {
	if q == nil || q.Root == nil {
		return "()"
	}
	return DumpExpr(q.Root)
}

// DumpExpr renders a single expression.
func DumpExpr(e Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case nil:
		b.WriteString("<nil>")
	case *ConceptRef:
		b.WriteString(n.ID)
		if n.Term != "" {
			b.WriteString("|" + n.Term + "|")
		}
	case *Wildcard:
		b.WriteString("*")
	case *Hierarchy:
		fmt.Fprintf(b, "(%s ", n.Op)
		writeExpr(b, n.Operand)
		b.WriteString(")")
	case *MemberOf:
		b.WriteString("(^ ")
		writeExpr(b, n.RefSet)
		b.WriteString(")")
	case *Reversed:
		b.WriteString("(R ")
		writeExpr(b, n.Expr)
		b.WriteString(")")
	case *Filtered:
		b.WriteString("(filtered ")
		writeExpr(b, n.Expr)
		if n.Group != nil {
			b.WriteString(" ")
			writeGroup(b, n.Group)
		}
		if n.Cardinality != nil {
			b.WriteString(" ")
			writeCardinality(b, n.Cardinality)
		}
		b.WriteString(")")
	case *BoolExpr:
		fmt.Fprintf(b, "(%s ", n.Op)
		writeExpr(b, n.Left)
		b.WriteString(" ")
		writeExpr(b, n.Right)
		b.WriteString(")")
	case *Grouping:
		b.WriteString("(group ")
		writeExpr(b, n.Expr)
		b.WriteString(")")
	case *Negation:
		b.WriteString("(! ")
		writeExpr(b, n.Expr)
		b.WriteString(")")
	case *Refined:
		b.WriteString("(refine ")
		writeExpr(b, n.Expr)
		b.WriteString(" ")
		writeRefinement(b, n.Refinement)
		b.WriteString(")")
	case *Dotted:
		b.WriteString("(dot ")
		writeExpr(b, n.Expr)
		b.WriteString(" ")
		writeExpr(b, n.Attribute)
		b.WriteString(")")
	default:
		fmt.Fprintf(b, "<%T>", e)
	}
}

func writeGroup(b *strings.Builder, g *FilterGroup) {
	if g.Root == nil {
		b.WriteString("{{ }}")
		return
	}
	b.WriteString("{{ ")
	writeFilter(b, g.Root)
	b.WriteString(" }}")
}

func writeCardinality(b *strings.Builder, c *Cardinality) {
	if c.Unbounded {
		fmt.Fprintf(b, "[%d..*]", c.Min)
		return
	}
	fmt.Fprintf(b, "[%d..%d]", c.Min, c.Max)
}

func clauseName(d Domain, key string) string {
	if d == DomainAny {
		return key
	}
	return d.String() + "." + key
}

func writeFilter(b *strings.Builder, f FilterExpr) {
	switch n := f.(type) {
	case nil:
		b.WriteString("<nil>")
	case *TermFilter:
		fmt.Fprintf(b, "(%s %s %s)", clauseName(n.Domain, "term"), n.Mode, strconv.Quote(n.Value))
	case *ActiveFilter:
		fmt.Fprintf(b, "(%s %t)", clauseName(n.Domain, "active"), n.Active)
	case *ModuleFilter:
		writeRefClause(b, n.Domain, "moduleId", n.Module)
	case *TypeFilter:
		writeRefClause(b, n.Domain, "typeId", n.Type)
	case *LanguageCodeFilter:
		fmt.Fprintf(b, "(%s %s)", clauseName(n.Domain, "languageCode"), strconv.Quote(n.Code))
	case *LanguageRefSetFilter:
		writeRefClause(b, n.Domain, "languageRefSetId", n.RefSet)
	case *AcceptableInFilter:
		writeRefClause(b, n.Domain, "acceptableIn", n.RefSet)
	case *PreferredInFilter:
		writeRefClause(b, n.Domain, "preferredIn", n.RefSet)
	case *CaseSignificanceFilter:
		writeRefClause(b, n.Domain, "caseSignificanceId", n.CaseSignificance)
	case *FilterBool:
		fmt.Fprintf(b, "(%s ", n.Op)
		writeFilter(b, n.Left)
		b.WriteString(" ")
		writeFilter(b, n.Right)
		b.WriteString(")")
	case *FilterGrouping:
		b.WriteString("(group ")
		writeFilter(b, n.Expr)
		b.WriteString(")")
	default:
		fmt.Fprintf(b, "<%T>", f)
	}
}

func writeRefClause(b *strings.Builder, d Domain, key string, ref *ConceptRef) {
	fmt.Fprintf(b, "(%s ", clauseName(d, key))
	if ref == nil {
		b.WriteString("<nil>")
	} else {
		writeExpr(b, ref)
	}
	b.WriteString(")")
}

func writeRefinement(b *strings.Builder, r Refinement) {
	switch n := r.(type) {
	case nil:
		b.WriteString("<nil>")
	case *AttributeConstraint:
		b.WriteString("(attr ")
		if n.Cardinality != nil {
			writeCardinality(b, n.Cardinality)
			b.WriteString(" ")
		}
		writeExpr(b, n.Attribute)
		fmt.Fprintf(b, " %s ", n.Op)
		writeValue(b, n.Value)
		b.WriteString(")")
	case *AttributeGroup:
		b.WriteString("(attrgroup ")
		if n.Cardinality != nil {
			writeCardinality(b, n.Cardinality)
			b.WriteString(" ")
		}
		writeRefinement(b, n.Refinement)
		b.WriteString(")")
	case *RefinementBool:
		fmt.Fprintf(b, "(%s ", n.Op)
		writeRefinement(b, n.Left)
		b.WriteString(" ")
		writeRefinement(b, n.Right)
		b.WriteString(")")
	case *NestedRefinement:
		b.WriteString("(group ")
		writeRefinement(b, n.Refinement)
		b.WriteString(")")
	default:
		fmt.Fprintf(b, "<%T>", r)
	}
}

func writeValue(b *strings.Builder, v Value) {
	switch n := v.(type) {
	case nil:
		b.WriteString("<nil>")
	case *ExprValue:
		writeExpr(b, n.Expr)
	case *StringValue:
		b.WriteString(strconv.Quote(n.Value))
	case *IntegerValue:
		fmt.Fprintf(b, "#%d", n.Value)
	case *DecimalValue:
		b.WriteString("#" + n.Text)
	default:
		fmt.Fprintf(b, "<%T>", v)
	}
}
