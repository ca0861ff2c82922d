// Package ast defines the abstract syntax tree of the concept query language.
//
// Expr, FilterExpr, Refinement and Value are sealed interfaces: only types in
// this package implement them, so the validator and compiler can switch over
// every variant. Nodes are immutable once the parser returns them and carry
// the source position of their first token for diagnostics.
package ast

import "github.com/roach88/termql/internal/lexer"

// Pos is a source position.
type Pos = lexer.Position

// Expr is a concept-set expression.
type Expr interface {
	exprNode() // seals the interface
	Position() Pos
}

// FilterExpr is a node inside a {{ ... }} filter group.
type FilterExpr interface {
	filterNode() // seals the interface
	Position() Pos
}

// Refinement is the right-hand side of a ':' refinement.
type Refinement interface {
	refinementNode() // seals the interface
	Position() Pos
}

// Value is the right-hand side of an attribute comparison.
type Value interface {
	valueNode() // seals the interface
	Position() Pos
}

// Query is a parsed query. Root is nil for an empty query.
type Query struct {
	Source string
	Root   Expr
}

// HierarchyOp is a hierarchy traversal operator.
type HierarchyOp int

const (
	SelfOrDescendant HierarchyOp = iota // <<
	Descendant                          // <
	SelfOrAncestor                      // >>
	Ancestor                            // >
	Child                               // <!
	Parent                              // >!
)

var hierarchyOpSymbols = [...]string{"<<", "<", ">>", ">", "<!", ">!"}

func (op HierarchyOp) String() string {
	if int(op) < len(hierarchyOpSymbols) {
		return hierarchyOpSymbols[op]
	}
	return "?"
}

// BoolOp is a binary set operator.
type BoolOp int

const (
	And BoolOp = iota
	Or
	Minus
)

func (op BoolOp) String() string {
	switch op {
	case And:
		return "and"
	case Or:
		return "or"
	case Minus:
		return "minus"
	}
	return "?"
}

// ConceptRef is a concept identifier with an optional |term| label.
// ID is kept as text; its well-formedness is checked by the validator.
type ConceptRef struct {
	ID   string
	Term string
	Pos  Pos
}

// Wildcard is '*', every concept.
type Wildcard struct {
	Pos Pos
}

// Hierarchy applies a traversal operator to its operand.
type Hierarchy struct {
	Op      HierarchyOp
	Operand Expr
	Pos     Pos
}

// MemberOf is '^' applied to a reference set expression.
type MemberOf struct {
	RefSet Expr
	Pos    Pos
}

// Reversed is the 'R' prefix on an attribute name.
type Reversed struct {
	Expr Expr
	Pos  Pos
}

// Filtered binds a filter group and an optional cardinality to a focus.
// Group is nil when only a cardinality follows the focus.
type Filtered struct {
	Expr        Expr
	Group       *FilterGroup
	Cardinality *Cardinality
	Pos         Pos
}

// BoolExpr is a binary AND, OR or MINUS.
type BoolExpr struct {
	Op    BoolOp
	Left  Expr
	Right Expr
	Pos   Pos
}

// Grouping is a parenthesised expression.
type Grouping struct {
	Expr Expr
	Pos  Pos
}

// Negation is unary '!'.
type Negation struct {
	Expr Expr
	Pos  Pos
}

// Refined is a focus expression with a ':' refinement.
type Refined struct {
	Expr       Expr
	Refinement Refinement
	Pos        Pos
}

// Dotted is 'focus . attribute', the values of attribute on the focus set.
type Dotted struct {
	Expr      Expr
	Attribute Expr
	Pos       Pos
}

func (*ConceptRef) exprNode() {}
func (*Wildcard) exprNode()   {}
func (*Hierarchy) exprNode()  {}
func (*MemberOf) exprNode()   {}
func (*Reversed) exprNode()   {}
func (*Filtered) exprNode()   {}
func (*BoolExpr) exprNode()   {}
func (*Grouping) exprNode()   {}
func (*Negation) exprNode()   {}
func (*Refined) exprNode()    {}
func (*Dotted) exprNode()     {}

func (e *ConceptRef) Position() Pos { return e.Pos }
func (e *Wildcard) Position() Pos   { return e.Pos }
func (e *Hierarchy) Position() Pos  { return e.Pos }
func (e *MemberOf) Position() Pos   { return e.Pos }
func (e *Reversed) Position() Pos   { return e.Pos }
func (e *Filtered) Position() Pos   { return e.Pos }
func (e *BoolExpr) Position() Pos   { return e.Pos }
func (e *Grouping) Position() Pos   { return e.Pos }
func (e *Negation) Position() Pos   { return e.Pos }
func (e *Refined) Position() Pos    { return e.Pos }
func (e *Dotted) Position() Pos     { return e.Pos }

// Cardinality is a [min..max] bound. Max is ignored when Unbounded.
type Cardinality struct {
	Min       int
	Max       int
	Unbounded bool
	Pos       Pos
}
