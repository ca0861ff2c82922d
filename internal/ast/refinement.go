package ast

// CompareOp is an attribute comparison operator.
type CompareOp int

const (
	Eq CompareOp = iota
	NotEq
	Lt
	Lte
	Gt
	Gte
)

var compareOpSymbols = [...]string{"=", "!=", "<", "<=", ">", ">="}

func (op CompareOp) String() string {
	if int(op) < len(compareOpSymbols) {
		return compareOpSymbols[op]
	}
	return "?"
}

// AttributeConstraint is 'attribute op value'. Attribute may be a *Reversed.
type AttributeConstraint struct {
	Cardinality *Cardinality
	Attribute   Expr
	Op          CompareOp
	Value       Value
	Pos         Pos
}

// AttributeGroup is '{ refinement }', attributes that must hold within one
// relationship group.
type AttributeGroup struct {
	Cardinality *Cardinality
	Refinement  Refinement
	Pos         Pos
}

// RefinementBool combines two refinements with AND or OR.
type RefinementBool struct {
	Op    BoolOp
	Left  Refinement
	Right Refinement
	Pos   Pos
}

// NestedRefinement is a parenthesised refinement.
type NestedRefinement struct {
	Refinement Refinement
	Pos        Pos
}

func (*AttributeConstraint) refinementNode() {}
func (*AttributeGroup) refinementNode()      {}
func (*RefinementBool) refinementNode()      {}
func (*NestedRefinement) refinementNode()    {}

func (r *AttributeConstraint) Position() Pos { return r.Pos }
func (r *AttributeGroup) Position() Pos      { return r.Pos }
func (r *RefinementBool) Position() Pos      { return r.Pos }
func (r *NestedRefinement) Position() Pos    { return r.Pos }

// ExprValue is a concept expression on the right of '=' or '!='.
type ExprValue struct {
	Expr Expr
	Pos  Pos
}

// StringValue is a quoted concrete value.
type StringValue struct {
	Value string
	Pos   Pos
}

// IntegerValue is '#' followed by a signed integer.
type IntegerValue struct {
	Value int64
	Pos   Pos
}

// DecimalValue is '#' followed by a signed decimal, kept as text.
type DecimalValue struct {
	Text string
	Pos  Pos
}

func (*ExprValue) valueNode()    {}
func (*StringValue) valueNode()  {}
func (*IntegerValue) valueNode() {}
func (*DecimalValue) valueNode() {}

func (v *ExprValue) Position() Pos    { return v.Pos }
func (v *StringValue) Position() Pos  { return v.Pos }
func (v *IntegerValue) Position() Pos { return v.Pos }
func (v *DecimalValue) Position() Pos { return v.Pos }
