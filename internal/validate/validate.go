// Package validate performs static checks on a parsed query.
//
// Validation never consults the terminology: it checks cardinality bounds,
// filter group shape, attribute positions and the syntax of literals.
// All violations are collected; validation does not stop at the first.
package validate

import (
	"fmt"
	"strings"

	"github.com/roach88/termql/internal/ast"
	"github.com/roach88/termql/internal/lexer"
)

// Validation error codes (E100-E199)
const (
	ErrUnsupportedNode = "E100" // nil child or unknown node type

	// Cardinality errors (E101-E102)
	ErrCardinalityRange    = "E101" // min > max
	ErrCardinalityNegative = "E102" // negative bound

	// Structural errors (E103-E104)
	ErrEmptyFilterGroup   = "E103" // {{ }} with no clauses
	ErrReversedPlacement  = "E104" // R outside an attribute, or around a non-attribute
	ErrConceptIDMalformed = "E105" // non-digit or leading zero
	ErrConceptIDLength    = "E106" // outside the configured length range
	ErrConceptIDCheck     = "E107" // Verhoeff check digit mismatch

	// Filter clause errors (E108-E112)
	ErrTermTooShort        = "E108" // match-mode term below minimum length
	ErrRegexInvalid        = "E109" // regex does not compile
	ErrLanguageCode        = "E110" // not a two-letter ISO 639-1 code
	ErrFilterDomainMixed   = "E111" // concept-pinned and description-only clauses together
	ErrFilterDomainInvalid = "E112" // description-only key pinned to concept

	// Attribute errors (E114). E113 is retired.
	ErrReversedConcrete = "E114" // reversed attribute with a concrete value
)

// ValidationError is a single static check failure.
type ValidationError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Pos     lexer.Position `json:"-"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Pos, e.Message)
}

// Errors is the aggregated result of a failed validation.
type Errors []ValidationError

// Error implements the error interface.
func (errs Errors) Error() string {
	switch len(errs) {
	case 0:
		return "no validation errors"
	case 1:
		return errs[0].Error()
	}
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("%d validation errors: %s", len(errs), strings.Join(parts, "; "))
}

// Codes returns the error codes in order, for assertions and logging.
func (errs Errors) Codes() []string {
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	return codes
}

// Options tunes the literal checks.
type Options struct {
	MinTermLength int  // shortest accepted match-mode term, in runes
	MinIDLength   int  // shortest accepted concept id, in digits
	MaxIDLength   int  // longest accepted concept id, in digits
	CheckDigits   bool // verify the Verhoeff check digit of concept ids
}

// DefaultOptions returns the options used by the package-level Validate.
func DefaultOptions() Options {
	return Options{
		MinTermLength: 2,
		MinIDLength:   6,
		MaxIDLength:   18,
	}
}

// Validator checks queries against a fixed set of options.
// A Validator is stateless between calls and safe for concurrent use.
type Validator struct {
	opts Options
}

// New returns a Validator using opts.
func New(opts Options) *Validator {
	return &Validator{opts: opts}
}

// Validate checks q with DefaultOptions.
func Validate(q *ast.Query) []ValidationError {
	return New(DefaultOptions()).Validate(q)
}

// Validate returns every violation found in q, in traversal order.
// An empty query is valid.
func (v *Validator) Validate(q *ast.Query) []ValidationError {
	if q == nil || q.Root == nil {
		return nil
	}
	w := &walker{opts: v.opts}
	w.expr(q.Root)
	return w.errs
}

// walker accumulates errors during traversal.
type walker struct {
	opts Options
	errs []ValidationError
}

func (w *walker) add(code string, pos lexer.Position, format string, args ...any) {
	w.errs = append(w.errs, ValidationError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	})
}

func (w *walker) expr(e ast.Expr) {
	switch n := e.(type) {
	case nil:
		w.add(ErrUnsupportedNode, lexer.Position{}, "missing expression")
	case *ast.ConceptRef:
		w.conceptRef(n)
	case *ast.Wildcard:
	case *ast.Hierarchy:
		w.expr(n.Operand)
	case *ast.MemberOf:
		w.expr(n.RefSet)
	case *ast.Reversed:
		w.add(ErrReversedPlacement, n.Pos, "R may only prefix an attribute in a refinement")
		w.expr(n.Expr)
	case *ast.Filtered:
		w.filtered(n)
	case *ast.BoolExpr:
		w.expr(n.Left)
		w.expr(n.Right)
	case *ast.Grouping:
		w.expr(n.Expr)
	case *ast.Negation:
		w.expr(n.Expr)
	case *ast.Refined:
		w.expr(n.Expr)
		w.refinement(n.Refinement)
	case *ast.Dotted:
		w.expr(n.Expr)
		w.expr(n.Attribute)
	default:
		w.add(ErrUnsupportedNode, e.Position(), "unsupported expression %T", e)
	}
}

func (w *walker) filtered(n *ast.Filtered) {
	w.expr(n.Expr)
	if n.Group != nil {
		w.filterGroup(n.Group)
	}
	if n.Cardinality != nil {
		w.cardinality(n.Cardinality)
	}
}

func (w *walker) cardinality(c *ast.Cardinality) {
	if c.Min < 0 || (!c.Unbounded && c.Max < 0) {
		w.add(ErrCardinalityNegative, c.Pos, "cardinality bounds must be non-negative")
		return
	}
	if !c.Unbounded && c.Min > c.Max {
		w.add(ErrCardinalityRange, c.Pos, "cardinality minimum %d exceeds maximum %d", c.Min, c.Max)
	}
}

func (w *walker) refinement(r ast.Refinement) {
	switch n := r.(type) {
	case nil:
		w.add(ErrUnsupportedNode, lexer.Position{}, "missing refinement")
	case *ast.AttributeConstraint:
		w.attributeConstraint(n)
	case *ast.AttributeGroup:
		if n.Cardinality != nil {
			w.cardinality(n.Cardinality)
		}
		w.refinement(n.Refinement)
	case *ast.RefinementBool:
		w.refinement(n.Left)
		w.refinement(n.Right)
	case *ast.NestedRefinement:
		w.refinement(n.Refinement)
	default:
		w.add(ErrUnsupportedNode, r.Position(), "unsupported refinement %T", r)
	}
}

func (w *walker) attributeConstraint(n *ast.AttributeConstraint) {
	if n.Cardinality != nil {
		w.cardinality(n.Cardinality)
	}

	reversed, isReversed := n.Attribute.(*ast.Reversed)
	if isReversed {
		if !attributeShaped(reversed.Expr) {
			w.add(ErrReversedPlacement, reversed.Pos, "R must prefix a concept, wildcard or hierarchy attribute")
		}
		w.expr(reversed.Expr)
	} else {
		w.expr(n.Attribute)
	}

	switch val := n.Value.(type) {
	case nil:
		w.add(ErrUnsupportedNode, n.Pos, "missing attribute value")
	case *ast.ExprValue:
		w.expr(val.Expr)
	case *ast.StringValue, *ast.IntegerValue, *ast.DecimalValue:
		if isReversed {
			w.add(ErrReversedConcrete, val.Position(), "a reversed attribute cannot compare a concrete value")
		}
	default:
		w.add(ErrUnsupportedNode, n.Value.Position(), "unsupported value %T", n.Value)
	}
}

// attributeShaped reports whether e can name relationship types: a concept,
// the wildcard, a refset or a hierarchy over one of those.
func attributeShaped(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.ConceptRef, *ast.Wildcard, *ast.MemberOf:
		return true
	case *ast.Hierarchy:
		return attributeShaped(n.Operand)
	}
	return false
}
