package queryir

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// StructureError lists every structural problem found in a predicate tree.
type StructureError struct {
	Problems []string
}

func (e *StructureError) Error() string {
	return "invalid predicate: " + strings.Join(e.Problems, "; ")
}

// Validate checks that a predicate tree is well formed before a backend
// lowers it:
//  1. No nil operands, and no empty Intersection or Union
//  2. Counts are non-negative with min <= max
//  3. Description leaves appear only inside Described, and concept-level
//     predicates never do
//  4. Attributes have a type and exactly one of Value or Concrete
//  5. Grouped contains only attribute constraints
//
// The compiler only produces valid trees; Validate guards hand-built ones.
// Validate is a pure function with no side effects.
func Validate(p Predicate) error {
	v := &validator{}
	v.concept(p, "root")
	if len(v.problems) == 0 {
		return nil
	}
	return &StructureError{Problems: v.problems}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(path, format string, args ...any) {
	v.problems = append(v.problems, path+": "+fmt.Sprintf(format, args...))
}

func (v *validator) count(c *Count, path string) {
	if c == nil {
		return
	}
	if c.Min < 0 || (!c.Unbounded && c.Max < 0) {
		v.addProblem(path, "negative count bound")
		return
	}
	if !c.Unbounded && c.Min > c.Max {
		v.addProblem(path, "count minimum %d exceeds maximum %d", c.Min, c.Max)
	}
}

func (v *validator) id(id, path, what string) {
	if id == "" {
		v.addProblem(path, "empty %s", what)
	}
}

// concept validates a predicate in concept context.
func (v *validator) concept(p Predicate, path string) {
	switch pred := p.(type) {
	case nil:
		v.addProblem(path, "nil predicate")
	case *MatchAll, *MatchNone:
	case *ConceptIs:
		v.id(pred.ID, path, "concept id")
	case *Intersection:
		v.nary(pred.Predicates, path+".intersection", v.concept)
	case *Union:
		v.nary(pred.Predicates, path+".union", v.concept)
	case *Difference:
		v.concept(pred.Left, path+".difference.left")
		v.concept(pred.Right, path+".difference.right")
	case *Complement:
		v.concept(pred.Predicate, path+".complement")
	case *Closure:
		if pred.Direction != Descendants && pred.Direction != Ancestors {
			v.addProblem(path, "unknown closure direction %q", pred.Direction)
		}
		v.concept(pred.Focus, path+".closure")
	case *Member:
		v.concept(pred.RefSet, path+".member")
	case *Described:
		v.count(pred.Count, path+".described.count")
		v.description(pred.Filter, path+".described")
	case *Counted:
		if pred.Count == nil {
			v.addProblem(path, "counted predicate without a count")
		}
		v.count(pred.Count, path+".counted.count")
		v.concept(pred.Predicate, path+".counted")
	case *IsActive:
	case *HasModule:
		v.id(pred.Module, path, "module id")
	case *Attribute:
		v.attribute(pred, path+".attribute")
	case *Grouped:
		v.count(pred.Count, path+".grouped.count")
		v.grouped(pred.Refinement, path+".grouped")
	case *AttributeValues:
		v.concept(pred.Focus, path+".values.focus")
		v.concept(pred.Type, path+".values.type")
	default:
		if IsDescriptionLeaf(p) {
			v.addProblem(path, "%T is only valid inside a description filter", p)
			return
		}
		v.addProblem(path, "unknown predicate type: %T", p)
	}
}

// description validates a predicate in description context.
func (v *validator) description(p Predicate, path string) {
	switch pred := p.(type) {
	case nil:
		v.addProblem(path, "nil predicate")
	case *Intersection:
		v.nary(pred.Predicates, path+".intersection", v.description)
	case *Union:
		v.nary(pred.Predicates, path+".union", v.description)
	case *Difference:
		v.description(pred.Left, path+".difference.left")
		v.description(pred.Right, path+".difference.right")
	case *TermMatches:
		v.term(pred, path)
	case *IsActive:
	case *HasModule:
		v.id(pred.Module, path, "module id")
	case *HasType:
		v.id(pred.Type, path, "type id")
	case *HasLanguageCode:
		if pred.Code == "" {
			v.addProblem(path, "empty language code")
		}
	case *InLanguageRefSet:
		v.id(pred.RefSet, path, "reference set id")
	case *IsAcceptableIn:
		v.id(pred.RefSet, path, "reference set id")
	case *IsPreferredIn:
		v.id(pred.RefSet, path, "reference set id")
	case *HasCaseSignificance:
		v.id(pred.CaseSignificance, path, "case significance id")
	default:
		v.addProblem(path, "%T is not valid inside a description filter", p)
	}
}

func (v *validator) nary(preds []Predicate, path string, check func(Predicate, string)) {
	if len(preds) == 0 {
		v.addProblem(path, "no operands")
		return
	}
	for i, sub := range preds {
		check(sub, fmt.Sprintf("%s[%d]", path, i))
	}
}

func (v *validator) term(t *TermMatches, path string) {
	switch t.Mode {
	case MatchWords, MatchExact:
	case MatchRegex:
		if _, err := regexp.Compile(t.Value); err != nil {
			v.addProblem(path, "invalid regex: %v", err)
		}
	default:
		v.addProblem(path, "unknown match mode %q", t.Mode)
	}
}

var concreteOps = map[string]bool{"=": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}

func (v *validator) attribute(a *Attribute, path string) {
	v.count(a.Count, path+".count")
	v.concept(a.Type, path+".type")

	switch {
	case a.Concrete == nil && a.Value == nil:
		v.addProblem(path, "attribute needs a value or a concrete value")
	case a.Concrete != nil && a.Value != nil:
		v.addProblem(path, "attribute has both a value and a concrete value")
	case a.Value != nil:
		v.concept(a.Value, path+".value")
	default:
		v.concrete(a, path)
	}
}

func (v *validator) concrete(a *Attribute, path string) {
	c := a.Concrete
	if a.Reversed {
		v.addProblem(path, "reversed attribute cannot compare a concrete value")
	}
	if !concreteOps[c.Op] {
		v.addProblem(path, "unknown comparison operator %q", c.Op)
	}
	switch c.Kind {
	case ConcreteString:
		if c.Op != "=" && c.Op != "!=" {
			v.addProblem(path, "string values only support = and !=")
		}
	case ConcreteInteger:
		if _, err := strconv.ParseInt(c.Value, 10, 64); err != nil {
			v.addProblem(path, "invalid integer %q", c.Value)
		}
	case ConcreteDecimal:
		if _, err := strconv.ParseFloat(c.Value, 64); err != nil {
			v.addProblem(path, "invalid decimal %q", c.Value)
		}
	default:
		v.addProblem(path, "unknown concrete kind %q", c.Kind)
	}
}

// grouped validates the body of a Grouped: attributes combined with
// Intersection or Union.
func (v *validator) grouped(p Predicate, path string) {
	switch pred := p.(type) {
	case nil:
		v.addProblem(path, "nil predicate")
	case *Attribute:
		v.attribute(pred, path+".attribute")
	case *Intersection:
		v.nary(pred.Predicates, path+".intersection", v.grouped)
	case *Union:
		v.nary(pred.Predicates, path+".union", v.grouped)
	default:
		v.addProblem(path, "%T is not valid inside an attribute group", p)
	}
}
