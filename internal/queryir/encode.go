package queryir

import (
	"fmt"

	"github.com/roach88/termql/internal/ir"
)

// Encode converts a predicate tree to its canonical IR form. Every node is
// an object with an "op" key; optional fields are omitted when unset so
// equal predicates encode identically.
func Encode(p Predicate) (ir.IRObject, error) {
	switch pred := p.(type) {
	case nil:
		return nil, fmt.Errorf("cannot encode nil predicate")
	case *MatchAll:
		return node("all"), nil
	case *MatchNone:
		return node("none"), nil
	case *ConceptIs:
		return node("concept", ir.O("id", ir.IRString(pred.ID))), nil
	case *Intersection:
		return encodeNary("and", pred.Predicates)
	case *Union:
		return encodeNary("or", pred.Predicates)
	case *Difference:
		left, err := Encode(pred.Left)
		if err != nil {
			return nil, fmt.Errorf("minus left: %w", err)
		}
		right, err := Encode(pred.Right)
		if err != nil {
			return nil, fmt.Errorf("minus right: %w", err)
		}
		return node("minus", ir.O("left", left), ir.O("right", right)), nil
	case *Complement:
		inner, err := Encode(pred.Predicate)
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		return node("not", ir.O("of", inner)), nil
	case *Closure:
		focus, err := Encode(pred.Focus)
		if err != nil {
			return nil, fmt.Errorf("closure: %w", err)
		}
		return node("closure",
			ir.O("direction", ir.IRString(pred.Direction)),
			ir.O("self", ir.IRBool(pred.IncludeSelf)),
			ir.O("direct", ir.IRBool(pred.DirectOnly)),
			ir.O("focus", focus),
		), nil
	case *Member:
		refset, err := Encode(pred.RefSet)
		if err != nil {
			return nil, fmt.Errorf("member: %w", err)
		}
		return node("member", ir.O("refset", refset)), nil
	case *Described:
		filter, err := Encode(pred.Filter)
		if err != nil {
			return nil, fmt.Errorf("described: %w", err)
		}
		obj := node("described", ir.O("filter", filter))
		setCount(obj, pred.Count)
		return obj, nil
	case *Counted:
		inner, err := Encode(pred.Predicate)
		if err != nil {
			return nil, fmt.Errorf("counted: %w", err)
		}
		obj := node("counted", ir.O("of", inner))
		setCount(obj, pred.Count)
		return obj, nil
	case *TermMatches:
		return node("term",
			ir.O("mode", ir.IRString(pred.Mode)),
			ir.O("value", ir.IRString(pred.Value)),
			ir.O("case_sensitive", ir.IRBool(pred.CaseSensitive)),
		), nil
	case *IsActive:
		return node("active", ir.O("active", ir.IRBool(pred.Active))), nil
	case *HasModule:
		return node("module", ir.O("id", ir.IRString(pred.Module))), nil
	case *HasType:
		return node("type", ir.O("id", ir.IRString(pred.Type))), nil
	case *HasLanguageCode:
		return node("language_code", ir.O("code", ir.IRString(pred.Code))), nil
	case *InLanguageRefSet:
		return node("language_refset", ir.O("id", ir.IRString(pred.RefSet))), nil
	case *IsAcceptableIn:
		return node("acceptable_in", ir.O("id", ir.IRString(pred.RefSet))), nil
	case *IsPreferredIn:
		return node("preferred_in", ir.O("id", ir.IRString(pred.RefSet))), nil
	case *HasCaseSignificance:
		return node("case_significance", ir.O("id", ir.IRString(pred.CaseSignificance))), nil
	case *Attribute:
		return encodeAttribute(pred)
	case *Grouped:
		inner, err := Encode(pred.Refinement)
		if err != nil {
			return nil, fmt.Errorf("group: %w", err)
		}
		obj := node("group", ir.O("refinement", inner))
		setCount(obj, pred.Count)
		return obj, nil
	case *AttributeValues:
		focus, err := Encode(pred.Focus)
		if err != nil {
			return nil, fmt.Errorf("values focus: %w", err)
		}
		typ, err := Encode(pred.Type)
		if err != nil {
			return nil, fmt.Errorf("values type: %w", err)
		}
		return node("values", ir.O("focus", focus), ir.O("type", typ)), nil
	default:
		return nil, fmt.Errorf("unknown predicate type: %T", p)
	}
}

// Fingerprint returns the content hash of a predicate. Equal predicates
// always have equal fingerprints.
func Fingerprint(p Predicate) (string, error) {
	obj, err := Encode(p)
	if err != nil {
		return "", err
	}
	return ir.PredicateHash(obj)
}

func node(op string, pairs ...ir.IRPair) ir.IRObject {
	obj := ir.NewIRObjectFromPairs(pairs...)
	obj["op"] = ir.IRString(op)
	return obj
}

func encodeNary(op string, preds []Predicate) (ir.IRObject, error) {
	of := make(ir.IRArray, len(preds))
	for i, sub := range preds {
		enc, err := Encode(sub)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", op, i, err)
		}
		of[i] = enc
	}
	return node(op, ir.O("of", of)), nil
}

func encodeAttribute(a *Attribute) (ir.IRObject, error) {
	typ, err := Encode(a.Type)
	if err != nil {
		return nil, fmt.Errorf("attribute type: %w", err)
	}
	obj := node("attribute",
		ir.O("type", typ),
		ir.O("reversed", ir.IRBool(a.Reversed)),
		ir.O("negated", ir.IRBool(a.Negated)),
	)
	if a.Value != nil {
		val, err := Encode(a.Value)
		if err != nil {
			return nil, fmt.Errorf("attribute value: %w", err)
		}
		obj["value"] = val
	}
	if a.Concrete != nil {
		obj["concrete"] = ir.NewIRObjectFromPairs(
			ir.O("op", ir.IRString(a.Concrete.Op)),
			ir.O("kind", ir.IRString(a.Concrete.Kind)),
			ir.O("value", ir.IRString(a.Concrete.Value)),
		)
	}
	setCount(obj, a.Count)
	return obj, nil
}

func setCount(obj ir.IRObject, c *Count) {
	if c == nil {
		return
	}
	count := ir.IRObject{"min": ir.IRInt(c.Min)}
	if c.Unbounded {
		count["max"] = ir.IRString("*")
	} else {
		count["max"] = ir.IRInt(c.Max)
	}
	obj["count"] = count
}
