package querysql

import (
	"fmt"

	"github.com/roach88/termql/internal/queryir"
)

// attribute lowers a relationship or concrete value constraint on the
// concept in col. When group is set the relationship must also belong to
// that relationship group.
func (b *builder) attribute(a *queryir.Attribute, col, group string) (string, []any, error) {
	if a.Concrete != nil {
		return b.concrete(a, col, group)
	}

	self, other := "source_id", "destination_id"
	if a.Reversed {
		if group != "" {
			return "", nil, fmt.Errorf("reversed attribute inside a relationship group is not supported")
		}
		self, other = other, self
	}

	r := b.alias("r")
	typ, params, err := b.concept(a.Type, r+".type_id")
	if err != nil {
		return "", nil, fmt.Errorf("attribute type: %w", err)
	}
	val, valParams, err := b.concept(a.Value, r+"."+other)
	if err != nil {
		return "", nil, fmt.Errorf("attribute value: %w", err)
	}
	if a.Negated {
		val = "NOT (" + val + ")"
	}
	params = append(params, valParams...)

	body := fmt.Sprintf("FROM relationships %s WHERE %s.%s = %s AND %s.active = 1 AND %s AND %s",
		r, r, self, col, r, typ, val)
	if group != "" {
		body += " AND " + r + ".rel_group = " + group
	}
	return countOrExists(body, a.Count, params)
}

// concrete compares literal attribute values. Strings compare as text;
// integers and decimals compare numerically.
func (b *builder) concrete(a *queryir.Attribute, col, group string) (string, []any, error) {
	v := b.alias("v")
	typ, params, err := b.concept(a.Type, v+".type_id")
	if err != nil {
		return "", nil, fmt.Errorf("concrete type: %w", err)
	}

	cmp := fmt.Sprintf("%s.value_kind != ? AND CAST(%s.value AS REAL) %s CAST(? AS REAL)", v, v, a.Concrete.Op)
	if a.Concrete.Kind == queryir.ConcreteString {
		cmp = fmt.Sprintf("%s.value_kind = ? AND %s.value %s ?", v, v, a.Concrete.Op)
	}
	params = append(params, string(queryir.ConcreteString), a.Concrete.Value)

	body := fmt.Sprintf("FROM concrete_values %s WHERE %s.source_id = %s AND %s.active = 1 AND %s AND %s",
		v, v, col, v, typ, cmp)
	if group != "" {
		body += " AND " + v + ".rel_group = " + group
	}
	return countOrExists(body, a.Count, params)
}

// grouped holds when some non-zero relationship group of the concept
// satisfies the whole refinement, or when the number of such groups is
// within Count.
func (b *builder) grouped(g *queryir.Grouped, col string) (string, []any, error) {
	alias := b.alias("g")
	inner, params, err := b.groupBody(g.Refinement, col, alias+".g")
	if err != nil {
		return "", nil, fmt.Errorf("group: %w", err)
	}
	groups := fmt.Sprintf("(SELECT rel_group AS g FROM relationships WHERE source_id = %s AND active = 1 AND rel_group > 0 "+
		"UNION SELECT rel_group FROM concrete_values WHERE source_id = %s AND active = 1 AND rel_group > 0) %s",
		col, col, alias)
	return countOrExists("FROM "+groups+" WHERE "+inner, g.Count, params)
}

func (b *builder) groupBody(p queryir.Predicate, col, group string) (string, []any, error) {
	switch pred := p.(type) {
	case *queryir.Attribute:
		return b.attribute(pred, col, group)
	case *queryir.Intersection:
		return b.join(pred.Predicates, " AND ", col, func(sub queryir.Predicate, c string) (string, []any, error) {
			return b.groupBody(sub, c, group)
		})
	case *queryir.Union:
		return b.join(pred.Predicates, " OR ", col, func(sub queryir.Predicate, c string) (string, []any, error) {
			return b.groupBody(sub, c, group)
		})
	default:
		return "", nil, fmt.Errorf("unsupported group predicate: %T", p)
	}
}

// attributeValues selects the destinations of matching relationships
// from any focus concept.
func (b *builder) attributeValues(av *queryir.AttributeValues, col string) (string, []any, error) {
	r := b.alias("r")
	typ, params, err := b.concept(av.Type, r+".type_id")
	if err != nil {
		return "", nil, fmt.Errorf("values type: %w", err)
	}
	focus, focusParams, err := b.concept(av.Focus, r+".source_id")
	if err != nil {
		return "", nil, fmt.Errorf("values focus: %w", err)
	}
	sql := fmt.Sprintf("%s IN (SELECT %s.destination_id FROM relationships %s WHERE %s.active = 1 AND %s AND %s)",
		col, r, r, r, typ, focus)
	return sql, append(params, focusParams...), nil
}

func countOrExists(body string, c *queryir.Count, params []any) (string, []any, error) {
	if c == nil {
		return "EXISTS (SELECT 1 " + body + ")", params, nil
	}
	bound, boundParams := countBound(c)
	return "(SELECT COUNT(*) " + body + ")" + bound, append(params, boundParams...), nil
}
