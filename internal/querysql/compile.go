// Package querysql lowers a queryir.Predicate to parameterized SQLite SQL
// over the terminology schema of the store package.
package querysql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/termql/internal/queryir"
)

// Well-known terminology identifiers used by the lowering.
const (
	IsA                = "116680003"
	PreferredID        = "900000000000548007"
	AcceptableID       = "900000000000549004"
	RegexpFunctionName = "regexp"
)

// SQLCompiler compiles predicates to parameterized SQL for SQLite.
//
// CRITICAL: every query ends with ORDER BY so results are deterministic.
// CRITICAL: every value taken from the predicate is a ? parameter, never
// interpolated into the SQL text.
//
// The generated SQL calls regexp(pattern, text), which the store registers
// on every connection.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a predicate to a query returning matching concept ids.
// Returns (sql, params, error).
//
//	SELECT c0.id FROM concepts c0 WHERE <cond> ORDER BY c0.id COLLATE BINARY ASC
func (c *SQLCompiler) Compile(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, fmt.Errorf("cannot compile nil predicate")
	}
	if err := queryir.Validate(p); err != nil {
		return "", nil, err
	}

	b := &builder{}
	where, params, err := b.concept(p, "c0.id")
	if err != nil {
		return "", nil, err
	}

	// MANDATORY: stable order with a binary collation.
	sql := "SELECT c0.id FROM concepts c0 WHERE " + where + " ORDER BY c0.id COLLATE BINARY ASC"
	return sql, params, nil
}

// builder hands out unique table aliases within one statement.
type builder struct {
	n int
}

func (b *builder) alias(prefix string) string {
	b.n++
	return fmt.Sprintf("%s%d", prefix, b.n)
}

// concept returns a condition that holds when the concept id in col
// satisfies p. col is any SQL expression yielding a concept id.
func (b *builder) concept(p queryir.Predicate, col string) (string, []any, error) {
	switch pred := p.(type) {
	case *queryir.MatchAll:
		return "1 = 1", nil, nil
	case *queryir.MatchNone:
		return "1 = 0", nil, nil
	case *queryir.ConceptIs:
		return col + " = ?", []any{pred.ID}, nil
	case *queryir.Intersection:
		return b.join(pred.Predicates, " AND ", col, b.concept)
	case *queryir.Union:
		return b.join(pred.Predicates, " OR ", col, b.concept)
	case *queryir.Difference:
		return b.difference(pred, col, b.concept)
	case *queryir.Complement:
		inner, params, err := b.concept(pred.Predicate, col)
		if err != nil {
			return "", nil, err
		}
		return "NOT (" + inner + ")", params, nil
	case *queryir.Closure:
		return b.closure(pred, col)
	case *queryir.Member:
		m := b.alias("m")
		refset, params, err := b.concept(pred.RefSet, m+".refset_id")
		if err != nil {
			return "", nil, fmt.Errorf("member: %w", err)
		}
		return fmt.Sprintf("%s IN (SELECT %s.referenced_component_id FROM refset_members %s WHERE %s.active = 1 AND %s)",
			col, m, m, m, refset), params, nil
	case *queryir.Described:
		return b.described(pred, col)
	case *queryir.Counted:
		inner, params, err := b.concept(pred.Predicate, col)
		if err != nil {
			return "", nil, fmt.Errorf("counted: %w", err)
		}
		bound, boundParams := countBound(pred.Count)
		return "(CASE WHEN " + inner + " THEN 1 ELSE 0 END)" + bound, append(params, boundParams...), nil
	case *queryir.IsActive:
		c := b.alias("c")
		return fmt.Sprintf("EXISTS (SELECT 1 FROM concepts %s WHERE %s.id = %s AND %s.active = ?)", c, c, col, c),
			[]any{boolParam(pred.Active)}, nil
	case *queryir.HasModule:
		c := b.alias("c")
		return fmt.Sprintf("EXISTS (SELECT 1 FROM concepts %s WHERE %s.id = %s AND %s.module_id = ?)", c, c, col, c),
			[]any{pred.Module}, nil
	case *queryir.Attribute:
		return b.attribute(pred, col, "")
	case *queryir.Grouped:
		return b.grouped(pred, col)
	case *queryir.AttributeValues:
		return b.attributeValues(pred, col)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

type condFunc func(queryir.Predicate, string) (string, []any, error)

// join combines operands with AND or OR. Parameters follow the textual
// order of the operands.
func (b *builder) join(preds []queryir.Predicate, sep, col string, cond condFunc) (string, []any, error) {
	parts := make([]string, 0, len(preds))
	var params []any
	for _, sub := range preds {
		sql, subParams, err := cond(sub, col)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, subParams...)
	}
	return "(" + strings.Join(parts, sep) + ")", params, nil
}

func (b *builder) difference(d *queryir.Difference, col string, cond condFunc) (string, []any, error) {
	left, lp, err := cond(d.Left, col)
	if err != nil {
		return "", nil, err
	}
	right, rp, err := cond(d.Right, col)
	if err != nil {
		return "", nil, err
	}
	return "(" + left + " AND NOT (" + right + "))", append(lp, rp...), nil
}

// closure follows active is-a relationships from the focus concepts.
// Descendants walk from destination to source, ancestors the other way.
// A direct closure takes one step; otherwise a recursive CTE walks the
// full transitive closure.
func (b *builder) closure(cl *queryir.Closure, col string) (string, []any, error) {
	from, to := "destination_id", "source_id"
	if cl.Direction == queryir.Ancestors {
		from, to = to, from
	}

	r := b.alias("r")
	seed, seedParams, err := b.concept(cl.Focus, r+"."+from)
	if err != nil {
		return "", nil, fmt.Errorf("closure: %w", err)
	}
	step := fmt.Sprintf("SELECT %s.%s FROM relationships %s WHERE %s.active = 1 AND %s.type_id = ? AND %s",
		r, to, r, r, r, seed)
	params := append([]any{IsA}, seedParams...)

	var sql string
	if cl.DirectOnly {
		sql = col + " IN (" + step + ")"
	} else {
		t, rr := b.alias("t"), b.alias("r")
		sql = fmt.Sprintf("%s IN (WITH RECURSIVE %s(id) AS (%s UNION SELECT %s.%s FROM relationships %s JOIN %s ON %s.%s = %s.id WHERE %s.active = 1 AND %s.type_id = ?) SELECT id FROM %s)",
			col, t, step, rr, to, rr, t, rr, from, t, rr, rr, t)
		params = append(params, IsA)
	}

	if !cl.IncludeSelf {
		return sql, params, nil
	}
	self, selfParams, err := b.concept(cl.Focus, col)
	if err != nil {
		return "", nil, fmt.Errorf("closure: %w", err)
	}
	return "(" + self + " OR " + sql + ")", append(selfParams, params...), nil
}

// described holds when the concept has descriptions satisfying the filter,
// at least one of them or a count within bounds.
func (b *builder) described(d *queryir.Described, col string) (string, []any, error) {
	a := b.alias("d")
	filter, params, err := b.description(d.Filter, a)
	if err != nil {
		return "", nil, fmt.Errorf("described: %w", err)
	}
	body := fmt.Sprintf("FROM descriptions %s WHERE %s.concept_id = %s AND %s", a, a, col, filter)
	if d.Count == nil {
		return "EXISTS (SELECT 1 " + body + ")", params, nil
	}
	bound, boundParams := countBound(d.Count)
	return "(SELECT COUNT(*) " + body + ")" + bound, append(params, boundParams...), nil
}

// description returns a condition over the description row aliased d.
func (b *builder) description(p queryir.Predicate, d string) (string, []any, error) {
	switch pred := p.(type) {
	case *queryir.Intersection:
		return b.join(pred.Predicates, " AND ", d, b.description)
	case *queryir.Union:
		return b.join(pred.Predicates, " OR ", d, b.description)
	case *queryir.Difference:
		return b.difference(pred, d, b.description)
	case *queryir.TermMatches:
		return termCondition(pred, d+".term")
	case *queryir.IsActive:
		return d + ".active = ?", []any{boolParam(pred.Active)}, nil
	case *queryir.HasModule:
		return d + ".module_id = ?", []any{pred.Module}, nil
	case *queryir.HasType:
		return d + ".type_id = ?", []any{pred.Type}, nil
	case *queryir.HasLanguageCode:
		return d + ".language_code = lower(?)", []any{pred.Code}, nil
	case *queryir.HasCaseSignificance:
		return d + ".case_significance_id = ?", []any{pred.CaseSignificance}, nil
	case *queryir.InLanguageRefSet:
		return b.languageMember(d, pred.RefSet, "")
	case *queryir.IsAcceptableIn:
		return b.languageMember(d, pred.RefSet, AcceptableID)
	case *queryir.IsPreferredIn:
		return b.languageMember(d, pred.RefSet, PreferredID)
	default:
		return "", nil, fmt.Errorf("unsupported description predicate: %T", p)
	}
}

func (b *builder) languageMember(d, refset, acceptability string) (string, []any, error) {
	l := b.alias("l")
	sql := fmt.Sprintf("EXISTS (SELECT 1 FROM language_members %s WHERE %s.description_id = %s.id AND %s.active = 1 AND %s.refset_id = ?",
		l, l, d, l, l)
	params := []any{refset}
	if acceptability != "" {
		sql += " AND " + l + ".acceptability_id = ?"
		params = append(params, acceptability)
	}
	return sql + ")", params, nil
}

// termCondition lowers a term clause. Match mode requires every word of
// the value to start a word of the term; exact compares the whole term;
// regex hands the pattern to the registered regexp function.
func termCondition(t *queryir.TermMatches, col string) (string, []any, error) {
	switch t.Mode {
	case queryir.MatchExact:
		if t.CaseSensitive {
			return col + " = ?", []any{t.Value}, nil
		}
		return col + " = ? COLLATE NOCASE", []any{t.Value}, nil
	case queryir.MatchRegex:
		return RegexpFunctionName + "(?, " + col + ")", []any{regexFlags(t.CaseSensitive) + t.Value}, nil
	case queryir.MatchWords:
		words := strings.Fields(t.Value)
		if len(words) == 0 {
			return "1 = 0", nil, nil
		}
		parts := make([]string, len(words))
		params := make([]any, len(words))
		for i, w := range words {
			parts[i] = RegexpFunctionName + "(?, " + col + ")"
			params[i] = WordPrefixPattern(w, t.CaseSensitive)
		}
		return "(" + strings.Join(parts, " AND ") + ")", params, nil
	default:
		return "", nil, fmt.Errorf("unsupported match mode %q", t.Mode)
	}
}

// WordPrefixPattern returns a regular expression matching text that has a
// word starting with w.
func WordPrefixPattern(w string, caseSensitive bool) string {
	return regexFlags(caseSensitive) + `(?:^|[^\pL\pN])` + regexp.QuoteMeta(w)
}

func regexFlags(caseSensitive bool) string {
	if caseSensitive {
		return ""
	}
	return "(?i)"
}

func countBound(c *queryir.Count) (string, []any) {
	if c.Unbounded {
		return " >= ?", []any{int64(c.Min)}
	}
	return " BETWEEN ? AND ?", []any{int64(c.Min), int64(c.Max)}
}

func boolParam(v bool) int64 {
	if v {
		return 1
	}
	return 0
}
