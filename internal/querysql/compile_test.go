package querysql

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termql/internal/queryir"
)

func id(s string) *queryir.ConceptIs { return &queryir.ConceptIs{ID: s} }

func TestCompile_ConceptIs(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(id("404684003"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT c0.id FROM concepts c0 WHERE c0.id = ? ORDER BY c0.id COLLATE BINARY ASC", sql)
	assert.Equal(t, []any{"404684003"}, params)
}

func TestCompile_OrderByMandatory(t *testing.T) {
	preds := []queryir.Predicate{
		&queryir.MatchAll{},
		&queryir.MatchNone{},
		&queryir.Union{Predicates: []queryir.Predicate{id("1"), id("2")}},
		&queryir.Member{RefSet: id("734138000")},
	}
	for _, p := range preds {
		sql, _, err := NewSQLCompiler().Compile(p)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(sql, " ORDER BY c0.id COLLATE BINARY ASC"), sql)
	}
}

func TestCompile_SelfOrDescendants(t *testing.T) {
	p := &queryir.Closure{Direction: queryir.Descendants, IncludeSelf: true, Focus: id("404684003")}
	sql, params, err := NewSQLCompiler().Compile(p)
	require.NoError(t, err)

	want := "SELECT c0.id FROM concepts c0 WHERE (c0.id = ? OR c0.id IN (WITH RECURSIVE t2(id) AS (" +
		"SELECT r1.source_id FROM relationships r1 WHERE r1.active = 1 AND r1.type_id = ? AND r1.destination_id = ? " +
		"UNION SELECT r3.source_id FROM relationships r3 JOIN t2 ON r3.destination_id = t2.id " +
		"WHERE r3.active = 1 AND r3.type_id = ?) SELECT id FROM t2)) ORDER BY c0.id COLLATE BINARY ASC"
	assert.Equal(t, want, sql)
	assert.Equal(t, []any{"404684003", IsA, "404684003", IsA}, params)
}

func TestCompile_DirectParents(t *testing.T) {
	p := &queryir.Closure{Direction: queryir.Ancestors, DirectOnly: true, Focus: id("73211009")}
	sql, params, err := NewSQLCompiler().Compile(p)
	require.NoError(t, err)
	assert.Contains(t, sql, "c0.id IN (SELECT r1.destination_id FROM relationships r1 WHERE r1.active = 1 AND r1.type_id = ? AND r1.source_id = ?)")
	assert.NotContains(t, sql, "RECURSIVE")
	assert.Equal(t, []any{IsA, "73211009"}, params)
}

func TestCompile_SetAlgebra(t *testing.T) {
	p := &queryir.Difference{
		Left:  &queryir.Union{Predicates: []queryir.Predicate{id("1"), id("2")}},
		Right: &queryir.Complement{Predicate: id("3")},
	}
	sql, params, err := NewSQLCompiler().Compile(p)
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE ((c0.id = ? OR c0.id = ?) AND NOT (NOT (c0.id = ?)))")
	assert.Equal(t, []any{"1", "2", "3"}, params)
}

func TestCompile_DescribedWithCount(t *testing.T) {
	p := &queryir.Described{
		Filter: &queryir.Intersection{Predicates: []queryir.Predicate{
			&queryir.TermMatches{Mode: queryir.MatchWords, Value: "heart att"},
			&queryir.HasLanguageCode{Code: "en"},
			&queryir.IsPreferredIn{RefSet: "900000000000509007"},
		}},
		Count: &queryir.Count{Min: 1, Max: 2},
	}
	sql, params, err := NewSQLCompiler().Compile(p)
	require.NoError(t, err)
	assert.Contains(t, sql, "(SELECT COUNT(*) FROM descriptions d1 WHERE d1.concept_id = c0.id AND ("+
		"(regexp(?, d1.term) AND regexp(?, d1.term)) AND d1.language_code = lower(?) AND "+
		"EXISTS (SELECT 1 FROM language_members l2 WHERE l2.description_id = d1.id AND l2.active = 1 "+
		"AND l2.refset_id = ? AND l2.acceptability_id = ?))) BETWEEN ? AND ?")
	assert.Equal(t, []any{
		WordPrefixPattern("heart", false), WordPrefixPattern("att", false),
		"en", "900000000000509007", PreferredID, int64(1), int64(2),
	}, params)
}

func TestCompile_TermModes(t *testing.T) {
	tests := []struct {
		term   *queryir.TermMatches
		cond   string
		params []any
	}{
		{&queryir.TermMatches{Mode: queryir.MatchExact, Value: "Heart", CaseSensitive: true}, "d1.term = ?", []any{"Heart"}},
		{&queryir.TermMatches{Mode: queryir.MatchExact, Value: "heart"}, "d1.term = ? COLLATE NOCASE", []any{"heart"}},
		{&queryir.TermMatches{Mode: queryir.MatchRegex, Value: "^Card", CaseSensitive: true}, "regexp(?, d1.term)", []any{"^Card"}},
		{&queryir.TermMatches{Mode: queryir.MatchRegex, Value: "^card"}, "regexp(?, d1.term)", []any{"(?i)^card"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.term.Mode), func(t *testing.T) {
			sql, params, err := NewSQLCompiler().Compile(&queryir.Described{Filter: tt.term})
			require.NoError(t, err)
			assert.Contains(t, sql, "EXISTS (SELECT 1 FROM descriptions d1 WHERE d1.concept_id = c0.id AND "+tt.cond+")")
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestWordPrefixPattern(t *testing.T) {
	re := regexp.MustCompile(WordPrefixPattern("att", false))
	assert.True(t, re.MatchString("Heart attack"))
	assert.True(t, re.MatchString("ATTACK of heart"))
	assert.True(t, re.MatchString("heart (attack)"))
	assert.False(t, re.MatchString("Heart battery"))

	re = regexp.MustCompile(WordPrefixPattern("a.b", true))
	assert.True(t, re.MatchString("x a.b"))
	assert.False(t, re.MatchString("x aXb"))
	assert.False(t, re.MatchString("x A.B"))
}

func TestCompile_Attribute(t *testing.T) {
	p := &queryir.Attribute{Type: id("363698007"), Value: id("39057004"), Negated: true}
	sql, params, err := NewSQLCompiler().Compile(p)
	require.NoError(t, err)
	assert.Contains(t, sql, "EXISTS (SELECT 1 FROM relationships r1 WHERE r1.source_id = c0.id AND r1.active = 1 "+
		"AND r1.type_id = ? AND NOT (r1.destination_id = ?))")
	assert.Equal(t, []any{"363698007", "39057004"}, params)

	p = &queryir.Attribute{Type: id("363698007"), Value: id("39057004"), Reversed: true, Count: &queryir.Count{Min: 2, Unbounded: true}}
	sql, params, err = NewSQLCompiler().Compile(p)
	require.NoError(t, err)
	assert.Contains(t, sql, "(SELECT COUNT(*) FROM relationships r1 WHERE r1.destination_id = c0.id AND r1.active = 1 "+
		"AND r1.type_id = ? AND r1.source_id = ?) >= ?")
	assert.Equal(t, []any{"363698007", "39057004", int64(2)}, params)
}

func TestCompile_ConcreteValues(t *testing.T) {
	p := &queryir.Attribute{
		Type:     id("1142135004"),
		Concrete: &queryir.ConcreteValue{Op: ">=", Kind: queryir.ConcreteDecimal, Value: "2.5"},
	}
	sql, params, err := NewSQLCompiler().Compile(p)
	require.NoError(t, err)
	assert.Contains(t, sql, "v1.value_kind != ? AND CAST(v1.value AS REAL) >= CAST(? AS REAL)")
	assert.Equal(t, []any{"1142135004", "string", "2.5"}, params)

	p.Concrete = &queryir.ConcreteValue{Op: "!=", Kind: queryir.ConcreteString, Value: "tablet"}
	sql, params, err = NewSQLCompiler().Compile(p)
	require.NoError(t, err)
	assert.Contains(t, sql, "v1.value_kind = ? AND v1.value != ?")
	assert.Equal(t, []any{"1142135004", "string", "tablet"}, params)
}

func TestCompile_Grouped(t *testing.T) {
	p := &queryir.Grouped{
		Refinement: &queryir.Intersection{Predicates: []queryir.Predicate{
			&queryir.Attribute{Type: id("363698007"), Value: &queryir.MatchAll{}},
			&queryir.Attribute{Type: id("116676008"), Value: &queryir.MatchAll{}},
		}},
	}
	sql, params, err := NewSQLCompiler().Compile(p)
	require.NoError(t, err)
	assert.Contains(t, sql, "r2.rel_group = g1.g")
	assert.Contains(t, sql, "r3.rel_group = g1.g")
	assert.Contains(t, sql, "rel_group > 0")
	assert.Equal(t, []any{"363698007", "116676008"}, params)

	_, _, err = NewSQLCompiler().Compile(&queryir.Grouped{
		Refinement: &queryir.Attribute{Type: id("363698007"), Value: &queryir.MatchAll{}, Reversed: true},
	})
	assert.ErrorContains(t, err, "reversed attribute inside a relationship group")
}

func TestCompile_AttributeValues(t *testing.T) {
	p := &queryir.AttributeValues{Focus: id("73211009"), Type: id("363698007")}
	sql, params, err := NewSQLCompiler().Compile(p)
	require.NoError(t, err)
	assert.Contains(t, sql, "c0.id IN (SELECT r1.destination_id FROM relationships r1 WHERE r1.active = 1 AND r1.type_id = ? AND r1.source_id = ?)")
	assert.Equal(t, []any{"363698007", "73211009"}, params)
}

func TestCompile_NoStringInterpolation(t *testing.T) {
	p := &queryir.Intersection{Predicates: []queryir.Predicate{
		id("'; DROP TABLE concepts; --"),
		&queryir.Described{Filter: &queryir.TermMatches{Mode: queryir.MatchExact, Value: "Robert'); --", CaseSensitive: true}},
		&queryir.HasModule{Module: "module-x"},
	}}
	sql, params, err := NewSQLCompiler().Compile(p)
	require.NoError(t, err)
	assert.NotContains(t, sql, "DROP")
	assert.NotContains(t, sql, "Robert")
	assert.NotContains(t, sql, "module-x")
	assert.Len(t, params, 3)
	assert.Equal(t, strings.Count(sql, "?"), len(params))
}

func TestCompile_Errors(t *testing.T) {
	_, _, err := NewSQLCompiler().Compile(nil)
	assert.EqualError(t, err, "cannot compile nil predicate")

	_, _, err = NewSQLCompiler().Compile(&queryir.Union{})
	var se *queryir.StructureError
	assert.ErrorAs(t, err, &se)
}

func TestCompile_Deterministic(t *testing.T) {
	p := &queryir.Intersection{Predicates: []queryir.Predicate{
		&queryir.Closure{Direction: queryir.Descendants, Focus: &queryir.Member{RefSet: id("734138000")}},
		&queryir.Described{Filter: &queryir.TermMatches{Mode: queryir.MatchWords, Value: "heart"}},
	}}
	first, firstParams, err := NewSQLCompiler().Compile(p)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		sql, params, err := NewSQLCompiler().Compile(p)
		require.NoError(t, err)
		assert.Equal(t, first, sql)
		assert.Equal(t, firstParams, params)
	}
}
