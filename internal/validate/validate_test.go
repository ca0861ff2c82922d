package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termql/internal/ast"
	"github.com/roach88/termql/internal/parser"
)

func check(t *testing.T, src string) []ValidationError {
	t.Helper()
	q, err := parser.ParseString(src)
	require.NoError(t, err, "parse %q", src)
	return Validate(q)
}

func codes(errs []ValidationError) []string {
	return Errors(errs).Codes()
}

func TestValidateAcceptsValidQueries(t *testing.T) {
	valid := []string{
		"",
		"404684003",
		"<< 404684003 |Clinical finding|",
		`<< 404684003 {{ term match "diabetes" AND active = true }}`,
		`* {{ term match "heart" }} [0..*]`,
		`* {{ term match "heart" }} [1..1]`,
		`* {{ term exact "Heart attack" OR term regex "^[Hh]eart" }}`,
		`* {{ languageCode = "en" AND typeId = 900000000000013009 }}`,
		`* {{ acceptableIn = 900000000000509007 MINUS preferredIn = 900000000000508004 }}`,
		`* {{ caseSignificanceId = 900000000000448009 }}`,
		`* {{ concept.active = true AND concept.moduleId = 900000000000207008 }}`,
		`* {{ description.active = false AND term match "x y" }}`,
		"^ 900000000000509007 MINUS !<! 138875005",
		"<< 373873005 : 127489000 = << 387517004",
		"* : R 127489000 = 373873005",
		"* : R << 127489000 = *",
		"* : [0..*] { 127489000 = *, 411116001 = * }",
		"* : 1142135004 >= #2, 1142136003 = #1.5",
		`* : 1142135004 = "tablet"`,
		"<< 373873005 . 127489000",
	}

	for _, src := range valid {
		t.Run(src, func(t *testing.T) {
			assert.Empty(t, check(t, src))
		})
	}
}

func TestValidateCardinality(t *testing.T) {
	errs := check(t, `* {{ term match "heart" }} [2..1]`)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCardinalityRange, errs[0].Code)
	assert.Contains(t, errs[0].Message, "minimum 2 exceeds maximum 1")

	assert.Empty(t, check(t, `* {{ term match "heart" }} [0..*]`))
	assert.Equal(t, []string{ErrCardinalityRange}, codes(check(t, "* : [3..2] 127489000 = *")))
}

func TestValidateNegativeCardinality(t *testing.T) {
	q := &ast.Query{Root: &ast.Filtered{
		Expr:        &ast.Wildcard{},
		Group:       &ast.FilterGroup{Root: &ast.TermFilter{Mode: ast.Match, Value: "heart"}},
		Cardinality: &ast.Cardinality{Min: -1, Max: 2},
	}}
	assert.Equal(t, []string{ErrCardinalityNegative}, codes(Validate(q)))
}

func TestValidateCardinalityWithoutDescriptionFilter(t *testing.T) {
	tests := []string{
		"404684003 [0..*]",
		"<< 404684003 [1..2]",
		"* {{ active = true }} [0..*]",
		"* {{ moduleId = 900000000000207008 }} [0..0]",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			assert.Empty(t, check(t, src))
		})
	}
	assert.Equal(t, []string{ErrCardinalityRange}, codes(check(t, "404684003 [2..1]")))
}

func TestValidateEmptyFilterGroup(t *testing.T) {
	errs := check(t, "<< 404684003 {{ }}")
	require.Len(t, errs, 1)
	assert.Equal(t, ErrEmptyFilterGroup, errs[0].Code)
	assert.Equal(t, 13, errs[0].Pos.Offset)
}

func TestValidateReversedPlacement(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expr
	}{
		{"reversed at top level", &ast.Reversed{Expr: &ast.ConceptRef{ID: "127489000"}}},
		{
			"reversed filtered expression",
			&ast.Refined{Expr: &ast.Wildcard{}, Refinement: &ast.AttributeConstraint{
				Attribute: &ast.Reversed{Expr: &ast.Filtered{
					Expr:  &ast.ConceptRef{ID: "127489000"},
					Group: &ast.FilterGroup{Root: &ast.ActiveFilter{Active: true}},
				}},
				Value: &ast.ExprValue{Expr: &ast.Wildcard{}},
			}},
		},
		{
			"reversed boolean",
			&ast.Refined{Expr: &ast.Wildcard{}, Refinement: &ast.AttributeConstraint{
				Attribute: &ast.Reversed{Expr: &ast.BoolExpr{
					Op:    ast.Or,
					Left:  &ast.ConceptRef{ID: "127489000"},
					Right: &ast.ConceptRef{ID: "411116001"},
				}},
				Value: &ast.ExprValue{Expr: &ast.Wildcard{}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string{ErrReversedPlacement}, codes(Validate(&ast.Query{Root: tt.expr})))
		})
	}

	assert.Equal(t, []string{ErrReversedPlacement}, codes(check(t, "* : R 127489000 {{ active = true }} = *")))
}

func TestValidateReversedConcrete(t *testing.T) {
	assert.Equal(t, []string{ErrReversedConcrete}, codes(check(t, "* : R 1142135004 = #2")))
	assert.Equal(t, []string{ErrReversedConcrete}, codes(check(t, `* : R 1142135004 = "x"`)))
}

func TestValidateConceptIDs(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"0123456", []string{ErrConceptIDMalformed}},
		{"12345", []string{ErrConceptIDLength}},
		{"1234567890123456789", []string{ErrConceptIDLength}},
		{"<< 12345 OR 0404684003", []string{ErrConceptIDLength, ErrConceptIDMalformed}},
		{"* {{ moduleId = 123 }}", []string{ErrConceptIDLength}},
		{"* : 12345 = 0123456", []string{ErrConceptIDLength, ErrConceptIDMalformed}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, codes(check(t, tt.src)))
		})
	}
}

func TestValidateMalformedConceptRef(t *testing.T) {
	q := &ast.Query{Root: &ast.ConceptRef{ID: "12a456"}}
	assert.Equal(t, []string{ErrConceptIDMalformed}, codes(Validate(q)))
}

func TestValidateCheckDigits(t *testing.T) {
	q, err := parser.ParseString("404684003 OR 404684004")
	require.NoError(t, err)

	assert.Empty(t, Validate(q), "check digits are off by default")

	opts := DefaultOptions()
	opts.CheckDigits = true
	errs := New(opts).Validate(q)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrConceptIDCheck, errs[0].Code)
	assert.Contains(t, errs[0].Message, "404684004")
}

func TestValidateTermFilters(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{`* {{ term = "C" }}`, []string{ErrTermTooShort}},
		{`* {{ term match " a " }}`, []string{ErrTermTooShort}},
		{`* {{ term exact "C" }}`, nil},
		{`* {{ term regex "[unclosed" }}`, []string{ErrRegexInvalid}},
		{`* {{ term regex "a(b" OR term match "x" }}`, []string{ErrRegexInvalid, ErrTermTooShort}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := codes(check(t, tt.src))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateMinTermLengthOption(t *testing.T) {
	q, err := parser.ParseString(`* {{ term match "ab" }}`)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.MinTermLength = 3
	assert.Equal(t, []string{ErrTermTooShort}, codes(New(opts).Validate(q)))
}

func TestValidateLanguageCode(t *testing.T) {
	tests := []struct {
		code string
		ok   bool
	}{
		{"en", true},
		{"EN", true},
		{"de", true},
		{"en-sg", false},
		{"e", false},
		{"eng", false},
		{"e1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			errs := check(t, `* {{ languageCode = "`+tt.code+`" }}`)
			if tt.ok {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, []string{ErrLanguageCode}, codes(errs))
		})
	}
}

func TestValidateFilterDomains(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{`* {{ concept.active = true AND term match "heart" }}`, []string{ErrFilterDomainMixed}},
		{`* {{ concept.moduleId = 900000000000207008 AND description.active = true }}`, []string{ErrFilterDomainMixed}},
		{`* {{ concept.term match "heart" }}`, []string{ErrFilterDomainMixed, ErrFilterDomainInvalid}},
		{`* {{ concept.languageCode = "en" }}`, []string{ErrFilterDomainMixed, ErrFilterDomainInvalid}},
		{`* {{ active = true AND term match "heart" }}`, nil},
		{`* {{ description.term match "heart" }}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := codes(check(t, tt.src))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	errs := check(t, `<< 0123 {{ }} OR * {{ term match "x" }} [5..1] OR 12`)
	assert.Equal(t, []string{
		ErrConceptIDMalformed,
		ErrEmptyFilterGroup,
		ErrTermTooShort,
		ErrCardinalityRange,
		ErrConceptIDLength,
	}, codes(errs))
}

func TestValidateUnsupportedNodes(t *testing.T) {
	q := &ast.Query{Root: &ast.BoolExpr{Op: ast.And, Left: &ast.Wildcard{}}}
	assert.Equal(t, []string{ErrUnsupportedNode}, codes(Validate(q)))

	q = &ast.Query{Root: &ast.Refined{Expr: &ast.Wildcard{}}}
	assert.Equal(t, []string{ErrUnsupportedNode}, codes(Validate(q)))

	q = &ast.Query{Root: &ast.Filtered{Expr: &ast.Wildcard{}, Group: &ast.FilterGroup{
		Root: &ast.FilterBool{Op: ast.And, Left: &ast.ActiveFilter{}},
	}}}
	assert.Equal(t, []string{ErrUnsupportedNode}, codes(Validate(q)))
}

func TestValidateEmptyQuery(t *testing.T) {
	assert.Empty(t, Validate(&ast.Query{}))
	assert.Empty(t, Validate(nil))
}

func TestErrorsError(t *testing.T) {
	errs := check(t, "12345 OR 0123456")
	require.Len(t, errs, 2)

	msg := Errors(errs).Error()
	assert.Contains(t, msg, "2 validation errors")
	assert.Contains(t, msg, "[E106] 1:1")
	assert.Contains(t, msg, "[E105] 1:10")

	assert.Equal(t, errs[0].Error(), Errors(errs[:1]).Error())
}

func TestVerhoeff(t *testing.T) {
	valid := []string{
		"138875005", "404684003", "116680003", "127489000",
		"900000000000207008", "900000000000509007", "64572001",
	}
	for _, id := range valid {
		assert.True(t, VerhoeffValid(id), id)
	}

	invalid := []string{"404684004", "138875006", "123456", "", "12a"}
	for _, id := range invalid {
		assert.False(t, VerhoeffValid(id), id)
	}
}
