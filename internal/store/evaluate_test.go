package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termql/internal/compiler"
	"github.com/roach88/termql/internal/queryir"
	"github.com/roach88/termql/internal/testutil"
	"github.com/roach88/termql/internal/validate"
)

func TestEvaluateQueries(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query", ``, []string{}},
		{"self", `404684003 |Clinical finding|`, []string{"404684003"}},
		{"unknown concept", `999999999`, []string{}},
		{"descendant or self", `<< 404684003`,
			[]string{"22298006", "404684003", "44054006", "46635009", "56265001", "64572001", "73211009"}},
		{"descendant", `< 73211009`, []string{"44054006", "46635009"}},
		{"child", `<! 64572001`, []string{"56265001", "73211009"}},
		{"ancestor or self", `>> 22298006`,
			[]string{"138875005", "22298006", "404684003", "56265001", "64572001"}},
		{"ancestor", `> 46635009`, []string{"138875005", "404684003", "64572001", "73211009"}},
		{"parent", `>! 46635009`, []string{"73211009"}},
		{"member of", `^ 723264001`, []string{"39057004", "74281007"}},
		{"member of nested", `^ (<< 723264001)`, []string{"39057004", "74281007"}},
		{"or", `73211009 OR 56265001`, []string{"56265001", "73211009"}},
		{"comma is or", `73211009, 56265001`, []string{"56265001", "73211009"}},
		{"and", `<< 64572001 AND >> 46635009`, []string{"46635009", "64572001", "73211009"}},
		{"minus", `<< 123037004 MINUS << 80891009`, []string{"123037004", "55641003"}},
		{"minus left assoc", `<< 404684003 MINUS << 64572001 MINUS 404684003`, []string{}},
		{"negation", `<< 404684003 AND !(<< 73211009)`,
			[]string{"22298006", "404684003", "56265001", "64572001"}},
		{"inactive concepts", `* {{ active = false }}`, []string{"195967001"}},
		{"concept module", `* {{ moduleId = 999000021000000109 }}`, []string{"322236009"}},
		{"term match", `<< 404684003 {{ term match "heart" }}`, []string{"22298006", "56265001"}},
		{"term match all words", `<< 404684003 {{ term match "diab mell" }}`,
			[]string{"44054006", "46635009", "73211009"}},
		{"term match is word prefix", `<< 404684003 {{ term match "art" }}`, []string{}},
		{"term exact", `* {{ term exact "Heart attack" }}`, []string{"22298006"}},
		{"term exact is case sensitive", `* {{ term exact "heart attack" }}`, []string{}},
		{"term regex", `* {{ term regex "^Type [12] " }}`, []string{"44054006", "46635009"}},
		{"language code", `* {{ term match "diabetes" AND languageCode = "es" }}`, []string{"44054006"}},
		{"description type", `* {{ typeId = 900000000000550004 |Definition| }}`, []string{"73211009"}},
		{"case significance", `* {{ caseSignificanceId = 900000000000017005 }}`, []string{"73211009"}},
		{"preferred in", `<< 404684003 {{ preferredIn = 900000000000508004 }}`, []string{"22298006", "56265001"}},
		{"acceptable in", `<< 404684003 {{ acceptableIn = 900000000000509007 }}`, []string{"22298006", "56265001"}},
		{"language refset", `* {{ term match "cardiac" AND languageRefSetId = 900000000000508004 }}`, []string{}},
		{"description inactive", `* {{ description.active = false }}`, []string{"195967001"}},
		{"filter or", `* {{ term match "asthma" OR term match "infarct" }}`,
			[]string{"195967001", "22298006", "55641003"}},
		{"filter minus", `<< 404684003 {{ term match "heart" MINUS term match "attack" }}`, []string{"56265001"}},
		{"description count", `<< 73211009 {{ term match "diabetes" }} [3..*]`, []string{"44054006", "73211009"}},
		{"description count bounded", `<< 73211009 {{ term match "diabetes" }} [2..2]`, []string{"46635009"}},
		{"focus cardinality", `404684003 [0..*]`, []string{"404684003"}},
		{"focus cardinality bounded", `<< 73211009 [1..2]`, []string{"44054006", "46635009", "73211009"}},
		{"focus cardinality unmet", `404684003 [2..*]`, []string{}},
		{"concept filter count any", `<< 373873005 {{ moduleId = 999000021000000109 }} [0..*]`,
			[]string{"317896006", "322236009", "373873005"}},
		{"concept filter count none", `<< 373873005 {{ moduleId = 999000021000000109 }} [0..0]`,
			[]string{"317896006", "373873005"}},
		{"attribute", `<< 404684003 : 363698007 = << 80891009`, []string{"22298006"}},
		{"attribute not equal", `<< 56265001 : 363698007 != 39057004`, []string{"22298006"}},
		{"attribute absent", `<< 64572001 : [0..0] 363698007 = *`,
			[]string{"44054006", "46635009", "56265001", "64572001", "73211009"}},
		{"attribute group", `<< 404684003 : { 363698007 = << 80891009 AND 116676008 = 55641003 }`,
			[]string{"22298006"}},
		{"attribute group count", `<< 373873005 : [1..1] { 127489000 = * }`, []string{"317896006", "322236009"}},
		{"refinement or", `<< 373873005 : 127489000 = 387461009 OR 127489000 = 387517004`,
			[]string{"317896006", "322236009"}},
		{"reversed attribute", `* : R 127489000 = 322236009`, []string{"387517004"}},
		{"concrete greater", `<< 373873005 : 1142135004 > #200`, []string{"322236009"}},
		{"concrete at least", `<< 373873005 : 1142135004 >= #125`, []string{"317896006", "322236009"}},
		{"concrete decimal", `<< 373873005 : 1142135004 = #125.0`, []string{"317896006"}},
		{"concrete string", `<< 373873005 : 1142135004 = "500"`, []string{}},
		{"dotted", `<< 373873005 . 127489000`, []string{"387461009", "387517004"}},
		{"dotted nested focus", `(<< 404684003 : 116676008 = *) . 363698007`, []string{"74281007"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := compiler.Build(tt.query, validate.DefaultOptions())
			require.NoError(t, err)

			got, err := s.Evaluate(ctx, res.Predicate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateRejectsMalformedPredicate(t *testing.T) {
	s := testutil.NewStore(t)

	_, err := s.Evaluate(context.Background(), &queryir.Intersection{})
	var structErr *queryir.StructureError
	require.ErrorAs(t, err, &structErr)
}

func TestEvaluateHonorsCancelledContext(t *testing.T) {
	s := testutil.NewStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Evaluate(ctx, &queryir.MatchAll{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolveDescendants(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	ids, err := s.ResolveDescendants(ctx, "73211009", false, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"44054006", "46635009"}, ids)

	ids, err = s.ResolveDescendants(ctx, "64572001", true, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"56265001", "64572001", "73211009"}, ids)
}

func TestResolveAncestors(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	ids, err := s.ResolveAncestors(ctx, "74281007", false, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"123037004", "138875005", "80891009"}, ids)

	ids, err = s.ResolveAncestors(ctx, "138875005", false, false)
	require.NoError(t, err)
	assert.Equal(t, []string{}, ids)
}
