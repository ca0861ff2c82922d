package querysql_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termql/internal/queryir"
	"github.com/roach88/termql/internal/querysql"
	"github.com/roach88/termql/internal/testutil"
)

func concept(id string) *queryir.ConceptIs { return &queryir.ConceptIs{ID: id} }

// TestCompile_ExecutesOnSQLite runs compiled statements directly against
// SQLite so the generated text is checked by the real parser.
func TestCompile_ExecutesOnSQLite(t *testing.T) {
	s := testutil.NewStore(t)

	tests := []struct {
		name string
		pred queryir.Predicate
		want []string
	}{
		{
			name: "concept",
			pred: concept("404684003"),
			want: []string{"404684003"},
		},
		{
			name: "self or descendants",
			pred: &queryir.Closure{Direction: queryir.Descendants, IncludeSelf: true, Focus: concept("73211009")},
			want: []string{"44054006", "46635009", "73211009"},
		},
		{
			name: "direct parents",
			pred: &queryir.Closure{Direction: queryir.Ancestors, DirectOnly: true, Focus: concept("73211009")},
			want: []string{"64572001"},
		},
		{
			name: "difference",
			pred: &queryir.Difference{
				Left:  &queryir.Closure{Direction: queryir.Descendants, IncludeSelf: true, Focus: concept("64572001")},
				Right: &queryir.Closure{Direction: queryir.Descendants, IncludeSelf: true, Focus: concept("73211009")},
			},
			want: []string{"22298006", "56265001", "64572001"},
		},
		{
			name: "member",
			pred: &queryir.Member{RefSet: concept("723264001")},
			want: []string{"39057004", "74281007"},
		},
		{
			name: "counted",
			pred: &queryir.Intersection{Predicates: []queryir.Predicate{
				&queryir.Closure{Direction: queryir.Descendants, IncludeSelf: true, Focus: concept("373873005")},
				&queryir.Counted{
					Predicate: &queryir.HasModule{Module: "999000021000000109"},
					Count:     &queryir.Count{Min: 0, Max: 0},
				},
			}},
			want: []string{"317896006", "373873005"},
		},
		{
			name: "none",
			pred: &queryir.MatchNone{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := querysql.NewSQLCompiler().Compile(tt.pred)
			require.NoError(t, err)

			rows, err := s.Query(context.Background(), sql, params...)
			require.NoError(t, err, sql)
			defer rows.Close()

			got := []string{}
			for rows.Next() {
				var id string
				require.NoError(t, rows.Scan(&id))
				got = append(got, id)
			}
			require.NoError(t, rows.Err())
			assert.Equal(t, tt.want, got)
		})
	}
}
