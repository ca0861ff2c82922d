package store

import (
	"context"
	"fmt"

	"github.com/roach88/termql/internal/queryir"
	"github.com/roach88/termql/internal/querysql"
)

// Evaluate runs a compiled predicate and returns the matching concept ids
// in ascending binary order. Returns an empty slice (not nil) when nothing
// matches.
func (s *Store) Evaluate(ctx context.Context, p queryir.Predicate) ([]string, error) {
	query, params, err := querysql.NewSQLCompiler().Compile(p)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("evaluate: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("evaluate: iterate: %w", err)
	}
	return ids, nil
}

// ResolveDescendants returns the descendants of a concept over active is-a
// relationships.
func (s *Store) ResolveDescendants(ctx context.Context, id string, includeSelf, directOnly bool) ([]string, error) {
	return s.Evaluate(ctx, &queryir.Closure{
		Direction:   queryir.Descendants,
		IncludeSelf: includeSelf,
		DirectOnly:  directOnly,
		Focus:       &queryir.ConceptIs{ID: id},
	})
}

// ResolveAncestors returns the ancestors of a concept over active is-a
// relationships.
func (s *Store) ResolveAncestors(ctx context.Context, id string, includeSelf, directOnly bool) ([]string, error) {
	return s.Evaluate(ctx, &queryir.Closure{
		Direction:   queryir.Ancestors,
		IncludeSelf: includeSelf,
		DirectOnly:  directOnly,
		Focus:       &queryir.ConceptIs{ID: id},
	})
}
