package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetConcept returns the concept with the given id.
// Returns found=false if no such concept exists.
func (s *Store) GetConcept(ctx context.Context, id string) (c Concept, found bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT id, active, module_id FROM concepts WHERE id = ?
	`, id).Scan(&c.ID, &c.Active, &c.ModuleID)
	if errors.Is(err, sql.ErrNoRows) {
		return Concept{}, false, nil
	}
	if err != nil {
		return Concept{}, false, fmt.Errorf("get concept %s: %w", id, err)
	}
	return c, true, nil
}

// Descriptions returns every description of a concept ordered by id.
// Returns an empty slice (not nil) if the concept has none.
func (s *Store) Descriptions(ctx context.Context, conceptID string) ([]Description, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, concept_id, active, module_id, type_id, language_code, term, case_significance_id
		FROM descriptions
		WHERE concept_id = ?
		ORDER BY id COLLATE BINARY ASC
	`, conceptID)
	if err != nil {
		return nil, fmt.Errorf("query descriptions: %w", err)
	}
	defer rows.Close()

	descriptions := []Description{}
	for rows.Next() {
		var d Description
		if err := rows.Scan(&d.ID, &d.ConceptID, &d.Active, &d.ModuleID, &d.TypeID,
			&d.LanguageCode, &d.Term, &d.CaseSignificanceID); err != nil {
			return nil, fmt.Errorf("scan description: %w", err)
		}
		descriptions = append(descriptions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate descriptions: %w", err)
	}
	return descriptions, nil
}

// Label returns a display term for a concept: its active fully specified
// name, else any active term, else "".
func (s *Store) Label(ctx context.Context, conceptID string) (string, error) {
	var term string
	err := s.db.QueryRowContext(ctx, `
		SELECT term FROM descriptions
		WHERE concept_id = ? AND active = 1
		ORDER BY type_id = ? DESC, id COLLATE BINARY ASC
		LIMIT 1
	`, conceptID, FSNTypeID).Scan(&term)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("label %s: %w", conceptID, err)
	}
	return term, nil
}

// IsMember reports whether a component is an active member of a refset.
func (s *Store) IsMember(ctx context.Context, refsetID, componentID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM refset_members
		WHERE refset_id = ? AND referenced_component_id = ? AND active = 1
	`, refsetID, componentID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("is member: %w", err)
	}
	return n > 0, nil
}
