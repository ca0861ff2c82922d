package store

import (
	"context"
	"database/sql"
	"fmt"
)

// execer is satisfied by *sql.DB and *sql.Tx so writes can join a
// fixture transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// WriteConcept inserts a concept.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteConcept(ctx context.Context, c Concept) error {
	return writeConcept(ctx, s.db, c)
}

func writeConcept(ctx context.Context, db execer, c Concept) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO concepts (id, active, module_id)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, c.ID, c.Active, c.ModuleID)
	if err != nil {
		return fmt.Errorf("write concept %s: %w", c.ID, err)
	}
	return nil
}

// WriteDescription inserts a description.
// Note: The concept referenced by ConceptID must exist (foreign key constraint).
func (s *Store) WriteDescription(ctx context.Context, d Description) error {
	return writeDescription(ctx, s.db, d)
}

func writeDescription(ctx context.Context, db execer, d Description) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO descriptions
		(id, concept_id, active, module_id, type_id, language_code, term, case_significance_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		d.ID,
		d.ConceptID,
		d.Active,
		d.ModuleID,
		d.TypeID,
		d.LanguageCode,
		d.Term,
		d.CaseSignificanceID,
	)
	if err != nil {
		return fmt.Errorf("write description %s: %w", d.ID, err)
	}
	return nil
}

// WriteLanguageMember inserts a language refset member.
// Note: The description referenced by DescriptionID must exist (foreign key constraint).
func (s *Store) WriteLanguageMember(ctx context.Context, m LanguageMember) error {
	return writeLanguageMember(ctx, s.db, m)
}

func writeLanguageMember(ctx context.Context, db execer, m LanguageMember) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO language_members (refset_id, description_id, acceptability_id, active)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(refset_id, description_id) DO NOTHING
	`, m.RefSetID, m.DescriptionID, m.AcceptabilityID, m.Active)
	if err != nil {
		return fmt.Errorf("write language member %s/%s: %w", m.RefSetID, m.DescriptionID, err)
	}
	return nil
}

// WriteRelationship inserts a relationship.
func (s *Store) WriteRelationship(ctx context.Context, r Relationship) error {
	return writeRelationship(ctx, s.db, r)
}

func writeRelationship(ctx context.Context, db execer, r Relationship) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO relationships (id, source_id, type_id, destination_id, rel_group, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, r.ID, r.SourceID, r.TypeID, r.DestinationID, r.Group, r.Active)
	if err != nil {
		return fmt.Errorf("write relationship %s: %w", r.ID, err)
	}
	return nil
}

// WriteConcreteValue inserts a concrete attribute value.
func (s *Store) WriteConcreteValue(ctx context.Context, v ConcreteValue) error {
	return writeConcreteValue(ctx, s.db, v)
}

func writeConcreteValue(ctx context.Context, db execer, v ConcreteValue) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO concrete_values (id, source_id, type_id, value, value_kind, rel_group, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, v.ID, v.SourceID, v.TypeID, v.Value, v.Kind, v.Group, v.Active)
	if err != nil {
		return fmt.Errorf("write concrete value %s: %w", v.ID, err)
	}
	return nil
}

// WriteRefSetMember inserts a simple refset member.
func (s *Store) WriteRefSetMember(ctx context.Context, m RefSetMember) error {
	return writeRefSetMember(ctx, s.db, m)
}

func writeRefSetMember(ctx context.Context, db execer, m RefSetMember) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO refset_members (refset_id, referenced_component_id, active)
		VALUES (?, ?, ?)
		ON CONFLICT(refset_id, referenced_component_id) DO NOTHING
	`, m.RefSetID, m.ReferencedComponentID, m.Active)
	if err != nil {
		return fmt.Errorf("write refset member %s/%s: %w", m.RefSetID, m.ReferencedComponentID, err)
	}
	return nil
}
