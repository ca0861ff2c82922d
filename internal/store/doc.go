// Package store provides a SQLite-backed terminology for evaluating
// compiled queries.
//
// The store holds the slice of a clinical terminology the query language
// reads:
//   - Concepts: id, active flag and module
//   - Descriptions: terms with type, language and case significance
//   - Language members: description acceptability per language refset
//   - Relationships: typed, grouped edges; is-a (116680003) forms the hierarchy
//   - Concrete values: literal attribute values
//   - Refset members: simple reference set membership
//
// # Critical Patterns
//
// Deterministic results:
//   - Every read ends with ORDER BY ... COLLATE BINARY
//   - Identical fixtures and queries give identical result lists
//
// Idempotent writes:
//   - Writes use ON CONFLICT DO NOTHING, so reloading a fixture is a no-op
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5s for locks
//   - foreign_keys=ON: Enforce referential integrity
//   - regexp(pattern, text): registered on every connection for regex
//     and word-prefix term matching
//
// # Usage
//
//	s, err := store.Open("terminology.db")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	if err := s.LoadFixture(ctx, f); err != nil {
//	    return err
//	}
//	ids, err := s.Evaluate(ctx, predicate)
package store
