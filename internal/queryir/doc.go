// Package queryir provides the backend-neutral predicate intermediate
// representation (IR) that compiled queries are lowered into.
//
// QueryIR is the abstraction boundary between the query language front end
// and whatever executes a query against a terminology. The front end never
// sees SQL; a backend never sees query text.
//
// ARCHITECTURE:
//
//	[query text] -> [lexer] -> [parser] -> [AST] -> [validator] -> [compiler] -> [Predicate]
//	                                                                          -> [SQL backend]
//	                                                                          -> [other collaborators]
//
// A Predicate denotes a set of concepts. Set algebra (Intersection, Union,
// Difference, Complement) combines sets; Closure and Member ask the
// collaborator for hierarchy traversal and reference set membership;
// Described and its description leaves (TermMatches, HasLanguageCode, ...)
// select concepts by the descriptions they carry; Attribute, Grouped and
// AttributeValues select by relationships. Counted bounds how often a
// concept-level predicate matches.
//
// SEALED INTERFACE:
//
// Predicate is sealed with the marker method pattern so backends can switch
// exhaustively:
//
//	switch p := pred.(type) {
//	case *queryir.Intersection:
//	    // ...
//	case *queryir.Closure:
//	    // ...
//	default:
//	    // programming error: a variant was added without backend support
//	}
//
// DESCRIPTION CONTEXT:
//
// Description leaves are only meaningful inside Described: they constrain a
// single description row, and Described lifts "some description matches"
// (or a counted number of them) to the concept level. IsActive and
// HasModule are valid in both contexts and refer to the concept outside
// Described and to the description inside it.
//
// DETERMINISM:
//
// Predicates are immutable values. Encode produces a canonical tree and
// Fingerprint hashes its RFC 8785 encoding, so equal predicates always
// share a fingerprint and can key caches.
package queryir
