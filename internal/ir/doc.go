// Package ir provides the canonical value model and content hashing shared by
// the query pipeline.
//
// Encoded predicates are trees of IRValue. MarshalCanonical renders them as
// RFC 8785 JSON and the Hash functions fingerprint that rendering with a
// domain-separated SHA-256, so fingerprints are stable across processes and
// releases.
//
// Key design constraints:
//   - NO float types anywhere - decimals travel as strings
//   - NO null - absent fields are omitted
//   - ir imports nothing internal
package ir
