package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainPredicate = "termql/predicate/v1"
	DomainQuery     = "termql/query/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PredicateHash computes the fingerprint of an encoded predicate.
// Returns error if the value cannot be canonically marshaled.
func PredicateHash(encoded IRObject) (string, error) {
	canonical, err := MarshalCanonical(encoded)
	if err != nil {
		return "", fmt.Errorf("PredicateHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPredicate, canonical), nil
}

// QueryHash identifies query text after NFC normalization, so visually
// identical queries share cache entries and request logs.
func QueryHash(text string) string {
	canonical, err := MarshalCanonical(IRString(text))
	if err != nil {
		// A string always marshals.
		panic(err)
	}
	return hashWithDomain(DomainQuery, canonical)
}

// MustPredicateHash is like PredicateHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustPredicateHash(encoded IRObject) string {
	h, err := PredicateHash(encoded)
	if err != nil {
		panic(err)
	}
	return h
}
