// Package harness provides conformance testing for query evaluation.
//
// The harness loads a terminology fixture, runs queries through the full
// pipeline (lex, parse, validate, compile, evaluate) and checks the
// results against expectations written in YAML.
//
// # Scenario Format
//
//	name: diabetes_hierarchy
//	description: "Descendant operators over the diabetes subtree"
//	fixture: ../../testutil/testdata/terminology.yaml
//	queries:
//	  - name: children
//	    query: "<! 73211009"
//	    expect:
//	      ids: ["44054006", "46635009"]
//	  - query: "* {{ term match \"x\" }}"
//	    expect:
//	      errors: [E108]
//	assertions:
//	  - type: subset
//	    queries: [children, descendants]
//
// The fixture path is resolved relative to the scenario file. A scenario
// may instead (or additionally) embed its terminology under "terminology"
// using the store fixture format.
//
// # Expectations
//
// Each query may expect:
//   - ids: the exact result list, in ascending binary order
//   - contains / excludes: ids that must or must not be in the result
//   - count: the number of results
//   - errors: failure codes; validator codes (E100-E114), "lex" or "parse"
//
// # Assertion Types
//
// Assertions relate the results of named queries:
//   - same_fingerprint: the queries compile to identical predicates
//   - equal_results: the queries return the same ids
//   - subset: each query's ids are contained in the next query's ids
//   - disjoint: no id is returned by two of the queries
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory SQLite store with a fixed
// request ID and a deterministic sequence, so traces are byte-identical
// across runs and can be compared with golden files.
package harness
