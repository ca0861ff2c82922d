// Package search runs queries against a terminology.
//
// A Searcher ties the pipeline together:
//
//	query text -> cache (lex, parse, validate, compile) -> Terminology.Evaluate -> ids
//
// Every request is tagged with a request ID and a sequence number before
// any work starts, so log lines of one request can be correlated even when
// compilation fails.
//
// # Request IDs
//
// Production searchers use UUIDv7Generator, whose IDs sort by creation
// time. Tests inject FixedGenerator (or testutil.FixedRequestID) so logs
// and golden output are deterministic.
//
// # Errors
//
// Search returns *Error for failures it classifies:
//   - ErrCodeInvalidQuery: the query failed to lex, parse or validate;
//     the stage error (*lexer.Error, *parser.Error, validate.Errors) is
//     reachable with errors.As
//   - ErrCodeEvaluation: the terminology failed to evaluate the predicate
//   - ErrCodeResultLimit: more ids matched than WithMaxResults allows
//
// Context cancellation is returned as the context's own error.
package search
