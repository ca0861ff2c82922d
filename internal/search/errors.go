package search

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes search failures.
type ErrorCode string

const (
	// ErrCodeInvalidQuery indicates the query text did not compile.
	ErrCodeInvalidQuery ErrorCode = "INVALID_QUERY"

	// ErrCodeEvaluation indicates the terminology could not evaluate the predicate.
	ErrCodeEvaluation ErrorCode = "EVALUATION_FAILED"

	// ErrCodeResultLimit indicates more concepts matched than allowed.
	ErrCodeResultLimit ErrorCode = "RESULT_LIMIT"
)

// Error is a classified search failure.
type Error struct {
	Code      ErrorCode
	Message   string
	RequestID string
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.RequestID != "" {
		msg += fmt.Sprintf(" (request=%s)", e.RequestID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the stage error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsInvalidQuery reports whether err is a query compilation failure.
// Uses errors.As to handle wrapped errors.
func IsInvalidQuery(err error) bool {
	return hasCode(err, ErrCodeInvalidQuery)
}

// IsResultLimit reports whether err is a result limit failure.
func IsResultLimit(err error) bool {
	return hasCode(err, ErrCodeResultLimit)
}

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// LimitError reports how far a search overshot WithMaxResults.
type LimitError struct {
	Matched int `json:"matched"`
	Limit   int `json:"limit"`
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%d concepts matched, limit is %d", e.Matched, e.Limit)
}
