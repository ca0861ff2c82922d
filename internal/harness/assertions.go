package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Events of the queries involved
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nQueries:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s: %s -> %v\n", event.Seq, event.Name, event.Query, event.IDs)
	}

	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string

	for i, assertion := range assertions {
		events, err := namedEvents(result, assertion)
		if err == nil {
			switch assertion.Type {
			case AssertSameFingerprint:
				err = assertSameFingerprint(events)
			case AssertEqualResults:
				err = assertEqualResults(events)
			case AssertSubset:
				err = assertSubset(events)
			case AssertDisjoint:
				err = assertDisjoint(events)
			default:
				err = fmt.Errorf("unknown assertion type %q", assertion.Type)
			}
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	return errs
}

// namedEvents looks up the trace events an assertion refers to. Queries
// that failed cannot take part in an assertion.
func namedEvents(result *Result, a Assertion) ([]TraceEvent, error) {
	events := make([]TraceEvent, 0, len(a.Queries))
	for _, name := range a.Queries {
		event, ok := result.event(name)
		if !ok {
			return nil, fmt.Errorf("query %q not found in trace", name)
		}
		if len(event.Errors) > 0 {
			return nil, fmt.Errorf("query %q failed with %v", name, event.Errors)
		}
		events = append(events, event)
	}
	return events, nil
}

// assertSameFingerprint checks that the queries compile to structurally
// identical predicates.
func assertSameFingerprint(events []TraceEvent) error {
	for _, e := range events[1:] {
		if e.Fingerprint != events[0].Fingerprint {
			return &AssertionError{
				Type:     AssertSameFingerprint,
				Expected: fmt.Sprintf("%s and %s compile identically", events[0].Name, e.Name),
				Actual:   fmt.Sprintf("fingerprints %s and %s differ", short(events[0].Fingerprint), short(e.Fingerprint)),
				Trace:    events,
			}
		}
	}
	return nil
}

// assertEqualResults checks that the queries return the same ids.
func assertEqualResults(events []TraceEvent) error {
	for _, e := range events[1:] {
		if !slices.Equal(e.IDs, events[0].IDs) {
			return &AssertionError{
				Type:     AssertEqualResults,
				Expected: fmt.Sprintf("%s and %s return the same ids", events[0].Name, e.Name),
				Actual:   fmt.Sprintf("%v vs %v", events[0].IDs, e.IDs),
				Trace:    events,
			}
		}
	}
	return nil
}

// assertSubset checks that each query's ids are contained in the next
// query's ids.
func assertSubset(events []TraceEvent) error {
	for i := 1; i < len(events); i++ {
		inner, outer := events[i-1], events[i]
		for _, id := range inner.IDs {
			if !slices.Contains(outer.IDs, id) {
				return &AssertionError{
					Type:     AssertSubset,
					Expected: fmt.Sprintf("%s is a subset of %s", inner.Name, outer.Name),
					Actual:   fmt.Sprintf("%s is missing from %s", id, outer.Name),
					Trace:    events,
				}
			}
		}
	}
	return nil
}

// assertDisjoint checks that no id is returned by two of the queries.
func assertDisjoint(events []TraceEvent) error {
	owner := make(map[string]string)
	for _, e := range events {
		for _, id := range e.IDs {
			if prev, ok := owner[id]; ok {
				return &AssertionError{
					Type:     AssertDisjoint,
					Expected: "no shared ids",
					Actual:   fmt.Sprintf("%s is returned by %s and %s", id, prev, e.Name),
					Trace:    events,
				}
			}
			owner[id] = e.Name
		}
	}
	return nil
}

func short(fingerprint string) string {
	if len(fingerprint) > 12 {
		return fingerprint[:12]
	}
	return fingerprint
}
