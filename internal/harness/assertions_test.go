package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func traceResult(events ...TraceEvent) *Result {
	r := NewResult()
	for _, e := range events {
		r.AddTrace(e)
	}
	return r
}

func TestEvaluateAssertions(t *testing.T) {
	result := traceResult(
		TraceEvent{Seq: 1, Name: "a", Query: "<< 1", Fingerprint: "f1", IDs: []string{"1", "2"}},
		TraceEvent{Seq: 2, Name: "b", Query: "1 OR 2", Fingerprint: "f2", IDs: []string{"1", "2"}},
		TraceEvent{Seq: 3, Name: "c", Query: "<< 0", Fingerprint: "f3", IDs: []string{"0", "1", "2"}},
		TraceEvent{Seq: 4, Name: "d", Query: "3", Fingerprint: "f1", IDs: []string{"3"}},
		TraceEvent{Seq: 5, Name: "bad", Query: "<<", Errors: []string{ErrorParse}},
	)

	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"same fingerprint holds", Assertion{AssertSameFingerprint, []string{"a", "d"}}, ""},
		{"same fingerprint fails", Assertion{AssertSameFingerprint, []string{"a", "b"}}, "fingerprints f1 and f2 differ"},
		{"equal results holds", Assertion{AssertEqualResults, []string{"a", "b"}}, ""},
		{"equal results fails", Assertion{AssertEqualResults, []string{"a", "c"}}, "[1 2] vs [0 1 2]"},
		{"subset holds", Assertion{AssertSubset, []string{"a", "b", "c"}}, ""},
		{"subset fails", Assertion{AssertSubset, []string{"c", "a"}}, "0 is missing from a"},
		{"disjoint holds", Assertion{AssertDisjoint, []string{"a", "d"}}, ""},
		{"disjoint fails", Assertion{AssertDisjoint, []string{"d", "a", "c"}}, "1 is returned by a and c"},
		{"unknown query", Assertion{AssertSubset, []string{"a", "zzz"}}, `query "zzz" not found in trace`},
		{"failed query", Assertion{AssertSubset, []string{"a", "bad"}}, `query "bad" failed with [parse]`},
		{"unknown type", Assertion{"overlaps", []string{"a", "b"}}, `unknown assertion type "overlaps"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(result, []Assertion{tt.assertion})
			if tt.want == "" {
				assert.Empty(t, errs)
				return
			}
			if assert.Len(t, errs, 1) {
				assert.Contains(t, errs[0], "assertions[0]: ")
				assert.Contains(t, errs[0], tt.want)
			}
		})
	}
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertEqualResults,
		Expected: "a and b return the same ids",
		Actual:   "[1] vs [2]",
		Trace: []TraceEvent{
			{Seq: 1, Name: "a", Query: "1", IDs: []string{"1"}},
			{Seq: 2, Name: "b", Query: "2", IDs: []string{"2"}},
		},
	}

	assert.Equal(t, "Assertion failed: equal_results\n"+
		"  Expected: a and b return the same ids\n"+
		"  Actual: [1] vs [2]\n"+
		"\nQueries:\n"+
		"  [1] a: 1 -> [1]\n"+
		"  [2] b: 2 -> [2]\n", err.Error())
}
