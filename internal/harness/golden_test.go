package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/validation_errors.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestSnapshot(t *testing.T) {
	result := NewResult()
	result.AddTrace(TraceEvent{Seq: 1, RequestID: "r", Name: "ok", Query: "1", Fingerprint: "abc", IDs: []string{}})
	result.AddTrace(TraceEvent{Seq: 2, RequestID: "r", Query: "<b>", Errors: []string{"E108"}})

	data, err := Snapshot("demo", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"demo","trace":[`+
			`{"fingerprint":"abc","ids":[],"name":"ok","query":"1","request_id":"r","seq":1},`+
			`{"errors":["E108"],"query":"<b>","request_id":"r","seq":2}]}`,
		string(data))
}

func TestSnapshot_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/operators.yaml")
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := Snapshot(s.Name, first)
	require.NoError(t, err)
	b, err := Snapshot(s.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
