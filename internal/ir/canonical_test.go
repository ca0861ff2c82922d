package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalScalars(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"ir string", IRString("abc"), `"abc"`},
		{"go string", "abc", `"abc"`},
		{"ir int", IRInt(-42), `-42`},
		{"int64", int64(9007199254740993), `9007199254740993`},
		{"int", 7, `7`},
		{"ir bool", IRBool(true), `true`},
		{"bool", false, `false`},
		{"html stays literal", IRString("<a & b>"), `"<a & b>"`},
		{"control escaped", IRString("a\nb\tc"), `"a\nb\tc"`},
		{"quote and backslash", IRString(`"\`), `"\"\\"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	obj := IRObject{
		"op":    IRString("closure"),
		"focus": IRObject{"op": IRString("concept"), "id": IRString("404684003")},
		"self":  IRBool(true),
	}
	got, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"focus":{"id":"404684003","op":"concept"},"op":"closure","self":true}`, string(got))
}

func TestMarshalCanonicalUTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as the surrogate pair D83D DE00, which sorts before
	// U+FF61 in UTF-16 but after it in UTF-8.
	obj := IRObject{
		"\uFF61":     IRInt(1),
		"\U0001F600": IRInt(2),
	}
	got, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uFF61\":1}", string(got))
}

func TestMarshalCanonicalGoMapMatchesIRObject(t *testing.T) {
	goMap := map[string]any{
		"of": []any{map[string]any{"op": "all"}, "x"},
		"n":  int64(3),
	}
	irObj := IRObject{
		"of": IRArray{IRObject{"op": IRString("all")}, IRString("x")},
		"n":  IRInt(3),
	}
	a, err := MarshalCanonical(goMap)
	require.NoError(t, err)
	b, err := MarshalCanonical(irObj)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonicalRejects(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"nil", nil, "null is forbidden"},
		{"float64", 1.5, "floats are forbidden"},
		{"float32", float32(2), "floats are forbidden"},
		{"nested float", map[string]any{"a": []any{0.1}}, `value for key "a": array[0]: floats are forbidden`},
		{"nested nil", []any{"a", nil}, "array[1]: null is forbidden"},
		{"unsupported", struct{}{}, "unsupported type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalCanonical(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMarshalCanonicalNFC(t *testing.T) {
	decomposed, err := MarshalCanonical(IRString("cafe\u0301"))
	require.NoError(t, err)
	composed, err := MarshalCanonical(IRString("caf\u00e9"))
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
	assert.Equal(t, "\"caf\u00e9\"", string(decomposed))

	// Keys are normalized too.
	k1, err := MarshalCanonical(IRObject{"e\u0301": IRInt(1)})
	require.NoError(t, err)
	k2, err := MarshalCanonical(IRObject{"\u00e9": IRInt(1)})
	require.NoError(t, err)
	assert.Equal(t, k2, k1)
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"line separator", "a\u2028b", "\"a\u2028b\""},
		{"paragraph separator", "a\u2029b", "\"a\u2029b\""},
		{"escaped backslash text", `see \u2028`, `"see \\u2028"`},
		{"mixed", "x \\u2029 y \u2029", "\"x \\\\u2029 y \u2029\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(IRString(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	obj := IRObject{}
	for _, k := range []string{"z", "b", "y", "a", "x", "c"} {
		obj[k] = IRString(k)
	}
	first, err := MarshalCanonical(obj)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		got, err := MarshalCanonical(obj)
		require.NoError(t, err)
		require.Equal(t, first, got)
	}
}
