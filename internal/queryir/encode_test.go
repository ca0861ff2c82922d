package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termql/internal/ir"
)

func canonical(t *testing.T, p Predicate) string {
	t.Helper()
	obj, err := Encode(p)
	require.NoError(t, err)
	b, err := ir.MarshalCanonical(obj)
	require.NoError(t, err)
	return string(b)
}

func TestEncode_Shapes(t *testing.T) {
	tests := []struct {
		name string
		pred Predicate
		want string
	}{
		{"all", &MatchAll{}, `{"op":"all"}`},
		{"none", &MatchNone{}, `{"op":"none"}`},
		{"concept", concept("404684003"), `{"id":"404684003","op":"concept"}`},
		{"closure", &Closure{Direction: Descendants, IncludeSelf: true, Focus: concept("1")},
			`{"direct":false,"direction":"descendants","focus":{"id":"1","op":"concept"},"op":"closure","self":true}`},
		{"union", &Union{Predicates: []Predicate{concept("2"), concept("1")}},
			`{"of":[{"id":"2","op":"concept"},{"id":"1","op":"concept"}],"op":"or"}`},
		{"minus", &Difference{Left: &MatchAll{}, Right: concept("1")},
			`{"left":{"op":"all"},"op":"minus","right":{"id":"1","op":"concept"}}`},
		{"not", &Complement{Predicate: &MatchNone{}}, `{"of":{"op":"none"},"op":"not"}`},
		{"member", &Member{RefSet: concept("7")}, `{"op":"member","refset":{"id":"7","op":"concept"}}`},
		{"described unbounded", &Described{
			Filter: &TermMatches{Mode: MatchWords, Value: "heart"},
			Count:  &Count{Min: 2, Unbounded: true},
		}, `{"count":{"max":"*","min":2},"filter":{"case_sensitive":false,"mode":"match","op":"term","value":"heart"},"op":"described"}`},
		{"described no count", &Described{Filter: &HasLanguageCode{Code: "en"}},
			`{"filter":{"code":"en","op":"language_code"},"op":"described"}`},
		{"attribute concrete", &Attribute{
			Type:     concept("3"),
			Concrete: &ConcreteValue{Op: ">", Kind: ConcreteInteger, Value: "10"},
			Count:    &Count{Min: 0, Max: 1},
		}, `{"concrete":{"kind":"integer","op":">","value":"10"},"count":{"max":1,"min":0},"negated":false,"op":"attribute","reversed":false,"type":{"id":"3","op":"concept"}}`},
		{"counted", &Counted{Predicate: &IsActive{Active: true}, Count: &Count{Min: 0, Max: 0}},
			`{"count":{"max":0,"min":0},"of":{"active":true,"op":"active"},"op":"counted"}`},
		{"values", &AttributeValues{Focus: concept("1"), Type: concept("2")},
			`{"focus":{"id":"1","op":"concept"},"op":"values","type":{"id":"2","op":"concept"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canonical(t, tt.pred))
		})
	}
}

func TestEncode_Errors(t *testing.T) {
	_, err := Encode(nil)
	assert.EqualError(t, err, "cannot encode nil predicate")

	_, err = Encode(&Intersection{Predicates: []Predicate{&MatchAll{}, nil}})
	assert.EqualError(t, err, "and[1]: cannot encode nil predicate")

	_, err = Encode(&Attribute{Type: &MatchAll{}, Value: &Closure{Direction: Descendants}})
	assert.EqualError(t, err, "attribute value: closure: cannot encode nil predicate")
}

func TestFingerprint(t *testing.T) {
	a := &Closure{Direction: Descendants, IncludeSelf: true, Focus: concept("404684003")}
	b := &Closure{Direction: Descendants, IncludeSelf: true, Focus: concept("404684003")}
	c := &Closure{Direction: Descendants, Focus: concept("404684003")}

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	fc, err := Fingerprint(c)
	require.NoError(t, err)

	assert.Equal(t, fa, fb)
	assert.NotEqual(t, fa, fc)

	_, err = Fingerprint(nil)
	assert.Error(t, err)
}
