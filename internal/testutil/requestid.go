package testutil

// FixedRequestID returns the same request ID for every search.
//
// Golden output stays byte-identical across runs because no UUIDs leak
// into it. Use search.FixedGenerator when each request needs a distinct
// but predictable ID.
//
// Thread-safety: FixedRequestID is stateless and safe for concurrent use.
type FixedRequestID struct {
	id string
}

// NewFixedRequestID creates a generator returning id.
// If id is empty, Generate() returns "test-request-default".
func NewFixedRequestID(id string) *FixedRequestID {
	if id == "" {
		id = "test-request-default"
	}
	return &FixedRequestID{id: id}
}

// Generate returns the fixed request ID.
//
// Implements search.RequestIDGenerator.
func (g *FixedRequestID) Generate() string {
	return g.id
}
