package harness

// TraceEvent records one query execution.
type TraceEvent struct {
	Seq         int64    `json:"seq"`
	RequestID   string   `json:"request_id"`
	Name        string   `json:"name,omitempty"`
	Query       string   `json:"query"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	IDs         []string `json:"ids,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation and assertion holds.
	Pass bool `json:"pass"`

	// Trace contains every query execution in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a query execution to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}

// event returns the trace event of the named query.
func (r *Result) event(name string) (TraceEvent, bool) {
	for _, e := range r.Trace {
		if e.Name == name {
			return e, true
		}
	}
	return TraceEvent{}, false
}
