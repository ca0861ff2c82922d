package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/roach88/termql/internal/cache"
	"github.com/roach88/termql/internal/lexer"
	"github.com/roach88/termql/internal/parser"
	"github.com/roach88/termql/internal/search"
	"github.com/roach88/termql/internal/store"
	"github.com/roach88/termql/internal/testutil"
	"github.com/roach88/termql/internal/validate"
)

// Harness is the test execution engine.
// It runs queries with a fixed request ID and a deterministic sequence.
type Harness struct {
	store    *store.Store
	searcher *search.Searcher
	seq      *testutil.DeterministicSequence
	logger   *slog.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithLogger sets the logger used for scenario progress and searches.
// Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Load the fixture file and inline terminology
// 3. Execute queries, checking each expectation
// 4. Evaluate assertions over the named queries
//
// An error is returned only when the scenario cannot run at all; failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		seq:    testutil.NewDeterministicSequence(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.searcher = search.New(st,
		cache.New(cache.WithValidation(scenario.Validation.Options())),
		search.WithRequestIDs(testutil.NewFixedRequestID(scenario.RequestID)),
		search.WithSequencer(h.seq),
		search.WithLogger(h.logger),
	)

	ctx := context.Background()
	if err := h.loadTerminology(ctx, scenario); err != nil {
		return nil, err
	}

	result := NewResult()
	for i, step := range scenario.Queries {
		h.executeQuery(ctx, i, step, result)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario finished", "scenario", scenario.Name, "pass", result.Pass, "errors", len(result.Errors))
	return result, nil
}

func (h *Harness) loadTerminology(ctx context.Context, scenario *Scenario) error {
	if scenario.Fixture != "" {
		f, err := os.Open(scenario.Fixture)
		if err != nil {
			return fmt.Errorf("failed to open fixture: %w", err)
		}
		defer f.Close()
		if err := h.store.LoadFixture(ctx, f); err != nil {
			return fmt.Errorf("failed to load fixture %s: %w", scenario.Fixture, err)
		}
	}
	if scenario.Terminology != nil {
		if err := h.store.WriteFixture(ctx, scenario.Terminology); err != nil {
			return fmt.Errorf("failed to load inline terminology: %w", err)
		}
	}
	return nil
}

// executeQuery runs one query, records it in the trace and checks its
// expectation.
func (h *Harness) executeQuery(ctx context.Context, index int, step QueryStep, result *Result) {
	res, err := h.searcher.Search(ctx, step.Query)

	event := TraceEvent{
		Seq:   h.seq.Current(),
		Name:  step.Name,
		Query: step.Query,
	}
	if err != nil {
		var se *search.Error
		if errors.As(err, &se) {
			event.RequestID = se.RequestID
		}
		event.Errors = ErrorCodes(err)
	} else {
		event.RequestID = res.RequestID
		event.Fingerprint = res.Fingerprint
		event.IDs = res.IDs
	}
	result.AddTrace(event)

	label := fmt.Sprintf("queries[%d] %q", index, step.Query)
	if step.Name != "" {
		label = fmt.Sprintf("queries[%d] (%s)", index, step.Name)
	}
	for _, msg := range checkExpectation(step.Expect, event) {
		result.AddError(label + ": " + msg)
	}
}

// ErrorCodes classifies a search error: validator codes in report order,
// or a single lex, parse or evaluation code.
func ErrorCodes(err error) []string {
	var valErrs validate.Errors
	if errors.As(err, &valErrs) {
		return valErrs.Codes()
	}
	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		return []string{ErrorLex}
	}
	var parseErr *parser.Error
	if errors.As(err, &parseErr) {
		return []string{ErrorParse}
	}
	return []string{ErrorEvaluation}
}

func checkExpectation(e *Expectation, event TraceEvent) []string {
	if e == nil {
		if len(event.Errors) > 0 {
			return []string{fmt.Sprintf("unexpected failure %v", event.Errors)}
		}
		return nil
	}

	if len(e.Errors) > 0 {
		if !slices.Equal(e.Errors, event.Errors) {
			return []string{fmt.Sprintf("expected errors %v, got %v", e.Errors, event.Errors)}
		}
		return nil
	}
	if len(event.Errors) > 0 {
		return []string{fmt.Sprintf("unexpected failure %v", event.Errors)}
	}

	var msgs []string
	if e.exactIDs && !slices.Equal(e.IDs, event.IDs) && !(len(e.IDs) == 0 && len(event.IDs) == 0) {
		msgs = append(msgs, fmt.Sprintf("expected ids %v, got %v", e.IDs, event.IDs))
	}
	for _, id := range e.Contains {
		if !slices.Contains(event.IDs, id) {
			msgs = append(msgs, fmt.Sprintf("expected result to contain %s", id))
		}
	}
	for _, id := range e.Excludes {
		if slices.Contains(event.IDs, id) {
			msgs = append(msgs, fmt.Sprintf("expected result to exclude %s", id))
		}
	}
	if e.Count != nil && *e.Count != len(event.IDs) {
		msgs = append(msgs, fmt.Sprintf("expected %d results, got %d", *e.Count, len(event.IDs)))
	}
	return msgs
}
