package search

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/termql/internal/cache"
	"github.com/roach88/termql/internal/queryir"
)

// Terminology evaluates compiled predicates. *store.Store implements it.
type Terminology interface {
	Evaluate(ctx context.Context, p queryir.Predicate) ([]string, error)
}

// Result is the outcome of one search.
type Result struct {
	RequestID   string
	Seq         int64
	Query       string
	Fingerprint string
	Predicate   queryir.Predicate
	IDs         []string
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithRequestIDs sets the request ID generator.
// Default: UUIDv7Generator.
func WithRequestIDs(g RequestIDGenerator) Option {
	return func(s *Searcher) { s.ids = g }
}

// WithSequencer sets the request sequence.
// Default: a Sequence starting at 0.
func WithSequencer(seq Sequencer) Option {
	return func(s *Searcher) { s.seq = seq }
}

// WithLogger sets the logger. Default: a logger that discards output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Searcher) { s.logger = l }
}

// WithMaxResults caps the number of ids a search may return.
// Zero means unlimited.
func WithMaxResults(n int) Option {
	return func(s *Searcher) { s.maxResults = n }
}

// Searcher compiles and evaluates queries.
//
// Thread Safety:
//
//	Searcher is safe for concurrent use when its Terminology is.
type Searcher struct {
	term       Terminology
	cache      *cache.Cache
	ids        RequestIDGenerator
	seq        Sequencer
	logger     *slog.Logger
	maxResults int
}

// New creates a Searcher over term. A nil cache gets a private cache with
// default options.
func New(term Terminology, c *cache.Cache, opts ...Option) *Searcher {
	if c == nil {
		c = cache.New()
	}
	s := &Searcher{
		term:   term,
		cache:  c,
		ids:    UUIDv7Generator{},
		seq:    &Sequence{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search compiles query and evaluates it. Matching ids are returned in
// ascending binary order; an empty query matches nothing.
func (s *Searcher) Search(ctx context.Context, query string) (*Result, error) {
	res := &Result{
		RequestID: s.ids.Generate(),
		Seq:       s.seq.Next(),
		Query:     query,
	}
	log := s.logger.With("request_id", res.RequestID, "seq", res.Seq)
	log.Debug("search started", "query", query)

	compiled, err := s.cache.Get(ctx, query)
	if err != nil {
		log.Info("query rejected", "error", err)
		return nil, &Error{Code: ErrCodeInvalidQuery, Message: "query does not compile", RequestID: res.RequestID, Err: err}
	}
	res.Fingerprint = compiled.Fingerprint
	res.Predicate = compiled.Predicate

	if err := ctx.Err(); err != nil {
		log.Info("search cancelled before evaluation", "error", err)
		return nil, err
	}

	ids, err := s.term.Evaluate(ctx, compiled.Predicate)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Error("evaluation failed", "fingerprint", res.Fingerprint, "error", err)
		return nil, &Error{Code: ErrCodeEvaluation, Message: "terminology evaluation failed", RequestID: res.RequestID, Err: err}
	}
	if s.maxResults > 0 && len(ids) > s.maxResults {
		log.Warn("result limit exceeded", "matched", len(ids), "limit", s.maxResults)
		return nil, &Error{
			Code:      ErrCodeResultLimit,
			Message:   "query matched too many concepts",
			RequestID: res.RequestID,
			Err:       &LimitError{Matched: len(ids), Limit: s.maxResults},
		}
	}
	res.IDs = ids

	log.Info("search completed", "fingerprint", res.Fingerprint, "matched", len(ids))
	return res, nil
}

// Cache returns the compiled query cache.
func (s *Searcher) Cache() *cache.Cache {
	return s.cache
}
