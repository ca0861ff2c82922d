package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/termql/internal/cache"
	"github.com/roach88/termql/internal/search"
	"github.com/roach88/termql/internal/store"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Database string

	// RequestIDs allows overriding the request ID generator (for testing).
	// If nil, defaults to search.UUIDv7Generator.
	RequestIDs search.RequestIDGenerator
}

// EvalResult is the JSON payload of the eval command.
type EvalResult struct {
	RequestID   string        `json:"request_id"`
	Query       string        `json:"query"`
	Fingerprint string        `json:"fingerprint"`
	Count       int           `json:"count"`
	Concepts    []ConceptItem `json:"concepts"`
}

// ConceptItem is a matching concept with its display label.
type ConceptItem struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <query>",
		Short: "Evaluate a query against a terminology database",
		Long: `Compile a query and evaluate it against a SQLite terminology database.
Matching concept ids are printed in ascending order with their labels.

The database must exist; create it with load. It defaults to the "database"
field of --config, which also sets the result limit.

Example:
  termql eval --db ./termql.db '<< 404684003 {{ term match "heart" }}'`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")

	return cmd
}

func runEval(opts *EvalOptions, query string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())
	cfg := opts.settings()

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Database
	}
	if _, err := os.Stat(dbPath); err != nil {
		_ = formatter.Error(ErrCodeStore, fmt.Sprintf("database not found: %s", dbPath), nil)
		return WrapExitError(ExitCommandError, "database not found", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	ids := opts.RequestIDs
	if ids == nil {
		ids = search.UUIDv7Generator{}
	}
	searcher := search.New(st,
		cache.New(
			cache.WithMaxEntries(cfg.Cache.Size),
			cache.WithValidation(cfg.ValidationOptions()),
		),
		search.WithRequestIDs(ids),
		search.WithLogger(logger),
		search.WithMaxResults(cfg.Search.MaxResults),
	)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := searcher.Search(ctx, query)
	if err != nil {
		return outputEvalError(formatter, query, err)
	}

	result := EvalResult{
		RequestID:   res.RequestID,
		Query:       query,
		Fingerprint: res.Fingerprint,
		Count:       len(res.IDs),
		Concepts:    make([]ConceptItem, 0, len(res.IDs)),
	}
	for _, id := range res.IDs {
		label, err := st.Label(ctx, id)
		if err != nil {
			return outputEvalError(formatter, query, err)
		}
		result.Concepts = append(result.Concepts, ConceptItem{ID: id, Label: label})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	for _, c := range result.Concepts {
		if c.Label != "" {
			fmt.Fprintf(formatter.Writer, "%s |%s|\n", c.ID, c.Label)
		} else {
			fmt.Fprintln(formatter.Writer, c.ID)
		}
	}
	formatter.VerboseLog("%d concept(s), request %s", result.Count, result.RequestID)
	return nil
}

// outputEvalError maps search failures to exit codes: rejected queries and
// result limits are query failures, everything else is a command error.
func outputEvalError(formatter *OutputFormatter, query string, err error) error {
	switch {
	case search.IsInvalidQuery(err):
		return rejectQuery(formatter, query, err)
	case search.IsResultLimit(err):
		var limitErr *search.LimitError
		var details any
		if errors.As(err, &limitErr) {
			details = limitErr
		}
		_ = formatter.Error(ErrCodeLimit, err.Error(), details)
		return WrapExitError(ExitFailure, "result limit exceeded", err)
	case errors.Is(err, context.Canceled):
		_ = formatter.Error(ErrCodeEval, "interrupted", nil)
		return WrapExitError(ExitCommandError, "evaluation interrupted", err)
	default:
		_ = formatter.Error(ErrCodeEval, err.Error(), nil)
		return WrapExitError(ExitCommandError, "evaluation failed", err)
	}
}
