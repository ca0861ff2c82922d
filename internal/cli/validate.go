package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/termql/internal/parser"
	"github.com/roach88/termql/internal/validate"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Query string `json:"query"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <query>",
		Short: "Check a query without evaluating it",
		Long: `Parse a query and run the static checks: cardinality bounds, filter
domains, attribute placement and literal syntax. Every problem is reported,
not just the first.

Validation options (term and id lengths, check digits) come from --config.

Exit codes:
  0 - Query is valid
  1 - Query has lexical, syntax or validation errors
  2 - Command error`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, query string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	q, err := parser.ParseString(query)
	if err != nil {
		return rejectQuery(formatter, query, err)
	}

	validationOpts := opts.settings().ValidationOptions()
	formatter.VerboseLog("Validating with min term length %d, id length %d..%d, check digits %t",
		validationOpts.MinTermLength, validationOpts.MinIDLength, validationOpts.MaxIDLength, validationOpts.CheckDigits)

	if errs := validate.New(validationOpts).Validate(q); len(errs) > 0 {
		return rejectQuery(formatter, query, validate.Errors(errs))
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Query: query})
	}
	fmt.Fprintln(formatter.Writer, "\u2713 Query valid")
	return nil
}
