package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/termql/internal/ast"
	"github.com/roach88/termql/internal/parser"
)

// ParseResult is the JSON payload of the parse command.
type ParseResult struct {
	Query string `json:"query"`
	AST   string `json:"ast"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <query>",
		Short: "Parse a query and print its syntax tree",
		Long: `Parse a query and print its syntax tree as an S-expression.

Only syntax is checked; use validate for the static checks.

Examples:
  termql parse '<< 404684003 |Clinical finding|'
  termql parse --format json '* {{ term match "heart" }}'`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args[0], cmd)
		},
	}
}

func runParse(opts *RootOptions, query string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	q, err := parser.ParseString(query)
	if err != nil {
		return rejectQuery(formatter, query, err)
	}

	result := ParseResult{Query: query, AST: ast.Dump(q)}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, result.AST)
	return nil
}
