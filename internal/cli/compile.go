package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/termql/internal/compiler"
	"github.com/roach88/termql/internal/ir"
	"github.com/roach88/termql/internal/queryir"
	"github.com/roach88/termql/internal/querysql"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	SQL bool // also lower the predicate to SQL
}

// CompilationResult is the JSON payload of the compile command.
type CompilationResult struct {
	Query       string          `json:"query"`
	IRVersion   string          `json:"ir_version"`
	Fingerprint string          `json:"fingerprint"`
	Predicate   json.RawMessage `json:"predicate"`
	SQL         string          `json:"sql,omitempty"`
	Params      []any           `json:"params,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query>",
		Short: "Compile a query to its predicate",
		Long: `Compile a query to the backend-neutral predicate tree and print it with
its fingerprint. Queries with the same fingerprint are structurally identical.

With --sql the predicate is also lowered to the SQLite query run by eval.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.SQL, "sql", false, "print the generated SQL and parameters")

	return cmd
}

func runCompile(opts *CompileOptions, query string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	built, err := compiler.Build(query, opts.settings().ValidationOptions())
	if err != nil {
		return rejectQuery(formatter, query, err)
	}
	formatter.VerboseLog("Compiled %q to %T", query, built.Predicate)

	encoded, err := queryir.Encode(built.Predicate)
	if err != nil {
		return outputCompileError(formatter, err)
	}
	predicate, err := json.Marshal(encoded)
	if err != nil {
		return outputCompileError(formatter, err)
	}

	result := &CompilationResult{
		Query:       query,
		IRVersion:   ir.IRVersion,
		Fingerprint: built.Fingerprint,
		Predicate:   predicate,
	}
	if opts.SQL {
		sql, params, err := querysql.NewSQLCompiler().Compile(built.Predicate)
		if err != nil {
			return outputCompileError(formatter, err)
		}
		result.SQL = sql
		result.Params = params
	}

	return outputCompileSuccess(formatter, result)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "\u2713 Compiled %s\n\n", result.Fingerprint)
	fmt.Fprintf(w, "Predicate:\n  %s\n", result.Predicate)
	if result.SQL != "" {
		fmt.Fprintf(w, "\nSQL:\n  %s\n", result.SQL)
		fmt.Fprintln(w, "\nParams:")
		for i, p := range result.Params {
			fmt.Fprintf(w, "  %d: %#v\n", i+1, p)
		}
	}
	return nil
}

// outputCompileError reports a failure after the query compiled, which
// is a defect rather than a bad query.
func outputCompileError(formatter *OutputFormatter, err error) error {
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "compilation failed", err)
}
