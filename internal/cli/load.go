package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/termql/internal/store"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Database string
}

// LoadResult is the JSON payload of the load command.
type LoadResult struct {
	Database string `json:"database"`
	Fixture  string `json:"fixture"`
	Concepts int    `json:"concepts"`
	RefSets  int    `json:"refsets"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <fixture.yaml>",
		Short: "Load a YAML terminology fixture into a database",
		Long: `Load a YAML terminology fixture into a SQLite database, creating the
database if it does not exist. The fixture is written in one transaction and
loading the same fixture twice is a no-op.

The database defaults to the "database" field of --config.

Example:
  termql load --db ./termql.db ./terminology.yaml`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")

	return cmd
}

func runLoad(opts *LoadOptions, fixturePath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = opts.settings().Database
	}

	f, err := os.Open(fixturePath)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open fixture", err)
	}
	defer f.Close()

	fixture, err := store.ParseFixture(f)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to parse fixture", err)
	}

	logger.Info("opening database", "path", dbPath)
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

	if err := st.WriteFixture(cmd.Context(), fixture); err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load fixture", err)
	}
	logger.Info("fixture loaded", "fixture", fixturePath, "concepts", len(fixture.Concepts))

	result := LoadResult{
		Database: dbPath,
		Fixture:  fixturePath,
		Concepts: len(fixture.Concepts),
		RefSets:  len(fixture.RefSets),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "\u2713 Loaded %d concept(s), %d reference set(s) into %s\n",
		result.Concepts, result.RefSets, result.Database)
	return nil
}
