package cli

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/drcsql/drcsql/internal/compiler"
	"github.com/drcsql/drcsql/internal/dbload"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Fixture string
	Bind    []string
	Wants   string
}

// NewRunCommand creates the run command: compile a query against the
// schema inferred from a fixture file, then execute it and print rows.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <query>",
		Short: "Compile and execute a DRC query against fixture data",
		Long: `Load whitespace-delimited fixture rows, derive a Schema from them,
compile the query, execute the resulting SQL against an in-memory
SQLite database, and print one tab-separated result row per line.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fixture, "fixture", "", "path to fixture data file (required)")
	cmd.Flags().StringArrayVar(&opts.Bind, "bind", nil, "external variable binding NAME=VALUE, repeatable")
	cmd.Flags().StringVar(&opts.Wants, "wants", "", "comma-separated projected variables (required)")
	_ = cmd.MarkFlagRequired("fixture")
	_ = cmd.MarkFlagRequired("wants")

	return cmd
}

func runRun(opts *RunOptions, queryText string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	traceID := uuid.Must(uuid.NewV7()).String()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	f, err := os.Open(opts.Fixture)
	if err != nil {
		return reportCompileFailure(formatter, traceID, NewExitError(ExitCommandError, fmt.Sprintf("fixture file not found: %s", opts.Fixture)))
	}
	defer f.Close()

	db, err := dbload.Load(ctx, f)
	if err != nil {
		return reportCompileFailure(formatter, traceID, WrapExitError(ExitCommandError, "loading fixture data", err))
	}
	defer db.Close()
	formatter.VerboseLog("[%s] loaded %d relation(s)", traceID, len(db.Schema))

	wants := splitWants(opts.Wants)
	bound, err := parseBindings(opts.Bind)
	if err != nil {
		return reportCompileFailure(formatter, traceID, err)
	}

	q, err := parseQuery(queryText)
	if err != nil {
		return reportCompileFailure(formatter, traceID, err)
	}

	sqlText, err := compiler.Compile(q, db.Schema, bound, wants)
	if err != nil {
		return reportCompileFailure(formatter, traceID, err)
	}
	formatter.VerboseLog("[%s] compiled SQL:\n%s", traceID, sqlText)

	rows, err := db.Query(ctx, sqlText)
	if err != nil {
		return reportCompileFailure(formatter, traceID, WrapExitError(ExitCommandError, "executing compiled SQL", err))
	}
	defer rows.Close()

	results, err := collectRows(rows, len(wants))
	if err != nil {
		return reportCompileFailure(formatter, traceID, WrapExitError(ExitCommandError, "reading result rows", err))
	}

	if opts.Format == "json" {
		if err := formatter.Success(results, traceID); err != nil {
			return err
		}
	} else {
		for _, row := range results {
			fmt.Fprintln(formatter.Writer, dbload.FormatRow(row))
		}
	}
	if len(results) == 0 {
		return NewExitError(ExitFailure, "query produced no rows")
	}
	return nil
}

// collectRows scans every row into a []string of exactly width columns.
func collectRows(rows *sql.Rows, width int) ([][]string, error) {
	var out [][]string
	for rows.Next() {
		values := make([]string, width)
		dest := make([]any, width)
		for i := range dest {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, values)
	}
	return out, rows.Err()
}
