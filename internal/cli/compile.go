package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/drcsql/drcsql/internal/compiler"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Schema string
	Bind   []string
	Wants  string
}

// NewCompileCommand creates the compile command: query text in,
// compiled SQL text out, no database involved.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query>",
		Short: "Compile a DRC query to SQL",
		Long: `Compile a domain relational calculus query against a CUE schema and
print the resulting SQL SELECT statement. No database is consulted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "path to a CUE schema file (required)")
	cmd.Flags().StringArrayVar(&opts.Bind, "bind", nil, "external variable binding NAME=VALUE, repeatable")
	cmd.Flags().StringVar(&opts.Wants, "wants", "", "comma-separated projected variables (required)")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("wants")

	return cmd
}

func runCompile(opts *CompileOptions, queryText string, cmd *cobra.Command) error {
	traceID := uuid.Must(uuid.NewV7()).String()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	formatter.VerboseLog("[%s] compiling query", traceID)

	sch, err := loadSchemaFile(opts.Schema)
	if err != nil {
		return reportCompileFailure(formatter, traceID, err)
	}
	wants := splitWants(opts.Wants)
	bound, err := parseBindings(opts.Bind)
	if err != nil {
		return reportCompileFailure(formatter, traceID, err)
	}

	q, err := parseQuery(queryText)
	if err != nil {
		return reportCompileFailure(formatter, traceID, err)
	}
	formatter.VerboseLog("[%s] parsed %d conjunct(s)", traceID, len(q))

	sql, err := compiler.Compile(q, sch, bound, wants)
	if err != nil {
		return reportCompileFailure(formatter, traceID, err)
	}

	return formatter.Success(sql, traceID)
}

// reportCompileFailure renders err through the formatter and returns
// the ExitError the process should terminate with.
func reportCompileFailure(formatter *OutputFormatter, traceID string, err error) error {
	code, message := classifyError(err)
	_ = formatter.Error(code, message, traceID)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), err)
}
