package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/drcsql/drcsql/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Schema string
	Bind   []string
	Wants  string
}

// NewValidateCommand creates the validate command: runs the full
// lex/parse/analyze pipeline and reports success or the first error,
// without printing the compiled SQL.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "validate <query>",
		Short:         "Validate a DRC query against a schema",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "path to a CUE schema file (required)")
	cmd.Flags().StringArrayVar(&opts.Bind, "bind", nil, "external variable binding NAME=VALUE, repeatable")
	cmd.Flags().StringVar(&opts.Wants, "wants", "", "comma-separated projected variables (required)")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("wants")

	return cmd
}

func runValidate(opts *ValidateOptions, queryText string, cmd *cobra.Command) error {
	traceID := uuid.Must(uuid.NewV7()).String()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

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

	if _, err := compiler.Compile(q, sch, bound, wants); err != nil {
		return reportCompileFailure(formatter, traceID, err)
	}

	return formatter.Success(fmt.Sprintf("query is valid (%d conjunct(s))", len(q)), traceID)
}
