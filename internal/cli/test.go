package cli

import (
	"context"
	"fmt"
	"os"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/drcsql/drcsql/internal/compiler"
	"github.com/drcsql/drcsql/internal/dbload"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
}

// ScenarioResult holds the outcome of a single scenario.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestSummary holds the overall batch result.
type TestSummary struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command: run every scenario file in
// a directory and report pass/fail against each one's Expect rows.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run a batch of query scenarios",
		Long: `Run every YAML scenario file under a directory: compile and execute
each scenario's query and compare the resulting rows against its
Expect list.

Exit codes:
  0 - all scenarios passed
  1 - one or more scenarios failed (a scenario that cannot be loaded,
      compiled or executed counts as failed)
  2 - command error (directory not found or not readable)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	files, err := findScenarioFiles(scenariosDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "scanning scenarios directory", err)
	}

	summary := TestSummary{Total: len(files)}
	for _, file := range files {
		result := runScenarioFile(cmd.Context(), formatter, file)
		summary.Scenarios = append(summary.Scenarios, result)
		if result.Pass {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}

	if opts.Format == "json" {
		_ = formatter.Success(summary, "")
	} else {
		for _, r := range summary.Scenarios {
			if r.Pass {
				fmt.Fprintf(formatter.Writer, "ok   %s\n", r.Name)
				continue
			}
			fmt.Fprintf(formatter.Writer, "FAIL %s\n", r.Name)
			for _, e := range r.Errors {
				fmt.Fprintf(formatter.Writer, "     %s\n", e)
			}
		}
		fmt.Fprintf(formatter.Writer, "\n%d passed, %d failed, %d total\n", summary.Passed, summary.Failed, summary.Total)
	}

	if summary.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", summary.Failed))
	}
	return nil
}

func runScenarioFile(ctx context.Context, formatter *OutputFormatter, path string) ScenarioResult {
	s, err := loadScenario(path)
	if err != nil {
		return ScenarioResult{Name: path, Errors: []string{err.Error()}}
	}

	sch, err := loadSchemaFile(s.Schema)
	if err != nil {
		return ScenarioResult{Name: s.Name, Errors: []string{err.Error()}}
	}

	var fixtureDB *dbload.DB
	if s.Fixture != "" {
		f, err := os.Open(s.Fixture)
		if err != nil {
			return ScenarioResult{Name: s.Name, Errors: []string{fmt.Sprintf("fixture file not found: %s", s.Fixture)}}
		}
		defer f.Close()
		fixtureDB, err = dbload.Load(ctx, f)
		if err != nil {
			return ScenarioResult{Name: s.Name, Errors: []string{fmt.Sprintf("loading fixture: %v", err)}}
		}
		defer fixtureDB.Close()
	}

	q, err := parseQuery(s.Query)
	if err != nil {
		return ScenarioResult{Name: s.Name, Errors: []string{err.Error()}}
	}

	sqlText, err := compiler.Compile(q, sch, s.Bound, s.Wants)
	if err != nil {
		return ScenarioResult{Name: s.Name, Errors: []string{err.Error()}}
	}
	formatter.VerboseLog("%s:\n%s", s.Name, sqlText)

	if fixtureDB == nil {
		return ScenarioResult{Name: s.Name, Errors: []string{"scenario has no fixture to execute against"}}
	}

	// The fixture's tables carry the column names derived while loading
	// it (a, b, c, …), so the SQL that is executed is compiled against
	// that derived schema; the CUE schema above only checks the query.
	sqlText, err = compiler.Compile(q, fixtureDB.Schema, s.Bound, s.Wants)
	if err != nil {
		return ScenarioResult{Name: s.Name, Errors: []string{err.Error()}}
	}

	rows, err := fixtureDB.Query(ctx, sqlText)
	if err != nil {
		return ScenarioResult{Name: s.Name, Errors: []string{fmt.Sprintf("executing SQL: %v", err)}}
	}
	defer rows.Close()

	got, err := collectRows(rows, len(s.Wants))
	if err != nil {
		return ScenarioResult{Name: s.Name, Errors: []string{fmt.Sprintf("reading rows: %v", err)}}
	}

	var gotFormatted []string
	for _, row := range got {
		gotFormatted = append(gotFormatted, dbload.FormatRow(row))
	}

	if reflect.DeepEqual(gotFormatted, s.Expect) {
		return ScenarioResult{Name: s.Name, Pass: true}
	}
	return ScenarioResult{
		Name:   s.Name,
		Errors: []string{fmt.Sprintf("expected rows %v, got %v", s.Expect, gotFormatted)},
	}
}
