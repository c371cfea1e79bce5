package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one batch test case: a query compiled and executed
// against a schema and fixture file, with the expected result rows.
type Scenario struct {
	// Name identifies the scenario in test output.
	Name string `yaml:"name"`

	// Schema is the path to a CUE schema file, relative to the
	// scenario file's own directory.
	Schema string `yaml:"schema"`

	// Fixture is the path to a fixture data file, relative to the
	// scenario file's own directory. If empty, the query is only
	// compiled against Schema and the scenario is reported as failed,
	// since there is nothing to execute it against.
	Fixture string `yaml:"fixture,omitempty"`

	// Query is the DRC query text to compile.
	Query string `yaml:"query"`

	// Bound supplies external variable bindings.
	Bound map[string]string `yaml:"bound,omitempty"`

	// Wants lists the projected variables, in order.
	Wants []string `yaml:"wants"`

	// Expect lists the expected result rows, each already formatted
	// the way dbload.FormatRow renders one row.
	Expect []string `yaml:"expect"`
}

// loadScenario reads and resolves one scenario file. Schema and
// Fixture paths are rewritten relative to the scenario file's
// directory so scenario files can be collected anywhere.
func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if s.Name == "" {
		s.Name = filepath.Base(path)
	}

	dir := filepath.Dir(path)
	if s.Schema != "" && !filepath.IsAbs(s.Schema) {
		s.Schema = filepath.Join(dir, s.Schema)
	}
	if s.Fixture != "" && !filepath.IsAbs(s.Fixture) {
		s.Fixture = filepath.Join(dir, s.Fixture)
	}
	return &s, nil
}

// findScenarioFiles walks dir for .yaml/.yml scenario files.
func findScenarioFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
