package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/drcsql/drcsql/internal/ast"
	"github.com/drcsql/drcsql/internal/lexer"
	"github.com/drcsql/drcsql/internal/parser"
	"github.com/drcsql/drcsql/internal/schema"
)

// parseQuery lexes and parses one DRC query string.
func parseQuery(src string) (ast.Query, error) {
	toks, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}
	return parser.Parse(toks)
}

// loadSchemaFile reads a CUE schema definition from path.
func loadSchemaFile(path string) (schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("schema file not found: %s", path))
	}
	sch, err := schema.LoadCUE(string(data))
	if err != nil {
		return nil, err
	}
	return sch, nil
}

// parseBindings turns repeated --bind NAME=VALUE flags into the map
// Compile expects for its externally BoundVars.
func parseBindings(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	bound := make(map[string]string, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("malformed --bind value %q: want NAME=VALUE", kv))
		}
		bound[name] = value
	}
	return bound, nil
}

// splitWants turns a comma-or-space separated --wants value into an
// ordered variable list.
func splitWants(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' '
	})
}
