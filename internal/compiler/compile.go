// Package compiler implements spec.md §4.4: the analyzer and SQL
// compiler that turn one DRC Query, a Schema, and a set of externally
// BoundVars into a single SQL string, or a terminal Error.
package compiler

import (
	"regexp"

	"github.com/drcsql/drcsql/internal/ast"
	"github.com/drcsql/drcsql/internal/schema"
)

var identifierShape = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// Compile is a pure function from (query, Schema, BoundVars, Wants) to
// either a SQL string or an Error (spec.md §5). It holds no state across
// calls and mutates none of its inputs, so any number of queries may be
// compiled concurrently against independent Schema/BoundVars values.
func Compile(query ast.Query, sch schema.Schema, bound map[string]string, wants []string) (string, error) {
	if err := validateIdentifiers(bound, wants); err != nil {
		return "", err
	}

	conjSQL := make([]string, len(query))
	for i, conj := range query {
		a, err := analyzeConjunction(i, conj, sch, bound, wants)
		if err != nil {
			return "", err
		}
		conjSQL[i] = emitConjunction(a, wants)
	}

	return emitQuery(conjSQL, wants), nil
}

// validateIdentifiers checks the shape spec.md §6 requires of every
// BoundVars key and Wants entry: alpha-first, alphanumeric thereafter. A
// violation here is a query-definition error, not a parse error — the
// query string itself may never mention the offending name.
func validateIdentifiers(bound map[string]string, wants []string) error {
	for v := range bound {
		if !identifierShape.MatchString(v) {
			return NewBindingSyntaxError(v, "bound variable name is not alpha-first alphanumeric")
		}
	}
	for _, w := range wants {
		if !identifierShape.MatchString(w) {
			return NewBindingSyntaxError(w, "projected variable name is not alpha-first alphanumeric")
		}
	}
	return nil
}
