// Package schema defines the Schema external collaborator consumed by
// internal/compiler: a mapping from relation name to its ordered column
// names, plus a loader that builds one from a CUE definition and the
// default column names internal/dbload uses when it infers one from
// fixture data.
package schema

// Schema maps a relation name to its ordered column names. It is supplied
// once per query and read-only from the core's point of view.
type Schema map[string][]string

// Arity returns the number of columns of relation, and whether relation
// exists in the schema.
func (s Schema) Arity(relation string) (int, bool) {
	cols, ok := s[relation]
	if !ok {
		return 0, false
	}
	return len(cols), true
}

// Column returns the column name at the given zero-based argument index
// of relation, and whether that index is in range.
func (s Schema) Column(relation string, index int) (string, bool) {
	cols, ok := s[relation]
	if !ok || index < 0 || index >= len(cols) {
		return "", false
	}
	return cols[index], true
}

// defaultColumnNames mirrors original_source/relc.py's build_db: when a
// relation's columns are not named explicitly, they are called a, b, c, …
var defaultColumnNames = []string{
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
}

// DefaultColumnName returns the auto-derived name for column index i
// (0-based), or false if i is out of the 26-column range the original
// tool supported.
func DefaultColumnName(i int) (string, bool) {
	if i < 0 || i >= len(defaultColumnNames) {
		return "", false
	}
	return defaultColumnNames[i], true
}
