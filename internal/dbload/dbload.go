// Package dbload loads whitespace-delimited fixture data into an
// in-memory SQLite database and derives the relation Schema from the
// rows themselves. One line is one row: the first word is the table
// name, the rest are column values, and a table's arity is fixed by
// its first occurrence (ported from original_source/relc.py's
// splitline/build_db).
package dbload

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/drcsql/drcsql/internal/schema"
)

// DB is an in-memory SQLite database built from fixture data, paired
// with the Schema that was derived while loading it.
type DB struct {
	conn   *sql.DB
	Schema schema.Schema
}

// Load reads newline-delimited fixture rows from r, creates one SQLite
// table per distinct relation name encountered, and inserts every row.
// Blank lines and lines beginning with "#" or "!" are ignored.
func Load(ctx context.Context, r io.Reader) (*DB, error) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}

	db := &DB{conn: conn, Schema: schema.Schema{}}

	created := map[string]bool{}
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		words, err := splitLine(line)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
		if len(words) == 0 || strings.HasPrefix(words[0], "#") || strings.HasPrefix(words[0], "!") {
			continue
		}

		relation := words[0]
		values := words[1:]
		if len(values) == 0 {
			conn.Close()
			return nil, fmt.Errorf("line %d: %s: value(s) missing", lineno, relation)
		}
		if len(values) > 26 {
			conn.Close()
			return nil, fmt.Errorf("line %d: %s: too many columns", lineno, relation)
		}

		if !created[relation] {
			cols, ok := columnNames(len(values))
			if !ok {
				conn.Close()
				return nil, fmt.Errorf("line %d: %s: too many columns", lineno, relation)
			}
			db.Schema[relation] = cols
			if err := createTable(conn, relation, cols); err != nil {
				conn.Close()
				return nil, err
			}
			created[relation] = true
		}

		cols := db.Schema[relation]
		if len(values) != len(cols) {
			conn.Close()
			return nil, fmt.Errorf("line %d: %s: expected %d values, got %d", lineno, relation, len(cols), len(values))
		}
		if err := insertRow(ctx, conn, relation, values); err != nil {
			conn.Close()
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	if err := scanner.Err(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read fixture data: %w", err)
	}

	return db, nil
}

// Close releases the underlying database connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Query runs a compiled SELECT and returns the resulting rows. Callers
// must close the returned *sql.Rows.
func (d *DB) Query(ctx context.Context, query string) (*sql.Rows, error) {
	return d.conn.QueryContext(ctx, query)
}

func columnNames(n int) ([]string, bool) {
	out := make([]string, n)
	for i := range out {
		name, ok := schema.DefaultColumnName(i)
		if !ok {
			return nil, false
		}
		out[i] = name
	}
	return out, true
}

func createTable(conn *sql.DB, relation string, cols []string) error {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = c + " VARCHAR NOT NULL"
	}
	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", relation, strings.Join(defs, ", "))
	_, err := conn.Exec(stmt)
	if err != nil {
		return fmt.Errorf("create table %s: %w", relation, err)
	}
	return nil
}

func insertRow(ctx context.Context, conn *sql.DB, relation string, values []string) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")
	stmt := fmt.Sprintf("INSERT INTO %s VALUES (%s)", relation, placeholders)
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	if _, err := conn.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", relation, err)
	}
	return nil
}

// splitLine tokenizes one fixture line into whitespace-delimited words,
// honoring backslash-escapes and double-quoted runs that may themselves
// contain whitespace. A line with an unterminated quote or a trailing
// escape is an error.
func splitLine(line string) ([]string, error) {
	var out []string
	var word strings.Builder
	escaped := false
	quoted := false

	flush := func() {
		if word.Len() > 0 {
			out = append(out, word.String())
			word.Reset()
		}
	}

	for _, c := range line {
		switch {
		case escaped:
			word.WriteRune(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case quoted || !isSpace(c):
			word.WriteRune(c)
		default:
			flush()
		}
	}
	flush()

	if quoted || escaped {
		return nil, fmt.Errorf("unterminated quote or escape: %s", line)
	}
	return out, nil
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	default:
		return false
	}
}

// FormatRow renders one result row the way the fixture format itself is
// read: values are tab-separated, with backslashes and quotes escaped
// and any value containing whitespace wrapped in quotes (ported from
// original_source/relc.py's joinline).
func FormatRow(values []string) string {
	out := make([]string, len(values))
	for i, v := range values {
		v = strings.ReplaceAll(v, `\`, `\\`)
		v = strings.ReplaceAll(v, `"`, `\"`)
		if strings.ContainsFunc(v, isSpace) {
			v = `"` + v + `"`
		}
		out[i] = v
	}
	return strings.Join(out, "\t")
}
