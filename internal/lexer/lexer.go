// Package lexer tokenizes a DRC query string into an ordered token sequence.
//
// It scans by repeatedly stripping leading whitespace and then trying an
// ordered list of regular expressions against the remainder of the input,
// taking the first one that matches at position 0. The ordering matters:
// BANG precedes IDENT so "!" is never swallowed into a name, IDENT precedes
// STAR so "*" is always its own token, and STRING precedes the punctuation
// rules so a quoted literal is never split.
package lexer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/drcsql/drcsql/internal/token"
)

// rule pairs a compiled pattern with the token type it produces.
type rule struct {
	pattern *regexp.Regexp
	typ     token.Type
}

// rules is tried in order; the first match at position 0 wins. Order is
// part of the grammar, not an optimization: see the package doc comment.
var rules = []rule{
	{regexp.MustCompile(`^!`), token.BANG},
	{regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*`), token.IDENT},
	{regexp.MustCompile(`^\*`), token.STAR},
	{regexp.MustCompile(`^"[^"]*"`), token.STRING},
	{regexp.MustCompile(`^,`), token.COMMA},
	{regexp.MustCompile(`^&&`), token.AND},
	{regexp.MustCompile(`^\|\|`), token.OR},
	{regexp.MustCompile(`^\(`), token.LPAREN},
	{regexp.MustCompile(`^\)`), token.RPAREN},
}

// Error reports a position where no rule matched.
type Error struct {
	Pos     int
	Remaining string
}

func (e *Error) Error() string {
	snippet := e.Remaining
	const max = 20
	if len(snippet) > max {
		snippet = snippet[:max] + "…"
	}
	return fmt.Sprintf("lex error at position %d: no token matches %q", e.Pos, snippet)
}

// Lex scans src into a token sequence, or returns a lex Error. On error no
// partial token sequence is returned, matching spec.md §4.1: the lexer
// fails atomically.
func Lex(src string) ([]token.Token, error) {
	var out []token.Token
	pos := 0
	rest := src

	for {
		trimmed := strings.TrimLeft(rest, " \t\n\r")
		pos += len(rest) - len(trimmed)
		rest = trimmed
		if rest == "" {
			return out, nil
		}

		matched := false
		for _, r := range rules {
			loc := r.pattern.FindStringIndex(rest)
			if loc == nil || loc[0] != 0 {
				continue
			}
			lexeme := rest[:loc[1]]
			out = append(out, token.Token{Type: r.typ, Text: lexeme, Pos: pos})
			rest = rest[loc[1]:]
			pos += loc[1]
			matched = true
			break
		}
		if !matched {
			return nil, &Error{Pos: pos, Remaining: rest}
		}
	}
}
