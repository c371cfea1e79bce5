// Package parser implements the DRC recursive-descent grammar of
// spec.md §4.3:
//
//	query       := conjunction ( '||' conjunction )*  EOF
//	conjunction := predicate  ( '&&' predicate )*
//	predicate   := [ '!' ] identifier '(' arglist ')'
//	arglist     := arg ( ',' arg )*
//	arg         := identifier | string-literal | '*'
//
// An unrecognized token at any point is a syntax Error. A successful parse
// consumes every token; trailing input, an empty query, an empty
// conjunction, and an empty arglist are all syntax errors, made explicit
// here rather than left to fall out incidentally (spec.md §9's open
// question).
package parser

import (
	"fmt"

	"github.com/drcsql/drcsql/internal/ast"
	"github.com/drcsql/drcsql/internal/token"
)

// Error is a syntax error: an unexpected token, or premature EOF when one
// of the grammar productions above required more input.
type Error struct {
	// Pos is the byte offset of the offending token, or -1 at EOF.
	Pos int
	// Msg describes what was expected.
	Msg string
}

func (e *Error) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("parse error: %s", e.Msg)
	}
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Msg)
}

// Parse consumes a token sequence into a DRC Query. It requires the full
// input be consumed; trailing tokens are a parse Error.
func Parse(toks []token.Token) (ast.Query, error) {
	s := newStream(toks)

	q, err := parseQuery(s)
	if err != nil {
		return nil, err
	}
	if s.hasnext() {
		t := s.peek()
		return nil, &Error{Pos: t.Pos, Msg: fmt.Sprintf("unexpected trailing token %q", t.Text)}
	}
	return q, nil
}

func parseQuery(s *stream) (ast.Query, error) {
	first, err := parseConjunction(s)
	if err != nil {
		return nil, err
	}
	q := ast.Query{first}

	for s.hasnext() && s.peek().Type == token.OR {
		s.pop()
		conj, err := parseConjunction(s)
		if err != nil {
			return nil, err
		}
		q = append(q, conj)
	}
	return q, nil
}

func parseConjunction(s *stream) (ast.Conjunction, error) {
	first, err := parsePredicate(s)
	if err != nil {
		return nil, err
	}
	conj := ast.Conjunction{first}

	for s.hasnext() && s.peek().Type == token.AND {
		s.pop()
		atom, err := parsePredicate(s)
		if err != nil {
			return nil, err
		}
		conj = append(conj, atom)
	}
	return conj, nil
}

func parsePredicate(s *stream) (ast.Atom, error) {
	var atom ast.Atom

	if s.hasnext() && s.peek().Type == token.BANG {
		s.pop()
		atom.Negated = true
	}

	name, err := expect(s, token.IDENT, "relation name")
	if err != nil {
		return ast.Atom{}, err
	}
	atom.Relation = name.Text

	if _, err := expect(s, token.LPAREN, "'('"); err != nil {
		return ast.Atom{}, err
	}

	args, err := parseArglist(s)
	if err != nil {
		return ast.Atom{}, err
	}
	atom.Args = args

	if _, err := expect(s, token.RPAREN, "')'"); err != nil {
		return ast.Atom{}, err
	}

	return atom, nil
}

func parseArglist(s *stream) ([]ast.Term, error) {
	first, err := parseArg(s)
	if err != nil {
		return nil, err
	}
	args := []ast.Term{first}

	for s.hasnext() && s.peek().Type == token.COMMA {
		s.pop()
		arg, err := parseArg(s)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

func parseArg(s *stream) (ast.Term, error) {
	if !s.hasnext() {
		return nil, &Error{Pos: -1, Msg: "unexpected end of input, expected an argument"}
	}
	t := s.peek()
	switch t.Type {
	case token.IDENT:
		s.pop()
		return ast.Variable{Name: t.Text}, nil
	case token.STRING:
		s.pop()
		return ast.Literal{Value: t.Text[1 : len(t.Text)-1]}, nil
	case token.STAR:
		s.pop()
		return ast.Wildcard{}, nil
	default:
		return nil, &Error{Pos: t.Pos, Msg: fmt.Sprintf("unexpected token %q, expected an argument", t.Text)}
	}
}

// expect consumes the next token if it has the given type, else returns a
// parse Error naming what was expected.
func expect(s *stream, typ token.Type, what string) (token.Token, error) {
	if !s.hasnext() {
		return token.Token{}, &Error{Pos: -1, Msg: fmt.Sprintf("unexpected end of input, expected %s", what)}
	}
	t := s.peek()
	if t.Type != typ {
		return token.Token{}, &Error{Pos: t.Pos, Msg: fmt.Sprintf("unexpected token %q, expected %s", t.Text, what)}
	}
	s.pop()
	return t, nil
}
