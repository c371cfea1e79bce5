package parser

import "github.com/drcsql/drcsql/internal/token"

// stream is a one-token lookahead buffer over a token slice. It also
// offers mark/restore, where restore rewinds to any recorded position.
//
// The grammar is LL(1) at every decision point (spec.md §4.2), so the
// parser decides each production from a single peek and never calls
// mark/restore: there is no backtracking in the parser.
type stream struct {
	toks []token.Token
	pos  int
}

func newStream(toks []token.Token) *stream {
	return &stream{toks: toks}
}

// hasnext reports whether another token remains.
func (s *stream) hasnext() bool {
	return s.pos < len(s.toks)
}

// peek returns the next token without consuming it. Callers must check
// hasnext first.
func (s *stream) peek() token.Token {
	return s.toks[s.pos]
}

// pop consumes and returns the next token. Callers must check hasnext first.
func (s *stream) pop() token.Token {
	t := s.toks[s.pos]
	s.pos++
	return t
}

// mark records the current position for a later restore.
func (s *stream) mark() int {
	return s.pos
}

// restore rewinds the stream to a previously recorded mark.
func (s *stream) restore(m int) {
	s.pos = m
}

// eof reports whether the stream is exhausted.
func (s *stream) eof() bool {
	return !s.hasnext()
}
