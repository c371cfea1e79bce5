package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drcsql/drcsql/internal/token"
)

func TestLex_SimplePredicate(t *testing.T) {
	toks, err := Lex(`student(S,SD)`)
	require.NoError(t, err)

	want := []token.Type{
		token.IDENT, token.LPAREN, token.IDENT, token.COMMA, token.IDENT, token.RPAREN,
	}
	require.Len(t, toks, len(want))
	for i, typ := range want {
		assert.Equal(t, typ, toks[i].Type, "token %d", i)
	}
	assert.Equal(t, "student", toks[0].Text)
}

func TestLex_NegationAndWildcard(t *testing.T) {
	toks, err := Lex(`!registered(S,*)`)
	require.NoError(t, err)

	require.Len(t, toks, 7)
	assert.Equal(t, token.BANG, toks[0].Type)
	assert.Equal(t, token.STAR, toks[5].Type)
}

func TestLex_StringLiteralKeepsQuotes(t *testing.T) {
	toks, err := Lex(`immatriculated(S,"2016")`)
	require.NoError(t, err)

	var lit token.Token
	for _, tk := range toks {
		if tk.Type == token.STRING {
			lit = tk
		}
	}
	assert.Equal(t, `"2016"`, lit.Text)
}

func TestLex_ConjunctionAndDisjunction(t *testing.T) {
	toks, err := Lex(`a(X) && b(X) || c(X)`)
	require.NoError(t, err)

	var kinds []token.Type
	for _, tk := range toks {
		kinds = append(kinds, tk.Type)
	}
	assert.Contains(t, kinds, token.AND)
	assert.Contains(t, kinds, token.OR)
}

func TestLex_WhitespaceIsIgnoredBetweenTokens(t *testing.T) {
	a, err := Lex("a(X)&&b(Y)")
	require.NoError(t, err)
	b, err := Lex("  a(X)   &&  b(Y)  ")
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Text, b[i].Text)
	}
}

func TestLex_StarNeverSplitsOffAnIdentifier(t *testing.T) {
	toks, err := Lex(`f(*)`)
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, token.STAR, toks[2].Type)
	assert.Equal(t, "*", toks[2].Text)
}

func TestLex_UnrecognizedCharacterFails(t *testing.T) {
	_, err := Lex(`a(X) @ b(Y)`)
	require.Error(t, err)

	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, 5, lexErr.Pos)
}

func TestLex_UnterminatedStringLiteralFails(t *testing.T) {
	_, err := Lex(`a("unterminated)`)
	require.Error(t, err)
}

func TestLex_EmptyInputYieldsNoTokens(t *testing.T) {
	toks, err := Lex("   ")
	require.NoError(t, err)
	assert.Empty(t, toks)
}
