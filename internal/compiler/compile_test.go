package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drcsql/drcsql/internal/ast"
	"github.com/drcsql/drcsql/internal/lexer"
	"github.com/drcsql/drcsql/internal/parser"
	"github.com/drcsql/drcsql/internal/schema"
)

// exampleSchema mirrors spec.md §8's documented example schema: student
// and registered/immatriculated/lecture all have 2 columns.
var exampleSchema = schema.Schema{
	"student":        {"s1", "s2"},
	"immatriculated": {"im1", "im2"},
	"lecture":        {"l1", "l2"},
	"registered":     {"r1", "r2"},
	"teacher":        {"t1", "t2"},
	"other":          {"o1", "o2"},
}

func mustCompile(t *testing.T, src string, bound map[string]string, wants []string) (string, error) {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	q, err := parser.Parse(toks)
	require.NoError(t, err)
	return Compile(q, exampleSchema, bound, wants)
}

// Scenario 1 of spec.md §8.
func TestCompile_Scenario1_FourWayJoin(t *testing.T) {
	sql, err := mustCompile(t,
		`student(S,SD) && immatriculated(S,"2016") && lecture(L,LD) && registered(S,L)`,
		nil, []string{"S", "SD", "L", "LD"})
	require.NoError(t, err)

	assert.Contains(t, sql, "student student_0")
	assert.Contains(t, sql, "immatriculated immatriculated_1")
	assert.Contains(t, sql, "lecture lecture_2")
	assert.Contains(t, sql, "registered registered_3")

	assert.Contains(t, sql, `immatriculated_1.im2 = "2016"`)
	assert.Contains(t, sql, "student_0.s1 = immatriculated_1.im1")
	assert.Contains(t, sql, "student_0.s1 = registered_3.r1")
	assert.Contains(t, sql, "lecture_2.l1 = registered_3.r2")

	assert.Contains(t, sql, "student_0.s1 AS S")
	assert.Contains(t, sql, "student_0.s2 AS SD")
	assert.Contains(t, sql, "lecture_2.l1 AS L")
	assert.Contains(t, sql, "lecture_2.l2 AS LD")

	assert.True(t, strings.HasSuffix(sql, "ORDER BY S, SD, L, LD ASC"))
}

// Scenario 2.
func TestCompile_Scenario2_WildcardNoConstraint(t *testing.T) {
	sql, err := mustCompile(t, `student(S,SD) && registered(S,*)`, nil, []string{"S", "SD"})
	require.NoError(t, err)

	assert.Contains(t, sql, "student student_0")
	assert.Contains(t, sql, "registered registered_1")
	assert.Contains(t, sql, "student_0.s1 = registered_1.r1")
	assert.NotContains(t, sql, "r2")
	assert.NotContains(t, sql, `= "`) // no value-bind at all
}

// Scenario 3.
func TestCompile_Scenario3_NegationWithLiteral(t *testing.T) {
	sql, err := mustCompile(t, `student(S,*) && !registered(S,"proglang1")`, nil, []string{"S"})
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM\n\tstudent student_0")
	assert.NotContains(t, sql, "FROM\n\tstudent student_0,\n\tregistered")
	assert.Contains(t, sql, "NOT EXISTS")
	assert.Contains(t, sql, "SELECT 1 FROM registered registered_1")
	assert.Contains(t, sql, "registered_1.r1 = student_0.s1")
	assert.Contains(t, sql, `registered_1.r2 = "proglang1"`)
}

// Scenario 4: bound variable inside a negated atom behaves like scenario 3.
func TestCompile_Scenario4_NegationWithBoundVariable(t *testing.T) {
	sql, err := mustCompile(t, `student(S,*) && !registered(S,L)`,
		map[string]string{"L": "proglang1"}, []string{"S"})
	require.NoError(t, err)

	assert.Contains(t, sql, "NOT EXISTS")
	assert.Contains(t, sql, "registered_1.r1 = student_0.s1")
	assert.Contains(t, sql, `registered_1.r2 = "proglang1"`)
	assert.NotContains(t, sql, "r2 = L")
}

// Scenario 5: disjunction compiles to two SELECT blocks joined by UNION.
func TestCompile_Scenario5_Disjunction(t *testing.T) {
	sql, err := mustCompile(t, `student(S,*) || teacher(S,*)`, nil, []string{"S"})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(sql, "UNION"))
	assert.Equal(t, 2, strings.Count(sql, "SELECT DISTINCT"))
	assert.Contains(t, sql, "student_0.s1 AS S")
	assert.Contains(t, sql, "teacher_0.t1 AS S")
	assert.Equal(t, 1, strings.Count(sql, "ORDER BY"))
}

// Scenario 6: a projected variable absent from the conjunction is an error.
func TestCompile_Scenario6_UnboundProjected(t *testing.T) {
	_, err := mustCompile(t, `student(S,SD)`, nil, []string{"X"})
	require.Error(t, err)
	assert.True(t, IsUnboundProjectedError(err))
}

// Scenario 7: wrong argument count is an arity error.
func TestCompile_Scenario7_ArityError(t *testing.T) {
	_, err := mustCompile(t, `student(S)`, nil, []string{"S"})
	require.Error(t, err)
	assert.True(t, IsArityError(err))
}

// Scenario 8: a variable only occurring in a negated atom, unbound, is an
// error — not a nil-dereference.
func TestCompile_Scenario8_UnboundInNegatedAtom(t *testing.T) {
	_, err := mustCompile(t, `student(S,SD) && !other(X,Y)`, nil, []string{"S"})
	require.Error(t, err)
	assert.True(t, IsUnboundVariableError(err))
}

func TestCompile_UnknownRelationIsSchemaError(t *testing.T) {
	_, err := mustCompile(t, `nosuchtable(S,SD)`, nil, []string{"S"})
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
}

func TestCompile_Determinism(t *testing.T) {
	src := `student(S,SD) && immatriculated(S,"2016") && lecture(L,LD) && registered(S,L)`
	first, err := mustCompile(t, src, nil, []string{"S", "SD", "L", "LD"})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := mustCompile(t, src, nil, []string{"S", "SD", "L", "LD"})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompile_ProjectionLawMatchesWantsLengthAndOrder(t *testing.T) {
	wants := []string{"SD", "S"}
	sql, err := mustCompile(t, `student(S,SD)`, nil, wants)
	require.NoError(t, err)

	idxSD := strings.Index(sql, "AS SD")
	idxS := strings.Index(sql, "AS S\n")
	require.NotEqual(t, -1, idxSD)
	require.NotEqual(t, -1, idxS)
	assert.Less(t, idxSD, idxS)
	assert.True(t, strings.HasSuffix(sql, "ORDER BY SD, S ASC"))
}

func TestCompile_NegationLawCountsNotExistsPerNegatedAtom(t *testing.T) {
	sql, err := mustCompile(t, `student(S,*) && !registered(S,"x") && !teacher(S,"y")`, nil, []string{"S"})
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(sql, "NOT EXISTS"))
}

func TestCompile_DisjunctionLawCountsSelectsPerConjunction(t *testing.T) {
	sql, err := mustCompile(t, `student(S,*) || teacher(S,*) || student(S,"lit")`, nil, []string{"S"})
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(sql, "SELECT DISTINCT"))
	assert.Equal(t, 2, strings.Count(sql, "\nUNION\n"))
}

func TestCompile_IdempotentEscaping(t *testing.T) {
	for _, v := range []string{`simple`, `has "quotes"`, `has\backslash`, `both\and"quote`} {
		esc := escapeLiteral(v)
		// unescape the emitted form and confirm we recover v.
		inner := esc[1 : len(esc)-1]
		var out strings.Builder
		for i := 0; i < len(inner); i++ {
			if inner[i] == '\\' && i+1 < len(inner) {
				out.WriteByte(inner[i+1])
				i++
				continue
			}
			out.WriteByte(inner[i])
		}
		assert.Equal(t, v, out.String())
	}
}

func TestCompile_DigitVariableIsInertLikeWildcard(t *testing.T) {
	sql, err := mustCompile(t, `student(X1,SD)`, nil, []string{"SD"})
	require.NoError(t, err)
	assert.NotContains(t, sql, "X1")
}

func TestCompile_EmptyQueryEmitsOnlyOrderByClause(t *testing.T) {
	var empty ast.Query
	sql, err := Compile(empty, exampleSchema, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "\nORDER BY  ASC", sql)
}

func TestCompile_MalformedBoundVariableNameIsBindingSyntaxError(t *testing.T) {
	_, err := mustCompile(t, `student(S,SD)`, map[string]string{"1bad": "x"}, []string{"S", "SD"})
	require.Error(t, err)
	assert.True(t, IsBindingSyntaxError(err))
}
