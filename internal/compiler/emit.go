package compiler

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// escapeLiteral implements spec.md §4.4 step 8 / §9's escaping policy:
// duplicate every backslash, then escape every double quote, then wrap in
// double quotes. The value is first normalized to NFC so that two
// Unicode-equivalent but byte-distinct inputs compile to byte-identical
// SQL (grounded in the same golang.org/x/text/unicode/norm use the
// teacher's canonical-JSON hashing relies on).
func escapeLiteral(v string) string {
	v = norm.NFC.String(v)
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

// emitConjunction assembles one conjunction's analysis into a single
// SELECT DISTINCT statement (spec.md §4.4 step 8).
func emitConjunction(a *analysis, wants []string) string {
	var b strings.Builder

	b.WriteString("SELECT DISTINCT\n")
	for i, w := range wants {
		s := a.Projection[i]
		b.WriteString("\t" + s.Alias + "." + s.Column + " AS " + w)
		if i != len(wants)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}

	b.WriteString("FROM\n")
	for i, f := range a.Froms {
		b.WriteString("\t" + f.Relation + " " + f.Alias)
		if i != len(a.Froms)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}

	b.WriteString("WHERE 1\n")
	for _, eq := range a.ValueEqs {
		b.WriteString("\tAND " + eq.Alias + "." + eq.Column + " = " + escapeLiteral(eq.Value) + "\n")
	}
	for _, j := range a.EquiJoins {
		b.WriteString("\tAND " + j[0].Alias + "." + j[0].Column + " = " + j[1].Alias + "." + j[1].Column + "\n")
	}
	for _, na := range a.NegatedAtoms {
		b.WriteString("\tAND NOT EXISTS (\n")
		b.WriteString("\t\tSELECT 1 FROM " + na.Relation + " " + na.Alias + " WHERE 1\n")
		for _, j := range na.EquiJoins {
			b.WriteString("\t\t\tAND " + j[0].Alias + "." + j[0].Column + " = " + j[1].Alias + "." + j[1].Column + "\n")
		}
		for _, eq := range na.ValueEqs {
			b.WriteString("\t\t\tAND " + eq.Alias + "." + eq.Column + " = " + escapeLiteral(eq.Value) + "\n")
		}
		b.WriteString("\t)\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// emitQuery implements step 9: UNION-join every conjunction's SELECT and
// append a single deterministic ORDER BY over the projection variables.
func emitQuery(conjSQL []string, wants []string) string {
	var b strings.Builder
	b.WriteString(strings.Join(conjSQL, "\nUNION\n"))
	b.WriteString("\nORDER BY " + strings.Join(wants, ", ") + " ASC")
	return b.String()
}
