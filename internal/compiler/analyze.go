package compiler

import (
	"fmt"
	"unicode"

	"github.com/drcsql/drcsql/internal/ast"
	"github.com/drcsql/drcsql/internal/schema"
)

// site identifies one column reached through one atom's alias: the
// "binding site" of spec.md §4.4 step 4, and the left/right side of an
// equi-join.
type site struct {
	Alias  string
	Column string
}

// valueEquality is one "alias.column = literal" equality, either a
// positive atom's WHERE clause term or a negated atom's NOT EXISTS term.
type valueEquality struct {
	site
	Value string
}

// fromClause is one entry in the outer SELECT's FROM list: a positive
// atom's relation, scanned under its alias.
type fromClause struct {
	Relation string
	Alias    string
}

// negatedAtom is one compiled NOT EXISTS subquery.
type negatedAtom struct {
	Relation  string
	Alias     string
	ValueEqs  []valueEquality
	EquiJoins [][2]site // {inner site, outer site}
}

// analysis is everything step 8 needs to assemble one conjunction's SQL.
type analysis struct {
	Froms        []fromClause
	ValueEqs     []valueEquality
	EquiJoins    [][2]site
	NegatedAtoms []negatedAtom
	// Projection maps each Wants variable (in order) to its binding site.
	Projection []site
}

// isVariableName applies the stricter check spec.md §4.4 step 3 and §9's
// design note require: a Variable term only participates in binding
// analysis when its name is purely alphabetic. A Variable term whose text
// contains a digit is inert — it never binds and never projects, exactly
// like Wildcard — preserving the documented asymmetry that a relation
// name may contain digits but a joinable variable may not.
func isVariableName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// analyzeConjunction implements spec.md §4.4 steps 1–7 for one
// conjunction, given the relation Schema and the externally BoundVars.
func analyzeConjunction(conjIdx int, conj ast.Conjunction, sch schema.Schema, bound map[string]string, wants []string) (*analysis, error) {
	aliases := make([]string, len(conj))
	cols := make([][]string, len(conj))

	// Step 1 + 2: aliasing, arity and existence checks.
	for i, atom := range conj {
		relCols, ok := sch[atom.Relation]
		if !ok {
			return nil, newSchemaError(conjIdx, atom.Relation)
		}
		if len(atom.Args) != len(relCols) {
			return nil, newArityError(conjIdx, atom.Relation, len(relCols), len(atom.Args))
		}
		aliases[i] = fmt.Sprintf("%s_%d", atom.Relation, i)
		cols[i] = relCols
	}

	// Step 3 + 4: variable inventory and binding-site resolution. A
	// single forward pass suffices: the first positive occurrence of a
	// name, in atom/argument source order, is its binding site.
	variables := map[string]bool{}
	variableOrder := []string{}
	colofvar := map[string]site{}
	for i, atom := range conj {
		for j, arg := range atom.Args {
			v, ok := arg.(ast.Variable)
			if !ok || !isVariableName(v.Name) {
				continue
			}
			if !variables[v.Name] {
				variables[v.Name] = true
				variableOrder = append(variableOrder, v.Name)
			}
			if !atom.Negated {
				if _, seen := colofvar[v.Name]; !seen {
					colofvar[v.Name] = site{Alias: aliases[i], Column: cols[i][j]}
				}
			}
		}
	}

	// Step 5: semantic checks. variableOrder (first-occurrence order)
	// keeps the error reported for a given conjunction deterministic
	// when more than one variable is unbound.
	for _, w := range wants {
		if !variables[w] {
			return nil, newUnboundProjectedError(conjIdx, w)
		}
	}
	for _, v := range variableOrder {
		if _, hasSite := colofvar[v]; hasSite {
			continue
		}
		if _, isBound := bound[v]; isBound {
			continue
		}
		return nil, newUnboundVariableError(conjIdx, v)
	}

	a := &analysis{}

	// FROM list: one entry per positive atom, in source order.
	for i, atom := range conj {
		if !atom.Negated {
			a.Froms = append(a.Froms, fromClause{Relation: atom.Relation, Alias: aliases[i]})
		}
	}

	// Step 6: classification of positive argument positions.
	equalvarsOrder := []string{}
	equalvars := map[string][]site{}
	for i, atom := range conj {
		if atom.Negated {
			continue
		}
		for j, arg := range atom.Args {
			s := site{Alias: aliases[i], Column: cols[i][j]}
			switch t := arg.(type) {
			case ast.Literal:
				a.ValueEqs = append(a.ValueEqs, valueEquality{site: s, Value: t.Value})
			case ast.Variable:
				if !isVariableName(t.Name) {
					continue // inert, like Wildcard
				}
				if val, ok := bound[t.Name]; ok {
					a.ValueEqs = append(a.ValueEqs, valueEquality{site: s, Value: val})
					continue
				}
				if _, seen := equalvars[t.Name]; !seen {
					equalvarsOrder = append(equalvarsOrder, t.Name)
				}
				equalvars[t.Name] = append(equalvars[t.Name], s)
			case ast.Wildcard:
				// no constraint
			}
		}
	}
	// Each variable's positive occurrences are joined in a star around
	// its binding site (sites[0], always the first occurrence since
	// equalvars is built in the same source order as colofvar): n-1
	// equalities for n occurrences, all anchored to the same site the
	// variable would project from.
	for _, v := range equalvarsOrder {
		sites := equalvars[v]
		for k := 1; k < len(sites); k++ {
			a.EquiJoins = append(a.EquiJoins, [2]site{sites[0], sites[k]})
		}
	}

	// Step 7: classification of negated atoms.
	for i, atom := range conj {
		if !atom.Negated {
			continue
		}
		na := negatedAtom{Relation: atom.Relation, Alias: aliases[i]}
		for j, arg := range atom.Args {
			s := site{Alias: aliases[i], Column: cols[i][j]}
			switch t := arg.(type) {
			case ast.Literal:
				na.ValueEqs = append(na.ValueEqs, valueEquality{site: s, Value: t.Value})
			case ast.Variable:
				if !isVariableName(t.Name) {
					continue
				}
				if val, ok := bound[t.Name]; ok {
					na.ValueEqs = append(na.ValueEqs, valueEquality{site: s, Value: val})
					continue
				}
				// Guaranteed present: step 5 already rejected any
				// variable with neither a binding site nor an
				// external binding.
				outer := colofvar[t.Name]
				na.EquiJoins = append(na.EquiJoins, [2]site{s, outer})
			case ast.Wildcard:
				// no constraint
			}
		}
		a.NegatedAtoms = append(a.NegatedAtoms, na)
	}

	// Projection: one binding site per Want, in source order.
	for _, w := range wants {
		a.Projection = append(a.Projection, colofvar[w])
	}

	return a, nil
}
