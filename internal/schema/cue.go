package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// LoadError reports a malformed schema definition, naming the relation
// field and CUE source position where the problem was found.
type LoadError struct {
	Relation string
	Message  string
	Pos      string
}

func (e *LoadError) Error() string {
	if e.Relation == "" {
		return e.Message
	}
	if e.Pos == "" {
		return fmt.Sprintf("schema %s: %s", e.Relation, e.Message)
	}
	return fmt.Sprintf("%s: schema %s: %s", e.Pos, e.Relation, e.Message)
}

// LoadCUE parses a CUE source of the shape
//
//	student:         ["name", "year"]
//	immatriculated:  ["student", "year"]
//	lecture:         ["name", "semester"]
//	registered:      ["student", "lecture"]
//
// into a Schema. Each top-level field is a relation name; its value must
// be a list of string column names, and list order is preserved as the
// column order the core's positional argument matching depends on.
func LoadCUE(src string) (Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return schemaFromValue(v)
}

func schemaFromValue(v cue.Value) (Schema, error) {
	out := Schema{}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		relation := iter.Selector().String()
		cols, err := columnsOf(relation, iter.Value())
		if err != nil {
			return nil, err
		}
		out[relation] = cols
	}
	return out, nil
}

func columnsOf(relation string, v cue.Value) ([]string, error) {
	listIter, err := v.List()
	if err != nil {
		return nil, &LoadError{
			Relation: relation,
			Message:  "expected a list of column names",
			Pos:      posString(v),
		}
	}

	var cols []string
	for listIter.Next() {
		s, err := listIter.Value().String()
		if err != nil {
			return nil, &LoadError{
				Relation: relation,
				Message:  "column names must be strings",
				Pos:      posString(listIter.Value()),
			}
		}
		cols = append(cols, s)
	}
	if len(cols) == 0 {
		return nil, &LoadError{
			Relation: relation,
			Message:  "relation must declare at least one column",
			Pos:      posString(v),
		}
	}
	return cols, nil
}

func posString(v cue.Value) string {
	pos := v.Pos()
	if !pos.IsValid() {
		return ""
	}
	return pos.String()
}

func formatCUEError(err error) error {
	return &LoadError{Message: errors.Details(err, nil)}
}
