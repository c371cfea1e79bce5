package compiler

import (
	"errors"
	"fmt"
)

// Code categorizes a compiler Error (spec.md §7). Every kind here is
// terminal: the compiler emits no SQL when any check fails.
type Code string

const (
	// CodeSchema marks a relation referenced by an atom that is not in
	// the supplied Schema.
	CodeSchema Code = "SCHEMA"
	// CodeArity marks an atom whose argument count disagrees with its
	// relation's arity.
	CodeArity Code = "ARITY"
	// CodeUnboundProjected marks a Wants variable that never occurs in
	// its conjunction.
	CodeUnboundProjected Code = "UNBOUND_PROJECTED"
	// CodeUnboundVariable marks a variable with neither a positive
	// binding site nor an external binding.
	CodeUnboundVariable Code = "UNBOUND_VARIABLE"
	// CodeBindingSyntax marks a malformed external variable binding.
	CodeBindingSyntax Code = "BINDING_SYNTAX"
)

// Error is a terminal, structured compiler error naming the offending
// relation or variable and the conjunction index. Modeled on a RuntimeError-with-code
// shape: one struct per failure, discriminated with errors.As.
type Error struct {
	Code Code
	// Relation is set for CodeSchema and CodeArity.
	Relation string
	// Variable is set for CodeUnboundProjected, CodeUnboundVariable, and
	// CodeBindingSyntax.
	Variable string
	// ConjIndex is the zero-based index of the offending conjunction
	// within the query.
	ConjIndex int
	// Message is a human-readable description.
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (conjunct %d)", e.Code, e.Message, e.ConjIndex)
}

func newSchemaError(conjIdx int, relation string) *Error {
	return &Error{
		Code:      CodeSchema,
		Relation:  relation,
		ConjIndex: conjIdx,
		Message:   fmt.Sprintf("No such table: %s", relation),
	}
}

func newArityError(conjIdx int, relation string, want, got int) *Error {
	return &Error{
		Code:      CodeArity,
		Relation:  relation,
		ConjIndex: conjIdx,
		Message:   fmt.Sprintf("Table %s has %d columns, but %d were queried", relation, want, got),
	}
}

func newUnboundProjectedError(conjIdx int, variable string) *Error {
	return &Error{
		Code:      CodeUnboundProjected,
		Variable:  variable,
		ConjIndex: conjIdx,
		Message:   fmt.Sprintf("variable %s not bound anywhere", variable),
	}
}

func newUnboundVariableError(conjIdx int, variable string) *Error {
	return &Error{
		Code:      CodeUnboundVariable,
		Variable:  variable,
		ConjIndex: conjIdx,
		Message:   fmt.Sprintf("variable %s not bound in any positive predicate", variable),
	}
}

// NewBindingSyntaxError builds the error for a malformed external
// variable binding. Compile returns it for a BoundVars key or Wants entry
// that is not alpha-first alphanumeric.
func NewBindingSyntaxError(variable, reason string) *Error {
	return &Error{
		Code:     CodeBindingSyntax,
		Variable: variable,
		Message:  fmt.Sprintf("malformed binding for %s: %s", variable, reason),
	}
}

// IsSchemaError reports whether err is a CodeSchema Error.
func IsSchemaError(err error) bool { return hasCode(err, CodeSchema) }

// IsArityError reports whether err is a CodeArity Error.
func IsArityError(err error) bool { return hasCode(err, CodeArity) }

// IsUnboundProjectedError reports whether err is a CodeUnboundProjected Error.
func IsUnboundProjectedError(err error) bool { return hasCode(err, CodeUnboundProjected) }

// IsUnboundVariableError reports whether err is a CodeUnboundVariable Error.
func IsUnboundVariableError(err error) bool { return hasCode(err, CodeUnboundVariable) }

// IsBindingSyntaxError reports whether err is a CodeBindingSyntax Error.
func IsBindingSyntaxError(err error) bool { return hasCode(err, CodeBindingSyntax) }

func hasCode(err error, code Code) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
