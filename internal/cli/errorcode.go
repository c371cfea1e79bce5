package cli

import (
	"errors"

	"github.com/drcsql/drcsql/internal/compiler"
	"github.com/drcsql/drcsql/internal/lexer"
	"github.com/drcsql/drcsql/internal/parser"
	"github.com/drcsql/drcsql/internal/schema"
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // generic/unknown error
	ErrCodeNotFound      = "E002" // path not found
	ErrCodeLexError      = "E003" // query failed to tokenize
	ErrCodeParseError    = "E004" // query failed to parse
	ErrCodeSchemaLoad    = "E005" // malformed CUE schema definition
	ErrCodeSchema        = "E101" // relation not in schema
	ErrCodeArity         = "E102" // wrong argument count
	ErrCodeUnboundWant   = "E103" // projected variable never occurs
	ErrCodeUnboundVar    = "E104" // variable with no binding site
	ErrCodeBindingSyntax = "E105" // malformed external binding
)

// classifyError maps any error this module produces to a stable CLI
// error code and message, so --format json output never needs the
// caller to know which package raised it.
func classifyError(err error) (code, message string) {
	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		return ErrCodeLexError, lexErr.Error()
	}
	var schemaErr *schema.LoadError
	if errors.As(err, &schemaErr) {
		return ErrCodeSchemaLoad, schemaErr.Error()
	}
	var parseErr *parser.Error
	if errors.As(err, &parseErr) {
		return ErrCodeParseError, parseErr.Error()
	}
	var compileErr *compiler.Error
	if errors.As(err, &compileErr) {
		switch compileErr.Code {
		case compiler.CodeSchema:
			return ErrCodeSchema, compileErr.Message
		case compiler.CodeArity:
			return ErrCodeArity, compileErr.Message
		case compiler.CodeUnboundProjected:
			return ErrCodeUnboundWant, compileErr.Message
		case compiler.CodeUnboundVariable:
			return ErrCodeUnboundVar, compileErr.Message
		case compiler.CodeBindingSyntax:
			return ErrCodeBindingSyntax, compileErr.Message
		}
		return ErrCodeGeneric, compileErr.Message
	}
	return ErrCodeGeneric, err.Error()
}
