package spirv

import (
	"fmt"

	"github.com/sillang/silc/sil"
)

// SemanticError is raised during lowering: unknown identifier, type
// mismatch in a binary op, unsupported operator for an operand type,
// an incompatible cast, AddressOf of a pointer, Dereference of a
// non-pointer, or break outside a loop.
type SemanticError struct {
	Message string
	Span    sil.Span
	Source  string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("%d:%d: semantic error: %s", e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

// NewSemanticError builds a SemanticError at span.
func NewSemanticError(message string, span sil.Span, source string) *SemanticError {
	return &SemanticError{Message: message, Span: span, Source: source}
}

func (c *Context) semanticErrorf(span sil.Span, format string, args ...interface{}) *SemanticError {
	return NewSemanticError(fmt.Sprintf(format, args...), span, c.source)
}

// InternalError reports a generator invariant violation: an AST node
// kind or type-table entry the lowering has no case for, a local
// stored before it was declared, or the post-generation self-check
// finding an unterminated block, an instruction after a terminator, or
// a duplicate SSA id.
type InternalError struct {
	Message string
	Span    sil.Span
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (c *Context) internalf(span sil.Span, format string, args ...interface{}) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...), Span: span}
}
