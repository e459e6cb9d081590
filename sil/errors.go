package sil

import (
	"fmt"
	"strings"
)

// SourceError is a diagnostic anchored to a source span, with enough
// context to render a caret under the offending text.
type SourceError struct {
	Message string
	Span    Span
	Source  string
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Span.Start.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

// FormatWithContext renders the message with the offending source line
// and a caret under the error column.
func (e *SourceError) FormatWithContext() string {
	if e.Source == "" || e.Span.Start.Line == 0 {
		return e.Error()
	}

	lines := strings.Split(e.Source, "\n")
	lineNum := e.Span.Start.Line
	if lineNum < 1 || lineNum > len(lines) {
		return e.Error()
	}

	line := lines[lineNum-1]
	col := e.Span.Start.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %s\n", e.Message)
	fmt.Fprintf(&sb, "  --> line %d:%d\n", lineNum, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", lineNum, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))
	return sb.String()
}

// LexError reports a malformed numeric literal or an unterminated
// block comment.
type LexError struct{ *SourceError }

// NewLexError builds a LexError at span in source.
func NewLexError(message string, span Span, source string) *LexError {
	return &LexError{&SourceError{Message: message, Span: span, Source: source}}
}

// ParseError reports an unexpected token, an unterminated block, or
// an invalid identifier.
type ParseError struct{ *SourceError }

// NewParseError builds a ParseError at span in source.
func NewParseError(message string, span Span, source string) *ParseError {
	return &ParseError{&SourceError{Message: message, Span: span, Source: source}}
}

// NewParseErrorf builds a ParseError with a formatted message.
func NewParseErrorf(span Span, source string, format string, args ...interface{}) *ParseError {
	return &ParseError{&SourceError{Message: fmt.Sprintf(format, args...), Span: span, Source: source}}
}

// ParseErrors accumulates diagnostics recorded during bounded error
// recovery; the parser still returns a non-nil error once any have
// been recorded, but recovery lets later errors surface in the same
// run.
type ParseErrors []*ParseError

// Error implements the error interface.
func (el ParseErrors) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	if len(el) == 1 {
		return el[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
}

// FormatAll renders every recorded error with source context.
func (el ParseErrors) FormatAll() string {
	var sb strings.Builder
	for i, e := range el {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(e.FormatWithContext())
	}
	return sb.String()
}

// Add appends err to the list.
func (el *ParseErrors) Add(err *ParseError) { *el = append(*el, err) }

// HasErrors reports whether any errors were recorded.
func (el ParseErrors) HasErrors() bool { return len(el) > 0 }
