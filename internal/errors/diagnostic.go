package errors

import (
	"fmt"
	"strings"
)

// Cursor is a position in the source text. Line and Column are 1-based;
// Column counts runes, Offset counts bytes.
type Cursor struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// StartCursor is the position of the first byte of a document.
func StartCursor() Cursor {
	return Cursor{Offset: 0, Line: 1, Column: 1}
}

// String renders the cursor as "line L, column C".
func (c Cursor) String() string {
	return fmt.Sprintf("line %d, column %d", c.Line, c.Column)
}

// Diagnostic is one problem found while decoding a document.
type Diagnostic struct {
	Message   string  `json:"message" yaml:"message"`
	Cursor    Cursor  `json:"cursor" yaml:"cursor"`
	EndCursor *Cursor `json:"endCursor,omitempty" yaml:"end_cursor,omitempty"`
}

// NewDiagnostic records message at start. The cursors are copied so the
// caller may keep advancing its own.
func NewDiagnostic(message string, start Cursor, end *Cursor) Diagnostic {
	d := Diagnostic{Message: message, Cursor: start}
	if end != nil {
		e := *end
		d.EndCursor = &e
	}
	return d
}

// String renders "<message> at line <L>, column <C>".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at %s", d.Message, d.Cursor)
}

// LexicalError is a fatal tokenizer failure. Decoding stops where it occurs.
type LexicalError struct {
	Diagnostic Diagnostic
}

func (e *LexicalError) Error() string {
	return e.Diagnostic.String()
}

// NewLexicalError builds a lexical error at pos.
func NewLexicalError(pos Cursor, format string, args ...interface{}) *LexicalError {
	return &LexicalError{Diagnostic: NewDiagnostic(fmt.Sprintf(format, args...), pos, nil)}
}

// DiagnosticError is the batch of diagnostics returned when a document fails
// to decode. It always holds at least one diagnostic. Partial is the tree the
// parser recovered, which may be nil.
type DiagnosticError struct {
	Diagnostics []Diagnostic
	Partial     interface{}
}

// NewDiagnosticError returns nil when diags is empty.
func NewDiagnosticError(diags []Diagnostic, partial interface{}) *DiagnosticError {
	if len(diags) == 0 {
		return nil
	}
	out := make([]Diagnostic, len(diags))
	copy(out, diags)
	return &DiagnosticError{Diagnostics: out, Partial: partial}
}

func (e *DiagnosticError) Error() string {
	lines := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// Unwrap lets errors.Is match ErrInvalidDocument.
func (e *DiagnosticError) Unwrap() error {
	return ErrInvalidDocument
}

// First returns the earliest recorded diagnostic.
func (e *DiagnosticError) First() Diagnostic {
	return e.Diagnostics[0]
}

// Summary renders the first diagnostic and a count of the rest.
func (e *DiagnosticError) Summary() string {
	if len(e.Diagnostics) == 1 {
		return e.Diagnostics[0].String()
	}
	return fmt.Sprintf("%s (and %d more)", e.Diagnostics[0], len(e.Diagnostics)-1)
}
