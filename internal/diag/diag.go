// Package diag implements the compiler's single-line diagnostic format and
// a small sink that accumulates errors so the driver, not the subsystem
// that detected the problem, decides what to do about them.
package diag

import (
	"fmt"
	"io"
)

// Kind classifies a CompileError as one of the three terminal error kinds
// the compiler recognizes.
type Kind string

const (
	Lexer  Kind = "lexer"
	Parser Kind = "parser"
	Type   Kind = "type"

	// Internal marks a violation the emitter trusts the type checker to
	// have already prevented. It should never be observed in practice; it
	// exists so such violations surface as a typed error instead of a bare
	// panic escaping a package boundary.
	Internal Kind = "internal"
)

// CompileError is a single fatal diagnostic. File and Line locate it; Text,
// when non-empty, is the offending lexeme; Message is the prose reason.
type CompileError struct {
	Kind    Kind
	File    string
	Line    int
	Text    string
	Message string
}

// Error renders the wire format required by the driver and by every
// "-1/-2/-3/-4" mode: "<kind> error in file <f> line <n>[ at text <t>]: <message>".
func (e *CompileError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("%s error in file %s line %d at text %s: %s", e.Kind, e.File, e.Line, e.Text, e.Message)
	}
	return fmt.Sprintf("%s error in file %s line %d: %s", e.Kind, e.File, e.Line, e.Message)
}

// New builds a CompileError with no offending text.
func New(kind Kind, file string, line int, message string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, File: file, Line: line, Message: fmt.Sprintf(message, args...)}
}

// NewAt builds a CompileError naming the offending lexeme.
func NewAt(kind Kind, file string, line int, text, message string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, File: file, Line: line, Text: text, Message: fmt.Sprintf(message, args...)}
}

// Sink accumulates diagnostics produced during one compile invocation. Every
// compile in this process uses its own Sink; there is no package-level
// accumulator.
type Sink struct {
	errs []*CompileError
}

// Report appends a diagnostic to the sink.
func (s *Sink) Report(e *CompileError) {
	s.errs = append(s.errs, e)
}

// HasErrors reports whether any diagnostic has been reported.
func (s *Sink) HasErrors() bool {
	return len(s.errs) > 0
}

// Errors returns the accumulated diagnostics in report order.
func (s *Sink) Errors() []*CompileError {
	return s.errs
}

// First returns the first reported diagnostic, or nil if none.
func (s *Sink) First() *CompileError {
	if len(s.errs) == 0 {
		return nil
	}
	return s.errs[0]
}

// WriteTo writes every accumulated diagnostic to w, one per line.
func (s *Sink) WriteTo(w io.Writer) {
	for _, e := range s.errs {
		fmt.Fprintln(w, e.Error())
	}
}
