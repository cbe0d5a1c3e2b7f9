// Package diagnostic defines the structured error values produced by the
// compiler core (lexer, parser, semantic analyser). Diagnostic itself
// stays plain data with no rendering logic; Render is a thin, swappable
// helper for callers that want terminal output, optionally colorized.
package diagnostic

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"nilan/token"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Label attaches a secondary message to a sub-span of the diagnostic,
// e.g. pointing at the specific argument that failed to unify.
type Label struct {
	Span    token.Span
	Message string
}

// Diagnostic is a structured compiler error: a primary span and
// message, zero or more labelled sub-spans, and zero or more notes.
type Diagnostic struct {
	Severity Severity
	Span     token.Span
	Message  string
	Labels   []Label
	Notes    []string
}

// New builds an error-severity Diagnostic.
func New(span token.Span, message string) Diagnostic {
	return Diagnostic{Severity: SeverityError, Span: span, Message: message}
}

// WithLabel returns a copy of d with an additional label.
func (d Diagnostic) WithLabel(span token.Span, message string) Diagnostic {
	d.Labels = append(d.Labels, Label{Span: span, Message: message})
	return d
}

// WithNote returns a copy of d with an additional note.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// Error satisfies the error interface so a Diagnostic can be returned
// or wrapped directly wherever Go code expects one.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s (bytes %d..%d)", d.Severity, d.Message, d.Span.Start, d.Span.End)
}

// Render writes a human-readable rendition of d to w, extracting the
// offending source line from source. When useColor is true and w looks
// like a terminal, the "severity: message" header line is colored with
// fatih/color; the source line itself is printed uncolored.
func Render(w io.Writer, source []byte, d Diagnostic, useColor bool) error {
	line, col, snippet := locate(source, d.Span.Start)

	header := fmt.Sprintf("%s: %s", d.Severity, d.Message)
	if useColor && isTerminalWriter(w) {
		c := color.New(color.FgRed, color.Bold)
		if d.Severity == SeverityWarning {
			c = color.New(color.FgYellow, color.Bold)
		}
		header = c.Sprint(header)
	}

	if _, err := fmt.Fprintf(w, "%s\n  --> line %d, column %d\n  %s\n", header, line, col, snippet); err != nil {
		return err
	}
	for _, label := range d.Labels {
		lline, lcol, _ := locate(source, label.Span.Start)
		if _, err := fmt.Fprintf(w, "  note (line %d, col %d): %s\n", lline, lcol, label.Message); err != nil {
			return err
		}
	}
	for _, note := range d.Notes {
		if _, err := fmt.Fprintf(w, "  = note: %s\n", note); err != nil {
			return err
		}
	}
	return nil
}

func locate(source []byte, offset int) (line, column int, snippet string) {
	line = 1
	lineStart := 0
	for i := 0; i < offset && i < len(source); i++ {
		if source[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	lineEnd := len(source)
	if idx := strings.IndexByte(string(source[lineStart:]), '\n'); idx >= 0 {
		lineEnd = lineStart + idx
	}
	column = offset - lineStart
	return line, column, string(source[lineStart:lineEnd])
}

func isTerminalWriter(w io.Writer) bool {
	type fder interface{ Fd() uintptr }
	f, ok := w.(fder)
	return ok && isatty.IsTerminal(f.Fd())
}
