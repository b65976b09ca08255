// Package diagnostics implements the three-tier diagnostic model of
// spec.md §7 and the printer format of spec.md §6 ("one line per error to
// stderr, citing file:line:col spans; final summary line '<N> error(s)
// generated' in bold").
package diagnostics

import (
	"fmt"
	"io"

	"github.com/mattn/go-isatty"

	"github.com/maxc-lang/maxc/internal/token"
)

// Severity distinguishes the tiers of spec.md §7.
type Severity int

const (
	SevParse Severity = iota
	SevSemantic
	SevRuntimeFatal
)

// Diagnostic is one reported problem: a code, a severity, a source span,
// and a message.
type Diagnostic struct {
	Code     string
	Severity Severity
	Span     token.Span
	File     string
	Message  string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s:%s: error[%s]: %s", d.File, d.Span, d.Code, d.Message)
}

func newDiag(sev Severity, code string, tok token.Token, msg string) *Diagnostic {
	return &Diagnostic{Code: code, Severity: sev, Span: tok.Span, Message: msg}
}

// NewParseError builds a parse-tier diagnostic (spec.md §7, code space "P###").
func NewParseError(code string, tok token.Token, msg string) *Diagnostic {
	return newDiag(SevParse, code, tok, msg)
}

// NewSemanticError builds a semantic-tier diagnostic ("S###").
func NewSemanticError(code string, tok token.Token, msg string) *Diagnostic {
	return newDiag(SevSemantic, code, tok, msg)
}

// NewFatal builds an internal-invariant-violation diagnostic ("R###"),
// spec.md §7: "internal invariants violated ... are treated as fatal
// internal bugs with a stderr trace".
func NewFatal(code string, tok token.Token, msg string) *Diagnostic {
	return newDiag(SevRuntimeFatal, code, tok, msg)
}

const (
	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
)

// Printer writes diagnostics to an io.Writer in spec.md §6's format,
// bolding the summary line only when w looks like an interactive terminal
// (grounded on the teacher's own go-isatty-gated terminal detection in
// evaluator/builtins_term.go).
type Printer struct {
	bold bool
}

// NewPrinter decides whether to emit ANSI bold by checking fd for a
// terminal; hasFD is false when the output is not backed by a file
// descriptor, and then no bold is used.
func NewPrinter(fd uintptr, hasFD bool) *Printer {
	bold := hasFD && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
	return &Printer{bold: bold}
}

// Print writes one line per diagnostic, then the summary line.
func (p *Printer) Print(w io.Writer, file string, diags []*Diagnostic) {
	for _, d := range diags {
		d.File = file
		fmt.Fprintln(w, d.Error())
	}
	summary := fmt.Sprintf("%d error(s) generated", len(diags))
	if p.bold {
		fmt.Fprintln(w, ansiBold+summary+ansiReset)
	} else {
		fmt.Fprintln(w, summary)
	}
}
