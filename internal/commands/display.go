package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alan/release-tools/cmd"
	"github.com/alan/release-tools/internal/manifest"
	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	hintColor    = color.New(color.FgCyan)
)

// Printer writes the user-facing status lines of a command.
// Errors and hints go to errOut, everything else to out.
type Printer struct {
	out    io.Writer
	errOut io.Writer
}

// NewPrinter creates a printer. Nil writers default to stdout and stderr.
func NewPrinter(out, errOut io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Printer{out: out, errOut: errOut}
}

// Info prints a neutral status line
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.out, "📦 "+format+"\n", args...)
}

// Step prints a progress line for work about to happen
func (p *Printer) Step(format string, args ...any) {
	fmt.Fprintf(p.out, "📝 "+format+"\n", args...)
}

// Success prints a completed action
func (p *Printer) Success(format string, args ...any) {
	successColor.Fprintf(p.out, "✅ "+format+"\n", args...)
}

// Warn prints a benign problem; it never implies a failed run
func (p *Printer) Warn(format string, args ...any) {
	warnColor.Fprintf(p.out, "⚠️  "+format+"\n", args...)
}

// Error prints a fatal problem
func (p *Printer) Error(format string, args ...any) {
	errorColor.Fprintf(p.errOut, "❌ "+format+"\n", args...)
}

// Hint prints remediation advice following an error
func (p *Printer) Hint(format string, args ...any) {
	hintColor.Fprintf(p.errOut, "💡 "+format+"\n", args...)
}

// Celebrate prints the closing line of a release
func (p *Printer) Celebrate(format string, args ...any) {
	fmt.Fprintf(p.out, "🎉 "+format+"\n", args...)
}

// Lines prints raw text, e.g. generated release notes
func (p *Printer) Lines(text string) {
	fmt.Fprintln(p.out, text)
}

// ReportError prints err and any remediation hint it carries
func ReportError(p *Printer, err error) {
	if err == nil {
		return
	}

	p.Error("%s", err.Error())

	var configErr *cmd.ConfigurationError
	if errors.As(err, &configErr) && configErr.Hint != "" {
		p.Hint("%s", configErr.Hint)
		return
	}

	var parseErr *manifest.ParseError
	if errors.As(err, &parseErr) {
		p.Hint("Run from the project root or pass --manifest <path>")
	}
}

// ExitCode maps a command result to the process exit status
func ExitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}
