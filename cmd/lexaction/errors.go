package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/opal-lang/lexaction/core/actfmt"
	"github.com/opal-lang/lexaction/core/lexaction"
)

// CLIError represents a formatted CLI error with context
type CLIError struct {
	Message string
	Details string // Additional context
	Hint    string // How to fix it
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString("\n")
		b.WriteString(e.Details)
	}
	if e.Hint != "" {
		b.WriteString("\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// FormatError formats an error for CLI output with colors
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}

	var parseErr *lexaction.ParseError
	var cliErr *CLIError
	switch {
	case errors.As(err, &cliErr):
		formatCLIError(w, cliErr, useColor)
	case errors.As(err, &parseErr):
		formatParseError(w, err, parseErr, useColor)
	case errors.Is(err, actfmt.ErrUnsupportedFormat):
		formatCLIError(w, &CLIError{
			Message: err.Error(),
			Hint:    fmt.Sprintf("this build reads %s manifests", actfmt.ManifestMajor),
		}, useColor)
	default:
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())
	}
}

// formatParseError prints the full chain, then the offending command and a suggestion
func formatParseError(w io.Writer, err error, perr *lexaction.ParseError, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())
	_, _ = fmt.Fprintf(w, "%s\n", Colorize("  command: "+perr.Input, ColorGray, useColor))
	if perr.Suggestion != "" {
		_, _ = fmt.Fprintf(w, "%s\n", Colorize(fmt.Sprintf("Hint: did you mean %q?", perr.Suggestion), ColorYellow, useColor))
	}
}

// formatCLIError formats CLI errors
func formatCLIError(w io.Writer, err *CLIError, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Message)

	if err.Details != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", err.Details)
	}

	if err.Hint != "" {
		_, _ = fmt.Fprintf(w, "%s\n", Colorize("Hint: "+err.Hint, ColorYellow, useColor))
	}
}
