package datmerge

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	summary, err := merger.Merge(ctx, config)
//	if errors.Is(err, datmerge.ErrInput) {
//	    // Handle a missing or unreadable input directory
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInput indicates the input directory or one of its files could not be read.
	ErrInput = errors.New("input error")

	// ErrParse indicates a line could not be parsed into a record.
	ErrParse = errors.New("parse error")

	// ErrWrite indicates an output file could not be created or written.
	ErrWrite = errors.New("write error")

	// ErrExport indicates publishing the result to PostgreSQL failed.
	ErrExport = errors.New("export error")
)

// InputError reports a missing or unreadable input directory or file.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrInput, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", ErrInput, e.Path, e.Err)
}

func (e *InputError) Unwrap() []error { return []error{ErrInput, e.Err} }

// ParseError reports a line that could not be parsed.
// The pipeline recovers from it by skipping the line.
type ParseError struct {
	File   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s:%d: %s", ErrParse, e.File, e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// Issue converts the error into its reportable form.
func (e *ParseError) Issue() ParseIssue {
	return ParseIssue{File: e.File, Line: e.Line, Reason: e.Reason}
}

// WriteError reports an output path that could not be created or written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s: %v", ErrWrite, e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error { return []error{ErrWrite, e.Err} }

// ExportError reports a failed PostgreSQL export.
type ExportError struct {
	Table string
	Err   error
}

func (e *ExportError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: table %s: %v", ErrExport, e.Table, e.Err)
}

func (e *ExportError) Unwrap() []error { return []error{ErrExport, e.Err} }

// usagePatterns are the error prefixes cobra and pflag produce for bad invocations.
var usagePatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"required flag",
	"invalid argument",
	"flag needs an argument",
	"accepts ",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrInput):
		return ExitInputError
	case errors.Is(err, ErrExport):
		return ExitExportError
	case errors.Is(err, ErrWrite):
		return ExitWriteError
	}

	errStr := err.Error()
	for _, pattern := range usagePatterns {
		if strings.HasPrefix(errStr, pattern) {
			return ExitUsageError
		}
	}

	return ExitGeneralError
}
