package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/termql/internal/lexer"
	"github.com/roach88/termql/internal/parser"
	"github.com/roach88/termql/internal/validate"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Query rejected or scenarios failed
	ExitCommandError = 2 // Command error (bad flags, unreadable files, database errors)
)

// Error codes for failures that are not validator codes.
const (
	ErrCodeLex     = "LEX_ERROR"
	ErrCodeParse   = "PARSE_ERROR"
	ErrCodeStore   = "STORE_ERROR"
	ErrCodeEval    = "EVALUATION_ERROR"
	ErrCodeLimit   = "RESULT_LIMIT"
	ErrCodeGeneric = "ERROR"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // validator code or one of the ErrCode constants
	Message string `json:"message"`           // human-readable message
	Line    int    `json:"line,omitempty"`    // 1-based, 0 when unknown
	Column  int    `json:"column,omitempty"`  // 1-based, 0 when unknown
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// QueryErrors outputs every problem with a rejected query. Text output
// shows each problem under a caret pointing into the query.
func (f *OutputFormatter) QueryErrors(query string, errs []CLIError) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "error", Error: &errs[0], Data: errs})
	}

	fmt.Fprintln(f.Writer, "\u2717 Query rejected")
	for _, e := range errs {
		fmt.Fprintln(f.Writer)
		if e.Line == 1 && e.Column > 0 {
			fmt.Fprintf(f.Writer, "  %s\n  %*s^\n", query, e.Column-1, "")
		}
		if e.Line > 0 {
			fmt.Fprintf(f.Writer, "  %s at %d:%d: %s\n", e.Code, e.Line, e.Column, e.Message)
		} else {
			fmt.Fprintf(f.Writer, "  %s: %s\n", e.Code, e.Message)
		}
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}

// queryErrors converts a lex, parse or validation failure into CLI errors.
// ok is false for any other error.
func queryErrors(err error) (errs []CLIError, ok bool) {
	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		return []CLIError{{Code: ErrCodeLex, Message: lexErr.Message, Line: lexErr.Pos.Line, Column: lexErr.Pos.Column}}, true
	}
	var parseErr *parser.Error
	if errors.As(err, &parseErr) {
		return []CLIError{{Code: ErrCodeParse, Message: parseErr.Error(), Line: parseErr.Pos.Line, Column: parseErr.Pos.Column}}, true
	}
	var valErrs validate.Errors
	if errors.As(err, &valErrs) {
		for _, v := range valErrs {
			errs = append(errs, CLIError{Code: v.Code, Message: v.Message, Line: v.Pos.Line, Column: v.Pos.Column})
		}
		return errs, true
	}
	return nil, false
}

// rejectQuery reports a query failure and returns the matching exit
// error: ExitFailure for lex, parse and validation errors, ExitCommandError
// for anything else.
func rejectQuery(f *OutputFormatter, query string, err error) error {
	if errs, ok := queryErrors(err); ok {
		if outErr := f.QueryErrors(query, errs); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "query rejected", err)
	}
	_ = f.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "query failed", err)
}
