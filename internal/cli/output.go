package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/cliffordt/internal/config"
	"github.com/roach88/cliffordt/internal/grid"
	"github.com/roach88/cliffordt/internal/ir"
	"github.com/roach88/cliffordt/internal/oracle"
	"github.com/roach88/cliffordt/internal/store"
	"github.com/roach88/cliffordt/internal/synth"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // No solution, failed batch targets, internal invariant violation
	ExitCommandError = 2 // Bad input, config, or paths
)

// Error codes reported in CLI error output.
const (
	ErrCodeNoSolution    = "E_NO_SOLUTION"
	ErrCodeInternal      = "E_INTERNAL"
	ErrCodeInvalidTarget = "E_INVALID_TARGET"
	ErrCodeConfig        = "E_CONFIG"
	ErrCodeStore         = "E_STORE"
	ErrCodeNotFound      = "E_NOT_FOUND"
	ErrCodeJob           = "E_JOB"
	ErrCodeTable         = "E_TABLE"
	ErrCodeCanceled      = "E_CANCELED"
	ErrCodeIO            = "E_IO"
)

// ExitError represents an error with a specific exit code.
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
// Returns ExitSuccess for nil and ExitFailure if the error is not an
// ExitError.
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

// classifyError maps an error to its CLI error code and exit code.
func classifyError(err error) (string, int) {
	var (
		cfgErr   *config.Error
		synthErr *synth.InvariantError
	)
	switch {
	case grid.IsDepthExhausted(err):
		return ErrCodeNoSolution, ExitFailure
	case errors.As(err, &synthErr), oracle.IsInvariantError(err):
		return ErrCodeInternal, ExitFailure
	case errors.Is(err, ir.ErrInvalidTarget), errors.Is(err, grid.ErrInvalidTarget):
		return ErrCodeInvalidTarget, ExitCommandError
	case errors.As(err, &cfgErr):
		return ErrCodeConfig, ExitCommandError
	case errors.Is(err, synth.ErrMalformedTable):
		return ErrCodeTable, ExitCommandError
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeNotFound, ExitCommandError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCodeCanceled, ExitFailure
	case errors.Is(err, errJob):
		return ErrCodeJob, ExitCommandError
	case errors.Is(err, errStore):
		return ErrCodeStore, ExitCommandError
	case errors.Is(err, errIO):
		return ErrCodeIO, ExitCommandError
	}
	return ErrCodeInternal, ExitFailure
}

// Tags for failures that have no typed error of their own.
var (
	errJob   = errors.New("job")
	errStore = errors.New("store")
	errIO    = errors.New("io")
)

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
	Code    string `json:"code"`              // "E_NO_SOLUTION", "E_INTERNAL", ...
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format. In text
// format, text renders data; a nil text prints data with fmt.Fprintln.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetEscapeHTML(false)
		return enc.Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	if text != nil {
		text(f.Writer)
		return nil
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetEscapeHTML(false)
		return enc.Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err in the configured format and returns the ExitError the
// command should return.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit := classifyError(err)
	if outErr := f.Error(code, fmt.Sprintf("%s: %v", message, err), nil); outErr != nil {
		return WrapExitError(ExitCommandError, "write output", outErr)
	}
	return WrapExitError(exit, fmt.Sprintf("[%s] %s", code, message), err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
