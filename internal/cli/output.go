package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ivlev/framegen/internal/animation"
	"github.com/ivlev/framegen/internal/composition"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // composition did not validate
	ExitCommandError = 2 // missing files, encoder failures, bad flags
)

// Error codes reported in JSON output.
const (
	ErrCodeGeneric             = "E001"
	ErrCodeNotFound            = "E005"
	ErrCodeComposition         = "E100"
	ErrCodeSpring              = "E101"
	ErrCodeInterpolation       = "E102"
	ErrCodeSequenceWindow      = "E103"
	ErrCodeTransitionDirection = "E104"
	ErrCodeRender              = "E200"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
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

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not an
// ExitError map to ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// errorCode classifies configuration errors by their sentinel.
func errorCode(err error) string {
	switch {
	case errors.Is(err, animation.ErrInvalidSpringConfig):
		return ErrCodeSpring
	case errors.Is(err, animation.ErrInvalidInterpolationRange):
		return ErrCodeInterpolation
	case errors.Is(err, animation.ErrInvalidSequenceWindow):
		return ErrCodeSequenceWindow
	case errors.Is(err, animation.ErrInvalidTransitionDirection):
		return ErrCodeTransitionDirection
	case errors.Is(err, composition.ErrInvalidComposition):
		return ErrCodeComposition
	}
	return ErrCodeGeneric
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON reports whether machine-readable output was requested.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success writes data as a JSON envelope; in text mode it does nothing and
// the command prints its own text.
func (f *OutputFormatter) Success(data any) error {
	if !f.JSON() {
		return nil
	}
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(CLIResponse{Status: "ok", Data: data})
}

// Error writes an error in the configured format.
func (f *OutputFormatter) Error(code, message string) error {
	if f.JSON() {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: "error", Error: &CLIError{Code: code, Message: message}})
	}
	_, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return err
}

// VerboseLog writes to ErrWriter so that it never corrupts JSON output.
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
