package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/radixrunner/internal/ir"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Scenario failure or engine error
	ExitCommandError = 2 // Command error (bad config, unreadable database, etc.)
)

// Error codes reported in JSON error responses.
const (
	ErrCodeConfig  = "E_CONFIG"
	ErrCodeDecode  = "E_DECODE"
	ErrCodeStore   = "E_STORE"
	ErrCodeFailed  = "E_TEST_FAILED"
	ErrCodeGeneric = "E_GENERIC"
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
// Returns ExitSuccess for nil and ExitFailure for any non-ExitError.
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
	ErrWriter io.Writer // Verbose/diagnostic output (defaults to Writer)
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
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success outputs a successful result in the configured format. Text output
// prints data with fmt.Println, so text callers pass something printable.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Sample writes one monitor sample: a JSON line, or a one-line text summary.
func (f *OutputFormatter) Sample(s ir.Sample) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(s)
	}
	_, err := fmt.Fprintln(f.Writer, FormatSample(s))
	return err
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
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
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// FormatSample renders a sample as
//
//	#3 0x0000000000003000 P5=0 P4=0 P3=0 P2=0 P1=3 P0=0 rate=1200/s wraps=3,0,0,0,0,0 s0=P0/3:1+2
//
// Each enabled slot is listed as s<slot>=<digit>/<divisor>:<count>+<tally>.
func FormatSample(s ir.Sample) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s", s.Seq, ir.FormatRaw(s.Raw))
	for d := ir.DigitCount - 1; d >= 0; d-- {
		fmt.Fprintf(&b, " P%d=%d", d, s.Digits[d])
	}
	fmt.Fprintf(&b, " rate=%d/s wraps=", s.TicksPerSecond)
	for i, w := range s.Wraps {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", w)
	}
	for _, sh := range s.Shadows {
		if !sh.Enabled {
			continue
		}
		fmt.Fprintf(&b, " s%d=P%d/%d:%d+%d", sh.Slot, sh.SourceDigit, sh.Divisor, sh.Count, sh.OverflowCount)
	}
	return b.String()
}
