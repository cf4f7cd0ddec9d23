package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/roach88/mo/internal/diag"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Project is inconsistent (reconciliation failed)
	ExitCommandError = 2 // Command error (bad position, declined confirmation, I/O failure, etc.)
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
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Output error codes.
const (
	ErrCodeGeneric            = "E001" // Generic/unknown error
	ErrCodeConfigMissing      = "E201"
	ErrCodeConfigInvalid      = "E202"
	ErrCodeMalformedPosition  = "E203"
	ErrCodePositionOutOfRange = "E204"
	ErrCodeDuplicateSlot      = "E205"
	ErrCodeMissingFolder      = "E206"
	ErrCodeDuplicatePosition  = "E207"
	ErrCodeOrderGap           = "E208"
	ErrCodeConversionDeclined = "E209"
	ErrCodeOperationDeclined  = "E210"
	ErrCodeInvalidGroupKind   = "E211"
	ErrCodeTaskNotFound       = "E212"
	ErrCodeInvalidName        = "E213"
)

var outputCodes = map[diag.Code]string{
	diag.ConfigMissing:      ErrCodeConfigMissing,
	diag.ConfigInvalid:      ErrCodeConfigInvalid,
	diag.MalformedPosition:  ErrCodeMalformedPosition,
	diag.PositionOutOfRange: ErrCodePositionOutOfRange,
	diag.DuplicateSlot:      ErrCodeDuplicateSlot,
	diag.MissingFolder:      ErrCodeMissingFolder,
	diag.DuplicatePosition:  ErrCodeDuplicatePosition,
	diag.OrderGap:           ErrCodeOrderGap,
	diag.ConversionDeclined: ErrCodeConversionDeclined,
	diag.OperationDeclined:  ErrCodeOperationDeclined,
	diag.InvalidGroupKind:   ErrCodeInvalidGroupKind,
	diag.TaskNotFound:       ErrCodeTaskNotFound,
	diag.InvalidName:        ErrCodeInvalidName,
}

// inconsistent lists the codes that mean the project itself is broken, as
// opposed to the request being bad.
var inconsistent = map[diag.Code]bool{
	diag.ConfigInvalid:     true,
	diag.MissingFolder:     true,
	diag.DuplicatePosition: true,
	diag.OrderGap:          true,
}

// OutputCode maps an error to its stable output code.
func OutputCode(err error) string {
	if code, ok := outputCodes[diag.CodeOf(err)]; ok {
		return code
	}
	return ErrCodeGeneric
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
	NoColor   bool

	styles *styles
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E201", "E204", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

type styles struct {
	ok, warn, fail, dim, kind lipgloss.Style
}

// style returns the text styles, rendering plain text when color is off or
// the writer is not a terminal.
func (f *OutputFormatter) style() *styles {
	if f.styles != nil {
		return f.styles
	}
	r := lipgloss.NewRenderer(f.Writer)
	if f.NoColor {
		r.SetColorProfile(termenv.Ascii)
	}
	f.styles = &styles{
		ok:   r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		warn: r.NewStyle().Foreground(lipgloss.Color("3")),
		fail: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		dim:  r.NewStyle().Faint(true),
		kind: r.NewStyle().Foreground(lipgloss.Color("6")),
	}
	return f.styles
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "%s %s\n", f.style().fail.Render("Error ["+code+"]:"), message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and converts it into an ExitError. Errors that already
// carry an exit code keep it.
func (f *OutputFormatter) Fail(err error) error {
	code := OutputCode(err)
	var details any
	var de *diag.Error
	if errors.As(err, &de) {
		details = errorDetails{Kind: string(de.Code), Position: de.Position, Name: de.Name}
	}
	if outErr := f.Error(code, err.Error(), details); outErr != nil {
		return outErr
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	exit := ExitCommandError
	if inconsistent[diag.CodeOf(err)] {
		exit = ExitFailure
	}
	return WrapExitError(exit, code, err)
}

type errorDetails struct {
	Kind     string `json:"kind"`
	Position string `json:"position,omitempty"`
	Name     string `json:"name,omitempty"`
}

func (e errorDetails) String() string {
	s := e.Kind
	if e.Position != "" {
		s += " at " + e.Position
	}
	if e.Name != "" {
		s += " (" + e.Name + ")"
	}
	return s
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
	return enc.Encode(resp)
}
