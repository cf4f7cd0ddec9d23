// Package diag defines the error taxonomy shared by every mo component.
//
// All failures detected by the organizer core are raised as *Error values at
// the point of detection and propagate unhandled to the caller. Callers
// classify them with Is or CodeOf; both see through fmt.Errorf wrapping.
package diag

import (
	"errors"
	"fmt"
)

// Error represents a consistency or usage failure detected by the core.
//
// Error includes structured fields so the CLI can render a stable code and
// the journal can record which task was involved.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Position is the full position string involved, if any ("3", "3a").
	Position string

	// Name is the task name involved, if any.
	Name string

	// Err is the underlying cause, if any.
	Err error
}

// Code categorizes organizer errors.
type Code string

const (
	// ConfigMissing indicates the configuration document does not exist.
	ConfigMissing Code = "CONFIG_MISSING"

	// ConfigInvalid indicates the configuration document violates its schema.
	ConfigInvalid Code = "CONFIG_INVALID"

	// MalformedPosition indicates a position string could not be parsed.
	MalformedPosition Code = "MALFORMED_POSITION"

	// PositionOutOfRange indicates an order outside 1..groupCount+1.
	PositionOutOfRange Code = "POSITION_OUT_OF_RANGE"

	// DuplicateSlot indicates a parallel slot letter that is already taken.
	DuplicateSlot Code = "DUPLICATE_SLOT"

	// MissingFolder indicates a configured task has no folder on disk.
	MissingFolder Code = "MISSING_FOLDER"

	// DuplicatePosition indicates two managed folders claim the same position.
	DuplicatePosition Code = "DUPLICATE_POSITION"

	// OrderGap indicates the configured orders do not form 1..N.
	OrderGap Code = "ORDER_GAP"

	// ConversionDeclined indicates the user refused a serial/parallel rename.
	ConversionDeclined Code = "CONVERSION_DECLINED"

	// OperationDeclined indicates the user refused a destructive step.
	OperationDeclined Code = "OPERATION_DECLINED"

	// InvalidGroupKind indicates an operation that does not fit the group's
	// serial/parallel kind.
	InvalidGroupKind Code = "INVALID_GROUP_KIND"

	// TaskNotFound indicates no task exists at the requested position.
	TaskNotFound Code = "TASK_NOT_FOUND"

	// InvalidName indicates a task name that cannot be used as a folder suffix.
	InvalidName Code = "INVALID_NAME"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Position != "" && e.Name != "" {
		msg = fmt.Sprintf("%s (position=%s, name=%s)", msg, e.Position, e.Name)
	} else if e.Position != "" {
		msg = fmt.Sprintf("%s (position=%s)", msg, e.Position)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error carrying an underlying cause.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// At attaches a position to the error and returns it.
func (e *Error) At(position string) *Error {
	e.Position = position
	return e
}

// Named attaches a task name to the error and returns it.
func (e *Error) Named(name string) *Error {
	e.Name = name
	return e
}

// Is reports whether err is a diag.Error with the given code.
// Uses errors.As to handle wrapped errors.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of the first diag.Error in err's chain,
// or "" if there is none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// NewMissingFolder creates the error raised when a configured task has no
// backing folder.
func NewMissingFolder(position, name string) *Error {
	return &Error{
		Code:     MissingFolder,
		Message:  fmt.Sprintf("folder for task %s (%s) not found", position, name),
		Position: position,
		Name:     name,
	}
}

// NewOutOfRange creates the error raised when an order cannot be addressed.
func NewOutOfRange(position string, order, max int) *Error {
	return &Error{
		Code:     PositionOutOfRange,
		Message:  fmt.Sprintf("order must be between 1 and %d (got %d)", max, order),
		Position: position,
	}
}
