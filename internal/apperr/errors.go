// Package apperr defines the error taxonomy shared by scantag's components.
//
// Every failure a user action can produce is an *Error carrying an
// ErrorType. Command handlers turn these into notifications with
// ShortMessage and TroubleshootingHint; nothing in the taxonomy is fatal to
// the process.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypePlatformUnsupported means serial ports cannot be enumerated on this OS
	ErrTypePlatformUnsupported ErrorType = iota
	// ErrTypeConnection means the device could not be opened or failed while open
	ErrTypeConnection
	// ErrTypeValidation means user input was rejected (empty name, no selection)
	ErrTypeValidation
	// ErrTypeSelection means an operation required a selected row and none was
	ErrTypeSelection
	// ErrTypeNotFound means a row handle did not refer to a live row
	ErrTypeNotFound
	// ErrTypeIO means the output file could not be written or read
	ErrTypeIO
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypePlatformUnsupported:
		return "Unsupported Platform"
	case ErrTypeConnection:
		return "Connection Error"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeSelection:
		return "Selection Error"
	case ErrTypeNotFound:
		return "Not Found"
	case ErrTypeIO:
		return "I/O Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is the error value returned by scantag operations.
type Error struct {
	Type    ErrorType // Category of error
	Message string    // Human-readable error message
	Err     error     // Underlying error (if any)
	Port    string    // Serial port involved (if any)
	Path    string    // File path involved (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewPlatformUnsupportedError reports an operating system without serial enumeration rules.
func NewPlatformUnsupportedError(goos string) *Error {
	return &Error{
		Type:    ErrTypePlatformUnsupported,
		Message: fmt.Sprintf("unsupported platform %q", goos),
	}
}

// NewConnectionError reports a device open or read failure.
func NewConnectionError(port, message string, err error) *Error {
	return &Error{
		Type:    ErrTypeConnection,
		Message: message,
		Err:     err,
		Port:    port,
	}
}

// NewValidationError reports rejected user input.
func NewValidationError(message string) *Error {
	return &Error{
		Type:    ErrTypeValidation,
		Message: message,
	}
}

// NewSelectionError reports a missing row selection.
func NewSelectionError(message string) *Error {
	return &Error{
		Type:    ErrTypeSelection,
		Message: message,
	}
}

// NewNotFoundError reports a stale or unknown row handle.
func NewNotFoundError(message string) *Error {
	return &Error{
		Type:    ErrTypeNotFound,
		Message: message,
	}
}

// NewIOError reports a file read or write failure.
func NewIOError(path, message string, err error) *Error {
	return &Error{
		Type:    ErrTypeIO,
		Message: message,
		Err:     err,
		Path:    path,
	}
}

// TypeOf returns the ErrorType of the first *Error in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Type, true
	}
	return 0, false
}

func isType(err error, t ErrorType) bool {
	got, ok := TypeOf(err)
	return ok && got == t
}

// IsPlatformUnsupported checks if an error is a platform error
func IsPlatformUnsupported(err error) bool { return isType(err, ErrTypePlatformUnsupported) }

// IsConnection checks if an error is a connection error
func IsConnection(err error) bool { return isType(err, ErrTypeConnection) }

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool { return isType(err, ErrTypeValidation) }

// IsSelection checks if an error is a selection error
func IsSelection(err error) bool { return isType(err, ErrTypeSelection) }

// IsNotFound checks if an error is a not-found error
func IsNotFound(err error) bool { return isType(err, ErrTypeNotFound) }

// IsIO checks if an error is an I/O error
func IsIO(err error) bool { return isType(err, ErrTypeIO) }

// ShortMessage returns a concise, user-friendly error message
func ShortMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}

	switch e.Type {
	case ErrTypePlatformUnsupported:
		return "Serial ports cannot be listed on this platform"
	case ErrTypeConnection:
		if e.Port != "" {
			return fmt.Sprintf("Could not use serial port %s", e.Port)
		}
		return "Serial connection failed"
	case ErrTypeIO:
		if e.Path != "" {
			return fmt.Sprintf("Could not write %s", e.Path)
		}
		return "File operation failed"
	default:
		return capitalize(e.Message)
	}
}

// TroubleshootingHint returns user-facing advice for an error
func TroubleshootingHint(err error) []string {
	var e *Error
	if !errors.As(err, &e) {
		return nil
	}

	switch e.Type {
	case ErrTypePlatformUnsupported:
		return []string{
			"Supported platforms are Linux, macOS and Windows",
		}
	case ErrTypeConnection:
		return []string{
			"Check that the scanner is plugged in",
			"Make sure no other program has the port open",
			"On Linux, your user may need to be in the 'dialout' group",
		}
	case ErrTypeIO:
		return []string{
			"Check that the output directory exists and is writable",
			"Check free disk space",
			"Your scanned data has been kept; try saving again",
		}
	case ErrTypeValidation, ErrTypeSelection:
		return []string{
			"Select a row with the arrow keys first",
		}
	default:
		return nil
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
