package errors

import (
	"errors"
	"fmt"
)

// NoteError is the structured error type for notemcp.
// It provides rich context for error handling, logging, and user presentation.
type NoteError struct {
	// Code is the unique error code (e.g., "ERR_201_NOTE_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *NoteError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *NoteError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with NoteError.
func (e *NoteError) Is(target error) bool {
	if t, ok := target.(*NoteError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *NoteError) WithDetail(key, value string) *NoteError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *NoteError) WithSuggestion(suggestion string) *NoteError {
	e.Suggestion = suggestion
	return e
}

// New creates a new NoteError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *NoteError {
	return &NoteError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a NoteError from an existing error.
func Wrap(code string, err error) *NoteError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// Sentinel values for errors.Is comparisons.
var (
	ErrNotFound      = &NoteError{Code: ErrCodeNoteNotFound}
	ErrRead          = &NoteError{Code: ErrCodeReadFailed}
	ErrInvalidSource = &NoteError{Code: ErrCodeInvalidSource}
	ErrBackend       = &NoteError{Code: ErrCodeBackendExecution}
	ErrInvalidInput  = &NoteError{Code: ErrCodeInvalidInput}
)

// InvalidSource creates a registration-time error for a root directory that
// does not exist or is not a directory.
func InvalidSource(path string, cause error) *NoteError {
	return New(ErrCodeInvalidSource, fmt.Sprintf("invalid source directory: %s", path), cause).
		WithDetail("path", path).
		WithSuggestion("Check that the path exists and is a directory.")
}

// NotFound creates an error for an identifier absent from the index.
func NotFound(noteID string) *NoteError {
	return New(ErrCodeNoteNotFound, fmt.Sprintf("note ID '%s' not found in index", noteID), nil).
		WithDetail("note_id", noteID).
		WithSuggestion("Use note_list to see available note IDs.")
}

// ReadFailed creates an error for an I/O or decoding failure reading a note.
func ReadFailed(noteID string, cause error) *NoteError {
	return New(ErrCodeReadFailed, fmt.Sprintf("failed to read note %s: %v", noteID, cause), cause).
		WithDetail("note_id", noteID)
}

// BackendExecution creates an internal error for a search backend that
// could not run. It is always recovered by falling back to the in-memory scan.
func BackendExecution(backend string, cause error) *NoteError {
	return New(ErrCodeBackendExecution, fmt.Sprintf("%s backend failed: %v", backend, cause), cause).
		WithDetail("backend", backend)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *NoteError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *NoteError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *NoteError {
	return New(ErrCodeInternal, message, cause)
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsReadError reports whether err is a ReadFailed error.
func IsReadError(err error) bool {
	return errors.Is(err, ErrRead)
}

// IsInvalidSource reports whether err is an InvalidSource error.
func IsInvalidSource(err error) bool {
	return errors.Is(err, ErrInvalidSource)
}

// IsBackend reports whether err is a BackendExecution error.
func IsBackend(err error) bool {
	return errors.Is(err, ErrBackend)
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	var ne *NoteError
	if errors.As(err, &ne) {
		return ne.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a NoteError.
// Returns empty string if not a NoteError.
func GetCode(err error) string {
	var ne *NoteError
	if errors.As(err, &ne) {
		return ne.Code
	}
	return ""
}

// GetCategory extracts the category from a NoteError.
func GetCategory(err error) Category {
	var ne *NoteError
	if errors.As(err, &ne) {
		return ne.Category
	}
	return ""
}
