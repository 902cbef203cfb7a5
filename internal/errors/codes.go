// Package errors provides structured error handling for notemcp.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Note I/O errors
//   - 4XX: Validation errors (sources, inputs)
//   - 5XX: Internal errors (search backends)
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates note lookup and read errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid  = "ERR_101_CONFIG_INVALID"
	ErrCodeConfigNotFound = "ERR_102_CONFIG_NOT_FOUND"

	// Note errors (200-299)
	ErrCodeNoteNotFound = "ERR_201_NOTE_NOT_FOUND"
	ErrCodeReadFailed   = "ERR_202_READ_FAILED"

	// Validation errors (400-499)
	ErrCodeInvalidSource = "ERR_401_INVALID_SOURCE"
	ErrCodeInvalidInput  = "ERR_402_INVALID_INPUT"

	// Internal errors (500-599)
	ErrCodeInternal         = "ERR_501_INTERNAL"
	ErrCodeBackendExecution = "ERR_502_BACKEND_EXECUTION"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeInvalidSource, ErrCodeConfigInvalid:
		// Aborts the current setup step.
		return SeverityFatal
	case ErrCodeBackendExecution:
		// Always recovered by the in-memory fallback.
		return SeverityWarning
	default:
		return SeverityError
	}
}
