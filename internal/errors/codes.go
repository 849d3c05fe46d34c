// Package errors provides structured error handling for docsyn.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Dictionary source errors (lookup, read, decode)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategorySource indicates dictionary source errors.
	CategorySource Category = "SOURCE"
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
	ErrCodeConfigNotFound   = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigPermission = "ERR_103_CONFIG_PERMISSION"

	// Source errors (200-299)
	ErrCodeSourceNotFound   = "ERR_201_SOURCE_NOT_FOUND"
	ErrCodeSourceUnreadable = "ERR_202_SOURCE_UNREADABLE"
	ErrCodeSourceInvalid    = "ERR_203_SOURCE_INVALID"
	ErrCodeSourceLocked     = "ERR_204_SOURCE_LOCKED"

	// Validation errors (400-499)
	ErrCodeInvalidInput   = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidFields  = "ERR_402_INVALID_FIELDS"
	ErrCodeInvalidQuery   = "ERR_403_INVALID_QUERY"
	ErrCodeQueryEmpty     = "ERR_404_QUERY_EMPTY"
	ErrCodeUnknownFormat  = "ERR_405_UNKNOWN_FORMAT"
	ErrCodeInvalidPath    = "ERR_406_INVALID_PATH"
	ErrCodeUnknownStemmer = "ERR_407_UNKNOWN_STEMMER"

	// Internal errors (500-599)
	ErrCodeInternal    = "ERR_501_INTERNAL"
	ErrCodeIndexFailed = "ERR_502_INDEX_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// "201" from "ERR_201_SOURCE_NOT_FOUND"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategorySource
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeIndexFailed:
		return SeverityFatal
	case ErrCodeSourceLocked:
		return SeverityWarning
	}
	return SeverityError
}
