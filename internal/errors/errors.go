package errors

import (
	"fmt"
)

// DocsynError is the structured error type for docsyn.
// It carries enough context for logging, CLI presentation and MCP error mapping.
type DocsynError struct {
	// Code is the unique error code (e.g., "ERR_201_SOURCE_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Source, Validation, Internal).
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
func (e *DocsynError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *DocsynError) Unwrap() error {
	return e.Cause
}

// Is matches by code so the sentinels below work with errors.Is.
func (e *DocsynError) Is(target error) bool {
	if t, ok := target.(*DocsynError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *DocsynError) WithDetail(key, value string) *DocsynError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *DocsynError) WithSuggestion(suggestion string) *DocsynError {
	e.Suggestion = suggestion
	return e
}

// Sentinels for errors.Is checks. Only the code is compared.
var (
	ErrSourceNotFound = &DocsynError{Code: ErrCodeSourceNotFound}
	ErrSourceInvalid  = &DocsynError{Code: ErrCodeSourceInvalid}
	ErrInvalidQuery   = &DocsynError{Code: ErrCodeInvalidQuery}
	ErrConfigInvalid  = &DocsynError{Code: ErrCodeConfigInvalid}
)

// New creates a new DocsynError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *DocsynError {
	return &DocsynError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a DocsynError from an existing error.
// The error's message becomes the DocsynError message.
func Wrap(code string, err error) *DocsynError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *DocsynError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// SourceNotFound reports a dictionary source no loader could resolve.
func SourceNotFound(name string) *DocsynError {
	return New(ErrCodeSourceNotFound, fmt.Sprintf("dictionary source %q not found", name), nil).
		WithDetail("source", name).
		WithSuggestion("Check the dictionary name or add a file to one of the dictionary paths")
}

// SourceError creates an error for a source that exists but cannot be used.
func SourceError(name, message string, cause error) *DocsynError {
	return New(ErrCodeSourceInvalid, message, cause).WithDetail("source", name)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *DocsynError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *DocsynError {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	if de, ok := err.(*DocsynError); ok {
		return de.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a DocsynError.
// Returns empty string if not a DocsynError.
func GetCode(err error) string {
	if de, ok := err.(*DocsynError); ok {
		return de.Code
	}
	return ""
}

// GetCategory extracts the category from a DocsynError.
func GetCategory(err error) Category {
	if de, ok := err.(*DocsynError); ok {
		return de.Category
	}
	return ""
}
