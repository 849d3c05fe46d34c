// Package mcp implements the Model Context Protocol server for docsyn.
package mcp

import (
	"context"
	"errors"
	"fmt"

	derrors "github.com/Aman-CERP/docsyn/internal/errors"
)

// Custom MCP error codes for docsyn.
const (
	// ErrCodeSourceNotFound indicates no loader could resolve a dictionary.
	ErrCodeSourceNotFound = -32001

	// ErrCodeNoDictionary indicates the server has no dictionary installed.
	ErrCodeNoDictionary = -32002

	// ErrCodeTimeout indicates the request timed out or was canceled.
	ErrCodeTimeout = -32003

	// Standard JSON-RPC error codes.
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// ErrNoDictionary is returned by tools that need a dictionary when the
// configuration names none.
var ErrNoDictionary = errors.New("no dictionary configured")

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var de *derrors.DocsynError
	if errors.As(err, &de) {
		return mapDocsynError(de)
	}

	switch {
	case errors.Is(err, ErrNoDictionary):
		return &MCPError{
			Code:    ErrCodeNoDictionary,
			Message: "No dictionary configured. Set synonyms.dictionary in .docsyn.yaml.",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an error for invalid parameters.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}

func mapDocsynError(de *derrors.DocsynError) *MCPError {
	message := de.Message
	if de.Suggestion != "" {
		message = fmt.Sprintf("%s. %s", de.Message, de.Suggestion)
	}

	switch {
	case de.Code == derrors.ErrCodeSourceNotFound:
		return &MCPError{Code: ErrCodeSourceNotFound, Message: message}
	case de.Category == derrors.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}
