// Package mcp implements the Model Context Protocol server for notemcp.
package mcp

import (
	"context"
	"errors"
	"fmt"

	noteerrors "github.com/Aman-CERP/notemcp/internal/errors"
)

// Custom MCP error codes for notemcp.
const (
	// ErrCodeTimeout indicates the request timed out or was canceled.
	ErrCodeTimeout = -32003

	// ErrCodeNoteNotFound indicates the note id is unknown.
	ErrCodeNoteNotFound = -32004

	// ErrCodeReadFailed indicates a note could not be read.
	ErrCodeReadFailed = -32005

	// Standard JSON-RPC error codes.
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

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

	var noteErr *noteerrors.NoteError
	if errors.As(err, &noteErr) {
		return mapNoteError(noteErr)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{
		Code:    ErrCodeInvalidParams,
		Message: msg,
	}
}

// NewNoteNotFoundError creates an error for an unknown note id.
func NewNoteNotFoundError(id string) *MCPError {
	return &MCPError{
		Code:    ErrCodeNoteNotFound,
		Message: fmt.Sprintf("Note '%s' not found.", id),
	}
}

func mapNoteError(ne *noteerrors.NoteError) *MCPError {
	message := ne.Message
	if ne.Suggestion != "" {
		message = fmt.Sprintf("%s %s", ne.Message, ne.Suggestion)
	}

	switch ne.Code {
	case noteerrors.ErrCodeNoteNotFound:
		return &MCPError{Code: ErrCodeNoteNotFound, Message: message}
	case noteerrors.ErrCodeReadFailed:
		return &MCPError{Code: ErrCodeReadFailed, Message: message}
	}

	if ne.Category == noteerrors.CategoryValidation {
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	}
	return &MCPError{Code: ErrCodeInternalError, Message: message}
}
