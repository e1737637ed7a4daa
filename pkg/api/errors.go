package api

import "fmt"

// ErrorType represents the category of an API error.
type ErrorType string

const (
	ErrorTypeServerError       ErrorType = "server_error"
	ErrorTypeInvalidRequest    ErrorType = "invalid_request"
	ErrorTypeEngineUnavailable ErrorType = "engine_unavailable"
	ErrorTypeTooManyRequests   ErrorType = "too_many_requests"
)

// APIError is a transport-level failure. Only errors of this kind (or
// plain Go errors, treated as server errors) cross the chat boundary;
// tool-level problems are folded into the reply text instead.
type APIError struct {
	Type    ErrorType `json:"type"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewInvalidRequestError creates an APIError for a malformed chat request.
func NewInvalidRequestError(param, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Param:   param,
		Message: message,
	}
}

// NewServerError creates an APIError for internal server errors.
func NewServerError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeServerError,
		Message: message,
	}
}

// NewEngineError creates an APIError for reasoning-engine failures
// (unreachable backend, timeout, malformed response).
func NewEngineError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeEngineUnavailable,
		Message: message,
	}
}

// NewTooManyRequestsError creates an APIError for upstream quota errors.
func NewTooManyRequestsError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeTooManyRequests,
		Message: message,
	}
}
