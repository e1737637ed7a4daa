package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/careroute/concierge/pkg/api"
)

// Stable error codes of the client-facing error body.
const (
	CodeInvalidRequest    = "invalid_request"
	CodeEngineUnavailable = "engine_unavailable"
	CodeInternal          = "internal_error"
)

const (
	messageInvalidRequest = "I couldn't read that message. Please try sending it again."
	messageEngine         = "I'm having trouble thinking right now. Please try again in a moment."
	messageInternal       = "Something went wrong on our side. Please try again in a moment."
)

// ErrorBodyFor maps a pipeline error to the client-facing body. The
// message never carries engine or store detail.
func ErrorBodyFor(err error) api.ErrorBody {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		return api.ErrorBody{Error: CodeInternal, Message: messageInternal}
	}
	switch apiErr.Type {
	case api.ErrorTypeInvalidRequest:
		return api.ErrorBody{Error: CodeInvalidRequest, Message: messageInvalidRequest}
	case api.ErrorTypeEngineUnavailable, api.ErrorTypeTooManyRequests:
		return api.ErrorBody{Error: CodeEngineUnavailable, Message: messageEngine}
	default:
		return api.ErrorBody{Error: CodeInternal, Message: messageInternal}
	}
}

// WriteError writes the error body for err. Every pipeline failure is a
// 500; clients distinguish causes by the error code.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, http.StatusInternalServerError, ErrorBodyFor(err))
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
