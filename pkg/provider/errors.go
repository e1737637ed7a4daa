package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/careroute/concierge/pkg/api"
)

// StatusOverloaded is the non-standard status some engines use when they
// shed load.
const StatusOverloaded = 529

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4096

// ResponseError maps a non-2xx engine response to an APIError.
//
//	401, 403     server error (our credentials are wrong, not the user's)
//	429          too many requests
//	5xx, 529     engine unavailable
//	other        server error
func ResponseError(resp *http.Response) *api.APIError {
	message := errorMessage(resp.Body)
	status := resp.StatusCode

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return api.NewServerError(orDefault(message, "engine authentication failed"))
	case status == http.StatusTooManyRequests:
		return api.NewTooManyRequestsError(orDefault(message, "engine rate limit exceeded"))
	case status == StatusOverloaded || status >= http.StatusInternalServerError:
		return api.NewEngineError(orDefault(message, fmt.Sprintf("engine server error (HTTP %d)", status)))
	default:
		return api.NewServerError(orDefault(message, fmt.Sprintf("unexpected engine error (HTTP %d)", status)))
	}
}

// TransportError wraps a failure to reach the engine at all.
func TransportError(err error) *api.APIError {
	return api.NewEngineError("engine connection error: " + err.Error())
}

// errorMessage pulls error.message out of an OpenAI or Anthropic style
// error body. Both use {"error": {"message": ...}}.
func errorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(data, &envelope) != nil {
		return ""
	}
	return envelope.Error.Message
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
