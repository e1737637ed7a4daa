package provider

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/careroute/concierge/pkg/api"
)

func TestResponseError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantType    api.ErrorType
		wantMessage string
	}{
		{"unauthorized", http.StatusUnauthorized, "", api.ErrorTypeServerError, "engine authentication failed"},
		{"forbidden with body", http.StatusForbidden, `{"error":{"message":"bad key"}}`, api.ErrorTypeServerError, "bad key"},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"type":"rate_limit_error","message":"slow down"}}`, api.ErrorTypeTooManyRequests, "slow down"},
		{"server error", http.StatusBadGateway, "<html>bad gateway</html>", api.ErrorTypeEngineUnavailable, "engine server error (HTTP 502)"},
		{"overloaded", StatusOverloaded, `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`, api.ErrorTypeEngineUnavailable, "Overloaded"},
		{"bad request", http.StatusBadRequest, "", api.ErrorTypeServerError, "unexpected engine error (HTTP 400)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Body: io.NopCloser(strings.NewReader(tt.body))}
			err := ResponseError(resp)
			if err.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", err.Type, tt.wantType)
			}
			if err.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMessage)
			}
		})
	}
}

func TestTransportError(t *testing.T) {
	err := TransportError(errors.New("connection refused"))
	if err.Type != api.ErrorTypeEngineUnavailable {
		t.Errorf("Type = %q, want engine_unavailable", err.Type)
	}
	if !strings.Contains(err.Message, "connection refused") {
		t.Errorf("Message = %q, want the cause", err.Message)
	}
}
