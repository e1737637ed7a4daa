package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/careroute/concierge/pkg/api"
	"github.com/careroute/concierge/pkg/transport"
)

// CORS values of the chat endpoint. The browser client calls it directly
// from the marketplace origin.
const (
	corsAllowOrigin  = "*"
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
	corsAllowMethods = "POST, OPTIONS"
)

// Config holds configuration for the chat adapter.
type Config struct {
	// MaxBodySize caps the request body in bytes (default 1 MiB).
	MaxBodySize int64
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{MaxBodySize: 1 << 20}
}

// Adapter serves the chat endpoint over HTTP. It accepts POST, answers
// the OPTIONS preflight and rejects every other method.
type Adapter struct {
	chat   transport.ChatService
	config Config
}

// NewAdapter creates a chat adapter. Middleware is applied to the
// ChatService in the given order.
func NewAdapter(chat transport.ChatService, cfg Config, middlewares ...transport.Middleware) *Adapter {
	if len(middlewares) > 0 {
		chat = transport.Chain(middlewares...)(chat)
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}
	return &Adapter{chat: chat, config: cfg}
}

// ServeHTTP implements http.Handler.
func (a *Adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w.Header())

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodPost:
		a.handleChat(w, r)
	default:
		w.Header().Set("Allow", corsAllowMethods)
		transport.WriteJSON(w, http.StatusMethodNotAllowed, api.ErrorBody{
			Error:   "method_not_allowed",
			Message: fmt.Sprintf("%s is not supported, use POST", r.Method),
		})
	}
}

func (a *Adapter) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		msg := "invalid JSON: " + err.Error()
		if errors.As(err, &maxBytesErr) {
			msg = fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)
		}
		transport.WriteError(w, api.NewInvalidRequestError("body", msg))
		return
	}

	resp, err := a.chat.Chat(r.Context(), &req)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}

func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", corsAllowOrigin)
	h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
	h.Set("Content-Type", "application/json")
}
