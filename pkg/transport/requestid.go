package transport

import (
	"context"

	"github.com/google/uuid"

	"github.com/careroute/concierge/pkg/api"
)

// RequestID returns middleware that makes sure every turn carries a
// request ID. An ID already in the context (from the X-Request-ID header)
// is kept.
func RequestID() Middleware {
	return func(next ChatService) ChatService {
		return ChatServiceFunc(func(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
			if RequestIDFromContext(ctx) == "" {
				ctx = ContextWithRequestID(ctx, NewRequestID())
			}
			return next.Chat(ctx, req)
		})
	}
}

// NewRequestID generates a request ID.
func NewRequestID() string {
	return uuid.NewString()
}
