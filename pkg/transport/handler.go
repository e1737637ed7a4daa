package transport

import (
	"context"

	"github.com/careroute/concierge/pkg/api"
)

// ChatService handles one chat turn. An error means the whole turn failed
// at the transport level; tool problems are part of the reply text.
type ChatService interface {
	Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error)
}

// ChatServiceFunc is an adapter that allows using an ordinary function
// as a ChatService.
type ChatServiceFunc func(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error)

// Chat calls f(ctx, req).
func (f ChatServiceFunc) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	return f(ctx, req)
}

// HealthChecker reports readiness of a backing dependency.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
