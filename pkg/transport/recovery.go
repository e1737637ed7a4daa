package transport

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/careroute/concierge/pkg/api"
)

// Recovery returns middleware that converts a panic anywhere in the
// pipeline into a server error, so the caller gets the regular 500 body.
func Recovery(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ChatService) ChatService {
		return ChatServiceFunc(func(ctx context.Context, req *api.ChatRequest) (resp *api.ChatResponse, retErr error) {
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(ctx, "panic in chat pipeline",
						"request_id", RequestIDFromContext(ctx),
						"panic", fmt.Sprint(r),
						"stack", string(debug.Stack()),
					)
					resp = nil
					retErr = api.NewServerError(fmt.Sprintf("internal server error: %v", r))
				}
			}()
			return next.Chat(ctx, req)
		})
	}
}
