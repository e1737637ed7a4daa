package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/careroute/concierge/pkg/api"
)

// Logging returns middleware that emits one structured log entry per chat
// turn. Failures are logged with full detail here because the client only
// ever sees a generic message.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ChatService) ChatService {
		return ChatServiceFunc(func(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
			start := time.Now()

			resp, err := next.Chat(ctx, req)

			attrs := []slog.Attr{
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.Int("history", len(req.Messages)),
				slog.Bool("has_journey", req.Context.JourneyID != ""),
				slog.Bool("has_user", req.Context.UserID != ""),
				slog.Duration("duration", time.Since(start)),
			}

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "chat turn failed", attrs...)
				return nil, err
			}

			attrs = append(attrs,
				slog.Int("facilities", len(resp.Facilities)),
				slog.Bool("journey_created", resp.JourneyID != ""),
			)
			logger.LogAttrs(ctx, slog.LevelInfo, "chat turn completed", attrs...)
			return resp, nil
		})
	}
}
