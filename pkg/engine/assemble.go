package engine

import (
	"strings"

	"github.com/careroute/concierge/pkg/api"
	"github.com/careroute/concierge/pkg/provider"
)

// assemble builds the conversation sent to the gateway. Only the most
// recent turns are replayed; turns without text are skipped since the
// client strips their payloads and nothing else is left to replay.
func (e *Engine) assemble(req *api.ChatRequest) *provider.Conversation {
	history := req.Messages
	if limit := e.cfg.maxHistoryTurns(); len(history) > limit {
		history = history[len(history)-limit:]
	}

	turns := make([]provider.Turn, 0, len(history))
	for _, m := range history {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		turns = append(turns, provider.Turn{Role: m.Role, Text: m.Content})
	}

	return &provider.Conversation{
		Model:        e.cfg.Model,
		Instructions: e.cfg.Instructions,
		Tools:        e.registry.Definitions(),
		History:      turns,
		Utterance:    req.UserMessage,
		MaxTokens:    e.cfg.MaxTokens,
	}
}
