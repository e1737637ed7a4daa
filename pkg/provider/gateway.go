package provider

import (
	"context"

	"github.com/careroute/concierge/pkg/api"
	"github.com/careroute/concierge/pkg/tools"
)

// Gateway abstracts the reasoning engine. Implementations must be safe for
// concurrent use by multiple goroutines.
type Gateway interface {
	// Name returns the provider identifier (e.g., "openai", "anthropic").
	Name() string

	// Converse performs one engine call. Any error is a transport failure
	// for the whole chat turn.
	Converse(ctx context.Context, conv *Conversation) (*Reply, error)

	// Close releases provider resources (HTTP clients, connections).
	Close() error
}

// Turn is one prior message replayed to the engine. Structured payloads
// are never part of a turn.
type Turn struct {
	Role api.Role
	Text string
}

// Conversation is everything the engine sees for one chat turn.
type Conversation struct {
	Model        string
	Instructions string
	Tools        []tools.Definition
	History      []Turn
	Utterance    string

	// MaxTokens caps the reply length. Zero uses the adapter default.
	MaxTokens int
}

// Usage reports token counts for one engine call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Reply is the engine's answer in emission order.
type Reply struct {
	Segments []Segment
	Usage    Usage
	Model    string
}

// Segment is one unit of a reply: TextSegment or ToolCallSegment.
type Segment interface {
	isSegment()
}

// TextSegment is literal assistant text.
type TextSegment struct {
	Text string
}

// ToolCallSegment is a tool invocation requested by the engine.
type ToolCallSegment struct {
	Call tools.Call
}

func (TextSegment) isSegment()     {}
func (ToolCallSegment) isSegment() {}
