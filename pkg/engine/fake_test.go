package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/careroute/concierge/pkg/api"
	"github.com/careroute/concierge/pkg/provider"
	"github.com/careroute/concierge/pkg/storage"
	"github.com/careroute/concierge/pkg/tools"
)

// scriptedGateway returns a fixed reply and remembers the conversation it
// was asked about.
type scriptedGateway struct {
	segments []provider.Segment
	err      error
	block    bool
	calls    int
	last     *provider.Conversation
}

func (g *scriptedGateway) Name() string { return "scripted" }

func (g *scriptedGateway) Converse(ctx context.Context, conv *provider.Conversation) (*provider.Reply, error) {
	g.calls++
	g.last = conv
	if g.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if g.err != nil {
		return nil, g.err
	}
	return &provider.Reply{Segments: g.segments, Usage: provider.Usage{InputTokens: 10, OutputTokens: 5}}, nil
}

func (g *scriptedGateway) Close() error { return nil }

func text(s string) provider.Segment { return provider.TextSegment{Text: s} }

func call(name string, args map[string]any) provider.Segment {
	return provider.ToolCallSegment{Call: tools.Call{ID: "call_" + name, Name: name, Arguments: args}}
}

// failingHistory rejects every append.
type failingHistory struct {
	appends int
}

func (f *failingHistory) AppendTurns(context.Context, string, ...storage.ConversationTurn) error {
	f.appends++
	return errors.New("history table unavailable")
}

func (f *failingHistory) ListTurns(context.Context, string) ([]storage.ConversationTurn, error) {
	return nil, nil
}

func chatRequest(utterance string, sc api.SessionContext) *api.ChatRequest {
	return &api.ChatRequest{UserMessage: utterance, Context: sc}
}

func mustEngine(t *testing.T, opts Options, cfg Config) *Engine {
	t.Helper()
	e, err := New(opts, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}
