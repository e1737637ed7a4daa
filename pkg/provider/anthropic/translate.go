package anthropic

import (
	"fmt"
	"strings"

	"github.com/careroute/concierge/pkg/api"
	"github.com/careroute/concierge/pkg/provider"
	"github.com/careroute/concierge/pkg/tools"
)

// translateRequest builds a Messages request. The API requires the first
// message to come from the user and roles to alternate, so the history is
// normalized: leading assistant turns are dropped, consecutive turns from
// the same role are merged, and the utterance joins a trailing user turn.
func translateRequest(conv *provider.Conversation, maxTokens int) *messagesRequest {
	req := &messagesRequest{
		Model:     conv.Model,
		MaxTokens: maxTokens,
		System:    conv.Instructions,
	}
	if conv.MaxTokens > 0 {
		req.MaxTokens = conv.MaxTokens
	}

	turns := append([]provider.Turn(nil), conv.History...)
	turns = append(turns, provider.Turn{Role: api.RoleUser, Text: conv.Utterance})
	req.Messages = normalize(turns)

	for _, d := range conv.Tools {
		req.Tools = append(req.Tools, toolDef{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.Schema(),
		})
	}
	return req
}

func normalize(turns []provider.Turn) []message {
	var out []message
	for _, t := range turns {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		role := string(t.Role)
		if role != string(api.RoleAssistant) {
			role = string(api.RoleUser)
		}
		if len(out) == 0 && role != string(api.RoleUser) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content += "\n\n" + t.Text
			continue
		}
		out = append(out, message{Role: role, Content: t.Text})
	}
	return out
}

// translateResponse maps content blocks to segments in order. Unknown
// block types (thinking and the like) are skipped.
func translateResponse(resp *messagesResponse) (*provider.Reply, error) {
	reply := &provider.Reply{
		Model: resp.Model,
		Usage: provider.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}
	for _, b := range resp.Content {
		switch b.Type {
		case "text":
			if b.Text != "" {
				reply.Segments = append(reply.Segments, provider.TextSegment{Text: b.Text})
			}
		case "tool_use":
			if b.Name == "" {
				return nil, fmt.Errorf("tool_use block %q has no name", b.ID)
			}
			args, err := provider.DecodeArguments(b.Input)
			reply.Segments = append(reply.Segments, provider.ToolCallSegment{
				Call: tools.Call{ID: b.ID, Name: b.Name, Arguments: args, ArgumentsErr: err},
			})
		}
	}
	return reply, nil
}
