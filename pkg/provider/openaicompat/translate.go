package openaicompat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/careroute/concierge/pkg/provider"
	"github.com/careroute/concierge/pkg/tools"
)

// TranslateRequest converts a Conversation into a Chat Completions request:
// system instructions first, then the replayed history, then the new user
// utterance.
func TranslateRequest(conv *provider.Conversation) *ChatCompletionRequest {
	req := &ChatCompletionRequest{Model: conv.Model}

	if conv.Instructions != "" {
		req.Messages = append(req.Messages, textMessage("system", conv.Instructions))
	}
	for _, t := range conv.History {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		req.Messages = append(req.Messages, textMessage(string(t.Role), t.Text))
	}
	req.Messages = append(req.Messages, textMessage("user", conv.Utterance))

	for _, d := range conv.Tools {
		req.Tools = append(req.Tools, ChatTool{
			Type: "function",
			Function: ChatFunctionDef{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Schema(),
			},
		})
	}

	if conv.MaxTokens > 0 {
		n := conv.MaxTokens
		req.MaxTokens = &n
	}
	return req
}

func textMessage(role, text string) ChatMessage {
	// Marshaling a string cannot fail.
	content, _ := json.Marshal(text)
	return ChatMessage{Role: role, Content: content}
}

// TranslateResponse converts the first choice into reply segments. The
// message text (if any) comes first, followed by the tool calls in the
// order the backend listed them. Undecodable arguments stay on the call
// as ArgumentsErr.
func TranslateResponse(resp *ChatCompletionResponse) (*provider.Reply, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("response has no choices")
	}
	msg := resp.Choices[0].Message

	text, err := messageText(msg.Content)
	if err != nil {
		return nil, err
	}

	reply := &provider.Reply{Model: resp.Model}
	if text != "" {
		reply.Segments = append(reply.Segments, provider.TextSegment{Text: text})
	}
	for _, tc := range msg.ToolCalls {
		if tc.Function.Name == "" {
			return nil, fmt.Errorf("tool call %q has no function name", tc.ID)
		}
		args, err := provider.DecodeArguments([]byte(tc.Function.Arguments))
		reply.Segments = append(reply.Segments, provider.ToolCallSegment{
			Call: tools.Call{ID: tc.ID, Name: tc.Function.Name, Arguments: args, ArgumentsErr: err},
		})
	}

	if resp.Usage != nil {
		reply.Usage = provider.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		}
	}
	return reply, nil
}

// messageText flattens a content field that may be absent, null, a string
// or an array of text parts.
func messageText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var parts []ChatContentPart
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", fmt.Errorf("unsupported message content: %w", err)
	}
	var b strings.Builder
	for _, p := range parts {
		if p.Type == "text" {
			b.WriteString(p.Text)
		}
	}
	return b.String(), nil
}
