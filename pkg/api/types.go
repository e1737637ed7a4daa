package api

import "github.com/careroute/concierge/pkg/storage"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one prior turn as replayed by the client. Any structured data
// the client attached to an assistant turn (facility cards and the like) is
// not part of this type and is dropped on decode.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SessionContext carries the caller's optional journey and user identifiers.
// Both are frequently absent; tools that need them answer with guidance.
type SessionContext struct {
	JourneyID string `json:"journeyId,omitempty"`
	UserID    string `json:"userId,omitempty"`
}

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	Messages    []Message      `json:"messages"`
	UserMessage string         `json:"userMessage"`
	Context     SessionContext `json:"context"`
}

// ChatResponse is the body of a successful chat turn.
type ChatResponse struct {
	Message    string             `json:"message"`
	Facilities []storage.Facility `json:"facilities,omitempty"`
	JourneyID  string             `json:"journeyId,omitempty"`
}

// ErrorBody is the body of a failed chat turn. Error is a stable code,
// Message is safe to show to the user.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
