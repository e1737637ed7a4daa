package api

import (
	"fmt"
	"strings"
)

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MaxMessages       int
	MaxMessageLength  int
	MaxUtteranceBytes int
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxMessages:       200,
		MaxMessageLength:  32 * 1024,
		MaxUtteranceBytes: 8 * 1024,
	}
}

// ValidateRequest checks a ChatRequest for validity. It returns an *APIError
// describing the first validation failure, or nil if the request is valid.
func ValidateRequest(req *ChatRequest, cfg ValidationConfig) *APIError {
	if strings.TrimSpace(req.UserMessage) == "" {
		return NewInvalidRequestError("userMessage", "userMessage is required")
	}

	if cfg.MaxUtteranceBytes > 0 && len(req.UserMessage) > cfg.MaxUtteranceBytes {
		return NewInvalidRequestError("userMessage",
			fmt.Sprintf("userMessage exceeds maximum of %d bytes", cfg.MaxUtteranceBytes))
	}

	if cfg.MaxMessages > 0 && len(req.Messages) > cfg.MaxMessages {
		return NewInvalidRequestError("messages",
			fmt.Sprintf("messages exceeds maximum of %d entries", cfg.MaxMessages))
	}

	for i, m := range req.Messages {
		switch m.Role {
		case RoleUser, RoleAssistant:
		default:
			return NewInvalidRequestError(fmt.Sprintf("messages[%d].role", i),
				fmt.Sprintf("role must be %q or %q, got %q", RoleUser, RoleAssistant, m.Role))
		}
		if cfg.MaxMessageLength > 0 && len(m.Content) > cfg.MaxMessageLength {
			return NewInvalidRequestError(fmt.Sprintf("messages[%d].content", i),
				fmt.Sprintf("content exceeds maximum of %d bytes", cfg.MaxMessageLength))
		}
	}

	return nil
}
