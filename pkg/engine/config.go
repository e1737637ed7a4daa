package engine

import "time"

// Config holds configuration for the chat engine.
type Config struct {
	// Model is passed to the gateway on every call.
	Model string

	// Instructions is the fixed system prompt.
	Instructions string

	// MaxTokens caps the engine reply. Zero uses the gateway default.
	MaxTokens int

	// MaxHistoryTurns is how many of the most recent prior turns are
	// replayed to the engine. Zero or negative means the default of 20.
	MaxHistoryTurns int

	// Timeout bounds the gateway call. Zero means 60s.
	Timeout time.Duration

	// DefaultGreeting replaces an empty reply.
	DefaultGreeting string
}

const defaultGreeting = "Hi! I'm your medical travel concierge. Tell me which procedure you're considering and I can find clinics, build a shortlist and compare options for you."

func (c Config) maxHistoryTurns() int {
	if c.MaxHistoryTurns <= 0 {
		return 20
	}
	return c.MaxHistoryTurns
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return c.Timeout
}

func (c Config) greeting() string {
	if c.DefaultGreeting == "" {
		return defaultGreeting
	}
	return c.DefaultGreeting
}
