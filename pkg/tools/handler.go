package tools

import "context"

// Session is the caller context a handler runs with. Either field may be
// empty; handlers that need one answer with a PreconditionUnmet outcome.
type Session struct {
	JourneyID string
	UserID    string
}

// Handler executes one validated tool call. It reports every failure
// through the returned Outcome and must not panic.
type Handler func(ctx context.Context, sess Session, args Arguments) Outcome
