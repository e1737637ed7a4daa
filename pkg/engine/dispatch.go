package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/careroute/concierge/pkg/api"
	"github.com/careroute/concierge/pkg/debug"
	"github.com/careroute/concierge/pkg/observability"
	"github.com/careroute/concierge/pkg/provider"
	"github.com/careroute/concierge/pkg/tools"
)

const panicApology = "Sorry, something went wrong on my side while doing that. Please try again in a moment."

// turnResult is what the dispatch loop hands to the boundary and the
// persister.
type turnResult struct {
	message string

	// payload is the primary payload: the last facility list or
	// comparison produced this turn.
	payload tools.Payload

	// journeyRef is the journey the turn belongs to. It starts as the
	// session journey and follows create_journey.
	journeyRef string

	// createdJourney is set when a journey was created this turn.
	createdJourney string
}

// dispatch walks the segments in emission order. Text is appended
// verbatim, each tool call runs synchronously and its fragment is
// appended in place. No tool outcome stops the loop.
func (e *Engine) dispatch(ctx context.Context, sc api.SessionContext, segments []provider.Segment) turnResult {
	var reply strings.Builder
	res := turnResult{journeyRef: sc.JourneyID}

	for _, seg := range segments {
		switch s := seg.(type) {
		case provider.TextSegment:
			reply.WriteString(s.Text)

		case provider.ToolCallSegment:
			sess := tools.Session{JourneyID: res.journeyRef, UserID: sc.UserID}
			out := e.execute(ctx, sess, s.Call)
			reply.WriteString(out.Text)

			switch p := out.Payload.(type) {
			case nil:
			case tools.JourneyRef:
				res.journeyRef = p.JourneyID
				res.createdJourney = p.JourneyID
			default:
				res.payload = p
			}
		}
	}

	res.message = strings.TrimSpace(reply.String())
	if res.message == "" {
		res.message = e.cfg.greeting()
	}
	return res
}

// execute validates and runs one tool call. A panicking handler is
// recovered into a store-failure outcome.
func (e *Engine) execute(ctx context.Context, sess tools.Session, call tools.Call) (out tools.Outcome) {
	defer func() {
		observability.ToolExecutionsTotal.WithLabelValues(e.toolLabel(call.Name), string(out.Kind)).Inc()
	}()

	args, verr := e.registry.ValidateCall(call)
	if verr != nil {
		e.logger.WarnContext(ctx, "tool call rejected", "tool", call.Name, "field", verr.Field, "reason", verr.Reason,
			"arguments_error", call.ArgumentsErr)
		return verr.Outcome()
	}

	handler, ok := e.handlers[call.Name]
	if !ok {
		// New rejects registries without a matching handler, so this
		// only guards against a table edited after construction.
		return (&tools.ValidationError{Tool: call.Name, Reason: tools.ReasonUnknownTool}).Outcome()
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "tool handler panicked", "tool", call.Name, "panic", fmt.Sprint(r))
			out = tools.StoreFailure(tools.Fragment(panicApology))
		}
	}()

	debug.Log("tools", "executing tool", "tool", call.Name, "call_id", call.ID, "journey_id", sess.JourneyID)
	out = handler(ctx, sess, args)
	debug.Log("tools", "tool finished", "tool", call.Name, "outcome", out.Kind)
	return out
}

// toolLabel keeps label cardinality bounded when the engine invents tool
// names.
func (e *Engine) toolLabel(name string) string {
	if _, ok := e.registry.Lookup(name); ok {
		return name
	}
	return "unknown"
}
