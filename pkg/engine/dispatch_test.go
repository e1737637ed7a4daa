package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/careroute/concierge/pkg/api"
	"github.com/careroute/concierge/pkg/observability"
	"github.com/careroute/concierge/pkg/provider"
	"github.com/careroute/concierge/pkg/storage"
	"github.com/careroute/concierge/pkg/tools"
)

// toyTools is a small catalogue whose handlers make dispatch behavior easy
// to observe.
func toyTools(t *testing.T) (*tools.Registry, map[string]tools.Handler, *int) {
	t.Helper()
	reg, err := tools.NewRegistry(
		tools.Definition{Name: "echo", Fields: []tools.Field{{Name: "word", Type: tools.FieldString, Required: true}}},
		tools.Definition{Name: "list", Fields: []tools.Field{{Name: "id", Type: tools.FieldString, Required: true}}},
		tools.Definition{Name: "journey", Fields: []tools.Field{{Name: "id", Type: tools.FieldString, Required: true}}},
		tools.Definition{Name: "boom"},
	)
	if err != nil {
		t.Fatal(err)
	}
	invoked := 0
	handlers := map[string]tools.Handler{
		"echo": func(_ context.Context, _ tools.Session, args tools.Arguments) tools.Outcome {
			invoked++
			return tools.Succeeded(tools.Fragment(args["word"].(string)), nil)
		},
		"list": func(_ context.Context, _ tools.Session, args tools.Arguments) tools.Outcome {
			invoked++
			id := args["id"].(string)
			return tools.Succeeded("", tools.FacilityList{Facilities: []storage.Facility{{ID: id, Name: id}}})
		},
		"journey": func(_ context.Context, sess tools.Session, args tools.Arguments) tools.Outcome {
			invoked++
			return tools.Succeeded(tools.Fragment("journey from "+sess.JourneyID), tools.JourneyRef{JourneyID: args["id"].(string)})
		},
		"boom": func(context.Context, tools.Session, tools.Arguments) tools.Outcome {
			invoked++
			panic("handler bug")
		},
	}
	return reg, handlers, &invoked
}

func runTurn(t *testing.T, segments []provider.Segment, sc api.SessionContext) (*api.ChatResponse, *int) {
	t.Helper()
	reg, handlers, invoked := toyTools(t)
	e := mustEngine(t, Options{
		Gateway:  &scriptedGateway{segments: segments},
		Registry: reg,
		Handlers: handlers,
	}, Config{})
	resp, err := e.Chat(context.Background(), chatRequest("hello", sc))
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	return resp, invoked
}

func TestDispatch_PreservesSegmentOrder(t *testing.T) {
	resp, _ := runTurn(t, []provider.Segment{
		text("A"),
		call("echo", map[string]any{"word": "X"}),
		text("B"),
	}, api.SessionContext{})

	if want := "A\n\nXB"; resp.Message != want {
		t.Errorf("Message = %q, want %q", resp.Message, want)
	}
}

func TestDispatch_LastFacilityListWins(t *testing.T) {
	resp, _ := runTurn(t, []provider.Segment{
		call("list", map[string]any{"id": "first"}),
		call("list", map[string]any{"id": "second"}),
	}, api.SessionContext{})

	if len(resp.Facilities) != 1 || resp.Facilities[0].ID != "second" {
		t.Errorf("Facilities = %+v, want only the second list", resp.Facilities)
	}
}

func TestDispatch_JourneyRefKeepsFacilityList(t *testing.T) {
	resp, _ := runTurn(t, []provider.Segment{
		call("list", map[string]any{"id": "shown"}),
		call("journey", map[string]any{"id": "j-new"}),
		call("echo", map[string]any{"word": "after"}),
	}, api.SessionContext{JourneyID: "j-old"})

	if len(resp.Facilities) != 1 || resp.Facilities[0].ID != "shown" {
		t.Errorf("Facilities = %+v", resp.Facilities)
	}
	if resp.JourneyID != "j-new" {
		t.Errorf("JourneyID = %q, want j-new", resp.JourneyID)
	}
	if !strings.Contains(resp.Message, "journey from j-old") {
		t.Errorf("handler should see the session journey, got %q", resp.Message)
	}
}

func TestDispatch_SessionJourneyNotEchoed(t *testing.T) {
	resp, _ := runTurn(t, []provider.Segment{text("Hi again")}, api.SessionContext{JourneyID: "j-old", UserID: "u1"})
	if resp.JourneyID != "" {
		t.Errorf("JourneyID = %q, want empty when nothing was created", resp.JourneyID)
	}
}

func TestDispatch_InvalidCallsSkipHandler(t *testing.T) {
	tests := []struct {
		name     string
		segment  provider.Segment
		contains string
	}{
		{"missing field", call("echo", map[string]any{}), "word looks off"},
		{"wrong type", call("echo", map[string]any{"word": 3.0}), "word looks off"},
		{"unknown tool", call("teleport", map[string]any{"to": "Bangkok"}), "rephrase"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, invoked := runTurn(t, []provider.Segment{text("Sure."), tt.segment}, api.SessionContext{})
			if *invoked != 0 {
				t.Errorf("handler invoked %d times, want 0", *invoked)
			}
			if !strings.HasPrefix(resp.Message, "Sure.") || !strings.Contains(resp.Message, tt.contains) {
				t.Errorf("Message = %q", resp.Message)
			}
		})
	}
}

func TestDispatch_PanicIsContained(t *testing.T) {
	before := testutil.ToFloat64(observability.ToolExecutionsTotal.WithLabelValues("boom", string(tools.KindStoreError)))

	resp, invoked := runTurn(t, []provider.Segment{
		call("boom", nil),
		call("echo", map[string]any{"word": "still here"}),
	}, api.SessionContext{})

	if *invoked != 2 {
		t.Errorf("invoked = %d, want 2", *invoked)
	}
	if !strings.Contains(resp.Message, "went wrong") || !strings.HasSuffix(resp.Message, "still here") {
		t.Errorf("Message = %q", resp.Message)
	}
	after := testutil.ToFloat64(observability.ToolExecutionsTotal.WithLabelValues("boom", string(tools.KindStoreError)))
	if after-before != 1 {
		t.Errorf("boom store_error count delta = %v, want 1", after-before)
	}
}

func TestDispatch_EmptyReplyUsesGreeting(t *testing.T) {
	for _, segs := range [][]provider.Segment{nil, {text("  \n ")}, {call("list", map[string]any{"id": "x"})}} {
		resp, _ := runTurn(t, segs, api.SessionContext{})
		if resp.Message != defaultGreeting {
			t.Errorf("Message = %q, want default greeting", resp.Message)
		}
	}
}

func TestDispatch_TrimsOnlyEnds(t *testing.T) {
	resp, _ := runTurn(t, []provider.Segment{text("  Line one\n\n"), text("Line two  ")}, api.SessionContext{})
	if want := "Line one\n\nLine two"; resp.Message != want {
		t.Errorf("Message = %q, want %q", resp.Message, want)
	}
}

func TestDispatch_UndecodableArgumentsDegrade(t *testing.T) {
	bad := provider.ToolCallSegment{Call: tools.Call{
		ID:           "call_bad",
		Name:         "echo",
		ArgumentsErr: errors.New("unexpected end of JSON input"),
	}}
	before := testutil.ToFloat64(observability.ToolExecutionsTotal.WithLabelValues("echo", string(tools.KindInvalidArguments)))

	resp, invoked := runTurn(t, []provider.Segment{
		text("Sure, searching now."),
		bad,
		call("echo", map[string]any{"word": "done"}),
	}, api.SessionContext{})

	if *invoked != 1 {
		t.Errorf("invoked = %d, want only the well-formed call", *invoked)
	}
	if !strings.HasPrefix(resp.Message, "Sure, searching now.\n\n") {
		t.Errorf("engine text lost: %q", resp.Message)
	}
	if !strings.Contains(resp.Message, "Mind saying it once more?") || !strings.HasSuffix(resp.Message, "done") {
		t.Errorf("Message = %q", resp.Message)
	}
	if delta := testutil.ToFloat64(observability.ToolExecutionsTotal.WithLabelValues("echo", string(tools.KindInvalidArguments))) - before; delta != 1 {
		t.Errorf("invalid_arguments delta = %v, want 1", delta)
	}
}
