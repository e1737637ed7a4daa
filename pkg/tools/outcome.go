package tools

import (
	"encoding/json"

	"github.com/careroute/concierge/pkg/storage"
)

// OutcomeKind classifies a handler result. The value doubles as the
// outcome label on tool execution metrics.
type OutcomeKind string

const (
	KindSuccess           OutcomeKind = "success"
	KindSoftFailure       OutcomeKind = "soft_failure"
	KindPreconditionUnmet OutcomeKind = "precondition_unmet"
	KindStoreError        OutcomeKind = "store_error"
	KindInvalidArguments  OutcomeKind = "invalid_arguments"
	KindNotImplemented    OutcomeKind = "not_implemented"
)

// Outcome is what a handler hands back to the dispatch loop. Text is
// appended to the reply verbatim. Fatal marks a fragment that explains a
// failure of the tool itself; the request still succeeds.
type Outcome struct {
	Text    string
	Payload Payload
	Fatal   bool
	Kind    OutcomeKind
}

// Succeeded is a successful outcome with an optional payload.
func Succeeded(text string, payload Payload) Outcome {
	return Outcome{Text: text, Payload: payload, Kind: KindSuccess}
}

// SoftFailure is a benign failure such as a not-found lookup or a
// duplicate mutation.
func SoftFailure(text string) Outcome {
	return Outcome{Text: text, Kind: KindSoftFailure}
}

// PreconditionUnmet reports missing login or journey context.
func PreconditionUnmet(text string) Outcome {
	return Outcome{Text: text, Kind: KindPreconditionUnmet}
}

// StoreFailure reports a backing store error with a generic apology.
func StoreFailure(text string) Outcome {
	return Outcome{Text: text, Fatal: true, Kind: KindStoreError}
}

// Invalid reports arguments the handler cannot use.
func Invalid(text string) Outcome {
	return Outcome{Text: text, Kind: KindInvalidArguments}
}

// NotImplemented is the answer of an advertised tool without a backend yet.
func NotImplemented(text string) Outcome {
	return Outcome{Text: text, Kind: KindNotImplemented}
}

// Fragment prefixes a paragraph break so a handler sentence reads as its
// own paragraph when appended to engine text.
func Fragment(text string) string {
	return "\n\n" + text
}

// Payload is structured side-channel data attached to an outcome. The set
// of payload types is closed.
type Payload interface {
	payloadType() string
}

// FacilityList is a search result. It replaces any earlier primary payload
// of the same turn.
type FacilityList struct {
	Facilities []storage.Facility
}

// JourneyRef carries the identifier of a journey created this turn.
type JourneyRef struct {
	JourneyID string
}

// ComparisonSet is the full record of every shortlisted facility.
type ComparisonSet struct {
	ComparisonID string
	Facilities   []storage.Facility
}

func (FacilityList) payloadType() string  { return "facility_list" }
func (JourneyRef) payloadType() string    { return "journey_ref" }
func (ComparisonSet) payloadType() string { return "comparison" }

type payloadEnvelope struct {
	Type         string             `json:"type"`
	JourneyID    string             `json:"journey_id,omitempty"`
	ComparisonID string             `json:"comparison_id,omitempty"`
	Facilities   []storage.Facility `json:"facilities,omitempty"`
}

// MarshalPayload encodes p for storage alongside an assistant turn. A nil
// payload encodes as nil.
func MarshalPayload(p Payload) (json.RawMessage, error) {
	if p == nil {
		return nil, nil
	}
	env := payloadEnvelope{Type: p.payloadType()}
	switch v := p.(type) {
	case FacilityList:
		env.Facilities = v.Facilities
	case JourneyRef:
		env.JourneyID = v.JourneyID
	case ComparisonSet:
		env.ComparisonID = v.ComparisonID
		env.Facilities = v.Facilities
	}
	return json.Marshal(env)
}
