package storage

import (
	"encoding/json"
	"time"
)

// JourneyStatus is the lifecycle state of a journey.
type JourneyStatus string

// JourneyStatusResearching is the status every new journey starts in.
const JourneyStatusResearching JourneyStatus = "researching"

// Journey is a user's procedure search. Budget fields stay nil when the
// user did not state them; they are never zero-defaulted.
type Journey struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	Procedure        string        `json:"procedure"`
	Timeline         string        `json:"timeline"`
	BudgetMin        *float64      `json:"budget_min,omitempty"`
	BudgetMax        *float64      `json:"budget_max,omitempty"`
	BudgetPreference *string       `json:"budget_preference,omitempty"`
	Status           JourneyStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Facility is a clinic or hospital listed on the marketplace. The record is
// owned by the store and passed through to the client unchanged.
type Facility struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	City           string   `json:"city,omitempty" yaml:"city"`
	Country        string   `json:"country" yaml:"country"`
	Procedures     []string `json:"procedures,omitempty" yaml:"procedures"`
	Rating         float64  `json:"rating" yaml:"rating"`
	ReviewCount    int      `json:"review_count,omitempty" yaml:"review_count"`
	Accreditations []string `json:"accreditations,omitempty" yaml:"accreditations"`
	PriceFrom      *float64 `json:"price_from,omitempty" yaml:"price_from"`
	Currency       string   `json:"currency,omitempty" yaml:"currency"`
	Website        string   `json:"website,omitempty" yaml:"website"`
}

// ShortlistEntry links a facility to a journey. The pair
// (JourneyID, FacilityID) is unique.
type ShortlistEntry struct {
	JourneyID  string    `json:"journey_id"`
	FacilityID string    `json:"facility_id"`
	UserID     string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Comparison is a point-in-time snapshot of the facilities shortlisted for
// a journey.
type Comparison struct {
	ID          string          `json:"id"`
	JourneyID   string          `json:"journey_id"`
	UserID      string          `json:"user_id"`
	FacilityIDs []string        `json:"facility_ids"`
	Snapshot    json.RawMessage `json:"snapshot"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TurnRole identifies the author of a stored conversation turn.
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// ConversationTurn is one entry of a journey's append-only chat history.
// Payload holds the structured side-channel data of an assistant turn.
type ConversationTurn struct {
	Role      TurnRole        `json:"role"`
	Text      string          `json:"text"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// FacilityQuery selects facilities ordered by rating, highest first.
type FacilityQuery struct {
	// Country filters by case-insensitive substring match. Empty means all.
	Country string

	// Limit caps the number of rows returned. Zero means no cap.
	Limit int
}
