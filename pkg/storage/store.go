package storage

import "context"

// JourneyStore persists journeys. Journeys are never deleted here.
type JourneyStore interface {
	// CreateJourney inserts a journey, assigning ID and CreatedAt when empty.
	CreateJourney(ctx context.Context, j *Journey) error

	// GetJourney returns a journey visible to the caller, or ErrNotFound.
	GetJourney(ctx context.Context, id string) (*Journey, error)
}

// FacilityStore reads the facility catalogue.
type FacilityStore interface {
	// SearchFacilities returns facilities ordered by rating descending.
	SearchFacilities(ctx context.Context, q FacilityQuery) ([]Facility, error)

	// FindFacilityByName returns the best-rated facility whose name contains
	// name (case-insensitive), or ErrNotFound.
	FindFacilityByName(ctx context.Context, name string) (*Facility, error)

	// GetFacilities returns the facilities with the given IDs, in the order
	// of ids. Unknown IDs are skipped.
	GetFacilities(ctx context.Context, ids []string) ([]Facility, error)
}

// ShortlistStore manages the facilities shortlisted for a journey.
type ShortlistStore interface {
	// AddShortlistEntry inserts an entry. Returns ErrConflict when the
	// facility is already on the journey's shortlist.
	AddShortlistEntry(ctx context.Context, e ShortlistEntry) error

	// RemoveShortlistEntry deletes an entry. Returns ErrNotFound when the
	// facility was not shortlisted.
	RemoveShortlistEntry(ctx context.Context, journeyID, facilityID string) error

	// ListShortlist returns a journey's entries, oldest first.
	ListShortlist(ctx context.Context, journeyID string) ([]ShortlistEntry, error)
}

// ComparisonStore records comparison snapshots.
type ComparisonStore interface {
	SaveComparison(ctx context.Context, c *Comparison) error
}

// HistoryStore holds the append-only conversation history per journey.
type HistoryStore interface {
	// AppendTurns appends turns to a journey's history in the given order.
	AppendTurns(ctx context.Context, journeyID string, turns ...ConversationTurn) error

	// ListTurns returns a journey's history, oldest first.
	ListTurns(ctx context.Context, journeyID string) ([]ConversationTurn, error)
}

// Store is the full backing-store contract implemented by every adapter.
type Store interface {
	JourneyStore
	FacilityStore
	ShortlistStore
	ComparisonStore
	HistoryStore

	// HealthCheck verifies the store connection is functional.
	HealthCheck(ctx context.Context) error

	// Close releases connections and resources.
	Close() error
}

// FacilitySeeder is implemented by stores whose facility catalogue can be
// loaded from a seed file.
type FacilitySeeder interface {
	UpsertFacilities(ctx context.Context, facilities []Facility) error
}
