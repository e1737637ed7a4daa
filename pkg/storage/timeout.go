package storage

import (
	"context"
	"time"
)

// timeoutStore bounds every call to the wrapped store with a deadline.
type timeoutStore struct {
	next    Store
	timeout time.Duration
}

// WithTimeout wraps s so that each call carries its own deadline of d.
// A non-positive d returns s unchanged. The caller's context still applies;
// whichever deadline is earlier wins.
func WithTimeout(s Store, d time.Duration) Store {
	if d <= 0 {
		return s
	}
	return &timeoutStore{next: s, timeout: d}
}

func (t *timeoutStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, t.timeout)
}

func (t *timeoutStore) CreateJourney(ctx context.Context, j *Journey) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.CreateJourney(ctx, j)
}

func (t *timeoutStore) GetJourney(ctx context.Context, id string) (*Journey, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.GetJourney(ctx, id)
}

func (t *timeoutStore) SearchFacilities(ctx context.Context, q FacilityQuery) ([]Facility, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.SearchFacilities(ctx, q)
}

func (t *timeoutStore) FindFacilityByName(ctx context.Context, name string) (*Facility, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.FindFacilityByName(ctx, name)
}

func (t *timeoutStore) GetFacilities(ctx context.Context, ids []string) ([]Facility, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.GetFacilities(ctx, ids)
}

func (t *timeoutStore) AddShortlistEntry(ctx context.Context, e ShortlistEntry) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.AddShortlistEntry(ctx, e)
}

func (t *timeoutStore) RemoveShortlistEntry(ctx context.Context, journeyID, facilityID string) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.RemoveShortlistEntry(ctx, journeyID, facilityID)
}

func (t *timeoutStore) ListShortlist(ctx context.Context, journeyID string) ([]ShortlistEntry, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.ListShortlist(ctx, journeyID)
}

func (t *timeoutStore) SaveComparison(ctx context.Context, c *Comparison) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.SaveComparison(ctx, c)
}

func (t *timeoutStore) AppendTurns(ctx context.Context, journeyID string, turns ...ConversationTurn) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.AppendTurns(ctx, journeyID, turns...)
}

func (t *timeoutStore) ListTurns(ctx context.Context, journeyID string) ([]ConversationTurn, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.ListTurns(ctx, journeyID)
}

func (t *timeoutStore) HealthCheck(ctx context.Context) error {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.HealthCheck(ctx)
}

func (t *timeoutStore) Close() error {
	return t.next.Close()
}
