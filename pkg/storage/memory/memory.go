// Package memory provides an in-memory implementation of storage.Store for
// tests and lightweight deployments. Data is lost when the process exits.
// The facility catalogue can be seeded from a YAML file.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careroute/concierge/pkg/storage"
)

type shortlistKey struct {
	journeyID  string
	facilityID string
}

// Store is an in-memory storage.Store. All methods are safe for
// concurrent use.
type Store struct {
	mu          sync.RWMutex
	journeys    map[string]*storage.Journey
	facilities  []storage.Facility
	shortlist   map[shortlistKey]storage.ShortlistEntry
	order       []shortlistKey // insertion order of shortlist entries
	comparisons []storage.Comparison
	history     map[string][]storage.ConversationTurn
	now         func() time.Time
}

// Ensure Store implements storage.Store at compile time.
var (
	_ storage.Store          = (*Store)(nil)
	_ storage.FacilitySeeder = (*Store)(nil)
)

// New creates an empty store holding the given facilities.
func New(facilities ...storage.Facility) *Store {
	s := &Store{
		journeys:  make(map[string]*storage.Journey),
		shortlist: make(map[shortlistKey]storage.ShortlistEntry),
		history:   make(map[string][]storage.ConversationTurn),
		now:       time.Now,
	}
	s.facilities = append(s.facilities, facilities...)
	return s
}

// CreateJourney stores a copy of j, assigning ID and CreatedAt when empty.
func (s *Store) CreateJourney(ctx context.Context, j *storage.Journey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if _, exists := s.journeys[j.ID]; exists {
		return storage.ErrConflict
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = s.now()
	}
	cp := *j
	s.journeys[j.ID] = &cp
	return nil
}

// GetJourney returns a copy of the journey, scoped by caller.
func (s *Store) GetJourney(ctx context.Context, id string) (*storage.Journey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.journeys[id]
	if !ok || !storage.Visible(ctx, j.UserID) {
		return nil, storage.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

// JourneyCount returns the number of stored journeys.
func (s *Store) JourneyCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.journeys)
}

// SearchFacilities returns facilities ordered by rating descending.
func (s *Store) SearchFacilities(ctx context.Context, q storage.FacilityQuery) ([]storage.Facility, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	country := strings.ToLower(strings.TrimSpace(q.Country))
	var out []storage.Facility
	for _, f := range s.sortedFacilities() {
		if country != "" && !strings.Contains(strings.ToLower(f.Country), country) {
			continue
		}
		out = append(out, f)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// FindFacilityByName returns the best-rated facility whose name contains
// name, ignoring case.
func (s *Store) FindFacilityByName(ctx context.Context, name string) (*storage.Facility, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, storage.ErrNotFound
	}
	for _, f := range s.sortedFacilities() {
		if strings.Contains(strings.ToLower(f.Name), needle) {
			return &f, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetFacilities returns facilities by ID in the order of ids.
func (s *Store) GetFacilities(ctx context.Context, ids []string) ([]storage.Facility, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return storage.OrderByIDs(s.facilities, ids), nil
}

// UpsertFacilities inserts or replaces catalogue entries by ID.
func (s *Store) UpsertFacilities(ctx context.Context, facilities []storage.Facility) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	index := make(map[string]int, len(s.facilities))
	for i, f := range s.facilities {
		index[f.ID] = i
	}
	for _, f := range facilities {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if i, ok := index[f.ID]; ok {
			s.facilities[i] = f
			continue
		}
		index[f.ID] = len(s.facilities)
		s.facilities = append(s.facilities, f)
	}
	return nil
}

// sortedFacilities returns a copy of the catalogue ordered by rating
// descending, then name. Must be called with the lock held.
func (s *Store) sortedFacilities() []storage.Facility {
	out := make([]storage.Facility, len(s.facilities))
	copy(out, s.facilities)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// AddShortlistEntry inserts e, returning ErrConflict for a duplicate
// (journey, facility) pair.
func (s *Store) AddShortlistEntry(ctx context.Context, e storage.ShortlistEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, ok := s.journeys[e.JourneyID]; ok && !storage.Visible(ctx, j.UserID) {
		return storage.ErrNotFound
	}
	key := shortlistKey{journeyID: e.JourneyID, facilityID: e.FacilityID}
	if _, exists := s.shortlist[key]; exists {
		return storage.ErrConflict
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	s.shortlist[key] = e
	s.order = append(s.order, key)
	return nil
}

// RemoveShortlistEntry deletes the (journey, facility) entry.
func (s *Store) RemoveShortlistEntry(ctx context.Context, journeyID, facilityID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := shortlistKey{journeyID: journeyID, facilityID: facilityID}
	e, ok := s.shortlist[key]
	if !ok || !storage.Visible(ctx, e.UserID) {
		return storage.ErrNotFound
	}
	delete(s.shortlist, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListShortlist returns a journey's entries in insertion order.
func (s *Store) ListShortlist(ctx context.Context, journeyID string) ([]storage.ShortlistEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.ShortlistEntry
	for _, k := range s.order {
		if k.journeyID != journeyID {
			continue
		}
		e := s.shortlist[k]
		if storage.Visible(ctx, e.UserID) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ShortlistCount returns the number of entries for one (journey, facility)
// pair, which is 0 or 1.
func (s *Store) ShortlistCount(journeyID, facilityID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.shortlist[shortlistKey{journeyID: journeyID, facilityID: facilityID}]; ok {
		return 1
	}
	return 0
}

// SaveComparison stores a comparison snapshot.
func (s *Store) SaveComparison(ctx context.Context, c *storage.Comparison) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.comparisons = append(s.comparisons, *c)
	return nil
}

// Comparisons returns all stored comparisons.
func (s *Store) Comparisons() []storage.Comparison {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]storage.Comparison, len(s.comparisons))
	copy(out, s.comparisons)
	return out
}

// AppendTurns appends conversation turns to a journey's history.
func (s *Store) AppendTurns(ctx context.Context, journeyID string, turns ...storage.ConversationTurn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if journeyID == "" {
		return fmt.Errorf("appending turns: journey id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, ok := s.journeys[journeyID]; ok && !storage.Visible(ctx, j.UserID) {
		return storage.ErrNotFound
	}
	for _, t := range turns {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = s.now()
		}
		s.history[journeyID] = append(s.history[journeyID], t)
	}
	return nil
}

// ListTurns returns a journey's history, oldest first.
func (s *Store) ListTurns(ctx context.Context, journeyID string) ([]storage.ConversationTurn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if j, ok := s.journeys[journeyID]; ok && !storage.Visible(ctx, j.UserID) {
		return nil, storage.ErrNotFound
	}
	turns := s.history[journeyID]
	out := make([]storage.ConversationTurn, len(turns))
	copy(out, turns)
	return out, nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
