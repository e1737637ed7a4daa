package handlers

import (
	"context"
	"fmt"

	"github.com/careroute/concierge/pkg/storage"
	"github.com/careroute/concierge/pkg/storage/memory"
)

// countingStore wraps the in-memory store, counting calls per method and
// failing the methods listed in fail.
type countingStore struct {
	*memory.Store
	calls map[string]int
	fail  map[string]error
}

var _ storage.Store = (*countingStore)(nil)

func newCountingStore(facilities ...storage.Facility) *countingStore {
	return &countingStore{
		Store: memory.New(facilities...),
		calls: make(map[string]int),
		fail:  make(map[string]error),
	}
}

func (c *countingStore) total() int {
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func (c *countingStore) hit(method string) error {
	c.calls[method]++
	return c.fail[method]
}

func (c *countingStore) CreateJourney(ctx context.Context, j *storage.Journey) error {
	if err := c.hit("CreateJourney"); err != nil {
		return err
	}
	return c.Store.CreateJourney(ctx, j)
}

func (c *countingStore) GetJourney(ctx context.Context, id string) (*storage.Journey, error) {
	if err := c.hit("GetJourney"); err != nil {
		return nil, err
	}
	return c.Store.GetJourney(ctx, id)
}

func (c *countingStore) SearchFacilities(ctx context.Context, q storage.FacilityQuery) ([]storage.Facility, error) {
	if err := c.hit("SearchFacilities"); err != nil {
		return nil, err
	}
	return c.Store.SearchFacilities(ctx, q)
}

func (c *countingStore) FindFacilityByName(ctx context.Context, name string) (*storage.Facility, error) {
	if err := c.hit("FindFacilityByName"); err != nil {
		return nil, err
	}
	return c.Store.FindFacilityByName(ctx, name)
}

func (c *countingStore) GetFacilities(ctx context.Context, ids []string) ([]storage.Facility, error) {
	if err := c.hit("GetFacilities"); err != nil {
		return nil, err
	}
	return c.Store.GetFacilities(ctx, ids)
}

func (c *countingStore) AddShortlistEntry(ctx context.Context, e storage.ShortlistEntry) error {
	if err := c.hit("AddShortlistEntry"); err != nil {
		return err
	}
	return c.Store.AddShortlistEntry(ctx, e)
}

func (c *countingStore) RemoveShortlistEntry(ctx context.Context, journeyID, facilityID string) error {
	if err := c.hit("RemoveShortlistEntry"); err != nil {
		return err
	}
	return c.Store.RemoveShortlistEntry(ctx, journeyID, facilityID)
}

func (c *countingStore) ListShortlist(ctx context.Context, journeyID string) ([]storage.ShortlistEntry, error) {
	if err := c.hit("ListShortlist"); err != nil {
		return nil, err
	}
	return c.Store.ListShortlist(ctx, journeyID)
}

func (c *countingStore) SaveComparison(ctx context.Context, cmp *storage.Comparison) error {
	if err := c.hit("SaveComparison"); err != nil {
		return err
	}
	return c.Store.SaveComparison(ctx, cmp)
}

func (c *countingStore) AppendTurns(ctx context.Context, journeyID string, turns ...storage.ConversationTurn) error {
	if err := c.hit("AppendTurns"); err != nil {
		return err
	}
	return c.Store.AppendTurns(ctx, journeyID, turns...)
}

func (c *countingStore) ListTurns(ctx context.Context, journeyID string) ([]storage.ConversationTurn, error) {
	if err := c.hit("ListTurns"); err != nil {
		return nil, err
	}
	return c.Store.ListTurns(ctx, journeyID)
}

// recordingDiscarder captures discarded errors by kind.
type recordingDiscarder struct {
	kinds []string
	errs  []error
}

func (r *recordingDiscarder) Discard(kind string, err error) {
	r.kinds = append(r.kinds, kind)
	r.errs = append(r.errs, err)
}

// catalogue returns a facility set with twelve Mexican dental clinics,
// two Thai orthopaedic hospitals and one Turkish hair clinic.
func catalogue() []storage.Facility {
	var out []storage.Facility
	for i := range 12 {
		out = append(out, storage.Facility{
			ID:         fmt.Sprintf("mx-%02d", i),
			Name:       fmt.Sprintf("Sonrisa Dental %02d", i),
			City:       "Tijuana",
			Country:    "Mexico",
			Procedures: []string{"Dental Implants", "Veneers"},
			Rating:     4.0 + float64(i)/100,
		})
	}
	out = append(out,
		storage.Facility{ID: "th-01", Name: "Bumrungrad International", Country: "Thailand", Procedures: []string{"Knee Replacement", "Hip Replacement"}, Rating: 4.9},
		storage.Facility{ID: "th-02", Name: "Bangkok Hospital", Country: "Thailand", Procedures: []string{"Knee Replacement"}, Rating: 4.7},
		storage.Facility{ID: "tr-01", Name: "Istanbul Hair Center", Country: "Turkey", Procedures: []string{"Hair Transplant"}, Rating: 4.5},
	)
	return out
}
