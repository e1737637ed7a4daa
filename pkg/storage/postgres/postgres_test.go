package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/careroute/concierge/pkg/storage"
)

// setupTestDB starts a PostgreSQL container and returns a migrated Store.
// Tests are skipped when no container runtime is available.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	if testing.Short() || os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("skipping PostgreSQL integration tests")
	}

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("concierge_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container: %v", err)
	}

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	store, err := New(ctx, Config{
		DSN:            connStr,
		MaxConns:       5,
		MinConns:       1,
		MigrateOnStart: true,
	})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	err = store.UpsertFacilities(ctx, []storage.Facility{
		{ID: "f1", Name: "Clinica Dental Tijuana", Country: "Mexico", Procedures: []string{"Dental Implants"}, Rating: 4.6},
		{ID: "f2", Name: "Bumrungrad International", Country: "Thailand", Procedures: []string{"Knee Replacement"}, Rating: 4.9},
		{ID: "f3", Name: "Hospital Angeles", Country: "Mexico", Procedures: []string{"Knee Replacement"}, Rating: 4.8},
	})
	if err != nil {
		t.Fatalf("seeding facilities: %v", err)
	}

	return store
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := setupTestDB(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
}

func TestJourneyRoundTrip(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	pref := "mid-range"
	j := &storage.Journey{UserID: "u1", Procedure: "Knee Replacement", Timeline: "soon", BudgetPreference: &pref}
	if err := s.CreateJourney(ctx, j); err != nil {
		t.Fatalf("CreateJourney failed: %v", err)
	}

	got, err := s.GetJourney(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJourney failed: %v", err)
	}
	if got.Status != storage.JourneyStatusResearching {
		t.Errorf("Status = %q, want %q", got.Status, storage.JourneyStatusResearching)
	}
	if got.BudgetMin != nil || got.BudgetMax != nil {
		t.Errorf("expected NULL budgets, got %v / %v", got.BudgetMin, got.BudgetMax)
	}
	if got.BudgetPreference == nil || *got.BudgetPreference != pref {
		t.Errorf("BudgetPreference = %v, want %q", got.BudgetPreference, pref)
	}

	scoped := storage.WithCaller(ctx, "someone-else")
	if _, err := s.GetJourney(scoped, j.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other caller, got %v", err)
	}
}

func TestSearchAndLookup(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	got, err := s.SearchFacilities(ctx, storage.FacilityQuery{Country: "mex"})
	if err != nil {
		t.Fatalf("SearchFacilities failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "f3" || got[1].ID != "f1" {
		t.Errorf("unexpected search result: %+v", got)
	}

	f, err := s.FindFacilityByName(ctx, "bumrun")
	if err != nil {
		t.Fatalf("FindFacilityByName failed: %v", err)
	}
	if f.ID != "f2" {
		t.Errorf("ID = %q, want f2", f.ID)
	}

	ordered, err := s.GetFacilities(ctx, []string{"f1", "f2"})
	if err != nil {
		t.Fatalf("GetFacilities failed: %v", err)
	}
	if len(ordered) != 2 || ordered[0].ID != "f1" {
		t.Errorf("unexpected order: %+v", ordered)
	}
}

func TestShortlistDuplicateIsConflict(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	e := storage.ShortlistEntry{JourneyID: "j1", FacilityID: "f1", UserID: "u1"}
	if err := s.AddShortlistEntry(ctx, e); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := s.AddShortlistEntry(ctx, e); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	entries, err := s.ListShortlist(ctx, "j1")
	if err != nil {
		t.Fatalf("ListShortlist failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("len(entries) = %d, want 1", len(entries))
	}

	if err := s.RemoveShortlistEntry(ctx, "j1", "f1"); err != nil {
		t.Fatalf("RemoveShortlistEntry failed: %v", err)
	}
	if err := s.RemoveShortlistEntry(ctx, "j1", "f1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestComparisonAndHistory(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	c := &storage.Comparison{JourneyID: "j1", UserID: "u1", FacilityIDs: []string{"f1", "f2"}, Snapshot: []byte(`[{"id":"f1"}]`)}
	if err := s.SaveComparison(ctx, c); err != nil {
		t.Fatalf("SaveComparison failed: %v", err)
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		t.Errorf("expected ID and CreatedAt to be set: %+v", c)
	}

	err := s.AppendTurns(ctx, "j1",
		storage.ConversationTurn{Role: storage.TurnRoleUser, Text: "find me a dentist"},
		storage.ConversationTurn{Role: storage.TurnRoleAssistant, Text: "Here are 2 options", Payload: []byte(`{"type":"facility_list"}`)},
	)
	if err != nil {
		t.Fatalf("AppendTurns failed: %v", err)
	}

	turns, err := s.ListTurns(ctx, "j1")
	if err != nil {
		t.Fatalf("ListTurns failed: %v", err)
	}
	if len(turns) != 2 || turns[0].Role != storage.TurnRoleUser || turns[1].Payload == nil {
		t.Errorf("unexpected turns: %+v", turns)
	}
}

func TestMigrationVersion(t *testing.T) {
	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"001_initial_schema.sql", 1, true},
		{"012_add_notes.sql", 12, true},
		{"readme.md", 0, false},
		{"initial.sql", 0, false},
		{"abc_initial.sql", 0, false},
	}
	for _, tt := range tests {
		got, ok := migrationVersion(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("migrationVersion(%q) = (%d, %v), want (%d, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestShortlistRespectsJourneyOwner(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	j := &storage.Journey{UserID: "alice", Procedure: "Knee Replacement", Timeline: "soon"}
	if err := s.CreateJourney(ctx, j); err != nil {
		t.Fatalf("CreateJourney failed: %v", err)
	}

	bob := storage.WithCaller(ctx, "bob")
	err := s.AddShortlistEntry(bob, storage.ShortlistEntry{JourneyID: j.ID, FacilityID: "f2", UserID: "bob"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound adding to another user's journey, got %v", err)
	}

	alice := storage.WithCaller(ctx, "alice")
	if err := s.AddShortlistEntry(alice, storage.ShortlistEntry{JourneyID: j.ID, FacilityID: "f2", UserID: "alice"}); err != nil {
		t.Fatalf("owner add failed: %v", err)
	}

	entries, err := s.ListShortlist(ctx, j.ID)
	if err != nil {
		t.Fatalf("ListShortlist failed: %v", err)
	}
	if len(entries) != 1 || entries[0].UserID != "alice" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}
