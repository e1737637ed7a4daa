// Package postgres provides a PostgreSQL implementation of storage.Store.
// It uses pgx/v5 for connection pooling, TEXT[] columns for facility lists
// and JSONB for comparison snapshots and turn payloads.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careroute/concierge/pkg/storage"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Store is a PostgreSQL-backed storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements storage.Store at compile time.
var (
	_ storage.Store          = (*Store)(nil)
	_ storage.FacilitySeeder = (*Store)(nil)
)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// CreateJourney inserts a journey. Nil budget fields are stored as NULL.
func (s *Store) CreateJourney(ctx context.Context, j *storage.Journey) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = storage.JourneyStatusResearching
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO journeys (
			id, user_id, procedure, timeline,
			budget_min, budget_max, budget_preference, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`,
		j.ID, j.UserID, j.Procedure, j.Timeline,
		j.BudgetMin, j.BudgetMax, j.BudgetPreference, string(j.Status),
	).Scan(&j.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting journey: %w", err)
	}
	return nil
}

// GetJourney retrieves a journey, restricted to the caller's rows when the
// context is scoped.
func (s *Store) GetJourney(ctx context.Context, id string) (*storage.Journey, error) {
	query := `
		SELECT id, user_id, procedure, timeline,
		       budget_min, budget_max, budget_preference, status, created_at
		FROM journeys
		WHERE id = $1
	`
	args := []any{id}
	if caller := storage.CallerFrom(ctx); caller != "" {
		query += " AND user_id = $2"
		args = append(args, caller)
	}

	var j storage.Journey
	var status string
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&j.ID, &j.UserID, &j.Procedure, &j.Timeline,
		&j.BudgetMin, &j.BudgetMax, &j.BudgetPreference, &status, &j.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying journey: %w", err)
	}
	j.Status = storage.JourneyStatus(status)
	return &j, nil
}

const facilityColumns = `id, name, city, country, procedures, rating, review_count,
	accreditations, price_from, currency, website`

// SearchFacilities returns facilities ordered by rating descending.
func (s *Store) SearchFacilities(ctx context.Context, q storage.FacilityQuery) ([]storage.Facility, error) {
	query := "SELECT " + facilityColumns + " FROM facilities"
	var args []any
	if q.Country != "" {
		args = append(args, "%"+escapeLike(q.Country)+"%")
		query += fmt.Sprintf(" WHERE country ILIKE $%d", len(args))
	}
	query += " ORDER BY rating DESC, name"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying facilities: %w", err)
	}
	return collectFacilities(rows)
}

// FindFacilityByName returns the best-rated facility whose name contains
// name, ignoring case.
func (s *Store) FindFacilityByName(ctx context.Context, name string) (*storage.Facility, error) {
	if name == "" {
		return nil, storage.ErrNotFound
	}
	rows, err := s.pool.Query(ctx,
		"SELECT "+facilityColumns+" FROM facilities WHERE name ILIKE $1 ORDER BY rating DESC, name LIMIT 1",
		"%"+escapeLike(name)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("querying facility by name: %w", err)
	}
	facilities, err := collectFacilities(rows)
	if err != nil {
		return nil, err
	}
	if len(facilities) == 0 {
		return nil, storage.ErrNotFound
	}
	return &facilities[0], nil
}

// GetFacilities returns facilities by ID in the order of ids.
func (s *Store) GetFacilities(ctx context.Context, ids []string) ([]storage.Facility, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		"SELECT "+facilityColumns+" FROM facilities WHERE id = ANY($1)",
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("querying facilities by id: %w", err)
	}
	found, err := collectFacilities(rows)
	if err != nil {
		return nil, err
	}
	return storage.OrderByIDs(found, ids), nil
}

// UpsertFacilities inserts or replaces catalogue rows.
func (s *Store) UpsertFacilities(ctx context.Context, facilities []storage.Facility) error {
	batch := &pgx.Batch{}
	for _, f := range facilities {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		batch.Queue(`
			INSERT INTO facilities (
				id, name, city, country, procedures, rating, review_count,
				accreditations, price_from, currency, website
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, city = EXCLUDED.city, country = EXCLUDED.country,
				procedures = EXCLUDED.procedures, rating = EXCLUDED.rating,
				review_count = EXCLUDED.review_count, accreditations = EXCLUDED.accreditations,
				price_from = EXCLUDED.price_from, currency = EXCLUDED.currency,
				website = EXCLUDED.website
		`,
			f.ID, f.Name, f.City, f.Country, nonNil(f.Procedures), f.Rating, f.ReviewCount,
			nonNil(f.Accreditations), f.PriceFrom, f.Currency, f.Website,
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting facilities: %w", err)
	}
	return nil
}

// AddShortlistEntry inserts e. The unique index on (journey_id,
// facility_id) turns a duplicate into ErrConflict. A scoped caller cannot
// add to a journey owned by someone else; that reads as ErrNotFound.
func (s *Store) AddShortlistEntry(ctx context.Context, e storage.ShortlistEntry) error {
	result, err := s.pool.Exec(ctx, `
		INSERT INTO shortlist_entries (journey_id, facility_id, user_id)
		SELECT $1::text, $2::text, $3::text
		WHERE $4::text = '' OR NOT EXISTS (
			SELECT 1 FROM journeys WHERE id = $1::text AND user_id <> $4::text
		)`,
		e.JourneyID, e.FacilityID, e.UserID, storage.CallerFrom(ctx),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting shortlist entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// RemoveShortlistEntry deletes the (journey, facility) entry.
func (s *Store) RemoveShortlistEntry(ctx context.Context, journeyID, facilityID string) error {
	query := "DELETE FROM shortlist_entries WHERE journey_id = $1 AND facility_id = $2"
	args := []any{journeyID, facilityID}
	if caller := storage.CallerFrom(ctx); caller != "" {
		query += " AND user_id = $3"
		args = append(args, caller)
	}

	result, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting shortlist entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListShortlist returns a journey's entries, oldest first.
func (s *Store) ListShortlist(ctx context.Context, journeyID string) ([]storage.ShortlistEntry, error) {
	query := "SELECT journey_id, facility_id, user_id, created_at FROM shortlist_entries WHERE journey_id = $1"
	args := []any{journeyID}
	if caller := storage.CallerFrom(ctx); caller != "" {
		query += " AND user_id = $2"
		args = append(args, caller)
	}
	query += " ORDER BY created_at, facility_id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying shortlist: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.ShortlistEntry, error) {
		var e storage.ShortlistEntry
		err := row.Scan(&e.JourneyID, &e.FacilityID, &e.UserID, &e.CreatedAt)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning shortlist: %w", err)
	}
	return entries, nil
}

// SaveComparison stores a comparison snapshot.
func (s *Store) SaveComparison(ctx context.Context, c *storage.Comparison) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO comparisons (id, journey_id, user_id, facility_ids, snapshot)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`,
		c.ID, c.JourneyID, c.UserID, nonNil(c.FacilityIDs), []byte(c.Snapshot),
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting comparison: %w", err)
	}
	return nil
}

// AppendTurns appends conversation turns in one batch, preserving order.
func (s *Store) AppendTurns(ctx context.Context, journeyID string, turns ...storage.ConversationTurn) error {
	if journeyID == "" {
		return fmt.Errorf("appending turns: journey id is required")
	}
	if len(turns) == 0 {
		return nil
	}
	if storage.CallerFrom(ctx) != "" {
		if _, err := s.GetJourney(ctx, journeyID); err != nil {
			return err
		}
	}

	batch := &pgx.Batch{}
	for _, t := range turns {
		batch.Queue(
			"INSERT INTO conversation_turns (journey_id, role, text, payload) VALUES ($1, $2, $3, $4)",
			journeyID, string(t.Role), t.Text, nullJSON(t.Payload),
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting turns: %w", err)
	}
	return nil
}

// ListTurns returns a journey's history, oldest first.
func (s *Store) ListTurns(ctx context.Context, journeyID string) ([]storage.ConversationTurn, error) {
	if storage.CallerFrom(ctx) != "" {
		if _, err := s.GetJourney(ctx, journeyID); err != nil {
			return nil, err
		}
	}

	rows, err := s.pool.Query(ctx,
		"SELECT role, text, payload, created_at FROM conversation_turns WHERE journey_id = $1 ORDER BY seq",
		journeyID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	turns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.ConversationTurn, error) {
		var t storage.ConversationTurn
		var role string
		var payload []byte
		if err := row.Scan(&role, &t.Text, &payload, &t.CreatedAt); err != nil {
			return t, err
		}
		t.Role = storage.TurnRole(role)
		t.Payload = payload
		return t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning turns: %w", err)
	}
	return turns, nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func collectFacilities(rows pgx.Rows) ([]storage.Facility, error) {
	facilities, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.Facility, error) {
		var f storage.Facility
		err := row.Scan(
			&f.ID, &f.Name, &f.City, &f.Country, &f.Procedures, &f.Rating, &f.ReviewCount,
			&f.Accreditations, &f.PriceFrom, &f.Currency, &f.Website,
		)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning facilities: %w", err)
	}
	return facilities, nil
}

// nullJSON converts nil/empty byte slices to nil for nullable JSONB columns.
func nullJSON(b []byte) *[]byte {
	if len(b) == 0 {
		return nil
	}
	return &b
}

// nonNil maps a nil slice to an empty one for NOT NULL array columns.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// isDuplicateKey reports whether err is a PostgreSQL unique violation.
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
