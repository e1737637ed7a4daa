// Package sqlite provides a single-node storage.Store backed by an embedded
// SQLite database (modernc.org/sqlite, no cgo). List columns are stored as
// JSON text and timestamps as Unix milliseconds.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/careroute/concierge/pkg/storage"
)

// Config holds SQLite settings.
type Config struct {
	// Path is the database file. ":memory:" keeps everything in memory.
	Path string

	// MigrateOnStart runs schema migrations automatically at startup.
	MigrateOnStart bool
}

// Store is a SQLite-backed storage.Store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ storage.Store          = (*Store)(nil)
	_ storage.FacilitySeeder = (*Store)(nil)
)

// New opens (creating if needed) the database at cfg.Path.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection serialises writers and keeps ":memory:" databases
	// shared across calls.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if cfg.MigrateOnStart {
		if err := s.Migrate(ctx); err != nil {
			db.Close()
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
	if j.CreatedAt.IsZero() {
		j.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journeys (
			id, user_id, procedure, timeline,
			budget_min, budget_max, budget_preference, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.UserID, j.Procedure, j.Timeline,
		j.BudgetMin, j.BudgetMax, j.BudgetPreference, string(j.Status), j.CreatedAt.UnixMilli(),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert journey: %w", err)
	}
	return nil
}

// GetJourney retrieves a journey, restricted to the caller's rows when the
// context is scoped.
func (s *Store) GetJourney(ctx context.Context, id string) (*storage.Journey, error) {
	query := `
		SELECT id, user_id, procedure, timeline,
		       budget_min, budget_max, budget_preference, status, created_at
		FROM journeys WHERE id = ?`
	args := []any{id}
	if caller := storage.CallerFrom(ctx); caller != "" {
		query += " AND user_id = ?"
		args = append(args, caller)
	}

	var (
		j          storage.Journey
		budgetMin  sql.NullFloat64
		budgetMax  sql.NullFloat64
		preference sql.NullString
		status     string
		createdAt  int64
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&j.ID, &j.UserID, &j.Procedure, &j.Timeline,
		&budgetMin, &budgetMax, &preference, &status, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan journey: %w", err)
	}

	if budgetMin.Valid {
		j.BudgetMin = &budgetMin.Float64
	}
	if budgetMax.Valid {
		j.BudgetMax = &budgetMax.Float64
	}
	if preference.Valid {
		j.BudgetPreference = &preference.String
	}
	j.Status = storage.JourneyStatus(status)
	j.CreatedAt = time.UnixMilli(createdAt)
	return &j, nil
}

const facilityColumns = `id, name, city, country, procedures, rating, review_count,
	accreditations, price_from, currency, website`

// SearchFacilities returns facilities ordered by rating descending.
func (s *Store) SearchFacilities(ctx context.Context, q storage.FacilityQuery) ([]storage.Facility, error) {
	query := "SELECT " + facilityColumns + " FROM facilities"
	var args []any
	if q.Country != "" {
		query += ` WHERE LOWER(country) LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(strings.ToLower(q.Country))+"%")
	}
	query += " ORDER BY rating DESC, name"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}
	return s.queryFacilities(ctx, query, args...)
}

// FindFacilityByName returns the best-rated facility whose name contains
// name, ignoring case.
func (s *Store) FindFacilityByName(ctx context.Context, name string) (*storage.Facility, error) {
	if name == "" {
		return nil, storage.ErrNotFound
	}
	found, err := s.queryFacilities(ctx,
		"SELECT "+facilityColumns+` FROM facilities WHERE LOWER(name) LIKE ? ESCAPE '\' ORDER BY rating DESC, name LIMIT 1`,
		"%"+escapeLike(strings.ToLower(name))+"%",
	)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, storage.ErrNotFound
	}
	return &found[0], nil
}

// GetFacilities returns facilities by ID in the order of ids.
func (s *Store) GetFacilities(ctx context.Context, ids []string) ([]storage.Facility, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	found, err := s.queryFacilities(ctx,
		"SELECT "+facilityColumns+" FROM facilities WHERE id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return nil, err
	}
	return storage.OrderByIDs(found, ids), nil
}

// UpsertFacilities inserts or replaces catalogue rows in one transaction.
func (s *Store) UpsertFacilities(ctx context.Context, facilities []storage.Facility) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, f := range facilities {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		procedures, err := marshalList(f.Procedures)
		if err != nil {
			return err
		}
		accreditations, err := marshalList(f.Accreditations)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO facilities (`+facilityColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name, city = excluded.city, country = excluded.country,
				procedures = excluded.procedures, rating = excluded.rating,
				review_count = excluded.review_count, accreditations = excluded.accreditations,
				price_from = excluded.price_from, currency = excluded.currency,
				website = excluded.website`,
			f.ID, f.Name, f.City, f.Country, procedures, f.Rating, f.ReviewCount,
			accreditations, f.PriceFrom, f.Currency, f.Website,
		)
		if err != nil {
			return fmt.Errorf("upsert facility %s: %w", f.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// AddShortlistEntry inserts e; a duplicate (journey, facility) pair is
// ErrConflict. A scoped caller adding to another user's journey gets
// ErrNotFound.
func (s *Store) AddShortlistEntry(ctx context.Context, e storage.ShortlistEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	caller := storage.CallerFrom(ctx)
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO shortlist_entries (journey_id, facility_id, user_id, created_at)
		SELECT ?, ?, ?, ?
		WHERE ? = '' OR NOT EXISTS (
			SELECT 1 FROM journeys WHERE id = ? AND user_id <> ?
		)`,
		e.JourneyID, e.FacilityID, e.UserID, e.CreatedAt.UnixMilli(),
		caller, e.JourneyID, caller,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert shortlist entry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// RemoveShortlistEntry deletes the (journey, facility) entry.
func (s *Store) RemoveShortlistEntry(ctx context.Context, journeyID, facilityID string) error {
	query := "DELETE FROM shortlist_entries WHERE journey_id = ? AND facility_id = ?"
	args := []any{journeyID, facilityID}
	if caller := storage.CallerFrom(ctx); caller != "" {
		query += " AND user_id = ?"
		args = append(args, caller)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete shortlist entry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListShortlist returns a journey's entries in insertion order.
func (s *Store) ListShortlist(ctx context.Context, journeyID string) ([]storage.ShortlistEntry, error) {
	query := "SELECT journey_id, facility_id, user_id, created_at FROM shortlist_entries WHERE journey_id = ?"
	args := []any{journeyID}
	if caller := storage.CallerFrom(ctx); caller != "" {
		query += " AND user_id = ?"
		args = append(args, caller)
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query shortlist: %w", err)
	}
	defer rows.Close()

	var entries []storage.ShortlistEntry
	for rows.Next() {
		var e storage.ShortlistEntry
		var createdAt int64
		if err := rows.Scan(&e.JourneyID, &e.FacilityID, &e.UserID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan shortlist entry: %w", err)
		}
		e.CreatedAt = time.UnixMilli(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveComparison stores a comparison snapshot.
func (s *Store) SaveComparison(ctx context.Context, c *storage.Comparison) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	ids, err := marshalList(c.FacilityIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO comparisons (id, journey_id, user_id, facility_ids, snapshot, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		c.ID, c.JourneyID, c.UserID, ids, string(c.Snapshot), c.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert comparison: %w", err)
	}
	return nil
}

// AppendTurns appends conversation turns in one transaction.
func (s *Store) AppendTurns(ctx context.Context, journeyID string, turns ...storage.ConversationTurn) error {
	if journeyID == "" {
		return errors.New("appending turns: journey id is required")
	}
	if storage.CallerFrom(ctx) != "" {
		if _, err := s.GetJourney(ctx, journeyID); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range turns {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = s.now()
		}
		var payload any
		if len(t.Payload) > 0 {
			payload = string(t.Payload)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO conversation_turns (journey_id, role, text, payload, created_at) VALUES (?, ?, ?, ?, ?)",
			journeyID, string(t.Role), t.Text, payload, t.CreatedAt.UnixMilli(),
		); err != nil {
			return fmt.Errorf("insert turn: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
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

	rows, err := s.db.QueryContext(ctx,
		"SELECT role, text, payload, created_at FROM conversation_turns WHERE journey_id = ? ORDER BY seq",
		journeyID,
	)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []storage.ConversationTurn
	for rows.Next() {
		var (
			t         storage.ConversationTurn
			role      string
			payload   sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&role, &t.Text, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.Role = storage.TurnRole(role)
		if payload.Valid {
			t.Payload = json.RawMessage(payload.String)
		}
		t.CreatedAt = time.UnixMilli(createdAt)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// HealthCheck verifies database connectivity.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) queryFacilities(ctx context.Context, query string, args ...any) ([]storage.Facility, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query facilities: %w", err)
	}
	defer rows.Close()

	var out []storage.Facility
	for rows.Next() {
		var (
			f              storage.Facility
			procedures     string
			accreditations string
			priceFrom      sql.NullFloat64
		)
		if err := rows.Scan(
			&f.ID, &f.Name, &f.City, &f.Country, &procedures, &f.Rating, &f.ReviewCount,
			&accreditations, &priceFrom, &f.Currency, &f.Website,
		); err != nil {
			return nil, fmt.Errorf("scan facility: %w", err)
		}
		if err := json.Unmarshal([]byte(procedures), &f.Procedures); err != nil {
			return nil, fmt.Errorf("decode procedures for %s: %w", f.ID, err)
		}
		if err := json.Unmarshal([]byte(accreditations), &f.Accreditations); err != nil {
			return nil, fmt.Errorf("decode accreditations for %s: %w", f.ID, err)
		}
		if priceFrom.Valid {
			f.PriceFrom = &priceFrom.Float64
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func marshalList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// isConstraintViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure.
func isConstraintViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
