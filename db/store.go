// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/society-live/models"
)

// ErrEventNotFound is returned when an event ID does not exist.
var ErrEventNotFound = errors.New("event not found")

// Store is the relational system of record for events, performances and votes.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// CreateEvent inserts a new event
func (s *Store) CreateEvent(ctx context.Context, e models.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event (id, title, description, venue, starts_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.Title, e.Description, e.Venue, nullTime(e.StartsAt), e.CreatedAt)
	if err != nil {
		return s.fail("create_event", err, "event_id", e.ID)
	}
	return nil
}

// GetEvent returns one event
func (s *Store) GetEvent(ctx context.Context, id string) (models.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, venue, starts_at, created_at
		FROM event
		WHERE id = $1
	`, id)

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, ErrEventNotFound
	}
	if err != nil {
		return models.Event{}, s.fail("get_event", err, "event_id", id)
	}
	return e, nil
}

// ListEvents returns all events, soonest first
func (s *Store) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, venue, starts_at, created_at
		FROM event
		ORDER BY starts_at, created_at
	`)
	if err != nil {
		return nil, s.fail("list_events", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, s.fail("list_events", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("list_events", err)
	}
	return events, nil
}

// CreatePerformance inserts a performance under an existing event
func (s *Store) CreatePerformance(ctx context.Context, p models.Performance) error {
	if _, err := s.GetEvent(ctx, p.EventID); err != nil {
		return err
	}

	options, err := json.Marshal(p.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO performance (id, event_id, title, performer, options, voting_enabled, voting_duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.EventID, p.Title, p.Performer, string(options), p.VotingEnabled, p.VotingDurationSeconds, p.CreatedAt)
	if err != nil {
		return s.fail("create_performance", err, "performance_id", p.ID, "event_id", p.EventID)
	}
	return nil
}

const performanceColumns = `id, event_id, title, performer, options, voting_enabled,
		       voting_duration_seconds, voting_opened_at, created_at`

// GetPerformance returns one performance or models.ErrNotFound
func (s *Store) GetPerformance(ctx context.Context, id string) (models.Performance, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+performanceColumns+`
		FROM performance
		WHERE id = $1
	`, id)

	p, err := scanPerformance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Performance{}, models.ErrNotFound
	}
	if err != nil {
		return models.Performance{}, s.fail("get_performance", err, "performance_id", id)
	}
	return p, nil
}

// ListPerformances returns the performances of one event
func (s *Store) ListPerformances(ctx context.Context, eventID string) ([]models.Performance, error) {
	return s.queryPerformances(ctx, "list_performances", `
		SELECT `+performanceColumns+`
		FROM performance
		WHERE event_id = $1
		ORDER BY created_at, id
	`, eventID)
}

// ListVotingPerformances returns every performance currently accepting votes
func (s *Store) ListVotingPerformances(ctx context.Context) ([]models.Performance, error) {
	return s.queryPerformances(ctx, "list_voting_performances", `
		SELECT `+performanceColumns+`
		FROM performance
		WHERE voting_enabled = $1
		ORDER BY id
	`, true)
}

func (s *Store) queryPerformances(ctx context.Context, op, query string, args ...any) ([]models.Performance, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.fail(op, err)
	}
	defer rows.Close()

	performances := []models.Performance{}
	for rows.Next() {
		p, err := scanPerformance(rows)
		if err != nil {
			return nil, s.fail(op, err)
		}
		performances = append(performances, p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(op, err)
	}
	return performances, nil
}

// SetVotingEnabled flips voting on or off. Opening stamps voting_opened_at,
// closing clears it.
func (s *Store) SetVotingEnabled(ctx context.Context, id string, enabled bool, at time.Time) (models.Performance, error) {
	var openedAt *time.Time
	if enabled {
		openedAt = &at
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE performance
		SET voting_enabled = $1, voting_opened_at = $2
		WHERE id = $3
	`, enabled, nullTime(openedAt), id)
	if err != nil {
		return models.Performance{}, s.fail("set_voting_enabled", err, "performance_id", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Performance{}, models.ErrNotFound
	}

	return s.GetPerformance(ctx, id)
}

// SetVotingDuration changes how long voting stays open once enabled
func (s *Store) SetVotingDuration(ctx context.Context, id string, seconds int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE performance SET voting_duration_seconds = $1 WHERE id = $2
	`, seconds, id)
	if err != nil {
		return s.fail("set_voting_duration", err, "performance_id", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// InsertVote records a vote inside a transaction that re-checks the
// performance is open and the option is valid. A second vote by the same
// user fails with models.ErrDuplicateVote.
func (s *Store) InsertVote(ctx context.Context, v models.Vote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.fail("insert_vote", err, "performance_id", v.PerformanceID)
	}
	defer tx.Rollback()

	var enabled bool
	var rawOptions string
	err = tx.QueryRowContext(ctx, `
		SELECT voting_enabled, options FROM performance WHERE id = $1
	`, v.PerformanceID).Scan(&enabled, &rawOptions)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return s.fail("insert_vote", err, "performance_id", v.PerformanceID)
	}
	if !enabled {
		return models.ErrVotingClosed
	}

	options, err := decodeOptions(rawOptions)
	if err != nil {
		return s.fail("insert_vote", err, "performance_id", v.PerformanceID)
	}
	if !(models.Performance{Options: options}).HasOption(v.Value) {
		return models.ErrInvalidOption
	}

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM vote
			WHERE performance_id = $1 AND user_id = $2
		)
	`, v.PerformanceID, v.UserID).Scan(&exists)
	if err != nil {
		return s.fail("insert_vote", err, "performance_id", v.PerformanceID)
	}
	if exists {
		return models.ErrDuplicateVote
	}

	// UNIQUE (performance_id, user_id) still guards against other writers
	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote (id, performance_id, user_id, value, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, v.ID, v.PerformanceID, v.UserID, v.Value, v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateVote
		}
		return s.fail("insert_vote", err, "performance_id", v.PerformanceID, "user_id", v.UserID)
	}

	if err := tx.Commit(); err != nil {
		return s.fail("insert_vote_commit", err, "performance_id", v.PerformanceID)
	}
	return nil
}

// CountVotes aggregates committed votes per option
func (s *Store) CountVotes(ctx context.Context, performanceID string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT value, COUNT(*) FROM vote
		WHERE performance_id = $1
		GROUP BY value
	`, performanceID)
	if err != nil {
		return nil, s.fail("count_votes", err, "performance_id", performanceID)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var value string
		var n int64
		if err := rows.Scan(&value, &n); err != nil {
			return nil, s.fail("count_votes", err, "performance_id", performanceID)
		}
		counts[value] = n
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("count_votes", err, "performance_id", performanceID)
	}
	return counts, nil
}

// fail logs a database error and wraps it as a persistence failure
func (s *Store) fail(op string, err error, attrs ...any) error {
	s.logger.Error("store operation failed", append([]any{"op", op, "error", err}, attrs...)...)
	return fmt.Errorf("%s: %w: %w", op, models.ErrPersistence, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (models.Event, error) {
	var e models.Event
	var startsAt sql.NullTime
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Venue, &startsAt, &e.CreatedAt); err != nil {
		return models.Event{}, err
	}
	if startsAt.Valid {
		t := startsAt.Time
		e.StartsAt = &t
	}
	return e, nil
}

func scanPerformance(row rowScanner) (models.Performance, error) {
	var p models.Performance
	var rawOptions string
	var openedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.EventID, &p.Title, &p.Performer, &rawOptions, &p.VotingEnabled,
		&p.VotingDurationSeconds, &openedAt, &p.CreatedAt,
	)
	if err != nil {
		return models.Performance{}, err
	}

	p.Options, err = decodeOptions(rawOptions)
	if err != nil {
		return models.Performance{}, err
	}
	if openedAt.Valid {
		t := openedAt.Time
		p.VotingOpenedAt = &t
	}
	return p, nil
}

func decodeOptions(raw string) ([]string, error) {
	var options []string
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return options, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// isUniqueViolation recognises unique-constraint errors from both drivers
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return false
}
