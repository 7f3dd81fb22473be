package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/MRamiBalles/murmur/internal/memory"
	"github.com/MRamiBalles/murmur/internal/platform/optimization"
)

// OpenPostgres connects with lib/pq, sizes the pool from tuning and creates
// the tables if they are missing.
func OpenPostgres(dsn string, tuning *optimization.Tuning) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("empty postgres dsn")
	}
	if tuning == nil {
		tuning = optimization.Default()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(tuning.DBMaxOpenConns)
	db.SetMaxIdleConns(tuning.DBMaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	for _, query := range []string{
		`CREATE TABLE IF NOT EXISTS event_log (
    id TEXT PRIMARY KEY,
    timestamp TIMESTAMPTZ NOT NULL,
    event_type TEXT NOT NULL,
    actor_id TEXT NOT NULL,
    target_id TEXT NOT NULL DEFAULT '',
    payload JSONB NOT NULL,
    tick BIGINT NOT NULL DEFAULT 0
)`,
		`CREATE INDEX IF NOT EXISTS idx_event_log_actor ON event_log(actor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_event_log_type ON event_log(event_type)`,
		`CREATE TABLE IF NOT EXISTS opinion_log (
    seq BIGSERIAL PRIMARY KEY,
    owner_id BIGINT NOT NULL,
    owner_name TEXT NOT NULL,
    other_id BIGINT NOT NULL,
    other_name TEXT NOT NULL,
    text TEXT NOT NULL,
    rule TEXT NOT NULL DEFAULT '',
    interaction TEXT NOT NULL,
    pawn_state TEXT NOT NULL,
    category TEXT NOT NULL,
    aware BOOLEAN NOT NULL DEFAULT FALSE,
    is_self BOOLEAN NOT NULL DEFAULT FALSE,
    as_observer BOOLEAN NOT NULL DEFAULT FALSE,
    tick BIGINT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_opinion_log_owner ON opinion_log(owner_id, seq)`,
	} {
		if _, err := db.ExecContext(ctx, query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create postgres schema: %w", err)
		}
	}

	return db, nil
}

// PostgresEventRepository implements EventRepository using PostgreSQL.
type PostgresEventRepository struct {
	db *sql.DB
}

// NewPostgresEventRepository creates a new PostgreSQL event repository.
func NewPostgresEventRepository(db *sql.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

// Append inserts a new event into the immutable ledger.
func (r *PostgresEventRepository) Append(ctx context.Context, event StoredEvent) error {
	payload := []byte(event.Payload)
	if len(payload) == 0 {
		payload = []byte("null")
	}

	query := `
		INSERT INTO event_log (id, timestamp, event_type, actor_id, target_id, payload, tick)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp,
		event.EventType,
		event.ActorID,
		event.TargetID,
		payload,
		event.Tick,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// GetByActorID retrieves all events performed by an actor.
func (r *PostgresEventRepository) GetByActorID(ctx context.Context, actorID string) ([]StoredEvent, error) {
	query := `
		SELECT id, timestamp, event_type, actor_id, target_id, payload, tick
		FROM event_log
		WHERE actor_id = $1
		ORDER BY tick ASC, timestamp ASC
	`
	return r.queryEvents(ctx, query, actorID)
}

// GetByEventType retrieves all events of a specific type.
func (r *PostgresEventRepository) GetByEventType(ctx context.Context, eventType string) ([]StoredEvent, error) {
	query := `
		SELECT id, timestamp, event_type, actor_id, target_id, payload, tick
		FROM event_log
		WHERE event_type = $1
		ORDER BY tick ASC, timestamp ASC
	`
	return r.queryEvents(ctx, query, eventType)
}

func (r *PostgresEventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]StoredEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []StoredEvent
	for rows.Next() {
		var event StoredEvent
		var payload []byte

		err := rows.Scan(
			&event.ID,
			&event.Timestamp,
			&event.EventType,
			&event.ActorID,
			&event.TargetID,
			&payload,
			&event.Tick,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Payload = payload
		events = append(events, event)
	}

	return events, rows.Err()
}

// PostgresOpinionRepository implements OpinionRepository using PostgreSQL.
type PostgresOpinionRepository struct {
	db *sql.DB
}

func NewPostgresOpinionRepository(db *sql.DB) *PostgresOpinionRepository {
	return &PostgresOpinionRepository{db: db}
}

func (r *PostgresOpinionRepository) SaveOpinion(ctx context.Context, e memory.Entry) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO opinion_log (owner_id, owner_name, other_id, other_name, text, rule, interaction, pawn_state, category, aware, is_self, as_observer, tick)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`,
		int64(e.Owner), e.OwnerName, int64(e.Other), e.OtherName, e.Text, e.Rule,
		string(e.Interaction), string(e.State), string(e.Category),
		e.Aware, e.IsSelf, e.AsObserver, e.Tick,
	)
	if err != nil {
		return fmt.Errorf("failed to save opinion: %w", err)
	}
	return nil
}

func (r *PostgresOpinionRepository) GetByOwner(ctx context.Context, owner int64, limit int) ([]memory.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT owner_id, owner_name, other_id, other_name, text, rule, interaction, pawn_state, category, aware, is_self, as_observer, tick
FROM opinion_log
WHERE owner_id = $1
ORDER BY seq DESC
LIMIT $2
`, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query opinions: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

var (
	_ EventRepository   = (*PostgresEventRepository)(nil)
	_ OpinionRepository = (*PostgresOpinionRepository)(nil)
)
