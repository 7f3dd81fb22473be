package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
	"github.com/MRamiBalles/murmur/internal/memory"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event StoredEvent) error {
	payload := string(event.Payload)
	if payload == "" {
		payload = "null"
	}
	query := `
		INSERT INTO events (id, timestamp, event_type, actor_id, target_id, payload, tick)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Timestamp, event.EventType, event.ActorID,
		event.TargetID, payload, event.Tick,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]StoredEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []StoredEvent
	for rows.Next() {
		var e StoredEvent
		var payloadStr string
		err := rows.Scan(
			&e.ID, &e.Timestamp, &e.EventType, &e.ActorID,
			&e.TargetID, &payloadStr, &e.Tick,
		)
		if err != nil {
			return nil, err
		}
		e.Payload = []byte(payloadStr)
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) GetByActorID(ctx context.Context, actorID string) ([]StoredEvent, error) {
	query := `SELECT id, timestamp, event_type, actor_id, target_id, payload, tick FROM events WHERE actor_id = ? ORDER BY tick ASC, timestamp ASC`
	return r.getMany(ctx, query, actorID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, eventType string) ([]StoredEvent, error) {
	query := `SELECT id, timestamp, event_type, actor_id, target_id, payload, tick FROM events WHERE event_type = ? ORDER BY tick ASC, timestamp ASC`
	return r.getMany(ctx, query, eventType)
}

// SQLiteOpinionRepository implements OpinionRepository for SQLite.
type SQLiteOpinionRepository struct {
	db *sql.DB
}

func NewSQLiteOpinionRepository(db *sql.DB) *SQLiteOpinionRepository {
	return &SQLiteOpinionRepository{db: db}
}

func (r *SQLiteOpinionRepository) SaveOpinion(ctx context.Context, e memory.Entry) error {
	query := `
		INSERT INTO opinion_log (owner_id, owner_name, other_id, other_name, text, rule, interaction, pawn_state, category, aware, is_self, as_observer, tick)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		int64(e.Owner), e.OwnerName, int64(e.Other), e.OtherName, e.Text, e.Rule,
		string(e.Interaction), string(e.State), string(e.Category),
		e.Aware, e.IsSelf, e.AsObserver, e.Tick,
	)
	if err != nil {
		return fmt.Errorf("failed to save opinion: %w", err)
	}
	return nil
}

func (r *SQLiteOpinionRepository) GetByOwner(ctx context.Context, owner int64, limit int) ([]memory.Entry, error) {
	query := `
		SELECT owner_id, owner_name, other_id, other_name, text, rule, interaction, pawn_state, category, aware, is_self, as_observer, tick
		FROM opinion_log WHERE owner_id = ? ORDER BY seq DESC LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query opinions: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// scanEntries reads rows in the opinion_log column order shared by both drivers.
func scanEntries(rows *sql.Rows) ([]memory.Entry, error) {
	var out []memory.Entry
	for rows.Next() {
		var e memory.Entry
		var owner, other int64
		var interaction, state, category string
		if err := rows.Scan(
			&owner, &e.OwnerName, &other, &e.OtherName, &e.Text, &e.Rule,
			&interaction, &state, &category, &e.Aware, &e.IsSelf, &e.AsObserver, &e.Tick,
		); err != nil {
			return nil, fmt.Errorf("failed to scan opinion: %w", err)
		}
		e.Owner = pawn.ID(owner)
		e.Other = pawn.ID(other)
		e.Interaction = situation.InteractionType(interaction)
		e.State = situation.PawnState(state)
		e.Category = situation.Category(category)
		out = append(out, e)
	}
	return out, rows.Err()
}

var (
	_ EventRepository   = (*SQLiteEventRepository)(nil)
	_ OpinionRepository = (*SQLiteOpinionRepository)(nil)
)
