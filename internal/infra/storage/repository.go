// Package storage provides the persistence layer: an event ledger and an
// opinion archive, on SQLite or PostgreSQL.
package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MRamiBalles/murmur/internal/memory"
)

// StoredEvent mirrors events.GameEvent for persistence with the payload
// kept as raw JSON.
type StoredEvent struct {
	ID        string          `json:"id" db:"id"`
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
	EventType string          `json:"event_type" db:"event_type"`
	ActorID   string          `json:"actor_id" db:"actor_id"`
	TargetID  string          `json:"target_id" db:"target_id"`
	Payload   json.RawMessage `json:"payload" db:"payload"`
	Tick      int64           `json:"tick" db:"tick"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger. Appending an ID twice
	// is not an error.
	Append(ctx context.Context, event StoredEvent) error

	// GetByActorID retrieves all events performed by an actor, oldest first.
	GetByActorID(ctx context.Context, actorID string) ([]StoredEvent, error)

	// GetByEventType retrieves all events of a specific type, oldest first.
	GetByEventType(ctx context.Context, eventType string) ([]StoredEvent, error)
}

// OpinionRepository archives opinion log entries beyond the in-memory ring.
type OpinionRepository interface {
	SaveOpinion(ctx context.Context, e memory.Entry) error

	// GetByOwner returns up to limit entries of one pawn, newest first.
	GetByOwner(ctx context.Context, owner int64, limit int) ([]memory.Entry, error)
}
