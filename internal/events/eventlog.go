// Package events provides the append-only event log shared by the host
// bridge and the engine. Host input goes in, rendered opinions come out.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of an event.
type EventType string

const (
	// Engine output
	EventTypeTimeTick      EventType = "TIME_TICK"
	EventTypeOpinionLogged EventType = "OPINION_LOGGED"
	EventTypeCommentary    EventType = "COMMENTARY"

	// Host input
	EventTypeObservation  EventType = "OBSERVATION"
	EventTypePawnUpsert   EventType = "PAWN_UPSERT"
	EventTypePawnRemoved  EventType = "PAWN_REMOVED"
	EventTypeAdvanceClock EventType = "ADVANCE_CLOCK"
)

// IsHostInput reports whether the engine should consume the event.
func (t EventType) IsHostInput() bool {
	switch t {
	case EventTypeObservation, EventTypePawnUpsert, EventTypePawnRemoved, EventTypeAdvanceClock:
		return true
	}
	return false
}

// GameEvent represents an immutable record in the log.
type GameEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`  // Who performed the action
	TargetID  string      `json:"target_id"` // Who was affected (optional)
	Payload   interface{} `json:"payload"`   // Event-specific data
	Tick      int64       `json:"tick"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// Subscriber is notified after each append, outside the log's lock.
type Subscriber func(GameEvent)

// EventLog is the in-memory append-only log, optionally written through to
// a persister.
type EventLog struct {
	mu          sync.RWMutex
	events      []GameEvent
	persister   EventPersister
	subscribers []Subscriber
	onError     func(GameEvent, error)
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]GameEvent, 0),
		persister: persister,
	}
}

// OnPersistError registers a callback for failed write-throughs.
func (el *EventLog) OnPersistError(fn func(GameEvent, error)) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.onError = fn
}

// Subscribe registers fn for every future event.
func (el *EventLog) Subscribe(fn Subscriber) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.subscribers = append(el.subscribers, fn)
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event GameEvent) {
	if event.ID == "" {
		event.ID = GenerateEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	el.mu.Lock()
	el.events = append(el.events, event)
	subs := el.subscribers
	persister, onError := el.persister, el.onError
	el.mu.Unlock()

	if persister != nil {
		go func(e GameEvent) {
			if err := persister.Append(e); err != nil && onError != nil {
				onError(e, err)
			}
		}(event)
	}
	for _, fn := range subs {
		fn(event)
	}
}

// GetByActor returns all events performed by a specific actor.
func (el *EventLog) GetByActor(actorID string) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.ActorID == actorID {
			result = append(result, e)
		}
	}
	return result
}

// GetByType returns all events of one type.
func (el *EventLog) GetByType(t EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Since returns a copy of the events from index from onwards.
func (el *EventLog) Since(from int) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	if from >= len(el.events) {
		return nil
	}
	if from < 0 {
		from = 0
	}
	out := make([]GameEvent, len(el.events)-from)
	copy(out, el.events[from:])
	return out
}

// Replay returns a copy of the full history.
func (el *EventLog) Replay() []GameEvent {
	return el.Since(0)
}

func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
