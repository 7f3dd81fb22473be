package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MRamiBalles/murmur/internal/events"
	"github.com/MRamiBalles/murmur/internal/platform/metrics"
)

const writeTimeout = 5 * time.Second

// Persister writes the in-memory event log through to an EventRepository.
type Persister struct {
	repo    EventRepository
	metrics *metrics.Collector
}

func NewPersister(repo EventRepository, m *metrics.Collector) *Persister {
	if m == nil {
		m = metrics.Get()
	}
	return &Persister{repo: repo, metrics: m}
}

// Append implements events.EventPersister.
func (p *Persister) Append(event events.GameEvent) error {
	stored, err := ToStored(event)
	if err != nil {
		p.metrics.RecordEventWrite(0, err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	start := time.Now()
	err = p.repo.Append(ctx, stored)
	p.metrics.RecordEventWrite(time.Since(start), err)
	return err
}

// ToStored converts a log event to its persisted form.
func ToStored(event events.GameEvent) (StoredEvent, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return StoredEvent{}, fmt.Errorf("marshal payload of %s: %w", event.Type, err)
	}
	return StoredEvent{
		ID:        event.ID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		ActorID:   event.ActorID,
		TargetID:  event.TargetID,
		Payload:   payload,
		Tick:      event.Tick,
	}, nil
}

var _ events.EventPersister = (*Persister)(nil)
