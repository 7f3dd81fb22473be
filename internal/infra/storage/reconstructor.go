package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/events"
	"github.com/MRamiBalles/murmur/internal/memory"
)

// Reconstructor rebuilds a pawn's opinion log from storage. It prefers the
// opinion archive and falls back to OPINION_LOGGED events in the ledger.
type Reconstructor struct {
	opinions OpinionRepository
	events   EventRepository
}

func NewReconstructor(opinions OpinionRepository, events EventRepository) *Reconstructor {
	return &Reconstructor{opinions: opinions, events: events}
}

// Recall implements memory.History.
func (r *Reconstructor) Recall(ctx context.Context, owner pawn.ID, limit int) ([]memory.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	if r.opinions != nil {
		entries, err := r.opinions.GetByOwner(ctx, int64(owner), limit)
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			return entries, nil
		}
	}
	if r.events == nil {
		return nil, nil
	}
	return r.fromLedger(ctx, owner, limit)
}

func (r *Reconstructor) fromLedger(ctx context.Context, owner pawn.ID, limit int) ([]memory.Entry, error) {
	stored, err := r.events.GetByActorID(ctx, strconv.FormatInt(int64(owner), 10))
	if err != nil {
		return nil, fmt.Errorf("rebuild opinions of %d: %w", owner, err)
	}

	var out []memory.Entry
	for i := len(stored) - 1; i >= 0 && len(out) < limit; i-- {
		e := stored[i]
		if e.EventType != string(events.EventTypeOpinionLogged) {
			continue
		}
		var entry memory.Entry
		if err := json.Unmarshal(e.Payload, &entry); err != nil {
			continue
		}
		if entry.Owner != owner {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

var _ memory.History = (*Reconstructor)(nil)
