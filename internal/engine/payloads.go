package engine

import "github.com/MRamiBalles/murmur/internal/domain/pawn"

// Payloads carried by host input events. Observations use
// situation.Observation and upserts a *pawn.Pawn directly.

// PawnRemovedPayload identifies a pawn that left the map or died.
type PawnRemovedPayload struct {
	PawnID pawn.ID `json:"pawn_id"`
}

// AdvancePayload moves the clock forward.
type AdvancePayload struct {
	Ticks int64 `json:"ticks"`
}

// TimeTickPayload is attached to each TIME_TICK event.
type TimeTickPayload struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}
