package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
	"github.com/MRamiBalles/murmur/internal/engine"
	"github.com/MRamiBalles/murmur/internal/events"
)

// Host message types.
const (
	MsgObservation = "observation"
	MsgPawnUpsert  = "pawn_upsert"
	MsgPawnRemove  = "pawn_remove"
	MsgAdvance     = "advance"
)

// ErrUnknownMessage is returned for a message type the bridge does not handle.
var ErrUnknownMessage = errors.New("unknown host message")

// HostMessage is one command from the game host.
type HostMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ToEvent decodes a host message into the host input event the engine
// consumes. The payload types match what the engine dispatches on.
func (m HostMessage) ToEvent() (events.GameEvent, error) {
	event := events.GameEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
	}

	switch m.Type {
	case MsgObservation:
		var obs situation.Observation
		if err := json.Unmarshal(m.Payload, &obs); err != nil {
			return event, fmt.Errorf("observation payload: %w", err)
		}
		if obs.Observer == 0 || obs.Observed == 0 {
			return event, fmt.Errorf("observation needs observer and observed")
		}
		event.Type = events.EventTypeObservation
		event.ActorID = strconv.FormatInt(int64(obs.Observer), 10)
		event.TargetID = strconv.FormatInt(int64(obs.Observed), 10)
		event.Payload = obs

	case MsgPawnUpsert:
		// Fields the host leaves out keep the NewPawn defaults.
		p := pawn.NewPawn(0, "", pawn.GenderNone, 0)
		if err := json.Unmarshal(m.Payload, p); err != nil {
			return event, fmt.Errorf("pawn payload: %w", err)
		}
		if p.ID == 0 {
			return event, fmt.Errorf("pawn needs an id")
		}
		event.Type = events.EventTypePawnUpsert
		event.ActorID = strconv.FormatInt(int64(p.ID), 10)
		event.Payload = p

	case MsgPawnRemove:
		var rm engine.PawnRemovedPayload
		if err := json.Unmarshal(m.Payload, &rm); err != nil {
			return event, fmt.Errorf("remove payload: %w", err)
		}
		event.Type = events.EventTypePawnRemoved
		event.ActorID = strconv.FormatInt(int64(rm.PawnID), 10)
		event.Payload = rm

	case MsgAdvance:
		var adv engine.AdvancePayload
		if err := json.Unmarshal(m.Payload, &adv); err != nil {
			return event, fmt.Errorf("advance payload: %w", err)
		}
		if adv.Ticks <= 0 {
			return event, fmt.Errorf("advance needs positive ticks")
		}
		event.Type = events.EventTypeAdvanceClock
		event.ActorID = "HOST"
		event.Payload = adv

	default:
		return event, fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
	}
	return event, nil
}
