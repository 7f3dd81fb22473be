package engine

import (
	"time"

	"github.com/MRamiBalles/murmur/internal/events"
	"github.com/MRamiBalles/murmur/internal/platform/logger"
)

// DefaultQueueInterval is the drain and announce period used when none is
// configured.
const DefaultQueueInterval int64 = 60

// Ticker is the engine's discrete clock. It does NOT know about pawns, only
// tick progression; systems register to hear each tick.
type Ticker struct {
	eventLog      *events.EventLog
	logger        *logger.Logger
	tickNumber    int64
	announceEvery int64
	listeners     []func(tick int64)
}

// NewTicker creates a clock at tick 0. A TIME_TICK event is appended every
// time the clock crosses a multiple of announceEvery.
func NewTicker(eventLog *events.EventLog, log *logger.Logger, announceEvery int64) *Ticker {
	if announceEvery <= 0 {
		announceEvery = DefaultQueueInterval
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Ticker{
		eventLog:      eventLog,
		logger:        log,
		announceEvery: announceEvery,
	}
}

// Now returns the current tick. It is the clock handed to the limiters.
func (t *Ticker) Now() int64 { return t.tickNumber }

// OnTick registers fn to run after every tick, in registration order.
func (t *Ticker) OnTick(fn func(tick int64)) {
	t.listeners = append(t.listeners, fn)
}

// SetTick jumps the clock without running listeners. Used when resuming.
func (t *Ticker) SetTick(tick int64) {
	t.tickNumber = tick
}

// Advance moves the clock forward n ticks, one at a time.
func (t *Ticker) Advance(n int64) {
	if n <= 0 {
		return
	}
	from := t.tickNumber
	for i := int64(0); i < n; i++ {
		t.tickNumber++
		for _, fn := range t.listeners {
			fn(t.tickNumber)
		}
	}

	if t.eventLog == nil || from/t.announceEvery == t.tickNumber/t.announceEvery {
		return
	}
	t.eventLog.Append(events.GameEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeTimeTick,
		ActorID:   "SYSTEM",
		Payload:   TimeTickPayload{From: from, To: t.tickNumber},
		Tick:      t.tickNumber,
	})
	t.logger.Debug("clock advanced", "from", from, "to", t.tickNumber)
}
