package engine

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/MRamiBalles/murmur/internal/cooldown"
	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/rules"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
	"github.com/MRamiBalles/murmur/internal/events"
	"github.com/MRamiBalles/murmur/internal/memory"
	"github.com/MRamiBalles/murmur/internal/opinion"
	"github.com/MRamiBalles/murmur/internal/platform/config"
	"github.com/MRamiBalles/murmur/internal/platform/logger"
	"github.com/MRamiBalles/murmur/internal/platform/metrics"
	"github.com/MRamiBalles/murmur/internal/textgen"
)

// Options are the engine's collaborators. Catalog is required; the rest
// fall back to in-memory or no-op versions.
type Options struct {
	Config   config.EngineConfig
	Catalog  *opinion.Catalog
	Pools    textgen.Pools
	Weights  *rules.Weights
	EventLog *events.EventLog
	Sink     Sink
	Archiver memory.Archiver
	History  memory.History
	Metrics  *metrics.Collector
	Logger   *logger.Logger
}

// Engine is the central orchestrator. All of its state is owned by a single
// goroutine: either the caller of the direct methods, or the loop started by
// Start. Do not mix the two.
type Engine struct {
	cfg      config.EngineConfig
	eventLog *events.EventLog
	logger   *logger.Logger
	metrics  *metrics.Collector
	sink     Sink
	ticker   *Ticker

	registry *pawn.Registry
	store    *memory.Store
	parts    *memory.PartOpinions
	history  memory.History

	opinionLimiter    *cooldown.Limiter
	commentaryLimiter *cooldown.Limiter

	// Sub-systems
	opinionSystem    *OpinionSystem
	commentarySystem *CommentarySystem

	lastProcessedEvent int
}

// NewEngine wires the systems together.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("engine: catalog is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	col := opts.Metrics
	if col == nil {
		col = metrics.Get()
	}
	sink := opts.Sink
	if sink == nil {
		sink = nopSink{}
	}
	weights := rules.DefaultWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}
	cfg := opts.Config
	if cfg.QueueIntervalTicks <= 0 {
		cfg.QueueIntervalTicks = DefaultQueueInterval
	}

	store, err := memory.NewStore(cfg.LogCapacity, cfg.MaxTrackedPawns, opts.Archiver, log)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	e := &Engine{
		cfg:      cfg,
		eventLog: opts.EventLog,
		logger:   log,
		metrics:  col,
		sink:     sink,
		registry: pawn.NewRegistry(),
		store:    store,
		parts:    memory.NewPartOpinions(),
		history:  opts.History,
	}
	e.ticker = NewTicker(opts.EventLog, log, cfg.QueueIntervalTicks)
	e.opinionLimiter = cooldown.NewLimiter(cfg.OpinionCooldownTicks, cfg.OpinionPerTickCap, e.ticker.Now)
	e.commentaryLimiter = cooldown.NewLimiter(cfg.CommentaryCooldownTicks, cfg.CommentaryPerTickCap, e.ticker.Now)

	comp := &composer{
		catalog:          opts.Catalog,
		scorer:           opinion.NewScorer(rng, log),
		assembler:        textgen.NewAssembler(opts.Pools, rng, log),
		rng:              rng,
		generatorEnabled: cfg.GeneratorEnabled,
		generatedChance:  cfg.GeneratedOpinionChance,
	}

	e.opinionSystem = &OpinionSystem{
		cfg:      cfg,
		composer: comp,
		weights:  weights,
		limiter:  e.opinionLimiter,
		store:    store,
		parts:    e.parts,
		rng:      rng,
		clock:    e.ticker.Now,
		metrics:  col,
		logger:   log,
	}
	e.commentarySystem = &CommentarySystem{
		cfg:      cfg,
		composer: comp,
		weights:  weights,
		limiter:  e.commentaryLimiter,
		registry: e.registry,
		rng:      rng,
		clock:    e.ticker.Now,
		metrics:  col,
		logger:   log,
		emit:     e.emit,
	}
	e.ticker.OnTick(e.commentarySystem.OnTick)

	return e, nil
}

// Start runs the engine loop: the clock at the configured tick rate and the
// event log poller. A non-positive tick rate leaves the clock to the host's
// ADVANCE_CLOCK messages. It returns when ctx is done.
func (e *Engine) Start(ctx context.Context) {
	e.logger.Info("Starting opinion engine...", "tick_rate_ms", e.cfg.TickRateMillis)

	var clockC <-chan time.Time
	if e.cfg.TickRateMillis > 0 {
		clock := time.NewTicker(time.Duration(e.cfg.TickRateMillis) * time.Millisecond)
		defer clock.Stop()
		clockC = clock.C
	} else {
		e.logger.Info("Internal clock disabled, waiting for host ticks")
	}

	pollInterval := time.NewTicker(100 * time.Millisecond) // Poll the event log for host input
	defer pollInterval.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine stopped.")
			return
		case <-clockC:
			start := time.Now()
			e.ticker.Advance(1)
			e.metrics.RecordTick(time.Since(start))
		case <-pollInterval.C:
			e.ProcessPending()
		}
	}
}

// ProcessPending dispatches host input appended to the event log since the
// last call.
func (e *Engine) ProcessPending() int {
	if e.eventLog == nil {
		return 0
	}
	newEvents := e.eventLog.Since(e.lastProcessedEvent)
	e.lastProcessedEvent += len(newEvents)

	n := 0
	for _, event := range newEvents {
		if event.Type.IsHostInput() {
			e.dispatch(event)
			n++
		}
	}
	return n
}

// dispatch routes a host event to the matching direct call.
func (e *Engine) dispatch(event events.GameEvent) {
	switch event.Type {
	case events.EventTypeObservation:
		switch obs := event.Payload.(type) {
		case situation.Observation:
			e.Observe(obs)
		case *situation.Observation:
			e.Observe(*obs)
		default:
			e.badPayload(event)
		}

	case events.EventTypePawnUpsert:
		if p, ok := event.Payload.(*pawn.Pawn); ok {
			e.UpsertPawn(p)
		} else {
			e.badPayload(event)
		}

	case events.EventTypePawnRemoved:
		if p, ok := event.Payload.(PawnRemovedPayload); ok {
			e.RemovePawn(p.PawnID)
		} else {
			e.badPayload(event)
		}

	case events.EventTypeAdvanceClock:
		if p, ok := event.Payload.(AdvancePayload); ok {
			e.Advance(p.Ticks)
		} else {
			e.badPayload(event)
		}
	}
}

func (e *Engine) badPayload(event events.GameEvent) {
	e.logger.Warn("host event with unexpected payload", "type", event.Type, "id", event.ID)
}

// Observe handles one qualifying interaction and returns the opinion entries
// it logged. Remarks are queued and spoken later by the clock.
func (e *Engine) Observe(obs situation.Observation) []memory.Entry {
	observer, ok := e.registry.Get(obs.Observer)
	if !ok {
		e.logger.Warn("observation for unknown observer", "observer", obs.Observer)
		return nil
	}
	observed, ok := e.registry.Get(obs.Observed)
	if !ok {
		e.logger.Warn("observation for unknown observed pawn", "observed", obs.Observed)
		return nil
	}
	if !observer.Alive() || !observed.Alive() {
		return nil
	}
	if obs.Interaction == "" {
		obs.Interaction = situation.InteractionNone
	}
	if !obs.Interaction.Valid() {
		e.logger.Warn("observation with unknown interaction", "interaction", obs.Interaction)
		return nil
	}
	if obs.Interaction.Sensitive() && !e.cfg.Interactions[string(obs.Interaction)] {
		return nil
	}

	entries := e.opinionSystem.OnObservation(obs, observer, observed)
	for i := range entries {
		entry := entries[i]
		e.emit(Utterance{
			Kind:        KindOpinion,
			Speaker:     entry.Owner,
			Other:       entry.Other,
			Text:        entry.Text,
			Interaction: entry.Interaction,
			Tick:        entry.Tick,
			Entry:       &entry,
		})
	}
	e.commentarySystem.OnObservation(obs)
	return entries
}

// emit hands an utterance to the sink and records it in the event log.
func (e *Engine) emit(u Utterance) {
	e.sink.Emit(u)
	if e.eventLog == nil {
		return
	}
	typ := events.EventTypeOpinionLogged
	var payload interface{} = u
	if u.Kind == KindRemark {
		typ = events.EventTypeCommentary
	} else if u.Entry != nil {
		payload = *u.Entry
	}
	e.eventLog.Append(events.GameEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      typ,
		ActorID:   idString(u.Speaker),
		TargetID:  idString(u.Other),
		Payload:   payload,
		Tick:      u.Tick,
	})
}

// Advance moves the clock forward n ticks, draining the commentary queue
// on schedule.
func (e *Engine) Advance(n int64) {
	e.ticker.Advance(n)
}

// Now returns the current tick.
func (e *Engine) Now() int64 { return e.ticker.Now() }

// SetTick resumes the clock at a given tick without draining.
func (e *Engine) SetTick(tick int64) { e.ticker.SetTick(tick) }

// UpsertPawn inserts or replaces a pawn snapshot. A pawn seen for the first
// time gets its archived opinion log back when history is configured.
func (e *Engine) UpsertPawn(p *pawn.Pawn) {
	if p == nil {
		return
	}
	_, known := e.registry.Get(p.ID)
	e.registry.Put(p)
	if !known && e.history != nil {
		e.restore(p.ID)
	}
}

func (e *Engine) restore(id pawn.ID) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	entries, err := e.history.Recall(ctx, id, e.cfg.LogCapacity)
	if err != nil {
		e.logger.Warn("opinion history unavailable", "pawn", id, "error", err)
		return
	}
	if e.store.Restore(id, entries) {
		e.logger.Debug("opinion log restored", "pawn", id, "entries", len(entries))
	}
}

// RemovePawn forgets a pawn and reclaims every slot held for it.
func (e *Engine) RemovePawn(id pawn.ID) {
	if !e.registry.Remove(id) {
		return
	}
	e.store.Remove(id)
	e.parts.Forget(id)
	e.opinionLimiter.Forget(id)
	e.commentaryLimiter.Forget(id)
	e.logger.Event("PAWN_REMOVED", idString(id), "pawn slots reclaimed")
}

// Pawn returns the current snapshot for id.
func (e *Engine) Pawn(id pawn.ID) (*pawn.Pawn, bool) { return e.registry.Get(id) }

// Log lists a pawn's opinion log, newest first.
func (e *Engine) Log(id pawn.ID) []memory.Entry { return e.store.Entries(id) }

// PartOpinion returns what owner privately thinks of one part of other.
func (e *Engine) PartOpinion(owner, other pawn.ID, part pawn.BodyPart) (memory.PartOpinion, bool) {
	return e.parts.Get(owner, other, part)
}

// PendingRemarks is the commentary queue length.
func (e *Engine) PendingRemarks() int { return e.commentarySystem.Pending() }

func idString(id pawn.ID) string { return strconv.FormatInt(int64(id), 10) }
