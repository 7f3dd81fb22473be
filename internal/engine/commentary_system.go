package engine

import (
	"math/rand"

	"github.com/MRamiBalles/murmur/internal/cooldown"
	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/rules"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
	"github.com/MRamiBalles/murmur/internal/opinion"
	"github.com/MRamiBalles/murmur/internal/platform/config"
	"github.com/MRamiBalles/murmur/internal/platform/logger"
	"github.com/MRamiBalles/murmur/internal/platform/metrics"
)

// remark is a deferred speech bubble. It holds IDs only; the pawns are
// looked up again when it is spoken.
type remark struct {
	speaker     pawn.ID
	other       pawn.ID
	perspective situation.Perspective
	interaction situation.InteractionType
	state       situation.PawnState
	aware       bool
	queuedAt    int64
}

// CommentarySystem turns observations into spoken remarks, spaced out by a
// bounded queue drained on the tick.
type CommentarySystem struct {
	cfg      config.EngineConfig
	composer *composer
	weights  rules.Weights
	limiter  *cooldown.Limiter
	registry *pawn.Registry
	rng      *rand.Rand
	clock    func() int64
	metrics  *metrics.Collector
	logger   *logger.Logger
	emit     func(Utterance)

	queue []remark
}

// OnObservation queues the observer's remark and, if the observed pawn
// noticed, possibly a reply. An observer undressed the same way as the
// interaction keeps quiet.
func (cs *CommentarySystem) OnObservation(obs situation.Observation) {
	if !cs.cfg.CommentaryEnabled || !cs.cfg.Enabled(string(obs.Interaction)) {
		return
	}
	if obs.IsSelf() {
		cs.enqueue(obs.Observer, obs.Observer, situation.PerspectiveSelf, obs)
		return
	}
	if observer, ok := cs.registry.Get(obs.Observer); !ok || !rules.SharesNudeState(observer, obs.Interaction) {
		cs.enqueue(obs.Observer, obs.Observed, situation.PerspectiveObserver, obs)
	}
	if obs.Aware && cs.rng.Intn(100) < cs.cfg.ObservedRemarkChance {
		cs.enqueue(obs.Observed, obs.Observer, situation.PerspectiveObserved, obs)
	}
}

// enqueue checks capacity before the limiter so a dropped remark does not
// start a cooldown.
func (cs *CommentarySystem) enqueue(speaker, other pawn.ID, persp situation.Perspective, obs situation.Observation) {
	if len(cs.queue) >= cs.cfg.QueueCapacity {
		cs.metrics.RecordQueueDrop()
		cs.logger.Debug("commentary queue full, remark dropped", "speaker", speaker, "interaction", obs.Interaction)
		return
	}
	if !cs.limiter.TryAcquire(speaker, other, obs.Interaction) {
		cs.metrics.RecordCooldownDenial()
		return
	}
	cs.queue = append(cs.queue, remark{
		speaker:     speaker,
		other:       other,
		perspective: persp,
		interaction: obs.Interaction,
		state:       obs.State,
		aware:       obs.Aware,
		queuedAt:    cs.clock(),
	})
	cs.metrics.RecordEnqueue()
}

// OnTick speaks the oldest queued remark every QueueIntervalTicks ticks.
func (cs *CommentarySystem) OnTick(tick int64) {
	if tick%cs.cfg.QueueIntervalTicks != 0 {
		return
	}
	cs.drainOne()
}

// Pending is the number of queued remarks.
func (cs *CommentarySystem) Pending() int { return len(cs.queue) }

func (cs *CommentarySystem) drainOne() {
	if len(cs.queue) == 0 {
		return
	}
	r := cs.queue[0]
	cs.queue[0] = remark{}
	cs.queue = cs.queue[1:]

	speaker, ok1 := cs.registry.Get(r.speaker)
	other, ok2 := cs.registry.Get(r.other)
	if !ok1 || !ok2 || !speaker.Alive() || !other.Alive() {
		cs.metrics.RecordStaleDrop()
		return
	}

	ctx, err := opinion.NewContext(speaker, other, r.perspective, r.interaction, r.state, r.aware)
	if err != nil {
		return
	}
	category := rules.CategoryFor(speaker, other, cs.weights)
	text, _, _ := cs.composer.compose(ctx, category)

	cs.metrics.RecordRemark()
	cs.emit(Utterance{
		Kind:        KindRemark,
		Speaker:     speaker.ID,
		Other:       other.ID,
		Text:        text,
		Interaction: r.interaction,
		Tick:        cs.clock(),
	})
}
