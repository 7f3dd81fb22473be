package engine

import (
	"math/rand"

	"github.com/MRamiBalles/murmur/internal/cooldown"
	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/rules"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
	"github.com/MRamiBalles/murmur/internal/memory"
	"github.com/MRamiBalles/murmur/internal/opinion"
	"github.com/MRamiBalles/murmur/internal/platform/config"
	"github.com/MRamiBalles/murmur/internal/platform/logger"
	"github.com/MRamiBalles/murmur/internal/platform/metrics"
	"github.com/MRamiBalles/murmur/internal/textgen"
)

// OpinionSystem writes what pawns think about what they saw into their logs.
type OpinionSystem struct {
	cfg      config.EngineConfig
	composer *composer
	weights  rules.Weights
	limiter  *cooldown.Limiter
	store    *memory.Store
	parts    *memory.PartOpinions
	rng      *rand.Rand
	clock    func() int64
	metrics  *metrics.Collector
	logger   *logger.Logger
}

// OnObservation forms the observer's opinion and, when the observed pawn
// noticed, the observed pawn's. It returns the entries it logged.
func (ops *OpinionSystem) OnObservation(obs situation.Observation, observer, observed *pawn.Pawn) []memory.Entry {
	if observer.ID == observed.ID {
		return ops.form(observer, observer, situation.PerspectiveSelf, obs)
	}
	out := ops.form(observer, observed, situation.PerspectiveObserver, obs)
	if obs.Aware && ops.cfg.ObservedOpinions {
		out = append(out, ops.form(observed, observer, situation.PerspectiveObserved, obs)...)
	}
	return out
}

// form runs the pipeline for one log owner. subject owns the entry and
// target is the counterpart.
func (ops *OpinionSystem) form(subject, target *pawn.Pawn, persp situation.Perspective, obs situation.Observation) []memory.Entry {
	if !ops.limiter.TryAcquire(subject.ID, target.ID, situation.InteractionNone) {
		ops.metrics.RecordCooldownDenial()
		return nil
	}

	ctx, err := opinion.NewContext(subject, target, persp, obs.Interaction, obs.State, obs.Aware)
	if err != nil {
		ops.logger.Warn("opinion context failed", "subject", subject.ID, "target", target.ID, "error", err)
		return nil
	}
	category := rules.CategoryFor(subject, target, ops.weights)

	text, rule, src := ops.composer.compose(ctx, category)

	withPart := false
	if persp == situation.PerspectiveObserver && ops.rng.Intn(100) < ops.cfg.PartDescriptionChance {
		if part := ops.partOpinion(ctx, category); part != "" {
			text += " " + part
			withPart = true
		}
	}

	entry := memory.Entry{
		Owner:       subject.ID,
		OwnerName:   subject.ShortName(),
		Other:       target.ID,
		OtherName:   target.ShortName(),
		Text:        text,
		Rule:        rule,
		Interaction: ctx.Interaction,
		State:       ctx.State,
		Category:    category,
		Aware:       obs.Aware,
		IsSelf:      ctx.Self,
		AsObserver:  persp != situation.PerspectiveObserved,
		Tick:        ops.clock(),
	}
	ops.store.Add(entry)
	ops.metrics.RecordOpinion(src, withPart)
	return []memory.Entry{entry}
}

// partOpinion recalls or forms the observer's private opinion of one visible
// part of the observed pawn.
func (ops *OpinionSystem) partOpinion(ctx *opinion.Context, category situation.Category) string {
	if len(ctx.Visible) == 0 {
		return ""
	}
	bp := ctx.Visible[ops.rng.Intn(len(ctx.Visible))]
	fact := ctx.Parts[bp]
	if !fact.Present {
		return ""
	}
	observer, observed := ctx.Observer.Pawn, ctx.Observed.Pawn
	label := rules.SizeLabel(fact.Severity)

	o, ok := ops.parts.Recall(observer.ID, observed.ID, bp, fact.Severity, label, func() (memory.PartOpinion, bool) {
		r := ops.composer.scorer.SelectBest(ctx.WithFocus(bp), ops.composer.catalog.PartCandidates(category, bp))
		if r == nil {
			return memory.PartOpinion{}, false
		}
		text := textgen.Finish(textgen.Render(r.PickText(ops.rng), observer, observed, bp))
		return memory.PartOpinion{Rule: r.Name, Text: text, Tick: ops.clock()}, true
	})
	if !ok {
		return ""
	}
	return o.Text
}
