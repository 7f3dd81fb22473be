package sim

import (
	"github.com/MRamiBalles/murmur/internal/domain/situation"
	"github.com/MRamiBalles/murmur/internal/engine"
	"github.com/MRamiBalles/murmur/internal/events"
	"github.com/MRamiBalles/murmur/internal/platform/config"
	"github.com/MRamiBalles/murmur/internal/platform/logger"
)

// Scenario is a named script producing check results.
type Scenario struct {
	Name string
	Run  func(cfg config.EngineConfig, log *logger.Logger) (*Run, error)
}

// Scenarios returns the standard stress suite.
func Scenarios() []Scenario {
	return []Scenario{
		{Name: "busy bathhouse", Run: busyBathhouse},
		{Name: "pawn leaves mid-queue", Run: pawnLeaves},
		{Name: "sensitive interactions off", Run: sensitiveOff},
	}
}

// busyBathhouse floods the engine with observations for two in-game hours.
func busyBathhouse(cfg config.EngineConfig, log *logger.Logger) (*Run, error) {
	r, err := NewRun("busy bathhouse", cfg, log)
	if err != nil {
		return nil, err
	}
	colony := r.Colony(8)
	r.Day(colony, 5000, 40)

	r.CheckTerminated()
	r.CheckRemarkSpacing(cfg.CommentaryCooldownTicks, int64(cfg.QueueCapacity+1)*cfg.QueueIntervalTicks)
	r.CheckLogBound(colony, cfg.LogCapacity)
	r.Expect("opinions logged", r.Metrics.OpinionsLogged > 0, "no opinions were logged")
	r.Expect("time announced", len(r.EventLog.GetByType(events.EventTypeTimeTick)) > 0, "no TIME_TICK in the log")
	return r, nil
}

// pawnLeaves removes a pawn with remarks still queued.
func pawnLeaves(cfg config.EngineConfig, log *logger.Logger) (*Run, error) {
	cfg.ObservedRemarkChance = 100
	r, err := NewRun("pawn leaves mid-queue", cfg, log)
	if err != nil {
		return nil, err
	}
	colony := r.Colony(4)
	for _, p := range colony[1:] {
		r.Engine.Observe(situation.Observation{Observer: colony[0].ID, Observed: p.ID, Interaction: situation.InteractionShower, Aware: true})
	}
	queued := r.Engine.PendingRemarks()
	leaver := colony[0].ID
	left := r.Engine.Now()
	r.Engine.RemovePawn(leaver)
	r.Engine.Advance(cfg.QueueIntervalTicks * int64(queued+2))

	r.Expect("queued", queued > 0, "nothing was queued")
	r.CheckSilent(leaver, left)
	r.Expect("log reclaimed", len(r.Engine.Log(leaver)) == 0, "removed pawn still has a log")
	r.Expect("stale dropped", r.Metrics.StaleDrops > 0, "no stale remark was dropped")
	return r, nil
}

// sensitiveOff makes sure intimacy never yields output unless enabled.
func sensitiveOff(cfg config.EngineConfig, log *logger.Logger) (*Run, error) {
	cfg.Interactions = config.DefaultInteractions()
	r, err := NewRun("sensitive interactions off", cfg, log)
	if err != nil {
		return nil, err
	}
	colony := r.Colony(2)
	got := r.Engine.Observe(situation.Observation{Observer: colony[0].ID, Observed: colony[1].ID, Interaction: situation.InteractionIntimacy, Aware: true})
	r.Engine.Advance(cfg.QueueIntervalTicks * 3)

	spoke := false
	for _, u := range r.Said {
		if u.Interaction == situation.InteractionIntimacy {
			spoke = true
		}
	}
	r.Expect("no intimacy opinions", len(got) == 0, "got %d entries", len(got))
	r.Expect("no intimacy remarks", !spoke, "a remark about intimacy was spoken")
	r.Expect("nothing queued", r.Engine.PendingRemarks() == 0, "%d remarks queued", r.Engine.PendingRemarks())
	return r, nil
}

// Remarks counts spoken remarks in a run.
func (r *Run) Remarks() int {
	n := 0
	for _, u := range r.Said {
		if u.Kind == engine.KindRemark {
			n++
		}
	}
	return n
}
