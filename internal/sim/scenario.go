// Package sim drives the engine through scripted colony scenarios and checks
// the invariants a host relies on. It backs the murmur-sim stress runner.
package sim

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/MRamiBalles/murmur/internal/content"
	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
	"github.com/MRamiBalles/murmur/internal/engine"
	"github.com/MRamiBalles/murmur/internal/events"
	"github.com/MRamiBalles/murmur/internal/opinion"
	"github.com/MRamiBalles/murmur/internal/platform/config"
	"github.com/MRamiBalles/murmur/internal/platform/logger"
	"github.com/MRamiBalles/murmur/internal/platform/metrics"
)

// Result captures the outcome of one check.
type Result struct {
	Scenario string
	Check    string
	Passed   bool
	Reason   string
}

// Run is one scenario execution.
type Run struct {
	Engine   *engine.Engine
	EventLog *events.EventLog
	Metrics  *metrics.Collector
	Said     []engine.Utterance
	Results  []Result

	name string
	rng  *rand.Rand
}

// NewRun builds an engine over the embedded catalog with cfg.
func NewRun(name string, cfg config.EngineConfig, log *logger.Logger) (*Run, error) {
	bundle, err := content.Default()
	if err != nil {
		return nil, err
	}
	catalog, err := opinion.LoadAll(bundle, nil, log)
	if err != nil {
		return nil, err
	}

	r := &Run{
		EventLog: events.NewEventLog(nil),
		Metrics:  metrics.New(),
		name:     name,
		rng:      rand.New(rand.NewSource(cfg.Seed + 1)),
	}
	eng, err := engine.NewEngine(engine.Options{
		Config:   cfg,
		Catalog:  catalog,
		Pools:    bundle.Pools(),
		EventLog: r.EventLog,
		Sink:     engine.SinkFunc(func(u engine.Utterance) { r.Said = append(r.Said, u) }),
		Metrics:  r.Metrics,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}
	r.Engine = eng
	return r, nil
}

func (r *Run) check(name string, ok bool, format string, args ...interface{}) {
	res := Result{Scenario: r.name, Check: name, Passed: ok}
	if !ok {
		res.Reason = fmt.Sprintf(format, args...)
	}
	r.Results = append(r.Results, res)
}

// Colony creates n pawns with mixed genders, relations and dress.
func (r *Run) Colony(n int) []*pawn.Pawn {
	names := []string{"Ada", "Bo", "Cass", "Dov", "Eli", "Fen", "Gus", "Hana", "Ivo", "Juno"}
	out := make([]*pawn.Pawn, 0, n)
	for i := 0; i < n; i++ {
		g := pawn.GenderFemale
		if i%2 == 1 {
			g = pawn.GenderMale
		}
		p := pawn.NewPawn(pawn.ID(i+1), names[i%len(names)], g, 20+r.rng.Intn(40))
		if g == pawn.GenderFemale {
			p.HasBreasts = true
			p.Parts = []pawn.Part{
				{BodyPart: pawn.PartChest, Family: pawn.FamilyBreasts, Label: "breasts", Severity: r.rng.Float64()},
				{BodyPart: pawn.PartGenitals, Family: pawn.FamilyVagina, Label: "vagina", Severity: r.rng.Float64()},
			}
		} else {
			p.Parts = []pawn.Part{{BodyPart: pawn.PartGenitals, Family: pawn.FamilyPenis, Label: "penis", Severity: r.rng.Float64()}}
		}
		p.Beauty = r.rng.Intn(5) - 2
		out = append(out, p)
	}
	for i, p := range out {
		other := out[(i+1)%len(out)]
		if other.ID != p.ID {
			p.Opinions[other.ID] = r.rng.Intn(200) - 100
			if i%3 == 0 {
				p.Relations[other.ID] = []string{"Friend"}
			}
		}
		r.Engine.UpsertPawn(p)
	}
	return out
}

var activities = []situation.InteractionType{
	situation.InteractionShower,
	situation.InteractionBath,
	situation.InteractionSauna,
	situation.InteractionSwimming,
	situation.InteractionChanging,
	situation.InteractionSleeping,
	situation.InteractionNaked,
	situation.InteractionArtModel,
}

// Day runs ticks of colony life with an observation chance per tick.
func (r *Run) Day(colony []*pawn.Pawn, ticks int64, observeChance int) {
	for t := int64(0); t < ticks; t++ {
		if r.rng.Intn(100) < observeChance {
			a := colony[r.rng.Intn(len(colony))]
			b := colony[r.rng.Intn(len(colony))]
			act := activities[r.rng.Intn(len(activities))]
			a.Topless, a.Bottomless = false, false
			b.Topless, b.Bottomless = true, r.rng.Intn(2) == 0
			r.Engine.Observe(situation.Observation{
				Observer:    a.ID,
				Observed:    b.ID,
				Interaction: act,
				Aware:       r.rng.Intn(2) == 0,
			})
		}
		r.Engine.Advance(1)
	}
}

// CheckTerminated verifies every utterance is a finished sentence free of
// unresolved placeholders.
func (r *Run) CheckTerminated() {
	for _, u := range r.Said {
		t := u.Text
		if t == "" {
			r.check("terminated", false, "empty %s from %d", u.Kind, u.Speaker)
			return
		}
		if strings.ContainsAny(t, "{}") {
			r.check("terminated", false, "placeholder left in %q", t)
			return
		}
		switch t[len(t)-1] {
		case '.', '!', '?':
		default:
			r.check("terminated", false, "unterminated %q", t)
			return
		}
	}
	r.check("terminated", true, "")
}

// CheckRemarkSpacing verifies no pawn spoke to the same pawn about the same
// interaction twice within the commentary cooldown. Remarks are spoken after
// a queue delay of at most slack ticks.
func (r *Run) CheckRemarkSpacing(cooldown, slack int64) {
	type key struct {
		speaker     pawn.ID
		other       pawn.ID
		interaction situation.InteractionType
	}
	last := make(map[key]int64)
	for _, u := range r.Said {
		if u.Kind != engine.KindRemark {
			continue
		}
		k := key{u.Speaker, u.Other, u.Interaction}
		if prev, ok := last[k]; ok && u.Tick-prev < cooldown-slack {
			r.check("remark spacing", false, "pawn %d remarked on %s at %d and %d", u.Speaker, u.Interaction, prev, u.Tick)
			return
		}
		last[k] = u.Tick
	}
	r.check("remark spacing", true, "")
}

// CheckLogBound verifies no pawn holds more log entries than capacity.
func (r *Run) CheckLogBound(colony []*pawn.Pawn, capacity int) {
	for _, p := range colony {
		if n := len(r.Engine.Log(p.ID)); n > capacity {
			r.check("log bound", false, "pawn %d holds %d entries", p.ID, n)
			return
		}
	}
	r.check("log bound", true, "")
}

// CheckSilent verifies that a pawn said nothing after tick.
func (r *Run) CheckSilent(id pawn.ID, after int64) {
	for _, u := range r.Said {
		if u.Speaker == id && u.Tick > after {
			r.check("silent", false, "pawn %d spoke at %d: %q", id, u.Tick, u.Text)
			return
		}
	}
	r.check("silent", true, "")
}

// Expect records an arbitrary check.
func (r *Run) Expect(name string, ok bool, format string, args ...interface{}) {
	r.check(name, ok, format, args...)
}
