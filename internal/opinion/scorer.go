package opinion

import (
	"math/rand"
	"sort"

	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/platform/logger"
)

// Scoring table. Every bonus is positive, so satisfying a superset of
// conditions always scores strictly higher.
const (
	weightInteraction    = 10000
	weightPerspective    = 1000
	weightPerspectiveAny = 10
	weightState          = 1000
	weightAware          = 30
	weightBodyPartSeen   = 40
	weightPartSize       = 10
	weightSeenFamily     = 10
	weightSelf           = 10
	weightTargetPart     = 40
	weightGenitalFamily  = 10
	weightSeverity       = 10
	weightTrait          = 10
	weightHediff         = 10
	weightGene           = 10
	weightQuirk          = 15
	weightNeed           = 10
	weightObserverDress  = 10
	weightCovering       = 10
	weightTrimester      = 20
	weightGender         = 5
	weightLifeStage      = 5
	weightKind           = 5
	weightAge            = 5
	weightRelation       = 5
	weightDressNaked     = 500
	weightDressCovering  = 200
	weightDressPartial   = 100
	weightDressClothed   = 10
)

func observedDressWeight(d pawn.DressState) int {
	switch d {
	case pawn.DressNaked:
		return weightDressNaked
	case pawn.DressCovering:
		return weightDressCovering
	case pawn.DressTopless, pawn.DressBottomless:
		return weightDressPartial
	}
	return weightDressClothed
}

// Scorer selects the best rule for a context. It is not safe for concurrent
// use because it owns its random source.
type Scorer struct {
	rng *rand.Rand
	log *logger.Logger
}

// NewScorer uses rng for tie-breaks; pass a seeded source for reproducible runs.
func NewScorer(rng *rand.Rand, log *logger.Logger) *Scorer {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Scorer{rng: rng, log: log}
}

// Score runs the hard filter and, if the rule survives, its weight.
func Score(ctx *Context, r *RuleDefinition) (int, bool) {
	if ctx == nil || r == nil || r.unsatisfiable {
		return 0, false
	}
	w := 0

	switch {
	case r.Perspective == ctx.Perspective:
		w += weightPerspective
	case r.Perspective.Accepts(ctx.Perspective):
		w += weightPerspectiveAny
	default:
		return 0, false
	}

	if r.Interaction.IsSet() {
		if r.Interaction != ctx.Interaction {
			return 0, false
		}
		w += weightInteraction
	}
	if r.State.IsSet() {
		if r.State != ctx.State {
			return 0, false
		}
		w += weightState
	}

	c := r.Conditions
	if ctx.FlatChest && (c.Observed.Dress == pawn.DressTopless || c.BodyPartSeen == pawn.PartChest || r.TargetPart == pawn.PartChest) {
		return 0, false
	}

	if r.Family == FamilyPart {
		pw, ok := scorePart(ctx, r)
		if !ok {
			return 0, false
		}
		w += pw
	}

	ok, sw := c.Observer.check(ctx.Observer, ctx.Observed, false)
	if !ok {
		return 0, false
	}
	w += sw
	ok, sw = c.Observed.check(ctx.Observed, ctx.Observer, true)
	if !ok {
		return 0, false
	}
	w += sw

	if c.Aware != nil {
		if *c.Aware != ctx.Aware {
			return 0, false
		}
		w += weightAware
	}
	if c.Self != nil {
		if *c.Self != ctx.Self {
			return 0, false
		}
		w += weightSelf
	}
	if c.BodyPartSeen != "" {
		fact := ctx.Parts[c.BodyPartSeen]
		if !fact.Seen {
			return 0, false
		}
		w += weightBodyPartSeen
		if c.PartSize != nil {
			if !fact.Present || !c.PartSize.Contains(fact.Severity) {
				return 0, false
			}
			w += weightPartSize
		}
		if familySet(c.SeenFamily) {
			if !fact.Present || fact.Family != c.SeenFamily {
				return 0, false
			}
			w += weightSeenFamily
		}
	}
	return w, true
}

func scorePart(ctx *Context, r *RuleDefinition) (int, bool) {
	w := 0
	if r.TargetPart != "" {
		if r.TargetPart != ctx.Focus {
			return 0, false
		}
		w += weightTargetPart
	}
	fact := ctx.Parts[ctx.Focus]
	if familySet(r.GenitalFamily) {
		if !fact.Present || fact.Family != r.GenitalFamily {
			return 0, false
		}
		w += weightGenitalFamily
	}
	if r.Severity != nil {
		if !fact.Present || !r.Severity.Contains(fact.Severity) {
			return 0, false
		}
		w += weightSeverity
	}
	return w, true
}

// Rank scores every surviving candidate, highest weight first. Ties keep
// declaration order here; SelectBest is what randomizes them.
func (s *Scorer) Rank(ctx *Context, candidates []*RuleDefinition) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, len(candidates))
	for _, r := range candidates {
		if w, ok := Score(ctx, r); ok {
			out = append(out, ScoredCandidate{Rule: r, Weight: w})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}

// SelectBest returns the max-weight rule, breaking ties uniformly at random,
// or nil when nothing passes the hard filter.
func (s *Scorer) SelectBest(ctx *Context, candidates []*RuleDefinition) *RuleDefinition {
	best := -1
	var tied []*RuleDefinition
	for _, r := range candidates {
		w, ok := Score(ctx, r)
		if !ok {
			continue
		}
		switch {
		case w > best:
			best = w
			tied = append(tied[:0], r)
		case w == best:
			tied = append(tied, r)
		}
	}
	switch len(tied) {
	case 0:
		return nil
	case 1:
		s.log.Debug("opinion rule selected", "rule", tied[0].Name, "weight", best)
		return tied[0]
	}
	pick := tied[s.rng.Intn(len(tied))]
	s.log.Debug("opinion rule selected from tie", "rule", pick.Name, "weight", best, "tied", len(tied))
	return pick
}

// Rand exposes the scorer's random source to collaborators that must share it.
func (s *Scorer) Rand() *rand.Rand { return s.rng }
