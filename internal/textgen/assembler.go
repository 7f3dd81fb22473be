package textgen

import (
	"math/rand"
	"strings"

	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/rules"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
	"github.com/MRamiBalles/murmur/internal/opinion"
	"github.com/MRamiBalles/murmur/internal/platform/logger"
)

// Fallback is used by callers when neither a rule nor the assembler
// produced anything.
const Fallback = "{OBSERVER_nameShort} noticed {OBSERVED_nameShort}."

// Fragment is one entry of a token pool. Unset filter fields match anything.
type Fragment struct {
	Name        string                    `yaml:"name" json:"name"`
	Perspective situation.Perspective     `yaml:"perspective,omitempty" json:"perspective,omitempty"`
	Category    situation.Category        `yaml:"category,omitempty" json:"category,omitempty"`
	Interaction situation.InteractionType `yaml:"interaction,omitempty" json:"interaction,omitempty"`
	Part        pawn.BodyPart             `yaml:"part,omitempty" json:"part,omitempty"`
	Family      pawn.GenitalFamily        `yaml:"family,omitempty" json:"family,omitempty"`
	Severity    *opinion.Range            `yaml:"severity,omitempty" json:"severity,omitempty"`
	Texts       []string                  `yaml:"texts" json:"texts"`
}

// Pools are the ordered sources of the fallback sentence.
type Pools struct {
	Openers      []Fragment `yaml:"openers" json:"openers"`
	Reactions    []Fragment `yaml:"reactions" json:"reactions"`
	Interactions []Fragment `yaml:"interactions" json:"interactions"`
	Parts        []Fragment `yaml:"parts" json:"parts"`
	Conclusions  []Fragment `yaml:"conclusions" json:"conclusions"`
}

// Empty is true when no pool has a single template.
func (p Pools) Empty() bool {
	for _, pool := range [][]Fragment{p.Openers, p.Reactions, p.Interactions, p.Parts, p.Conclusions} {
		for _, f := range pool {
			if len(f.Texts) > 0 {
				return false
			}
		}
	}
	return true
}

// Assembler builds a sentence from independent pools when no rule won.
type Assembler struct {
	pools Pools
	rng   *rand.Rand
	log   *logger.Logger
}

func NewAssembler(pools Pools, rng *rand.Rand, log *logger.Logger) *Assembler {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Assembler{pools: pools, rng: rng, log: log}
}

// Generate samples opener, subject, reaction, nudity clause, interaction
// clause, one clause per visible part and a conclusion. Pools without an
// eligible entry are skipped. It returns "" only if every pool came up empty.
func (a *Assembler) Generate(ctx *opinion.Context, category situation.Category, visible []pawn.BodyPart) string {
	if ctx == nil {
		return ""
	}
	observer, observed := ctx.Observer.Pawn, ctx.Observed.Pawn
	persp := ctx.Perspective
	var parts []string
	hits := 0

	if t := a.pick(a.pools.Openers, func(f Fragment) bool { return f.Perspective.Accepts(persp) }); t != "" {
		parts = append(parts, Render(t, observer, observed, ""))
		hits++
	}

	parts = append(parts, subjectClause(ctx))

	if t := a.pick(a.pools.Reactions, func(f Fragment) bool {
		return f.Perspective.Accepts(persp) && f.Category.Matches(category)
	}); t != "" {
		parts = append(parts, Render(t, observer, observed, ""))
		hits++
	}

	parts = append(parts, nudityClause(ctx))

	if ctx.Interaction.IsSet() {
		if t := a.pick(a.pools.Interactions, func(f Fragment) bool {
			return f.Perspective.Accepts(persp) && f.Interaction == ctx.Interaction
		}); t != "" {
			parts = append(parts, Render(t, observer, observed, ""))
			hits++
		}
	}

	for _, bp := range visible {
		fact := ctx.Parts[bp]
		t := a.pick(a.pools.Parts, func(f Fragment) bool {
			if f.Part != bp || !f.Perspective.Accepts(persp) || !f.Category.Matches(category) {
				return false
			}
			if !f.Family.Matches(fact.Family) {
				return false
			}
			return f.Severity == nil || (fact.Present && f.Severity.Contains(fact.Severity))
		})
		if t != "" {
			parts = append(parts, Render(t, observer, observed, bp))
			hits++
		}
	}

	if t := a.pick(a.pools.Conclusions, func(f Fragment) bool {
		return f.Perspective.Accepts(persp) && f.Category.Matches(category)
	}); t != "" {
		parts = append(parts, Render(t, observer, observed, ""))
		hits++
	}

	// The computed clauses alone do not make a sentence.
	if hits == 0 {
		a.log.Debug("fallback pools had nothing eligible", "perspective", persp, "category", category)
		return ""
	}
	return Finish(join(parts))
}

// pick flattens every template of the eligible fragments and draws one.
func (a *Assembler) pick(pool []Fragment, eligible func(Fragment) bool) string {
	var texts []string
	for _, f := range pool {
		if len(f.Texts) == 0 || !eligible(f) {
			continue
		}
		texts = append(texts, f.Texts...)
	}
	if len(texts) == 0 {
		return ""
	}
	return texts[a.rng.Intn(len(texts))]
}

// subjectClause names the pawn the sentence is about: the one who looked
// when told from the observed side, otherwise the one who was seen.
func subjectClause(ctx *opinion.Context) string {
	focal := ctx.Observed.Pawn
	if ctx.Perspective == situation.PerspectiveObserved {
		focal = ctx.Observer.Pawn
	}
	if focal == nil {
		return ""
	}
	name := focal.ShortName()
	if !focal.IsColonist && focal.Faction != "" {
		name += " from " + focal.Faction
	}
	return name
}

func nudityClause(ctx *opinion.Context) string {
	observed := ctx.Observed.Pawn
	if observed == nil {
		return ""
	}
	status := rules.NudityAndCoveringStatus(observed)
	if ctx.Interaction.InherentlyNude() && strings.HasPrefix(status, "clothed") {
		status = "nude"
	}
	pronoun := observed.Gender.Pronoun()
	if ctx.Perspective == situation.PerspectiveObserved {
		pronoun = "I"
	}
	return pronoun + " was " + status
}

func join(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}
