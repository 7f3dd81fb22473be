package opinion

import (
	"math/rand"

	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
)

// Family separates situational opinions from private part opinions.
type Family string

const (
	FamilySituational Family = "situational"
	FamilyPart        Family = "part"
)

// RuleDefinition is one candidate opinion. It is immutable once the catalog
// has been built.
type RuleDefinition struct {
	Name          string                    `yaml:"name" json:"name"`
	Family        Family                    `yaml:"family,omitempty" json:"family,omitempty"`
	Base          bool                      `yaml:"base,omitempty" json:"base,omitempty"`
	Category      situation.Category        `yaml:"category,omitempty" json:"category,omitempty"`
	Perspective   situation.Perspective     `yaml:"perspective,omitempty" json:"perspective,omitempty"`
	Interaction   situation.InteractionType `yaml:"interaction,omitempty" json:"interaction,omitempty"`
	State         situation.PawnState       `yaml:"state,omitempty" json:"state,omitempty"`
	TargetPart    pawn.BodyPart             `yaml:"target_part,omitempty" json:"target_part,omitempty"`
	GenitalFamily pawn.GenitalFamily        `yaml:"genital_family,omitempty" json:"genital_family,omitempty"`
	Severity      *Range                    `yaml:"severity,omitempty" json:"severity,omitempty"`
	Conditions    ConditionSet              `yaml:"conditions,omitempty" json:"conditions,omitempty"`
	Texts         []string                  `yaml:"texts" json:"texts"`

	unsatisfiable bool
	reason        string
}

// Specific is true when the rule constrains anything beyond its category.
func (r *RuleDefinition) Specific() bool {
	return !r.Conditions.IsEmpty() || r.Interaction.IsSet() || r.State.IsSet() ||
		r.TargetPart != "" || familySet(r.GenitalFamily) || r.Severity != nil ||
		(r.Perspective != "" && r.Perspective != situation.PerspectiveAny)
}

// Unsatisfiable reports whether loading found an unresolved reference.
func (r *RuleDefinition) Unsatisfiable() (bool, string) {
	return r.unsatisfiable, r.reason
}

// PickText returns one template uniformly at random.
func (r *RuleDefinition) PickText(rng *rand.Rand) string {
	switch len(r.Texts) {
	case 0:
		return ""
	case 1:
		return r.Texts[0]
	}
	return r.Texts[rng.Intn(len(r.Texts))]
}

// ScoredCandidate pairs a rule with its weight in one evaluation.
type ScoredCandidate struct {
	Rule   *RuleDefinition
	Weight int
}

// Source supplies raw rule records at startup.
type Source interface {
	Records() ([]RuleDefinition, error)
}

// StaticSource serves records held in memory.
type StaticSource []RuleDefinition

func (s StaticSource) Records() ([]RuleDefinition, error) {
	return s, nil
}
