package opinion

import (
	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/rules"
)

const rangeEpsilon = 0.0001

// Range is an inclusive severity window.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min-rangeEpsilon && v <= r.Max+rangeEpsilon
}

// Side holds the predicates about one participant. The zero value of every
// field means "no constraint".
type Side struct {
	Trait     string          `yaml:"trait,omitempty" json:"trait,omitempty"`
	Hediff    string          `yaml:"hediff,omitempty" json:"hediff,omitempty"`
	Gene      string          `yaml:"gene,omitempty" json:"gene,omitempty"`
	Quirk     string          `yaml:"quirk,omitempty" json:"quirk,omitempty"`
	Gender    pawn.Gender     `yaml:"gender,omitempty" json:"gender,omitempty"`
	LifeStage string          `yaml:"life_stage,omitempty" json:"life_stage,omitempty"`
	Kind      string          `yaml:"kind,omitempty" json:"kind,omitempty"`
	MinAge    int             `yaml:"min_age,omitempty" json:"min_age,omitempty"`
	MaxAge    int             `yaml:"max_age,omitempty" json:"max_age,omitempty"`
	Need      rules.NeedState `yaml:"need,omitempty" json:"need,omitempty"`
	Dress     pawn.DressState `yaml:"dress,omitempty" json:"dress,omitempty"`
	Covering  *bool           `yaml:"covering,omitempty" json:"covering,omitempty"`
	Trimester rules.Trimester `yaml:"trimester,omitempty" json:"trimester,omitempty"`
	// Relation is what the other participant is to this one ("Lover", "Sibling").
	Relation  string          `yaml:"relation,omitempty" json:"relation,omitempty"`
}

func (s Side) isEmpty() bool {
	return s.Trait == "" && s.Hediff == "" && s.Gene == "" && s.Quirk == "" &&
		s.Gender == "" && s.LifeStage == "" && s.Kind == "" &&
		s.MinAge == 0 && s.MaxAge == 0 && !needSet(s.Need) && s.Dress == "" &&
		s.Covering == nil && s.Trimester == "" && s.Relation == ""
}

// ConditionSet is the full bag of optional predicates attached to a rule.
type ConditionSet struct {
	Observer Side `yaml:"observer,omitempty" json:"observer,omitempty"`
	Observed Side `yaml:"observed,omitempty" json:"observed,omitempty"`

	Aware        *bool              `yaml:"aware,omitempty" json:"aware,omitempty"`
	Self         *bool              `yaml:"self,omitempty" json:"self,omitempty"`
	BodyPartSeen pawn.BodyPart      `yaml:"body_part_seen,omitempty" json:"body_part_seen,omitempty"`
	PartSize     *Range             `yaml:"part_size,omitempty" json:"part_size,omitempty"`
	SeenFamily   pawn.GenitalFamily `yaml:"seen_family,omitempty" json:"seen_family,omitempty"`
}

// IsEmpty is true when no field is set; such a set passes every context.
func (c ConditionSet) IsEmpty() bool {
	return c.Observer.isEmpty() && c.Observed.isEmpty() &&
		c.Aware == nil && c.Self == nil && c.BodyPartSeen == "" &&
		c.PartSize == nil && !familySet(c.SeenFamily)
}

func needSet(n rules.NeedState) bool {
	return n != "" && n != rules.NeedAny
}

func familySet(f pawn.GenitalFamily) bool {
	return f != "" && f != pawn.FamilyUndefined
}

// check evaluates one side against the participant facts. The first failing
// set field eliminates the rule; otherwise it returns the summed bonus.
func (s Side) check(self, other Facts, observedSide bool) (bool, int) {
	p := self.Pawn
	w := 0

	if s.Trait != "" {
		if !p.HasTrait(s.Trait) {
			return false, 0
		}
		w += weightTrait
	}
	if s.Hediff != "" {
		if !p.HasHediff(s.Hediff) {
			return false, 0
		}
		w += weightHediff
	}
	if s.Gene != "" {
		if !p.HasGene(s.Gene) {
			return false, 0
		}
		w += weightGene
	}
	if s.Quirk != "" {
		if !p.HasQuirk(s.Quirk) {
			return false, 0
		}
		w += weightQuirk
	}
	if s.Gender != "" {
		if p.Gender != s.Gender {
			return false, 0
		}
		w += weightGender
	}
	if s.LifeStage != "" {
		if p.LifeStage != s.LifeStage {
			return false, 0
		}
		w += weightLifeStage
	}
	if s.Kind != "" {
		if p.Kind != s.Kind {
			return false, 0
		}
		w += weightKind
	}
	if s.MinAge > 0 {
		if p.AgeYears < s.MinAge {
			return false, 0
		}
		w += weightAge
	}
	if s.MaxAge > 0 {
		if p.AgeYears > s.MaxAge {
			return false, 0
		}
		w += weightAge
	}
	if needSet(s.Need) {
		if self.Need != s.Need {
			return false, 0
		}
		w += weightNeed
	}
	if s.Dress != "" {
		if self.Dress != s.Dress {
			return false, 0
		}
		if observedSide {
			w += observedDressWeight(s.Dress)
		} else {
			w += weightObserverDress
		}
	}
	if s.Covering != nil {
		if p.Covering != *s.Covering {
			return false, 0
		}
		w += weightCovering
	}
	if s.Trimester != "" {
		if self.Trimester != s.Trimester {
			return false, 0
		}
		w += weightTrimester
	}
	if s.Relation != "" {
		if other.Pawn == nil || !p.HasRelation(other.Pawn.ID, s.Relation) {
			return false, 0
		}
		w += weightRelation
	}
	return true, w
}
