// Package situation defines the vocabulary of an observed situation: what
// happened, how aware the participants were, and from whose eyes it is told.
// This package is PURE and must NOT import any infrastructure packages.
package situation

import "github.com/MRamiBalles/murmur/internal/domain/pawn"

// InteractionType is the kind of activity during which a pawn was seen.
type InteractionType string

const (
	InteractionNone            InteractionType = "None"
	InteractionNaked           InteractionType = "Naked"
	InteractionTopless         InteractionType = "Topless"
	InteractionBottomless      InteractionType = "Bottomless"
	InteractionCovering        InteractionType = "Covering"
	InteractionShower          InteractionType = "Shower"
	InteractionBath            InteractionType = "Bath"
	InteractionSauna           InteractionType = "Sauna"
	InteractionSwimming        InteractionType = "Swimming"
	InteractionHotTub          InteractionType = "HotTub"
	InteractionChanging        InteractionType = "Changing"
	InteractionSleeping        InteractionType = "Sleeping"
	InteractionMedicalFull     InteractionType = "MedicalFull"
	InteractionMedicalFullSelf InteractionType = "MedicalFullSelf"
	InteractionSurgery         InteractionType = "Surgery"
	InteractionBiopod          InteractionType = "Biopod"
	InteractionArtModel        InteractionType = "ArtModel"
	InteractionSlipUp          InteractionType = "SlipUp"
	InteractionIntimacy        InteractionType = "Intimacy"
)

var knownInteractions = map[InteractionType]bool{
	InteractionNone: true, InteractionNaked: true, InteractionTopless: true,
	InteractionBottomless: true, InteractionCovering: true, InteractionShower: true,
	InteractionBath: true, InteractionSauna: true, InteractionSwimming: true,
	InteractionHotTub: true, InteractionChanging: true, InteractionSleeping: true,
	InteractionMedicalFull: true, InteractionMedicalFullSelf: true, InteractionSurgery: true,
	InteractionBiopod: true, InteractionArtModel: true, InteractionSlipUp: true,
	InteractionIntimacy: true,
}

// Valid reports whether t is a known interaction type.
func (t InteractionType) Valid() bool { return knownInteractions[t] }

// IsSet is false for the empty value and for None.
func (t InteractionType) IsSet() bool { return t != "" && t != InteractionNone }

// InherentlyNude reports whether the activity implies undress even when
// the host still flags the pawn as clothed.
func (t InteractionType) InherentlyNude() bool {
	switch t {
	case InteractionShower, InteractionBath, InteractionSauna, InteractionSwimming,
		InteractionHotTub, InteractionIntimacy, InteractionMedicalFull,
		InteractionMedicalFullSelf, InteractionSurgery, InteractionBiopod,
		InteractionArtModel:
		return true
	}
	return false
}

// Sensitive interactions are off unless explicitly enabled.
func (t InteractionType) Sensitive() bool {
	return t == InteractionIntimacy
}

// PawnState describes the observed pawn's capacity to react.
type PawnState string

const (
	StateNone        PawnState = "None"
	StateAsleep      PawnState = "Asleep"
	StateUnconscious PawnState = "Unconscious"
	StateUnaware     PawnState = "Unaware"
	StateUnable      PawnState = "Unable"
	StateUncaring    PawnState = "Uncaring"
	StateCanSee      PawnState = "CanSee"
	StateUnallowed   PawnState = "Unallowed"
)

func (s PawnState) Valid() bool {
	switch s {
	case StateNone, StateAsleep, StateUnconscious, StateUnaware, StateUnable,
		StateUncaring, StateCanSee, StateUnallowed:
		return true
	}
	return false
}

func (s PawnState) IsSet() bool { return s != "" && s != StateNone }

// Category is the emotional direction of an opinion.
type Category string

const (
	CategoryAny      Category = "Any"
	CategoryPositive Category = "Positive"
	CategoryNegative Category = "Negative"
	CategoryNeutral  Category = "Neutral"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryAny, CategoryPositive, CategoryNegative, CategoryNeutral:
		return true
	}
	return false
}

// Matches treats Any (and the empty value) on either side as a wildcard.
func (c Category) Matches(other Category) bool {
	if c == "" || c == CategoryAny || other == "" || other == CategoryAny {
		return true
	}
	return c == other
}

// Perspective says whose viewpoint a text is written from.
type Perspective string

const (
	PerspectiveAny      Perspective = "Any"
	PerspectiveObserver Perspective = "Observer"
	PerspectiveObserved Perspective = "Observed"
	PerspectiveSelf     Perspective = "Self"
)

func (p Perspective) Valid() bool {
	switch p {
	case PerspectiveAny, PerspectiveObserver, PerspectiveObserved, PerspectiveSelf:
		return true
	}
	return false
}

// Accepts reports whether a pool entry or rule declared with p may be used
// while evaluating from the current perspective.
func (p Perspective) Accepts(current Perspective) bool {
	return p == "" || p == PerspectiveAny || p == current
}

// Observation is one qualifying interaction reported by the host.
type Observation struct {
	Observer    pawn.ID         `json:"observer"`
	Observed    pawn.ID         `json:"observed"`
	Interaction InteractionType `json:"interaction"`
	State       PawnState       `json:"state"`
	Aware       bool            `json:"aware"`
}

// IsSelf is true when a pawn observes itself.
func (o Observation) IsSelf() bool { return o.Observer == o.Observed }
