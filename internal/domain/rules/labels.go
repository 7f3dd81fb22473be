package rules

import (
	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
)

// NeedState buckets the host's need level.
type NeedState string

const (
	NeedAny        NeedState = "Any"
	NeedFrustrated NeedState = "Frustrated"
	NeedWanting    NeedState = "Wanting"
	NeedNeutral    NeedState = "Neutral"
	NeedSatisfied  NeedState = "Satisfied"
)

func (n NeedState) Valid() bool {
	switch n {
	case NeedAny, NeedFrustrated, NeedWanting, NeedNeutral, NeedSatisfied:
		return true
	}
	return false
}

// Need level thresholds, inclusive upper bounds.
const (
	needFrustrated = 0.10
	needWanting    = 0.25
	needNeutral    = 0.50
)

// NeedStateOf returns NeedAny for pawns without the need.
func NeedStateOf(p *pawn.Pawn) NeedState {
	if p == nil || p.Need == nil {
		return NeedAny
	}
	lvl := *p.Need
	switch {
	case lvl <= needFrustrated:
		return NeedFrustrated
	case lvl <= needWanting:
		return NeedWanting
	case lvl <= needNeutral:
		return NeedNeutral
	}
	return NeedSatisfied
}

type Trimester string

const (
	TrimesterNone   Trimester = "None"
	TrimesterFirst  Trimester = "First"
	TrimesterSecond Trimester = "Second"
	TrimesterThird  Trimester = "Third"
)

func (t Trimester) Valid() bool {
	switch t {
	case TrimesterNone, TrimesterFirst, TrimesterSecond, TrimesterThird:
		return true
	}
	return false
}

// TrimesterOf maps gestation progress onto a trimester.
func TrimesterOf(p *pawn.Pawn) Trimester {
	if p == nil {
		return TrimesterNone
	}
	progress, ok := p.Pregnancy()
	if !ok {
		return TrimesterNone
	}
	switch {
	case progress <= 0.33:
		return TrimesterFirst
	case progress <= 0.66:
		return TrimesterSecond
	}
	return TrimesterThird
}

// SizeLabel describes a part severity in plain words.
func SizeLabel(severity float64) string {
	switch {
	case severity <= 0.15:
		return "tiny"
	case severity <= 0.35:
		return "small"
	case severity <= 0.65:
		return "average"
	case severity <= 0.85:
		return "large"
	}
	return "huge"
}

// CorrectedState overrides the host-reported state with what the body says.
func CorrectedState(p *pawn.Pawn, reported situation.PawnState) situation.PawnState {
	if p == nil {
		return reported
	}
	switch {
	case p.Downed:
		return situation.StateUnconscious
	case p.Asleep:
		return situation.StateAsleep
	}
	if reported == "" {
		return situation.StateNone
	}
	return reported
}

// NudityStatus is the short human label for a pawn's exposure.
func NudityStatus(p *pawn.Pawn) string {
	switch {
	case p == nil:
		return "unknown"
	case p.IsNaked():
		return "fully nude"
	case p.Topless && p.ShowsChest():
		return "topless"
	case p.Bottomless:
		return "bottomless"
	}
	return "clothed"
}

func CoveringStatus(p *pawn.Pawn) string {
	if p != nil && p.Covering {
		return "covering up"
	}
	return "not covering"
}

// NudityAndCoveringStatus combines both labels the way log lines read them.
func NudityAndCoveringStatus(p *pawn.Pawn) string {
	status := NudityStatus(p)
	if p == nil || !p.Covering {
		return status
	}
	if status == "clothed" {
		return "clothed and covering up"
	}
	return status + ", but covering up"
}

// SharesNudeState reports whether p is itself in the undress state that an
// undress interaction describes. Other interactions never match.
func SharesNudeState(p *pawn.Pawn, t situation.InteractionType) bool {
	if p == nil {
		return false
	}
	switch t {
	case situation.InteractionCovering:
		return p.Covering
	case situation.InteractionNaked:
		return p.IsNaked()
	case situation.InteractionTopless:
		return p.Topless && p.HasBreasts
	case situation.InteractionBottomless:
		return p.Bottomless
	}
	return false
}
