// Package rules contains the pure calculation logic behind opinions.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import (
	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
)

// Category thresholds on the summed weight.
const (
	PositiveThreshold = 5
	NegativeThreshold = -5
)

// Weights is the data-driven part of the category calculation.
type Weights struct {
	Traits   map[string]int // flat bonus when the viewer has the trait
	Memes    map[string]int // flat bonus when the viewer's ideology has the meme
	Precepts map[string]int // flat bonus when the viewer's ideology has the precept
}

// DefaultWeights returns the shipped trait, meme and precept table.
func DefaultWeights() Weights {
	return Weights{
		Traits: map[string]int{
			"Kind":            2,
			"Abrasive":        -2,
			"Psychopath":      -4,
			"Bloodlust":       -2,
			"Nudist":          1,
			"BodyPurist":      1,
			"Jealous":         -1,
			"Joyous":          1,
			"Greedy":          -1,
			"Occultist":       -1,
			"Transhumanist":   -1,
			"VoidFascination": -1,
			"Exhibitionist":   2,
			"Voyeur":          4,
			"Prude":           -8,
			"Savant":          -1,
			"AnimalLover":     -1,
		},
		Memes: map[string]int{
			"Nudism":        3,
			"Collectivist":  1,
			"Individualist": -1,
		},
		Precepts: map[string]int{
			"Exhibitionism_Approved":           8,
			"Exhibitionism_Acceptable":         2,
			"Exhibitionism_Disapproved":        -6,
			"Nudity_Always_Mandatory_Everyone": 3,
		},
	}
}

// CategoryFor decides how viewer feels about seeing target.
func CategoryFor(viewer, target *pawn.Pawn, w Weights) situation.Category {
	if viewer == nil || target == nil {
		return situation.CategoryNeutral
	}
	return CategoryOf(Score(viewer, target, w))
}

// CategoryOf maps a summed weight onto a category.
func CategoryOf(total int) situation.Category {
	switch {
	case total >= PositiveThreshold:
		return situation.CategoryPositive
	case total <= NegativeThreshold:
		return situation.CategoryNegative
	}
	return situation.CategoryNeutral
}

// Score sums every modifier. Exported for diagnostics and tests.
func Score(viewer, target *pawn.Pawn, w Weights) int {
	total := clamp(viewer.OpinionOf(target.ID)/10, -7, 7)
	total += target.Beauty

	attracted := AttractedTo(viewer, target.Gender)
	if viewer.HasTrait("Asexual") {
		total -= 3
	} else if attracted {
		total += 3
	}

	for trait, bonus := range w.Traits {
		if viewer.HasTrait(trait) {
			total += bonus
		}
	}
	if viewer.HasTrait("DislikesMen") && target.Gender == pawn.GenderMale {
		total -= 10
	}
	if viewer.HasTrait("DislikesWomen") && target.Gender == pawn.GenderFemale {
		total -= 10
	}

	lover := viewer.IsLover(target.ID)
	if viewer.HasTrait("Faithful") {
		if lover {
			total += 4
		} else {
			total -= 4
		}
	}
	if viewer.HasTrait("Philanderer") {
		if attracted {
			total += 3
		} else {
			total -= 2
		}
	}
	if viewer.HasTrait("Polyamorous") {
		switch {
		case lover:
			total -= 4
		case attracted:
			total += 4
		default:
			total++
		}
	}

	total += ageModifier(target)

	switch NeedStateOf(viewer) {
	case NeedFrustrated:
		total -= 3
	case NeedWanting:
		total += 3
	}

	for meme, bonus := range w.Memes {
		if viewer.HasMeme(meme) {
			total += bonus
		}
	}
	for precept, bonus := range w.Precepts {
		if viewer.HasPrecept(precept) {
			total += bonus
		}
	}
	if viewer.HasMeme("MaleSupremacy") && target.Gender == pawn.GenderFemale {
		total -= 5
	}
	if viewer.HasMeme("FemaleSupremacy") && target.Gender == pawn.GenderMale {
		total -= 5
	}
	return total
}

// AttractedTo follows the host's orientation traits; without any it assumes
// attraction to the other gender.
func AttractedTo(viewer *pawn.Pawn, g pawn.Gender) bool {
	if viewer == nil || viewer.HasTrait("Asexual") {
		return false
	}
	if viewer.HasTrait("Bisexual") {
		return true
	}
	if viewer.HasTrait("Gay") {
		return viewer.Gender == g
	}
	return viewer.Gender != g
}

// Minors never contribute an attractiveness bonus.
func ageModifier(target *pawn.Pawn) int {
	if target.HasGene("Ageless") {
		return 2
	}
	age := target.AgeYears
	switch {
	case age < 18:
		return 0
	case age < 30:
		return 2
	case age < 50:
		return 1
	case age < 60:
		return -2
	}
	return -3
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
