// Package pawn defines the read-only snapshot of a simulated character that
// the host pushes to the engine, and the queries the engine runs against it.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package pawn

import "strings"

// ID is the host's stable integer identity for a pawn.
type ID int64

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderNone   Gender = "None"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderNone
}

// Pronoun returns the subjective pronoun.
func (g Gender) Pronoun() string {
	switch g {
	case GenderMale:
		return "he"
	case GenderFemale:
		return "she"
	}
	return "they"
}

func (g Gender) Objective() string {
	switch g {
	case GenderMale:
		return "him"
	case GenderFemale:
		return "her"
	}
	return "them"
}

func (g Gender) Possessive() string {
	switch g {
	case GenderMale:
		return "his"
	case GenderFemale:
		return "her"
	}
	return "their"
}

// DressState is the nudity state the host reports for a pawn.
type DressState string

const (
	DressClothed    DressState = "Clothed"
	DressNaked      DressState = "Naked"
	DressTopless    DressState = "Topless"
	DressBottomless DressState = "Bottomless"
	DressCovering   DressState = "Covering"
)

func (d DressState) Valid() bool {
	switch d {
	case DressClothed, DressNaked, DressTopless, DressBottomless, DressCovering:
		return true
	}
	return false
}

type BodyPart string

const (
	PartChest    BodyPart = "Chest"
	PartGenitals BodyPart = "Genitals"
	PartAnus     BodyPart = "Anus"
	PartTorso    BodyPart = "Torso"
)

func (b BodyPart) Valid() bool {
	switch b {
	case PartChest, PartGenitals, PartAnus, PartTorso:
		return true
	}
	return false
}

// GenitalFamily groups anatomically similar part variants.
type GenitalFamily string

const (
	FamilyUndefined        GenitalFamily = "Undefined"
	FamilyVagina           GenitalFamily = "Vagina"
	FamilyPenis            GenitalFamily = "Penis"
	FamilyBreasts          GenitalFamily = "Breasts"
	FamilyAnus             GenitalFamily = "Anus"
	FamilyFemaleOvipositor GenitalFamily = "FemaleOvipositor"
	FamilyMaleOvipositor   GenitalFamily = "MaleOvipositor"
)

func (f GenitalFamily) Valid() bool {
	switch f {
	case FamilyUndefined, FamilyVagina, FamilyPenis, FamilyBreasts, FamilyAnus,
		FamilyFemaleOvipositor, FamilyMaleOvipositor:
		return true
	}
	return false
}

// Matches treats Undefined (and empty) as a wildcard.
func (f GenitalFamily) Matches(actual GenitalFamily) bool {
	return f == "" || f == FamilyUndefined || f == actual
}

// Part is one sized body part as reported by the host's health system.
type Part struct {
	BodyPart BodyPart      `json:"body_part"`
	Family   GenitalFamily `json:"family"`
	Label    string        `json:"label"`
	Severity float64       `json:"severity"`
}

// Sighting records what a pawn has seen of another pawn so far.
type Sighting struct {
	Top    bool `json:"top"`
	Bottom bool `json:"bottom"`
}

type Ideology struct {
	Memes    []string `json:"memes"`
	Precepts []string `json:"precepts"`
}

// Pawn is an immutable-by-convention snapshot. Hosts replace the whole
// snapshot on change rather than mutating fields in place.
type Pawn struct {
	ID         ID     `json:"id"`
	Name       string `json:"name"`
	FullName   string `json:"full_name"`
	Gender     Gender `json:"gender"`
	AgeYears   int    `json:"age_years"`
	LifeStage  string `json:"life_stage"`
	Kind       string `json:"kind"`
	Faction    string `json:"faction"`
	IsColonist bool   `json:"is_colonist"`

	Traits  []string           `json:"traits"`
	Genes   []string           `json:"genes"`
	Quirks  []string           `json:"quirks"`
	Hediffs map[string]float64 `json:"hediffs"` // def name -> severity

	Relations map[ID][]string `json:"relations"` // what each other pawn is to this one, most important first
	Opinions  map[ID]int      `json:"opinions"`
	Beauty    int             `json:"beauty"`
	Need      *float64        `json:"need,omitempty"` // nil when the pawn lacks the need

	Topless    bool `json:"topless"`
	Bottomless bool `json:"bottomless"`
	Covering   bool `json:"covering"`
	HasBreasts bool `json:"has_breasts"`

	Parts    []Part          `json:"parts"`
	Seen     map[ID]Sighting `json:"seen"`
	Ideology Ideology        `json:"ideology"`

	Spawned bool `json:"spawned"`
	Dead    bool `json:"dead"`
	Downed  bool `json:"downed"`
	Asleep  bool `json:"asleep"`
}

// NewPawn creates a spawned adult snapshot with empty collections.
func NewPawn(id ID, name string, gender Gender, age int) *Pawn {
	return &Pawn{
		ID:         id,
		Name:       name,
		FullName:   name,
		Gender:     gender,
		AgeYears:   age,
		LifeStage:  "Adult",
		Kind:       "Colonist",
		IsColonist: true,
		Hediffs:    make(map[string]float64),
		Relations:  make(map[ID][]string),
		Opinions:   make(map[ID]int),
		Seen:       make(map[ID]Sighting),
		Spawned:    true,
	}
}

// ShortName is the nickname shown in logs.
func (p *Pawn) ShortName() string {
	if p.Name != "" {
		return p.Name
	}
	if f := strings.Fields(p.FullName); len(f) > 0 {
		return f[0]
	}
	return ""
}

func (p *Pawn) LongName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Name
}

func (p *Pawn) HasTrait(trait string) bool { return contains(p.Traits, trait) }
func (p *Pawn) HasGene(gene string) bool   { return contains(p.Genes, gene) }
func (p *Pawn) HasQuirk(quirk string) bool { return contains(p.Quirks, quirk) }

func (p *Pawn) HasMeme(meme string) bool       { return contains(p.Ideology.Memes, meme) }
func (p *Pawn) HasPrecept(precept string) bool { return contains(p.Ideology.Precepts, precept) }

func (p *Pawn) HasHediff(def string) bool {
	_, ok := p.Hediffs[def]
	return ok
}

// Pregnancy returns gestation progress in [0,1] when pregnant.
func (p *Pawn) Pregnancy() (float64, bool) {
	sev, ok := p.Hediffs["Pregnant"]
	return sev, ok
}

func (p *Pawn) OpinionOf(other ID) int { return p.Opinions[other] }

func (p *Pawn) HasRelation(other ID, relation string) bool {
	for _, r := range p.Relations[other] {
		if strings.EqualFold(r, relation) {
			return true
		}
	}
	return false
}

// MostImportantRelation returns "" when the pawns are unrelated.
func (p *Pawn) MostImportantRelation(other ID) string {
	if rels := p.Relations[other]; len(rels) > 0 {
		return rels[0]
	}
	return ""
}

// IsLover covers the relations that make infidelity traits care.
func (p *Pawn) IsLover(other ID) bool {
	return p.HasRelation(other, "Lover") || p.HasRelation(other, "Fiance") || p.HasRelation(other, "Spouse")
}

func (p *Pawn) Alive() bool { return p.Spawned && !p.Dead }

// IsNaked follows the host: fully undressed means both halves are exposed.
func (p *Pawn) IsNaked() bool { return p.Topless && p.Bottomless }

// DressState folds the host's booleans into a single state.
func (p *Pawn) DressState() DressState {
	switch {
	case p.IsNaked():
		return DressNaked
	case p.Topless && p.HasBreasts:
		return DressTopless
	case p.Bottomless:
		return DressBottomless
	case p.Covering:
		return DressCovering
	}
	return DressClothed
}

// ShowsChest reports whether the chest counts as a private part.
func (p *Pawn) ShowsChest() bool {
	return p.Gender == GenderFemale || p.HasBreasts
}

// Part resolves the sized part standing in for a body part. For genitals
// a vagina-family part is preferred over a penis-family part.
func (p *Pawn) Part(bp BodyPart) (Part, bool) {
	var fallback *Part
	var penis *Part
	for i := range p.Parts {
		part := &p.Parts[i]
		if part.BodyPart != bp {
			continue
		}
		if bp != PartGenitals {
			return *part, true
		}
		switch part.Family {
		case FamilyVagina, FamilyFemaleOvipositor:
			return *part, true
		case FamilyPenis, FamilyMaleOvipositor:
			if penis == nil {
				penis = part
			}
		default:
			if fallback == nil {
				fallback = part
			}
		}
	}
	if penis != nil {
		return *penis, true
	}
	if fallback != nil {
		return *fallback, true
	}
	return Part{}, false
}

// VisibleParts lists the private parts currently exposed.
func (p *Pawn) VisibleParts() []BodyPart {
	var out []BodyPart
	if p.Topless && p.ShowsChest() {
		out = append(out, PartChest)
	}
	if p.Bottomless {
		out = append(out, PartGenitals, PartAnus)
	}
	return out
}

// HasSeen reports whether p has already seen the given part of other.
// A pawn has always seen itself.
func (p *Pawn) HasSeen(other ID, bp BodyPart) bool {
	if other == p.ID {
		return true
	}
	s, ok := p.Seen[other]
	if !ok {
		return false
	}
	switch bp {
	case PartChest:
		return s.Top
	case PartGenitals, PartAnus:
		return s.Bottom
	case PartTorso:
		return s.Top || s.Bottom
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
