package memory

import (
	"math"

	"github.com/MRamiBalles/murmur/internal/domain/pawn"
)

// severityDrift is how far a part may change before the opinion is redone.
const severityDrift = 0.05

// PartOpinion is what an owner privately thinks of one body part of another pawn.
type PartOpinion struct {
	Rule      string        `json:"rule"`
	Text      string        `json:"text"`
	Part      pawn.BodyPart `json:"part"`
	Severity  float64       `json:"severity"`
	SizeLabel string        `json:"size_label"`
	Tick      int64         `json:"tick"`
}

// Stale reports whether the part changed enough to warrant a new opinion.
func (o PartOpinion) Stale(severity float64, sizeLabel string) bool {
	return math.Abs(o.Severity-severity) > severityDrift || o.SizeLabel != sizeLabel
}

type partKey struct {
	owner pawn.ID
	other pawn.ID
	part  pawn.BodyPart
}

// PartOpinions remembers one opinion per (owner, other, part).
type PartOpinions struct {
	m map[partKey]PartOpinion
}

func NewPartOpinions() *PartOpinions {
	return &PartOpinions{m: make(map[partKey]PartOpinion)}
}

func (p *PartOpinions) Get(owner, other pawn.ID, part pawn.BodyPart) (PartOpinion, bool) {
	o, ok := p.m[partKey{owner, other, part}]
	return o, ok
}

// Recall returns the remembered opinion if it is still current. Otherwise
// it calls form and stores what it returns; an ok=false from form stores
// nothing.
func (p *PartOpinions) Recall(owner, other pawn.ID, part pawn.BodyPart, severity float64, sizeLabel string, form func() (PartOpinion, bool)) (PartOpinion, bool) {
	k := partKey{owner, other, part}
	if o, ok := p.m[k]; ok && !o.Stale(severity, sizeLabel) {
		return o, true
	}
	o, ok := form()
	if !ok {
		return PartOpinion{}, false
	}
	o.Part = part
	o.Severity = severity
	o.SizeLabel = sizeLabel
	p.m[k] = o
	return o, true
}

// Forget drops every opinion owned by or about id.
func (p *PartOpinions) Forget(id pawn.ID) {
	for k := range p.m {
		if k.owner == id || k.other == id {
			delete(p.m, k)
		}
	}
}

func (p *PartOpinions) Len() int { return len(p.m) }
