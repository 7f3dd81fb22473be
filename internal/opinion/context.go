package opinion

import (
	"errors"

	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/rules"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
)

// ErrMissingParticipant is returned when either pawn is unknown.
var ErrMissingParticipant = errors.New("missing participant")

// Facts are the derived per-participant values shared by every rule check.
type Facts struct {
	Pawn      *pawn.Pawn
	Dress     pawn.DressState
	Need      rules.NeedState
	Trimester rules.Trimester
}

func factsOf(p *pawn.Pawn) Facts {
	return Facts{
		Pawn:      p,
		Dress:     p.DressState(),
		Need:      rules.NeedStateOf(p),
		Trimester: rules.TrimesterOf(p),
	}
}

// PartFact describes one body part of the observed pawn, as seen by the observer.
type PartFact struct {
	Seen     bool
	Present  bool
	Family   pawn.GenitalFamily
	Label    string
	Severity float64
}

// Context is built once per evaluation and then only read.
type Context struct {
	// Subject owns the resulting opinion; Target is the other pawn.
	Subject *pawn.Pawn
	Target  *pawn.Pawn

	Observer Facts
	Observed Facts

	Perspective situation.Perspective
	Interaction situation.InteractionType
	State       situation.PawnState
	Aware       bool
	Self        bool

	// FlatChest marks a male observed pawn without breasts.
	FlatChest bool
	Parts     map[pawn.BodyPart]PartFact
	Visible   []pawn.BodyPart

	// Focus is the body part under evaluation for part-family rules.
	Focus pawn.BodyPart
}

// PerspectiveFor derives the viewpoint of an opinion owned by subject.
func PerspectiveFor(subject, target pawn.ID, subjectIsObserver bool) situation.Perspective {
	switch {
	case subject == target:
		return situation.PerspectiveSelf
	case subjectIsObserver:
		return situation.PerspectiveObserver
	}
	return situation.PerspectiveObserved
}

// NewContext resolves the observer and observed roles for the perspective
// and precomputes every fact rules may ask about.
func NewContext(subject, target *pawn.Pawn, perspective situation.Perspective, interaction situation.InteractionType, state situation.PawnState, aware bool) (*Context, error) {
	if subject == nil || target == nil {
		return nil, ErrMissingParticipant
	}

	observer, observed := subject, target
	switch perspective {
	case situation.PerspectiveSelf:
		observer, observed = subject, subject
	case situation.PerspectiveObserved:
		observer, observed = target, subject
	}
	if interaction == "" {
		interaction = situation.InteractionNone
	}

	ctx := &Context{
		Subject:     subject,
		Target:      target,
		Observer:    factsOf(observer),
		Observed:    factsOf(observed),
		Perspective: perspective,
		Interaction: interaction,
		State:       rules.CorrectedState(observed, state),
		Aware:       aware,
		Self:        observer.ID == observed.ID,
		FlatChest:   observed.Gender == pawn.GenderMale && !observed.HasBreasts,
		Visible:     observed.VisibleParts(),
		Parts:       make(map[pawn.BodyPart]PartFact, 4),
	}

	visible := make(map[pawn.BodyPart]bool, len(ctx.Visible))
	for _, bp := range ctx.Visible {
		visible[bp] = true
	}
	for _, bp := range []pawn.BodyPart{pawn.PartChest, pawn.PartGenitals, pawn.PartAnus, pawn.PartTorso} {
		fact := PartFact{Seen: visible[bp] || observer.HasSeen(observed.ID, bp)}
		if part, ok := observed.Part(bp); ok {
			fact.Present = true
			fact.Family = part.Family
			fact.Label = part.Label
			fact.Severity = part.Severity
		}
		ctx.Parts[bp] = fact
	}
	return ctx, nil
}

// WithFocus returns a shallow copy focused on one body part.
func (c *Context) WithFocus(bp pawn.BodyPart) *Context {
	cp := *c
	cp.Focus = bp
	return &cp
}
