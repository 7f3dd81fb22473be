// Package opinion holds the rule catalog and the weighted scorer that picks
// which opinion a pawn forms about a situation.
package opinion

import (
	"fmt"
	"strings"

	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
	"github.com/MRamiBalles/murmur/internal/platform/logger"
)

// Vocabulary lists the host definitions rules may refer to. A nil set means
// every name is accepted for that kind.
type Vocabulary struct {
	Traits     map[string]bool
	Genes      map[string]bool
	Hediffs    map[string]bool
	Quirks     map[string]bool
	Relations  map[string]bool
	LifeStages map[string]bool
	Kinds      map[string]bool
}

// NewSet is a small helper for building vocabulary sets.
func NewSet(names ...string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[strings.ToLower(n)] = true
	}
	return out
}

func known(set map[string]bool, name string) bool {
	return set == nil || name == "" || set[strings.ToLower(name)]
}

// Catalog is the startup-built, read-only index of rules.
type Catalog struct {
	specific []*RuleDefinition
	base     []*RuleDefinition
	parts    []*RuleDefinition
	byName   map[string]*RuleDefinition
}

// LoadAll builds the catalog from a source. Rules with unresolved references
// are kept but can never match; duplicates and text-less rules are skipped.
// Only a failing source is an error.
func LoadAll(src Source, vocab *Vocabulary, log *logger.Logger) (*Catalog, error) {
	records, err := src.Records()
	if err != nil {
		return nil, fmt.Errorf("load rule records: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}

	c := &Catalog{byName: make(map[string]*RuleDefinition, len(records))}
	for i := range records {
		r := records[i]
		if r.Name == "" {
			r.Name = fmt.Sprintf("rule_%d", i)
		}
		if _, dup := c.byName[r.Name]; dup {
			log.Warn("duplicate rule skipped", "rule", r.Name)
			continue
		}
		if len(r.Texts) == 0 {
			log.Warn("rule without texts skipped", "rule", r.Name)
			continue
		}
		normalize(&r)
		if reason := validate(&r, vocab); reason != "" {
			r.unsatisfiable = true
			r.reason = reason
			log.Debug("rule can never match", "rule", r.Name, "reason", reason)
		}

		def := &r
		c.byName[def.Name] = def
		switch {
		case def.Family == FamilyPart:
			c.parts = append(c.parts, def)
		case def.Base:
			c.base = append(c.base, def)
		default:
			c.specific = append(c.specific, def)
		}
	}
	log.Info("rule catalog loaded", "specific", len(c.specific), "base", len(c.base), "parts", len(c.parts))
	return c, nil
}

func normalize(r *RuleDefinition) {
	if r.Family == "" {
		r.Family = FamilySituational
	}
	if r.Category == "" {
		r.Category = situation.CategoryAny
	}
	if r.Perspective == "" {
		r.Perspective = situation.PerspectiveAny
	}
	// A wildcard situational rule is a base rule even if not marked.
	if r.Family == FamilySituational && !r.Specific() {
		r.Base = true
	}
}

func validate(r *RuleDefinition, v *Vocabulary) string {
	if r.Family != FamilySituational && r.Family != FamilyPart {
		return "unknown family " + string(r.Family)
	}
	if !r.Category.Valid() {
		return "unknown category " + string(r.Category)
	}
	if !r.Perspective.Valid() {
		return "unknown perspective " + string(r.Perspective)
	}
	if r.Interaction != "" && !r.Interaction.Valid() {
		return "unknown interaction " + string(r.Interaction)
	}
	if r.State != "" && !r.State.Valid() {
		return "unknown pawn state " + string(r.State)
	}
	if r.TargetPart != "" && !r.TargetPart.Valid() {
		return "unknown body part " + string(r.TargetPart)
	}
	if r.GenitalFamily != "" && !r.GenitalFamily.Valid() {
		return "unknown genital family " + string(r.GenitalFamily)
	}
	if r.Severity != nil && r.Severity.Min > r.Severity.Max {
		return "empty severity range"
	}

	c := r.Conditions
	if c.BodyPartSeen != "" && !c.BodyPartSeen.Valid() {
		return "unknown body part " + string(c.BodyPartSeen)
	}
	if c.SeenFamily != "" && !c.SeenFamily.Valid() {
		return "unknown genital family " + string(c.SeenFamily)
	}
	if c.PartSize != nil && c.PartSize.Min > c.PartSize.Max {
		return "empty part size range"
	}
	if reason := validateSide("observer", c.Observer, v); reason != "" {
		return reason
	}
	return validateSide("observed", c.Observed, v)
}

func validateSide(label string, s Side, v *Vocabulary) string {
	switch {
	case s.Gender != "" && !s.Gender.Valid():
		return label + ": unknown gender " + string(s.Gender)
	case s.Dress != "" && !s.Dress.Valid():
		return label + ": unknown dress state " + string(s.Dress)
	case s.Need != "" && !s.Need.Valid():
		return label + ": unknown need state " + string(s.Need)
	case s.Trimester != "" && !s.Trimester.Valid():
		return label + ": unknown trimester " + string(s.Trimester)
	case s.MinAge > 0 && s.MaxAge > 0 && s.MinAge > s.MaxAge:
		return label + ": min age above max age"
	}
	if v == nil {
		return ""
	}
	switch {
	case !known(v.Traits, s.Trait):
		return label + ": unknown trait " + s.Trait
	case !known(v.Genes, s.Gene):
		return label + ": unknown gene " + s.Gene
	case !known(v.Hediffs, s.Hediff):
		return label + ": unknown hediff " + s.Hediff
	case !known(v.Quirks, s.Quirk):
		return label + ": unknown quirk " + s.Quirk
	case !known(v.Relations, s.Relation):
		return label + ": unknown relation " + s.Relation
	case !known(v.LifeStages, s.LifeStage):
		return label + ": unknown life stage " + s.LifeStage
	case !known(v.Kinds, s.Kind):
		return label + ": unknown pawn kind " + s.Kind
	}
	return ""
}

// CandidatesFor filters the specific situational rules by the cheap
// structural fields only. An empty bodyPart or interaction means "not given".
func (c *Catalog) CandidatesFor(category situation.Category, bodyPart pawn.BodyPart, interaction situation.InteractionType) []*RuleDefinition {
	var out []*RuleDefinition
	for _, r := range c.specific {
		if !r.Category.Matches(category) {
			continue
		}
		if bodyPart != "" && r.TargetPart != "" && r.TargetPart != bodyPart {
			continue
		}
		if interaction != "" && r.Interaction.IsSet() && r.Interaction != interaction {
			continue
		}
		out = append(out, r)
	}
	return out
}

// PartCandidates returns the private part opinions for one body part.
func (c *Catalog) PartCandidates(category situation.Category, bodyPart pawn.BodyPart) []*RuleDefinition {
	var out []*RuleDefinition
	for _, r := range c.parts {
		if !r.Category.Matches(category) {
			continue
		}
		if r.TargetPart != "" && r.TargetPart != bodyPart {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Base returns the wildcard rules usable for the category.
func (c *Catalog) Base(category situation.Category) []*RuleDefinition {
	var out []*RuleDefinition
	for _, r := range c.base {
		if r.Category.Matches(category) {
			out = append(out, r)
		}
	}
	return out
}

func (c *Catalog) Lookup(name string) (*RuleDefinition, bool) {
	r, ok := c.byName[name]
	return r, ok
}

// Len counts every loaded rule, including unsatisfiable ones.
func (c *Catalog) Len() int { return len(c.byName) }
