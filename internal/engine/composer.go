package engine

import (
	"math/rand"

	"github.com/MRamiBalles/murmur/internal/domain/situation"
	"github.com/MRamiBalles/murmur/internal/opinion"
	"github.com/MRamiBalles/murmur/internal/platform/metrics"
	"github.com/MRamiBalles/murmur/internal/textgen"
)

// composer picks and renders the text for one context. Both the opinion log
// and the commentary queue go through it.
type composer struct {
	catalog          *opinion.Catalog
	scorer           *opinion.Scorer
	assembler        *textgen.Assembler
	rng              *rand.Rand
	generatorEnabled bool
	generatedChance  int
}

// compose returns finished text, the winning rule name (empty when none) and
// where the text came from. It never returns an empty string.
func (c *composer) compose(ctx *opinion.Context, category situation.Category) (string, string, metrics.Source) {
	best := c.scorer.SelectBest(ctx, c.catalog.CandidatesFor(category, "", ctx.Interaction))

	if c.generatorEnabled && (best == nil || c.rng.Intn(100) < c.generatedChance) {
		// Generate renders as it assembles.
		if text := c.assembler.Generate(ctx, category, ctx.Visible); text != "" {
			return text, "", metrics.SourceGenerated
		}
	}
	if best != nil {
		return c.render(ctx, best.PickText(c.rng)), best.Name, metrics.SourceRule
	}
	if base := c.scorer.SelectBest(ctx, c.catalog.Base(category)); base != nil {
		return c.render(ctx, base.PickText(c.rng)), base.Name, metrics.SourceBase
	}
	return c.render(ctx, textgen.Fallback), "", metrics.SourceFallback
}

func (c *composer) render(ctx *opinion.Context, template string) string {
	return textgen.Finish(textgen.Render(template, ctx.Observer.Pawn, ctx.Observed.Pawn, ""))
}
