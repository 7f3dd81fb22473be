package opinion

import (
	"math/rand"
	"testing"

	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
	"github.com/MRamiBalles/murmur/internal/platform/logger"
)

func boolPtr(b bool) *bool { return &b }

func newPair() (*pawn.Pawn, *pawn.Pawn) {
	observer := pawn.NewPawn(1, "Iris", pawn.GenderFemale, 31)
	observed := pawn.NewPawn(2, "Jon", pawn.GenderMale, 29)
	return observer, observed
}

func mustContext(t *testing.T, subject, target *pawn.Pawn, p situation.Perspective, it situation.InteractionType) *Context {
	t.Helper()
	ctx, err := NewContext(subject, target, p, it, situation.StateNone, true)
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	return ctx
}

func TestHardFilterExcludesUnsatisfiedField(t *testing.T) {
	observer, observed := newPair()
	ctx := mustContext(t, observer, observed, situation.PerspectiveObserver, situation.InteractionNaked)

	heavy := &RuleDefinition{
		Name:        "needs_trait",
		Perspective: situation.PerspectiveObserver,
		Interaction: situation.InteractionNaked,
		Conditions:  ConditionSet{Observed: Side{Trait: "Nudist"}},
		Texts:       []string{"x"},
	}
	light := &RuleDefinition{Name: "plain", Perspective: situation.PerspectiveAny, Texts: []string{"y"}}

	s := NewScorer(rand.New(rand.NewSource(3)), logger.NewNop())
	for i := 0; i < 50; i++ {
		if got := s.SelectBest(ctx, []*RuleDefinition{heavy, light}); got != light {
			t.Fatalf("expected the plain rule, got %v", got)
		}
	}

	observed.Traits = []string{"Nudist"}
	ctx = mustContext(t, observer, observed, situation.PerspectiveObserver, situation.InteractionNaked)
	if got := s.SelectBest(ctx, []*RuleDefinition{heavy, light}); got != heavy {
		t.Errorf("expected trait rule once satisfied, got %v", got)
	}
}

func TestEmptyConditionSetAlwaysPasses(t *testing.T) {
	observer, observed := newPair()
	r := &RuleDefinition{Name: "wild", Texts: []string{"x"}}
	for _, p := range []situation.Perspective{situation.PerspectiveObserver, situation.PerspectiveObserved, situation.PerspectiveSelf} {
		ctx := mustContext(t, observer, observed, p, situation.InteractionNone)
		if _, ok := Score(ctx, r); !ok {
			t.Errorf("wildcard rule rejected under %s", p)
		}
	}
}

func TestUniqueMaxIsDeterministic(t *testing.T) {
	observer, observed := newPair()
	observed.Topless, observed.Bottomless = true, true
	ctx := mustContext(t, observer, observed, situation.PerspectiveObserver, situation.InteractionNaked)

	generic := &RuleDefinition{Name: "generic", Perspective: situation.PerspectiveObserver, Texts: []string{"a"}}
	naked := &RuleDefinition{
		Name:        "naked",
		Perspective: situation.PerspectiveObserver,
		Conditions:  ConditionSet{Observed: Side{Dress: pawn.DressNaked}},
		Texts:       []string{"b"},
	}
	s := NewScorer(rand.New(rand.NewSource(99)), nil)
	for i := 0; i < 100; i++ {
		if got := s.SelectBest(ctx, []*RuleDefinition{generic, naked}); got != naked {
			t.Fatalf("iteration %d: expected naked rule, got %s", i, got.Name)
		}
	}
}

func TestSupersetOutscoresSubset(t *testing.T) {
	observer, observed := newPair()
	observer.Traits = []string{"Kind"}
	observed.Bottomless = true
	ctx := mustContext(t, observer, observed, situation.PerspectiveObserver, situation.InteractionBottomless)

	sub := &RuleDefinition{
		Name:        "sub",
		Interaction: situation.InteractionBottomless,
		Conditions:  ConditionSet{Observer: Side{Trait: "Kind"}},
		Texts:       []string{"a"},
	}
	super := &RuleDefinition{
		Name:        "super",
		Interaction: situation.InteractionBottomless,
		Conditions: ConditionSet{
			Observer: Side{Trait: "Kind", Gender: pawn.GenderFemale},
			Aware:    boolPtr(true),
		},
		Texts: []string{"b"},
	}
	ws, ok1 := Score(ctx, sub)
	wp, ok2 := Score(ctx, super)
	if !ok1 || !ok2 {
		t.Fatal("both rules should pass the filter")
	}
	if wp <= ws {
		t.Errorf("superset weight %d should exceed subset weight %d", wp, ws)
	}
}

func TestTiesAreBrokenUniformly(t *testing.T) {
	observer, observed := newPair()
	ctx := mustContext(t, observer, observed, situation.PerspectiveObserver, situation.InteractionNone)

	a := &RuleDefinition{Name: "a", Perspective: situation.PerspectiveObserver, Texts: []string{"a"}}
	b := &RuleDefinition{Name: "b", Perspective: situation.PerspectiveObserver, Texts: []string{"b"}}
	if w, _ := Score(ctx, a); w != 1000 {
		t.Fatalf("expected weight 1000, got %d", w)
	}

	s := NewScorer(rand.New(rand.NewSource(42)), nil)
	counts := map[string]int{}
	const trials = 1000
	for i := 0; i < trials; i++ {
		counts[s.SelectBest(ctx, []*RuleDefinition{a, b}).Name]++
	}
	for name, n := range counts {
		if n < 400 || n > 600 {
			t.Errorf("rule %s picked %d/%d times, expected roughly half", name, n, trials)
		}
	}
	if len(counts) != 2 {
		t.Errorf("expected both rules to be picked, got %v", counts)
	}
}

func TestNoSurvivorReturnsNil(t *testing.T) {
	observer, observed := newPair()
	cat, err := LoadAll(StaticSource{
		{
			Name:        "chest_only",
			Category:    situation.CategoryPositive,
			Perspective: situation.PerspectiveObserver,
			TargetPart:  pawn.PartChest,
			Conditions:  ConditionSet{BodyPartSeen: pawn.PartChest},
			Texts:       []string{"x"},
		},
		{
			Name:        "negative_only",
			Category:    situation.CategoryNegative,
			Perspective: situation.PerspectiveObserver,
			Conditions:  ConditionSet{Observer: Side{Trait: "Prude"}},
			Texts:       []string{"y"},
		},
	}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx := mustContext(t, observer, observed, situation.PerspectiveObserver, situation.InteractionNaked)
	candidates := cat.CandidatesFor(situation.CategoryPositive, pawn.PartGenitals, situation.InteractionNaked)
	if len(candidates) != 0 {
		t.Errorf("expected no structural candidates, got %d", len(candidates))
	}
	if got := NewScorer(nil, nil).SelectBest(ctx, candidates); got != nil {
		t.Errorf("expected none, got %s", got.Name)
	}
}

func TestFlatChestExcludesChestRules(t *testing.T) {
	observer, observed := newPair()
	observed.Topless = true
	observer.Seen[observed.ID] = pawn.Sighting{Top: true}
	ctx := mustContext(t, observer, observed, situation.PerspectiveObserver, situation.InteractionTopless)

	r := &RuleDefinition{Name: "chest", Conditions: ConditionSet{BodyPartSeen: pawn.PartChest}, Texts: []string{"x"}}
	if _, ok := Score(ctx, r); ok {
		t.Error("chest rule should not apply to a flat-chested male")
	}
}

func TestBodyPartSeenSubConditions(t *testing.T) {
	observer, observed := newPair()
	observed.Bottomless = true
	observed.Parts = []pawn.Part{{BodyPart: pawn.PartGenitals, Family: pawn.FamilyPenis, Label: "penis", Severity: 0.7}}
	ctx := mustContext(t, observer, observed, situation.PerspectiveObserver, situation.InteractionBottomless)

	base := &RuleDefinition{Name: "seen", Conditions: ConditionSet{BodyPartSeen: pawn.PartGenitals}, Texts: []string{"a"}}
	sized := &RuleDefinition{Name: "sized", Conditions: ConditionSet{
		BodyPartSeen: pawn.PartGenitals,
		PartSize:     &Range{Min: 0.6, Max: 0.9},
		SeenFamily:   pawn.FamilyPenis,
	}, Texts: []string{"b"}}
	wrongSize := &RuleDefinition{Name: "small", Conditions: ConditionSet{
		BodyPartSeen: pawn.PartGenitals,
		PartSize:     &Range{Min: 0, Max: 0.3},
	}, Texts: []string{"c"}}

	wb, _ := Score(ctx, base)
	ws, ok := Score(ctx, sized)
	if !ok || ws != wb+20 {
		t.Errorf("expected sized rule to score base+20, got %d vs %d", ws, wb)
	}
	if _, ok := Score(ctx, wrongSize); ok {
		t.Error("size outside range should be filtered")
	}
}

func TestPartRulesUseFocus(t *testing.T) {
	observer, observed := newPair()
	observed.Gender = pawn.GenderFemale
	observed.HasBreasts = true
	observed.Parts = []pawn.Part{{BodyPart: pawn.PartChest, Family: pawn.FamilyBreasts, Label: "chest", Severity: 0.5}}
	ctx := mustContext(t, observer, observed, situation.PerspectiveObserver, situation.InteractionNone)

	r := &RuleDefinition{
		Name:       "chest_average",
		Family:     FamilyPart,
		TargetPart: pawn.PartChest,
		Severity:   &Range{Min: 0.35, Max: 0.65},
		Texts:      []string{"x"},
	}
	if _, ok := Score(ctx.WithFocus(pawn.PartGenitals), r); ok {
		t.Error("part rule must not match another focus")
	}
	if _, ok := Score(ctx.WithFocus(pawn.PartChest), r); !ok {
		t.Error("part rule should match its focus")
	}
}

func TestPerspectiveSwapsRoles(t *testing.T) {
	subject, target := newPair()
	ctx := mustContext(t, subject, target, situation.PerspectiveObserved, situation.InteractionNone)
	if ctx.Observer.Pawn != target || ctx.Observed.Pawn != subject {
		t.Error("observed perspective should make the target the observer")
	}
	ctx = mustContext(t, subject, target, situation.PerspectiveSelf, situation.InteractionNone)
	if !ctx.Self || ctx.Observed.Pawn != subject {
		t.Error("self perspective should observe the subject")
	}
	if _, err := NewContext(nil, target, situation.PerspectiveObserver, "", "", false); err != ErrMissingParticipant {
		t.Errorf("expected ErrMissingParticipant, got %v", err)
	}
}
