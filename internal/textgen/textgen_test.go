package textgen

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
	"github.com/MRamiBalles/murmur/internal/opinion"
)

func testPawns() (*pawn.Pawn, *pawn.Pawn) {
	observer := pawn.NewPawn(1, "Kai", pawn.GenderMale, 33)
	observed := pawn.NewPawn(2, "Lena", pawn.GenderFemale, 27)
	observed.Faction = "Outlanders"
	observed.IsColonist = false
	observer.Relations[2] = []string{"Friend"}
	return observer, observed
}

func TestRenderIsNoOpWithoutTokens(t *testing.T) {
	observer, observed := testPawns()
	for _, s := range []string{"", "plain text.", "a {brace without end", "{NOT_A_TOKEN} stays"} {
		if got := Render(s, observer, observed, ""); got != s {
			t.Errorf("Render(%q) = %q, expected unchanged", s, got)
		}
	}
}

func TestRenderResolvesTokens(t *testing.T) {
	observer, observed := testPawns()
	tmpl := "{OBSERVER_nameShort} saw {OBSERVED_nameShortPossessive} friend; {OBSERVED_pronoun} is {OBSERVED_ageBiologicalYears}, {OBSERVED_relationLabel} of {PAWN_objective}."
	got := Render(tmpl, observer, observed, "")
	want := "Kai saw Lena's friend; she is 27, friend of her."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if strings.Contains(got, "{") {
		t.Errorf("unresolved placeholder left in %q", got)
	}
}

func TestRenderDoesNotRescanInsertedValues(t *testing.T) {
	observer, observed := testPawns()
	observed.Name = "{OBSERVER_nameShort}"
	got := Render("Hi {OBSERVED_nameShort}", observer, observed, "")
	if got != "Hi {OBSERVER_nameShort}" {
		t.Errorf("inserted value was rescanned: %q", got)
	}
}

func TestRenderToleratesNilParticipants(t *testing.T) {
	got := Render("{OBSERVER_nameShort} looked at {OBSERVED_objective} and {OBSERVED_possessive} {OBSERVED_genitalSpecificLabel}.", nil, nil, "")
	if got != "a pawn looked at them and their genitals." {
		t.Errorf("unexpected render %q", got)
	}
}

func TestRenderCapitalizesPronounAtSentenceStart(t *testing.T) {
	observer, observed := testPawns()
	got := Render("{OBSERVED_pronoun} blinked. {OBSERVED_pronoun} smiled and {OBSERVED_pronoun} left.", observer, observed, "")
	if got != "She blinked. She smiled and she left." {
		t.Errorf("unexpected capitalization %q", got)
	}
}

func TestRenderPartTokens(t *testing.T) {
	observer, observed := testPawns()
	observed.Parts = []pawn.Part{{BodyPart: pawn.PartChest, Family: pawn.FamilyBreasts, Label: "bust", Severity: 0.9}}
	got := Render("a {OBSERVED_sizeLabel} {OBSERVED_partSpecificLabel}", observer, observed, pawn.PartChest)
	if got != "a huge bust" {
		t.Errorf("unexpected part render %q", got)
	}
}

func TestPossessive(t *testing.T) {
	if Possessive("Jess") != "Jess'" || Possessive("Ana") != "Ana's" {
		t.Error("possessive forms are wrong")
	}
}

func TestFinish(t *testing.T) {
	cases := map[string]string{
		"":         "",
		"  hello ": "Hello.",
		"really?":  "Really?",
		"wow!":     "Wow!",
		"done.":    "Done.",
	}
	for in, want := range cases {
		if got := Finish(in); got != want {
			t.Errorf("Finish(%q) = %q, want %q", in, got, want)
		}
	}
}

func genericPools() Pools {
	return Pools{
		Openers:     []Fragment{{Name: "o", Perspective: situation.PerspectiveAny, Texts: []string{"huh"}}},
		Reactions:   []Fragment{{Name: "r", Category: situation.CategoryAny, Texts: []string{"and it was fine"}}},
		Conclusions: []Fragment{{Name: "c", Texts: []string{"whatever"}}},
		Parts: []Fragment{{
			Name:     "p",
			Part:     pawn.PartGenitals,
			Family:   pawn.FamilyUndefined,
			Severity: &opinion.Range{Min: 0, Max: 1},
			Texts:    []string{"{OBSERVED_sizeLabel} {OBSERVED_partSpecificLabel}"},
		}},
		// Only usable from the observed side; must never leak into observer text.
		Interactions: []Fragment{{Name: "i", Perspective: situation.PerspectiveObserved, Interaction: situation.InteractionBath, Texts: []string{"SECRET"}}},
	}
}

func TestGenerateWithGenericPoolsOnly(t *testing.T) {
	observer, observed := testPawns()
	observed.Bottomless = true
	observed.Parts = []pawn.Part{{BodyPart: pawn.PartGenitals, Family: pawn.FamilyVagina, Label: "vulva", Severity: 0.2}}
	ctx, err := opinion.NewContext(observer, observed, situation.PerspectiveObserver, situation.InteractionBath, situation.StateNone, true)
	if err != nil {
		t.Fatal(err)
	}

	a := NewAssembler(genericPools(), rand.New(rand.NewSource(5)), nil)
	got := a.Generate(ctx, situation.CategoryPositive, []pawn.BodyPart{pawn.PartGenitals})
	if got == "" {
		t.Fatal("expected a sentence from generic pools")
	}
	want := "Huh Lena from Outlanders and it was fine she was bottomless small vulva whatever."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if strings.Contains(got, "SECRET") {
		t.Error("observed-only fragment leaked into observer text")
	}
}

func TestGenerateAlwaysTerminated(t *testing.T) {
	observer, observed := testPawns()
	pools := genericPools()
	pools.Conclusions = []Fragment{{Name: "c", Texts: []string{"really?", "no way!", "ok", "ok."}}}
	a := NewAssembler(pools, rand.New(rand.NewSource(11)), nil)

	for _, p := range []situation.Perspective{situation.PerspectiveObserver, situation.PerspectiveObserved, situation.PerspectiveSelf} {
		ctx, err := opinion.NewContext(observer, observed, p, situation.InteractionShower, situation.StateNone, false)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 50; i++ {
			got := a.Generate(ctx, situation.CategoryNeutral, ctx.Visible)
			if got == "" {
				t.Fatal("expected text")
			}
			switch got[len(got)-1] {
			case '.', '!', '?':
			default:
				t.Fatalf("unterminated sentence %q", got)
			}
		}
	}
}

func TestGenerateForcesNudeForInherentlyNudeActivities(t *testing.T) {
	observer, observed := testPawns()
	ctx, _ := opinion.NewContext(observer, observed, situation.PerspectiveObserved, situation.InteractionSauna, situation.StateNone, true)
	a := NewAssembler(Pools{Openers: []Fragment{{Texts: []string{"well"}}}}, nil, nil)
	got := a.Generate(ctx, situation.CategoryNeutral, nil)
	if got != "Well Lena from Outlanders I was nude." {
		t.Errorf("unexpected sentence %q", got)
	}
}

func TestGenerateEmptyPools(t *testing.T) {
	observer, observed := testPawns()
	ctx, _ := opinion.NewContext(observer, observed, situation.PerspectiveObserver, situation.InteractionNone, situation.StateNone, true)
	if got := NewAssembler(Pools{}, nil, nil).Generate(ctx, situation.CategoryNeutral, nil); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
	if !(Pools{}).Empty() {
		t.Error("zero pools should be empty")
	}
}
