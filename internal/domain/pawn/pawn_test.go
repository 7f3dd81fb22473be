package pawn

import "testing"

func TestDressState(t *testing.T) {
	p := NewPawn(1, "Ada", GenderFemale, 30)
	p.HasBreasts = true

	if got := p.DressState(); got != DressClothed {
		t.Errorf("expected Clothed, got %s", got)
	}
	p.Topless = true
	if got := p.DressState(); got != DressTopless {
		t.Errorf("expected Topless, got %s", got)
	}
	p.Bottomless = true
	if got := p.DressState(); got != DressNaked {
		t.Errorf("expected Naked, got %s", got)
	}

	m := NewPawn(2, "Bo", GenderMale, 30)
	m.Topless = true
	if got := m.DressState(); got != DressClothed {
		t.Errorf("male without breasts should read as Clothed when topless, got %s", got)
	}
	if len(m.VisibleParts()) != 0 {
		t.Errorf("male chest should not count as visible, got %v", m.VisibleParts())
	}
}

func TestPartPrefersVaginaFamily(t *testing.T) {
	p := NewPawn(1, "Cy", GenderNone, 40)
	p.Parts = []Part{
		{BodyPart: PartGenitals, Family: FamilyPenis, Label: "penis", Severity: 0.4},
		{BodyPart: PartGenitals, Family: FamilyVagina, Label: "vagina", Severity: 0.6},
	}
	part, ok := p.Part(PartGenitals)
	if !ok {
		t.Fatal("expected a genital part")
	}
	if part.Family != FamilyVagina {
		t.Errorf("expected vagina family first, got %s", part.Family)
	}
	if _, ok := p.Part(PartChest); ok {
		t.Error("no chest part was registered")
	}
}

func TestHasSeen(t *testing.T) {
	p := NewPawn(1, "Di", GenderFemale, 25)
	if !p.HasSeen(1, PartGenitals) {
		t.Error("a pawn has always seen itself")
	}
	p.Seen[2] = Sighting{Top: true}
	if !p.HasSeen(2, PartChest) || !p.HasSeen(2, PartTorso) {
		t.Error("top sighting should cover chest and torso")
	}
	if p.HasSeen(2, PartAnus) {
		t.Error("bottom was never seen")
	}
	if p.HasSeen(3, PartTorso) {
		t.Error("unknown pawn was never seen")
	}
}

func TestRegistryAlive(t *testing.T) {
	r := NewRegistry()
	p := NewPawn(7, "Eli", GenderMale, 51)
	r.Put(p)
	if !r.Alive(7) {
		t.Fatal("spawned pawn should be alive")
	}
	p.Dead = true
	if r.Alive(7) {
		t.Error("dead pawn should not be alive")
	}
	if !r.Remove(7) || r.Remove(7) {
		t.Error("remove should succeed exactly once")
	}
	if r.Alive(7) {
		t.Error("removed pawn should not be alive")
	}
}
