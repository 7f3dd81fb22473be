package cooldown

import (
	"testing"

	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
)

type fakeClock struct{ now int64 }

func (c *fakeClock) Now() int64 { return c.now }

func TestIntervalGate(t *testing.T) {
	clk := &fakeClock{now: 5}
	l := NewLimiter(10, 0, clk.Now)

	if !l.TryAcquire(1, 2, situation.InteractionNone) {
		t.Fatal("first acquire at tick 5 should be granted")
	}
	clk.now = 12
	if l.TryAcquire(1, 2, situation.InteractionNone) {
		t.Error("acquire at tick 12 should be denied (7 < 10)")
	}
	clk.now = 16
	if !l.TryAcquire(1, 2, situation.InteractionNone) {
		t.Error("acquire at tick 16 should be granted")
	}
}

func TestDeniedCallDoesNotStamp(t *testing.T) {
	clk := &fakeClock{now: 0}
	l := NewLimiter(10, 0, clk.Now)
	l.TryAcquire(1, 2, "")
	clk.now = 9
	l.TryAcquire(1, 2, "")
	clk.now = 10
	if !l.TryAcquire(1, 2, "") {
		t.Error("a denied attempt must not push the window forward")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	clk := &fakeClock{now: 0}
	l := NewLimiter(100, 0, clk.Now)
	l.TryAcquire(1, 2, situation.InteractionBath)

	if !l.TryAcquire(1, 2, situation.InteractionSauna) {
		t.Error("another interaction has its own window")
	}
	if !l.TryAcquire(2, 1, situation.InteractionBath) {
		t.Error("the reversed pair has its own window")
	}
	if !l.TryAcquire(1, 3, situation.InteractionBath) {
		t.Error("another target has its own window")
	}
	if l.Len() != 4 {
		t.Errorf("expected 4 keys, got %d", l.Len())
	}
}

func TestPerTickCap(t *testing.T) {
	clk := &fakeClock{now: 3}
	l := NewLimiter(10, 2, clk.Now)

	granted := 0
	for target := pawn.ID(10); target < 13; target++ {
		if l.TryAcquire(1, target, situation.InteractionNone) {
			granted++
		}
	}
	if granted != 2 {
		t.Errorf("expected 2 grants in one tick, got %d", granted)
	}

	// Another subject is unaffected.
	if !l.TryAcquire(7, 10, situation.InteractionNone) {
		t.Error("cap is per subject")
	}

	clk.now = 4
	if !l.TryAcquire(1, 12, situation.InteractionNone) {
		t.Error("the cap resets on the next tick")
	}
}

func TestForget(t *testing.T) {
	clk := &fakeClock{}
	l := NewLimiter(1000, 0, clk.Now)
	l.TryAcquire(1, 2, "")
	l.TryAcquire(2, 3, "")
	l.TryAcquire(3, 4, "")

	l.Forget(2)
	if l.Len() != 1 {
		t.Fatalf("expected 1 key left, got %d", l.Len())
	}
	if !l.TryAcquire(1, 2, "") {
		t.Error("forgotten key should be granted again")
	}
}
