// Package cooldown rate-limits emissions per pawn pair and per subject tick.
package cooldown

import (
	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
)

type key struct {
	subject     pawn.ID
	target      pawn.ID
	interaction situation.InteractionType
}

type tickCount struct {
	tick  int64
	count int
}

// Limiter grants at most one emission per key per interval and at most
// perTickCap emissions per subject per tick. It is not safe for concurrent
// use; the engine drives it from its own goroutine.
type Limiter struct {
	interval   int64
	perTickCap int
	clock      func() int64

	last    map[key]int64
	perTick map[pawn.ID]tickCount
}

// NewLimiter builds a limiter reading time from clock. A cap of 0 disables
// the per-tick limit.
func NewLimiter(interval int64, perTickCap int, clock func() int64) *Limiter {
	if clock == nil {
		clock = func() int64 { return 0 }
	}
	return &Limiter{
		interval:   interval,
		perTickCap: perTickCap,
		clock:      clock,
		last:       make(map[key]int64),
		perTick:    make(map[pawn.ID]tickCount),
	}
}

// TryAcquire stamps the key and returns true when an emission is allowed.
// Pass situation.InteractionNone (or "") to key by the pair alone.
func (l *Limiter) TryAcquire(subject, target pawn.ID, interaction situation.InteractionType) bool {
	now := l.clock()
	if interaction == "" {
		interaction = situation.InteractionNone
	}
	k := key{subject: subject, target: target, interaction: interaction}

	if last, ok := l.last[k]; ok && now-last < l.interval {
		return false
	}

	tc := l.perTick[subject]
	if tc.tick != now {
		tc = tickCount{tick: now}
	}
	if l.perTickCap > 0 && tc.count >= l.perTickCap {
		return false
	}

	tc.count++
	l.perTick[subject] = tc
	l.last[k] = now
	return true
}

// Forget drops every key in which id takes part.
func (l *Limiter) Forget(id pawn.ID) {
	for k := range l.last {
		if k.subject == id || k.target == id {
			delete(l.last, k)
		}
	}
	delete(l.perTick, id)
}

// Len reports the number of tracked keys.
func (l *Limiter) Len() int { return len(l.last) }
