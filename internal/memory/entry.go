// Package memory keeps what each pawn has thought about others: a bounded
// opinion log per pawn and the private part opinions it formed.
package memory

import (
	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
)

// Entry is one line of a pawn's opinion log. Owner is the pawn whose log
// holds it; Other is the counterpart.
type Entry struct {
	Owner       pawn.ID                   `json:"owner"`
	OwnerName   string                    `json:"owner_name"`
	Other       pawn.ID                   `json:"other"`
	OtherName   string                    `json:"other_name"`
	Text        string                    `json:"text"`
	Rule        string                    `json:"rule,omitempty"`
	Interaction situation.InteractionType `json:"interaction"`
	State       situation.PawnState       `json:"state"`
	Category    situation.Category        `json:"category"`
	Aware       bool                      `json:"aware"`
	IsSelf      bool                      `json:"is_self"`
	AsObserver  bool                      `json:"as_observer"`
	Tick        int64                     `json:"tick"`
}

// Formatted prefixes the text with who observed whom.
func (e Entry) Formatted() string {
	if e.IsSelf {
		return e.OwnerName + " observed themselves: " + e.Text
	}
	if e.AsObserver {
		return e.OwnerName + " observed " + e.OtherName + ": " + e.Text
	}
	return e.OtherName + " observed " + e.OwnerName + ": " + e.Text
}

// Ring is a fixed-capacity log that drops its oldest entry when full.
type Ring struct {
	buf   []Entry
	start int
	size  int
}

func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]Entry, capacity)}
}

func (r *Ring) Add(e Entry) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = e
		r.size++
		return
	}
	r.buf[r.start] = e
	r.start = (r.start + 1) % len(r.buf)
}

// Entries returns a copy, newest first.
func (r *Ring) Entries() []Entry {
	out := make([]Entry, 0, r.size)
	for i := r.size - 1; i >= 0; i-- {
		out = append(out, r.buf[(r.start+i)%len(r.buf)])
	}
	return out
}

func (r *Ring) Latest() (Entry, bool) {
	if r.size == 0 {
		return Entry{}, false
	}
	return r.buf[(r.start+r.size-1)%len(r.buf)], true
}

func (r *Ring) Len() int { return r.size }
func (r *Ring) Cap() int { return len(r.buf) }
