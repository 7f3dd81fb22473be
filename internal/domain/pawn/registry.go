package pawn

import "sort"

// Registry is the in-process view of the host's live pawns.
// It is owned by the engine goroutine and is not safe for concurrent use.
type Registry struct {
	pawns map[ID]*Pawn
}

func NewRegistry() *Registry {
	return &Registry{pawns: make(map[ID]*Pawn)}
}

// Put inserts or replaces a snapshot.
func (r *Registry) Put(p *Pawn) {
	if p == nil {
		return
	}
	r.pawns[p.ID] = p
}

func (r *Registry) Get(id ID) (*Pawn, bool) {
	p, ok := r.pawns[id]
	return p, ok
}

// Remove reports whether the pawn was present.
func (r *Registry) Remove(id ID) bool {
	if _, ok := r.pawns[id]; !ok {
		return false
	}
	delete(r.pawns, id)
	return true
}

// Alive is false for unknown, dead or despawned pawns.
func (r *Registry) Alive(id ID) bool {
	p, ok := r.pawns[id]
	return ok && p.Alive()
}

func (r *Registry) Len() int { return len(r.pawns) }

// All returns the snapshots ordered by ID.
func (r *Registry) All() []*Pawn {
	out := make([]*Pawn, 0, len(r.pawns))
	for _, p := range r.pawns {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
