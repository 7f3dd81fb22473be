package memory

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/platform/logger"
)

// Archiver receives every entry appended to a Store.
type Archiver interface {
	Archive(e Entry)
}

// History supplies previously archived entries, newest first, for a pawn
// whose log is not in memory.
type History interface {
	Recall(ctx context.Context, owner pawn.ID, limit int) ([]Entry, error)
}

// Store maps pawns to their opinion logs. The least recently written pawn
// is dropped once maxPawns logs are tracked.
type Store struct {
	logs     *lru.Cache[pawn.ID, *Ring]
	capacity int
	archiver Archiver
	log      *logger.Logger
}

func NewStore(capacity, maxPawns int, archiver Archiver, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewNop()
	}
	cache, err := lru.NewWithEvict[pawn.ID, *Ring](maxPawns, func(id pawn.ID, _ *Ring) {
		log.Debug("opinion log evicted", "pawn", id)
	})
	if err != nil {
		return nil, fmt.Errorf("opinion store: %w", err)
	}
	return &Store{logs: cache, capacity: capacity, archiver: archiver, log: log}, nil
}

// Add appends e to its owner's log.
func (s *Store) Add(e Entry) {
	ring, ok := s.logs.Get(e.Owner)
	if !ok {
		ring = NewRing(s.capacity)
		s.logs.Add(e.Owner, ring)
	}
	ring.Add(e)
	if s.archiver != nil {
		s.archiver.Archive(e)
	}
}

// Restore seeds owner's log from entries given newest first. It does nothing
// when the owner already has a log, and restored entries are not archived again.
func (s *Store) Restore(owner pawn.ID, entries []Entry) bool {
	if len(entries) == 0 || s.logs.Contains(owner) {
		return false
	}
	ring := NewRing(s.capacity)
	for i := len(entries) - 1; i >= 0; i-- {
		ring.Add(entries[i])
	}
	s.logs.Add(owner, ring)
	return true
}

// Entries lists the owner's log, newest first.
func (s *Store) Entries(owner pawn.ID) []Entry {
	ring, ok := s.logs.Peek(owner)
	if !ok {
		return nil
	}
	return ring.Entries()
}

func (s *Store) Latest(owner pawn.ID) (Entry, bool) {
	ring, ok := s.logs.Peek(owner)
	if !ok {
		return Entry{}, false
	}
	return ring.Latest()
}

// Remove reclaims the owner's slot.
func (s *Store) Remove(owner pawn.ID) bool {
	return s.logs.Remove(owner)
}

// Len is the number of pawns with a log.
func (s *Store) Len() int { return s.logs.Len() }
