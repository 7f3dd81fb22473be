package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MRamiBalles/murmur/internal/domain/situation"
	"github.com/MRamiBalles/murmur/internal/events"
	"github.com/MRamiBalles/murmur/internal/memory"
	"github.com/MRamiBalles/murmur/internal/platform/metrics"
)

func openTestDB(t *testing.T) *SQLiteEventRepository {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "nested", "murmur.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteEventRepository(db)
}

func TestSQLiteEventRoundTrip(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	log := events.NewEventLog(nil)
	log.Append(events.GameEvent{Type: events.EventTypeOpinionLogged, ActorID: "1", TargetID: "2", Tick: 3,
		Payload: memory.Entry{Owner: 1, Other: 2, Text: "Hm.", Tick: 3}})
	log.Append(events.GameEvent{Type: events.EventTypeTimeTick, ActorID: "SYSTEM", Tick: 60})

	for _, ev := range log.Replay() {
		stored, err := ToStored(ev)
		if err != nil {
			t.Fatal(err)
		}
		if err := repo.Append(ctx, stored); err != nil {
			t.Fatal(err)
		}
		// duplicate appends are ignored
		if err := repo.Append(ctx, stored); err != nil {
			t.Fatalf("duplicate append: %v", err)
		}
	}

	byActor, err := repo.GetByActorID(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(byActor) != 1 || byActor[0].TargetID != "2" || byActor[0].Tick != 3 {
		t.Fatalf("unexpected events %+v", byActor)
	}
	ticks, err := repo.GetByEventType(ctx, string(events.EventTypeTimeTick))
	if err != nil {
		t.Fatal(err)
	}
	if len(ticks) != 1 || ticks[0].Tick != 60 {
		t.Fatalf("unexpected ticks %+v", ticks)
	}
}

func TestSQLiteOpinionsNewestFirst(t *testing.T) {
	db, err := InitSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewSQLiteOpinionRepository(db)
	ctx := context.Background()

	for i := int64(1); i <= 4; i++ {
		e := memory.Entry{Owner: 7, OwnerName: "Ada", Other: 8, OtherName: "Bo", Text: "x",
			Interaction: situation.InteractionSauna, State: situation.StateNone, Category: situation.CategoryNeutral,
			Aware: true, AsObserver: true, Tick: i}
		if err := repo.SaveOpinion(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.SaveOpinion(ctx, memory.Entry{Owner: 9, Tick: 1}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetByOwner(ctx, 7, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].Tick != 4 || got[2].Tick != 2 {
		t.Errorf("expected newest first, got ticks %d..%d", got[0].Tick, got[2].Tick)
	}
	if got[0].Interaction != situation.InteractionSauna || !got[0].Aware || !got[0].AsObserver || got[0].OtherName != "Bo" {
		t.Errorf("fields not preserved: %+v", got[0])
	}
}

func TestReconstructorFallsBackToLedger(t *testing.T) {
	db, err := InitSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	evRepo := NewSQLiteEventRepository(db)
	opRepo := NewSQLiteOpinionRepository(db)
	p := NewPersister(evRepo, metrics.New())

	for i := int64(1); i <= 3; i++ {
		if err := p.Append(events.GameEvent{ID: events.GenerateEventID(), Timestamp: time.Now(),
			Type: events.EventTypeOpinionLogged, ActorID: "4", TargetID: "5", Tick: i,
			Payload: memory.Entry{Owner: 4, Other: 5, Text: "seen", Tick: i}}); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.Append(events.GameEvent{ID: events.GenerateEventID(), Timestamp: time.Now(),
		Type: events.EventTypeCommentary, ActorID: "4", Tick: 9, Payload: "remark"}); err != nil {
		t.Fatal(err)
	}

	r := NewReconstructor(opRepo, evRepo)
	got, err := r.Recall(context.Background(), 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Tick != 3 || got[1].Tick != 2 {
		t.Fatalf("unexpected rebuild %+v", got)
	}

	if err := opRepo.SaveOpinion(context.Background(), memory.Entry{Owner: 4, Text: "archived", Tick: 10}); err != nil {
		t.Fatal(err)
	}
	got, _ = r.Recall(context.Background(), 4, 2)
	if len(got) != 1 || got[0].Text != "archived" {
		t.Errorf("archive should take precedence, got %+v", got)
	}
}

type fakeOpinions struct {
	mu    sync.Mutex
	got   []memory.Entry
	fail  bool
	delay time.Duration
}

func (f *fakeOpinions) SaveOpinion(ctx context.Context, e memory.Entry) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("disk full")
	}
	f.got = append(f.got, e)
	return nil
}

func (f *fakeOpinions) GetByOwner(context.Context, int64, int) ([]memory.Entry, error) {
	return nil, nil
}

type fakeSink struct {
	mu  sync.Mutex
	got int
}

func (s *fakeSink) Push(context.Context, memory.Entry) error {
	s.mu.Lock()
	s.got++
	s.mu.Unlock()
	return nil
}

func TestArchiverDrainsAndFlushes(t *testing.T) {
	repo := &fakeOpinions{}
	sink := &fakeSink{}
	col := metrics.New()
	a := NewArchiver(repo, 8, nil, col, sink)

	for i := int64(1); i <= 3; i++ {
		a.Archive(memory.Entry{Owner: 1, Tick: i})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatal(err)
	}

	if len(repo.got) != 3 || sink.got != 3 {
		t.Fatalf("expected 3 writes to each destination, got %d and %d", len(repo.got), sink.got)
	}
	if col.EventsWritten != 3 {
		t.Errorf("expected 3 recorded writes, got %d", col.EventsWritten)
	}
}

type downSink struct{}

func (downSink) Push(context.Context, memory.Entry) error { return errors.New("redis down") }

func TestArchiverSinkFailureKeepsRepositoryWrite(t *testing.T) {
	repo := &fakeOpinions{delay: 50 * time.Millisecond}
	col := metrics.New()
	a := NewArchiver(repo, 4, nil, col, downSink{})

	a.write(context.Background(), memory.Entry{Owner: 1, Tick: 9})

	if len(repo.got) != 1 {
		t.Fatalf("expected the entry in the repository despite the sink error, got %d", len(repo.got))
	}
	if col.EventWriteErrors != 0 {
		t.Errorf("repository write should not be recorded as failed, got %d errors", col.EventWriteErrors)
	}
}

func TestArchiverDropsWhenFull(t *testing.T) {
	repo := &fakeOpinions{}
	a := NewArchiver(repo, 1, nil, metrics.New())
	a.Archive(memory.Entry{Tick: 1})
	a.Archive(memory.Entry{Tick: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = a.Run(ctx)
	if len(repo.got) != 1 || repo.got[0].Tick != 1 {
		t.Errorf("expected only the first entry, got %+v", repo.got)
	}
}

func TestPersisterRecordsFailures(t *testing.T) {
	col := metrics.New()
	p := NewPersister(failingEvents{}, col)
	if err := p.Append(events.GameEvent{ID: "x", Type: events.EventTypeTimeTick}); err == nil {
		t.Fatal("expected error")
	}
	if col.EventWriteErrors != 1 {
		t.Errorf("expected 1 recorded error, got %d", col.EventWriteErrors)
	}
	if _, err := ToStored(events.GameEvent{Payload: make(chan int)}); err == nil {
		t.Error("unmarshalable payload should fail")
	}
}

type failingEvents struct{}

func (failingEvents) Append(context.Context, StoredEvent) error { return errors.New("offline") }
func (failingEvents) GetByActorID(context.Context, string) ([]StoredEvent, error) {
	return nil, nil
}
func (failingEvents) GetByEventType(context.Context, string) ([]StoredEvent, error) {
	return nil, nil
}
