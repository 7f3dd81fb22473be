package events

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type memPersister struct {
	mu   sync.Mutex
	got  []GameEvent
	fail bool
	done chan struct{}
}

func (m *memPersister) Append(e GameEvent) error {
	m.mu.Lock()
	m.got = append(m.got, e)
	m.mu.Unlock()
	defer func() { m.done <- struct{}{} }()
	if m.fail {
		return errors.New("disk full")
	}
	return nil
}

func TestAppendFillsIDAndTimestamp(t *testing.T) {
	el := NewEventLog(nil)
	el.Append(GameEvent{Type: EventTypeObservation, ActorID: "1"})
	el.Append(GameEvent{Type: EventTypeOpinionLogged, ActorID: "2"})

	all := el.Replay()
	if len(all) != 2 {
		t.Fatalf("expected 2 events, got %d", len(all))
	}
	if all[0].ID == "" || all[0].ID == all[1].ID {
		t.Error("expected distinct generated IDs")
	}
	if all[0].Timestamp.IsZero() {
		t.Error("expected a timestamp")
	}
	if got := el.GetByActor("2"); len(got) != 1 || got[0].Type != EventTypeOpinionLogged {
		t.Errorf("unexpected actor filter result %+v", got)
	}
	if got := el.GetByType(EventTypeObservation); len(got) != 1 {
		t.Errorf("expected one observation, got %d", len(got))
	}
}

func TestSinceReturnsCopy(t *testing.T) {
	el := NewEventLog(nil)
	for i := 0; i < 3; i++ {
		el.Append(GameEvent{Type: EventTypeTimeTick, Tick: int64(i)})
	}
	tail := el.Since(1)
	if len(tail) != 2 || tail[0].Tick != 1 {
		t.Fatalf("unexpected tail %+v", tail)
	}
	tail[0].Tick = 99
	if el.Replay()[1].Tick != 1 {
		t.Error("Since must not expose the backing slice")
	}
	if el.Since(10) != nil {
		t.Error("expected nil past the end")
	}
}

func TestSubscribersAndPersister(t *testing.T) {
	p := &memPersister{fail: true, done: make(chan struct{}, 1)}
	el := NewEventLog(p)

	var failed error
	var mu sync.Mutex
	errSeen := make(chan struct{}, 1)
	el.OnPersistError(func(_ GameEvent, err error) {
		mu.Lock()
		failed = err
		mu.Unlock()
		errSeen <- struct{}{}
	})

	var seen []EventType
	el.Subscribe(func(e GameEvent) { seen = append(seen, e.Type) })
	el.Append(GameEvent{Type: EventTypeCommentary})

	if len(seen) != 1 || seen[0] != EventTypeCommentary {
		t.Errorf("subscriber not called synchronously: %v", seen)
	}
	select {
	case <-errSeen:
	case <-time.After(2 * time.Second):
		t.Fatal("persister error was not reported")
	}
	mu.Lock()
	defer mu.Unlock()
	if failed == nil {
		t.Error("expected the persister error")
	}
}

func TestHostInputTypes(t *testing.T) {
	if !EventTypeObservation.IsHostInput() || EventTypeOpinionLogged.IsHostInput() {
		t.Error("host input classification is wrong")
	}
}
