package network

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
	"github.com/MRamiBalles/murmur/internal/engine"
	"github.com/MRamiBalles/murmur/internal/events"
	"github.com/MRamiBalles/murmur/internal/memory"
	"github.com/MRamiBalles/murmur/internal/platform/metrics"
)

func TestHostMessagesDecodeToEngineInput(t *testing.T) {
	cases := []struct {
		raw  string
		want events.EventType
	}{
		{`{"type":"observation","payload":{"observer":1,"observed":2,"interaction":"Shower","aware":true}}`, events.EventTypeObservation},
		{`{"type":"pawn_upsert","payload":{"id":3,"name":"Ada","gender":"Female","age_years":30}}`, events.EventTypePawnUpsert},
		{`{"type":"pawn_remove","payload":{"pawn_id":3}}`, events.EventTypePawnRemoved},
		{`{"type":"advance","payload":{"ticks":60}}`, events.EventTypeAdvanceClock},
	}
	for _, tc := range cases {
		var msg HostMessage
		if err := json.Unmarshal([]byte(tc.raw), &msg); err != nil {
			t.Fatal(err)
		}
		ev, err := msg.ToEvent()
		if err != nil {
			t.Fatalf("%s: %v", msg.Type, err)
		}
		if ev.Type != tc.want || !ev.Type.IsHostInput() {
			t.Errorf("%s: got type %s", msg.Type, ev.Type)
		}
	}
}

func TestPawnUpsertKeepsDefaults(t *testing.T) {
	msg := HostMessage{Type: MsgPawnUpsert, Payload: json.RawMessage(`{"id":3,"name":"Ada"}`)}
	ev, err := msg.ToEvent()
	if err != nil {
		t.Fatal(err)
	}
	p, ok := ev.Payload.(*pawn.Pawn)
	if !ok {
		t.Fatalf("expected *pawn.Pawn payload, got %T", ev.Payload)
	}
	if !p.Alive() {
		t.Error("a pawn without spawned flag should default to spawned")
	}
	if ev.ActorID != "3" {
		t.Errorf("unexpected actor %q", ev.ActorID)
	}
}

func TestHostMessageRejections(t *testing.T) {
	for _, msg := range []HostMessage{
		{Type: "dance"},
		{Type: MsgObservation, Payload: json.RawMessage(`{"observer":1}`)},
		{Type: MsgPawnUpsert, Payload: json.RawMessage(`{"name":"no id"}`)},
		{Type: MsgAdvance, Payload: json.RawMessage(`{"ticks":0}`)},
		{Type: MsgAdvance, Payload: json.RawMessage(`not json`)},
	} {
		if _, err := msg.ToEvent(); err == nil {
			t.Errorf("%s with %s: expected error", msg.Type, msg.Payload)
		}
	}
	if _, err := (HostMessage{Type: "dance"}).ToEvent(); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("expected ErrUnknownMessage, got %v", err)
	}
}

func TestHubBroadcastsEngineOutputOnly(t *testing.T) {
	el := events.NewEventLog(nil)
	col := metrics.New()
	hub := NewHub(el, nil, col, 16, 16)
	hub.Attach()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &Client{hub: hub, send: make(chan []byte, 16)}
	client.Register()

	el.Append(events.GameEvent{Type: events.EventTypeObservation, Payload: situation.Observation{Observer: 1, Observed: 2}})
	el.Append(events.GameEvent{Type: events.EventTypeCommentary, ActorID: "1", Payload: engine.Utterance{Kind: engine.KindRemark, Speaker: 1, Text: "Oh."}})

	select {
	case msg := <-client.send:
		var got events.GameEvent
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatal(err)
		}
		if got.Type != events.EventTypeCommentary {
			t.Errorf("expected COMMENTARY, got %s", got.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no broadcast received")
	}

	select {
	case msg := <-client.send:
		t.Errorf("host input should not be broadcast, got %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestAPI() (*API, *events.EventLog) {
	el := events.NewEventLog(nil)
	hub := NewHub(el, nil, metrics.New(), 4, 4)
	return NewAPI(hub, el, nil, nil), el
}

func TestHandleHostAppendsEvent(t *testing.T) {
	api, el := newTestAPI()

	body := `{"type":"advance","payload":{"ticks":5}}`
	rec := httptest.NewRecorder()
	api.HandleHost(rec, httptest.NewRequest(http.MethodPost, "/api/host", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got := el.GetByType(events.EventTypeAdvanceClock)
	if len(got) != 1 || got[0].Payload.(engine.AdvancePayload).Ticks != 5 {
		t.Fatalf("unexpected log %+v", got)
	}

	rec = httptest.NewRecorder()
	api.HandleHost(rec, httptest.NewRequest(http.MethodPost, "/api/host", strings.NewReader(`{"type":"dance"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	api.HandleHost(rec, httptest.NewRequest(http.MethodGet, "/api/host", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHandleReplayAndOpinions(t *testing.T) {
	api, el := newTestAPI()
	el.Append(events.GameEvent{Type: events.EventTypeObservation, ActorID: "1"})
	for i := int64(1); i <= 3; i++ {
		el.Append(events.GameEvent{Type: events.EventTypeOpinionLogged, ActorID: "1", TargetID: "2", Tick: i,
			Payload: memory.Entry{Owner: 1, OwnerName: "Ada", OtherName: "Bo", Text: "Hm.", AsObserver: true, Tick: i}})
	}
	el.Append(events.GameEvent{Type: events.EventTypeCommentary, ActorID: "2", Payload: engine.Utterance{Text: "Hey."}})

	rec := httptest.NewRecorder()
	api.HandleReplay(rec, httptest.NewRequest(http.MethodGet, "/api/replay?type=COMMENTARY", nil))
	var replay ReplayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &replay); err != nil {
		t.Fatal(err)
	}
	if replay.TotalEvents != 1 || replay.Events[0].Summary != "Hey." || replay.NextOffset != 5 {
		t.Errorf("unexpected replay %+v", replay)
	}

	rec = httptest.NewRecorder()
	api.HandleOpinions(rec, httptest.NewRequest(http.MethodGet, "/api/opinions?pawn=1&limit=2", nil))
	var body struct {
		Lines []string `json:"lines"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Lines) != 2 || body.Lines[0] != "Ada observed Bo: Hm." {
		t.Errorf("unexpected lines %v", body.Lines)
	}

	rec = httptest.NewRecorder()
	api.HandleOpinions(rec, httptest.NewRequest(http.MethodGet, "/api/opinions", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without pawn, got %d", rec.Code)
	}
}
