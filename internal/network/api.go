package network

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/MRamiBalles/murmur/internal/engine"
	"github.com/MRamiBalles/murmur/internal/events"
	"github.com/MRamiBalles/murmur/internal/memory"
	"github.com/MRamiBalles/murmur/internal/platform/logger"
)

// RecentReader serves cached opinion entries, newest first.
type RecentReader interface {
	Recent(ctx context.Context, owner int64, limit int) ([]memory.Entry, error)
}

// API is the HTTP surface next to the websocket: host input for hosts that
// cannot hold a socket, and read-only views of engine output.
type API struct {
	hub      *Hub
	eventLog *events.EventLog
	recent   RecentReader
	logger   *logger.Logger
}

// NewAPI creates the HTTP handlers. recent may be nil.
func NewAPI(hub *Hub, el *events.EventLog, recent RecentReader, log *logger.Logger) *API {
	if log == nil {
		log = logger.NewNop()
	}
	return &API{hub: hub, eventLog: el, recent: recent, logger: log}
}

// ReplayEvent is an event as shown to readers.
type ReplayEvent struct {
	ID        string      `json:"id"`
	Timestamp string      `json:"timestamp"`
	Tick      int64       `json:"tick"`
	Type      string      `json:"type"`
	ActorID   string      `json:"actor_id"`
	TargetID  string      `json:"target_id,omitempty"`
	Summary   string      `json:"summary"`
	Payload   interface{} `json:"payload,omitempty"`
}

// ReplayResponse is the response of the replay endpoint.
type ReplayResponse struct {
	TotalEvents int           `json:"total_events"`
	NextOffset  int           `json:"next_offset"`
	GeneratedAt string        `json:"generated_at"`
	Events      []ReplayEvent `json:"events"`
}

// HandleHost accepts one host message.
// POST /api/host
func (a *API) HandleHost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var msg HostMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize)).Decode(&msg); err != nil {
		a.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := a.hub.submit(msg); err != nil {
		a.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	a.jsonSuccess(w, map[string]interface{}{"accepted": true, "type": msg.Type})
}

// HandleReplay returns engine output from the event log.
// GET /api/replay?since=N&type=COMMENTARY&actor=ID
func (a *API) HandleReplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	since, _ := strconv.Atoi(q.Get("since"))
	if since < 0 {
		since = 0
	}
	eventType := q.Get("type")
	actor := q.Get("actor")

	all := a.eventLog.Since(since)
	out := make([]ReplayEvent, 0, len(all))
	for _, e := range all {
		if e.Type.IsHostInput() {
			continue
		}
		if eventType != "" && string(e.Type) != eventType {
			continue
		}
		if actor != "" && e.ActorID != actor {
			continue
		}
		out = append(out, toReplayEvent(e))
	}

	a.jsonSuccess(w, ReplayResponse{
		TotalEvents: len(out),
		NextOffset:  since + len(all),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      out,
	})
}

// HandleOpinions lists a pawn's most recent opinions.
// GET /api/opinions?pawn=ID&limit=N
func (a *API) HandleOpinions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	owner, err := strconv.ParseInt(r.URL.Query().Get("pawn"), 10, 64)
	if err != nil || owner <= 0 {
		a.jsonError(w, "Missing or invalid pawn", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	entries := a.cached(r.Context(), owner, limit)
	if entries == nil {
		entries = a.fromLog(owner, limit)
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Formatted())
	}
	a.jsonSuccess(w, map[string]interface{}{
		"pawn":    owner,
		"entries": entries,
		"lines":   lines,
	})
}

func (a *API) cached(ctx context.Context, owner int64, limit int) []memory.Entry {
	if a.recent == nil {
		return nil
	}
	entries, err := a.recent.Recent(ctx, owner, limit)
	if err != nil {
		a.logger.Debug("recent opinions cache unavailable", "error", err)
		return nil
	}
	if len(entries) == 0 {
		return nil
	}
	return entries
}

func (a *API) fromLog(owner int64, limit int) []memory.Entry {
	logged := a.eventLog.GetByActor(strconv.FormatInt(owner, 10))
	out := make([]memory.Entry, 0, limit)
	for i := len(logged) - 1; i >= 0 && len(out) < limit; i-- {
		if logged[i].Type != events.EventTypeOpinionLogged {
			continue
		}
		if e, ok := logged[i].Payload.(memory.Entry); ok {
			out = append(out, e)
		}
	}
	return out
}

// RegisterRoutes sets up the API routes.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", a.hub.ServeWS)
	mux.HandleFunc("/api/host", a.HandleHost)
	mux.HandleFunc("/api/replay", a.HandleReplay)
	mux.HandleFunc("/api/opinions", a.HandleOpinions)
}

func toReplayEvent(e events.GameEvent) ReplayEvent {
	return ReplayEvent{
		ID:        e.ID,
		Timestamp: e.Timestamp.Format(time.RFC3339),
		Tick:      e.Tick,
		Type:      string(e.Type),
		ActorID:   e.ActorID,
		TargetID:  e.TargetID,
		Summary:   summarize(e),
		Payload:   e.Payload,
	}
}

// summarize creates a human-readable summary.
func summarize(e events.GameEvent) string {
	switch p := e.Payload.(type) {
	case memory.Entry:
		return p.Formatted()
	case engine.Utterance:
		return p.Text
	}
	switch e.Type {
	case events.EventTypeTimeTick:
		return "Time passed."
	default:
		return string(e.Type)
	}
}

// jsonError sends an error response.
func (a *API) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// jsonSuccess sends a success response.
func (a *API) jsonSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}
