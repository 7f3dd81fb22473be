// Package metrics provides observability for the opinion engine.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers engine and server counters.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Opinion pipeline
	Evaluations     int64
	RuleHits        int64
	Generated       int64
	BaseRules       int64
	Fallbacks       int64
	PartOpinions    int64
	CooldownDenials int64
	OpinionsLogged  int64

	// Commentary queue
	Enqueued   int64
	QueueDrops int64
	StaleDrops int64
	Remarks    int64

	// Event metrics
	EventsWritten    int64
	EventWriteLatSum int64
	EventWriteLatMax int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = New()

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// New returns an empty collector. Tests use their own.
func New() *Collector {
	return &Collector{StartTime: time.Now()}
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// Source says where the text of an opinion came from.
type Source int

const (
	SourceRule Source = iota
	SourceGenerated
	SourceBase
	SourceFallback
)

// RecordOpinion counts one logged opinion by origin.
func (c *Collector) RecordOpinion(src Source, withPart bool) {
	atomic.AddInt64(&c.Evaluations, 1)
	atomic.AddInt64(&c.OpinionsLogged, 1)
	switch src {
	case SourceRule:
		atomic.AddInt64(&c.RuleHits, 1)
	case SourceGenerated:
		atomic.AddInt64(&c.Generated, 1)
	case SourceBase:
		atomic.AddInt64(&c.BaseRules, 1)
	case SourceFallback:
		atomic.AddInt64(&c.Fallbacks, 1)
	}
	if withPart {
		atomic.AddInt64(&c.PartOpinions, 1)
	}
}

func (c *Collector) RecordCooldownDenial() { atomic.AddInt64(&c.CooldownDenials, 1) }
func (c *Collector) RecordEnqueue()        { atomic.AddInt64(&c.Enqueued, 1) }
func (c *Collector) RecordQueueDrop()      { atomic.AddInt64(&c.QueueDrops, 1) }
func (c *Collector) RecordStaleDrop()      { atomic.AddInt64(&c.StaleDrops, 1) }
func (c *Collector) RecordRemark()         { atomic.AddInt64(&c.Remarks, 1) }

// RecordEventWrite records an event write to the database.
func (c *Collector) RecordEventWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	atomic.AddInt64(&c.EventWriteLatSum, int64(latency))

	if int64(latency) > atomic.LoadInt64(&c.EventWriteLatMax) {
		atomic.StoreInt64(&c.EventWriteLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	eventsWritten := atomic.LoadInt64(&c.EventsWritten)

	var tickAvg, eventAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if eventsWritten > 0 {
		eventAvg = float64(atomic.LoadInt64(&c.EventWriteLatSum)) / float64(eventsWritten) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"opinions": map[string]interface{}{
			"evaluations":      atomic.LoadInt64(&c.Evaluations),
			"logged":           atomic.LoadInt64(&c.OpinionsLogged),
			"rule_hits":        atomic.LoadInt64(&c.RuleHits),
			"generated":        atomic.LoadInt64(&c.Generated),
			"base_rules":       atomic.LoadInt64(&c.BaseRules),
			"fallbacks":        atomic.LoadInt64(&c.Fallbacks),
			"part_opinions":    atomic.LoadInt64(&c.PartOpinions),
			"cooldown_denials": atomic.LoadInt64(&c.CooldownDenials),
		},

		"commentary": map[string]interface{}{
			"enqueued":    atomic.LoadInt64(&c.Enqueued),
			"queue_drops": atomic.LoadInt64(&c.QueueDrops),
			"stale_drops": atomic.LoadInt64(&c.StaleDrops),
			"remarks":     atomic.LoadInt64(&c.Remarks),
		},

		"events": map[string]interface{}{
			"written":          eventsWritten,
			"avg_write_lat_ms": eventAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.EventWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return collector.Handler()
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return collector.PrometheusHandler()
}

func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		json.NewEncoder(w).Encode(c.Snapshot())
	}
}

type promCounter struct {
	name, help, kind string
	value            *int64
}

func (c *Collector) PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		fmt.Fprintf(w, "# HELP murmur_tick_latency_max_ms Maximum tick latency\n")
		fmt.Fprintf(w, "# TYPE murmur_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "murmur_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		for _, m := range []promCounter{
			{"murmur_tick_count", "Total tick cycles", "counter", &c.TickCount},
			{"murmur_opinions_logged", "Opinions written to pawn logs", "counter", &c.OpinionsLogged},
			{"murmur_rule_hits", "Opinions taken from a matching rule", "counter", &c.RuleHits},
			{"murmur_generated", "Opinions built by the sentence assembler", "counter", &c.Generated},
			{"murmur_fallbacks", "Opinions that used the hardcoded fallback", "counter", &c.Fallbacks},
			{"murmur_cooldown_denials", "Emissions refused by a limiter", "counter", &c.CooldownDenials},
			{"murmur_commentary_queue_drops", "Remarks dropped on a full queue", "counter", &c.QueueDrops},
			{"murmur_commentary_stale_drops", "Remarks dropped because a pawn left", "counter", &c.StaleDrops},
			{"murmur_remarks", "Remarks emitted", "counter", &c.Remarks},
			{"murmur_events_written", "Total events written", "counter", &c.EventsWritten},
			{"murmur_event_write_errors", "Total event write errors", "counter", &c.EventWriteErrors},
			{"murmur_ws_connections", "Active WebSocket connections", "gauge", &c.WSConnectionsActive},
		} {
			fmt.Fprintf(w, "# HELP %s %s\n", m.name, m.help)
			fmt.Fprintf(w, "# TYPE %s %s\n", m.name, m.kind)
			fmt.Fprintf(w, "%s %d\n\n", m.name, atomic.LoadInt64(m.value))
		}

		fmt.Fprintf(w, "# HELP murmur_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE murmur_ws_messages_total counter\n")
		fmt.Fprintf(w, "murmur_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "murmur_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
