// Package optimization sizes connection pools and buffers for the host's
// load, and suggests adjustments from observed metrics.
package optimization

import (
	"runtime"
)

// Tuning holds pool and buffer sizes that depend on the machine.
type Tuning struct {
	// Channel buffer sizes
	ArchiveBuffer    int
	BroadcastBuffer  int
	ClientSendBuffer int
	QueueCapacity    int

	// Connection pools
	DBMaxOpenConns int
	DBMaxIdleConns int
	RedisPoolSize  int
}

// Default returns sensible defaults for a server.
func Default() *Tuning {
	numCPU := runtime.NumCPU()

	return &Tuning{
		ArchiveBuffer:    1024, // Handle bursts of opinions
		BroadcastBuffer:  256,
		ClientSendBuffer: 256,
		QueueCapacity:    64,

		DBMaxOpenConns: numCPU * 4,
		DBMaxIdleConns: numCPU * 2,
		RedisPoolSize:  numCPU * 2,
	}
}

// LowResource returns minimal settings for development and the simulator.
func LowResource() *Tuning {
	return &Tuning{
		ArchiveBuffer:    64,
		BroadcastBuffer:  16,
		ClientSendBuffer: 16,
		QueueCapacity:    16,

		DBMaxOpenConns: 2,
		DBMaxIdleConns: 1,
		RedisPoolSize:  2,
	}
}

// Recommendations provides suggestions based on observed metrics.
type Recommendations struct {
	IncreaseQueue           bool
	IncreaseBroadcastBuffer bool
	IncreaseDBConnections   bool
	Notes                   []string
}

// Analyze examines a metrics snapshot and returns recommendations.
func Analyze(metrics map[string]interface{}) *Recommendations {
	rec := &Recommendations{
		Notes: make([]string, 0),
	}

	if c, ok := metrics["commentary"].(map[string]interface{}); ok {
		if drops, ok := c["queue_drops"].(int64); ok && drops > 0 {
			rec.IncreaseQueue = true
			rec.Notes = append(rec.Notes, "Commentary queue overflowed - raise queue capacity or lower the drain interval")
		}
	}

	if events, ok := metrics["events"].(map[string]interface{}); ok {
		if maxLat, ok := events["max_write_lat_ms"].(float64); ok && maxLat > 50 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Archive write latency exceeds 50ms - increase DB connections")
		}
		if errors, ok := events["errors"].(int64); ok && errors > 0 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Archive write errors detected - check DB connection pool")
		}
	}

	if ws, ok := metrics["websocket"].(map[string]interface{}); ok {
		if errors, ok := ws["errors"].(int64); ok && errors > 0 {
			rec.IncreaseBroadcastBuffer = true
			rec.Notes = append(rec.Notes, "WebSocket errors detected - increase client send buffer")
		}
	}

	return rec
}

// Apply returns a copy of t adjusted by rec.
func (t Tuning) Apply(rec *Recommendations) *Tuning {
	if rec.IncreaseQueue {
		t.QueueCapacity *= 2
	}
	if rec.IncreaseBroadcastBuffer {
		t.BroadcastBuffer *= 2
		t.ClientSendBuffer *= 2
	}
	if rec.IncreaseDBConnections {
		t.DBMaxOpenConns = int(float64(t.DBMaxOpenConns) * 1.5)
		t.DBMaxIdleConns = int(float64(t.DBMaxIdleConns) * 1.5)
	}
	return &t
}
