package optimization

import (
	"testing"

	"github.com/MRamiBalles/murmur/internal/platform/metrics"
)

func TestAnalyzeQueueDrops(t *testing.T) {
	c := metrics.New()
	c.RecordQueueDrop()

	rec := Analyze(c.Snapshot())
	if !rec.IncreaseQueue || len(rec.Notes) != 1 {
		t.Fatalf("expected a queue recommendation, got %+v", rec)
	}
	base := LowResource()
	tuned := base.Apply(rec)
	if tuned.QueueCapacity != 32 || base.QueueCapacity != 16 {
		t.Errorf("Apply should double a copy: got %d (base %d)", tuned.QueueCapacity, base.QueueCapacity)
	}
}

func TestAnalyzeQuietSnapshot(t *testing.T) {
	rec := Analyze(metrics.New().Snapshot())
	if rec.IncreaseQueue || rec.IncreaseDBConnections || rec.IncreaseBroadcastBuffer {
		t.Errorf("no recommendation expected, got %+v", rec)
	}
}
