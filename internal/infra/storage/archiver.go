package storage

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MRamiBalles/murmur/internal/memory"
	"github.com/MRamiBalles/murmur/internal/platform/logger"
	"github.com/MRamiBalles/murmur/internal/platform/metrics"
)

// EntrySink is a secondary destination for archived entries, such as a
// recent-opinions cache.
type EntrySink interface {
	Push(ctx context.Context, e memory.Entry) error
}

// Archiver moves opinion log entries off the engine goroutine into the
// OpinionRepository and any extra sinks. Entries are dropped when the buffer
// is full.
type Archiver struct {
	repo    OpinionRepository
	sinks   []EntrySink
	queue   chan memory.Entry
	logger  *logger.Logger
	metrics *metrics.Collector
}

func NewArchiver(repo OpinionRepository, buffer int, log *logger.Logger, m *metrics.Collector, sinks ...EntrySink) *Archiver {
	if buffer <= 0 {
		buffer = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	if m == nil {
		m = metrics.Get()
	}
	return &Archiver{
		repo:    repo,
		sinks:   sinks,
		queue:   make(chan memory.Entry, buffer),
		logger:  log,
		metrics: m,
	}
}

// Archive implements memory.Archiver. It never blocks.
func (a *Archiver) Archive(e memory.Entry) {
	select {
	case a.queue <- e:
	default:
		a.logger.Warn("archive buffer full, entry dropped", "owner", e.Owner, "tick", e.Tick)
	}
}

// Run drains the buffer until ctx is done, then flushes what is left.
func (a *Archiver) Run(ctx context.Context) error {
	for {
		select {
		case e := <-a.queue:
			a.write(ctx, e)
		case <-ctx.Done():
			a.flush()
			return nil
		}
	}
}

func (a *Archiver) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	for {
		select {
		case e := <-a.queue:
			a.write(ctx, e)
		default:
			return
		}
	}
}

// write saves to the repository and pushes to the sinks concurrently. The
// repository is the record; a failing sink never cancels its write.
func (a *Archiver) write(ctx context.Context, e memory.Entry) {
	var g errgroup.Group
	g.Go(func() error {
		start := time.Now()
		err := a.repo.SaveOpinion(ctx, e)
		a.metrics.RecordEventWrite(time.Since(start), err)
		if err != nil {
			a.logger.Error("archive opinion failed", "owner", e.Owner, "error", err)
		}
		return nil
	})
	for _, sink := range a.sinks {
		sink := sink
		g.Go(func() error { return sink.Push(ctx, e) })
	}
	if err := g.Wait(); err != nil {
		a.logger.Warn("opinion sink push failed", "owner", e.Owner, "error", err)
	}
}

var _ memory.Archiver = (*Archiver)(nil)
