// Package main is the entry point for the murmur opinion server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MRamiBalles/murmur/internal/content"
	"github.com/MRamiBalles/murmur/internal/engine"
	"github.com/MRamiBalles/murmur/internal/events"
	"github.com/MRamiBalles/murmur/internal/infra/cache"
	"github.com/MRamiBalles/murmur/internal/infra/storage"
	"github.com/MRamiBalles/murmur/internal/memory"
	"github.com/MRamiBalles/murmur/internal/network"
	"github.com/MRamiBalles/murmur/internal/opinion"
	"github.com/MRamiBalles/murmur/internal/platform/config"
	"github.com/MRamiBalles/murmur/internal/platform/logger"
	"github.com/MRamiBalles/murmur/internal/platform/metrics"
	"github.com/MRamiBalles/murmur/internal/platform/optimization"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "murmur-server:", err)
		os.Exit(1)
	}
}

// backends are the optional storage pieces, all nil when storage is off.
type backends struct {
	db       *sql.DB
	events   storage.EventRepository
	opinions storage.OpinionRepository
	redis    *cache.GoRedis
}

func (b *backends) Close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
}

func openBackends(ctx context.Context, cfg *config.Config, tuning *optimization.Tuning, log *logger.Logger) (*backends, error) {
	b := &backends{}
	switch {
	case cfg.Storage.PostgresDSN != "":
		log.Info("Opening PostgreSQL event ledger...")
		db, err := storage.OpenPostgres(cfg.Storage.PostgresDSN, tuning)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		b.db = db
		b.events = storage.NewPostgresEventRepository(db)
		b.opinions = storage.NewPostgresOpinionRepository(db)
	case cfg.Storage.SQLitePath != "":
		log.Info("Initializing SQLite database", "path", cfg.Storage.SQLitePath)
		db, err := storage.InitSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		b.db = db
		b.events = storage.NewSQLiteEventRepository(db)
		b.opinions = storage.NewSQLiteOpinionRepository(db)
	default:
		log.Warn("No storage configured; opinions live in memory only")
	}

	if cfg.Storage.RedisAddr != "" {
		rdb, err := cache.NewGoRedis(ctx, cfg.Storage.RedisAddr, tuning.RedisPoolSize)
		if err != nil {
			// The cache is optional; the archive stays the source of truth.
			log.Warn("Redis unavailable, continuing without cache", "error", err)
		} else {
			b.redis = rdb
		}
	}
	return b, nil
}

// lastTick recovers the clock from the newest TIME_TICK in the ledger.
func lastTick(ctx context.Context, repo storage.EventRepository) (int64, bool) {
	ticks, err := repo.GetByEventType(ctx, string(events.EventTypeTimeTick))
	if err != nil || len(ticks) == 0 {
		return 0, false
	}
	var payload engine.TimeTickPayload
	if err := json.Unmarshal(ticks[len(ticks)-1].Payload, &payload); err != nil {
		return 0, false
	}
	return payload.To, true
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	appLogger, err := logger.New(cfg.Log.Mode, cfg.Log.Debug)
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tuning := optimization.Default()
	col := metrics.Get()

	appLogger.Info("Loading opinion catalog...", "path", cfg.Engine.CatalogPath)
	bundle, err := content.Load(cfg.Engine.CatalogPath)
	if err != nil {
		return err
	}
	catalog, err := opinion.LoadAll(bundle, nil, appLogger)
	if err != nil {
		return err
	}
	appLogger.Info("Catalog ready", "rules", catalog.Len())

	be, err := openBackends(ctx, cfg, tuning, appLogger)
	if err != nil {
		return err
	}
	defer be.Close()

	appLogger.Info("Bootstrapping EventLog...")
	var persister events.EventPersister
	if be.events != nil {
		persister = storage.NewPersister(be.events, col)
	}
	eventLog := events.NewEventLog(persister)
	eventLog.OnPersistError(func(e events.GameEvent, err error) {
		appLogger.Error("event write-through failed", "type", e.Type, "id", e.ID, "error", err)
	})

	var (
		archiver *storage.Archiver
		history  memory.History
		recent   network.RecentReader
		sinks    []storage.EntrySink
	)
	if be.redis != nil {
		rc := cache.NewRecentOpinions(be.redis, cfg.Engine.LogCapacity)
		recent = rc
		sinks = append(sinks, rc)

		remarks := cache.NewLastRemark(be.redis)
		eventLog.Subscribe(func(e events.GameEvent) {
			u, ok := e.Payload.(engine.Utterance)
			if !ok || e.Type != events.EventTypeCommentary {
				return
			}
			go func() {
				cctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := remarks.Set(cctx, int64(u.Speaker), u.Text); err != nil {
					appLogger.Debug("last remark not cached", "error", err)
				}
			}()
		})
	}
	if be.opinions != nil {
		archiver = storage.NewArchiver(be.opinions, cfg.Storage.ArchiveBuffer, appLogger, col, sinks...)
		history = storage.NewReconstructor(be.opinions, be.events)
	}

	appLogger.Info("Bootstrapping Engine Subsystems...")
	opts := engine.Options{
		Config:   cfg.Engine,
		Catalog:  catalog,
		Pools:    bundle.Pools(),
		EventLog: eventLog,
		History:  history,
		Metrics:  col,
		Logger:   appLogger,
	}
	if archiver != nil {
		opts.Archiver = archiver
	}
	eng, err := engine.NewEngine(opts)
	if err != nil {
		return err
	}
	if be.events != nil {
		if tick, ok := lastTick(ctx, be.events); ok {
			eng.SetTick(tick)
			appLogger.Info("Restored clock from ledger", "tick", tick)
		}
	}

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(eventLog, appLogger, col, cfg.Server.BroadcastBuffer, cfg.Server.ClientSendBuffer)
	hub.Attach()
	api := network.NewAPI(hub, eventLog, recent, appLogger)

	mux := http.NewServeMux()
	api.RegisterRoutes(mux)
	mux.HandleFunc("/metrics", col.Handler())
	mux.HandleFunc("/metrics/prom", col.PrometheusHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "clients": strconv.Itoa(hub.Clients())})
	})
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		eng.Start(gctx)
		return nil
	})
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	if archiver != nil {
		g.Go(func() error { return archiver.Run(gctx) })
	}
	g.Go(func() error {
		appLogger.Info("HTTP API & WS Server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
