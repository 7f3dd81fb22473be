// Package config loads engine and server settings.
// Values come from Default(), then an optional YAML file, then MURMUR_* env vars.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MRamiBalles/murmur/internal/platform/optimization"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full settings tree.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// EngineConfig mirrors the in-game mod settings plus the limiter knobs.
type EngineConfig struct {
	GeneratorEnabled       bool            `yaml:"generator_enabled"`
	GeneratedOpinionChance int             `yaml:"generated_opinion_chance"`
	PartDescriptionChance  int             `yaml:"part_description_chance"`
	ObservedOpinions       bool            `yaml:"observed_opinions"`
	CommentaryEnabled      bool            `yaml:"commentary_enabled"`
	ObservedRemarkChance   int             `yaml:"observed_remark_chance"`
	Interactions           map[string]bool `yaml:"interactions"`

	LogCapacity     int `yaml:"log_capacity"`
	MaxTrackedPawns int `yaml:"max_tracked_pawns"`

	OpinionCooldownTicks    int64 `yaml:"opinion_cooldown_ticks"`
	OpinionPerTickCap       int   `yaml:"opinion_per_tick_cap"`
	CommentaryCooldownTicks int64 `yaml:"commentary_cooldown_ticks"`
	CommentaryPerTickCap    int   `yaml:"commentary_per_tick_cap"`
	QueueIntervalTicks      int64 `yaml:"queue_interval_ticks"`
	QueueCapacity           int   `yaml:"queue_capacity"`

	// TickRateMillis <= 0 turns the engine's own clock off; the host then
	// drives time with advance messages.
	TickRateMillis int    `yaml:"tick_rate_ms"`
	Seed           int64  `yaml:"seed"`
	CatalogPath    string `yaml:"catalog_path"`
}

type ServerConfig struct {
	Addr             string `yaml:"addr"`
	ClientSendBuffer int    `yaml:"client_send_buffer"`
	BroadcastBuffer  int    `yaml:"broadcast_buffer"`
}

type StorageConfig struct {
	SQLitePath    string `yaml:"sqlite_path"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	RedisAddr     string `yaml:"redis_addr"`
	ArchiveBuffer int    `yaml:"archive_buffer"`
}

type LogConfig struct {
	Mode  string `yaml:"mode"`
	Debug bool   `yaml:"debug"`
}

// DefaultInteractions enables every interaction except the sensitive ones.
func DefaultInteractions() map[string]bool {
	return map[string]bool{
		"Naked":           true,
		"Topless":         true,
		"Bottomless":      true,
		"Covering":        true,
		"Shower":          true,
		"Bath":            true,
		"Sauna":           true,
		"Swimming":        true,
		"HotTub":          true,
		"Changing":        true,
		"Sleeping":        true,
		"MedicalFull":     true,
		"MedicalFullSelf": true,
		"Surgery":         true,
		"Biopod":          true,
		"ArtModel":        true,
		"SlipUp":          true,
		"Intimacy":        false,
	}
}

// Default returns production defaults.
func Default() *Config {
	return fromTuning(optimization.Default())
}

func fromTuning(t *optimization.Tuning) *Config {
	return &Config{
		Engine: EngineConfig{
			GeneratorEnabled:       true,
			GeneratedOpinionChance: 50,
			PartDescriptionChance:  20,
			ObservedOpinions:       true,
			CommentaryEnabled:      true,
			ObservedRemarkChance:   100,
			Interactions:           DefaultInteractions(),

			LogCapacity:     20,
			MaxTrackedPawns: 4096,

			OpinionCooldownTicks:    10,
			OpinionPerTickCap:       4,
			CommentaryCooldownTicks: 15000,
			CommentaryPerTickCap:    2,
			QueueIntervalTicks:      60,
			QueueCapacity:           t.QueueCapacity,

			TickRateMillis: 16,
		},
		Server: ServerConfig{
			Addr:             ":8090",
			ClientSendBuffer: t.ClientSendBuffer,
			BroadcastBuffer:  t.BroadcastBuffer,
		},
		Storage: StorageConfig{
			SQLitePath:    "data/murmur.db",
			ArchiveBuffer: t.ArchiveBuffer,
		},
		Log: LogConfig{Mode: "dev"},
	}
}

// LowResource returns small buffers for local runs and the simulator.
func LowResource() *Config {
	cfg := fromTuning(optimization.LowResource())
	cfg.Engine.MaxTrackedPawns = 128
	cfg.Storage.SQLitePath = ""
	return cfg
}

// Load reads path (if non-empty) over Default(), applies env overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Enabled reports whether commentary for an interaction type is switched on.
// Unknown types default to enabled.
func (e EngineConfig) Enabled(interaction string) bool {
	on, ok := e.Interactions[interaction]
	if !ok {
		return true
	}
	return on
}

func (c *Config) Validate() error {
	e := c.Engine
	for name, v := range map[string]int{
		"generated_opinion_chance": e.GeneratedOpinionChance,
		"part_description_chance":  e.PartDescriptionChance,
		"observed_remark_chance":   e.ObservedRemarkChance,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: %s must be within 0..100, got %d", ErrInvalid, name, v)
		}
	}
	if e.OpinionCooldownTicks < 0 || e.CommentaryCooldownTicks < 0 {
		return fmt.Errorf("%w: cooldown intervals must not be negative", ErrInvalid)
	}
	if e.OpinionPerTickCap < 0 || e.CommentaryPerTickCap < 0 {
		return fmt.Errorf("%w: per-tick caps must not be negative", ErrInvalid)
	}
	if e.QueueIntervalTicks <= 0 {
		return fmt.Errorf("%w: queue_interval_ticks must be positive", ErrInvalid)
	}
	if e.LogCapacity <= 0 || e.MaxTrackedPawns <= 0 || e.QueueCapacity <= 0 {
		return fmt.Errorf("%w: capacities must be positive", ErrInvalid)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Addr = envString("MURMUR_ADDR", cfg.Server.Addr)
	cfg.Storage.SQLitePath = envString("MURMUR_SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.PostgresDSN = envString("MURMUR_POSTGRES_DSN", cfg.Storage.PostgresDSN)
	cfg.Storage.RedisAddr = envString("MURMUR_REDIS_ADDR", cfg.Storage.RedisAddr)
	cfg.Log.Mode = envString("MURMUR_LOG_MODE", cfg.Log.Mode)
	cfg.Log.Debug = envBool("MURMUR_DEBUG", cfg.Log.Debug)
	cfg.Engine.CatalogPath = envString("MURMUR_CATALOG", cfg.Engine.CatalogPath)
	cfg.Engine.GeneratedOpinionChance = envInt("MURMUR_GENERATED_CHANCE", cfg.Engine.GeneratedOpinionChance)
	cfg.Engine.CommentaryEnabled = envBool("MURMUR_COMMENTARY", cfg.Engine.CommentaryEnabled)
	cfg.Engine.Seed = int64(envInt("MURMUR_SEED", int(cfg.Engine.Seed)))
	cfg.Engine.TickRateMillis = envInt("MURMUR_TICK_RATE_MS", cfg.Engine.TickRateMillis)
}

func envString(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envBool(name string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
