package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Engine.LogCapacity != 20 {
		t.Errorf("expected log capacity 20, got %d", cfg.Engine.LogCapacity)
	}
	if cfg.Engine.Enabled("Intimacy") {
		t.Error("sensitive interaction should default to disabled")
	}
	if !cfg.Engine.Enabled("SomethingNew") {
		t.Error("unknown interaction should default to enabled")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "murmur.yaml")
	body := "engine:\n  generated_opinion_chance: 10\n  queue_interval_ticks: 30\nserver:\n  addr: \":9999\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MURMUR_ADDR", ":7000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.GeneratedOpinionChance != 10 {
		t.Errorf("expected chance 10, got %d", cfg.Engine.GeneratedOpinionChance)
	}
	if cfg.Engine.QueueIntervalTicks != 30 {
		t.Errorf("expected queue interval 30, got %d", cfg.Engine.QueueIntervalTicks)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("env override ignored, addr = %s", cfg.Server.Addr)
	}
	if cfg.Engine.LogCapacity != 20 {
		t.Errorf("unset fields should keep defaults, got %d", cfg.Engine.LogCapacity)
	}
}

func TestValidateRejectsBadChance(t *testing.T) {
	cfg := Default()
	cfg.Engine.PartDescriptionChance = 140
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
