package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	raw := []byte(`
mode: persistent
scheduler:
  tick_interval: 45s
lifecycle:
  population_floor: 75
social:
  daily_combat_cap: 5
`)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != ModePersistent {
		t.Fatalf("mode = %q", cfg.Mode)
	}
	if cfg.Scheduler.TickInterval != 45*time.Second {
		t.Fatalf("tick interval = %v", cfg.Scheduler.TickInterval)
	}
	if cfg.Lifecycle.PopulationFloor != 75 {
		t.Fatalf("population floor = %d", cfg.Lifecycle.PopulationFloor)
	}
	if cfg.Social.DailyCombatCap != 5 {
		t.Fatalf("combat cap = %d", cfg.Social.DailyCombatCap)
	}
	// Untouched knobs keep their defaults.
	if cfg.Lifecycle.RespawnHub != "town_square" {
		t.Fatalf("respawn hub lost its default: %q", cfg.Lifecycle.RespawnHub)
	}
	if cfg.Social.TheftPercentHi != 0.15 {
		t.Fatalf("theft bound lost its default: %f", cfg.Social.TheftPercentHi)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file must surface an error")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("mode: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed yaml must surface an error")
	}
}

func TestMaxLifespanFallback(t *testing.T) {
	cfg := Default()
	if got := cfg.MaxLifespan("elf"); got != 400 {
		t.Fatalf("elf lifespan = %d", got)
	}
	if got := cfg.MaxLifespan("gnome"); got != cfg.Lifecycle.DefaultLifespan {
		t.Fatalf("unknown race must fall back to default, got %d", got)
	}
}

func TestActChancePerMode(t *testing.T) {
	cfg := Default()
	standalone := cfg.ActChance()
	cfg.Mode = ModePersistent
	persistent := cfg.ActChance()
	if persistent >= standalone {
		t.Fatalf("persistent pacing must be slower: %f vs %f", persistent, standalone)
	}
	if !cfg.Persistent() {
		t.Fatal("Persistent() must report the mode")
	}
}
