package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/hawkdove/components"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Population.Hawks != 10 || cfg.Population.Doves != 10 {
		t.Errorf("unexpected founders: hawks=%d doves=%d", cfg.Population.Hawks, cfg.Population.Doves)
	}
	if cfg.Payoff.V != 50 || cfg.Payoff.C != -10 || cfg.Payoff.B != 4 {
		t.Errorf("unexpected payoff constants: %+v", cfg.Payoff)
	}
	if cfg.Population.FitnessCeiling != 100 {
		t.Errorf("expected fitness ceiling 100, got %g", cfg.Population.FitnessCeiling)
	}
	if cfg.Derived.Initial != [components.NumStrategies]int{10, 10} {
		t.Errorf("unexpected derived founders %v", cfg.Derived.Initial)
	}
	if cfg.Payoff.Preset != PresetDerived {
		t.Errorf("default preset = %q, want %q", cfg.Payoff.Preset, PresetDerived)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	overlay := []byte(`
population:
  hawks: 3
payoff:
  entries:
    - {first: Hawk, second: hawk, payoff1: -5, payoff2: -5}
game:
  exhaustion: 1.5
`)
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Population.Hawks != 3 {
		t.Errorf("expected 3 hawks, got %d", cfg.Population.Hawks)
	}
	if cfg.Population.Doves != 10 {
		t.Errorf("doves should keep the default, got %d", cfg.Population.Doves)
	}
	if cfg.Game.Exhaustion != 1.5 {
		t.Errorf("expected exhaustion 1.5, got %g", cfg.Game.Exhaustion)
	}
	if len(cfg.Derived.Entries) != 1 {
		t.Fatalf("expected 1 resolved entry, got %d", len(cfg.Derived.Entries))
	}
	e := cfg.Derived.Entries[0]
	if e.First != components.StrategyHawk || e.Second != components.StrategyHawk || e.Payoff1 != -5 {
		t.Errorf("unexpected resolved entry %+v", e)
	}
}

func TestLoadCustomStrategyNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.yaml")
	overlay := []byte(`
payoff:
  hawk_name: Lion
  dove_name: Lamb
  entries:
    - {first: Lion, second: Lamb, payoff1: 7, payoff2: 1}
`)
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	e := cfg.Derived.Entries[0]
	if e.First != components.StrategyHawk || e.Second != components.StrategyDove {
		t.Errorf("custom names not resolved: %+v", e)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"negative hawks":  "population: {hawks: -1}\n",
		"zero ceiling":    "population: {fitness_ceiling: 0}\n",
		"bad bonus":       "payoff: {b: -1}\n",
		"zero threshold":  "population: {breeding_threshold: 0}\n",
		"below zero":      "population: {breeding_threshold: -10}\n",
		"unknown preset":  "payoff: {preset: chicken}\n",
		"unknown entry":   "payoff: {entries: [{first: Crow, second: Dove}]}\n",
		"negative gens":   "run: {max_generations: -5}\n",
		"negative logger": "telemetry: {log_every: -1}\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadClassicPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classic.yaml")
	if err := os.WriteFile(path, []byte("payoff: {preset: classic}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Payoff.Preset != PresetClassic {
		t.Errorf("preset = %q, want %q", cfg.Payoff.Preset, PresetClassic)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Population.BreedingThreshold = 80
	cfg.Run.MaxGenerations = 7

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Population.BreedingThreshold != 80 {
		t.Errorf("expected threshold 80, got %g", loaded.Population.BreedingThreshold)
	}
	if loaded.Run.MaxGenerations != 7 {
		t.Errorf("expected 7 generations, got %d", loaded.Run.MaxGenerations)
	}
}
