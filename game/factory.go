package game

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/hawkdove/components"
	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/systems"
)

// PayoffMatrixFromConfig builds the preset matrix (derived from V, C and B,
// or the classic table), then applies any explicit entries.
func PayoffMatrixFromConfig(cfg *config.Config) (*systems.PayoffMatrix, error) {
	var matrix *systems.PayoffMatrix
	switch cfg.Payoff.Preset {
	case config.PresetClassic:
		matrix = systems.ClassicPayoffMatrix()
	case config.PresetDerived, "":
		var err error
		matrix, err = systems.DerivePayoffMatrix(
			components.StrategyHawk,
			components.StrategyDove,
			systems.PayoffConstants{V: cfg.Payoff.V, C: cfg.Payoff.C, B: cfg.Payoff.B},
		)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown payoff preset %q", cfg.Payoff.Preset)
	}

	if len(cfg.Derived.Entries) == 0 {
		return matrix, nil
	}
	overrides := make(map[systems.StrategyPair]systems.Payoff, len(cfg.Derived.Entries))
	for _, e := range cfg.Derived.Entries {
		overrides[systems.StrategyPair{First: e.First, Second: e.Second}] = systems.Payoff{First: e.Payoff1, Second: e.Payoff2}
	}
	return matrix.With(overrides), nil
}

// PopulationConfigFromConfig maps the population section onto systems.PopulationConfig.
func PopulationConfigFromConfig(cfg *config.Config) systems.PopulationConfig {
	return systems.PopulationConfig{
		Initial:           cfg.Derived.Initial,
		InitialFitness:    cfg.Population.InitialFitness,
		BreedingThreshold: cfg.Population.BreedingThreshold,
		FitnessCeiling:    cfg.Population.FitnessCeiling,
	}
}

// OptionsFromConfig maps the game section onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Exhaustion:       cfg.Game.Exhaustion,
		LimitedResources: cfg.Game.LimitedResources,
		Resources:        cfg.Game.Resources,
		PerfWindow:       cfg.Telemetry.LogEvery,
	}
}

// NewGameFromConfig builds the population, rules and game for one run.
func NewGameFromConfig(cfg *config.Config, rng *rand.Rand) (*Game, error) {
	matrix, err := PayoffMatrixFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("building payoff matrix: %w", err)
	}

	rules, err := systems.NewRules(matrix)
	if err != nil {
		return nil, fmt.Errorf("building rules: %w", err)
	}

	pop, err := systems.NewPopulation(PopulationConfigFromConfig(cfg), rng)
	if err != nil {
		return nil, fmt.Errorf("building population: %w", err)
	}

	return NewGame(pop, rules, OptionsFromConfig(cfg)), nil
}
