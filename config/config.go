// Package config provides configuration loading for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/hawkdove/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Population PopulationConfig `yaml:"population"`
	Payoff     PayoffConfig     `yaml:"payoff"`
	Game       GameConfig       `yaml:"game"`
	Run        RunConfig        `yaml:"run"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PopulationConfig holds founder counts and the fitness economy.
type PopulationConfig struct {
	Hawks             int     `yaml:"hawks"`
	Doves             int     `yaml:"doves"`
	InitialFitness    float64 `yaml:"initial_fitness"`
	BreedingThreshold float64 `yaml:"breeding_threshold"` // breed at or above this fitness
	FitnessCeiling    float64 `yaml:"fitness_ceiling"`    // fitness is clamped here before breeding
}

// Payoff presets.
const (
	PresetDerived = "derived" // matrix computed from V, C and B
	PresetClassic = "classic" // fixed table (-2,-2) (10,0) (0,10) (3,3)
)

// PayoffConfig holds the payoff matrix constants.
type PayoffConfig struct {
	Preset   string  `yaml:"preset"`
	HawkName string  `yaml:"hawk_name"`
	DoveName string  `yaml:"dove_name"`
	V        float64 `yaml:"v"` // value of resource
	C        float64 `yaml:"c"` // cost of injury (negative)
	B        float64 `yaml:"b"` // asymmetric bonus

	// Entries overrides derived values for individual pairs.
	Entries []PayoffEntry `yaml:"entries,omitempty"`
}

// PayoffEntry is an explicit (first, second) -> (payoff1, payoff2) override.
type PayoffEntry struct {
	First   string  `yaml:"first"`
	Second  string  `yaml:"second"`
	Payoff1 float64 `yaml:"payoff1"`
	Payoff2 float64 `yaml:"payoff2"`
}

// GameConfig holds per-generation contest parameters.
type GameConfig struct {
	Exhaustion       float64 `yaml:"exhaustion"`        // fitness lost by individuals left idle
	LimitedResources bool    `yaml:"limited_resources"` // stop contests once the pool runs out
	Resources        float64 `yaml:"resources"`         // resource pool per generation
}

// RunConfig holds the external loop settings.
type RunConfig struct {
	MaxGenerations   int  `yaml:"max_generations"`
	StopOnExtinction bool `yaml:"stop_on_extinction"`
}

// TelemetryConfig holds stats logging parameters.
type TelemetryConfig struct {
	LogEvery             int     `yaml:"log_every"`             // generations between stats logs (0 = never)
	ConvergenceTolerance float64 `yaml:"convergence_tolerance"` // max drift of the hawk share
	ConvergenceWindow    int     `yaml:"convergence_window"`    // generations the share must stay inside the band
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Initial [components.NumStrategies]int // founders indexed by strategy
	Entries []ResolvedEntry               // Payoff.Entries with parsed strategies
}

// ResolvedEntry is a payoff override with its strategies resolved.
type ResolvedEntry struct {
	First, Second    components.Strategy
	Payoff1, Payoff2 float64
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates the config and recomputes derived values.
// Call it after modifying a loaded config in place.
func (c *Config) Finalize() error {
	if err := c.validate(); err != nil {
		return err
	}
	return c.computeDerived()
}

func (c *Config) validate() error {
	p := c.Population
	if p.Hawks < 0 || p.Doves < 0 {
		return fmt.Errorf("%w: founder counts must not be negative (hawks=%d, doves=%d)", ErrInvalid, p.Hawks, p.Doves)
	}
	if p.FitnessCeiling <= 0 {
		return fmt.Errorf("%w: fitness_ceiling must be positive, got %g", ErrInvalid, p.FitnessCeiling)
	}
	if p.BreedingThreshold <= 0 {
		return fmt.Errorf("%w: breeding_threshold must be positive, got %g", ErrInvalid, p.BreedingThreshold)
	}
	switch c.Payoff.Preset {
	case "", PresetDerived, PresetClassic:
	default:
		return fmt.Errorf("%w: unknown payoff preset %q", ErrInvalid, c.Payoff.Preset)
	}
	if c.Payoff.B == -1 {
		return fmt.Errorf("%w: payoff.b must not be -1", ErrInvalid)
	}
	if c.Run.MaxGenerations < 0 {
		return fmt.Errorf("%w: max_generations must not be negative", ErrInvalid)
	}
	if c.Telemetry.LogEvery < 0 {
		return fmt.Errorf("%w: log_every must not be negative", ErrInvalid)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	c.Derived.Initial = [components.NumStrategies]int{}
	c.Derived.Initial[components.StrategyHawk] = c.Population.Hawks
	c.Derived.Initial[components.StrategyDove] = c.Population.Doves

	c.Derived.Entries = make([]ResolvedEntry, 0, len(c.Payoff.Entries))
	for _, e := range c.Payoff.Entries {
		first, err := c.strategyByName(e.First)
		if err != nil {
			return fmt.Errorf("%w: payoff entry: %v", ErrInvalid, err)
		}
		second, err := c.strategyByName(e.Second)
		if err != nil {
			return fmt.Errorf("%w: payoff entry: %v", ErrInvalid, err)
		}
		c.Derived.Entries = append(c.Derived.Entries, ResolvedEntry{
			First:   first,
			Second:  second,
			Payoff1: e.Payoff1,
			Payoff2: e.Payoff2,
		})
	}
	return nil
}

// strategyByName accepts the configured display names as well as the
// canonical strategy names.
func (c *Config) strategyByName(name string) (components.Strategy, error) {
	switch name {
	case c.Payoff.HawkName:
		return components.StrategyHawk, nil
	case c.Payoff.DoveName:
		return components.StrategyDove, nil
	}
	return components.ParseStrategy(name)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
