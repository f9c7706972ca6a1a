// Package systems implements the population bookkeeping and contest rules.
package systems

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/hawkdove/components"
)

// Default population parameters.
const (
	DefaultBreedingThreshold = 100.0
	DefaultFitnessCeiling    = 100.0
)

// Source is the random number source used for draws.
// *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// PopulationConfig enumerates everything needed to build a population.
type PopulationConfig struct {
	Initial           [components.NumStrategies]int // founders per strategy, indexed by Strategy
	InitialFitness    float64
	BreedingThreshold float64
	FitnessCeiling    float64
}

// DefaultPopulationConfig returns ten hawks and ten doves with default fitness.
func DefaultPopulationConfig() PopulationConfig {
	return PopulationConfig{
		Initial:           [components.NumStrategies]int{10, 10},
		InitialFitness:    components.DefaultFitness,
		BreedingThreshold: DefaultBreedingThreshold,
		FitnessCeiling:    DefaultFitnessCeiling,
	}
}

// Snapshot records the makeup of the population after one generation's cleanup.
type Snapshot struct {
	Counts      [components.NumStrategies]int
	Proportions [components.NumStrategies]float64
}

// Total returns the number of individuals in the snapshot.
func (s Snapshot) Total() int {
	var n int
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// Extinct reports whether no individual survived.
func (s Snapshot) Extinct() bool {
	return s.Total() == 0
}

// GenerationChange summarizes deaths and births during one cleanup.
type GenerationChange struct {
	Deaths [components.NumStrategies]int
	Births [components.NumStrategies]int

	Died []components.Individual // removed individuals as they were at death
	Born []Birth
}

// Birth records one offspring and its parent.
type Birth struct {
	ChildID  uint32
	ParentID uint32
	Strategy components.Strategy
	Fitness  float64
}

// Population owns the individuals of a run.
// Individuals live as ark entities; entities keeps them in insertion order.
type Population struct {
	world  *ecs.World
	mapper *ecs.Map1[components.Individual]
	filter *ecs.Filter1[components.Individual]

	entities []ecs.Entity
	rng      Source
	nextID   uint32

	// Draw pools, rebuilt by Clean. Order inside a pool is not stable.
	available []ecs.Entity
	drawn     []ecs.Entity

	breedingThreshold float64
	fitnessCeiling    float64

	history []Snapshot
}

// NewPopulation creates the founders described by cfg.
// Founders are ordered by strategy: all hawks first, then doves.
func NewPopulation(cfg PopulationConfig, rng Source) (*Population, error) {
	for i, n := range cfg.Initial {
		if n < 0 {
			return nil, fmt.Errorf("population: negative initial count %d for %s", n, components.Strategy(i))
		}
	}
	if cfg.FitnessCeiling <= 0 {
		return nil, fmt.Errorf("population: fitness ceiling must be positive, got %g", cfg.FitnessCeiling)
	}
	if rng == nil {
		return nil, fmt.Errorf("population: nil random source")
	}

	world := ecs.NewWorld()
	p := &Population{
		world:             world,
		mapper:            ecs.NewMap1[components.Individual](world),
		filter:            ecs.NewFilter1[components.Individual](world),
		rng:               rng,
		breedingThreshold: cfg.BreedingThreshold,
		fitnessCeiling:    cfg.FitnessCeiling,
	}

	for i, n := range cfg.Initial {
		for j := 0; j < n; j++ {
			p.spawn(components.Strategy(i), cfg.InitialFitness)
		}
	}
	return p, nil
}

// spawn appends a new available individual.
func (p *Population) spawn(strategy components.Strategy, fitness float64) ecs.Entity {
	p.nextID++
	ind := components.NewIndividual(p.nextID, strategy, fitness)
	e := p.mapper.NewEntity(&ind)
	p.entities = append(p.entities, e)
	p.available = append(p.available, e)
	return e
}

// Size returns the current number of individuals.
func (p *Population) Size() int {
	return len(p.entities)
}

// Individuals returns the individuals in population order.
// The pointers are invalidated by the next Clean or Breed.
func (p *Population) Individuals() []*components.Individual {
	out := make([]*components.Individual, len(p.entities))
	for i, e := range p.entities {
		out[i] = p.mapper.Get(e)
	}
	return out
}

// BreedingThreshold returns the fitness level at which individuals breed.
func (p *Population) BreedingThreshold() float64 {
	return p.breedingThreshold
}

// FitnessCeiling returns the upper fitness clamp applied before breeding.
func (p *Population) FitnessCeiling() float64 {
	return p.fitnessCeiling
}

// RandomIndividual draws a uniformly random available individual and marks it
// unavailable. ok is false once every individual has been drawn.
func (p *Population) RandomIndividual() (*components.Individual, bool) {
	return p.RandomIndividualWith(true)
}

// RandomIndividualWith draws among individuals whose availability equals
// available. The chosen individual is marked unavailable.
func (p *Population) RandomIndividualWith(available bool) (*components.Individual, bool) {
	if !available {
		if len(p.drawn) == 0 {
			return nil, false
		}
		return p.mapper.Get(p.drawn[p.rng.Intn(len(p.drawn))]), true
	}

	n := len(p.available)
	if n == 0 {
		return nil, false
	}
	i := p.rng.Intn(n)
	e := p.available[i]
	p.available[i] = p.available[n-1]
	p.available = p.available[:n-1]
	p.drawn = append(p.drawn, e)

	chosen := p.mapper.Get(e)
	chosen.Available = false
	return chosen, true
}

// TakeAvailable marks every individual not yet drawn as unavailable and
// returns them.
func (p *Population) TakeAvailable() []*components.Individual {
	out := make([]*components.Individual, len(p.available))
	for i, e := range p.available {
		ind := p.mapper.Get(e)
		ind.Available = false
		out[i] = ind
	}
	p.drawn = append(p.drawn, p.available...)
	p.available = p.available[:0]
	return out
}

// ResetAvailability makes every individual available again.
func (p *Population) ResetAvailability() {
	for _, e := range p.entities {
		p.mapper.Get(e).Available = true
	}
	p.available = append(p.available[:0], p.entities...)
	p.drawn = p.drawn[:0]
}

// Clean removes individuals with negative fitness, makes the survivors
// available again, records a history snapshot and breeds.
func (p *Population) Clean() GenerationChange {
	var change GenerationChange

	survivors := p.entities[:0]
	var dead []ecs.Entity
	for _, e := range p.entities {
		ind := p.mapper.Get(e)
		if ind.Fitness < 0 {
			change.Deaths[ind.Strategy]++
			change.Died = append(change.Died, *ind)
			dead = append(dead, e)
			continue
		}
		survivors = append(survivors, e)
	}
	p.entities = survivors

	// Structural changes only after the scan
	for _, e := range dead {
		p.world.RemoveEntity(e)
	}
	p.ResetAvailability()

	p.history = append(p.history, p.snapshot())

	change.Births, change.Born = p.breed()
	return change
}

// snapshot computes counts and proportions of the current individuals.
func (p *Population) snapshot() Snapshot {
	var s Snapshot
	s.Counts = p.Counts()

	total := s.Total()
	denom := float64(total)
	if denom < 1 {
		denom = 1
	}
	for i, c := range s.Counts {
		s.Proportions[i] = float64(c) / denom
	}
	return s
}

// Counts returns the current number of individuals per strategy.
func (p *Population) Counts() [components.NumStrategies]int {
	var counts [components.NumStrategies]int
	query := p.filter.Query()
	for query.Next() {
		ind := query.Get()
		if int(ind.Strategy) < components.NumStrategies {
			counts[ind.Strategy]++
		}
	}
	return counts
}

// Proportions returns the current share of each strategy.
// All proportions are zero when the population is extinct.
func (p *Population) Proportions() [components.NumStrategies]float64 {
	return p.snapshot().Proportions
}

// Count returns the current number of individuals with the given strategy.
func (p *Population) Count(s components.Strategy) int {
	return p.Counts()[s]
}

// FitnessValues returns the fitness of every individual with strategy s.
func (p *Population) FitnessValues(s components.Strategy) []float64 {
	var values []float64
	query := p.filter.Query()
	for query.Next() {
		ind := query.Get()
		if ind.Strategy == s {
			values = append(values, ind.Fitness)
		}
	}
	return values
}

// History returns the per-generation snapshots recorded by Clean.
func (p *Population) History() []Snapshot {
	out := make([]Snapshot, len(p.history))
	copy(out, p.history)
	return out
}

// Latest returns the most recent snapshot, if any.
func (p *Population) Latest() (Snapshot, bool) {
	if len(p.history) == 0 {
		return Snapshot{}, false
	}
	return p.history[len(p.history)-1], true
}

// Describe logs the current counts and percentages.
func (p *Population) Describe() {
	counts := p.Counts()
	props := p.Proportions()
	slog.Info("population",
		"hawks", counts[components.StrategyHawk],
		"doves", counts[components.StrategyDove],
		"hawk_pct", props[components.StrategyHawk]*100,
		"dove_pct", props[components.StrategyDove]*100,
	)
}
