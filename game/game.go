// Package game drives the generation loop of the Hawk-Dove simulation.
package game

import (
	"fmt"

	"github.com/pthm-cable/hawkdove/components"
	"github.com/pthm-cable/hawkdove/systems"
	"github.com/pthm-cable/hawkdove/telemetry"
)

// Options holds per-generation contest parameters.
type Options struct {
	// Exhaustion is subtracted from every individual that sat out the
	// contest phase.
	Exhaustion float64

	// LimitedResources caps contests per generation: each contest spends the
	// first individual's payoff from a pool of Resources, and contests stop
	// once the pool is negative.
	LimitedResources bool
	Resources        float64

	// PerfWindow is the number of generations averaged by PerfStats.
	PerfWindow int
}

// Game holds the state of one simulation run.
type Game struct {
	population *systems.Population
	rules      *systems.Rules
	opts       Options

	generation int

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	lastStats telemetry.GenerationStats

	lifetimes *telemetry.LifetimeTracker
	finished  []telemetry.LifetimeStats // completed lifetimes not yet taken
}

// NewGame creates a game over an existing population and rule set.
func NewGame(population *systems.Population, rules *systems.Rules, opts Options) *Game {
	g := &Game{
		population: population,
		rules:      rules,
		opts:       opts,
		collector:  telemetry.NewCollector(),
		perf:       telemetry.NewPerfCollector(opts.PerfWindow),
		lifetimes:  telemetry.NewLifetimeTracker(),
	}
	for _, ind := range population.Individuals() {
		g.lifetimes.Register(ind.ID, ind.Strategy, 0, ind.Fitness)
	}
	return g
}

// record feeds an event to the lifetime tracker.
func (g *Game) record(ev telemetry.Event) {
	if done := g.lifetimes.Apply(ev); done != nil {
		g.finished = append(g.finished, *done)
	}
}

// contest is one drawn pair with its looked-up payoffs.
type contest struct {
	a, b             *components.Individual
	payoffA, payoffB float64
}

// Advance runs one full generation: pairwise contests until fewer than two
// individuals remain available, exhaustion of idle individuals, then cleanup
// and breeding. A payoff lookup failure aborts the generation and is returned;
// the population is left as it was before the call.
func (g *Game) Advance() error {
	g.perf.StartGeneration()

	g.perf.StartPhase(telemetry.PhaseContests)
	contests, idle, err := g.drawContests()
	if err != nil {
		g.population.ResetAvailability()
		g.perf.EndGeneration()
		return fmt.Errorf("generation %d: %w", g.generation+1, err)
	}

	g.generation++
	for _, c := range contests {
		c.a.Fitness += c.payoffA
		c.b.Fitness += c.payoffB
		c.a.Fights++
		c.b.Fights++
		g.collector.RecordContest()
		g.record(telemetry.NewContestEvent(g.generation, c.a, c.b.ID, c.payoffA))
		g.record(telemetry.NewContestEvent(g.generation, c.b, c.a.ID, c.payoffB))
	}

	g.perf.StartPhase(telemetry.PhaseExhaustion)
	for _, ind := range idle {
		ind.Fitness -= g.opts.Exhaustion
		g.collector.RecordIdle()
		g.record(telemetry.NewIdleEvent(g.generation, ind, g.opts.Exhaustion))
	}

	g.perf.StartPhase(telemetry.PhaseCleanup)
	change := g.population.Clean()
	g.collector.RecordDeaths(change.Deaths)
	g.collector.RecordBirths(change.Births)
	for _, ind := range change.Died {
		g.record(telemetry.NewDeathEvent(g.generation, ind))
	}
	for _, b := range change.Born {
		g.record(telemetry.NewBirthEvent(g.generation, b.ChildID, b.ParentID, b.Strategy, b.Fitness))
	}

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.lastStats = g.collector.Flush(
		g.generation,
		g.population.Counts(),
		g.population.FitnessValues(components.StrategyHawk),
		g.population.FitnessValues(components.StrategyDove),
	)

	g.perf.EndGeneration()
	return nil
}

// drawContests pairs available individuals until a draw fails or the resource
// pool runs out, looking up every payoff before any is applied. Returns the
// pairs and the individuals that did not fight.
func (g *Game) drawContests() ([]contest, []*components.Individual, error) {
	var contests []contest
	var idle []*components.Individual
	resources := g.opts.Resources

	for !g.opts.LimitedResources || resources >= 0 {
		a, ok := g.population.RandomIndividual()
		if !ok {
			break
		}
		b, ok := g.population.RandomIndividual()
		if !ok {
			idle = append(idle, a)
			break
		}

		payoffA, payoffB, err := g.rules.Payoff(a, b)
		if err != nil {
			return nil, nil, err
		}
		contests = append(contests, contest{a: a, b: b, payoffA: payoffA, payoffB: payoffB})

		if g.opts.LimitedResources {
			resources -= payoffA
		}
	}

	// Anyone still available never got drawn
	idle = append(idle, g.population.TakeAvailable()...)
	return contests, idle, nil
}

// Generation returns the number of generations advanced so far.
func (g *Game) Generation() int {
	return g.generation
}

// Population returns the population driven by the game.
func (g *Game) Population() *systems.Population {
	return g.population
}

// LastStats returns the statistics of the most recent generation.
func (g *Game) LastStats() telemetry.GenerationStats {
	return g.lastStats
}

// Lifetimes returns the tracker holding stats of living individuals.
func (g *Game) Lifetimes() *telemetry.LifetimeTracker {
	return g.lifetimes
}

// TakeFinished returns the lifetimes completed since the last call.
func (g *Game) TakeFinished() []telemetry.LifetimeStats {
	done := g.finished
	g.finished = nil
	return done
}

// PerfStats returns generation timing averaged over the perf window.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perf.Stats()
}
