// Package telemetry provides per-generation statistics, bookmarks and CSV output.
package telemetry

import "github.com/pthm-cable/hawkdove/components"

// Collector accumulates events within one generation and produces GenerationStats.
type Collector struct {
	contests int
	idle     int
	births   [components.NumStrategies]int
	deaths   [components.NumStrategies]int
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordContest records one pairwise contest.
func (c *Collector) RecordContest() {
	c.contests++
}

// RecordIdle records an individual that sat out the contest phase.
func (c *Collector) RecordIdle() {
	c.idle++
}

// RecordBirths adds per-strategy birth counts.
func (c *Collector) RecordBirths(births [components.NumStrategies]int) {
	for i, n := range births {
		c.births[i] += n
	}
}

// RecordDeaths adds per-strategy death counts.
func (c *Collector) RecordDeaths(deaths [components.NumStrategies]int) {
	for i, n := range deaths {
		c.deaths[i] += n
	}
}

// Flush produces GenerationStats and resets counters for the next generation.
// The caller provides current counts and the fitness values per strategy.
func (c *Collector) Flush(
	generation int,
	counts [components.NumStrategies]int,
	hawkFitness, doveFitness []float64,
) GenerationStats {
	h, d := components.StrategyHawk, components.StrategyDove

	total := counts[h] + counts[d]
	denom := float64(total)
	if denom < 1 {
		denom = 1
	}

	hawk := ComputeFitnessStats(hawkFitness)
	dove := ComputeFitnessStats(doveFitness)

	stats := GenerationStats{
		Generation: generation,

		HawkCount: counts[h],
		DoveCount: counts[d],
		HawkShare: float64(counts[h]) / denom,
		DoveShare: float64(counts[d]) / denom,

		Contests:   c.contests,
		Idle:       c.idle,
		HawkBirths: c.births[h],
		DoveBirths: c.births[d],
		HawkDeaths: c.deaths[h],
		DoveDeaths: c.deaths[d],

		HawkFitnessMean: hawk.Mean,
		HawkFitnessStd:  hawk.Std,
		HawkFitnessP50:  hawk.P50,
		DoveFitnessMean: dove.Mean,
		DoveFitnessStd:  dove.Std,
		DoveFitnessP50:  dove.P50,
	}

	*c = Collector{}
	return stats
}
