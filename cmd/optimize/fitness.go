package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/hawkdove/components"
	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/game"
)

// invalidFitness is returned for parameter sets the simulation rejects.
// Any valid fitness lies in [0, 2].
const invalidFitness = 10.0

// Weight of the share instability term relative to the distance term.
const stabilityWeight = 0.25

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	seeds      []int64
	baseConfig *config.Config
	target     float64 // desired long-run hawk share
	window     int     // trailing generations averaged into the share

	mu          sync.Mutex
	bestFitness float64
	bestShare   float64
	lastShare   float64 // share from most recent Evaluate call
	lastQuality float64 // stability from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, seeds []int64, baseCfg *config.Config, target float64, window int) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		seeds:       seeds,
		baseConfig:  baseCfg,
		target:      target,
		window:      window,
		bestFitness: math.Inf(1),
	}
}

// LastShare returns the mean hawk share from the most recent evaluation.
func (fe *FitnessEvaluator) LastShare() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastShare
}

// LastQuality returns the stability score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// BestShare returns the hawk share of the best evaluation so far.
func (fe *FitnessEvaluator) BestShare() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestShare
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	share     float64
	stability float64
	err       error
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the distance between the long-run hawk share and the target,
// plus a penalty for a share that keeps drifting.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		slog.Warn("rejected parameters", "x", x, "error", err)
		return invalidFitness
	}

	// Each seed owns its own game and rng, so seeds run in parallel.
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			res, err := game.Run(cfg, game.RunOptions{Seed: s})
			if err != nil {
				results[idx] = seedResult{err: err}
				return
			}
			results[idx] = seedResult{
				share:     res.MeanHawkShare(fe.window),
				stability: fe.computeStability(res),
			}
		}(i, seed)
	}
	wg.Wait()

	var totalShare, totalStability float64
	for _, r := range results {
		if r.err != nil {
			slog.Warn("simulation failed", "error", r.err)
			return invalidFitness
		}
		totalShare += r.share
		totalStability += r.stability
	}

	n := float64(len(fe.seeds))
	share := totalShare / n
	stability := totalStability / n
	fitness := fe.computeFitness(share, stability)

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestShare = share
	}
	fe.lastShare = share
	fe.lastQuality = stability
	fe.mu.Unlock()

	return fitness
}

// copyConfig creates a deep copy of the base config with early stopping off,
// so every run fills the averaging window.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Payoff.Entries = append([]config.PayoffEntry(nil), fe.baseConfig.Payoff.Entries...)
	cfg.Derived.Entries = nil
	cfg.Run.StopOnExtinction = false
	cfg.Telemetry.LogEvery = 0
	return &cfg
}

// computeFitness combines the target distance with the instability penalty.
func (fe *FitnessEvaluator) computeFitness(share, stability float64) float64 {
	return math.Abs(share-fe.target) + stabilityWeight*(1-stability)
}

// computeStability scores the hawk share over the trailing window in [0, 1].
// A flat share scores 1; a collapsed population scores 0.
func (fe *FitnessEvaluator) computeStability(res *game.RunResult) float64 {
	hist := res.History
	if len(hist) == 0 || hist[len(hist)-1].Extinct() {
		return 0
	}
	n := fe.window
	if n <= 0 || n > len(hist) {
		n = len(hist)
	}
	shares := make([]float64, 0, n)
	for _, s := range hist[len(hist)-n:] {
		shares = append(shares, s.Proportions[components.StrategyHawk])
	}
	if len(shares) < 2 {
		return 1
	}
	_, variance := stat.PopMeanVariance(shares, nil)
	std := math.Sqrt(variance)
	// std of a share is at most 0.5
	return clamp01(1 - 2*std)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
