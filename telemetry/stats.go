package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// GenerationStats holds aggregated statistics for one generation.
type GenerationStats struct {
	Generation int `csv:"generation"`

	// Population counts after breeding
	HawkCount int     `csv:"hawks"`
	DoveCount int     `csv:"doves"`
	HawkShare float64 `csv:"hawk_share"`
	DoveShare float64 `csv:"dove_share"`

	// Events during the generation
	Contests   int `csv:"contests"`
	Idle       int `csv:"idle"`
	HawkBirths int `csv:"hawk_births"`
	DoveBirths int `csv:"dove_births"`
	HawkDeaths int `csv:"hawk_deaths"`
	DoveDeaths int `csv:"dove_deaths"`

	// Fitness distribution (sampled at generation end)
	HawkFitnessMean float64 `csv:"hawk_fitness_mean"`
	HawkFitnessStd  float64 `csv:"hawk_fitness_std"`
	HawkFitnessP50  float64 `csv:"hawk_fitness_p50"`
	DoveFitnessMean float64 `csv:"dove_fitness_mean"`
	DoveFitnessStd  float64 `csv:"dove_fitness_std"`
	DoveFitnessP50  float64 `csv:"dove_fitness_p50"`
}

// FitnessSummary is the mean, population standard deviation and median of a
// set of fitness values.
type FitnessSummary struct {
	Mean, Std, P50 float64
}

// ComputeFitnessStats summarizes fitness values. Returns zeros for no values.
func ComputeFitnessStats(values []float64) FitnessSummary {
	if len(values) == 0 {
		return FitnessSummary{}
	}

	mean, variance := stat.PopMeanVariance(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return FitnessSummary{
		Mean: mean,
		Std:  math.Sqrt(variance),
		P50:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("hawks", s.HawkCount),
		slog.Int("doves", s.DoveCount),
		slog.Float64("hawk_share", s.HawkShare),
		slog.Float64("dove_share", s.DoveShare),
		slog.Int("contests", s.Contests),
		slog.Int("idle", s.Idle),
		slog.Int("hawk_births", s.HawkBirths),
		slog.Int("dove_births", s.DoveBirths),
		slog.Int("hawk_deaths", s.HawkDeaths),
		slog.Int("dove_deaths", s.DoveDeaths),
		slog.Float64("hawk_fitness_mean", s.HawkFitnessMean),
		slog.Float64("hawk_fitness_std", s.HawkFitnessStd),
		slog.Float64("dove_fitness_mean", s.DoveFitnessMean),
		slog.Float64("dove_fitness_std", s.DoveFitnessStd),
	)
}

// LogStats logs the generation stats using slog.
func (s GenerationStats) LogStats() {
	slog.Info("stats", "gen", s)
}
