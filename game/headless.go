package game

import (
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/hawkdove/components"
	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/systems"
	"github.com/pthm-cable/hawkdove/telemetry"
)

// Stop reasons reported by Run.
const (
	StopMaxGenerations = "max_generations"
	StopExtinction     = "extinction"
)

// RunOptions controls a headless run.
type RunOptions struct {
	Seed     int64
	LogStats bool                     // log stats every cfg.Telemetry.LogEvery generations
	Output   *telemetry.OutputManager // nil disables CSV output
}

// RunResult summarizes a finished run.
type RunResult struct {
	Seed        int64
	Generations int
	StopReason  string
	Final       [components.NumStrategies]int
	History     []systems.Snapshot
	Bookmarks   []telemetry.Bookmark
}

// MeanHawkShare averages the hawk proportion over the last n snapshots,
// or over the whole history if it is shorter.
func (r *RunResult) MeanHawkShare(n int) float64 {
	if len(r.History) == 0 {
		return 0
	}
	if n <= 0 || n > len(r.History) {
		n = len(r.History)
	}
	var sum float64
	for _, s := range r.History[len(r.History)-n:] {
		sum += s.Proportions[components.StrategyHawk]
	}
	return sum / float64(n)
}

// Run advances a fresh game built from cfg until cfg.Run.MaxGenerations, or
// until either strategy dies out when cfg.Run.StopOnExtinction is set.
func Run(cfg *config.Config, opts RunOptions) (*RunResult, error) {
	g, err := NewGameFromConfig(cfg, rand.New(rand.NewSource(opts.Seed)))
	if err != nil {
		return nil, err
	}

	detector := telemetry.NewBookmarkDetector(cfg.Telemetry.ConvergenceWindow, cfg.Telemetry.ConvergenceTolerance)
	result := &RunResult{Seed: opts.Seed, StopReason: StopMaxGenerations}

	for g.Generation() < cfg.Run.MaxGenerations {
		if err := g.Advance(); err != nil {
			return nil, err
		}
		stats := g.LastStats()

		if err := opts.Output.WriteGeneration(stats); err != nil {
			slog.Warn("failed to write generation", "error", err)
		}
		if err := opts.Output.WriteLifetimes(g.TakeFinished()); err != nil {
			slog.Warn("failed to write lifetimes", "error", err)
		}

		for _, b := range detector.Check(stats) {
			result.Bookmarks = append(result.Bookmarks, b)
			if opts.LogStats {
				b.LogBookmark()
			}
			if err := opts.Output.WriteBookmark(b); err != nil {
				slog.Warn("failed to write bookmark", "error", err)
			}
		}

		if every := cfg.Telemetry.LogEvery; every > 0 && g.Generation()%every == 0 {
			perf := g.PerfStats()
			if opts.LogStats {
				stats.LogStats()
				slog.Info("perf", "gen", perf)
			}
			if err := opts.Output.WritePerf(perf, g.Generation()); err != nil {
				slog.Warn("failed to write perf", "error", err)
			}
		}

		if cfg.Run.StopOnExtinction && (stats.HawkCount == 0 || stats.DoveCount == 0) {
			result.StopReason = StopExtinction
			break
		}
	}

	result.Generations = g.Generation()
	result.Final = g.Population().Counts()
	result.History = g.Population().History()
	if opts.LogStats {
		g.Population().Describe()
	}

	if err := opts.Output.WriteHistory(result.History); err != nil {
		slog.Warn("failed to write history", "error", err)
	}
	return result, nil
}
