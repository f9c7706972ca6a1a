package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/hawkdove/components"
	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/game"
	"github.com/pthm-cable/hawkdove/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxGenerations := flag.Int("max-generations", -1, "Stop after N generations (-1 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *maxGenerations >= 0 {
		cfg.Run.MaxGenerations = *maxGenerations
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"hawks", cfg.Population.Hawks,
		"doves", cfg.Population.Doves,
		"max_generations", cfg.Run.MaxGenerations,
	)

	start := time.Now()
	res, err := game.Run(cfg, game.RunOptions{
		Seed:     rngSeed,
		LogStats: *logStats,
		Output:   output,
	})
	if closeErr := output.Close(); closeErr != nil {
		slog.Warn("failed to close output", "error", closeErr)
	}
	if err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}

	slog.Info("simulation complete",
		"generations", res.Generations,
		"stop_reason", res.StopReason,
		"hawks", res.Final[components.StrategyHawk],
		"doves", res.Final[components.StrategyDove],
		"mean_hawk_share", res.MeanHawkShare(cfg.Telemetry.ConvergenceWindow),
		"bookmarks", len(res.Bookmarks),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	if *outputDir != "" {
		slog.Info("output written", "dir", output.Dir())
	}
}
