// Package main provides CMA-ES optimization for finding payoff and breeding
// parameters that settle the population at a target hawk share.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/hawkdove/config"
)

// evalRecord is one row of optimize_log.csv. Values are the clamped
// parameters actually simulated.
type evalRecord struct {
	Eval              int     `csv:"eval"`
	Fitness           float64 `csv:"fitness"`
	HawkShare         float64 `csv:"hawk_share"`
	Stability         float64 `csv:"stability"`
	V                 float64 `csv:"v"`
	C                 float64 `csv:"c"`
	BreedingThreshold float64 `csv:"breeding_threshold"`
}

// evalLog appends evalRecords, writing the header with the first one.
type evalLog struct {
	w       io.Writer
	started bool
}

func (l *evalLog) write(rec *evalRecord) error {
	rows := []*evalRecord{rec}
	if !l.started {
		l.started = true
		return gocsv.Marshal(rows, l.w)
	}
	return gocsv.MarshalWithoutHeaders(rows, l.w)
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	generations := flag.Int("generations", 300, "Generations per run")
	seeds := flag.Int("seeds", 5, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	target := flag.Float64("target", 0.5, "Target long-run hawk share")
	window := flag.Int("window", 50, "Trailing generations averaged into the hawk share")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *target < 0 || *target > 1 {
		log.Fatalf("--target must be within [0, 1], got %g", *target)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg.Run.MaxGenerations = *generations

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, evalSeeds, baseCfg, *target, *window)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // seeds already run in parallel
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	evals := &evalLog{w: logFile}

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	originalFunc := problem.Func
	problem.Func = func(x []float64) float64 {
		fitness := originalFunc(x)
		evalCount++

		clamped := params.Clamp(params.Denormalize(x))
		if fitness < bestFitness {
			bestFitness = fitness
			bestParams = clamped
		}

		share := evaluator.LastShare()
		stability := evaluator.LastQuality()
		if err := evals.write(&evalRecord{
			Eval:              evalCount,
			Fitness:           fitness,
			HawkShare:         share,
			Stability:         stability,
			V:                 clamped[0],
			C:                 clamped[1],
			BreedingThreshold: clamped[2],
		}); err != nil {
			log.Printf("failed to write eval log: %v", err)
		}

		elapsed := time.Since(startTime)
		avgPerEval := elapsed / time.Duration(evalCount)
		remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

		fmt.Printf("Eval %d/%d: share=%.3f stability=%.2f fitness=%.4f (best=%.4f) | elapsed: %s, ETA: %s\n",
			evalCount, *maxEvals, share, stability, fitness, bestFitness,
			formatDuration(elapsed), formatDuration(remaining))

		return fitness
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, generations per run: %d, target hawk share: %.3f\n",
		*seeds, *generations, *target)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best fitness: %.4f (hawk share %.3f)\n", bestFitness, evaluator.BestShare())

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s (%s): %.6f\n", spec.Name, spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	if err := params.ApplyToConfig(bestCfg, bestParams); err != nil {
		log.Fatalf("best parameters rejected: %v", err)
	}

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
