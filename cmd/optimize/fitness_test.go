package main

import (
	"testing"

	"github.com/pthm-cable/hawkdove/components"
	"github.com/pthm-cable/hawkdove/config"
	"github.com/pthm-cable/hawkdove/game"
	"github.com/pthm-cable/hawkdove/systems"
)

func testEvaluator(t *testing.T, target float64) *FitnessEvaluator {
	t.Helper()
	cfg := config.Default()
	cfg.Run.MaxGenerations = 20
	if err := cfg.Finalize(); err != nil {
		t.Fatal(err)
	}
	return NewFitnessEvaluator(NewParamVector(), []int64{1, 2}, cfg, target, 10)
}

func TestEvaluateWithinBounds(t *testing.T) {
	fe := testEvaluator(t, 0.5)
	pv := NewParamVector()

	fitness := fe.Evaluate(pv.DefaultVector())
	if fitness < 0 || fitness > 2 {
		t.Fatalf("fitness %g outside [0, 2]", fitness)
	}
	share := fe.LastShare()
	if share < 0 || share > 1 {
		t.Errorf("share %g outside [0, 1]", share)
	}
	if fe.BestShare() != share {
		t.Errorf("best share %g, want %g after a single evaluation", fe.BestShare(), share)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	pv := NewParamVector()
	a := testEvaluator(t, 0.3).Evaluate(pv.DefaultVector())
	b := testEvaluator(t, 0.3).Evaluate(pv.DefaultVector())
	if a != b {
		t.Errorf("same seeds gave different fitness: %g vs %g", a, b)
	}
}

func TestEvaluateLeavesBaseConfig(t *testing.T) {
	fe := testEvaluator(t, 0.5)
	before := *fe.baseConfig

	fe.Evaluate([]float64{20, -40, 180})
	if fe.baseConfig.Payoff.V != before.Payoff.V || fe.baseConfig.Payoff.C != before.Payoff.C ||
		fe.baseConfig.Population != before.Population {
		t.Error("Evaluate modified the base config")
	}
	if !fe.baseConfig.Run.StopOnExtinction {
		t.Error("Evaluate changed the base stop policy")
	}
}

func TestComputeFitness(t *testing.T) {
	fe := &FitnessEvaluator{target: 0.25}

	if got := fe.computeFitness(0.25, 1); got != 0 {
		t.Errorf("perfect run fitness = %g, want 0", got)
	}
	if got := fe.computeFitness(0.75, 1); got != 0.5 {
		t.Errorf("fitness = %g, want 0.5", got)
	}
	if got := fe.computeFitness(0.25, 0); got != stabilityWeight {
		t.Errorf("unstable fitness = %g, want %g", got, stabilityWeight)
	}
}

func snapshots(shares ...float64) []systems.Snapshot {
	out := make([]systems.Snapshot, len(shares))
	for i, s := range shares {
		out[i] = systems.Snapshot{
			Counts:      [components.NumStrategies]int{1, 1},
			Proportions: [components.NumStrategies]float64{s, 1 - s},
		}
	}
	return out
}

func TestComputeStability(t *testing.T) {
	fe := &FitnessEvaluator{window: 4}

	flat := &game.RunResult{History: snapshots(0.9, 0.1, 0.5, 0.5, 0.5, 0.5)}
	if got := fe.computeStability(flat); got != 1 {
		t.Errorf("flat window stability = %g, want 1", got)
	}

	swing := &game.RunResult{History: snapshots(0, 1, 0, 1)}
	if got := fe.computeStability(swing); got != 0 {
		t.Errorf("swinging stability = %g, want 0", got)
	}

	collapsed := &game.RunResult{History: []systems.Snapshot{{}}}
	if got := fe.computeStability(collapsed); got != 0 {
		t.Errorf("collapsed stability = %g, want 0", got)
	}
}
