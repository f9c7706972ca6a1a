package game

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pthm-cable/hawkdove/components"
	"github.com/pthm-cable/hawkdove/systems"
)

// firstPick always draws index 0 of the available pool.
type firstPick struct{}

func (firstPick) Intn(int) int { return 0 }

// pickSequence returns the queued indices in order, then zeros.
type pickSequence struct {
	picks []int
	i     int
}

func (s *pickSequence) Intn(n int) int {
	if s.i >= len(s.picks) {
		return 0
	}
	v := s.picks[s.i] % n
	s.i++
	return v
}

// pairInOrder draws 1,2 then 3,4 from a fresh four-individual population.
// Draws swap the last available individual into the drawn slot.
func pairInOrder() *pickSequence {
	return &pickSequence{picks: []int{0, 1, 1, 0}}
}

func mustRules(t *testing.T, m *systems.PayoffMatrix) *systems.Rules {
	t.Helper()
	rules, err := systems.NewRules(m)
	if err != nil {
		t.Fatalf("NewRules failed: %v", err)
	}
	return rules
}

func scenarioMatrix(t *testing.T) *systems.PayoffMatrix {
	t.Helper()
	m, err := systems.DerivePayoffMatrix(components.StrategyHawk, components.StrategyDove,
		systems.PayoffConstants{V: 50, C: -10, B: 4})
	if err != nil {
		t.Fatalf("DerivePayoffMatrix failed: %v", err)
	}
	return m
}

func newPopulation(t *testing.T, src systems.Source, hawks, doves int, threshold float64) *systems.Population {
	t.Helper()
	cfg := systems.DefaultPopulationConfig()
	cfg.Initial = [components.NumStrategies]int{hawks, doves}
	cfg.BreedingThreshold = threshold
	pop, err := systems.NewPopulation(cfg, src)
	if err != nil {
		t.Fatalf("NewPopulation failed: %v", err)
	}
	return pop
}

func fitnessByID(pop *systems.Population) map[uint32]float64 {
	out := make(map[uint32]float64)
	for _, ind := range pop.Individuals() {
		out[ind.ID] = ind.Fitness
	}
	return out
}

func TestAdvanceScenarioTwoHawksTwoDoves(t *testing.T) {
	pop := newPopulation(t, pairInOrder(), 2, 2, 100)
	g := NewGame(pop, mustRules(t, scenarioMatrix(t)), Options{})

	if err := g.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	// Hawk#1 vs Hawk#2 -> (50, -100): #1 reaches 100, #2 dies at -50.
	// Dove#3 vs Dove#4 -> (40, -10): 90 and 40.
	// #1 is at the threshold, halves to 50 and breeds hawk #5 at 50.
	want := map[uint32]float64{1: 50, 3: 90, 4: 40, 5: 50}
	got := fitnessByID(pop)
	if len(got) != len(want) {
		t.Fatalf("expected %d individuals, got %v", len(want), got)
	}
	for id, w := range want {
		if got[id] != w {
			t.Errorf("individual %d: fitness %g, want %g", id, got[id], w)
		}
	}

	for _, ind := range pop.Individuals() {
		wantFights := 1
		if ind.ID == 5 {
			wantFights = 0
		}
		if ind.Fights != wantFights {
			t.Errorf("individual %d: %d fights, want %d", ind.ID, ind.Fights, wantFights)
		}
		if !ind.Available {
			t.Errorf("individual %d should be available after Advance", ind.ID)
		}
	}

	hist := pop.History()
	if len(hist) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(hist))
	}
	if hist[0].Counts != [components.NumStrategies]int{1, 2} {
		t.Errorf("snapshot counts %v, want [1 2]", hist[0].Counts)
	}

	stats := g.LastStats()
	if stats.Contests != 2 || stats.HawkDeaths != 1 || stats.HawkBirths != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.HawkCount != 2 || stats.DoveCount != 2 {
		t.Errorf("stats should count offspring: hawks=%d doves=%d", stats.HawkCount, stats.DoveCount)
	}
	if g.Generation() != 1 {
		t.Errorf("generation = %d, want 1", g.Generation())
	}

	finished := g.TakeFinished()
	if len(finished) != 1 {
		t.Fatalf("expected 1 completed lifetime, got %d", len(finished))
	}
	dead := finished[0]
	if dead.ID != 2 || dead.Contests != 1 || dead.TotalPayoff != -100 || dead.FinalFitness != -50 {
		t.Errorf("unexpected lifetime %+v", dead)
	}
	if len(g.TakeFinished()) != 0 {
		t.Error("TakeFinished should drain")
	}
	if s := g.Lifetimes().Get(1); s == nil || s.Children != 1 {
		t.Errorf("hawk #1 should have one child, got %+v", s)
	}
	if s := g.Lifetimes().Get(5); s == nil || s.ParentID != 1 || s.BornGeneration != 1 {
		t.Errorf("unexpected offspring lifetime %+v", s)
	}
}

func TestAdvanceScenarioWithoutBreeding(t *testing.T) {
	pop := newPopulation(t, pairInOrder(), 2, 2, 1000)
	g := NewGame(pop, mustRules(t, scenarioMatrix(t)), Options{})

	if err := g.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	want := map[uint32]float64{1: 100, 3: 90, 4: 40}
	got := fitnessByID(pop)
	if len(got) != len(want) {
		t.Fatalf("expected %d individuals, got %v", len(want), got)
	}
	for id, w := range want {
		if got[id] != w {
			t.Errorf("individual %d: fitness %g, want %g", id, got[id], w)
		}
	}
}

func TestAdvanceFightsAccounting(t *testing.T) {
	pop := newPopulation(t, rand.New(rand.NewSource(7)), 0, 5, 1000)
	g := NewGame(pop, mustRules(t, systems.ClassicPayoffMatrix()), Options{})

	if err := g.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	var fought, idle int
	for _, ind := range pop.Individuals() {
		switch ind.Fights {
		case 1:
			fought++
			if ind.Fitness != 53 {
				t.Errorf("fighter %d: fitness %g, want 53", ind.ID, ind.Fitness)
			}
		case 0:
			idle++
			if ind.Fitness != 50 {
				t.Errorf("idle %d: fitness %g, want 50", ind.ID, ind.Fitness)
			}
		default:
			t.Errorf("individual %d fought %d times in one generation", ind.ID, ind.Fights)
		}
	}
	if fought != 4 || idle != 1 {
		t.Errorf("fought=%d idle=%d, want 4 and 1", fought, idle)
	}
	if g.LastStats().Contests != 2 || g.LastStats().Idle != 1 {
		t.Errorf("unexpected stats %+v", g.LastStats())
	}

	if err := g.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	total := 0
	for _, ind := range pop.Individuals() {
		total += ind.Fights
	}
	if total != 8 {
		t.Errorf("total fights after 2 generations = %d, want 8", total)
	}
}

func TestAdvanceHistoryLength(t *testing.T) {
	pop := newPopulation(t, rand.New(rand.NewSource(3)), 10, 10, 100)
	g := NewGame(pop, mustRules(t, scenarioMatrix(t)), Options{})

	for i := 1; i <= 25; i++ {
		if err := g.Advance(); err != nil {
			t.Fatalf("Advance %d failed: %v", i, err)
		}
		if n := len(pop.History()); n != i {
			t.Fatalf("after %d advances history has %d snapshots", i, n)
		}
		for _, ind := range pop.Individuals() {
			if ind.Fitness < 0 {
				t.Fatalf("negative fitness %g survived generation %d", ind.Fitness, i)
			}
			if ind.Fitness > pop.FitnessCeiling() {
				t.Fatalf("fitness %g above ceiling in generation %d", ind.Fitness, i)
			}
		}
	}
}

func TestAdvanceEmptyPopulation(t *testing.T) {
	pop := newPopulation(t, firstPick{}, 0, 0, 100)
	g := NewGame(pop, mustRules(t, scenarioMatrix(t)), Options{})

	for i := 0; i < 3; i++ {
		if err := g.Advance(); err != nil {
			t.Fatalf("Advance failed: %v", err)
		}
	}

	hist := pop.History()
	if len(hist) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(hist))
	}
	for _, s := range hist {
		if !s.Extinct() || s.Proportions != [components.NumStrategies]float64{} {
			t.Errorf("expected zero snapshot, got %+v", s)
		}
	}
}

func TestAdvanceFailedLookupLeavesPopulationUntouched(t *testing.T) {
	pop := newPopulation(t, pairInOrder(), 2, 2, 100)
	g := NewGame(pop, mustRules(t, scenarioMatrix(t)), Options{})

	// The second pair (3, 4) has no matrix entry; the first pair is valid.
	odd := pop.Individuals()[3]
	odd.Strategy = components.Strategy(7)

	err := g.Advance()
	if !errors.Is(err, systems.ErrUnknownPair) {
		t.Fatalf("expected ErrUnknownPair, got %v", err)
	}
	if g.Generation() != 0 {
		t.Errorf("generation = %d after failure, want 0", g.Generation())
	}
	if len(pop.History()) != 0 {
		t.Error("failed generation should not record a snapshot")
	}
	for _, ind := range pop.Individuals() {
		if !ind.Available || ind.Fights != 0 || ind.Fitness != 50 {
			t.Errorf("individual %d changed by failed generation: %+v", ind.ID, *ind)
		}
	}

	odd.Strategy = components.StrategyDove
	for i := 1; i <= 3; i++ {
		if err := g.Advance(); err != nil {
			t.Fatalf("Advance %d failed: %v", i, err)
		}
		if g.Generation() != i || len(pop.History()) != i {
			t.Fatalf("after %d advances: generation=%d history=%d", i, g.Generation(), len(pop.History()))
		}
		if g.LastStats().Contests == 0 {
			t.Errorf("generation %d ran no contests", i)
		}
	}
}

func TestAdvanceExhaustionHitsIdle(t *testing.T) {
	pop := newPopulation(t, firstPick{}, 0, 3, 1000)
	g := NewGame(pop, mustRules(t, systems.ClassicPayoffMatrix()), Options{Exhaustion: 5})

	if err := g.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	want := map[uint32]float64{1: 53, 3: 53, 2: 45}
	got := fitnessByID(pop)
	for id, w := range want {
		if got[id] != w {
			t.Errorf("individual %d: fitness %g, want %g", id, got[id], w)
		}
	}
}

func TestAdvanceLimitedResources(t *testing.T) {
	pop := newPopulation(t, firstPick{}, 0, 4, 1000)
	g := NewGame(pop, mustRules(t, systems.ClassicPayoffMatrix()), Options{
		LimitedResources: true,
		Resources:        2,
	})

	if err := g.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	stats := g.LastStats()
	if stats.Contests != 1 {
		t.Errorf("expected 1 contest before the pool ran out, got %d", stats.Contests)
	}
	if stats.Idle != 2 {
		t.Errorf("expected 2 idle individuals, got %d", stats.Idle)
	}
}
