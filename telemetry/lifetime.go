package telemetry

import "github.com/pthm-cable/hawkdove/components"

// LifetimeStats tracks per-individual statistics over its lifetime.
// Rows of lifetimes.csv.
type LifetimeStats struct {
	ID             uint32  `csv:"id"`
	Strategy       string  `csv:"strategy"`
	ParentID       uint32  `csv:"parent_id"` // 0 for founders
	BornGeneration int     `csv:"born"`
	DiedGeneration int     `csv:"died"`
	Contests       int     `csv:"contests"`
	IdleCount      int     `csv:"idle"`
	Children       int     `csv:"children"`
	TotalPayoff    float64 `csv:"total_payoff"`
	PeakFitness    float64 `csv:"peak_fitness"`
	FinalFitness   float64 `csv:"final_fitness"`
}

// Age returns the number of generations lived.
func (s *LifetimeStats) Age() int {
	return s.DiedGeneration - s.BornGeneration
}

// LifetimeTracker manages per-individual lifetime statistics.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register starts tracking an individual.
func (lt *LifetimeTracker) Register(id uint32, strategy components.Strategy, generation int, fitness float64) {
	lt.stats[id] = &LifetimeStats{
		ID:             id,
		Strategy:       strategy.String(),
		BornGeneration: generation,
		PeakFitness:    fitness,
		FinalFitness:   fitness,
	}
}

// Get returns the lifetime stats for an individual, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Count returns the number of tracked individuals.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// Apply folds an event into the tracked stats. A death event stops tracking
// the individual and returns its completed stats; other events return nil.
func (lt *LifetimeTracker) Apply(ev Event) *LifetimeStats {
	if ev.Type == EventBirth {
		lt.Register(ev.IndividualID, ev.Strategy, ev.Generation, ev.Fitness)
		lt.stats[ev.IndividualID].ParentID = ev.TargetID
		if parent := lt.stats[ev.TargetID]; parent != nil {
			parent.Children++
		}
		return nil
	}

	s := lt.stats[ev.IndividualID]
	if s == nil {
		return nil
	}
	s.FinalFitness = ev.Fitness
	if ev.Fitness > s.PeakFitness {
		s.PeakFitness = ev.Fitness
	}

	switch ev.Type {
	case EventContest:
		s.Contests++
		s.TotalPayoff += ev.Amount
	case EventIdle:
		s.IdleCount++
	case EventDeath:
		s.DiedGeneration = ev.Generation
		delete(lt.stats, ev.IndividualID)
		return s
	}
	return nil
}
