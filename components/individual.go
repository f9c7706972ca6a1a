// Package components defines the ECS components for the simulation.
package components

import "fmt"

// DefaultFitness is the fitness a founder starts with when none is configured.
const DefaultFitness = 50.0

// Individual is one organism taking part in the contests.
// Strategy never changes after creation; Fights only increases.
type Individual struct {
	ID        uint32
	Strategy  Strategy
	Fitness   float64
	Fights    int
	Available bool // false once drawn into a contest this generation
}

// NewIndividual returns an available individual with zero fights.
func NewIndividual(id uint32, strategy Strategy, fitness float64) Individual {
	return Individual{
		ID:        id,
		Strategy:  strategy,
		Fitness:   fitness,
		Available: true,
	}
}

// String returns a tab separated summary: strategy, fitness, fights.
func (ind *Individual) String() string {
	return fmt.Sprintf("%s\t%g\t%d", ind.Strategy, ind.Fitness, ind.Fights)
}
