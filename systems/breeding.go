package systems

import "github.com/pthm-cable/hawkdove/components"

// offspring is a pending birth collected during the breeding scan.
type offspring struct {
	parentID uint32
	strategy components.Strategy
	fitness  float64
}

// Breed clamps fitness to the ceiling, then every individual at or above the
// breeding threshold halves its fitness and produces one offspring of the same
// strategy carrying the halved fitness. Offspring join after the scan, so they
// cannot breed in the pass that created them.
// Returns the number of births per strategy.
func (p *Population) Breed() [components.NumStrategies]int {
	births, _ := p.breed()
	return births
}

func (p *Population) breed() ([components.NumStrategies]int, []Birth) {
	var births [components.NumStrategies]int

	// Stable snapshot of the parents; spawn appends to p.entities
	parents := make([]*components.Individual, len(p.entities))
	for i, e := range p.entities {
		parents[i] = p.mapper.Get(e)
	}

	var pending []offspring
	for _, ind := range parents {
		if ind.Fitness > p.fitnessCeiling {
			ind.Fitness = p.fitnessCeiling
		}
		if ind.Fitness >= p.breedingThreshold {
			ind.Fitness /= 2
			pending = append(pending, offspring{parentID: ind.ID, strategy: ind.Strategy, fitness: ind.Fitness})
		}
	}

	if len(pending) == 0 {
		return births, nil
	}
	born := make([]Birth, 0, len(pending))
	for _, o := range pending {
		p.spawn(o.strategy, o.fitness)
		births[o.strategy]++
		born = append(born, Birth{
			ChildID:  p.nextID,
			ParentID: o.parentID,
			Strategy: o.strategy,
			Fitness:  o.fitness,
		})
	}
	return births, born
}
