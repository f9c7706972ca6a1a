package telemetry

import "github.com/pthm-cable/hawkdove/components"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventContest EventType = iota
	EventIdle
	EventBirth
	EventDeath
)

// Event represents a single telemetry event.
type Event struct {
	Type         EventType
	Generation   int
	IndividualID uint32
	Strategy     components.Strategy
	Fitness      float64 // fitness after the event

	// Optional fields depending on event type
	TargetID uint32  // opponent for contests, parent for births
	Amount   float64 // payoff received or exhaustion lost
}

// NewContestEvent creates a contest event from one participant's side.
func NewContestEvent(generation int, ind *components.Individual, opponentID uint32, payoff float64) Event {
	return Event{
		Type:         EventContest,
		Generation:   generation,
		IndividualID: ind.ID,
		Strategy:     ind.Strategy,
		Fitness:      ind.Fitness,
		TargetID:     opponentID,
		Amount:       payoff,
	}
}

// NewIdleEvent creates an event for an individual that sat out a generation.
func NewIdleEvent(generation int, ind *components.Individual, exhaustion float64) Event {
	return Event{
		Type:         EventIdle,
		Generation:   generation,
		IndividualID: ind.ID,
		Strategy:     ind.Strategy,
		Fitness:      ind.Fitness,
		Amount:       exhaustion,
	}
}

// NewBirthEvent creates a birth event.
func NewBirthEvent(generation int, childID, parentID uint32, strategy components.Strategy, fitness float64) Event {
	return Event{
		Type:         EventBirth,
		Generation:   generation,
		IndividualID: childID,
		Strategy:     strategy,
		Fitness:      fitness,
		TargetID:     parentID, // parent ID stored in TargetID
	}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(generation int, ind components.Individual) Event {
	return Event{
		Type:         EventDeath,
		Generation:   generation,
		IndividualID: ind.ID,
		Strategy:     ind.Strategy,
		Fitness:      ind.Fitness,
	}
}
