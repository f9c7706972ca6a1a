package components

import "fmt"

// Strategy is the fixed behavioral label of an individual.
type Strategy uint8

const (
	StrategyHawk Strategy = iota // escalates until it wins or is injured
	StrategyDove                 // displays, retreats when the opponent escalates
)

// NumStrategies is the number of strategies in play.
const NumStrategies = 2

// Strategies lists every strategy in index order.
var Strategies = [NumStrategies]Strategy{StrategyHawk, StrategyDove}

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyHawk:
		return "Hawk"
	case StrategyDove:
		return "Dove"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// Behavior returns the display behavior associated with the strategy.
func (s Strategy) Behavior() string {
	switch s {
	case StrategyHawk:
		return "Aggressive"
	case StrategyDove:
		return "Passive"
	default:
		return "Unknown"
	}
}

// ParseStrategy maps a name ("hawk", "Dove", ...) to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "Hawk", "hawk", "HAWK":
		return StrategyHawk, nil
	case "Dove", "dove", "DOVE":
		return StrategyDove, nil
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}
