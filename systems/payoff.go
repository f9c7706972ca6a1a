package systems

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/hawkdove/components"
)

// ErrUnknownPair is returned when the payoff matrix has no entry for a pair.
var ErrUnknownPair = errors.New("payoff matrix: unknown strategy pair")

// StrategyPair is an ordered pair of strategies; First is the first drawn.
type StrategyPair struct {
	First, Second components.Strategy
}

// Payoff is the fitness change for each side of a contest.
type Payoff struct {
	First, Second float64
}

// PayoffMatrix maps ordered strategy pairs to payoffs.
// It is immutable after construction.
type PayoffMatrix struct {
	entries map[StrategyPair]Payoff
}

// PayoffConstants are the game-theory constants used to derive a matrix.
type PayoffConstants struct {
	V float64 // value of the contested resource
	C float64 // cost of injury (signed, normally negative)
	B float64 // asymmetric bonus damping the injury of a losing escalator
}

// NewPayoffMatrix builds a matrix from explicit entries.
// The map is copied.
func NewPayoffMatrix(entries map[StrategyPair]Payoff) *PayoffMatrix {
	m := &PayoffMatrix{entries: make(map[StrategyPair]Payoff, len(entries))}
	for k, v := range entries {
		m.entries[k] = v
	}
	return m
}

// DerivePayoffMatrix builds the four entries for an escalating strategy
// (first) and a retreating strategy (second):
//
//	(first, first)   -> (V, C*V/(B+1))
//	(first, second)  -> (V, 0)
//	(second, first)  -> (0, V)
//	(second, second) -> (V+C, C)
func DerivePayoffMatrix(first, second components.Strategy, k PayoffConstants) (*PayoffMatrix, error) {
	if first == second {
		return nil, fmt.Errorf("payoff matrix: strategies must differ, both are %s", first)
	}
	if k.B == -1 {
		return nil, fmt.Errorf("payoff matrix: bonus B must not be -1")
	}
	return NewPayoffMatrix(map[StrategyPair]Payoff{
		{first, first}:   {k.V, k.C * k.V / (k.B + 1)},
		{first, second}:  {k.V, 0},
		{second, first}:  {0, k.V},
		{second, second}: {k.V + k.C, k.C},
	}), nil
}

// ClassicPayoffMatrix returns the fixed hawk/dove table of small integers.
func ClassicPayoffMatrix() *PayoffMatrix {
	h, d := components.StrategyHawk, components.StrategyDove
	return NewPayoffMatrix(map[StrategyPair]Payoff{
		{h, h}: {-2, -2},
		{h, d}: {10, 0},
		{d, h}: {0, 10},
		{d, d}: {3, 3},
	})
}

// With returns a new matrix with the given entries replaced or added.
func (m *PayoffMatrix) With(overrides map[StrategyPair]Payoff) *PayoffMatrix {
	out := NewPayoffMatrix(m.entries)
	for k, v := range overrides {
		out.entries[k] = v
	}
	return out
}

// Lookup returns the payoff for the ordered pair (a, b).
func (m *PayoffMatrix) Lookup(a, b components.Strategy) (Payoff, error) {
	p, ok := m.entries[StrategyPair{a, b}]
	if !ok {
		return Payoff{}, fmt.Errorf("%w: (%s, %s)", ErrUnknownPair, a, b)
	}
	return p, nil
}

// Len returns the number of enumerated pairs.
func (m *PayoffMatrix) Len() int {
	return len(m.entries)
}

// Rules applies a payoff matrix to contesting individuals.
type Rules struct {
	matrix *PayoffMatrix
}

// NewRules wraps a payoff matrix. The matrix must cover every ordered pair
// of strategies; a missing pair is reported as ErrUnknownPair.
func NewRules(matrix *PayoffMatrix) (*Rules, error) {
	if matrix == nil {
		return nil, fmt.Errorf("rules: nil payoff matrix")
	}
	for _, a := range components.Strategies {
		for _, b := range components.Strategies {
			if _, err := matrix.Lookup(a, b); err != nil {
				return nil, fmt.Errorf("rules: incomplete matrix: %w", err)
			}
		}
	}
	return &Rules{matrix: matrix}, nil
}

// Payoff returns the fitness change for a and b when they meet.
func (r *Rules) Payoff(a, b *components.Individual) (float64, float64, error) {
	p, err := r.matrix.Lookup(a.Strategy, b.Strategy)
	if err != nil {
		return 0, 0, err
	}
	return p.First, p.Second, nil
}
