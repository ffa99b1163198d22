package core

import (
	"fmt"
	"strings"
)

// Direction is the sense of one optimization goal.
type Direction int

const (
	Minimize Direction = iota
	Maximize
)

func (d Direction) String() string {
	if d == Maximize {
		return "max"
	}
	return "min"
}

// ParseDirection accepts "min"/"minimize" and "max"/"maximize".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "min", "minimize", "":
		return Minimize, nil
	case "max", "maximize":
		return Maximize, nil
	default:
		return Minimize, fmt.Errorf("unknown direction %q: %w", s, ErrInvalidArgument)
	}
}

// Goal is one named optimization direction.
type Goal struct {
	Name      string
	Direction Direction
}

// Objective is the ordered set of goals a problem scores against. Its length
// is the dimensionality of every ObjectiveVector produced for it.
type Objective []Goal

// SingleObjective is a one-goal objective.
func SingleObjective(name string, d Direction) Objective {
	return Objective{{Name: name, Direction: d}}
}

func (o Objective) Dim() int { return len(o) }

// Validate checks that v has exactly one score per goal.
func (o Objective) Validate(v ObjectiveVector) error {
	if len(v) != len(o) {
		return fmt.Errorf("objective vector has %d scores, objective has %d goals: %w", len(v), len(o), ErrInvalidArgument)
	}
	return nil
}

// Compare orders a and b on goal i: negative when a is better, positive when
// b is better, zero when equal.
func (o Objective) Compare(a, b ObjectiveVector, i int) int {
	x, y := a[i], b[i]
	if o[i].Direction == Maximize {
		x, y = y, x
	}
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

// Better reports whether a is strictly better than b: on goal 0 for a
// single-goal objective, by Pareto dominance otherwise.
func (o Objective) Better(a, b ObjectiveVector) bool {
	if len(o) == 1 {
		return o.Compare(a, b, 0) < 0
	}
	return o.Dominates(a, b)
}

// Dominates reports whether a is no worse than b on every goal and strictly
// better on at least one.
func (o Objective) Dominates(a, b ObjectiveVector) bool {
	better := false
	for i := range o {
		switch o.Compare(a, b, i) {
		case 1:
			return false
		case -1:
			better = true
		}
	}
	return better
}

// ObjectiveVector is the ordered sequence of scores for one genotype.
type ObjectiveVector []float64

func (v ObjectiveVector) Clone() ObjectiveVector {
	c := make(ObjectiveVector, len(v))
	copy(c, v)
	return c
}
