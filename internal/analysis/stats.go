package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/operators"
)

// GoalStats summarizes one goal's scores across a population.
type GoalStats struct {
	Goal string
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Describe returns one GoalStats per goal. Every vector must have
// objective.Dim() scores.
func Describe(objective core.Objective, vectors []core.ObjectiveVector) ([]GoalStats, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("describe an empty population: %w", core.ErrInvalidArgument)
	}
	out := make([]GoalStats, objective.Dim())
	column := make([]float64, len(vectors))
	for g := range out {
		for i, v := range vectors {
			if err := objective.Validate(v); err != nil {
				return nil, fmt.Errorf("vector %d: %w", i, err)
			}
			column[i] = v[g]
		}
		mean, std := stat.MeanStdDev(column, nil)
		if len(column) == 1 {
			std = 0
		}
		out[g] = GoalStats{
			Goal: objective[g].Name,
			Mean: mean,
			Std:  std,
			Min:  floats.Min(column),
			Max:  floats.Max(column),
		}
	}
	return out, nil
}

// Improvement is the distance the best score on goal moved between the
// first and last snapshot, positive when it moved in the goal's direction.
func Improvement(history []operators.Snapshot, objective core.Objective, goal int) float64 {
	var first, last float64
	found := false
	for _, s := range history {
		if goal >= len(s.Best) {
			continue
		}
		if !found {
			first, found = s.Best[goal], true
		}
		last = s.Best[goal]
	}
	if !found {
		return math.NaN()
	}
	if objective[goal].Direction == core.Maximize {
		return last - first
	}
	return first - last
}
