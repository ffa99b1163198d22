package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/metaheur/internal/core"
)

// Hypervolume2D is the area dominated by front and bounded by reference.
// Maximization goals are negated first, reference included, so reference
// must be worse than every point worth counting. Points not strictly better
// than reference on both goals contribute nothing.
func Hypervolume2D(objective core.Objective, front []core.ObjectiveVector, reference core.ObjectiveVector) (float64, error) {
	if objective.Dim() != 2 {
		return 0, fmt.Errorf("hypervolume needs 2 goals, objective has %d: %w", objective.Dim(), core.ErrInvalidArgument)
	}
	if err := objective.Validate(reference); err != nil {
		return 0, fmt.Errorf("reference: %w", err)
	}
	ref := minimized(objective, reference)

	points := make([][2]float64, 0, len(front))
	for i, v := range front {
		if err := objective.Validate(v); err != nil {
			return 0, fmt.Errorf("point %d: %w", i, err)
		}
		p := minimized(objective, v)
		if p[0] < ref[0] && p[1] < ref[1] {
			points = append(points, [2]float64{p[0], p[1]})
		}
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i][0] != points[j][0] {
			return points[i][0] < points[j][0]
		}
		return points[i][1] < points[j][1]
	})

	// Horizontal slabs: each non-dominated point adds the band between its
	// second score and the lowest one seen so far.
	area, ceiling := 0.0, ref[1]
	for _, p := range points {
		if p[1] >= ceiling {
			continue
		}
		area += (ref[0] - p[0]) * (ceiling - p[1])
		ceiling = p[1]
	}
	return area, nil
}

func minimized(objective core.Objective, v core.ObjectiveVector) core.ObjectiveVector {
	out := v.Clone()
	for i, g := range objective {
		if g.Direction == core.Maximize {
			out[i] = -out[i]
		}
	}
	return out
}

// IGD is the mean distance from each reference point to its nearest front
// point. Lower is better; 0 means the front covers the reference.
func IGD(front, reference []core.ObjectiveVector) (float64, error) {
	if len(front) == 0 || len(reference) == 0 {
		return 0, fmt.Errorf("igd of %d points against %d references: %w", len(front), len(reference), core.ErrInvalidArgument)
	}
	var sum float64
	for _, r := range reference {
		nearest := math.Inf(1)
		for _, p := range front {
			if len(p) != len(r) {
				return 0, fmt.Errorf("igd: %d scores against %d: %w", len(p), len(r), core.ErrInvalidArgument)
			}
			nearest = math.Min(nearest, floats.Distance(p, r, 2))
		}
		sum += nearest
	}
	return sum / float64(len(reference)), nil
}

// ReferencePoint returns a point worse than every vector on each goal by
// margin times that goal's range, or by margin when the range is 0.
func ReferencePoint(objective core.Objective, vectors []core.ObjectiveVector, margin float64) core.ObjectiveVector {
	ref := make(core.ObjectiveVector, objective.Dim())
	if len(vectors) == 0 {
		return ref
	}
	column := make([]float64, len(vectors))
	for g, goal := range objective {
		for i, v := range vectors {
			column[i] = v[g]
		}
		lo, hi := floats.Min(column), floats.Max(column)
		pad := margin * (hi - lo)
		if pad == 0 {
			pad = margin
		}
		if goal.Direction == core.Maximize {
			ref[g] = lo - pad
		} else {
			ref[g] = hi + pad
		}
	}
	return ref
}
