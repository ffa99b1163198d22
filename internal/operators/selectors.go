package operators

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/rng"
)

// UniformSelector draws count solutions uniformly with replacement.
type UniformSelector[G any, S core.SearchSpace[G]] struct{}

func (UniformSelector[G, S]) Select(population core.Population[G], _ core.Objective, count int, random *rng.Random, _ S, _ core.Problem[G, S]) (core.Population[G], error) {
	if count > 0 && len(population) == 0 {
		return nil, fmt.Errorf("%w: empty population", core.ErrStateShape)
	}
	out := make(core.Population[G], count)
	for i := range out {
		out[i] = population[random.Intn(len(population))]
	}
	return out, nil
}

// TournamentSelector runs count independent tournaments of Size contestants
// drawn with replacement. For several goals contestants are compared by
// non-dominated rank, then crowding distance.
type TournamentSelector[G any, S core.SearchSpace[G]] struct {
	Size int
}

func (t TournamentSelector[G, S]) Select(population core.Population[G], objective core.Objective, count int, random *rng.Random, _ S, _ core.Problem[G, S]) (core.Population[G], error) {
	if t.Size < 1 {
		return nil, fmt.Errorf("tournament size %d: %w", t.Size, core.ErrInvalidArgument)
	}
	if count > 0 && len(population) == 0 {
		return nil, fmt.Errorf("%w: empty population", core.ErrStateShape)
	}
	better := fitnessOrder(population, objective)
	out := make(core.Population[G], count)
	for i := range out {
		best := random.Intn(len(population))
		for k := 1; k < t.Size; k++ {
			c := random.Intn(len(population))
			if better(c, best) {
				best = c
			}
		}
		out[i] = population[best]
	}
	return out, nil
}

// ElitistSelector keeps the count best solutions without replacement:
// lowest non-dominated rank first, ties broken by larger crowding distance
// and then by position. It never consumes the generator.
type ElitistSelector[G any, S core.SearchSpace[G]] struct{}

func (ElitistSelector[G, S]) Select(population core.Population[G], objective core.Objective, count int, _ *rng.Random, _ S, _ core.Problem[G, S]) (core.Population[G], error) {
	if count > len(population) {
		return nil, fmt.Errorf("cannot keep %d of %d solutions without replacement: %w", count, len(population), core.ErrInvalidArgument)
	}
	return Truncate(population, objective, count), nil
}

// Truncate returns the count best members of population, best first.
func Truncate[G any](population core.Population[G], objective core.Objective, count int) core.Population[G] {
	better := fitnessOrder(population, objective)
	order := make([]int, len(population))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case better(a, b):
			return -1
		case better(b, a):
			return 1
		default:
			return cmp.Compare(a, b)
		}
	})
	out := make(core.Population[G], count)
	for i := range out {
		out[i] = population[order[i]]
	}
	return out
}

// fitnessOrder returns a strict "i is better than j" relation over
// population indices.
func fitnessOrder[G any](population core.Population[G], objective core.Objective) func(i, j int) bool {
	vectors := objectiveVectors(population)
	if objective.Dim() == 1 {
		return func(i, j int) bool { return objective.Compare(vectors[i], vectors[j], 0) < 0 }
	}

	rank := make([]int, len(population))
	crowd := make([]float64, len(population))
	for r, front := range core.NonDominatedSort(objective, vectors) {
		dist := core.CrowdingDistance(vectors, front)
		for k, idx := range front {
			rank[idx] = r
			crowd[idx] = dist[k]
		}
	}
	return func(i, j int) bool {
		if rank[i] != rank[j] {
			return rank[i] < rank[j]
		}
		return crowd[i] > crowd[j]
	}
}

func objectiveVectors[G any](population core.Population[G]) []core.ObjectiveVector {
	out := make([]core.ObjectiveVector, len(population))
	for i, s := range population {
		out[i] = s.Objectives()
	}
	return out
}
