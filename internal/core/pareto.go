package core

import (
	"math"
	"sort"
)

// NonDominatedSort splits vectors into Pareto fronts and returns the indices
// of each front, best front first. Indices inside a front keep input order.
func NonDominatedSort(objective Objective, vectors []ObjectiveVector) [][]int {
	n := len(vectors)
	if n == 0 {
		return nil
	}
	dominated := make([][]int, n)
	domCount := make([]int, n)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			switch {
			case objective.Dominates(vectors[i], vectors[j]):
				dominated[i] = append(dominated[i], j)
				domCount[j]++
			case objective.Dominates(vectors[j], vectors[i]):
				dominated[j] = append(dominated[j], i)
				domCount[i]++
			}
		}
	}

	var current []int
	for i := 0; i < n; i++ {
		if domCount[i] == 0 {
			current = append(current, i)
		}
	}

	var fronts [][]int
	for len(current) > 0 {
		fronts = append(fronts, current)
		var next []int
		for _, idx := range current {
			for _, d := range dominated[idx] {
				domCount[d]--
				if domCount[d] == 0 {
					next = append(next, d)
				}
			}
		}
		sort.Ints(next)
		current = next
	}
	return fronts
}

// Ranks returns the front number of every vector.
func Ranks(objective Objective, vectors []ObjectiveVector) []int {
	ranks := make([]int, len(vectors))
	for r, front := range NonDominatedSort(objective, vectors) {
		for _, idx := range front {
			ranks[idx] = r
		}
	}
	return ranks
}

// CrowdingDistance returns the crowding distance of each member of front,
// aligned with front. Boundary points get +Inf.
func CrowdingDistance(vectors []ObjectiveVector, front []int) []float64 {
	distance := make([]float64, len(front))
	if len(front) <= 2 {
		for i := range distance {
			distance[i] = math.Inf(1)
		}
		return distance
	}

	order := make([]int, len(front))
	dims := len(vectors[front[0]])
	for m := 0; m < dims; m++ {
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return vectors[front[order[a]]][m] < vectors[front[order[b]]][m]
		})

		first, last := order[0], order[len(order)-1]
		distance[first] = math.Inf(1)
		distance[last] = math.Inf(1)

		span := vectors[front[last]][m] - vectors[front[first]][m]
		if span == 0 {
			continue
		}
		for i := 1; i < len(order)-1; i++ {
			lo := vectors[front[order[i-1]]][m]
			hi := vectors[front[order[i+1]]][m]
			distance[order[i]] += (hi - lo) / span
		}
	}
	return distance
}
