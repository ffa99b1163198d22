package analysis

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/metaheur/internal/core"
)

// Spread is the mean pairwise Euclidean distance between objective vectors.
func Spread(vectors []core.ObjectiveVector) float64 {
	if len(vectors) < 2 {
		return 0
	}
	var sum float64
	pairs := 0
	for i := range vectors {
		for j := i + 1; j < len(vectors); j++ {
			sum += floats.Distance(vectors[i], vectors[j], 2)
			pairs++
		}
	}
	return sum / float64(pairs)
}

// Uniqueness is the fraction of distinct genotype renderings.
func Uniqueness(genotypes []string) float64 {
	if len(genotypes) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(genotypes))
	for _, g := range genotypes {
		seen[g] = struct{}{}
	}
	return float64(len(seen)) / float64(len(genotypes))
}
