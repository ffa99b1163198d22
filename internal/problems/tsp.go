package problems

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/encoding/permutation"
	"github.com/san-kum/metaheur/internal/rng"
)

// City is a point in the unit square.
type City struct {
	X, Y float64
}

// TSP minimizes the length of a closed tour visiting every city once.
type TSP struct {
	cities []City
	dist   [][]float64
	space  permutation.Space
}

// NewRandomTSP places n cities uniformly in the unit square using a
// generator keyed by seed, so the same seed always yields the same instance.
func NewRandomTSP(n int, seed uint64) (*TSP, error) {
	r := rng.New(seed)
	cities := make([]City, max(n, 0))
	for i := range cities {
		cities[i] = City{X: r.Random(), Y: r.Random()}
	}
	return NewTSP(cities)
}

func NewTSP(cities []City) (*TSP, error) {
	space, err := permutation.NewSpace(len(cities))
	if err != nil {
		return nil, fmt.Errorf("tsp: %w", err)
	}
	dist := make([][]float64, len(cities))
	for i := range cities {
		dist[i] = make([]float64, len(cities))
		for j := range cities {
			dist[i][j] = math.Hypot(cities[i].X-cities[j].X, cities[i].Y-cities[j].Y)
		}
	}
	return &TSP{cities: append([]City(nil), cities...), dist: dist, space: space}, nil
}

func (p *TSP) Name() string                   { return "tsp" }
func (p *TSP) SearchSpace() permutation.Space { return p.space }
func (p *TSP) Objective() core.Objective      { return core.SingleObjective("length", core.Minimize) }
func (p *TSP) Cities() []City                 { return append([]City(nil), p.cities...) }

func (p *TSP) Evaluate(tour permutation.Genotype, _ *rng.Random) (core.ObjectiveVector, error) {
	if !p.space.Contains(tour) {
		return nil, fmt.Errorf("%w: %v is not a tour of %d cities", core.ErrDomainViolation, tour, p.space.Size())
	}
	return core.ObjectiveVector{p.Length(tour)}, nil
}

// Length is the closed-tour length; tour must be a valid permutation.
func (p *TSP) Length(tour permutation.Genotype) float64 {
	total := 0.0
	for i := range tour {
		total += p.dist[tour[i]][tour[(i+1)%len(tour)]]
	}
	return total
}

// Decode renders a tour as "0 -> 3 -> 1 -> 2 -> 0".
func (p *TSP) Decode(tour permutation.Genotype) string {
	if len(tour) == 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range tour {
		fmt.Fprintf(&b, "%d -> ", c)
	}
	fmt.Fprintf(&b, "%d", tour[0])
	return b.String()
}
