package core

import (
	"github.com/san-kum/metaheur/internal/rng"
)

// SearchSpace decides whether a genotype is admissible. Contains must be
// pure: identical genotypes always give identical answers.
type SearchSpace[G any] interface {
	Contains(genotype G) bool
}

// SearchSpaceFunc adapts a predicate to SearchSpace.
type SearchSpaceFunc[G any] func(G) bool

func (f SearchSpaceFunc[G]) Contains(g G) bool { return f(g) }

// Problem scores genotypes of space S. Evaluate may be stochastic, which is
// why it receives a generator, and must return a vector of Objective().Dim()
// scores. A genotype outside the space is a domain error, never coerced.
type Problem[G any, S SearchSpace[G]] interface {
	SearchSpace() S
	Objective() Objective
	Evaluate(genotype G, random *rng.Random) (ObjectiveVector, error)
}

// Named is implemented by problems and algorithms that report a name.
type Named interface {
	Name() string
}

// Decoder maps a genotype to a domain representation for reporting.
type Decoder[G, D any] func(G) D

// Solution pairs a genotype with the scores it was evaluated to.
type Solution[G any] struct {
	genotype   G
	objectives ObjectiveVector
}

func NewSolution[G any](genotype G, objectives ObjectiveVector) Solution[G] {
	return Solution[G]{genotype: genotype, objectives: objectives.Clone()}
}

func (s Solution[G]) Genotype() G { return s.genotype }

// Objectives returns a copy of the scores.
func (s Solution[G]) Objectives() ObjectiveVector { return s.objectives.Clone() }

// Objective returns score i without copying.
func (s Solution[G]) Objective(i int) float64 { return s.objectives[i] }

// WithObjectives returns a re-scored copy; s is left untouched.
func (s Solution[G]) WithObjectives(v ObjectiveVector) Solution[G] {
	return NewSolution(s.genotype, v)
}

// Population is an ordered sequence of solutions. Order may carry rank
// meaning for some operators; duplicate genotypes are allowed.
type Population[G any] []Solution[G]

func (p Population[G]) Clone() Population[G] {
	c := make(Population[G], len(p))
	copy(c, p)
	return c
}

func (p Population[G]) Genotypes() []G {
	out := make([]G, len(p))
	for i, s := range p {
		out[i] = s.genotype
	}
	return out
}

// Best returns the index of the best solution: by goal 0 for a single-goal
// objective, otherwise a member no other solution dominates. It returns -1
// for an empty population.
func (p Population[G]) Best(objective Objective) int {
	if len(p) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(p); i++ {
		if objective.Better(p[i].objectives, p[best].objectives) {
			best = i
		}
	}
	return best
}
