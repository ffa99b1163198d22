package algorithms

import (
	"fmt"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/operators"
	"github.com/san-kum/metaheur/internal/rng"
)

// GeneticAlgorithm is a (mu + lambda) evolutionary loop: select parents,
// recombine and mutate them into Offspring children, then keep
// PopulationSize survivors out of parents and children together.
type GeneticAlgorithm[G any, S core.SearchSpace[G]] struct {
	PopulationSize int
	Offspring      int
	CrossoverRate  float64
	MutationRate   float64

	Creator   core.Creator[G, S]
	Evaluator core.Evaluator[G, S]
	Parents   core.Selector[G, S]
	Crossover core.Crossover[G, S]
	Mutator   core.Mutator[G, S]
	Survivors core.Selector[G, S]
	Stop      core.Terminator[G, S, core.PopulationState[G]]
}

// NewGeneticAlgorithm fills the defaults: binary tournaments for parents,
// elitist truncation for survivors, a sequential evaluator and as many
// offspring as population members.
func NewGeneticAlgorithm[G any, S core.SearchSpace[G]](size int, creator core.Creator[G, S], crossover core.Crossover[G, S], mutator core.Mutator[G, S]) *GeneticAlgorithm[G, S] {
	return &GeneticAlgorithm[G, S]{
		PopulationSize: size,
		Offspring:      size,
		CrossoverRate:  0.9,
		MutationRate:   0.2,
		Creator:        creator,
		Evaluator:      operators.SequentialEvaluator[G, S]{},
		Parents:        operators.TournamentSelector[G, S]{Size: 2},
		Crossover:      crossover,
		Mutator:        mutator,
		Survivors:      operators.ElitistSelector[G, S]{},
	}
}

func (a *GeneticAlgorithm[G, S]) Name() string { return "genetic" }

func (a *GeneticAlgorithm[G, S]) Terminator() core.Terminator[G, S, core.PopulationState[G]] {
	return a.Stop
}

func (a *GeneticAlgorithm[G, S]) ValidateState(s core.PopulationState[G]) error {
	if s.Size() != a.PopulationSize {
		return fmt.Errorf("%w: population of %d, algorithm keeps %d", core.ErrStateShape, s.Size(), a.PopulationSize)
	}
	return nil
}

func (a *GeneticAlgorithm[G, S]) Initialize(problem core.Problem[G, S], random *rng.Random) (core.PopulationState[G], error) {
	if err := a.check(); err != nil {
		return core.PopulationState[G]{}, err
	}
	space := problem.SearchSpace()
	genotypes, err := core.Create(a.Creator, a.PopulationSize, random.Derive(0), space)
	if err != nil {
		return core.PopulationState[G]{}, fmt.Errorf("create: %w", err)
	}
	pop, err := core.EvaluatePopulation(a.Evaluator, genotypes, random.Derive(1), space, problem)
	if err != nil {
		return core.PopulationState[G]{}, fmt.Errorf("evaluate: %w", err)
	}
	return core.NewPopulationState(0, pop), nil
}

func (a *GeneticAlgorithm[G, S]) Step(current core.PopulationState[G], problem core.Problem[G, S], random *rng.Random) (core.PopulationState[G], error) {
	if err := a.check(); err != nil {
		return current, err
	}
	space := problem.SearchSpace()
	objective := problem.Objective()
	pop := current.Population()

	parentCount := a.Offspring + a.Offspring%2
	parents, err := core.Select(a.Parents, pop, objective, parentCount, random.Derive(0), space, problem)
	if err != nil {
		return current, fmt.Errorf("parent selection: %w", err)
	}

	children, err := a.vary(parents, random.Derive(1), space, problem)
	if err != nil {
		return current, err
	}

	offspring, err := core.EvaluatePopulation(a.Evaluator, children, random.Derive(2), space, problem)
	if err != nil {
		return current, fmt.Errorf("evaluate: %w", err)
	}

	combined := append(pop, offspring...)
	survivors, err := core.Select(a.Survivors, combined, objective, a.PopulationSize, random.Derive(3), space, problem)
	if err != nil {
		return current, fmt.Errorf("survivor selection: %w", err)
	}
	return current.WithPopulation(survivors), nil
}

func (a *GeneticAlgorithm[G, S]) vary(parents core.Population[G], random *rng.Random, space S, problem core.Problem[G, S]) ([]G, error) {
	children := make([]G, 0, a.Offspring+1)
	for i := 0; len(children) < a.Offspring; i += 2 {
		x, y := parents[i%len(parents)].Genotype(), parents[(i+1)%len(parents)].Genotype()
		pair := []G{x, y}
		if a.Crossover != nil && random.Boolean(a.CrossoverRate) {
			kids, err := core.Cross(a.Crossover, x, y, random, space)
			if err != nil {
				return nil, fmt.Errorf("crossover: %w", err)
			}
			pair = kids
		}
		for j, g := range pair {
			if a.Mutator == nil || !random.Boolean(a.MutationRate) {
				continue
			}
			mutated, err := core.Mutate(a.Mutator, []G{g}, random, space, problem)
			if err != nil {
				return nil, fmt.Errorf("mutation: %w", err)
			}
			pair[j] = mutated[0]
		}
		children = append(children, pair...)
	}
	return children[:a.Offspring], nil
}

func (a *GeneticAlgorithm[G, S]) check() error {
	switch {
	case a.PopulationSize < 1:
		return fmt.Errorf("population size %d: %w", a.PopulationSize, core.ErrInvalidArgument)
	case a.Offspring < 1:
		return fmt.Errorf("offspring count %d: %w", a.Offspring, core.ErrInvalidArgument)
	case a.Creator == nil || a.Evaluator == nil || a.Parents == nil || a.Survivors == nil:
		return fmt.Errorf("genetic algorithm needs a creator, an evaluator and two selectors: %w", core.ErrInvalidArgument)
	case a.Crossover == nil && a.Mutator == nil:
		return fmt.Errorf("genetic algorithm needs a crossover or a mutator: %w", core.ErrInvalidArgument)
	}
	return nil
}
