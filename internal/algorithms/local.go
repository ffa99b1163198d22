package algorithms

import (
	"fmt"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/operators"
	"github.com/san-kum/metaheur/internal/rng"
)

// LocalSearch is best-improvement hill climbing: each step samples
// Neighbors mutants of the incumbent and moves to the best of them when it
// is strictly better.
type LocalSearch[G any, S core.SearchSpace[G]] struct {
	Neighbors int
	Creator   core.Creator[G, S]
	Mutator   core.Mutator[G, S]
	Evaluator core.Evaluator[G, S]
	Stop      core.Terminator[G, S, core.SingleSolutionState[G]]
}

func NewLocalSearch[G any, S core.SearchSpace[G]](neighbors int, creator core.Creator[G, S], mutator core.Mutator[G, S]) *LocalSearch[G, S] {
	return &LocalSearch[G, S]{
		Neighbors: neighbors,
		Creator:   creator,
		Mutator:   mutator,
		Evaluator: operators.SequentialEvaluator[G, S]{},
	}
}

func (l *LocalSearch[G, S]) Name() string { return "local" }

func (l *LocalSearch[G, S]) Terminator() core.Terminator[G, S, core.SingleSolutionState[G]] {
	return l.Stop
}

func (l *LocalSearch[G, S]) ValidateState(s core.SingleSolutionState[G]) error {
	_, err := s.Solution()
	return err
}

func (l *LocalSearch[G, S]) Initialize(problem core.Problem[G, S], random *rng.Random) (core.SingleSolutionState[G], error) {
	if err := l.check(); err != nil {
		return core.SingleSolutionState[G]{}, err
	}
	space := problem.SearchSpace()
	start, err := core.Create(l.Creator, 1, random.Derive(0), space)
	if err != nil {
		return core.SingleSolutionState[G]{}, fmt.Errorf("create: %w", err)
	}
	pop, err := core.EvaluatePopulation(l.Evaluator, start, random.Derive(1), space, problem)
	if err != nil {
		return core.SingleSolutionState[G]{}, fmt.Errorf("evaluate: %w", err)
	}
	return core.NewSingleSolutionState(0, pop)
}

func (l *LocalSearch[G, S]) Step(current core.SingleSolutionState[G], problem core.Problem[G, S], random *rng.Random) (core.SingleSolutionState[G], error) {
	if err := l.check(); err != nil {
		return current, err
	}
	incumbent, err := current.Solution()
	if err != nil {
		return current, err
	}
	space := problem.SearchSpace()

	parents := make([]G, l.Neighbors)
	for i := range parents {
		parents[i] = incumbent.Genotype()
	}
	neighbors, err := core.Mutate(l.Mutator, parents, random.Derive(0), space, problem)
	if err != nil {
		return current, fmt.Errorf("neighborhood: %w", err)
	}
	scored, err := core.EvaluatePopulation(l.Evaluator, neighbors, random.Derive(1), space, problem)
	if err != nil {
		return current, fmt.Errorf("evaluate: %w", err)
	}

	objective := problem.Objective()
	best := scored.Best(objective)
	if objective.Better(scored[best].Objectives(), incumbent.Objectives()) {
		return current.WithSolution(scored[best]), nil
	}
	return current, nil
}

func (l *LocalSearch[G, S]) check() error {
	switch {
	case l.Neighbors < 1:
		return fmt.Errorf("neighbor count %d: %w", l.Neighbors, core.ErrInvalidArgument)
	case l.Creator == nil || l.Mutator == nil || l.Evaluator == nil:
		return fmt.Errorf("local search needs a creator, a mutator and an evaluator: %w", core.ErrInvalidArgument)
	}
	return nil
}

// RandomSearch samples Samples fresh genotypes per step and keeps the Keep
// best solutions seen so far.
type RandomSearch[G any, S core.SearchSpace[G]] struct {
	Samples   int
	Keep      int
	Creator   core.Creator[G, S]
	Evaluator core.Evaluator[G, S]
	Stop      core.Terminator[G, S, core.PopulationState[G]]
}

func NewRandomSearch[G any, S core.SearchSpace[G]](samples, keep int, creator core.Creator[G, S]) *RandomSearch[G, S] {
	return &RandomSearch[G, S]{
		Samples:   samples,
		Keep:      keep,
		Creator:   creator,
		Evaluator: operators.SequentialEvaluator[G, S]{},
	}
}

func (s *RandomSearch[G, S]) Name() string { return "random" }

func (s *RandomSearch[G, S]) Terminator() core.Terminator[G, S, core.PopulationState[G]] {
	return s.Stop
}

func (s *RandomSearch[G, S]) Initialize(problem core.Problem[G, S], random *rng.Random) (core.PopulationState[G], error) {
	pop, err := s.sample(problem, random)
	if err != nil {
		return core.PopulationState[G]{}, err
	}
	return core.NewPopulationState(0, operators.Truncate(pop, problem.Objective(), min(s.Keep, len(pop)))), nil
}

func (s *RandomSearch[G, S]) Step(current core.PopulationState[G], problem core.Problem[G, S], random *rng.Random) (core.PopulationState[G], error) {
	fresh, err := s.sample(problem, random)
	if err != nil {
		return current, err
	}
	combined := append(current.Population(), fresh...)
	return current.WithPopulation(operators.Truncate(combined, problem.Objective(), min(s.Keep, len(combined)))), nil
}

func (s *RandomSearch[G, S]) sample(problem core.Problem[G, S], random *rng.Random) (core.Population[G], error) {
	if s.Samples < 1 || s.Keep < 1 {
		return nil, fmt.Errorf("random search with %d samples keeping %d: %w", s.Samples, s.Keep, core.ErrInvalidArgument)
	}
	if s.Creator == nil || s.Evaluator == nil {
		return nil, fmt.Errorf("random search needs a creator and an evaluator: %w", core.ErrInvalidArgument)
	}
	space := problem.SearchSpace()
	genotypes, err := core.Create(s.Creator, s.Samples, random.Derive(0), space)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	pop, err := core.EvaluatePopulation(s.Evaluator, genotypes, random.Derive(1), space, problem)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	return pop, nil
}
