package core

// State is an immutable snapshot of algorithm progress. WithIteration
// returns a copy carrying a new iteration counter, which lets the executor
// advance any state shape without knowing its fields.
type State[R any] interface {
	CurrentIteration() int
	WithIteration(iteration int) R
}

// PopulationCarrier is implemented by every state that holds a population.
type PopulationCarrier[G any] interface {
	CurrentIteration() int
	Population() Population[G]
}

// IterationState is the base state: an iteration counter starting at 0.
type IterationState struct {
	iteration int
}

func NewIterationState(iteration int) IterationState {
	return IterationState{iteration: iteration}
}

func (s IterationState) CurrentIteration() int { return s.iteration }

func (s IterationState) WithIteration(iteration int) IterationState {
	return IterationState{iteration: iteration}
}

// PopulationState adds the working population. Genotypes inside it are
// shared, not copied, so operators must never modify a genotype in place.
type PopulationState[G any] struct {
	IterationState
	population Population[G]
}

func NewPopulationState[G any](iteration int, population Population[G]) PopulationState[G] {
	return PopulationState[G]{
		IterationState: NewIterationState(iteration),
		population:     population.Clone(),
	}
}

// Population returns a copy of the working population.
func (s PopulationState[G]) Population() Population[G] { return s.population.Clone() }

func (s PopulationState[G]) Size() int { return len(s.population) }

func (s PopulationState[G]) WithIteration(iteration int) PopulationState[G] {
	return PopulationState[G]{IterationState: NewIterationState(iteration), population: s.population}
}

func (s PopulationState[G]) WithPopulation(population Population[G]) PopulationState[G] {
	return NewPopulationState(s.iteration, population)
}

// SingleSolutionState is a population state whose population holds exactly
// one distinguished solution.
type SingleSolutionState[G any] struct {
	PopulationState[G]
}

// NewSingleSolutionState fails with ErrStateShape unless population has
// exactly one member.
func NewSingleSolutionState[G any](iteration int, population Population[G]) (SingleSolutionState[G], error) {
	if len(population) != 1 {
		return SingleSolutionState[G]{}, shapeErrorf("single-solution state needs 1 solution, got %d", len(population))
	}
	return SingleSolutionState[G]{PopulationState: NewPopulationState(iteration, population)}, nil
}

func SingleSolution[G any](iteration int, solution Solution[G]) SingleSolutionState[G] {
	return SingleSolutionState[G]{PopulationState: NewPopulationState(iteration, Population[G]{solution})}
}

// Solution returns the distinguished solution, or ErrStateShape when the
// state was built around a population of a different size.
func (s SingleSolutionState[G]) Solution() (Solution[G], error) {
	if len(s.population) != 1 {
		return Solution[G]{}, shapeErrorf("single-solution state holds %d solutions", len(s.population))
	}
	return s.population[0], nil
}

func (s SingleSolutionState[G]) WithIteration(iteration int) SingleSolutionState[G] {
	return SingleSolutionState[G]{PopulationState: s.PopulationState.WithIteration(iteration)}
}

func (s SingleSolutionState[G]) WithSolution(solution Solution[G]) SingleSolutionState[G] {
	return SingleSolution(s.iteration, solution)
}
