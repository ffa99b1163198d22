package core

import (
	"github.com/san-kum/metaheur/internal/rng"
)

// Creator produces fresh genotypes inside space.
type Creator[G any, S SearchSpace[G]] interface {
	Create(count int, random *rng.Random, space S) ([]G, error)
}

type CreatorFunc[G any, S SearchSpace[G]] func(count int, random *rng.Random, space S) ([]G, error)

func (f CreatorFunc[G, S]) Create(count int, random *rng.Random, space S) ([]G, error) {
	return f(count, random, space)
}

// Evaluator scores a batch of genotypes. The i-th vector belongs to the
// i-th genotype.
type Evaluator[G any, S SearchSpace[G]] interface {
	Evaluate(genotypes []G, random *rng.Random, space S, problem Problem[G, S]) ([]ObjectiveVector, error)
}

type EvaluatorFunc[G any, S SearchSpace[G]] func(genotypes []G, random *rng.Random, space S, problem Problem[G, S]) ([]ObjectiveVector, error)

func (f EvaluatorFunc[G, S]) Evaluate(genotypes []G, random *rng.Random, space S, problem Problem[G, S]) ([]ObjectiveVector, error) {
	return f(genotypes, random, space, problem)
}

// Selector draws count solutions from population, with or without
// replacement depending on the implementation. It never invents solutions.
type Selector[G any, S SearchSpace[G]] interface {
	Select(population Population[G], objective Objective, count int, random *rng.Random, space S, problem Problem[G, S]) (Population[G], error)
}

type SelectorFunc[G any, S SearchSpace[G]] func(population Population[G], objective Objective, count int, random *rng.Random, space S, problem Problem[G, S]) (Population[G], error)

func (f SelectorFunc[G, S]) Select(population Population[G], objective Objective, count int, random *rng.Random, space S, problem Problem[G, S]) (Population[G], error) {
	return f(population, objective, count, random, space, problem)
}

// Mutator derives one or more children from parents.
type Mutator[G any, S SearchSpace[G]] interface {
	Mutate(parents []G, random *rng.Random, space S, problem Problem[G, S]) ([]G, error)
}

type MutatorFunc[G any, S SearchSpace[G]] func(parents []G, random *rng.Random, space S, problem Problem[G, S]) ([]G, error)

func (f MutatorFunc[G, S]) Mutate(parents []G, random *rng.Random, space S, problem Problem[G, S]) ([]G, error) {
	return f(parents, random, space, problem)
}

// Crossover recombines a pair of parents into one or more children.
type Crossover[G any, S SearchSpace[G]] interface {
	Cross(a, b G, random *rng.Random, space S) ([]G, error)
}

type CrossoverFunc[G any, S SearchSpace[G]] func(a, b G, random *rng.Random, space S) ([]G, error)

func (f CrossoverFunc[G, S]) Cross(a, b G, random *rng.Random, space S) ([]G, error) {
	return f(a, b, random, space)
}

// Transition is what terminators, interceptors and observers see: the state
// just produced, the state it replaced (nil for the initial state) and the
// problem being solved.
type Transition[G any, S SearchSpace[G], R State[R]] struct {
	Current  R
	Previous *R
	Space    S
	Problem  Problem[G, S]
}

func (t Transition[G, S, R]) HasPrevious() bool { return t.Previous != nil }

// Terminator decides when a run stops.
type Terminator[G any, S SearchSpace[G], R State[R]] interface {
	ShouldTerminate(t Transition[G, S, R]) bool
}

type TerminatorFunc[G any, S SearchSpace[G], R State[R]] func(t Transition[G, S, R]) bool

func (f TerminatorFunc[G, S, R]) ShouldTerminate(t Transition[G, S, R]) bool { return f(t) }

// ShouldContinue is the negation of term.ShouldTerminate(t).
func ShouldContinue[G any, S SearchSpace[G], R State[R]](term Terminator[G, S, R], t Transition[G, S, R]) bool {
	return !term.ShouldTerminate(t)
}

// Interceptor rewrites a freshly produced state before it is committed. It
// must keep the state's shape intact.
type Interceptor[G any, S SearchSpace[G], R State[R]] interface {
	Intercept(t Transition[G, S, R]) (R, error)
}

type InterceptorFunc[G any, S SearchSpace[G], R State[R]] func(t Transition[G, S, R]) (R, error)

func (f InterceptorFunc[G, S, R]) Intercept(t Transition[G, S, R]) (R, error) { return f(t) }

// Observer is notified once per committed iteration. Its return is ignored.
type Observer[G any, S SearchSpace[G], R State[R]] interface {
	Observe(t Transition[G, S, R])
}

type ObserverFunc[G any, S SearchSpace[G], R State[R]] func(t Transition[G, S, R])

func (f ObserverFunc[G, S, R]) Observe(t Transition[G, S, R]) { f(t) }
