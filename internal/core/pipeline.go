package core

import (
	"errors"
	"fmt"

	"github.com/san-kum/metaheur/internal/rng"
)

// Create calls creator and checks that it returned count genotypes, all of
// them inside space.
func Create[G any, S SearchSpace[G]](creator Creator[G, S], count int, random *rng.Random, space S) ([]G, error) {
	if count <= 0 {
		return nil, fmt.Errorf("create count %d: %w", count, ErrInvalidArgument)
	}
	genotypes, err := creator.Create(count, random, space)
	if err != nil {
		return nil, Categorize(err, ErrDomainViolation)
	}
	if len(genotypes) != count {
		return nil, domainErrorf("creator returned %d genotypes, want %d", len(genotypes), count)
	}
	if err := checkClosure(genotypes, space, "creator"); err != nil {
		return nil, err
	}
	return genotypes, nil
}

// Evaluate scores genotypes and checks that one correctly sized vector came
// back per genotype. Failures of the evaluator itself are computation
// failures.
func Evaluate[G any, S SearchSpace[G]](evaluator Evaluator[G, S], genotypes []G, random *rng.Random, space S, problem Problem[G, S]) ([]ObjectiveVector, error) {
	if err := checkClosure(genotypes, space, "evaluate"); err != nil {
		return nil, err
	}
	scores, err := evaluator.Evaluate(genotypes, random, space, problem)
	if err != nil {
		return nil, Categorize(err, ErrComputation)
	}
	if len(scores) != len(genotypes) {
		return nil, domainErrorf("evaluator returned %d vectors for %d genotypes", len(scores), len(genotypes))
	}
	objective := problem.Objective()
	for i, v := range scores {
		if err := objective.Validate(v); err != nil {
			return nil, fmt.Errorf("genotype %d: %w", i, err)
		}
	}
	return scores, nil
}

// EvaluatePopulation is Evaluate followed by pairing each genotype with its
// scores, index for index.
func EvaluatePopulation[G any, S SearchSpace[G]](evaluator Evaluator[G, S], genotypes []G, random *rng.Random, space S, problem Problem[G, S]) (Population[G], error) {
	scores, err := Evaluate(evaluator, genotypes, random, space, problem)
	if err != nil {
		return nil, err
	}
	pop := make(Population[G], len(genotypes))
	for i := range genotypes {
		pop[i] = Solution[G]{genotype: genotypes[i], objectives: scores[i]}
	}
	return pop, nil
}

// Select calls selector and checks the size of what it returned.
func Select[G any, S SearchSpace[G]](selector Selector[G, S], population Population[G], objective Objective, count int, random *rng.Random, space S, problem Problem[G, S]) (Population[G], error) {
	if count < 0 {
		return nil, fmt.Errorf("select count %d: %w", count, ErrInvalidArgument)
	}
	if count > 0 && len(population) == 0 {
		return nil, shapeErrorf("cannot select %d from an empty population", count)
	}
	selected, err := selector.Select(population, objective, count, random, space, problem)
	if err != nil {
		return nil, Categorize(err, ErrDomainViolation)
	}
	if len(selected) != count {
		return nil, domainErrorf("selector returned %d solutions, want %d", len(selected), count)
	}
	return selected, nil
}

// Mutate calls mutator and checks that every child is inside space.
func Mutate[G any, S SearchSpace[G]](mutator Mutator[G, S], parents []G, random *rng.Random, space S, problem Problem[G, S]) ([]G, error) {
	if len(parents) == 0 {
		return nil, fmt.Errorf("mutate without parents: %w", ErrInvalidArgument)
	}
	children, err := mutator.Mutate(parents, random, space, problem)
	if err != nil {
		return nil, Categorize(err, ErrDomainViolation)
	}
	if len(children) == 0 {
		return nil, domainErrorf("mutator returned no children")
	}
	if err := checkClosure(children, space, "mutator"); err != nil {
		return nil, err
	}
	return children, nil
}

// Cross calls crossover and checks that every child is inside space.
func Cross[G any, S SearchSpace[G]](crossover Crossover[G, S], a, b G, random *rng.Random, space S) ([]G, error) {
	children, err := crossover.Cross(a, b, random, space)
	if err != nil {
		return nil, Categorize(err, ErrDomainViolation)
	}
	if len(children) == 0 {
		return nil, domainErrorf("crossover returned no children")
	}
	if err := checkClosure(children, space, "crossover"); err != nil {
		return nil, err
	}
	return children, nil
}

func checkClosure[G any, S SearchSpace[G]](genotypes []G, space S, who string) error {
	for i, g := range genotypes {
		if !space.Contains(g) {
			return domainErrorf("%s: genotype %d (%v) outside search space", who, i, g)
		}
	}
	return nil
}

// Categorize leaves errors that already carry a category untouched and files
// the rest under fallback.
func Categorize(err, fallback error) error {
	if Categorized(err) {
		return err
	}
	return fmt.Errorf("%w: %w", fallback, err)
}

// Categorized reports whether err matches one of the package's error
// categories.
func Categorized(err error) bool {
	for _, c := range []error{ErrInvalidArgument, ErrDomainViolation, ErrComputation, ErrStateShape, ErrCanceled} {
		if errors.Is(err, c) {
			return true
		}
	}
	return false
}
