// Package core defines the substrate every metaheuristic in this module is
// assembled from.
//
// The package defines the data model and the operator contracts:
//
//   - [SearchSpace]: admissibility predicate over genotypes
//   - [Objective] and [ObjectiveVector]: optimization directions and scores
//   - [Problem]: search space + objective + evaluation function
//   - [Solution] and [Population]: scored genotypes
//   - [IterationState], [PopulationState], [SingleSolutionState]: immutable
//     snapshots of algorithm progress
//   - [Creator], [Evaluator], [Selector], [Mutator], [Crossover],
//     [Terminator], [Interceptor], [Observer]: pipeline stages
//
// The checked helpers ([Create], [Evaluate], [Select], [Mutate], [Cross])
// wrap operator calls and turn contract violations into categorized errors.
//
// # Example
//
//	space := permutation.NewSpace(3)
//	genotypes, err := core.Create[permutation.Genotype](creator, 1, rng.New(7), space)
//
// # Thread Safety
//
// Values in this package are immutable once constructed and may be shared
// between goroutines. Operators must not keep mutable state between calls.
package core
