// Package engine drives an [Algorithm] from its initial state to
// termination.
//
// An [Executor] runs the state machine
//
//	Initializing -> Iterating -> Terminated
//
// Each iteration receives its own generator, derived from the run's parent
// generator and the iteration number, so an iteration's randomness does not
// depend on how much randomness earlier iterations consumed.
//
// # Example
//
//	exec := engine.New[permutation.Genotype, permutation.Space, core.PopulationState[permutation.Genotype]]()
//	exec.AddTerminator(operators.MaxIterations[permutation.Genotype, permutation.Space, core.PopulationState[permutation.Genotype]](100))
//	final, err := exec.Execute(ctx, ga, tsp, rng.New(42), nil)
//
// # Thread Safety
//
// Configure an Executor before the first Execute or Start. After that it is
// read-only and may drive any number of concurrent runs; each [Run] belongs
// to a single goroutine.
package engine
