// Package algorithms contains reference compositions of the operators in
// internal/core and internal/operators: a (mu + lambda) genetic algorithm,
// best-improvement local search and random search. Each works for any
// encoding and is driven by an engine.Executor.
package algorithms
