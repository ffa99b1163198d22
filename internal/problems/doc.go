// Package problems provides benchmark problems: Sphere, Rastrigin and ZDT1
// over real vectors, TSP over permutations, and Expression, whose goals are
// arithmetic expressions compiled at construction time.
package problems
