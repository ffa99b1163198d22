// Package analysis summarizes populations and fronts produced by runs.
//
// The package includes:
//
//   - [Describe]: per-goal mean, standard deviation, minimum and maximum
//   - [Spread] and [Uniqueness]: objective-space and genotype diversity
//   - [Hypervolume2D]: area dominated by a two-goal front
//   - [IGD]: inverted generational distance to a reference front
//   - [Improvement]: how far the best score moved over a run
//   - [Scatter]: ASCII scatter plot for terminals
//
// # Comparing Fronts
//
// For minimization goals, a larger hypervolume against the same reference
// point means a better front:
//
//	hv, err := analysis.Hypervolume2D(objective, res.Front(), core.ObjectiveVector{1.1, 1.1})
package analysis
