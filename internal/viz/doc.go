// Package viz provides the terminal views of a running search.
//
// The package implements a live progress view using the Bubble Tea framework:
//
//   - [Model]: progress, convergence graph and population summary of one run
//   - [RunLive]: runs an experiment.Runner behind the view
//   - Theme selection with 4 built-in color schemes
//
// # Key Bindings
//
//	S/Q - Stop the run at the next iteration boundary
//	T   - Cycle color themes
//	?   - Show help overlay
package viz
