package engine

import (
	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/rng"
)

// Algorithm is an operator composition. Initialize builds iteration 0 and
// Step turns one state into the next. Neither may keep state between calls.
type Algorithm[G any, S core.SearchSpace[G], R core.State[R]] interface {
	Name() string
	Initialize(problem core.Problem[G, S], random *rng.Random) (R, error)
	Step(current R, problem core.Problem[G, S], random *rng.Random) (R, error)

	// Terminator is the algorithm's own stopping rule, or nil.
	Terminator() core.Terminator[G, S, R]
}

// StateValidator is implemented by algorithms that require a particular
// state shape. The executor calls it on supplied initial states and on every
// produced state.
type StateValidator[R any] interface {
	ValidateState(state R) error
}

// Phase is the executor state of a Run.
type Phase int

const (
	Initializing Phase = iota
	Iterating
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Initializing:
		return "initializing"
	case Iterating:
		return "iterating"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}
