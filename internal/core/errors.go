package core

import (
	"errors"
	"fmt"

	"github.com/san-kum/metaheur/internal/rng"
)

// Error categories surfaced by the engine. Every failure returned from an
// execution matches exactly one of them with errors.Is.
var (
	// ErrInvalidArgument indicates a bad count, range or vector dimension.
	ErrInvalidArgument = rng.ErrInvalidArgument

	// ErrDomainViolation indicates an operator broke its contract, e.g. a
	// genotype outside the search space or a result of the wrong size.
	ErrDomainViolation = errors.New("core: domain violation")

	// ErrComputation indicates a problem failed to evaluate a genotype.
	ErrComputation = errors.New("core: computation failure")

	// ErrStateShape indicates a state whose arity does not match what an
	// operator or state specialization requires.
	ErrStateShape = errors.New("core: state shape violation")

	// ErrCanceled indicates the execution was interrupted by its context.
	ErrCanceled = errors.New("core: execution canceled")
)

// ExecutionError wraps an error with the iteration and pipeline stage it
// was raised in.
type ExecutionError struct {
	Iteration int
	Stage     string
	Wrapped   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("iteration %d (%s): %v", e.Iteration, e.Stage, e.Wrapped)
}

func (e *ExecutionError) Unwrap() error {
	return e.Wrapped
}

func domainErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDomainViolation, fmt.Sprintf(format, args...))
}

func shapeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStateShape, fmt.Sprintf(format, args...))
}
