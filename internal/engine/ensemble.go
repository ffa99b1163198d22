package engine

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"
	"k8s.io/klog/v2"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/rng"
)

// Ensemble repeats one algorithm on one problem with independent
// generators spawned from a single parent.
type Ensemble[G any, S core.SearchSpace[G], R core.State[R]] struct {
	exec    *Executor[G, S, R]
	numRuns int
	workers int
}

func NewEnsemble[G any, S core.SearchSpace[G], R core.State[R]](exec *Executor[G, S, R], numRuns int) *Ensemble[G, S, R] {
	return &Ensemble[G, S, R]{exec: exec, numRuns: numRuns, workers: runtime.GOMAXPROCS(0)}
}

// WithWorkers caps the number of runs executing at once.
func (e *Ensemble[G, S, R]) WithWorkers(n int) *Ensemble[G, S, R] {
	if n > 0 {
		e.workers = n
	}
	return e
}

// Run executes every replicate and returns the final states in replicate
// order. Replicate i uses child i of random.Spawn(numRuns), so its result
// does not depend on scheduling. The first failure cancels the others.
func (e *Ensemble[G, S, R]) Run(ctx context.Context, algorithm Algorithm[G, S, R], problem core.Problem[G, S], random *rng.Random) ([]R, error) {
	children, err := random.Spawn(e.numRuns)
	if err != nil {
		return nil, fmt.Errorf("ensemble of %d runs: %w", e.numRuns, err)
	}

	logger := klog.FromContext(ctx)
	results := make([]R, e.numRuns)
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError().WithMaxGoroutines(e.workers)
	for i, child := range children {
		i, child := i, child
		p.Go(func(ctx context.Context) error {
			ctx = klog.NewContext(ctx, logger.WithValues("replicate", i))
			final, err := e.exec.Execute(ctx, algorithm, problem, child, nil)
			if err != nil {
				return fmt.Errorf("replicate %d: %w", i, err)
			}
			results[i] = final
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
