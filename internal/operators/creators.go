package operators

import (
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/rng"
)

// ParallelCreator builds a batch by asking inner for one genotype per
// spawned generator, on a bounded worker pool. The batch does not depend on
// the number of workers.
type ParallelCreator[G any, S core.SearchSpace[G]] struct {
	inner   core.Creator[G, S]
	workers int
}

func NewParallelCreator[G any, S core.SearchSpace[G]](inner core.Creator[G, S], workers int) *ParallelCreator[G, S] {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &ParallelCreator[G, S]{inner: inner, workers: workers}
}

func (c *ParallelCreator[G, S]) Create(count int, random *rng.Random, space S) ([]G, error) {
	children, err := random.Spawn(count)
	if err != nil {
		return nil, err
	}
	out := make([]G, count)
	p := pool.New().WithErrors().WithFirstError().WithMaxGoroutines(c.workers)
	for i := range children {
		i := i
		p.Go(func() error {
			gs, err := c.inner.Create(1, children[i], space)
			if err != nil {
				return err
			}
			if len(gs) != 1 {
				return fmt.Errorf("%w: creator returned %d genotypes, want 1", core.ErrDomainViolation, len(gs))
			}
			out[i] = gs[0]
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
