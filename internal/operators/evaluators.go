package operators

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sourcegraph/conc/pool"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/rng"
)

// SequentialEvaluator scores genotypes one after another. Genotype i is
// evaluated with child i of random.Spawn(len(genotypes)).
type SequentialEvaluator[G any, S core.SearchSpace[G]] struct{}

func (SequentialEvaluator[G, S]) Evaluate(genotypes []G, random *rng.Random, _ S, problem core.Problem[G, S]) ([]core.ObjectiveVector, error) {
	if len(genotypes) == 0 {
		return []core.ObjectiveVector{}, nil
	}
	children, err := random.Spawn(len(genotypes))
	if err != nil {
		return nil, err
	}
	out := make([]core.ObjectiveVector, len(genotypes))
	for i, g := range genotypes {
		v, err := problem.Evaluate(g, children[i])
		if err != nil {
			return nil, fmt.Errorf("genotype %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// ParallelEvaluator scores genotypes on a bounded worker pool. It hands out
// generators the same way SequentialEvaluator does, so both return
// identical scores for identical input.
type ParallelEvaluator[G any, S core.SearchSpace[G]] struct {
	Workers int
}

func NewParallelEvaluator[G any, S core.SearchSpace[G]](workers int) *ParallelEvaluator[G, S] {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &ParallelEvaluator[G, S]{Workers: workers}
}

func (e *ParallelEvaluator[G, S]) Evaluate(genotypes []G, random *rng.Random, _ S, problem core.Problem[G, S]) ([]core.ObjectiveVector, error) {
	if len(genotypes) == 0 {
		return []core.ObjectiveVector{}, nil
	}
	children, err := random.Spawn(len(genotypes))
	if err != nil {
		return nil, err
	}

	out := make([]core.ObjectiveVector, len(genotypes))
	p := pool.New().WithErrors().WithFirstError().WithMaxGoroutines(max(e.Workers, 1))
	for i, g := range genotypes {
		i, g := i, g
		p.Go(func() error {
			v, err := problem.Evaluate(g, children[i])
			if err != nil {
				return fmt.Errorf("genotype %d: %w", i, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CachingEvaluator remembers the scores of recently seen genotypes. Only use
// it with deterministic problems: a cached genotype is not re-evaluated, so
// its generator is never consumed.
type CachingEvaluator[G any, S core.SearchSpace[G]] struct {
	inner core.Evaluator[G, S]
	key   func(G) string
	cache *lru.Cache
	hits  atomic.Int64
}

func NewCachingEvaluator[G any, S core.SearchSpace[G]](inner core.Evaluator[G, S], size int, key func(G) string) (*CachingEvaluator[G, S], error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d: %w", size, core.ErrInvalidArgument)
	}
	if key == nil {
		key = func(g G) string { return fmt.Sprint(g) }
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CachingEvaluator[G, S]{inner: inner, key: key, cache: cache}, nil
}

func (c *CachingEvaluator[G, S]) Evaluate(genotypes []G, random *rng.Random, space S, problem core.Problem[G, S]) ([]core.ObjectiveVector, error) {
	out := make([]core.ObjectiveVector, len(genotypes))
	var missing []G
	var missingIdx []int
	for i, g := range genotypes {
		if v, ok := c.cache.Get(c.key(g)); ok {
			out[i] = v.(core.ObjectiveVector).Clone()
			c.hits.Add(1)
			continue
		}
		missing = append(missing, g)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	scores, err := c.inner.Evaluate(missing, random, space, problem)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(missing) {
		return nil, fmt.Errorf("%w: inner evaluator returned %d vectors for %d genotypes", core.ErrDomainViolation, len(scores), len(missing))
	}
	for j, idx := range missingIdx {
		out[idx] = scores[j]
		c.cache.Add(c.key(missing[j]), scores[j].Clone())
	}
	return out, nil
}

func (c *CachingEvaluator[G, S]) Hits() int64 { return c.hits.Load() }

// CountingEvaluator counts genotype evaluations and the time spent in them.
// The counters are safe for concurrent batches.
type CountingEvaluator[G any, S core.SearchSpace[G]] struct {
	inner       core.Evaluator[G, S]
	evaluations atomic.Int64
	calls       atomic.Int64
	nanos       atomic.Int64
}

func NewCountingEvaluator[G any, S core.SearchSpace[G]](inner core.Evaluator[G, S]) *CountingEvaluator[G, S] {
	return &CountingEvaluator[G, S]{inner: inner}
}

func (c *CountingEvaluator[G, S]) Evaluate(genotypes []G, random *rng.Random, space S, problem core.Problem[G, S]) ([]core.ObjectiveVector, error) {
	start := time.Now()
	out, err := c.inner.Evaluate(genotypes, random, space, problem)
	c.nanos.Add(int64(time.Since(start)))
	c.calls.Add(1)
	if err == nil {
		c.evaluations.Add(int64(len(genotypes)))
	}
	return out, err
}

// Evaluations is the number of genotypes scored successfully.
func (c *CountingEvaluator[G, S]) Evaluations() int64 { return c.evaluations.Load() }

func (c *CountingEvaluator[G, S]) Calls() int64 { return c.calls.Load() }

func (c *CountingEvaluator[G, S]) Elapsed() time.Duration { return time.Duration(c.nanos.Load()) }

func (c *CountingEvaluator[G, S]) Reset() {
	c.evaluations.Store(0)
	c.calls.Store(0)
	c.nanos.Store(0)
}
