package experiment

import (
	"context"
	"fmt"
	"math"
	"time"

	"k8s.io/klog/v2"

	"github.com/san-kum/metaheur/internal/algorithms"
	"github.com/san-kum/metaheur/internal/config"
	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/engine"
	"github.com/san-kum/metaheur/internal/metrics"
	"github.com/san-kum/metaheur/internal/operators"
	"github.com/san-kum/metaheur/internal/rng"
)

const logEvery = 10

// kit is the encoding-specific half of a run: operators, keys for caching
// and an optional decoder for reports.
type kit[G any, S core.SearchSpace[G]] struct {
	creator   core.Creator[G, S]
	crossover core.Crossover[G, S]
	mutator   core.Mutator[G, S]
	neighbor  core.Mutator[G, S]
	key       func(G) string
	decode    func(G) string
	guard     core.Interceptor[G, S, core.PopulationState[G]]
	reference []core.ObjectiveVector
}

type runner[G any, S core.SearchSpace[G]] struct {
	cfg     *config.Config
	problem core.Problem[G, S]
	kit     kit[G, S]
}

func newRunner[G any, S core.SearchSpace[G]](cfg *config.Config, problem core.Problem[G, S], k kit[G, S]) *runner[G, S] {
	return &runner[G, S]{cfg: cfg, problem: problem, kit: k}
}

type outcome[G any] struct {
	iteration  int
	population core.Population[G]
	history    []operators.Snapshot
}

type evaluation[G any, S core.SearchSpace[G]] struct {
	counter *operators.CountingEvaluator[G, S]
	cache   *operators.CachingEvaluator[G, S]
}

func (r *runner[G, S]) Objective() core.Objective { return r.problem.Objective() }

func (r *runner[G, S]) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := klog.FromContext(ctx).WithValues("problem", r.cfg.Problem, "algorithm", r.cfg.Algorithm, "seed", r.cfg.Seed)
	ctx = klog.NewContext(ctx, logger)

	eval, err := r.evaluation()
	if err != nil {
		return nil, err
	}

	started := time.Now()
	var out outcome[G]
	switch r.cfg.Algorithm {
	case "local":
		out, err = execute[G, S, core.SingleSolutionState[G]](ctx, r.cfg, r.local(eval.counter), r.problem, nil, opts)
	case "random":
		out, err = execute[G, S, core.PopulationState[G]](ctx, r.cfg, r.random(eval.counter), r.problem, r.populationInterceptors(), opts)
	default:
		out, err = execute[G, S, core.PopulationState[G]](ctx, r.cfg, r.genetic(eval.counter), r.problem, r.populationInterceptors(), opts)
	}
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", r.cfg.Algorithm, r.cfg.Problem, err)
	}

	res := &Result{
		Problem:     r.cfg.Problem,
		Algorithm:   r.cfg.Algorithm,
		Seed:        r.cfg.Seed,
		Goals:       goals(r.problem.Objective()),
		Iterations:  out.iteration,
		Evaluations: eval.counter.Evaluations(),
		Elapsed:     time.Since(started),
		History:     out.history,
		Metrics:     make(map[string]float64),
		Final:       r.members(out.population),
		Reference:   r.kit.reference,
	}
	for name, v := range metrics.Compute(out.history, metrics.Defaults(r.problem.Objective())...) {
		if !math.IsNaN(v) {
			res.Metrics[name] = v
		}
	}
	if eval.cache != nil {
		res.CacheHits = eval.cache.Hits()
	}
	logger.V(1).Info("Run finished", "iterations", res.Iterations, "evaluations", res.Evaluations, "elapsed", res.Elapsed)
	return res, nil
}

func (r *runner[G, S]) Replicate(ctx context.Context, runs, workers int) ([]operators.Snapshot, error) {
	eval, err := r.evaluation()
	if err != nil {
		return nil, err
	}
	switch r.cfg.Algorithm {
	case "local":
		return replicate[G, S, core.SingleSolutionState[G]](ctx, r.cfg, r.local(eval.counter), r.problem, nil, runs, workers)
	case "random":
		return replicate[G, S, core.PopulationState[G]](ctx, r.cfg, r.random(eval.counter), r.problem, r.populationInterceptors(), runs, workers)
	default:
		return replicate[G, S, core.PopulationState[G]](ctx, r.cfg, r.genetic(eval.counter), r.problem, r.populationInterceptors(), runs, workers)
	}
}

// evaluation stacks the configured evaluators: parallel when workers > 1,
// cached when a cache size is set and the problem is noise free, and
// always counted.
func (r *runner[G, S]) evaluation() (*evaluation[G, S], error) {
	var inner core.Evaluator[G, S] = operators.SequentialEvaluator[G, S]{}
	if r.cfg.Runtime.Workers > 1 {
		inner = operators.NewParallelEvaluator[G, S](r.cfg.Runtime.Workers)
	}
	e := &evaluation[G, S]{}
	if r.cfg.Runtime.CacheSize > 0 && r.cfg.Params.Noise == 0 {
		cache, err := operators.NewCachingEvaluator(inner, r.cfg.Runtime.CacheSize, r.kit.key)
		if err != nil {
			return nil, err
		}
		e.cache, inner = cache, cache
	}
	e.counter = operators.NewCountingEvaluator(inner)
	return e, nil
}

func (r *runner[G, S]) creator() core.Creator[G, S] {
	return operators.NewParallelCreator(r.kit.creator, max(r.cfg.Runtime.Workers, 1))
}

func (r *runner[G, S]) genetic(eval core.Evaluator[G, S]) *algorithms.GeneticAlgorithm[G, S] {
	s := r.cfg.Search
	ga := algorithms.NewGeneticAlgorithm(s.PopulationSize, r.creator(), r.kit.crossover, r.kit.mutator)
	ga.Offspring = s.Offspring
	ga.CrossoverRate = s.CrossoverRate
	ga.MutationRate = s.MutationRate
	ga.Parents = operators.TournamentSelector[G, S]{Size: s.TournamentSize}
	ga.Evaluator = eval
	return ga
}

func (r *runner[G, S]) local(eval core.Evaluator[G, S]) *algorithms.LocalSearch[G, S] {
	ls := algorithms.NewLocalSearch(r.cfg.Search.Neighbors, r.creator(), r.kit.neighbor)
	ls.Evaluator = eval
	return ls
}

func (r *runner[G, S]) random(eval core.Evaluator[G, S]) *algorithms.RandomSearch[G, S] {
	rs := algorithms.NewRandomSearch(r.cfg.Search.Offspring, r.cfg.Search.PopulationSize, r.creator())
	rs.Evaluator = eval
	return rs
}

func (r *runner[G, S]) populationInterceptors() []core.Interceptor[G, S, core.PopulationState[G]] {
	var out []core.Interceptor[G, S, core.PopulationState[G]]
	if r.kit.guard != nil {
		out = append(out, r.kit.guard)
	}
	return append(out, operators.SortPopulation[G, S]())
}

// members renders pop best first, with non-domination ranks.
func (r *runner[G, S]) members(pop core.Population[G]) []Member {
	objective := r.problem.Objective()
	pop = operators.Truncate(pop, objective, len(pop))
	vectors := make([]core.ObjectiveVector, len(pop))
	for i, s := range pop {
		vectors[i] = s.Objectives()
	}
	ranks := core.Ranks(objective, vectors)

	out := make([]Member, len(pop))
	for i, s := range pop {
		out[i] = Member{Genotype: fmt.Sprint(s.Genotype()), Objectives: vectors[i], Rank: ranks[i]}
		if r.kit.decode != nil {
			out[i].Decoded = r.kit.decode(s.Genotype())
		}
	}
	return out
}

type carrier[G any, R any] interface {
	core.State[R]
	core.PopulationCarrier[G]
}

// newExecutor wires the configured stopping rules. Ensemble executors are
// shared by every replicate, so they get a per-run timeout and no
// convergence tracking; single runs get an absolute deadline.
func newExecutor[G any, S core.SearchSpace[G], R carrier[G, R]](cfg *config.Config, interceptors []core.Interceptor[G, S, R], single bool) *engine.Executor[G, S, R] {
	exec := engine.New[G, S, R]()
	if cfg.Iterations > 0 {
		exec.AddTerminator(operators.MaxIterations[G, S, R](cfg.Iterations))
	}
	if cfg.Patience > 0 && single {
		exec.AddTerminator(&operators.Convergence[G, S, R]{Patience: cfg.Patience, Epsilon: 1e-12})
	}
	switch {
	case cfg.TimeLimit <= 0:
	case single:
		exec.AddTerminator(operators.Deadline[G, S, R](time.Now().Add(cfg.TimeLimit)))
	default:
		exec.SetTimeout(cfg.TimeLimit)
	}
	for _, i := range interceptors {
		exec.AddInterceptor(i)
	}
	return exec
}

func execute[G any, S core.SearchSpace[G], R carrier[G, R]](ctx context.Context, cfg *config.Config, algorithm engine.Algorithm[G, S, R], problem core.Problem[G, S], interceptors []core.Interceptor[G, S, R], opts Options) (outcome[G], error) {
	exec := newExecutor[G, S, R](cfg, interceptors, true)
	if opts.Stopped != nil {
		exec.AddTerminator(operators.StopWhen[G, S, R](opts.Stopped))
	}
	history := operators.NewHistory[G, S, R]()
	exec.AddObserver(history)
	exec.AddObserver(operators.LoggingObserver[G, S, R](klog.FromContext(ctx), logEvery))
	if opts.OnSnapshot != nil {
		exec.AddObserver(snapshotObserver[G, S, R](opts.OnSnapshot))
	}

	final, err := exec.Execute(ctx, algorithm, problem, rng.New(cfg.Seed), nil)
	if err != nil {
		return outcome[G]{}, err
	}
	return outcome[G]{
		iteration:  final.CurrentIteration(),
		population: final.Population(),
		history:    history.Snapshots(),
	}, nil
}

func replicate[G any, S core.SearchSpace[G], R carrier[G, R]](ctx context.Context, cfg *config.Config, algorithm engine.Algorithm[G, S, R], problem core.Problem[G, S], interceptors []core.Interceptor[G, S, R], runs, workers int) ([]operators.Snapshot, error) {
	exec := newExecutor[G, S, R](cfg, interceptors, false)
	finals, err := engine.NewEnsemble(exec, runs).WithWorkers(workers).Run(ctx, algorithm, problem, rng.New(cfg.Seed))
	if err != nil {
		return nil, err
	}
	out := make([]operators.Snapshot, len(finals))
	for i, f := range finals {
		out[i] = operators.Summarize[G](f, problem.Objective())
	}
	return out, nil
}

// snapshotObserver forwards a Snapshot per committed iteration, preceded by
// one for the initial state.
func snapshotObserver[G any, S core.SearchSpace[G], R core.State[R]](fn func(operators.Snapshot)) core.Observer[G, S, R] {
	first := true
	return core.ObserverFunc[G, S, R](func(t core.Transition[G, S, R]) {
		objective := t.Problem.Objective()
		if first && t.HasPrevious() {
			fn(operators.Summarize[G](*t.Previous, objective))
		}
		first = false
		fn(operators.Summarize[G](t.Current, objective))
	})
}
