package engine

import (
	"context"
	"fmt"
	"time"

	"k8s.io/klog/v2"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/rng"
)

type Executor[G any, S core.SearchSpace[G], R core.State[R]] struct {
	observers    []core.Observer[G, S, R]
	interceptors []core.Interceptor[G, S, R]
	terminators  []core.Terminator[G, S, R]
	timeout      time.Duration
}

func New[G any, S core.SearchSpace[G], R core.State[R]]() *Executor[G, S, R] {
	return &Executor[G, S, R]{
		observers:    make([]core.Observer[G, S, R], 0),
		interceptors: make([]core.Interceptor[G, S, R], 0),
		terminators:  make([]core.Terminator[G, S, R], 0),
	}
}

func (e *Executor[G, S, R]) AddObserver(o core.Observer[G, S, R]) {
	e.observers = append(e.observers, o)
}

// AddInterceptor registers an interceptor. Interceptors run in registration
// order after the algorithm's step and before the iteration is committed.
func (e *Executor[G, S, R]) AddInterceptor(i core.Interceptor[G, S, R]) {
	e.interceptors = append(e.interceptors, i)
}

// AddTerminator registers a stopping rule. The run stops as soon as the
// algorithm's own terminator or any registered one fires.
func (e *Executor[G, S, R]) AddTerminator(t core.Terminator[G, S, R]) {
	e.terminators = append(e.terminators, t)
}

// SetTimeout stops runs whose wall-clock time exceeds d. The check happens
// at iteration boundaries only; a zero d disables it.
func (e *Executor[G, S, R]) SetTimeout(d time.Duration) { e.timeout = d }

// Execute runs algorithm to termination and returns the final state. When
// initial is nil the algorithm builds iteration 0 itself.
func (e *Executor[G, S, R]) Execute(ctx context.Context, algorithm Algorithm[G, S, R], problem core.Problem[G, S], random *rng.Random, initial *R) (R, error) {
	run, err := e.Start(ctx, algorithm, problem, random, initial)
	if err != nil {
		var zero R
		return zero, err
	}
	for {
		ok, err := run.Next()
		if err != nil {
			var zero R
			return zero, err
		}
		if !ok {
			return run.State(), nil
		}
	}
}

// Start performs the Initializing phase and returns the run positioned on
// iteration 0, either Iterating or already Terminated.
func (e *Executor[G, S, R]) Start(ctx context.Context, algorithm Algorithm[G, S, R], problem core.Problem[G, S], random *rng.Random, initial *R) (*Run[G, S, R], error) {
	if algorithm == nil || problem == nil || random == nil {
		return nil, fmt.Errorf("engine: algorithm, problem and random are required: %w", core.ErrInvalidArgument)
	}

	r := &Run[G, S, R]{
		ctx:          ctx,
		algorithm:    algorithm,
		problem:      problem,
		space:        problem.SearchSpace(),
		random:       random,
		observers:    e.observers,
		interceptors: e.interceptors,
		terminators:  e.terminators,
		started:      time.Now(),
		logger:       klog.FromContext(ctx).WithValues("algorithm", algorithm.Name()),
	}
	if t := algorithm.Terminator(); t != nil {
		r.terminators = append([]core.Terminator[G, S, R]{t}, e.terminators...)
	}
	if e.timeout > 0 {
		r.deadline = r.started.Add(e.timeout)
	}

	if err := r.initialize(initial); err != nil {
		r.phase = Terminated
		return nil, err
	}
	return r, nil
}

// Run is one execution in progress.
type Run[G any, S core.SearchSpace[G], R core.State[R]] struct {
	ctx          context.Context
	algorithm    Algorithm[G, S, R]
	problem      core.Problem[G, S]
	space        S
	random       *rng.Random
	observers    []core.Observer[G, S, R]
	interceptors []core.Interceptor[G, S, R]
	terminators  []core.Terminator[G, S, R]

	phase    Phase
	current  R
	previous *R
	started  time.Time
	deadline time.Time
	logger   klog.Logger
}

func (r *Run[G, S, R]) Phase() Phase { return r.phase }

// State returns the last committed state.
func (r *Run[G, S, R]) State() R { return r.current }

// Previous returns the state before the last committed one, if any.
func (r *Run[G, S, R]) Previous() (R, bool) {
	if r.previous == nil {
		var zero R
		return zero, false
	}
	return *r.previous, true
}

func (r *Run[G, S, R]) Elapsed() time.Duration { return time.Since(r.started) }

func (r *Run[G, S, R]) initialize(initial *R) error {
	r.phase = Initializing
	r.logger.V(1).Info("Run started", "resumed", initial != nil)

	var state R
	if initial == nil {
		s, err := r.algorithm.Initialize(r.problem, r.random.Derive(0))
		if err != nil {
			return &core.ExecutionError{Iteration: 0, Stage: "initialize", Wrapped: core.Categorize(err, core.ErrComputation)}
		}
		state = s.WithIteration(0)
	} else {
		state = *initial
		if state.CurrentIteration() < 0 {
			return &core.ExecutionError{
				Iteration: state.CurrentIteration(),
				Stage:     "initialize",
				Wrapped:   fmt.Errorf("negative iteration %d: %w", state.CurrentIteration(), core.ErrInvalidArgument),
			}
		}
	}
	if err := r.validate(state); err != nil {
		return &core.ExecutionError{Iteration: state.CurrentIteration(), Stage: "initialize", Wrapped: err}
	}

	r.current = state
	r.phase = Iterating
	if r.shouldTerminate() {
		r.terminate()
	}
	return nil
}

// Next performs one iteration and reports whether one was committed. It
// returns false once the run is Terminated. An error terminates the run and
// leaves State at the last committed iteration.
func (r *Run[G, S, R]) Next() (bool, error) {
	if r.phase != Iterating {
		return false, nil
	}

	n := r.current.CurrentIteration() + 1
	if err := r.ctx.Err(); err != nil {
		return false, r.fail(n, "cancel", fmt.Errorf("%w: %w", core.ErrCanceled, err))
	}

	produced, err := r.algorithm.Step(r.current, r.problem, r.random.Derive(uint64(n)))
	if err != nil {
		return false, r.fail(n, "step", core.Categorize(err, core.ErrComputation))
	}
	committed := r.current
	for _, ic := range r.interceptors {
		produced, err = ic.Intercept(core.Transition[G, S, R]{
			Current:  produced.WithIteration(n),
			Previous: &committed,
			Space:    r.space,
			Problem:  r.problem,
		})
		if err != nil {
			return false, r.fail(n, "intercept", core.Categorize(err, core.ErrDomainViolation))
		}
	}
	if err := r.validate(produced); err != nil {
		return false, r.fail(n, "validate", err)
	}

	r.previous = &committed
	r.current = produced.WithIteration(n)
	r.logger.V(4).Info("Iteration committed", "iteration", n)

	tr := r.transition(r.current)
	for _, o := range r.observers {
		o.Observe(tr)
	}
	if r.shouldTerminate() {
		r.terminate()
	}
	return true, nil
}

func (r *Run[G, S, R]) transition(current R) core.Transition[G, S, R] {
	return core.Transition[G, S, R]{
		Current:  current,
		Previous: r.previous,
		Space:    r.space,
		Problem:  r.problem,
	}
}

func (r *Run[G, S, R]) shouldTerminate() bool {
	if !r.deadline.IsZero() && !time.Now().Before(r.deadline) {
		r.logger.V(2).Info("Timeout reached", "deadline", r.deadline)
		return true
	}
	tr := r.transition(r.current)
	for _, t := range r.terminators {
		if t.ShouldTerminate(tr) {
			return true
		}
	}
	return false
}

func (r *Run[G, S, R]) terminate() {
	r.phase = Terminated
	r.logger.V(1).Info("Run terminated", "iteration", r.current.CurrentIteration(), "elapsed", r.Elapsed())
}

func (r *Run[G, S, R]) fail(iteration int, stage string, err error) error {
	r.phase = Terminated
	r.logger.Error(err, "Run aborted", "iteration", iteration, "stage", stage)
	return &core.ExecutionError{Iteration: iteration, Stage: stage, Wrapped: err}
}

type sized interface {
	Size() int
}

func (r *Run[G, S, R]) validate(state R) error {
	if s, ok := any(state).(sized); ok && s.Size() == 0 {
		return fmt.Errorf("%w: empty population", core.ErrStateShape)
	}
	if v, ok := r.algorithm.(StateValidator[R]); ok {
		if err := v.ValidateState(state); err != nil {
			return core.Categorize(err, core.ErrStateShape)
		}
	}
	return nil
}
