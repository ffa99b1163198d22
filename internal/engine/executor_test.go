package engine_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/engine"
	"github.com/san-kum/metaheur/internal/rng"
)

var _ = Describe("Executor", func() {
	var (
		ctx     context.Context
		exec    *engine.Executor[int, digits, trace]
		alg     *counter
		problem core.Problem[int, digits]
	)

	BeforeEach(func() {
		ctx = context.Background()
		exec = engine.New[int, digits, trace]()
		alg = &counter{}
		problem = constant{}
	})

	It("stops at exactly the iteration the terminator asks for", func() {
		exec.AddTerminator(atLeast(5))
		final, err := exec.Execute(ctx, alg, problem, rng.New(1), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(final.CurrentIteration()).To(Equal(5))
		Expect(final.value).To(Equal(5))
		Expect(alg.steps.Load()).To(BeEquivalentTo(5))
	})

	It("honours the algorithm's own terminator", func() {
		alg.stop = atLeast(3)
		final, err := exec.Execute(ctx, alg, problem, rng.New(1), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(final.CurrentIteration()).To(Equal(3))
	})

	It("advances the iteration by exactly one per step", func() {
		var pairs [][2]int
		exec.AddObserver(core.ObserverFunc[int, digits, trace](func(tr core.Transition[int, digits, trace]) {
			Expect(tr.HasPrevious()).To(BeTrue())
			pairs = append(pairs, [2]int{tr.Previous.CurrentIteration(), tr.Current.CurrentIteration()})
		}))
		exec.AddTerminator(atLeast(8))

		_, err := exec.Execute(ctx, alg, problem, rng.New(3), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(pairs).To(HaveLen(8))
		for i, p := range pairs {
			Expect(p).To(Equal([2]int{i, i + 1}))
		}
	})

	It("hands iteration n a generator derived from n", func() {
		exec.AddTerminator(atLeast(4))
		parent := rng.New(77)
		final, err := exec.Execute(ctx, alg, problem, parent, nil)
		Expect(err).NotTo(HaveOccurred())

		want := make([]uint64, 5)
		for n := range want {
			want[n] = rng.New(77).Derive(uint64(n)).Key()
		}
		Expect(final.keys).To(Equal(want))
		Expect(parent.Key()).To(Equal(uint64(77)), "the parent generator is never consumed")
	})

	It("reproduces the same run from the same seed", func() {
		exec.AddTerminator(atLeast(6))
		a, err := exec.Execute(ctx, alg, problem, rng.New(5), nil)
		Expect(err).NotTo(HaveOccurred())
		b, err := exec.Execute(ctx, &counter{}, problem, rng.New(5), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
	})

	It("performs no iterations when the initial state already satisfies the terminator", func() {
		exec.AddTerminator(atLeast(0))
		run, err := exec.Start(ctx, alg, problem, rng.New(1), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(run.Phase()).To(Equal(engine.Terminated))
		Expect(run.State().CurrentIteration()).To(Equal(0))
		Expect(alg.steps.Load()).To(BeZero())
	})

	It("resumes from a supplied initial state", func() {
		exec.AddTerminator(atLeast(10))
		initial := trace{iteration: 7, keys: []uint64{1}}
		final, err := exec.Execute(ctx, alg, problem, rng.New(1), &initial)
		Expect(err).NotTo(HaveOccurred())
		Expect(final.CurrentIteration()).To(Equal(10))
		Expect(alg.steps.Load()).To(BeEquivalentTo(3))
	})

	It("rejects a supplied state of the wrong shape", func() {
		exec.AddTerminator(atLeast(3))
		_, err := exec.Execute(ctx, strict{alg}, problem, rng.New(1), &trace{})
		Expect(err).To(MatchError(core.ErrStateShape))

		var ee *core.ExecutionError
		Expect(errors.As(err, &ee)).To(BeTrue())
		Expect(ee.Stage).To(Equal("initialize"))
	})

	It("rejects a negative starting iteration", func() {
		_, err := exec.Execute(ctx, alg, problem, rng.New(1), &trace{iteration: -1})
		Expect(err).To(MatchError(core.ErrInvalidArgument))
	})

	It("aborts on a failing step without exposing the partial iteration", func() {
		alg.failAt = 3
		exec.AddTerminator(atLeast(10))
		run, err := exec.Start(ctx, alg, problem, rng.New(1), nil)
		Expect(err).NotTo(HaveOccurred())

		var stepErr error
		for {
			ok, err := run.Next()
			if err != nil {
				stepErr = err
				break
			}
			Expect(ok).To(BeTrue())
		}

		Expect(stepErr).To(MatchError(core.ErrComputation))
		var ee *core.ExecutionError
		Expect(errors.As(stepErr, &ee)).To(BeTrue())
		Expect(ee.Iteration).To(Equal(3))
		Expect(ee.Stage).To(Equal("step"))
		Expect(run.State().CurrentIteration()).To(Equal(2))
		Expect(run.Phase()).To(Equal(engine.Terminated))
	})

	It("does nothing once terminated", func() {
		exec.AddTerminator(atLeast(2))
		run, err := exec.Start(ctx, alg, problem, rng.New(1), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(run.Phase()).To(Equal(engine.Iterating))

		for {
			ok, err := run.Next()
			Expect(err).NotTo(HaveOccurred())
			if !ok {
				break
			}
		}
		steps := alg.steps.Load()
		for i := 0; i < 3; i++ {
			ok, err := run.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		}
		Expect(alg.steps.Load()).To(Equal(steps))
		Expect(run.State().CurrentIteration()).To(Equal(2))

		prev, ok := run.Previous()
		Expect(ok).To(BeTrue())
		Expect(prev.CurrentIteration()).To(Equal(1))
	})

	It("lets interceptors rewrite the state before observers see it", func() {
		exec.AddInterceptor(core.InterceptorFunc[int, digits, trace](func(tr core.Transition[int, digits, trace]) (trace, error) {
			next := tr.Current
			next.value *= 10
			return next, nil
		}))
		var seen []int
		exec.AddObserver(core.ObserverFunc[int, digits, trace](func(tr core.Transition[int, digits, trace]) {
			seen = append(seen, tr.Current.value)
		}))
		exec.AddTerminator(atLeast(2))

		_, err := exec.Execute(ctx, alg, problem, rng.New(1), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(Equal([]int{10, 110}))
	})

	It("hands interceptors iteration n with the committed iteration n-1 as previous", func() {
		var pairs [][2]int
		exec.AddInterceptor(core.InterceptorFunc[int, digits, trace](func(tr core.Transition[int, digits, trace]) (trace, error) {
			Expect(tr.HasPrevious()).To(BeTrue())
			pairs = append(pairs, [2]int{tr.Previous.CurrentIteration(), tr.Current.CurrentIteration()})
			return tr.Current, nil
		}))
		exec.AddTerminator(atLeast(3))

		_, err := exec.Execute(ctx, alg, problem, rng.New(1), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(pairs).To(Equal([][2]int{{0, 1}, {1, 2}, {2, 3}}))
	})

	It("reports interceptor failures as domain violations", func() {
		exec.AddInterceptor(core.InterceptorFunc[int, digits, trace](func(core.Transition[int, digits, trace]) (trace, error) {
			return trace{}, errors.New("bounds lost")
		}))
		exec.AddTerminator(atLeast(2))
		_, err := exec.Execute(ctx, alg, problem, rng.New(1), nil)
		Expect(err).To(MatchError(core.ErrDomainViolation))
	})

	It("surfaces cancellation at the next iteration boundary", func() {
		cctx, cancel := context.WithCancel(ctx)
		exec.AddObserver(core.ObserverFunc[int, digits, trace](func(tr core.Transition[int, digits, trace]) {
			if tr.Current.CurrentIteration() == 2 {
				cancel()
			}
		}))
		exec.AddTerminator(atLeast(100))

		_, err := exec.Execute(cctx, alg, problem, rng.New(1), nil)
		Expect(err).To(MatchError(core.ErrCanceled))
		Expect(err).To(MatchError(context.Canceled))
		Expect(alg.steps.Load()).To(BeEquivalentTo(2))
	})

	It("stops cleanly when the timeout elapses", func() {
		alg.delay = 5 * time.Millisecond
		exec.SetTimeout(30 * time.Millisecond)
		exec.AddTerminator(atLeast(10_000))

		final, err := exec.Execute(ctx, alg, problem, rng.New(1), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(final.CurrentIteration()).To(BeNumerically(">=", 1))
		Expect(final.CurrentIteration()).To(BeNumerically("<", 10_000))
	})

	It("requires an algorithm, a problem and a generator", func() {
		_, err := exec.Execute(ctx, alg, problem, nil, nil)
		Expect(err).To(MatchError(core.ErrInvalidArgument))
	})

	DescribeTable("ShouldContinue is the negation of ShouldTerminate",
		func(limit, iteration int) {
			term := atLeast(limit)
			tr := core.Transition[int, digits, trace]{Current: trace{iteration: iteration}, Problem: problem}
			Expect(core.ShouldContinue(term, tr)).To(Equal(!term.ShouldTerminate(tr)))
		},
		Entry("before the limit", 5, 4),
		Entry("at the limit", 5, 5),
		Entry("past the limit", 5, 6),
		Entry("zero limit", 0, 0),
	)
})

var _ = Describe("Phase", func() {
	It("names every phase", func() {
		Expect(engine.Initializing.String()).To(Equal("initializing"))
		Expect(engine.Iterating.String()).To(Equal("iterating"))
		Expect(engine.Terminated.String()).To(Equal("terminated"))
	})
})
