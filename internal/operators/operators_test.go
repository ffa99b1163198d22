package operators

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/rng"
)

type ints = core.SearchSpaceFunc[int]

var anyInt = ints(func(int) bool { return true })

// noisy scores g as g plus uniform noise, failing on fail.
type noisy struct {
	fail int
	dirs core.Objective
}

func (noisy) SearchSpace() ints { return anyInt }

func (p noisy) Objective() core.Objective {
	if p.dirs != nil {
		return p.dirs
	}
	return core.SingleObjective("g", core.Minimize)
}

func (p noisy) Evaluate(g int, r *rng.Random) (core.ObjectiveVector, error) {
	if g == p.fail {
		return nil, errors.New("bad genotype")
	}
	return core.ObjectiveVector{float64(g) + r.Random()}, nil
}

func problem() core.Problem[int, ints] { return noisy{fail: -1} }

func pop(scores ...float64) core.Population[int] {
	out := make(core.Population[int], len(scores))
	for i, s := range scores {
		out[i] = core.NewSolution(i, core.ObjectiveVector{s})
	}
	return out
}

func TestParallelEvaluator_MatchesSequential(t *testing.T) {
	genotypes := make([]int, 64)
	for i := range genotypes {
		genotypes[i] = i
	}
	seq, err := SequentialEvaluator[int, ints]{}.Evaluate(genotypes, rng.New(11), anyInt, problem())
	require.NoError(t, err)

	for _, workers := range []int{1, 3, 16} {
		par, err := NewParallelEvaluator[int, ints](workers).Evaluate(genotypes, rng.New(11), anyInt, problem())
		require.NoError(t, err)
		if diff := cmp.Diff(seq, par); diff != "" {
			t.Errorf("workers=%d (-seq +par):\n%s", workers, diff)
		}
	}
}

func TestParallelEvaluator_Error(t *testing.T) {
	_, err := NewParallelEvaluator[int, ints](4).Evaluate([]int{1, 2, 3}, rng.New(1), anyInt, noisy{fail: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "genotype 1")

	out, err := NewParallelEvaluator[int, ints](4).Evaluate(nil, rng.New(1), anyInt, problem())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCachingEvaluator(t *testing.T) {
	det := core.EvaluatorFunc[int, ints](func(gs []int, _ *rng.Random, _ ints, _ core.Problem[int, ints]) ([]core.ObjectiveVector, error) {
		out := make([]core.ObjectiveVector, len(gs))
		for i, g := range gs {
			out[i] = core.ObjectiveVector{float64(g * 2)}
		}
		return out, nil
	})
	counting := NewCountingEvaluator[int, ints](det)
	cache, err := NewCachingEvaluator[int, ints](counting, 8, nil)
	require.NoError(t, err)

	first, err := cache.Evaluate([]int{1, 2, 3}, rng.New(0), anyInt, problem())
	require.NoError(t, err)
	second, err := cache.Evaluate([]int{3, 4, 1}, rng.New(0), anyInt, problem())
	require.NoError(t, err)

	assert.Equal(t, []core.ObjectiveVector{{2}, {4}, {6}}, first)
	assert.Equal(t, []core.ObjectiveVector{{6}, {8}, {2}}, second)
	assert.EqualValues(t, 4, counting.Evaluations())
	assert.EqualValues(t, 2, cache.Hits())

	_, err = NewCachingEvaluator[int, ints](det, 0, nil)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestCountingEvaluator_Concurrent(t *testing.T) {
	c := NewCountingEvaluator[int, ints](SequentialEvaluator[int, ints]{})
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Evaluate(make([]int, 10), rng.New(uint64(w)), anyInt, problem())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 80, c.Evaluations())
	assert.EqualValues(t, 8, c.Calls())

	c.Reset()
	assert.Zero(t, c.Evaluations())
}

func TestParallelCreator_IndependentOfWorkers(t *testing.T) {
	draw := core.CreatorFunc[int, ints](func(n int, r *rng.Random, _ ints) ([]int, error) {
		out := make([]int, n)
		for i := range out {
			out[i] = r.Intn(1000)
		}
		return out, nil
	})
	a, err := NewParallelCreator[int, ints](draw, 1).Create(20, rng.New(5), anyInt)
	require.NoError(t, err)
	b, err := NewParallelCreator[int, ints](draw, 7).Create(20, rng.New(5), anyInt)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = NewParallelCreator[int, ints](draw, 2).Create(0, rng.New(5), anyInt)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestTournamentSelector(t *testing.T) {
	p := pop(5, 1, 9, 3)
	sel := TournamentSelector[int, ints]{Size: 2}
	got, err := core.Select[int, ints](sel, p, problem().Objective(), 50, rng.New(3), anyInt, problem())
	require.NoError(t, err)
	require.Len(t, got, 50)
	counts := map[int]int{}
	for _, s := range got {
		counts[s.Genotype()]++
		assert.Equal(t, p[s.Genotype()].Objective(0), s.Objective(0))
	}
	assert.Greater(t, counts[1], counts[2], "the best solution should win far more often than the worst")

	full := TournamentSelector[int, ints]{Size: 64}
	best, err := full.Select(p, problem().Objective(), 1, rng.New(1), anyInt, problem())
	require.NoError(t, err)
	assert.Equal(t, 1, best[0].Genotype())

	_, err = TournamentSelector[int, ints]{}.Select(p, problem().Objective(), 1, rng.New(1), anyInt, problem())
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestUniformSelector(t *testing.T) {
	got, err := UniformSelector[int, ints]{}.Select(pop(1, 2), problem().Objective(), 5, rng.New(1), anyInt, problem())
	require.NoError(t, err)
	assert.Len(t, got, 5)

	_, err = UniformSelector[int, ints]{}.Select(nil, problem().Objective(), 1, rng.New(1), anyInt, problem())
	assert.ErrorIs(t, err, core.ErrStateShape)
}

func TestElitistSelector(t *testing.T) {
	got, err := ElitistSelector[int, ints]{}.Select(pop(5, 1, 9, 3), problem().Objective(), 2, nil, anyInt, problem())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, got.Genotypes())

	_, err = ElitistSelector[int, ints]{}.Select(pop(1), problem().Objective(), 2, nil, anyInt, problem())
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestElitistSelector_MultiObjective(t *testing.T) {
	two := core.Objective{{Name: "a"}, {Name: "b"}}
	p := core.Population[int]{
		core.NewSolution(0, core.ObjectiveVector{3, 3}),
		core.NewSolution(1, core.ObjectiveVector{1, 4}),
		core.NewSolution(2, core.ObjectiveVector{4, 1}),
		core.NewSolution(3, core.ObjectiveVector{2, 2}),
		core.NewSolution(4, core.ObjectiveVector{5, 5}),
	}
	got := Truncate(p, two, 3)
	assert.ElementsMatch(t, []int{1, 2, 3}, got.Genotypes())
	assert.Equal(t, 0, Truncate(p, two, 4).Genotypes()[3])
}

type popState = core.PopulationState[int]

func transition(current popState, previous *popState) core.Transition[int, ints, popState] {
	return core.Transition[int, ints, popState]{Current: current, Previous: previous, Space: anyInt, Problem: problem()}
}

func TestTerminators(t *testing.T) {
	at := func(it int, scores ...float64) popState { return core.NewPopulationState(it, pop(scores...)) }

	max3 := MaxIterations[int, ints, popState](3)
	assert.False(t, max3.ShouldTerminate(transition(at(2, 1), nil)))
	assert.True(t, max3.ShouldTerminate(transition(at(3, 1), nil)))

	target := TargetObjective[int, ints, popState](0, 0.5)
	assert.False(t, target.ShouldTerminate(transition(at(1, 3, 1), nil)))
	assert.True(t, target.ShouldTerminate(transition(at(1, 3, 0.5), nil)))
	for _, goal := range []int{-1, 1, 7} {
		outside := TargetObjective[int, ints, popState](goal, 0.5)
		assert.False(t, outside.ShouldTerminate(transition(at(1, 3, 0.5), nil)), "goal %d", goal)
	}

	stop := &StopSignal[int, ints, popState]{}
	assert.False(t, stop.ShouldTerminate(transition(at(0, 1), nil)))
	stop.Stop()
	assert.True(t, stop.ShouldTerminate(transition(at(0, 1), nil)))
	assert.True(t, stop.Stopped())

	requested := false
	polled := StopWhen[int, ints, popState](func() bool { return requested })
	assert.False(t, polled.ShouldTerminate(transition(at(0, 1), nil)))
	requested = true
	assert.True(t, polled.ShouldTerminate(transition(at(1, 1), nil)))
	requested = false
	assert.True(t, polled.ShouldTerminate(transition(at(2, 1), nil)), "a polled stop latches")
	assert.True(t, polled.Stopped())

	past := Deadline[int, ints, popState](time.Now().Add(-time.Second))
	future := Deadline[int, ints, popState](time.Now().Add(time.Hour))
	assert.True(t, past.ShouldTerminate(transition(at(0, 1), nil)))
	assert.False(t, future.ShouldTerminate(transition(at(0, 1), nil)))

	tr := transition(at(5, 1), nil)
	assert.True(t, Any(future, max3).ShouldTerminate(tr))
	assert.False(t, All(future, max3).ShouldTerminate(tr))
	assert.True(t, All(past, max3).ShouldTerminate(tr))
	assert.False(t, All[int, ints, popState]().ShouldTerminate(tr))
	assert.False(t, Any[int, ints, popState]().ShouldTerminate(tr))
}

func TestTerminators_Duality(t *testing.T) {
	terms := map[string]core.Terminator[int, ints, popState]{
		"max":    MaxIterations[int, ints, popState](4),
		"target": TargetObjective[int, ints, popState](0, 2),
		"any":    Any(MaxIterations[int, ints, popState](2), TargetObjective[int, ints, popState](0, 0)),
	}
	for name, term := range terms {
		for it := 0; it < 8; it++ {
			tr := transition(core.NewPopulationState(it, pop(float64(8-it))), nil)
			assert.Equal(t, !term.ShouldTerminate(tr), core.ShouldContinue(term, tr), "%s at %d", name, it)
		}
	}
}

func TestConvergence(t *testing.T) {
	c := &Convergence[int, ints, popState]{Patience: 2, Epsilon: 0.1}
	series := []float64{10, 5, 4.95, 4.93, 4.92}
	var prev *popState
	var fired []bool
	for it, v := range series {
		cur := core.NewPopulationState(it, pop(v))
		fired = append(fired, c.ShouldTerminate(transition(cur, prev)))
		prev = &cur
	}
	assert.Equal(t, []bool{false, false, false, true, true}, fired)

	restart := core.NewPopulationState(0, pop(100))
	assert.False(t, c.ShouldTerminate(transition(restart, nil)))
}

func TestChainAndSortPopulation(t *testing.T) {
	drop := core.InterceptorFunc[int, ints, popState](func(tr core.Transition[int, ints, popState]) (popState, error) {
		p := tr.Current.Population()
		return tr.Current.WithPopulation(p[1:]), nil
	})
	chain := Chain(SortPopulation[int, ints](), drop)
	out, err := chain.Intercept(transition(core.NewPopulationState(1, pop(4, 2, 8)), nil))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, out.Population().Genotypes())

	failing := core.InterceptorFunc[int, ints, popState](func(core.Transition[int, ints, popState]) (popState, error) {
		return popState{}, fmt.Errorf("nope")
	})
	_, err = Chain(failing, drop).Intercept(transition(core.NewPopulationState(1, pop(1)), nil))
	assert.Error(t, err)
}

func TestHistoryAndProgress(t *testing.T) {
	h := NewHistory[int, ints, popState]()
	pr := NewProgress[int, ints, popState](1)
	var calls int
	obs := Multi[int, ints, popState](h, pr, core.ObserverFunc[int, ints, popState](func(core.Transition[int, ints, popState]) { calls++ }))

	s0 := core.NewPopulationState(0, pop(5, 7))
	s1 := core.NewPopulationState(1, pop(3, 7))
	s2 := core.NewPopulationState(2, pop(2, 2))
	obs.Observe(transition(s1, &s0))
	obs.Observe(transition(s2, &s1))

	assert.Equal(t, 2, calls)
	assert.Equal(t, []float64{5, 3, 2}, h.BestSeries(0))
	snaps := h.Snapshots()
	require.Len(t, snaps, 3)
	assert.Equal(t, []float64{5}, snaps[1].Mean)
	assert.Equal(t, 2, snaps[2].Size)

	first := <-pr.C()
	assert.Equal(t, 1, first.Iteration)
	assert.EqualValues(t, 1, pr.Drops())
	pr.Close()
	pr.Close()

	h.Reset()
	assert.Empty(t, h.Snapshots())
}

func TestSummarize_NoPopulation(t *testing.T) {
	snap := Summarize[int](core.NewIterationState(4), problem().Objective())
	assert.Equal(t, 4, snap.Iteration)
	assert.Nil(t, snap.Best)
	assert.Zero(t, snap.Size)
}
