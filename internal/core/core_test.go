package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/rng"
)

type digits = core.SearchSpaceFunc[int]

var digitSpace = digits(func(g int) bool { return g >= 0 && g < 10 })

// square minimizes g*g, failing for the value fail.
type square struct {
	fail int
}

func (p square) SearchSpace() digits       { return digitSpace }
func (p square) Objective() core.Objective { return core.SingleObjective("sq", core.Minimize) }
func (p square) Evaluate(g int, _ *rng.Random) (core.ObjectiveVector, error) {
	if g == p.fail {
		return nil, fmt.Errorf("cannot score %d", g)
	}
	return core.ObjectiveVector{float64(g * g)}, nil
}

func sequential() core.Evaluator[int, digits] {
	return core.EvaluatorFunc[int, digits](func(gs []int, r *rng.Random, _ digits, p core.Problem[int, digits]) ([]core.ObjectiveVector, error) {
		out := make([]core.ObjectiveVector, len(gs))
		for i, g := range gs {
			v, err := p.Evaluate(g, r)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	})
}

func TestObjective_Compare(t *testing.T) {
	o := core.Objective{{Name: "a", Direction: core.Minimize}, {Name: "b", Direction: core.Maximize}}
	a := core.ObjectiveVector{1, 5}
	b := core.ObjectiveVector{2, 3}

	assert.Negative(t, o.Compare(a, b, 0))
	assert.Negative(t, o.Compare(a, b, 1))
	assert.Zero(t, o.Compare(a, a, 1))
	assert.True(t, o.Dominates(a, b))
	assert.False(t, o.Dominates(b, a))
	assert.False(t, o.Dominates(a, a))
}

func TestObjective_Validate(t *testing.T) {
	o := core.SingleObjective("x", core.Minimize)
	assert.NoError(t, o.Validate(core.ObjectiveVector{1}))
	assert.ErrorIs(t, o.Validate(core.ObjectiveVector{1, 2}), core.ErrInvalidArgument)
	assert.ErrorIs(t, o.Validate(nil), core.ErrInvalidArgument)
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want core.Direction
		err  bool
	}{
		{"min", core.Minimize, false},
		{"Maximize", core.Maximize, false},
		{" max ", core.Maximize, false},
		{"", core.Minimize, false},
		{"sideways", core.Minimize, true},
	}
	for _, tt := range tests {
		got, err := core.ParseDirection(tt.in)
		if tt.err {
			assert.ErrorIs(t, err, core.ErrInvalidArgument, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSolution_Immutable(t *testing.T) {
	scores := core.ObjectiveVector{1, 2}
	s := core.NewSolution(3, scores)
	scores[0] = 99
	assert.Equal(t, 1.0, s.Objective(0))

	out := s.Objectives()
	out[1] = 99
	assert.Equal(t, 2.0, s.Objective(1))

	r := s.WithObjectives(core.ObjectiveVector{7, 7})
	assert.Equal(t, 1.0, s.Objective(0))
	assert.Equal(t, 7.0, r.Objective(0))
	assert.Equal(t, 3, r.Genotype())
}

func TestPopulation_Best(t *testing.T) {
	o := core.SingleObjective("x", core.Maximize)
	pop := core.Population[int]{
		core.NewSolution(0, core.ObjectiveVector{1}),
		core.NewSolution(1, core.ObjectiveVector{5}),
		core.NewSolution(2, core.ObjectiveVector{3}),
	}
	assert.Equal(t, 1, pop.Best(o))
	assert.Equal(t, -1, core.Population[int]{}.Best(o))
	assert.Equal(t, []int{0, 1, 2}, pop.Genotypes())
}

func TestStates_CopyWith(t *testing.T) {
	pop := core.Population[int]{core.NewSolution(4, core.ObjectiveVector{16})}
	ps := core.NewPopulationState(0, pop)
	next := ps.WithIteration(3)

	assert.Equal(t, 0, ps.CurrentIteration())
	assert.Equal(t, 3, next.CurrentIteration())
	assert.Equal(t, 1, next.Size())

	pop[0] = core.NewSolution(9, nil)
	assert.Equal(t, 4, ps.Population()[0].Genotype(), "state must not alias the caller's slice")

	leaked := ps.Population()
	leaked[0] = core.NewSolution(8, nil)
	assert.Equal(t, 4, ps.Population()[0].Genotype())

	base := core.NewIterationState(2)
	assert.Equal(t, 5, base.WithIteration(5).CurrentIteration())
	assert.Equal(t, 2, base.CurrentIteration())
}

func TestSingleSolutionState_Arity(t *testing.T) {
	two := core.Population[int]{
		core.NewSolution(1, core.ObjectiveVector{1}),
		core.NewSolution(2, core.ObjectiveVector{4}),
	}
	_, err := core.NewSingleSolutionState(0, two)
	assert.ErrorIs(t, err, core.ErrStateShape)

	_, err = core.NewSingleSolutionState[int](0, nil)
	assert.ErrorIs(t, err, core.ErrStateShape)

	var zero core.SingleSolutionState[int]
	_, err = zero.Solution()
	assert.ErrorIs(t, err, core.ErrStateShape)

	s := core.SingleSolution(0, two[0])
	got, err := s.Solution()
	require.NoError(t, err)
	assert.Equal(t, 1, got.Genotype())

	moved := s.WithIteration(1).WithSolution(two[1])
	got, err = moved.Solution()
	require.NoError(t, err)
	assert.Equal(t, 2, got.Genotype())
	assert.Equal(t, 1, moved.CurrentIteration())
}

func TestShouldContinue_IsNegation(t *testing.T) {
	type state = core.IterationState
	atLeast := func(n int) core.Terminator[int, digits, state] {
		return core.TerminatorFunc[int, digits, state](func(tr core.Transition[int, digits, state]) bool {
			return tr.Current.CurrentIteration() >= n
		})
	}
	for it := 0; it < 10; it++ {
		tr := core.Transition[int, digits, state]{Current: core.NewIterationState(it), Space: digitSpace, Problem: square{fail: -1}}
		for _, n := range []int{0, 3, 7} {
			term := atLeast(n)
			assert.Equal(t, !term.ShouldTerminate(tr), core.ShouldContinue(term, tr))
		}
	}
}

func TestCreate_Checks(t *testing.T) {
	r := rng.New(1)
	good := core.CreatorFunc[int, digits](func(n int, r *rng.Random, _ digits) ([]int, error) {
		out := make([]int, n)
		for i := range out {
			out[i] = r.Intn(10)
		}
		return out, nil
	})
	out, err := core.Create[int, digits](good, 5, r, digitSpace)
	require.NoError(t, err)
	assert.Len(t, out, 5)

	_, err = core.Create[int, digits](good, 0, r, digitSpace)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	short := core.CreatorFunc[int, digits](func(n int, _ *rng.Random, _ digits) ([]int, error) {
		return make([]int, n-1), nil
	})
	_, err = core.Create[int, digits](short, 3, r, digitSpace)
	assert.ErrorIs(t, err, core.ErrDomainViolation)

	escape := core.CreatorFunc[int, digits](func(n int, _ *rng.Random, _ digits) ([]int, error) {
		return []int{42}, nil
	})
	_, err = core.Create[int, digits](escape, 1, r, digitSpace)
	assert.ErrorIs(t, err, core.ErrDomainViolation)
}

func TestEvaluatePopulation_PairsByIndex(t *testing.T) {
	pop, err := core.EvaluatePopulation(sequential(), []int{3, 1, 2}, rng.New(0), digitSpace, core.Problem[int, digits](square{fail: -1}))
	require.NoError(t, err)
	got := make([]float64, len(pop))
	for i, s := range pop {
		got[i] = s.Objective(0)
	}
	if diff := cmp.Diff([]float64{9, 1, 4}, got); diff != "" {
		t.Errorf("scores mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	problem := core.Problem[int, digits](square{fail: 5})
	r := rng.New(0)

	_, err := core.Evaluate(sequential(), []int{1, 5}, r, digitSpace, problem)
	assert.ErrorIs(t, err, core.ErrComputation)

	_, err = core.Evaluate(sequential(), []int{11}, r, digitSpace, problem)
	assert.ErrorIs(t, err, core.ErrDomainViolation)

	short := core.EvaluatorFunc[int, digits](func(gs []int, _ *rng.Random, _ digits, _ core.Problem[int, digits]) ([]core.ObjectiveVector, error) {
		return []core.ObjectiveVector{{1}}, nil
	})
	_, err = core.Evaluate(short, []int{1, 2}, r, digitSpace, problem)
	assert.ErrorIs(t, err, core.ErrDomainViolation)

	wide := core.EvaluatorFunc[int, digits](func(gs []int, _ *rng.Random, _ digits, _ core.Problem[int, digits]) ([]core.ObjectiveVector, error) {
		return []core.ObjectiveVector{{1, 2}}, nil
	})
	_, err = core.Evaluate(wide, []int{1}, r, digitSpace, problem)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestSelect_Size(t *testing.T) {
	problem := core.Problem[int, digits](square{fail: -1})
	pop := core.Population[int]{core.NewSolution(1, core.ObjectiveVector{1})}
	first := core.SelectorFunc[int, digits](func(p core.Population[int], _ core.Objective, n int, _ *rng.Random, _ digits, _ core.Problem[int, digits]) (core.Population[int], error) {
		return p[:1], nil
	})

	got, err := core.Select(first, pop, problem.Objective(), 1, rng.New(0), digitSpace, problem)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = core.Select(first, pop, problem.Objective(), 2, rng.New(0), digitSpace, problem)
	assert.ErrorIs(t, err, core.ErrDomainViolation)

	_, err = core.Select(first, nil, problem.Objective(), 1, rng.New(0), digitSpace, problem)
	assert.ErrorIs(t, err, core.ErrStateShape)

	_, err = core.Select(first, pop, problem.Objective(), -1, rng.New(0), digitSpace, problem)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestMutateAndCross_Closure(t *testing.T) {
	problem := core.Problem[int, digits](square{fail: -1})
	inc := core.MutatorFunc[int, digits](func(ps []int, _ *rng.Random, _ digits, _ core.Problem[int, digits]) ([]int, error) {
		out := make([]int, len(ps))
		for i, p := range ps {
			out[i] = p + 1
		}
		return out, nil
	})
	children, err := core.Mutate(inc, []int{1, 2}, rng.New(0), digitSpace, problem)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, children)

	_, err = core.Mutate(inc, []int{9}, rng.New(0), digitSpace, problem)
	assert.ErrorIs(t, err, core.ErrDomainViolation)

	_, err = core.Mutate(inc, nil, rng.New(0), digitSpace, problem)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	sum := core.CrossoverFunc[int, digits](func(a, b int, _ *rng.Random, _ digits) ([]int, error) {
		return []int{a + b}, nil
	})
	kids, err := core.Cross(sum, 2, 3, rng.New(0), digitSpace)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, kids)

	_, err = core.Cross(sum, 6, 7, rng.New(0), digitSpace)
	assert.ErrorIs(t, err, core.ErrDomainViolation)
}

func TestCategorize_KeepsExistingCategory(t *testing.T) {
	failing := core.CreatorFunc[int, digits](func(int, *rng.Random, digits) ([]int, error) {
		return nil, fmt.Errorf("wrapped: %w", core.ErrStateShape)
	})
	_, err := core.Create[int, digits](failing, 1, rng.New(0), digitSpace)
	assert.ErrorIs(t, err, core.ErrStateShape)
	assert.False(t, errors.Is(err, core.ErrDomainViolation))
}

func TestExecutionError_Unwrap(t *testing.T) {
	err := error(&core.ExecutionError{Iteration: 4, Stage: "step", Wrapped: core.ErrComputation})
	assert.ErrorIs(t, err, core.ErrComputation)
	assert.Equal(t, "iteration 4 (step): core: computation failure", err.Error())

	var ee *core.ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 4, ee.Iteration)
}
