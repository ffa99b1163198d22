package realvector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/rng"
)

func box(t *testing.T) Bounds {
	t.Helper()
	b, err := NewBounds([]float64{-1, 0, 10}, []float64{1, 5, 10})
	require.NoError(t, err)
	return b
}

func TestBounds(t *testing.T) {
	b := box(t)
	assert.Equal(t, 3, b.Dim())
	assert.True(t, b.Contains(Genotype{0, 5, 10}))
	assert.False(t, b.Contains(Genotype{0, 5.1, 10}))
	assert.False(t, b.Contains(Genotype{math.NaN(), 1, 10}))
	assert.False(t, b.Contains(Genotype{0, 1}))

	assert.Equal(t, Genotype{-1, 5, 10}, b.Clamp(Genotype{-3, 7, math.NaN()}))

	_, err := NewBounds([]float64{1}, []float64{0})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	_, err = NewBounds([]float64{0}, []float64{1, 2})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	_, err = Uniform(0, 0, 1)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestOperators_StayInBounds(t *testing.T) {
	b := box(t)
	parents, err := core.Create[Genotype, Bounds](UniformCreator{}, 40, rng.New(3), b)
	require.NoError(t, err)

	mutators := map[string]core.Mutator[Genotype, Bounds]{
		"gaussian":   GaussianMutator{Sigma: 2, Rate: 1},
		"polynomial": PolynomialMutator{Eta: 5, Rate: 1},
	}
	for name, m := range mutators {
		children, err := core.Mutate[Genotype, Bounds](m, parents, rng.New(8), b, nil)
		require.NoError(t, err, name)
		assert.Len(t, children, len(parents))
	}

	for i := 0; i+1 < len(parents); i += 2 {
		kids, err := core.Cross[Genotype, Bounds](SBXCrossover{Eta: 2, Rate: 1}, parents[i], parents[i+1], rng.New(uint64(i)), b)
		require.NoError(t, err)
		require.Len(t, kids, 2)
	}
}

func TestSBX_PreservesMidpoint(t *testing.T) {
	b, err := Uniform(4, -100, 100)
	require.NoError(t, err)
	x := Genotype{1, 2, 3, 4}
	y := Genotype{-4, 0, 8, 4}
	kids, err := SBXCrossover{Rate: 1}.Cross(x, y, rng.New(12), b)
	require.NoError(t, err)
	for i := range x {
		assert.InDelta(t, x[i]+y[i], kids[0][i]+kids[1][i], 1e-9)
	}
}

func TestMutators_DoNotTouchParents(t *testing.T) {
	b := box(t)
	parent := Genotype{0.5, 2, 10}
	_, err := GaussianMutator{Sigma: 0.3, Rate: 1}.Mutate([]Genotype{parent}, rng.New(1), b, nil)
	require.NoError(t, err)
	assert.Equal(t, Genotype{0.5, 2, 10}, parent)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key(Genotype{1, 2}), Key(Genotype{1, 2}))
	assert.NotEqual(t, Key(Genotype{1, 2}), Key(Genotype{1, 2.0000000001}))
}

func TestBoundsInterceptor(t *testing.T) {
	b := box(t)
	type state = core.PopulationState[Genotype]
	ic := BoundsInterceptor[state]()

	ok := core.NewPopulationState(1, core.Population[Genotype]{core.NewSolution(Genotype{0, 1, 10}, core.ObjectiveVector{0})})
	_, err := ic.Intercept(core.Transition[Genotype, Bounds, state]{Current: ok, Space: b})
	assert.NoError(t, err)

	bad := core.NewPopulationState(1, core.Population[Genotype]{core.NewSolution(Genotype{9, 1, 10}, core.ObjectiveVector{0})})
	_, err = ic.Intercept(core.Transition[Genotype, Bounds, state]{Current: bad, Space: b})
	assert.ErrorIs(t, err, core.ErrDomainViolation)
}
