package problems

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/encoding/permutation"
	"github.com/san-kum/metaheur/internal/encoding/realvector"
	"github.com/san-kum/metaheur/internal/rng"
)

func TestSphere(t *testing.T) {
	p, err := NewSphere(3, -5, 5, 0)
	require.NoError(t, err)
	v, err := p.Evaluate(realvector.Genotype{1, 2, -2}, rng.New(0))
	require.NoError(t, err)
	assert.Equal(t, core.ObjectiveVector{9}, v)

	_, err = p.Evaluate(realvector.Genotype{6, 0, 0}, rng.New(0))
	assert.ErrorIs(t, err, core.ErrDomainViolation)

	_, err = NewSphere(3, -5, 5, -1)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestSphere_NoiseFollowsGenerator(t *testing.T) {
	p, err := NewSphere(2, -1, 1, 0.5)
	require.NoError(t, err)
	g := realvector.Genotype{0.1, 0.2}
	a, _ := p.Evaluate(g, rng.New(4))
	b, _ := p.Evaluate(g, rng.New(4))
	c, _ := p.Evaluate(g, rng.New(5))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestRastrigin(t *testing.T) {
	p, err := NewRastrigin(4)
	require.NoError(t, err)
	v, err := p.Evaluate(realvector.Genotype{0, 0, 0, 0}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0, v[0], 1e-12)

	v, err = p.Evaluate(realvector.Genotype{1, 1, 1, 1}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 4, v[0], 1e-9)
}

func TestZDT1(t *testing.T) {
	p, err := NewZDT1(5)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Objective().Dim())

	v, err := p.Evaluate(realvector.Genotype{0.25, 0, 0, 0, 0}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, v[0], 1e-12)
	assert.InDelta(t, 0.5, v[1], 1e-12)

	front := p.TrueParetoFront(11)
	require.Len(t, front, 11)
	assert.Equal(t, core.ObjectiveVector{0, 1}, front[0])
	assert.Equal(t, core.ObjectiveVector{1, 0}, front[10])

	_, err = NewZDT1(1)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestTSP(t *testing.T) {
	square := []City{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	p, err := NewTSP(square)
	require.NoError(t, err)

	v, err := p.Evaluate(permutation.Genotype{0, 1, 2, 3}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 4, v[0], 1e-12)

	v, err = p.Evaluate(permutation.Genotype{0, 2, 1, 3}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 2+2*math.Sqrt2, v[0], 1e-12)

	_, err = p.Evaluate(permutation.Genotype{0, 0, 1, 2}, nil)
	assert.ErrorIs(t, err, core.ErrDomainViolation)

	assert.Equal(t, "0 -> 1 -> 2 -> 3 -> 0", p.Decode(permutation.Genotype{0, 1, 2, 3}))

	_, err = NewTSP(nil)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestRandomTSP_Seeded(t *testing.T) {
	a, err := NewRandomTSP(10, 3)
	require.NoError(t, err)
	b, err := NewRandomTSP(10, 3)
	require.NoError(t, err)
	assert.Equal(t, a.Cities(), b.Cities())
	assert.Equal(t, 10, a.SearchSpace().Size())
}

func TestExpression(t *testing.T) {
	b, err := realvector.Uniform(2, -10, 10)
	require.NoError(t, err)
	p, err := NewExpression("bowl", b, []ExpressionGoal{
		{Expr: "x0*x0 + x1*x1", Direction: core.Minimize},
		{Expr: "sqrt(abs(x0)) + n + pi", Direction: core.Maximize},
	})
	require.NoError(t, err)
	assert.Equal(t, "bowl", p.Name())
	assert.Equal(t, core.Maximize, p.Objective()[1].Direction)

	v, err := p.Evaluate(realvector.Genotype{-4, 3}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 25, v[0], 1e-12)
	assert.InDelta(t, 2+2+math.Pi, v[1], 1e-12)

	_, err = NewExpression("broken", b, []ExpressionGoal{{Expr: "x0 + ("}})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = NewExpression("empty", b, nil)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}
