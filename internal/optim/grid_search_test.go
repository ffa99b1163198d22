package optim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/metaheur/internal/config"
	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/experiment"
)

func smallSphere() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Iterations = 4
	cfg.Search.PopulationSize = 8
	cfg.Search.Offspring = 8
	cfg.Params.Dimensions = 2
	return cfg
}

func TestNewGridSearch_Validates(t *testing.T) {
	_, err := NewGridSearch(nil, nil)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	_, err = NewGridSearch([]string{"sigma"}, [][]float64{{}})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	_, err = NewGridSearch([]string{"sigma", "mutation_rate"}, [][]float64{{0.1}})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestGridSearch_VisitsEveryPoint(t *testing.T) {
	g, err := NewGridSearch(
		[]string{"mutation_rate", "crossover_rate"},
		[][]float64{{0.1, 0.5}, {0.6, 0.8, 1.0}},
	)
	require.NoError(t, err)
	assert.Equal(t, 6, g.Size())

	base := smallSphere()
	best, trials, err := g.Search(context.Background(), base, experiment.NewRegistry())
	require.NoError(t, err)
	require.Len(t, trials, 6)

	assert.Equal(t, map[string]float64{"mutation_rate": 0.1, "crossover_rate": 0.6}, trials[0].Params)
	assert.Equal(t, map[string]float64{"mutation_rate": 0.5, "crossover_rate": 1.0}, trials[5].Params)
	for _, tr := range trials {
		assert.GreaterOrEqual(t, tr.Score, best.Score)
	}
	assert.Equal(t, config.DefaultMutationRate, base.Search.MutationRate)
}

func TestGridSearch_PropagatesErrors(t *testing.T) {
	g, err := NewGridSearch([]string{"gravity"}, [][]float64{{1}})
	require.NoError(t, err)
	_, _, err = g.Search(context.Background(), smallSphere(), experiment.NewRegistry())
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	g, err = NewGridSearch([]string{"population_size"}, [][]float64{{8, 0}})
	require.NoError(t, err)
	_, trials, err := g.Search(context.Background(), smallSphere(), experiment.NewRegistry())
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.Len(t, trials, 1)
}
