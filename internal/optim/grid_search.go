package optim

import (
	"context"
	"fmt"
	"maps"
	"math"

	"k8s.io/klog/v2"

	"github.com/san-kum/metaheur/internal/config"
	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/experiment"
)

// GridSearch tunes config settings by running every combination of the
// candidate values and keeping the one whose best solution scores best on
// goal 0.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("grid needs one value list per parameter, got %d params and %d lists: %w",
			len(params), len(ranges), core.ErrInvalidArgument)
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("parameter %s has no values: %w", params[i], core.ErrInvalidArgument)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of runs Search performs.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

type Trial struct {
	Params map[string]float64
	Score  float64
}

type searchState struct {
	registry  *experiment.Registry
	base      *config.Config
	maximize  bool
	best      Trial
	trials    []Trial
	evaluated bool
}

// Search runs the grid over base and returns the best trial followed by all
// trials in grid order. The first failing run aborts the search.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, registry *experiment.Registry) (Trial, []Trial, error) {
	st := &searchState{registry: registry, base: base}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), st); err != nil {
		return Trial{}, st.trials, err
	}
	return st.best, st.trials, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, st *searchState) error {
	if depth == len(g.paramNames) {
		return g.trial(ctx, current, st)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := maps.Clone(current)
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, st); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) trial(ctx context.Context, params map[string]float64, st *searchState) error {
	cfg := st.base.Clone()
	for name, v := range params {
		if err := cfg.Set(name, v); err != nil {
			return err
		}
	}
	runner, err := st.registry.Build(cfg)
	if err != nil {
		return fmt.Errorf("grid point %v: %w", params, err)
	}
	result, err := runner.Run(ctx, experiment.Options{})
	if err != nil {
		return fmt.Errorf("grid point %v: %w", params, err)
	}

	score := math.NaN()
	if best, ok := result.Best(); ok && len(best.Objectives) > 0 {
		score = best.Objectives[0]
	}
	t := Trial{Params: params, Score: score}
	st.trials = append(st.trials, t)
	klog.FromContext(ctx).V(2).Info("Grid point done", "params", params, "score", score)

	if !st.evaluated {
		st.maximize = runner.Objective()[0].Direction == core.Maximize
	}
	if math.IsNaN(score) {
		return nil
	}
	if !st.evaluated || (st.maximize && score > st.best.Score) || (!st.maximize && score < st.best.Score) {
		st.best = t
		st.evaluated = true
	}
	return nil
}
