package metrics

import (
	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/operators"
)

// Metric folds a run's snapshots into one number.
type Metric interface {
	Name() string
	Observe(s operators.Snapshot)
	Value() float64
	Reset()
}

// Defaults returns the metrics reported for every run, all on goal 0.
func Defaults(objective core.Objective) []Metric {
	dir := objective[0].Direction
	return []Metric{
		NewBest(0, dir),
		NewMean(0),
		NewImprovement(0, dir),
		NewStagnation(0, dir),
	}
}

// Compute feeds history through ms and collects their values by name.
func Compute(history []operators.Snapshot, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, s := range history {
			m.Observe(s)
		}
		out[m.Name()] = m.Value()
	}
	return out
}

func better(dir core.Direction, a, b float64) bool {
	if dir == core.Maximize {
		return a > b
	}
	return a < b
}
