package experiment

import (
	"context"
	"time"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/operators"
)

// Goal is the serializable form of core.Goal.
type Goal struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
}

// Member is one solution of the final population, rendered for reports.
type Member struct {
	Genotype   string               `json:"genotype"`
	Decoded    string               `json:"decoded,omitempty"`
	Objectives core.ObjectiveVector `json:"objectives"`
	Rank       int                  `json:"rank"`
}

// Result is everything a finished run reports, independent of the genotype
// type it searched over.
type Result struct {
	Problem     string               `json:"problem"`
	Algorithm   string               `json:"algorithm"`
	Seed        uint64               `json:"seed"`
	Goals       []Goal               `json:"goals"`
	Iterations  int                  `json:"iterations"`
	Evaluations int64                `json:"evaluations"`
	CacheHits   int64                `json:"cache_hits"`
	Elapsed     time.Duration        `json:"elapsed"`
	Metrics     map[string]float64   `json:"metrics,omitempty"`
	History     []operators.Snapshot `json:"-"`
	Final       []Member             `json:"-"`
	// Reference is the known optimal front, when the problem has one.
	Reference []core.ObjectiveVector `json:"-"`
}

// Objective rebuilds the objective the run scored against.
func (r *Result) Objective() (core.Objective, error) {
	out := make(core.Objective, len(r.Goals))
	for i, g := range r.Goals {
		d, err := core.ParseDirection(g.Direction)
		if err != nil {
			return nil, err
		}
		out[i] = core.Goal{Name: g.Name, Direction: d}
	}
	return out, nil
}

// Front returns the objective vectors of the rank-0 members.
func (r *Result) Front() []core.ObjectiveVector {
	var out []core.ObjectiveVector
	for _, m := range r.Final {
		if m.Rank == 0 {
			out = append(out, m.Objectives)
		}
	}
	return out
}

// Best returns the first member; Final is sorted best first.
func (r *Result) Best() (Member, bool) {
	if len(r.Final) == 0 {
		return Member{}, false
	}
	return r.Final[0], true
}

type Options struct {
	// OnSnapshot receives the initial state and every committed iteration,
	// synchronously on the executing goroutine.
	OnSnapshot func(operators.Snapshot)
	// Stopped ends the run cleanly at the next iteration boundary once it
	// returns true.
	Stopped func() bool
}

// Runner executes one configured problem/algorithm pair.
type Runner interface {
	Objective() core.Objective
	Run(ctx context.Context, opts Options) (*Result, error)
	// Replicate runs independent executions seeded from children of the
	// configured seed and returns the final snapshot of each. Patience is
	// ignored because convergence tracking is per run.
	Replicate(ctx context.Context, runs, workers int) ([]operators.Snapshot, error)
}

func goals(o core.Objective) []Goal {
	out := make([]Goal, len(o))
	for i, g := range o {
		out[i] = Goal{Name: g.Name, Direction: g.Direction.String()}
	}
	return out
}
