package operators

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/metaheur/internal/core"
)

// Snapshot summarizes one committed iteration.
type Snapshot struct {
	Iteration int                  `json:"iteration"`
	Best      core.ObjectiveVector `json:"best,omitempty"`
	Mean      []float64            `json:"mean,omitempty"`
	Size      int                  `json:"size"`
	Time      time.Time            `json:"time"`
}

// Summarize builds a Snapshot of state. Best and Mean stay empty for states
// without a population.
func Summarize[G any](state interface{ CurrentIteration() int }, objective core.Objective) Snapshot {
	snap := Snapshot{Iteration: state.CurrentIteration(), Time: time.Now()}
	pc, ok := state.(core.PopulationCarrier[G])
	if !ok {
		return snap
	}
	pop := pc.Population()
	snap.Size = len(pop)
	if len(pop) == 0 {
		return snap
	}
	snap.Best = pop[pop.Best(objective)].Objectives()
	snap.Mean = make([]float64, objective.Dim())
	column := make([]float64, len(pop))
	for g := range snap.Mean {
		for i, s := range pop {
			column[i] = s.Objective(g)
		}
		snap.Mean[g] = stat.Mean(column, nil)
	}
	return snap
}

// Multi fans one notification out to several observers, in order.
func Multi[G any, S core.SearchSpace[G], R core.State[R]](os ...core.Observer[G, S, R]) core.Observer[G, S, R] {
	return core.ObserverFunc[G, S, R](func(t core.Transition[G, S, R]) {
		for _, o := range os {
			o.Observe(t)
		}
	})
}

// LoggingObserver logs a summary every `every` iterations at verbosity 2.
func LoggingObserver[G any, S core.SearchSpace[G], R core.State[R]](logger logr.Logger, every int) core.Observer[G, S, R] {
	if every < 1 {
		every = 1
	}
	return core.ObserverFunc[G, S, R](func(t core.Transition[G, S, R]) {
		it := t.Current.CurrentIteration()
		if it%every != 0 {
			return
		}
		snap := Summarize[G](t.Current, t.Problem.Objective())
		logger.V(2).Info("Iteration", "iteration", it, "best", snap.Best, "mean", snap.Mean, "size", snap.Size)
	})
}

// History records a Snapshot per iteration. The first notification also
// records the state it started from.
type History[G any, S core.SearchSpace[G], R core.State[R]] struct {
	mu        sync.Mutex
	snapshots []Snapshot
}

func NewHistory[G any, S core.SearchSpace[G], R core.State[R]]() *History[G, S, R] {
	return &History[G, S, R]{snapshots: make([]Snapshot, 0)}
}

func (h *History[G, S, R]) Observe(t core.Transition[G, S, R]) {
	objective := t.Problem.Objective()
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.snapshots) == 0 && t.Previous != nil {
		h.snapshots = append(h.snapshots, Summarize[G](*t.Previous, objective))
	}
	h.snapshots = append(h.snapshots, Summarize[G](t.Current, objective))
}

func (h *History[G, S, R]) Snapshots() []Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Snapshot, len(h.snapshots))
	copy(out, h.snapshots)
	return out
}

// BestSeries returns the best score on goal per recorded iteration.
func (h *History[G, S, R]) BestSeries(goal int) []float64 {
	snaps := h.Snapshots()
	out := make([]float64, 0, len(snaps))
	for _, s := range snaps {
		if goal < len(s.Best) {
			out = append(out, s.Best[goal])
		}
	}
	return out
}

func (h *History[G, S, R]) Reset() {
	h.mu.Lock()
	h.snapshots = h.snapshots[:0]
	h.mu.Unlock()
}

// Progress publishes snapshots on a buffered channel. When the buffer is
// full the snapshot is dropped rather than blocking the run.
type Progress[G any, S core.SearchSpace[G], R core.State[R]] struct {
	ch    chan Snapshot
	drops atomic.Int64
	once  sync.Once
}

func NewProgress[G any, S core.SearchSpace[G], R core.State[R]](buffer int) *Progress[G, S, R] {
	return &Progress[G, S, R]{ch: make(chan Snapshot, buffer)}
}

func (p *Progress[G, S, R]) Observe(t core.Transition[G, S, R]) {
	select {
	case p.ch <- Summarize[G](t.Current, t.Problem.Objective()):
	default:
		p.drops.Add(1)
	}
}

func (p *Progress[G, S, R]) C() <-chan Snapshot { return p.ch }

func (p *Progress[G, S, R]) Drops() int64 { return p.drops.Load() }

// Close ends the stream. Observe must not be called afterwards.
func (p *Progress[G, S, R]) Close() {
	p.once.Do(func() { close(p.ch) })
}
