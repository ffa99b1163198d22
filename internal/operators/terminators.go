package operators

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/metaheur/internal/core"
)

// MaxIterations fires once the current iteration reaches n.
func MaxIterations[G any, S core.SearchSpace[G], R core.State[R]](n int) core.Terminator[G, S, R] {
	return core.TerminatorFunc[G, S, R](func(t core.Transition[G, S, R]) bool {
		return t.Current.CurrentIteration() >= n
	})
}

// Deadline fires at the first iteration boundary at or after at.
func Deadline[G any, S core.SearchSpace[G], R core.State[R]](at time.Time) core.Terminator[G, S, R] {
	return core.TerminatorFunc[G, S, R](func(core.Transition[G, S, R]) bool {
		return !time.Now().Before(at)
	})
}

// StopSignal is a cooperative stop flag. Stop may be called from any
// goroutine; the run ends at its next iteration boundary.
type StopSignal[G any, S core.SearchSpace[G], R core.State[R]] struct {
	stopped atomic.Bool
	poll    func() bool
}

// StopWhen returns a StopSignal that also stops once poll reports true.
// poll is consulted at iteration boundaries and latches.
func StopWhen[G any, S core.SearchSpace[G], R core.State[R]](poll func() bool) *StopSignal[G, S, R] {
	return &StopSignal[G, S, R]{poll: poll}
}

func (s *StopSignal[G, S, R]) Stop() { s.stopped.Store(true) }

func (s *StopSignal[G, S, R]) Stopped() bool { return s.stopped.Load() }

func (s *StopSignal[G, S, R]) ShouldTerminate(core.Transition[G, S, R]) bool {
	if !s.stopped.Load() && s.poll != nil && s.poll() {
		s.Stop()
	}
	return s.stopped.Load()
}

// TargetObjective fires when some solution reaches target on goal index
// goal, in the goal's direction. States without a population and goal
// indices outside the problem's objective never fire.
func TargetObjective[G any, S core.SearchSpace[G], R core.State[R]](goal int, target float64) core.Terminator[G, S, R] {
	return core.TerminatorFunc[G, S, R](func(t core.Transition[G, S, R]) bool {
		pc, ok := any(t.Current).(core.PopulationCarrier[G])
		if !ok {
			return false
		}
		objective := t.Problem.Objective()
		if goal < 0 || goal >= objective.Dim() {
			return false
		}
		dir := objective[goal].Direction
		for _, s := range pc.Population() {
			v := s.Objective(goal)
			if (dir == core.Minimize && v <= target) || (dir == core.Maximize && v >= target) {
				return true
			}
		}
		return false
	})
}

// Convergence fires once the best score on goal 0 has improved by no more
// than Epsilon for Patience consecutive iterations. It remembers the best
// score it has seen, so use one value per run; it resets itself when it sees
// a transition without a previous state.
type Convergence[G any, S core.SearchSpace[G], R core.State[R]] struct {
	Patience int
	Epsilon  float64

	mu    sync.Mutex
	best  float64
	stale int
}

func (c *Convergence[G, S, R]) ShouldTerminate(t core.Transition[G, S, R]) bool {
	best, ok := BestOf[G](t.Current, t.Problem.Objective())
	if !ok {
		return false
	}
	score := best.Objective(0)
	if t.Problem.Objective()[0].Direction == core.Maximize {
		score = -score
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !t.HasPrevious() {
		c.best, c.stale = score, 0
		return false
	}
	if c.best-score > c.Epsilon {
		c.best, c.stale = score, 0
		return false
	}
	if score < c.best {
		c.best = score
	}
	c.stale++
	return c.stale >= c.Patience
}

// Any fires when at least one of ts fires.
func Any[G any, S core.SearchSpace[G], R core.State[R]](ts ...core.Terminator[G, S, R]) core.Terminator[G, S, R] {
	return core.TerminatorFunc[G, S, R](func(t core.Transition[G, S, R]) bool {
		for _, term := range ts {
			if term.ShouldTerminate(t) {
				return true
			}
		}
		return false
	})
}

// All fires when every one of ts fires. With no terminators it never fires.
func All[G any, S core.SearchSpace[G], R core.State[R]](ts ...core.Terminator[G, S, R]) core.Terminator[G, S, R] {
	return core.TerminatorFunc[G, S, R](func(t core.Transition[G, S, R]) bool {
		if len(ts) == 0 {
			return false
		}
		for _, term := range ts {
			if !term.ShouldTerminate(t) {
				return false
			}
		}
		return true
	})
}

// BestOf returns the best solution of a population-carrying state.
func BestOf[G any](state any, objective core.Objective) (core.Solution[G], bool) {
	pc, ok := state.(core.PopulationCarrier[G])
	if !ok {
		return core.Solution[G]{}, false
	}
	pop := pc.Population()
	i := pop.Best(objective)
	if i < 0 {
		return core.Solution[G]{}, false
	}
	return pop[i], true
}
