package metrics

import (
	"math"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/operators"
)

// Improvement is how far the best score moved in the goal's direction
// between the first and last snapshot.
type Improvement struct {
	name  string
	goal  int
	dir   core.Direction
	first float64
	last  float64
	seen  bool
}

func NewImprovement(goal int, dir core.Direction) *Improvement {
	return &Improvement{name: "improvement", goal: goal, dir: dir}
}

func (m *Improvement) Name() string { return m.name }

func (m *Improvement) Observe(s operators.Snapshot) {
	if m.goal >= len(s.Best) {
		return
	}
	if !m.seen {
		m.first, m.seen = s.Best[m.goal], true
	}
	m.last = s.Best[m.goal]
}

func (m *Improvement) Value() float64 {
	if !m.seen {
		return math.NaN()
	}
	if m.dir == core.Maximize {
		return m.last - m.first
	}
	return m.first - m.last
}

func (m *Improvement) Reset() {
	m.first, m.last, m.seen = 0, 0, false
}

// Stagnation is the fraction of iterations that did not improve on the best
// score seen before them.
type Stagnation struct {
	name    string
	goal    int
	dir     core.Direction
	best    float64
	stalls  int
	samples int
}

func NewStagnation(goal int, dir core.Direction) *Stagnation {
	return &Stagnation{name: "stagnation", goal: goal, dir: dir}
}

func (m *Stagnation) Name() string { return m.name }

func (m *Stagnation) Observe(s operators.Snapshot) {
	if m.goal >= len(s.Best) {
		return
	}
	v := s.Best[m.goal]
	if m.samples == 0 {
		m.best = v
		m.samples++
		return
	}
	m.samples++
	if better(m.dir, v, m.best) {
		m.best = v
		return
	}
	m.stalls++
}

func (m *Stagnation) Value() float64 {
	if m.samples < 2 {
		return 0
	}
	return float64(m.stalls) / float64(m.samples-1)
}

func (m *Stagnation) Reset() {
	m.best, m.stalls, m.samples = 0, 0, 0
}
