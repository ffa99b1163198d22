package metrics

import (
	"math"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/operators"
)

// Best tracks the best score seen on one goal.
type Best struct {
	name string
	goal int
	dir  core.Direction
	best float64
	seen bool
}

func NewBest(goal int, dir core.Direction) *Best {
	return &Best{name: "best", goal: goal, dir: dir}
}

func (b *Best) Name() string { return b.name }

func (b *Best) Observe(s operators.Snapshot) {
	if b.goal >= len(s.Best) {
		return
	}
	v := s.Best[b.goal]
	if !b.seen || better(b.dir, v, b.best) {
		b.best, b.seen = v, true
	}
}

func (b *Best) Value() float64 {
	if !b.seen {
		return math.NaN()
	}
	return b.best
}

func (b *Best) Reset() {
	b.best, b.seen = 0, false
}

// Mean reports the population mean of the last snapshot on one goal.
type Mean struct {
	name string
	goal int
	last float64
	seen bool
}

func NewMean(goal int) *Mean {
	return &Mean{name: "mean", goal: goal}
}

func (m *Mean) Name() string { return m.name }

func (m *Mean) Observe(s operators.Snapshot) {
	if m.goal < len(s.Mean) {
		m.last, m.seen = s.Mean[m.goal], true
	}
}

func (m *Mean) Value() float64 {
	if !m.seen {
		return math.NaN()
	}
	return m.last
}

func (m *Mean) Reset() {
	m.last, m.seen = 0, false
}
