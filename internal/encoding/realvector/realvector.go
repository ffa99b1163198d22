// Package realvector encodes solutions as fixed-length vectors of reals
// inside per-coordinate bounds.
package realvector

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/rng"
)

type Genotype []float64

func (g Genotype) Clone() Genotype {
	c := make(Genotype, len(g))
	copy(c, g)
	return c
}

func (g Genotype) String() string {
	parts := make([]string, len(g))
	for i, v := range g {
		parts[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Key identifies a genotype for caching. It is exact, not rounded.
func Key(g Genotype) string {
	var b strings.Builder
	for i, v := range g {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(math.Float64bits(v), 16))
	}
	return b.String()
}

// Bounds is the box Lower[i] <= x[i] <= Upper[i].
type Bounds struct {
	Lower []float64
	Upper []float64
}

func NewBounds(lower, upper []float64) (Bounds, error) {
	if len(lower) == 0 || len(lower) != len(upper) {
		return Bounds{}, fmt.Errorf("bounds of length %d and %d: %w", len(lower), len(upper), core.ErrInvalidArgument)
	}
	for i := range lower {
		if !(lower[i] <= upper[i]) || math.IsInf(lower[i], 0) || math.IsInf(upper[i], 0) {
			return Bounds{}, fmt.Errorf("coordinate %d: bad range [%g, %g]: %w", i, lower[i], upper[i], core.ErrInvalidArgument)
		}
	}
	return Bounds{Lower: append([]float64(nil), lower...), Upper: append([]float64(nil), upper...)}, nil
}

// Uniform returns dim coordinates sharing one range.
func Uniform(dim int, lower, upper float64) (Bounds, error) {
	if dim < 1 {
		return Bounds{}, fmt.Errorf("dimension %d: %w", dim, core.ErrInvalidArgument)
	}
	lo := make([]float64, dim)
	hi := make([]float64, dim)
	for i := range lo {
		lo[i], hi[i] = lower, upper
	}
	return NewBounds(lo, hi)
}

func (b Bounds) Dim() int { return len(b.Lower) }

func (b Bounds) Contains(g Genotype) bool {
	if len(g) != len(b.Lower) {
		return false
	}
	for i, v := range g {
		if math.IsNaN(v) || v < b.Lower[i] || v > b.Upper[i] {
			return false
		}
	}
	return true
}

// Clamp returns g with every coordinate moved inside the box. NaN
// coordinates move to the lower bound.
func (b Bounds) Clamp(g Genotype) Genotype {
	out := g.Clone()
	for i := range out {
		switch {
		case math.IsNaN(out[i]) || out[i] < b.Lower[i]:
			out[i] = b.Lower[i]
		case out[i] > b.Upper[i]:
			out[i] = b.Upper[i]
		}
	}
	return out
}

func (b Bounds) span(i int) float64 { return b.Upper[i] - b.Lower[i] }

// UniformCreator samples every coordinate uniformly inside its range.
type UniformCreator struct{}

func (UniformCreator) Create(count int, random *rng.Random, space Bounds) ([]Genotype, error) {
	if count <= 0 {
		return nil, fmt.Errorf("create count %d: %w", count, core.ErrInvalidArgument)
	}
	out := make([]Genotype, count)
	for k := range out {
		g := make(Genotype, space.Dim())
		for i := range g {
			g[i] = space.Lower[i] + random.Random()*space.span(i)
		}
		out[k] = g
	}
	return out, nil
}

// GaussianMutator perturbs each coordinate with probability Rate by a normal
// step of standard deviation Sigma times the coordinate's range. A Rate of 0
// means 1/dim.
type GaussianMutator struct {
	Sigma float64
	Rate  float64
}

func (m GaussianMutator) Mutate(parents []Genotype, random *rng.Random, space Bounds, _ core.Problem[Genotype, Bounds]) ([]Genotype, error) {
	rate := mutationRate(m.Rate, space.Dim())
	out := make([]Genotype, len(parents))
	for k, p := range parents {
		child := p.Clone()
		for i := range child {
			if random.Random() < rate {
				child[i] += random.NormFloat64() * m.Sigma * space.span(i)
			}
		}
		out[k] = space.Clamp(child)
	}
	return out, nil
}

// PolynomialMutator is Deb's bounded polynomial mutation with distribution
// index Eta. A Rate of 0 means 1/dim.
type PolynomialMutator struct {
	Eta  float64
	Rate float64
}

func (m PolynomialMutator) Mutate(parents []Genotype, random *rng.Random, space Bounds, _ core.Problem[Genotype, Bounds]) ([]Genotype, error) {
	rate := mutationRate(m.Rate, space.Dim())
	eta := m.Eta
	if eta <= 0 {
		eta = 20
	}
	out := make([]Genotype, len(parents))
	for k, p := range parents {
		child := p.Clone()
		for i := range child {
			span := space.span(i)
			if span == 0 || random.Random() >= rate {
				continue
			}
			d1 := (child[i] - space.Lower[i]) / span
			d2 := (space.Upper[i] - child[i]) / span
			u := random.Random()
			pow := 1 / (eta + 1)
			var dq float64
			if u < 0.5 {
				v := 2*u + (1-2*u)*math.Pow(1-d1, eta+1)
				dq = math.Pow(v, pow) - 1
			} else {
				v := 2*(1-u) + 2*(u-0.5)*math.Pow(1-d2, eta+1)
				dq = 1 - math.Pow(v, pow)
			}
			child[i] += dq * span
		}
		out[k] = space.Clamp(child)
	}
	return out, nil
}

// SBXCrossover is simulated binary crossover with distribution index Eta.
// Each coordinate is recombined with probability Rate (0 means 0.5); the two
// children are clamped into the box.
type SBXCrossover struct {
	Eta  float64
	Rate float64
}

func (c SBXCrossover) Cross(a, b Genotype, random *rng.Random, space Bounds) ([]Genotype, error) {
	if len(a) != space.Dim() || len(b) != space.Dim() {
		return nil, fmt.Errorf("%w: parents of length %d and %d for dimension %d", core.ErrDomainViolation, len(a), len(b), space.Dim())
	}
	eta := c.Eta
	if eta <= 0 {
		eta = 15
	}
	rate := c.Rate
	if rate <= 0 {
		rate = 0.5
	}
	x, y := a.Clone(), b.Clone()
	for i := range x {
		if random.Random() >= rate {
			continue
		}
		u := random.Random()
		var beta float64
		if u <= 0.5 {
			beta = math.Pow(2*u, 1/(eta+1))
		} else {
			beta = math.Pow(1/(2*(1-u)), 1/(eta+1))
		}
		p, q := a[i], b[i]
		x[i] = 0.5 * ((1+beta)*p + (1-beta)*q)
		y[i] = 0.5 * ((1-beta)*p + (1+beta)*q)
	}
	return []Genotype{space.Clamp(x), space.Clamp(y)}, nil
}

func mutationRate(rate float64, dim int) float64 {
	if rate > 0 {
		return rate
	}
	return 1 / float64(dim)
}

// BoundsInterceptor rejects produced populations holding a genotype outside
// the box.
func BoundsInterceptor[R interface {
	core.State[R]
	core.PopulationCarrier[Genotype]
}]() core.Interceptor[Genotype, Bounds, R] {
	return core.InterceptorFunc[Genotype, Bounds, R](func(t core.Transition[Genotype, Bounds, R]) (R, error) {
		for i, s := range t.Current.Population() {
			if !t.Space.Contains(s.Genotype()) {
				var zero R
				return zero, fmt.Errorf("%w: solution %d %v outside bounds", core.ErrDomainViolation, i, s.Genotype())
			}
		}
		return t.Current, nil
	})
}
