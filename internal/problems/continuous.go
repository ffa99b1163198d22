package problems

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/encoding/realvector"
	"github.com/san-kum/metaheur/internal/rng"
)

// Sphere minimizes sum(x_i^2). With Noise > 0 every evaluation adds
// Gaussian noise of that standard deviation, drawn from the evaluation's
// generator.
type Sphere struct {
	bounds realvector.Bounds
	noise  float64
}

func NewSphere(dim int, lower, upper, noise float64) (*Sphere, error) {
	b, err := realvector.Uniform(dim, lower, upper)
	if err != nil {
		return nil, err
	}
	if noise < 0 {
		return nil, fmt.Errorf("noise %g: %w", noise, core.ErrInvalidArgument)
	}
	return &Sphere{bounds: b, noise: noise}, nil
}

func (p *Sphere) Name() string                   { return "sphere" }
func (p *Sphere) SearchSpace() realvector.Bounds { return p.bounds }
func (p *Sphere) Objective() core.Objective      { return core.SingleObjective("f", core.Minimize) }

func (p *Sphere) Evaluate(g realvector.Genotype, random *rng.Random) (core.ObjectiveVector, error) {
	if err := checkIn(p.bounds, g); err != nil {
		return nil, err
	}
	f := floats.Dot(g, g)
	if p.noise > 0 {
		f += p.noise * random.NormFloat64()
	}
	return core.ObjectiveVector{f}, nil
}

// Rastrigin minimizes 10n + sum(x_i^2 - 10 cos(2 pi x_i)); its global minimum
// is 0 at the origin.
type Rastrigin struct {
	bounds realvector.Bounds
}

func NewRastrigin(dim int) (*Rastrigin, error) {
	b, err := realvector.Uniform(dim, -5.12, 5.12)
	if err != nil {
		return nil, err
	}
	return &Rastrigin{bounds: b}, nil
}

func (p *Rastrigin) Name() string                   { return "rastrigin" }
func (p *Rastrigin) SearchSpace() realvector.Bounds { return p.bounds }
func (p *Rastrigin) Objective() core.Objective      { return core.SingleObjective("f", core.Minimize) }

func (p *Rastrigin) Evaluate(g realvector.Genotype, _ *rng.Random) (core.ObjectiveVector, error) {
	if err := checkIn(p.bounds, g); err != nil {
		return nil, err
	}
	f := 10 * float64(len(g))
	for _, x := range g {
		f += x*x - 10*math.Cos(2*math.Pi*x)
	}
	return core.ObjectiveVector{f}, nil
}

// ZDT1 is the two-goal benchmark with a convex front f2 = 1 - sqrt(f1).
type ZDT1 struct {
	bounds realvector.Bounds
}

func NewZDT1(dim int) (*ZDT1, error) {
	if dim < 2 {
		return nil, fmt.Errorf("zdt1 needs at least 2 variables, got %d: %w", dim, core.ErrInvalidArgument)
	}
	b, err := realvector.Uniform(dim, 0, 1)
	if err != nil {
		return nil, err
	}
	return &ZDT1{bounds: b}, nil
}

func (p *ZDT1) Name() string                   { return "zdt1" }
func (p *ZDT1) SearchSpace() realvector.Bounds { return p.bounds }

func (p *ZDT1) Objective() core.Objective {
	return core.Objective{{Name: "f1", Direction: core.Minimize}, {Name: "f2", Direction: core.Minimize}}
}

func (p *ZDT1) Evaluate(g realvector.Genotype, _ *rng.Random) (core.ObjectiveVector, error) {
	if err := checkIn(p.bounds, g); err != nil {
		return nil, err
	}
	f1 := g[0]
	gx := 1 + 9*floats.Sum(g[1:])/float64(len(g)-1)
	return core.ObjectiveVector{f1, gx * (1 - math.Sqrt(f1/gx))}, nil
}

// TrueParetoFront returns n evenly spaced points of the optimal front.
func (p *ZDT1) TrueParetoFront(n int) []core.ObjectiveVector {
	if n < 2 {
		n = 2
	}
	out := make([]core.ObjectiveVector, n)
	for i := range out {
		x := float64(i) / float64(n-1)
		out[i] = core.ObjectiveVector{x, 1 - math.Sqrt(x)}
	}
	return out
}

func checkIn(b realvector.Bounds, g realvector.Genotype) error {
	if !b.Contains(g) {
		return fmt.Errorf("%w: %v outside the search space", core.ErrDomainViolation, g)
	}
	return nil
}
