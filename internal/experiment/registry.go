package experiment

import (
	"fmt"
	"slices"
	"sort"

	"github.com/san-kum/metaheur/internal/config"
	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/encoding/permutation"
	"github.com/san-kum/metaheur/internal/encoding/realvector"
	"github.com/san-kum/metaheur/internal/problems"
)

// Factory builds a runner for one problem family from a validated config.
type Factory func(cfg *config.Config) (Runner, error)

var algorithmNames = []string{"genetic", "local", "random"}

type Registry struct {
	problems map[string]Factory
}

func NewRegistry() *Registry {
	r := &Registry{problems: make(map[string]Factory)}

	r.Register("sphere", func(cfg *config.Config) (Runner, error) {
		p, err := problems.NewSphere(cfg.Params.Dimensions, cfg.Params.Lower, cfg.Params.Upper, cfg.Params.Noise)
		if err != nil {
			return nil, err
		}
		return newRunner[realvector.Genotype, realvector.Bounds](cfg, p, realKit(cfg, false)), nil
	})
	r.Register("rastrigin", func(cfg *config.Config) (Runner, error) {
		p, err := problems.NewRastrigin(cfg.Params.Dimensions)
		if err != nil {
			return nil, err
		}
		return newRunner[realvector.Genotype, realvector.Bounds](cfg, p, realKit(cfg, false)), nil
	})
	r.Register("zdt1", func(cfg *config.Config) (Runner, error) {
		p, err := problems.NewZDT1(cfg.Params.Dimensions)
		if err != nil {
			return nil, err
		}
		k := realKit(cfg, true)
		k.reference = p.TrueParetoFront(100)
		return newRunner[realvector.Genotype, realvector.Bounds](cfg, p, k), nil
	})
	r.Register("expression", func(cfg *config.Config) (Runner, error) {
		b, err := realvector.Uniform(cfg.Params.Dimensions, cfg.Params.Lower, cfg.Params.Upper)
		if err != nil {
			return nil, err
		}
		exprGoals := make([]problems.ExpressionGoal, len(cfg.Params.Expressions))
		for i, expr := range cfg.Params.Expressions {
			exprGoals[i].Expr = expr
			if i < len(cfg.Params.Directions) {
				if exprGoals[i].Direction, err = core.ParseDirection(cfg.Params.Directions[i]); err != nil {
					return nil, err
				}
			}
		}
		p, err := problems.NewExpression("expression", b, exprGoals)
		if err != nil {
			return nil, err
		}
		return newRunner[realvector.Genotype, realvector.Bounds](cfg, p, realKit(cfg, len(exprGoals) > 1)), nil
	})
	r.Register("tsp", func(cfg *config.Config) (Runner, error) {
		p, err := problems.NewRandomTSP(cfg.Params.Cities, cfg.Params.Instance)
		if err != nil {
			return nil, err
		}
		return newRunner[permutation.Genotype, permutation.Space](cfg, p, kit[permutation.Genotype, permutation.Space]{
			creator:   permutation.RandomCreator{},
			crossover: permutation.OrderCrossover{},
			mutator:   permutation.InversionMutator{},
			neighbor:  permutation.SwapMutator{Swaps: 1},
			key:       permutation.Key,
			decode:    p.Decode,
		}), nil
	})

	return r
}

// Register adds or replaces a problem family.
func (r *Registry) Register(problem string, f Factory) {
	r.problems[problem] = f
}

// Build validates cfg and returns the runner for its problem and algorithm.
func (r *Registry) Build(cfg *config.Config) (Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f, ok := r.problems[cfg.Problem]
	if !ok {
		return nil, fmt.Errorf("unknown problem: %s: %w", cfg.Problem, core.ErrInvalidArgument)
	}
	if !slices.Contains(algorithmNames, cfg.Algorithm) {
		return nil, fmt.Errorf("unknown algorithm: %s: %w", cfg.Algorithm, core.ErrInvalidArgument)
	}
	return f(cfg.Clone())
}

func (r *Registry) ListProblems() []string {
	names := make([]string, 0, len(r.problems))
	for name := range r.problems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListAlgorithms() []string {
	return slices.Clone(algorithmNames)
}

// realKit picks bounded operators for real vectors. Multi-goal problems get
// polynomial mutation.
func realKit(cfg *config.Config, multi bool) kit[realvector.Genotype, realvector.Bounds] {
	gauss := realvector.GaussianMutator{Sigma: cfg.Search.Sigma}
	k := kit[realvector.Genotype, realvector.Bounds]{
		creator:   realvector.UniformCreator{},
		crossover: realvector.SBXCrossover{},
		mutator:   gauss,
		neighbor:  gauss,
		key:       realvector.Key,
		guard:     realvector.BoundsInterceptor[core.PopulationState[realvector.Genotype]](),
	}
	if multi {
		k.mutator = realvector.PolynomialMutator{}
	}
	return k
}
