package config

// Presets hold partial configs keyed by problem, then preset name. GetPreset
// lays a preset over DefaultConfig.
var Presets = map[string]map[string]*Config{
	"sphere": {
		"quick": {
			Problem: "sphere", Algorithm: "genetic", Iterations: 50,
			Search: SearchConfig{PopulationSize: 30, Offspring: 30},
			Params: ProblemConfig{Dimensions: 5, Lower: -5, Upper: 5},
		},
		"noisy": {
			Problem: "sphere", Algorithm: "genetic", Iterations: 200,
			Search: SearchConfig{PopulationSize: 60, Offspring: 60},
			Params: ProblemConfig{Dimensions: 10, Lower: -5, Upper: 5, Noise: 0.1},
		},
		"climb": {
			Problem: "sphere", Algorithm: "local", Iterations: 500,
			Search: SearchConfig{Neighbors: 20, Sigma: 0.02},
			Params: ProblemConfig{Dimensions: 10, Lower: -5, Upper: 5},
		},
	},
	"rastrigin": {
		"genetic": {
			Problem: "rastrigin", Algorithm: "genetic", Iterations: 300,
			Search: SearchConfig{PopulationSize: 100, Offspring: 100, MutationRate: 0.3},
			Params: ProblemConfig{Dimensions: 10},
		},
		"random": {
			Problem: "rastrigin", Algorithm: "random", Iterations: 300,
			Search: SearchConfig{PopulationSize: 10, Offspring: 100},
			Params: ProblemConfig{Dimensions: 10},
		},
	},
	"zdt1": {
		"front": {
			Problem: "zdt1", Algorithm: "genetic", Iterations: 250,
			Search: SearchConfig{PopulationSize: 100, Offspring: 100, MutationRate: 0.5},
			Params: ProblemConfig{Dimensions: 30},
		},
	},
	"tsp": {
		"small": {
			Problem: "tsp", Algorithm: "genetic", Iterations: 200,
			Search: SearchConfig{PopulationSize: 50, Offspring: 50},
			Params: ProblemConfig{Cities: 15},
		},
		"large": {
			Problem: "tsp", Algorithm: "genetic", Iterations: 1000,
			Search: SearchConfig{PopulationSize: 150, Offspring: 150, MutationRate: 0.4},
			Runtime: RuntimeConfig{Workers: 4, CacheSize: 4096},
			Params:  ProblemConfig{Cities: 60},
		},
		"climb": {
			Problem: "tsp", Algorithm: "local", Iterations: 2000,
			Search: SearchConfig{Neighbors: 30},
			Params: ProblemConfig{Cities: 30},
		},
	},
	"expression": {
		"bowl": {
			Problem: "expression", Algorithm: "genetic", Iterations: 100,
			Params: ProblemConfig{
				Dimensions: 2, Lower: -10, Upper: 10,
				Expressions: []string{"pow(x0 - 1, 2) + pow(x1 + 2, 2)"},
				Directions:  []string{"minimize"},
			},
		},
	},
}

// GetPreset returns a fresh config: DefaultConfig with the preset's
// non-zero fields laid over it. It returns nil for unknown names.
func GetPreset(problem, preset string) *Config {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	p, ok := problemPresets[preset]
	if !ok {
		return nil
	}
	return overlay(DefaultConfig(), p)
}

func ListPresets(problem string) []string {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(problemPresets))
	for name := range problemPresets {
		names = append(names, name)
	}
	return names
}

func overlay(base, p *Config) *Config {
	setString(&base.Problem, p.Problem)
	setString(&base.Algorithm, p.Algorithm)
	setNum(&base.Seed, p.Seed)
	setNum(&base.Iterations, p.Iterations)
	setNum(&base.TimeLimit, p.TimeLimit)
	setNum(&base.Patience, p.Patience)

	setNum(&base.Search.PopulationSize, p.Search.PopulationSize)
	setNum(&base.Search.Offspring, p.Search.Offspring)
	setNum(&base.Search.MutationRate, p.Search.MutationRate)
	setNum(&base.Search.CrossoverRate, p.Search.CrossoverRate)
	setNum(&base.Search.TournamentSize, p.Search.TournamentSize)
	setNum(&base.Search.Neighbors, p.Search.Neighbors)
	setNum(&base.Search.Sigma, p.Search.Sigma)

	setNum(&base.Runtime.Workers, p.Runtime.Workers)
	setNum(&base.Runtime.CacheSize, p.Runtime.CacheSize)

	setNum(&base.Params.Dimensions, p.Params.Dimensions)
	setNum(&base.Params.Cities, p.Params.Cities)
	setNum(&base.Params.Instance, p.Params.Instance)
	if p.Params.Lower != 0 || p.Params.Upper != 0 {
		base.Params.Lower, base.Params.Upper = p.Params.Lower, p.Params.Upper
	}
	setNum(&base.Params.Noise, p.Params.Noise)
	if len(p.Params.Expressions) > 0 {
		base.Params.Expressions = append([]string(nil), p.Params.Expressions...)
		base.Params.Directions = append([]string(nil), p.Params.Directions...)
	}
	return base
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setNum[T int | uint64 | float64 | ~int64](dst *T, v T) {
	if v != 0 {
		*dst = v
	}
}
