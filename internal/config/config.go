package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/metaheur/internal/core"
)

const (
	DefaultIterations     = 100
	DefaultPopulationSize = 50
	DefaultMutationRate   = 0.2
	DefaultCrossoverRate  = 0.9
	DefaultTournamentSize = 2
	DefaultNeighbors      = 16
	DefaultDimensions     = 10
	DefaultCities         = 20
	DefaultSigma          = 0.05
)

type Config struct {
	Problem    string        `yaml:"problem"`
	Algorithm  string        `yaml:"algorithm"`
	Seed       uint64        `yaml:"seed"`
	Iterations int           `yaml:"iterations"`
	TimeLimit  time.Duration `yaml:"time_limit,omitempty"`
	Patience   int           `yaml:"patience,omitempty"`

	Search  SearchConfig  `yaml:"search"`
	Runtime RuntimeConfig `yaml:"runtime"`
	Params  ProblemConfig `yaml:"params"`
}

// SearchConfig holds algorithm parameters. RandomSearch reuses Offspring as
// its sample count and PopulationSize as the number of solutions it keeps.
type SearchConfig struct {
	PopulationSize int     `yaml:"population_size"`
	Offspring      int     `yaml:"offspring"`
	MutationRate   float64 `yaml:"mutation_rate"`
	CrossoverRate  float64 `yaml:"crossover_rate"`
	TournamentSize int     `yaml:"tournament_size"`
	Neighbors      int     `yaml:"neighbors"`
	Sigma          float64 `yaml:"sigma"`
}

type RuntimeConfig struct {
	Workers   int `yaml:"workers"`
	CacheSize int `yaml:"cache_size"`
}

// ProblemConfig parameterizes the problem instance. Instance seeds
// generated instances such as random city layouts, independently of the
// search seed.
type ProblemConfig struct {
	Dimensions  int      `yaml:"dimensions"`
	Cities      int      `yaml:"cities"`
	Instance    uint64   `yaml:"instance"`
	Lower       float64  `yaml:"lower"`
	Upper       float64  `yaml:"upper"`
	Noise       float64  `yaml:"noise,omitempty"`
	Expressions []string `yaml:"expressions,omitempty"`
	Directions  []string `yaml:"directions,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Problem:    "sphere",
		Algorithm:  "genetic",
		Seed:       1,
		Iterations: DefaultIterations,
		Search: SearchConfig{
			PopulationSize: DefaultPopulationSize,
			Offspring:      DefaultPopulationSize,
			MutationRate:   DefaultMutationRate,
			CrossoverRate:  DefaultCrossoverRate,
			TournamentSize: DefaultTournamentSize,
			Neighbors:      DefaultNeighbors,
			Sigma:          DefaultSigma,
		},
		Params: ProblemConfig{
			Dimensions: DefaultDimensions,
			Cities:     DefaultCities,
			Lower:      -5,
			Upper:      5,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy, so presets and sweep points never share slices.
func (c *Config) Clone() *Config {
	out := *c
	out.Params.Expressions = append([]string(nil), c.Params.Expressions...)
	out.Params.Directions = append([]string(nil), c.Params.Directions...)
	return &out
}

// Validate reports every setting a run could not start with.
func (c *Config) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}
	check(c.Problem != "", "problem is required")
	check(c.Algorithm != "", "algorithm is required")
	check(c.Iterations > 0 || c.TimeLimit > 0 || c.Patience > 0, "one of iterations, time_limit or patience must be set")
	check(c.Iterations >= 0, "iterations %d is negative", c.Iterations)
	check(c.TimeLimit >= 0, "time_limit %s is negative", c.TimeLimit)
	check(c.Search.PopulationSize > 0, "population_size must be positive, got %d", c.Search.PopulationSize)
	check(c.Search.Offspring > 0, "offspring must be positive, got %d", c.Search.Offspring)
	check(c.Search.MutationRate >= 0 && c.Search.MutationRate <= 1, "mutation_rate %g outside [0, 1]", c.Search.MutationRate)
	check(c.Search.CrossoverRate >= 0 && c.Search.CrossoverRate <= 1, "crossover_rate %g outside [0, 1]", c.Search.CrossoverRate)
	check(c.Search.TournamentSize > 0, "tournament_size must be positive, got %d", c.Search.TournamentSize)
	check(c.Search.Neighbors > 0, "neighbors must be positive, got %d", c.Search.Neighbors)
	check(c.Search.Sigma > 0, "sigma must be positive, got %g", c.Search.Sigma)
	check(c.Runtime.Workers >= 0, "workers %d is negative", c.Runtime.Workers)
	check(c.Runtime.CacheSize >= 0, "cache_size %d is negative", c.Runtime.CacheSize)
	check(c.Params.Lower < c.Params.Upper, "lower %g must be below upper %g", c.Params.Lower, c.Params.Upper)
	check(c.Params.Noise >= 0, "noise %g is negative", c.Params.Noise)
	check(len(c.Params.Directions) == 0 || len(c.Params.Directions) == len(c.Params.Expressions),
		"%d directions for %d expressions", len(c.Params.Directions), len(c.Params.Expressions))

	if len(problems) > 0 {
		return fmt.Errorf("config: %s: %w", strings.Join(problems, "; "), core.ErrInvalidArgument)
	}
	return nil
}

// Set assigns a numeric parameter by its yaml name. Sweeps and grid
// searches address parameters this way.
func (c *Config) Set(name string, value float64) error {
	switch name {
	case "seed":
		c.Seed = uint64(value)
	case "iterations":
		c.Iterations = int(value)
	case "patience":
		c.Patience = int(value)
	case "population_size":
		c.Search.PopulationSize = int(value)
	case "offspring":
		c.Search.Offspring = int(value)
	case "mutation_rate":
		c.Search.MutationRate = value
	case "crossover_rate":
		c.Search.CrossoverRate = value
	case "tournament_size":
		c.Search.TournamentSize = int(value)
	case "neighbors":
		c.Search.Neighbors = int(value)
	case "sigma":
		c.Search.Sigma = value
	case "workers":
		c.Runtime.Workers = int(value)
	case "cache_size":
		c.Runtime.CacheSize = int(value)
	case "dimensions":
		c.Params.Dimensions = int(value)
	case "cities":
		c.Params.Cities = int(value)
	case "instance":
		c.Params.Instance = uint64(value)
	case "lower":
		c.Params.Lower = value
	case "upper":
		c.Params.Upper = value
	case "noise":
		c.Params.Noise = value
	default:
		return fmt.Errorf("config: unknown parameter %q: %w", name, core.ErrInvalidArgument)
	}
	return nil
}
