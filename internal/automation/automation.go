package automation

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"

	"github.com/san-kum/metaheur/internal/config"
	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/experiment"
	"github.com/san-kum/metaheur/internal/operators"
	"github.com/san-kum/metaheur/internal/storage"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Its config starts from DefaultConfig, or from
// the named preset ("problem/preset"), and any config keys in the step
// override that base.
type ScenarioStep struct {
	Name   string
	Preset string
	Save   bool
	Config *config.Config
}

func (s *ScenarioStep) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Name   string `yaml:"name"`
		Preset string `yaml:"preset"`
		Save   bool   `yaml:"save"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if head.Preset != "" {
		problem, name, _ := strings.Cut(head.Preset, "/")
		if cfg = config.GetPreset(problem, name); cfg == nil {
			return fmt.Errorf("unknown preset %q", head.Preset)
		}
	}
	if err := node.Decode(cfg); err != nil {
		return err
	}
	*s = ScenarioStep{Name: head.Name, Preset: head.Preset, Save: head.Save, Config: cfg}
	return nil
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps: %w", path, core.ErrInvalidArgument)
	}
	return &scenario, nil
}

type StepResult struct {
	Name   string
	RunID  string
	Result *experiment.Result
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the steps that completed. Steps marked save are written to
// store when it is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store storage.Store) ([]StepResult, error) {
	logger := klog.FromContext(ctx).WithValues("scenario", scenario.Name)
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("%s/%s", step.Config.Problem, step.Config.Algorithm)
		}
		logger.V(1).Info("Running step", "step", i+1, "of", len(scenario.Steps), "name", name)

		runner, err := registry.Build(step.Config)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}
		res, err := runner.Run(ctx, experiment.Options{})
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}

		sr := StepResult{Name: name, Result: res}
		if step.Save && store != nil {
			if sr.RunID, err = store.Save(ctx, res, step.Config); err != nil {
				return results, fmt.Errorf("step %d (%s) save: %w", i+1, name, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep runs Base once per evenly spaced value of Param in
// [Min, Max].
type ParameterSweep struct {
	Base  *config.Config
	Param string
	Min   float64
	Max   float64
	Steps int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	Value       float64
	Best        core.ObjectiveVector
	Evaluations int64
	Metrics     map[string]float64
}

// Values returns the swept parameter values.
func (s *ParameterSweep) Values() ([]float64, error) {
	switch {
	case s.Steps < 1:
		return nil, fmt.Errorf("sweep needs at least one step, got %d: %w", s.Steps, core.ErrInvalidArgument)
	case s.Steps == 1:
		return []float64{s.Min}, nil
	case s.Max < s.Min:
		return nil, fmt.Errorf("sweep range [%g, %g] is empty: %w", s.Min, s.Max, core.ErrInvalidArgument)
	}
	return floats.Span(make([]float64, s.Steps), s.Min, s.Max), nil
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	values, err := sweep.Values()
	if err != nil {
		return nil, err
	}
	logger := klog.FromContext(ctx).WithValues("param", sweep.Param)
	results := make([]SweepResult, 0, len(values))

	for i, v := range values {
		cfg := sweep.Base.Clone()
		if err := cfg.Set(sweep.Param, v); err != nil {
			return nil, err
		}
		runner, err := registry.Build(cfg)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}
		res, err := runner.Run(ctx, experiment.Options{})
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
		}

		sr := SweepResult{Value: v, Evaluations: res.Evaluations, Metrics: res.Metrics}
		if best, ok := res.Best(); ok {
			sr.Best = best.Objectives
		}
		results = append(results, sr)
		logger.V(2).Info("Sweep point done", "point", i+1, "of", len(values), "value", v)
	}

	return results, nil
}

// ReplicateSummary aggregates goal 0 of the final best solution over
// independent replicates.
type ReplicateSummary struct {
	Finals []operators.Snapshot
	Mean   float64
	Std    float64
	Best   float64
	Worst  float64
}

// RunReplicates executes cfg runs times with seeds spawned from cfg.Seed.
func RunReplicates(ctx context.Context, cfg *config.Config, registry *experiment.Registry, runs, workers int) (*ReplicateSummary, error) {
	runner, err := registry.Build(cfg)
	if err != nil {
		return nil, err
	}
	finals, err := runner.Replicate(ctx, runs, workers)
	if err != nil {
		return nil, err
	}
	return Summarize(finals, runner.Objective()[0].Direction == core.Maximize), nil
}

// Summarize computes ReplicateSummary statistics. maximize flips which
// extreme counts as best.
func Summarize(finals []operators.Snapshot, maximize bool) *ReplicateSummary {
	scores := make([]float64, 0, len(finals))
	for _, s := range finals {
		if len(s.Best) > 0 {
			scores = append(scores, s.Best[0])
		}
	}
	summary := &ReplicateSummary{Finals: finals, Mean: math.NaN(), Std: math.NaN(), Best: math.NaN(), Worst: math.NaN()}
	if len(scores) == 0 {
		return summary
	}
	summary.Mean, summary.Std = stat.MeanStdDev(scores, nil)
	if len(scores) == 1 {
		summary.Std = 0
	}
	summary.Best, summary.Worst = floats.Min(scores), floats.Max(scores)
	if maximize {
		summary.Best, summary.Worst = summary.Worst, summary.Best
	}
	return summary
}
