package main

import (
	"context"
	goflag "flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/san-kum/metaheur/internal/config"
	"github.com/san-kum/metaheur/internal/storage"
	"github.com/san-kum/metaheur/internal/telemetry"
)

var (
	dataDir     string
	storeKind   string
	metricsAddr string

	// search settings, applied over the preset or config file only when set
	algorithm     string
	seed          uint64
	iterations    int
	timeLimit     time.Duration
	patience      int
	population    int
	offspring     int
	mutationRate  float64
	crossoverRate float64
	tournament    int
	neighbors     int
	sigma         float64
	workers       int
	cacheSize     int
	dimensions    int
	cities        int
	instance      uint64
	noise         float64
	expressions   []string
	directions    []string
	configFile    string
	preset        string

	noSave bool
	// plotting
	goalIndex int
	outFile   string
	// batch commands
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	runs       int
	grid       []string

	recorder *telemetry.Recorder
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "metaheur",
		Short:         "metaheuristic search lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := klog.NewContext(cmd.Context(), klog.NewKlogr())
			cmd.SetContext(ctx)
			if metricsAddr == "" {
				return nil
			}
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			var err error
			if recorder, err = telemetry.NewRecorder(reg); err != nil {
				return err
			}
			go func() {
				if err := telemetry.Serve(ctx, metricsAddr, reg); err != nil {
					klog.FromContext(ctx).Error(err, "Metrics endpoint stopped", "addr", metricsAddr)
				}
			}()
			return nil
		},
	}

	fs := goflag.NewFlagSet("klog", goflag.ExitOnError)
	klog.InitFlags(fs)
	rootCmd.PersistentFlags().AddGoFlagSet(fs)
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".metaheur", "data directory")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "dir", "run store backend (dir, sqlite)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	runCmd := &cobra.Command{
		Use:   "run [problem]",
		Short: "run a search and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSearch,
	}
	addSearchFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [problem]",
		Short: "run a search with a live progress view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSearchFlags(liveCmd)
	liveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	benchCmd := &cobra.Command{
		Use:   "bench [problem]",
		Short: "compare every algorithm on one problem",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchProblem,
	}
	addSearchFlags(benchCmd)

	problemsCmd := &cobra.Command{
		Use:   "problems",
		Short: "list problems and algorithms",
		RunE:  listProblems,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [problem]",
		Short: "list available presets for a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for problem: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "summarize a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot convergence of every goal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	frontCmd := &cobra.Command{
		Use:   "front [run_id]",
		Short: "plot the final front of a two-goal run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotFront,
	}
	frontCmd.Flags().StringVar(&outFile, "html", "", "also write an interactive chart to this file")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "export a convergence chart as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().IntVar(&goalIndex, "goal", 0, "goal index")
	svgCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [problem]",
		Short: "run once per value of a numeric setting",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSearchFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "mutation_rate", "setting to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	replicateCmd := &cobra.Command{
		Use:   "replicate [problem]",
		Short: "run independent replicates and summarize the final best",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReplicates,
	}
	addSearchFlags(replicateCmd)
	replicateCmd.Flags().IntVar(&runs, "runs", 10, "number of replicates")

	tuneCmd := &cobra.Command{
		Use:   "tune [problem]",
		Short: "grid search over settings",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	addSearchFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&grid, "grid", nil, "setting=v1,v2,... (repeatable)")

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, problemsCmd, presetsCmd, listCmd, showCmd, plotCmd,
		frontCmd, svgCmd, exportCmd, sweepCmd, scenarioCmd, replicateCmd, tuneCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}

func addSearchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&algorithm, "algorithm", config.DefaultConfig().Algorithm, "algorithm")
	f.Uint64Var(&seed, "seed", 1, "random seed")
	f.IntVar(&iterations, "iterations", config.DefaultIterations, "iteration limit (0 for none)")
	f.DurationVar(&timeLimit, "time-limit", 0, "wall-clock limit")
	f.IntVar(&patience, "patience", 0, "stop after this many iterations without improvement")
	f.IntVar(&population, "population", config.DefaultPopulationSize, "population size")
	f.IntVar(&offspring, "offspring", config.DefaultPopulationSize, "offspring (random search samples) per iteration")
	f.Float64Var(&mutationRate, "mutation-rate", config.DefaultMutationRate, "mutation rate")
	f.Float64Var(&crossoverRate, "crossover-rate", config.DefaultCrossoverRate, "crossover rate")
	f.IntVar(&tournament, "tournament", config.DefaultTournamentSize, "tournament size")
	f.IntVar(&neighbors, "neighbors", config.DefaultNeighbors, "neighbors per local search step")
	f.Float64Var(&sigma, "sigma", config.DefaultSigma, "gaussian mutation scale")
	f.IntVar(&workers, "workers", 0, "parallel workers")
	f.IntVar(&cacheSize, "cache", 0, "evaluation cache size")
	f.IntVar(&dimensions, "dimensions", config.DefaultDimensions, "real vector dimensions")
	f.IntVar(&cities, "cities", config.DefaultCities, "tsp cities")
	f.Uint64Var(&instance, "instance", 0, "seed of generated problem instances")
	f.Float64Var(&noise, "noise", 0, "evaluation noise (sphere)")
	f.StringSliceVar(&expressions, "expr", nil, "objective expressions over x0..xn")
	f.StringSliceVar(&directions, "direction", nil, "goal directions for --expr")
}

// buildConfig resolves the run config: the preset or DefaultConfig, then the
// config file, then any flag set on the command line.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	problem := ""
	if len(args) > 0 {
		problem = args[0]
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(problem, preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(problem))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if problem != "" {
		cfg.Problem = problem
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("algorithm", func() { cfg.Algorithm = algorithm })
	set("seed", func() { cfg.Seed = seed })
	set("iterations", func() { cfg.Iterations = iterations })
	set("time-limit", func() { cfg.TimeLimit = timeLimit })
	set("patience", func() { cfg.Patience = patience })
	set("population", func() { cfg.Search.PopulationSize = population })
	set("offspring", func() { cfg.Search.Offspring = offspring })
	set("mutation-rate", func() { cfg.Search.MutationRate = mutationRate })
	set("crossover-rate", func() { cfg.Search.CrossoverRate = crossoverRate })
	set("tournament", func() { cfg.Search.TournamentSize = tournament })
	set("neighbors", func() { cfg.Search.Neighbors = neighbors })
	set("sigma", func() { cfg.Search.Sigma = sigma })
	set("workers", func() { cfg.Runtime.Workers = workers })
	set("cache", func() { cfg.Runtime.CacheSize = cacheSize })
	set("dimensions", func() { cfg.Params.Dimensions = dimensions })
	set("cities", func() { cfg.Params.Cities = cities })
	set("instance", func() { cfg.Params.Instance = instance })
	set("noise", func() { cfg.Params.Noise = noise })
	set("expr", func() { cfg.Params.Expressions = expressions })
	set("direction", func() { cfg.Params.Directions = directions })
	return cfg, nil
}

func openStore(ctx context.Context) (storage.Store, error) {
	path := dataDir
	if storeKind == "sqlite" {
		path = filepath.Join(dataDir, "runs.db")
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, err
		}
	}
	st, err := storage.NewStore(storeKind, path)
	if err != nil {
		return nil, err
	}
	if err := st.Init(ctx); err != nil {
		return nil, err
	}
	return st, nil
}
