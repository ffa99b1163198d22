package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/san-kum/metaheur/internal/config"
	"github.com/san-kum/metaheur/internal/experiment"
	"github.com/san-kum/metaheur/internal/viz"
)

func runSearch(cmd *cobra.Command, args []string) error {
	return execute(cmd, args, false)
}

func runLive(cmd *cobra.Command, args []string) error {
	return execute(cmd, args, true)
}

func execute(cmd *cobra.Command, args []string, live bool) error {
	ctx := cmd.Context()
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	runner, err := experiment.NewRegistry().Build(cfg)
	if err != nil {
		return err
	}

	opts := experiment.Options{}
	if recorder != nil {
		opts.OnSnapshot = recorder.Observer(cfg.Problem, cfg.Algorithm, runner.Objective())
	}

	var res *experiment.Result
	if live {
		title := fmt.Sprintf("%s / %s", cfg.Problem, cfg.Algorithm)
		res, err = viz.RunLive(ctx, runner, opts, title, runner.Objective()[0].Name, cfg.Iterations)
	} else {
		fmt.Printf("running %s on %s...\n", cfg.Algorithm, cfg.Problem)
		res, err = runner.Run(ctx, opts)
	}
	if recorder != nil {
		recorder.RunFinished(cfg.Problem, cfg.Algorithm, res, err)
	}
	if err != nil {
		return err
	}

	runID := ""
	if !noSave {
		if runID, err = saveResult(ctx, res, cfg); err != nil {
			return err
		}
	}
	printResult(res, runID)
	return nil
}

func saveResult(ctx context.Context, res *experiment.Result, cfg *config.Config) (string, error) {
	st, err := openStore(ctx)
	if err != nil {
		return "", err
	}
	defer closeStore(st)
	return st.Save(ctx, res, cfg)
}

func printResult(res *experiment.Result, runID string) {
	fmt.Println(viz.HeaderStyle.Render(fmt.Sprintf("%s on %s", res.Algorithm, res.Problem)))
	if runID != "" {
		fmt.Println(viz.Field("run id", runID))
	}
	fmt.Println(viz.Field("iterations", humanize.Comma(int64(res.Iterations))))
	fmt.Println(viz.Field("evaluations", humanize.Comma(res.Evaluations)))
	if res.CacheHits > 0 {
		fmt.Println(viz.Field("cache hits", humanize.Comma(res.CacheHits)))
	}
	fmt.Println(viz.Field("elapsed", res.Elapsed.String()))

	if best, ok := res.Best(); ok {
		for i, g := range res.Goals {
			fmt.Println(viz.Field(g.Name, fmt.Sprintf("%.6g (%s)", best.Objectives[i], g.Direction)))
		}
		if best.Decoded != "" {
			fmt.Println(viz.Field("best", best.Decoded))
		}
	}
	if len(res.Goals) > 1 {
		fmt.Println(viz.Field("front size", fmt.Sprintf("%d", len(res.Front()))))
	}

	if len(res.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for _, name := range sortedKeys(res.Metrics) {
			fmt.Printf("  %s: %.6f\n", name, res.Metrics[name])
		}
	}
}

func benchProblem(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALGORITHM\tITERATIONS\tEVALUATIONS\tELAPSED\tEVALS/S\tBEST")
	for _, name := range registry.ListAlgorithms() {
		cfg := base.Clone()
		cfg.Algorithm = name
		runner, err := registry.Build(cfg)
		if err != nil {
			return err
		}
		res, err := runner.Run(cmd.Context(), experiment.Options{})
		if err != nil {
			return err
		}

		best := "-"
		if m, ok := res.Best(); ok {
			best = formatVector(m.Objectives)
		}
		rate := float64(res.Evaluations) / res.Elapsed.Seconds()
		fmt.Fprintf(w, "%s\t%d\t%s\t%v\t%s\t%s\n",
			name,
			res.Iterations,
			humanize.Comma(res.Evaluations),
			res.Elapsed.Round(time.Microsecond),
			humanize.SIWithDigits(rate, 1, ""),
			best,
		)
	}
	return w.Flush()
}

func listProblems(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	fmt.Println("problems:")
	for _, p := range registry.ListProblems() {
		presets := config.ListPresets(p)
		if len(presets) > 0 {
			fmt.Printf("  %-12s presets: %s\n", p, strings.Join(presets, ", "))
		} else {
			fmt.Printf("  %s\n", p)
		}
	}
	fmt.Println("algorithms:")
	for _, a := range registry.ListAlgorithms() {
		fmt.Printf("  %s\n", a)
	}
	return nil
}
