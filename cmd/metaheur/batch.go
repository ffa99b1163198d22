package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/san-kum/metaheur/internal/automation"
	"github.com/san-kum/metaheur/internal/experiment"
	"github.com/san-kum/metaheur/internal/optim"
	"github.com/san-kum/metaheur/internal/storage"
	"github.com/san-kum/metaheur/internal/viz"
)

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	sweep := &automation.ParameterSweep{Base: base, Param: sweepParam, Min: sweepMin, Max: sweepMax, Steps: sweepSteps}
	results, err := automation.RunSweep(cmd.Context(), sweep, experiment.NewRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tEVALUATIONS\tBEST\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%s\t%s\n", r.Value, humanize.Comma(r.Evaluations), formatVector(r.Best))
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st storage.Store
	for _, step := range scenario.Steps {
		if step.Save {
			if st, err = openStore(ctx); err != nil {
				return err
			}
			defer closeStore(st)
			break
		}
	}

	fmt.Printf("scenario %s: %d steps\n", scenario.Name, len(scenario.Steps))
	results, err := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), st)
	for _, r := range results {
		best := "-"
		if m, ok := r.Result.Best(); ok {
			best = formatVector(m.Objectives)
		}
		line := fmt.Sprintf("  %-20s %s evaluations, best %s", r.Name, humanize.Comma(r.Result.Evaluations), best)
		if r.RunID != "" {
			line += "  [" + r.RunID + "]"
		}
		fmt.Println(line)
	}
	return err
}

func runReplicates(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	summary, err := automation.RunReplicates(cmd.Context(), cfg, experiment.NewRegistry(), runs, max(cfg.Runtime.Workers, 1))
	if err != nil {
		return err
	}

	fmt.Println(viz.HeaderStyle.Render(fmt.Sprintf("%d replicates of %s on %s", len(summary.Finals), cfg.Algorithm, cfg.Problem)))
	fmt.Println(viz.Field("mean", fmt.Sprintf("%.6g", summary.Mean)))
	fmt.Println(viz.Field("std", fmt.Sprintf("%.6g", summary.Std)))
	fmt.Println(viz.Field("best", fmt.Sprintf("%.6g", summary.Best)))
	fmt.Println(viz.Field("worst", fmt.Sprintf("%.6g", summary.Worst)))
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(grid)
	if err != nil {
		return err
	}
	search, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	fmt.Printf("grid search over %s: %d runs\n", strings.Join(names, ", "), search.Size())
	best, trials, err := search.Search(cmd.Context(), base, experiment.NewRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSCORE\n", strings.ToUpper(strings.Join(names, "\t")))
	for _, tr := range trials {
		cells := make([]string, len(names))
		for i, n := range names {
			cells[i] = strconv.FormatFloat(tr.Params[n], 'g', -1, 64)
		}
		fmt.Fprintf(w, "%s\t%.6g\n", strings.Join(cells, "\t"), tr.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nbest: %v -> %.6g\n", best.Params, best.Score)
	return nil
}

// parseGrid reads "name=v1,v2,..." entries.
func parseGrid(entries []string) ([]string, [][]float64, error) {
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("at least one --grid entry is required")
	}
	names := make([]string, len(entries))
	ranges := make([][]float64, len(entries))
	for i, e := range entries {
		name, list, ok := strings.Cut(e, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("grid entry %q is not name=v1,v2,...", e)
		}
		names[i] = name
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid entry %s: %w", name, err)
			}
			ranges[i] = append(ranges[i], v)
		}
	}
	return names, ranges, nil
}
