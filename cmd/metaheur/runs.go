package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/san-kum/metaheur/internal/analysis"
	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/experiment"
	"github.com/san-kum/metaheur/internal/export"
	"github.com/san-kum/metaheur/internal/storage"
	"github.com/san-kum/metaheur/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	runs, err := st.List(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROBLEM\tALGORITHM\tCREATED\tITERATIONS\tEVALUATIONS\tBEST")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			run.ID,
			run.Problem,
			run.Algorithm,
			humanize.Time(run.Timestamp),
			run.Iterations,
			humanize.Comma(run.Evaluations),
			formatVector(run.Best),
		)
	}
	return w.Flush()
}

func loadResult(cmd *cobra.Command, id string) (*experiment.Result, error) {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer closeStore(st)
	return st.LoadResult(ctx, id)
}

func showRun(cmd *cobra.Command, args []string) error {
	res, err := loadResult(cmd, args[0])
	if err != nil {
		return err
	}
	objective, err := res.Objective()
	if err != nil {
		return err
	}
	printResult(res, args[0])
	if len(res.Final) == 0 {
		return nil
	}

	vectors := make([]core.ObjectiveVector, len(res.Final))
	genotypes := make([]string, len(res.Final))
	for i, m := range res.Final {
		vectors[i], genotypes[i] = m.Objectives, m.Genotype
	}
	stats, err := analysis.Describe(objective, vectors)
	if err != nil {
		return err
	}

	fmt.Println("\nfinal population:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GOAL\tMEAN\tSTD\tMIN\tMAX\tIMPROVEMENT")
	for g, s := range stats {
		fmt.Fprintf(w, "%s\t%.6g\t%.6g\t%.6g\t%.6g\t%.6g\n",
			s.Goal, s.Mean, s.Std, s.Min, s.Max, analysis.Improvement(res.History, objective, g))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println(viz.Field("spread", fmt.Sprintf("%.6g", analysis.Spread(vectors))))
	fmt.Println(viz.Field("uniqueness", fmt.Sprintf("%.2f", analysis.Uniqueness(genotypes))))

	if objective.Dim() == 2 {
		front := res.Front()
		ref := analysis.ReferencePoint(objective, vectors, 0.1)
		if len(res.Reference) > 0 {
			ref = analysis.ReferencePoint(objective, append(append([]core.ObjectiveVector{}, vectors...), res.Reference...), 0.1)
		}
		hv, err := analysis.Hypervolume2D(objective, front, ref)
		if err != nil {
			return err
		}
		fmt.Println(viz.Field("hypervolume", fmt.Sprintf("%.6g at %s", hv, formatVector(ref))))
		if len(res.Reference) > 0 {
			igd, err := analysis.IGD(front, res.Reference)
			if err != nil {
				return err
			}
			fmt.Println(viz.Field("igd", fmt.Sprintf("%.6g", igd)))
		}
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	res, err := loadResult(cmd, args[0])
	if err != nil {
		return err
	}
	if len(res.History) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", args[0])
	fmt.Printf("problem: %s\n", res.Problem)
	fmt.Printf("iterations: %d\n\n", res.Iterations)

	for g, goal := range res.Goals {
		points := export.ConvergencePoints(res.History, g)
		if len(points) == 0 {
			continue
		}
		data := make([]float64, len(points))
		for i, p := range points {
			data[i] = p.Y
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("best %s (%s)", goal.Name, goal.Direction)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func plotFront(cmd *cobra.Command, args []string) error {
	res, err := loadResult(cmd, args[0])
	if err != nil {
		return err
	}
	if len(res.Goals) != 2 {
		return fmt.Errorf("front plot needs 2 goals, %s has %d", res.Problem, len(res.Goals))
	}

	fmt.Printf("front of %s (%s vs %s)\n\n", args[0], res.Goals[0].Name, res.Goals[1].Name)
	fmt.Println(analysis.Scatter(70, 20,
		analysis.Series{Marker: '·', Points: res.Reference},
		analysis.Series{Marker: '•', Points: res.Front()},
	))

	if outFile == "" {
		return nil
	}
	return writeOutput(outFile, func(w io.Writer) error { return export.FrontHTML(w, res) })
}

func exportSVG(cmd *cobra.Command, args []string) error {
	res, err := loadResult(cmd, args[0])
	if err != nil {
		return err
	}
	svg, err := export.ConvergenceSVG(res.History, goalIndex, 800, 400)
	if err != nil {
		return err
	}
	return writeOutput(outFile, func(w io.Writer) error {
		_, err := io.WriteString(w, svg)
		return err
	})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	res, err := loadResult(cmd, args[0])
	if err != nil {
		return err
	}
	return export.WriteJSON(os.Stdout, res)
}

// writeOutput writes to path, or to stdout when path is empty.
func writeOutput(path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	return nil
}

func closeStore(st storage.Store) {
	if err := storage.Close(st); err != nil {
		klog.ErrorS(err, "Closing run store")
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatVector(v []float64) string {
	if len(v) == 0 {
		return "-"
	}
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.6g", x)
	}
	return strings.Join(parts, ", ")
}
