package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/experiment"
)

// FrontHTML renders a scatter chart of the run's non-dominated members,
// with the known optimal front alongside when the result carries one.
// Only two-goal results can be drawn.
func FrontHTML(w io.Writer, res *experiment.Result) error {
	if len(res.Goals) != 2 {
		return fmt.Errorf("can only plot 2 goals, %s has %d: %w", res.Problem, len(res.Goals), core.ErrInvalidArgument)
	}
	front := res.Front()
	if len(front) == 0 {
		return fmt.Errorf("%s result has no final population: %w", res.Problem, core.ErrInvalidArgument)
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s on %s", res.Algorithm, res.Problem),
			Subtitle: fmt.Sprintf("seed %d, %d iterations", res.Seed, res.Iterations),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      res.Goals[0].Name,
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      res.Goals[1].Name,
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}))

	if len(res.Reference) > 0 {
		scatter.AddSeries("Reference front", scatterData(res.Reference, "circle"))
	}
	scatter.AddSeries(fmt.Sprintf("%s front", res.Algorithm), scatterData(front, "triangle")).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
			charts.WithEmphasisOpts(opts.Emphasis{}),
		)

	return scatter.Render(w)
}

func scatterData(vectors []core.ObjectiveVector, symbol string) []opts.ScatterData {
	out := make([]opts.ScatterData, len(vectors))
	for i, v := range vectors {
		out[i] = opts.ScatterData{
			Value:      []float64{v[0], v[1]},
			Symbol:     symbol,
			SymbolSize: 10,
		}
	}
	return out
}
