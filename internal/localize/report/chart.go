package report

import (
	"fmt"
	"io"

	"github.com/banshee-data/fieldpose/internal/localize/storage/sqlite"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Bounds is the plotted area, normally the pitch plus its margin.
type Bounds struct {
	HalfLength float64
	HalfWidth  float64
}

// series splits recs into estimate, truth, and ball scatter points. Each
// point carries the cycle number as its third value for the tooltip.
func series(recs []sqlite.CycleRecord) (est, truth, ball []opts.ScatterData) {
	for _, rec := range recs {
		if rec.PoseValid {
			est = append(est, opts.ScatterData{Value: []interface{}{rec.Pos.X, rec.Pos.Y, rec.Cycle}})
		}
		if rec.Truth != nil {
			truth = append(truth, opts.ScatterData{Value: []interface{}{rec.Truth.X, rec.Truth.Y, rec.Cycle}})
		}
		if rec.BallValid {
			ball = append(ball, opts.ScatterData{Value: []interface{}{rec.Ball.X, rec.Ball.Y, rec.Cycle}})
		}
	}
	return est, truth, ball
}

// WriteTrajectoryHTML renders estimated and true positions of a run as a
// standalone HTML scatter chart.
func WriteTrajectoryHTML(w io.Writer, title string, recs []sqlite.CycleRecord, b Bounds) error {
	est, truth, ball := series(recs)
	sum := sqlite.Summarize(recs)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Localization replay", Width: "1050px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("cycles=%d valid=%d mean_err=%.2f max_err=%.2f", sum.Cycles, sum.Valid, sum.MeanError, sum.MaxError),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -b.HalfLength, Max: b.HalfLength, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -b.HalfWidth, Max: b.HalfWidth, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("estimate", est, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	scatter.AddSeries("truth", truth, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	if len(ball) > 0 {
		scatter.AddSeries("ball", ball, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	}

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("render trajectory chart: %w", err)
	}
	return nil
}
