package report

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/cwbudde/difftune/internal/store"
)

// RenderConvergenceChart writes an HTML line chart of best and average score
// by generation to w.
func RenderConvergenceChart(w io.Writer, entries []store.TraceEntry, title string) error {
	if len(entries) == 0 {
		return fmt.Errorf("no trace entries to chart")
	}

	xs := make([]string, len(entries))
	best := make([]opts.LineData, len(entries))
	avg := make([]opts.LineData, len(entries))
	for i, e := range entries {
		xs[i] = fmt.Sprintf("%d", e.Generation)
		best[i] = opts.LineData{Value: e.Best}
		avg[i] = opts.LineData{Value: e.Avg}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d generations", entries[len(entries)-1].Generation),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "generation"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "score"}),
	)
	line.SetXAxis(xs).
		AddSeries("best", best).
		AddSeries("average", avg)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// WriteConvergenceChart renders the convergence chart to an HTML file.
func WriteConvergenceChart(path string, entries []store.TraceEntry, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := RenderConvergenceChart(f, entries, title); err != nil {
		return err
	}
	return nil
}
