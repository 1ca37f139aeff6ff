package performance

import (
	"io"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
)

// RenderBarChart renders points as a PNG bar chart.
func RenderBarChart(w io.Writer, title string, points []ChartPoint) error {
	if len(points) == 0 {
		return ErrNoStats
	}

	maxVal := 1.0
	bars := make([]chart.Value, 0, len(points))
	for _, p := range points {
		if p.Value > maxVal {
			maxVal = p.Value
		}
		bars = append(bars, chart.Value{Label: p.Name, Value: p.Value})
	}

	graph := chart.BarChart{
		Title: title,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Width:    120 * len(bars),
		Height:   512,
		BarWidth: 60,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxVal},
		},
		Bars: bars,
	}
	if graph.Width < 512 {
		graph.Width = 512
	}
	return errors.Wrap(graph.Render(chart.PNG, w), "rendering chart")
}
