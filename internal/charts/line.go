package charts

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineOptions controls how a line chart page is rendered.
type LineOptions struct {
	// ChartID fixes the DOM id of the chart so output is reproducible.
	ChartID    string
	Title      string
	Subtitle   string
	AssetsHost string
	Height     string
}

// RenderLine writes a standalone HTML page with one echarts line per group.
// The x axis spans the data, the y axis is fixed to 0..100, and the chart can
// be zoomed and panned with the mouse.
func RenderLine(w io.Writer, set *SeriesSet, o LineOptions) error {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Height == "" {
		o.Height = "300px"
	}

	xAxis := opts.XAxis{Type: "value", Name: set.X, NameLocation: "middle", NameGap: 25}
	if !math.IsNaN(set.XMin) {
		xAxis.Min, xAxis.Max = set.XMin, set.XMax
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  o.Title,
			ChartID:    o.ChartID,
			Width:      "100%",
			Height:     o.Height,
			AssetsHost: o.AssetsHost,
		}),
		charts.WithTitleOpts(opts.Title{Title: o.Title, Subtitle: o.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10", Top: "10"}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: set.Y, Min: 0, Max: 100}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside", XAxisIndex: []int{0}},
			opts.DataZoom{Type: "inside", YAxisIndex: []int{0}},
		),
	)

	for _, g := range set.Groups {
		data := make([]opts.LineData, len(g.Points))
		for i, p := range g.Points {
			data[i] = opts.LineData{Value: []interface{}{p.X, p.Y}}
		}
		line.AddSeries(fmt.Sprintf("%s = %s", set.Color, g.Name), data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true), SymbolSize: 6}),
		)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render line chart: %w", err)
	}
	return nil
}
