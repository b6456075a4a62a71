package charts

import (
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PNG size of exported line charts.
const (
	pngWidth  = 10 * vg.Inch
	pngHeight = 4 * vg.Inch
)

func newLinePlot(set *SeriesSet, title string) (*plot.Plot, error) {
	if title == "" {
		title = DefaultTitle
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = set.X
	p.Y.Label.Text = set.Y
	p.Add(plotter.NewGrid())

	for i, g := range set.Groups {
		xys := make(plotter.XYs, len(g.Points))
		for j, pt := range g.Points {
			xys[j] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", g.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(0)
		p.Add(line, points)
		p.Legend.Add(fmt.Sprintf("%s = %s", set.Color, g.Name), line, points)
	}

	if !math.IsNaN(set.XMin) {
		p.X.Min, p.X.Max = set.XMin, set.XMax
	}
	p.Y.Min, p.Y.Max = 0, 100
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// WriteLinePNG draws set as a PNG image to w.
func WriteLinePNG(w io.Writer, set *SeriesSet, title string) error {
	p, err := newLinePlot(set, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(pngWidth, pngHeight, "png")
	if err != nil {
		return fmt.Errorf("png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// SaveLinePNG writes set as a PNG file at path.
func SaveLinePNG(path string, set *SeriesSet, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteLinePNG(f, set, title); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
