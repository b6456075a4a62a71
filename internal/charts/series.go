// Package charts renders chart projections as interactive echarts pages,
// static PNG images, and the colour-graded pivot table.
package charts

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/odysseus-results/internal/reshape"
	"github.com/banshee-data/odysseus-results/internal/results"
)

// DefaultTitle is the title of every unsatisfied-demand chart.
const DefaultTitle = "Unsatisfied Demand [%]"

// Point is one (x, y) pair of a line.
type Point struct {
	X, Y float64
}

// Group is the line drawn for one value of the colour column.
type Group struct {
	Key    float64
	Name   string
	Points []Point
}

// SeriesSet is a projection split into lines, one per distinct colour
// value, ready for any renderer.
type SeriesSet struct {
	X, Y, Color string
	Groups      []Group
	// XMin and XMax span the finite x values; both are NaN when there are
	// none.
	XMin, XMax float64
	Skipped    int
}

// Empty reports whether there is nothing to draw.
func (s *SeriesSet) Empty() bool { return len(s.Groups) == 0 }

// BuildSeries groups t by the color column and sorts each group by x.
// Points with a non-finite x or y are left out and counted in Skipped.
func BuildSeries(t *results.Table, x, y, color string) (*SeriesSet, error) {
	xs, err := t.Floats(x)
	if err != nil {
		return nil, err
	}
	ys, err := t.Floats(y)
	if err != nil {
		return nil, err
	}
	cs, err := t.Floats(color)
	if err != nil {
		return nil, err
	}

	set := &SeriesSet{X: x, Y: y, Color: color, XMin: math.NaN(), XMax: math.NaN()}
	byKey := make(map[float64]*Group)
	var finiteX []float64
	for i := range xs {
		if !finite(xs[i]) || !finite(ys[i]) || math.IsNaN(cs[i]) {
			set.Skipped++
			continue
		}
		g, ok := byKey[cs[i]]
		if !ok {
			g = &Group{Key: cs[i], Name: reshape.FormatValue(cs[i])}
			byKey[cs[i]] = g
		}
		g.Points = append(g.Points, Point{X: xs[i], Y: ys[i]})
		finiteX = append(finiteX, xs[i])
	}

	for _, g := range byKey {
		sort.SliceStable(g.Points, func(a, b int) bool { return g.Points[a].X < g.Points[b].X })
		set.Groups = append(set.Groups, *g)
	}
	sort.Slice(set.Groups, func(a, b int) bool { return set.Groups[a].Key < set.Groups[b].Key })

	if len(finiteX) > 0 {
		set.XMin, set.XMax = floats.Min(finiteX), floats.Max(finiteX)
	}
	return set, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
