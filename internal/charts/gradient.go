package charts

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// rdYlGn holds the eleven anchor colours of the red-yellow-green diverging
// colour map, low to high.
var rdYlGn = mustHexes(
	"#a50026", "#d73027", "#f46d43", "#fdae61", "#fee08b", "#ffffbf",
	"#d9ef8b", "#a6d96a", "#66bd63", "#1a9850", "#006837",
)

// Text colours for cells on dark and light backgrounds.
const (
	LightText = "#f1f1f1"
	DarkText  = "#000000"
)

// darkLuminance is the relative luminance below which a background counts
// as dark.
const darkLuminance = 0.408

func mustHexes(hexes ...string) []colorful.Color {
	out := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}

// Gradient maps values in [VMin, VMax] onto the red-yellow-green scale.
type Gradient struct {
	VMin, VMax float64
}

// SatisfactionGradient is the scale used for percentage_satisfied.
var SatisfactionGradient = Gradient{VMin: 0, VMax: 100}

// Color returns the background colour for v. Values outside the range are
// clamped. ok is false for NaN, which gets no colour.
func (g Gradient) Color(v float64) (c colorful.Color, ok bool) {
	if math.IsNaN(v) {
		return colorful.Color{}, false
	}
	t := 0.0
	if g.VMax > g.VMin {
		t = (v - g.VMin) / (g.VMax - g.VMin)
	}
	t = math.Max(0, math.Min(1, t))

	pos := t * float64(len(rdYlGn)-1)
	i := int(math.Floor(pos))
	if i >= len(rdYlGn)-1 {
		return rdYlGn[len(rdYlGn)-1], true
	}
	return rdYlGn[i].BlendRgb(rdYlGn[i+1], pos-float64(i)).Clamped(), true
}

// TextColor picks a readable text colour for background c.
func TextColor(c colorful.Color) string {
	r, g, b := c.LinearRgb()
	if 0.2126*r+0.7152*g+0.0722*b < darkLuminance {
		return LightText
	}
	return DarkText
}
