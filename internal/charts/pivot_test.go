package charts

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/odysseus-results/internal/reshape"
	"github.com/banshee-data/odysseus-results/internal/results"
	"github.com/banshee-data/odysseus-results/internal/testutil"
)

func TestGradient_Endpoints(t *testing.T) {
	g := SatisfactionGradient

	c, ok := g.Color(0)
	require.True(t, ok)
	assert.Equal(t, "#a50026", c.Hex())

	c, _ = g.Color(50)
	assert.Equal(t, "#ffffbf", c.Hex())

	c, _ = g.Color(100)
	assert.Equal(t, "#006837", c.Hex())

	// clamped
	c, _ = g.Color(-20)
	assert.Equal(t, "#a50026", c.Hex())
	c, _ = g.Color(140)
	assert.Equal(t, "#006837", c.Hex())

	_, ok = g.Color(math.NaN())
	assert.False(t, ok)
}

func TestTextColor(t *testing.T) {
	dark, _ := SatisfactionGradient.Color(0)
	light, _ := SatisfactionGradient.Color(50)
	assert.Equal(t, LightText, TextColor(dark))
	assert.Equal(t, DarkText, TextColor(light))
}

func TestCellStyle(t *testing.T) {
	assert.Equal(t, "background-color: #006837; color: #f1f1f1;", CellStyle(SatisfactionGradient, 100))
	assert.Equal(t, "", CellStyle(SatisfactionGradient, math.NaN()))
}

func TestPivotHTML(t *testing.T) {
	tbl, err := results.ReadCSV(strings.NewReader(testutil.ChargingStatsCSV()), "sim_stats.csv")
	require.NoError(t, err)
	conv, err := reshape.ConvertChargingUnits(tbl)
	require.NoError(t, err)
	p, err := reshape.BuildSatisfactionPivot(conv, 10)
	require.NoError(t, err)
	p, err = reshape.SelectPivotColumns(p)
	require.NoError(t, err)

	out, err := PivotHTML(p, SatisfactionGradient)
	require.NoError(t, err)
	html := string(out)

	assert.Equal(t, 2, strings.Count(html, "<tr><th>Duration = "))
	assert.Equal(t, 20, strings.Count(html, "background-color: #"))
	assert.Less(t, strings.Index(html, "Capacity = 10<"), strings.Index(html, "Capacity = 100<"))
	assert.Contains(t, html, "<th>Duration = 0.5</th>")
	// 10 vehicles, 0.5 h, capacity 10: 5 + 5 + 10
	assert.Contains(t, html, ">20.000000</td>")
}

func TestPivotHTML_MissingCell(t *testing.T) {
	p := &reshape.Pivot{
		RowLabels: []string{"Duration = 1"},
		ColLabels: []string{"Capacity = 10", "Capacity = 20"},
		Cells:     [][]float64{{80, math.NaN()}},
	}
	out, err := PivotHTML(p, SatisfactionGradient)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<td>nan</td>")
	assert.Equal(t, 1, strings.Count(string(out), "background-color"))
}
