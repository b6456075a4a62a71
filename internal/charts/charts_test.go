package charts

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/odysseus-results/internal/monitoring"
	"github.com/banshee-data/odysseus-results/internal/reshape"
	"github.com/banshee-data/odysseus-results/internal/results"
	"github.com/banshee-data/odysseus-results/internal/scenario"
	"github.com/banshee-data/odysseus-results/internal/testutil"
)

func init() {
	monitoring.SetLogger(nil)
}

func rateSet(t *testing.T) *SeriesSet {
	t.Helper()
	tbl, err := results.ReadCSV(strings.NewReader(testutil.RateStatsCSV), "sim_stats.csv")
	require.NoError(t, err)
	tbl, err = reshape.AddRateColumn(tbl, scenario.A)
	require.NoError(t, err)
	proj, err := reshape.ProjectForRateChart(tbl)
	require.NoError(t, err)
	set, err := BuildSeries(proj, reshape.ColLambda, scenario.ColPercentageUnsatisfied, scenario.ColNVehiclesSim)
	require.NoError(t, err)
	return set
}

func TestBuildSeries(t *testing.T) {
	set := rateSet(t)

	require.Len(t, set.Groups, 2)
	assert.Equal(t, "10", set.Groups[0].Name)
	assert.Equal(t, "20", set.Groups[1].Name)
	assert.Equal(t, []Point{{4, 5}, {8, 15}}, set.Groups[0].Points)
	assert.Equal(t, []Point{{4, 2.5}, {8, 7.5}}, set.Groups[1].Points)
	assert.Equal(t, 4.0, set.XMin)
	assert.Equal(t, 8.0, set.XMax)
	assert.Zero(t, set.Skipped)
}

func TestBuildSeries_SortsAndSkipsNonFinite(t *testing.T) {
	tbl, err := results.FromSeries("proj",
		series.New([]float64{3, 1, math.Inf(1), 2, math.NaN()}, series.Float, "x"),
		series.New([]float64{30, 10, 50, 20, 40}, series.Float, "y"),
		series.New([]int{1, 1, 1, 1, 1}, series.Int, "c"),
	)
	require.NoError(t, err)

	set, err := BuildSeries(tbl, "x", "y", "c")
	require.NoError(t, err)
	require.Len(t, set.Groups, 1)
	assert.Equal(t, []Point{{1, 10}, {2, 20}, {3, 30}}, set.Groups[0].Points)
	assert.Equal(t, 2, set.Skipped)
	assert.Equal(t, 1.0, set.XMin)
	assert.Equal(t, 3.0, set.XMax)

	_, err = BuildSeries(tbl, "x", "missing", "c")
	assert.ErrorIs(t, err, results.ErrMissingColumn)
}

func TestRenderLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderLine(&buf, rateSet(t), LineOptions{ChartID: "rate"}))

	out := buf.String()
	assert.Contains(t, out, DefaultTitle)
	assert.Contains(t, out, `"n_vehicles_sim = 10"`)
	assert.Contains(t, out, `"n_vehicles_sim = 20"`)
	assert.Contains(t, out, `"inside"`)
	assert.Contains(t, out, "rate")

	var again bytes.Buffer
	require.NoError(t, RenderLine(&again, rateSet(t), LineOptions{ChartID: "rate"}))
	assert.Equal(t, out, again.String(), "fixed chart id gives reproducible output")
}

func TestRenderLine_ZeroBookingsInf(t *testing.T) {
	raw, err := results.ReadCSV(strings.NewReader(testutil.ChargingStatsCSV()), "sim_stats.csv")
	require.NoError(t, err)
	proj, err := reshape.ProjectForChargingFrequencyChart(raw, reshape.XChargesPer100Bookings, 1)
	require.NoError(t, err)
	set, err := BuildSeries(proj, string(reshape.XChargesPer100Bookings), scenario.ColPercentageUnsatisfied, scenario.ColNVehiclesSim)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Skipped)

	var buf bytes.Buffer
	assert.NoError(t, RenderLine(&buf, set, LineOptions{ChartID: "freq"}))
}

func TestRenderLine_Empty(t *testing.T) {
	set := &SeriesSet{X: "x", Y: "y", Color: "c", XMin: math.NaN(), XMax: math.NaN()}
	assert.True(t, set.Empty())
	var buf bytes.Buffer
	assert.NoError(t, RenderLine(&buf, set, LineOptions{ChartID: "empty"}))
}

func TestWriteLinePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLinePNG(&buf, rateSet(t), ""))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), img.Bounds().Dy())
}

func TestSaveLinePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rate.png")
	require.NoError(t, SaveLinePNG(path, rateSet(t), "Rate"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, SaveLinePNG(filepath.Join(t.TempDir(), "missing", "x.png"), rateSet(t), ""))
}
