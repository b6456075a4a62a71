package export

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/google/go-cmp/cmp"
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

func rateProjection(t *testing.T) *results.Table {
	t.Helper()
	tbl, err := results.ReadCSV(strings.NewReader(
		"requests_rate_factor,n_vehicles_sim,percentage_unsatisfied\n1.0,10,5.0\n2.0,20,15.0\n"), "sim_stats.csv")
	require.NoError(t, err)
	tbl, err = reshape.AddRateColumn(tbl, scenario.A)
	require.NoError(t, err)
	proj, err := reshape.ProjectForRateChart(tbl)
	require.NoError(t, err)
	return proj
}

func TestToCSVBytes_RateProjection(t *testing.T) {
	got, err := ToCSVBytes(rateProjection(t))
	require.NoError(t, err)

	want := ",lambda,percentage_unsatisfied,n_vehicles_sim\n" +
		"0,4.0,5.0,10\n" +
		"1,8.0,15.0,20\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestToCSVBytes_Idempotent(t *testing.T) {
	tbl := rateProjection(t)
	a, err := ToCSVBytes(tbl)
	require.NoError(t, err)
	b, err := ToCSVBytes(tbl)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a, b))
}

func TestToCSVBytes_FilteredIndexRoundTrip(t *testing.T) {
	raw, err := results.ReadCSV(strings.NewReader(testutil.ChargingStatsCSV()), "sim_stats.csv")
	require.NoError(t, err)
	proj, err := reshape.ProjectForChargingFrequencyChart(raw, reshape.XChargesPer100Bookings, 1)
	require.NoError(t, err)

	payload, err := ToCSVBytes(proj)
	require.NoError(t, err)

	back, err := results.ReadIndexedCSV(bytes.NewReader(payload), "download.csv")
	require.NoError(t, err)

	assert.Equal(t, proj.Names(), back.Names())
	assert.Equal(t, proj.Index(), back.Index())
	for _, col := range proj.Names() {
		want, _ := proj.Floats(col)
		got, _ := back.Floats(col)
		require.Len(t, got, len(want))
		for i := range want {
			if math.IsInf(want[i], 0) {
				assert.Equal(t, want[i], got[i], "%s[%d]", col, i)
				continue
			}
			assert.InDelta(t, want[i], got[i], 1e-12, "%s[%d]", col, i)
		}
	}

	// the zero-bookings row survives as +Inf
	per, _ := back.Floats(reshape.ColNChargesPer100Bookings)
	var infs int
	for _, v := range per {
		if math.IsInf(v, 1) {
			infs++
		}
	}
	assert.Equal(t, 1, infs)
}

func TestToCSVBytes_MissingAndStrings(t *testing.T) {
	tbl, err := results.FromSeries("mixed",
		series.New([]float64{1.5, math.NaN(), math.Inf(-1)}, series.Float, "x"),
		series.New([]string{"a", "b,c", "d"}, series.String, "label"),
	)
	require.NoError(t, err)

	got, err := ToCSVBytes(tbl)
	require.NoError(t, err)
	assert.Equal(t, ",x,label\n0,1.5,a\n1,,\"b,c\"\n2,-inf,d\n", string(got))
}

func TestToCSVBytes_Empty(t *testing.T) {
	raw, err := results.ReadCSV(strings.NewReader(testutil.ChargingStatsCSV()), "sim_stats.csv")
	require.NoError(t, err)
	proj, err := reshape.ProjectForChargingFrequencyChart(raw, reshape.XFuelCapacity, 7)
	require.NoError(t, err)

	got, err := ToCSVBytes(proj)
	require.NoError(t, err)
	assert.Equal(t, ",fuel_capacity,percentage_unsatisfied,n_vehicles_sim\n", string(got))
}

func TestFormatFloat(t *testing.T) {
	tests := map[float64]string{
		4:            "4.0",
		0.5:          "0.5",
		-3:           "-3.0",
		1e21:         "1e+21",
		math.Inf(1):  "inf",
		math.Inf(-1): "-inf",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatFloat(in))
	}
	assert.Equal(t, "", FormatFloat(math.NaN()))
}
