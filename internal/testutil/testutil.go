// Package testutil provides shared test fixtures: results trees with the
// four CSV files of a scenario directory, on disk or in memory.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/odysseus-results/internal/fsutil"
)

// Config tables shown above the charts. Their content is not interpreted.
const (
	GeneralConfigCSV = "sim_run_mode,n_vehicles\nsingle_run,100\n"
	DemandConfigCSV  = "city,data_source_id,year\nTorino,big_data_db,2017\n"
	SupplyConfigCSV  = "requests_rate_factor,n_vehicles,engine_type\n1.0,100,electric\n"
)

// RateStatsCSV is a scenario_A/scenario_B stats table with two fleet sizes.
const RateStatsCSV = `requests_rate_factor,n_vehicles_sim,percentage_unsatisfied,percentage_satisfied,n_same_zone_trips
1.0,10,5.0,95.0,3
2.0,10,15.0,85.0,4
1.0,20,2.5,97.5,5
2.0,20,7.5,92.5,6
`

// Charging fixture axes.
var (
	ChargingVehicles   = []int{10, 20}
	ChargingDurations  = []int{1800, 3600} // seconds
	ChargingCapacities = []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
)

// ZeroBookingsRow identifies the one charging row with n_bookings == 0.
var ZeroBookingsRow = struct{ Vehicles, Duration, Capacity int }{20, 3600, 100}

// ChargingSatisfied is the percentage_satisfied of a charging fixture row.
func ChargingSatisfied(vehicles, durationSec, capacity int) float64 {
	return float64(capacity)/2 + float64(durationSec)/3600*10 + float64(vehicles)
}

// ChargingStatsCSV builds a scenario_B1 stats table covering every
// (vehicles, duration, capacity) combination of the fixture axes.
func ChargingStatsCSV() string {
	var b strings.Builder
	b.WriteString("n_vehicles_sim,charging_duration,fuel_capacity,n_charges,n_bookings,percentage_satisfied,percentage_unsatisfied\n")
	for _, v := range ChargingVehicles {
		for _, d := range ChargingDurations {
			for _, c := range ChargingCapacities {
				bookings := 100
				if v == ZeroBookingsRow.Vehicles && d == ZeroBookingsRow.Duration && c == ZeroBookingsRow.Capacity {
					bookings = 0
				}
				charges := c/10 + d/1800
				sat := ChargingSatisfied(v, d, c)
				fmt.Fprintf(&b, "%d,%d,%d,%d,%d,%g,%g\n", v, d, c, charges, bookings, sat, 100-sat)
			}
		}
	}
	return b.String()
}

// WriteScenario writes a scenario directory under root on disk and returns
// its path.
func WriteScenario(t testing.TB, root, city, simType, scenarioName, statsCSV string) string {
	t.Helper()
	dir := filepath.Join(root, city, simType, scenarioName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for name, body := range scenarioFiles(statsCSV) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

// MemScenario is WriteScenario for an in-memory filesystem.
func MemScenario(mfs *fsutil.MemoryFileSystem, root, city, simType, scenarioName, statsCSV string) string {
	dir := filepath.Join(root, city, simType, scenarioName)
	for name, body := range scenarioFiles(statsCSV) {
		mfs.WriteFile(filepath.Join(dir, name), []byte(body))
	}
	return dir
}

func scenarioFiles(statsCSV string) map[string]string {
	return map[string]string{
		"sim_general_config_grid.csv":  GeneralConfigCSV,
		"demand_model_config_grid.csv": DemandConfigCSV,
		"sim_scenario_config_grid.csv": SupplyConfigCSV,
		"sim_stats.csv":                statsCSV,
	}
}

// Serve runs one request through h and returns the recorder.
func Serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
