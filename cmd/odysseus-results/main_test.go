package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/odysseus-results/internal/catalog"
	"github.com/banshee-data/odysseus-results/internal/charts"
	"github.com/banshee-data/odysseus-results/internal/reshape"
	"github.com/banshee-data/odysseus-results/internal/testutil"
)

func resultsTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testutil.WriteScenario(t, root, "Torino", "multiple_runs", "scenario_A", testutil.RateStatsCSV)
	testutil.WriteScenario(t, root, "Torino", "multiple_runs", "scenario_B1", testutil.ChargingStatsCSV())
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "odysseus-results dev (unknown, built unknown)\n", out)
}

func TestCatalog(t *testing.T) {
	root := resultsTree(t)
	out, err := run(t, "--results-root", root, "catalog")
	require.NoError(t, err)
	assert.Equal(t, "Torino\n  multiple_runs\n    scenario_A\n    scenario_B1\n", out)

	out, err = run(t, "--results-root", root, "catalog", "--json")
	require.NoError(t, err)
	var tree []*catalog.Node
	require.NoError(t, json.Unmarshal([]byte(out), &tree))
	require.Len(t, tree, 1)
	assert.Equal(t, "Torino", tree[0].Name)
}

func TestConfigFile(t *testing.T) {
	root := resultsTree(t)
	cfgPath := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("results_root: "+root+"\n"), 0o644))

	out, err := run(t, "--config", cfgPath, "catalog")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Torino\n"))

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "dashboard.toml"), "catalog")
	assert.Error(t, err)
}

func TestPivot(t *testing.T) {
	root := resultsTree(t)
	out, err := run(t, "--results-root", root, "pivot", "--scenario", "scenario_B1", "--n-vehicles", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "Torino/multiple_runs/scenario_B1, n_vehicles_sim = 20")
	assert.Contains(t, out, "Duration = 0.5")
	assert.Contains(t, out, "Duration = 1")
	assert.Contains(t, out, "Capacity = 100")

	_, err = run(t, "--results-root", root, "pivot", "--scenario", "scenario_A")
	assert.Error(t, err)
}

func TestRenderPivot(t *testing.T) {
	p := &reshape.Pivot{
		RowLabels: []string{"Duration = 0.5", "Duration = 1"},
		ColLabels: []string{"Capacity = 10", "Capacity = 20"},
		Cells:     [][]float64{{10, 90}, {55.5, math.NaN()}},
	}
	out := renderPivot(p, charts.SatisfactionGradient)
	for _, want := range []string{"fuel_capacity", "Capacity = 20", "Duration = 1", "10.00", "55.50", "nan"} {
		assert.Contains(t, out, want)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// Border, header, separator, two rows, border.
	assert.Len(t, lines, 6)
}

func TestExport_Rate(t *testing.T) {
	root := resultsTree(t)
	outDir := t.TempDir()
	out, err := run(t, "--results-root", root, "export", "--scenario", "scenario_A", "--out", outDir, "--png")
	require.NoError(t, err)

	csvPath := filepath.Join(outDir, "unsatisfied_by_n_vehicles.csv")
	pngPath := filepath.Join(outDir, "unsatisfied_by_n_vehicles.png")
	assert.Equal(t, csvPath+"\n"+pngPath+"\n", out)

	b, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t,
		",lambda,percentage_unsatisfied,n_vehicles_sim\n"+
			"0,4.0,5.0,10\n1,8.0,15.0,10\n2,4.0,2.5,20\n3,8.0,7.5,20\n",
		string(b))

	png, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestExport_Charging(t *testing.T) {
	root := resultsTree(t)
	outDir := t.TempDir()

	_, err := run(t, "--results-root", root, "export", "--scenario", "scenario_B1", "--out", outDir)
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(outDir, "unsatisfied_by_charging_frequency.csv"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(b)), "\n"), 21)

	_, err = run(t, "--results-root", root, "export", "--scenario", "scenario_B1",
		"--chart", "charging-duration", "--capacity", "30", "--out", outDir)
	require.NoError(t, err)
	b, err = os.ReadFile(filepath.Join(outDir, "unsatisfied_by_charging_duration.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, ",charging_duration,percentage_unsatisfied,n_vehicles_sim", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2,0.5,"))
	assert.True(t, strings.HasPrefix(lines[2], "12,1.0,"))
}

func TestExport_Errors(t *testing.T) {
	root := resultsTree(t)
	outDir := t.TempDir()

	_, err := run(t, "--results-root", root, "export", "--scenario", "scenario_A", "--chart", "charging-duration", "--out", outDir)
	assert.Error(t, err)

	_, err = run(t, "--results-root", root, "export", "--scenario", "scenario_B1", "--x-feature", "speed", "--out", outDir)
	assert.Error(t, err)

	_, err = run(t, "--results-root", root, "export", "--scenario", "scenario_A", "--chart", "heatmap", "--out", outDir)
	assert.Error(t, err)

	_, err = run(t, "--results-root", root, "export", "--city", "Napoli", "--out", outDir)
	assert.Error(t, err)
}

func TestImportAndSnapshots(t *testing.T) {
	root := resultsTree(t)
	dbPath := filepath.Join(t.TempDir(), "snapshots.db")

	out, err := run(t, "--results-root", root, "import", "--scenario", "scenario_B1", "--db", dbPath)
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	out, err = run(t, "snapshots", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "Torino/multiple_runs/scenario_B1/sim_stats.csv")

	_, err = run(t, "snapshots", "--db", dbPath, "--delete", id)
	require.NoError(t, err)
	out, err = run(t, "snapshots", "--db", dbPath)
	require.NoError(t, err)
	assert.NotContains(t, out, id)

	_, err = run(t, "snapshots", "--db", dbPath, "--delete", id)
	assert.Error(t, err)

	_, err = run(t, "snapshots")
	assert.Error(t, err)
}