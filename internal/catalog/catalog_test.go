package catalog

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/odysseus-results/internal/fsutil"
	"github.com/banshee-data/odysseus-results/internal/security"
	"github.com/banshee-data/odysseus-results/internal/testutil"
)

const root = "odysseus/simulator/results"

func memTree() *fsutil.MemoryFileSystem {
	mfs := fsutil.NewMemoryFileSystem()
	testutil.MemScenario(mfs, root, "Torino", "multiple_runs", "scenario_A", testutil.RateStatsCSV)
	testutil.MemScenario(mfs, root, "Torino", "multiple_runs", "scenario_B1", testutil.ChargingStatsCSV())
	testutil.MemScenario(mfs, root, "Milano", "single_run", "scenario_B", testutil.RateStatsCSV)
	mfs.WriteFile(filepath.Join(root, ".DS_Store"), []byte{0})
	mfs.WriteFile(filepath.Join(root, "Torino", ".DS_Store"), []byte{0})
	mfs.WriteFile(filepath.Join(root, "README.txt"), []byte("notes"))
	mfs.MkdirAll(filepath.Join(root, "Roma"))
	return mfs
}

func TestListing(t *testing.T) {
	c := New(memTree(), root)

	cities, err := c.Cities()
	require.NoError(t, err)
	assert.Equal(t, []string{"Milano", "Roma", "Torino"}, cities)

	simTypes, err := c.SimTypes("Torino")
	require.NoError(t, err)
	assert.Equal(t, []string{"multiple_runs"}, simTypes)

	scenarios, err := c.Scenarios("Torino", "multiple_runs")
	require.NoError(t, err)
	assert.Equal(t, []string{"scenario_A", "scenario_B1"}, scenarios)

	empty, err := c.SimTypes("Roma")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = c.SimTypes("Napoli")
	assert.True(t, errors.Is(err, ErrUnknownSelection))

	_, err = c.SimTypes("..")
	assert.True(t, errors.Is(err, security.ErrInvalidSegment))
}

func TestListing_MissingRoot(t *testing.T) {
	c := New(fsutil.NewMemoryFileSystem(), root)
	_, err := c.Cities()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnknownSelection))
}

func TestResolve(t *testing.T) {
	c := New(memTree(), root)

	dir, err := c.Resolve(Selection{"Torino", "multiple_runs", "scenario_B1"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Torino", "multiple_runs", "scenario_B1"), dir)

	_, err = c.Resolve(Selection{"Torino", "multiple_runs", "scenario_C"})
	assert.True(t, errors.Is(err, ErrUnknownSelection))

	_, err = c.Resolve(Selection{"Torino", "../..", "scenario_A"})
	assert.True(t, errors.Is(err, security.ErrInvalidSegment))

	_, err = c.Resolve(Selection{"README.txt", "", ""})
	assert.Error(t, err)
}

func TestComplete(t *testing.T) {
	c := New(memTree(), root)

	sel, err := c.Complete(Selection{})
	require.NoError(t, err)
	assert.Equal(t, Selection{"Milano", "single_run", "scenario_B"}, sel)

	sel, err = c.Complete(Selection{City: "Torino"})
	require.NoError(t, err)
	assert.Equal(t, Selection{"Torino", "multiple_runs", "scenario_A"}, sel)

	_, err = c.Complete(Selection{City: "Roma"})
	assert.True(t, errors.Is(err, ErrUnknownSelection))

	_, err = c.Complete(Selection{City: "Torino", Scenario: "scenario_Z"})
	assert.True(t, errors.Is(err, ErrUnknownSelection))
}

func TestTree(t *testing.T) {
	c := New(memTree(), root)
	tree, err := c.Tree()
	require.NoError(t, err)

	want := []*Node{
		{Name: "Milano", Children: []*Node{{Name: "single_run", Children: []*Node{{Name: "scenario_B"}}}}},
		{Name: "Roma"},
		{Name: "Torino", Children: []*Node{{Name: "multiple_runs", Children: []*Node{{Name: "scenario_A"}, {Name: "scenario_B1"}}}}},
	}
	if diff := cmp.Diff(want, tree); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestListing_OnDisk(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteScenario(t, dir, "Torino", "multiple_runs", "scenario_A", testutil.RateStatsCSV)

	c := New(fsutil.OSFileSystem{}, dir)
	sel, err := c.Complete(Selection{})
	require.NoError(t, err)
	assert.Equal(t, "Torino/multiple_runs/scenario_A", sel.String())
}
