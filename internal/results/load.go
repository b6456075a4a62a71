package results

import (
	"fmt"
	"path/filepath"

	"github.com/banshee-data/odysseus-results/internal/fsutil"
	"github.com/banshee-data/odysseus-results/internal/monitoring"
	"github.com/banshee-data/odysseus-results/internal/scenario"
)

// Files expected in every scenario directory.
const (
	GeneralConfigFile = "sim_general_config_grid.csv"
	DemandConfigFile  = "demand_model_config_grid.csv"
	SupplyConfigFile  = "sim_scenario_config_grid.csv"
	StatsFile         = "sim_stats.csv"
)

// Bundle holds the four tables of one scenario directory.
type Bundle struct {
	Dir     string
	General *Table
	Demand  *Table
	Supply  *Table
	Stats   *Table
}

// LoadFile reads one CSV file through fsys. A missing file is reported with
// an error wrapping fs.ErrNotExist.
func LoadFile(fsys fsutil.FileSystem, path string) (*Table, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results file: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(f, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	monitoring.Logf("loaded %s: %d rows, %d columns", path, t.Nrow(), t.Ncol())
	return t, nil
}

// LoadBundle reads all four tables from dir. Every call goes to disk; nothing
// is cached between calls.
func LoadBundle(fsys fsutil.FileSystem, dir string) (*Bundle, error) {
	b := &Bundle{Dir: dir}
	for _, f := range []struct {
		name string
		dst  **Table
	}{
		{GeneralConfigFile, &b.General},
		{DemandConfigFile, &b.Demand},
		{SupplyConfigFile, &b.Supply},
		{StatsFile, &b.Stats},
	} {
		t, err := LoadFile(fsys, filepath.Join(dir, f.name))
		if err != nil {
			return nil, err
		}
		*f.dst = t
	}
	return b, nil
}

// ValidateFor checks the stats table against the columns s needs.
func (b *Bundle) ValidateFor(s scenario.Scenario) error {
	return StatsSchema(s).Validate(b.Stats)
}

// LoadStats reads and validates only sim_stats.csv, for callers that do not
// display the config tables.
func LoadStats(fsys fsutil.FileSystem, dir string, s scenario.Scenario) (*Table, error) {
	t, err := LoadFile(fsys, filepath.Join(dir, StatsFile))
	if err != nil {
		return nil, err
	}
	if err := StatsSchema(s).Validate(t); err != nil {
		return nil, err
	}
	return t, nil
}
