// Command odysseus-results serves and exports Odysseus simulation results.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/banshee-data/odysseus-results/internal/catalog"
	"github.com/banshee-data/odysseus-results/internal/config"
	"github.com/banshee-data/odysseus-results/internal/fsutil"
	"github.com/banshee-data/odysseus-results/internal/monitoring"
	"github.com/banshee-data/odysseus-results/internal/scenario"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the state shared by every subcommand once flags are parsed.
type app struct {
	verbose     bool
	configPath  string
	resultsRoot string

	cfg *config.DashboardConfig
	fs  fsutil.FileSystem
}

func newRootCmd() *cobra.Command {
	a := &app{fs: fsutil.OSFileSystem{}}
	root := &cobra.Command{
		Use:           "odysseus-results",
		Short:         "Browse Odysseus simulation results",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := monitoring.NewZap(a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			monitoring.UseZap(l)
			return a.loadConfig(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			monitoring.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (.json, .yaml or .yml)")
	root.PersistentFlags().StringVar(&a.resultsRoot, "results-root", config.DefaultResultsRoot, "Root of the <city>/<sim_type>/<scenario> tree")

	root.AddCommand(
		newServeCmd(a),
		newCatalogCmd(a),
		newPivotCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newSnapshotsCmd(a),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads --config and applies flag overrides on top of it.
func (a *app) loadConfig(cmd *cobra.Command) error {
	a.cfg = &config.DashboardConfig{}
	if a.configPath != "" {
		cfg, err := config.LoadDashboardConfig(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if cmd.Flags().Changed("results-root") {
		a.cfg.SetResultsRoot(a.resultsRoot)
	}
	return a.cfg.Validate()
}

func (a *app) catalog() *catalog.Catalog {
	return catalog.New(a.fs, a.cfg.GetResultsRoot())
}

// selectionFlags are the --city, --sim-type and --scenario flags. Empty
// values default to the first entry, as the dashboard does.
type selectionFlags struct {
	sel catalog.Selection
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sel.City, "city", "", "City (default: first available)")
	cmd.Flags().StringVar(&f.sel.SimType, "sim-type", "", "Simulation type (default: first available)")
	cmd.Flags().StringVar(&f.sel.Scenario, "scenario", "", "Scenario (default: first available)")
}

// resolve completes the selection and returns its directory and scenario.
func (f *selectionFlags) resolve(c *catalog.Catalog) (catalog.Selection, string, scenario.Scenario, error) {
	sel, err := c.Complete(f.sel)
	if err != nil {
		return sel, "", 0, err
	}
	dir, err := c.Resolve(sel)
	if err != nil {
		return sel, "", 0, err
	}
	s, err := scenario.Parse(sel.Scenario)
	if err != nil {
		return sel, dir, 0, err
	}
	return sel, dir, s, nil
}
