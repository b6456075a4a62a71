package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banshee-data/odysseus-results/internal/charts"
	"github.com/banshee-data/odysseus-results/internal/export"
	"github.com/banshee-data/odysseus-results/internal/reshape"
	"github.com/banshee-data/odysseus-results/internal/results"
	"github.com/banshee-data/odysseus-results/internal/scenario"
	"github.com/banshee-data/odysseus-results/internal/security"
)

// exportFlags select one chart projection.
type exportFlags struct {
	chart    string
	xFeature string
	hours    float64
	capacity float64
	outDir   string
	png      bool
}

func newExportCmd(a *app) *cobra.Command {
	var (
		sf selectionFlags
		ef exportFlags
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a chart projection as CSV, optionally with a PNG plot",
		Long: `Writes the table behind one dashboard chart to <out>/<download name>.

Charts: rate (scenario_A, scenario_B), charging-frequency and
charging-duration (scenario_B1). --hours and --capacity default to the
smallest value present, as the dashboard selectors do.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, dir, s, err := sf.resolve(a.catalog())
			if err != nil {
				return err
			}
			stats, err := results.LoadStats(a.fs, dir, s)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("chart") {
				ef.chart = defaultChart(s)
			}
			proj, x, err := project(stats, s, &ef, cmd.Flags().Changed("hours"), cmd.Flags().Changed("capacity"))
			if err != nil {
				return fmt.Errorf("%s: %w", sel, err)
			}
			paths, err := writeExport(proj, x, &ef)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVar(&ef.chart, "chart", "", "rate, charging-frequency or charging-duration (default: first chart of the scenario)")
	cmd.Flags().StringVar(&ef.xFeature, "x-feature", string(reshape.XChargesPer100Bookings), "x axis of the charging-frequency chart")
	cmd.Flags().Float64Var(&ef.hours, "hours", 0, "Charging duration in hours for charging-frequency")
	cmd.Flags().Float64Var(&ef.capacity, "capacity", 0, "Fuel capacity for charging-duration")
	cmd.Flags().StringVar(&ef.outDir, "out", ".", "Output directory")
	cmd.Flags().BoolVar(&ef.png, "png", false, "Also write a PNG plot")
	return cmd
}

func defaultChart(s scenario.Scenario) string {
	if s == scenario.B1 {
		return export.ChargingFrequencyDownload.Key
	}
	return export.RateDownload.Key
}

// project builds the chart table and returns it with its x column.
func project(stats *results.Table, s scenario.Scenario, ef *exportFlags, hoursSet, capacitySet bool) (*results.Table, string, error) {
	switch ef.chart {
	case export.RateDownload.Key:
		if _, ok := s.LambdaFactor(); !ok {
			return nil, "", fmt.Errorf("%s has no rate chart", s)
		}
		withLambda, err := reshape.AddRateColumn(stats, s)
		if err != nil {
			return nil, "", err
		}
		proj, err := reshape.ProjectForRateChart(withLambda)
		return proj, reshape.ColLambda, err

	case export.ChargingFrequencyDownload.Key, export.ChargingDurationDownload.Key:
		if s != scenario.B1 {
			return nil, "", fmt.Errorf("%s has no %s chart", s, ef.chart)
		}
		converted, err := reshape.ConvertChargingUnits(stats)
		if err != nil {
			return nil, "", err
		}
		if ef.chart == export.ChargingDurationDownload.Key {
			if !capacitySet {
				if ef.capacity, err = smallest(converted, scenario.ColFuelCapacity); err != nil {
					return nil, "", err
				}
			}
			proj, err := reshape.ProjectForDurationChart(converted, ef.capacity)
			return proj, scenario.ColChargingDuration, err
		}
		x, err := reshape.ParseXFeature(ef.xFeature)
		if err != nil {
			return nil, "", err
		}
		if !hoursSet {
			if ef.hours, err = smallest(converted, scenario.ColChargingDuration); err != nil {
				return nil, "", err
			}
		}
		proj, err := reshape.ProjectConvertedForChargingFrequency(converted, x, ef.hours)
		return proj, string(x), err
	}
	return nil, "", fmt.Errorf("unknown chart %q", ef.chart)
}

func smallest(t *results.Table, col string) (float64, error) {
	vals, err := reshape.DistinctSorted(t, col)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("no %s values", col)
	}
	return vals[0], nil
}

// writeExport writes the CSV (and PNG) under ef.outDir and returns the paths.
func writeExport(proj *results.Table, x string, ef *exportFlags) ([]string, error) {
	d, ok := export.DownloadForKey(ef.chart)
	if !ok {
		return nil, fmt.Errorf("unknown chart %q", ef.chart)
	}
	csvPath := filepath.Join(ef.outDir, d.Filename)
	if err := security.ValidateExportPath(csvPath); err != nil {
		return nil, err
	}
	payload, err := export.ToCSVBytes(proj)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(ef.outDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(csvPath, payload, 0o644); err != nil {
		return nil, err
	}
	paths := []string{csvPath}
	if !ef.png {
		return paths, nil
	}

	set, err := charts.BuildSeries(proj, x, scenario.ColPercentageUnsatisfied, scenario.ColNVehiclesSim)
	if err != nil {
		return paths, err
	}
	pngPath := strings.TrimSuffix(csvPath, ".csv") + ".png"
	if err := charts.SaveLinePNG(pngPath, set, charts.DefaultTitle); err != nil {
		return paths, err
	}
	return append(paths, pngPath), nil
}
