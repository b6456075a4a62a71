package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/banshee-data/odysseus-results/internal/charts"
	"github.com/banshee-data/odysseus-results/internal/reshape"
	"github.com/banshee-data/odysseus-results/internal/results"
	"github.com/banshee-data/odysseus-results/internal/scenario"
)

func newPivotCmd(a *app) *cobra.Command {
	var (
		sf        selectionFlags
		nVehicles int
	)
	cmd := &cobra.Command{
		Use:   "pivot",
		Short: "Print the charging satisfaction pivot of a scenario_B1 run",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, dir, s, err := sf.resolve(a.catalog())
			if err != nil {
				return err
			}
			if s != scenario.B1 {
				return fmt.Errorf("%s has no charging pivot", sel)
			}
			stats, err := results.LoadStats(a.fs, dir, s)
			if err != nil {
				return err
			}
			converted, err := reshape.ConvertChargingUnits(stats)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("n-vehicles") {
				opts, err := reshape.DistinctSorted(converted, scenario.ColNVehiclesSim)
				if err != nil {
					return err
				}
				if len(opts) == 0 {
					return fmt.Errorf("%s: no rows", sel)
				}
				nVehicles = int(opts[0])
			}
			p, err := reshape.BuildSatisfactionPivot(converted, nVehicles)
			if err != nil {
				return err
			}
			if p, err = reshape.SelectPivotColumns(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s, n_vehicles_sim = %d\n", sel, nVehicles)
			fmt.Fprintln(cmd.OutOrStdout(), renderPivot(p, charts.SatisfactionGradient))
			return nil
		},
	}
	sf.register(cmd)
	cmd.Flags().IntVar(&nVehicles, "n-vehicles", 0, "Fleet size to pivot (default: smallest)")
	return cmd
}

// renderPivot draws p as a terminal table, each cell shaded like the
// dashboard pivot.
func renderPivot(p *reshape.Pivot, g charts.Gradient) string {
	rows := make([][]string, len(p.RowLabels))
	for i, label := range p.RowLabels {
		row := make([]string, 0, len(p.ColLabels)+1)
		row = append(row, label)
		for _, v := range p.Cells[i] {
			row = append(row, pivotCellText(v))
		}
		rows[i] = row
	}

	base := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(append([]string{scenario.ColFuelCapacity}, p.ColLabels...)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return base.Bold(true)
			}
			v := p.Cells[row-(table.HeaderRow+1)][col-1]
			c, ok := g.Color(v)
			if !ok {
				return base
			}
			return base.
				Background(lipgloss.Color(c.Hex())).
				Foreground(lipgloss.Color(charts.TextColor(c)))
		})
	return t.String()
}

func pivotCellText(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
