package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/banshee-data/odysseus-results/internal/db"
	"github.com/banshee-data/odysseus-results/internal/results"
)

func (a *app) openSnapshotDB(flagPath string) (*db.DB, error) {
	path := flagPath
	if path == "" {
		path = a.cfg.GetSnapshotDB()
	}
	if path == "" {
		return nil, fmt.Errorf("no snapshot database: set --db or snapshot_db in the config file")
	}
	return db.Open(path)
}

func newImportCmd(a *app) *cobra.Command {
	var (
		sf     selectionFlags
		dbPath string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Store a scenario's sim_stats.csv as a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, dir, s, err := sf.resolve(a.catalog())
			if err != nil {
				return err
			}
			stats, err := results.LoadStats(a.fs, dir, s)
			if err != nil {
				return err
			}
			store, err := a.openSnapshotDB(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			id, err := store.ImportTable(cmd.Context(), db.Source{
				City:     sel.City,
				SimType:  sel.SimType,
				Scenario: sel.Scenario,
				File:     results.StatsFile,
			}, stats)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVar(&dbPath, "db", "", "Snapshot database path (default: snapshot_db from the config)")
	return cmd
}

func newSnapshotsCmd(a *app) *cobra.Command {
	var (
		dbPath   string
		deleteID string
	)
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List or delete stored snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openSnapshotDB(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if deleteID != "" {
				return store.DeleteSnapshot(cmd.Context(), deleteID)
			}
			snaps, err := store.Snapshots(cmd.Context())
			if err != nil {
				return err
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("id", "source", "rows", "columns", "created")
			for _, s := range snaps {
				t.Row(
					s.ID,
					strings.Join([]string{s.Source.City, s.Source.SimType, s.Source.Scenario, s.Source.File}, "/"),
					strconv.Itoa(s.Rows),
					strings.Join(s.Columns, ","),
					s.CreatedAt.Format(time.RFC3339),
				)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return err
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "Snapshot database path (default: snapshot_db from the config)")
	cmd.Flags().StringVar(&deleteID, "delete", "", "Delete the snapshot with this id")
	return cmd
}
