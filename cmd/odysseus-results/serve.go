package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/banshee-data/odysseus-results/internal/catalog"
	"github.com/banshee-data/odysseus-results/internal/dashboard"
	"github.com/banshee-data/odysseus-results/internal/db"
	"github.com/banshee-data/odysseus-results/internal/export"
	"github.com/banshee-data/odysseus-results/internal/monitoring"
	"github.com/banshee-data/odysseus-results/internal/version"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		listen     string
		snapshotDB string
		watch      bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the results dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				a.cfg.SetListen(listen)
			}
			if cmd.Flags().Changed("snapshot-db") {
				a.cfg.SetSnapshotDB(snapshotDB)
			}
			if cmd.Flags().Changed("watch") {
				a.cfg.SetWatch(watch)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", ":8080", "Listen address")
	cmd.Flags().StringVar(&snapshotDB, "snapshot-db", "", "Snapshot database path (enables /api/snapshots and /debug/tailsql/)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Purge the download cache when result files change")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	monitoring.Logf("odysseus-results %s, results root %s", version.String(), a.cfg.GetResultsRoot())

	var cache *export.Cache
	if n := a.cfg.GetCacheEntries(); n > 0 {
		cache = export.NewCache(n)
	}

	var store *db.DB
	if path := a.cfg.GetSnapshotDB(); path != "" {
		var err error
		if store, err = db.Open(path); err != nil {
			return fmt.Errorf("open snapshot db: %w", err)
		}
		defer store.Close()
	}

	server := dashboard.NewServer(dashboard.Options{
		FS:         a.fs,
		Root:       a.cfg.GetResultsRoot(),
		Cache:      cache,
		Snapshots:  store,
		AssetsHost: a.cfg.GetAssetsHost(),
	})
	mux := server.ServeMux()
	if store != nil {
		if err := attachAdmin(store, mux); err != nil {
			return err
		}
	}

	if a.cfg.GetWatch() && cache != nil {
		w, err := catalog.NewWatcher(a.cfg.GetResultsRoot(), a.cfg.GetWatchDebounce(), cache.Purge)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("watch results: %w", err)
		}
		defer w.Close()
	}

	return server.Start(ctx, a.cfg.GetListen(), mux)
}

func attachAdmin(store *db.DB, mux *http.ServeMux) error {
	if err := store.AttachAdminRoutes(mux); err != nil {
		return fmt.Errorf("attach admin routes: %w", err)
	}
	monitoring.Logf("snapshot db %s, tailsql at /debug/tailsql/", store.Path())
	return nil
}
