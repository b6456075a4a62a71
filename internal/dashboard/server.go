// Package dashboard serves the results browser: selectors, config tables,
// the scenario charts and their CSV downloads.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/banshee-data/odysseus-results/internal/catalog"
	"github.com/banshee-data/odysseus-results/internal/db"
	"github.com/banshee-data/odysseus-results/internal/export"
	"github.com/banshee-data/odysseus-results/internal/fsutil"
	"github.com/banshee-data/odysseus-results/internal/monitoring"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"fmtFloat": fmtFloat,
}).ParseFS(templatesFS, "templates/*.html"))

// Options configures a Server.
type Options struct {
	FS   fsutil.FileSystem
	Root string
	// Cache memoises CSV downloads. A nil cache disables memoisation.
	Cache *export.Cache
	// Snapshots enables the /api/snapshots routes when set.
	Snapshots  *db.DB
	AssetsHost string
}

type Server struct {
	fs         fsutil.FileSystem
	catalog    *catalog.Catalog
	cache      *export.Cache
	snapshots  *db.DB
	assetsHost string
}

func NewServer(o Options) *Server {
	if o.FS == nil {
		o.FS = fsutil.OSFileSystem{}
	}
	return &Server{
		fs:         o.FS,
		catalog:    catalog.New(o.FS, o.Root),
		cache:      o.Cache,
		snapshots:  o.Snapshots,
		assetsHost: o.AssetsHost,
	}
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /charts/{kind}", s.handleChart)
	mux.HandleFunc("GET /pivot", s.handlePivot)
	mux.HandleFunc("GET /download/{file}", s.handleDownload)
	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.HandleFunc("GET /api/describe", s.handleDescribe)
	if s.snapshots != nil {
		mux.HandleFunc("GET /api/snapshots", s.listSnapshots)
		mux.HandleFunc("POST /api/snapshots", s.importSnapshot)
	}
	return mux
}

// Start serves mux on listen until ctx is cancelled, then shuts down.
func (s *Server) Start(ctx context.Context, listen string, mux *http.ServeMux) error {
	server := &http.Server{
		Addr:    listen,
		Handler: LoggingMiddleware(mux),
	}

	errc := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	monitoring.Logf("dashboard listening on %s", listen)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	monitoring.Logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			monitoring.Logf("HTTP server force close error: %v", err)
		}
	}
	monitoring.Logf("HTTP server routine stopped")
	return nil
}
