package dashboard

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"

	"github.com/banshee-data/odysseus-results/internal/catalog"
	"github.com/banshee-data/odysseus-results/internal/charts"
	"github.com/banshee-data/odysseus-results/internal/db"
	"github.com/banshee-data/odysseus-results/internal/export"
	"github.com/banshee-data/odysseus-results/internal/httputil"
	"github.com/banshee-data/odysseus-results/internal/monitoring"
	"github.com/banshee-data/odysseus-results/internal/reshape"
	"github.com/banshee-data/odysseus-results/internal/results"
	"github.com/banshee-data/odysseus-results/internal/scenario"
)

type tableView struct {
	Title   string
	Records [][]string
}

type pageData struct {
	Selection catalog.Selection
	Selectors []control
	Configs   []tableView
	Results   tableView
	Summary   []results.ColumnSummary
	Notice    string
	Error     string
	Sections  []sectionView
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data *pageData) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "page.html", data); err != nil {
		monitoring.Logf("render page: %v", err)
		httputil.InternalServerError(w, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	rq, err := s.resolve(r)
	if err != nil {
		s.renderPage(w, errorStatus(err), &pageData{Error: err.Error()})
		return
	}
	data := &pageData{Selection: rq.sel}
	if data.Selectors, err = s.selectors(rq.sel); err != nil {
		writeError(w, err)
		return
	}

	bundle, err := results.LoadBundle(s.fs, rq.dir)
	if err != nil {
		data.Error = err.Error()
		s.renderPage(w, errorStatus(err), data)
		return
	}
	data.Configs = []tableView{
		{"General Run Configuration", export.Records(bundle.General)},
		{"Demand Model Configuration", export.Records(bundle.Demand)},
		{"Supply Model Configuration", export.Records(bundle.Supply)},
	}
	shown := bundle.Stats

	if rq.scenErr != nil {
		data.Notice = fmt.Sprintf("No charts are defined for %s.", rq.sel.Scenario)
		s.fillResults(data, shown)
		s.renderPage(w, http.StatusOK, data)
		return
	}
	if err := bundle.ValidateFor(rq.scen); err != nil {
		data.Error = err.Error()
		s.fillResults(data, shown)
		s.renderPage(w, errorStatus(err), data)
		return
	}
	if withLambda, err := reshape.AddRateColumn(bundle.Stats, rq.scen); err == nil {
		shown = withLambda
	}
	s.fillResults(data, shown)

	secs, err := scenario.Dispatch[[]*section](rq.scen, &layout{rq: rq, stats: bundle.Stats})
	if err != nil {
		data.Error = err.Error()
		s.renderPage(w, errorStatus(err), data)
		return
	}
	for _, sec := range secs {
		data.Sections = append(data.Sections, rq.view(sec))
	}
	s.renderPage(w, http.StatusOK, data)
}

func (s *Server) fillResults(data *pageData, t *results.Table) {
	data.Results = tableView{Title: "Click to see the full results dataframe", Records: export.Records(t)}
	data.Summary = results.Describe(t)
}

func (s *Server) selectors(sel catalog.Selection) ([]control, error) {
	cities, err := s.catalog.Cities()
	if err != nil {
		return nil, err
	}
	simTypes, err := s.catalog.SimTypes(sel.City)
	if err != nil {
		return nil, err
	}
	scenarios, err := s.catalog.Scenarios(sel.City, sel.SimType)
	if err != nil {
		return nil, err
	}
	return []control{
		stringControl(paramCity, "Select city:", cities, sel.City),
		stringControl(paramSimType, "Select simulation type:", simTypes, sel.SimType),
		stringControl(paramScenario, "Select scenario:", scenarios, sel.Scenario),
	}, nil
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	switch kind {
	case kindRate, kindChargingFrequency, kindChargingDuration:
	default:
		httputil.NotFound(w, "unknown chart "+strconv.Quote(kind))
		return
	}
	rq, err := s.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	secs, err := s.sections(rq)
	if err != nil {
		writeError(w, err)
		return
	}
	sec, err := findSection(secs, kind)
	if err != nil {
		writeError(w, fmt.Errorf("%s: %w", kind, err))
		return
	}
	set, err := charts.BuildSeries(sec.Table, sec.X, scenario.ColPercentageUnsatisfied, scenario.ColNVehiclesSim)
	if err != nil {
		writeError(w, err)
		return
	}
	if set.Skipped > 0 {
		monitoring.Logf("%s %s: skipped %d non-finite points", rq.sel, kind, set.Skipped)
	}
	var buf bytes.Buffer
	err = charts.RenderLine(&buf, set, charts.LineOptions{
		ChartID:    kind,
		Subtitle:   rq.sel.String(),
		AssetsHost: s.assetsHost,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteHTML(w, buf.Bytes())
}

func (s *Server) handlePivot(w http.ResponseWriter, r *http.Request) {
	rq, err := s.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	secs, err := s.sections(rq)
	if err != nil {
		writeError(w, err)
		return
	}
	sec, err := findSection(secs, kindPivot)
	if err != nil {
		writeError(w, fmt.Errorf("%s: %w", kindPivot, err))
		return
	}
	if sec.Err != nil {
		writeError(w, sec.Err)
		return
	}
	table, err := charts.PivotHTML(sec.Pivot, charts.SatisfactionGradient)
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	err = templates.ExecuteTemplate(&buf, "pivot.html", map[string]any{
		"Title":     sec.Title,
		"Selection": rq.sel.String(),
		"Vehicles":  rq.resolved.Get(paramNVehicles),
		"Table":     template.HTML(table),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteHTML(w, buf.Bytes())
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	d, ok := export.LookupDownload(r.PathValue("file"))
	if !ok {
		httputil.NotFound(w, "unknown download "+strconv.Quote(r.PathValue("file")))
		return
	}
	rq, err := s.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	secs, err := s.sections(rq)
	if err != nil {
		writeError(w, err)
		return
	}
	sec, err := findSection(secs, d.Key)
	if err != nil {
		writeError(w, fmt.Errorf("%s: %w", d.Filename, err))
		return
	}
	payload, err := s.csv(sec.Table)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteAttachment(w, export.MIMEType, d.Filename, payload)
}

func (s *Server) csv(t *results.Table) ([]byte, error) {
	if s.cache == nil {
		return export.ToCSVBytes(t)
	}
	return s.cache.CSV(t)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	tree, err := s.catalog.Tree()
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, map[string]any{"root": s.catalog.Root(), "cities": tree})
}

// summaryJSON is a ColumnSummary with undefined statistics as null.
type summaryJSON struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	rq, err := s.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	stats, err := s.stats(rq)
	if err != nil {
		writeError(w, err)
		return
	}
	var cols []summaryJSON
	for _, c := range results.Describe(stats) {
		cols = append(cols, summaryJSON{
			Column: c.Column,
			Count:  c.Count,
			Mean:   finiteOrNil(c.Mean),
			Std:    finiteOrNil(c.Std),
			Min:    finiteOrNil(c.Min),
			Max:    finiteOrNil(c.Max),
		})
	}
	httputil.WriteJSONOK(w, map[string]any{
		"selection": rq.sel,
		"rows":      stats.Nrow(),
		"columns":   cols,
	})
}

func (s *Server) listSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.snapshots.Snapshots(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if snaps == nil {
		snaps = []db.Snapshot{}
	}
	httputil.WriteJSONOK(w, snaps)
}

// importSnapshot stores the sim_stats.csv of the selection in the query.
func (s *Server) importSnapshot(w http.ResponseWriter, r *http.Request) {
	rq, err := s.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	stats, err := s.stats(rq)
	if err != nil {
		writeError(w, err)
		return
	}
	src := db.Source{City: rq.sel.City, SimType: rq.sel.SimType, Scenario: rq.sel.Scenario, File: results.StatsFile}
	id, err := s.snapshots.ImportTable(r.Context(), src, stats)
	if err != nil {
		writeError(w, err)
		return
	}
	monitoring.Logf("imported %s as snapshot %s", rq.sel, id)
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"id": id, "rows": stats.Nrow()})
}

func fmtFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
