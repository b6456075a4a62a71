package dashboard

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"

	"github.com/banshee-data/odysseus-results/internal/catalog"
	"github.com/banshee-data/odysseus-results/internal/httputil"
	"github.com/banshee-data/odysseus-results/internal/monitoring"
	"github.com/banshee-data/odysseus-results/internal/reshape"
	"github.com/banshee-data/odysseus-results/internal/results"
	"github.com/banshee-data/odysseus-results/internal/scenario"
	"github.com/banshee-data/odysseus-results/internal/security"
)

// Query parameters understood by every route.
const (
	paramCity      = "city"
	paramSimType   = "sim_type"
	paramScenario  = "scenario"
	paramXFeature  = "x_feature"
	paramHours     = "hours"
	paramCapacity  = "capacity"
	paramNVehicles = "n_vehicles"
)

// paramError is a malformed query parameter.
type paramError struct {
	name, value string
	err         error
}

func (e *paramError) Error() string {
	return fmt.Sprintf("parameter %s=%q: %v", e.name, e.value, e.err)
}

func (e *paramError) Unwrap() error { return e.err }

// request is one resolved selection. Nothing is cached between requests:
// every request re-reads the CSV files.
type request struct {
	sel      catalog.Selection
	dir      string
	scen     scenario.Scenario
	scenErr  error
	query    url.Values
	resolved url.Values
}

func (s *Server) resolve(r *http.Request) (*request, error) {
	q := r.URL.Query()
	sel, err := s.catalog.Complete(catalog.Selection{
		City:     q.Get(paramCity),
		SimType:  q.Get(paramSimType),
		Scenario: q.Get(paramScenario),
	})
	if err != nil {
		return nil, err
	}
	dir, err := s.catalog.Resolve(sel)
	if err != nil {
		return nil, err
	}
	rq := &request{sel: sel, dir: dir, query: q, resolved: url.Values{}}
	rq.resolved.Set(paramCity, sel.City)
	rq.resolved.Set(paramSimType, sel.SimType)
	rq.resolved.Set(paramScenario, sel.Scenario)
	rq.scen, rq.scenErr = scenario.Parse(sel.Scenario)
	if rq.scenErr != nil {
		monitoring.Logf("%s: %v", sel, rq.scenErr)
	}
	return rq, nil
}

// stats loads and validates sim_stats.csv for a supported scenario.
func (s *Server) stats(rq *request) (*results.Table, error) {
	if rq.scenErr != nil {
		return nil, rq.scenErr
	}
	return results.LoadStats(s.fs, rq.dir, rq.scen)
}

// link builds a URL for path carrying the resolved selection and chart
// parameters.
func (rq *request) link(path string) string {
	return path + "?" + rq.resolved.Encode()
}

// pickFloat reads a numeric parameter. When absent it defaults to the first
// option, as a freshly opened selector does. The chosen value is recorded in
// the resolved parameters.
func (rq *request) pickFloat(name string, options []float64) (float64, error) {
	raw := rq.query.Get(name)
	if raw == "" {
		if len(options) == 0 {
			return 0, &paramError{name: name, err: errors.New("no values to choose from")}
		}
		rq.resolved.Set(name, reshape.FormatValue(options[0]))
		return options[0], nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &paramError{name: name, value: raw, err: err}
	}
	rq.resolved.Set(name, reshape.FormatValue(v))
	return v, nil
}

func (rq *request) pickXFeature() (reshape.XFeature, error) {
	raw := rq.query.Get(paramXFeature)
	if raw == "" {
		raw = string(reshape.XFeatures[0])
	}
	x, err := reshape.ParseXFeature(raw)
	if err != nil {
		return "", &paramError{name: paramXFeature, value: raw, err: err}
	}
	rq.resolved.Set(paramXFeature, string(x))
	return x, nil
}

// writeError maps err to a JSON error response.
func writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		monitoring.Logf("request failed: %v", err)
	}
	httputil.WriteJSONError(w, status, err.Error())
}

func errorStatus(err error) int {
	var pe *paramError
	var se *results.SchemaError
	switch {
	case errors.As(err, &pe),
		errors.Is(err, security.ErrInvalidSegment),
		errors.Is(err, scenario.ErrUnsupportedScenario),
		errors.Is(err, errNoSuchChart):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrUnknownSelection),
		errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.As(err, &se),
		errors.Is(err, results.ErrMissingColumn),
		errors.Is(err, reshape.ErrMissingPivotColumn):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
