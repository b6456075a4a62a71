package dashboard

import (
	"errors"
	"html/template"
	"sort"

	"github.com/banshee-data/odysseus-results/internal/charts"
	"github.com/banshee-data/odysseus-results/internal/export"
	"github.com/banshee-data/odysseus-results/internal/reshape"
	"github.com/banshee-data/odysseus-results/internal/results"
	"github.com/banshee-data/odysseus-results/internal/scenario"
)

// Chart kinds, also the last path segment of their endpoints.
const (
	kindRate              = "rate"
	kindChargingFrequency = "charging-frequency"
	kindChargingDuration  = "charging-duration"
	kindPivot             = "pivot"
)

var errNoSuchChart = errors.New("chart not available for this scenario")

type option struct {
	Value    string
	Label    string
	Selected bool
}

// field carries a resolved parameter through a form it is not edited in.
type field struct {
	Name, Value string
}

// control is one selector feeding a chart section.
type control struct {
	Name    string
	Label   string
	Options []option
}

// section is one chart block of the page: a projection, the selectors that
// shaped it, and where to download it. Pivot sections carry a pivot instead
// of a projection.
type section struct {
	Kind     string
	Title    string
	X        string
	Table    *results.Table
	Download export.Download
	Controls []control
	Pivot    *reshape.Pivot
	Err      error
}

// layout builds the chart sections for one stats table.
type layout struct {
	rq    *request
	stats *results.Table
}

var _ scenario.Visitor[[]*section] = (*layout)(nil)

func (l *layout) VisitArrivalRate(s scenario.Scenario, _ float64) ([]*section, error) {
	withLambda, err := reshape.AddRateColumn(l.stats, s)
	if err != nil {
		return nil, err
	}
	proj, err := reshape.ProjectForRateChart(withLambda)
	if err != nil {
		return nil, err
	}
	return []*section{{
		Kind:     kindRate,
		Title:    "Unsatisfied Demand [%] VS Lambda",
		X:        reshape.ColLambda,
		Table:    proj,
		Download: export.RateDownload,
	}}, nil
}

func (l *layout) VisitCharging(scenario.Scenario) ([]*section, error) {
	converted, err := reshape.ConvertChargingUnits(l.stats)
	if err != nil {
		return nil, err
	}

	x, err := l.rq.pickXFeature()
	if err != nil {
		return nil, err
	}
	hourOpts, err := reshape.DistinctSorted(converted, scenario.ColChargingDuration)
	if err != nil {
		return nil, err
	}
	hours, err := l.rq.pickFloat(paramHours, hourOpts)
	if err != nil {
		return nil, err
	}
	freq, err := reshape.ProjectConvertedForChargingFrequency(converted, x, hours)
	if err != nil {
		return nil, err
	}

	capOpts, err := reshape.DistinctSorted(converted, scenario.ColFuelCapacity)
	if err != nil {
		return nil, err
	}
	capacity, err := l.rq.pickFloat(paramCapacity, capOpts)
	if err != nil {
		return nil, err
	}
	dur, err := reshape.ProjectForDurationChart(converted, capacity)
	if err != nil {
		return nil, err
	}

	vehOpts, err := reshape.DistinctSorted(converted, scenario.ColNVehiclesSim)
	if err != nil {
		return nil, err
	}
	vehicles, err := l.rq.pickFloat(paramNVehicles, vehOpts)
	if err != nil {
		return nil, err
	}
	pivot := &section{
		Kind:     kindPivot,
		Title:    "Unsatisfied Demand [%] VS Charging Duration and Frequency",
		Controls: []control{floatControl(paramNVehicles, "Number of vehicles:", vehOpts, vehicles)},
	}
	pivot.Pivot, pivot.Err = reshape.BuildSatisfactionPivot(converted, int(vehicles))
	if pivot.Err == nil {
		pivot.Pivot, pivot.Err = reshape.SelectPivotColumns(pivot.Pivot)
	}

	return []*section{
		{
			Kind:     kindChargingFrequency,
			Title:    "Unsatisfied Demand [%] VS Charging frequency",
			X:        string(x),
			Table:    freq,
			Download: export.ChargingFrequencyDownload,
			Controls: []control{
				xFeatureControl(x),
				floatControl(paramHours, "Select desired charging duration: [hours]", hourOpts, hours),
			},
		},
		{
			Kind:     kindChargingDuration,
			Title:    "Unsatisfied Demand [%] VS Charging Duration",
			X:        scenario.ColChargingDuration,
			Table:    dur,
			Download: export.ChargingDurationDownload,
			Controls: []control{floatControl(paramCapacity, "Select desired fuel capacity:", capOpts, capacity)},
		},
		pivot,
	}, nil
}

func floatControl(name, label string, opts []float64, selected float64) control {
	c := control{Name: name, Label: label}
	for _, v := range opts {
		c.Options = append(c.Options, option{
			Value:    reshape.FormatValue(v),
			Label:    reshape.FormatValue(v),
			Selected: v == selected,
		})
	}
	return c
}

func xFeatureControl(selected reshape.XFeature) control {
	c := control{Name: paramXFeature, Label: "X axis:"}
	for _, x := range reshape.XFeatures {
		c.Options = append(c.Options, option{Value: string(x), Label: string(x), Selected: x == selected})
	}
	return c
}

func stringControl(name, label string, opts []string, selected string) control {
	c := control{Name: name, Label: label}
	for _, v := range opts {
		c.Options = append(c.Options, option{Value: v, Label: v, Selected: v == selected})
	}
	return c
}

// sections loads the stats of rq and lays out its chart sections.
func (s *Server) sections(rq *request) ([]*section, error) {
	stats, err := s.stats(rq)
	if err != nil {
		return nil, err
	}
	return scenario.Dispatch[[]*section](rq.scen, &layout{rq: rq, stats: stats})
}

func findSection(secs []*section, kind string) (*section, error) {
	for _, sec := range secs {
		if sec.Kind == kind {
			return sec, nil
		}
	}
	return nil, errNoSuchChart
}

// sectionView is a section prepared for the page template.
type sectionView struct {
	Kind          string
	Title         string
	Controls      []control
	Hidden        []field
	FrameURL      string
	Records       [][]string
	DownloadURL   string
	DownloadLabel string
	PivotHTML     template.HTML
	Err           string
}

func (rq *request) view(sec *section) sectionView {
	v := sectionView{Kind: sec.Kind, Title: sec.Title, Controls: sec.Controls}
	own := map[string]bool{}
	for _, c := range sec.Controls {
		own[c.Name] = true
	}
	names := make([]string, 0, len(rq.resolved))
	for name := range rq.resolved {
		if !own[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		v.Hidden = append(v.Hidden, field{Name: name, Value: rq.resolved.Get(name)})
	}
	if sec.Kind == kindPivot {
		if sec.Err != nil {
			v.Err = sec.Err.Error()
			return v
		}
		b, err := charts.PivotHTML(sec.Pivot, charts.SatisfactionGradient)
		if err != nil {
			v.Err = err.Error()
			return v
		}
		v.PivotHTML = template.HTML(b)
		return v
	}
	v.FrameURL = rq.link("/charts/" + sec.Kind)
	v.Records = export.Records(sec.Table)
	v.DownloadURL = rq.link("/download/" + sec.Download.Filename)
	v.DownloadLabel = sec.Download.Label
	return v
}
