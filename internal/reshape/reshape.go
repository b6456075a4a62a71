// Package reshape turns a loaded stats table into the projections each chart
// draws. Every function is pure: inputs are never modified and the result is
// a new table.
package reshape

import (
	"fmt"

	"github.com/banshee-data/odysseus-results/internal/results"
	"github.com/banshee-data/odysseus-results/internal/scenario"
)

// Derived columns.
const (
	ColLambda                 = "lambda"
	ColNChargesPer100Bookings = "n_charges_per_100_bookings"
)

const secondsPerHour = 3600

// AddRateColumn adds lambda = requests_rate_factor * factor for scenarios
// charted against the arrival rate, and returns t unchanged otherwise.
func AddRateColumn(t *results.Table, s scenario.Scenario) (*results.Table, error) {
	factor, ok := s.LambdaFactor()
	if !ok {
		return t, nil
	}
	rates, err := t.Floats(scenario.ColRequestsRateFactor)
	if err != nil {
		return nil, err
	}
	lambda := make([]float64, len(rates))
	for i, r := range rates {
		lambda[i] = r * factor
	}
	return t.WithFloats(ColLambda, lambda)
}

// ProjectForRateChart selects lambda, percentage_unsatisfied and
// n_vehicles_sim. Rows and their order are untouched.
func ProjectForRateChart(t *results.Table) (*results.Table, error) {
	return t.Select(ColLambda, scenario.ColPercentageUnsatisfied, scenario.ColNVehiclesSim)
}

// ConvertChargingUnits converts charging_duration from seconds to hours and
// adds n_charges_per_100_bookings = n_charges / n_bookings * 100. Zero
// bookings produce +Inf or NaN, which are kept as is.
func ConvertChargingUnits(t *results.Table) (*results.Table, error) {
	durations, err := t.Floats(scenario.ColChargingDuration)
	if err != nil {
		return nil, err
	}
	charges, err := t.Floats(scenario.ColNCharges)
	if err != nil {
		return nil, err
	}
	bookings, err := t.Floats(scenario.ColNBookings)
	if err != nil {
		return nil, err
	}

	hours := make([]float64, len(durations))
	for i, d := range durations {
		hours[i] = d / secondsPerHour
	}
	perBookings := make([]float64, len(charges))
	for i := range charges {
		perBookings[i] = charges[i] / bookings[i] * 100
	}

	out, err := t.WithFloats(scenario.ColChargingDuration, hours)
	if err != nil {
		return nil, err
	}
	return out.WithFloats(ColNChargesPer100Bookings, perBookings)
}

// XFeature is the x axis of the charging-frequency chart.
type XFeature string

const (
	XChargesPer100Bookings XFeature = ColNChargesPer100Bookings
	XFuelCapacity          XFeature = scenario.ColFuelCapacity
)

// XFeatures lists the selectable x axes in display order.
var XFeatures = []XFeature{XChargesPer100Bookings, XFuelCapacity}

// ParseXFeature validates a user-selected x axis.
func ParseXFeature(s string) (XFeature, error) {
	for _, f := range XFeatures {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown x feature %q", s)
}

// ProjectForChargingFrequencyChart converts the raw table (see
// ConvertChargingUnits), keeps rows whose charging_duration equals hours
// exactly, and selects x, percentage_unsatisfied and n_vehicles_sim.
func ProjectForChargingFrequencyChart(raw *results.Table, x XFeature, hours float64) (*results.Table, error) {
	converted, err := ConvertChargingUnits(raw)
	if err != nil {
		return nil, err
	}
	return ProjectConvertedForChargingFrequency(converted, x, hours)
}

// ProjectConvertedForChargingFrequency is ProjectForChargingFrequencyChart
// for a table that already went through ConvertChargingUnits.
func ProjectConvertedForChargingFrequency(converted *results.Table, x XFeature, hours float64) (*results.Table, error) {
	rows, err := converted.FilterEq(scenario.ColChargingDuration, hours)
	if err != nil {
		return nil, err
	}
	return rows.Select(string(x), scenario.ColPercentageUnsatisfied, scenario.ColNVehiclesSim)
}

// ProjectForDurationChart keeps rows whose fuel_capacity equals capacity and
// selects charging_duration, percentage_unsatisfied and n_vehicles_sim.
func ProjectForDurationChart(t *results.Table, capacity float64) (*results.Table, error) {
	rows, err := t.FilterEq(scenario.ColFuelCapacity, capacity)
	if err != nil {
		return nil, err
	}
	return rows.Select(scenario.ColChargingDuration, scenario.ColPercentageUnsatisfied, scenario.ColNVehiclesSim)
}

// DistinctSorted returns the distinct non-NaN values of col in ascending order.
func DistinctSorted(t *results.Table, col string) ([]float64, error) {
	vals, err := t.Floats(col)
	if err != nil {
		return nil, err
	}
	return append([]float64{}, distinct(vals)...), nil
}
