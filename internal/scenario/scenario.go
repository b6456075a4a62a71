// Package scenario defines the closed set of experiment layouts the dashboard
// knows how to chart.
package scenario

import (
	"errors"
	"fmt"
)

// ErrUnsupportedScenario is returned by Parse for directory names outside the
// known set. Callers render no chart section for such scenarios.
var ErrUnsupportedScenario = errors.New("unsupported scenario")

// Scenario is one of A, B or B1. The zero value is not a valid scenario.
type Scenario int

const (
	A Scenario = iota + 1
	B
	B1
)

// All lists the known scenarios in display order.
var All = []Scenario{A, B, B1}

// Parse maps a scenario directory name to a Scenario.
func Parse(name string) (Scenario, error) {
	switch name {
	case "scenario_A":
		return A, nil
	case "scenario_B":
		return B, nil
	case "scenario_B1":
		return B1, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedScenario, name)
}

// String returns the directory name of the scenario.
func (s Scenario) String() string {
	switch s {
	case A:
		return "scenario_A"
	case B:
		return "scenario_B"
	case B1:
		return "scenario_B1"
	}
	return fmt.Sprintf("Scenario(%d)", int(s))
}

// Valid reports whether s is one of the known scenarios.
func (s Scenario) Valid() bool {
	return s == A || s == B || s == B1
}

// LambdaFactor is the multiplier applied to requests_rate_factor to obtain
// the arrival rate. ok is false for scenarios without an arrival-rate chart.
func (s Scenario) LambdaFactor() (factor float64, ok bool) {
	switch s {
	case A:
		return 4, true
	case B:
		return 1, true
	}
	return 0, false
}

// Stats columns referenced by the reshaping step.
const (
	ColRequestsRateFactor    = "requests_rate_factor"
	ColNVehiclesSim          = "n_vehicles_sim"
	ColPercentageUnsatisfied = "percentage_unsatisfied"
	ColPercentageSatisfied   = "percentage_satisfied"
	ColNCharges              = "n_charges"
	ColNBookings             = "n_bookings"
	ColChargingDuration      = "charging_duration"
	ColFuelCapacity          = "fuel_capacity"
)

// RequiredColumns lists the stats columns the scenario's charts read. They are
// checked once when sim_stats.csv is loaded.
func (s Scenario) RequiredColumns() []string {
	base := []string{ColNVehiclesSim, ColPercentageUnsatisfied}
	switch s {
	case A, B:
		return append(base, ColRequestsRateFactor)
	case B1:
		return append(base,
			ColPercentageSatisfied,
			ColNCharges,
			ColNBookings,
			ColChargingDuration,
			ColFuelCapacity,
		)
	}
	return base
}

// Visitor handles each chart layout family. Adding a family adds a method, so
// every implementation has to handle it before the code compiles again.
type Visitor[T any] interface {
	// VisitArrivalRate handles scenarios charted against the arrival rate
	// lambda = requests_rate_factor * lambdaFactor.
	VisitArrivalRate(s Scenario, lambdaFactor float64) (T, error)
	// VisitCharging handles scenarios charted against charging parameters.
	VisitCharging(s Scenario) (T, error)
}

// Dispatch calls the Visitor method for s's layout family.
func Dispatch[T any](s Scenario, v Visitor[T]) (T, error) {
	switch s {
	case A, B:
		factor, _ := s.LambdaFactor()
		return v.VisitArrivalRate(s, factor)
	case B1:
		return v.VisitCharging(s)
	}
	var zero T
	return zero, fmt.Errorf("%w: %s", ErrUnsupportedScenario, s)
}
