package scenario

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, s := range All {
		got, err := Parse(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.True(t, got.Valid())
	}

	for _, name := range []string{"", "scenario_C", "Scenario_A", "scenario_b1", ".DS_Store"} {
		_, err := Parse(name)
		assert.True(t, errors.Is(err, ErrUnsupportedScenario), "name %q", name)
	}
}

func TestLambdaFactor(t *testing.T) {
	f, ok := A.LambdaFactor()
	assert.True(t, ok)
	assert.Equal(t, 4.0, f)

	f, ok = B.LambdaFactor()
	assert.True(t, ok)
	assert.Equal(t, 1.0, f)

	_, ok = B1.LambdaFactor()
	assert.False(t, ok)
}

func TestRequiredColumns(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{ColNVehiclesSim, ColPercentageUnsatisfied, ColRequestsRateFactor},
		A.RequiredColumns())
	assert.Contains(t, B1.RequiredColumns(), ColFuelCapacity)
	assert.Contains(t, B1.RequiredColumns(), ColNBookings)
	assert.NotContains(t, B1.RequiredColumns(), ColRequestsRateFactor)
}

type recordingVisitor struct{}

func (recordingVisitor) VisitArrivalRate(s Scenario, f float64) (string, error) {
	return s.String() + " rate", nil
}

func (recordingVisitor) VisitCharging(s Scenario) (string, error) {
	return s.String() + " charging", nil
}

func TestDispatch(t *testing.T) {
	got, err := Dispatch[string](A, recordingVisitor{})
	require.NoError(t, err)
	assert.Equal(t, "scenario_A rate", got)

	got, err = Dispatch[string](B1, recordingVisitor{})
	require.NoError(t, err)
	assert.Equal(t, "scenario_B1 charging", got)

	_, err = Dispatch[string](Scenario(0), recordingVisitor{})
	assert.True(t, errors.Is(err, ErrUnsupportedScenario))
	assert.Equal(t, "Scenario(0)", Scenario(0).String())
}
