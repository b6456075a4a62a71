package reshape

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/banshee-data/odysseus-results/internal/results"
	"github.com/banshee-data/odysseus-results/internal/scenario"
)

// ErrMissingPivotColumn is returned by SelectPivotColumns when one of the
// fixed capacity columns has no data.
var ErrMissingPivotColumn = errors.New("missing pivot column")

// Pivot is a labelled matrix: Cells[r][c] belongs to RowLabels[r] and
// ColLabels[c]. Combinations with no source row are NaN.
type Pivot struct {
	RowLabels []string
	ColLabels []string
	Cells     [][]float64
}

// Cell looks a value up by labels.
func (p *Pivot) Cell(row, col string) (float64, bool) {
	r, c := indexOf(p.RowLabels, row), indexOf(p.ColLabels, col)
	if r < 0 || c < 0 {
		return 0, false
	}
	return p.Cells[r][c], true
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// FormatValue renders a pivot key with the shortest decimal form, so 10.0
// becomes "10" and 0.5 stays "0.5".
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DurationLabel is the row label for a charging duration in hours.
func DurationLabel(hours float64) string { return "Duration = " + FormatValue(hours) }

// CapacityLabel is the column label for a fuel capacity.
func CapacityLabel(capacity float64) string { return "Capacity = " + FormatValue(capacity) }

// CapacityColumns returns the fixed pivot columns Capacity = 10 … 100.
func CapacityColumns() []string {
	cols := make([]string, 0, 10)
	for c := 10; c <= 100; c += 10 {
		cols = append(cols, CapacityLabel(float64(c)))
	}
	return cols
}

// BuildSatisfactionPivot keeps rows with n_vehicles_sim == nVehicles and pivots
// percentage_satisfied by charging duration (rows) and fuel capacity
// (columns). Labels are ordered by their numeric value. When several rows share
// a (duration, capacity) pair the last one wins.
func BuildSatisfactionPivot(t *results.Table, nVehicles int) (*Pivot, error) {
	rows, err := t.FilterEq(scenario.ColNVehiclesSim, float64(nVehicles))
	if err != nil {
		return nil, err
	}
	durations, err := rows.Floats(scenario.ColChargingDuration)
	if err != nil {
		return nil, err
	}
	capacities, err := rows.Floats(scenario.ColFuelCapacity)
	if err != nil {
		return nil, err
	}
	satisfied, err := rows.Floats(scenario.ColPercentageSatisfied)
	if err != nil {
		return nil, err
	}

	rowKeys := distinct(durations)
	colKeys := distinct(capacities)
	p := &Pivot{
		RowLabels: make([]string, len(rowKeys)),
		ColLabels: make([]string, len(colKeys)),
		Cells:     make([][]float64, len(rowKeys)),
	}
	rowPos := make(map[float64]int, len(rowKeys))
	for i, k := range rowKeys {
		p.RowLabels[i] = DurationLabel(k)
		rowPos[k] = i
		p.Cells[i] = make([]float64, len(colKeys))
		for j := range p.Cells[i] {
			p.Cells[i][j] = math.NaN()
		}
	}
	colPos := make(map[float64]int, len(colKeys))
	for j, k := range colKeys {
		p.ColLabels[j] = CapacityLabel(k)
		colPos[k] = j
	}

	for i := range durations {
		r, okR := rowPos[durations[i]]
		c, okC := colPos[capacities[i]]
		if !okR || !okC {
			continue
		}
		p.Cells[r][c] = satisfied[i]
	}
	return p, nil
}

func distinct(vals []float64) []float64 {
	seen := make(map[float64]bool, len(vals))
	var out []float64
	for _, v := range vals {
		if math.IsNaN(v) || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

// SelectPivotColumns restricts p to CapacityColumns, in that order. It fails
// on the first capacity column p does not have.
func SelectPivotColumns(p *Pivot) (*Pivot, error) {
	want := CapacityColumns()
	pos := make([]int, len(want))
	for i, label := range want {
		pos[i] = indexOf(p.ColLabels, label)
		if pos[i] < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingPivotColumn, label)
		}
	}

	out := &Pivot{
		RowLabels: append([]string(nil), p.RowLabels...),
		ColLabels: want,
		Cells:     make([][]float64, len(p.Cells)),
	}
	for r, row := range p.Cells {
		out.Cells[r] = make([]float64, len(pos))
		for i, c := range pos {
			out.Cells[r][i] = row[c]
		}
	}
	return out, nil
}
