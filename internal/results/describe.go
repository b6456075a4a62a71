package results

import (
	"math"

	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary is a one-line numeric summary of a column.
type ColumnSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe summarises each numeric column, skipping NaN and infinite cells.
// Columns with no finite values report Count 0 and NaN statistics.
func Describe(t *Table) []ColumnSummary {
	var out []ColumnSummary
	types := t.Types()
	for i, name := range t.Names() {
		if types[i] != series.Float && types[i] != series.Int {
			continue
		}
		vals, _ := t.Floats(name)
		finite := make([]float64, 0, len(vals))
		for _, v := range vals {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				finite = append(finite, v)
			}
		}
		sum := ColumnSummary{Column: name, Count: len(finite)}
		switch len(finite) {
		case 0:
			sum.Mean, sum.Std, sum.Min, sum.Max = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		case 1:
			sum.Mean, sum.Min, sum.Max = finite[0], finite[0], finite[0]
			sum.Std = math.NaN()
		default:
			sum.Mean, sum.Std = stat.MeanStdDev(finite, nil)
			sum.Min, sum.Max = floats.Min(finite), floats.Max(finite)
		}
		out = append(out, sum)
	}
	return out
}
