package results

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/series"

	"github.com/banshee-data/odysseus-results/internal/scenario"
)

// Schema lists the columns a table must carry, all of them numeric.
type Schema struct {
	Required []string
	// Integer columns must additionally hold whole numbers in every row.
	Integer []string
}

// StatsSchema returns the sim_stats.csv schema the scenario's charts need.
func StatsSchema(s scenario.Scenario) Schema {
	sch := Schema{
		Required: s.RequiredColumns(),
		Integer:  []string{scenario.ColNVehiclesSim},
	}
	if s == scenario.B1 {
		sch.Integer = append(sch.Integer, scenario.ColNCharges, scenario.ColNBookings)
	}
	return sch
}

// SchemaError reports every column problem found in a table at once.
type SchemaError struct {
	Table      string
	Missing    []string
	NotNumeric []string
	NotInteger []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing columns: "+strings.Join(e.Missing, ", "))
	}
	if len(e.NotNumeric) > 0 {
		parts = append(parts, "non-numeric columns: "+strings.Join(e.NotNumeric, ", "))
	}
	if len(e.NotInteger) > 0 {
		parts = append(parts, "non-integer columns: "+strings.Join(e.NotInteger, ", "))
	}
	return fmt.Sprintf("%s: schema: %s", e.Table, strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrMissingColumn) true when columns are absent.
func (e *SchemaError) Is(target error) bool {
	return target == ErrMissingColumn && len(e.Missing) > 0
}

// Validate checks t against the schema and returns a *SchemaError describing
// every violation, or nil.
func (sch Schema) Validate(t *Table) error {
	e := &SchemaError{Table: t.Name()}
	for _, col := range sch.Required {
		s, err := t.Column(col)
		if err != nil {
			e.Missing = append(e.Missing, col)
			continue
		}
		if s.Type() != series.Float && s.Type() != series.Int {
			e.NotNumeric = append(e.NotNumeric, col)
		}
	}
	for _, col := range sch.Integer {
		if !t.Has(col) || contains(e.NotNumeric, col) {
			continue
		}
		vals, err := t.Floats(col)
		if err != nil {
			continue
		}
		for _, v := range vals {
			if v != float64(int64(v)) {
				e.NotInteger = append(e.NotInteger, col)
				break
			}
		}
	}
	if len(e.Missing)+len(e.NotNumeric)+len(e.NotInteger) == 0 {
		return nil
	}
	return e
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
