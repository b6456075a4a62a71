// Package results loads simulation output CSVs into immutable tables.
//
// A Table is a gota DataFrame plus the row index assigned at load time. The
// index survives filtering so exported projections keep the original row
// labels. No method mutates its receiver.
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrMissingColumn is returned when a referenced column is not in the table.
var ErrMissingColumn = errors.New("missing column")

// Table is an ordered, immutable set of rows with named, typed columns.
type Table struct {
	name  string
	df    dataframe.DataFrame
	index []int
}

// NewTable wraps df, assigning the row index 0..n-1.
func NewTable(name string, df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("%s: %w", name, df.Err)
	}
	index := make([]int, df.Nrow())
	for i := range index {
		index[i] = i
	}
	return &Table{name: name, df: df, index: index}, nil
}

// FromSeries builds a table from columns of equal length.
func FromSeries(name string, cols ...series.Series) (*Table, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("%s: no columns", name)
	}
	return NewTable(name, dataframe.New(cols...))
}

// ReadCSV parses a comma-separated table with a header row. Column types are
// detected from the values: integers, floats, booleans, otherwise strings.
func ReadCSV(r io.Reader, name string) (*Table, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return FromRecords(name, records)
}

// ReadIndexedCSV parses a table whose first column is an unnamed integer row
// index, the layout written by export.ToCSVBytes.
func ReadIndexedCSV(r io.Reader, name string) (*Table, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return FromIndexedRecords(name, records)
}

// FromIndexedRecords builds a table from string records whose first column is
// the row index under an empty header.
func FromIndexedRecords(name string, records [][]string) (*Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, fmt.Errorf("%s: no header row", name)
	}
	if records[0][0] != "" {
		return nil, fmt.Errorf("%s: first header cell is %q, expected an unnamed index", name, records[0][0])
	}

	index := make([]int, 0, len(records)-1)
	stripped := make([][]string, len(records))
	for i, rec := range records {
		stripped[i] = rec[1:]
		if i == 0 {
			continue
		}
		v, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: index %q: %w", name, i, rec[0], err)
		}
		index = append(index, v)
	}

	t, err := FromRecords(name, stripped)
	if err != nil {
		return nil, err
	}
	t.index = index
	return t, nil
}

func readRecords(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse csv: no header row")
	}
	return records, nil
}

// FromRecords builds a table from string records, the first being the
// header. Column types are detected as in ReadCSV.
func FromRecords(name string, records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: no header row", name)
	}
	header := records[0]
	if len(header) == 0 || (len(header) == 1 && header[0] == "") {
		return nil, fmt.Errorf("%s: header has no columns", name)
	}
	if len(records) == 1 {
		cols := make([]series.Series, len(header))
		for i, h := range header {
			cols[i] = emptySeries(series.String, h)
		}
		return FromSeries(name, cols...)
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
	)
	return NewTable(name, df)
}

func emptySeries(t series.Type, name string) series.Series {
	switch t {
	case series.Float:
		return series.New([]float64{}, series.Float, name)
	case series.Int:
		return series.New([]int{}, series.Int, name)
	case series.Bool:
		return series.New([]bool{}, series.Bool, name)
	}
	return series.New([]string{}, series.String, name)
}

// Name identifies the table in errors and logs, usually the source file name.
func (t *Table) Name() string { return t.name }

// Nrow returns the number of rows.
func (t *Table) Nrow() int { return t.df.Nrow() }

// Ncol returns the number of columns.
func (t *Table) Ncol() int { return t.df.Ncol() }

// Names returns the column names in order.
func (t *Table) Names() []string { return t.df.Names() }

// Types returns the column types in order.
func (t *Table) Types() []series.Type { return t.df.Types() }

// Index returns a copy of the row labels.
func (t *Table) Index() []int {
	return append([]int(nil), t.index...)
}

// DataFrame returns a copy of the underlying frame.
func (t *Table) DataFrame() dataframe.DataFrame { return t.df.Copy() }

// Has reports whether the table has a column called col.
func (t *Table) Has(col string) bool {
	for _, n := range t.df.Names() {
		if n == col {
			return true
		}
	}
	return false
}

func (t *Table) missing(col string) error {
	return fmt.Errorf("%s: %w %q", t.name, ErrMissingColumn, col)
}

// Column returns the named column.
func (t *Table) Column(col string) (series.Series, error) {
	if !t.Has(col) {
		return series.Series{}, t.missing(col)
	}
	return t.df.Col(col), nil
}

// Floats returns the named column as float64 values; missing cells are NaN.
func (t *Table) Floats(col string) ([]float64, error) {
	s, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	return s.Float(), nil
}

// Ints returns the named column as ints. Missing or non-integer cells are an error.
func (t *Table) Ints(col string) ([]int, error) {
	s, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	vals, err := s.Int()
	if err != nil {
		return nil, fmt.Errorf("%s: column %q: %w", t.name, col, err)
	}
	return vals, nil
}

// Select keeps only the named columns, in the given order.
func (t *Table) Select(cols ...string) (*Table, error) {
	for _, c := range cols {
		if !t.Has(c) {
			return nil, t.missing(c)
		}
	}
	df := t.df.Select(cols)
	if df.Err != nil {
		return nil, fmt.Errorf("%s: select: %w", t.name, df.Err)
	}
	return &Table{name: t.name, df: df, index: t.Index()}, nil
}

// Rows keeps the rows at the given positions, carrying their index labels.
func (t *Table) Rows(positions []int) (*Table, error) {
	index := make([]int, len(positions))
	for i, p := range positions {
		if p < 0 || p >= t.Nrow() {
			return nil, fmt.Errorf("%s: row %d out of range [0,%d)", t.name, p, t.Nrow())
		}
		index[i] = t.index[p]
	}
	if len(positions) == 0 {
		return t.empty(), nil
	}
	df := t.df.Subset(positions)
	if df.Err != nil {
		return nil, fmt.Errorf("%s: subset: %w", t.name, df.Err)
	}
	return &Table{name: t.name, df: df, index: index}, nil
}

func (t *Table) empty() *Table {
	names := t.df.Names()
	types := t.df.Types()
	cols := make([]series.Series, len(names))
	for i := range names {
		cols[i] = emptySeries(types[i], names[i])
	}
	return &Table{name: t.name, df: dataframe.New(cols...), index: []int{}}
}

// FilterEq keeps rows whose col value equals v exactly. NaN never matches.
func (t *Table) FilterEq(col string, v float64) (*Table, error) {
	vals, err := t.Floats(col)
	if err != nil {
		return nil, err
	}
	var positions []int
	for i, x := range vals {
		if x == v && !math.IsNaN(x) {
			positions = append(positions, i)
		}
	}
	return t.Rows(positions)
}

// WithColumn returns a table with s added, or replacing the column of the
// same name.
func (t *Table) WithColumn(s series.Series) (*Table, error) {
	if s.Len() != t.Nrow() {
		return nil, fmt.Errorf("%s: column %q has %d rows, table has %d", t.name, s.Name, s.Len(), t.Nrow())
	}
	df := t.df.Copy().Mutate(s)
	if df.Err != nil {
		return nil, fmt.Errorf("%s: mutate %q: %w", t.name, s.Name, df.Err)
	}
	return &Table{name: t.name, df: df, index: t.Index()}, nil
}

// WithFloats is WithColumn for a float column.
func (t *Table) WithFloats(col string, vals []float64) (*Table, error) {
	return t.WithColumn(series.New(vals, series.Float, col))
}

// Rename returns the same rows under a different table name.
func (t *Table) Rename(name string) *Table {
	return &Table{name: name, df: t.df, index: t.index}
}
