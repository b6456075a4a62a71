// Package export serialises result tables for download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"

	"github.com/banshee-data/odysseus-results/internal/results"
)

// ToCSVBytes encodes t as UTF-8 CSV. The first column is the row index under
// an empty header. The output depends only on the table contents, so equal
// tables always encode to equal bytes.
func ToCSVBytes(t *results.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(Records(t)); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Records renders t as string records: a header row starting with an empty
// cell, then one row per table row led by its index label. Cells use the
// same text as ToCSVBytes.
func Records(t *results.Table) [][]string {
	df := t.DataFrame()
	types := t.Types()
	index := t.Index()

	out := make([][]string, 0, t.Nrow()+1)
	out = append(out, append([]string{""}, t.Names()...))
	for i := 0; i < t.Nrow(); i++ {
		row := make([]string, t.Ncol()+1)
		row[0] = strconv.Itoa(index[i])
		for j := 0; j < t.Ncol(); j++ {
			row[j+1] = formatCell(df.Elem(i, j), types[j])
		}
		out = append(out, row)
	}
	return out
}

func formatCell(e series.Element, typ series.Type) string {
	if e.IsNA() {
		return ""
	}
	switch typ {
	case series.Float:
		return FormatFloat(e.Float())
	case series.Int:
		v, err := e.Int()
		if err != nil {
			return ""
		}
		return strconv.Itoa(v)
	}
	return e.String()
}

// FormatFloat writes the shortest decimal that parses back to v, keeping a
// ".0" on whole numbers so float columns stay floats when read back.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
