package charts

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"

	"github.com/banshee-data/odysseus-results/internal/reshape"
)

var pivotTmpl = template.Must(template.New("pivot").Parse(`<table class="pivot">
<thead><tr><th>{{.Corner}}</th>{{range .Cols}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr><th>{{.Label}}</th>{{range .Cells}}<td{{if .Style}} style="{{.Style}}"{{end}}>{{.Text}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
`))

type pivotCell struct {
	Text  string
	Style template.CSS
}

type pivotRow struct {
	Label string
	Cells []pivotCell
}

// CellStyle returns the inline CSS for a pivot cell, or "" for NaN.
func CellStyle(g Gradient, v float64) string {
	c, ok := g.Color(v)
	if !ok {
		return ""
	}
	return fmt.Sprintf("background-color: %s; color: %s;", c.Hex(), TextColor(c))
}

// WritePivotHTML renders p as an HTML table with each cell's background
// graded by g. Missing cells are shown as "nan" with no colour.
func WritePivotHTML(w io.Writer, p *reshape.Pivot, g Gradient) error {
	data := struct {
		Corner string
		Cols   []string
		Rows   []pivotRow
	}{Corner: "fuel_capacity", Cols: p.ColLabels}

	for r, label := range p.RowLabels {
		row := pivotRow{Label: label, Cells: make([]pivotCell, len(p.Cells[r]))}
		for c, v := range p.Cells[r] {
			row.Cells[c] = pivotCell{Text: formatCell(v), Style: template.CSS(CellStyle(g, v))}
		}
		data.Rows = append(data.Rows, row)
	}
	if err := pivotTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render pivot: %w", err)
	}
	return nil
}

// PivotHTML is WritePivotHTML into a byte slice.
func PivotHTML(p *reshape.Pivot, g Gradient) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePivotHTML(&buf, p, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
