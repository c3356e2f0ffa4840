// Package format implements the Formatting Sinks (spec.md §4.6): ASCII
// grid, CSV, Markdown, and AsciiDoc renderers over the two-dimensional
// cell-string-plus-axis-label record pkg/query's layout operations
// produce, with an optional transpose.
package format

import (
	"context"
	"fmt"
	"io"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/exports"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"

	"github.com/amd/mfmacalc/pkg/query"
)

// Table is the row/column record a Sink renders: ColumnHeaders[0] is the
// corner label, Rows[i][0] is row i's label, Rows[i][1:] are data cells.
type Table struct {
	ColumnHeaders []string
	Rows          [][]string
}

// FromLayout buckets a flat layout (one LayoutCell per coordinate) into
// a GPR-by-lane grid: rows are "v{gpr}", columns are lane numbers. Each
// cell lists every coordinate the (gpr, lane) holds, per spec.md §4.6.
func FromLayout(cells []query.LayoutCell, waveSize int) Table {
	maxGPR := 0
	for _, c := range cells {
		if c.Location.GPROffset > maxGPR {
			maxGPR = c.Location.GPROffset
		}
	}
	grid := make(map[[2]int][]string)
	for _, c := range cells {
		key := [2]int{c.Location.GPROffset, c.Location.Lane}
		grid[key] = append(grid[key], c.Coordinate.String())
	}

	headers := make([]string, waveSize+1)
	headers[0] = "GPR \\ Lane"
	for l := 0; l < waveSize; l++ {
		headers[l+1] = fmt.Sprintf("%d", l)
	}

	rows := make([][]string, maxGPR+1)
	for g := 0; g <= maxGPR; g++ {
		row := make([]string, waveSize+1)
		row[0] = fmt.Sprintf("v%d", g)
		for l := 0; l < waveSize; l++ {
			row[l+1] = strings.Join(grid[[2]int{g, l}], ",")
		}
		rows[g] = row
	}
	return Table{ColumnHeaders: headers, Rows: rows}
}

// Transpose swaps rows and columns, for the CLI's --transpose flag.
func (t Table) Transpose() Table {
	if len(t.Rows) == 0 {
		return t
	}
	ncols := len(t.ColumnHeaders)
	out := Table{
		ColumnHeaders: make([]string, len(t.Rows)+1),
		Rows:          make([][]string, ncols-1),
	}
	out.ColumnHeaders[0] = t.ColumnHeaders[0]
	for i, row := range t.Rows {
		out.ColumnHeaders[i+1] = row[0]
	}
	for c := 1; c < ncols; c++ {
		row := make([]string, len(t.Rows)+1)
		row[0] = t.ColumnHeaders[c]
		for r := range t.Rows {
			row[r+1] = t.Rows[r][c]
		}
		out.Rows[c-1] = row
	}
	return out
}

// WriteASCII renders the table as an ASCII grid via tablewriter, the
// teacher's table-rendering dependency (promoted here from an unused
// indirect require to the format sink that exercises it).
func WriteASCII(w io.Writer, t Table) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.ColumnHeaders)
	for _, row := range t.Rows {
		tw.Append(row)
	}
	tw.Render()
}

// WriteCSV renders the table as CSV via dataframe-go's export path,
// symmetric with pkg/catalog's CSV import path.
func WriteCSV(w io.Writer, t Table) error {
	df := toDataFrame(t)
	return exports.ExportToCSV(context.Background(), w, df)
}

func toDataFrame(t Table) *dataframe.DataFrame {
	series := make([]dataframe.Series, len(t.ColumnHeaders))
	for col, name := range t.ColumnHeaders {
		vals := make([]interface{}, len(t.Rows))
		for r, row := range t.Rows {
			vals[r] = row[col]
		}
		series[col] = dataframe.NewSeriesString(name, nil, vals...)
	}
	return dataframe.NewDataFrame(series...)
}

// WriteMarkdown renders the table as a GitHub-flavored Markdown table.
// No library in the retrieval pack covers Markdown table rendering, so
// this is hand-rolled (see DESIGN.md).
func WriteMarkdown(w io.Writer, t Table) {
	fmt.Fprintln(w, "| "+strings.Join(t.ColumnHeaders, " | ")+" |")
	sep := make([]string, len(t.ColumnHeaders))
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintln(w, "| "+strings.Join(sep, " | ")+" |")
	for _, row := range t.Rows {
		fmt.Fprintln(w, "| "+strings.Join(row, " | ")+" |")
	}
}

// WriteAsciiDoc renders the table as an AsciiDoc table. Hand-rolled for
// the same reason as WriteMarkdown.
func WriteAsciiDoc(w io.Writer, t Table) {
	fmt.Fprintln(w, "[cols=\""+strings.Repeat("1,", len(t.ColumnHeaders)-1)+"1\"]")
	fmt.Fprintln(w, "|===")
	fmt.Fprintln(w, "|"+strings.Join(t.ColumnHeaders, "|"))
	for _, row := range t.Rows {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "|"+strings.Join(row, "|"))
	}
	fmt.Fprintln(w, "|===")
}

// FLOPsPerCycleSparkline renders a single-point-per-instruction
// FLOPs/cycle sparkline across a catalog slice, via asciigraph (another
// promoted-from-indirect teacher dependency). The CLI's
// detail-instruction output does not call it.
func FLOPsPerCycleSparkline(values []float64) string {
	if len(values) < 2 {
		return ""
	}
	return asciigraph.Plot(values, asciigraph.Height(8))
}
