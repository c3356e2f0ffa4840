package format

import (
	"strings"
	"testing"

	"github.com/amd/mfmacalc/pkg/coord"
	"github.com/amd/mfmacalc/pkg/query"
)

func sampleCells() []query.LayoutCell {
	return []query.LayoutCell{
		{
			Coordinate: coord.Coordinate{Matrix: coord.A, I: 0, K: 0},
			Location:   coord.RegisterLocation{GPROffset: 0, Lane: 0, BitLo: 0, BitHi: 31},
		},
		{
			Coordinate: coord.Coordinate{Matrix: coord.A, I: 1, K: 0},
			Location:   coord.RegisterLocation{GPROffset: 0, Lane: 1, BitLo: 0, BitHi: 31},
		},
		{
			Coordinate: coord.Coordinate{Matrix: coord.A, I: 2, K: 1},
			Location:   coord.RegisterLocation{GPROffset: 1, Lane: 0, BitLo: 0, BitHi: 31},
		},
	}
}

func TestFromLayout_BucketsByGPRAndLane(t *testing.T) {
	table := FromLayout(sampleCells(), 4)
	if len(table.ColumnHeaders) != 5 {
		t.Fatalf("expected 5 column headers (corner + 4 lanes), got %d", len(table.ColumnHeaders))
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows (v0, v1), got %d", len(table.Rows))
	}
	if table.Rows[0][0] != "v0" || table.Rows[1][0] != "v1" {
		t.Errorf("expected row labels v0/v1, got %q/%q", table.Rows[0][0], table.Rows[1][0])
	}
	if got := table.Rows[0][1]; got != "A[0][0]" {
		t.Errorf("expected A[0][0] at (v0, lane0), got %q", got)
	}
	if got := table.Rows[1][1]; got != "A[2][1]" {
		t.Errorf("expected A[2][1] at (v1, lane0), got %q", got)
	}
}

func TestFromLayout_MultipleCoordinatesShareACell(t *testing.T) {
	cells := []query.LayoutCell{
		{Coordinate: coord.Coordinate{Matrix: coord.A, I: 0, K: 0}, Location: coord.RegisterLocation{GPROffset: 0, Lane: 0}},
		{Coordinate: coord.Coordinate{Matrix: coord.A, I: 0, K: 1}, Location: coord.RegisterLocation{GPROffset: 0, Lane: 0}},
	}
	table := FromLayout(cells, 2)
	if table.Rows[0][1] != "A[0][0],A[0][1]" {
		t.Errorf("expected joined coordinate list, got %q", table.Rows[0][1])
	}
}

func TestTranspose_SwapsRowsAndColumns(t *testing.T) {
	table := FromLayout(sampleCells(), 4)
	transposed := table.Transpose()
	if len(transposed.ColumnHeaders) != len(table.Rows)+1 {
		t.Fatalf("expected %d column headers, got %d", len(table.Rows)+1, len(transposed.ColumnHeaders))
	}
	if len(transposed.Rows) != len(table.ColumnHeaders)-1 {
		t.Fatalf("expected %d rows, got %d", len(table.ColumnHeaders)-1, len(transposed.Rows))
	}
	twice := transposed.Transpose()
	if len(twice.Rows) != len(table.Rows) {
		t.Fatalf("double transpose should restore row count, got %d want %d", len(twice.Rows), len(table.Rows))
	}
	for r := range table.Rows {
		for c := range table.Rows[r] {
			if twice.Rows[r][c] != table.Rows[r][c] {
				t.Errorf("double transpose mismatch at (%d,%d): got %q want %q", r, c, twice.Rows[r][c], table.Rows[r][c])
			}
		}
	}
}

func TestWriteASCII_ContainsHeaderAndCells(t *testing.T) {
	table := FromLayout(sampleCells(), 2)
	var buf strings.Builder
	WriteASCII(&buf, table)
	out := buf.String()
	if !strings.Contains(out, "A[0][0]") {
		t.Errorf("expected ASCII table to contain A[0][0], got:\n%s", out)
	}
}

func TestWriteCSV_RoundTripsHeaderAndRows(t *testing.T) {
	table := Table{
		ColumnHeaders: []string{"GPR \\ Lane", "0", "1"},
		Rows: [][]string{
			{"v0", "A[0][0]", "A[1][0]"},
		},
	}
	var buf strings.Builder
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "GPR \\ Lane") || !strings.Contains(out, "A[0][0]") {
		t.Errorf("expected CSV to contain header and cell values, got:\n%s", out)
	}
}

func TestWriteMarkdown_HasPipesAndSeparatorRow(t *testing.T) {
	table := Table{
		ColumnHeaders: []string{"GPR \\ Lane", "0"},
		Rows:          [][]string{{"v0", "A[0][0]"}},
	}
	var buf strings.Builder
	WriteMarkdown(&buf, table)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines (header, separator, row), got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[1], "---") {
		t.Errorf("expected markdown separator row, got %q", lines[1])
	}
}

func TestWriteAsciiDoc_HasTableDelimiters(t *testing.T) {
	table := Table{
		ColumnHeaders: []string{"GPR \\ Lane", "0"},
		Rows:          [][]string{{"v0", "A[0][0]"}},
	}
	var buf strings.Builder
	WriteAsciiDoc(&buf, table)
	out := buf.String()
	if strings.Count(out, "|===") != 2 {
		t.Errorf("expected two |=== delimiters, got:\n%s", out)
	}
}

func TestFLOPsPerCycleSparkline_EmptyForFewerThanTwoPoints(t *testing.T) {
	if got := FLOPsPerCycleSparkline([]float64{1.0}); got != "" {
		t.Errorf("expected empty sparkline for a single point, got %q", got)
	}
	if got := FLOPsPerCycleSparkline(nil); got != "" {
		t.Errorf("expected empty sparkline for no points, got %q", got)
	}
}

func TestFLOPsPerCycleSparkline_NonEmptyForMultiplePoints(t *testing.T) {
	got := FLOPsPerCycleSparkline([]float64{1.0, 8.0, 16.0, 4.0})
	if got == "" {
		t.Errorf("expected non-empty sparkline for multiple points")
	}
}
