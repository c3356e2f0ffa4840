// Package loader wraps dataframe-go's CSV import behind the two shapes
// the rest of the module needs: a file-path loader with auto-detected
// column types, and a reader-based loader whose type detection the
// caller turns on or off (pkg/catalog turns it off, because its hex
// opcode and enum columns must be parsed by hand rather than guessed at).
package loader

import (
	"context"
	"errors"
	"io"
	"os"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"
)

// Error definitions
var (
	ErrEmptyFile     = errors.New("empty CSV file")
	ErrNoHeader      = errors.New("CSV file has no header")
	ErrInvalidFormat = errors.New("invalid CSV format")
)

// LoadCSV reads a CSV file and returns a DataFrame using dataframe-go.
// - First row is header (column names)
// - Auto-detects column types (int64, float64, bool, string)
// - Empty values become nil
func LoadCSV(path string) (*dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Load(file, true)
}

// Load reads CSV from r, optionally inferring column types. Catalog data
// carries hex opcodes and named enum columns that dataframe-go's
// auto-detection would otherwise mis-parse as int64/bool, so callers
// needing literal string columns pass inferTypes=false.
func Load(r io.ReadSeeker, inferTypes bool) (*dataframe.DataFrame, error) {
	df, err := imports.LoadFromCSV(context.Background(), r, imports.CSVLoadOptions{
		InferDataTypes: inferTypes,
	})
	if err != nil {
		return nil, err
	}
	if df == nil || len(df.Series) == 0 {
		return nil, ErrEmptyFile
	}
	return df, nil
}
