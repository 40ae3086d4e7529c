// Package export writes the generated and derived tables as CSV files and
// as an XLSX workbook, and reads the raw CSV tables back.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Row is any table row that renders itself in its table's column order
type Row interface {
	Values() []string
}

// WriteCSV writes a header line followed by one line per row. Missing
// values are rendered by the rows themselves as empty cells.
func WriteCSV[R Row](w io.Writer, header []string, rows []R) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range rows {
		values := r.Values()
		if len(values) != len(header) {
			return fmt.Errorf("row %d has %d values, header has %d", i, len(values), len(header))
		}
		if err := cw.Write(values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes a table to path, creating parent directories
func WriteCSVFile[R Row](path string, header []string, rows []R) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteCSV(f, header, rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
