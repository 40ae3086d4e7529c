package export

import (
	"fmt"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a workbook
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// SheetOf renders rows into a sheet
func SheetOf[R Row](name string, header []string, rows []R) Sheet {
	s := Sheet{Name: name, Header: header, Rows: make([][]string, len(rows))}
	for i, r := range rows {
		s.Rows[i] = r.Values()
	}
	return s
}

// cell stores numeric text as a number so spreadsheet formulas work on it
func cell(v string) interface{} {
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return v
}

// WriteWorkbook saves the sheets, in order, as an XLSX file
func WriteWorkbook(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook %s has no sheets", path)
	}

	x := excelize.NewFile()
	defer x.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := x.SetSheetName(x.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", s.Name, err)
			}
		} else if _, err := x.NewSheet(s.Name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", s.Name, err)
		}

		header := make([]interface{}, len(s.Header))
		for j, h := range s.Header {
			header[j] = h
		}
		if err := x.SetSheetRow(s.Name, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header of %s: %w", s.Name, err)
		}

		for r, row := range s.Rows {
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = cell(v)
			}
			axis, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := x.SetSheetRow(s.Name, axis, &values); err != nil {
				return fmt.Errorf("failed to write row %d of %s: %w", r, s.Name, err)
			}
		}
	}

	if err := x.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}
