package export

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/echantillon-cli/internal/table"
	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes t as a single-sheet workbook named Echantillon. The header
// row is bold; cells of numeric columns are stored as numbers.
func WriteXLSX(w io.Writer, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	cols := t.Columns()
	header := make([]interface{}, len(cols))
	for j, c := range cols {
		header[j] = c
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: bold}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	numeric := numericColumns(t)
	for i := 0; i < t.Len(); i++ {
		rec := t.Record(i)
		vals := make([]interface{}, len(rec))
		for j, v := range rec {
			vals[j] = v
			if numeric[j] {
				if x, ok := numericCell(v); ok {
					vals[j] = x
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, vals); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
