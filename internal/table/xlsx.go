package table

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX loads one worksheet of an .xlsx workbook. The sheet is chosen by
// opt.SheetName, else by the 1-based opt.SheetIndex, else the first sheet.
// The first row is the header.
func ReadXLSX(name string, data []byte, opt Options) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &FormatError{Name: name, Format: "xlsx", Err: err}
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, &FormatError{Name: name, Format: "xlsx", Err: err}
	}
	defer rows.Close()

	var header []string
	var records [][]string
	for rows.Next() {
		cells, err := rows.Columns()
		if err != nil {
			return nil, &FormatError{Name: name, Format: "xlsx", Err: fmt.Errorf("read row %d: %w", len(records)+2, err)}
		}
		if header == nil {
			if isBlank(cells) {
				continue
			}
			header = cells
			continue
		}
		if isBlank(cells) {
			continue
		}
		if opt.MaxRows > 0 && len(records) >= opt.MaxRows {
			return nil, fmt.Errorf("%s: %w (limit %d)", name, ErrTooManyRows, opt.MaxRows)
		}
		records = append(records, normalizeRecord(cells, len(header)))
	}
	if err := rows.Error(); err != nil {
		return nil, &FormatError{Name: name, Format: "xlsx", Err: err}
	}
	if header == nil {
		return nil, &FormatError{Name: name, Format: "xlsx", Err: fmt.Errorf("sheet %q is empty", sheet)}
	}
	return New(name, header, records)
}

func pickSheet(sheets []string, sheetName string, sheetIndex int) (string, error) {
	if len(sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}
	if sheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, sheetName) {
				return s, nil
			}
		}
		return "", fmt.Errorf("%w: '%s'; available sheets: %s", ErrSheetNotFound, sheetName, strings.Join(sheets, ", "))
	}
	if sheetIndex <= 0 {
		sheetIndex = 1
	}
	if sheetIndex > len(sheets) {
		return "", fmt.Errorf("%w: index %d out of range (workbook has %d sheets)", ErrSheetNotFound, sheetIndex, len(sheets))
	}
	return sheets[sheetIndex-1], nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
