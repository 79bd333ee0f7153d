// Package export serializes sample tables to downloadable artifacts.
package export

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/echantillon-cli/internal/table"
)

// Format identifies an output file format.
type Format string

const (
	FormatXLSX    Format = "xlsx"
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// SheetName is the worksheet name used for XLSX exports.
const SheetName = "Echantillon"

const filePrefix = "Echantillon"

// stampLayout renders YYYYMMDD_HHMMSS.
const stampLayout = "20060102_150405"

// ParseFormat resolves a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "xlsx", "excel":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	case "parquet", "pq":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s (use xlsx, csv or parquet)", s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatParquet:
		return "application/vnd.apache.parquet"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}

// FileName builds Echantillon_<basename>_<YYYYMMDD_HHMMSS>.<ext> for a sample
// of the dataset called source, generated at the given time.
func FileName(source string, at time.Time, f Format) string {
	base := filepath.Base(strings.ReplaceAll(source, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(base))
	stamp := at.Format(stampLayout)
	if base == "" || base == "." {
		return fmt.Sprintf("%s_%s.%s", filePrefix, stamp, f)
	}
	return fmt.Sprintf("%s_%s_%s.%s", filePrefix, base, stamp, f)
}

// Write serializes t to w in format f.
func Write(w io.Writer, t *table.Table, f Format) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, t)
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatParquet:
		return WriteParquet(w, t)
	default:
		return fmt.Errorf("unsupported export format: %s", f)
	}
}

// numericCell converts a cell of a numeric column to a number only when the
// text is a plain finite decimal that reads back unchanged. Values with
// leading zeros such as postal codes, thousands separators, percent signs and
// hex literals stay text.
func numericCell(s string) (float64, bool) {
	v := strings.TrimSpace(s)
	if v == "" || strings.ContainsAny(v, "xX+_") {
		return 0, false
	}
	digits := strings.TrimPrefix(v, "-")
	if len(digits) > 1 && digits[0] == '0' && digits[1] >= '0' && digits[1] <= '9' {
		return 0, false
	}
	x, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(x, 0) || math.IsNaN(x) {
		return 0, false
	}
	return x, true
}

// numericColumns reports, per column, whether it was inferred numeric and
// every non-blank cell converts with numericCell.
func numericColumns(t *table.Table) []bool {
	cols := t.Columns()
	out := make([]bool, len(cols))
	for j, c := range cols {
		k, _ := t.Kind(c)
		out[j] = k == table.KindNumeric
	}
	for i := 0; i < t.Len(); i++ {
		for j, v := range t.Record(i) {
			if out[j] && strings.TrimSpace(v) != "" {
				if _, ok := numericCell(v); !ok {
					out[j] = false
				}
			}
		}
	}
	return out
}
