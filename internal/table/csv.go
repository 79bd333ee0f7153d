package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV loads delimited text. The first record is the header; short records
// are padded with empty cells and long ones are cut to the header width.
func ReadCSV(name string, data []byte, opt Options) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &FormatError{Name: name, Format: "csv", Err: errors.New("empty file")}
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name, data)
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		return nil, &FormatError{Name: name, Format: "csv", Err: fmt.Errorf("read header: %w", err)}
	}
	ncol := len(header)
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &FormatError{Name: name, Format: "csv", Err: fmt.Errorf("read row %d: %w", len(rows)+1, err)}
		}
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			return nil, fmt.Errorf("%s: %w (limit %d)", name, ErrTooManyRows, opt.MaxRows)
		}
		rows = append(rows, normalizeRecord(rec, ncol))
	}
	return New(name, header, rows)
}

// sniffDelimiter picks the delimiter from the extension, then from the most
// frequent candidate in the header line.
func sniffDelimiter(name string, data []byte) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func normalizeRecord(rec []string, ncol int) []string {
	out := make([]string, ncol)
	copy(out, rec)
	return out
}
