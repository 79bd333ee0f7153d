package table

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrTooManyRows is returned when an input exceeds Options.MaxRows.
var ErrTooManyRows = errors.New("dataset exceeds row limit")

// Options controls how input files are turned into tables.
type Options struct {
	// Delimiter for delimited text. If 0, it is sniffed from the header line.
	Delimiter rune
	// MaxRows rejects inputs with more data rows; 0 means unlimited.
	MaxRows int
	// SheetName selects an XLSX worksheet by name.
	SheetName string
	// SheetIndex selects an XLSX worksheet by 1-based position when SheetName is empty.
	SheetIndex int
}

// DefaultOptions returns the loader defaults.
func DefaultOptions() Options {
	return Options{MaxRows: 1000000, SheetIndex: 1}
}

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// LoadFile reads path and loads it with Load.
func LoadFile(path string, opt Options) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Load(filepath.Base(path), data, opt)
}

// Load converts uploaded bytes to a table. The format is chosen from the file
// extension, falling back to content sniffing for unknown extensions.
func Load(name string, data []byte, opt Options) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".txt":
		return ReadCSV(name, data, opt)
	case ".xlsx", ".xlsm":
		return ReadXLSX(name, data, opt)
	case ".xls":
		return nil, &FormatError{Name: name, Format: "xls", Err: errors.New("legacy .xls workbooks are not supported; save as .xlsx or .csv")}
	}
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return ReadXLSX(name, data, opt)
	case bytes.HasPrefix(data, oleMagic):
		return nil, &FormatError{Name: name, Format: "xls", Err: errors.New("legacy .xls workbooks are not supported; save as .xlsx or .csv")}
	case isBinary(data):
		return nil, &FormatError{Name: name, Err: errors.New("not a delimited text file or .xlsx workbook")}
	}
	return ReadCSV(name, data, opt)
}

// isBinary reports whether the first bytes contain NUL, which never appears in
// delimited text.
func isBinary(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.IndexByte(head, 0) >= 0
}
