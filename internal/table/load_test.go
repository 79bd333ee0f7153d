package table

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadCSVSniffsSemicolonAndPads(t *testing.T) {
	data := "\xEF\xBB\xBFGroup;Score;Note\nA;10,5;first\nB;9,8\nA;11;third;extra\n"
	tb, err := Load("scores.csv", []byte(data), DefaultOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tb.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", tb.Len())
	}
	if cols := tb.Columns(); cols[0] != "Group" || len(cols) != 3 {
		t.Fatalf("unexpected header: %v", cols)
	}
	if v, _ := tb.Value(1, "Note"); v != "" {
		t.Fatalf("short row should be padded, got %q", v)
	}
	if k, _ := tb.Kind("Score"); k != KindNumeric {
		t.Fatalf("Score kind = %s", k)
	}
}

func TestLoadTSVByExtension(t *testing.T) {
	tb, err := Load("plots.tsv", []byte("plot\tyield\nA1\t3\nB2\t4\n"), DefaultOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v, _ := tb.Value(1, "yield"); v != "4" {
		t.Fatalf("yield = %q", v)
	}
}

func TestLoadRejectsUnsupportedFormats(t *testing.T) {
	cases := map[string][]byte{
		"legacy.xls":  []byte("whatever"),
		"blob.bin":    {0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0, 0},
		"image.dat":   {0x89, 'P', 'N', 'G', 0, 0, 0},
		"empty.csv":   []byte("  \n"),
		"broken.xlsx": []byte("PK\x03\x04 not really a zip"),
	}
	for name, data := range cases {
		_, err := Load(name, data, DefaultOptions())
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("%s: expected ErrUnsupportedFormat, got %v", name, err)
		}
	}
}

func TestLoadMaxRows(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxRows = 2
	_, err := Load("big.csv", []byte("a\n1\n2\n3\n"), opt)
	if !errors.Is(err, ErrTooManyRows) {
		t.Fatalf("expected ErrTooManyRows, got %v", err)
	}
}

func writeWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"id", "region", "income"},
		{1, "north", 1200.5},
		{2, "south", 980},
		{3, "north", 1430},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if _, err := f.NewSheet("Other"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	_ = f.SetCellValue("Other", "A1", "only")
	_ = f.SetCellValue("Other", "A2", "x")
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestLoadXLSXSheets(t *testing.T) {
	data := writeWorkbook(t)
	dir := t.TempDir()
	p := filepath.Join(dir, "households.xlsx")
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tb, err := LoadFile(p, DefaultOptions())
	if err != nil {
		t.Fatalf("load xlsx: %v", err)
	}
	if tb.Name() != "households.xlsx" || tb.Len() != 3 {
		t.Fatalf("unexpected table %s with %d rows", tb.Name(), tb.Len())
	}
	if v, _ := tb.Value(1, "region"); v != "south" {
		t.Fatalf("region = %q", v)
	}
	if k, _ := tb.Kind("income"); k != KindNumeric {
		t.Fatalf("income kind = %s", k)
	}

	opt := DefaultOptions()
	opt.SheetName = "other"
	tb, err = Load("households.xlsx", data, opt)
	if err != nil {
		t.Fatalf("load by sheet name: %v", err)
	}
	if cols := tb.Columns(); len(cols) != 1 || cols[0] != "only" {
		t.Fatalf("unexpected columns %v", cols)
	}

	opt.SheetName = "missing"
	if _, err := Load("households.xlsx", data, opt); err == nil {
		t.Fatalf("expected error for missing sheet")
	}

	// unknown extension sniffed as a workbook
	if _, err := Load("upload", data, DefaultOptions()); err != nil {
		t.Fatalf("sniffed xlsx: %v", err)
	}
}
