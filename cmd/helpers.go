package cmd

import (
	"fmt"
	"strings"

	cfgpkg "github.com/KaramelBytes/echantillon-cli/internal/config"
	"github.com/KaramelBytes/echantillon-cli/internal/table"
	"github.com/pterm/pterm"
)

// parseDelimiter maps a flag or config value to a CSV separator. Zero means
// sniff from the file.
func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\t", "\\t", "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %s (use ',' ';' 'tab' or '|')", s)
	}
}

// loaderOptions combines configuration with per-command overrides.
func loaderOptions(c *cfgpkg.Global, delimiter, sheetName string, sheetIndex int) (table.Options, error) {
	opt := table.DefaultOptions()
	if c.MaxRows > 0 {
		opt.MaxRows = c.MaxRows
	}
	d := c.CSVDelimiter
	if delimiter != "" {
		d = delimiter
	}
	r, err := parseDelimiter(d)
	if err != nil {
		return opt, err
	}
	opt.Delimiter = r
	opt.SheetName = sheetName
	if sheetIndex > 0 {
		opt.SheetIndex = sheetIndex
	}
	return opt, nil
}

// renderPreview prints the first n rows of t as a table.
func renderPreview(t *table.Table, n int) error {
	if n <= 0 || t.Len() == 0 {
		return nil
	}
	if n > t.Len() {
		n = t.Len()
	}
	data := pterm.TableData{t.Columns()}
	for i := 0; i < n; i++ {
		data = append(data, t.Record(i))
	}
	if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render(); err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	if t.Len() > n {
		pterm.Printfln("… %d more rows", t.Len()-n)
	}
	return nil
}
