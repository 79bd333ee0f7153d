package table

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat indicates input bytes could not be read as a delimited
// text file or a spreadsheet.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrSheetNotFound indicates the requested worksheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// FormatError describes a load failure for a named input.
type FormatError struct {
	Name   string
	Format string
	Err    error
}

func (e *FormatError) Error() string {
	if e == nil {
		return "unsupported file format"
	}
	if e.Format != "" {
		return fmt.Sprintf("cannot read %s as %s: %v", e.Name, e.Format, e.Err)
	}
	return fmt.Sprintf("cannot read %s: %v", e.Name, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is makes every FormatError match ErrUnsupportedFormat.
func (e *FormatError) Is(target error) bool { return target == ErrUnsupportedFormat }
