package sampling

import (
	"errors"
	"fmt"
)

// Parameter field names used in errors and bounds.
const (
	FieldMethod        = "method"
	FieldSampleSize    = "sample_size"
	FieldStrataColumn  = "strata_column"
	FieldClusterColumn = "cluster_column"
	FieldClusterCount  = "cluster_count"
	FieldTable         = "table"
)

// ErrInvalidParameter matches every *InvalidParameterError.
var ErrInvalidParameter = errors.New("invalid parameter")

// InvalidParameterError reports a parameter that does not fit the dataset.
// Min and Max are set when the field has a numeric range.
type InvalidParameterError struct {
	Field    string
	Value    string
	Reason   string
	Min, Max int
	HasRange bool
	Err      error
}

func (e *InvalidParameterError) Error() string {
	msg := fmt.Sprintf("invalid parameter %s", e.Field)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got %s)", e.Value)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidParameterError) Unwrap() error { return e.Err }

func (e *InvalidParameterError) Is(target error) bool { return target == ErrInvalidParameter }

func outOfRange(field string, v, lo, hi int) *InvalidParameterError {
	reason := fmt.Sprintf("must be between %d and %d", lo, hi)
	if hi < lo {
		reason = fmt.Sprintf("no valid value (upper bound is %d)", hi)
	}
	return &InvalidParameterError{
		Field:    field,
		Value:    fmt.Sprint(v),
		Reason:   reason,
		Min:      lo,
		Max:      hi,
		HasRange: true,
	}
}
