package sampling

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/echantillon-cli/internal/table"
)

// Range is an inclusive integer interval. It is empty when Max < Min.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether v lies in r.
func (r Range) Contains(v int) bool { return v >= r.Min && v <= r.Max }

// Empty reports whether no value satisfies r.
func (r Range) Empty() bool { return r.Max < r.Min }

// FieldBound is the legal range of one numeric parameter.
type FieldBound struct {
	Field string `json:"field"`
	Range Range  `json:"range"`
}

// Bounds lists what a method accepts for a given table.
type Bounds struct {
	Method Method `json:"method"`
	Rows   int    `json:"rows"`
	// ColumnField is the column parameter the method needs, "" if none.
	ColumnField string `json:"column_field,omitempty"`
	// Column is the column the cluster range was computed for.
	Column string       `json:"column,omitempty"`
	Fields []FieldBound `json:"fields"`
}

// Range returns the bound for field, if the method has one.
func (b Bounds) Range(field string) (Range, bool) {
	for _, f := range b.Fields {
		if f.Field == field {
			return f.Range, true
		}
	}
	return Range{}, false
}

// ComputeBounds derives the legal numeric ranges of method m from the shape
// of t. For cluster designs the cluster range needs column; when column is
// empty that bound is omitted.
func ComputeBounds(t *table.Table, m Method, column string) (Bounds, error) {
	if t == nil {
		return Bounds{}, &InvalidParameterError{Field: FieldTable, Reason: "no dataset loaded"}
	}
	b := Bounds{Method: m, Rows: t.Len(), ColumnField: m.ColumnField()}
	sizeRange := Range{Min: 1, Max: t.Len()}
	switch m {
	case MethodRandom, MethodSystematic, MethodStratified:
		b.Fields = append(b.Fields, FieldBound{Field: FieldSampleSize, Range: sizeRange})
		if m == MethodStratified && column != "" {
			if err := checkColumn(t, FieldStrataColumn, column); err != nil {
				return Bounds{}, err
			}
			b.Column = column
		}
	case MethodCluster1, MethodCluster2:
		if column != "" {
			if err := checkColumn(t, FieldClusterColumn, column); err != nil {
				return Bounds{}, err
			}
			n, _ := t.Distinct(column)
			b.Column = column
			b.Fields = append(b.Fields, FieldBound{Field: FieldClusterCount, Range: Range{Min: 1, Max: n}})
		}
		if m == MethodCluster2 {
			b.Fields = append(b.Fields, FieldBound{Field: FieldSampleSize, Range: sizeRange})
		}
	default:
		return Bounds{}, &InvalidParameterError{Field: FieldMethod, Value: string(m), Reason: "unknown method"}
	}
	return b, nil
}

// Validate checks every parameter of req against t. It never samples; a nil
// error means the engine can run req on t.
func Validate(t *table.Table, req Request) error {
	if t == nil {
		return &InvalidParameterError{Field: FieldTable, Reason: "no dataset loaded"}
	}
	if req == nil {
		return &InvalidParameterError{Field: FieldMethod, Reason: "no sampling request"}
	}
	type value struct {
		field string
		v     int
	}
	var column string
	var values []value
	switch r := req.(type) {
	case Random:
		values = []value{{FieldSampleSize, r.SampleSize}}
	case Systematic:
		values = []value{{FieldSampleSize, r.SampleSize}}
	case Stratified:
		column = r.StrataColumn
		values = []value{{FieldSampleSize, r.SampleSize}}
	case Cluster1:
		column = r.ClusterColumn
		values = []value{{FieldClusterCount, r.ClusterCount}}
	case Cluster2:
		column = r.ClusterColumn
		values = []value{{FieldClusterCount, r.ClusterCount}, {FieldSampleSize, r.SampleSize}}
	default:
		return &InvalidParameterError{Field: FieldMethod, Reason: fmt.Sprintf("unsupported request %T", req)}
	}
	if field := req.Method().ColumnField(); field != "" {
		if err := checkColumn(t, field, column); err != nil {
			return err
		}
	}
	b, err := ComputeBounds(t, req.Method(), column)
	if err != nil {
		return err
	}
	for _, v := range values {
		r, _ := b.Range(v.field)
		if !r.Contains(v.v) {
			e := outOfRange(v.field, v.v, r.Min, r.Max)
			if r.Empty() {
				e.Reason = "dataset has no rows"
				if v.field == FieldClusterCount {
					e.Reason = fmt.Sprintf("column %q has no clusters", column)
				}
			}
			return e
		}
	}
	return nil
}

func checkColumn(t *table.Table, field, column string) error {
	if column == "" {
		return &InvalidParameterError{Field: field, Reason: "a column name is required"}
	}
	if _, err := t.ColumnIndex(column); err != nil {
		reason := fmt.Sprintf("column not found; available columns: %s", strings.Join(t.Columns(), ", "))
		if !errors.Is(err, table.ErrUnknownColumn) {
			reason = err.Error()
		}
		return &InvalidParameterError{Field: field, Value: column, Reason: reason, Err: err}
	}
	return nil
}
