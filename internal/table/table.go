package table

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownColumn is returned when a column name is not part of the table.
var ErrUnknownColumn = errors.New("unknown column")

// Table is an immutable, in-memory tabular dataset. Cells keep their source
// text; each column carries a kind inferred from its values.
type Table struct {
	name    string
	columns []string
	index   map[string]int
	rows    [][]string
	kinds   []Kind
}

// Column describes one column of a table.
type Column struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	NonNull  int    `json:"non_null"`
	Distinct int    `json:"distinct"`
}

// Group is the set of row positions sharing one value of a column.
type Group struct {
	Key  string
	Rows []int
}

// New builds a table from a header and records. Every record must have exactly
// len(columns) cells. Duplicate or blank header names are renamed so that
// lookups by name stay unambiguous.
func New(name string, columns []string, rows [][]string) (*Table, error) {
	cols := uniqueNames(columns)
	t := &Table{
		name:    name,
		columns: cols,
		index:   make(map[string]int, len(cols)),
		rows:    make([][]string, len(rows)),
	}
	for i, c := range cols {
		t.index[c] = i
	}
	for i, r := range rows {
		if len(r) != len(cols) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i+1, len(r), len(cols))
		}
		cp := make([]string, len(r))
		copy(cp, r)
		t.rows[i] = cp
	}
	t.kinds = inferKinds(t.rows, len(cols))
	return t, nil
}

// Name returns the source name of the table (usually a file basename).
func (t *Table) Name() string { return t.name }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns the ordered column names.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether name is a column of t.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex resolves a column name to its position.
func (t *Table) ColumnIndex(name string) (int, error) {
	idx, ok := t.index[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return idx, nil
}

// Kind returns the inferred kind of a column.
func (t *Table) Kind(name string) (Kind, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return "", err
	}
	return t.kinds[idx], nil
}

// Schema summarizes every column: kind, non-null count and distinct values.
func (t *Table) Schema() []Column {
	out := make([]Column, len(t.columns))
	for j, name := range t.columns {
		seen := make(map[string]struct{})
		nonNull := 0
		for _, r := range t.rows {
			if strings.TrimSpace(r[j]) != "" {
				nonNull++
			}
			seen[r[j]] = struct{}{}
		}
		out[j] = Column{Name: name, Kind: t.kinds[j], NonNull: nonNull, Distinct: len(seen)}
	}
	return out
}

// Record returns a copy of the cells of row i in column order.
func (t *Table) Record(i int) []string {
	cp := make([]string, len(t.rows[i]))
	copy(cp, t.rows[i])
	return cp
}

// Row returns row i as a column name to value mapping.
func (t *Table) Row(i int) map[string]string {
	m := make(map[string]string, len(t.columns))
	for j, c := range t.columns {
		m[c] = t.rows[i][j]
	}
	return m
}

// Value returns the cell at row i in the named column.
func (t *Table) Value(i int, column string) (string, error) {
	idx, err := t.ColumnIndex(column)
	if err != nil {
		return "", err
	}
	if i < 0 || i >= len(t.rows) {
		return "", fmt.Errorf("row %d out of range [0,%d)", i, len(t.rows))
	}
	return t.rows[i][idx], nil
}

// Groups partitions row positions by the value of column. Groups are ordered
// by first appearance; rows within a group keep table order.
func (t *Table) Groups(column string) ([]Group, error) {
	idx, err := t.ColumnIndex(column)
	if err != nil {
		return nil, err
	}
	pos := make(map[string]int)
	var groups []Group
	for i, r := range t.rows {
		key := r[idx]
		g, ok := pos[key]
		if !ok {
			g = len(groups)
			pos[key] = g
			groups = append(groups, Group{Key: key})
		}
		groups[g].Rows = append(groups[g].Rows, i)
	}
	return groups, nil
}

// Distinct returns the number of distinct values in column.
func (t *Table) Distinct(column string) (int, error) {
	g, err := t.Groups(column)
	if err != nil {
		return 0, err
	}
	return len(g), nil
}

// DistinctValues returns the sorted distinct values of column.
func (t *Table) DistinctValues(column string) ([]string, error) {
	g, err := t.Groups(column)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(g))
	for i := range g {
		out[i] = g[i].Key
	}
	sort.Strings(out)
	return out, nil
}

// Take returns a new table made of copies of the rows at the given positions,
// in the given order. Positions may repeat.
func (t *Table) Take(positions []int) *Table {
	out := &Table{
		name:    t.name,
		columns: t.columns,
		index:   t.index,
		kinds:   t.kinds,
		rows:    make([][]string, len(positions)),
	}
	for i, p := range positions {
		out.rows[i] = t.Record(p)
	}
	return out
}

func uniqueNames(columns []string) []string {
	out := make([]string, len(columns))
	seen := make(map[string]int, len(columns))
	for i, c := range columns {
		name := strings.TrimSpace(c)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for n := seen[base]; n > 0; n++ {
			name = fmt.Sprintf("%s.%d", base, n)
			if _, taken := seen[name]; !taken {
				seen[base] = n + 1
				break
			}
		}
		seen[name]++
		out[i] = name
	}
	return out
}
