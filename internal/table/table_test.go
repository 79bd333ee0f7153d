package table

import (
	"errors"
	"reflect"
	"testing"
)

func mustTable(t *testing.T, cols []string, rows [][]string) *Table {
	t.Helper()
	tb, err := New("fixture.csv", cols, rows)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	return tb
}

func TestNewRejectsRaggedRows(t *testing.T) {
	_, err := New("x", []string{"a", "b"}, [][]string{{"1", "2"}, {"3"}})
	if err == nil {
		t.Fatalf("expected error for ragged row")
	}
}

func TestUniqueColumnNames(t *testing.T) {
	tb := mustTable(t, []string{"a", "a", "", "a.1", "a"}, nil)
	got := tb.Columns()
	want := []string{"a", "a.1", "Unnamed: 2", "a.1.1", "a.2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
}

func TestColumnLookupUnknown(t *testing.T) {
	tb := mustTable(t, []string{"id"}, [][]string{{"1"}})
	if _, err := tb.ColumnIndex("nope"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
	if _, err := tb.Value(0, "nope"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn from Value, got %v", err)
	}
	if tb.HasColumn("nope") || !tb.HasColumn("id") {
		t.Fatalf("HasColumn mismatch")
	}
}

func TestGroupsFirstAppearanceOrder(t *testing.T) {
	tb := mustTable(t, []string{"id", "region"}, [][]string{
		{"1", "south"}, {"2", "north"}, {"3", "south"}, {"4", "east"}, {"5", "north"},
	})
	groups, err := tb.Groups("region")
	if err != nil {
		t.Fatalf("groups: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Key != "south" || !reflect.DeepEqual(groups[0].Rows, []int{0, 2}) {
		t.Fatalf("unexpected first group: %+v", groups[0])
	}
	if groups[1].Key != "north" || !reflect.DeepEqual(groups[1].Rows, []int{1, 4}) {
		t.Fatalf("unexpected second group: %+v", groups[1])
	}
	vals, _ := tb.DistinctValues("region")
	if !reflect.DeepEqual(vals, []string{"east", "north", "south"}) {
		t.Fatalf("distinct values = %v", vals)
	}
}

func TestTakeCopiesRows(t *testing.T) {
	tb := mustTable(t, []string{"id", "v"}, [][]string{{"1", "a"}, {"2", "b"}, {"3", "c"}})
	s := tb.Take([]int{2, 0, 2})
	if s.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", s.Len())
	}
	if got := s.Record(0)[0]; got != "3" {
		t.Fatalf("first sampled id = %s", got)
	}
	rec := s.Record(1)
	rec[0] = "mutated"
	if v, _ := tb.Value(0, "id"); v != "1" {
		t.Fatalf("source table mutated: %s", v)
	}
	if s.Name() != tb.Name() || !reflect.DeepEqual(s.Columns(), tb.Columns()) {
		t.Fatalf("sample must keep name and columns")
	}
	if row := s.Row(2); row["v"] != "c" {
		t.Fatalf("row mapping = %v", row)
	}
}

func TestSchemaKinds(t *testing.T) {
	tb := mustTable(t, []string{"date", "score", "grade", "note", "blank"}, [][]string{
		{"2024-08-10", "12,5", "A", "first visit", ""},
		{"2024-08-12", "11.8", "B", "second visit", ""},
		{"2024-08-15", "10%", "A", "third visit", ""},
	})
	want := map[string]Kind{
		"date":  KindDatetime,
		"score": KindNumeric,
		"grade": KindCategorical,
		"note":  KindCategorical,
		"blank": KindEmpty,
	}
	for _, c := range tb.Schema() {
		if c.Kind != want[c.Name] {
			t.Fatalf("column %s kind = %s, want %s", c.Name, c.Kind, want[c.Name])
		}
	}
	if sc := tb.Schema()[2]; sc.Distinct != 2 || sc.NonNull != 3 {
		t.Fatalf("grade stats = %+v", sc)
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.5", 12.5, true},
		{"12,5", 12.5, true},
		{"1.000,5", 1000.5, true},
		{"1,000.5", 1000.5, true},
		{"45%", 45, true},
		{"1e3", 1000, true},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Fatalf("ParseNumber(%q) = %v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}
