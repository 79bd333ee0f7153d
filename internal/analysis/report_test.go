package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/echantillon-cli/internal/table"
)

func fixture(t *testing.T) *table.Table {
	t.Helper()
	tb, err := table.New("people.csv", []string{"id", "region", "age"}, [][]string{
		{"1", "Nord", "20"}, {"2", "Nord", "30"}, {"3", "Sud", "40"},
		{"4", "Sud", "50"}, {"5", "Est", "60"}, {"6", "Est", "70"},
	})
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	return tb
}

func column(r *Report, name string) ColumnComparison {
	for _, c := range r.Columns {
		if c.Name == name {
			return c
		}
	}
	return ColumnComparison{}
}

func TestCompareNumericSummaries(t *testing.T) {
	src := fixture(t)
	sample := src.Take([]int{0, 1})
	r := Compare(src, sample, "random", DefaultOptions())
	if r.Rows != 6 || r.SampleRows != 2 {
		t.Fatalf("unexpected sizes %+v", r)
	}
	age := column(r, "age")
	if age.Kind != table.KindNumeric || age.Source == nil || age.Sample == nil {
		t.Fatalf("age not compared as numeric: %+v", age)
	}
	if age.Source.Mean != 45 || age.Source.Median != 45 || age.Sample.Mean != 25 {
		t.Fatalf("unexpected means: src %+v sample %+v", age.Source, age.Sample)
	}
	if age.Source.Min != 20 || age.Source.Max != 70 {
		t.Fatalf("unexpected range %+v", age.Source)
	}
	wantStd := math.Sqrt(350)
	if math.Abs(age.Source.Std-wantStd) > 1e-9 {
		t.Fatalf("std = %v, want %v", age.Source.Std, wantStd)
	}
	if age.Deviation >= 0 {
		t.Fatalf("expected negative deviation, got %v", age.Deviation)
	}
}

func TestCompareFlagsMissingCategoriesAndDeviation(t *testing.T) {
	src := fixture(t)
	r := Compare(src, src.Take([]int{0, 1}), "cluster1", DefaultOptions())
	region := column(r, "region")
	if len(region.Shares) != 3 {
		t.Fatalf("expected 3 shares, got %+v", region.Shares)
	}
	for _, s := range region.Shares {
		if math.Abs(s.Source-1.0/3) > 1e-9 {
			t.Fatalf("unexpected source share %+v", s)
		}
		if s.Value == "Nord" && s.Sample != 1 {
			t.Fatalf("Nord should be the whole sample: %+v", s)
		}
	}
	joined := strings.Join(r.Warnings, "\n")
	if !strings.Contains(joined, "region: 2 source categories absent") {
		t.Fatalf("missing category warning: %v", r.Warnings)
	}
	if !strings.Contains(joined, "age: sample mean") {
		t.Fatalf("missing deviation warning: %v", r.Warnings)
	}
}

func TestCompareFullSampleHasNoWarnings(t *testing.T) {
	src := fixture(t)
	r := Compare(src, src.Take([]int{0, 1, 2, 3, 4, 5}), "systematic", DefaultOptions())
	if len(r.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", r.Warnings)
	}
}

func TestMarkdown(t *testing.T) {
	src := fixture(t)
	md := Compare(src, src.Take([]int{2, 4}), "systematic", DefaultOptions()).Markdown()
	for _, want := range []string{
		"# Sample report",
		"Source: people.csv (6 rows)",
		"Sample: 2 rows (33.3%)",
		"## Numeric columns",
		"| age | 45 | 50 |",
		"### region",
		"| Nord | 33.3% | 0.0% |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestQuantile(t *testing.T) {
	if got := quantile([]float64{1, 2, 3, 4}, 0.5); got != 2.5 {
		t.Fatalf("median = %v", got)
	}
	if got := quantile(nil, 0.5); got != 0 {
		t.Fatalf("empty quantile = %v", got)
	}
}
