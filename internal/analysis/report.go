// Package analysis compares a sample with the dataset it was drawn from so
// users can judge how representative the sample is.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/echantillon-cli/internal/table"
)

// Options controls the comparison.
type Options struct {
	// TopValues limits how many categories are compared per column.
	TopValues int
	// DeviationThreshold flags numeric columns whose sample mean is further
	// than this many source standard deviations from the source mean.
	DeviationThreshold float64
}

// DefaultOptions returns reasonable defaults for sample comparison.
func DefaultOptions() Options {
	return Options{TopValues: 8, DeviationThreshold: 0.5}
}

// NumSummary holds basic statistics of a numeric column.
type NumSummary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Median float64 `json:"median"`
}

// Share is the proportion of rows holding one category value.
type Share struct {
	Value  string  `json:"value"`
	Source float64 `json:"source"`
	Sample float64 `json:"sample"`
}

// ColumnComparison contrasts one column between source and sample.
type ColumnComparison struct {
	Name string     `json:"name"`
	Kind table.Kind `json:"kind"`
	// Numeric columns
	Source *NumSummary `json:"source,omitempty"`
	Sample *NumSummary `json:"sample,omitempty"`
	// Deviation is (sample mean - source mean) / source std; 0 when std is 0.
	Deviation float64 `json:"deviation,omitempty"`
	// Categorical columns
	Shares []Share `json:"shares,omitempty"`
}

// Report is a markdown-friendly comparison of a sample with its source.
type Report struct {
	Name       string             `json:"name"`
	Method     string             `json:"method"`
	Rows       int                `json:"rows"`
	SampleRows int                `json:"sample_rows"`
	Columns    []ColumnComparison `json:"columns"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// Compare summarizes numeric and categorical columns of src and sample.
// Both tables must share the same columns.
func Compare(src, sample *table.Table, method string, opt Options) *Report {
	if opt.TopValues <= 0 {
		opt.TopValues = DefaultOptions().TopValues
	}
	r := &Report{Name: src.Name(), Method: method, Rows: src.Len(), SampleRows: sample.Len()}
	for _, c := range src.Schema() {
		switch c.Kind {
		case table.KindNumeric:
			a, b := summarize(src, c.Name), summarize(sample, c.Name)
			cc := ColumnComparison{Name: c.Name, Kind: c.Kind, Source: a, Sample: b}
			if a.Std > 0 && b.Count > 0 {
				cc.Deviation = (b.Mean - a.Mean) / a.Std
				if opt.DeviationThreshold > 0 && math.Abs(cc.Deviation) > opt.DeviationThreshold {
					r.Warnings = append(r.Warnings, fmt.Sprintf("%s: sample mean %.4g is %.2f std from source mean %.4g", c.Name, b.Mean, cc.Deviation, a.Mean))
				}
			}
			r.Columns = append(r.Columns, cc)
		case table.KindCategorical:
			shares, missing := compareShares(src, sample, c.Name, opt.TopValues)
			if len(missing) > 0 {
				r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %d source categories absent from sample (%s)", c.Name, len(missing), strings.Join(limit(missing, 5), ", ")))
			}
			r.Columns = append(r.Columns, ColumnComparison{Name: c.Name, Kind: c.Kind, Shares: shares})
		}
	}
	return r
}

func summarize(t *table.Table, column string) *NumSummary {
	var vals []float64
	for i := 0; i < t.Len(); i++ {
		v, _ := t.Value(i, column)
		if f, ok := table.ParseNumber(v); ok {
			vals = append(vals, f)
		}
	}
	s := &NumSummary{Count: len(vals)}
	if len(vals) == 0 {
		return s
	}
	s.Min, s.Max = math.Inf(1), math.Inf(-1)
	var sum float64
	for _, v := range vals {
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = sum / float64(len(vals))
	if len(vals) > 1 {
		var ss float64
		for _, v := range vals {
			d := v - s.Mean
			ss += d * d
		}
		s.Std = math.Sqrt(ss / float64(len(vals)-1))
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	s.Median = quantile(sorted, 0.5)
	return s
}

// compareShares returns the shares of the top source categories and the
// source categories that never occur in the sample.
func compareShares(src, sample *table.Table, column string, top int) ([]Share, []string) {
	srcCounts := counts(src, column)
	smpCounts := counts(sample, column)
	keys := make([]string, 0, len(srcCounts))
	for k := range srcCounts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if srcCounts[keys[i]] == srcCounts[keys[j]] {
			return keys[i] < keys[j]
		}
		return srcCounts[keys[i]] > srcCounts[keys[j]]
	})
	var missing []string
	for _, k := range keys {
		if smpCounts[k] == 0 {
			missing = append(missing, k)
		}
	}
	shares := make([]Share, 0, top)
	for _, k := range limit(keys, top) {
		shares = append(shares, Share{Value: k, Source: ratio(srcCounts[k], src.Len()), Sample: ratio(smpCounts[k], sample.Len())})
	}
	return shares, missing
}

func counts(t *table.Table, column string) map[string]int {
	out := make(map[string]int)
	groups, err := t.Groups(column)
	if err != nil {
		return out
	}
	for _, g := range groups {
		out[g.Key] = len(g.Rows)
	}
	return out
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func limit(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Markdown renders the comparison as a standalone document.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Sample report\n\n")
	b.WriteString(fmt.Sprintf("Source: %s (%d rows)\n", safeVal(r.Name), r.Rows))
	if r.Method != "" {
		b.WriteString(fmt.Sprintf("Method: %s\n", r.Method))
	}
	b.WriteString(fmt.Sprintf("Sample: %d rows (%.1f%%)\n", r.SampleRows, 100*ratio(r.SampleRows, r.Rows)))

	var numeric, categorical []ColumnComparison
	for _, c := range r.Columns {
		if c.Kind == table.KindNumeric {
			numeric = append(numeric, c)
		} else {
			categorical = append(categorical, c)
		}
	}
	if len(numeric) > 0 {
		b.WriteString("\n## Numeric columns\n\n")
		b.WriteString("| Column | Source mean | Sample mean | Source median | Sample median | Deviation (std) |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
		for _, c := range numeric {
			b.WriteString(fmt.Sprintf("| %s | %.4g | %.4g | %.4g | %.4g | %+.2f |\n",
				safeVal(c.Name), c.Source.Mean, c.Sample.Mean, c.Source.Median, c.Sample.Median, c.Deviation))
		}
	}
	if len(categorical) > 0 {
		b.WriteString("\n## Categorical columns\n")
		for _, c := range categorical {
			b.WriteString(fmt.Sprintf("\n### %s\n\n", safeVal(c.Name)))
			b.WriteString("| Value | Source share | Sample share |\n| --- | --- | --- |\n")
			for _, s := range c.Shares {
				b.WriteString(fmt.Sprintf("| %s | %.1f%% | %.1f%% |\n", safeVal(s.Value), 100*s.Source, 100*s.Sample))
			}
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ReportName returns the report file name stored next to an export.
func ReportName(exportName string) string { return exportName + ".report.md" }

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
