package table

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindDatetime    Kind = "datetime"
	KindCategorical Kind = "categorical"
	KindText        Kind = "text"
	KindEmpty       Kind = "empty"
)

// maxCategoryLen bounds the length of values still treated as category labels.
const maxCategoryLen = 64

func inferKinds(rows [][]string, ncol int) []Kind {
	kinds := make([]Kind, ncol)
	for j := 0; j < ncol; j++ {
		var numCnt, dtCnt, txtCnt int
		cats := make(map[string]struct{})
		longText := false
		for _, r := range rows {
			v := strings.TrimSpace(r[j])
			if v == "" {
				continue
			}
			if _, ok := ParseNumber(v); ok {
				numCnt++
				continue
			}
			if _, ok := parseTimeMaybe(v); ok {
				dtCnt++
				continue
			}
			txtCnt++
			if len(v) > maxCategoryLen {
				longText = true
			}
			cats[v] = struct{}{}
		}
		switch {
		case numCnt+dtCnt+txtCnt == 0:
			kinds[j] = KindEmpty
		case numCnt >= dtCnt && numCnt >= txtCnt:
			kinds[j] = KindNumeric
		case dtCnt >= txtCnt:
			kinds[j] = KindDatetime
		case !longText && len(cats) <= categoryLimit(len(rows)):
			kinds[j] = KindCategorical
		default:
			kinds[j] = KindText
		}
	}
	return kinds
}

// categoryLimit is the largest number of distinct labels a column may have
// and still count as categorical.
func categoryLimit(rows int) int {
	limit := rows / 2
	if limit < 20 {
		limit = 20
	}
	return limit
}

// ParseNumber parses a numeric cell, accepting percent signs and either ',' or
// '.' as decimal separator (the last one wins when both are present).
func ParseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := '.'
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	if cpos >= 0 && cpos > dpos {
		dec = ','
	}
	for _, sep := range []rune{',', '.', ' '} {
		if sep != dec {
			raw = strings.ReplaceAll(raw, string(sep), "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
