package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ColumnSpec names the columns of a raw table that carry a known type.
// Columns listed here but absent from the table are ignored.
type ColumnSpec struct {
	IDs     []string // integer-coded columns: keys, enums, flags
	Dates   []string // timestamp columns
	Numbers []string // free numeric columns (durations, costs)
}

// Normalize returns a copy of t with id-like columns coerced to int64,
// date-like columns to timezone-naive time.Time and numeric columns to
// float64. Unparseable cells become null; no row is ever dropped.
// Normalizing an already-normalized table is a no-op.
func Normalize(t Table, spec ColumnSpec) Table {
	out := t.Clone()
	for _, r := range out.Rows {
		for _, col := range spec.IDs {
			if !out.HasCol(col) {
				continue
			}
			if v, ok := r[col]; ok && v != nil {
				if n, ok := coerceInt(v); ok {
					r[col] = n
				} else {
					r[col] = nil
				}
			}
		}
		for _, col := range spec.Dates {
			if !out.HasCol(col) {
				continue
			}
			if v, ok := r[col]; ok && v != nil {
				if ts, ok := coerceTime(v); ok {
					r[col] = ts
				} else {
					r[col] = nil
				}
			}
		}
		for _, col := range spec.Numbers {
			if !out.HasCol(col) {
				continue
			}
			if v, ok := r[col]; ok && v != nil {
				if f, ok := coerceFloat(v); ok {
					r[col] = f
				} else {
					r[col] = nil
				}
			}
		}
	}
	return out
}

// coerceInt accepts integers, integral floats (CSV round-trips widen ids
// to floats, e.g. "10.0") and numeric strings.
func coerceInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
			return int64(f), true
		}
		return 0, false
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func coerceFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01-02 15:04",
}

// coerceTime parses the timestamp shapes the upstream CRM emits and strips
// any zone so comparisons are on the wall clock.
func coerceTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return naive(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return naive(ts), true
			}
		}
		return time.Time{}, false
	}
	return time.Time{}, false
}

func naive(ts time.Time) time.Time {
	y, mo, d := ts.Date()
	h, mi, s := ts.Clock()
	return time.Date(y, mo, d, h, mi, s, ts.Nanosecond(), time.UTC)
}
