// Package dataset holds the in-memory table representation the analytics
// pipeline works on: untyped rectangular tables of rows keyed by column
// name, plus the normalize/join/codec primitives every page-level view is
// composed from.
package dataset

import (
	"fmt"
	"strconv"
	"time"
)

// Row is one record. Cell values are nil, int64, float64, string, bool or
// time.Time; nil means the cell is null.
type Row map[string]any

// Table is a rectangular set of rows. Cols preserves the source column
// order; rows may omit keys for null cells.
type Table struct {
	Cols []string
	Rows []Row
}

func NewTable(cols ...string) Table {
	return Table{Cols: cols}
}

func (t Table) Len() int { return len(t.Rows) }

func (t Table) Empty() bool { return len(t.Rows) == 0 }

func (t Table) HasCol(name string) bool {
	for _, c := range t.Cols {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy; mutating the copy never touches the original.
func (t Table) Clone() Table {
	out := Table{Cols: append([]string(nil), t.Cols...)}
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out.Rows[i] = nr
	}
	return out
}

// AddCol appends a column name if it is not already present.
func (t *Table) AddCol(name string) {
	if !t.HasCol(name) {
		t.Cols = append(t.Cols, name)
	}
}

func (t *Table) Append(r Row) {
	t.Rows = append(t.Rows, r)
}

// Filter returns a table with the rows for which keep returns true.
func (t Table) Filter(keep func(Row) bool) Table {
	out := Table{Cols: append([]string(nil), t.Cols...)}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Int reads a cell as int64. Returns false for null, absent or
// non-integer cells.
func (r Row) Int(col string) (int64, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return 0, false
	}
	return coerceInt(v)
}

// Float reads a cell as float64, widening integers.
func (r Row) Float(col string) (float64, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Time reads a cell as time.Time.
func (r Row) Time(col string) (time.Time, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return time.Time{}, false
	}
	ts, ok := v.(time.Time)
	return ts, ok
}

// Str renders a cell for display and grouping. Null cells render empty.
func (r Row) Str(col string) string {
	v, ok := r[col]
	if !ok || v == nil {
		return ""
	}
	return FormatCell(v)
}

// Truthy reports whether a cell holds a "set" flag: true, a non-zero
// number, or a recognised textual yes.
func (r Row) Truthy(col string) bool {
	v, ok := r[col]
	if !ok || v == nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x == "1" || x == "true" || x == "yes"
	}
	return false
}

// FormatCell renders a single cell value as text. Times use RFC 3339 so
// exported files re-import cleanly.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
