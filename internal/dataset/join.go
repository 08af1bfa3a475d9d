package dataset

import "fmt"

// Lookup declares one dimension attach: take base[FK], find the dim row
// whose DimID matches, and copy the dim's Label column into the base under
// the As name. Rows without a match get Sentinel so downstream grouping
// never lands in a null bucket. Extra dim columns can be carried via Carry;
// on a name collision with the base they are suffixed "_"+Dim.
type Lookup struct {
	Dim      string   // logical dimension name, drives collision suffixes
	FK       string   // foreign key column on the base table
	DimID    string   // id column on the dimension, default "id"
	Label    string   // label column on the dimension, default "name"
	As       string   // output name for the label column
	Sentinel string   // value used when the match is missing
	Carry    []string // additional dimension columns to copy over
}

// Join left-joins one dimension onto base per lk. Every base row is
// preserved: the dimension is de-duplicated on its id column first (first
// occurrence wins), so a duplicated dimension id can never fan the base
// out. If the foreign key column is absent from the base the join is
// skipped, the label column is filled entirely with the sentinel, and a
// data-shape warning is returned instead of an error.
func Join(base, dim Table, lk Lookup) (Table, []string) {
	if lk.DimID == "" {
		lk.DimID = "id"
	}
	if lk.Label == "" {
		lk.Label = "name"
	}
	if lk.As == "" {
		lk.As = lk.Dim + "_name"
	}

	out := base.Clone()
	out.AddCol(lk.As)

	var warnings []string
	fill := func() (Table, []string) {
		for _, r := range out.Rows {
			r[lk.As] = lk.Sentinel
		}
		return out, warnings
	}

	if !base.HasCol(lk.FK) {
		warnings = append(warnings, fmt.Sprintf("join %s skipped: column %q missing from base table", lk.Dim, lk.FK))
		return fill()
	}
	if !dim.HasCol(lk.DimID) {
		warnings = append(warnings, fmt.Sprintf("join %s skipped: column %q missing from dimension table", lk.Dim, lk.DimID))
		return fill()
	}

	// First occurrence wins; duplicate dimension ids are a data defect and
	// must not multiply base rows.
	index := make(map[int64]Row, dim.Len())
	for _, dr := range dim.Rows {
		id, ok := dr.Int(lk.DimID)
		if !ok {
			continue
		}
		if _, seen := index[id]; !seen {
			index[id] = dr
		}
	}

	carryNames := make(map[string]string, len(lk.Carry))
	for _, c := range lk.Carry {
		name := c
		if base.HasCol(name) || name == lk.FK {
			name = c + "_" + lk.Dim
		}
		carryNames[c] = name
		out.AddCol(name)
	}

	for _, r := range out.Rows {
		var match Row
		if fk, ok := r.Int(lk.FK); ok {
			match = index[fk]
		}
		if match == nil {
			r[lk.As] = lk.Sentinel
			for _, c := range lk.Carry {
				r[carryNames[c]] = nil
			}
			continue
		}
		if label := match[lk.Label]; label != nil {
			r[lk.As] = label
		} else {
			r[lk.As] = lk.Sentinel
		}
		for _, c := range lk.Carry {
			r[carryNames[c]] = match[c]
		}
	}
	return out, warnings
}

// Merge left-joins two fact tables on an integer key, preserving every
// left row and duplicating it per right-side match (fan-out is expected
// between facts, e.g. one ticket to many calls). Column collisions other
// than the keys get the given suffixes, mirrored on both sides.
func Merge(left, right Table, leftKey, rightKey, leftSuffix, rightSuffix string) Table {
	collides := map[string]bool{}
	for _, c := range right.Cols {
		if c == rightKey {
			continue
		}
		if left.HasCol(c) {
			collides[c] = true
		}
	}

	out := Table{}
	leftName := func(c string) string {
		if collides[c] && c != leftKey {
			return c + leftSuffix
		}
		return c
	}
	rightName := func(c string) string {
		if collides[c] {
			return c + rightSuffix
		}
		return c
	}
	for _, c := range left.Cols {
		out.AddCol(leftName(c))
	}
	for _, c := range right.Cols {
		if c == rightKey {
			continue
		}
		out.AddCol(rightName(c))
	}

	index := make(map[int64][]Row, right.Len())
	for _, rr := range right.Rows {
		if k, ok := rr.Int(rightKey); ok {
			index[k] = append(index[k], rr)
		}
	}

	for _, lr := range left.Rows {
		base := make(Row, len(lr))
		for _, c := range left.Cols {
			base[leftName(c)] = lr[c]
		}
		var matches []Row
		if k, ok := lr.Int(leftKey); ok {
			matches = index[k]
		}
		if len(matches) == 0 {
			out.Append(base)
			continue
		}
		for _, rr := range matches {
			row := make(Row, len(base)+len(rr))
			for k, v := range base {
				row[k] = v
			}
			for _, c := range right.Cols {
				if c == rightKey {
					continue
				}
				row[rightName(c)] = rr[c]
			}
			out.Append(row)
		}
	}
	return out
}
