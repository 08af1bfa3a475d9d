package service

import (
	"time"

	"github.com/crmdash/backend/internal/dataset"
	"github.com/crmdash/backend/internal/schema"
	"github.com/crmdash/backend/internal/snapshot"
)

// Predicates is the cross-cutting filter block every analytics endpoint
// accepts. Nil fields mean "no constraint"; a Predicates zero value is the
// identity filter. Date bounds are inclusive on both ends and rows with a
// nil date are excluded once either bound is set.
type Predicates struct {
	From     *time.Time
	To       *time.Time
	Company  *int64
	Customer *int64
	Status   *int64
	Category *int64
}

func (p Predicates) empty() bool {
	return p.From == nil && p.To == nil && p.Company == nil &&
		p.Customer == nil && p.Status == nil && p.Category == nil
}

// ApplyTable filters one table. dateCol anchors the date range; sch names
// which id columns the table actually carries so inapplicable predicates
// are skipped rather than zeroing the table out.
func ApplyTable(t dataset.Table, dateCol string, p Predicates) dataset.Table {
	if p.empty() {
		return t
	}
	return t.Filter(func(r dataset.Row) bool {
		if p.From != nil || p.To != nil {
			ts, ok := r.Time(dateCol)
			if !ok {
				return false
			}
			if p.From != nil && ts.Before(*p.From) {
				return false
			}
			if p.To != nil && ts.After(*p.To) {
				return false
			}
		}
		if p.Company != nil && t.HasCol("company_id") {
			if id, ok := r.Int("company_id"); !ok || id != *p.Company {
				return false
			}
		}
		if p.Customer != nil && t.HasCol("customer_id") {
			if id, ok := r.Int("customer_id"); !ok || id != *p.Customer {
				return false
			}
		}
		if p.Status != nil && t.HasCol("status") {
			if st, ok := r.Int("status"); !ok || st != *p.Status {
				return false
			}
		}
		if p.Category != nil {
			if !matchCategory(t, r, *p.Category) {
				return false
			}
		}
		return true
	})
}

// matchCategory checks whichever category id column the table carries.
func matchCategory(t dataset.Table, r dataset.Row, want int64) bool {
	for _, col := range []string{"ticket_cat_id", "call_cat_id", "category_id"} {
		if !t.HasCol(col) {
			continue
		}
		id, ok := r.Int(col)
		return ok && id == want
	}
	return true
}

// ApplySnapshot filters every fact table of a snapshot consistently. The
// company predicate anchors on the customers table: the eligible customer
// id set is computed once and the propagated constraint keeps fact tables
// that only carry customer_id in agreement with the customers table.
// Dimension tables pass through untouched.
func ApplySnapshot(s *snapshot.Snapshot, p Predicates) *snapshot.Snapshot {
	if p.empty() {
		return s
	}

	out := &snapshot.Snapshot{
		ID:       s.ID,
		LoadedAt: s.LoadedAt,
		Tables:   make(map[string]dataset.Table, len(s.Tables)),
		Warnings: s.Warnings,
	}

	var eligible map[int64]bool
	if p.Company != nil {
		eligible = map[int64]bool{}
		for _, r := range s.Table("customers").Rows {
			if cid, ok := r.Int("company_id"); ok && cid == *p.Company {
				if id, ok := r.Int("id"); ok {
					eligible[id] = true
				}
			}
		}
	}

	for name, t := range s.Tables {
		sch, _ := schema.Get(name)
		if sch.DateColumn == "" {
			// Dimension tables are never filtered.
			out.Tables[name] = t
			continue
		}
		ft := ApplyTable(t, sch.DateColumn, p)
		if eligible != nil && name != "customers" && ft.HasCol("customer_id") && !ft.HasCol("company_id") {
			ft = ft.Filter(func(r dataset.Row) bool {
				id, ok := r.Int("customer_id")
				return ok && eligible[id]
			})
		}
		out.Tables[name] = ft
	}
	return out
}
