package service

import (
	"testing"

	"github.com/crmdash/backend/internal/dataset"
	"github.com/crmdash/backend/internal/snapshot"
)

func TestApplyTableIdentityWhenEmptyPredicates(t *testing.T) {
	tbl := dataset.Table{
		Cols: []string{"id", "created_at"},
		Rows: []dataset.Row{{"id": int64(1), "created_at": date("2024-01-01 00:00:00")}},
	}
	out := ApplyTable(tbl, "created_at", Predicates{})
	if out.Len() != tbl.Len() {
		t.Fatalf("empty predicates must be the identity, got %d rows", out.Len())
	}
}

func TestApplyTableDateRangeInclusive(t *testing.T) {
	tbl := dataset.Table{
		Cols: []string{"id", "created_at"},
		Rows: []dataset.Row{
			{"id": int64(1), "created_at": date("2024-01-01 00:00:00")},
			{"id": int64(2), "created_at": date("2024-01-15 12:00:00")},
			{"id": int64(3), "created_at": date("2024-02-01 00:00:00")},
			{"id": int64(4), "created_at": nil},
		},
	}
	from := date("2024-01-01 00:00:00")
	to := date("2024-01-31 23:59:59")

	out := ApplyTable(tbl, "created_at", Predicates{From: &from, To: &to})
	if out.Len() != 2 {
		t.Fatalf("expected rows 1 and 2, got %d rows", out.Len())
	}
	// Bounds are inclusive: the row exactly at from survives.
	if id, _ := out.Rows[0].Int("id"); id != 1 {
		t.Fatalf("boundary row dropped: %v", out.Rows[0])
	}
}

func TestApplyTableNilDatesExcludedOnceRangeSet(t *testing.T) {
	tbl := dataset.Table{
		Cols: []string{"id", "created_at"},
		Rows: []dataset.Row{{"id": int64(1), "created_at": nil}},
	}
	from := date("2024-01-01 00:00:00")
	out := ApplyTable(tbl, "created_at", Predicates{From: &from})
	if out.Len() != 0 {
		t.Fatalf("nil dates must be excluded when a bound is set, got %d rows", out.Len())
	}
}

func TestApplyTableSkipsInapplicableIDPredicates(t *testing.T) {
	tbl := dataset.Table{
		Cols: []string{"id", "customer_id"},
		Rows: []dataset.Row{{"id": int64(1), "customer_id": int64(5)}},
	}
	company := int64(3)
	out := ApplyTable(tbl, "created_at", Predicates{Company: &company})
	// No company_id column here, so the predicate does not apply.
	if out.Len() != 1 {
		t.Fatalf("inapplicable predicate must not zero the table, got %d rows", out.Len())
	}
}

func TestApplySnapshotCompanyAnchorsOnCustomers(t *testing.T) {
	s := &snapshot.Snapshot{
		Tables: map[string]dataset.Table{
			"customers": {
				Cols: []string{"id", "company_id", "created_at"},
				Rows: []dataset.Row{
					{"id": int64(1), "company_id": int64(1), "created_at": date("2024-01-01 00:00:00")},
					{"id": int64(2), "company_id": int64(2), "created_at": date("2024-01-01 00:00:00")},
				},
			},
			"customercall": {
				Cols: []string{"id", "customer_id", "created_at"},
				Rows: []dataset.Row{
					{"id": int64(10), "customer_id": int64(1), "created_at": date("2024-01-02 00:00:00")},
					{"id": int64(11), "customer_id": int64(2), "created_at": date("2024-01-02 00:00:00")},
				},
			},
			"companies": {
				Cols: []string{"id", "name"},
				Rows: []dataset.Row{
					{"id": int64(1), "name": "Freedom"},
					{"id": int64(2), "name": "Other"},
				},
			},
		},
	}

	company := int64(1)
	out := ApplySnapshot(s, Predicates{Company: &company})

	if out.Table("customers").Len() != 1 {
		t.Fatalf("customers not filtered: %d", out.Table("customers").Len())
	}
	// customercall has no company_id: it follows the eligible customer set.
	calls := out.Table("customercall")
	if calls.Len() != 1 {
		t.Fatalf("calls not anchored on customers: %d", calls.Len())
	}
	if id, _ := calls.Rows[0].Int("customer_id"); id != 1 {
		t.Fatalf("wrong call survived: %v", calls.Rows[0])
	}
	// Dimension tables pass through untouched.
	if out.Table("companies").Len() != 2 {
		t.Fatalf("dimension table was filtered: %d", out.Table("companies").Len())
	}
}

func TestApplySnapshotIdentity(t *testing.T) {
	s := demoSnapshot()
	out := ApplySnapshot(s, Predicates{})
	if out != s {
		t.Fatalf("empty predicates should return the snapshot unchanged")
	}
}

func TestApplyTableStatusFilter(t *testing.T) {
	tbl := dataset.Table{
		Cols: []string{"id", "status", "created_at"},
		Rows: []dataset.Row{
			{"id": int64(1), "status": int64(0), "created_at": date("2024-01-01 00:00:00")},
			{"id": int64(2), "status": int64(1), "created_at": date("2024-01-01 00:00:00")},
		},
	}
	status := int64(1)
	out := ApplyTable(tbl, "created_at", Predicates{Status: &status})
	if out.Len() != 1 {
		t.Fatalf("status filter wrong: %d rows", out.Len())
	}
	if id, _ := out.Rows[0].Int("id"); id != 2 {
		t.Fatalf("wrong row survived: %v", out.Rows[0])
	}
}

func TestPredicatesToBeforeFromYieldsNothing(t *testing.T) {
	tbl := dataset.Table{
		Cols: []string{"id", "created_at"},
		Rows: []dataset.Row{{"id": int64(1), "created_at": date("2024-01-15 00:00:00")}},
	}
	from := date("2024-02-01 00:00:00")
	to := date("2024-01-01 00:00:00")
	out := ApplyTable(tbl, "created_at", Predicates{From: &from, To: &to})
	if out.Len() != 0 {
		t.Fatalf("inverted range must match nothing, got %d rows", out.Len())
	}
}
