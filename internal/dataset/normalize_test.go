package dataset

import (
	"testing"
	"time"
)

func TestNormalizeCoercesIDColumns(t *testing.T) {
	tbl := Table{
		Cols: []string{"id", "customer_id"},
		Rows: []Row{
			{"id": "10", "customer_id": 7},
			{"id": "10.0", "customer_id": 3.0},
			{"id": "abc", "customer_id": nil},
			{"id": "", "customer_id": "12"},
		},
	}

	out := Normalize(tbl, ColumnSpec{IDs: []string{"id", "customer_id"}})

	if v, ok := out.Rows[0].Int("id"); !ok || v != 10 {
		t.Fatalf("expected id 10, got %v", out.Rows[0]["id"])
	}
	if v, ok := out.Rows[1].Int("id"); !ok || v != 10 {
		t.Fatalf("expected integral float to coerce, got %v", out.Rows[1]["id"])
	}
	if out.Rows[2]["id"] != nil {
		t.Fatalf("expected unparseable id to become nil, got %v", out.Rows[2]["id"])
	}
	if out.Rows[3]["id"] != nil {
		t.Fatalf("expected empty id to become nil, got %v", out.Rows[3]["id"])
	}
	if v, ok := out.Rows[3].Int("customer_id"); !ok || v != 12 {
		t.Fatalf("expected customer_id 12, got %v", out.Rows[3]["customer_id"])
	}
}

func TestNormalizeCoercesDates(t *testing.T) {
	tbl := Table{
		Cols: []string{"created_at"},
		Rows: []Row{
			{"created_at": "2024-03-05 14:30:00"},
			{"created_at": "2024-03-05"},
			{"created_at": "2024-03-05T14:30:00+02:00"},
			{"created_at": "not a date"},
		},
	}

	out := Normalize(tbl, ColumnSpec{Dates: []string{"created_at"}})

	want := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	if ts, ok := out.Rows[0].Time("created_at"); !ok || !ts.Equal(want) {
		t.Fatalf("expected %v, got %v", want, out.Rows[0]["created_at"])
	}
	if ts, ok := out.Rows[1].Time("created_at"); !ok || ts.Hour() != 0 {
		t.Fatalf("expected date-only midnight, got %v", out.Rows[1]["created_at"])
	}
	// Zones are stripped, wall clock is kept.
	if ts, ok := out.Rows[2].Time("created_at"); !ok || !ts.Equal(want) {
		t.Fatalf("expected naive wall clock %v, got %v", want, out.Rows[2]["created_at"])
	}
	if out.Rows[3]["created_at"] != nil {
		t.Fatalf("expected unparseable date to become nil, got %v", out.Rows[3]["created_at"])
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	tbl := Table{
		Cols: []string{"id", "created_at", "cost"},
		Rows: []Row{
			{"id": "5", "created_at": "2024-01-01", "cost": "12.5"},
		},
	}
	spec := ColumnSpec{IDs: []string{"id"}, Dates: []string{"created_at"}, Numbers: []string{"cost"}}

	once := Normalize(tbl, spec)
	twice := Normalize(once, spec)

	for _, col := range []string{"id", "created_at", "cost"} {
		if once.Rows[0][col] != twice.Rows[0][col] {
			t.Fatalf("column %s changed on second pass: %v vs %v", col, once.Rows[0][col], twice.Rows[0][col])
		}
	}
}

func TestNormalizeEmptyTable(t *testing.T) {
	out := Normalize(Table{}, ColumnSpec{IDs: []string{"id"}})
	if out.Len() != 0 {
		t.Fatalf("expected empty table, got %d rows", out.Len())
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	tbl := Table{
		Cols: []string{"id"},
		Rows: []Row{{"id": "7"}},
	}
	_ = Normalize(tbl, ColumnSpec{IDs: []string{"id"}})
	if tbl.Rows[0]["id"] != "7" {
		t.Fatalf("input table mutated: %v", tbl.Rows[0]["id"])
	}
}
