package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/crmdash/backend/internal/dataset"
	"github.com/crmdash/backend/internal/snapshot"
)

func TestExportable(t *testing.T) {
	if !Exportable("tickets") {
		t.Fatalf("tickets should be exportable")
	}
	if Exportable("users") {
		t.Fatalf("dimension tables are not exportable")
	}
}

func TestWriteUnknownEntity(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, &snapshot.Snapshot{}, "widgets"); err == nil {
		t.Fatalf("expected error for unknown entity")
	}
}

func TestWriteTickets(t *testing.T) {
	s := &snapshot.Snapshot{Tables: map[string]dataset.Table{
		"tickets": {
			Cols: []string{"id", "customer_id"},
			Rows: []dataset.Row{{"id": int64(1), "customer_id": int64(5)}},
		},
	}}

	var buf bytes.Buffer
	if err := Write(&buf, s, "tickets"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Ticket ID,Customer ID") {
		t.Fatalf("headers not renamed: %s", lines[0])
	}
	// Missing dimension tables fall back to sentinels, not errors.
	if !strings.Contains(lines[1], "Unknown Customer") {
		t.Fatalf("expected sentinel in row: %s", lines[1])
	}
}
