// Package export streams enriched snapshot tables as CSV downloads.
package export

import (
	"fmt"
	"io"

	"github.com/crmdash/backend/internal/dataset"
	"github.com/crmdash/backend/internal/schema"
	"github.com/crmdash/backend/internal/service"
	"github.com/crmdash/backend/internal/snapshot"
)

// Entities lists the exportable entity names in menu order.
var Entities = []string{"tickets", "ticketcall", "customercall", "customers", "ticket_items"}

// Exportable reports whether entity has a CSV export.
func Exportable(entity string) bool {
	for _, e := range Entities {
		if e == entity {
			return true
		}
	}
	return false
}

// Write enriches the requested entity from the snapshot and streams it as
// CSV with the registry's human-readable headers.
func Write(w io.Writer, s *snapshot.Snapshot, entity string) error {
	var t dataset.Table
	switch entity {
	case "tickets":
		t, _ = service.TicketsWithDetails(s)
	case "ticketcall":
		t, _ = service.TicketCallsWithDetails(s)
	case "customercall":
		t, _ = service.CustomerCallsWithDetails(s)
	case "customers":
		t, _ = service.CustomersWithGeo(s)
	case "ticket_items":
		t, _ = service.ItemsWithDetails(s)
	default:
		return fmt.Errorf("entity %q is not exportable", entity)
	}

	sch, _ := schema.Get(entity)
	return dataset.WriteCSV(w, t, sch.Labels)
}
