// Package service holds the dashboard's analytics core: dimension
// enrichment of the fact tables, metric aggregation, time-series grouping
// and snapshot-wide filtering. Everything operates on normalized snapshot
// tables and is free of transport concerns.
package service

import (
	"github.com/crmdash/backend/internal/dataset"
	"github.com/crmdash/backend/internal/snapshot"
)

// Label sentinels used when a dimension row is missing. Grouping on an
// enriched column must never produce a null bucket.
const (
	UnknownCustomer    = "Unknown Customer"
	UnknownCompany     = "Unknown Company"
	UnknownCategory    = "Unknown Category"
	UnknownUser        = "Unknown User"
	UnknownCallType    = "Unknown Call Type"
	UnknownGovernorate = "Unknown Governorate"
	UnknownCity        = "Unknown City"
	UnknownProduct     = "Unknown Product"
	UnknownReason      = "Unknown Reason"
)

// TicketsWithDetails attaches customer, company, category and creator
// labels to the tickets table.
func TicketsWithDetails(s *snapshot.Snapshot) (dataset.Table, []string) {
	var warnings []string
	t := s.Table("tickets")

	t = join(&warnings, t, s.Table("customers"), dataset.Lookup{
		Dim: "customer", FK: "customer_id", As: "customer_name", Sentinel: UnknownCustomer,
	})
	t = join(&warnings, t, s.Table("companies"), dataset.Lookup{
		Dim: "company", FK: "company_id", As: "company_name", Sentinel: UnknownCompany,
	})
	t = join(&warnings, t, s.Table("ticket_categories"), dataset.Lookup{
		Dim: "category", FK: "ticket_cat_id", As: "category_name", Sentinel: UnknownCategory,
	})
	t = join(&warnings, t, s.Table("users"), dataset.Lookup{
		Dim: "user", FK: "created_by", As: "created_by_name", Sentinel: UnknownUser,
	})
	return t, warnings
}

// TicketCallsWithDetails enriches ticket-scoped calls. The customer is two
// hops away (call -> ticket -> customer), so the ticket join carries
// customer_id over first.
func TicketCallsWithDetails(s *snapshot.Snapshot) (dataset.Table, []string) {
	var warnings []string
	t := s.Table("ticketcall")

	t = join(&warnings, t, s.Table("tickets"), dataset.Lookup{
		Dim: "ticket", FK: "ticket_id", Label: "id", As: "ticket_ref",
		Carry: []string{"customer_id"},
	})
	t = join(&warnings, t, s.Table("customers"), dataset.Lookup{
		Dim: "customer", FK: "customer_id", As: "customer_name", Sentinel: UnknownCustomer,
	})
	t = join(&warnings, t, s.Table("call_types"), dataset.Lookup{
		Dim: "call_type", FK: "call_type", As: "call_type_name", Sentinel: UnknownCallType,
	})
	t = join(&warnings, t, s.Table("call_categories"), dataset.Lookup{
		Dim: "call_category", FK: "call_cat_id", As: "call_category_name", Sentinel: UnknownCategory,
	})
	t = join(&warnings, t, s.Table("users"), dataset.Lookup{
		Dim: "user", FK: "created_by", As: "created_by_name", Sentinel: UnknownUser,
	})
	return t, warnings
}

// CustomerCallsWithDetails enriches general (non-ticket) customer calls.
func CustomerCallsWithDetails(s *snapshot.Snapshot) (dataset.Table, []string) {
	var warnings []string
	t := s.Table("customercall")

	t = join(&warnings, t, s.Table("customers"), dataset.Lookup{
		Dim: "customer", FK: "customer_id", As: "customer_name", Sentinel: UnknownCustomer,
	})
	t = join(&warnings, t, s.Table("call_types"), dataset.Lookup{
		Dim: "call_type", FK: "call_type", As: "call_type_name", Sentinel: UnknownCallType,
	})
	t = join(&warnings, t, s.Table("call_categories"), dataset.Lookup{
		Dim: "call_category", FK: "category_id", As: "category_name", Sentinel: UnknownCategory,
	})
	t = join(&warnings, t, s.Table("users"), dataset.Lookup{
		Dim: "user", FK: "created_by", As: "created_by_name", Sentinel: UnknownUser,
	})
	return t, warnings
}

// CustomersWithGeo attaches company, governorate, city and creator labels
// to the customers table.
func CustomersWithGeo(s *snapshot.Snapshot) (dataset.Table, []string) {
	var warnings []string
	t := s.Table("customers")

	t = join(&warnings, t, s.Table("companies"), dataset.Lookup{
		Dim: "company", FK: "company_id", As: "company_name", Sentinel: UnknownCompany,
	})
	t = join(&warnings, t, s.Table("governorates"), dataset.Lookup{
		Dim: "governorate", FK: "governomate_id", As: "governorate_name", Sentinel: UnknownGovernorate,
	})
	t = join(&warnings, t, s.Table("cities"), dataset.Lookup{
		Dim: "city", FK: "city_id", As: "city_name", Sentinel: UnknownCity,
	})
	t = join(&warnings, t, s.Table("users"), dataset.Lookup{
		Dim: "user", FK: "created_by", As: "created_by_name", Sentinel: UnknownUser,
	})
	return t, warnings
}

// ItemsWithDetails attaches product, request reason and category labels to
// the ticket items table.
func ItemsWithDetails(s *snapshot.Snapshot) (dataset.Table, []string) {
	var warnings []string
	t := s.Table("ticket_items")

	t = join(&warnings, t, s.Table("product_info"), dataset.Lookup{
		Dim: "product", FK: "product_id", Label: "product_name", As: "product_name", Sentinel: UnknownProduct,
	})
	t = join(&warnings, t, s.Table("request_reasons"), dataset.Lookup{
		Dim: "request_reason", FK: "request_reason_id", As: "request_reason_name", Sentinel: UnknownReason,
	})
	t = join(&warnings, t, s.Table("ticket_categories"), dataset.Lookup{
		Dim: "category", FK: "ticket_cat_id", As: "category_name", Sentinel: UnknownCategory,
	})
	return t, warnings
}

// CombineTicketsAndCalls merges enriched tickets with enriched ticket
// calls on the ticket id. Fan-out is expected: a ticket with three calls
// contributes three combined rows. Tickets without calls survive with nil
// call columns, and calls whose ticket is gone are anchored from the call
// side by the enrichment above.
func CombineTicketsAndCalls(tickets, calls dataset.Table) dataset.Table {
	tickets = renameCol(tickets, "description", "ticket_description")
	calls = renameCol(calls, "description", "call_description")
	return dataset.Merge(tickets, calls, "id", "ticket_id", "_ticket", "_call")
}

func join(warnings *[]string, base, dim dataset.Table, lk dataset.Lookup) dataset.Table {
	out, w := dataset.Join(base, dim, lk)
	*warnings = append(*warnings, w...)
	return out
}

func renameCol(t dataset.Table, from, to string) dataset.Table {
	if !t.HasCol(from) {
		return t
	}
	out := t.Clone()
	for i, c := range out.Cols {
		if c == from {
			out.Cols[i] = to
		}
	}
	for _, r := range out.Rows {
		if v, ok := r[from]; ok {
			r[to] = v
			delete(r, from)
		}
	}
	return out
}
