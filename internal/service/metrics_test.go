package service

import (
	"testing"
	"time"

	"github.com/crmdash/backend/internal/dataset"
)

func date(s string) time.Time {
	ts, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestTicketsSummary(t *testing.T) {
	tickets := dataset.Table{
		Cols: []string{"id", "status", "created_at", "closed_at", "priority", "category_name"},
		Rows: []dataset.Row{
			{
				"id": int64(1), "status": int64(StatusClosed),
				"created_at": date("2024-01-01 00:00:00"), "closed_at": date("2024-01-03 00:00:00"),
				"priority": int64(1), "category_name": "Complaint",
			},
			{
				"id": int64(2), "status": int64(StatusOpen),
				"created_at": date("2024-01-02 00:00:00"), "closed_at": nil,
				"priority": int64(2), "category_name": "Complaint",
			},
		},
	}

	m := TicketsSummary(tickets)
	if m.TotalTickets != 2 || m.OpenTickets != 1 || m.ClosedTickets != 1 {
		t.Fatalf("counts wrong: %+v", m)
	}
	if m.OpenTickets+m.ClosedTickets != m.TotalTickets {
		t.Fatalf("open+closed != total: %+v", m)
	}
	if m.OpenPercentage != 50 || m.ClosedPercentage != 50 {
		t.Fatalf("percentages wrong: %+v", m)
	}
	if m.AvgResolutionTime != 48 {
		t.Fatalf("expected 48h avg resolution, got %v", m.AvgResolutionTime)
	}
	if len(m.CategoryCounts) != 1 || m.CategoryCounts[0].Count != 2 {
		t.Fatalf("category counts wrong: %+v", m.CategoryCounts)
	}
}

func TestTicketsSummaryResolutionCountsOnlyClosed(t *testing.T) {
	// An open ticket carrying a stale closed_at must not enter the average.
	tickets := dataset.Table{
		Cols: []string{"id", "status", "created_at", "closed_at"},
		Rows: []dataset.Row{
			{
				"id": int64(1), "status": int64(StatusClosed),
				"created_at": date("2024-01-01 00:00:00"), "closed_at": date("2024-01-03 00:00:00"),
			},
			{
				"id": int64(2), "status": int64(StatusOpen),
				"created_at": date("2024-01-01 00:00:00"), "closed_at": date("2024-01-11 00:00:00"),
			},
		},
	}

	m := TicketsSummary(tickets)
	if m.AvgResolutionTime != 48 {
		t.Fatalf("open tickets must not count towards resolution time, got %v", m.AvgResolutionTime)
	}
}

func TestTicketsSummaryEmptyTable(t *testing.T) {
	m := TicketsSummary(dataset.Table{})
	if m.TotalTickets != 0 || m.OpenPercentage != 0 || m.ClosedPercentage != 0 || m.AvgResolutionTime != 0 {
		t.Fatalf("zero denominators must yield zeros: %+v", m)
	}
}

func TestTicketsSummaryMissingStatusColumn(t *testing.T) {
	tickets := dataset.Table{
		Cols: []string{"id"},
		Rows: []dataset.Row{{"id": int64(1)}},
	}
	m := TicketsSummary(tickets)
	if m.TotalTickets != 1 || m.OpenTickets != 0 || m.ClosedTickets != 0 {
		t.Fatalf("absent status column should leave open/closed at zero: %+v", m)
	}
}

func TestCallsSummary(t *testing.T) {
	calls := dataset.Table{
		Cols: []string{"id", "call_type", "call_duration", "created_by_name"},
		Rows: []dataset.Row{
			{"id": int64(1), "call_type": int64(CallTypeInbound), "call_duration": 60.0, "created_by_name": "Sara"},
			{"id": int64(2), "call_type": int64(CallTypeInbound), "call_duration": 120.0, "created_by_name": "Sara"},
			{"id": int64(3), "call_type": int64(CallTypeOutbound), "call_duration": nil, "created_by_name": "Omar"},
		},
	}

	m := CallsSummary(calls, "call_category_name")
	if m.TotalCalls != 3 || m.InboundCalls != 2 || m.OutboundCalls != 1 {
		t.Fatalf("direction counts wrong: %+v", m)
	}
	if m.InboundPercentage < 66.6 || m.InboundPercentage > 66.7 {
		t.Fatalf("inbound percentage wrong: %v", m.InboundPercentage)
	}
	if m.OutboundPercentage < 33.3 || m.OutboundPercentage > 33.4 {
		t.Fatalf("outbound percentage wrong: %v", m.OutboundPercentage)
	}
	// Nil durations are excluded from the average.
	if m.AvgCallDuration != 90 {
		t.Fatalf("expected avg duration 90, got %v", m.AvgCallDuration)
	}
	if len(m.AgentCounts) != 2 || m.AgentCounts[0].Key != "Sara" || m.AgentCounts[0].Count != 2 {
		t.Fatalf("agent counts wrong: %+v", m.AgentCounts)
	}
}

func TestCustomersSummary(t *testing.T) {
	customers := dataset.Table{
		Cols: []string{"id", "company_name"},
		Rows: []dataset.Row{
			{"id": int64(1), "company_name": "Acme"},
			{"id": int64(2), "company_name": "Acme"},
			{"id": int64(3), "company_name": "Globex"},
		},
	}
	tickets := dataset.Table{
		Cols: []string{"id", "customer_id"},
		Rows: []dataset.Row{
			{"id": int64(10), "customer_id": int64(1)},
			{"id": int64(11), "customer_id": int64(1)},
			{"id": int64(12), "customer_id": int64(999)},
		},
	}
	calls := dataset.Table{
		Cols: []string{"id", "customer_id"},
		Rows: []dataset.Row{
			{"id": int64(20), "customer_id": int64(2)},
		},
	}

	m := CustomersSummary(customers, tickets, calls)
	if m.TotalCustomers != 3 || m.CustomersWithTickets != 1 {
		t.Fatalf("customer counts wrong: %+v", m)
	}
	if m.TicketCoverage < 33.3 || m.TicketCoverage > 33.4 {
		t.Fatalf("coverage wrong: %v", m.TicketCoverage)
	}
	if m.CustomersWithCalls != 1 {
		t.Fatalf("customers with calls wrong: %+v", m)
	}
	if m.CallCoverage < 33.3 || m.CallCoverage > 33.4 {
		t.Fatalf("call coverage wrong: %v", m.CallCoverage)
	}
	if m.AvgTicketsPerCustomer != 1 {
		t.Fatalf("avg tickets per customer wrong: %v", m.AvgTicketsPerCustomer)
	}
}

func TestCombinedCallsSummary(t *testing.T) {
	ticketCalls := dataset.Table{
		Cols: []string{"id", "customer_id", "call_type"},
		Rows: []dataset.Row{
			{"id": int64(1), "customer_id": int64(1), "call_type": int64(CallTypeInbound)},
			{"id": int64(2), "customer_id": int64(1), "call_type": int64(CallTypeInbound)},
		},
	}
	customerCalls := dataset.Table{
		Cols: []string{"id", "customer_id", "call_type"},
		Rows: []dataset.Row{
			{"id": int64(3), "customer_id": int64(2), "call_type": int64(CallTypeOutbound)},
		},
	}
	customers := dataset.Table{
		Cols: []string{"id"},
		Rows: []dataset.Row{{"id": int64(1)}, {"id": int64(2)}, {"id": int64(3)}},
	}

	m := CombinedCallsSummary(ticketCalls, customerCalls, customers)
	if m.TotalTicketCalls != 2 || m.TotalCustomerCalls != 1 || m.TotalCalls != 3 {
		t.Fatalf("totals wrong: %+v", m)
	}
	// Two ticket calls reached one customer.
	if m.AvgTicketCallsPerCustomer != 2 {
		t.Fatalf("avg ticket calls per customer wrong: %v", m.AvgTicketCallsPerCustomer)
	}
	if m.AvgCustomerCallsPerCustomer != 1 {
		t.Fatalf("avg customer calls per customer wrong: %v", m.AvgCustomerCallsPerCustomer)
	}
	// Three calls over the whole three-customer base.
	if m.AvgCallsPerCustomer != 1 {
		t.Fatalf("avg calls per customer wrong: %v", m.AvgCallsPerCustomer)
	}
}

func TestCombinedCallsSummaryEmptyBase(t *testing.T) {
	m := CombinedCallsSummary(dataset.Table{}, dataset.Table{}, dataset.Table{})
	if m.AvgCallsPerCustomer != 0 || m.AvgTicketCallsPerCustomer != 0 || m.AvgCustomerCallsPerCustomer != 0 {
		t.Fatalf("zero denominators must yield zeros: %+v", m)
	}
}

func TestValueCountsOrderAndNilSkipping(t *testing.T) {
	tbl := dataset.Table{
		Cols: []string{"priority"},
		Rows: []dataset.Row{
			{"priority": int64(2)},
			{"priority": int64(1)},
			{"priority": int64(2)},
			{"priority": nil},
			{"priority": int64(3)},
		},
	}

	counts := ValueCounts(tbl, "priority")
	if len(counts) != 3 {
		t.Fatalf("nil must be skipped: %+v", counts)
	}
	if counts[0].Key != "2" || counts[0].Count != 2 {
		t.Fatalf("expected most frequent first: %+v", counts)
	}
	// Singletons tie, key order breaks the tie.
	if counts[1].Key != "1" || counts[2].Key != "3" {
		t.Fatalf("tie-break wrong: %+v", counts)
	}
}

func TestItemsSummary(t *testing.T) {
	items := dataset.Table{
		Cols: []string{"id", "inspected", "client_approval", "cost", "product_name"},
		Rows: []dataset.Row{
			{"id": int64(1), "inspected": int64(1), "client_approval": int64(1), "cost": 100.0, "product_name": "Fridge"},
			{"id": int64(2), "inspected": int64(0), "client_approval": int64(0), "cost": 50.0, "product_name": "Fridge"},
		},
	}

	m := ItemsSummary(items)
	if m.TotalItems != 2 || m.InspectedItems != 1 || m.InspectionRate != 50 {
		t.Fatalf("inspection numbers wrong: %+v", m)
	}
	if m.ApprovedItems != 1 || m.ApprovalRate != 50 {
		t.Fatalf("approval numbers wrong: %+v", m)
	}
	if len(m.ApprovalCounts) != 2 {
		t.Fatalf("approval counts wrong: %+v", m.ApprovalCounts)
	}
	if m.TotalCost != 150 || m.AvgCost != 75 {
		t.Fatalf("cost numbers wrong: %+v", m)
	}
}
