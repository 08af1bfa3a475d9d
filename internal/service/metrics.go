package service

import (
	"sort"

	"github.com/crmdash/backend/internal/dataset"
)

// Ticket status codes as stored upstream.
const (
	StatusOpen   = 0
	StatusClosed = 1
)

// Call direction codes as stored upstream.
const (
	CallTypeInbound  = 1
	CallTypeOutbound = 2
)

// CountEntry is one bucket of a frequency table.
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// ValueCounts builds a frequency table over one column, ordered by count
// descending with key ascending as the tie-break so output is stable. Nil
// cells are skipped.
func ValueCounts(t dataset.Table, col string) []CountEntry {
	counts := map[string]int{}
	for _, r := range t.Rows {
		v, ok := r[col]
		if !ok || v == nil {
			continue
		}
		counts[dataset.FormatCell(v)]++
	}
	out := make([]CountEntry, 0, len(counts))
	for k, n := range counts {
		out = append(out, CountEntry{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// TopN truncates a frequency table to its n largest buckets.
func TopN(entries []CountEntry, n int) []CountEntry {
	if len(entries) <= n {
		return entries
	}
	return entries[:n]
}

type TicketMetrics struct {
	TotalTickets      int          `json:"total_tickets"`
	OpenTickets       int          `json:"open_tickets"`
	ClosedTickets     int          `json:"closed_tickets"`
	OpenPercentage    float64      `json:"open_percentage"`
	ClosedPercentage  float64      `json:"closed_percentage"`
	AvgResolutionTime float64      `json:"avg_resolution_time"`
	PriorityCounts    []CountEntry `json:"priority_counts"`
	CategoryCounts    []CountEntry `json:"category_counts"`
	CompanyCounts     []CountEntry `json:"company_counts"`
}

// TicketsSummary computes the ticket headline numbers. Percentages are 0
// when there are no tickets, and avg_resolution_time (hours) is 0 when no
// ticket has both created_at and closed_at.
func TicketsSummary(t dataset.Table) TicketMetrics {
	m := TicketMetrics{TotalTickets: t.Len()}

	if t.HasCol("status") {
		for _, r := range t.Rows {
			status, ok := r.Int("status")
			if !ok {
				continue
			}
			switch status {
			case StatusOpen:
				m.OpenTickets++
			case StatusClosed:
				m.ClosedTickets++
			}
		}
	}
	if m.TotalTickets > 0 {
		m.OpenPercentage = pct(m.OpenTickets, m.TotalTickets)
		m.ClosedPercentage = pct(m.ClosedTickets, m.TotalTickets)
	}

	// Resolution time only counts closed tickets; an open ticket carrying
	// a stale closed_at must not skew the average.
	var hours float64
	var resolved int
	for _, r := range t.Rows {
		if status, ok := r.Int("status"); !ok || status != StatusClosed {
			continue
		}
		created, ok := r.Time("created_at")
		if !ok {
			continue
		}
		closed, ok := r.Time("closed_at")
		if !ok || closed.Before(created) {
			continue
		}
		hours += closed.Sub(created).Hours()
		resolved++
	}
	if resolved > 0 {
		m.AvgResolutionTime = hours / float64(resolved)
	}

	m.PriorityCounts = ValueCounts(t, "priority")
	m.CategoryCounts = ValueCounts(t, "category_name")
	m.CompanyCounts = ValueCounts(t, "company_name")
	return m
}

type CallMetrics struct {
	TotalCalls         int          `json:"total_calls"`
	InboundCalls       int          `json:"inbound_calls"`
	OutboundCalls      int          `json:"outbound_calls"`
	InboundPercentage  float64      `json:"inbound_percentage"`
	OutboundPercentage float64      `json:"outbound_percentage"`
	AvgCallDuration    float64      `json:"avg_call_duration"`
	TypeCounts         []CountEntry `json:"type_counts"`
	CategoryCounts     []CountEntry `json:"category_counts"`
	AgentCounts        []CountEntry `json:"agent_counts"`
	TopAgents          []CountEntry `json:"top_agents"`
}

// CallsSummary computes headline numbers for one call table. categoryCol
// differs between ticket calls and general customer calls.
func CallsSummary(t dataset.Table, categoryCol string) CallMetrics {
	m := CallMetrics{TotalCalls: t.Len()}

	for _, r := range t.Rows {
		ct, ok := r.Int("call_type")
		if !ok {
			continue
		}
		switch ct {
		case CallTypeInbound:
			m.InboundCalls++
		case CallTypeOutbound:
			m.OutboundCalls++
		}
	}
	if m.TotalCalls > 0 {
		m.InboundPercentage = pct(m.InboundCalls, m.TotalCalls)
		m.OutboundPercentage = pct(m.OutboundCalls, m.TotalCalls)
	}

	var total float64
	var n int
	for _, r := range t.Rows {
		d, ok := r.Float("call_duration")
		if !ok {
			continue
		}
		total += d
		n++
	}
	if n > 0 {
		m.AvgCallDuration = total / float64(n)
	}

	m.TypeCounts = ValueCounts(t, "call_type_name")
	m.CategoryCounts = ValueCounts(t, categoryCol)
	m.AgentCounts = ValueCounts(t, "created_by_name")
	m.TopAgents = TopN(m.AgentCounts, 5)
	return m
}

type CombinedCallMetrics struct {
	TicketCalls                 CallMetrics `json:"ticket_calls"`
	CustomerCalls               CallMetrics `json:"customer_calls"`
	TotalTicketCalls            int         `json:"total_ticket_calls"`
	AvgTicketCallsPerCustomer   float64     `json:"avg_ticket_calls_per_customer"`
	TotalCustomerCalls          int         `json:"total_customer_calls"`
	AvgCustomerCallsPerCustomer float64     `json:"avg_customer_calls_per_customer"`
	TotalCalls                  int         `json:"total_calls"`
	AvgCallsPerCustomer         float64     `json:"avg_calls_per_customer"`
}

// CombinedCallsSummary aggregates ticket-scoped and general calls side by
// side. The per-stream averages divide by the customers that stream
// actually reached; the overall average divides by the whole customer
// base.
func CombinedCallsSummary(ticketCalls, customerCalls, customers dataset.Table) CombinedCallMetrics {
	m := CombinedCallMetrics{
		TicketCalls:   CallsSummary(ticketCalls, "call_category_name"),
		CustomerCalls: CallsSummary(customerCalls, "category_name"),
	}
	m.TotalTicketCalls = m.TicketCalls.TotalCalls
	m.TotalCustomerCalls = m.CustomerCalls.TotalCalls
	m.TotalCalls = m.TotalTicketCalls + m.TotalCustomerCalls

	if n := uniqueInts(ticketCalls, "customer_id"); n > 0 {
		m.AvgTicketCallsPerCustomer = float64(m.TotalTicketCalls) / float64(n)
	}
	if n := uniqueInts(customerCalls, "customer_id"); n > 0 {
		m.AvgCustomerCallsPerCustomer = float64(m.TotalCustomerCalls) / float64(n)
	}
	if customers.Len() > 0 {
		m.AvgCallsPerCustomer = float64(m.TotalCalls) / float64(customers.Len())
	}
	return m
}

func uniqueInts(t dataset.Table, col string) int {
	seen := map[int64]bool{}
	for _, r := range t.Rows {
		if v, ok := r.Int(col); ok {
			seen[v] = true
		}
	}
	return len(seen)
}

type CustomerMetrics struct {
	TotalCustomers        int          `json:"total_customers"`
	CustomersWithTickets  int          `json:"customers_with_tickets"`
	TicketCoverage        float64      `json:"ticket_coverage"`
	CustomersWithCalls    int          `json:"customers_with_calls"`
	CallCoverage          float64      `json:"call_coverage"`
	AvgTicketsPerCustomer float64      `json:"avg_tickets_per_customer"`
	AvgCallsPerCustomer   float64      `json:"avg_calls_per_customer"`
	CompanyCounts         []CountEntry `json:"company_counts"`
	GovernorateCounts     []CountEntry `json:"governorate_counts"`
	CityCounts            []CountEntry `json:"city_counts"`
}

// CustomersSummary computes the customer base numbers against ticket and
// call activity. All ratios are 0 when there are no customers.
func CustomersSummary(customers, tickets, customerCalls dataset.Table) CustomerMetrics {
	m := CustomerMetrics{TotalCustomers: customers.Len()}

	withTickets := map[int64]bool{}
	for _, r := range tickets.Rows {
		if id, ok := r.Int("customer_id"); ok {
			withTickets[id] = true
		}
	}
	withCalls := map[int64]bool{}
	for _, r := range customerCalls.Rows {
		if id, ok := r.Int("customer_id"); ok {
			withCalls[id] = true
		}
	}
	for _, r := range customers.Rows {
		id, ok := r.Int("id")
		if !ok {
			continue
		}
		if withTickets[id] {
			m.CustomersWithTickets++
		}
		if withCalls[id] {
			m.CustomersWithCalls++
		}
	}
	if m.TotalCustomers > 0 {
		m.TicketCoverage = pct(m.CustomersWithTickets, m.TotalCustomers)
		m.CallCoverage = pct(m.CustomersWithCalls, m.TotalCustomers)
		m.AvgTicketsPerCustomer = float64(tickets.Len()) / float64(m.TotalCustomers)
		m.AvgCallsPerCustomer = float64(customerCalls.Len()) / float64(m.TotalCustomers)
	}

	m.CompanyCounts = ValueCounts(customers, "company_name")
	m.GovernorateCounts = ValueCounts(customers, "governorate_name")
	m.CityCounts = ValueCounts(customers, "city_name")
	return m
}

type ItemMetrics struct {
	TotalItems     int          `json:"total_items"`
	InspectedItems int          `json:"inspected_items"`
	InspectionRate float64      `json:"inspection_rate"`
	ApprovedItems  int          `json:"approved_items"`
	ApprovalRate   float64      `json:"approval_rate"`
	ApprovalCounts []CountEntry `json:"approval_counts"`
	TotalCost      float64      `json:"total_cost"`
	AvgCost        float64      `json:"avg_cost"`
	ProductCounts  []CountEntry `json:"product_counts"`
	ReasonCounts   []CountEntry `json:"reason_counts"`
	TopProducts    []CountEntry `json:"top_products"`
}

// ItemsSummary computes the ticket item numbers.
func ItemsSummary(t dataset.Table) ItemMetrics {
	m := ItemMetrics{TotalItems: t.Len()}

	for _, r := range t.Rows {
		if r.Truthy("inspected") {
			m.InspectedItems++
		}
		if r.Truthy("client_approval") {
			m.ApprovedItems++
		}
	}
	if m.TotalItems > 0 {
		m.InspectionRate = pct(m.InspectedItems, m.TotalItems)
		m.ApprovalRate = pct(m.ApprovedItems, m.TotalItems)
	}
	m.ApprovalCounts = ValueCounts(t, "client_approval")

	var n int
	for _, r := range t.Rows {
		c, ok := r.Float("cost")
		if !ok {
			continue
		}
		m.TotalCost += c
		n++
	}
	if n > 0 {
		m.AvgCost = m.TotalCost / float64(n)
	}

	m.ProductCounts = ValueCounts(t, "product_name")
	m.ReasonCounts = ValueCounts(t, "request_reason_name")
	m.TopProducts = TopN(m.ProductCounts, 5)
	return m
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
