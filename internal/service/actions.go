package service

import (
	"github.com/crmdash/backend/internal/dataset"
	"github.com/crmdash/backend/internal/snapshot"
)

// The three item action tables share one shape except for the cost column.
var actionTables = []struct {
	Table   string
	Key     string
	CostCol string
}{
	{"ticket_item_change_another", "change_another", "cost"},
	{"ticket_item_change_same", "change_same", "cost"},
	{"ticket_item_maintenance", "maintenance", "maintenance_cost"},
}

// ActionItemsWithDetails enriches one item action table: product and
// request reason labels directly, the customer through the owning ticket.
func ActionItemsWithDetails(s *snapshot.Snapshot, table string) (dataset.Table, []string) {
	var warnings []string
	t := s.Table(table)

	t = join(&warnings, t, s.Table("product_info"), dataset.Lookup{
		Dim: "product", FK: "product_id", Label: "product_name", As: "product_name", Sentinel: UnknownProduct,
	})
	t = join(&warnings, t, s.Table("request_reasons"), dataset.Lookup{
		Dim: "request_reason", FK: "request_reason_id", As: "request_reason_name", Sentinel: UnknownReason,
	})
	t = join(&warnings, t, s.Table("tickets"), dataset.Lookup{
		Dim: "ticket", FK: "ticket_id", Label: "id", As: "ticket_ref",
		Carry: []string{"customer_id"},
	})
	t = join(&warnings, t, s.Table("customers"), dataset.Lookup{
		Dim: "customer", FK: "customer_id", As: "customer_name", Sentinel: UnknownCustomer,
	})
	return t, warnings
}

// ActionMetrics is one action table's KPI block.
type ActionMetrics struct {
	TotalRows          int          `json:"total_rows"`
	UniqueProducts     int          `json:"unique_products"`
	UniqueCustomers    int          `json:"unique_customers"`
	TotalCost          float64      `json:"total_cost"`
	AvgCostPerCustomer float64      `json:"avg_cost_per_customer"`
	ApprovalCounts     []CountEntry `json:"approval_counts"`
	AvgDaysToInspect   float64      `json:"avg_days_to_inspect"`
	ProductCounts      []CountEntry `json:"product_counts"`
	ReasonCounts       []CountEntry `json:"reason_counts"`
}

// ActionsSummaries computes the KPI block for each item action table,
// keyed change_another, change_same, maintenance. Collected enrichment
// warnings are returned alongside.
func ActionsSummaries(s *snapshot.Snapshot) (map[string]ActionMetrics, []string) {
	var warnings []string
	out := make(map[string]ActionMetrics, len(actionTables))
	for _, a := range actionTables {
		t, w := ActionItemsWithDetails(s, a.Table)
		warnings = append(warnings, w...)
		out[a.Key] = actionSummary(t, a.CostCol)
	}
	return out, warnings
}

func actionSummary(t dataset.Table, costCol string) ActionMetrics {
	m := ActionMetrics{TotalRows: t.Len()}

	products := map[string]bool{}
	customers := map[string]bool{}
	for _, r := range t.Rows {
		if name := r.Str("product_name"); name != "" {
			products[name] = true
		}
		if name := r.Str("customer_name"); name != "" {
			customers[name] = true
		}
		if c, ok := r.Float(costCol); ok {
			m.TotalCost += c
		}
	}
	m.UniqueProducts = len(products)
	m.UniqueCustomers = len(customers)
	if m.UniqueCustomers > 0 {
		m.AvgCostPerCustomer = m.TotalCost / float64(m.UniqueCustomers)
	}

	var days float64
	var n int
	for _, r := range t.Rows {
		created, ok := r.Time("created_at")
		if !ok {
			continue
		}
		inspected, ok := r.Time("inspected_date")
		if !ok || inspected.Before(created) {
			continue
		}
		days += inspected.Sub(created).Hours() / 24
		n++
	}
	if n > 0 {
		m.AvgDaysToInspect = days / float64(n)
	}

	m.ApprovalCounts = ValueCounts(t, "client_approval")
	m.ProductCounts = ValueCounts(t, "product_name")
	m.ReasonCounts = ValueCounts(t, "request_reason_name")
	return m
}
