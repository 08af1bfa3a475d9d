// Package schema is the per-entity registry: which raw columns carry ids,
// timestamps and numbers, which column anchors date filtering, and the
// human-readable headers used for CSV export. Both upstream sources (the
// database and the CSV mirror) expose the same column names, so the
// registry is source-independent.
package schema

import "github.com/crmdash/backend/internal/dataset"

type TableSchema struct {
	Name       string
	IDs        []string
	Dates      []string
	Numbers    []string
	DateColumn string            // default column for date-range filtering
	Labels     map[string]string // export header renames
}

func (s TableSchema) Spec() dataset.ColumnSpec {
	return dataset.ColumnSpec{IDs: s.IDs, Dates: s.Dates, Numbers: s.Numbers}
}

// TableNames lists every snapshot table in load order.
var TableNames = []string{
	"tickets", "ticketcall", "customercall", "customers", "customer_phones",
	"ticket_items", "ticket_item_change_another", "ticket_item_change_same",
	"ticket_item_maintenance",
	"users", "ticket_categories", "call_types", "call_categories",
	"governorates", "cities", "companies", "product_info", "request_reasons",
}

var registry = map[string]TableSchema{
	"tickets": {
		Name:       "tickets",
		IDs:        []string{"id", "customer_id", "company_id", "created_by", "ticket_cat_id", "status", "priority"},
		Dates:      []string{"created_at", "updated_at", "closed_at"},
		DateColumn: "created_at",
		Labels: map[string]string{
			"id":                 "Ticket ID",
			"customer_id":        "Customer ID",
			"customer_name":      "Customer",
			"company_id":         "Company ID",
			"company_name":       "Company",
			"created_by":         "Created By ID",
			"created_by_name":    "Created By",
			"ticket_cat_id":      "Category ID",
			"category_name":      "Category",
			"status":             "Status",
			"priority":           "Priority",
			"description":        "Description",
			"created_at":         "Created At",
			"closed_at":          "Closed At",
			"governorate_name":   "Governorate",
			"city_name":          "City",
		},
	},
	"ticketcall": {
		Name:       "ticketcall",
		IDs:        []string{"id", "ticket_id", "created_by", "call_type", "call_cat_id"},
		Dates:      []string{"created_at", "call_date"},
		Numbers:    []string{"call_duration"},
		DateColumn: "created_at",
		Labels: map[string]string{
			"id":                 "Call ID",
			"ticket_id":          "Ticket ID",
			"created_by":         "Agent ID",
			"created_by_name":    "Agent",
			"call_type":          "Call Type ID",
			"call_type_name":     "Call Type",
			"call_cat_id":        "Call Category ID",
			"call_category_name": "Call Category",
			"call_duration":      "Duration (s)",
			"description":        "Description",
			"created_at":         "Created At",
			"customer_id":        "Customer ID",
			"customer_name":      "Customer",
		},
	},
	"customercall": {
		Name:       "customercall",
		IDs:        []string{"id", "customer_id", "created_by", "call_type", "category_id"},
		Dates:      []string{"created_at", "call_date"},
		Numbers:    []string{"call_duration"},
		DateColumn: "created_at",
		Labels: map[string]string{
			"id":                 "Call ID",
			"customer_id":        "Customer ID",
			"customer_name":      "Customer",
			"created_by":         "Agent ID",
			"created_by_name":    "Agent",
			"call_type":          "Call Type ID",
			"call_type_name":     "Call Type",
			"category_id":        "Category ID",
			"category_name":      "Category",
			"call_duration":      "Duration (s)",
			"created_at":         "Created At",
		},
	},
	"customers": {
		Name:       "customers",
		IDs:        []string{"id", "company_id", "governomate_id", "city_id", "created_by"},
		Dates:      []string{"created_at", "updated_at"},
		DateColumn: "created_at",
		Labels: map[string]string{
			"id":               "Customer ID",
			"name":             "Customer",
			"company_id":       "Company ID",
			"company_name":     "Company",
			"governomate_id":   "Governorate ID",
			"governorate_name": "Governorate",
			"city_id":          "City ID",
			"city_name":        "City",
			"created_by":       "Created By ID",
			"created_by_name":  "Created By",
			"created_at":       "Created At",
		},
	},
	"customer_phones": {
		Name:  "customer_phones",
		IDs:   []string{"id", "customer_id"},
		Dates: []string{"created_at"},
	},
	"ticket_items": {
		Name:       "ticket_items",
		IDs:        []string{"id", "ticket_id", "product_id", "request_reason_id", "ticket_cat_id", "quantity", "client_approval", "inspected"},
		Dates:      []string{"created_at", "inspected_date", "pull_date", "delivery_date"},
		Numbers:    []string{"cost"},
		DateColumn: "created_at",
		Labels: map[string]string{
			"id":                  "Item ID",
			"ticket_id":           "Ticket ID",
			"product_id":          "Product ID",
			"product_name":        "Product",
			"product_size":        "Product Size",
			"request_reason_id":   "Reason ID",
			"request_reason_name": "Request Reason",
			"quantity":            "Quantity",
			"inspected":           "Inspected",
			"inspected_date":      "Inspected At",
			"cost":                "Cost",
			"client_approval":     "Client Approval",
			"created_at":          "Created At",
		},
	},
	"ticket_item_change_another": {
		Name:       "ticket_item_change_another",
		IDs:        []string{"id", "ticket_id", "product_id", "request_reason_id", "client_approval", "inspected"},
		Dates:      []string{"created_at", "inspected_date", "pull_date", "delivery_date"},
		Numbers:    []string{"cost"},
		DateColumn: "created_at",
	},
	"ticket_item_change_same": {
		Name:       "ticket_item_change_same",
		IDs:        []string{"id", "ticket_id", "product_id", "request_reason_id", "client_approval", "inspected"},
		Dates:      []string{"created_at", "inspected_date", "pull_date", "delivery_date"},
		Numbers:    []string{"cost"},
		DateColumn: "created_at",
	},
	"ticket_item_maintenance": {
		Name:       "ticket_item_maintenance",
		IDs:        []string{"id", "ticket_id", "product_id", "request_reason_id", "client_approval", "inspected"},
		Dates:      []string{"created_at", "inspected_date", "pull_date", "delivery_date"},
		Numbers:    []string{"maintenance_cost"},
		DateColumn: "created_at",
	},

	"users":             {Name: "users", IDs: []string{"id"}, Dates: []string{"created_at"}},
	"ticket_categories": {Name: "ticket_categories", IDs: []string{"id"}},
	"call_types":        {Name: "call_types", IDs: []string{"id"}},
	"call_categories":   {Name: "call_categories", IDs: []string{"id"}},
	"governorates":      {Name: "governorates", IDs: []string{"id"}},
	"cities":            {Name: "cities", IDs: []string{"id", "governorate_id"}},
	"companies":         {Name: "companies", IDs: []string{"id"}},
	"product_info":      {Name: "product_info", IDs: []string{"id"}},
	"request_reasons":   {Name: "request_reasons", IDs: []string{"id"}},
}

// Get returns the schema for a known table; ok is false for unknown names.
func Get(name string) (TableSchema, bool) {
	s, ok := registry[name]
	return s, ok
}

// Known reports whether name is a registered snapshot table. Used to keep
// user-supplied table names out of SQL.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}
