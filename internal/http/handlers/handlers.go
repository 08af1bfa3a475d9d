package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/crmdash/backend/internal/dataset"
	"github.com/crmdash/backend/internal/export"
	"github.com/crmdash/backend/internal/service"
	"github.com/crmdash/backend/internal/snapshot"
)

// Pinger is implemented by sources that can report liveness. The CSV
// mirror has nothing meaningful to ping, so it stays nil there.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Snapshots *snapshot.Provider
	Source    Pinger
	Validator *validator.Validate
	Logger    zerolog.Logger
	AdminKey  string
}

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// filterQuery is the cross-cutting filter block shared by the analytics
// endpoints.
type filterQuery struct {
	From       string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	CompanyID  *int64 `form:"company_id" validate:"omitempty,min=1"`
	CustomerID *int64 `form:"customer_id" validate:"omitempty,min=1"`
	Status     *int64 `form:"status" validate:"omitempty,min=0,max=1"`
	CategoryID *int64 `form:"category_id" validate:"omitempty,min=1"`
}

func (h *Handler) predicates(c *gin.Context) (service.Predicates, bool) {
	var q filterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid filter parameters", err.Error())
		return service.Predicates{}, false
	}
	if err := h.Validator.Struct(q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid filter parameters", err.Error())
		return service.Predicates{}, false
	}

	p := service.Predicates{
		Company:  q.CompanyID,
		Customer: q.CustomerID,
		Status:   q.Status,
		Category: q.CategoryID,
	}
	if q.From != "" {
		from, _ := time.Parse("2006-01-02", q.From)
		p.From = &from
	}
	if q.To != "" {
		// An inclusive date-only upper bound covers the whole day.
		to, _ := time.Parse("2006-01-02", q.To)
		to = to.Add(24*time.Hour - time.Nanosecond)
		p.To = &to
	}
	if p.From != nil && p.To != nil && p.To.Before(*p.From) {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "to must not be before from", nil)
		return service.Predicates{}, false
	}
	return p, true
}

// filtered returns the snapshot with the request's predicates applied.
func (h *Handler) filtered(c *gin.Context) (*snapshot.Snapshot, bool) {
	p, ok := h.predicates(c)
	if !ok {
		return nil, false
	}
	s, err := h.Snapshots.Snapshot(c.Request.Context(), false)
	if err != nil {
		writeError(c, http.StatusServiceUnavailable, "SNAPSHOT_UNAVAILABLE", "failed to load data snapshot", err.Error())
		return nil, false
	}
	return service.ApplySnapshot(s, p), true
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = defaultLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}

func page(t dataset.Table, limit, offset int) []dataset.Row {
	if offset >= t.Len() {
		return []dataset.Row{}
	}
	end := offset + limit
	if end > t.Len() {
		end = t.Len()
	}
	return t.Rows[offset:end]
}

// @Summary Health check
// @Produce json
// @Success 200 {object} map[string]any
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	if h.Source != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := h.Source.Ping(ctx); err != nil {
			writeError(c, http.StatusServiceUnavailable, "SOURCE_UNAVAILABLE", "Data source unavailable", err.Error())
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Full dashboard payload
// @Description All headline metrics in one response
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/dashboard [get]
func (h *Handler) Dashboard(c *gin.Context) {
	s, ok := h.filtered(c)
	if !ok {
		return
	}

	var warnings []string
	warnings = append(warnings, s.Warnings...)

	tickets := enrich(&warnings, s, service.TicketsWithDetails)
	ticketCalls := enrich(&warnings, s, service.TicketCallsWithDetails)
	customerCalls := enrich(&warnings, s, service.CustomerCallsWithDetails)
	customers := enrich(&warnings, s, service.CustomersWithGeo)
	items := enrich(&warnings, s, service.ItemsWithDetails)
	actions, actionWarnings := service.ActionsSummaries(s)
	warnings = append(warnings, actionWarnings...)

	c.JSON(http.StatusOK, gin.H{
		"snapshot": snapshotMeta(s),
		"tickets":  service.TicketsSummary(tickets),
		"calls":    service.CombinedCallsSummary(ticketCalls, customerCalls, s.Table("customers")),
		"customers": service.CustomersSummary(
			customers, s.Table("tickets"), s.Table("customercall")),
		"items":    service.ItemsSummary(items),
		"actions":  actions,
		"warnings": warnings,
	})
}

// @Summary List enriched tickets
// @Tags tickets
// @Produce json
// @Param limit query int false "page size, max 1000"
// @Param offset query int false "page start"
// @Success 200 {object} map[string]any
// @Router /api/tickets [get]
func (h *Handler) TicketsList(c *gin.Context) {
	s, ok := h.filtered(c)
	if !ok {
		return
	}
	t, warnings := service.TicketsWithDetails(s)
	limit, offset := pagination(c)
	c.JSON(http.StatusOK, gin.H{
		"total":    t.Len(),
		"limit":    limit,
		"offset":   offset,
		"rows":     page(t, limit, offset),
		"warnings": warnings,
	})
}

// @Summary Ticket metrics
// @Tags tickets
// @Produce json
// @Success 200 {object} service.TicketMetrics
// @Router /api/tickets/metrics [get]
func (h *Handler) TicketMetrics(c *gin.Context) {
	s, ok := h.filtered(c)
	if !ok {
		return
	}
	t, _ := service.TicketsWithDetails(s)
	c.JSON(http.StatusOK, service.TicketsSummary(t))
}

// @Summary Call metrics, ticket and general calls combined
// @Tags calls
// @Produce json
// @Success 200 {object} service.CombinedCallMetrics
// @Router /api/calls/metrics [get]
func (h *Handler) CallMetrics(c *gin.Context) {
	s, ok := h.filtered(c)
	if !ok {
		return
	}
	ticketCalls, _ := service.TicketCallsWithDetails(s)
	customerCalls, _ := service.CustomerCallsWithDetails(s)
	c.JSON(http.StatusOK, service.CombinedCallsSummary(ticketCalls, customerCalls, s.Table("customers")))
}

// @Summary List enriched customers
// @Tags customers
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/customers [get]
func (h *Handler) CustomersList(c *gin.Context) {
	s, ok := h.filtered(c)
	if !ok {
		return
	}
	t, warnings := service.CustomersWithGeo(s)
	limit, offset := pagination(c)
	c.JSON(http.StatusOK, gin.H{
		"total":    t.Len(),
		"limit":    limit,
		"offset":   offset,
		"rows":     page(t, limit, offset),
		"warnings": warnings,
	})
}

// @Summary Customer metrics
// @Tags customers
// @Produce json
// @Success 200 {object} service.CustomerMetrics
// @Router /api/customers/metrics [get]
func (h *Handler) CustomerMetrics(c *gin.Context) {
	s, ok := h.filtered(c)
	if !ok {
		return
	}
	customers, _ := service.CustomersWithGeo(s)
	c.JSON(http.StatusOK, service.CustomersSummary(
		customers, s.Table("tickets"), s.Table("customercall")))
}

// @Summary Ticket item metrics
// @Tags items
// @Produce json
// @Success 200 {object} service.ItemMetrics
// @Router /api/items/metrics [get]
func (h *Handler) ItemMetrics(c *gin.Context) {
	s, ok := h.filtered(c)
	if !ok {
		return
	}
	items, _ := service.ItemsWithDetails(s)
	c.JSON(http.StatusOK, service.ItemsSummary(items))
}

// @Summary Tickets merged with their calls
// @Description Left join of enriched tickets onto enriched ticket calls; a ticket row repeats per call
// @Tags tickets
// @Produce json
// @Param limit query int false "page size, max 1000"
// @Param offset query int false "page start"
// @Success 200 {object} map[string]any
// @Router /api/tickets-calls [get]
func (h *Handler) TicketsCallsList(c *gin.Context) {
	s, ok := h.filtered(c)
	if !ok {
		return
	}
	var warnings []string
	tickets := enrich(&warnings, s, service.TicketsWithDetails)
	calls := enrich(&warnings, s, service.TicketCallsWithDetails)
	combined := service.CombineTicketsAndCalls(tickets, calls)

	limit, offset := pagination(c)
	c.JSON(http.StatusOK, gin.H{
		"total":    combined.Len(),
		"limit":    limit,
		"offset":   offset,
		"rows":     page(combined, limit, offset),
		"warnings": warnings,
	})
}

// @Summary Metrics for tickets and calls together
// @Tags tickets
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/tickets-calls/metrics [get]
func (h *Handler) TicketsCallsMetrics(c *gin.Context) {
	s, ok := h.filtered(c)
	if !ok {
		return
	}
	tickets, _ := service.TicketsWithDetails(s)
	ticketCalls, _ := service.TicketCallsWithDetails(s)
	customerCalls, _ := service.CustomerCallsWithDetails(s)
	c.JSON(http.StatusOK, gin.H{
		"tickets": service.TicketsSummary(tickets),
		"calls":   service.CombinedCallsSummary(ticketCalls, customerCalls, s.Table("customers")),
	})
}

// @Summary KPIs per item action table
// @Description change_another, change_same and maintenance blocks
// @Tags items
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/items/actions [get]
func (h *Handler) ItemActions(c *gin.Context) {
	s, ok := h.filtered(c)
	if !ok {
		return
	}
	actions, warnings := service.ActionsSummaries(s)
	if warnings == nil {
		warnings = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"actions":  actions,
		"warnings": warnings,
	})
}

var timeseriesEntities = map[string]string{
	"tickets":                    "created_at",
	"ticketcall":                 "created_at",
	"customercall":               "created_at",
	"customers":                  "created_at",
	"ticket_items":               "created_at",
	"ticket_item_change_another": "created_at",
	"ticket_item_change_same":    "created_at",
	"ticket_item_maintenance":    "created_at",
}

// @Summary Ticket or call volume over time
// @Tags dashboard
// @Produce json
// @Param entity query string true "tickets, ticketcall, customercall, customers or ticket_items"
// @Param period query string false "day, week, month, quarter or year"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/timeseries [get]
func (h *Handler) Timeseries(c *gin.Context) {
	entity := c.DefaultQuery("entity", "tickets")
	dateCol, ok := timeseriesEntities[entity]
	if !ok {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "unknown entity", entity)
		return
	}
	period := service.Period(c.DefaultQuery("period", string(service.PeriodMonth)))
	if !service.ValidPeriod(period) {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "unknown period", string(period))
		return
	}

	s, ok := h.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entity": entity,
		"period": period,
		"points": service.GroupByPeriod(s.Table(entity), dateCol, period),
	})
}

// @Summary Export an enriched entity as CSV
// @Tags export
// @Produce text/csv
// @Param entity path string true "tickets, ticketcall, customercall, customers or ticket_items"
// @Success 200 {string} string
// @Failure 400 {object} map[string]any
// @Router /api/export/{entity} [get]
func (h *Handler) Export(c *gin.Context) {
	entity := c.Param("entity")
	if !export.Exportable(entity) {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "unknown export entity", entity)
		return
	}
	s, ok := h.filtered(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+entity+`.csv"`)
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, s, entity); err != nil {
		h.Logger.Error().Err(err).Str("entity", entity).Msg("csv export failed")
	}
}

// @Summary Snapshot metadata
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/snapshot [get]
func (h *Handler) SnapshotInfo(c *gin.Context) {
	s, err := h.Snapshots.Snapshot(c.Request.Context(), false)
	if err != nil {
		writeError(c, http.StatusServiceUnavailable, "SNAPSHOT_UNAVAILABLE", "failed to load data snapshot", err.Error())
		return
	}
	c.JSON(http.StatusOK, snapshotMeta(s))
}

// @Summary Force a snapshot reload
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /api/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	s, err := h.Snapshots.Refresh(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusServiceUnavailable, "SNAPSHOT_UNAVAILABLE", "failed to reload data snapshot", err.Error())
		return
	}
	h.Logger.Info().Str("snapshot_id", s.ID.String()).Msg("snapshot refreshed")
	c.JSON(http.StatusOK, snapshotMeta(s))
}

func snapshotMeta(s *snapshot.Snapshot) gin.H {
	warnings := s.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return gin.H{
		"snapshot_id": s.ID.String(),
		"loaded_at":   s.LoadedAt,
		"row_counts":  s.RowCounts(),
		"warnings":    warnings,
	}
}

func enrich(warnings *[]string, s *snapshot.Snapshot, f func(*snapshot.Snapshot) (dataset.Table, []string)) dataset.Table {
	t, w := f(s)
	*warnings = append(*warnings, w...)
	return t
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
