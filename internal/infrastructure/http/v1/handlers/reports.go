package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"gelateria/internal/core/apperror"
	"gelateria/internal/domain/reports"
)

// ReportsHandler handles reporting endpoints.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// SalesByPeriod handles GET /api/sales/reports/period.
func (h *ReportsHandler) SalesByPeriod(c *gin.Context) {
	from, to, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	report, err := h.service.SalesReport(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// MaterialConsumption handles GET /api/material-purchases/consumption-report.
func (h *ReportsHandler) MaterialConsumption(c *gin.Context) {
	from, to, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	report, err := h.service.MaterialConsumptionReport(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// parsePeriod reads the mandatory startDate/endDate query parameters.
// The end date is pushed to the end of its day so a plain date covers
// the whole day.
func (h *ReportsHandler) parsePeriod(c *gin.Context) (time.Time, time.Time, bool) {
	from, ok := h.ParseDateQuery(c, "startDate")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := h.ParseDateQuery(c, "endDate")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if from == nil || to == nil {
		h.Error(c, apperror.NewValidation("startDate and endDate are required"))
		return time.Time{}, time.Time{}, false
	}

	end := *to
	if end.Hour() == 0 && end.Minute() == 0 && end.Second() == 0 {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	return *from, end, true
}
