// Alert history handler.
//
// Exposes GET /alerts, a paginated read of the audit log. The route is only
// registered when history is enabled, so a nil history service here is a
// wiring bug and answers 404.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guardline/go-alert-backend/internal/domain"
	"github.com/guardline/go-alert-backend/internal/services"
	"github.com/guardline/go-alert-backend/internal/utils"
)

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListAlertsResponse wraps a page of recorded alerts and pagination info.
type ListAlertsResponse struct {
	Alerts     []domain.Alert `json:"alerts"`
	Pagination Pagination     `json:"pagination"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// ListAlerts godoc
// @ID          listAlerts
// @Summary     List dispatched alerts (paginated)
// @Description Returns a page of recorded alerts with their per-contact delivery outcomes, newest first. Only available when history is enabled.
// @Tags        Alerts
// @Produce     json
//
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListAlertsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /alerts [get]
func (h *Handlers) ListAlerts(c *gin.Context) {
	if h.histSvc == nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "alert history is disabled")
		return
	}
	page, pageSize := clampPagination(c)

	items, total, err := h.histSvc.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "Internal server error")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListAlertsResponse{
		Alerts: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetAlert godoc
// @ID          getAlert
// @Summary     Fetch one dispatched alert
// @Description Returns a single recorded alert with its per-contact delivery outcomes. Only available when history is enabled.
// @Tags        Alerts
// @Produce     json
//
// @Param       id  path  string  true  "Alert ID"
//
// @Success     200  {object}  domain.Alert
// @Failure     404  {object}  handlers.ErrorResponse  "Alert not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /alerts/{id} [get]
func (h *Handlers) GetAlert(c *gin.Context) {
	if h.histSvc == nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "alert history is disabled")
		return
	}

	a, err := h.histSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrAlertNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "Alert not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "Internal server error")
		return
	}
	ok(c, http.StatusOK, a)
}
