// Alert HTTP handlers.
//
// This file exposes the dispatch endpoints:
//   - POST /alert         (validate, deduplicate, compose, dispatch)
//   - POST /test-message  (send the fixed test message to one number)
//
// Handlers are transport-thin: they decode input, call the alert service,
// and translate sentinel errors into HTTP responses with the exact messages
// mobile clients match on.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guardline/go-alert-backend/internal/domain"
	"github.com/guardline/go-alert-backend/internal/services"
)

// AlertService defines the dispatch operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AlertService interface {
	// Trigger processes one alert request end to end.
	Trigger(ctx context.Context, req domain.AlertRequest) (*domain.AlertOutcome, error)
	// SendTest sends the fixed test message to a single number.
	SendTest(ctx context.Context, phoneNumber, name string) (*domain.DispatchResult, error)
}

// HistoryService defines read access to the alert audit log.
type HistoryService interface {
	// ListPage returns a page of recorded alerts, newest first, plus the
	// total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Alert, int64, error)
	// Get returns one recorded alert by ID, or services.ErrAlertNotFound.
	Get(ctx context.Context, id string) (*domain.Alert, error)
}

// Handlers groups the HTTP endpoints for alerts, test messages, history,
// and system probes. It depends on abstract service interfaces to keep
// transport concerns separate from dispatch logic.
type Handlers struct {
	alertSvc AlertService
	histSvc  HistoryService

	providerConfigured bool
}

// New constructs a Handlers instance bound to the given services. histSvc
// may be nil when the audit log is disabled; providerConfigured is surfaced
// by the status endpoint.
func New(alertSvc AlertService, histSvc HistoryService, providerConfigured bool) *Handlers {
	return &Handlers{
		alertSvc:           alertSvc,
		histSvc:            histSvc,
		providerConfigured: providerConfigured,
	}
}

// TestMessageRequest is the JSON payload for sending a test message.
type TestMessageRequest struct {
	// Phone is the destination number in E.164 or bare national form.
	Phone string `json:"phone" example:"+14155551234"`
	// Name optionally labels the recipient in the response details.
	Name string `json:"name" example:"Alice"`
}

// TestMessageResponse wraps the outcome of a test send.
type TestMessageResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Details *domain.DispatchResult `json:"details,omitempty"`
}

// TriggerAlert godoc
// @ID          triggerAlert
// @Summary     Dispatch an emergency alert
// @Description Validates the request, rejects near-identical duplicates, composes the alert message, and sends it to every contact sequentially. The response is successful even when individual sends fail; per-contact outcomes are reported in results.
// @Tags        Alerts
// @Accept      json
// @Produce     json
//
// @Param       body  body  domain.AlertRequest  true  "Alert payload"
//
// @Success     200  {object}  domain.AlertOutcome
// @Failure     400  {object}  handlers.ErrorResponse  "No contacts provided / Invalid location data"
// @Failure     429  {object}  handlers.ErrorResponse  "Duplicate alert detected"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /alert [post]
func (h *Handlers) TriggerAlert(c *gin.Context) {
	var req domain.AlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// The request decoder is tolerant; only malformed JSON lands here.
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	outcome, err := h.alertSvc.Trigger(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoContacts):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "No contacts provided")
		case errors.Is(err, services.ErrInvalidLocation):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Invalid location data")
		case errors.Is(err, services.ErrDuplicateAlert):
			fail(c, http.StatusTooManyRequests, ErrCodeDuplicateAlert,
				"Duplicate alert detected. Please wait before sending another alert.")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "Internal server error")
		}
		return
	}
	ok(c, http.StatusOK, outcome)
}

// TestMessage godoc
// @ID          testMessage
// @Summary     Send a test message
// @Description Sends the fixed configuration-check message to a single phone number. Unlike alert dispatch, a provider failure here is reported to the caller.
// @Tags        Alerts
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.TestMessageRequest  true  "Test message payload"
//
// @Success     200  {object}  handlers.TestMessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid phone number format"
// @Failure     500  {object}  handlers.ErrorResponse  "Failed to send test message"
// @Router      /test-message [post]
func (h *Handlers) TestMessage(c *gin.Context) {
	var req TestMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	res, err := h.alertSvc.SendTest(c.Request.Context(), strings.TrimSpace(req.Phone), req.Name)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPhone) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Invalid phone number format")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeSendFailed, "Failed to send test message")
		return
	}

	ok(c, http.StatusOK, TestMessageResponse{
		Success: true,
		Message: "Test message sent successfully",
		Details: res,
	})
}
