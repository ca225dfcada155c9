// System probe handlers.
//
// Health is a liveness probe; Status additionally reports whether the
// messaging provider is configured and which optional features are active,
// so mobile clients can degrade gracefully when the backend runs with the
// local log sender.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the liveness probe body.
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusResponse reports operational state and feature availability.
type StatusResponse struct {
	Status             string          `json:"status" example:"operational"`
	ProviderConfigured bool            `json:"providerConfigured"`
	Features           map[string]bool `json:"features"`
}

// Health godoc
// @ID          health
// @Summary     Liveness probe
// @Tags        System
// @Produce     json
// @Success     200  {object}  handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	ok(c, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}

// Status godoc
// @ID          status
// @Summary     Operational status and feature flags
// @Tags        System
// @Produce     json
// @Success     200  {object}  handlers.StatusResponse
// @Router      /status [get]
func (h *Handlers) Status(c *gin.Context) {
	ok(c, http.StatusOK, StatusResponse{
		Status:             "operational",
		ProviderConfigured: h.providerConfigured,
		Features: map[string]bool{
			"alerts":       true,
			"testMessages": true,
			"history":      h.histSvc != nil,
		},
	})
}
