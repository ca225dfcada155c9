// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all
// endpoints: the structured error envelope and helpers that keep success
// and failure responses in one uniform shape.
//
// Conventions:
//   - All error responses return an ErrorResponse with a stable `code`.
//   - `fail()` centralizes error formatting and ensures 5xx responses are
//     logged with request context.
//   - `ok()` writes success responses in a consistent shape.
//
// Example error response:
//
//	HTTP/1.1 429 Too Many Requests
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "duplicate_alert",
//	  "message": "Duplicate alert detected. Please wait before sending another alert."
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guardline/go-alert-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
//
// RequestID is the correlation ID echoed from X-Request-ID, used to match
// server logs with client-side errors. Code is a stable machine-readable
// string (see errors.go). Message is safe to display to users.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"duplicate_alert"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"Duplicate alert detected. Please wait before sending another alert."`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) call Fail to return consistent
// error envelopes without depending on unexported helpers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response with the given status code.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
