// Package handlers defines the HTTP-layer error codes used across all API
// endpoints.
//
// The constants below form a stable, machine-readable taxonomy that
// supplements the human-readable message in each ErrorResponse. Generic
// codes mirror common HTTP status semantics; domain-specific codes cover
// business outcomes that the status alone cannot convey (a debounced
// duplicate alert, a failed test send). Handlers pick the most specific
// matching code and pass it to fail() together with the status and message.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "duplicate_alert",
//	  "message": "Duplicate alert detected. Please wait before sending another alert."
//	}
package handlers

const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeRateLimited = "too_many_requests"
	ErrCodeInternal    = "internal_error"

	// Domain-specific:
	ErrCodeDuplicateAlert   = "duplicate_alert"
	ErrCodeSendFailed       = "send_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
