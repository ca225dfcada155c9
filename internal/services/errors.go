// Package services implements the business logic of the alert relay:
// composing alert messages, deduplicating submissions, dispatching to each
// contact through the messaging provider, and recording the audit log.
// This file centralizes service-level error values so they can be returned
// consistently by service methods and checked by callers.
//
// Translation into user-facing messages and HTTP status codes happens at the
// handler layer.
package services

import "errors"

var (
	// ErrNoContacts is returned when an alert request carries a missing,
	// empty, or non-array contacts field.
	ErrNoContacts = errors.New("no contacts provided")

	// ErrInvalidLocation is returned when latitude or longitude is missing
	// or not numeric.
	ErrInvalidLocation = errors.New("invalid location data")

	// ErrDuplicateAlert is returned when an alert's fingerprint was already
	// recorded within the debounce window.
	ErrDuplicateAlert = errors.New("duplicate alert")

	// ErrInvalidPhone is returned by test-message sending when the target
	// number fails validation.
	ErrInvalidPhone = errors.New("invalid phone number format")

	// ErrAlertNotFound is returned by history lookups when no alert with
	// the requested ID exists.
	ErrAlertNotFound = errors.New("alert not found")
)
