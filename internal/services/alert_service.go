// Package services – AlertService
//
// This file implements the dispatch coordinator. It validates alert
// requests, debounces duplicates through the fingerprint set, composes the
// message body, and then walks the contact list strictly sequentially:
// validate the number, invoke the messaging provider, convert any failure
// into a per-contact result, and pace between sends to stay inside the
// provider's rate limits. A failing contact never aborts the batch, and the
// batch-level outcome stays successful even when every send failed.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/guardline/go-alert-backend/internal/dedup"
	"github.com/guardline/go-alert-backend/internal/domain"
	"github.com/guardline/go-alert-backend/internal/messaging"
	"github.com/guardline/go-alert-backend/internal/phone"
)

// DefaultDispatchDelay is the pacing delay inserted between consecutive
// contact sends. It exists purely to stay under the provider's rate limits,
// not for correctness.
const DefaultDispatchDelay = 500 * time.Millisecond

// invalidPhoneMessage is the per-contact error reported for numbers that
// fail validation. The provider is never invoked for these.
const invalidPhoneMessage = "Invalid phone number format"

var (
	// alertsTotal counts alert requests by outcome: dispatched, duplicate,
	// or rejected (validation failure).
	alertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_total",
			Help: "Total number of alert requests by outcome.",
		},
		[]string{"outcome"},
	)

	// contactSendsTotal counts per-contact dispatch attempts by outcome:
	// sent, failed, or invalid (number rejected before the provider).
	contactSendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_sends_total",
			Help: "Total number of per-contact send attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(alertsTotal, contactSendsTotal)
}

// AlertRepo defines the persistence contract required for the audit log.
// Implementations store dispatched alerts and their per-contact outcomes.
type AlertRepo interface {
	// CreateAlert inserts an alert row together with its delivery rows.
	CreateAlert(ctx context.Context, db *gorm.DB, a *domain.Alert) error

	// CountAlerts returns the total number of recorded alerts.
	CountAlerts(ctx context.Context, db *gorm.DB) (int64, error)

	// ListAlertsPage returns a page of recorded alerts, newest first.
	ListAlertsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Alert, error)

	// GetAlert fetches one recorded alert by ID with its deliveries.
	GetAlert(ctx context.Context, db *gorm.DB, id string) (*domain.Alert, error)
}

// AlertService coordinates the full life of an alert request:
// validate → deduplicate → compose → dispatch → aggregate → record.
//
// All collaborators are injected; tests substitute a stub Sender and a mock
// clock. DB and Repo may both be nil, which disables the audit log.
type AlertService struct {
	// Sender delivers composed messages through the messaging provider.
	Sender messaging.Sender

	// Dedup is the shared fingerprint set debouncing duplicate submissions.
	Dedup *dedup.Deduplicator

	// Clock supplies time for pacing and outcome timestamps.
	Clock clock.Clock

	// Delay is the pacing delay between consecutive contact sends.
	Delay time.Duration

	// ContactName is substituted for contacts supplied without a name.
	ContactName string

	// DB and Repo back the optional audit log.
	DB   *gorm.DB
	Repo AlertRepo
}

// NewAlertService constructs an AlertService with default pacing, contact
// naming, and a wall clock. db/repo may be nil to disable history.
func NewAlertService(sender messaging.Sender, dd *dedup.Deduplicator, db *gorm.DB, repo AlertRepo) *AlertService {
	return &AlertService{
		Sender:      sender,
		Dedup:       dd,
		Clock:       clock.New(),
		Delay:       DefaultDispatchDelay,
		ContactName: DefaultContactName,
		DB:          db,
		Repo:        repo,
	}
}

// Trigger processes one alert request end to end.
//
// Validation failures (ErrNoContacts, ErrInvalidLocation) and debounce hits
// (ErrDuplicateAlert) short-circuit before any dispatch attempt. Once
// dispatch begins it always runs to completion for every contact; the
// returned outcome is batch-successful regardless of individual failures.
func (s *AlertService) Trigger(ctx context.Context, req domain.AlertRequest) (*domain.AlertOutcome, error) {
	if len(req.Contacts) == 0 {
		alertsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrNoContacts
	}
	if !req.Location.Valid() {
		alertsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidLocation
	}

	fp := dedup.Fingerprint(req.Timestamp.Raw, *req.Location.Lat, *req.Location.Lng)
	if s.Dedup.CheckAndRecord(fp) {
		alertsTotal.WithLabelValues("duplicate").Inc()
		return nil, ErrDuplicateAlert
	}

	message := ComposeAlert(req.UserName, req.Location, req.Timestamp)
	results := s.SendAll(ctx, req.Contacts, message)
	successful, failed := Summarize(results)
	alertsTotal.WithLabelValues("dispatched").Inc()

	log.Info().
		Int("contacts", len(results)).
		Int("successful", successful).
		Int("failed", failed).
		Msg("alert dispatched")

	outcome := &domain.AlertOutcome{
		Success:   true,
		Message:   fmt.Sprintf("Alert sent to %d of %d contacts", successful, len(results)),
		Results:   results,
		Timestamp: s.now(),
	}
	s.record(ctx, req, results, successful, failed)
	return outcome, nil
}

// SendOne dispatches message to a single contact and always returns a
// result, never an error: invalid numbers are rejected without touching the
// provider, and provider errors (or panics) are folded into the result.
func (s *AlertService) SendOne(ctx context.Context, c domain.Contact, message string) (res domain.DispatchResult) {
	res = domain.DispatchResult{
		Phone: c.Phone,
		Name:  s.contactName(c.Name),
	}
	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.SID, res.Status = "", ""
			res.Error = fmt.Sprintf("send failed: %v", r)
			contactSendsTotal.WithLabelValues("failed").Inc()
			log.Error().Interface("panic", r).Msg("messaging sender panicked")
		}
	}()

	if !phone.Valid(c.Phone) {
		res.Error = invalidPhoneMessage
		contactSendsTotal.WithLabelValues("invalid").Inc()
		return res
	}

	rcpt, err := s.Sender.Send(ctx, phone.Normalize(c.Phone), message)
	if err != nil {
		res.Error = err.Error()
		contactSendsTotal.WithLabelValues("failed").Inc()
		return res
	}

	res.Success = true
	res.SID = rcpt.SID
	res.Status = rcpt.Status
	contactSendsTotal.WithLabelValues("sent").Inc()
	return res
}

// SendAll dispatches message to every contact strictly sequentially, in
// input order, with the pacing delay after every attempt except the last.
// The returned slice always has one result per contact, in the same order.
func (s *AlertService) SendAll(ctx context.Context, contacts []domain.Contact, message string) []domain.DispatchResult {
	results := make([]domain.DispatchResult, 0, len(contacts))
	for i, c := range contacts {
		results = append(results, s.SendOne(ctx, c, message))
		if s.Delay > 0 && i < len(contacts)-1 {
			s.clock().Sleep(s.Delay)
		}
	}
	return results
}

// SendTest validates phoneNumber and sends the fixed test message to it.
// Unlike alert dispatch, a provider failure here is returned to the caller.
func (s *AlertService) SendTest(ctx context.Context, phoneNumber, name string) (*domain.DispatchResult, error) {
	if !phone.Valid(phoneNumber) {
		return nil, ErrInvalidPhone
	}
	rcpt, err := s.Sender.Send(ctx, phone.Normalize(phoneNumber), ComposeTest())
	if err != nil {
		return nil, fmt.Errorf("send test message: %w", err)
	}
	return &domain.DispatchResult{
		Phone:   phone.Normalize(phoneNumber),
		Name:    s.contactName(name),
		Success: true,
		SID:     rcpt.SID,
		Status:  rcpt.Status,
	}, nil
}

// Summarize partitions results by their success flag.
func Summarize(results []domain.DispatchResult) (successful, failed int) {
	for _, r := range results {
		if r.Success {
			successful++
		} else {
			failed++
		}
	}
	return successful, failed
}

// record writes the audit row for a dispatched alert. The audit log is
// best-effort: failures are logged and never surface to the caller.
func (s *AlertService) record(ctx context.Context, req domain.AlertRequest, results []domain.DispatchResult, successful, failed int) {
	if s.DB == nil || s.Repo == nil {
		return
	}
	a := &domain.Alert{
		UserName:   strings.TrimSpace(req.UserName),
		Lat:        *req.Location.Lat,
		Lng:        *req.Location.Lng,
		OccurredAt: req.Timestamp.Raw,
		Successful: successful,
		Failed:     failed,
	}
	for _, r := range results {
		a.Deliveries = append(a.Deliveries, domain.Delivery{
			Phone:   r.Phone,
			Name:    r.Name,
			Success: r.Success,
			SID:     r.SID,
			Status:  r.Status,
			Error:   r.Error,
		})
	}
	if err := s.Repo.CreateAlert(ctx, s.DB, a); err != nil {
		log.Warn().Err(err).Msg("failed to record alert history")
	}
}

// contactName returns name or the configured default when it is blank.
func (s *AlertService) contactName(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if s.ContactName != "" {
		return s.ContactName
	}
	return DefaultContactName
}

func (s *AlertService) clock() clock.Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return clock.New()
}

func (s *AlertService) now() time.Time {
	return s.clock().Now().UTC()
}
