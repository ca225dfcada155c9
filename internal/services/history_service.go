// Package services – HistoryService
//
// This file implements read access to the alert audit log with simple
// page/pageSize pagination. The service is nil-DB tolerant at the wiring
// layer: when history is disabled the route is simply not registered.
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/guardline/go-alert-backend/internal/domain"
)

// HistoryService lists recorded alerts, newest first.
type HistoryService struct {
	// DB is the GORM handle used for all history queries.
	DB *gorm.DB
	// Repo is the alert repository used by this service.
	Repo AlertRepo
}

// ListPage returns one page of recorded alerts plus the total row count.
// Invalid page/pageSize values fall back to 1 and 20; pageSize is capped
// at 100.
func (s *HistoryService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Alert, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountAlerts(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.Repo.ListAlertsPage(ctx, s.DB, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get returns one recorded alert by ID with its deliveries, or
// ErrAlertNotFound when no such row exists.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.Alert, error) {
	a, err := s.Repo.GetAlert(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("get alert %s: %w", id, err)
	}
	return a, nil
}
