// Package repo implements the data persistence layer for the alert audit
// log, backed by GORM. This file provides repository functions for Alert and
// Delivery rows.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/guardline/go-alert-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist. It aliases
// gorm.ErrRecordNotFound for convenience across services and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateAlert inserts an Alert row together with its Delivery rows as one
// association insert. Missing IDs and timestamps are filled in here so
// callers only describe the dispatch outcome.
func CreateAlert(ctx context.Context, db *gorm.DB, a *domain.Alert) error {
	now := time.Now().UTC()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = now
	for i := range a.Deliveries {
		if a.Deliveries[i].ID == "" {
			a.Deliveries[i].ID = uuid.NewString()
		}
		a.Deliveries[i].AlertID = a.ID
		a.Deliveries[i].CreatedAt = now
	}
	return db.WithContext(ctx).Create(a).Error
}

// CountAlerts returns the total number of recorded alerts.
func CountAlerts(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Alert{}).Count(&n).Error
	return n, err
}

// ListAlertsPage returns a page of alerts ordered newest first, with their
// delivery rows preloaded.
func ListAlertsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Alert, error) {
	var alerts []domain.Alert
	err := db.WithContext(ctx).
		Preload("Deliveries").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&alerts).Error
	return alerts, err
}

// GetAlert fetches a single alert by ID with deliveries preloaded, or
// ErrNotFound.
func GetAlert(ctx context.Context, db *gorm.DB, id string) (*domain.Alert, error) {
	var a domain.Alert
	err := db.WithContext(ctx).
		Preload("Deliveries").
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}
