// Persistence models for the alert audit log. These types are mapped with
// GORM and record what was dispatched, to whom, and with what per-contact
// outcome. The audit log is write-behind: it never participates in
// deduplication and a failed write never fails an alert request.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Alert is one dispatched (non-duplicate, validated) alert request.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserName: name the alert was raised for (as supplied, may be empty).
//   - Lat / Lng: coordinates as received.
//   - OccurredAt: the raw timestamp token from the request, kept verbatim.
//   - Successful / Failed: aggregate per-contact counts.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit).
type Alert struct {
	ID         string         `json:"id"          gorm:"type:char(36);primaryKey"`
	UserName   string         `json:"user_name"   gorm:"type:varchar(128)"`
	Lat        float64        `json:"lat"         gorm:"not null"`
	Lng        float64        `json:"lng"         gorm:"not null"`
	OccurredAt string         `json:"occurred_at" gorm:"type:varchar(64)"`
	Successful int            `json:"successful"  gorm:"not null"`
	Failed     int            `json:"failed"      gorm:"not null"`
	CreatedAt  time.Time      `json:"created_at"  gorm:"index"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-"           gorm:"index"`

	// Deliveries are the per-contact outcomes, cascade-deleted with the alert.
	Deliveries []Delivery `json:"deliveries" gorm:"foreignKey:AlertID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Alert.
func (Alert) TableName() string { return "alerts" }

// Delivery is one per-contact dispatch outcome belonging to an Alert.
type Delivery struct {
	ID        string         `json:"id"       gorm:"type:char(36);primaryKey"`
	AlertID   string         `json:"alert_id" gorm:"type:char(36);not null;index:idx_alert_deliveries"`
	Phone     string         `json:"phone"    gorm:"type:varchar(32);not null"`
	Name      string         `json:"name"     gorm:"type:varchar(128)"`
	Success   bool           `json:"success"  gorm:"not null"`
	SID       string         `json:"sid,omitempty"    gorm:"type:varchar(64)"`
	Status    string         `json:"status,omitempty" gorm:"type:varchar(32)"`
	Error     string         `json:"error,omitempty"  gorm:"type:varchar(255)"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Delivery.
func (Delivery) TableName() string { return "deliveries" }
