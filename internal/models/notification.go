/**
 * @description
 * Notification database model.
 * Durable ledger for push notifications delivered to users (e.g. personal
 * prediction verification outcomes).
 *
 * @dependencies
 * - gorm.io/gorm
 * - github.com/google/uuid
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypePredictionVerified NotificationType = "PREDICTION_VERIFIED"
)

// Notification stores user notifications
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null" json:"user_id"`
	Type      NotificationType `gorm:"size:32;default:'PREDICTION_VERIFIED'" json:"type"`
	Title     string           `gorm:"size:255;not null" json:"title"`
	Body      string           `json:"body"`
	Data      string           `gorm:"type:jsonb" json:"data"` // JSON string for flexible data
	Read      bool             `gorm:"default:false" json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
