/**
 * @description
 * Prediction database model.
 * Maps to the 'predictions' table: ABCD prediction voting anchored to the market
 * price recorded at creation time. Verification fills price_at_verify and
 * correct_option exactly once (active -> ended).
 *
 * @dependencies
 * - gorm.io/gorm
 * - github.com/google/uuid
 * - github.com/shopspring/decimal
 */

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Prediction status values
const (
	PredictionStatusActive    = "active"
	PredictionStatusEnded     = "ended"
	PredictionStatusCancelled = "cancelled"
)

// Verification rules
const (
	VerifyRuleAuto   = "auto"
	VerifyRuleManual = "manual"
)

// PredictionOption is one selectable answer, key "A".."D"
type PredictionOption struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// PredictionOptions is the ordered option list stored as JSONB
type PredictionOptions []PredictionOption

func (o PredictionOptions) Value() (driver.Value, error) {
	return json.Marshal(o)
}

func (o *PredictionOptions) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, o)
	case string:
		return json.Unmarshal([]byte(v), o)
	case nil:
		*o = nil
		return nil
	default:
		return errors.New("type assertion failed for PredictionOptions")
	}
}

// VerifyCondition binds an option key to a price-change condition, e.g.
// {"option": "A", "condition": "price_change_percent >= 1.0"}.
type VerifyCondition struct {
	Option    string `json:"option"`
	Condition string `json:"condition"`
}

// VerifyConditions is the ordered condition list stored as JSONB. Order matters:
// the first condition that evaluates true decides the correct option.
type VerifyConditions []VerifyCondition

func (c VerifyConditions) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *VerifyConditions) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = nil
		return nil
	default:
		return errors.New("type assertion failed for VerifyConditions")
	}
}

// Prediction represents one price prediction with a fixed verification deadline
type Prediction struct {
	ID                   uuid.UUID         `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID               uuid.UUID         `gorm:"type:uuid;not null;index:idx_predictions_user" json:"user_id"`
	SymbolCode           string            `gorm:"size:20;not null;index:idx_predictions_symbol" json:"symbol_code"`
	Question             string            `gorm:"type:text;not null" json:"question"`
	Options              PredictionOptions `gorm:"type:jsonb;not null" json:"options"`
	PriceAtCreate        decimal.Decimal   `gorm:"type:decimal(20,8);not null" json:"price_at_create"` // price anchor
	PriceAtVerify        *decimal.Decimal  `gorm:"type:decimal(20,8)" json:"price_at_verify"`
	VerifyTime           time.Time         `gorm:"not null;index:idx_predictions_status" json:"verify_time"`
	CorrectOption        *string           `gorm:"size:1" json:"correct_option"` // A, B, C, or D
	VerifyRule           string            `gorm:"size:20;default:'auto';not null" json:"verify_rule"`
	AutoVerifyConditions VerifyConditions  `gorm:"type:jsonb" json:"auto_verify_conditions"`
	Status               string            `gorm:"size:20;default:'active';not null;index:idx_predictions_status" json:"status"`
	ParticipantsCount    int               `gorm:"default:0;not null" json:"participants_count"`
	CommentsCount        int               `gorm:"default:0;not null" json:"comments_count"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Prediction) TableName() string {
	return "predictions"
}

func (p *Prediction) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
