/**
 * @description
 * Vote database model.
 * Maps to the 'votes' table. is_correct stays NULL until the owning prediction
 * is verified, then is set exactly once.
 *
 * @dependencies
 * - gorm.io/gorm
 * - github.com/google/uuid
 * - github.com/shopspring/decimal
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Vote represents one user's answer to a prediction
type Vote struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	PredictionID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_votes_prediction" json:"prediction_id"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_votes_user" json:"user_id"`
	SelectedOption string          `gorm:"size:1;not null" json:"selected_option"`
	PriceAtVote    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price_at_vote"` // price anchor
	IsCorrect      *bool           `json:"is_correct"`
	// StatsApplied guards the per-user stats update so a crashed verification
	// cycle can resume without double counting
	StatsApplied bool      `gorm:"default:false;not null" json:"stats_applied"`
	VotedAt      time.Time `json:"voted_at"`
}

func (Vote) TableName() string {
	return "votes"
}

func (v *Vote) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}
