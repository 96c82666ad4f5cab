/**
 * @description
 * UserPredictionStats database model.
 * Per-user aggregate mutated only by the verification job, once per vote per
 * verification event. accuracy_rate = correct_count / total_participations.
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
)

// UserPredictionStats tracks a user's prediction performance
type UserPredictionStats struct {
	UserID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"user_id"`
	TotalPredictions    int             `gorm:"default:0;not null" json:"total_predictions"`    // predictions created
	TotalParticipations int             `gorm:"default:0;not null" json:"total_participations"` // predictions voted on
	CorrectCount        int             `gorm:"default:0;not null" json:"correct_count"`
	AccuracyRate        decimal.Decimal `gorm:"type:decimal(5,2);default:0;not null" json:"accuracy_rate"` // percentage
	CurrentStreak       int             `gorm:"default:0;not null" json:"current_streak"`
	MaxStreak           int             `gorm:"default:0;not null" json:"max_streak"`
	PredictionScore     int             `gorm:"default:0;not null" json:"prediction_score"` // gamification points
	RankTitle           string          `gorm:"size:50;default:'预测新手';not null" json:"rank_title"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserPredictionStats) TableName() string {
	return "user_prediction_stats"
}
