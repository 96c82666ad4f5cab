/**
 * @description
 * Prediction repository.
 * Serves the verification job: due-prediction query and the status-guarded
 * verification write that makes the active -> ended transition happen once.
 *
 * @dependencies
 * - gorm.io/gorm
 * - backend/internal/models
 * - github.com/shopspring/decimal
 */

package store

import (
	"context"
	"time"

	"github.com/goldpulse/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PredictionStore struct {
	DB *gorm.DB
}

func NewPredictionStore(db *gorm.DB) *PredictionStore {
	return &PredictionStore{DB: db}
}

// FindActiveDue returns predictions whose deadline has passed and that are
// still active. Ended and cancelled rows never come back, which is what
// prevents duplicate verification across overlapping cycles.
func (s *PredictionStore) FindActiveDue(ctx context.Context, now time.Time) ([]models.Prediction, error) {
	var predictions []models.Prediction
	err := s.DB.WithContext(ctx).
		Where("status = ? AND verify_time <= ?", models.PredictionStatusActive, now).
		Order("verify_time ASC").
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

// MarkVerified writes price_at_verify, correct_option and status = ended in a
// single conditional update. The WHERE status = 'active' guard is the only
// concurrency control needed: if another cycle got there first, zero rows
// match and ErrAlreadyEnded is returned.
func (s *PredictionStore) MarkVerified(ctx context.Context, id uuid.UUID, priceAtVerify decimal.Decimal, correctOption string) error {
	result := s.DB.WithContext(ctx).
		Model(&models.Prediction{}).
		Where("id = ? AND status = ?", id, models.PredictionStatusActive).
		Updates(map[string]interface{}{
			"price_at_verify": priceAtVerify,
			"correct_option":  correctOption,
			"status":          models.PredictionStatusEnded,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyEnded
	}
	return nil
}
