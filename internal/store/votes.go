/**
 * @description
 * Vote repository.
 * Bulk correctness update plus per-prediction lookup for stats and notifications.
 *
 * @dependencies
 * - gorm.io/gorm
 * - backend/internal/models
 */

package store

import (
	"context"

	"github.com/goldpulse/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VoteStore struct {
	DB *gorm.DB
}

func NewVoteStore(db *gorm.DB) *VoteStore {
	return &VoteStore{DB: db}
}

// UpdateCorrectness sets is_correct on every vote of a prediction in one
// statement. Re-running it produces the same rows, so a resumed cycle is safe.
func (s *VoteStore) UpdateCorrectness(ctx context.Context, predictionID uuid.UUID, correctOption string) (int64, error) {
	result := s.DB.WithContext(ctx).
		Model(&models.Vote{}).
		Where("prediction_id = ?", predictionID).
		Update("is_correct", gorm.Expr("selected_option = ?", correctOption))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// FindByPrediction returns all votes for a prediction
func (s *VoteStore) FindByPrediction(ctx context.Context, predictionID uuid.UUID) ([]models.Vote, error) {
	var votes []models.Vote
	err := s.DB.WithContext(ctx).
		Where("prediction_id = ?", predictionID).
		Order("voted_at ASC").
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}
