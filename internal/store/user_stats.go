/**
 * @description
 * User prediction stats repository.
 * Applies one verification outcome to a user's aggregate: participation count,
 * accuracy, streaks, score and rank title.
 *
 * @dependencies
 * - gorm.io/gorm
 * - backend/internal/models
 * - github.com/shopspring/decimal
 */

package store

import (
	"context"
	"errors"

	"github.com/goldpulse/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	scorePerCorrect = 10
	// Streak bonus rewards consecutive correct answers, capped so long streaks
	// don't run away with the leaderboard
	maxStreakBonus = 20
)

// Rank titles by score tier
var rankTiers = []struct {
	MinScore int
	Title    string
}{
	{2000, "预测之神"},
	{800, "预测大师"},
	{300, "预测达人"},
	{100, "预测学徒"},
	{0, "预测新手"},
}

func rankTitleForScore(score int) string {
	for _, tier := range rankTiers {
		if score >= tier.MinScore {
			return tier.Title
		}
	}
	return rankTiers[len(rankTiers)-1].Title
}

type UserStatsStore struct {
	DB *gorm.DB
}

func NewUserStatsStore(db *gorm.DB) *UserStatsStore {
	return &UserStatsStore{DB: db}
}

// ApplyVerification records one verified vote outcome for a user, exactly
// once per prediction. The stats_applied flag on the vote row is flipped in
// the same transaction as the aggregate write: if either side fails, both
// roll back and a later cycle can retry. A vote whose flag is already set
// returns ErrStatsAlreadyApplied and changes nothing.
// Runs with a row lock so concurrent verifications of different predictions
// can't lose updates for the same user.
func (s *UserStatsStore) ApplyVerification(ctx context.Context, predictionID, userID uuid.UUID, wasCorrect bool) (*models.UserPredictionStats, error) {
	var stats models.UserPredictionStats

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim := tx.Model(&models.Vote{}).
			Where("prediction_id = ? AND user_id = ? AND stats_applied = ?", predictionID, userID, false).
			Update("stats_applied", true)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return ErrStatsAlreadyApplied
		}

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&stats).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			stats = models.UserPredictionStats{UserID: userID, RankTitle: rankTitleForScore(0)}
			if err := tx.Create(&stats).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		ApplyOutcome(&stats, wasCorrect)

		return tx.Save(&stats).Error
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ApplyOutcome mutates one user's aggregate for a single verified vote:
// participation count, correctness, streaks, score and rank title.
func ApplyOutcome(stats *models.UserPredictionStats, wasCorrect bool) {
	stats.TotalParticipations++
	if wasCorrect {
		stats.CorrectCount++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.MaxStreak {
			stats.MaxStreak = stats.CurrentStreak
		}
		bonus := 2 * (stats.CurrentStreak - 1)
		if bonus > maxStreakBonus {
			bonus = maxStreakBonus
		}
		stats.PredictionScore += scorePerCorrect + bonus
	} else {
		stats.CurrentStreak = 0
	}
	stats.AccuracyRate = accuracyRate(stats.CorrectCount, stats.TotalParticipations)
	stats.RankTitle = rankTitleForScore(stats.PredictionScore)
}

// accuracyRate computes correct/total as a percentage rounded to 2 decimal
// places, 0 when the user has no participations.
func accuracyRate(correct, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(correct)).
		Div(decimal.NewFromInt(int64(total))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}
