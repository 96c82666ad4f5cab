/**
 * @description
 * Prediction verification job.
 * Every cycle, finds active predictions whose deadline has passed and settles
 * each one: fetch the verification price, compute the price change, pick the
 * correct option through the restricted condition evaluator, commit the
 * one-shot status transition, update votes and per-user stats, then broadcast
 * and notify. Predictions are settled independently; the status-guarded write
 * guarantees at most one active -> ended transition per prediction.
 *
 * @dependencies
 * - backend/internal/store (sentinel errors)
 * - backend/internal/ws
 * - backend/internal/logger
 * - github.com/shopspring/decimal
 */

package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goldpulse/backend/internal/logger"
	"github.com/goldpulse/backend/internal/models"
	"github.com/goldpulse/backend/internal/store"
	"github.com/goldpulse/backend/internal/ws"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VerifyJob struct {
	interval time.Duration

	predictions PredictionRepo
	votes       VoteRepo
	stats       StatsRepo
	gateway     QuoteGateway
	hub         Broadcaster
	notifier    Notifier

	// now is swappable for tests
	now func() time.Time
}

func NewVerifyJob(interval time.Duration, predictions PredictionRepo, votes VoteRepo, stats StatsRepo, gateway QuoteGateway, hub Broadcaster, notifier Notifier) *VerifyJob {
	return &VerifyJob{
		interval:    interval,
		predictions: predictions,
		votes:       votes,
		stats:       stats,
		gateway:     gateway,
		hub:         hub,
		notifier:    notifier,
		now:         time.Now,
	}
}

func (j *VerifyJob) Name() string            { return "PredictionVerifyJob" }
func (j *VerifyJob) Interval() time.Duration { return j.interval }

func (j *VerifyJob) Execute(ctx context.Context) error {
	due, err := j.predictions.FindActiveDue(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to find predictions to verify: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	logger.Info("PredictionVerifyJob: verifying %d predictions", len(due))

	for i := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := j.verifyPrediction(ctx, &due[i]); err != nil {
			logger.Error("PredictionVerifyJob: failed to verify prediction %s: %v", due[i].ID, err)
		}
	}
	return nil
}

// verifyPrediction settles one prediction end to end
func (j *VerifyJob) verifyPrediction(ctx context.Context, prediction *models.Prediction) error {
	// Step 1: fetch the verification price. Unavailable means skip: the
	// prediction stays active and the next cycle retries.
	quote, err := j.gateway.GetQuote(ctx, prediction.SymbolCode)
	if err != nil {
		return fmt.Errorf("failed to fetch price for %s: %w", prediction.SymbolCode, err)
	}
	currentPrice := quote.Price

	// Step 2: price change against the anchor
	changePercent := PriceChangePercent(prediction.PriceAtCreate, currentPrice)
	logger.Info("PredictionVerifyJob: prediction %s anchor=%s current=%s change=%s%%",
		prediction.ID, prediction.PriceAtCreate, currentPrice, changePercent)

	// Step 3: determine the correct option
	correctOption, ok := j.determineCorrectOption(prediction, changePercent)
	if !ok {
		return nil
	}

	// Step 4: one-shot status transition. If another cycle already ended this
	// prediction, the winner of the guard announced the result; this attempt
	// only catches up on stats the earlier run could not commit.
	err = j.predictions.MarkVerified(ctx, prediction.ID, currentPrice, correctOption)
	if errors.Is(err, store.ErrAlreadyEnded) {
		logger.Info("PredictionVerifyJob: prediction %s already ended, applying pending stats only", prediction.ID)
		j.applyPendingStats(ctx, prediction)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to update prediction: %w", err)
	}

	// Steps 5-8 are each attempted regardless of the previous one's outcome.
	// The committed transition above is the durable truth; these catch up or
	// get retried through other channels (stats are claim-guarded, broadcast
	// and push are best effort).
	if _, err := j.votes.UpdateCorrectness(ctx, prediction.ID, correctOption); err != nil {
		logger.Error("PredictionVerifyJob: failed to update votes for %s: %v", prediction.ID, err)
	}

	voters := j.updateUserStats(ctx, prediction, correctOption)

	j.broadcastResult(prediction, correctOption, currentPrice)

	j.notifyVoters(ctx, prediction, voters)

	logger.Info("PredictionVerifyJob: verified prediction %s, correct option %s", prediction.ID, correctOption)
	return nil
}

// determineCorrectOption evaluates the auto-verify conditions in declared
// order and returns the first matching option key. Manual predictions and
// predictions with no matching condition are skipped.
func (j *VerifyJob) determineCorrectOption(prediction *models.Prediction, changePercent decimal.Decimal) (string, bool) {
	if prediction.VerifyRule == models.VerifyRuleManual {
		logger.Info("PredictionVerifyJob: prediction %s requires manual verification", prediction.ID)
		return "", false
	}

	for _, vc := range prediction.AutoVerifyConditions {
		matched, err := EvaluateCondition(vc.Condition, changePercent)
		if err != nil {
			logger.Warn("PredictionVerifyJob: prediction %s option %s has malformed condition: %v",
				prediction.ID, vc.Option, err)
			continue
		}
		if matched {
			return vc.Option, true
		}
	}

	logger.Warn("PredictionVerifyJob: prediction %s has no matching condition (change %s%%), left for manual follow-up",
		prediction.ID, changePercent)
	return "", false
}

// voterOutcome carries one voter's personal result to the notification step
type voterOutcome struct {
	vote      models.Vote
	isCorrect bool
}

// updateUserStats applies the outcome to each voter's aggregate exactly once.
// The store flips the claim flag on the vote row in the same transaction as
// the aggregate write, so a failed attempt leaves the vote claimable and a
// later run can pick it up.
func (j *VerifyJob) updateUserStats(ctx context.Context, prediction *models.Prediction, correctOption string) []voterOutcome {
	votes, err := j.votes.FindByPrediction(ctx, prediction.ID)
	if err != nil {
		logger.Error("PredictionVerifyJob: failed to load votes for %s: %v", prediction.ID, err)
		return nil
	}

	outcomes := make([]voterOutcome, 0, len(votes))
	for _, vote := range votes {
		isCorrect := vote.SelectedOption == correctOption
		outcomes = append(outcomes, voterOutcome{vote: vote, isCorrect: isCorrect})
		j.applyStats(ctx, prediction.ID, vote.UserID, isCorrect)
	}
	return outcomes
}

// applyPendingStats catches up on voters whose stats could not be committed
// when the prediction was first settled. Correctness comes from the stored
// is_correct column, not a recomputation: the verification price has moved on
// since the original settlement.
func (j *VerifyJob) applyPendingStats(ctx context.Context, prediction *models.Prediction) {
	votes, err := j.votes.FindByPrediction(ctx, prediction.ID)
	if err != nil {
		logger.Error("PredictionVerifyJob: failed to load votes for %s: %v", prediction.ID, err)
		return
	}

	for _, vote := range votes {
		if vote.IsCorrect == nil {
			logger.Warn("PredictionVerifyJob: vote by %s on %s is unresolved, cannot apply stats",
				vote.UserID, prediction.ID)
			continue
		}
		j.applyStats(ctx, prediction.ID, vote.UserID, *vote.IsCorrect)
	}
}

func (j *VerifyJob) applyStats(ctx context.Context, predictionID, userID uuid.UUID, isCorrect bool) {
	_, err := j.stats.ApplyVerification(ctx, predictionID, userID, isCorrect)
	if errors.Is(err, store.ErrStatsAlreadyApplied) {
		return
	}
	if err != nil {
		logger.Error("PredictionVerifyJob: failed to update stats for user %s: %v", userID, err)
	}
}

func (j *VerifyJob) broadcastResult(prediction *models.Prediction, correctOption string, priceAtVerify decimal.Decimal) {
	j.hub.BroadcastAll(ws.Event{
		Type: ws.EventTypePredictionVerified,
		Payload: map[string]interface{}{
			"prediction_id":   prediction.ID,
			"symbol_code":     prediction.SymbolCode,
			"correct_option":  correctOption,
			"price_at_verify": priceAtVerify,
		},
	})
}

func (j *VerifyJob) notifyVoters(ctx context.Context, prediction *models.Prediction, voters []voterOutcome) {
	for _, outcome := range voters {
		resultText := "错误"
		if outcome.isCorrect {
			resultText = "正确"
		}
		body := fmt.Sprintf("预测结果已揭晓：%s - 你的选择%s是%s的！",
			prediction.Question, outcome.vote.SelectedOption, resultText)

		err := j.notifier.SendToUser(ctx, outcome.vote.UserID, "预测验证完成", body, map[string]interface{}{
			"type":          ws.EventTypePredictionVerified,
			"prediction_id": prediction.ID.String(),
			"is_correct":    outcome.isCorrect,
		})
		if err != nil {
			logger.Error("PredictionVerifyJob: failed to notify user %s: %v", outcome.vote.UserID, err)
		}
	}
}
