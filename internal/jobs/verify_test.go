package jobs

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goldpulse/backend/internal/marketdata"
	"github.com/goldpulse/backend/internal/models"
	"github.com/google/uuid"
)

func quoteAt(symbol, price string) *marketdata.Quote {
	return &marketdata.Quote{
		SymbolCode: symbol,
		Price:      dec(price),
		Timestamp:  time.Now().UTC(),
	}
}

func duePrediction(symbol string, priceAtCreate string, conditions models.VerifyConditions) *models.Prediction {
	return &models.Prediction{
		ID:                   uuid.New(),
		UserID:               uuid.New(),
		SymbolCode:           symbol,
		Question:             "金价24小时走势？",
		Options:              models.PredictionOptions{{Key: "A", Text: "涨超1%"}, {Key: "B", Text: "不足1%"}},
		PriceAtCreate:        dec(priceAtCreate),
		VerifyTime:           time.Now().UTC().Add(-time.Minute),
		VerifyRule:           models.VerifyRuleAuto,
		AutoVerifyConditions: conditions,
		Status:               models.PredictionStatusActive,
	}
}

type verifyFixture struct {
	job         *VerifyJob
	predictions *fakePredictionRepo
	votes       *fakeVoteRepo
	stats       *fakeStatsRepo
	gateway     *fakeGateway
	hub         *fakeBroadcaster
	notifier    *fakeNotifier
}

func newVerifyFixture(gateway *fakeGateway, predictions ...*models.Prediction) *verifyFixture {
	f := &verifyFixture{
		predictions: newFakePredictionRepo(predictions...),
		votes:       &fakeVoteRepo{},
		stats:       newFakeStatsRepo(),
		gateway:     gateway,
		hub:         newFakeBroadcaster(),
		notifier:    &fakeNotifier{},
	}
	f.job = NewVerifyJob(time.Minute, f.predictions, f.votes, f.stats, f.gateway, f.hub, f.notifier)
	return f
}

func TestVerifyEndToEnd(t *testing.T) {
	prediction := duePrediction("XAUUSD", "2650.00", models.VerifyConditions{
		{Option: "A", Condition: ">=1.0"},
		{Option: "B", Condition: "<1.0"},
	})
	voterA := uuid.New()
	voterB := uuid.New()

	f := newVerifyFixture(
		&fakeGateway{quotes: map[string]*marketdata.Quote{"XAUUSD": quoteAt("XAUUSD", "2680.00")}},
		prediction,
	)
	f.votes.votes = []*models.Vote{
		{ID: uuid.New(), PredictionID: prediction.ID, UserID: voterA, SelectedOption: "A", PriceAtVote: dec("2650.00")},
		{ID: uuid.New(), PredictionID: prediction.ID, UserID: voterB, SelectedOption: "B", PriceAtVote: dec("2651.00")},
	}

	if err := f.job.Execute(context.Background()); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	// Prediction ended with option A at the verify price
	got := f.predictions.predictions[prediction.ID]
	if got.Status != models.PredictionStatusEnded {
		t.Fatalf("prediction status = %s, want ended", got.Status)
	}
	if got.CorrectOption == nil || *got.CorrectOption != "A" {
		t.Fatalf("correct option = %v, want A", got.CorrectOption)
	}
	if got.PriceAtVerify == nil || !got.PriceAtVerify.Equal(dec("2680.00")) {
		t.Fatalf("price at verify = %v, want 2680.00", got.PriceAtVerify)
	}

	// Votes marked, voter A correct, voter B not
	for _, v := range f.votes.votes {
		if v.IsCorrect == nil {
			t.Fatalf("vote %s left unresolved", v.ID)
		}
		wantCorrect := v.UserID == voterA
		if *v.IsCorrect != wantCorrect {
			t.Errorf("vote by %s: is_correct = %v, want %v", v.UserID, *v.IsCorrect, wantCorrect)
		}
	}

	// Stats: A streak 1, B streak reset
	statsA := f.stats.stats[voterA]
	if statsA.TotalParticipations != 1 || statsA.CorrectCount != 1 || statsA.CurrentStreak != 1 {
		t.Errorf("voter A stats = %+v, want 1 participation, 1 correct, streak 1", statsA)
	}
	statsB := f.stats.stats[voterB]
	if statsB.TotalParticipations != 1 || statsB.CorrectCount != 0 || statsB.CurrentStreak != 0 {
		t.Errorf("voter B stats = %+v, want 1 participation, 0 correct, streak 0", statsB)
	}

	// Broadcast to everyone plus a personal push per voter
	if len(f.hub.broadcast) != 1 {
		t.Fatalf("expected 1 broadcast event, got %d", len(f.hub.broadcast))
	}
	if f.hub.broadcast[0].Type != "prediction_verified" {
		t.Errorf("broadcast type = %s, want prediction_verified", f.hub.broadcast[0].Type)
	}
	if len(f.notifier.sent) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(f.notifier.sent))
	}
	for _, n := range f.notifier.sent {
		want := "错误"
		if n.UserID == voterA {
			want = "正确"
		}
		if !strings.Contains(n.Body, want) {
			t.Errorf("notification for %s missing %q: %s", n.UserID, want, n.Body)
		}
	}
}

func TestVerifySecondInvocationIsNoOp(t *testing.T) {
	prediction := duePrediction("XAUUSD", "2650.00", models.VerifyConditions{
		{Option: "A", Condition: ">=1.0"},
		{Option: "B", Condition: "<1.0"},
	})
	voter := uuid.New()

	f := newVerifyFixture(
		&fakeGateway{quotes: map[string]*marketdata.Quote{"XAUUSD": quoteAt("XAUUSD", "2680.00")}},
		prediction,
	)
	f.votes.votes = []*models.Vote{
		{ID: uuid.New(), PredictionID: prediction.ID, UserID: voter, SelectedOption: "A", PriceAtVote: dec("2650.00")},
	}

	ctx := context.Background()
	if err := f.job.Execute(ctx); err != nil {
		t.Fatalf("first Execute returned error: %v", err)
	}

	// A stale overlapping cycle retries the same prediction object
	stale := *prediction
	stale.Status = models.PredictionStatusActive
	if err := f.job.verifyPrediction(ctx, &stale); err != nil {
		t.Fatalf("second verification returned error: %v", err)
	}

	stats := f.stats.stats[voter]
	if stats.TotalParticipations != 1 {
		t.Fatalf("stats applied %d times, want exactly once", stats.TotalParticipations)
	}
	if len(f.hub.broadcast) != 1 {
		t.Fatalf("broadcast %d times, want exactly once", len(f.hub.broadcast))
	}
	if len(f.notifier.sent) != 1 {
		t.Fatalf("notified %d times, want exactly once", len(f.notifier.sent))
	}
}

func TestVerifyStatsResumeAfterTransientFailure(t *testing.T) {
	prediction := duePrediction("XAUUSD", "2650.00", models.VerifyConditions{
		{Option: "A", Condition: ">=1.0"},
		{Option: "B", Condition: "<1.0"},
	})
	voter := uuid.New()

	f := newVerifyFixture(
		&fakeGateway{quotes: map[string]*marketdata.Quote{"XAUUSD": quoteAt("XAUUSD", "2680.00")}},
		prediction,
	)
	f.votes.votes = []*models.Vote{
		{ID: uuid.New(), PredictionID: prediction.ID, UserID: voter, SelectedOption: "A", PriceAtVote: dec("2650.00")},
	}
	f.stats.failures = 1

	ctx := context.Background()
	if err := f.job.Execute(ctx); err != nil {
		t.Fatalf("first Execute returned error: %v", err)
	}

	// The prediction ended but the aggregate write failed; the vote must
	// still be claimable
	if got := f.predictions.predictions[prediction.ID]; got.Status != models.PredictionStatusEnded {
		t.Fatalf("prediction status = %s, want ended", got.Status)
	}
	if _, ok := f.stats.stats[voter]; ok {
		t.Fatal("stats landed despite the failed write")
	}

	// A later cycle retries the same prediction and picks the vote up
	stale := *prediction
	stale.Status = models.PredictionStatusActive
	if err := f.job.verifyPrediction(ctx, &stale); err != nil {
		t.Fatalf("retry returned error: %v", err)
	}

	stats := f.stats.stats[voter]
	if stats == nil || stats.TotalParticipations != 1 || stats.CorrectCount != 1 {
		t.Fatalf("voter stats after retry = %+v, want exactly one correct participation", stats)
	}

	// A third pass changes nothing
	if err := f.job.verifyPrediction(ctx, &stale); err != nil {
		t.Fatalf("second retry returned error: %v", err)
	}
	if f.stats.stats[voter].TotalParticipations != 1 {
		t.Fatal("stats applied more than once across retries")
	}

	// The result was announced by the run that won the status guard, not the
	// retries
	if len(f.hub.broadcast) != 1 {
		t.Fatalf("broadcast %d times, want exactly once", len(f.hub.broadcast))
	}
	if len(f.notifier.sent) != 1 {
		t.Fatalf("notified %d times, want exactly once", len(f.notifier.sent))
	}
}

func TestVerifySkipsWhenPriceUnavailable(t *testing.T) {
	prediction := duePrediction("XAUUSD", "2650.00", models.VerifyConditions{
		{Option: "A", Condition: ">=1.0"},
	})

	f := newVerifyFixture(&fakeGateway{err: marketdata.ErrUnavailable}, prediction)

	if err := f.job.Execute(context.Background()); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if got := f.predictions.predictions[prediction.ID]; got.Status != models.PredictionStatusActive {
		t.Fatalf("prediction status = %s, want still active", got.Status)
	}
	if len(f.hub.broadcast) != 0 || len(f.notifier.sent) != 0 {
		t.Fatal("side effects emitted for an unverified prediction")
	}
}

func TestVerifySkipsManualRule(t *testing.T) {
	prediction := duePrediction("XAUUSD", "2650.00", nil)
	prediction.VerifyRule = models.VerifyRuleManual

	f := newVerifyFixture(
		&fakeGateway{quotes: map[string]*marketdata.Quote{"XAUUSD": quoteAt("XAUUSD", "2680.00")}},
		prediction,
	)

	if err := f.job.Execute(context.Background()); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if got := f.predictions.predictions[prediction.ID]; got.Status != models.PredictionStatusActive {
		t.Fatalf("manual prediction status = %s, want still active", got.Status)
	}
}

func TestVerifySkipsWhenNoConditionMatches(t *testing.T) {
	prediction := duePrediction("XAUUSD", "2650.00", models.VerifyConditions{
		{Option: "A", Condition: ">=5.0"},
		{Option: "B", Condition: "<=-5.0"},
	})

	f := newVerifyFixture(
		&fakeGateway{quotes: map[string]*marketdata.Quote{"XAUUSD": quoteAt("XAUUSD", "2680.00")}},
		prediction,
	)

	if err := f.job.Execute(context.Background()); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if got := f.predictions.predictions[prediction.ID]; got.Status != models.PredictionStatusActive {
		t.Fatalf("ambiguous prediction status = %s, want still active", got.Status)
	}
}

func TestVerifyMalformedConditionFallsThrough(t *testing.T) {
	prediction := duePrediction("XAUUSD", "2650.00", models.VerifyConditions{
		{Option: "A", Condition: "import os; os.system('true')"},
		{Option: "B", Condition: "<1.0"},
	})

	f := newVerifyFixture(
		&fakeGateway{quotes: map[string]*marketdata.Quote{"XAUUSD": quoteAt("XAUUSD", "2655.00")}},
		prediction,
	)

	if err := f.job.Execute(context.Background()); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	got := f.predictions.predictions[prediction.ID]
	if got.CorrectOption == nil || *got.CorrectOption != "B" {
		t.Fatalf("correct option = %v, want B via the well-formed condition", got.CorrectOption)
	}
}

func TestVerifyNotificationFailureDoesNotRollBack(t *testing.T) {
	prediction := duePrediction("XAUUSD", "2650.00", models.VerifyConditions{
		{Option: "A", Condition: ">=1.0"},
		{Option: "B", Condition: "<1.0"},
	})
	voter := uuid.New()

	f := newVerifyFixture(
		&fakeGateway{quotes: map[string]*marketdata.Quote{"XAUUSD": quoteAt("XAUUSD", "2680.00")}},
		prediction,
	)
	f.notifier.fail = true
	f.votes.votes = []*models.Vote{
		{ID: uuid.New(), PredictionID: prediction.ID, UserID: voter, SelectedOption: "A", PriceAtVote: dec("2650.00")},
	}

	if err := f.job.Execute(context.Background()); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if got := f.predictions.predictions[prediction.ID]; got.Status != models.PredictionStatusEnded {
		t.Fatalf("prediction status = %s, want ended despite push failure", got.Status)
	}
	if f.stats.stats[voter].TotalParticipations != 1 {
		t.Fatal("stats not applied despite push failure")
	}
}

func TestVerifyStreakProgression(t *testing.T) {
	voter := uuid.New()
	gateway := &fakeGateway{quotes: map[string]*marketdata.Quote{"XAUUSD": quoteAt("XAUUSD", "2680.00")}}

	conditions := models.VerifyConditions{
		{Option: "A", Condition: ">=1.0"},
		{Option: "B", Condition: "<1.0"},
	}

	first := duePrediction("XAUUSD", "2650.00", conditions)   // +1.13% -> A
	second := duePrediction("XAUUSD", "2655.00", conditions)  // +0.94% -> B
	f := newVerifyFixture(gateway, first)
	f.votes.votes = []*models.Vote{
		{ID: uuid.New(), PredictionID: first.ID, UserID: voter, SelectedOption: "A", PriceAtVote: dec("2650.00")},
		{ID: uuid.New(), PredictionID: second.ID, UserID: voter, SelectedOption: "A", PriceAtVote: dec("2655.00")},
	}

	ctx := context.Background()
	if err := f.job.Execute(ctx); err != nil {
		t.Fatalf("first Execute returned error: %v", err)
	}
	if got := f.stats.stats[voter]; got.CurrentStreak != 1 || got.MaxStreak != 1 {
		t.Fatalf("after correct vote: streak %d max %d, want 1/1", got.CurrentStreak, got.MaxStreak)
	}

	// Second prediction comes due: the voter picked A but B is correct
	f.predictions.predictions[second.ID] = second
	if err := f.job.Execute(ctx); err != nil {
		t.Fatalf("second Execute returned error: %v", err)
	}

	got := f.stats.stats[voter]
	if got.CurrentStreak != 0 {
		t.Errorf("streak = %d after incorrect vote, want 0", got.CurrentStreak)
	}
	if got.MaxStreak != 1 {
		t.Errorf("max streak = %d, want 1 preserved", got.MaxStreak)
	}
	if got.TotalParticipations != 2 || got.CorrectCount != 1 {
		t.Errorf("stats = %+v, want 2 participations, 1 correct", got)
	}
}
