package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goldpulse/backend/internal/marketdata"
	"github.com/goldpulse/backend/internal/models"
	"github.com/goldpulse/backend/internal/newswire"
	"github.com/goldpulse/backend/internal/store"
	"github.com/goldpulse/backend/internal/ws"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeGateway serves canned quotes per symbol
type fakeGateway struct {
	quotes map[string]*marketdata.Quote
	err    error
	calls  int
}

func (g *fakeGateway) GetQuote(ctx context.Context, symbol string) (*marketdata.Quote, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	quote, ok := g.quotes[symbol]
	if !ok {
		return nil, marketdata.ErrUnavailable
	}
	return quote, nil
}

// fakeBroadcaster records every event it sees
type fakeBroadcaster struct {
	mu        sync.Mutex
	bySymbol  map[string][]ws.Event
	broadcast []ws.Event
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{bySymbol: make(map[string][]ws.Event)}
}

func (b *fakeBroadcaster) BroadcastToSymbol(symbol string, event ws.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bySymbol[symbol] = append(b.bySymbol[symbol], event)
}

func (b *fakeBroadcaster) BroadcastAll(event ws.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.broadcast = append(b.broadcast, event)
}

// fakeNotifier records deliveries and can be told to fail
type fakeNotifier struct {
	fail bool
	sent []fakeNotification
}

type fakeNotification struct {
	UserID uuid.UUID
	Title  string
	Body   string
	Data   map[string]interface{}
}

func (n *fakeNotifier) SendToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]interface{}) error {
	if n.fail {
		return errors.New("push gateway down")
	}
	n.sent = append(n.sent, fakeNotification{UserID: userID, Title: title, Body: body, Data: data})
	return nil
}

// fakePredictionRepo keeps predictions in memory with the same status-guarded
// semantics as the real store
type fakePredictionRepo struct {
	predictions map[uuid.UUID]*models.Prediction
}

func newFakePredictionRepo(predictions ...*models.Prediction) *fakePredictionRepo {
	repo := &fakePredictionRepo{predictions: make(map[uuid.UUID]*models.Prediction)}
	for _, p := range predictions {
		repo.predictions[p.ID] = p
	}
	return repo
}

func (r *fakePredictionRepo) FindActiveDue(ctx context.Context, now time.Time) ([]models.Prediction, error) {
	var due []models.Prediction
	for _, p := range r.predictions {
		if p.Status == models.PredictionStatusActive && !p.VerifyTime.After(now) {
			due = append(due, *p)
		}
	}
	return due, nil
}

func (r *fakePredictionRepo) MarkVerified(ctx context.Context, id uuid.UUID, priceAtVerify decimal.Decimal, correctOption string) error {
	p, ok := r.predictions[id]
	if !ok || p.Status != models.PredictionStatusActive {
		return store.ErrAlreadyEnded
	}
	p.PriceAtVerify = &priceAtVerify
	p.CorrectOption = &correctOption
	p.Status = models.PredictionStatusEnded
	return nil
}

// fakeVoteRepo keeps votes in memory, mirroring the claim semantics
type fakeVoteRepo struct {
	votes []*models.Vote
}

func (r *fakeVoteRepo) UpdateCorrectness(ctx context.Context, predictionID uuid.UUID, correctOption string) (int64, error) {
	var updated int64
	for _, v := range r.votes {
		if v.PredictionID == predictionID {
			correct := v.SelectedOption == correctOption
			v.IsCorrect = &correct
			updated++
		}
	}
	return updated, nil
}

func (r *fakeVoteRepo) FindByPrediction(ctx context.Context, predictionID uuid.UUID) ([]models.Vote, error) {
	var votes []models.Vote
	for _, v := range r.votes {
		if v.PredictionID == predictionID {
			votes = append(votes, *v)
		}
	}
	return votes, nil
}

// fakeStatsRepo applies the real aggregate arithmetic to in-memory rows with
// the same claim semantics as the real store: a failed attempt consumes no
// claim, a counted vote reports ErrStatsAlreadyApplied.
type fakeStatsRepo struct {
	failures int
	applied  map[string]bool
	stats    map[uuid.UUID]*models.UserPredictionStats
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{
		applied: make(map[string]bool),
		stats:   make(map[uuid.UUID]*models.UserPredictionStats),
	}
}

func (r *fakeStatsRepo) ApplyVerification(ctx context.Context, predictionID, userID uuid.UUID, wasCorrect bool) (*models.UserPredictionStats, error) {
	key := predictionID.String() + "/" + userID.String()
	if r.applied[key] {
		return nil, store.ErrStatsAlreadyApplied
	}
	if r.failures > 0 {
		r.failures--
		return nil, errors.New("transient db error")
	}
	r.applied[key] = true

	s, ok := r.stats[userID]
	if !ok {
		s = &models.UserPredictionStats{UserID: userID}
		r.stats[userID] = s
	}
	store.ApplyOutcome(s, wasCorrect)
	return s, nil
}

// fakeQuoteCache records cached quotes and published payloads
type fakeQuoteCache struct {
	setErr    error
	cached    []*marketdata.Quote
	published [][]byte
}

func (c *fakeQuoteCache) SetQuote(ctx context.Context, quote *marketdata.Quote) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.cached = append(c.cached, quote)
	return nil
}

func (c *fakeQuoteCache) PublishPriceUpdate(ctx context.Context, payload []byte) error {
	c.published = append(c.published, payload)
	return nil
}

// fakeQuoteAppender records appended quotes
type fakeQuoteAppender struct {
	appendErr error
	appended  []*marketdata.Quote
}

func (a *fakeQuoteAppender) Append(ctx context.Context, quote *marketdata.Quote) error {
	if a.appendErr != nil {
		return a.appendErr
	}
	a.appended = append(a.appended, quote)
	return nil
}

// fakeNewsFeed serves canned articles per category
type fakeNewsFeed struct {
	byCategory map[string][]newswire.Article
	failing    map[string]bool
}

func (f *fakeNewsFeed) FetchByCategory(ctx context.Context, category string) ([]newswire.Article, error) {
	if f.failing[category] {
		return nil, errors.New("feed unavailable")
	}
	return f.byCategory[category], nil
}

// fakeNewsRepo stores articles in memory keyed by source_url
type fakeNewsRepo struct {
	existsErr error
	createErr error
	byURL     map[string]*models.News
}

func newFakeNewsRepo() *fakeNewsRepo {
	return &fakeNewsRepo{byURL: make(map[string]*models.News)}
}

func (r *fakeNewsRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	_, ok := r.byURL[url]
	return ok, nil
}

func (r *fakeNewsRepo) Create(ctx context.Context, article *models.News) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.byURL[article.SourceURL]; ok {
		return store.ErrDuplicateNews
	}
	r.byURL[article.SourceURL] = article
	return nil
}

// fakeInvalidator counts news cache invalidations
type fakeInvalidator struct {
	calls int
}

func (i *fakeInvalidator) InvalidateNews(ctx context.Context) error {
	i.calls++
	return nil
}
