/**
 * @description
 * Collaborator contracts consumed by the background jobs.
 * The durable store, cache, market data gateway, news feed, broadcaster and
 * notifier are implemented elsewhere; jobs only see these interfaces, which
 * keeps every job testable with in-memory fakes.
 */

package jobs

import (
	"context"
	"time"

	"github.com/goldpulse/backend/internal/marketdata"
	"github.com/goldpulse/backend/internal/models"
	"github.com/goldpulse/backend/internal/newswire"
	"github.com/goldpulse/backend/internal/ws"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteGateway fetches prices from the external market data source
type QuoteGateway interface {
	GetQuote(ctx context.Context, symbol string) (*marketdata.Quote, error)
}

// QuoteCache is the short-TTL cache fronting the durable quote store
type QuoteCache interface {
	SetQuote(ctx context.Context, quote *marketdata.Quote) error
	PublishPriceUpdate(ctx context.Context, payload []byte) error
}

// QuoteAppender appends snapshots to the durable quote store
type QuoteAppender interface {
	Append(ctx context.Context, quote *marketdata.Quote) error
}

// SymbolSource yields the symbols the price poll job should cover
type SymbolSource interface {
	Symbols(ctx context.Context) ([]string, error)
}

// Broadcaster fans events out to connected clients
type Broadcaster interface {
	BroadcastToSymbol(symbol string, event ws.Event)
	BroadcastAll(event ws.Event)
}

// NewsFeed fetches candidate articles from the external news source
type NewsFeed interface {
	FetchByCategory(ctx context.Context, category string) ([]newswire.Article, error)
}

// NewsRepo persists articles and answers the dedup check
type NewsRepo interface {
	ExistsByURL(ctx context.Context, url string) (bool, error)
	Create(ctx context.Context, article *models.News) error
}

// NewsCacheInvalidator clears the news cache namespaces after new articles land
type NewsCacheInvalidator interface {
	InvalidateNews(ctx context.Context) error
}

// PredictionRepo serves the verification job's queries and its one-shot
// status-guarded write
type PredictionRepo interface {
	FindActiveDue(ctx context.Context, now time.Time) ([]models.Prediction, error)
	MarkVerified(ctx context.Context, id uuid.UUID, priceAtVerify decimal.Decimal, correctOption string) error
}

// VoteRepo updates and reads votes for a prediction
type VoteRepo interface {
	UpdateCorrectness(ctx context.Context, predictionID uuid.UUID, correctOption string) (int64, error)
	FindByPrediction(ctx context.Context, predictionID uuid.UUID) ([]models.Vote, error)
}

// StatsRepo applies one verification outcome to a user's aggregate, exactly
// once per prediction+user. Re-applying a counted vote returns
// store.ErrStatsAlreadyApplied; a failed attempt leaves the vote claimable.
type StatsRepo interface {
	ApplyVerification(ctx context.Context, predictionID, userID uuid.UUID, wasCorrect bool) (*models.UserPredictionStats, error)
}

// Notifier delivers a personal push notification
type Notifier interface {
	SendToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]interface{}) error
}
