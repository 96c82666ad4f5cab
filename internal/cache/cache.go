/**
 * @description
 * Redis-backed quote cache.
 * Short-TTL disposable projection of quotes in front of the durable store, plus
 * prefix invalidation for the news namespaces and price update pub/sub.
 *
 * @dependencies
 * - github.com/redis/go-redis/v9
 */

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goldpulse/backend/internal/marketdata"
	"github.com/redis/go-redis/v9"
)

const (
	// QuoteTTL keeps cached quotes barely fresher than the 5s poll interval
	QuoteTTL = 5 * time.Second

	quoteKeyPrefix = "quote:"

	PriceUpdateChannel = "prices:updates"

	// News cache namespaces invalidated after a successful ingest
	NewsListPrefix     = "news:list:"
	NewsCategoryPrefix = "news:category:"
	NewsDetailPrefix   = "news:detail:"
)

// ErrCacheMiss is returned when a key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

type Cache struct {
	redis *redis.Client
}

func New(redisClient *redis.Client) *Cache {
	return &Cache{redis: redisClient}
}

func quoteKey(symbol string) string {
	return quoteKeyPrefix + symbol
}

// SetQuote stores a quote as JSON under quote:<SYMBOL> with a 5s TTL
func (c *Cache) SetQuote(ctx context.Context, quote *marketdata.Quote) error {
	payload, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, quoteKey(quote.SymbolCode), payload, QuoteTTL).Err()
}

// GetQuote reads a cached quote. Returns ErrCacheMiss when absent or expired.
func (c *Cache) GetQuote(ctx context.Context, symbol string) (*marketdata.Quote, error) {
	payload, err := c.redis.Get(ctx, quoteKey(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var quote marketdata.Quote
	if err := json.Unmarshal(payload, &quote); err != nil {
		return nil, fmt.Errorf("corrupt cache entry for %s: %w", symbol, err)
	}
	return &quote, nil
}

// PublishPriceUpdate pushes a serialized price event onto the shared channel
// consumed by API instances streaming to their own clients.
func (c *Cache) PublishPriceUpdate(ctx context.Context, payload []byte) error {
	return c.redis.Publish(ctx, PriceUpdateChannel, payload).Err()
}

// InvalidatePrefix deletes every key under the given prefix using SCAN, so a
// large namespace never blocks Redis the way KEYS would.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := c.redis.Scan(ctx, 0, prefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := c.redis.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return c.redis.Del(ctx, keys...).Err()
	}
	return nil
}

// InvalidateNews clears all news namespaces; called after new articles land
func (c *Cache) InvalidateNews(ctx context.Context) error {
	for _, prefix := range []string{NewsListPrefix, NewsCategoryPrefix, NewsDetailPrefix} {
		if err := c.InvalidatePrefix(ctx, prefix); err != nil {
			return err
		}
	}
	return nil
}
