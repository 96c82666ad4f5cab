/**
 * @description
 * Price poll job.
 * Every cycle, fetches the latest quote for each covered symbol, writes it
 * through the cache, appends it to the durable quote store, and broadcasts a
 * price_update to the symbol's subscribers. Symbols are fully independent:
 * one symbol failing never aborts the rest, and the next cycle is the retry.
 *
 * @dependencies
 * - backend/internal/marketdata
 * - backend/internal/ws
 * - backend/internal/logger
 */

package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goldpulse/backend/internal/logger"
	"github.com/goldpulse/backend/internal/marketdata"
	"github.com/goldpulse/backend/internal/ws"
)

// StaticSymbols is the config-driven symbol source
type StaticSymbols []string

func (s StaticSymbols) Symbols(ctx context.Context) ([]string, error) {
	return s, nil
}

// FallbackSymbolSource prefers the primary source (typically the active
// symbols table) and falls back to the static list when the primary fails or
// comes back empty.
type FallbackSymbolSource struct {
	Primary  SymbolSource
	Fallback StaticSymbols
}

func (f FallbackSymbolSource) Symbols(ctx context.Context) ([]string, error) {
	if f.Primary != nil {
		symbols, err := f.Primary.Symbols(ctx)
		if err == nil && len(symbols) > 0 {
			return symbols, nil
		}
		if err != nil {
			logger.Error("PricePollJob: symbol source failed, using static list: %v", err)
		}
	}
	return f.Fallback, nil
}

type PricePollJob struct {
	interval time.Duration

	symbols SymbolSource
	gateway QuoteGateway
	cache   QuoteCache
	quotes  QuoteAppender
	hub     Broadcaster
}

func NewPricePollJob(interval time.Duration, symbols SymbolSource, gateway QuoteGateway, cache QuoteCache, quotes QuoteAppender, hub Broadcaster) *PricePollJob {
	return &PricePollJob{
		interval: interval,
		symbols:  symbols,
		gateway:  gateway,
		cache:    cache,
		quotes:   quotes,
		hub:      hub,
	}
}

func (j *PricePollJob) Name() string            { return "PricePollJob" }
func (j *PricePollJob) Interval() time.Duration { return j.interval }

func (j *PricePollJob) Execute(ctx context.Context) error {
	symbols, err := j.symbols.Symbols(ctx)
	if err != nil {
		return err
	}

	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		j.pollSymbol(ctx, symbol)
	}
	return nil
}

// pollSymbol handles one symbol in isolation; every failure is logged and
// swallowed so the remaining symbols still get their update
func (j *PricePollJob) pollSymbol(ctx context.Context, symbol string) {
	quote, err := j.gateway.GetQuote(ctx, symbol)
	if err != nil {
		logger.Error("PricePollJob: failed to fetch quote for %s: %v", symbol, err)
		return
	}

	if err := j.cache.SetQuote(ctx, quote); err != nil {
		logger.Error("PricePollJob: failed to cache quote for %s: %v", symbol, err)
	}

	if err := j.quotes.Append(ctx, quote); err != nil {
		logger.Error("PricePollJob: failed to store quote for %s: %v", symbol, err)
	}

	j.broadcast(ctx, symbol, quote)
}

func (j *PricePollJob) broadcast(ctx context.Context, symbol string, quote *marketdata.Quote) {
	event := ws.Event{
		Type:    ws.EventTypePriceUpdate,
		Payload: quote,
	}

	j.hub.BroadcastToSymbol(symbol, event)

	// API instances stream to their own clients via the shared Redis channel
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("PricePollJob: failed to marshal price update for %s: %v", symbol, err)
		return
	}
	if err := j.cache.PublishPriceUpdate(ctx, payload); err != nil {
		logger.Error("PricePollJob: failed to publish price update for %s: %v", symbol, err)
	}
}
