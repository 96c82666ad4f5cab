/**
 * @description
 * HTTP Client for the external market data API (Twelve Data compatible).
 * Fetches quotes and time series for symbols. Outbound calls pass through a
 * bounded concurrency gate so jobs respect upstream rate limits.
 *
 * @dependencies
 * - net/http
 * - encoding/json
 * - backend/internal/config
 * - github.com/shopspring/decimal
 */

package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goldpulse/backend/internal/config"
	"github.com/goldpulse/backend/internal/logger"
	"github.com/shopspring/decimal"
)

const (
	DefaultTimeout = 10 * time.Second
)

// ErrUnavailable is returned when the upstream cannot serve the request.
// Callers treat it as transient and retry on the next scheduled cycle.
var ErrUnavailable = errors.New("market data unavailable")

type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	apiKey string
	gate   chan struct{}
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		BaseURL: cfg.MarketData.BaseURL,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		apiKey: cfg.MarketData.APIKey,
		gate:   make(chan struct{}, cfg.MarketData.MaxConcurrent),
	}
}

// acquire blocks until a slot in the concurrency gate is free or ctx is done
func (c *Client) acquire(ctx context.Context) error {
	select {
	case c.gate <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() {
	<-c.gate
}

// GetQuote fetches the current quote for a single symbol
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	u, err := url.Parse(fmt.Sprintf("%s/quote", c.BaseURL))
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("symbol", symbol)
	q.Set("apikey", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if payload.Status == "error" || payload.Code >= 400 {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, payload.Message)
	}

	return parseQuote(symbol, &payload), nil
}

// GetQuotes fetches quotes for multiple symbols, fanning out under the gate.
// Failed symbols are dropped from the result; only total failure is an error.
func (c *Client) GetQuotes(ctx context.Context, symbols []string) map[string]*Quote {
	type result struct {
		symbol string
		quote  *Quote
	}

	results := make(chan result, len(symbols))
	for _, symbol := range symbols {
		go func(symbol string) {
			quote, err := c.GetQuote(ctx, symbol)
			if err != nil {
				logger.Error("marketdata: failed to fetch quote for %s: %v", symbol, err)
				results <- result{symbol: symbol}
				return
			}
			results <- result{symbol: symbol, quote: quote}
		}(symbol)
	}

	quotes := make(map[string]*Quote, len(symbols))
	for range symbols {
		r := <-results
		if r.quote != nil {
			quotes[r.symbol] = r.quote
		}
	}
	return quotes
}

// GetTimeSeries fetches historical OHLCV data for a symbol.
// interval is an upstream interval string ("1min", "5min", "1h", "1day").
func (c *Client) GetTimeSeries(ctx context.Context, symbol, interval string, outputSize int) ([]Candle, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	u, err := url.Parse(fmt.Sprintf("%s/time_series", c.BaseURL))
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(outputSize))
	q.Set("apikey", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload timeSeriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if payload.Status == "error" || payload.Code >= 400 {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, payload.Message)
	}

	candles := make([]Candle, 0, len(payload.Values))
	for _, v := range payload.Values {
		candle := Candle{
			Open:   parseDecimal(v.Open),
			High:   parseDecimal(v.High),
			Low:    parseDecimal(v.Low),
			Close:  parseDecimal(v.Close),
			Volume: parseInt(v.Volume),
		}
		if ts, err := time.Parse("2006-01-02 15:04:05", v.Datetime); err == nil {
			candle.Datetime = ts
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func parseQuote(symbol string, payload *quoteResponse) *Quote {
	quote := &Quote{
		SymbolCode:    symbol,
		Price:         parseDecimal(payload.Close),
		Change:        parseDecimal(payload.Change),
		ChangePercent: parseDecimal(payload.PercentChange),
		High:          parseDecimal(payload.High),
		Low:           parseDecimal(payload.Low),
		Open:          parseDecimal(payload.Open),
		PrevClose:     parseDecimal(payload.PreviousClose),
		Volume:        parseInt(payload.Volume),
		Timestamp:     time.Now().UTC(),
	}
	if payload.Timestamp > 0 {
		quote.Timestamp = time.Unix(payload.Timestamp, 0).UTC()
	} else if payload.Datetime != "" {
		if ts, err := time.Parse("2006-01-02 15:04:05", payload.Datetime); err == nil {
			quote.Timestamp = ts.UTC()
		}
	}
	return quote
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseInt(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
