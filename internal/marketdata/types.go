package marketdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the parsed snapshot returned by the external price API
type Quote struct {
	SymbolCode    string          `json:"symbol_code"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Open          decimal.Decimal `json:"open"`
	PrevClose     decimal.Decimal `json:"prev_close"`
	Volume        int64           `json:"volume"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Candle is a single OHLCV point in a time series
type Candle struct {
	Datetime time.Time       `json:"datetime"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	Volume   int64           `json:"volume"`
}

// quoteResponse mirrors the upstream /quote payload (numbers arrive as strings)
type quoteResponse struct {
	Symbol        string `json:"symbol"`
	Close         string `json:"close"`
	Change        string `json:"change"`
	PercentChange string `json:"percent_change"`
	High          string `json:"high"`
	Low           string `json:"low"`
	Open          string `json:"open"`
	PreviousClose string `json:"previous_close"`
	Volume        string `json:"volume"`
	Datetime      string `json:"datetime"`
	Timestamp     int64  `json:"timestamp"`
	Status        string `json:"status"`
	Code          int    `json:"code"`
	Message       string `json:"message"`
}

// timeSeriesResponse mirrors the upstream /time_series payload
type timeSeriesResponse struct {
	Values []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
	} `json:"values"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}
