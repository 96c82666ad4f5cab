/**
 * @description
 * Quote repository.
 * Append-only persistence of price snapshots for historical charting.
 *
 * @dependencies
 * - gorm.io/gorm
 * - backend/internal/models
 */

package store

import (
	"context"

	"github.com/goldpulse/backend/internal/marketdata"
	"github.com/goldpulse/backend/internal/models"
	"gorm.io/gorm"
)

type QuoteStore struct {
	DB *gorm.DB
}

func NewQuoteStore(db *gorm.DB) *QuoteStore {
	return &QuoteStore{DB: db}
}

// Append inserts one quote row. Quotes are never updated.
func (s *QuoteStore) Append(ctx context.Context, quote *marketdata.Quote) error {
	row := models.Quote{
		SymbolCode:    quote.SymbolCode,
		Price:         quote.Price,
		Change:        quote.Change,
		ChangePercent: quote.ChangePercent,
		High:          quote.High,
		Low:           quote.Low,
		Open:          quote.Open,
		PrevClose:     quote.PrevClose,
		Volume:        quote.Volume,
		Timestamp:     quote.Timestamp,
	}
	return s.DB.WithContext(ctx).Create(&row).Error
}
