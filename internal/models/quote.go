/**
 * @description
 * Quote database model.
 * Maps to the 'quotes' table: a point-in-time price snapshot appended on every
 * successful fetch. Insert-only, never updated.
 *
 * @dependencies
 * - gorm.io/gorm
 * - github.com/shopspring/decimal
 */

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote represents a historical market price snapshot
type Quote struct {
	ID            int64           `gorm:"primary_key;autoIncrement" json:"id"`
	SymbolCode    string          `gorm:"size:20;not null;index:idx_quotes_symbol_timestamp" json:"symbol_code"`
	Price         decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"price"`
	Change        decimal.Decimal `gorm:"type:decimal(20,8)" json:"change"`
	ChangePercent decimal.Decimal `gorm:"type:decimal(10,4)" json:"change_percent"`
	High          decimal.Decimal `gorm:"type:decimal(20,8)" json:"high"`
	Low           decimal.Decimal `gorm:"type:decimal(20,8)" json:"low"`
	Open          decimal.Decimal `gorm:"type:decimal(20,8)" json:"open"`
	PrevClose     decimal.Decimal `gorm:"type:decimal(20,8)" json:"prev_close"`
	Volume        int64           `json:"volume"`
	Timestamp     time.Time       `gorm:"not null;index:idx_quotes_symbol_timestamp" json:"timestamp"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (Quote) TableName() string {
	return "quotes"
}
