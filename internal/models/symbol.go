/**
 * @description
 * Symbol database model.
 * Maps to the 'symbols' table in PostgreSQL. Read-only to the worker.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import "time"

// Symbol represents a market instrument (gold, silver, forex pair, crypto)
type Symbol struct {
	Code          string    `gorm:"primary_key;size:20" json:"code"` // e.g. "XAUUSD"
	NameCN        string    `gorm:"column:name_cn;size:100;not null" json:"name_cn"`
	NameEN        string    `gorm:"column:name_en;size:100;not null" json:"name_en"`
	Market        string    `gorm:"size:20;not null;index" json:"market"` // SGE, LBMA, COMEX, FOREX
	SymbolType    string    `gorm:"size:20;not null;index" json:"symbol_type"`
	BaseCurrency  string    `gorm:"size:10" json:"base_currency"`
	QuoteCurrency string    `gorm:"size:10" json:"quote_currency"`
	DecimalPlaces int       `gorm:"default:2;not null" json:"decimal_places"`
	Unit          string    `gorm:"size:20" json:"unit"`
	Description   string    `gorm:"type:text" json:"description"`
	IsActive      bool      `gorm:"default:true;not null" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Symbol) TableName() string {
	return "symbols"
}
