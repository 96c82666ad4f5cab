/**
 * @description
 * Symbol repository.
 * Read-only lookup of active symbol codes; the DB-backed symbol source for the
 * price poll job.
 *
 * @dependencies
 * - gorm.io/gorm
 * - backend/internal/models
 */

package store

import (
	"context"

	"github.com/goldpulse/backend/internal/models"
	"gorm.io/gorm"
)

type SymbolStore struct {
	DB *gorm.DB
}

func NewSymbolStore(db *gorm.DB) *SymbolStore {
	return &SymbolStore{DB: db}
}

// ActiveCodes returns the codes of all active symbols, stable order
func (s *SymbolStore) ActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	err := s.DB.WithContext(ctx).
		Model(&models.Symbol{}).
		Where("is_active = ?", true).
		Order("code ASC").
		Pluck("code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// Symbols satisfies the price poll job's symbol source contract
func (s *SymbolStore) Symbols(ctx context.Context) ([]string, error) {
	return s.ActiveCodes(ctx)
}
