/**
 * @description
 * News repository.
 * Existence check by source_url (the dedup key) and insert-if-new, with the
 * unique index as the last line of defense against racing ingest cycles.
 *
 * @dependencies
 * - gorm.io/gorm
 * - github.com/jackc/pgconn
 * - backend/internal/models
 */

package store

import (
	"context"
	"errors"

	"github.com/goldpulse/backend/internal/models"
	"github.com/jackc/pgconn"
	"gorm.io/gorm"
)

// Postgres unique_violation
const pgUniqueViolation = "23505"

type NewsStore struct {
	DB *gorm.DB
}

func NewNewsStore(db *gorm.DB) *NewsStore {
	return &NewsStore{DB: db}
}

// ExistsByURL reports whether an article with this source_url is already stored
func (s *NewsStore) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.News{}).
		Where("source_url = ?", url).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts one article. A unique-index collision on source_url comes
// back as ErrDuplicateNews so the ingest job can treat it as a dedup hit
// rather than a persistence failure.
func (s *NewsStore) Create(ctx context.Context, article *models.News) error {
	err := s.DB.WithContext(ctx).Create(article).Error
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicateNews
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateNews
	}
	return err
}
