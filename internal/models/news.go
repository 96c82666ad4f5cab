/**
 * @description
 * News database model.
 * Maps to the 'news' table. source_url carries a unique index and is the
 * deduplication key for the ingest job.
 *
 * @dependencies
 * - gorm.io/gorm
 * - github.com/google/uuid
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// News represents one aggregated financial news article
type News struct {
	ID             uuid.UUID   `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Title          string      `gorm:"size:500;not null" json:"title"`
	Content        string      `gorm:"type:text" json:"content"`
	Summary        string      `gorm:"type:text" json:"summary"`
	Source         string      `gorm:"size:100;not null" json:"source"` // e.g. "Reuters", "Bloomberg"
	SourceURL      string      `gorm:"size:1000;not null;uniqueIndex:idx_news_source_url" json:"source_url"`
	Author         string      `gorm:"size:200" json:"author"`
	Category       string      `gorm:"size:50;not null;index:idx_news_category" json:"category"` // gold, forex, markets
	ThumbnailURL   string      `gorm:"size:1000" json:"thumbnail_url"`
	RelatedSymbols StringArray `gorm:"type:text[]" json:"related_symbols"`
	PublishedAt    time.Time   `gorm:"not null;index:idx_news_category" json:"published_at"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (News) TableName() string {
	return "news"
}

func (n *News) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
