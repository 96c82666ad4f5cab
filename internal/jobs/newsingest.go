/**
 * @description
 * News ingest job.
 * Every cycle: fetch candidates per configured category, deduplicate against
 * the store by source_url, persist the survivors one by one, and invalidate
 * the news cache namespaces if anything new landed. Every step degrades
 * gracefully; an unavailable feed or store just means "no new articles".
 *
 * @dependencies
 * - backend/internal/newswire
 * - backend/internal/models
 * - backend/internal/logger
 */

package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/goldpulse/backend/internal/logger"
	"github.com/goldpulse/backend/internal/models"
	"github.com/goldpulse/backend/internal/newswire"
	"github.com/goldpulse/backend/internal/store"
)

type NewsIngestJob struct {
	interval   time.Duration
	categories []string

	feed  NewsFeed
	news  NewsRepo
	cache NewsCacheInvalidator
}

func NewNewsIngestJob(interval time.Duration, categories []string, feed NewsFeed, news NewsRepo, cache NewsCacheInvalidator) *NewsIngestJob {
	return &NewsIngestJob{
		interval:   interval,
		categories: categories,
		feed:       feed,
		news:       news,
		cache:      cache,
	}
}

func (j *NewsIngestJob) Name() string            { return "NewsIngestJob" }
func (j *NewsIngestJob) Interval() time.Duration { return j.interval }

func (j *NewsIngestJob) Execute(ctx context.Context) error {
	logger.Info("NewsIngestJob: starting news fetch")

	articles := j.fetchAll(ctx)
	if len(articles) == 0 {
		logger.Info("NewsIngestJob: no new articles fetched")
		return nil
	}
	logger.Info("NewsIngestJob: fetched %d articles", len(articles))

	fresh := j.deduplicate(ctx, articles)
	if len(fresh) == 0 {
		logger.Info("NewsIngestJob: all articles already exist")
		return nil
	}
	logger.Info("NewsIngestJob: found %d new articles", len(fresh))

	stored := j.storeArticles(ctx, fresh)
	logger.Info("NewsIngestJob: stored %d new articles", stored)

	if stored > 0 {
		if err := j.cache.InvalidateNews(ctx); err != nil {
			logger.Error("NewsIngestJob: failed to invalidate news cache: %v", err)
		} else {
			logger.Info("NewsIngestJob: invalidated news cache")
		}
	}
	return nil
}

// fetchAll concatenates category results in config order. A failing category
// degrades to no articles for that category.
func (j *NewsIngestJob) fetchAll(ctx context.Context) []newswire.Article {
	var articles []newswire.Article
	for _, category := range j.categories {
		fetched, err := j.feed.FetchByCategory(ctx, category)
		if err != nil {
			logger.Error("NewsIngestJob: failed to fetch %s news: %v", category, err)
			continue
		}
		articles = append(articles, fetched...)
	}
	return articles
}

// deduplicate drops articles without a URL and those already stored. When the
// existence check itself fails the article is kept: the unique index on
// source_url catches real duplicates at insert time.
func (j *NewsIngestJob) deduplicate(ctx context.Context, articles []newswire.Article) []newswire.Article {
	fresh := make([]newswire.Article, 0, len(articles))
	for _, article := range articles {
		if article.URL == "" {
			continue
		}
		exists, err := j.news.ExistsByURL(ctx, article.URL)
		if err != nil {
			logger.Error("NewsIngestJob: dedup check failed for %s: %v", article.URL, err)
			fresh = append(fresh, article)
			continue
		}
		if !exists {
			fresh = append(fresh, article)
		}
	}
	return fresh
}

// storeArticles persists each article independently and counts successes
func (j *NewsIngestJob) storeArticles(ctx context.Context, articles []newswire.Article) int {
	stored := 0
	for _, article := range articles {
		row := toNewsModel(article)
		if err := j.news.Create(ctx, row); err != nil {
			if errors.Is(err, store.ErrDuplicateNews) {
				// Raced with another ingest; the row is there, just not ours
				continue
			}
			logger.Error("NewsIngestJob: failed to store article %s: %v", article.URL, err)
			continue
		}
		stored++
	}
	return stored
}

func toNewsModel(article newswire.Article) *models.News {
	publishedAt := article.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now().UTC()
	}
	category := article.Category
	if category == "" {
		category = "markets"
	}
	return &models.News{
		Title:          article.Title,
		Content:        article.Content,
		Summary:        article.Summary,
		Source:         article.Source,
		SourceURL:      article.URL,
		Author:         article.Author,
		Category:       category,
		ThumbnailURL:   article.ThumbnailURL,
		RelatedSymbols: article.RelatedSymbols,
		PublishedAt:    publishedAt,
	}
}
