package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goldpulse/backend/internal/newswire"
)

func article(category, url string) newswire.Article {
	return newswire.Article{
		Title:       "headline for " + url,
		Content:     "body",
		Source:      "wire",
		URL:         url,
		Category:    category,
		PublishedAt: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewsIngestStoresAndInvalidates(t *testing.T) {
	feed := &fakeNewsFeed{byCategory: map[string][]newswire.Article{
		"gold":    {article("gold", "https://example.com/a")},
		"markets": {article("markets", "https://example.com/b")},
	}}
	repo := newFakeNewsRepo()
	cache := &fakeInvalidator{}

	job := NewNewsIngestJob(15*time.Minute, []string{"gold", "forex", "markets"}, feed, repo, cache)
	if err := job.Execute(context.Background()); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if len(repo.byURL) != 2 {
		t.Errorf("stored %d articles, want 2", len(repo.byURL))
	}
	if cache.calls != 1 {
		t.Errorf("invalidated news cache %d times, want 1", cache.calls)
	}
	stored := repo.byURL["https://example.com/a"]
	if stored == nil || stored.Category != "gold" {
		t.Errorf("stored article a = %+v, want category gold", stored)
	}
}

func TestNewsIngestSkipsKnownURLsAcrossCycles(t *testing.T) {
	feed := &fakeNewsFeed{byCategory: map[string][]newswire.Article{
		"gold": {article("gold", "https://example.com/a")},
	}}
	repo := newFakeNewsRepo()
	cache := &fakeInvalidator{}

	job := NewNewsIngestJob(15*time.Minute, []string{"gold"}, feed, repo, cache)

	// First cycle stores, second sees the same feed and stores nothing
	for i := 0; i < 2; i++ {
		if err := job.Execute(context.Background()); err != nil {
			t.Fatalf("cycle %d returned error: %v", i, err)
		}
	}

	if len(repo.byURL) != 1 {
		t.Errorf("stored %d articles, want 1", len(repo.byURL))
	}
	if cache.calls != 1 {
		t.Errorf("invalidated news cache %d times, want only the first cycle", cache.calls)
	}
}

func TestNewsIngestDropsArticlesWithoutURL(t *testing.T) {
	feed := &fakeNewsFeed{byCategory: map[string][]newswire.Article{
		"gold": {article("gold", ""), article("gold", "https://example.com/a")},
	}}
	repo := newFakeNewsRepo()
	cache := &fakeInvalidator{}

	job := NewNewsIngestJob(15*time.Minute, []string{"gold"}, feed, repo, cache)
	if err := job.Execute(context.Background()); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if len(repo.byURL) != 1 {
		t.Errorf("stored %d articles, want the URL-less one dropped", len(repo.byURL))
	}
}

func TestNewsIngestIsolatesCategoryFailures(t *testing.T) {
	feed := &fakeNewsFeed{
		byCategory: map[string][]newswire.Article{
			"gold":    {article("gold", "https://example.com/a")},
			"markets": {article("markets", "https://example.com/b")},
		},
		failing: map[string]bool{"forex": true},
	}
	repo := newFakeNewsRepo()
	cache := &fakeInvalidator{}

	job := NewNewsIngestJob(15*time.Minute, []string{"gold", "forex", "markets"}, feed, repo, cache)
	if err := job.Execute(context.Background()); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if len(repo.byURL) != 2 {
		t.Errorf("stored %d articles, want the healthy categories to land", len(repo.byURL))
	}
}

func TestNewsIngestKeepsArticleWhenDedupCheckFails(t *testing.T) {
	feed := &fakeNewsFeed{byCategory: map[string][]newswire.Article{
		"gold": {article("gold", "https://example.com/a")},
	}}
	repo := newFakeNewsRepo()
	repo.existsErr = errors.New("db flaky")
	cache := &fakeInvalidator{}

	job := NewNewsIngestJob(15*time.Minute, []string{"gold"}, feed, repo, cache)
	if err := job.Execute(context.Background()); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	// Fail-open: the unique index is the backstop, so the insert still happens
	if len(repo.byURL) != 1 {
		t.Errorf("stored %d articles, want 1", len(repo.byURL))
	}
}

func TestNewsIngestSkipsInvalidationWhenNothingStored(t *testing.T) {
	feed := &fakeNewsFeed{byCategory: map[string][]newswire.Article{
		"gold": {article("gold", "https://example.com/a")},
	}}
	repo := newFakeNewsRepo()
	repo.byURL["https://example.com/a"] = toNewsModel(article("gold", "https://example.com/a"))
	cache := &fakeInvalidator{}

	job := NewNewsIngestJob(15*time.Minute, []string{"gold"}, feed, repo, cache)
	if err := job.Execute(context.Background()); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if cache.calls != 0 {
		t.Errorf("invalidated news cache %d times, want 0 when nothing new landed", cache.calls)
	}
}

func TestToNewsModelBackfillsDefaults(t *testing.T) {
	row := toNewsModel(newswire.Article{Title: "t", URL: "https://example.com/x"})
	if row.Category != "markets" {
		t.Errorf("category = %s, want markets default", row.Category)
	}
	if row.PublishedAt.IsZero() {
		t.Error("published_at should be backfilled, got zero time")
	}
}
