/**
 * @description
 * Client for the external financial news feed.
 * Pulls recent articles per category (gold, forex, markets) for the ingest job.
 *
 * @dependencies
 * - net/http
 * - encoding/json
 * - backend/internal/config
 */

package newswire

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	requestTimeout = 15 * time.Second
	maxResults     = 50
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Article is one candidate article as returned by the feed
type Article struct {
	Title          string    `json:"title"`
	Summary        string    `json:"summary"`
	Content        string    `json:"content"`
	URL            string    `json:"url"`
	Source         string    `json:"source"`
	Author         string    `json:"author"`
	Category       string    `json:"category"`
	ThumbnailURL   string    `json:"thumbnail_url"`
	PublishedAt    time.Time `json:"published_at"`
	RelatedSymbols []string  `json:"related_symbols"`
}

type feedResponse struct {
	Articles []Article `json:"articles"`
	Status   string    `json:"status"`
	Message  string    `json:"message"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// FetchByCategory pulls recent articles for one category.
// Articles keep their feed order; callers concatenate categories in config order.
func (c *Client) FetchByCategory(ctx context.Context, category string) ([]Article, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("category is required")
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("news feed not configured")
	}

	u, err := url.Parse(c.baseURL + "/news")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("category", category)
	q.Set("limit", fmt.Sprintf("%d", maxResults))
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news feed error: status %d", resp.StatusCode)
	}

	var payload feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Status == "error" {
		return nil, fmt.Errorf("news feed error: %s", payload.Message)
	}

	// Make sure every article carries the category it was fetched under
	for i := range payload.Articles {
		if payload.Articles[i].Category == "" {
			payload.Articles[i].Category = category
		}
	}

	return payload.Articles, nil
}
