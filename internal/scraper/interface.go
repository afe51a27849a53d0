// Package scraper fetches article markdown from the hosted scraping service.
package scraper

import (
	"context"
	"errors"
	"fmt"
)

// Scraper fetches the main content of a page as markdown
type Scraper interface {
	// Scrape returns the markdown of the page at url
	Scrape(ctx context.Context, url string) (*Page, error)
}

// Page is a scraped page
type Page struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Markdown string `json:"markdown"`
}

var (
	// ErrMissingAPIKey indicates the scraper key is not configured
	ErrMissingAPIKey = errors.New("scraper api key is not configured")

	// ErrRateLimited indicates the scraping service answered 429
	ErrRateLimited = errors.New("scraper rate limit exceeded")
)

// Error is a non-2xx, non-429 answer from the scraping service
type Error struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("scrape %s failed: status %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("scrape %s failed: status %d", e.URL, e.StatusCode)
}
