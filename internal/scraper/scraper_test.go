package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepilot/tradepilot/internal/config"
)

func testScraperConfig(url string) config.ScraperConfig {
	return config.ScraperConfig{
		BaseURL:               url,
		APIKey:                "fc-unit",
		RequestTimeoutSeconds: 5,
		RetryAttempts:         0,
		RateLimit:             100,
		CacheTTLSeconds:       60,
		OnlyMainContent:       true,
	}
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	log, _ := test.NewNullLogger()
	c, err := NewClient(testScraperConfig(url), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	cfg := testScraperConfig("http://scraper.local")
	cfg.APIKey = ""
	_, err := NewClient(cfg, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestScrapeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/scrape", r.URL.Path)
		assert.Equal(t, "Bearer fc-unit", r.Header.Get("Authorization"))

		var req scrapeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://news.example.com/markets", req.URL)
		assert.Equal(t, []string{"markdown"}, req.Formats)
		assert.True(t, req.OnlyMainContent)

		_, _ = io.WriteString(w, `{"success":true,"data":{"markdown":"# Stocks rally","metadata":{"title":"Markets"}}}`)
	}))
	defer srv.Close()

	page, err := newTestClient(t, srv.URL).Scrape(context.Background(), "https://news.example.com/markets")
	require.NoError(t, err)
	assert.Equal(t, "# Stocks rally", page.Markdown)
	assert.Equal(t, "Markets", page.Title)
}

func TestScrapeEmptyMarkdownIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":{"markdown":"  ","metadata":{"title":"Paywall"}}}`)
	}))
	defer srv.Close()

	page, err := newTestClient(t, srv.URL).Scrape(context.Background(), "https://news.example.com")
	require.NoError(t, err)
	assert.Empty(t, page.Markdown)
	assert.Equal(t, "Paywall", page.Title)
	assert.Equal(t, "https://news.example.com", page.URL)
}

func TestScrapeErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"success":false,"error":"too many"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrRateLimited)
			},
		},
		{
			name:   "upstream failure",
			status: http.StatusPaymentRequired,
			body:   `{"success":false,"error":"insufficient credits"}`,
			check: func(t *testing.T, err error) {
				var sErr *Error
				require.True(t, errors.As(err, &sErr))
				assert.Equal(t, http.StatusPaymentRequired, sErr.StatusCode)
				assert.Equal(t, "insufficient credits", sErr.Message)
			},
		},
		{
			name:   "unsuccessful 200",
			status: http.StatusOK,
			body:   `{"success":false,"error":"blocked"}`,
			check: func(t *testing.T, err error) {
				var sErr *Error
				require.True(t, errors.As(err, &sErr))
				assert.Equal(t, "blocked", sErr.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			page, err := newTestClient(t, srv.URL).Scrape(context.Background(), "https://news.example.com")
			assert.Nil(t, page)
			tt.check(t, err)
		})
	}
}

type countingScraper struct {
	calls int32
	err   error
	empty bool
}

func (s *countingScraper) Scrape(ctx context.Context, url string) (*Page, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	if s.empty {
		return &Page{URL: url}, nil
	}
	return &Page{URL: url, Markdown: "content for " + url}, nil
}

func TestCachedScraper(t *testing.T) {
	inner := &countingScraper{}
	log, _ := test.NewNullLogger()
	s := NewCachedScraper(inner, time.Minute, log)

	for i := 0; i < 3; i++ {
		page, err := s.Scrape(context.Background(), "https://a.example.com")
		require.NoError(t, err)
		assert.Equal(t, "content for https://a.example.com", page.Markdown)
	}
	_, err := s.Scrape(context.Background(), "https://b.example.com")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))

	s.(*CachedScraper).Invalidate("https://a.example.com")
	_, err = s.Scrape(context.Background(), "https://a.example.com")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&inner.calls))
}

func TestCachedScraperDoesNotCacheErrors(t *testing.T) {
	inner := &countingScraper{err: ErrRateLimited}
	s := NewCachedScraper(inner, time.Minute, nil)

	_, err := s.Scrape(context.Background(), "https://a.example.com")
	assert.ErrorIs(t, err, ErrRateLimited)
	_, err = s.Scrape(context.Background(), "https://a.example.com")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
}

func TestCachedScraperSkipsEmptyPages(t *testing.T) {
	inner := &countingScraper{empty: true}
	s := NewCachedScraper(inner, time.Minute, nil)

	for i := 0; i < 2; i++ {
		page, err := s.Scrape(context.Background(), "https://a.example.com")
		require.NoError(t, err)
		assert.Empty(t, page.Markdown)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&inner.calls))
}

func TestCachedScraperZeroTTL(t *testing.T) {
	inner := &countingScraper{}
	assert.Same(t, inner, NewCachedScraper(inner, 0, nil))
}

func TestPickSource(t *testing.T) {
	sources := []string{"https://a", "https://b", "https://c", "https://d"}
	def := "https://default"

	tests := []struct {
		name  string
		topic string
		r     float64
		want  string
	}{
		{"topic uses default", "bitcoin halving", 0.9, def},
		{"zero picks first", "", 0, "https://a"},
		{"quarter boundary", "", 0.25, "https://b"},
		{"just under one picks last", "", 0.9999, "https://d"},
		{"one is clamped", "", 1, "https://d"},
		{"negative is clamped", "", -0.5, "https://a"},
		{"blank topic rotates", "   ", 0.5, "https://c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PickSource(tt.topic, sources, def, tt.r))
		})
	}

	assert.Equal(t, def, PickSource("", nil, def, 0.3))
}
