package scraper

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// CachedScraper keeps scraped pages in memory for a TTL so repeated
// generations inside the window reuse the same content.
type CachedScraper struct {
	next   Scraper
	cache  *cache.Cache
	logger *logrus.Entry
}

// NewCachedScraper wraps next with an in-process cache. A zero TTL disables caching.
func NewCachedScraper(next Scraper, ttl time.Duration, log *logrus.Logger) Scraper {
	if ttl <= 0 {
		return next
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CachedScraper{
		next:   next,
		cache:  cache.New(ttl, ttl*2),
		logger: log.WithField("component", "scrape_cache"),
	}
}

// Scrape returns a cached page or delegates to the wrapped scraper
func (s *CachedScraper) Scrape(ctx context.Context, url string) (*Page, error) {
	if v, found := s.cache.Get(url); found {
		if page, ok := v.(*Page); ok {
			ScrapeCacheHits.WithLabelValues("hit").Inc()
			s.logger.WithField("url", url).Debug("Scrape cache hit")
			return page, nil
		}
	}
	ScrapeCacheHits.WithLabelValues("miss").Inc()

	page, err := s.next.Scrape(ctx, url)
	if err != nil {
		return nil, err
	}

	// empty pages are not cached so the next call scrapes again
	if page.Markdown != "" {
		s.cache.SetDefault(url, page)
	}
	return page, nil
}

// Invalidate drops url from the cache
func (s *CachedScraper) Invalidate(url string) {
	s.cache.Delete(url)
}
