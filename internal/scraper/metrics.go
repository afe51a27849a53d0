package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScrapeRequestsTotal tracks scrape calls by result
	ScrapeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_requests_total",
			Help: "Total number of scrape requests",
		},
		[]string{"result"}, // success, rate_limited, upstream_error, network_error, empty
	)

	// ScrapeLatency tracks scrape latency
	ScrapeLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_latency_seconds",
			Help:    "Scrape request latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// ScrapeCacheHits tracks cache hit/miss for scraped pages
	ScrapeCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_cache_total",
			Help: "Scrape cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	// ScrapedContentBytes tracks the size of scraped markdown
	ScrapedContentBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_content_bytes",
			Help:    "Size of scraped markdown in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 8),
		},
	)
)
