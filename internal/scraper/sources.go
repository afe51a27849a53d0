package scraper

import (
	"math"
	"strings"
)

// DefaultSources is the rotation used when no sources are configured
var DefaultSources = []string{
	"https://finance.yahoo.com/topic/stock-market-news/",
	"https://www.reuters.com/markets/",
	"https://www.coindesk.com/markets/",
	"https://www.fxstreet.com/news",
	"https://www.investing.com/news/commodities-news",
}

// PickSource selects the page to scrape. A non-empty topic pairs with
// defaultURL; otherwise r in [0,1) selects sources[floor(r*len)].
func PickSource(topic string, sources []string, defaultURL string, r float64) string {
	if strings.TrimSpace(topic) != "" || len(sources) == 0 {
		return defaultURL
	}

	i := int(math.Floor(r * float64(len(sources))))
	if i < 0 {
		i = 0
	}
	if i >= len(sources) {
		i = len(sources) - 1
	}
	return sources[i]
}
