package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is the fixed set of blog sections.
type Category string

const (
	CategoryMarkets     Category = "markets"
	CategoryCrypto      Category = "crypto"
	CategoryForex       Category = "forex"
	CategoryStocks      Category = "stocks"
	CategoryCommodities Category = "commodities"
	CategoryEducation   Category = "education"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryMarkets,
	CategoryCrypto,
	CategoryForex,
	CategoryStocks,
	CategoryCommodities,
	CategoryEducation,
}

// NormalizeCategory maps free text onto a known category, defaulting to markets.
func NormalizeCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryMarkets
}

// BlogPost is a published article
type BlogPost struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	Title              string     `db:"title" json:"title"`
	Slug               string     `db:"slug" json:"slug"`
	Excerpt            string     `db:"excerpt" json:"excerpt"`
	Content            string     `db:"content" json:"content"`
	Category           Category   `db:"category" json:"category"`
	Tags               []string   `db:"tags" json:"tags"`
	MetaTitle          string     `db:"meta_title" json:"meta_title"`
	MetaDescription    string     `db:"meta_description" json:"meta_description"`
	ReadingTimeMinutes int        `db:"reading_time_minutes" json:"reading_time_minutes"`
	SourceURLs         []string   `db:"source_urls" json:"source_urls"`
	Published          bool       `db:"published" json:"published"`
	PublishedAt        *time.Time `db:"published_at" json:"published_at"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}
