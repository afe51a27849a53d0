package service

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const (
	maxSlugBaseLen = 80
	fallbackSlug   = "market-update"
	slugDateLayout = "2006-01-02"
)

// Slugify lowercases s and joins its letters and digits with single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	out := b.String()
	if len(out) > maxSlugBaseLen {
		out = strings.TrimRight(out[:maxSlugBaseLen], "-")
	}
	return out
}

// PostSlug derives the stored slug: the model's slug, or the title when it
// is empty, suffixed with the publication date unless already present.
func PostSlug(modelSlug, title string, now time.Time) string {
	slug := Slugify(modelSlug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		slug = fallbackSlug
	}

	date := now.UTC().Format(slugDateLayout)
	if strings.Contains(slug, date) {
		return slug
	}
	return slug + "-" + date
}

// randomSlugSuffix returns six lowercase hex characters.
func randomSlugSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
