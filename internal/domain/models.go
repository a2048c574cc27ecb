package domain

import (
	"strings"
	"time"
)

// Domain contains the core article and source models shared across packages.

// PlaceholderImage is the sentinel returned for unusable image URLs.
const PlaceholderImage = "https://via.placeholder.com/400x300?text=No+Image"

// SourceRef identifies the outlet an article came from.
type SourceRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Article is the internal article shape mapped from upstream responses.
// URL is the canonical identity used for deduplication; Title and URL are
// required, entries missing either are discarded during mapping.
type Article struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	ImageURL    string     `json:"urlToImage,omitempty"`
	Description string     `json:"description,omitempty"`
	Content     string     `json:"content,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	PublishedAt string     `json:"publishedAt,omitempty"`
	Source      *SourceRef `json:"source,omitempty"`
}

// Source is an upstream-declared news source listing entry.
type Source struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Category    string `json:"category,omitempty"`
	Language    string `json:"language,omitempty"`
	Country     string `json:"country,omitempty"`
}

var publishedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// PublishedTime parses PublishedAt defensively. Missing or unparseable
// timestamps yield the zero time so comparators can treat them as the
// earliest possible instant instead of failing.
func (a Article) PublishedTime() time.Time {
	raw := strings.TrimSpace(a.PublishedAt)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// HasImage reports whether the article carries a usable image URL. The
// normalizer maps missing images to a placeholder sentinel, which does not
// count as an image for ranking purposes.
func (a Article) HasImage() bool {
	return a.ImageURL != "" && !IsPlaceholderImage(a.ImageURL)
}

// IsPlaceholderImage reports whether url is the placeholder sentinel.
func IsPlaceholderImage(url string) bool {
	return url == PlaceholderImage
}
