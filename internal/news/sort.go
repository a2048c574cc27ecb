package news

import (
	"sort"

	"github.com/samachar-app/samachar/internal/domain"
)

// SortStrategy selects a comparator for SortArticles.
type SortStrategy string

const (
	SortNewest     SortStrategy = "newest"
	SortOldest     SortStrategy = "oldest"
	SortTrending   SortStrategy = "trending"
	SortPopularity SortStrategy = "popularity"
)

// TrendingScore is the fixed richness heuristic: articles with an image, a
// longer title and a longer description rank higher. This is a deterministic
// proxy for engagement, not real engagement data; keep it reproducible rather
// than clever.
func TrendingScore(a domain.Article) int {
	score := len(a.Title) + len(a.Description)
	if a.HasImage() {
		score += 20
	}
	return score
}

// popularityScore is the simplified variant used by the popularity strategy.
func popularityScore(a domain.Article) int {
	score := len(a.Title)
	if a.HasImage() {
		score += 20
	}
	return score
}

// SortArticles returns a newly ordered copy of articles. The sort is stable,
// so ties keep their original relative order, and total: missing or invalid
// publishedAt values compare as the earliest possible instant instead of
// failing. Unknown strategies return the copy unchanged.
func SortArticles(articles []domain.Article, strategy SortStrategy) []domain.Article {
	sorted := append([]domain.Article(nil), articles...)

	switch strategy {
	case SortNewest:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].PublishedTime().After(sorted[j].PublishedTime())
		})
	case SortOldest:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].PublishedTime().Before(sorted[j].PublishedTime())
		})
	case SortTrending:
		sort.SliceStable(sorted, func(i, j int) bool {
			return TrendingScore(sorted[i]) > TrendingScore(sorted[j])
		})
	case SortPopularity:
		sort.SliceStable(sorted, func(i, j int) bool {
			return popularityScore(sorted[i]) > popularityScore(sorted[j])
		})
	}

	return sorted
}

// DedupeByURL removes duplicate articles by canonical URL, keeping the first
// occurrence encountered.
func DedupeByURL(articles []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if _, dup := seen[a.URL]; dup {
			continue
		}
		seen[a.URL] = struct{}{}
		out = append(out, a)
	}
	return out
}
