package news

import (
	"context"
	"sort"
	"strings"

	"github.com/samachar-app/samachar/internal/domain"
	"github.com/samachar-app/samachar/internal/logger"
)

// DisplayCategories maps the feed's display category names onto the upstream
// category enumeration. Unknown names fall back to "general".
var DisplayCategories = map[string]string{
	"All news":      "general",
	"Trending":      "general",
	"Politics":      "general",
	"Sports":        "sports",
	"Entertainment": "entertainment",
	"Business":      "business",
	"Tech":          "technology",
	"Health":        "health",
	"Science":       "science",
	"Local":         "general",
}

// Trending fan-out shape: a few popularity searches plus a few category
// headline fetches, each contributing its top slice. Sub-fetches run
// sequentially as a deliberate bound on upstream request concurrency.
var (
	trendingQueries    = []string{"news", "breaking"}
	trendingCategories = []string{"general", "sports", "entertainment"}
)

const (
	trendingPerQuery    = 5
	trendingPerCategory = 3
	trendingLimit       = 20
)

// Engine orchestrates multi-query fan-out, deduplication and ranking on top
// of the adapter.
type Engine struct {
	adapter  *Adapter
	hashtags *HashtagRegistry
}

// NewEngine builds an engine over the given adapter.
func NewEngine(adapter *Adapter) *Engine {
	return &Engine{
		adapter:  adapter,
		hashtags: adapter.hashtags,
	}
}

// FetchByCategory resolves a display category and fetches its headlines.
func (e *Engine) FetchByCategory(ctx context.Context, displayCategory, country string, page int, language string) []domain.Article {
	apiCategory, ok := DisplayCategories[displayCategory]
	if !ok {
		apiCategory = "general"
	}
	return e.adapter.FetchTopHeadlines(ctx, country, apiCategory, page, "", language)
}

// FetchLocalNews fetches general headlines for the given country.
func (e *Engine) FetchLocalNews(ctx context.Context, country string, page int, language string) []domain.Article {
	return e.adapter.FetchTopHeadlines(ctx, country, "general", page, "", language)
}

// FetchTrending assembles a trending feed: popularity searches and category
// headlines merged, deduplicated by canonical URL (first occurrence wins),
// ranked by the trending score and capped. A failed sub-fetch is logged and
// skipped; only when every sub-fetch fails does the engine fall back to a
// single general headlines fetch. Trending is not pageable: every sub-fetch
// and the fallback read the first page regardless of page.
func (e *Engine) FetchTrending(ctx context.Context, page int, country, language string) []domain.Article {
	var (
		merged   []domain.Article
		subs     int
		failures int
	)

	for _, query := range trendingQueries {
		subs++
		articles, err := e.adapter.searchNews(ctx, query, 1, "popularity", language, "")
		if err != nil {
			failures++
			logger.WarnObj("trending search failed", "trending_error", map[string]any{
				"query": query,
				"error": err.Error(),
			})
			continue
		}
		merged = append(merged, firstN(articles, trendingPerQuery)...)
	}

	for _, category := range trendingCategories {
		subs++
		articles, err := e.adapter.topHeadlines(ctx, country, category, 1, "", language)
		if err != nil {
			failures++
			logger.WarnObj("trending category failed", "trending_error", map[string]any{
				"category": category,
				"error":    err.Error(),
			})
			continue
		}
		merged = append(merged, firstN(articles, trendingPerCategory)...)
	}

	if subs > 0 && failures == subs {
		logger.WarnObj("trending fan-out failed entirely; falling back to general headlines", "trending_meta", map[string]any{
			"sub_fetches": subs,
		})
		return e.adapter.FetchTopHeadlines(ctx, country, "general", 1, "", language)
	}

	ranked := SortArticles(DedupeByURL(merged), SortTrending)
	return firstN(ranked, trendingLimit)
}

// ExtractTrendingHashtags counts, per declared hashtag, how many articles
// mention its token in title or description (case-insensitive), returning the
// top hashtags by descending count. Ties keep declaration order.
func (e *Engine) ExtractTrendingHashtags(articles []domain.Article, limit int) []string {
	entries := e.hashtags.Entries()
	counts := make(map[string]int, len(entries))

	for _, art := range articles {
		text := strings.ToLower(art.Title + " " + art.Description)
		for _, m := range entries {
			token := strings.TrimPrefix(m.Tag, "#")
			if strings.Contains(text, token) {
				counts[m.Tag]++
			}
		}
	}

	ranked := make([]string, 0, len(counts))
	for _, m := range entries {
		if counts[m.Tag] > 0 {
			ranked = append(ranked, m.Tag)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})

	if limit < 0 {
		limit = 0
	}
	return firstN(ranked, limit)
}

func firstN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
