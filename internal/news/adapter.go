package news

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/samachar-app/samachar/internal/domain"
	"github.com/samachar-app/samachar/internal/logger"
	"github.com/samachar-app/samachar/internal/storage"
	"github.com/samachar-app/samachar/internal/urlnorm"
	"github.com/samachar-app/samachar/pkg/newsapi"
)

// apiClient is the slice of the newsapi client the adapter consumes; tests
// inject fakes through it.
type apiClient interface {
	TopHeadlines(ctx context.Context, q newsapi.HeadlinesQuery) ([]newsapi.RawArticle, error)
	Everything(ctx context.Context, q newsapi.EverythingQuery) ([]newsapi.RawArticle, error)
	ListSources(ctx context.Context, q newsapi.SourcesQuery) ([]newsapi.RawSource, error)
}

// Adapter maps the upstream API into the internal article shape and owns the
// page-1 snapshot fallback. Exported operations never fail: they return a
// list, possibly empty or stale. The unexported variants return errors so the
// aggregation engine and tests can observe failures.
type Adapter struct {
	api      apiClient
	store    storage.Store
	norm     *urlnorm.Normalizer
	hashtags *HashtagRegistry
}

// NewAdapter wires an adapter. Nil collaborators fall back to in-memory
// defaults so callers only configure what they care about.
func NewAdapter(api apiClient, store storage.Store, norm *urlnorm.Normalizer, hashtags *HashtagRegistry) *Adapter {
	if store == nil {
		store = storage.NewMemoryStore()
	}
	if norm == nil {
		norm = urlnorm.New()
	}
	if hashtags == nil {
		hashtags = DefaultHashtags()
	}
	return &Adapter{
		api:      api,
		store:    store,
		norm:     norm,
		hashtags: hashtags,
	}
}

// Normalizer exposes the adapter's URL normalizer for collaborators that
// share its memo table.
func (a *Adapter) Normalizer() *urlnorm.Normalizer { return a.norm }

// FetchTopHeadlines returns one page of headlines. Invalid category or
// language values are silently corrected; upstream failures degrade to the
// last page-1 snapshot for the same query key, then to an empty list.
func (a *Adapter) FetchTopHeadlines(ctx context.Context, country, category string, page int, sources, language string) []domain.Article {
	articles, err := a.topHeadlines(ctx, country, category, page, sources, language)
	if err == nil {
		return articles
	}

	logger.WarnObj("headlines fetch failed", "headlines_error", map[string]any{
		"country":  country,
		"category": category,
		"sources":  sources,
		"page":     page,
		"error":    err.Error(),
	})

	if page == 1 {
		key := snapshotKey(sources, newsapi.NormalizeCategory(category), country)
		if cached, ok := a.readSnapshot(key); ok {
			return cached
		}
	}
	return []domain.Article{}
}

// topHeadlines is the error-returning variant of FetchTopHeadlines.
func (a *Adapter) topHeadlines(ctx context.Context, country, category string, page int, sources, language string) ([]domain.Article, error) {
	category = newsapi.NormalizeCategory(category)
	language = newsapi.NormalizeLanguage(language)

	q := newsapi.HeadlinesQuery{Page: page}
	if sources != "" {
		// Sources are mutually exclusive with country+category upstream.
		q.Sources = sources
	} else {
		q.Country = country
		q.Category = category
		if language != newsapi.DefaultLanguage {
			q.Language = language
		}
	}

	raw, err := a.api.TopHeadlines(ctx, q)
	if err != nil {
		return nil, err
	}

	articles := a.mapArticles(raw)
	if page == 1 {
		a.saveSnapshot(snapshotKey(sources, category, country), articles)
	}
	return articles, nil
}

// SearchNews runs a free-text search. A query beginning with a known hashtag
// is rewritten to the mapped keyword. Failures degrade to an empty list;
// search has no snapshot fallback.
func (a *Adapter) SearchNews(ctx context.Context, query string, page int, sortBy, language, from string) []domain.Article {
	articles, err := a.searchNews(ctx, query, page, sortBy, language, from)
	if err == nil {
		return articles
	}

	logger.WarnObj("search fetch failed", "search_error", map[string]any{
		"query": query,
		"page":  page,
		"error": err.Error(),
	})
	return []domain.Article{}
}

// searchNews is the error-returning variant of SearchNews.
func (a *Adapter) searchNews(ctx context.Context, query string, page int, sortBy, language, from string) ([]domain.Article, error) {
	if strings.HasPrefix(query, "#") {
		if m, ok := a.hashtags.Lookup(query); ok {
			query = m.Keyword
		}
	}

	q := newsapi.EverythingQuery{
		Query:  query,
		SortBy: newsapi.NormalizeSort(sortBy),
		From:   from,
		Page:   page,
	}
	if newsapi.IsValidLanguage(language) {
		q.Language = language
	}

	raw, err := a.api.Everything(ctx, q)
	if err != nil {
		return nil, err
	}
	return a.mapArticles(raw), nil
}

// GetSources lists upstream-declared sources. Invalid category or language
// filters are dropped rather than defaulted; failures degrade to an empty list.
func (a *Adapter) GetSources(ctx context.Context, category, language, country string) []domain.Source {
	q := newsapi.SourcesQuery{Country: strings.TrimSpace(country)}
	if newsapi.IsValidCategory(category) {
		q.Category = category
	}
	if newsapi.IsValidLanguage(language) {
		q.Language = language
	}

	raw, err := a.api.ListSources(ctx, q)
	if err != nil {
		logger.WarnObj("sources fetch failed", "sources_error", map[string]any{
			"category": category,
			"error":    err.Error(),
		})
		return []domain.Source{}
	}

	out := make([]domain.Source, 0, len(raw))
	for _, s := range raw {
		out = append(out, domain.Source(s))
	}
	return out
}

// mapArticles converts raw upstream entries into the internal shape,
// computing summaries and normalizing image URLs. Entries missing a title or
// URL are discarded.
func (a *Adapter) mapArticles(raw []newsapi.RawArticle) []domain.Article {
	out := make([]domain.Article, 0, len(raw))
	for _, r := range raw {
		title := strings.TrimSpace(r.Title)
		link := strings.TrimSpace(r.URL)
		if title == "" || link == "" {
			continue
		}

		art := domain.Article{
			Title:       title,
			URL:         link,
			ImageURL:    a.norm.NormalizeImageURL(r.URLToImage),
			Description: r.Description,
			Content:     r.Content,
			Summary:     GenerateSummary(r.Description, r.Content),
			PublishedAt: r.PublishedAt,
		}
		if r.Source != nil && r.Source.Name != "" {
			art.Source = &domain.SourceRef{ID: r.Source.ID, Name: r.Source.Name}
		}
		out = append(out, art)
	}
	return out
}

// snapshotKey derives the cache key for a page-1 headline query.
func snapshotKey(sources, category, country string) string {
	if sources != "" {
		return "last_news_" + sources
	}
	return "last_news_" + category + "_" + country
}

// saveSnapshot persists the mapped page-1 list. Snapshot writes are
// best-effort; a failure is logged and the live result is still returned.
func (a *Adapter) saveSnapshot(key string, articles []domain.Article) {
	data, err := json.Marshal(articles)
	if err != nil {
		logger.WarnObj("snapshot marshal failed", "snapshot_error", map[string]any{"key": key, "error": err.Error()})
		return
	}
	if err := a.store.SaveSnapshot(key, data); err != nil {
		logger.WarnObj("snapshot write failed", "snapshot_error", map[string]any{"key": key, "error": err.Error()})
	}
}

// readSnapshot loads and decodes the last page-1 snapshot for key.
func (a *Adapter) readSnapshot(key string) ([]domain.Article, bool) {
	data, ok, err := a.store.Snapshot(key)
	if err != nil {
		logger.WarnObj("snapshot read failed", "snapshot_error", map[string]any{"key": key, "error": err.Error()})
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var articles []domain.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		logger.WarnObj("snapshot decode failed", "snapshot_error", map[string]any{"key": key, "error": err.Error()})
		return nil, false
	}
	return articles, true
}
