package news

import (
	"testing"

	"github.com/samachar-app/samachar/internal/domain"
)

func TestSortArticlesNewestIsTotalAndStable(t *testing.T) {
	articles := []domain.Article{
		{Title: "no date A", URL: "https://x.com/a"},
		{Title: "old", URL: "https://x.com/b", PublishedAt: "2026-08-01T10:00:00Z"},
		{Title: "no date B", URL: "https://x.com/c", PublishedAt: "not-a-date"},
		{Title: "new", URL: "https://x.com/d", PublishedAt: "2026-08-20T10:00:00Z"},
	}

	sorted := SortArticles(articles, SortNewest)

	if sorted[0].Title != "new" || sorted[1].Title != "old" {
		t.Fatalf("unexpected order: %s, %s", sorted[0].Title, sorted[1].Title)
	}
	// Missing/invalid dates sink to the end, keeping original relative order.
	if sorted[2].Title != "no date A" || sorted[3].Title != "no date B" {
		t.Fatalf("expected dateless entries last in original order, got %s, %s", sorted[2].Title, sorted[3].Title)
	}

	// Input slice must not be mutated.
	if articles[0].Title != "no date A" {
		t.Fatal("SortArticles mutated its input")
	}
}

func TestSortArticlesOldest(t *testing.T) {
	articles := []domain.Article{
		{Title: "new", URL: "https://x.com/a", PublishedAt: "2026-08-20T10:00:00Z"},
		{Title: "old", URL: "https://x.com/b", PublishedAt: "2026-08-01T10:00:00Z"},
	}
	sorted := SortArticles(articles, SortOldest)
	if sorted[0].Title != "old" {
		t.Fatalf("expected oldest first, got %s", sorted[0].Title)
	}
}

func TestSortArticlesTrendingScore(t *testing.T) {
	rich := domain.Article{
		Title:       "A headline with some length",
		URL:         "https://x.com/rich",
		ImageURL:    "https://cdn.x.com/i.jpg",
		Description: "a description adding weight",
	}
	poor := domain.Article{Title: "short", URL: "https://x.com/poor"}

	if TrendingScore(rich) <= TrendingScore(poor) {
		t.Fatal("expected richer article to score higher")
	}

	placeholder := rich
	placeholder.ImageURL = domain.PlaceholderImage
	if TrendingScore(placeholder) != TrendingScore(rich)-20 {
		t.Fatal("placeholder image must not count as an image")
	}

	sorted := SortArticles([]domain.Article{poor, rich}, SortTrending)
	if sorted[0].URL != rich.URL {
		t.Fatalf("expected trending sort to rank rich article first, got %s", sorted[0].URL)
	}
}

func TestSortArticlesPopularity(t *testing.T) {
	withImage := domain.Article{Title: "ab", URL: "https://x.com/1", ImageURL: "https://cdn.x.com/i.jpg"}
	longTitle := domain.Article{Title: "a much longer headline here", URL: "https://x.com/2"}

	sorted := SortArticles([]domain.Article{withImage, longTitle}, SortPopularity)
	if sorted[0].URL != longTitle.URL {
		t.Fatalf("expected title length to beat 20-point image bonus, got %s", sorted[0].URL)
	}
}

func TestSortArticlesUnknownStrategyKeepsOrder(t *testing.T) {
	articles := []domain.Article{
		{Title: "b", URL: "https://x.com/b", PublishedAt: "2026-08-01T10:00:00Z"},
		{Title: "a", URL: "https://x.com/a", PublishedAt: "2026-08-20T10:00:00Z"},
	}
	sorted := SortArticles(articles, SortStrategy("bogus"))
	if sorted[0].Title != "b" || sorted[1].Title != "a" {
		t.Fatal("unknown strategy must keep original order")
	}
}

func TestDedupeByURLKeepsFirstOccurrence(t *testing.T) {
	articles := []domain.Article{
		{Title: "first copy", URL: "https://x.com/dup"},
		{Title: "other", URL: "https://x.com/other"},
		{Title: "second copy", URL: "https://x.com/dup"},
	}
	unique := DedupeByURL(articles)
	if len(unique) != 2 {
		t.Fatalf("expected 2 unique articles, got %d", len(unique))
	}
	if unique[0].Title != "first copy" {
		t.Fatalf("expected first occurrence kept, got %q", unique[0].Title)
	}
}
