package scrape

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/samachar-app/samachar/internal/domain"
	"github.com/samachar-app/samachar/internal/urlnorm"
	"github.com/samachar-app/samachar/pkg/httpclient"
)

type fakeResponse struct {
	body   []byte
	status int
}

func (r fakeResponse) Body() []byte    { return r.body }
func (r fakeResponse) StatusCode() int { return r.status }

type fakeClient struct {
	pages map[string]fakeResponse
	errs  map[string]error
	calls []string
}

func (c *fakeClient) Get(_ context.Context, rawURL string, _ url.Values, _ map[string]string) (httpclient.Response, error) {
	c.calls = append(c.calls, rawURL)
	if err, ok := c.errs[rawURL]; ok {
		return nil, err
	}
	if resp, ok := c.pages[rawURL]; ok {
		return resp, nil
	}
	return fakeResponse{status: 404}, nil
}

func newEnricherWithPages(pages map[string]fakeResponse) (*Enricher, *fakeClient) {
	client := &fakeClient{pages: pages, errs: map[string]error{}}
	return NewEnricher(client, urlnorm.New(), time.Millisecond), client
}

func TestFillMissingImagesScrapesOGImage(t *testing.T) {
	page := `<html><head>
		<meta property="og:title" content="Title"/>
		<meta property="og:image" content="http://cdn.x.com/og.jpg?utm_source=share"/>
	</head><body></body></html>`
	e, client := newEnricherWithPages(map[string]fakeResponse{
		"https://x.com/story": {body: []byte(page), status: 200},
	})

	articles := []domain.Article{
		{Title: "Missing", URL: "https://x.com/story", ImageURL: domain.PlaceholderImage},
		{Title: "Has image", URL: "https://x.com/other", ImageURL: "https://cdn.x.com/real.jpg"},
	}

	out := e.FillMissingImages(context.Background(), articles)

	if out[0].ImageURL != "https://cdn.x.com/og.jpg" {
		t.Fatalf("expected normalized og:image, got %q", out[0].ImageURL)
	}
	if out[1].ImageURL != "https://cdn.x.com/real.jpg" {
		t.Fatalf("article with a real image must pass through, got %q", out[1].ImageURL)
	}
	if len(client.calls) != 1 || client.calls[0] != "https://x.com/story" {
		t.Fatalf("expected exactly one page fetch, got %v", client.calls)
	}
}

func TestFillMissingImagesFallsBackToTwitterImage(t *testing.T) {
	page := `<html><head>
		<meta name="twitter:image" content="https://cdn.x.com/tw.jpg"/>
	</head></html>`
	e, _ := newEnricherWithPages(map[string]fakeResponse{
		"https://x.com/story": {body: []byte(page), status: 200},
	})

	out := e.FillMissingImages(context.Background(), []domain.Article{
		{Title: "Missing", URL: "https://x.com/story", ImageURL: domain.PlaceholderImage},
	})
	if out[0].ImageURL != "https://cdn.x.com/tw.jpg" {
		t.Fatalf("expected twitter:image fallback, got %q", out[0].ImageURL)
	}
}

func TestFillMissingImagesKeepsPlaceholderOnFailure(t *testing.T) {
	client := &fakeClient{
		pages: map[string]fakeResponse{
			"https://x.com/notfound": {status: 404},
			"https://x.com/bare":     {body: []byte("<html><head></head></html>"), status: 200},
		},
		errs: map[string]error{
			"https://x.com/down": errors.New("connection refused"),
		},
	}
	e := NewEnricher(client, urlnorm.New(), time.Millisecond)

	articles := []domain.Article{
		{Title: "a", URL: "https://x.com/notfound", ImageURL: domain.PlaceholderImage},
		{Title: "b", URL: "https://x.com/down", ImageURL: domain.PlaceholderImage},
		{Title: "c", URL: "https://x.com/bare", ImageURL: domain.PlaceholderImage},
	}
	out := e.FillMissingImages(context.Background(), articles)

	for i, a := range out {
		if a.ImageURL != domain.PlaceholderImage {
			t.Errorf("article %d: expected placeholder kept, got %q", i, a.ImageURL)
		}
	}
}

func TestFillMissingImagesHonorsCancellation(t *testing.T) {
	e, client := newEnricherWithPages(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	articles := []domain.Article{
		{Title: "a", URL: "https://x.com/a", ImageURL: domain.PlaceholderImage},
		{Title: "b", URL: "https://x.com/b", ImageURL: domain.PlaceholderImage},
	}
	out := e.FillMissingImages(ctx, articles)
	if len(out) != len(articles) {
		t.Fatalf("expected full slice returned on abort, got %d", len(out))
	}
	if len(client.calls) != 0 {
		t.Fatalf("expected no fetches under cancelled context, got %v", client.calls)
	}
}
