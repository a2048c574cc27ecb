package scrape

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/samachar-app/samachar/internal/domain"
	"github.com/samachar-app/samachar/internal/logger"
	"github.com/samachar-app/samachar/internal/urlnorm"
	"github.com/samachar-app/samachar/pkg/httpclient"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	defaultDelay     = 250 * time.Millisecond
)

var defaultHeaders = map[string]string{
	"User-Agent": "samachar-feed-warmer/1.0",
	"Accept":     "text/html,application/xhtml+xml",
}

// Enricher fills in article images the upstream feed left blank by fetching
// the article page and reading its og:image tag.
type Enricher struct {
	client httpclient.Client
	norm   *urlnorm.Normalizer
	delay  time.Duration
}

// NewEnricher constructs an enricher. A zero delay uses a small default
// between page fetches.
func NewEnricher(client httpclient.Client, norm *urlnorm.Normalizer, delay time.Duration) *Enricher {
	if norm == nil {
		norm = urlnorm.New()
	}
	if delay <= 0 {
		delay = defaultDelay
	}
	return &Enricher{client: client, norm: norm, delay: delay}
}

// FillMissingImages scrapes pages for articles carrying the placeholder
// image and merges any og:image found. Articles that already have a real
// image pass through untouched. Fetches are throttled; cancellation returns
// whatever was processed so far.
func (e *Enricher) FillMissingImages(ctx context.Context, articles []domain.Article) []domain.Article {
	out := append([]domain.Article(nil), articles...)

	for i, art := range out {
		if art.HasImage() || art.URL == "" {
			continue
		}

		select {
		case <-ctx.Done():
			return out
		default:
		}

		imageURL, err := e.scrapeImage(ctx, art.URL)
		if err != nil {
			logger.DebugObj("image scrape failed", "scrape_error", map[string]any{
				"url":   art.URL,
				"error": err.Error(),
			})
		} else if imageURL != "" {
			out[i].ImageURL = e.norm.NormalizeImageURL(imageURL)
		}

		if e.delay > 0 && i < len(out)-1 {
			timer := time.NewTimer(e.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return out
			case <-timer.C:
			}
		}
	}

	return out
}

func (e *Enricher) scrapeImage(ctx context.Context, pageURL string) (string, error) {
	resp, err := e.client.Get(ctx, pageURL, nil, defaultHeaders)
	if err != nil {
		return "", fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	for _, sel := range []string{
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
	} {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok && strings.TrimSpace(val) != "" {
				return strings.TrimSpace(val), nil
			}
		}
	}

	return "", nil
}
