package imagecache

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/samachar-app/samachar/internal/domain"
	"github.com/samachar-app/samachar/internal/logger"
	"github.com/samachar-app/samachar/internal/storage"
	"github.com/samachar-app/samachar/internal/urlnorm"
	"github.com/samachar-app/samachar/pkg/httpclient"
)

// Preload outcome values recorded in the store.
const (
	StatusLoaded = "loaded"
	StatusFailed = "failed"
)

const defaultConcurrency = 3

// Prefetcher warms a single image URL, typically by fetching it so an
// intermediate cache (CDN, OS-level HTTP cache) holds it afterwards.
type Prefetcher interface {
	Prefetch(ctx context.Context, url string) error
}

// HTTPPrefetcher warms images with a plain GET.
type HTTPPrefetcher struct {
	client httpclient.Client
}

// NewHTTPPrefetcher builds a prefetcher over the given HTTP client.
func NewHTTPPrefetcher(client httpclient.Client) *HTTPPrefetcher {
	return &HTTPPrefetcher{client: client}
}

func (p *HTTPPrefetcher) Prefetch(ctx context.Context, url string) error {
	resp, err := p.client.Get(ctx, url, nil, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("image fetch returned status %d", resp.StatusCode())
	}
	return nil
}

// Preloader warms article images ahead of display and records per-URL
// outcomes so repeat visits skip work. It never fails the caller: a broken
// image is recorded and skipped, not surfaced.
type Preloader struct {
	norm        *urlnorm.Normalizer
	store       storage.Store
	prefetcher  Prefetcher
	concurrency int
}

// NewPreloader builds a preloader. Concurrency below 1 falls back to the
// default batch size.
func NewPreloader(norm *urlnorm.Normalizer, store storage.Store, prefetcher Prefetcher, concurrency int) *Preloader {
	if norm == nil {
		norm = urlnorm.New()
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Preloader{
		norm:        norm,
		store:       store,
		prefetcher:  prefetcher,
		concurrency: concurrency,
	}
}

// PreloadImage normalizes and warms a single image URL. Placeholder and
// empty inputs are skipped. Returns true when the image ended up warm,
// either now or from a previous run.
func (p *Preloader) PreloadImage(ctx context.Context, rawURL string) bool {
	if p.prefetcher == nil {
		return false
	}
	if strings.TrimSpace(rawURL) == "" {
		return false
	}

	normalized := p.norm.NormalizeImageURL(rawURL)
	if domain.IsPlaceholderImage(normalized) {
		return false
	}

	if status, ok, err := p.store.ImageStatus(normalized); err == nil && ok && status == StatusLoaded {
		return true
	}

	err := p.prefetcher.Prefetch(ctx, normalized)
	if err != nil && ctx.Err() == nil {
		// One retry absorbs transient network blips.
		err = p.prefetcher.Prefetch(ctx, normalized)
	}

	status := StatusLoaded
	if err != nil {
		status = StatusFailed
		logger.DebugObj("image preload failed", "preload_error", map[string]any{
			"url":   normalized,
			"error": err.Error(),
		})
	}
	if serr := p.store.SetImageStatus(normalized, status); serr != nil {
		logger.WarnObj("image status write failed", "preload_error", map[string]any{
			"url":   normalized,
			"error": serr.Error(),
		})
	}

	return err == nil
}

// PreloadImages warms the images of the given articles in fixed-size
// batches. Batches run sequentially; URLs within a batch run concurrently.
// Returns how many images are warm after the pass.
func (p *Preloader) PreloadImages(ctx context.Context, articles []domain.Article) int {
	urls := make([]string, 0, len(articles))
	for _, a := range articles {
		if a.HasImage() {
			urls = append(urls, a.ImageURL)
		}
	}
	if len(urls) == 0 {
		return 0
	}

	var (
		mu     sync.Mutex
		warmed int
	)
	for start := 0; start < len(urls); start += p.concurrency {
		if ctx.Err() != nil {
			break
		}

		end := start + p.concurrency
		if end > len(urls) {
			end = len(urls)
		}

		var wg sync.WaitGroup
		for _, u := range urls[start:end] {
			wg.Add(1)
			go func(u string) {
				defer wg.Done()
				if p.PreloadImage(ctx, u) {
					mu.Lock()
					warmed++
					mu.Unlock()
				}
			}(u)
		}
		wg.Wait()
	}

	logger.DebugObj("image preload pass finished", "preload_meta", map[string]any{
		"candidates": len(urls),
		"warmed":     warmed,
	})
	return warmed
}

// Clear drops the normalization memo and all recorded preload statuses.
func (p *Preloader) Clear() error {
	p.norm.Reset()
	return p.store.ClearImageStatuses()
}
