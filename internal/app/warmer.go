package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samachar-app/samachar/internal/config"
	"github.com/samachar-app/samachar/internal/domain"
	"github.com/samachar-app/samachar/internal/imagecache"
	"github.com/samachar-app/samachar/internal/logger"
	"github.com/samachar-app/samachar/internal/news"
	"github.com/samachar-app/samachar/internal/scrape"
	"github.com/samachar-app/samachar/internal/storage"
	"github.com/samachar-app/samachar/internal/urlnorm"
	"github.com/samachar-app/samachar/pkg/alerts"
	"github.com/samachar-app/samachar/pkg/httpclient"
	"github.com/samachar-app/samachar/pkg/newsapi"
)

// Warmer is the feed warmer runtime. On a fixed cadence it refreshes the
// trending feed, optionally scrapes missing images, preloads the top images
// and publishes alerts for stories it has not seen before.
type Warmer struct {
	cfg       *config.Config
	engine    *news.Engine
	preloader *imagecache.Preloader
	enricher  *scrape.Enricher
	fanout    *alerts.Fanout
	store     storage.Store
	interval  time.Duration
}

// alertLogger bridges the package-level logger onto the alerts.Logger surface.
type alertLogger struct{}

func (alertLogger) InfoObj(msg, key string, obj interface{})  { logger.InfoObj(msg, key, obj) }
func (alertLogger) DebugObj(msg, key string, obj interface{}) { logger.DebugObj(msg, key, obj) }
func (alertLogger) WarnObj(msg, key string, obj interface{})  { logger.WarnObj(msg, key, obj) }
func (alertLogger) ErrorObj(msg, key string, obj interface{}) { logger.ErrorObj(msg, key, obj) }

// NewWarmer wires the warmer runtime from config.
func NewWarmer(ctx context.Context, cfg *config.Config) (*Warmer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		ImageStatusTTL:  cfg.ImageStatusTTL,
		AlertTTL:        cfg.AlertTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	logger.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"image_status_ttl_seconds": int(cfg.ImageStatusTTL.Seconds()),
		"alert_ttl_seconds":        int(cfg.AlertTTL.Seconds()),
	})

	hashtags := news.DefaultHashtags()
	if cfg.HashtagsFile != "" {
		hashtags, err = news.LoadHashtags(cfg.HashtagsFile)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("load hashtags registry: %w", err)
		}
		logger.InfoObj("hashtags registry loaded", "hashtags_meta", map[string]any{
			"file":  cfg.HashtagsFile,
			"count": len(hashtags.Entries()),
		})
	}

	httpClient := httpclient.NewRestyClient(cfg.HTTPTimeout)
	api := newsapi.New(httpClient, cfg.NewsAPIKey, cfg.NewsAPIBaseURL)

	norm := urlnorm.New()
	adapter := news.NewAdapter(api, store, norm, hashtags)
	engine := news.NewEngine(adapter)

	prefetcher := imagecache.NewHTTPPrefetcher(httpClient)
	preloader := imagecache.NewPreloader(norm, store, prefetcher, cfg.PreloadConcurrency)

	var enricher *scrape.Enricher
	if cfg.ScrapeMissingImages {
		enricher = scrape.NewEnricher(httpClient, norm, 0)
	}

	var fanout *alerts.Fanout
	if cfg.AlertsFile != "" {
		sinkReg, err := alerts.LoadRegistry(cfg.AlertsFile)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("load alert sinks registry: %w", err)
		}
		enabled := sinkReg.Enabled()
		pubs, err := alerts.BuildAll(ctx, alerts.DefaultRegistry(), enabled, alertLogger{})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("build alert sinks: %w", err)
		}
		fanout = alerts.NewFanout(pubs)
		sinkSummaries := make([]map[string]string, 0, len(enabled))
		for _, sinkCfg := range enabled {
			sinkSummaries = append(sinkSummaries, map[string]string{
				"id":   sinkCfg.ID,
				"type": sinkCfg.Type,
			})
		}
		logger.InfoObj("alert sinks loaded", "alerts_meta", map[string]any{
			"count": fanout.Size(),
			"sinks": sinkSummaries,
		})
	}

	return &Warmer{
		cfg:       cfg,
		engine:    engine,
		preloader: preloader,
		enricher:  enricher,
		fanout:    fanout,
		store:     store,
		interval:  cfg.RefreshInterval,
	}, nil
}

// Run starts the refresh loop until the context is cancelled.
func (w *Warmer) Run(ctx context.Context) error {
	if w == nil || w.engine == nil {
		return fmt.Errorf("warmer is not initialized")
	}
	defer w.closeStore()

	logger.InfoObj("feed warmer loop starting", "warmer_state", map[string]any{
		"country":          w.cfg.Country,
		"language":         w.cfg.Language,
		"refresh_interval": w.interval.String(),
		"alert_sinks":      w.fanout.Size(),
	})

	w.refreshOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoObj("feed warmer loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			w.refreshOnce(ctx)
		}
	}
}

// refreshOnce performs a single trending refresh pass.
func (w *Warmer) refreshOnce(ctx context.Context) {
	start := time.Now()

	articles := w.engine.FetchTrending(ctx, 1, w.cfg.Country, w.cfg.Language)
	if len(articles) == 0 {
		logger.WarnObj("trending refresh yielded no articles", "refresh_meta", map[string]any{
			"country": w.cfg.Country,
		})
		return
	}

	if w.enricher != nil {
		articles = w.enricher.FillMissingImages(ctx, articles)
	}

	preloadTargets := articles
	if w.cfg.PreloadCount > 0 && len(preloadTargets) > w.cfg.PreloadCount {
		preloadTargets = preloadTargets[:w.cfg.PreloadCount]
	}
	warmed := w.preloader.PreloadImages(ctx, preloadTargets)

	published := w.publishAlerts(ctx, articles)

	hashtags := w.engine.ExtractTrendingHashtags(articles, 5)

	logger.InfoObj("trending refresh completed", "refresh_meta", map[string]any{
		"articles":         len(articles),
		"images_warmed":    warmed,
		"alerts_published": published,
		"hashtags":         hashtags,
		"elapsed_ms":       time.Since(start).Milliseconds(),
	})
}

// publishAlerts pushes unseen top stories to the configured sinks and marks
// them so restarts and later refreshes stay quiet about them.
func (w *Warmer) publishAlerts(ctx context.Context, articles []domain.Article) int {
	if w.fanout == nil || w.fanout.Size() == 0 || w.cfg.AlertTopN <= 0 {
		return 0
	}

	top := articles
	if len(top) > w.cfg.AlertTopN {
		top = top[:w.cfg.AlertTopN]
	}

	published := 0
	for _, art := range top {
		seen, err := w.store.SeenAlert(art.URL)
		if err != nil {
			logger.WarnObj("alert dedupe check failed", "alert_error", map[string]any{
				"url":   art.URL,
				"error": err.Error(),
			})
			continue
		}
		if seen {
			continue
		}

		alert := alerts.NewAlert("trending", art, news.TrendingScore(art))
		count, err := w.fanout.Publish(ctx, alert)
		if err != nil {
			logger.WarnObj("alert publish partially failed", "alert_error", map[string]any{
				"url":       art.URL,
				"delivered": count,
				"error":     err.Error(),
			})
		}
		if count == 0 {
			continue
		}

		published++
		if err := w.store.MarkAlert(art.URL); err != nil {
			logger.WarnObj("alert mark failed", "alert_error", map[string]any{
				"url":   art.URL,
				"error": err.Error(),
			})
		}
	}
	return published
}

// closeStore closes the storage backend, logging any error.
func (w *Warmer) closeStore() {
	if w == nil || w.store == nil {
		return
	}
	if err := w.store.Close(); err != nil {
		logger.ErrorObj("storage close failed", "error", err.Error())
	}
}
