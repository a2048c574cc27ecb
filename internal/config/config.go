package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	NewsAPIKey         string        `mapstructure:"news_api_key"`
	NewsAPIBaseURL     string        `mapstructure:"news_api_base_url"`
	Country            string        `mapstructure:"country"`
	Language           string        `mapstructure:"language"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	RefreshIntervalSeconds int64         `mapstructure:"refresh_interval_seconds"`
	RefreshInterval        time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	ImageStatusTTLSeconds  int64         `mapstructure:"image_status_ttl_seconds"`
	AlertTTLSeconds        int64         `mapstructure:"alert_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	ImageStatusTTL         time.Duration `mapstructure:"-"`
	AlertTTL               time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`

	PreloadConcurrency int `mapstructure:"preload_concurrency"`
	PreloadCount       int `mapstructure:"preload_count"`

	ScrapeMissingImages bool   `mapstructure:"scrape_missing_images"`
	AlertTopN           int    `mapstructure:"alert_top_n"`
	AlertsFile          string `mapstructure:"alerts_file"`
	HashtagsFile        string `mapstructure:"hashtags_file"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	// Every key needs a default (even an empty one) so AutomaticEnv feeds it
	// through Unmarshal.
	v.SetDefault("app_name", "samachar")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("news_api_key", "")
	v.SetDefault("news_api_base_url", "https://newsapi.org/v2")
	v.SetDefault("country", "us")
	v.SetDefault("language", "en")
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("refresh_interval_seconds", 900)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/cache.db")
	v.SetDefault("image_status_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("alert_ttl_seconds", int64((5*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
	v.SetDefault("preload_concurrency", 3)
	v.SetDefault("preload_count", 10)
	v.SetDefault("scrape_missing_images", false)
	v.SetDefault("alert_top_n", 5)
	v.SetDefault("alerts_file", "")
	v.SetDefault("hashtags_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.NewsAPIKey == "" {
		return nil, fmt.Errorf("news_api_key is required")
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	if cfg.RefreshIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid refresh_interval_seconds (must be positive seconds)")
	}
	if cfg.ImageStatusTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid image_status_ttl_seconds (must be positive seconds)")
	}
	if cfg.AlertTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid alert_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	if cfg.PreloadConcurrency <= 0 {
		cfg.PreloadConcurrency = 3
	}
	if cfg.PreloadCount < 0 {
		cfg.PreloadCount = 0
	}

	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	cfg.RefreshInterval = time.Duration(cfg.RefreshIntervalSeconds) * time.Second
	cfg.ImageStatusTTL = time.Duration(cfg.ImageStatusTTLSeconds) * time.Second
	cfg.AlertTTL = time.Duration(cfg.AlertTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}
