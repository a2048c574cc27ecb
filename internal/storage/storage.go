package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage provides the durable key-value layer behind the feed
// pipeline: last-known-good page-1 snapshots, image preload statuses and
// alert dedupe marks. Snapshots are overwritten on every successful fetch
// and carry no TTL; staleness is accepted. Image statuses and alert marks
// expire so the store cannot grow without bound.

// Store is the persistence contract consumed by the adapter, the image
// preloader and the feed warmer.
type Store interface {
	Close() error

	// Snapshot returns the cached page-1 article list for key, if any.
	Snapshot(key string) ([]byte, bool, error)
	// SaveSnapshot overwrites the snapshot for key.
	SaveSnapshot(key string, data []byte) error

	// ImageStatus returns the recorded preload status for a normalized
	// image URL ("loaded" or "failed").
	ImageStatus(url string) (string, bool, error)
	// SetImageStatus records the preload outcome for a normalized image URL.
	SetImageStatus(url, status string) error
	// ClearImageStatuses drops all recorded preload statuses.
	ClearImageStatuses() error

	// SeenAlert reports whether an alert for id was already published.
	SeenAlert(id string) (bool, error)
	// MarkAlert records that an alert for id has been published.
	MarkAlert(id string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	ImageStatusTTL  time.Duration
	AlertTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultImageStatusTTL  = 7 * 24 * time.Hour
	defaultAlertTTL        = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "memory":
		return NewMemoryStore(), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.ImageStatusTTL <= 0 {
		opts.ImageStatusTTL = defaultImageStatusTTL
	}
	if opts.AlertTTL <= 0 {
		opts.AlertTTL = defaultAlertTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                             { return nil }
func (noopStore) Snapshot(string) ([]byte, bool, error)    { return nil, false, nil }
func (noopStore) SaveSnapshot(string, []byte) error        { return nil }
func (noopStore) ImageStatus(string) (string, bool, error) { return "", false, nil }
func (noopStore) SetImageStatus(string, string) error      { return nil }
func (noopStore) ClearImageStatuses() error                { return nil }
func (noopStore) SeenAlert(string) (bool, error)           { return false, nil }
func (noopStore) MarkAlert(string) error                   { return nil }
