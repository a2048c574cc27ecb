package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	snapshotBucket    = "snapshots"
	imageStatusBucket = "image_status"
	alertBucket       = "alerts"

	expiryPrefixBytes = 8
)

// boltStore implements Store backed by BoltDB. Expiring buckets store an
// 8-byte big-endian unix expiry before the value; the snapshot bucket stores
// raw values with no expiry.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	imageStatusTTL  time.Duration
	alertTTL        time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{snapshotBucket, imageStatusBucket, alertBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	store := &boltStore{
		db:              db,
		imageStatusTTL:  opts.ImageStatusTTL,
		alertTTL:        opts.AlertTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Snapshot returns the cached page-1 payload for key.
func (b *boltStore) Snapshot(key string) ([]byte, bool, error) {
	if b == nil || b.db == nil {
		return nil, false, nil
	}

	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(snapshotBucket))
		if bucket == nil {
			return fmt.Errorf("snapshot bucket missing")
		}
		if value := bucket.Get([]byte(key)); value != nil {
			out = append([]byte(nil), value...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

// SaveSnapshot overwrites the page-1 payload for key. Last write wins.
func (b *boltStore) SaveSnapshot(key string, data []byte) error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(snapshotBucket))
		if bucket == nil {
			return fmt.Errorf("snapshot bucket missing")
		}
		return bucket.Put([]byte(key), data)
	})
}

// ImageStatus returns the recorded preload status for url, honoring expiry.
func (b *boltStore) ImageStatus(url string) (string, bool, error) {
	if b == nil || b.db == nil {
		return "", false, nil
	}

	if err := b.maybeCleanupExpired(time.Now()); err != nil {
		return "", false, err
	}

	var (
		status string
		found  bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(imageStatusBucket))
		if bucket == nil {
			return fmt.Errorf("image status bucket missing")
		}

		key := []byte(url)
		value := bucket.Get(key)
		if value == nil {
			return nil
		}

		expiry, payload, ok := decodeExpiring(value)
		if !ok || !expiry.After(time.Now()) {
			return bucket.Delete(key)
		}

		status = string(payload)
		found = true
		return nil
	})
	return status, found, err
}

// SetImageStatus records the preload outcome for url with the configured TTL.
func (b *boltStore) SetImageStatus(url, status string) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(imageStatusBucket))
		if bucket == nil {
			return fmt.Errorf("image status bucket missing")
		}
		return bucket.Put([]byte(url), encodeExpiring(now.Add(b.imageStatusTTL), []byte(status)))
	})
}

// ClearImageStatuses drops the whole image status bucket.
func (b *boltStore) ClearImageStatuses() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(imageStatusBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(imageStatusBucket))
		return err
	})
}

// SeenAlert checks whether an alert for id was already published.
func (b *boltStore) SeenAlert(id string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	if err := b.maybeCleanupExpired(time.Now()); err != nil {
		return false, err
	}

	var exists bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(alertBucket))
		if bucket == nil {
			return fmt.Errorf("alert bucket missing")
		}

		key := []byte(id)
		value := bucket.Get(key)
		if value == nil {
			return nil
		}

		expiry, _, ok := decodeExpiring(value)
		if !ok || !expiry.After(time.Now()) {
			return bucket.Delete(key)
		}

		exists = true
		return nil
	})
	return exists, err
}

// MarkAlert records that an alert for id has been published.
func (b *boltStore) MarkAlert(id string) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(alertBucket))
		if bucket == nil {
			return fmt.Errorf("alert bucket missing")
		}
		return bucket.Put([]byte(id), encodeExpiring(now.Add(b.alertTTL), nil))
	})
}

// maybeCleanupExpired sweeps expired entries from the expiring buckets on a
// fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{imageStatusBucket, alertBucket} {
			bucket := tx.Bucket([]byte(name))
			if bucket == nil {
				return fmt.Errorf("%s bucket missing", name)
			}

			cursor := bucket.Cursor()
			for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
				expiry, _, ok := decodeExpiring(v)
				if !ok || !expiry.After(now) {
					if err := cursor.Delete(); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// encodeExpiring prefixes payload with the big-endian unix expiry.
func encodeExpiring(expiry time.Time, payload []byte) []byte {
	buf := make([]byte, expiryPrefixBytes+len(payload))
	binary.BigEndian.PutUint64(buf, uint64(expiry.Unix()))
	copy(buf[expiryPrefixBytes:], payload)
	return buf
}

// decodeExpiring splits a stored value into expiry and payload.
func decodeExpiring(value []byte) (time.Time, []byte, bool) {
	if len(value) < expiryPrefixBytes {
		return time.Time{}, nil, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryPrefixBytes]))
	if unix <= 0 {
		return time.Time{}, nil, false
	}
	return time.Unix(unix, 0), value[expiryPrefixBytes:], true
}
