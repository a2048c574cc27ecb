package bookmarks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/samachar-app/samachar/internal/domain"
)

const (
	bookmarkBucket   = "bookmarks"
	preferenceBucket = "preferences"
)

// ErrClosed is returned when the manager is used after Close.
var ErrClosed = errors.New("bookmark store is closed")

// Preferences are the per-user reading settings the client syncs.
type Preferences struct {
	Country    string   `json:"country,omitempty"`
	Language   string   `json:"language,omitempty"`
	Categories []string `json:"categories,omitempty"`
	DarkMode   bool     `json:"darkMode,omitempty"`
}

// Manager persists per-user saved articles and preferences in BoltDB.
// Bookmarks live in per-user nested buckets keyed by article URL; values are
// the article JSON with a saved-at timestamp alongside.
type Manager struct {
	db *bolt.DB
}

type savedArticle struct {
	Article domain.Article `json:"article"`
	SavedAt time.Time      `json:"savedAt"`
}

// Open opens (creating if needed) the bookmark database at path.
func Open(path string) (*Manager, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("bookmark db path is empty")
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create bookmark directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bookmark db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bookmarkBucket, preferenceBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bookmark buckets: %w", err)
	}

	return &Manager{db: db}, nil
}

// Close closes the underlying database.
func (m *Manager) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Add saves an article for user. Saving the same URL twice refreshes the
// stored copy and timestamp.
func (m *Manager) Add(user string, article domain.Article) error {
	if m == nil || m.db == nil {
		return ErrClosed
	}
	if strings.TrimSpace(user) == "" {
		return errors.New("user id is empty")
	}
	if strings.TrimSpace(article.URL) == "" {
		return errors.New("article has no URL")
	}

	value, err := json.Marshal(savedArticle{Article: article, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode bookmark: %w", err)
	}

	return m.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(bookmarkBucket))
		if root == nil {
			return errors.New("bookmark bucket missing")
		}
		userBucket, err := root.CreateBucketIfNotExists([]byte(user))
		if err != nil {
			return err
		}
		return userBucket.Put([]byte(article.URL), value)
	})
}

// Remove deletes a saved article by URL. Removing an absent URL is not an
// error.
func (m *Manager) Remove(user, articleURL string) error {
	if m == nil || m.db == nil {
		return ErrClosed
	}
	return m.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(bookmarkBucket))
		if root == nil {
			return errors.New("bookmark bucket missing")
		}
		userBucket := root.Bucket([]byte(user))
		if userBucket == nil {
			return nil
		}
		return userBucket.Delete([]byte(articleURL))
	})
}

// IsBookmarked reports whether user has saved articleURL.
func (m *Manager) IsBookmarked(user, articleURL string) (bool, error) {
	if m == nil || m.db == nil {
		return false, ErrClosed
	}
	var saved bool
	err := m.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(bookmarkBucket))
		if root == nil {
			return errors.New("bookmark bucket missing")
		}
		userBucket := root.Bucket([]byte(user))
		if userBucket == nil {
			return nil
		}
		saved = userBucket.Get([]byte(articleURL)) != nil
		return nil
	})
	return saved, err
}

// List returns user's saved articles, newest save first.
func (m *Manager) List(user string) ([]domain.Article, error) {
	if m == nil || m.db == nil {
		return nil, ErrClosed
	}

	var entries []savedArticle
	err := m.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(bookmarkBucket))
		if root == nil {
			return errors.New("bookmark bucket missing")
		}
		userBucket := root.Bucket([]byte(user))
		if userBucket == nil {
			return nil
		}
		return userBucket.ForEach(func(_, v []byte) error {
			var entry savedArticle
			if err := json.Unmarshal(v, &entry); err != nil {
				// Skip undecodable entries rather than failing the listing.
				return nil
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SavedAt.After(entries[j].SavedAt)
	})

	out := make([]domain.Article, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Article)
	}
	return out, nil
}

// SavePreferences overwrites user's preferences.
func (m *Manager) SavePreferences(user string, prefs Preferences) error {
	if m == nil || m.db == nil {
		return ErrClosed
	}
	if strings.TrimSpace(user) == "" {
		return errors.New("user id is empty")
	}

	value, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	return m.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(preferenceBucket))
		if bucket == nil {
			return errors.New("preference bucket missing")
		}
		return bucket.Put([]byte(user), value)
	})
}

// Preferences returns user's stored preferences, or zero preferences when
// none were saved.
func (m *Manager) Preferences(user string) (Preferences, error) {
	if m == nil || m.db == nil {
		return Preferences{}, ErrClosed
	}

	var prefs Preferences
	err := m.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(preferenceBucket))
		if bucket == nil {
			return errors.New("preference bucket missing")
		}
		value := bucket.Get([]byte(user))
		if value == nil {
			return nil
		}
		return json.Unmarshal(value, &prefs)
	})
	return prefs, err
}
