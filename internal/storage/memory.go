package storage

import "sync"

// MemoryStore is an in-memory Store used by tests and by deployments that
// opt out of durable caching. Expiry is not modeled; entries live until
// cleared or the process exits.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
	images    map[string]string
	alerts    map[string]struct{}
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string][]byte),
		images:    make(map[string]string),
		alerts:    make(map[string]struct{}),
	}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) Snapshot(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.snapshots[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (m *MemoryStore) SaveSnapshot(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) ImageStatus(url string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status, ok := m.images[url]
	return status, ok, nil
}

func (m *MemoryStore) SetImageStatus(url, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[url] = status
	return nil
}

func (m *MemoryStore) ClearImageStatuses() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images = make(map[string]string)
	return nil
}

func (m *MemoryStore) SeenAlert(id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.alerts[id]
	return ok, nil
}

func (m *MemoryStore) MarkAlert(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts[id] = struct{}{}
	return nil
}
