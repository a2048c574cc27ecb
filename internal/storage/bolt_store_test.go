package storage

import (
	"bytes"
	"testing"
	"time"
)

func TestBoltStoreSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	storeRaw, err := openBolt(dir+"/cache.db", normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	if _, ok, err := store.Snapshot("last_news_technology_us"); err != nil || ok {
		t.Fatalf("expected no snapshot, ok=%v err=%v", ok, err)
	}

	payload := []byte(`[{"title":"a","url":"https://x.com/a"}]`)
	if err := store.SaveSnapshot("last_news_technology_us", payload); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	got, ok, err := store.Snapshot("last_news_technology_us")
	if err != nil || !ok {
		t.Fatalf("Snapshot: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("snapshot payload mismatch: %s", got)
	}

	// Overwrite wins.
	if err := store.SaveSnapshot("last_news_technology_us", []byte("[]")); err != nil {
		t.Fatalf("SaveSnapshot overwrite: %v", err)
	}
	got, _, _ = store.Snapshot("last_news_technology_us")
	if string(got) != "[]" {
		t.Fatalf("expected overwritten snapshot, got %s", got)
	}
}

func TestBoltStoreImageStatusExpires(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		ImageStatusTTL:  1 * time.Second,
		AlertTTL:        1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}
	storeRaw, err := openBolt(dir+"/cache.db", normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	if err := store.SetImageStatus("https://cdn.example.com/a.jpg", "loaded"); err != nil {
		t.Fatalf("SetImageStatus: %v", err)
	}
	status, ok, err := store.ImageStatus("https://cdn.example.com/a.jpg")
	if err != nil || !ok || status != "loaded" {
		t.Fatalf("expected loaded status, got %q ok=%v err=%v", status, ok, err)
	}

	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	_, ok, err = store.ImageStatus("https://cdn.example.com/a.jpg")
	if err != nil {
		t.Fatalf("ImageStatus after expiry: %v", err)
	}
	if ok {
		t.Fatal("expected image status entry to expire")
	}
}

func TestBoltStoreClearImageStatuses(t *testing.T) {
	dir := t.TempDir()
	storeRaw, err := openBolt(dir+"/cache.db", normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	if err := store.SetImageStatus("u1", "loaded"); err != nil {
		t.Fatalf("SetImageStatus: %v", err)
	}
	if err := store.ClearImageStatuses(); err != nil {
		t.Fatalf("ClearImageStatuses: %v", err)
	}
	if _, ok, _ := store.ImageStatus("u1"); ok {
		t.Fatal("expected image statuses cleared")
	}

	// Bucket must remain usable after clearing.
	if err := store.SetImageStatus("u2", "failed"); err != nil {
		t.Fatalf("SetImageStatus after clear: %v", err)
	}
}

func TestBoltStoreAlertMarks(t *testing.T) {
	dir := t.TempDir()
	storeRaw, err := openBolt(dir+"/cache.db", normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	seen, err := store.SeenAlert("https://x.com/a")
	if err != nil || seen {
		t.Fatalf("expected unseen alert, seen=%v err=%v", seen, err)
	}
	if err := store.MarkAlert("https://x.com/a"); err != nil {
		t.Fatalf("MarkAlert: %v", err)
	}
	seen, err = store.SeenAlert("https://x.com/a")
	if err != nil || !seen {
		t.Fatalf("expected alert marked, seen=%v err=%v", seen, err)
	}
}

func TestNewStoreVariants(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.MarkAlert("x"); err != nil {
		t.Fatalf("noop MarkAlert: %v", err)
	}

	store, err = NewStore("memory", "", Options{})
	if err != nil {
		t.Fatalf("NewStore memory: %v", err)
	}
	if err := store.SaveSnapshot("k", []byte("v")); err != nil {
		t.Fatalf("memory SaveSnapshot: %v", err)
	}
	if data, ok, _ := store.Snapshot("k"); !ok || string(data) != "v" {
		t.Fatalf("memory Snapshot: ok=%v data=%s", ok, data)
	}

	if _, err := NewStore("cassandra", "", Options{}); err == nil {
		t.Fatal("expected error for unsupported storage type")
	}
}
