package marketdata

import (
	"errors"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	cache := NewCache(t.TempDir(), 1*time.Hour)

	key := "alphavantage|AAPL|3M"
	payload := []byte(`{"points":3}`)

	if err := cache.Set(key, payload); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found := cache.Get(key)
	if !found {
		t.Fatal("Expected to find cached payload")
	}
	if string(got) != string(payload) {
		t.Errorf("Expected payload %s, got %s", payload, got)
	}

	// A different key misses
	if _, found := cache.Get("alphavantage|MSFT|3M"); found {
		t.Error("Expected miss for unknown key")
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(t.TempDir(), 50*time.Millisecond)

	cache.Set("k", []byte("v"))
	time.Sleep(100 * time.Millisecond)

	if _, found := cache.Get("k"); found {
		t.Error("Expected cache entry to be expired")
	}
}

func TestCacheDelete(t *testing.T) {
	cache := NewCache(t.TempDir(), 1*time.Hour)

	cache.Set("k", []byte("v"))
	if err := cache.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, found := cache.Get("k"); found {
		t.Error("Expected entry to be gone after delete")
	}
}

func TestCacheGetOrFetch(t *testing.T) {
	cache := NewCache(t.TempDir(), 1*time.Hour)

	calls := 0
	fetch := func() ([]byte, error) {
		calls++
		return []byte("fresh"), nil
	}

	// First call fetches
	data, err := cache.GetOrFetch("k", fetch)
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if string(data) != "fresh" {
		t.Errorf("Expected fresh payload, got %s", data)
	}
	if calls != 1 {
		t.Errorf("Expected 1 fetch call, got %d", calls)
	}

	// Second call hits the cache
	data, err = cache.GetOrFetch("k", fetch)
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if string(data) != "fresh" {
		t.Errorf("Expected cached payload, got %s", data)
	}
	if calls != 1 {
		t.Errorf("Expected fetch to be skipped, got %d calls", calls)
	}
}

func TestCacheGetOrFetchError(t *testing.T) {
	cache := NewCache(t.TempDir(), 1*time.Hour)

	wantErr := errors.New("provider down")
	_, err := cache.GetOrFetch("k", func() ([]byte, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected fetch error to propagate, got %v", err)
	}

	// Failed fetches are not cached
	if _, found := cache.Get("k"); found {
		t.Error("Expected no cache entry after failed fetch")
	}
}

func TestCacheCleanupExpired(t *testing.T) {
	cache := NewCache(t.TempDir(), 50*time.Millisecond)

	cache.Set("a", []byte("1"))
	cache.Set("b", []byte("2"))
	time.Sleep(100 * time.Millisecond)

	if err := cache.CleanupExpired(); err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}

	if _, found := cache.Get("a"); found {
		t.Error("Expected entry a to be cleaned up")
	}
	if _, found := cache.Get("b"); found {
		t.Error("Expected entry b to be cleaned up")
	}
}
