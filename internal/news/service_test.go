package news

import (
	"context"
	"testing"
	"time"
)

func TestHeadlineCache(t *testing.T) {
	cache := newHeadlineCache(1 * time.Second)

	ticker := "AAPL"
	headlines := []Headline{
		{Title: "Apple ships new thing", URL: "https://example.com/a", Source: "YahooFinance", Ticker: ticker},
		{Title: "Apple beats estimates", URL: "https://example.com/b", Source: "GoogleNews", Ticker: ticker},
	}

	// Test set and get
	cache.set(ticker, headlines)

	retrieved, found := cache.get(ticker)
	if !found {
		t.Fatal("Expected to find cached headlines")
	}

	if len(retrieved) != 2 {
		t.Fatalf("Expected 2 headlines, got %d", len(retrieved))
	}

	if retrieved[0].Title != "Apple ships new thing" {
		t.Errorf("Expected first title to survive caching, got %s", retrieved[0].Title)
	}

	// Test expiration
	time.Sleep(2 * time.Second)
	_, found = cache.get(ticker)
	if found {
		t.Error("Expected cache entry to be expired")
	}
}

func TestServiceConfig(t *testing.T) {
	cfg := DefaultServiceConfig()

	if cfg.MaxHeadlines != 5 {
		t.Errorf("Expected MaxHeadlines to be 5, got %d", cfg.MaxHeadlines)
	}

	if cfg.CacheDuration != 15*time.Minute {
		t.Errorf("Expected CacheDuration to be 15 minutes, got %v", cfg.CacheDuration)
	}

	if !cfg.Enabled {
		t.Error("Expected Enabled to be true")
	}
}

func TestNewService(t *testing.T) {
	svc := NewService(DefaultServiceConfig())

	if svc == nil {
		t.Fatal("Expected service to be created")
	}

	if svc.scraper == nil {
		t.Error("Expected scraper to be initialized")
	}

	if svc.cache == nil {
		t.Error("Expected cache to be initialized")
	}
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService(&ServiceConfig{Enabled: false})
	ctx := context.Background()

	headlines, err := svc.Headlines(ctx, "AAPL", 3)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if len(headlines) != 0 {
		t.Errorf("Expected no headlines when disabled, got %d", len(headlines))
	}
}

func TestHeadlinesServedFromCache(t *testing.T) {
	svc := NewService(DefaultServiceConfig())

	cached := []Headline{
		{Title: "one", URL: "https://example.com/1", Ticker: "MSFT"},
		{Title: "two", URL: "https://example.com/2", Ticker: "MSFT"},
		{Title: "three", URL: "https://example.com/3", Ticker: "MSFT"},
	}
	svc.cache.set("MSFT", cached)

	headlines, err := svc.Headlines(context.Background(), "MSFT", 2)
	if err != nil {
		t.Fatalf("Headlines failed: %v", err)
	}

	if len(headlines) != 2 {
		t.Errorf("Expected limit to clip to 2 headlines, got %d", len(headlines))
	}

	if headlines[0].Title != "one" {
		t.Errorf("Expected cached order preserved, got %s", headlines[0].Title)
	}
}

func TestCacheCleanup(t *testing.T) {
	cache := newHeadlineCache(100 * time.Millisecond)

	// Add some entries
	for _, ticker := range []string{"AAPL", "MSFT", "TSLA"} {
		cache.set(ticker, []Headline{{Title: "t", URL: "u", Ticker: ticker}})
	}

	// Wait for expiration
	time.Sleep(200 * time.Millisecond)

	// Trigger cleanup
	cache.cleanup()

	cache.mu.RLock()
	count := len(cache.data)
	cache.mu.RUnlock()

	if count != 0 {
		t.Errorf("Expected 0 cache entries after cleanup, got %d", count)
	}
}

func TestCachedTickers(t *testing.T) {
	svc := NewService(DefaultServiceConfig())

	for _, ticker := range []string{"AAPL", "MSFT", "TSLA"} {
		svc.cache.set(ticker, []Headline{{Title: "t", URL: "u", Ticker: ticker}})
	}

	cached := svc.CachedTickers()

	if len(cached) != 3 {
		t.Errorf("Expected 3 cached tickers, got %d", len(cached))
	}
}

func TestClearCache(t *testing.T) {
	svc := NewService(DefaultServiceConfig())

	svc.cache.set("AAPL", []Headline{{Title: "t", URL: "u", Ticker: "AAPL"}})

	if len(svc.CachedTickers()) != 1 {
		t.Fatal("Expected 1 cached ticker")
	}

	svc.ClearCache()

	if len(svc.CachedTickers()) != 0 {
		t.Errorf("Expected 0 cached tickers after clear, got %d", len(svc.CachedTickers()))
	}
}

func TestDefaultSourceTable(t *testing.T) {
	sources := defaultSources()

	if len(sources) != 2 {
		t.Fatalf("Expected 2 default sources, got %d", len(sources))
	}

	for _, source := range sources {
		if source.Selectors.Container == "" || source.Selectors.Title == "" {
			t.Errorf("Source %s is missing selectors", source.Name)
		}
		if hostOf(source.BaseURL) == "" {
			t.Errorf("Source %s has an unparsable base URL", source.Name)
		}
	}
}
