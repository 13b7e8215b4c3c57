package news

import (
	"context"
	"sync"
	"time"

	"github.com/xavjones8/On-Device-Models-Playground/internal/logger"
	"github.com/xavjones8/On-Device-Models-Playground/internal/store"
)

// Service provides cached headline lookups for research reports
type Service struct {
	scraper *Scraper
	cache   *headlineCache
	cfg     *ServiceConfig
}

// ServiceConfig configures the headline service
type ServiceConfig struct {
	MaxHeadlines   int           // Maximum headlines to scrape per ticker
	CacheDuration  time.Duration // How long to cache scraped headlines
	ScraperTimeout time.Duration // Timeout for scraping operations
	Enabled        bool          // Whether headline lookups are enabled
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxHeadlines:   5,
		CacheDuration:  15 * time.Minute,
		ScraperTimeout: 10 * time.Second,
		Enabled:        true,
	}
}

// FromConfig builds a ServiceConfig from the application config
func FromConfig(cfg *store.Config) *ServiceConfig {
	return &ServiceConfig{
		MaxHeadlines:   cfg.News.MaxHeadlines,
		CacheDuration:  time.Duration(cfg.News.CacheMinutes) * time.Minute,
		ScraperTimeout: time.Duration(cfg.News.TimeoutSeconds) * time.Second,
		Enabled:        cfg.News.Enabled,
	}
}

// headlineCache stores scraped headlines temporarily
type headlineCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
}

type cacheEntry struct {
	headlines []Headline
	timestamp time.Time
}

// newHeadlineCache creates a new cache
func newHeadlineCache(ttl time.Duration) *headlineCache {
	cache := &headlineCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}

	// Start cleanup goroutine
	go cache.cleanupLoop()

	return cache
}

// get retrieves cached headlines if still valid
func (c *headlineCache) get(ticker string) ([]Headline, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[ticker]
	if !exists {
		return nil, false
	}

	if time.Since(entry.timestamp) > c.ttl {
		return nil, false
	}

	return entry.headlines, true
}

// set stores headlines in cache
func (c *headlineCache) set(ticker string, headlines []Headline) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[ticker] = &cacheEntry{
		headlines: headlines,
		timestamp: time.Now(),
	}
}

// cleanupLoop periodically removes expired entries
func (c *headlineCache) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

// cleanup removes expired entries
func (c *headlineCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for ticker, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, ticker)
		}
	}
}

// NewService creates a new headline service
func NewService(cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}

	return &Service{
		scraper: NewScraper(cfg.ScraperTimeout),
		cache:   newHeadlineCache(cfg.CacheDuration),
		cfg:     cfg,
	}
}

// Headlines returns recent headlines for a ticker, cached or fresh. Scrape
// failures degrade to an empty result so report generation never fails on
// news availability.
func (s *Service) Headlines(ctx context.Context, ticker string, limit int) ([]Headline, error) {
	if !s.cfg.Enabled {
		return nil, nil
	}
	if limit <= 0 || limit > s.cfg.MaxHeadlines {
		limit = s.cfg.MaxHeadlines
	}

	if cached, ok := s.cache.get(ticker); ok {
		logger.Debug(ctx, "Using cached headlines", "ticker", ticker, "count", len(cached))
		return clip(cached, limit), nil
	}

	headlines, err := s.scraper.Scrape(ctx, ticker, s.cfg.MaxHeadlines)
	if err != nil {
		logger.Warn(ctx, "Headline scrape failed", "ticker", ticker, "error", err.Error())
		return nil, nil
	}

	s.cache.set(ticker, headlines)
	return clip(headlines, limit), nil
}

// ClearCache removes all cached headlines
func (s *Service) ClearCache() {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	s.cache.data = make(map[string]*cacheEntry)
}

// CachedTickers returns the tickers with cached headlines
func (s *Service) CachedTickers() []string {
	s.cache.mu.RLock()
	defer s.cache.mu.RUnlock()

	tickers := make([]string, 0, len(s.cache.data))
	for ticker := range s.cache.data {
		tickers = append(tickers, ticker)
	}
	return tickers
}

func clip(headlines []Headline, limit int) []Headline {
	if len(headlines) <= limit {
		return headlines
	}
	return headlines[:limit]
}
