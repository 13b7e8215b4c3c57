package marketdata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/xavjones8/On-Device-Models-Playground/internal/store"
)

var (
	ErrUnknownProvider = errors.New("unknown market data provider")
	ErrEmptyTicker     = errors.New("ticker is empty")
)

// Source fetches a price series for a ticker over a coarse time range.
// Implementations own their caching and rate limiting; callers treat a
// returned Series as immutable.
type Source interface {
	Fetch(ctx context.Context, ticker string, r TimeRange) (Series, error)
}

// NewSource builds the provider selected by configuration. Provider
// credentials come from the environment variables the config names, never
// from the config file itself.
func NewSource(cfg *store.Config) (Source, error) {
	switch cfg.MarketData.Provider {
	case "MOCK":
		return NewMockSource(), nil
	case "ALPHAVANTAGE":
		apiKey := os.Getenv(cfg.MarketData.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("alpha vantage: environment variable %s is not set", cfg.MarketData.APIKeyEnv)
		}
		return NewAlphaVantageSource(apiKey,
			WithCache(cfg.MarketData.CacheDir, time.Duration(cfg.MarketData.CacheTTLHours)*time.Hour),
			WithRequestsPerMinute(cfg.MarketData.RatePerMinute),
		), nil
	case "KITE":
		apiKey := os.Getenv(cfg.MarketData.Kite.APIKeyEnv)
		accessToken := os.Getenv(cfg.MarketData.Kite.AccessTokenEnv)
		if apiKey == "" || accessToken == "" {
			return nil, fmt.Errorf("kite: environment variables %s and %s must both be set",
				cfg.MarketData.Kite.APIKeyEnv, cfg.MarketData.Kite.AccessTokenEnv)
		}
		return NewKiteSource(apiKey, accessToken, cfg.MarketData.Kite.Exchange), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.MarketData.Provider)
	}
}
