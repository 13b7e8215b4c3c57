package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavjones8/On-Device-Models-Playground/internal/store"
)

func TestNewSourceMock(t *testing.T) {
	cfg := &store.Config{}
	cfg.MarketData.Provider = "MOCK"

	src, err := NewSource(cfg)
	require.NoError(t, err)
	assert.IsType(t, &MockSource{}, src)
}

func TestNewSourceAlphaVantage(t *testing.T) {
	cfg := &store.Config{}
	cfg.MarketData.Provider = "ALPHAVANTAGE"
	cfg.MarketData.APIKeyEnv = "TEST_AV_KEY"
	cfg.MarketData.CacheDir = t.TempDir()
	cfg.MarketData.CacheTTLHours = 24
	cfg.MarketData.RatePerMinute = 5

	// Missing credential is an error, not a silent mock fallback
	_, err := NewSource(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_AV_KEY")

	t.Setenv("TEST_AV_KEY", "demo")
	src, err := NewSource(cfg)
	require.NoError(t, err)
	assert.IsType(t, &AlphaVantageSource{}, src)
}

func TestNewSourceKiteMissingCredentials(t *testing.T) {
	cfg := &store.Config{}
	cfg.MarketData.Provider = "KITE"
	cfg.MarketData.Kite.APIKeyEnv = "TEST_KITE_KEY"
	cfg.MarketData.Kite.AccessTokenEnv = "TEST_KITE_TOKEN"

	t.Setenv("TEST_KITE_KEY", "key-only")
	_, err := NewSource(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_KITE_TOKEN")
}

func TestNewSourceUnknownProvider(t *testing.T) {
	cfg := &store.Config{}
	cfg.MarketData.Provider = "YAHOO"

	_, err := NewSource(cfg)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
