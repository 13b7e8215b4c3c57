package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/xavjones8/On-Device-Models-Playground/internal/api"
	"github.com/xavjones8/On-Device-Models-Playground/internal/logger"
)

const alphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantageSource fetches daily and weekly close series from the Alpha
// Vantage REST API. The free tier allows a handful of requests per minute,
// so every request passes a token bucket and successful payloads are cached
// on disk.
type AlphaVantageSource struct {
	client  *api.Client
	baseURL string
	apiKey  string
	cache   *Cache
	limiter *RateLimiter
}

// AlphaVantageOption configures the source
type AlphaVantageOption func(*AlphaVantageSource)

// WithCache enables the file-backed response cache
func WithCache(dir string, ttl time.Duration) AlphaVantageOption {
	return func(s *AlphaVantageSource) {
		s.cache = NewCache(dir, ttl)
	}
}

// WithRequestsPerMinute sets the provider request budget
func WithRequestsPerMinute(n int) AlphaVantageOption {
	return func(s *AlphaVantageSource) {
		if n > 0 {
			s.limiter = NewRateLimiter(n, time.Minute/time.Duration(n))
		}
	}
}

// WithBaseURL points the source at a different endpoint, used by tests
func WithBaseURL(u string) AlphaVantageOption {
	return func(s *AlphaVantageSource) {
		s.baseURL = u
	}
}

// NewAlphaVantageSource creates the source with the free-tier request budget
// by default
func NewAlphaVantageSource(apiKey string, opts ...AlphaVantageOption) *AlphaVantageSource {
	s := &AlphaVantageSource{
		apiKey:  apiKey,
		baseURL: alphaVantageBaseURL,
		limiter: NewRateLimiter(5, 12*time.Second),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache != nil {
		// Sweep payloads left behind by earlier runs
		s.cache.CleanupExpired()
	}
	s.client = api.NewClient(
		api.WithBaseURL(s.baseURL),
		api.WithTimeout(20*time.Second),
		api.WithHeader("Accept", "application/json"),
		api.WithLogging(true),
	)
	return s
}

func (s *AlphaVantageSource) Fetch(ctx context.Context, ticker string, r TimeRange) (Series, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return Series{}, ErrEmptyTicker
	}
	if !r.Valid() {
		r = DefaultRange
	}

	key := fmt.Sprintf("alphavantage|%s|%s", ticker, r)
	fetch := func() ([]byte, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		req := api.NewRequest(http.MethodGet, s.queryPath(ticker, r)).WithContext(ctx)
		// Retries count against the free-tier minute budget, so back off
		// well past the request interval before trying again.
		resp, err := s.client.DoWithRetry(req, &api.RetryConfig{
			MaxAttempts: 3,
			InitialWait: 2 * time.Second,
			MaxWait:     15 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("alpha vantage request: %w", err)
		}
		return resp.Body, nil
	}

	var body []byte
	var err error
	if s.cache != nil {
		body, err = s.cache.GetOrFetch(key, fetch)
	} else {
		body, err = fetch()
	}
	if err != nil {
		return Series{}, err
	}

	series, err := parseAlphaVantage(body, ticker, r)
	if err != nil {
		// Drop the cached payload so the next call refetches
		if s.cache != nil {
			s.cache.Delete(key)
		}
		return Series{}, err
	}

	logger.Debug(ctx, "Fetched series",
		"source", "alphavantage", "ticker", ticker, "range", string(r), "points", series.Len())
	return series, nil
}

func (s *AlphaVantageSource) queryPath(ticker string, r TimeRange) string {
	q := url.Values{}
	if r.Weekly() {
		q.Set("function", "TIME_SERIES_WEEKLY")
	} else {
		q.Set("function", "TIME_SERIES_DAILY")
		// 100 most recent bars, enough for the daily-sampled ranges
		q.Set("outputsize", "compact")
	}
	q.Set("symbol", ticker)
	q.Set("apikey", s.apiKey)
	return "/query?" + q.Encode()
}

func parseAlphaVantage(body []byte, ticker string, r TimeRange) (Series, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Series{}, fmt.Errorf("alpha vantage payload: %w", err)
	}

	// The API reports problems inside a 200 response
	for _, k := range []string{"Error Message", "Note", "Information"} {
		if raw, ok := envelope[k]; ok {
			var msg string
			json.Unmarshal(raw, &msg)
			return Series{}, fmt.Errorf("alpha vantage: %s", msg)
		}
	}

	seriesKey := "Time Series (Daily)"
	if r.Weekly() {
		seriesKey = "Weekly Time Series"
	}
	raw, ok := envelope[seriesKey]
	if !ok {
		return Series{}, fmt.Errorf("alpha vantage: payload has no %q section", seriesKey)
	}

	var bars map[string]map[string]string
	if err := json.Unmarshal(raw, &bars); err != nil {
		return Series{}, fmt.Errorf("alpha vantage bars: %w", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -r.Days()).Format("2006-01-02")
	points := make([]Point, 0, len(bars))
	for date, bar := range bars {
		if date < cutoff {
			continue
		}
		closePx, err := strconv.ParseFloat(bar["4. close"], 64)
		if err != nil {
			continue // skip malformed bars
		}
		volume, _ := strconv.ParseInt(bar["5. volume"], 10, 64)
		points = append(points, Point{Date: date, Close: closePx, Volume: volume})
	}

	points = sortAndDedupe(points)
	if len(points) == 0 {
		return Series{}, fmt.Errorf("alpha vantage: no data for %s within range %s", ticker, r)
	}
	return Series{Ticker: ticker, Range: r, Points: points}, nil
}
