package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"github.com/xavjones8/On-Device-Models-Playground/internal/logger"
)

// KiteSource fetches historical candles from the Zerodha Kite Connect API.
// The exchange instrument dump is loaded once on first use and held for the
// life of the source.
type KiteSource struct {
	kc       *kiteconnect.Client
	exchange string
	limiter  *RateLimiter

	mu     sync.RWMutex
	tokens map[string]int
}

// NewKiteSource creates a source backed by an authenticated Kite session.
func NewKiteSource(apiKey, accessToken, exchange string) *KiteSource {
	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	return &KiteSource{
		kc:       kc,
		exchange: exchange,
		// Kite allows 3 historical requests per second
		limiter: NewRateLimiter(3, time.Second/3),
	}
}

func (s *KiteSource) Fetch(ctx context.Context, ticker string, r TimeRange) (Series, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return Series{}, ErrEmptyTicker
	}
	if !r.Valid() {
		r = DefaultRange
	}

	token, err := s.instrumentToken(ctx, ticker)
	if err != nil {
		return Series{}, err
	}

	to := time.Now()
	from := to.AddDate(0, 0, -r.Days())
	var bars []kiteconnect.HistoricalData
	err = WithRateLimit(ctx, s.limiter, func() error {
		var herr error
		bars, herr = s.kc.GetHistoricalData(token, "day", from, to, false, false)
		return herr
	})
	if err != nil {
		return Series{}, fmt.Errorf("kite historical data for %s: %w", ticker, err)
	}

	points := make([]Point, 0, len(bars))
	for _, bar := range bars {
		points = append(points, Point{
			Date:   bar.Date.Time.Format("2006-01-02"),
			Close:  bar.Close,
			Volume: int64(bar.Volume),
		})
	}
	points = sortAndDedupe(points)
	if r.Weekly() {
		points = downsampleWeekly(points)
	}
	if len(points) == 0 {
		return Series{}, fmt.Errorf("kite: no data for %s within range %s", ticker, r)
	}

	logger.Debug(ctx, "Fetched series",
		"source", "kite", "ticker", ticker, "range", string(r), "points", len(points))
	return Series{Ticker: ticker, Range: r, Points: points}, nil
}

// instrumentToken resolves a trading symbol to its instrument token, loading
// the exchange instrument dump on first use.
func (s *KiteSource) instrumentToken(ctx context.Context, ticker string) (int, error) {
	s.mu.RLock()
	token, ok := s.tokens[ticker]
	s.mu.RUnlock()
	if ok {
		return token, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		instruments, err := s.kc.GetInstrumentsByExchange(s.exchange)
		if err != nil {
			return 0, fmt.Errorf("kite instruments for %s: %w", s.exchange, err)
		}
		s.tokens = make(map[string]int, len(instruments))
		for _, in := range instruments {
			s.tokens[in.Tradingsymbol] = in.InstrumentToken
		}
		logger.Debug(ctx, "Loaded instrument map",
			"exchange", s.exchange, "instruments", len(s.tokens))
	}

	token, ok = s.tokens[ticker]
	if !ok {
		return 0, fmt.Errorf("kite: unknown symbol %s on %s", ticker, s.exchange)
	}
	return token, nil
}

// downsampleWeekly keeps every fifth trading day plus the most recent close,
// matching the weekly granularity other sources return for long ranges.
func downsampleWeekly(points []Point) []Point {
	if len(points) <= 1 {
		return points
	}
	out := make([]Point, 0, len(points)/5+1)
	for i := 0; i < len(points); i += 5 {
		out = append(out, points[i])
	}
	if last := points[len(points)-1]; out[len(out)-1].Date != last.Date {
		out = append(out, last)
	}
	return out
}
