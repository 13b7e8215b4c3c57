package marketdata

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"
)

// MockSource generates synthetic price history for testing and offline
// development. The walk is seeded from ticker and range, so the same request
// always produces the same series within a day.
type MockSource struct{}

// NewMockSource creates a new mock source
func NewMockSource() *MockSource { return &MockSource{} }

func (m *MockSource) Fetch(_ context.Context, ticker string, r TimeRange) (Series, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return Series{}, ErrEmptyTicker
	}
	if !r.Valid() {
		r = DefaultRange
	}

	rng := rand.New(rand.NewSource(mockSeed(ticker, r)))
	price := 20 + rng.Float64()*480 // per-ticker base level

	step := 24 * time.Hour
	if r.Weekly() {
		step = 7 * 24 * time.Hour
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -r.Days())

	var points []Point
	for d := start; !d.After(end); d = d.Add(step) {
		if !r.Weekly() && (d.Weekday() == time.Saturday || d.Weekday() == time.Sunday) {
			continue
		}
		drift := (rng.Float64() - 0.48) * 0.02 // slight upward bias
		price *= 1 + drift
		if price < 1 {
			price = 1
		}
		points = append(points, Point{
			Date:   d.Format("2006-01-02"),
			Close:  math.Round(price*100) / 100,
			Volume: 100000 + rng.Int63n(900000),
		})
	}

	return Series{Ticker: ticker, Range: r, Points: points}, nil
}

func mockSeed(ticker string, r TimeRange) int64 {
	h := fnv.New64a()
	h.Write([]byte(ticker))
	h.Write([]byte(r))
	return int64(h.Sum64())
}
