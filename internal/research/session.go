package research

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/xavjones8/On-Device-Models-Playground/internal/logger"
	"github.com/xavjones8/On-Device-Models-Playground/internal/marketdata"
	"github.com/xavjones8/On-Device-Models-Playground/internal/metrics"
	"github.com/xavjones8/On-Device-Models-Playground/internal/news"
	"github.com/xavjones8/On-Device-Models-Playground/internal/trace"
)

// HeadlineProvider supplies recent headlines for a ticker. The news service
// implements it; a nil provider disables the headline sections of reports.
type HeadlineProvider interface {
	Headlines(ctx context.Context, ticker string, limit int) ([]news.Headline, error)
}

// Session is one research conversation's working set. Fetched series are
// cached per session, keyed by normalized ticker, so repeated tool calls
// reuse data instead of burning provider quota. Tools other than Fetch never
// fetch: callers must run the two phases in order, and the not-fetched error
// tells the model to do exactly that.
type Session struct {
	id              string
	source          marketdata.Source
	news            HeadlineProvider
	maxChartPoints  int
	smaPeriod       int
	reportHeadlines int

	mu     sync.RWMutex
	series map[string]marketdata.Series
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithNews attaches a headline provider for reports
func WithNews(p HeadlineProvider) SessionOption {
	return func(s *Session) { s.news = p }
}

// WithChartPoints caps the number of points Chart returns
func WithChartPoints(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.maxChartPoints = n
		}
	}
}

// WithSMAPeriod sets the moving-average window for chart overlays
func WithSMAPeriod(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.smaPeriod = n
		}
	}
}

// WithReportHeadlines sets how many headlines a report includes
func WithReportHeadlines(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.reportHeadlines = n
		}
	}
}

// NewSession creates a research session around a market data source.
func NewSession(source marketdata.Source, opts ...SessionOption) *Session {
	s := &Session{
		id:              uuid.NewString(),
		source:          source,
		maxChartPoints:  120,
		smaPeriod:       20,
		reportHeadlines: 3,
		series:          make(map[string]marketdata.Series),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Fetch is phase one: pull a series from the data source and cache it. A
// ticker already cached with the same range is served from the cache; a
// different range refetches and replaces the cached series.
func (s *Session) Fetch(ctx context.Context, ticker string, r marketdata.TimeRange) (marketdata.Series, error) {
	ctx, span := trace.StartSpan(ctx, "research.Fetch")
	defer span.End()

	t := marketdata.NormalizeTicker(ticker)
	if t == "" {
		return marketdata.Series{}, marketdata.ErrEmptyTicker
	}
	if !r.Valid() {
		r = marketdata.DefaultRange
	}

	s.mu.RLock()
	cached, ok := s.series[t]
	s.mu.RUnlock()
	if ok && cached.Range == r {
		logger.Research(ctx, t, "fetch", "cache", "hit", "range", string(r))
		return cached, nil
	}

	series, err := s.source.Fetch(ctx, t, r)
	if err != nil {
		span.RecordError(err)
		return marketdata.Series{}, fmt.Errorf("fetch %s: %w", t, err)
	}

	s.mu.Lock()
	s.series[t] = series
	s.mu.Unlock()

	logger.Research(ctx, t, "fetch",
		"cache", "miss", "range", string(r), "points", series.Len())
	return series, nil
}

// Cached returns the session's series for a ticker, or a NotFetchedError if
// phase one has not happened.
func (s *Session) Cached(ticker string) (marketdata.Series, error) {
	t := marketdata.NormalizeTicker(ticker)

	s.mu.RLock()
	defer s.mu.RUnlock()
	series, ok := s.series[t]
	if !ok {
		return marketdata.Series{}, &NotFetchedError{Ticker: t}
	}
	return series, nil
}

// CachedTickers lists the tickers fetched so far, sorted.
func (s *Session) CachedTickers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tickers := make([]string, 0, len(s.series))
	for t := range s.series {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// Metrics computes summary statistics over the cached series. It never
// triggers a fetch.
func (s *Session) Metrics(ctx context.Context, ticker string) (metrics.Summary, error) {
	ctx, span := trace.StartSpan(ctx, "research.Metrics")
	defer span.End()

	series, err := s.Cached(ticker)
	if err != nil {
		return metrics.Summary{}, err
	}

	logger.Research(ctx, series.Ticker, "metrics", "points", series.Len())
	return metrics.Compute(series), nil
}

// Comparison pairs two summaries with the correlation of their returns.
type Comparison struct {
	A            metrics.Summary `json:"a"`
	B            metrics.Summary `json:"b"`
	Correlation  float64         `json:"correlation"`
	Relationship string          `json:"relationship"`
}

// Compare computes both summaries and the return correlation. Both tickers
// must already be fetched.
func (s *Session) Compare(ctx context.Context, tickerA, tickerB string) (Comparison, error) {
	ctx, span := trace.StartSpan(ctx, "research.Compare")
	defer span.End()

	sa, err := s.Cached(tickerA)
	if err != nil {
		return Comparison{}, err
	}
	sb, err := s.Cached(tickerB)
	if err != nil {
		return Comparison{}, err
	}

	corr := metrics.Correlation(sa, sb)
	logger.Research(ctx, sa.Ticker, "compare", "other", sb.Ticker, "correlation", corr)

	return Comparison{
		A:            metrics.Compute(sa),
		B:            metrics.Compute(sb),
		Correlation:  corr,
		Relationship: relationship(corr),
	}, nil
}

// relationship words a correlation coefficient for report text.
func relationship(corr float64) string {
	switch {
	case corr >= 0.7:
		return "strongly correlated"
	case corr >= 0.3:
		return "moderately correlated"
	case corr > -0.3:
		return "weakly correlated"
	default:
		return "inversely correlated"
	}
}

// ChartPoint is one downsampled plot coordinate. SMA is nil where the
// moving-average window has not filled yet.
type ChartPoint struct {
	Date  string   `json:"date"`
	Close float64  `json:"close"`
	SMA   *float64 `json:"sma,omitempty"`
}

// ChartData is the shape the UI plots directly.
type ChartData struct {
	Ticker string               `json:"ticker"`
	Range  marketdata.TimeRange `json:"range"`
	Points []ChartPoint         `json:"points"`
}

// Chart downsamples the cached series to at most maxPoints evenly strided
// points, always keeping the most recent close, with an SMA overlay.
// maxPoints <= 0 uses the session default.
func (s *Session) Chart(ctx context.Context, ticker string, maxPoints int) (ChartData, error) {
	ctx, span := trace.StartSpan(ctx, "research.Chart")
	defer span.End()

	series, err := s.Cached(ticker)
	if err != nil {
		return ChartData{}, err
	}
	if maxPoints <= 0 {
		maxPoints = s.maxChartPoints
	}

	sma := metrics.SMA(series.Closes(), s.smaPeriod)
	indexes := strideIndexes(series.Len(), maxPoints)
	points := make([]ChartPoint, 0, len(indexes))
	for _, i := range indexes {
		p := ChartPoint{Date: series.Points[i].Date, Close: series.Points[i].Close}
		if i < len(sma) && !math.IsNaN(sma[i]) {
			v := sma[i]
			p.SMA = &v
		}
		points = append(points, p)
	}

	logger.Research(ctx, series.Ticker, "chart", "points", len(points))
	return ChartData{Ticker: series.Ticker, Range: series.Range, Points: points}, nil
}

// strideIndexes picks at most max evenly strided indexes from 0..n-1,
// always including the last.
func strideIndexes(n, max int) []int {
	if n <= 0 {
		return nil
	}
	if n <= max {
		indexes := make([]int, n)
		for i := range indexes {
			indexes[i] = i
		}
		return indexes
	}

	stride := (n + max - 1) / max
	indexes := make([]int, 0, max+1)
	for i := 0; i < n; i += stride {
		indexes = append(indexes, i)
	}
	if indexes[len(indexes)-1] != n-1 {
		indexes = append(indexes, n-1)
	}
	return indexes
}

// Headlines returns recent headlines for a ticker, or nothing when no
// provider is attached or the lookup fails. News is decoration, never a
// failure mode.
func (s *Session) Headlines(ctx context.Context, ticker string, limit int) []news.Headline {
	t := marketdata.NormalizeTicker(ticker)
	if s.news == nil || t == "" {
		return nil
	}

	headlines, err := s.news.Headlines(ctx, t, limit)
	if err != nil {
		logger.Warn(ctx, "Headline lookup failed", "ticker", t, "error", err.Error())
		return nil
	}
	return headlines
}

// Reset clears the session cache, keeping the session ID.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	evicted := len(s.series)
	s.series = make(map[string]marketdata.Series)
	s.mu.Unlock()

	logger.Info(ctx, "Research session reset", "session_id", s.id, "evicted", evicted)
}

// RecoverIfOverflow clears the cache when err is a context-overflow failure
// so the caller can rebuild a smaller conversation and retry. It reports
// whether it recovered.
func (s *Session) RecoverIfOverflow(ctx context.Context, err error) bool {
	if !IsContextOverflow(err) {
		return false
	}

	logger.Warn(ctx, "Context overflow detected, clearing research cache",
		"session_id", s.id, "error", err.Error())
	s.Reset(ctx)
	return true
}
