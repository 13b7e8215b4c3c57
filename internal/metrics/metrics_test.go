package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavjones8/On-Device-Models-Playground/internal/marketdata"
)

func series(ticker string, points ...marketdata.Point) marketdata.Series {
	return marketdata.Series{Ticker: ticker, Range: marketdata.Range3M, Points: points}
}

func pt(date string, close float64) marketdata.Point {
	return marketdata.Point{Date: date, Close: close, Volume: 1000}
}

func TestReturns(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   []float64
	}{
		{"steady rise", []float64{100, 110, 121}, []float64{0.10, 0.10}},
		{"fall", []float64{100, 50}, []float64{-0.50}},
		{"flat", []float64{100, 100, 100}, []float64{0, 0}},
		{"zero previous skipped", []float64{100, 0, 50}, []float64{-1}},
		{"negative previous skipped", []float64{-5, 10, 20}, []float64{1}},
		{"single price", []float64{100}, nil},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Returns(tt.prices)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestComputeTwoYearDoubling(t *testing.T) {
	// 100% gain over two years compounds to about 41.42% per year
	s := series("AAPL",
		pt("2022-01-01", 100),
		pt("2024-01-01", 200),
	)

	got := Compute(s)

	assert.Equal(t, "AAPL", got.Ticker)
	assert.Equal(t, 730, got.PeriodDays)
	assert.InDelta(t, 1.0, got.PeriodReturn, 1e-12)
	assert.InDelta(t, 0.4142, got.AnnualizedReturn, 1e-3)
	assert.Less(t, got.AnnualizedReturn, got.PeriodReturn)
	assert.Equal(t, 100.0, got.MinPrice)
	assert.Equal(t, 200.0, got.MaxPrice)
	assert.Equal(t, 200.0, got.CurrentPrice)
	assert.Equal(t, "2022-01-01", got.FirstDate)
	assert.Equal(t, "2024-01-01", got.LastDate)
}

func TestComputeSubYearAnnualizes(t *testing.T) {
	// 10% over 91 days compounds to well above 10% per year
	s := series("MSFT",
		pt("2024-01-01", 100),
		pt("2024-04-01", 110),
	)

	got := Compute(s)

	assert.Equal(t, 91, got.PeriodDays)
	assert.InDelta(t, 0.10, got.PeriodReturn, 1e-12)
	want := math.Pow(1.10, 365.0/91.0) - 1
	assert.InDelta(t, want, got.AnnualizedReturn, 1e-12)
	assert.Greater(t, got.AnnualizedReturn, got.PeriodReturn)
}

func TestComputeTotalLossFallsBack(t *testing.T) {
	// periodReturn == -1 fails the CAGR guard and is kept as-is
	s := series("LUNA",
		pt("2024-01-01", 100),
		pt("2024-06-01", 0),
	)

	got := Compute(s)

	assert.InDelta(t, -1.0, got.PeriodReturn, 1e-12)
	assert.InDelta(t, -1.0, got.AnnualizedReturn, 1e-12)
	assert.False(t, math.IsNaN(got.Volatility))
}

func TestComputeSameDayFallsBack(t *testing.T) {
	s := series("X",
		pt("2024-01-01", 100),
		pt("2024-01-01", 150),
	)

	got := Compute(s)

	assert.Equal(t, 0, got.PeriodDays)
	assert.InDelta(t, 0.5, got.PeriodReturn, 1e-12)
	// Zero-day periods cannot be annualized
	assert.InDelta(t, 0.5, got.AnnualizedReturn, 1e-12)
}

func TestComputeDegenerateSinglePoint(t *testing.T) {
	s := series("AAPL", pt("2024-01-01", 100))

	got := Compute(s)

	assert.Equal(t, 0, got.PeriodDays)
	assert.Zero(t, got.PeriodReturn)
	assert.Zero(t, got.AnnualizedReturn)
	assert.Zero(t, got.Volatility)
	assert.Equal(t, 100.0, got.MinPrice)
	assert.Equal(t, 100.0, got.MaxPrice)
	assert.Equal(t, 100.0, got.CurrentPrice)
	assert.Equal(t, "2024-01-01", got.FirstDate)
	assert.Equal(t, "2024-01-01", got.LastDate)
}

func TestComputeEmptySeries(t *testing.T) {
	got := Compute(marketdata.Series{Ticker: "NONE"})

	assert.Equal(t, Summary{Ticker: "NONE"}, got)
}

func TestComputeVolatility(t *testing.T) {
	s := series("VOL",
		pt("2024-01-01", 100),
		pt("2024-01-02", 110),
		pt("2024-01-03", 99),
		pt("2024-01-04", 108.9),
	)

	got := Compute(s)

	// Sample standard deviation of the three returns, annualized
	rets := Returns([]float64{100, 110, 99, 108.9})
	mean := (rets[0] + rets[1] + rets[2]) / 3
	var ss float64
	for _, r := range rets {
		ss += (r - mean) * (r - mean)
	}
	want := math.Sqrt(ss/2) * math.Sqrt(252)
	assert.InDelta(t, want, got.Volatility, 1e-12)
	assert.Greater(t, got.Volatility, 0.0)
}

func TestComputeFlatSeriesZeroVolatility(t *testing.T) {
	s := series("FLAT",
		pt("2024-01-01", 100),
		pt("2024-01-02", 100),
		pt("2024-01-03", 100),
	)

	got := Compute(s)

	assert.Zero(t, got.Volatility)
	assert.Zero(t, got.PeriodReturn)
}

func TestCorrelationIdenticalSeries(t *testing.T) {
	s := series("A",
		pt("2024-01-01", 100),
		pt("2024-01-02", 105),
		pt("2024-01-03", 103),
		pt("2024-01-04", 110),
	)

	got := Correlation(s, s)

	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestCorrelationInverseSeries(t *testing.T) {
	a := series("A",
		pt("2024-01-01", 100),
		pt("2024-01-02", 110),
		pt("2024-01-03", 99),
		pt("2024-01-04", 105),
	)
	// Mirrored moves: up where a goes down and vice versa
	b := series("B",
		pt("2024-01-01", 100),
		pt("2024-01-02", 90),
		pt("2024-01-03", 101),
		pt("2024-01-04", 95),
	)

	got := Correlation(a, b)

	assert.Less(t, got, 0.0)
	assert.GreaterOrEqual(t, got, -1.0)
}

func TestCorrelationAlignsByDate(t *testing.T) {
	a := series("A",
		pt("2024-01-01", 100),
		pt("2024-01-02", 110),
		pt("2024-01-03", 121),
		pt("2024-01-04", 133.1),
	)
	// Missing 01-02: returns pair up on the common dates only
	b := series("B",
		pt("2024-01-01", 50),
		pt("2024-01-03", 60.5),
		pt("2024-01-04", 66.55),
	)

	got := Correlation(a, b)

	// On the common dates both series make the same percentage moves,
	// with the missing day folded into one larger step
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestCorrelationDisjointDates(t *testing.T) {
	a := series("A", pt("2024-01-01", 100), pt("2024-01-02", 110))
	b := series("B", pt("2024-02-01", 100), pt("2024-02-02", 90))

	assert.Zero(t, Correlation(a, b))
}

func TestCorrelationTooFewCommonPoints(t *testing.T) {
	a := series("A", pt("2024-01-01", 100), pt("2024-01-02", 110), pt("2024-01-03", 105))
	b := series("B", pt("2024-01-02", 50), pt("2024-01-05", 55))

	// One common date gives zero return pairs
	assert.Zero(t, Correlation(a, b))
}

func TestCorrelationFlatSideIsZero(t *testing.T) {
	a := series("A", pt("2024-01-01", 100), pt("2024-01-02", 110), pt("2024-01-03", 99))
	b := series("B", pt("2024-01-01", 50), pt("2024-01-02", 50), pt("2024-01-03", 50))

	assert.Zero(t, Correlation(a, b))
}

func TestCorrelationBounded(t *testing.T) {
	a := series("A",
		pt("2024-01-01", 100), pt("2024-01-02", 104), pt("2024-01-03", 98),
		pt("2024-01-04", 107), pt("2024-01-05", 103),
	)
	b := series("B",
		pt("2024-01-01", 210), pt("2024-01-02", 205), pt("2024-01-03", 213),
		pt("2024-01-04", 208), pt("2024-01-05", 219),
	)

	got := Correlation(a, b)

	assert.GreaterOrEqual(t, got, -1.0)
	assert.LessOrEqual(t, got, 1.0)
	assert.NotZero(t, got)
}

func TestAnnualizedVolatilityShortInput(t *testing.T) {
	assert.Zero(t, AnnualizedVolatility(nil))
	assert.Zero(t, AnnualizedVolatility([]float64{0.01}))
}

func TestSMA(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)

	require.Len(t, got, 5)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 2.0, got[2], 1e-12)
	assert.InDelta(t, 3.0, got[3], 1e-12)
	assert.InDelta(t, 4.0, got[4], 1e-12)
}

func TestSMADegenerate(t *testing.T) {
	assert.Nil(t, SMA(nil, 3))
	assert.Nil(t, SMA([]float64{1, 2}, 0))

	// Window longer than the data never completes
	got := SMA([]float64{1, 2}, 5)
	require.Len(t, got, 2)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
}
