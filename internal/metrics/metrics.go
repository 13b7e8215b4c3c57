// Package metrics derives summary statistics from price series. Every
// function is total: degenerate input produces zero values, never an error,
// a panic, or a NaN in the summary.
package metrics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/xavjones8/On-Device-Models-Playground/internal/marketdata"
)

const tradingDaysPerYear = 252

// Summary holds the derived statistics for one price series.
type Summary struct {
	Ticker           string  `json:"ticker"`
	PeriodDays       int     `json:"period_days"`
	PeriodReturn     float64 `json:"period_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	CurrentPrice     float64 `json:"current_price"`
	FirstDate        string  `json:"first_date"`
	LastDate         string  `json:"last_date"`
}

// Returns computes per-step simple returns. Steps whose previous close is
// not positive are skipped, so the output may be shorter than len(prices)-1.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev <= 0 {
			continue
		}
		out = append(out, (prices[i]-prev)/prev)
	}
	return out
}

// Compute derives a Summary from a series. A series with fewer than two
// points yields zero return and volatility fields, with min/max/current set
// to the single available price when there is one.
func Compute(s marketdata.Series) Summary {
	sum := Summary{Ticker: s.Ticker}
	if s.Len() == 0 {
		return sum
	}

	closes := s.Closes()
	sum.FirstDate = s.First().Date
	sum.LastDate = s.Last().Date
	sum.CurrentPrice = s.Last().Close
	sum.MinPrice = closes[0]
	sum.MaxPrice = closes[0]
	for _, c := range closes {
		sum.MinPrice = math.Min(sum.MinPrice, c)
		sum.MaxPrice = math.Max(sum.MaxPrice, c)
	}
	if s.Len() < 2 {
		return sum
	}

	sum.PeriodDays = calendarDays(sum.FirstDate, sum.LastDate)
	if first := s.First().Close; first > 0 {
		sum.PeriodReturn = (s.Last().Close - first) / first
	}
	sum.AnnualizedReturn = annualize(sum.PeriodReturn, sum.PeriodDays)
	sum.Volatility = AnnualizedVolatility(Returns(closes))
	return sum
}

// annualize converts a period return to a compound annual growth rate.
// Fractional exponents of a negative base and zero-length periods are
// undefined, so those cases keep the raw period return.
func annualize(periodReturn float64, periodDays int) float64 {
	if periodDays > 0 && periodReturn > -1 {
		return math.Pow(1+periodReturn, 365/float64(periodDays)) - 1
	}
	return periodReturn
}

// AnnualizedVolatility scales the standard deviation of per-step returns by
// sqrt(252 trading days). The factor stays 252 even for weekly-sampled
// series.
func AnnualizedVolatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return stat.StdDev(returns, nil) * math.Sqrt(tradingDaysPerYear)
}

// Correlation is the Pearson correlation of the two series' aligned returns.
// Only dates present in both series participate, and returns are computed
// after that alignment, so a gap in one series skips the pair rather than
// interpolating. Fewer than two common return pairs, or a flat series on
// either side, yields 0.
func Correlation(a, b marketdata.Series) float64 {
	bCloses := make(map[string]float64, b.Len())
	for _, p := range b.Points {
		bCloses[p.Date] = p.Close
	}

	var pa, pb []float64
	for _, p := range a.Points {
		if c, ok := bCloses[p.Date]; ok {
			pa = append(pa, p.Close)
			pb = append(pb, c)
		}
	}

	ra := Returns(pa)
	rb := Returns(pb)
	if len(ra) < 2 || len(ra) != len(rb) {
		return 0
	}

	den := math.Sqrt(stat.Variance(ra, nil) * stat.Variance(rb, nil))
	if den == 0 || math.IsNaN(den) {
		return 0
	}
	return stat.Covariance(ra, rb, nil) / den
}

// SMA is the rolling simple moving average used for chart overlays. The
// first period-1 positions have no full window and carry NaN; chart shaping
// drops them.
func SMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) == 0 {
		return nil
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// calendarDays is the whole-day span between two 2006-01-02 dates, zero when
// either fails to parse.
func calendarDays(first, last string) int {
	a, err1 := time.Parse("2006-01-02", first)
	b, err2 := time.Parse("2006-01-02", last)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}
