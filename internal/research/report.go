package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/xavjones8/On-Device-Models-Playground/internal/logger"
	"github.com/xavjones8/On-Device-Models-Playground/internal/metrics"
	"github.com/xavjones8/On-Device-Models-Playground/internal/trace"
)

// Report composes a human-readable research summary from the cached series,
// its metrics and, when a headline provider is attached, recent news. The
// ticker must already be fetched.
func (s *Session) Report(ctx context.Context, ticker string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "research.Report")
	defer span.End()

	series, err := s.Cached(ticker)
	if err != nil {
		return "", err
	}

	sum := metrics.Compute(series)
	cadence := "daily"
	if series.Range.Weekly() {
		cadence = "weekly"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s closed at %.2f on %s, a %+.1f%% move across %d %s closes (%d calendar days). ",
		sum.Ticker, sum.CurrentPrice, sum.LastDate, sum.PeriodReturn*100, series.Len(), cadence, sum.PeriodDays)
	fmt.Fprintf(&b, "Annualized that is %+.1f%% with volatility near %.0f%%. ",
		sum.AnnualizedReturn*100, sum.Volatility*100)
	fmt.Fprintf(&b, "Prices ranged from %.2f to %.2f. ", sum.MinPrice, sum.MaxPrice)

	switch {
	case sum.Volatility >= 0.60:
		b.WriteString("Price action has been very choppy for this window. ")
	case sum.Volatility >= 0.30:
		b.WriteString("Volatility is elevated but not extreme. ")
	default:
		b.WriteString("Price action has been comparatively calm. ")
	}

	if sum.PeriodReturn >= 0.15 {
		b.WriteString("The trend over the period is strongly positive. ")
	} else if sum.PeriodReturn <= -0.15 {
		b.WriteString("The drawdown over the period is significant. ")
	}

	if sum.MaxPrice > 0 {
		offHigh := (sum.MaxPrice - sum.CurrentPrice) / sum.MaxPrice
		if offHigh >= 0.10 {
			fmt.Fprintf(&b, "The last close sits %.0f%% below the period high. ", offHigh*100)
		}
	}

	if headlines := s.Headlines(ctx, sum.Ticker, s.reportHeadlines); len(headlines) > 0 {
		b.WriteString("Recent headlines: ")
		for i, h := range headlines {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(h.Title)
		}
		b.WriteString(".")
	}

	report := strings.TrimSpace(b.String())
	logger.Research(ctx, sum.Ticker, "report", "chars", len(report))
	return report, nil
}
