package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/xavjones8/On-Device-Models-Playground/internal/decisionlog"
	"github.com/xavjones8/On-Device-Models-Playground/internal/logger"
	"github.com/xavjones8/On-Device-Models-Playground/internal/marketdata"
	"github.com/xavjones8/On-Device-Models-Playground/internal/metrics"
	"github.com/xavjones8/On-Device-Models-Playground/internal/news"
	"github.com/xavjones8/On-Device-Models-Playground/internal/research"
	"github.com/xavjones8/On-Device-Models-Playground/internal/router"
	"github.com/xavjones8/On-Device-Models-Playground/internal/store"
)

type assistant struct {
	router  *router.Router
	session *research.Session
	news    *news.Service // nil when headlines are disabled
	cfg     *store.Config
}

// handleLine executes one REPL line and reports whether the loop should end.
func (a *assistant) handleLine(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "exit", "quit":
		return true

	case "help":
		printHelp()

	case "fetch":
		if len(fields) < 2 {
			fmt.Println("Usage: fetch TICKER [1M|3M|6M|1Y|5Y]")
			break
		}
		rng := marketdata.DefaultRange
		if len(fields) >= 3 {
			parsed, err := marketdata.ParseTimeRange(fields[2])
			if err != nil {
				fmt.Println("Error:", err)
				break
			}
			rng = parsed
		}
		series, err := a.session.Fetch(ctx, fields[1], rng)
		if err != nil {
			a.printErr(ctx, err)
			break
		}
		fmt.Printf("%s %s: %d points, %s to %s\n",
			series.Ticker, series.Range, series.Len(), series.First().Date, series.Last().Date)

	case "metrics":
		if len(fields) < 2 {
			fmt.Println("Usage: metrics TICKER")
			break
		}
		summary, err := a.session.Metrics(ctx, fields[1])
		if err != nil {
			a.printErr(ctx, err)
			break
		}
		printSummary(summary)

	case "compare":
		if len(fields) < 3 {
			fmt.Println("Usage: compare TICKER_A TICKER_B")
			break
		}
		cmp, err := a.session.Compare(ctx, fields[1], fields[2])
		if err != nil {
			a.printErr(ctx, err)
			break
		}
		fmt.Printf("%s vs %s: correlation %+.3f, %s\n",
			cmp.A.Ticker, cmp.B.Ticker, cmp.Correlation, cmp.Relationship)
		printSummary(cmp.A)
		printSummary(cmp.B)

	case "chart":
		if len(fields) < 2 {
			fmt.Println("Usage: chart TICKER")
			break
		}
		chart, err := a.session.Chart(ctx, fields[1], 0)
		if err != nil {
			a.printErr(ctx, err)
			break
		}
		printChart(chart)

	case "report":
		if len(fields) < 2 {
			fmt.Println("Usage: report TICKER")
			break
		}
		report, err := a.session.Report(ctx, fields[1])
		if err != nil {
			a.printErr(ctx, err)
			break
		}
		fmt.Println(report)

	case "news":
		if len(fields) < 2 {
			fmt.Println("Usage: news TICKER")
			break
		}
		headlines := a.session.Headlines(ctx, fields[1], a.cfg.News.MaxHeadlines)
		if len(headlines) == 0 {
			fmt.Println("No headlines available.")
			break
		}
		for _, h := range headlines {
			fmt.Printf("- %s (%s)\n  %s\n", h.Title, h.Source, h.URL)
		}

	case "reset":
		a.session.Reset(ctx)
		if a.news != nil {
			a.news.ClearCache()
		}
		fmt.Println("Research cache cleared.")

	default:
		a.routePrompt(ctx, line)
	}
	return false
}

// routePrompt classifies bare text and records the routing decision.
func (a *assistant) routePrompt(ctx context.Context, prompt string) {
	d, err := a.router.Route(ctx, prompt)
	if err != nil {
		fmt.Printf("Classification failed: %v\n", err)
		return
	}

	fmt.Printf(">> %s  task=%s  aggregate=%.3f (threshold %.2f)\n",
		d.Target, d.Scores.TaskType.Primary, d.Scores.Aggregate, d.Threshold)
	if d.Scores.TaskType.Secondary != "" {
		fmt.Printf("   secondary task: %s\n", d.Scores.TaskType.Secondary)
	}

	err = decisionlog.Append(decisionlog.Entry{
		SessionID:  a.session.ID(),
		Target:     string(d.Target),
		TaskType:   d.Scores.TaskType.Primary,
		Aggregate:  d.Scores.Aggregate,
		Confidence: d.Scores.TaskType.Probability,
		PromptLen:  len([]rune(prompt)),
	})
	if err != nil {
		logger.Warn(ctx, "Failed to append decision log", "error", err)
	}
}

// printErr reports a research error, recovering the session first when the
// failure is a context overflow.
func (a *assistant) printErr(ctx context.Context, err error) {
	if a.session.RecoverIfOverflow(ctx, err) {
		fmt.Println("Context window exhausted. Cached research cleared, fetch again to retry.")
		return
	}
	fmt.Println("Error:", err)
}

func printSummary(s metrics.Summary) {
	fmt.Printf("%s  %s to %s (%d calendar days)\n", s.Ticker, s.FirstDate, s.LastDate, s.PeriodDays)
	fmt.Printf("  period return   %+.2f%%\n", s.PeriodReturn*100)
	fmt.Printf("  annualized      %+.2f%%\n", s.AnnualizedReturn*100)
	fmt.Printf("  volatility      %.2f%%\n", s.Volatility*100)
	fmt.Printf("  price range     %.2f to %.2f, last %.2f\n", s.MinPrice, s.MaxPrice, s.CurrentPrice)
}

func printChart(c research.ChartData) {
	if len(c.Points) == 0 {
		fmt.Println("No points.")
		return
	}

	min, max := c.Points[0].Close, c.Points[0].Close
	for _, p := range c.Points {
		if p.Close < min {
			min = p.Close
		}
		if p.Close > max {
			max = p.Close
		}
	}
	span := max - min
	if span == 0 {
		span = 1
	}

	for _, p := range c.Points {
		bar := strings.Repeat("█", 1+int((p.Close-min)/span*40))
		if p.SMA != nil {
			fmt.Printf("%s %9.2f  %-41s sma %.2f\n", p.Date, p.Close, bar, *p.SMA)
		} else {
			fmt.Printf("%s %9.2f  %s\n", p.Date, p.Close, bar)
		}
	}
	fmt.Printf("%s, %s range, %d points\n", c.Ticker, c.Range, len(c.Points))
}

func printHelp() {
	fmt.Println(`Commands:
  fetch TICKER [RANGE]   load a price series (ranges: 1M 3M 6M 1Y 5Y)
  metrics TICKER         summary statistics for a fetched ticker
  compare A B            return correlation between two fetched tickers
  chart TICKER           terminal price chart with SMA overlay
  report TICKER          one-paragraph research report
  news TICKER            recent headlines
  reset                  clear the session's research cache
  help                   this text
  exit                   quit

Anything else is classified and routed (LOCAL vs REMOTE).`)
}
