package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/xavjones8/On-Device-Models-Playground/internal/logger"
)

// Headline is one scraped news item for a ticker.
type Headline struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at,omitempty"`
	Ticker      string `json:"ticker"`
}

// Source defines a news site to scrape
type Source struct {
	Name       string
	BaseURL    string
	SearchPath string // {ticker} is replaced with the symbol
	Selectors  Selectors
	RateLimit  time.Duration
}

// Selectors are the CSS hooks for pulling headline data out of a page
type Selectors struct {
	Container string
	Title     string
	Link      string
	Published string
}

// Scraper handles scraping headlines from multiple sources
type Scraper struct {
	sources []Source
	timeout time.Duration
}

// NewScraper creates a new scraper with the default source table
func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{
		sources: defaultSources(),
		timeout: timeout,
	}
}

// defaultSources returns the financial news sources to scrape
func defaultSources() []Source {
	return []Source{
		{
			Name:       "YahooFinance",
			BaseURL:    "https://finance.yahoo.com",
			SearchPath: "/quote/{ticker}/news",
			Selectors: Selectors{
				Container: "li.stream-item",
				Title:     "h3",
				Link:      "a",
				Published: "time",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:       "GoogleNews",
			BaseURL:    "https://news.google.com",
			SearchPath: "/search?q={ticker}+stock",
			Selectors: Selectors{
				Container: "article",
				Title:     "h3, h4",
				Link:      "a",
				Published: "time",
			},
			RateLimit: 2 * time.Second,
		},
	}
}

// Scrape fetches up to limit headlines for a ticker across all sources.
func (s *Scraper) Scrape(ctx context.Context, ticker string, limit int) ([]Headline, error) {
	logger.Debug(ctx, "Starting headline scrape", "ticker", ticker, "sources", len(s.sources))

	all := []Headline{}
	perSource := limit / len(s.sources)
	if perSource < 1 {
		perSource = 1
	}

	for _, source := range s.sources {
		headlines, err := s.scrapeSource(ctx, source, ticker, perSource)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape source", err, "source", source.Name, "ticker", ticker)
			continue
		}
		all = append(all, headlines...)
		if len(all) >= limit {
			break
		}

		// Rate limiting between sources
		time.Sleep(source.RateLimit)
	}

	if len(all) > limit {
		all = all[:limit]
	}
	logger.Debug(ctx, "Headline scrape completed", "ticker", ticker, "headlines", len(all))
	return all, nil
}

// scrapeSource scrapes headlines from a single source
func (s *Scraper) scrapeSource(ctx context.Context, source Source, ticker string, limit int) ([]Headline, error) {
	headlines := []Headline{}

	c := colly.NewCollector(
		colly.AllowedDomains(hostOf(source.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.timeout)

	// Set user agent to avoid being blocked
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnHTML(source.Selectors.Container, func(e *colly.HTMLElement) {
		if len(headlines) >= limit {
			return
		}
		if h, ok := extractHeadline(e.DOM, source, ticker); ok {
			headlines = append(headlines, h)
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "source", source.Name, "url", r.Request.URL.String())
	})

	searchURL := source.BaseURL + strings.ReplaceAll(source.SearchPath, "{ticker}", url.PathEscape(ticker))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", searchURL, err)
	}
	c.Wait()

	return headlines, nil
}

// extractHeadline pulls one headline out of a matched article node.
func extractHeadline(node *goquery.Selection, source Source, ticker string) (Headline, bool) {
	title := strings.TrimSpace(node.Find(source.Selectors.Title).First().Text())
	if title == "" {
		return Headline{}, false
	}

	link, _ := node.Find(source.Selectors.Link).First().Attr("href")
	if link == "" {
		return Headline{}, false
	}
	// Make relative and Google-style ./ links absolute
	if strings.HasPrefix(link, "./") {
		link = source.BaseURL + link[1:]
	} else if !strings.HasPrefix(link, "http") {
		link = source.BaseURL + link
	}

	return Headline{
		Title:       title,
		URL:         link,
		Source:      source.Name,
		PublishedAt: strings.TrimSpace(node.Find(source.Selectors.Published).First().Text()),
		Ticker:      ticker,
	}, true
}

// hostOf extracts the hostname from a URL
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
