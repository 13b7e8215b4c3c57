package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/xavjones8/On-Device-Models-Playground/internal/decisionlog"
	"github.com/xavjones8/On-Device-Models-Playground/internal/inference"
	"github.com/xavjones8/On-Device-Models-Playground/internal/logger"
	"github.com/xavjones8/On-Device-Models-Playground/internal/marketdata"
	"github.com/xavjones8/On-Device-Models-Playground/internal/news"
	"github.com/xavjones8/On-Device-Models-Playground/internal/research"
	"github.com/xavjones8/On-Device-Models-Playground/internal/router"
	"github.com/xavjones8/On-Device-Models-Playground/internal/store"
	"github.com/xavjones8/On-Device-Models-Playground/internal/tokenizer"
	"github.com/xavjones8/On-Device-Models-Playground/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	_ = godotenv.Load()
	must(logger.Init())
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := store.LoadConfig(*configPath)
	must(err)

	decisionlog.SetDir(cfg.DecisionLog.Dir)
	if err := decisionlog.CompressOlder(cfg.DecisionLog.RetentionDays); err != nil {
		logger.Warn(ctx, "Failed to compress old decision logs", "error", err)
	}

	vocab, err := tokenizer.LoadVocabulary(cfg.Classifier.VocabPath)
	must(err)
	tok := tokenizer.New(vocab, tokenizer.WithMaxPieceLen(cfg.Classifier.MaxPieceLen))
	prompts := router.New(tok, inference.NewMockEngine(), cfg.Classifier.RouteThreshold)

	source, err := marketdata.NewSource(cfg)
	must(err)

	opts := []research.SessionOption{
		research.WithChartPoints(cfg.Research.MaxChartPoints),
		research.WithSMAPeriod(cfg.Research.SMAPeriod),
		research.WithReportHeadlines(cfg.Research.ReportHeadlines),
	}
	var headlines *news.Service
	if cfg.News.Enabled {
		headlines = news.NewService(news.FromConfig(cfg))
		opts = append(opts, research.WithNews(headlines))
	}
	session := research.NewSession(source, opts...)

	a := &assistant{router: prompts, session: session, news: headlines, cfg: cfg}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		fmt.Println("\nShutting down...")
		writeSummary()
		os.Exit(0)
	}()

	fmt.Println("On-Device Models Playground assistant")
	fmt.Printf("Session %s, market data provider %s. Type 'help' for commands.\n",
		session.ID(), cfg.MarketData.Provider)

	sc := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && a.handleLine(ctx, line) {
			break
		}
		fmt.Print("> ")
	}

	writeSummary()
	_ = trace.Shutdown(context.Background())
	_ = logger.Shutdown(context.Background())
}

func writeSummary() {
	if p, err := decisionlog.SummarizeToday(); err == nil && p != "" {
		fmt.Println("Usage summary written:", p)
	}
}
