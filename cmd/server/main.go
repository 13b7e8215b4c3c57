package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/xavjones8/On-Device-Models-Playground/internal/decisionlog"
	"github.com/xavjones8/On-Device-Models-Playground/internal/inference"
	"github.com/xavjones8/On-Device-Models-Playground/internal/logger"
	"github.com/xavjones8/On-Device-Models-Playground/internal/marketdata"
	"github.com/xavjones8/On-Device-Models-Playground/internal/news"
	"github.com/xavjones8/On-Device-Models-Playground/internal/research"
	"github.com/xavjones8/On-Device-Models-Playground/internal/router"
	"github.com/xavjones8/On-Device-Models-Playground/internal/server"
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
	configPath := flag.String("config", "config.yaml", "path to the YAML config")
	port := flag.Int("port", 0, "listen port (overrides config)")
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
	if *port > 0 {
		cfg.Server.Port = *port
	}

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
	if cfg.News.Enabled {
		opts = append(opts, research.WithNews(news.NewService(news.FromConfig(cfg))))
	}
	session := research.NewSession(source, opts...)

	srv := server.New(server.Config{
		Port:           cfg.Server.Port,
		TimeoutSeconds: cfg.Server.TimeoutSeconds,
		Router:         prompts,
		Session:        session,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithErr(ctx, "Server failed", err)
			os.Exit(1)
		}
	case <-sigc:
		shutdownCtx, stop := context.WithTimeout(ctx, 10*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.ErrorWithErr(shutdownCtx, "Shutdown failed", err)
		}
	}

	_ = trace.Shutdown(context.Background())
	_ = logger.Shutdown(context.Background())
}
