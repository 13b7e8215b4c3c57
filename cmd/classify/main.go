package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/xavjones8/On-Device-Models-Playground/internal/inference"
	"github.com/xavjones8/On-Device-Models-Playground/internal/logger"
	"github.com/xavjones8/On-Device-Models-Playground/internal/router"
	"github.com/xavjones8/On-Device-Models-Playground/internal/store"
	"github.com/xavjones8/On-Device-Models-Playground/internal/tokenizer"
)

const rule = "─────────────────────────────────────────────────────────────────────────────"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	prompt := flag.String("prompt", "", "prompt to classify (required)")
	format := flag.String("format", "text", "output format: text or json")
	outputFile := flag.String("output", "", "save the report to a file (optional)")
	flag.Parse()

	if strings.TrimSpace(*prompt) == "" {
		fmt.Println("Error: -prompt is required")
		flag.Usage()
		os.Exit(1)
	}

	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := store.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	vocab, err := tokenizer.LoadVocabulary(cfg.Classifier.VocabPath)
	if err != nil {
		fmt.Printf("Error loading vocabulary: %v\n", err)
		os.Exit(1)
	}
	tok := tokenizer.New(vocab, tokenizer.WithMaxPieceLen(cfg.Classifier.MaxPieceLen))
	rt := router.New(tok, inference.NewMockEngine(), cfg.Classifier.RouteThreshold)

	decision, err := rt.Route(context.Background(), *prompt)
	if err != nil {
		fmt.Printf("Error classifying prompt: %v\n", err)
		os.Exit(1)
	}

	var report string
	switch *format {
	case "json":
		b, err := json.MarshalIndent(decision, "", "  ")
		if err != nil {
			fmt.Printf("Error encoding JSON: %v\n", err)
			os.Exit(1)
		}
		report = string(b)
	case "text":
		report = renderText(*prompt, decision)
	default:
		fmt.Printf("Unknown format: %s. Using text format.\n", *format)
		report = renderText(*prompt, decision)
	}

	fmt.Println(report)

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(report+"\n"), 0644); err != nil {
			fmt.Printf("Error saving report to file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n✅ Report saved to: %s\n", *outputFile)
	}
}

func renderText(prompt string, d router.Decision) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🧠 Prompt Classification\n%s\n", rule)
	fmt.Fprintf(&b, "Prompt: %s\n\n", truncate(prompt, 80))

	s := d.Scores
	fmt.Fprintf(&b, "Task Type: %s (p=%.2f)\n", s.TaskType.Primary, s.TaskType.Probability)
	if s.TaskType.Secondary != "" {
		fmt.Fprintf(&b, "Secondary: %s\n", s.TaskType.Secondary)
	}

	b.WriteString("\nComplexity Scores\n")
	fmt.Fprintf(&b, "  creativity scope      %.3f\n", s.CreativityScope)
	fmt.Fprintf(&b, "  reasoning             %.3f\n", s.Reasoning)
	fmt.Fprintf(&b, "  contextual knowledge  %.3f\n", s.ContextualKnowledge)
	fmt.Fprintf(&b, "  few shots             %.3f\n", s.FewShots)
	fmt.Fprintf(&b, "  domain knowledge      %.3f\n", s.DomainKnowledge)
	fmt.Fprintf(&b, "  constraint count      %.3f\n", s.ConstraintCount)

	fmt.Fprintf(&b, "\nAggregate: %.3f (threshold %.2f)\n", s.Aggregate, d.Threshold)
	fmt.Fprintf(&b, "Route: %s\n%s", d.Target, rule)
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
