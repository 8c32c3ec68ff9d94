package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mentionwatch/mention-monitor/internal/aggregator"
	"github.com/mentionwatch/mention-monitor/internal/analysis"
	"github.com/mentionwatch/mention-monitor/internal/analytics"
	"github.com/mentionwatch/mention-monitor/internal/config"
	"github.com/mentionwatch/mention-monitor/internal/monitoring"
	"github.com/mentionwatch/mention-monitor/internal/notifications"
	"github.com/mentionwatch/mention-monitor/internal/sources"
	"github.com/mentionwatch/mention-monitor/internal/storage"
)

// One-off search: run the full pipeline for a term against the local file
// backend and print the resulting stats.
func main() {
	term := flag.String("term", "", "search term to run the pipeline for")
	flag.Parse()

	if *term == "" {
		fmt.Fprintln(os.Stderr, "usage: search -term <search term>")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	backend, err := storage.NewFileBackend(cfg.DataDir)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}
	store := storage.NewMentionStore(backend)

	srcs := []sources.Source{
		sources.NewDuckDuckGoSource(cfg.MaxResults, cfg.PacingInterval, cfg.PacingJitter),
		sources.NewTavilySource(cfg.TavilyAPIKey, cfg.MaxResults, cfg.PacingInterval, cfg.PacingJitter),
		sources.NewBingSource(cfg.MaxResults, cfg.PacingInterval, cfg.PacingJitter),
	}

	var analyzer analysis.Analyzer
	if cfg.EnableEnrichment && cfg.OpenAIAPIKey != "" {
		analyzer = analysis.NewOpenAIAnalyzer(cfg.OpenAIAPIKey)
	}

	service := monitoring.NewService(
		aggregator.New(srcs, store, cfg.AdapterTimeout),
		store,
		analysis.NewEnricher(analyzer, cfg.AnalysisDelay),
		analytics.NewEngine(store),
		notifications.NewService(cfg),
		nil,
	)

	mentions, stats, err := service.RunSearch(context.Background(), *term)
	if err != nil {
		logrus.Fatalf("Search failed: %v", err)
	}

	fmt.Printf("Found %d mentions for %q\n\n", len(mentions), *term)

	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		logrus.Fatalf("Failed to render stats: %v", err)
	}
	fmt.Println(string(out))
}
