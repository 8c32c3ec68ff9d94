package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mentionwatch/mention-monitor/internal/aggregator"
	"github.com/mentionwatch/mention-monitor/internal/analysis"
	"github.com/mentionwatch/mention-monitor/internal/analytics"
	"github.com/mentionwatch/mention-monitor/internal/config"
	"github.com/mentionwatch/mention-monitor/internal/monitoring"
	"github.com/mentionwatch/mention-monitor/internal/notifications"
	"github.com/mentionwatch/mention-monitor/internal/scheduler"
	"github.com/mentionwatch/mention-monitor/internal/sources"
	"github.com/mentionwatch/mention-monitor/internal/storage"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting mention monitor")

	backend, err := newBackend(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}
	store := storage.NewMentionStore(backend)

	srcs := []sources.Source{
		sources.NewDuckDuckGoSource(cfg.MaxResults, cfg.PacingInterval, cfg.PacingJitter),
		sources.NewTavilySource(cfg.TavilyAPIKey, cfg.MaxResults, cfg.PacingInterval, cfg.PacingJitter),
		sources.NewBingSource(cfg.MaxResults, cfg.PacingInterval, cfg.PacingJitter),
	}

	agg := aggregator.New(srcs, store, cfg.AdapterTimeout)

	var analyzer analysis.Analyzer
	if cfg.EnableEnrichment && cfg.OpenAIAPIKey != "" {
		analyzer = analysis.NewOpenAIAnalyzer(cfg.OpenAIAPIKey)
	} else {
		logrus.Info("Enrichment disabled (no API key or turned off), mentions keep default scores")
	}
	enricher := analysis.NewEnricher(analyzer, cfg.AnalysisDelay)

	engine := analytics.NewEngine(store)
	notifier := notifications.NewService(cfg)

	monitoringService := monitoring.NewService(agg, store, enricher, engine, notifier, cfg.WatchTerms)

	schedulerService := scheduler.NewService(cfg, monitoringService)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/metrics", metricsHandler(monitoringService)).Methods("GET")
	router.HandleFunc("/stats/{term}", statsHandler(engine)).Methods("GET")
	router.HandleFunc("/search", searchHandler(monitoringService)).Methods("POST")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func newBackend(cfg *config.Config) (storage.Backend, error) {
	if cfg.StorageAccount != "" {
		return storage.NewAzureBackend(cfg.StorageAccount, cfg.StorageContainer)
	}
	return storage.NewFileBackend(cfg.DataDir)
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func metricsHandler(monitoringService *monitoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(monitoringService.GetMetrics()))
	}
}

func statsHandler(engine *analytics.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		term := mux.Vars(r)["term"]

		stats, err := engine.ComputeStats(term)
		if err != nil {
			logrus.Errorf("Failed to compute stats for %q: %v", term, err)
			http.Error(w, "failed to compute stats", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	}
}

func searchHandler(monitoringService *monitoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		term := r.URL.Query().Get("term")
		if term == "" {
			http.Error(w, "term query parameter is required", http.StatusBadRequest)
			return
		}

		go func() {
			if _, _, err := monitoringService.RunSearch(context.Background(), term); err != nil {
				logrus.Errorf("Triggered search for %q failed: %v", term, err)
			}
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprintf(w, `{"message":"search triggered","term":%q}`, term)
	}
}
