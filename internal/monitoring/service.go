package monitoring

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mentionwatch/mention-monitor/internal/analysis"
	"github.com/mentionwatch/mention-monitor/internal/models"
	"github.com/mentionwatch/mention-monitor/internal/notifications"
)

// reportMentionLimit caps how many recent mentions ride along in a report.
const reportMentionLimit = 10

// Searcher runs the aggregation pipeline for one term.
type Searcher interface {
	SearchMentions(ctx context.Context, term string) ([]models.Mention, error)
}

// Store is the subset of the mention store the service needs directly.
type Store interface {
	LoadForTerm(term string) ([]models.Mention, error)
	UpdateAnalysis(batch []models.Mention) error
}

// StatsEngine computes per-term statistics.
type StatsEngine interface {
	ComputeStats(term string) (models.MentionStats, error)
}

// Service drives the full pipeline: aggregate, enrich, write back, compute
// stats, and deliver reports for the configured watch terms.
type Service struct {
	searcher   Searcher
	store      Store
	enricher   *analysis.Enricher
	stats      StatsEngine
	notifier   notifications.Notifier
	watchTerms []string

	// runMu serializes pipeline runs. The store is single-writer by
	// contract, and both the scheduler and the HTTP trigger reach
	// Merge/UpdateAnalysis through RunSearch.
	runMu sync.Mutex

	metrics *Metrics
	mu      sync.RWMutex
}

// Metrics holds counters from the most recent run
type Metrics struct {
	TotalMentions      int            `json:"total_mentions"`
	LastRun            time.Time      `json:"last_run"`
	LastRunDuration    string         `json:"last_run_duration"`
	SourceMetrics      map[string]int `json:"source_metrics"`
	SentimentBreakdown map[string]int `json:"sentiment_breakdown"`
	ErrorCount         int            `json:"error_count"`
}

// NewService creates a monitoring service
func NewService(searcher Searcher, store Store, enricher *analysis.Enricher, stats StatsEngine, notifier notifications.Notifier, watchTerms []string) *Service {
	return &Service{
		searcher:   searcher,
		store:      store,
		enricher:   enricher,
		stats:      stats,
		notifier:   notifier,
		watchTerms: watchTerms,
		metrics: &Metrics{
			SourceMetrics:      make(map[string]int),
			SentimentBreakdown: make(map[string]int),
		},
	}
}

// RunSearch executes the pipeline for a single term: search and merge, then
// enrich and write the analysis back, then compute fresh stats. Storage
// failures propagate; enrichment failures never do. Runs are serialized:
// a triggered search and a scheduled run never write the store concurrently.
func (s *Service) RunSearch(ctx context.Context, term string) ([]models.Mention, models.MentionStats, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	logrus.Infof("Starting search run for %q", term)

	mentions, err := s.searcher.SearchMentions(ctx, term)
	if err != nil {
		return nil, models.MentionStats{}, err
	}

	if s.enricher.Enabled() && len(mentions) > 0 {
		enriched, _ := s.enricher.Enrich(ctx, mentions, term)
		if err := s.store.UpdateAnalysis(enriched); err != nil {
			return nil, models.MentionStats{}, err
		}
		mentions = enriched
	}

	stats, err := s.stats.ComputeStats(term)
	if err != nil {
		return nil, models.MentionStats{}, err
	}

	s.updateMetrics(mentions, time.Since(start))

	logrus.Infof("Search run for %q completed in %v (%d mentions)", term, time.Since(start), len(mentions))
	return mentions, stats, nil
}

// RunMonitoring runs RunSearch for every watch term and delivers a report
// per term. A failing term or delivery is logged and does not stop the
// remaining terms.
func (s *Service) RunMonitoring(ctx context.Context) error {
	if len(s.watchTerms) == 0 {
		logrus.Info("No watch terms configured, nothing to monitor")
		return nil
	}

	var lastErr error
	for _, term := range s.watchTerms {
		_, stats, err := s.RunSearch(ctx, term)
		if err != nil {
			logrus.Errorf("Monitoring run failed for %q: %v", term, err)
			s.countError()
			lastErr = err
			continue
		}

		report, err := s.buildReport(term, stats)
		if err != nil {
			logrus.Errorf("Failed to build report for %q: %v", term, err)
			s.countError()
			lastErr = err
			continue
		}

		if err := s.notifier.SendReport(report); err != nil {
			logrus.Errorf("Failed to deliver report for %q: %v", term, err)
			s.countError()
			lastErr = err
		}
	}

	return lastErr
}

func (s *Service) buildReport(term string, stats models.MentionStats) (*models.Report, error) {
	stored, err := s.store.LoadForTerm(term)
	if err != nil {
		return nil, err
	}

	// Most recent first.
	sort.Slice(stored, func(i, j int) bool {
		return stored[i].DateFound.After(stored[j].DateFound)
	})
	if len(stored) > reportMentionLimit {
		stored = stored[:reportMentionLimit]
	}

	return &models.Report{
		GeneratedAt:    time.Now(),
		SearchTerm:     term,
		Stats:          stats,
		RecentMentions: stored,
	}, nil
}

func (s *Service) updateMetrics(mentions []models.Mention, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.TotalMentions = len(mentions)
	s.metrics.LastRun = time.Now()
	s.metrics.LastRunDuration = duration.String()

	s.metrics.SourceMetrics = make(map[string]int)
	s.metrics.SentimentBreakdown = make(map[string]int)

	for _, mention := range mentions {
		s.metrics.SourceMetrics[mention.Source]++
		s.metrics.SentimentBreakdown[mention.Sentiment]++
	}
}

func (s *Service) countError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.ErrorCount++
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
