package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mentionwatch/mention-monitor/internal/models"
)

// Truncation budgets per capability call, in runes.
const (
	sentimentInputLimit = 200
	analysisInputLimit  = 1000
	maxTopics           = 5
)

// Enricher attaches sentiment and relevance to mentions through an Analyzer.
// Mentions are processed sequentially in input order; a fixed inter-item
// delay is applied after each mention's full analysis regardless of outcome.
// Enrichment never fails a batch: a mention whose analysis fails outright is
// returned unchanged.
type Enricher struct {
	analyzer Analyzer
	delay    time.Duration
}

// NewEnricher creates an enricher. A nil analyzer produces a no-op enricher,
// which is how a missing analysis credential degrades.
func NewEnricher(analyzer Analyzer, delay time.Duration) *Enricher {
	return &Enricher{analyzer: analyzer, delay: delay}
}

// Enabled reports whether enrichment will actually call the capability.
func (e *Enricher) Enabled() bool {
	return e.analyzer != nil
}

// Enrich analyzes each mention and writes sentiment and relevance_score back
// onto it. The returned mention slice has the same length and order as the
// input. The parallel AnalysisResult slice carries the call-scoped outputs
// (confidence, topics, summary) that are not persisted on the mention.
func (e *Enricher) Enrich(ctx context.Context, mentions []models.Mention, term string) ([]models.Mention, []models.AnalysisResult) {
	if !e.Enabled() || len(mentions) == 0 {
		return mentions, nil
	}

	logrus.Infof("Enriching %d mentions for %q", len(mentions), term)

	enriched := make([]models.Mention, len(mentions))
	analyses := make([]models.AnalysisResult, len(mentions))

	for i, mention := range mentions {
		result := e.analyzeMention(ctx, mention, term)

		mention.Sentiment = result.Sentiment
		mention.RelevanceScore = result.RelevanceScore
		enriched[i] = mention
		analyses[i] = result

		e.pause(ctx)
	}

	return enriched, analyses
}

// analyzeMention runs the four capability calls for one mention. Each call
// is independent: a failure in one falls back to that field's default and
// does not abort the others.
func (e *Enricher) analyzeMention(ctx context.Context, mention models.Mention, term string) models.AnalysisResult {
	text := fmt.Sprintf("Title: %s\nContent: %s", mention.Title, mention.Snippet)

	sentiment, confidence := e.sentiment(ctx, truncateRunes(text, sentimentInputLimit), mention)
	relevance := e.relevance(ctx, truncateRunes(text, analysisInputLimit), term, mention)
	topics := e.topics(ctx, truncateRunes(text, analysisInputLimit), mention)
	summary := e.summary(ctx, truncateRunes(text, analysisInputLimit), mention)

	return models.AnalysisResult{
		Sentiment:           sentiment,
		SentimentConfidence: confidence,
		RelevanceScore:      relevance,
		KeyTopics:           topics,
		Summary:             summary,
	}
}

// sentiment parses the response as JSON first; when that fails it falls back
// to scanning the raw text for a polarity keyword with confidence 0.5. A
// failed call yields neutral with confidence 0.0.
func (e *Enricher) sentiment(ctx context.Context, text string, mention models.Mention) (string, float64) {
	raw, err := e.analyzer.Sentiment(ctx, text)
	if err != nil {
		logrus.Errorf("Sentiment call failed for %s: %v", mention.URL, err)
		return models.SentimentNeutral, 0.0
	}

	var parsed struct {
		Sentiment  string  `json:"sentiment"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err == nil {
		return normalizeSentiment(parsed.Sentiment), clamp01(parsed.Confidence)
	}

	lowered := strings.ToLower(raw)
	switch {
	case strings.Contains(lowered, models.SentimentPositive):
		return models.SentimentPositive, 0.5
	case strings.Contains(lowered, models.SentimentNegative):
		return models.SentimentNegative, 0.5
	default:
		return models.SentimentNeutral, 0.5
	}
}

// relevance parses the response as a bare number clamped to [0, 1]. Parse
// and call failures both keep the field's default of 0.5.
func (e *Enricher) relevance(ctx context.Context, text, term string, mention models.Mention) float64 {
	raw, err := e.analyzer.Relevance(ctx, text, term)
	if err != nil {
		logrus.Errorf("Relevance call failed for %s: %v", mention.URL, err)
		return models.DefaultRelevance
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return models.DefaultRelevance
	}
	return clamp01(score)
}

// topics splits a comma-separated response into trimmed strings, capped at
// five. Failures yield an empty list.
func (e *Enricher) topics(ctx context.Context, text string, mention models.Mention) []string {
	raw, err := e.analyzer.Topics(ctx, text)
	if err != nil {
		logrus.Errorf("Topics call failed for %s: %v", mention.URL, err)
		return nil
	}

	var topics []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
		if len(topics) == maxTopics {
			break
		}
	}
	return topics
}

func (e *Enricher) summary(ctx context.Context, text string, mention models.Mention) string {
	raw, err := e.analyzer.Summarize(ctx, text)
	if err != nil {
		logrus.Errorf("Summary call failed for %s: %v", mention.URL, err)
		return ""
	}
	return strings.TrimSpace(raw)
}

// pause applies the fixed inter-item delay, cut short only by ctx.
func (e *Enricher) pause(ctx context.Context) {
	if e.delay <= 0 {
		return
	}

	timer := time.NewTimer(e.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func normalizeSentiment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.SentimentPositive:
		return models.SentimentPositive
	case models.SentimentNegative:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
