package analytics

import (
	"fmt"
	"time"

	"github.com/mentionwatch/mention-monitor/internal/models"
)

const dayKeyFormat = "2006-01-02"

// Store is the subset of the mention store the analytics engine reads from.
type Store interface {
	LoadForTerm(term string) ([]models.Mention, error)
}

// Engine computes statistics for a search term. Stats are recomputed from
// the current store contents on every call; nothing is cached, so results
// are always correct relative to the store at call time.
type Engine struct {
	store Store
	now   func() time.Time
}

// NewEngine creates an analytics engine over the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// ComputeStats calculates statistics for every mention stored under term.
//
// Two 7-day semantics coexist deliberately: MentionsLast7Days uses a rolling
// 7x24h window anchored at now, while MentionsByDay buckets by calendar date
// for the trailing 7 dates. They are separate computations and must not be
// unified.
func (e *Engine) ComputeStats(term string) (models.MentionStats, error) {
	mentions, err := e.store.LoadForTerm(term)
	if err != nil {
		return models.MentionStats{}, fmt.Errorf("failed to load mentions for %q: %w", term, err)
	}

	now := e.now()

	stats := models.MentionStats{
		MentionsByDay:      make(map[string]int, 7),
		SourcesBreakdown:   make(map[string]int),
		SentimentBreakdown: make(map[string]int),
	}

	// The histogram always has exactly 7 entries, zero-valued when sparse.
	for i := 0; i < 7; i++ {
		stats.MentionsByDay[now.AddDate(0, 0, -i).Format(dayKeyFormat)] = 0
	}

	if len(mentions) == 0 {
		return stats, nil
	}

	cutoff := now.Add(-7 * 24 * time.Hour)
	var relevanceSum float64

	for _, m := range mentions {
		stats.TotalMentions++
		stats.SourcesBreakdown[m.Source]++
		stats.SentimentBreakdown[m.Sentiment]++
		relevanceSum += m.RelevanceScore

		if !m.DateFound.Before(cutoff) {
			stats.MentionsLast7Days++

			day := m.DateFound.Format(dayKeyFormat)
			if _, ok := stats.MentionsByDay[day]; ok {
				stats.MentionsByDay[day]++
			}
		}
	}

	stats.AvgRelevanceScore = relevanceSum / float64(stats.TotalMentions)
	return stats, nil
}
