package models

import "time"

// Sentiment labels assigned by the analysis capability.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// DefaultRelevance is the relevance score a mention carries until enriched.
const DefaultRelevance = 0.5

// RawResult is one candidate result as returned by a source adapter,
// before it becomes a Mention.
type RawResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Mention represents one observed occurrence of the search subject.
// The URL is the identity key: the store holds at most one Mention per
// (search_term, url) pair.
type Mention struct {
	Source         string    `json:"source"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	Snippet        string    `json:"snippet"`
	DateFound      time.Time `json:"date_found"`
	SearchTerm     string    `json:"search_term"`
	RelevanceScore float64   `json:"relevance_score"`
	Sentiment      string    `json:"sentiment"` // "positive", "negative", "neutral"
}

// NewMention builds a Mention with the default relevance and sentiment.
func NewMention(source, title, url, snippet, searchTerm string, foundAt time.Time) Mention {
	return Mention{
		Source:         source,
		Title:          title,
		URL:            url,
		Snippet:        snippet,
		DateFound:      foundAt,
		SearchTerm:     searchTerm,
		RelevanceScore: DefaultRelevance,
		Sentiment:      SentimentNeutral,
	}
}

// AnalysisResult is the transient output of one enrichment pass over a
// single mention. Only Sentiment and RelevanceScore are folded back into
// the owning Mention; the rest is call-scoped.
type AnalysisResult struct {
	Sentiment           string   `json:"sentiment"`
	SentimentConfidence float64  `json:"sentiment_confidence"`
	RelevanceScore      float64  `json:"relevance_score"`
	KeyTopics           []string `json:"key_topics"`
	Summary             string   `json:"summary"`
}

// MentionStats holds point-in-time statistics for one search term,
// recomputed from the store on every request.
type MentionStats struct {
	TotalMentions      int            `json:"total_mentions"`
	MentionsLast7Days  int            `json:"mentions_last_7_days"`
	MentionsByDay      map[string]int `json:"mentions_by_day"` // "2006-01-02" -> count, always 7 entries
	SourcesBreakdown   map[string]int `json:"sources_breakdown"`
	SentimentBreakdown map[string]int `json:"sentiment_breakdown"`
	AvgRelevanceScore  float64        `json:"avg_relevance_score"`
}

// Report is a point-in-time snapshot delivered through the notification
// channels after a monitoring run.
type Report struct {
	GeneratedAt    time.Time    `json:"generated_at"`
	SearchTerm     string       `json:"search_term"`
	Stats          MentionStats `json:"stats"`
	RecentMentions []Mention    `json:"recent_mentions"`
}
