package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/mentionwatch/mention-monitor/internal/models"
)

// TavilySource searches via the Tavily search API. Disabled when no API key
// is configured.
type TavilySource struct {
	client     *resty.Client
	apiKey     string
	searchURL  string
	maxResults int
	pacer      *pacing
}

// Ensure TavilySource implements Source
var _ Source = (*TavilySource)(nil)

type tavilyRequest struct {
	APIKey            string   `json:"api_key"`
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth"`
	IncludeAnswer     bool     `json:"include_answer"`
	IncludeImages     bool     `json:"include_images"`
	IncludeRawContent bool     `json:"include_raw_content"`
	MaxResults        int      `json:"max_results"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// NewTavilySource creates a new Tavily source
func NewTavilySource(apiKey string, maxResults int, interval, jitter time.Duration) *TavilySource {
	return &TavilySource{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", userAgent),
		apiKey:     apiKey,
		searchURL:  "https://api.tavily.com/search",
		maxResults: maxResults,
		pacer:      newPacing(interval, jitter),
	}
}

func (t *TavilySource) GetName() string {
	return "tavily"
}

func (t *TavilySource) IsEnabled() bool {
	return t.apiKey != ""
}

func (t *TavilySource) Search(ctx context.Context, query string) ([]models.RawResult, error) {
	if !t.IsEnabled() {
		return nil, nil
	}

	defer t.pacer.wait(ctx)

	payload := tavilyRequest{
		APIKey:        t.apiKey,
		Query:         query,
		SearchDepth:   "basic",
		IncludeAnswer: false,
		MaxResults:    t.maxResults,
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(t.searchURL)

	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("tavily returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var searchResp tavilyResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse tavily response: %w", err)
	}

	var results []models.RawResult
	for _, r := range searchResp.Results {
		if r.Title == "" || r.URL == "" {
			continue
		}
		results = append(results, models.RawResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
		})
	}

	logrus.Debugf("Tavily returned %d results for %q", len(results), query)
	return results, nil
}
