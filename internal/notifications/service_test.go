package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentionwatch/mention-monitor/internal/config"
	"github.com/mentionwatch/mention-monitor/internal/models"
)

func sampleReport() *models.Report {
	return &models.Report{
		GeneratedAt: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		SearchTerm:  "acme",
		Stats: models.MentionStats{
			TotalMentions:      3,
			MentionsLast7Days:  2,
			SourcesBreakdown:   map[string]int{"duckduckgo": 2, "bing": 1},
			SentimentBreakdown: map[string]int{"positive": 1, "neutral": 2},
			AvgRelevanceScore:  0.62,
		},
		RecentMentions: []models.Mention{
			models.NewMention("duckduckgo", "A mention", "https://example.com/a",
				strings.Repeat("long snippet ", 30), "acme", time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC)),
		},
	}
}

func TestSendReport_NoChannelsConfigured(t *testing.T) {
	service := NewService(&config.Config{})
	assert.NoError(t, service.SendReport(sampleReport()))
}

func TestSendReport_Teams(t *testing.T) {
	var received TeamsMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := NewService(&config.Config{TeamsWebhookURL: server.URL})
	require.NoError(t, service.SendReport(sampleReport()))

	assert.Equal(t, "MessageCard", received.Type)
	assert.Contains(t, received.Title, "acme")
	require.NotEmpty(t, received.Sections)

	facts := received.Sections[0].Facts
	factNames := make([]string, 0, len(facts))
	for _, f := range facts {
		factNames = append(factNames, f.Name)
	}
	assert.Contains(t, factNames, "Total Mentions")
	assert.Contains(t, factNames, "Last 7 Days")
	assert.Contains(t, factNames, "Source: duckduckgo")
}

func TestSendReport_TeamsWebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewService(&config.Config{TeamsWebhookURL: server.URL})
	err := service.SendReport(sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Teams")
}

func TestBuildEmailHTML(t *testing.T) {
	service := NewService(&config.Config{})

	html, err := service.buildEmailHTML(sampleReport())
	require.NoError(t, err)
	assert.Contains(t, html, "acme")
	assert.Contains(t, html, "https://example.com/a")
	assert.Contains(t, html, "0.62")
	assert.Contains(t, html, "Positive Mentions")

	// Snippets over 200 bytes render truncated.
	assert.Contains(t, html, "...")
	assert.NotContains(t, html, strings.Repeat("long snippet ", 30))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Positive", titleCase("positive"))
	assert.Equal(t, "Neutral", titleCase("neutral"))
	assert.Equal(t, "", titleCase(""))
}
