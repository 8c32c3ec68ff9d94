package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentionwatch/mention-monitor/internal/models"
)

func newTestStore(t *testing.T) (*MentionStore, string) {
	t.Helper()
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	return NewMentionStore(backend), dir
}

func mention(url, term, source string) models.Mention {
	return models.NewMention(source, "title for "+url, url, "snippet", term, time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC))
}

func TestMentionStore_MergeIdempotent(t *testing.T) {
	store, _ := newTestStore(t)

	batch := []models.Mention{
		mention("https://example.com/a", "acme", "duckduckgo"),
		mention("https://example.com/b", "acme", "bing"),
	}

	added, err := store.Merge(batch)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = store.Merge(batch)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	all, err := store.LoadAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMentionStore_MergeFirstSeenWins(t *testing.T) {
	store, _ := newTestStore(t)

	first := mention("https://example.com/a", "acme", "duckduckgo")
	first.Title = "original title"

	_, err := store.Merge([]models.Mention{first})
	require.NoError(t, err)

	later := mention("https://example.com/a", "acme", "bing")
	later.Title = "replacement title"

	added, err := store.Merge([]models.Mention{later})
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	all, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "original title", all[0].Title)
	assert.Equal(t, "duckduckgo", all[0].Source)
}

func TestMentionStore_MergeDropsEmptyURL(t *testing.T) {
	store, _ := newTestStore(t)

	batch := []models.Mention{
		mention("", "acme", "duckduckgo"),
		mention("   ", "acme", "bing"),
		mention("https://example.com/a", "acme", "tavily"),
	}

	added, err := store.Merge(batch)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
}

func TestMentionStore_NoDuplicateURLsAfterManyMerges(t *testing.T) {
	store, _ := newTestStore(t)

	batches := [][]models.Mention{
		{mention("https://example.com/a", "acme", "duckduckgo")},
		{mention("https://example.com/a", "acme", "bing"), mention("https://example.com/b", "acme", "bing")},
		{mention("https://example.com/b", "acme", "tavily"), mention("https://example.com/c", "acme", "tavily")},
	}

	for _, batch := range batches {
		_, err := store.Merge(batch)
		require.NoError(t, err)
	}

	all, err := store.LoadAll()
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, m := range all {
		assert.False(t, seen[m.URL], "duplicate URL %s in store", m.URL)
		seen[m.URL] = true
	}
	assert.Len(t, all, 3)
}

func TestMentionStore_LoadForTermCaseInsensitive(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Merge([]models.Mention{
		mention("https://example.com/a", "Acme Corp", "duckduckgo"),
		mention("https://example.com/b", "other", "duckduckgo"),
	})
	require.NoError(t, err)

	matched, err := store.LoadForTerm("acme corp")
	require.NoError(t, err)
	assert.Len(t, matched, 1)
	assert.Equal(t, "https://example.com/a", matched[0].URL)
}

func TestMentionStore_LoadAllAbsentStore(t *testing.T) {
	store, _ := newTestStore(t)

	all, err := store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, all)

	matched, err := store.LoadForTerm("anything")
	require.NoError(t, err)
	assert.NotNil(t, matched)
	assert.Empty(t, matched)
}

func TestMentionStore_LoadAllSkipsMalformedRecords(t *testing.T) {
	store, dir := newTestStore(t)

	records := []any{
		map[string]any{
			"source": "duckduckgo", "title": "good", "url": "https://example.com/a",
			"snippet": "", "date_found": "2026-08-20T12:00:00Z",
			"search_term": "acme", "relevance_score": 0.5, "sentiment": "neutral",
		},
		map[string]any{
			// missing url
			"source": "bing", "title": "no url", "date_found": "2026-08-20T12:00:00Z",
			"search_term": "acme",
		},
		map[string]any{
			// unparseable timestamp
			"source": "bing", "title": "bad date", "url": "https://example.com/b",
			"date_found": "not-a-date", "search_term": "acme",
		},
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mentions.json"), data, 0o644))

	all, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "https://example.com/a", all[0].URL)
}

func TestMentionStore_UpdateAnalysis(t *testing.T) {
	store, _ := newTestStore(t)

	m := mention("https://example.com/a", "acme", "duckduckgo")
	_, err := store.Merge([]models.Mention{m})
	require.NoError(t, err)

	m.Sentiment = models.SentimentPositive
	m.RelevanceScore = 0.9
	m.Title = "should not change"

	require.NoError(t, store.UpdateAnalysis([]models.Mention{m}))

	all, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.SentimentPositive, all[0].Sentiment)
	assert.Equal(t, 0.9, all[0].RelevanceScore)
	assert.Equal(t, "title for https://example.com/a", all[0].Title)
}

func TestMentionStore_UpdateAnalysisUnknownURLIgnored(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Merge([]models.Mention{mention("https://example.com/a", "acme", "duckduckgo")})
	require.NoError(t, err)

	unknown := mention("https://example.com/other", "acme", "bing")
	unknown.Sentiment = models.SentimentNegative
	require.NoError(t, store.UpdateAnalysis([]models.Mention{unknown}))

	all, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.SentimentNeutral, all[0].Sentiment)
}

func TestFileBackend_StoreReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)

	require.NoError(t, backend.Store("mentions.json", []byte("first")))
	require.NoError(t, backend.Store("mentions.json", []byte("second")))

	data, err := backend.Retrieve("mentions.json")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileBackend_RetrieveMissing(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	_, err = backend.Retrieve("missing.json")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileBackend_ListAndDelete(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, backend.Store("mentions.json", []byte("[]")))
	require.NoError(t, backend.Store("other.json", []byte("[]")))

	names, err := backend.List("mentions")
	require.NoError(t, err)
	assert.Equal(t, []string{"mentions.json"}, names)

	require.NoError(t, backend.Delete("other.json"))
	names, err = backend.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"mentions.json"}, names)
}
